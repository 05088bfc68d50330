package footprint

import (
	"bytes"
	"errors"
	"testing"

	"github.com/twpayne/go-geos"
)

func TestSnapshotRoundTripEmpty(t *testing.T) {
	blob, err := EncodeSnapshot(nil)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	if len(blob) != 6 {
		t.Errorf("empty snapshot length = %d, want 6", len(blob))
	}

	region, err := DecodeSnapshot(geos.NewContext(), blob)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if region != nil {
		t.Error("decoded empty snapshot is not nil")
	}
}

func TestSnapshotRoundTripPreservesRegion(t *testing.T) {
	m := newTestManager(t)
	for i, fix := range []Fix{
		fixAt(0, 0, 0),
		fixAt(0, 0.001, 2000),
		fixAt(0, 0.02, 60000), // teleport, second blob
	} {
		if err := m.AddFix(fix); err != nil {
			t.Fatalf("AddFix %d: %v", i, err)
		}
	}
	area := m.ExploredAreaSquareMeters()
	holes := holeCount(t, m)

	blob, err := m.EncodeSnapshot()
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}

	restored := newTestManager(t)
	if err := restored.LoadSnapshot(blob); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got := restored.ExploredAreaSquareMeters(); got != area {
		t.Errorf("restored area = %v, want %v", got, area)
	}
	if got := holeCount(t, restored); got != holes {
		t.Errorf("restored holes = %d, want %d", got, holes)
	}
}

func TestSnapshotReencodeIsStable(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddFix(fixAt(10, 20, 0)); err != nil {
		t.Fatal(err)
	}
	blob, err := m.EncodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	restored := newTestManager(t)
	if err := restored.LoadSnapshot(blob); err != nil {
		t.Fatal(err)
	}
	again, err := restored.EncodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(blob, again) {
		t.Error("re-encoding a loaded snapshot produced different bytes")
	}
}

func TestDecodeSnapshotRejectsCorruptInput(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddFix(fixAt(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	valid, err := m.EncodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 99

	truncated := valid[:len(valid)-3]

	garbagePayload := append([]byte(nil), valid[:6]...)
	garbagePayload = append(garbagePayload, []byte("not gzip at all")...)

	cases := []struct {
		name string
		blob []byte
	}{
		{"empty input", nil},
		{"too short", []byte{'F', 'O'}},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"truncated payload", truncated},
		{"garbage payload", garbagePayload},
	}
	gctx := geos.NewContext()
	for _, tc := range cases {
		if _, err := DecodeSnapshot(gctx, tc.blob); !errors.Is(err, ErrSnapshotCorrupt) {
			t.Errorf("%s: error = %v, want ErrSnapshotCorrupt", tc.name, err)
		}
	}
}

func TestLoadSnapshotKeepsStateOnError(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddFix(fixAt(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	area := m.ExploredAreaSquareMeters()

	if err := m.LoadSnapshot([]byte("garbage")); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("LoadSnapshot error = %v, want ErrSnapshotCorrupt", err)
	}
	if got := m.ExploredAreaSquareMeters(); got != area {
		t.Errorf("area changed after failed load: %v -> %v", area, got)
	}
}

func TestLoadSnapshotClearsCursor(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddFix(fixAt(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	blob, err := m.EncodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	if err := m.LoadSnapshot(blob); err != nil {
		t.Fatal(err)
	}
	// With no cursor the next nearby fix cannot connect to the restored
	// blob: it unions in as its own disc but records no tunnel either.
	if err := m.AddFix(fixAt(0, 0.01, 31000)); err != nil {
		t.Fatal(err)
	}
	if n := len(m.TunnelSegments()); n != 0 {
		t.Errorf("tunnel segments = %d, want 0 after snapshot load", n)
	}
}
