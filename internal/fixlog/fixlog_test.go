package fixlog

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fogbound/fogmap/internal/footprint"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "fixes.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsApply(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("schema is dirty after NewDB")
	}
	if version == 0 {
		t.Error("no migrations applied")
	}

	// Running migrations again must be a no-op.
	if err := db.MigrateUp(); err != nil {
		t.Errorf("second MigrateUp: %v", err)
	}
}

func TestRecordAndReplayFixes(t *testing.T) {
	db := newTestDB(t)
	session := NewSessionID()

	// Record out of timestamp order; replay must come back sorted.
	fixes := []footprint.Fix{
		{Longitude: 1, Latitude: 2, TSUnixMillis: 3000, BufferRadiusMeters: 15},
		{Longitude: 1.5, Latitude: 2.5, TSUnixMillis: 1000, BufferRadiusMeters: 15},
		{Longitude: 2, Latitude: 3, TSUnixMillis: 2000, BufferRadiusMeters: 25},
	}
	for i, fix := range fixes {
		if err := db.RecordFix(session, fix); err != nil {
			t.Fatalf("RecordFix %d: %v", i, err)
		}
	}

	count, err := db.CountFixes()
	if err != nil {
		t.Fatalf("CountFixes: %v", err)
	}
	if count != 3 {
		t.Errorf("CountFixes = %d, want 3", count)
	}

	replayed, err := db.FixesAsc()
	if err != nil {
		t.Fatalf("FixesAsc: %v", err)
	}
	if len(replayed) != 3 {
		t.Fatalf("replayed %d fixes, want 3", len(replayed))
	}
	want := []footprint.Fix{fixes[1], fixes[2], fixes[0]}
	if diff := cmp.Diff(want, replayed); diff != "" {
		t.Errorf("replayed fixes mismatch (-want +got):\n%s", diff)
	}
}

func TestFixesAscEmpty(t *testing.T) {
	db := newTestDB(t)

	fixes, err := db.FixesAsc()
	if err != nil {
		t.Fatalf("FixesAsc: %v", err)
	}
	if len(fixes) != 0 {
		t.Errorf("FixesAsc on empty log returned %d fixes", len(fixes))
	}
}

func TestSessionCountsAndPrune(t *testing.T) {
	db := newTestDB(t)
	a, b := NewSessionID(), NewSessionID()
	if a == b {
		t.Fatal("session ids collide")
	}

	for i := 0; i < 3; i++ {
		if err := db.RecordFix(a, footprint.Fix{TSUnixMillis: int64(i), BufferRadiusMeters: 15}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.RecordFix(b, footprint.Fix{TSUnixMillis: 100, BufferRadiusMeters: 15}); err != nil {
		t.Fatal(err)
	}

	counts, err := db.SessionCounts()
	if err != nil {
		t.Fatalf("SessionCounts: %v", err)
	}
	if counts[a] != 3 || counts[b] != 1 {
		t.Errorf("SessionCounts = %v, want %s:3 %s:1", counts, a, b)
	}

	removed, err := db.PruneSession(a)
	if err != nil {
		t.Fatalf("PruneSession: %v", err)
	}
	if removed != 3 {
		t.Errorf("pruned %d fixes, want 3", removed)
	}
	count, err := db.CountFixes()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountFixes after prune = %d, want 1", count)
	}
}
