package footprint

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/twpayne/go-geos"
)

// Snapshot blob layout: 4-byte magic, 1 version byte, 1 empty flag, then
// gzip-compressed WKB of the region when the flag is nonzero.
var snapshotMagic = [4]byte{'F', 'O', 'G', 'S'}

const snapshotVersion = 1

// ErrSnapshotCorrupt reports a snapshot blob that cannot be decoded. Callers
// treat it as "start empty, rebuild from the fix log".
var ErrSnapshotCorrupt = errors.New("footprint: corrupt snapshot")

// EncodeSnapshot serializes a region (nil meaning empty) to the snapshot
// blob format. Encoding the decoded form of a blob written by this codec
// version reproduces the blob byte for byte.
func EncodeSnapshot(region *geos.Geom) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	buf.WriteByte(snapshotVersion)

	if region == nil || region.IsEmpty() {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	buf.WriteByte(1)

	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(region.ToWKB()); err != nil {
		gz.Close()
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot blob into a region owned by gctx. A nil
// region with nil error means the blob was written for an empty region.
func DecodeSnapshot(gctx *geos.Context, blob []byte) (*geos.Geom, error) {
	if len(blob) < 6 || !bytes.Equal(blob[:4], snapshotMagic[:]) {
		return nil, ErrSnapshotCorrupt
	}
	if blob[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, blob[4])
	}
	if blob[5] == 0 {
		return nil, nil
	}

	gz, err := gzip.NewReader(bytes.NewReader(blob[6:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	region, err := gctx.NewGeomFromWKB(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return region, nil
}

// EncodeSnapshot serializes the manager's current region.
func (m *Manager) EncodeSnapshot() ([]byte, error) {
	return EncodeSnapshot(m.Region())
}

// LoadSnapshot replaces the region with the decoded snapshot. The cursor is
// cleared so the next fix starts a new blob rather than drawing a corridor
// from a stale pre-restart position. On error the manager is unchanged.
func (m *Manager) LoadSnapshot(blob []byte) error {
	region, err := DecodeSnapshot(m.gctx, blob)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.region = region
	m.cur = cursor{}
	return nil
}
