package footprint

import (
	"fmt"
	"path/filepath"

	"github.com/fogbound/fogmap/internal/fsutil"
)

// SnapshotStore persists the encoded region blob. Implemented by
// FileSnapshotStore.
type SnapshotStore interface {
	WriteSnapshot(blob []byte) error
	ReadSnapshot() ([]byte, error)
}

// FileSnapshotStore keeps the snapshot in a single file, replacing it
// atomically so a failed write leaves the previous snapshot intact.
type FileSnapshotStore struct {
	fs   fsutil.FileSystem
	path string
}

// NewFileSnapshotStore creates a store at path. A nil fs means the real
// filesystem.
func NewFileSnapshotStore(fs fsutil.FileSystem, path string) *FileSnapshotStore {
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &FileSnapshotStore{fs: fs, path: path}
}

// WriteSnapshot atomically replaces the snapshot file with blob.
func (s *FileSnapshotStore) WriteSnapshot(blob []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return s.fs.ReplaceFile(s.path, blob, 0o644)
}

// ReadSnapshot returns the current snapshot blob. Missing-file errors pass
// through so the caller can distinguish "first start" from corruption.
func (s *FileSnapshotStore) ReadSnapshot() ([]byte, error) {
	return s.fs.ReadFile(s.path)
}

// Persist encodes the manager's current region and writes it through the
// store. It implements Persister for the snapshot flusher.
func (m *Manager) Persist(store SnapshotStore, reason string) error {
	blob, err := m.EncodeSnapshot()
	if err != nil {
		return fmt.Errorf("encode snapshot (%s): %w", reason, err)
	}
	if err := store.WriteSnapshot(blob); err != nil {
		return fmt.Errorf("write snapshot (%s): %w", reason, err)
	}
	m.logger.Printf("[Footprint] persisted snapshot: reason=%s size=%d bytes", reason, len(blob))
	return nil
}
