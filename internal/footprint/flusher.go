package footprint

import (
	"context"
	"log"
	"sync"
	"time"
)

// Persister is implemented by types that can write their state through a
// SnapshotStore. *Manager implements it.
type Persister interface {
	Persist(store SnapshotStore, reason string) error
}

// SnapshotFlusher periodically writes the footprint snapshot to its store.
// It provides context-aware lifecycle management for autosave, including a
// final flush on shutdown.
type SnapshotFlusher struct {
	manager  Persister
	store    SnapshotStore
	interval time.Duration
	reason   string
	logger   *log.Logger
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// SnapshotFlusherConfig contains configuration for SnapshotFlusher.
type SnapshotFlusherConfig struct {
	// Manager is the Persister to flush (typically a *Manager)
	Manager Persister
	// Store receives the snapshot blobs
	Store SnapshotStore
	// Interval is how often to flush (e.g., 30*time.Second)
	Interval time.Duration
	// Reason is the reason string recorded for periodic flushes
	Reason string
	// Logger is optional; if nil, uses log.Default()
	Logger *log.Logger
}

// NewSnapshotFlusher creates a new SnapshotFlusher.
func NewSnapshotFlusher(cfg SnapshotFlusherConfig) *SnapshotFlusher {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	reason := cfg.Reason
	if reason == "" {
		reason = "autosave"
	}
	return &SnapshotFlusher{
		manager:  cfg.Manager,
		store:    cfg.Store,
		interval: cfg.Interval,
		reason:   reason,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Run starts the periodic flushing loop. It blocks until the context is
// cancelled or Stop() is called, writing one final snapshot on the way out.
// Returns nil on clean shutdown.
func (f *SnapshotFlusher) Run(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil // already running
	}
	f.running = true
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	f.mu.Unlock()

	defer func() {
		close(f.doneCh)
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()
	}()

	if f.interval <= 0 {
		f.logger.Printf("SnapshotFlusher: interval is zero or negative, not starting")
		return nil
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Printf("SnapshotFlusher started: interval=%v", f.interval)

	for {
		select {
		case <-ctx.Done():
			f.logger.Printf("SnapshotFlusher stopping due to context cancellation")
			f.flushFinal()
			return nil
		case <-f.stopCh:
			f.logger.Printf("SnapshotFlusher stopping due to Stop() call")
			f.flushFinal()
			return nil
		case <-ticker.C:
			f.flush()
		}
	}
}

// Stop requests the flusher to stop and waits for the final flush. It is
// safe to call multiple times.
func (f *SnapshotFlusher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	select {
	case <-f.stopCh:
		// already closed
	default:
		close(f.stopCh)
	}
	f.mu.Unlock()

	<-f.doneCh
}

// IsRunning returns whether the flusher is currently running.
func (f *SnapshotFlusher) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// flush performs a single flush operation. Failures are warnings; the
// on-disk state remains the last successful snapshot.
func (f *SnapshotFlusher) flush() {
	if f.manager == nil || f.store == nil {
		return
	}
	if err := f.manager.Persist(f.store, f.reason); err != nil {
		f.logger.Printf("SnapshotFlusher: error flushing: %v", err)
	}
}

// flushFinal performs the final flush before shutdown.
func (f *SnapshotFlusher) flushFinal() {
	if f.manager == nil || f.store == nil {
		return
	}
	if err := f.manager.Persist(f.store, "final_flush"); err != nil {
		f.logger.Printf("SnapshotFlusher: error during final flush: %v", err)
	}
}

// FlushNow triggers an immediate flush outside the regular interval.
func (f *SnapshotFlusher) FlushNow() {
	f.flush()
}
