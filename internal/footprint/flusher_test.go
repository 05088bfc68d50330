package footprint

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

// mockPersister records Persist calls for flusher tests.
type mockPersister struct {
	mu      sync.Mutex
	calls   int
	reasons []string
	err     error
}

func (p *mockPersister) Persist(store SnapshotStore, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.reasons = append(p.reasons, reason)
	return p.err
}

func (p *mockPersister) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *mockPersister) lastReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.reasons) == 0 {
		return ""
	}
	return p.reasons[len(p.reasons)-1]
}

type nullStore struct{}

func (nullStore) WriteSnapshot([]byte) error    { return nil }
func (nullStore) ReadSnapshot() ([]byte, error) { return nil, nil }

func newTestFlusher(p Persister, interval time.Duration) *SnapshotFlusher {
	return NewSnapshotFlusher(SnapshotFlusherConfig{
		Manager:  p,
		Store:    nullStore{},
		Interval: interval,
		Logger:   log.New(io.Discard, "", 0),
	})
}

func TestFlusherPeriodicFlush(t *testing.T) {
	persister := &mockPersister{}
	flusher := newTestFlusher(persister, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go flusher.Run(ctx)

	deadline := time.After(2 * time.Second)
	for persister.callCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d flushes before deadline", persister.callCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	flusher.Stop()
	if flusher.IsRunning() {
		t.Error("flusher still running after Stop")
	}
}

func TestFlusherFinalFlushOnStop(t *testing.T) {
	persister := &mockPersister{}
	flusher := newTestFlusher(persister, time.Hour)

	go flusher.Run(context.Background())
	for !flusher.IsRunning() {
		time.Sleep(time.Millisecond)
	}

	flusher.Stop()

	if got := persister.callCount(); got != 1 {
		t.Errorf("persist calls = %d, want 1 (final flush only)", got)
	}
	if got := persister.lastReason(); got != "final_flush" {
		t.Errorf("final flush reason = %q, want final_flush", got)
	}
}

func TestFlusherFinalFlushOnContextCancel(t *testing.T) {
	persister := &mockPersister{}
	flusher := newTestFlusher(persister, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		flusher.Run(ctx)
		close(done)
	}()
	for !flusher.IsRunning() {
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("flusher did not stop after context cancellation")
	}

	if got := persister.lastReason(); got != "final_flush" {
		t.Errorf("final flush reason = %q, want final_flush", got)
	}
}

func TestFlusherZeroIntervalDoesNotStart(t *testing.T) {
	persister := &mockPersister{}
	flusher := newTestFlusher(persister, 0)

	if err := flusher.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if flusher.IsRunning() {
		t.Error("flusher running with zero interval")
	}
	if got := persister.callCount(); got != 0 {
		t.Errorf("persist calls = %d, want 0", got)
	}
}

func TestFlusherSurvivesPersistErrors(t *testing.T) {
	persister := &mockPersister{err: errors.New("disk full")}
	flusher := newTestFlusher(persister, 10*time.Millisecond)

	go flusher.Run(context.Background())

	deadline := time.After(2 * time.Second)
	for persister.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("flusher stopped flushing after an error")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if !flusher.IsRunning() {
		t.Error("flusher exited on persist error")
	}

	flusher.Stop()
}

func TestFlusherFlushNow(t *testing.T) {
	persister := &mockPersister{}
	flusher := newTestFlusher(persister, time.Hour)

	flusher.FlushNow()
	if got := persister.callCount(); got != 1 {
		t.Errorf("persist calls = %d, want 1", got)
	}
	if got := persister.lastReason(); got != "autosave" {
		t.Errorf("flush reason = %q, want autosave", got)
	}
}

func TestFlusherStopWithoutRunIsNoOp(t *testing.T) {
	flusher := newTestFlusher(&mockPersister{}, time.Hour)
	flusher.Stop() // must not block or panic
	flusher.Stop()
}
