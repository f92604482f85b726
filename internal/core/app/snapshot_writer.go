package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"doccov/internal/core/ports"
	"doccov/internal/data/history"
	"doccov/internal/data/queue"
)

const (
	snapshotQueueCapacity = 256
	snapshotBatchSize     = 32
	snapshotPollInterval  = 200 * time.Millisecond
)

// snapshotWriter moves history writes off the analysis path. Workers hand
// snapshots to a bounded queue and a single goroutine persists them, so the
// sqlite connection is never contended. A full queue falls back to writing
// inline.
type snapshotWriter struct {
	store   ports.HistoryStore
	project string
	queue   *queue.MemoryQueue[history.Snapshot]

	mu      sync.Mutex
	idle    *sync.Cond
	pending int

	done chan struct{}
}

func newSnapshotWriter(store ports.HistoryStore, project string, capacity int) *snapshotWriter {
	w := &snapshotWriter{
		store:   store,
		project: project,
		queue:   queue.NewMemoryQueue[history.Snapshot](capacity),
		done:    make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *snapshotWriter) Submit(snapshot history.Snapshot) {
	w.mu.Lock()
	w.pending++
	w.mu.Unlock()

	if w.queue.Enqueue(snapshot) == queue.EnqueueAccepted {
		return
	}
	slog.Debug("snapshot queue full, writing inline", "path", snapshot.Path)
	w.write([]history.Snapshot{snapshot})
}

// Flush blocks until every submitted snapshot has been written.
func (w *snapshotWriter) Flush() {
	w.mu.Lock()
	for w.pending > 0 {
		w.idle.Wait()
	}
	w.mu.Unlock()
}

// Pending reports snapshots submitted but not yet written.
func (w *snapshotWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Close stops accepting snapshots and waits for the queue to drain.
func (w *snapshotWriter) Close() error {
	err := w.queue.Close()
	<-w.done
	return err
}

func (w *snapshotWriter) run() {
	defer close(w.done)
	ctx := context.Background()
	for {
		batch, err := w.queue.DequeueBatch(ctx, snapshotBatchSize, snapshotPollInterval)
		if len(batch) > 0 {
			w.write(batch)
		}
		if err != nil {
			return
		}
	}
}

func (w *snapshotWriter) write(batch []history.Snapshot) {
	for _, snapshot := range batch {
		if err := w.store.SaveSnapshot(w.project, snapshot); err != nil {
			slog.Warn("failed to save history snapshot", "path", snapshot.Path, "error", err)
		}
	}

	w.mu.Lock()
	w.pending -= len(batch)
	if w.pending <= 0 {
		w.pending = 0
		w.idle.Broadcast()
	}
	w.mu.Unlock()
}
