package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemoryJobQueue is a channel-backed JobQueue for tests and single-process
// development without Redis.
type MemoryJobQueue struct {
	ch chan uuid.UUID
}

// NewMemoryJobQueue creates a MemoryJobQueue with the given capacity
func NewMemoryJobQueue(capacity int) *MemoryJobQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryJobQueue{ch: make(chan uuid.UUID, capacity)}
}

func (q *MemoryJobQueue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	select {
	case q.ch <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryJobQueue) Dequeue(ctx context.Context, wait time.Duration) (uuid.UUID, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case id := <-q.ch:
		return id, nil
	case <-timer.C:
		return uuid.Nil, ErrEmpty
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	}
}

func (q *MemoryJobQueue) Length(ctx context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}

var _ JobQueue = (*MemoryJobQueue)(nil)
