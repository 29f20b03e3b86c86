package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJobQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryJobQueue(8)

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestMemoryJobQueue_DequeueEmpty(t *testing.T) {
	q := NewMemoryJobQueue(1)

	_, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestMemoryJobQueue_EnqueueBlocksWhenFull(t *testing.T) {
	q := NewMemoryJobQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), uuid.New()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, uuid.New())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryJobQueue_DequeueUnblocksOnCancel(t *testing.T) {
	q := NewMemoryJobQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx, time.Minute)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not return after cancellation")
	}
}
