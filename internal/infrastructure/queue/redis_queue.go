// Package queue provides the Redis-backed job queue. The queue carries only
// job IDs; the background_jobs table remains the source of truth, so a lost
// queue entry degrades to the worker's table poll instead of losing work.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey is the Redis list the worker consumes from
const DefaultQueueKey = "jobs:queue"

// ErrEmpty is returned by Dequeue when no job arrived within the wait window
var ErrEmpty = errors.New("queue: no job available")

// JobQueue pushes and pops job IDs
type JobQueue interface {
	Enqueue(ctx context.Context, jobID uuid.UUID) error
	// Dequeue blocks up to wait for a job ID and returns ErrEmpty on timeout
	Dequeue(ctx context.Context, wait time.Duration) (uuid.UUID, error)
	Length(ctx context.Context) (int64, error)
}

// RedisJobQueue implements JobQueue on a Redis list with LPUSH/BRPOP
type RedisJobQueue struct {
	client *redis.Client
	key    string
}

// NewRedisJobQueue creates a RedisJobQueue on the default key
func NewRedisJobQueue(client *redis.Client) *RedisJobQueue {
	return &RedisJobQueue{client: client, key: DefaultQueueKey}
}

// NewRedisJobQueueWithKey creates a RedisJobQueue on a custom key, used by
// tests to isolate queues.
func NewRedisJobQueueWithKey(client *redis.Client, key string) *RedisJobQueue {
	return &RedisJobQueue{client: client, key: key}
}

// Enqueue pushes a job ID onto the queue
func (q *RedisJobQueue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	return q.client.LPush(ctx, q.key, jobID.String()).Err()
}

// Dequeue blocks up to wait for the next job ID
func (q *RedisJobQueue) Dequeue(ctx context.Context, wait time.Duration) (uuid.UUID, error) {
	values, err := q.client.BRPop(ctx, wait, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrEmpty
		}
		return uuid.Nil, err
	}
	// BRPOP returns [key, value]
	if len(values) != 2 {
		return uuid.Nil, ErrEmpty
	}
	id, err := uuid.Parse(values[1])
	if err != nil {
		// A malformed entry is dropped; the table poll will pick the job up
		return uuid.Nil, ErrEmpty
	}
	return id, nil
}

// Length reports the number of queued job IDs
func (q *RedisJobQueue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

var _ JobQueue = (*RedisJobQueue)(nil)
