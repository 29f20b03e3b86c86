// Package worker runs background jobs. Job IDs arrive on the Redis queue;
// a table poll catches rows whose enqueue was lost and requeues jobs a
// crashed worker left running.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/agencyhub/backend/internal/infrastructure/queue"
)

// Handler executes one job and returns an optional JSON result
type Handler func(ctx context.Context, job *jobs.Job) (result string, err error)

// SweepFunc is periodic maintenance work that runs on the sweep ticker
type SweepFunc func(ctx context.Context) error

const dequeueWait = 5 * time.Second

// Dispatcher consumes the job queue with a pool of goroutines and runs the
// registered handler for each job kind.
type Dispatcher struct {
	cfg      config.WorkerConfig
	repo     jobs.JobRepository
	queue    queue.JobQueue
	logger   *zap.Logger
	handlers map[jobs.JobKind]Handler
	sweeps   map[string]SweepFunc
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher; handlers are registered before Run
func NewDispatcher(cfg config.WorkerConfig, repo jobs.JobRepository, q queue.JobQueue, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		repo:     repo,
		queue:    q,
		logger:   logger,
		handlers: make(map[jobs.JobKind]Handler),
		sweeps:   make(map[string]SweepFunc),
	}
}

// Register binds a handler to a job kind, replacing any previous binding
func (d *Dispatcher) Register(kind jobs.JobKind, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
}

// RegisterSweep adds periodic maintenance work to the sweep ticker
func (d *Dispatcher) RegisterSweep(name string, fn SweepFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweeps[name] = fn
}

// Run starts the consumer pool and maintenance loops and blocks until ctx is
// cancelled and all in-flight jobs have finished.
func (d *Dispatcher) Run(ctx context.Context) {
	concurrency := d.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	d.logger.Info("worker starting",
		zap.Int("concurrency", concurrency),
		zap.Duration("poll_interval", d.cfg.PollInterval),
		zap.Duration("sweep_interval", d.cfg.SweepInterval))

	for i := 0; i < concurrency; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.consume(ctx)
		}()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.pollLoop(ctx)
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sweepLoop(ctx)
	}()

	d.wg.Wait()
	d.logger.Info("worker stopped")
}

func (d *Dispatcher) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobID, err := d.queue.Dequeue(ctx, dequeueWait)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) || errors.Is(err, context.Canceled) {
				continue
			}
			d.logger.Warn("queue dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		d.Process(ctx, jobID)
	}
}

// Process loads, claims and runs a single job. Losing the optimistic-lock
// race on the claim means another worker took the job; that is not an error.
func (d *Dispatcher) Process(ctx context.Context, jobID uuid.UUID) {
	job, err := d.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return
		}
		d.logger.Error("job load failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return
	}

	if err := job.Start(); err != nil {
		// Already taken, finished, or not due yet
		return
	}
	if err := d.repo.SaveWithLock(ctx, job); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return
		}
		d.logger.Error("job claim failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return
	}

	logger := d.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int("attempt", job.Attempts))
	logger.Info("job started")

	result, runErr := d.runHandler(ctx, job)
	if runErr != nil {
		retrying, ferr := job.Fail(runErr.Error())
		if ferr != nil {
			logger.Error("job state update failed", zap.Error(ferr))
			return
		}
		if err := d.repo.Save(ctx, job); err != nil {
			logger.Error("job save failed", zap.Error(err))
			return
		}
		if retrying {
			logger.Warn("job failed, will retry",
				zap.Error(runErr), zap.Time("run_at", job.RunAt))
		} else {
			logger.Error("job failed permanently", zap.Error(runErr))
		}
		return
	}

	if err := job.Complete(result); err != nil {
		logger.Error("job state update failed", zap.Error(err))
		return
	}
	if err := d.repo.Save(ctx, job); err != nil {
		logger.Error("job save failed", zap.Error(err))
		return
	}
	logger.Info("job completed")
}

func (d *Dispatcher) runHandler(ctx context.Context, job *jobs.Job) (result string, err error) {
	d.mu.RLock()
	handler, ok := d.handlers[job.Kind]
	d.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no handler registered for kind %q", job.Kind)
	}

	runCtx := ctx
	if d.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.cfg.JobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(runCtx, job)
}

// pollLoop is the queue's safety net: it picks up due pending rows whose
// enqueue never arrived and requeues running rows a dead worker abandoned.
func (d *Dispatcher) pollLoop(ctx context.Context) {
	interval := d.cfg.PollInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollDue(ctx)
			d.requeueStuck(ctx)
		}
	}
}

func (d *Dispatcher) pollDue(ctx context.Context) {
	batch := d.cfg.PollBatchSize
	if batch <= 0 {
		batch = 50
	}
	due, err := d.repo.FindDuePending(ctx, time.Now(), batch)
	if err != nil {
		d.logger.Warn("job poll failed", zap.Error(err))
		return
	}
	for _, job := range due {
		if err := d.queue.Enqueue(ctx, job.ID); err != nil {
			d.logger.Warn("job requeue failed",
				zap.String("job_id", job.ID.String()), zap.Error(err))
			return
		}
	}
	if len(due) > 0 {
		d.logger.Debug("requeued due jobs", zap.Int("count", len(due)))
	}
}

func (d *Dispatcher) requeueStuck(ctx context.Context) {
	stuckAfter := d.cfg.StuckAfter
	if stuckAfter <= 0 {
		stuckAfter = 30 * time.Minute
	}
	stuck, err := d.repo.FindStuckRunning(ctx, time.Now().Add(-stuckAfter), 50)
	if err != nil {
		d.logger.Warn("stuck job scan failed", zap.Error(err))
		return
	}
	for _, job := range stuck {
		retrying, err := job.Fail("worker did not finish within the stuck threshold")
		if err != nil {
			continue
		}
		if err := d.repo.SaveWithLock(ctx, job); err != nil {
			// Another worker got there first
			continue
		}
		if retrying {
			d.logger.Warn("requeued stuck job",
				zap.String("job_id", job.ID.String()), zap.String("kind", string(job.Kind)))
		} else {
			d.logger.Error("stuck job exhausted its attempts",
				zap.String("job_id", job.ID.String()), zap.String("kind", string(job.Kind)))
		}
	}
}

// sweepLoop runs registered maintenance work and prunes finished jobs
func (d *Dispatcher) sweepLoop(ctx context.Context) {
	interval := d.cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runSweeps(ctx)
			d.pruneFinished(ctx)
		}
	}
}

func (d *Dispatcher) runSweeps(ctx context.Context) {
	d.mu.RLock()
	sweeps := make(map[string]SweepFunc, len(d.sweeps))
	for name, fn := range d.sweeps {
		sweeps[name] = fn
	}
	d.mu.RUnlock()

	for name, fn := range sweeps {
		if err := fn(ctx); err != nil {
			d.logger.Warn("sweep failed", zap.String("sweep", name), zap.Error(err))
		}
	}
}

func (d *Dispatcher) pruneFinished(ctx context.Context) {
	retention := d.cfg.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retention)
	deleted, err := d.repo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		d.logger.Warn("job retention cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		d.logger.Info("pruned finished jobs", zap.Int64("count", deleted))
	}
}
