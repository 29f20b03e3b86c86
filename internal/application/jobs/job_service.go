// Package jobs exposes background job administration and the enqueue
// path the other services use to delegate work to the worker pool.
package jobs

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/queue"
)

// JobService handles job administration and enqueueing
type JobService struct {
	jobRepo jobs.JobRepository
	queue   queue.JobQueue
	logger  *zap.Logger
}

// NewJobService creates a new job service
func NewJobService(jobRepo jobs.JobRepository, q queue.JobQueue, logger *zap.Logger) *JobService {
	return &JobService{
		jobRepo: jobRepo,
		queue:   q,
		logger:  logger,
	}
}

// EnqueueJob persists a pending job row and pushes its ID on the queue.
// A push failure is not fatal; the worker's table poll picks the row up.
func (s *JobService) EnqueueJob(ctx context.Context, orgID uuid.UUID, kind jobs.JobKind, payload interface{}) (*jobs.Job, error) {
	job, err := jobs.NewJob(orgID, kind, payload)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		s.logger.Warn("job enqueued to table only, queue push failed",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}

	s.logger.Info("job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("org_id", orgID.String()),
		zap.String("kind", string(kind)))
	return job, nil
}

// Get loads a job scoped to the organization
func (s *JobService) Get(ctx context.Context, orgID, jobID uuid.UUID) (*jobs.Job, error) {
	return s.jobRepo.FindByIDForOrg(ctx, orgID, jobID)
}

// List lists an organization's jobs with filtering and pagination
func (s *JobService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*jobs.Job], error) {
	return s.jobRepo.FindAll(ctx, orgID, filter)
}

// Cancel stops a pending job before a worker picks it up
func (s *JobService) Cancel(ctx context.Context, orgID, jobID uuid.UUID) (*jobs.Job, error) {
	job, err := s.jobRepo.FindByIDForOrg(ctx, orgID, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.Cancel(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info("job cancelled", zap.String("job_id", job.ID.String()))
	return job, nil
}

// Retry requeues a terminally failed job with a fresh attempt budget
func (s *JobService) Retry(ctx context.Context, orgID, jobID uuid.UUID) (*jobs.Job, error) {
	job, err := s.jobRepo.FindByIDForOrg(ctx, orgID, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.Retry(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		s.logger.Warn("retry queued to table only, queue push failed",
			zap.String("job_id", job.ID.String()), zap.Error(err))
	}
	s.logger.Info("job retried", zap.String("job_id", job.ID.String()))
	return job, nil
}

// CountByStatus returns how many of the organization's jobs are in a status
func (s *JobService) CountByStatus(ctx context.Context, orgID uuid.UUID, status jobs.JobStatus) (int64, error) {
	return s.jobRepo.CountByStatus(ctx, orgID, status)
}
