package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJobRepository implements jobs.JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

func (r *GormJobRepository) Save(ctx context.Context, job *jobs.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// SaveWithLock saves a job with optimistic locking. Two workers racing to
// start the same job resolve here: only one version bump lands.
func (r *GormJobRepository) SaveWithLock(ctx context.Context, job *jobs.Job) error {
	return saveWithLock(r.db.WithContext(ctx), job, job.ID, job.Version)
}

// FindByID finds a job by ID without a tenant scope; the worker loads jobs
// for every organization.
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	var job jobs.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByIDForOrg finds a job by ID scoped to an organization
func (r *GormJobRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*jobs.Job, error) {
	var job jobs.Job
	if err := r.db.WithContext(ctx).
		First(&job, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *GormJobRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*jobs.Job], error) {
	query := r.db.WithContext(ctx).Model(&jobs.Job{}).Where("org_id = ?", orgID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "kind":
			query = query.Where("kind = ?", value)
		}
	}
	return findPage[*jobs.Job](query, filter, "created_at DESC", "status", "kind", "run_at", "created_at")
}

// FindDuePending returns pending jobs whose run time has arrived, oldest first
func (r *GormJobRepository) FindDuePending(ctx context.Context, cutoff time.Time, limit int) ([]*jobs.Job, error) {
	var due []*jobs.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND run_at <= ?", jobs.JobStatusPending, cutoff).
		Order("run_at ASC").
		Limit(limit).
		Find(&due).Error
	return due, err
}

// FindStuckRunning returns jobs that started before olderThan and never finished
func (r *GormJobRepository) FindStuckRunning(ctx context.Context, olderThan time.Time, limit int) ([]*jobs.Job, error) {
	var stuck []*jobs.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND started_at IS NOT NULL AND started_at < ?", jobs.JobStatusRunning, olderThan).
		Order("started_at ASC").
		Limit(limit).
		Find(&stuck).Error
	return stuck, err
}

func (r *GormJobRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status jobs.JobStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&jobs.Job{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error
	return count, err
}

// DeleteFinishedBefore removes terminal jobs last touched before the cutoff
func (r *GormJobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]jobs.JobStatus{jobs.JobStatusCompleted, jobs.JobStatusFailed, jobs.JobStatusCancelled}, cutoff).
		Delete(&jobs.Job{})
	return result.RowsAffected, result.Error
}

var _ jobs.JobRepository = (*GormJobRepository)(nil)
