package jobs

import (
	"context"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// JobRepository defines persistence operations for background jobs
type JobRepository interface {
	Save(ctx context.Context, job *Job) error
	SaveWithLock(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Job, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Job], error)
	// FindDuePending returns pending jobs whose run time has arrived, oldest
	// first. The worker's poll fallback uses this when the queue loses an
	// entry or after a restart.
	FindDuePending(ctx context.Context, cutoff time.Time, limit int) ([]*Job, error)
	// FindStuckRunning returns jobs that have been running longer than the
	// given age; a worker crash leaves rows in this state.
	FindStuckRunning(ctx context.Context, olderThan time.Time, limit int) ([]*Job, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status JobStatus) (int64, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
