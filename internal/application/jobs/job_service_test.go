package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/queue"
)

// MockJobRepository is a mock implementation of jobs.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Save(ctx context.Context, job *jobs.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) SaveWithLock(ctx context.Context, job *jobs.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

func (m *MockJobRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*jobs.Job, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

func (m *MockJobRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*jobs.Job], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*jobs.Job]), args.Error(1)
}

func (m *MockJobRepository) FindDuePending(ctx context.Context, cutoff time.Time, limit int) ([]*jobs.Job, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*jobs.Job), args.Error(1)
}

func (m *MockJobRepository) FindStuckRunning(ctx context.Context, olderThan time.Time, limit int) ([]*jobs.Job, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*jobs.Job), args.Error(1)
}

func (m *MockJobRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status jobs.JobStatus) (int64, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newTestJobService(repo jobs.JobRepository, q queue.JobQueue) *JobService {
	return NewJobService(repo, q, zap.NewNop())
}

func TestJobService_EnqueueJob(t *testing.T) {
	t.Run("persists job and pushes its ID", func(t *testing.T) {
		repo := new(MockJobRepository)
		q := queue.NewMemoryJobQueue(8)
		service := newTestJobService(repo, q)

		orgID := uuid.New()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*jobs.Job")).Return(nil)

		job, err := service.EnqueueJob(context.Background(), orgID, jobs.JobKindSEOAudit, map[string]string{"site_id": uuid.NewString()})

		require.NoError(t, err)
		assert.Equal(t, jobs.JobStatusPending, job.Status)
		assert.Equal(t, orgID, job.OrgID)

		queued, err := q.Dequeue(context.Background(), time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, job.ID, queued)
		repo.AssertExpectations(t)
	})

	t.Run("rejects empty org", func(t *testing.T) {
		repo := new(MockJobRepository)
		service := newTestJobService(repo, queue.NewMemoryJobQueue(1))

		_, err := service.EnqueueJob(context.Background(), uuid.Nil, jobs.JobKindSEOAudit, nil)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("queue push failure is not fatal", func(t *testing.T) {
		repo := new(MockJobRepository)
		q := queue.NewMemoryJobQueue(1)
		require.NoError(t, q.Enqueue(context.Background(), uuid.New()))
		service := newTestJobService(repo, q)

		repo.On("Save", mock.Anything, mock.AnythingOfType("*jobs.Job")).Return(nil)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		job, err := service.EnqueueJob(ctx, uuid.New(), jobs.JobKindCampaignSend, nil)

		require.NoError(t, err)
		assert.NotNil(t, job)
	})
}

func TestJobService_Cancel(t *testing.T) {
	t.Run("cancels a pending job", func(t *testing.T) {
		repo := new(MockJobRepository)
		service := newTestJobService(repo, queue.NewMemoryJobQueue(1))

		orgID := uuid.New()
		job, err := jobs.NewJob(orgID, jobs.JobKindCampaignSend, nil)
		require.NoError(t, err)

		repo.On("FindByIDForOrg", mock.Anything, orgID, job.ID).Return(job, nil)
		repo.On("SaveWithLock", mock.Anything, job).Return(nil)

		cancelled, err := service.Cancel(context.Background(), orgID, job.ID)

		require.NoError(t, err)
		assert.Equal(t, jobs.JobStatusCancelled, cancelled.Status)
		assert.NotNil(t, cancelled.FinishedAt)
	})

	t.Run("refuses a running job", func(t *testing.T) {
		repo := new(MockJobRepository)
		service := newTestJobService(repo, queue.NewMemoryJobQueue(1))

		orgID := uuid.New()
		job, err := jobs.NewJob(orgID, jobs.JobKindCampaignSend, nil)
		require.NoError(t, err)
		job.RunAt = time.Now().Add(-time.Second)
		require.NoError(t, job.Start())

		repo.On("FindByIDForOrg", mock.Anything, orgID, job.ID).Return(job, nil)

		_, err = service.Cancel(context.Background(), orgID, job.ID)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("not found passes through", func(t *testing.T) {
		repo := new(MockJobRepository)
		service := newTestJobService(repo, queue.NewMemoryJobQueue(1))

		orgID := uuid.New()
		jobID := uuid.New()
		repo.On("FindByIDForOrg", mock.Anything, orgID, jobID).Return(nil, shared.ErrNotFound)

		_, err := service.Cancel(context.Background(), orgID, jobID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestJobService_Retry(t *testing.T) {
	t.Run("requeues a failed job", func(t *testing.T) {
		repo := new(MockJobRepository)
		q := queue.NewMemoryJobQueue(8)
		service := newTestJobService(repo, q)

		orgID := uuid.New()
		job, err := jobs.NewJob(orgID, jobs.JobKindStoreSync, nil)
		require.NoError(t, err)
		job.RunAt = time.Now().Add(-time.Second)
		job.MaxAttempts = 1
		require.NoError(t, job.Start())
		retrying, err := job.Fail("boom")
		require.NoError(t, err)
		require.False(t, retrying)

		repo.On("FindByIDForOrg", mock.Anything, orgID, job.ID).Return(job, nil)
		repo.On("SaveWithLock", mock.Anything, job).Return(nil)

		retried, err := service.Retry(context.Background(), orgID, job.ID)

		require.NoError(t, err)
		assert.Equal(t, jobs.JobStatusPending, retried.Status)
		assert.Equal(t, 0, retried.Attempts)

		queued, err := q.Dequeue(context.Background(), time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, job.ID, queued)
	})

	t.Run("refuses a completed job", func(t *testing.T) {
		repo := new(MockJobRepository)
		service := newTestJobService(repo, queue.NewMemoryJobQueue(1))

		orgID := uuid.New()
		job, err := jobs.NewJob(orgID, jobs.JobKindStoreSync, nil)
		require.NoError(t, err)
		job.RunAt = time.Now().Add(-time.Second)
		require.NoError(t, job.Start())
		require.NoError(t, job.Complete(`{"ok":true}`))

		repo.On("FindByIDForOrg", mock.Anything, orgID, job.ID).Return(job, nil)

		_, err = service.Retry(context.Background(), orgID, job.ID)

		assert.Error(t, err)
	})
}
