package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
)

func newMockJobRepository(t *testing.T) (*GormJobRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormJobRepository(gormDB), mock, mockDB
}

func TestGormJobRepository_FindByID(t *testing.T) {
	t.Run("finds a job without tenant scoping", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()
		orgID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "org_id", "kind", "status", "payload", "attempts", "max_attempts"}).
			AddRow(jobID, orgID, "seo_audit", "pending", `{"site_id":"x"}`, 0, 3)

		mock.ExpectQuery(`SELECT \* FROM "background_jobs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(jobID, 1).
			WillReturnRows(rows)

		job, err := repo.FindByID(context.Background(), jobID)

		assert.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, jobs.JobKindSEOAudit, job.Kind)
		assert.Equal(t, jobs.JobStatusPending, job.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing job", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "background_jobs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(jobID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		job, err := repo.FindByID(context.Background(), jobID)

		assert.Nil(t, job)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormJobRepository_FindDuePending(t *testing.T) {
	repo, mock, mockDB := newMockJobRepository(t)
	defer mockDB.Close()

	cutoff := time.Now()
	first := uuid.New()
	second := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "kind", "status"}).
		AddRow(first, "campaign_send", "pending").
		AddRow(second, "store_sync", "pending")

	mock.ExpectQuery(`SELECT \* FROM "background_jobs" WHERE status = \$1 AND run_at <= \$2 ORDER BY run_at ASC LIMIT .*`).
		WithArgs("pending", sqlmock.AnyArg(), 10).
		WillReturnRows(rows)

	due, err := repo.FindDuePending(context.Background(), cutoff, 10)

	assert.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, first, due[0].ID)
	assert.Equal(t, second, due[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormJobRepository_FindStuckRunning(t *testing.T) {
	repo, mock, mockDB := newMockJobRepository(t)
	defer mockDB.Close()

	stuckID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "kind", "status"}).
		AddRow(stuckID, "seo_audit", "running")

	mock.ExpectQuery(`SELECT \* FROM "background_jobs" WHERE status = \$1 AND started_at IS NOT NULL AND started_at < \$2 ORDER BY started_at ASC LIMIT .*`).
		WithArgs("running", sqlmock.AnyArg(), 5).
		WillReturnRows(rows)

	stuck, err := repo.FindStuckRunning(context.Background(), time.Now().Add(-10*time.Minute), 5)

	assert.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, stuckID, stuck[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormJobRepository_CountByStatus(t *testing.T) {
	repo, mock, mockDB := newMockJobRepository(t)
	defer mockDB.Close()

	orgID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "background_jobs" WHERE org_id = \$1 AND status = \$2`).
		WithArgs(orgID, "failed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByStatus(context.Background(), orgID, jobs.JobStatusFailed)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormJobRepository_DeleteFinishedBefore(t *testing.T) {
	repo, mock, mockDB := newMockJobRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(`DELETE FROM "background_jobs" WHERE status IN \(\$1,\$2,\$3\) AND updated_at < \$4`).
		WithArgs("completed", "failed", "cancelled", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))

	pruned, err := repo.DeleteFinishedBefore(context.Background(), time.Now().AddDate(0, 0, -30))

	assert.NoError(t, err)
	assert.Equal(t, int64(12), pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormJobRepository_SaveWithLock(t *testing.T) {
	t.Run("persists when the stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		job, err := jobs.NewJob(uuid.New(), jobs.JobKindSEOAudit, nil)
		require.NoError(t, err)
		require.NoError(t, job.Start())

		mock.ExpectExec(`UPDATE "background_jobs" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SaveWithLock(context.Background(), job))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when another worker claimed the job", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		job, err := jobs.NewJob(uuid.New(), jobs.JobKindSEOAudit, nil)
		require.NoError(t, err)
		require.NoError(t, job.Start())

		mock.ExpectExec(`UPDATE "background_jobs" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), job)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
