package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockContactRepository(t *testing.T) (*GormContactRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormContactRepository(gormDB), mock, mockDB
}

func TestGormContactRepository_FindByID(t *testing.T) {
	t.Run("finds existing contact", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contactID := uuid.New()
		orgID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "org_id", "email", "first_name", "last_name", "kind", "role", "status"}).
			AddRow(contactID, orgID, "ada@example.com", "Ada", "Lovelace", "client", "client", "active")

		mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE org_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orgID, contactID, 1).
			WillReturnRows(rows)

		contact, err := repo.FindByID(context.Background(), orgID, contactID)

		assert.NoError(t, err)
		require.NotNil(t, contact)
		assert.Equal(t, contactID, contact.ID)
		assert.Equal(t, "ada@example.com", contact.Email)
		assert.Equal(t, crm.ContactKindClient, contact.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing contact", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contactID := uuid.New()
		orgID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE org_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orgID, contactID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		contact, err := repo.FindByID(context.Background(), orgID, contactID)

		assert.Nil(t, contact)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormContactRepository_FindByEmail(t *testing.T) {
	t.Run("lowercases the email before matching", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contactID := uuid.New()
		orgID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "org_id", "email"}).
			AddRow(contactID, orgID, "ada@example.com")

		mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE org_id = \$1 AND email = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orgID, "ada@example.com", 1).
			WillReturnRows(rows)

		contact, err := repo.FindByEmail(context.Background(), orgID, "Ada@Example.com")

		assert.NoError(t, err)
		require.NotNil(t, contact)
		assert.Equal(t, contactID, contact.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormContactRepository_FindPrincipalByEmail(t *testing.T) {
	t.Run("skips contacts without credentials", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contactID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "email", "password_hash"}).
			AddRow(contactID, "owner@agency.test", "$2a$10$hash")

		mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE email = \$1 AND password_hash <> '' ORDER BY created_at ASC,.* LIMIT .*`).
			WithArgs("owner@agency.test", 1).
			WillReturnRows(rows)

		contact, err := repo.FindPrincipalByEmail(context.Background(), "owner@agency.test")

		assert.NoError(t, err)
		require.NotNil(t, contact)
		assert.Equal(t, contactID, contact.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no principal matches", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE email = \$1 AND password_hash <> ''`).
			WithArgs("ghost@agency.test", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		contact, err := repo.FindPrincipalByEmail(context.Background(), "ghost@agency.test")

		assert.Nil(t, contact)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormContactRepository_ExistsByEmail(t *testing.T) {
	repo, mock, mockDB := newMockContactRepository(t)
	defer mockDB.Close()

	orgID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "contacts" WHERE org_id = \$1 AND email = \$2`).
		WithArgs(orgID, "ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), orgID, "Ada@Example.com")

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormContactRepository_CountByKind(t *testing.T) {
	repo, mock, mockDB := newMockContactRepository(t)
	defer mockDB.Close()

	orgID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "contacts" WHERE org_id = \$1 AND kind = \$2`).
		WithArgs(orgID, "prospect").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByKind(context.Background(), orgID, crm.ContactKindProspect)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormContactRepository_Delete(t *testing.T) {
	t.Run("deletes existing contact", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contactID := uuid.New()
		orgID := uuid.New()

		mock.ExpectExec(`DELETE FROM "contacts" WHERE org_id = \$1 AND id = \$2`).
			WithArgs(orgID, contactID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), orgID, contactID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contactID := uuid.New()
		orgID := uuid.New()

		mock.ExpectExec(`DELETE FROM "contacts" WHERE org_id = \$1 AND id = \$2`).
			WithArgs(orgID, contactID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), orgID, contactID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormContactRepository_SaveWithLock(t *testing.T) {
	t.Run("reports a conflict when the version check misses", func(t *testing.T) {
		repo, mock, mockDB := newMockContactRepository(t)
		defer mockDB.Close()

		contact, err := crm.NewContact(uuid.New(), "ada@example.com", "Ada", "Lovelace", crm.ContactKindClient)
		require.NoError(t, err)
		contact.IncrementVersion()

		mock.ExpectExec(`UPDATE "contacts" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), contact)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
