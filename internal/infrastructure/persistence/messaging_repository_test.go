package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencyhub/backend/internal/domain/messaging"
	"github.com/agencyhub/backend/internal/domain/shared"
)

func setupMessagingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&messaging.Conversation{}, &messaging.Message{}))
	return db
}

func newConversation(t *testing.T, orgID uuid.UUID, subject string) *messaging.Conversation {
	t.Helper()
	conversation, err := messaging.NewConversation(orgID, uuid.New(), subject)
	require.NoError(t, err)
	return conversation
}

func TestGormConversationRepository_SaveAndFind(t *testing.T) {
	db := setupMessagingTestDB(t)
	repo := NewGormConversationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	conversation := newConversation(t, orgID, "Homepage feedback")
	require.NoError(t, repo.Save(ctx, conversation))

	t.Run("finds saved conversation within its organization", func(t *testing.T) {
		found, err := repo.FindByID(ctx, orgID, conversation.ID)

		require.NoError(t, err)
		assert.Equal(t, conversation.ID, found.ID)
		assert.Equal(t, "Homepage feedback", found.Subject)
		assert.Equal(t, messaging.ConversationStatusOpen, found.Status)
	})

	t.Run("does not leak across organizations", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), conversation.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormConversationRepository_FindByContact(t *testing.T) {
	db := setupMessagingTestDB(t)
	repo := NewGormConversationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	mine := newConversation(t, orgID, "Invoice question")
	other := newConversation(t, orgID, "Scope change")
	require.NoError(t, repo.Save(ctx, mine))
	require.NoError(t, repo.Save(ctx, other))

	page, err := repo.FindByContact(ctx, orgID, mine.ContactID, shared.DefaultFilter())

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.Total)
}

func TestGormConversationRepository_Pagination(t *testing.T) {
	db := setupMessagingTestDB(t)
	repo := NewGormConversationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	for _, subject := range []string{"First thread", "Second thread", "Third thread"} {
		require.NoError(t, repo.Save(ctx, newConversation(t, orgID, subject)))
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 2

	page, err := repo.FindAll(ctx, orgID, filter)

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestGormConversationRepository_SaveWithLock(t *testing.T) {
	db := setupMessagingTestDB(t)
	repo := NewGormConversationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	conversation := newConversation(t, orgID, "Launch plan")
	require.NoError(t, repo.Save(ctx, conversation))

	stale, err := repo.FindByID(ctx, orgID, conversation.ID)
	require.NoError(t, err)

	require.NoError(t, conversation.Close())
	require.NoError(t, repo.SaveWithLock(ctx, conversation))

	require.NoError(t, stale.Close())
	err = repo.SaveWithLock(ctx, stale)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormConversationRepository_Delete(t *testing.T) {
	db := setupMessagingTestDB(t)
	conversations := NewGormConversationRepository(db)
	messages := NewGormMessageRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	conversation := newConversation(t, orgID, "Wrap up")
	message, err := conversation.PostMessage(conversation.ContactID, "All done?")
	require.NoError(t, err)
	require.NoError(t, conversations.Save(ctx, conversation))
	require.NoError(t, messages.Save(ctx, message))

	require.NoError(t, conversations.Delete(ctx, orgID, conversation.ID))

	_, err = conversations.FindByID(ctx, orgID, conversation.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = messages.FindByID(ctx, message.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("deleting a missing conversation reports not found", func(t *testing.T) {
		err := conversations.Delete(ctx, orgID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormMessageRepository_ReadTracking(t *testing.T) {
	db := setupMessagingTestDB(t)
	conversations := NewGormConversationRepository(db)
	messages := NewGormMessageRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	conversation := newConversation(t, orgID, "Kickoff notes")
	require.NoError(t, conversations.Save(ctx, conversation))

	teamMember := uuid.New()
	client := conversation.ContactID
	for _, body := range []string{"Welcome aboard", "Here is the timeline"} {
		message, err := conversation.PostMessage(teamMember, body)
		require.NoError(t, err)
		require.NoError(t, messages.Save(ctx, message))
	}
	reply, err := conversation.PostMessage(client, "Looks great")
	require.NoError(t, err)
	require.NoError(t, messages.Save(ctx, reply))

	unread, err := messages.CountUnread(ctx, conversation.ID, client)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	marked, err := messages.MarkConversationRead(ctx, conversation.ID, client)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err = messages.CountUnread(ctx, conversation.ID, client)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// The client's own reply stays untouched for the team member
	unread, err = messages.CountUnread(ctx, conversation.ID, teamMember)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
