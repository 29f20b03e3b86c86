package messaging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	domain "github.com/agencyhub/backend/internal/domain/messaging"
	"github.com/agencyhub/backend/internal/domain/shared"
)

// MockConversationRepository is a mock implementation of messaging.ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Save(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationRepository) SaveWithLock(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Conversation], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Conversation]), args.Error(1)
}

func (m *MockConversationRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Conversation], error) {
	args := m.Called(ctx, orgID, contactID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Conversation]), args.Error(1)
}

func (m *MockConversationRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of messaging.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByConversation(ctx context.Context, conversationID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Message], error) {
	args := m.Called(ctx, conversationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Message]), args.Error(1)
}

func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactFinder mocks only the contact lookup the messaging flow needs
type MockContactFinder struct {
	crm.ContactRepository
	mock.Mock
}

func (m *MockContactFinder) FindByID(ctx context.Context, orgID, id uuid.UUID) (*crm.Contact, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

type messagingServiceMocks struct {
	conversationRepo *MockConversationRepository
	messageRepo      *MockMessageRepository
	contactRepo      *MockContactFinder
}

func newTestMessagingService() (*MessagingService, *messagingServiceMocks) {
	m := &messagingServiceMocks{
		conversationRepo: new(MockConversationRepository),
		messageRepo:      new(MockMessageRepository),
		contactRepo:      new(MockContactFinder),
	}
	svc := NewMessagingService(m.conversationRepo, m.messageRepo, m.contactRepo, zap.NewNop())
	return svc, m
}

func openConversation(t *testing.T, orgID, contactID uuid.UUID) *domain.Conversation {
	t.Helper()
	conversation, err := domain.NewConversation(orgID, contactID, "Launch checklist")
	require.NoError(t, err)
	return conversation
}

func TestMessagingService_Start(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	contactID := uuid.New()
	creatorID := uuid.New()

	t.Run("opens a thread with a first message", func(t *testing.T) {
		svc, m := newTestMessagingService()

		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(&crm.Contact{}, nil)
		m.conversationRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Conversation")).Return(nil)
		m.messageRepo.On("Save", ctx, mock.MatchedBy(func(msg *domain.Message) bool {
			return msg.SenderID == creatorID && msg.Body == "Kickoff is Monday."
		})).Return(nil)

		conversation, err := svc.Start(ctx, StartConversationInput{
			OrgID:     orgID,
			CreatedBy: creatorID,
			ContactID: contactID,
			Subject:   "Launch checklist",
			Body:      "Kickoff is Monday.",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ConversationStatusOpen, conversation.Status)
		require.NotNil(t, conversation.LastMessageAt)
		m.messageRepo.AssertExpectations(t)
	})

	t.Run("an empty body opens the thread without a message", func(t *testing.T) {
		svc, m := newTestMessagingService()

		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(&crm.Contact{}, nil)
		m.conversationRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Conversation")).Return(nil)

		conversation, err := svc.Start(ctx, StartConversationInput{
			OrgID:     orgID,
			CreatedBy: creatorID,
			ContactID: contactID,
			Subject:   "Launch checklist",
		})

		require.NoError(t, err)
		assert.Nil(t, conversation.LastMessageAt)
		m.messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails when the contact does not exist", func(t *testing.T) {
		svc, m := newTestMessagingService()
		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(nil, shared.ErrNotFound)

		_, err := svc.Start(ctx, StartConversationInput{
			OrgID:     orgID,
			CreatedBy: creatorID,
			ContactID: contactID,
			Subject:   "Launch checklist",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONTACT_NOT_FOUND", domainErr.Code)
	})
}

func TestMessagingService_Post(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	senderID := uuid.New()

	t.Run("appends to an open thread", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversation := openConversation(t, orgID, uuid.New())

		m.conversationRepo.On("FindByID", ctx, orgID, conversation.ID).Return(conversation, nil)
		m.conversationRepo.On("SaveWithLock", ctx, conversation).Return(nil)
		m.messageRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Message")).Return(nil)

		message, err := svc.Post(ctx, PostMessageInput{
			OrgID:          orgID,
			ConversationID: conversation.ID,
			SenderID:       senderID,
			Body:           "Sending the revised estimate today.",
		})

		require.NoError(t, err)
		assert.Equal(t, conversation.ID, message.ConversationID)
		assert.Equal(t, senderID, message.SenderID)
		require.NotNil(t, conversation.LastMessageAt)
	})

	t.Run("posting into a closed thread reopens it", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversation := openConversation(t, orgID, uuid.New())
		require.NoError(t, conversation.Close())

		m.conversationRepo.On("FindByID", ctx, orgID, conversation.ID).Return(conversation, nil)
		m.conversationRepo.On("SaveWithLock", ctx, conversation).Return(nil)
		m.messageRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Message")).Return(nil)

		_, err := svc.Post(ctx, PostMessageInput{
			OrgID:          orgID,
			ConversationID: conversation.ID,
			SenderID:       senderID,
			Body:           "One more question.",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ConversationStatusOpen, conversation.Status)
		assert.Nil(t, conversation.ClosedAt)
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversation := openConversation(t, orgID, uuid.New())

		m.conversationRepo.On("FindByID", ctx, orgID, conversation.ID).Return(conversation, nil)

		_, err := svc.Post(ctx, PostMessageInput{
			OrgID:          orgID,
			ConversationID: conversation.ID,
			SenderID:       senderID,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_MESSAGE", domainErr.Code)
		m.messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestMessagingService_ReadTracking(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	readerID := uuid.New()

	t.Run("mark read stamps the other side's messages", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversation := openConversation(t, orgID, uuid.New())

		m.conversationRepo.On("FindByID", ctx, orgID, conversation.ID).Return(conversation, nil)
		m.messageRepo.On("MarkConversationRead", ctx, conversation.ID, readerID).Return(int64(3), nil)

		n, err := svc.MarkRead(ctx, orgID, conversation.ID, readerID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("unread count requires the thread to exist", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversationID := uuid.New()

		m.conversationRepo.On("FindByID", ctx, orgID, conversationID).Return(nil, shared.ErrNotFound)

		_, err := svc.UnreadCount(ctx, orgID, conversationID, readerID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.messageRepo.AssertNotCalled(t, "CountUnread", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMessagingService_CloseReopen(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("close then reopen round-trips", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversation := openConversation(t, orgID, uuid.New())

		m.conversationRepo.On("FindByID", ctx, orgID, conversation.ID).Return(conversation, nil)
		m.conversationRepo.On("SaveWithLock", ctx, conversation).Return(nil)

		closed, err := svc.Close(ctx, orgID, conversation.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ConversationStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedAt)

		reopened, err := svc.Reopen(ctx, orgID, conversation.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ConversationStatusOpen, reopened.Status)
		assert.Nil(t, reopened.ClosedAt)
	})

	t.Run("closing twice fails", func(t *testing.T) {
		svc, m := newTestMessagingService()
		conversation := openConversation(t, orgID, uuid.New())
		require.NoError(t, conversation.Close())

		m.conversationRepo.On("FindByID", ctx, orgID, conversation.ID).Return(conversation, nil)

		_, err := svc.Close(ctx, orgID, conversation.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_CLOSED", domainErr.Code)
	})
}
