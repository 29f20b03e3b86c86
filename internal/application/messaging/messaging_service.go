// Package messaging implements conversation threads between the agency
// team and its contacts.
package messaging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/messaging"
	"github.com/agencyhub/backend/internal/domain/shared"
)

// StartConversationInput opens a thread, optionally with a first message
type StartConversationInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	ContactID uuid.UUID
	ProjectID *uuid.UUID
	Subject   string
	Body      string
}

// PostMessageInput appends a message to a thread
type PostMessageInput struct {
	OrgID          uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
}

// MessagingService handles conversations and messages
type MessagingService struct {
	conversationRepo messaging.ConversationRepository
	messageRepo      messaging.MessageRepository
	contactRepo      crm.ContactRepository
	logger           *zap.Logger
}

// NewMessagingService creates a new messaging service
func NewMessagingService(
	conversationRepo messaging.ConversationRepository,
	messageRepo messaging.MessageRepository,
	contactRepo crm.ContactRepository,
	logger *zap.Logger,
) *MessagingService {
	return &MessagingService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		contactRepo:      contactRepo,
		logger:           logger,
	}
}

// Start opens a conversation with a contact
func (s *MessagingService) Start(ctx context.Context, input StartConversationInput) (*messaging.Conversation, error) {
	if _, err := s.contactRepo.FindByID(ctx, input.OrgID, input.ContactID); err != nil {
		return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Contact does not exist")
	}

	conversation, err := messaging.NewConversation(input.OrgID, input.ContactID, input.Subject)
	if err != nil {
		return nil, err
	}
	conversation.SetCreatedBy(input.CreatedBy)
	if input.ProjectID != nil {
		if err := conversation.LinkProject(*input.ProjectID); err != nil {
			return nil, err
		}
	}

	var first *messaging.Message
	if input.Body != "" {
		first, err = conversation.PostMessage(input.CreatedBy, input.Body)
		if err != nil {
			return nil, err
		}
	}

	if err := s.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, err
	}
	if first != nil {
		if err := s.messageRepo.Save(ctx, first); err != nil {
			return nil, err
		}
	}
	s.logger.Info("conversation started",
		zap.String("org_id", input.OrgID.String()),
		zap.String("conversation_id", conversation.ID.String()))
	return conversation, nil
}

// Get loads a conversation by ID
func (s *MessagingService) Get(ctx context.Context, orgID, conversationID uuid.UUID) (*messaging.Conversation, error) {
	return s.conversationRepo.FindByID(ctx, orgID, conversationID)
}

// List lists conversations, most recently active first
func (s *MessagingService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*messaging.Conversation], error) {
	return s.conversationRepo.FindAll(ctx, orgID, filter)
}

// ListByContact lists a contact's conversations
func (s *MessagingService) ListByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*messaging.Conversation], error) {
	return s.conversationRepo.FindByContact(ctx, orgID, contactID, filter)
}

// Post appends a message; posting into a closed thread reopens it
func (s *MessagingService) Post(ctx context.Context, input PostMessageInput) (*messaging.Message, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, input.OrgID, input.ConversationID)
	if err != nil {
		return nil, err
	}
	message, err := conversation.PostMessage(input.SenderID, input.Body)
	if err != nil {
		return nil, err
	}
	if err := s.conversationRepo.SaveWithLock(ctx, conversation); err != nil {
		return nil, err
	}
	if err := s.messageRepo.Save(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Messages pages through a thread's messages
func (s *MessagingService) Messages(ctx context.Context, orgID, conversationID uuid.UUID, filter shared.Filter) (*shared.Paginated[*messaging.Message], error) {
	if _, err := s.conversationRepo.FindByID(ctx, orgID, conversationID); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByConversation(ctx, conversationID, filter)
}

// MarkRead stamps every unread message not sent by the reader
func (s *MessagingService) MarkRead(ctx context.Context, orgID, conversationID, readerID uuid.UUID) (int64, error) {
	if _, err := s.conversationRepo.FindByID(ctx, orgID, conversationID); err != nil {
		return 0, err
	}
	return s.messageRepo.MarkConversationRead(ctx, conversationID, readerID)
}

// UnreadCount returns how many messages the reader has not seen
func (s *MessagingService) UnreadCount(ctx context.Context, orgID, conversationID, readerID uuid.UUID) (int64, error) {
	if _, err := s.conversationRepo.FindByID(ctx, orgID, conversationID); err != nil {
		return 0, err
	}
	return s.messageRepo.CountUnread(ctx, conversationID, readerID)
}

// Close closes the thread
func (s *MessagingService) Close(ctx context.Context, orgID, conversationID uuid.UUID) (*messaging.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, orgID, conversationID)
	if err != nil {
		return nil, err
	}
	if err := conversation.Close(); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.SaveWithLock(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// Reopen reopens a closed thread
func (s *MessagingService) Reopen(ctx context.Context, orgID, conversationID uuid.UUID) (*messaging.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, orgID, conversationID)
	if err != nil {
		return nil, err
	}
	if err := conversation.Reopen(); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.SaveWithLock(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// Delete removes a conversation and its messages
func (s *MessagingService) Delete(ctx context.Context, orgID, conversationID uuid.UUID) error {
	return s.conversationRepo.Delete(ctx, orgID, conversationID)
}
