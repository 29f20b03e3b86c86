package messaging

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConversationRepository defines persistence operations for conversations
type ConversationRepository interface {
	Save(ctx context.Context, conversation *Conversation) error
	SaveWithLock(ctx context.Context, conversation *Conversation) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Conversation, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Conversation], error)
	FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Conversation], error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// MessageRepository defines persistence operations for messages
type MessageRepository interface {
	Save(ctx context.Context, message *Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	FindByConversation(ctx context.Context, conversationID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Message], error)
	// MarkConversationRead stamps all unread messages in the thread that were
	// not sent by the reader.
	MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
}
