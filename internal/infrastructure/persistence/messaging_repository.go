package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/messaging"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormConversationRepository implements messaging.ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Save(ctx context.Context, conversation *messaging.Conversation) error {
	return r.db.WithContext(ctx).Save(conversation).Error
}

func (r *GormConversationRepository) SaveWithLock(ctx context.Context, conversation *messaging.Conversation) error {
	return saveWithLock(r.db.WithContext(ctx), conversation, conversation.ID, conversation.Version)
}

func (r *GormConversationRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*messaging.Conversation, error) {
	var conversation messaging.Conversation
	if err := r.db.WithContext(ctx).
		First(&conversation, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *GormConversationRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*messaging.Conversation], error) {
	query := r.conversationQuery(ctx, orgID, filter)
	return findPage[*messaging.Conversation](query, filter, "last_message_at DESC NULLS LAST", "subject", "status", "last_message_at", "created_at")
}

func (r *GormConversationRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*messaging.Conversation], error) {
	query := r.conversationQuery(ctx, orgID, filter).Where("contact_id = ?", contactID)
	return findPage[*messaging.Conversation](query, filter, "last_message_at DESC NULLS LAST", "subject", "status", "last_message_at", "created_at")
}

func (r *GormConversationRepository) conversationQuery(ctx context.Context, orgID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&messaging.Conversation{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "subject")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "project_id":
			query = query.Where("project_id = ?", value)
		}
	}
	return query
}

// Delete removes a conversation and its messages
func (r *GormConversationRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).
			Delete(&messaging.Message{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&messaging.Conversation{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ messaging.ConversationRepository = (*GormConversationRepository)(nil)

// GormMessageRepository implements messaging.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Save(ctx context.Context, message *messaging.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *GormMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*messaging.Message, error) {
	var message messaging.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *GormMessageRepository) FindByConversation(ctx context.Context, conversationID uuid.UUID, filter shared.Filter) (*shared.Paginated[*messaging.Message], error) {
	query := r.db.WithContext(ctx).
		Model(&messaging.Message{}).
		Where("conversation_id = ?", conversationID)
	return findPage[*messaging.Message](query, filter, "created_at ASC", "created_at")
}

// MarkConversationRead stamps unread messages not sent by the reader
func (r *GormMessageRepository) MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&messaging.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}

// CountUnread counts messages in the thread the reader has not seen
func (r *GormMessageRepository) CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&messaging.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Count(&count).Error
	return count, err
}

var _ messaging.MessageRepository = (*GormMessageRepository)(nil)
