package messaging

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConversationStatus represents whether a thread is open or closed
type ConversationStatus string

const (
	ConversationStatusOpen   ConversationStatus = "open"
	ConversationStatusClosed ConversationStatus = "closed"
)

// MaxMessageLength bounds a single message body
const MaxMessageLength = 10000

// Conversation is a message thread between the agency team and a contact
type Conversation struct {
	shared.OrgAggregateRoot
	ContactID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	ProjectID     *uuid.UUID         `gorm:"type:uuid;index"`
	Subject       string             `gorm:"type:varchar(300);not null"`
	Status        ConversationStatus `gorm:"type:varchar(10);not null;default:'open'"`
	LastMessageAt *time.Time         `gorm:"type:timestamptz;index"`
	ClosedAt      *time.Time         `gorm:"type:timestamptz"`
}

// Message is a single entry in a conversation. SenderID references the
// contact (client or team member) who wrote it.
type Message struct {
	shared.BaseEntity
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Body           string     `gorm:"type:text;not null"`
	ReadAt         *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// NewConversation opens a new thread with a contact
func NewConversation(orgID, contactID uuid.UUID, subject string) (*Conversation, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 300 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 300 characters")
	}

	return &Conversation{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ContactID:        contactID,
		Subject:          subject,
		Status:           ConversationStatusOpen,
	}, nil
}

// LinkProject attaches the thread to a project
func (c *Conversation) LinkProject(projectID uuid.UUID) error {
	if projectID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}

	c.ProjectID = &projectID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// PostMessage appends a message. Posting into a closed thread reopens it.
func (c *Conversation) PostMessage(senderID uuid.UUID, body string) (*Message, error) {
	if senderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SENDER", "Sender ID cannot be empty")
	}
	if body == "" {
		return nil, shared.NewDomainError("EMPTY_MESSAGE", "Message body cannot be empty")
	}
	if len(body) > MaxMessageLength {
		return nil, shared.NewDomainError("MESSAGE_TOO_LONG", "Message body exceeds the length limit")
	}

	now := time.Now()
	if c.Status == ConversationStatusClosed {
		c.Status = ConversationStatusOpen
		c.ClosedAt = nil
	}
	c.LastMessageAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	return &Message{
		BaseEntity:     shared.NewBaseEntity(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Body:           body,
	}, nil
}

// Close closes the thread
func (c *Conversation) Close() error {
	if c.Status == ConversationStatusClosed {
		return shared.NewDomainError("ALREADY_CLOSED", "Conversation is already closed")
	}

	now := time.Now()
	c.Status = ConversationStatusClosed
	c.ClosedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// Reopen reopens a closed thread
func (c *Conversation) Reopen() error {
	if c.Status == ConversationStatusOpen {
		return shared.NewDomainError("ALREADY_OPEN", "Conversation is already open")
	}

	c.Status = ConversationStatusOpen
	c.ClosedAt = nil
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MarkRead stamps the message as read. Re-reading keeps the first timestamp.
func (m *Message) MarkRead() {
	if m.ReadAt != nil {
		return
	}
	now := time.Now()
	m.ReadAt = &now
	m.UpdatedAt = now
}
