package email

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// List is a named audience of contacts for campaigns
type List struct {
	shared.OrgAggregateRoot
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
}

// ListMember links a contact into a list. Membership carries its own
// subscription state so an unsubscribe from one list leaves the others alone.
type ListMember struct {
	shared.BaseEntity
	ListID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_list_contact"`
	ContactID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_list_contact"`
	Subscribed     bool       `gorm:"not null;default:true"`
	UnsubscribedAt *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (List) TableName() string {
	return "email_lists"
}

// TableName returns the table name for GORM
func (ListMember) TableName() string {
	return "email_list_members"
}

// NewList creates a new email list
func NewList(orgID uuid.UUID, name, description string) (*List, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "List name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "List name cannot exceed 200 characters")
	}

	return &List{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Description:      description,
	}, nil
}

// Update updates the list's name and description
func (l *List) Update(name, description string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "List name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "List name cannot exceed 200 characters")
	}

	l.Name = name
	l.Description = description
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// NewListMember subscribes a contact to a list
func NewListMember(listID, contactID uuid.UUID) (*ListMember, error) {
	if listID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LIST", "List ID cannot be empty")
	}
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}

	return &ListMember{
		BaseEntity: shared.NewBaseEntity(),
		ListID:     listID,
		ContactID:  contactID,
		Subscribed: true,
	}, nil
}

// Unsubscribe marks the membership unsubscribed
func (m *ListMember) Unsubscribe() error {
	if !m.Subscribed {
		return shared.NewDomainError("ALREADY_UNSUBSCRIBED", "Contact is already unsubscribed from this list")
	}

	now := time.Now()
	m.Subscribed = false
	m.UnsubscribedAt = &now
	m.UpdatedAt = now
	return nil
}

// Resubscribe re-enables a previously unsubscribed membership
func (m *ListMember) Resubscribe() error {
	if m.Subscribed {
		return shared.NewDomainError("ALREADY_SUBSCRIBED", "Contact is already subscribed to this list")
	}

	m.Subscribed = true
	m.UnsubscribedAt = nil
	m.UpdatedAt = time.Now()
	return nil
}
