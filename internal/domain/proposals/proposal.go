package proposals

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProposalStatus represents the lifecycle status of a proposal
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusViewed   ProposalStatus = "viewed"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusDeclined ProposalStatus = "declined"
	ProposalStatusExpired  ProposalStatus = "expired"
)

// AcceptTokenBytes is the entropy of the public accept token
const AcceptTokenBytes = 32

// Proposal is a priced offer an agency sends to a contact. Once sent it is
// reachable without authentication through its accept token, so the client
// can view, accept, or decline it from a plain link.
type Proposal struct {
	shared.OrgAggregateRoot
	ContactID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProjectID   *uuid.UUID     `gorm:"type:uuid;index"`
	Title       string         `gorm:"type:varchar(200);not null"`
	Body        string         `gorm:"type:text"` // Rich-text introduction shown above the line items
	Status      ProposalStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	AcceptToken string         `gorm:"type:varchar(64);uniqueIndex"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'USD'"`

	Items []ProposalItem `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`

	SentAt     *time.Time `gorm:"type:timestamptz"`
	ViewedAt   *time.Time `gorm:"type:timestamptz"`
	DecidedAt  *time.Time `gorm:"type:timestamptz"` // When accepted or declined
	ExpiresAt  *time.Time `gorm:"type:timestamptz"`
	DeclineMsg string     `gorm:"type:text"` // Optional reason supplied by the client
}

// ProposalItem is a single priced line on a proposal
type ProposalItem struct {
	shared.BaseEntity
	ProposalID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Proposal) TableName() string {
	return "proposals"
}

// TableName returns the table name for GORM
func (ProposalItem) TableName() string {
	return "proposal_items"
}

// Amount returns quantity times unit price for this line
func (i *ProposalItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// NewProposal creates a draft proposal for a contact
func NewProposal(orgID, contactID uuid.UUID, title, body string) (*Proposal, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	return &Proposal{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ContactID:        contactID,
		Title:            title,
		Body:             body,
		Status:           ProposalStatusDraft,
		Currency:         "USD",
		Items:            []ProposalItem{},
	}, nil
}

// Update updates the proposal's editable content. Only drafts can change.
func (p *Proposal) Update(title, body string) error {
	if err := p.requireDraft(); err != nil {
		return err
	}
	if err := validateTitle(title); err != nil {
		return err
	}

	p.Title = title
	p.Body = body
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// LinkProject attaches the proposal to a project
func (p *Proposal) LinkProject(projectID uuid.UUID) error {
	if err := p.requireDraft(); err != nil {
		return err
	}
	if projectID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}

	p.ProjectID = &projectID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AddItem appends a priced line to the proposal
func (p *Proposal) AddItem(description string, quantity, unitPrice decimal.Decimal) error {
	if err := p.requireDraft(); err != nil {
		return err
	}
	if description == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot exceed 500 characters")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	p.Items = append(p.Items, ProposalItem{
		BaseEntity:  shared.NewBaseEntity(),
		ProposalID:  p.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Position:    len(p.Items),
	})
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// RemoveItem removes a line by its ID and renumbers the remaining lines
func (p *Proposal) RemoveItem(itemID uuid.UUID) error {
	if err := p.requireDraft(); err != nil {
		return err
	}

	for idx, item := range p.Items {
		if item.ID == itemID {
			p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
			for i := range p.Items {
				p.Items[i].Position = i
			}
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Proposal item not found")
}

// Total returns the sum of all line amounts
func (p *Proposal) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Items {
		total = total.Add(p.Items[i].Amount())
	}
	return total
}

// Send marks the proposal sent and mints its public accept token
func (p *Proposal) Send(expiresAt *time.Time) error {
	if p.Status != ProposalStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft proposals can be sent")
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("EMPTY_PROPOSAL", "Proposal must have at least one item before sending")
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return shared.NewDomainError("INVALID_EXPIRY", "Expiry must be in the future")
	}

	token, err := generateAcceptToken()
	if err != nil {
		return shared.NewDomainError("TOKEN_FAILED", "Failed to generate accept token")
	}

	now := time.Now()
	p.AcceptToken = token
	p.Status = ProposalStatusSent
	p.SentAt = &now
	p.ExpiresAt = expiresAt
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// MarkViewed records the first time the client opened the public link.
// Repeat views are a no-op.
func (p *Proposal) MarkViewed() {
	if p.Status != ProposalStatusSent {
		return
	}
	now := time.Now()
	p.Status = ProposalStatusViewed
	p.ViewedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
}

// Accept records the client's acceptance
func (p *Proposal) Accept() error {
	if err := p.requireDecidable(); err != nil {
		return err
	}

	now := time.Now()
	p.Status = ProposalStatusAccepted
	p.DecidedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Decline records the client's rejection with an optional reason
func (p *Proposal) Decline(reason string) error {
	if err := p.requireDecidable(); err != nil {
		return err
	}

	now := time.Now()
	p.Status = ProposalStatusDeclined
	p.DecidedAt = &now
	p.DeclineMsg = reason
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Expire marks an outstanding proposal expired once past its expiry time
func (p *Proposal) Expire() error {
	if p.Status != ProposalStatusSent && p.Status != ProposalStatusViewed {
		return shared.NewDomainError("INVALID_STATE", "Only outstanding proposals can expire")
	}
	if p.ExpiresAt == nil || time.Now().Before(*p.ExpiresAt) {
		return shared.NewDomainError("NOT_EXPIRED", "Proposal has not reached its expiry time")
	}

	p.Status = ProposalStatusExpired
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsExpired returns true if the proposal is past its expiry time
func (p *Proposal) IsExpired() bool {
	return p.ExpiresAt != nil && time.Now().After(*p.ExpiresAt)
}

// IsDecided returns true once the client has accepted or declined
func (p *Proposal) IsDecided() bool {
	return p.Status == ProposalStatusAccepted || p.Status == ProposalStatusDeclined
}

func (p *Proposal) requireDraft() error {
	if p.Status != ProposalStatusDraft {
		return shared.NewDomainError("NOT_DRAFT", "Only draft proposals can be modified")
	}
	return nil
}

func (p *Proposal) requireDecidable() error {
	switch p.Status {
	case ProposalStatusSent, ProposalStatusViewed:
	case ProposalStatusAccepted, ProposalStatusDeclined:
		return shared.NewDomainError("ALREADY_DECIDED", "Proposal has already been decided")
	default:
		return shared.NewDomainError("INVALID_STATE", "Proposal is not open for a decision")
	}
	if p.IsExpired() {
		return shared.NewDomainError("PROPOSAL_EXPIRED", "Proposal has expired")
	}
	return nil
}

func generateAcceptToken() (string, error) {
	buf := make([]byte, AcceptTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func validateTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Proposal title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Proposal title cannot exceed 200 characters")
	}
	return nil
}
