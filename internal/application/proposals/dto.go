package proposals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProposalInput creates a draft proposal
type CreateProposalInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	ContactID uuid.UUID
	ProjectID *uuid.UUID
	Title     string
	Body      string
	Currency  string
}

// UpdateProposalInput edits a draft proposal
type UpdateProposalInput struct {
	OrgID      uuid.UUID
	ProposalID uuid.UUID
	Title      string
	Body       string
}

// AddItemInput appends a line item to a draft
type AddItemInput struct {
	OrgID       uuid.UUID
	ProposalID  uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// SendProposalInput sends a proposal to its contact
type SendProposalInput struct {
	OrgID      uuid.UUID
	ProposalID uuid.UUID
	ExpiresAt  *time.Time
	Message    string // Optional note included in the notification email
}

// DeclineInput records a client's decline with an optional reason
type DeclineInput struct {
	Token  string
	Reason string
}

// UploadAttachmentInput stores an uploaded file against a proposal
type UploadAttachmentInput struct {
	OrgID       uuid.UUID
	ProposalID  uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}
