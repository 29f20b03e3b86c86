package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceInput carries the fields needed to draft an invoice
type CreateInvoiceInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	ContactID uuid.UUID
	ProjectID *uuid.UUID
	Currency  string
	Memo      string
}

// UpdateInvoiceInput edits a draft invoice
type UpdateInvoiceInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	Currency  string
	Memo      string
}

// AddItemInput appends a billed line to a draft invoice
type AddItemInput struct {
	OrgID       uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// IssueInvoiceInput sends a draft invoice to its contact
type IssueInvoiceInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	DueDate   *time.Time
	Message   string
}

// PayByTokenInput charges an issued invoice through its public link.
// SourceID is the card nonce produced by Square's Web Payments SDK.
type PayByTokenInput struct {
	Token    string
	SourceID string
}

// PaymentResult is returned after a successful public payment
type PaymentResult struct {
	InvoiceID  uuid.UUID
	PaymentRef string
	ReceiptURL string
	AmountDue  decimal.Decimal
	Currency   string
}

// GatewayCallbackInput carries the fields of a Square payment webhook.
// Reference is the reference_id echoed back by Square, which holds the
// invoice payment token.
type GatewayCallbackInput struct {
	PaymentID string
	Reference string
	Status    string
}

// VoidInvoiceInput cancels an invoice that will never be collected
type VoidInvoiceInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	Reason    string
}
