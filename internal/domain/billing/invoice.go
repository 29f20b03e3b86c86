package billing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// PaymentTokenBytes is the entropy of the public payment token
const PaymentTokenBytes = 32

// Invoice is a bill issued to a contact. Once sent it carries a payment
// token that lets the client pay from a plain link without signing in.
type Invoice struct {
	shared.OrgAggregateRoot
	ContactID uuid.UUID     `gorm:"type:uuid;not null;index"`
	ProjectID *uuid.UUID    `gorm:"type:uuid;index"`
	Number    string        `gorm:"type:varchar(30);not null;index"`
	Status    InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	Currency  string        `gorm:"type:varchar(3);not null;default:'USD'"`
	Memo      string        `gorm:"type:text"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	PaymentToken string     `gorm:"type:varchar(64);uniqueIndex"`
	IssuedAt     *time.Time `gorm:"type:timestamptz"`
	DueDate      *time.Time `gorm:"type:date"`
	PaidAt       *time.Time `gorm:"type:timestamptz"`
	PaymentRef   string     `gorm:"type:varchar(100)"` // Processor payment ID, set when the charge settles
	VoidReason   string     `gorm:"type:varchar(300)"`
}

// InvoiceItem is a single billed line on an invoice
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// Amount returns quantity times unit price for this line
func (i *InvoiceItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// NewInvoice creates a draft invoice for a contact
func NewInvoice(orgID, contactID uuid.UUID, number string) (*Invoice, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 30 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 30 characters")
	}

	return &Invoice{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ContactID:        contactID,
		Number:           number,
		Status:           InvoiceStatusDraft,
		Currency:         "USD",
		Items:            []InvoiceItem{},
	}, nil
}

// NextInvoiceNumber formats a sequential invoice number like INV-2026-00042
func NextInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%05d", year, seq)
}

// AddItem appends a billed line to the invoice
func (inv *Invoice) AddItem(description string, quantity, unitPrice decimal.Decimal) error {
	if err := inv.requireDraft(); err != nil {
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

	inv.Items = append(inv.Items, InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   inv.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Position:    len(inv.Items),
	})
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// RemoveItem removes a line by its ID and renumbers the remaining lines
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := inv.requireDraft(); err != nil {
		return err
	}

	for idx, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			for i := range inv.Items {
				inv.Items[i].Position = i
			}
			inv.UpdatedAt = time.Now()
			inv.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// Total returns the sum of all line amounts
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range inv.Items {
		total = total.Add(inv.Items[i].Amount())
	}
	return total
}

// TotalCents returns the total in minor units, which payment processors expect
func (inv *Invoice) TotalCents() int64 {
	return inv.Total().Mul(decimal.NewFromInt(100)).IntPart()
}

// Issue marks the invoice sent, stamps the issue date, and mints its
// public payment token
func (inv *Invoice) Issue(dueDate *time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be issued")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Invoice must have at least one item before issuing")
	}
	if !inv.Total().IsPositive() {
		return shared.NewDomainError("ZERO_INVOICE", "Invoice total must be positive")
	}

	token, err := generatePaymentToken()
	if err != nil {
		return shared.NewDomainError("TOKEN_FAILED", "Failed to generate payment token")
	}

	now := time.Now()
	inv.PaymentToken = token
	inv.Status = InvoiceStatusSent
	inv.IssuedAt = &now
	inv.DueDate = dueDate
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// MarkPaid records a settled payment against the invoice
func (inv *Invoice) MarkPaid(paymentRef string) error {
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusOverdue:
	case InvoiceStatusPaid:
		return shared.NewDomainError("ALREADY_PAID", "Invoice has already been paid")
	default:
		return shared.NewDomainError("INVALID_STATE", "Invoice is not payable")
	}
	if paymentRef == "" {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment reference cannot be empty")
	}

	now := time.Now()
	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &now
	inv.PaymentRef = paymentRef
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// MarkOverdue flags an unpaid invoice past its due date
func (inv *Invoice) MarkOverdue() error {
	if inv.Status != InvoiceStatusSent {
		return shared.NewDomainError("INVALID_STATE", "Only sent invoices can become overdue")
	}
	if inv.DueDate == nil || time.Now().Before(*inv.DueDate) {
		return shared.NewDomainError("NOT_OVERDUE", "Invoice has not reached its due date")
	}

	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// Void cancels the invoice. Paid invoices cannot be voided.
func (inv *Invoice) Void(reason string) error {
	if inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoices cannot be voided")
	}
	if inv.Status == InvoiceStatusVoid {
		return shared.NewDomainError("ALREADY_VOID", "Invoice is already void")
	}

	inv.Status = InvoiceStatusVoid
	inv.VoidReason = reason
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// IsPayable returns true if the invoice can accept a payment
func (inv *Invoice) IsPayable() bool {
	return inv.Status == InvoiceStatusSent || inv.Status == InvoiceStatusOverdue
}

func (inv *Invoice) requireDraft() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("NOT_DRAFT", "Only draft invoices can be modified")
	}
	return nil
}

func generatePaymentToken() (string, error) {
	buf := make([]byte, PaymentTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
