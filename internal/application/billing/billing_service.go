// Package billing implements invoicing and the public payment flow
// backed by Square.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/billing"
	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
	"github.com/agencyhub/backend/internal/infrastructure/payment"
)

// overdueSweepBatch bounds how many invoices one sweep pass flips
const overdueSweepBatch = 200

// PaymentGateway charges a card through the payment processor
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req *payment.ChargeRequest) (*payment.ChargeResult, error)
}

// Mailer sends invoice notification email
type Mailer interface {
	Send(ctx context.Context, email *mailer.Email) (string, error)
}

// BillingService handles invoice operations
type BillingService struct {
	invoiceRepo   billing.InvoiceRepository
	contactRepo   crm.ContactRepository
	gateway       PaymentGateway
	mailer        Mailer
	publicBaseURL string
	logger        *zap.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	invoiceRepo billing.InvoiceRepository,
	contactRepo crm.ContactRepository,
	gateway PaymentGateway,
	m Mailer,
	publicBaseURL string,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		invoiceRepo:   invoiceRepo,
		contactRepo:   contactRepo,
		gateway:       gateway,
		mailer:        m,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// Create drafts an invoice with the next sequential number for the year
func (s *BillingService) Create(ctx context.Context, input CreateInvoiceInput) (*billing.Invoice, error) {
	if _, err := s.contactRepo.FindByID(ctx, input.OrgID, input.ContactID); err != nil {
		return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Billed contact does not exist")
	}

	year := time.Now().Year()
	seq, err := s.invoiceRepo.NextSequence(ctx, input.OrgID, year)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(input.OrgID, input.ContactID, billing.NextInvoiceNumber(year, seq))
	if err != nil {
		return nil, err
	}
	invoice.CreatedBy = &input.CreatedBy
	invoice.ProjectID = input.ProjectID
	invoice.Memo = input.Memo
	if input.Currency != "" {
		invoice.Currency = input.Currency
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.logger.Info("invoice created",
		zap.String("org_id", input.OrgID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number))
	return invoice, nil
}

// Get loads an invoice by ID
func (s *BillingService) Get(ctx context.Context, orgID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, orgID, invoiceID)
}

// List lists invoices with filtering and pagination
func (s *BillingService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	return s.invoiceRepo.FindAll(ctx, orgID, filter)
}

// Update edits a draft invoice's memo and currency
func (s *BillingService) Update(ctx context.Context, input UpdateInvoiceInput) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, input.OrgID, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != billing.InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft invoices can be edited")
	}
	if input.Currency != "" {
		invoice.Currency = input.Currency
	}
	invoice.Memo = input.Memo
	invoice.UpdatedAt = time.Now()
	invoice.IncrementVersion()

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// AddItem appends a billed line to a draft invoice
func (s *BillingService) AddItem(ctx context.Context, input AddItemInput) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, input.OrgID, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.AddItem(input.Description, input.Quantity, input.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// RemoveItem removes a billed line from a draft invoice
func (s *BillingService) RemoveItem(ctx context.Context, orgID, invoiceID, itemID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Issue sends the invoice: it mints the payment token and emails the
// contact a public pay link. A failed email does not undo the issue.
func (s *BillingService) Issue(ctx context.Context, input IssueInvoiceInput) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, input.OrgID, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	contact, err := s.contactRepo.FindByID(ctx, input.OrgID, invoice.ContactID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Issue(input.DueDate); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/pay/%s", s.publicBaseURL, invoice.PaymentToken)
	body := fmt.Sprintf("<p>Invoice <strong>%s</strong> for %s %s is ready.</p>",
		invoice.Number, invoice.Total().StringFixed(2), invoice.Currency)
	if input.Message != "" {
		body += fmt.Sprintf("<p>%s</p>", input.Message)
	}
	if invoice.DueDate != nil {
		body += fmt.Sprintf("<p>Due by %s.</p>", invoice.DueDate.Format("January 2, 2006"))
	}
	body += fmt.Sprintf(`<p><a href="%s">Pay this invoice</a></p>`, link)

	if _, err := s.mailer.Send(ctx, &mailer.Email{
		To:      []string{contact.Email},
		Subject: "Invoice " + invoice.Number,
		HTML:    body,
	}); err != nil {
		s.logger.Error("invoice notification email failed",
			zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
	}

	s.logger.Info("invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number))
	return invoice, nil
}

// GetByToken resolves a public payment link
func (s *BillingService) GetByToken(ctx context.Context, token string) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByPaymentToken(ctx, token)
}

// PayByToken charges the invoice through Square and marks it paid. The
// idempotency key is derived from the invoice so Square collapses
// double-submits of the same pay page into one charge.
func (s *BillingService) PayByToken(ctx context.Context, input PayByTokenInput) (*PaymentResult, error) {
	invoice, err := s.invoiceRepo.FindByPaymentToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if !invoice.IsPayable() {
		return nil, shared.NewDomainError("NOT_PAYABLE", "Invoice is not open for payment")
	}
	if input.SourceID == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Payment source cannot be empty")
	}

	charge, err := s.gateway.CreatePayment(ctx, &payment.ChargeRequest{
		SourceID:       input.SourceID,
		IdempotencyKey: fmt.Sprintf("inv-%s-%d", invoice.ID, invoice.Version),
		AmountCents:    invoice.TotalCents(),
		Currency:       invoice.Currency,
		ReferenceID:    invoice.PaymentToken,
		Note:           "Invoice " + invoice.Number,
	})
	if err != nil {
		s.logger.Warn("invoice payment failed",
			zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return nil, err
	}

	// The charge settled; whatever happens to the row from here on, the
	// customer gets a success and the operator reconciles from the log.
	if err := invoice.MarkPaid(charge.PaymentID); err != nil {
		s.logger.Error("charge settled but invoice could not transition, manual reconciliation needed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_id", charge.PaymentID),
			zap.Error(err))
	} else if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		s.logger.Error("charge settled but invoice row not updated, manual reconciliation needed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_id", charge.PaymentID),
			zap.Error(err))
	} else {
		s.logger.Info("invoice paid",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_id", charge.PaymentID))
	}
	return &PaymentResult{
		InvoiceID:  invoice.ID,
		PaymentRef: charge.PaymentID,
		ReceiptURL: charge.ReceiptURL,
		AmountDue:  invoice.Total(),
		Currency:   invoice.Currency,
	}, nil
}

// HandleGatewayCallback reconciles a Square payment notification. It is
// the safety net for charges that settled without the synchronous pay
// path recording them. Notifications for unknown references or already
// settled invoices are acknowledged without effect so the gateway stops
// retrying.
func (s *BillingService) HandleGatewayCallback(ctx context.Context, input GatewayCallbackInput) error {
	if input.Status != payment.StatusCompleted {
		return nil
	}
	if input.Reference == "" || input.PaymentID == "" {
		return shared.NewDomainError("INVALID_CALLBACK", "Callback is missing payment reference")
	}

	invoice, err := s.invoiceRepo.FindByPaymentToken(ctx, input.Reference)
	if err != nil {
		s.logger.Warn("gateway callback for unknown reference",
			zap.String("payment_id", input.PaymentID))
		return nil
	}
	if invoice.Status == billing.InvoiceStatusPaid {
		return nil
	}

	if err := invoice.MarkPaid(input.PaymentID); err != nil {
		return err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		s.logger.Error("charge settled but invoice row not updated, manual reconciliation needed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_id", input.PaymentID),
			zap.Error(err))
		return err
	}

	s.logger.Info("invoice paid via gateway callback",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("payment_id", input.PaymentID))
	return nil
}

// MarkPaid records an out-of-band payment (check, wire) against an invoice
func (s *BillingService) MarkPaid(ctx context.Context, orgID, invoiceID uuid.UUID, paymentRef string) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.MarkPaid(paymentRef); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Void cancels an invoice that will never be collected
func (s *BillingService) Void(ctx context.Context, input VoidInvoiceInput) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, input.OrgID, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Void(input.Reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	s.logger.Info("invoice voided", zap.String("invoice_id", invoice.ID.String()))
	return invoice, nil
}

// Delete removes a draft invoice
func (s *BillingService) Delete(ctx context.Context, orgID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, orgID, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status != billing.InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted")
	}
	return s.invoiceRepo.Delete(ctx, orgID, invoiceID)
}

// SweepOverdue flips sent invoices past their due date to overdue. The
// worker runs it on the sweep ticker.
func (s *BillingService) SweepOverdue(ctx context.Context) error {
	invoices, err := s.invoiceRepo.FindDueBefore(ctx, time.Now(), overdueSweepBatch)
	if err != nil {
		return err
	}
	for _, invoice := range invoices {
		if err := invoice.MarkOverdue(); err != nil {
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			s.logger.Warn("overdue sweep skipped invoice",
				zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		}
	}
	if len(invoices) > 0 {
		s.logger.Info("overdue sweep finished", zap.Int("flagged", len(invoices)))
	}
	return nil
}
