package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/billing"
	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
	"github.com/agencyhub/backend/internal/infrastructure/payment"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByPaymentToken(ctx context.Context, token string) (*billing.Invoice, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	args := m.Called(ctx, orgID, contactID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStatus(ctx context.Context, orgID uuid.UUID, status billing.InvoiceStatus, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	args := m.Called(ctx, orgID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*billing.Invoice, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequence(ctx context.Context, orgID uuid.UUID, year int) (int64, error) {
	args := m.Called(ctx, orgID, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status billing.InvoiceStatus) (int64, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SumPaidAmount(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockContactFinder stubs the contact lookups billing needs
type MockContactFinder struct {
	mock.Mock
	crm.ContactRepository
}

func (m *MockContactFinder) FindByID(ctx context.Context, orgID, id uuid.UUID) (*crm.Contact, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req *payment.ChargeRequest) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email *mailer.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func newTestBillingService(invoiceRepo billing.InvoiceRepository, contactRepo crm.ContactRepository, gateway PaymentGateway, m Mailer) *BillingService {
	return NewBillingService(invoiceRepo, contactRepo, gateway, m, "https://app.agency.test", zap.NewNop())
}

func issuedInvoice(t *testing.T, orgID, contactID uuid.UUID) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(orgID, contactID, "INV-2026-00001")
	require.NoError(t, err)
	require.NoError(t, invoice.AddItem("Design retainer", decimal.NewFromInt(1), decimal.NewFromFloat(1500)))
	require.NoError(t, invoice.Issue(nil))
	return invoice
}

func TestBillingService_Create(t *testing.T) {
	orgID := uuid.New()
	contactID := uuid.New()

	t.Run("drafts an invoice with a sequential number", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		contactRepo := new(MockContactFinder)
		service := newTestBillingService(invoiceRepo, contactRepo, new(MockPaymentGateway), new(MockMailer))

		client, err := crm.NewContact(orgID, "client@acme.test", "Cleo", "", crm.ContactKindClient)
		require.NoError(t, err)

		contactRepo.On("FindByID", mock.Anything, orgID, contactID).Return(client, nil)
		invoiceRepo.On("NextSequence", mock.Anything, orgID, time.Now().Year()).Return(int64(42), nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		invoice, err := service.Create(context.Background(), CreateInvoiceInput{
			OrgID:     orgID,
			CreatedBy: uuid.New(),
			ContactID: contactID,
			Memo:      "March retainer",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.NextInvoiceNumber(time.Now().Year(), 42), invoice.Number)
		assert.Equal(t, billing.InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, "March retainer", invoice.Memo)
	})

	t.Run("rejects an unknown contact", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		contactRepo := new(MockContactFinder)
		service := newTestBillingService(invoiceRepo, contactRepo, new(MockPaymentGateway), new(MockMailer))

		contactRepo.On("FindByID", mock.Anything, orgID, contactID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), CreateInvoiceInput{
			OrgID:     orgID,
			ContactID: contactID,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONTACT_NOT_FOUND", domainErr.Code)
	})
}

func TestBillingService_Issue(t *testing.T) {
	orgID := uuid.New()
	contactID := uuid.New()

	t.Run("mints a token and emails the pay link", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		contactRepo := new(MockContactFinder)
		m := new(MockMailer)
		service := newTestBillingService(invoiceRepo, contactRepo, new(MockPaymentGateway), m)

		invoice, err := billing.NewInvoice(orgID, contactID, "INV-2026-00007")
		require.NoError(t, err)
		require.NoError(t, invoice.AddItem("SEO audit", decimal.NewFromInt(1), decimal.NewFromFloat(900)))

		client, err := crm.NewContact(orgID, "client@acme.test", "Cleo", "", crm.ContactKindClient)
		require.NoError(t, err)

		invoiceRepo.On("FindByID", mock.Anything, orgID, invoice.ID).Return(invoice, nil)
		contactRepo.On("FindByID", mock.Anything, orgID, contactID).Return(client, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		m.On("Send", mock.Anything, mock.MatchedBy(func(e *mailer.Email) bool {
			return len(e.To) == 1 && e.To[0] == "client@acme.test"
		})).Return("msg-1", nil)

		issued, err := service.Issue(context.Background(), IssueInvoiceInput{
			OrgID:     orgID,
			InvoiceID: invoice.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusSent, issued.Status)
		assert.NotEmpty(t, issued.PaymentToken)
		m.AssertExpectations(t)
	})

	t.Run("issue survives a failed email", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		contactRepo := new(MockContactFinder)
		m := new(MockMailer)
		service := newTestBillingService(invoiceRepo, contactRepo, new(MockPaymentGateway), m)

		invoice, err := billing.NewInvoice(orgID, contactID, "INV-2026-00008")
		require.NoError(t, err)
		require.NoError(t, invoice.AddItem("SEO audit", decimal.NewFromInt(1), decimal.NewFromFloat(900)))

		client, err := crm.NewContact(orgID, "client@acme.test", "Cleo", "", crm.ContactKindClient)
		require.NoError(t, err)

		invoiceRepo.On("FindByID", mock.Anything, orgID, invoice.ID).Return(invoice, nil)
		contactRepo.On("FindByID", mock.Anything, orgID, contactID).Return(client, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		m.On("Send", mock.Anything, mock.Anything).Return("", errors.New("provider down"))

		issued, err := service.Issue(context.Background(), IssueInvoiceInput{
			OrgID:     orgID,
			InvoiceID: invoice.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusSent, issued.Status)
	})

	t.Run("refuses an empty invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		contactRepo := new(MockContactFinder)
		service := newTestBillingService(invoiceRepo, contactRepo, new(MockPaymentGateway), new(MockMailer))

		invoice, err := billing.NewInvoice(orgID, contactID, "INV-2026-00009")
		require.NoError(t, err)

		client, err := crm.NewContact(orgID, "client@acme.test", "Cleo", "", crm.ContactKindClient)
		require.NoError(t, err)

		invoiceRepo.On("FindByID", mock.Anything, orgID, invoice.ID).Return(invoice, nil)
		contactRepo.On("FindByID", mock.Anything, orgID, contactID).Return(client, nil)

		_, err = service.Issue(context.Background(), IssueInvoiceInput{
			OrgID:     orgID,
			InvoiceID: invoice.ID,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_INVOICE", domainErr.Code)
	})
}

func TestBillingService_PayByToken(t *testing.T) {
	orgID := uuid.New()
	contactID := uuid.New()

	t.Run("charges square and marks the invoice paid", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		gateway := new(MockPaymentGateway)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), gateway, new(MockMailer))

		invoice := issuedInvoice(t, orgID, contactID)

		invoiceRepo.On("FindByPaymentToken", mock.Anything, invoice.PaymentToken).Return(invoice, nil)
		gateway.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req *payment.ChargeRequest) bool {
			return req.AmountCents == 150000 && req.Currency == "USD" && req.SourceID == "cnon:card-nonce"
		})).Return(&payment.ChargeResult{PaymentID: "sq-pay-1", Status: "COMPLETED", ReceiptURL: "https://sq.test/r/1"}, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		result, err := service.PayByToken(context.Background(), PayByTokenInput{
			Token:    invoice.PaymentToken,
			SourceID: "cnon:card-nonce",
		})

		require.NoError(t, err)
		assert.Equal(t, "sq-pay-1", result.PaymentRef)
		assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
		assert.Equal(t, "sq-pay-1", invoice.PaymentRef)
	})

	t.Run("rejects a paid invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		gateway := new(MockPaymentGateway)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), gateway, new(MockMailer))

		invoice := issuedInvoice(t, orgID, contactID)
		require.NoError(t, invoice.MarkPaid("sq-pay-0"))

		invoiceRepo.On("FindByPaymentToken", mock.Anything, invoice.PaymentToken).Return(invoice, nil)

		_, err := service.PayByToken(context.Background(), PayByTokenInput{
			Token:    invoice.PaymentToken,
			SourceID: "cnon:card-nonce",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_PAYABLE", domainErr.Code)
		gateway.AssertNotCalled(t, "CreatePayment")
	})

	t.Run("gateway failure leaves the invoice open", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		gateway := new(MockPaymentGateway)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), gateway, new(MockMailer))

		invoice := issuedInvoice(t, orgID, contactID)

		invoiceRepo.On("FindByPaymentToken", mock.Anything, invoice.PaymentToken).Return(invoice, nil)
		gateway.On("CreatePayment", mock.Anything, mock.Anything).Return(nil, errors.New("card declined"))

		_, err := service.PayByToken(context.Background(), PayByTokenInput{
			Token:    invoice.PaymentToken,
			SourceID: "cnon:card-nonce",
		})

		assert.Error(t, err)
		assert.Equal(t, billing.InvoiceStatusSent, invoice.Status)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("settled charge survives a failed row update", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		gateway := new(MockPaymentGateway)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), gateway, new(MockMailer))

		invoice := issuedInvoice(t, orgID, contactID)

		invoiceRepo.On("FindByPaymentToken", mock.Anything, invoice.PaymentToken).Return(invoice, nil)
		gateway.On("CreatePayment", mock.Anything, mock.Anything).
			Return(&payment.ChargeResult{PaymentID: "sq-pay-9", Status: "COMPLETED"}, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(errors.New("db connection lost"))

		result, err := service.PayByToken(context.Background(), PayByTokenInput{
			Token:    invoice.PaymentToken,
			SourceID: "cnon:card-nonce",
		})

		require.NoError(t, err, "the customer was charged, so the call must succeed")
		assert.Equal(t, "sq-pay-9", result.PaymentRef)
	})
}

func TestBillingService_SweepOverdue(t *testing.T) {
	orgID := uuid.New()
	contactID := uuid.New()

	t.Run("flips past-due invoices to overdue", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), new(MockPaymentGateway), new(MockMailer))

		pastDue := time.Now().Add(-48 * time.Hour)
		invoice, err := billing.NewInvoice(orgID, contactID, "INV-2026-00010")
		require.NoError(t, err)
		require.NoError(t, invoice.AddItem("Hosting", decimal.NewFromInt(1), decimal.NewFromFloat(50)))
		require.NoError(t, invoice.Issue(&pastDue))

		invoiceRepo.On("FindDueBefore", mock.Anything, mock.AnythingOfType("time.Time"), 200).
			Return([]*billing.Invoice{invoice}, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		err = service.SweepOverdue(context.Background())

		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusOverdue, invoice.Status)
	})

	t.Run("nothing due is a no-op", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), new(MockPaymentGateway), new(MockMailer))

		invoiceRepo.On("FindDueBefore", mock.Anything, mock.AnythingOfType("time.Time"), 200).
			Return([]*billing.Invoice{}, nil)

		require.NoError(t, service.SweepOverdue(context.Background()))
		invoiceRepo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestBillingService_HandleGatewayCallback(t *testing.T) {
	orgID := uuid.New()
	contactID := uuid.New()

	t.Run("settles an unpaid invoice from a completed notification", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), new(MockPaymentGateway), new(MockMailer))

		invoice := issuedInvoice(t, orgID, contactID)

		invoiceRepo.On("FindByPaymentToken", mock.Anything, invoice.PaymentToken).Return(invoice, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		err := service.HandleGatewayCallback(context.Background(), GatewayCallbackInput{
			PaymentID: "sq-pay-7",
			Reference: invoice.PaymentToken,
			Status:    payment.StatusCompleted,
		})

		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
		assert.Equal(t, "sq-pay-7", invoice.PaymentRef)
	})

	t.Run("ignores notifications that are not completed", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), new(MockPaymentGateway), new(MockMailer))

		err := service.HandleGatewayCallback(context.Background(), GatewayCallbackInput{
			PaymentID: "sq-pay-8",
			Reference: "tok-any",
			Status:    "PENDING",
		})

		require.NoError(t, err)
		invoiceRepo.AssertNotCalled(t, "FindByPaymentToken", mock.Anything, mock.Anything)
	})

	t.Run("acknowledges an already settled invoice without touching it", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), new(MockPaymentGateway), new(MockMailer))

		invoice := issuedInvoice(t, orgID, contactID)
		require.NoError(t, invoice.MarkPaid("sq-pay-earlier"))

		invoiceRepo.On("FindByPaymentToken", mock.Anything, invoice.PaymentToken).Return(invoice, nil)

		err := service.HandleGatewayCallback(context.Background(), GatewayCallbackInput{
			PaymentID: "sq-pay-9",
			Reference: invoice.PaymentToken,
			Status:    payment.StatusCompleted,
		})

		require.NoError(t, err)
		assert.Equal(t, "sq-pay-earlier", invoice.PaymentRef)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("swallows notifications for unknown references", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newTestBillingService(invoiceRepo, new(MockContactFinder), new(MockPaymentGateway), new(MockMailer))

		invoiceRepo.On("FindByPaymentToken", mock.Anything, "tok-unknown").Return(nil, shared.ErrNotFound)

		err := service.HandleGatewayCallback(context.Background(), GatewayCallbackInput{
			PaymentID: "sq-pay-10",
			Reference: "tok-unknown",
			Status:    payment.StatusCompleted,
		})

		require.NoError(t, err)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
