package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2026-00001")
	require.NoError(t, err)
	return inv
}

func issuedInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv := draftInvoice(t)
	require.NoError(t, inv.AddItem("Monthly retainer", decimal.NewFromInt(1), decimal.NewFromInt(2500)))
	require.NoError(t, inv.Issue(nil))
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		inv := draftInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Empty(t, inv.PaymentToken)
		assert.False(t, inv.IsPayable())
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.New(), "")
		assert.Error(t, err)
	})
}

func TestNextInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-00042", NextInvoiceNumber(2026, 42))
	assert.Equal(t, "INV-2027-00001", NextInvoiceNumber(2027, 1))
}

func TestInvoiceTotals(t *testing.T) {
	inv := draftInvoice(t)
	require.NoError(t, inv.AddItem("Hosting", decimal.NewFromInt(12), decimal.NewFromFloat(29.99)))
	require.NoError(t, inv.AddItem("Setup", decimal.NewFromInt(1), decimal.NewFromFloat(150.00)))

	// 12*29.99 + 150 = 509.88
	assert.True(t, inv.Total().Equal(decimal.NewFromFloat(509.88)), "got %s", inv.Total())
	assert.Equal(t, int64(50988), inv.TotalCents())
}

func TestInvoiceIssue(t *testing.T) {
	t.Run("issuing mints payment token", func(t *testing.T) {
		inv := issuedInvoice(t)
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.Len(t, inv.PaymentToken, PaymentTokenBytes*2)
		assert.NotNil(t, inv.IssuedAt)
		assert.True(t, inv.IsPayable())
	})

	t.Run("empty invoice cannot be issued", func(t *testing.T) {
		inv := draftInvoice(t)
		assert.Error(t, inv.Issue(nil))
	})

	t.Run("zero total cannot be issued", func(t *testing.T) {
		inv := draftInvoice(t)
		require.NoError(t, inv.AddItem("Comp", decimal.NewFromInt(1), decimal.Zero))
		assert.Error(t, inv.Issue(nil))
	})

	t.Run("issued invoice is frozen", func(t *testing.T) {
		inv := issuedInvoice(t)
		assert.Error(t, inv.AddItem("Extra", decimal.NewFromInt(1), decimal.NewFromInt(1)))
		assert.Error(t, inv.Issue(nil))
	})
}

func TestInvoicePayment(t *testing.T) {
	t.Run("mark paid records reference", func(t *testing.T) {
		inv := issuedInvoice(t)
		require.NoError(t, inv.MarkPaid("sq_pay_123"))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "sq_pay_123", inv.PaymentRef)
		assert.NotNil(t, inv.PaidAt)
		assert.False(t, inv.IsPayable())
	})

	t.Run("double payment rejected", func(t *testing.T) {
		inv := issuedInvoice(t)
		require.NoError(t, inv.MarkPaid("sq_pay_1"))
		assert.Error(t, inv.MarkPaid("sq_pay_2"))
	})

	t.Run("payment requires reference", func(t *testing.T) {
		inv := issuedInvoice(t)
		assert.Error(t, inv.MarkPaid(""))
	})

	t.Run("overdue invoice is still payable", func(t *testing.T) {
		inv := issuedInvoice(t)
		past := time.Now().Add(-48 * time.Hour)
		inv.DueDate = &past
		require.NoError(t, inv.MarkOverdue())
		assert.True(t, inv.IsPayable())
		require.NoError(t, inv.MarkPaid("sq_pay_late"))
	})
}

func TestInvoiceVoid(t *testing.T) {
	t.Run("sent invoice can be voided", func(t *testing.T) {
		inv := issuedInvoice(t)
		require.NoError(t, inv.Void("duplicate"))
		assert.Equal(t, InvoiceStatusVoid, inv.Status)
		assert.Equal(t, "duplicate", inv.VoidReason)
		assert.Error(t, inv.MarkPaid("sq_pay_x"))
	})

	t.Run("paid invoice cannot be voided", func(t *testing.T) {
		inv := issuedInvoice(t)
		require.NoError(t, inv.MarkPaid("sq_pay_1"))
		assert.Error(t, inv.Void("too late"))
	})
}

func TestInvoiceOverdue(t *testing.T) {
	t.Run("not before due date", func(t *testing.T) {
		inv := issuedInvoice(t)
		future := time.Now().Add(24 * time.Hour)
		inv.DueDate = &future
		assert.Error(t, inv.MarkOverdue())
	})

	t.Run("no due date never overdue", func(t *testing.T) {
		inv := issuedInvoice(t)
		assert.Error(t, inv.MarkOverdue())
	})
}
