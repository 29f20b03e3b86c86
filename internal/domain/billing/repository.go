package billing

import (
	"context"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error)
	// FindByPaymentToken is the only lookup that crosses the tenant boundary;
	// the token itself is the credential.
	FindByPaymentToken(ctx context.Context, token string) (*Invoice, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	FindByStatus(ctx context.Context, orgID uuid.UUID, status InvoiceStatus, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	// FindDueBefore returns sent invoices whose due date has passed, for the
	// overdue sweep job.
	FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Invoice, error)
	NextSequence(ctx context.Context, orgID uuid.UUID, year int) (int64, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status InvoiceStatus) (int64, error)
	SumPaidAmount(ctx context.Context, orgID uuid.UUID) (string, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
