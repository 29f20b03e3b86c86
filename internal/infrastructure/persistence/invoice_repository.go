package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyhub/backend/internal/domain/billing"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save creates or updates an invoice together with its line items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Save(invoice).Error
	})
}

// SaveWithLock saves an invoice with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithLock(tx.Omit("Items"), invoice, invoice.ID, invoice.Version); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		if len(invoice.Items) == 0 {
			return nil
		}
		return tx.Create(&invoice.Items).Error
	})
}

// FindByID finds an invoice by ID within an organization
func (r *GormInvoiceRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&invoice, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByPaymentToken finds an invoice by its public payment token
func (r *GormInvoiceRepository) FindByPaymentToken(ctx context.Context, token string) (*billing.Invoice, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&invoice, "payment_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds all invoices in an organization matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	query := r.invoiceQuery(ctx, orgID, filter)
	return findPage[*billing.Invoice](query, filter, "created_at DESC", "number", "status", "due_date", "created_at")
}

// FindByContact finds invoices addressed to a contact
func (r *GormInvoiceRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	query := r.invoiceQuery(ctx, orgID, filter).Where("contact_id = ?", contactID)
	return findPage[*billing.Invoice](query, filter, "created_at DESC", "number", "status", "created_at")
}

// FindByStatus finds invoices with a given status
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, orgID uuid.UUID, status billing.InvoiceStatus, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	query := r.invoiceQuery(ctx, orgID, filter).Where("status = ?", status)
	return findPage[*billing.Invoice](query, filter, "created_at DESC", "number", "due_date", "created_at")
}

func (r *GormInvoiceRepository) invoiceQuery(ctx context.Context, orgID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "number", "memo")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "contact_id":
			query = query.Where("contact_id = ?", value)
		case "project_id":
			query = query.Where("project_id = ?", value)
		}
	}
	return query
}

// FindDueBefore returns sent invoices whose due date passed before the cutoff
func (r *GormInvoiceRepository) FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", billing.InvoiceStatusSent, cutoff).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

// NextSequence returns the next invoice sequence number for an organization and year
func (r *GormInvoiceRepository) NextSequence(ctx context.Context, orgID uuid.UUID, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("org_id = ? AND number LIKE ?", orgID, fmt.Sprintf("INV-%d-%%", year)).
		Count(&count).Error
	return count + 1, err
}

// CountByStatus counts invoices with a given status
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status billing.InvoiceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error
	return count, err
}

// SumPaidAmount sums the line-item amounts of paid invoices in an organization
func (r *GormInvoiceRepository) SumPaidAmount(ctx context.Context, orgID uuid.UUID) (string, error) {
	var total *string
	err := r.db.WithContext(ctx).
		Model(&billing.InvoiceItem{}).
		Select("SUM(invoice_items.quantity * invoice_items.unit_price)").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.org_id = ? AND invoices.status = ?", orgID, billing.InvoiceStatusPaid).
		Scan(&total).Error
	if err != nil {
		return "0", err
	}
	if total == nil {
		return "0", nil
	}
	return *total, nil
}

// Delete deletes an invoice within an organization
func (r *GormInvoiceRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Invoice{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
