package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContactRepository implements crm.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// SaveWithLock saves a contact with optimistic locking
func (r *GormContactRepository) SaveWithLock(ctx context.Context, contact *crm.Contact) error {
	return saveWithLock(r.db.WithContext(ctx), contact, contact.ID, contact.Version)
}

// FindByID finds a contact by ID within an organization
func (r *GormContactRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).
		First(&contact, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindByEmail finds a contact by email within an organization
func (r *GormContactRepository) FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).
		First(&contact, "org_id = ? AND email = ?", orgID, strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindPrincipalByEmail finds a login principal by email across organizations.
// Contacts without credentials never match, so client records that share an
// email with a staff account do not shadow it.
func (r *GormContactRepository) FindPrincipalByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).
		Where("email = ? AND password_hash <> ''", strings.ToLower(email)).
		Order("created_at ASC").
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindAll finds all contacts in an organization matching the filter
func (r *GormContactRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	query := r.contactQuery(ctx, orgID, filter)
	return findPage[*crm.Contact](query, filter, "created_at DESC", "first_name", "last_name", "email", "created_at")
}

// FindByKind finds contacts of a given kind in an organization
func (r *GormContactRepository) FindByKind(ctx context.Context, orgID uuid.UUID, kind crm.ContactKind, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	query := r.contactQuery(ctx, orgID, filter).Where("kind = ?", kind)
	return findPage[*crm.Contact](query, filter, "created_at DESC", "first_name", "last_name", "email", "created_at")
}

func (r *GormContactRepository) contactQuery(ctx context.Context, orgID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&crm.Contact{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "first_name", "last_name", "email", "company")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "role":
			query = query.Where("role = ?", value)
		case "kind":
			query = query.Where("kind = ?", value)
		}
	}
	return query
}

// ExistsByEmail checks if a contact with the given email exists in an organization
func (r *GormContactRepository) ExistsByEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&crm.Contact{}).
		Where("org_id = ? AND email = ?", orgID, strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByKind counts contacts of a given kind in an organization
func (r *GormContactRepository) CountByKind(ctx context.Context, orgID uuid.UUID, kind crm.ContactKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&crm.Contact{}).
		Where("org_id = ? AND kind = ?", orgID, kind).
		Count(&count).Error
	return count, err
}

// Delete deletes a contact within an organization
func (r *GormContactRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Contact{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ crm.ContactRepository = (*GormContactRepository)(nil)
