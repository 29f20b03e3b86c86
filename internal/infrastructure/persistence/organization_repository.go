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

// GormOrganizationRepository implements crm.OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *crm.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// SaveWithLock saves an organization with optimistic locking
func (r *GormOrganizationRepository) SaveWithLock(ctx context.Context, org *crm.Organization) error {
	return saveWithLock(r.db.WithContext(ctx), org, org.ID, org.Version)
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Organization, error) {
	var org crm.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by its slug
func (r *GormOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*crm.Organization, error) {
	var org crm.Organization
	if err := r.db.WithContext(ctx).
		First(&org, "slug = ?", strings.ToLower(slug)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindAll finds all organizations matching the filter
func (r *GormOrganizationRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*crm.Organization], error) {
	query := r.db.WithContext(ctx).Model(&crm.Organization{})
	query = applySearch(query, filter.Search, "name", "slug")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "plan":
			query = query.Where("plan = ?", value)
		}
	}
	return findPage[*crm.Organization](query, filter, "created_at DESC", "name", "created_at")
}

// ExistsBySlug checks if an organization with the given slug exists
func (r *GormOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&crm.Organization{}).
		Where("slug = ?", strings.ToLower(slug)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete deletes an organization
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Organization{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ crm.OrganizationRepository = (*GormOrganizationRepository)(nil)
