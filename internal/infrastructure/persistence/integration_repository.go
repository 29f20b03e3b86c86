package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/agencyhub/backend/internal/domain/integration"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStoreConnectionRepository implements integration.StoreConnectionRepository using GORM
type GormStoreConnectionRepository struct {
	db *gorm.DB
}

// NewGormStoreConnectionRepository creates a new GormStoreConnectionRepository
func NewGormStoreConnectionRepository(db *gorm.DB) *GormStoreConnectionRepository {
	return &GormStoreConnectionRepository{db: db}
}

func (r *GormStoreConnectionRepository) Save(ctx context.Context, conn *integration.StoreConnection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

func (r *GormStoreConnectionRepository) SaveWithLock(ctx context.Context, conn *integration.StoreConnection) error {
	return saveWithLock(r.db.WithContext(ctx), conn, conn.ID, conn.Version)
}

func (r *GormStoreConnectionRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*integration.StoreConnection, error) {
	var conn integration.StoreConnection
	if err := r.db.WithContext(ctx).
		First(&conn, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *GormStoreConnectionRepository) FindAll(ctx context.Context, orgID uuid.UUID) ([]*integration.StoreConnection, error) {
	var conns []*integration.StoreConnection
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}

func (r *GormStoreConnectionRepository) ExistsByShopDomain(ctx context.Context, orgID uuid.UUID, shopDomain string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&integration.StoreConnection{}).
		Where("org_id = ? AND shop_domain = ?", orgID, strings.ToLower(shopDomain)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a connection and the product links mirrored through it
func (r *GormStoreConnectionRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND connection_id = ?", orgID, id).
			Delete(&integration.ProductLink{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&integration.StoreConnection{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ integration.StoreConnectionRepository = (*GormStoreConnectionRepository)(nil)

// GormProductLinkRepository implements integration.ProductLinkRepository using GORM
type GormProductLinkRepository struct {
	db *gorm.DB
}

// NewGormProductLinkRepository creates a new GormProductLinkRepository
func NewGormProductLinkRepository(db *gorm.DB) *GormProductLinkRepository {
	return &GormProductLinkRepository{db: db}
}

func (r *GormProductLinkRepository) Save(ctx context.Context, link *integration.ProductLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *GormProductLinkRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*integration.ProductLink, error) {
	var link integration.ProductLink
	if err := r.db.WithContext(ctx).
		First(&link, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *GormProductLinkRepository) FindByExternalID(ctx context.Context, orgID, connectionID uuid.UUID, externalID string) (*integration.ProductLink, error) {
	var link integration.ProductLink
	if err := r.db.WithContext(ctx).
		First(&link, "org_id = ? AND connection_id = ? AND external_id = ?", orgID, connectionID, externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *GormProductLinkRepository) FindByConnection(ctx context.Context, orgID, connectionID uuid.UUID, filter shared.Filter) (*shared.Paginated[*integration.ProductLink], error) {
	query := r.db.WithContext(ctx).
		Model(&integration.ProductLink{}).
		Where("org_id = ? AND connection_id = ?", orgID, connectionID)
	query = applySearch(query, filter.Search, "title", "external_id")
	return findPage[*integration.ProductLink](query, filter, "title ASC", "title", "external_id", "created_at")
}

func (r *GormProductLinkRepository) CountByConnection(ctx context.Context, orgID, connectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&integration.ProductLink{}).
		Where("org_id = ? AND connection_id = ?", orgID, connectionID).
		Count(&count).Error
	return count, err
}

func (r *GormProductLinkRepository) DeleteByConnection(ctx context.Context, orgID, connectionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("org_id = ? AND connection_id = ?", orgID, connectionID).
		Delete(&integration.ProductLink{}).Error
}

var _ integration.ProductLinkRepository = (*GormProductLinkRepository)(nil)
