package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/email"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTemplateRepository implements email.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

func (r *GormTemplateRepository) Save(ctx context.Context, template *email.Template) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *GormTemplateRepository) SaveWithLock(ctx context.Context, template *email.Template) error {
	return saveWithLock(r.db.WithContext(ctx), template, template.ID, template.Version)
}

func (r *GormTemplateRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*email.Template, error) {
	var template email.Template
	if err := r.db.WithContext(ctx).
		First(&template, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

func (r *GormTemplateRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.Template], error) {
	query := r.db.WithContext(ctx).Model(&email.Template{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "name", "subject")
	return findPage[*email.Template](query, filter, "created_at DESC", "name", "created_at")
}

func (r *GormTemplateRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&email.Template{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ email.TemplateRepository = (*GormTemplateRepository)(nil)

// GormListRepository implements email.ListRepository using GORM
type GormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GormListRepository
func NewGormListRepository(db *gorm.DB) *GormListRepository {
	return &GormListRepository{db: db}
}

func (r *GormListRepository) Save(ctx context.Context, list *email.List) error {
	return r.db.WithContext(ctx).Save(list).Error
}

func (r *GormListRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*email.List, error) {
	var list email.List
	if err := r.db.WithContext(ctx).
		First(&list, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *GormListRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.List], error) {
	query := r.db.WithContext(ctx).Model(&email.List{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "name", "description")
	return findPage[*email.List](query, filter, "created_at DESC", "name", "created_at")
}

// Delete removes a list and its memberships
func (r *GormListRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).
			Delete(&email.ListMember{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&email.List{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// AddMember inserts a membership row; the unique index on (list_id, contact_id)
// rejects duplicates.
func (r *GormListRepository) AddMember(ctx context.Context, member *email.ListMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *GormListRepository) SaveMember(ctx context.Context, member *email.ListMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *GormListRepository) FindMember(ctx context.Context, listID, contactID uuid.UUID) (*email.ListMember, error) {
	var member email.ListMember
	if err := r.db.WithContext(ctx).
		First(&member, "list_id = ? AND contact_id = ?", listID, contactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *GormListRepository) FindMembers(ctx context.Context, listID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.ListMember], error) {
	query := r.db.WithContext(ctx).Model(&email.ListMember{}).Where("list_id = ?", listID)
	if subscribed, ok := filter.Filters["subscribed"]; ok {
		query = query.Where("subscribed = ?", subscribed)
	}
	return findPage[*email.ListMember](query, filter, "created_at ASC", "created_at")
}

func (r *GormListRepository) FindSubscribedContactIDs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&email.ListMember{}).
		Where("list_id = ? AND subscribed = ?", listID, true).
		Order("created_at ASC").
		Pluck("contact_id", &ids).Error
	return ids, err
}

func (r *GormListRepository) CountMembers(ctx context.Context, listID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&email.ListMember{}).
		Where("list_id = ?", listID).
		Count(&count).Error
	return count, err
}

func (r *GormListRepository) RemoveMember(ctx context.Context, listID, contactID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&email.ListMember{}, "list_id = ? AND contact_id = ?", listID, contactID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ email.ListRepository = (*GormListRepository)(nil)

// GormCampaignRepository implements email.CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

func (r *GormCampaignRepository) Save(ctx context.Context, campaign *email.Campaign) error {
	return r.db.WithContext(ctx).Save(campaign).Error
}

func (r *GormCampaignRepository) SaveWithLock(ctx context.Context, campaign *email.Campaign) error {
	return saveWithLock(r.db.WithContext(ctx), campaign, campaign.ID, campaign.Version)
}

func (r *GormCampaignRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*email.Campaign, error) {
	var campaign email.Campaign
	if err := r.db.WithContext(ctx).
		First(&campaign, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *GormCampaignRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*email.Campaign], error) {
	query := r.db.WithContext(ctx).Model(&email.Campaign{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "name", "subject")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return findPage[*email.Campaign](query, filter, "created_at DESC", "name", "status", "scheduled_at", "created_at")
}

// FindScheduledBefore returns scheduled campaigns whose send time has arrived
func (r *GormCampaignRepository) FindScheduledBefore(ctx context.Context, cutoff time.Time, limit int) ([]*email.Campaign, error) {
	var campaigns []*email.Campaign
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", email.CampaignStatusScheduled, cutoff).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, err
}

func (r *GormCampaignRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&email.Campaign{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ email.CampaignRepository = (*GormCampaignRepository)(nil)
