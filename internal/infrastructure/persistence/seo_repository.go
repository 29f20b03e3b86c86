package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/agencyhub/backend/internal/domain/seo"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSiteRepository implements seo.SiteRepository using GORM
type GormSiteRepository struct {
	db *gorm.DB
}

// NewGormSiteRepository creates a new GormSiteRepository
func NewGormSiteRepository(db *gorm.DB) *GormSiteRepository {
	return &GormSiteRepository{db: db}
}

func (r *GormSiteRepository) Save(ctx context.Context, site *seo.Site) error {
	return r.db.WithContext(ctx).Save(site).Error
}

func (r *GormSiteRepository) SaveWithLock(ctx context.Context, site *seo.Site) error {
	return saveWithLock(r.db.WithContext(ctx), site, site.ID, site.Version)
}

func (r *GormSiteRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*seo.Site, error) {
	var site seo.Site
	if err := r.db.WithContext(ctx).
		First(&site, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) FindByDomain(ctx context.Context, orgID uuid.UUID, domain string) (*seo.Site, error) {
	normalized, err := seo.NormalizeDomain(domain)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	var site seo.Site
	if err := r.db.WithContext(ctx).
		First(&site, "org_id = ? AND domain = ?", orgID, normalized).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Site], error) {
	query := r.db.WithContext(ctx).Model(&seo.Site{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "domain", "name")
	if status, ok := filter.Filters["audit_status"]; ok {
		query = query.Where("audit_status = ?", status)
	}
	return findPage[*seo.Site](query, filter, "created_at DESC", "domain", "name", "created_at")
}

// Delete removes a site together with its pages, keywords and findings
func (r *GormSiteRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND site_id = ?", orgID, id).
			Delete(&seo.Recommendation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("org_id = ? AND site_id = ?", orgID, id).
			Delete(&seo.Keyword{}).Error; err != nil {
			return err
		}
		if err := tx.Where("org_id = ? AND site_id = ?", orgID, id).
			Delete(&seo.Page{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&seo.Site{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ seo.SiteRepository = (*GormSiteRepository)(nil)

// GormPageRepository implements seo.PageRepository using GORM
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

func (r *GormPageRepository) Save(ctx context.Context, page *seo.Page) error {
	return r.db.WithContext(ctx).Save(page).Error
}

func (r *GormPageRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*seo.Page, error) {
	var page seo.Page
	if err := r.db.WithContext(ctx).
		First(&page, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &page, nil
}

func (r *GormPageRepository) FindByPath(ctx context.Context, orgID, siteID uuid.UUID, path string) (*seo.Page, error) {
	var page seo.Page
	if err := r.db.WithContext(ctx).
		First(&page, "org_id = ? AND site_id = ? AND path = ?", orgID, siteID, path).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &page, nil
}

func (r *GormPageRepository) FindBySite(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Page], error) {
	query := r.db.WithContext(ctx).
		Model(&seo.Page{}).
		Where("org_id = ? AND site_id = ?", orgID, siteID)
	query = applySearch(query, filter.Search, "path", "title")
	return findPage[*seo.Page](query, filter, "path ASC", "path", "title", "created_at")
}

func (r *GormPageRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&seo.Page{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ seo.PageRepository = (*GormPageRepository)(nil)

// GormKeywordRepository implements seo.KeywordRepository using GORM
type GormKeywordRepository struct {
	db *gorm.DB
}

// NewGormKeywordRepository creates a new GormKeywordRepository
func NewGormKeywordRepository(db *gorm.DB) *GormKeywordRepository {
	return &GormKeywordRepository{db: db}
}

func (r *GormKeywordRepository) Save(ctx context.Context, keyword *seo.Keyword) error {
	return r.db.WithContext(ctx).Save(keyword).Error
}

func (r *GormKeywordRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*seo.Keyword, error) {
	var keyword seo.Keyword
	if err := r.db.WithContext(ctx).
		First(&keyword, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &keyword, nil
}

func (r *GormKeywordRepository) FindBySite(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Keyword], error) {
	query := r.db.WithContext(ctx).
		Model(&seo.Keyword{}).
		Where("org_id = ? AND site_id = ?", orgID, siteID)
	query = applySearch(query, filter.Search, "phrase")
	return findPage[*seo.Keyword](query, filter, "phrase ASC", "phrase", "position", "created_at")
}

func (r *GormKeywordRepository) ExistsByPhrase(ctx context.Context, orgID, siteID uuid.UUID, phrase string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&seo.Keyword{}).
		Where("org_id = ? AND site_id = ? AND phrase = ?", orgID, siteID, strings.ToLower(strings.TrimSpace(phrase))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormKeywordRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&seo.Keyword{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ seo.KeywordRepository = (*GormKeywordRepository)(nil)

// GormRecommendationRepository implements seo.RecommendationRepository using GORM
type GormRecommendationRepository struct {
	db *gorm.DB
}

// NewGormRecommendationRepository creates a new GormRecommendationRepository
func NewGormRecommendationRepository(db *gorm.DB) *GormRecommendationRepository {
	return &GormRecommendationRepository{db: db}
}

func (r *GormRecommendationRepository) Save(ctx context.Context, rec *seo.Recommendation) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// SaveAll writes a batch of findings in one statement
func (r *GormRecommendationRepository) SaveAll(ctx context.Context, recs []*seo.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&recs).Error
}

func (r *GormRecommendationRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*seo.Recommendation, error) {
	var rec seo.Recommendation
	if err := r.db.WithContext(ctx).
		First(&rec, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *GormRecommendationRepository) FindBySite(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*seo.Recommendation], error) {
	query := r.db.WithContext(ctx).
		Model(&seo.Recommendation{}).
		Where("org_id = ? AND site_id = ?", orgID, siteID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "severity":
			query = query.Where("severity = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "page_id":
			query = query.Where("page_id = ?", value)
		}
	}
	return findPage[*seo.Recommendation](query, filter, "created_at DESC", "severity", "status", "created_at")
}

func (r *GormRecommendationRepository) FindOpenBySite(ctx context.Context, orgID, siteID uuid.UUID) ([]*seo.Recommendation, error) {
	var recs []*seo.Recommendation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND site_id = ? AND status = ?", orgID, siteID, seo.RecommendationOpen).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

// DeleteOpenRuleFindings clears open rule-engine findings ahead of a fresh audit
func (r *GormRecommendationRepository) DeleteOpenRuleFindings(ctx context.Context, orgID, siteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("org_id = ? AND site_id = ? AND source = ? AND status = ?",
			orgID, siteID, seo.SourceRules, seo.RecommendationOpen).
		Delete(&seo.Recommendation{}).Error
}

func (r *GormRecommendationRepository) CountBySeverity(ctx context.Context, orgID, siteID uuid.UUID, severity seo.Severity) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&seo.Recommendation{}).
		Where("org_id = ? AND site_id = ? AND severity = ? AND status = ?",
			orgID, siteID, severity, seo.RecommendationOpen).
		Count(&count).Error
	return count, err
}

var _ seo.RecommendationRepository = (*GormRecommendationRepository)(nil)
