package seo

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SiteRepository defines persistence operations for tracked sites
type SiteRepository interface {
	Save(ctx context.Context, site *Site) error
	SaveWithLock(ctx context.Context, site *Site) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Site, error)
	FindByDomain(ctx context.Context, orgID uuid.UUID, domain string) (*Site, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Site], error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// PageRepository defines persistence operations for site pages
type PageRepository interface {
	Save(ctx context.Context, page *Page) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Page, error)
	FindByPath(ctx context.Context, orgID, siteID uuid.UUID, path string) (*Page, error)
	FindBySite(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Page], error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// KeywordRepository defines persistence operations for tracked keywords
type KeywordRepository interface {
	Save(ctx context.Context, keyword *Keyword) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Keyword, error)
	FindBySite(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Keyword], error)
	ExistsByPhrase(ctx context.Context, orgID, siteID uuid.UUID, phrase string) (bool, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// RecommendationRepository defines persistence operations for audit findings
type RecommendationRepository interface {
	Save(ctx context.Context, rec *Recommendation) error
	SaveAll(ctx context.Context, recs []*Recommendation) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Recommendation, error)
	FindBySite(ctx context.Context, orgID, siteID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Recommendation], error)
	FindOpenBySite(ctx context.Context, orgID, siteID uuid.UUID) ([]*Recommendation, error)
	// DeleteOpenRuleFindings clears open rule-engine findings before a fresh
	// audit writes its results, so resolved history survives but stale open
	// findings do not pile up.
	DeleteOpenRuleFindings(ctx context.Context, orgID, siteID uuid.UUID) error
	CountBySeverity(ctx context.Context, orgID, siteID uuid.UUID, severity Severity) (int64, error)
}
