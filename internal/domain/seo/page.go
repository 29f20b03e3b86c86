package seo

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Page is a single URL on a tracked site, refreshed by audit crawls
type Page struct {
	shared.OrgAggregateRoot
	SiteID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Path            string     `gorm:"type:varchar(2000);not null"`
	Title           string     `gorm:"type:varchar(500)"`
	MetaDescription string     `gorm:"type:varchar(1000)"`
	H1              string     `gorm:"type:varchar(500)"`
	StatusCode      int        `gorm:"not null;default:0"`
	WordCount       int        `gorm:"not null;default:0"`
	LoadMillis      int        `gorm:"not null;default:0"`
	Canonical       string     `gorm:"type:varchar(2000)"`
	NoIndex         bool       `gorm:"not null;default:false"`
	LastCrawledAt   *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Page) TableName() string {
	return "seo_pages"
}

// NewPage registers a page under a site
func NewPage(orgID, siteID uuid.UUID, path string) (*Page, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	path = normalizePath(path)
	if len(path) > 2000 {
		return nil, shared.NewDomainError("INVALID_PATH", "Path cannot exceed 2000 characters")
	}

	return &Page{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		SiteID:           siteID,
		Path:             path,
	}, nil
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// CrawlResult carries what an audit crawl observed for one page
type CrawlResult struct {
	Title           string
	MetaDescription string
	H1              string
	StatusCode      int
	WordCount       int
	LoadMillis      int
	Canonical       string
	NoIndex         bool
}

// RecordCrawl updates the page with the latest crawl observations
func (p *Page) RecordCrawl(result CrawlResult) {
	now := time.Now()
	p.Title = truncate(result.Title, 500)
	p.MetaDescription = truncate(result.MetaDescription, 1000)
	p.H1 = truncate(result.H1, 500)
	p.StatusCode = result.StatusCode
	p.WordCount = result.WordCount
	p.LoadMillis = result.LoadMillis
	p.Canonical = truncate(result.Canonical, 2000)
	p.NoIndex = result.NoIndex
	p.LastCrawledAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
