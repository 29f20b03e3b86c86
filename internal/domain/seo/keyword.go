package seo

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Keyword is a search phrase tracked against a site
type Keyword struct {
	shared.OrgAggregateRoot
	SiteID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PageID       *uuid.UUID `gorm:"type:uuid;index"` // Target page, if one is designated
	Phrase       string     `gorm:"type:varchar(200);not null"`
	Position     *int       `gorm:""` // Latest known ranking, nil when never checked
	PrevPosition *int       `gorm:""`
	CheckedAt    *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Keyword) TableName() string {
	return "seo_keywords"
}

// NewKeyword starts tracking a phrase for a site
func NewKeyword(orgID, siteID uuid.UUID, phrase string) (*Keyword, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	phrase = strings.TrimSpace(strings.ToLower(phrase))
	if phrase == "" {
		return nil, shared.NewDomainError("INVALID_PHRASE", "Keyword phrase cannot be empty")
	}
	if len(phrase) > 200 {
		return nil, shared.NewDomainError("INVALID_PHRASE", "Keyword phrase cannot exceed 200 characters")
	}

	return &Keyword{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		SiteID:           siteID,
		Phrase:           phrase,
	}, nil
}

// SetTargetPage designates the page the phrase should rank for
func (k *Keyword) SetTargetPage(pageID uuid.UUID) error {
	if pageID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAGE", "Page ID cannot be empty")
	}

	k.PageID = &pageID
	k.UpdatedAt = time.Now()
	k.IncrementVersion()
	return nil
}

// RecordPosition records a ranking check, keeping the previous value
// for movement display
func (k *Keyword) RecordPosition(position int) error {
	if position < 1 {
		return shared.NewDomainError("INVALID_POSITION", "Position must be at least 1")
	}

	now := time.Now()
	k.PrevPosition = k.Position
	k.Position = &position
	k.CheckedAt = &now
	k.UpdatedAt = now
	k.IncrementVersion()
	return nil
}

// Movement returns positions gained since the previous check.
// Positive means the keyword moved up.
func (k *Keyword) Movement() int {
	if k.Position == nil || k.PrevPosition == nil {
		return 0
	}
	return *k.PrevPosition - *k.Position
}
