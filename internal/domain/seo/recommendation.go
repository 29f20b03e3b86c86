package seo

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecommendationSource tells whether the finding came from the rule engine
// or from the writing assistant
type RecommendationSource string

const (
	SourceRules     RecommendationSource = "rules"
	SourceAssistant RecommendationSource = "assistant"
)

// Severity ranks how urgent a finding is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// RecommendationStatus tracks the team's handling of a finding
type RecommendationStatus string

const (
	RecommendationOpen      RecommendationStatus = "open"
	RecommendationApplied   RecommendationStatus = "applied"
	RecommendationDismissed RecommendationStatus = "dismissed"
)

// Recommendation is a single audit finding for a page
type Recommendation struct {
	shared.OrgAggregateRoot
	SiteID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	PageID   *uuid.UUID           `gorm:"type:uuid;index"` // Nil for site-wide findings
	Source   RecommendationSource `gorm:"type:varchar(10);not null"`
	Rule     string               `gorm:"type:varchar(50);not null"` // Stable rule identifier, e.g. missing-title
	Severity Severity             `gorm:"type:varchar(10);not null"`
	Status   RecommendationStatus `gorm:"type:varchar(10);not null;default:'open'"`
	Summary  string               `gorm:"type:varchar(500);not null"`
	Detail   string               `gorm:"type:text"`

	ResolvedAt *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Recommendation) TableName() string {
	return "seo_recommendations"
}

// NewRecommendation records an audit finding
func NewRecommendation(orgID, siteID uuid.UUID, pageID *uuid.UUID, source RecommendationSource, rule string, severity Severity, summary, detail string) (*Recommendation, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	switch source {
	case SourceRules, SourceAssistant:
	default:
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invalid recommendation source")
	}
	switch severity {
	case SeverityCritical, SeverityWarning, SeverityInfo:
	default:
		return nil, shared.NewDomainError("INVALID_SEVERITY", "Invalid severity")
	}
	if rule == "" {
		return nil, shared.NewDomainError("INVALID_RULE", "Rule identifier cannot be empty")
	}
	if summary == "" {
		return nil, shared.NewDomainError("INVALID_SUMMARY", "Summary cannot be empty")
	}
	if len(summary) > 500 {
		return nil, shared.NewDomainError("INVALID_SUMMARY", "Summary cannot exceed 500 characters")
	}

	return &Recommendation{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		SiteID:           siteID,
		PageID:           pageID,
		Source:           source,
		Rule:             rule,
		Severity:         severity,
		Status:           RecommendationOpen,
		Summary:          summary,
		Detail:           detail,
	}, nil
}

// Apply marks the finding handled
func (r *Recommendation) Apply() error {
	return r.resolve(RecommendationApplied)
}

// Dismiss marks the finding intentionally ignored
func (r *Recommendation) Dismiss() error {
	return r.resolve(RecommendationDismissed)
}

// Reopen puts a resolved finding back in the open queue
func (r *Recommendation) Reopen() error {
	if r.Status == RecommendationOpen {
		return shared.NewDomainError("ALREADY_OPEN", "Recommendation is already open")
	}

	r.Status = RecommendationOpen
	r.ResolvedAt = nil
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

func (r *Recommendation) resolve(status RecommendationStatus) error {
	if r.Status != RecommendationOpen {
		return shared.NewDomainError("ALREADY_RESOLVED", "Recommendation has already been resolved")
	}

	now := time.Now()
	r.Status = status
	r.ResolvedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}
