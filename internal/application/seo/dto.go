package seo

import (
	"github.com/google/uuid"
)

// CreateSiteInput registers a website for tracking
type CreateSiteInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	Domain    string
	Name      string
	ContactID *uuid.UUID
	ProjectID *uuid.UUID
}

// AddPageInput registers a page under a site
type AddPageInput struct {
	OrgID  uuid.UUID
	SiteID uuid.UUID
	Path   string
}

// AddKeywordInput starts tracking a search phrase for a site
type AddKeywordInput struct {
	OrgID  uuid.UUID
	SiteID uuid.UUID
	Phrase string
}

// RecordPositionInput records a ranking observation for a keyword
type RecordPositionInput struct {
	OrgID     uuid.UUID
	KeywordID uuid.UUID
	Position  int
}

// AssistInput asks the writing assistant to improve a page's copy
type AssistInput struct {
	OrgID  uuid.UUID
	SiteID uuid.UUID
	PageID uuid.UUID
}

// auditPayload is the job payload for a site audit
type auditPayload struct {
	SiteID string `json:"site_id"`
}

// assistPayload is the job payload for a writing assistant run
type assistPayload struct {
	SiteID string `json:"site_id"`
	PageID string `json:"page_id"`
}
