package email

import (
	"time"

	"github.com/google/uuid"
)

// CreateTemplateInput carries the fields needed to create a template
type CreateTemplateInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	Name      string
	Subject   string
	BodyHTML  string
	BodyText  string
}

// UpdateTemplateInput edits an existing template
type UpdateTemplateInput struct {
	OrgID      uuid.UUID
	TemplateID uuid.UUID
	Name       string
	Subject    string
	BodyHTML   string
	BodyText   string
}

// CreateListInput carries the fields needed to create a mailing list
type CreateListInput struct {
	OrgID       uuid.UUID
	CreatedBy   uuid.UUID
	Name        string
	Description string
}

// UpdateListInput edits a mailing list
type UpdateListInput struct {
	OrgID       uuid.UUID
	ListID      uuid.UUID
	Name        string
	Description string
}

// CreateCampaignInput carries the fields needed to draft a campaign
type CreateCampaignInput struct {
	OrgID      uuid.UUID
	CreatedBy  uuid.UUID
	Name       string
	TemplateID uuid.UUID
	ListID     uuid.UUID
	FromName   string
	FromEmail  string
}

// ScheduleCampaignInput schedules a campaign for a future send
type ScheduleCampaignInput struct {
	OrgID      uuid.UUID
	CampaignID uuid.UUID
	SendAt     time.Time
}

// campaignPayload is the job payload for a campaign send
type campaignPayload struct {
	CampaignID string `json:"campaign_id"`
}
