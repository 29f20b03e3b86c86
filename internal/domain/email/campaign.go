package email

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusQueued    CampaignStatus = "queued"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusFailed    CampaignStatus = "failed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// Campaign is one send of a template to a list. Delivery happens in a
// background job; the campaign row tracks progress and final counts.
type Campaign struct {
	shared.OrgAggregateRoot
	Name       string         `gorm:"type:varchar(200);not null"`
	TemplateID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ListID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status     CampaignStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	FromName   string         `gorm:"type:varchar(100)"`
	FromEmail  string         `gorm:"type:varchar(254)"`

	ScheduledAt *time.Time `gorm:"type:timestamptz"`
	StartedAt   *time.Time `gorm:"type:timestamptz"`
	FinishedAt  *time.Time `gorm:"type:timestamptz"`
	SentCount   int        `gorm:"not null;default:0"`
	FailedCount int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Campaign) TableName() string {
	return "email_campaigns"
}

// NewCampaign creates a draft campaign
func NewCampaign(orgID, templateID, listID uuid.UUID, name string) (*Campaign, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if templateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template ID cannot be empty")
	}
	if listID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LIST", "List ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Campaign name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Campaign name cannot exceed 200 characters")
	}

	return &Campaign{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		TemplateID:       templateID,
		ListID:           listID,
		Status:           CampaignStatusDraft,
	}, nil
}

// SetSender sets the From header used for this campaign
func (c *Campaign) SetSender(name, email string) error {
	if err := c.requireEditable(); err != nil {
		return err
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_SENDER", "Sender name cannot exceed 100 characters")
	}
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_SENDER", "Sender email cannot exceed 254 characters")
	}

	c.FromName = name
	c.FromEmail = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Schedule sets a future send time
func (c *Campaign) Schedule(at time.Time) error {
	if err := c.requireEditable(); err != nil {
		return err
	}
	if at.Before(time.Now()) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Scheduled time must be in the future")
	}

	c.ScheduledAt = &at
	c.Status = CampaignStatusScheduled
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Enqueue marks the campaign handed off to the delivery job
func (c *Campaign) Enqueue() error {
	if c.Status != CampaignStatusDraft && c.Status != CampaignStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Campaign is not ready to be queued")
	}

	c.Status = CampaignStatusQueued
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Start marks the delivery job running
func (c *Campaign) Start() error {
	if c.Status != CampaignStatusQueued {
		return shared.NewDomainError("INVALID_STATE", "Only queued campaigns can start sending")
	}

	now := time.Now()
	c.Status = CampaignStatusSending
	c.StartedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// Finish records the final delivery counts. A campaign that delivered
// nothing and has an error is marked failed rather than sent.
func (c *Campaign) Finish(sent, failed int, lastError string) error {
	if c.Status != CampaignStatusSending {
		return shared.NewDomainError("INVALID_STATE", "Only sending campaigns can finish")
	}

	now := time.Now()
	c.SentCount = sent
	c.FailedCount = failed
	c.LastError = lastError
	c.FinishedAt = &now
	if sent == 0 && (failed > 0 || lastError != "") {
		c.Status = CampaignStatusFailed
	} else {
		c.Status = CampaignStatusSent
	}
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// Cancel stops a campaign that has not started sending
func (c *Campaign) Cancel() error {
	switch c.Status {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusQueued:
	default:
		return shared.NewDomainError("INVALID_STATE", "Campaign can no longer be cancelled")
	}

	c.Status = CampaignStatusCancelled
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func (c *Campaign) requireEditable() error {
	if c.Status != CampaignStatusDraft && c.Status != CampaignStatusScheduled {
		return shared.NewDomainError("NOT_EDITABLE", "Campaign can no longer be edited")
	}
	return nil
}
