package crm

import (
	"regexp"
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
)

// OrgStatus represents the status of an organization
type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
	OrgStatusCancelled OrgStatus = "cancelled"
)

// OrgPlan represents the subscription plan of an organization
type OrgPlan string

const (
	OrgPlanFree       OrgPlan = "free"
	OrgPlanStarter    OrgPlan = "starter"
	OrgPlanAgency     OrgPlan = "agency"
	OrgPlanEnterprise OrgPlan = "enterprise"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Organization is the tenant record. Every other resource in the platform
// is scoped to an organization via org_id.
type Organization struct {
	shared.BaseAggregateRoot
	Name     string    `gorm:"type:varchar(200);not null"`
	Slug     string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Plan     OrgPlan   `gorm:"type:varchar(20);not null;default:'free'"`
	Status   OrgStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Website  string    `gorm:"type:varchar(300)"`
	Settings string    `gorm:"type:jsonb"` // Org-level preferences as JSON
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization with the given name and slug
func NewOrganization(name, slug string) (*Organization, error) {
	if err := validateOrgName(name); err != nil {
		return nil, err
	}
	if err := validateOrgSlug(slug); err != nil {
		return nil, err
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              strings.ToLower(slug),
		Plan:              OrgPlanFree,
		Status:            OrgStatusActive,
		Settings:          "{}",
	}, nil
}

// Update updates the organization's basic information
func (o *Organization) Update(name, website string) error {
	if err := validateOrgName(name); err != nil {
		return err
	}
	if website != "" && len(website) > 300 {
		return shared.NewDomainError("INVALID_WEBSITE", "Website cannot exceed 300 characters")
	}

	o.Name = name
	o.Website = website
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// SetPlan changes the organization's subscription plan
func (o *Organization) SetPlan(plan OrgPlan) error {
	switch plan {
	case OrgPlanFree, OrgPlanStarter, OrgPlanAgency, OrgPlanEnterprise:
	default:
		return shared.NewDomainError("INVALID_PLAN", "Invalid organization plan")
	}

	o.Plan = plan
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// SetSettings replaces the organization's settings JSON
func (o *Organization) SetSettings(settings string) error {
	if settings == "" {
		settings = "{}"
	}
	trimmed := strings.TrimSpace(settings)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return shared.NewDomainError("INVALID_SETTINGS", "Settings must be a JSON object")
	}

	o.Settings = trimmed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Activate reactivates a suspended or cancelled organization
func (o *Organization) Activate() error {
	if o.Status == OrgStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Organization is already active")
	}

	o.Status = OrgStatusActive
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Suspend suspends the organization (e.g. billing failure)
func (o *Organization) Suspend() error {
	if o.Status == OrgStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Organization is already suspended")
	}
	if o.Status == OrgStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot suspend a cancelled organization")
	}

	o.Status = OrgStatusSuspended
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Cancel permanently cancels the organization
func (o *Organization) Cancel() error {
	if o.Status == OrgStatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Organization is already cancelled")
	}

	o.Status = OrgStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// IsActive returns true if the organization is active
func (o *Organization) IsActive() bool {
	return o.Status == OrgStatusActive
}

func validateOrgName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	return nil
}

func validateOrgSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Organization slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_SLUG", "Organization slug cannot exceed 100 characters")
	}
	if !slugPattern.MatchString(strings.ToLower(slug)) {
		return shared.NewDomainError("INVALID_SLUG", "Organization slug can only contain lowercase letters, numbers, and hyphens")
	}
	return nil
}
