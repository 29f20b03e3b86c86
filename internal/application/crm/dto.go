package crm

import (
	"github.com/google/uuid"

	"github.com/agencyhub/backend/internal/domain/crm"
)

// RegisterOrganizationInput creates an organization with its owner account
type RegisterOrganizationInput struct {
	Name          string
	Slug          string
	OwnerEmail    string
	OwnerFirst    string
	OwnerLast     string
	OwnerPassword string
}

// RegisterOrganizationResult carries the new organization and owner
type RegisterOrganizationResult struct {
	Organization *crm.Organization
	Owner        *crm.Contact
}

// UpdateOrganizationInput updates organization profile fields
type UpdateOrganizationInput struct {
	OrgID   uuid.UUID
	Name    string
	Website string
}

// CreateContactInput creates a prospect or client record
type CreateContactInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Kind      crm.ContactKind
	Phone     string
	Company   string
	Tags      string
	Notes     string
}

// UpdateContactInput updates a contact's profile
type UpdateContactInput struct {
	OrgID     uuid.UUID
	ContactID uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Tags      string
	Notes     string
}

// InviteTeamMemberInput creates a team login
type InviteTeamMemberInput struct {
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      crm.ContactRole
}
