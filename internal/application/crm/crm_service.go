// Package crm implements organization and contact management use cases.
package crm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
)

// CRMService handles organization and contact operations
type CRMService struct {
	orgRepo     crm.OrganizationRepository
	contactRepo crm.ContactRepository
	logger      *zap.Logger
}

// NewCRMService creates a new CRM service
func NewCRMService(orgRepo crm.OrganizationRepository, contactRepo crm.ContactRepository, logger *zap.Logger) *CRMService {
	return &CRMService{
		orgRepo:     orgRepo,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// RegisterOrganization creates an organization together with its owner
// account. The slug must be free across the platform.
func (s *CRMService) RegisterOrganization(ctx context.Context, input RegisterOrganizationInput) (*RegisterOrganizationResult, error) {
	taken, err := s.orgRepo.ExistsBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("SLUG_TAKEN", "An organization with this slug already exists")
	}

	org, err := crm.NewOrganization(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}

	owner, err := crm.NewTeamMember(org.ID, input.OwnerEmail, input.OwnerFirst, input.OwnerLast, input.OwnerPassword, crm.ContactRoleOwner)
	if err != nil {
		return nil, err
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	if err := s.contactRepo.Save(ctx, owner); err != nil {
		// Roll the organization back so the slug is not burned
		if derr := s.orgRepo.Delete(ctx, org.ID); derr != nil {
			s.logger.Error("failed to roll back organization after owner creation failed",
				zap.String("org_id", org.ID.String()), zap.Error(derr))
		}
		return nil, err
	}

	s.logger.Info("organization registered",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug))
	return &RegisterOrganizationResult{Organization: org, Owner: owner}, nil
}

// GetOrganization loads an organization by ID
func (s *CRMService) GetOrganization(ctx context.Context, orgID uuid.UUID) (*crm.Organization, error) {
	return s.orgRepo.FindByID(ctx, orgID)
}

// UpdateOrganization updates profile fields
func (s *CRMService) UpdateOrganization(ctx context.Context, input UpdateOrganizationInput) (*crm.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, input.OrgID)
	if err != nil {
		return nil, err
	}
	if err := org.Update(input.Name, input.Website); err != nil {
		return nil, err
	}
	if err := s.orgRepo.SaveWithLock(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// SetPlan changes the organization's subscription plan
func (s *CRMService) SetPlan(ctx context.Context, orgID uuid.UUID, plan crm.OrgPlan) (*crm.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := org.SetPlan(plan); err != nil {
		return nil, err
	}
	if err := s.orgRepo.SaveWithLock(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// SuspendOrganization pauses the account. Suspended organizations keep their
// data but members cannot sign in until the account is reactivated.
func (s *CRMService) SuspendOrganization(ctx context.Context, orgID uuid.UUID) (*crm.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := org.Suspend(); err != nil {
		return nil, err
	}
	if err := s.orgRepo.SaveWithLock(ctx, org); err != nil {
		return nil, err
	}
	s.logger.Info("organization suspended", zap.String("org_id", org.ID.String()))
	return org, nil
}

// ActivateOrganization reactivates a suspended account
func (s *CRMService) ActivateOrganization(ctx context.Context, orgID uuid.UUID) (*crm.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := org.Activate(); err != nil {
		return nil, err
	}
	if err := s.orgRepo.SaveWithLock(ctx, org); err != nil {
		return nil, err
	}
	s.logger.Info("organization activated", zap.String("org_id", org.ID.String()))
	return org, nil
}

// CreateContact creates a prospect or client record. Emails are unique per
// organization.
func (s *CRMService) CreateContact(ctx context.Context, input CreateContactInput) (*crm.Contact, error) {
	exists, err := s.contactRepo.ExistsByEmail(ctx, input.OrgID, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "A contact with this email already exists")
	}

	contact, err := crm.NewContact(input.OrgID, input.Email, input.FirstName, input.LastName, input.Kind)
	if err != nil {
		return nil, err
	}
	contact.CreatedBy = &input.CreatedBy
	if input.Phone != "" || input.Company != "" {
		if err := contact.UpdateProfile(input.FirstName, input.LastName, input.Phone, input.Company); err != nil {
			return nil, err
		}
	}
	if input.Tags != "" {
		if err := contact.SetTags(input.Tags); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		contact.SetNotes(input.Notes)
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	s.logger.Info("contact created",
		zap.String("org_id", input.OrgID.String()),
		zap.String("contact_id", contact.ID.String()),
		zap.String("kind", string(contact.Kind)))
	return contact, nil
}

// InviteTeamMember creates a team login with the given role
func (s *CRMService) InviteTeamMember(ctx context.Context, input InviteTeamMemberInput) (*crm.Contact, error) {
	exists, err := s.contactRepo.ExistsByEmail(ctx, input.OrgID, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "A contact with this email already exists")
	}

	member, err := crm.NewTeamMember(input.OrgID, input.Email, input.FirstName, input.LastName, input.Password, input.Role)
	if err != nil {
		return nil, err
	}
	member.CreatedBy = &input.CreatedBy

	if err := s.contactRepo.Save(ctx, member); err != nil {
		return nil, err
	}
	s.logger.Info("team member invited",
		zap.String("org_id", input.OrgID.String()),
		zap.String("contact_id", member.ID.String()),
		zap.String("role", string(member.Role)))
	return member, nil
}

// GetContact loads a contact by ID
func (s *CRMService) GetContact(ctx context.Context, orgID, contactID uuid.UUID) (*crm.Contact, error) {
	return s.contactRepo.FindByID(ctx, orgID, contactID)
}

// ListContacts lists contacts with filtering and pagination
func (s *CRMService) ListContacts(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	return s.contactRepo.FindAll(ctx, orgID, filter)
}

// UpdateContact updates a contact's profile fields
func (s *CRMService) UpdateContact(ctx context.Context, input UpdateContactInput) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, input.OrgID, input.ContactID)
	if err != nil {
		return nil, err
	}
	if err := contact.Update(input.FirstName, input.LastName, input.Phone, input.Company, input.Tags, input.Notes); err != nil {
		return nil, err
	}
	if err := s.contactRepo.SaveWithLock(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// ConvertToClient promotes a prospect to client
func (s *CRMService) ConvertToClient(ctx context.Context, orgID, contactID uuid.UUID) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, orgID, contactID)
	if err != nil {
		return nil, err
	}
	if err := contact.ConvertToClient(); err != nil {
		return nil, err
	}
	if err := s.contactRepo.SaveWithLock(ctx, contact); err != nil {
		return nil, err
	}
	s.logger.Info("prospect converted to client",
		zap.String("org_id", orgID.String()),
		zap.String("contact_id", contactID.String()))
	return contact, nil
}

// ChangeRole updates a team member's role; owners cannot be demoted
func (s *CRMService) ChangeRole(ctx context.Context, orgID, contactID uuid.UUID, role crm.ContactRole) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, orgID, contactID)
	if err != nil {
		return nil, err
	}
	if err := contact.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.contactRepo.SaveWithLock(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// ArchiveContact soft-retires a contact
func (s *CRMService) ArchiveContact(ctx context.Context, orgID, contactID uuid.UUID) error {
	contact, err := s.contactRepo.FindByID(ctx, orgID, contactID)
	if err != nil {
		return err
	}
	if err := contact.Archive(); err != nil {
		return err
	}
	return s.contactRepo.SaveWithLock(ctx, contact)
}

// RestoreContact brings an archived contact back as inactive
func (s *CRMService) RestoreContact(ctx context.Context, orgID, contactID uuid.UUID) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, orgID, contactID)
	if err != nil {
		return nil, err
	}
	if err := contact.Restore(); err != nil {
		return nil, err
	}
	if err := s.contactRepo.SaveWithLock(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact permanently
func (s *CRMService) DeleteContact(ctx context.Context, orgID, contactID uuid.UUID) error {
	return s.contactRepo.Delete(ctx, orgID, contactID)
}
