package crm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
)

// MockOrganizationRepository is a mock implementation of crm.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *crm.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) SaveWithLock(ctx context.Context, org *crm.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*crm.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*crm.Organization], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*crm.Organization]), args.Error(1)
}

func (m *MockOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockContactRepository is a mock implementation of crm.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) SaveWithLock(ctx context.Context, contact *crm.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*crm.Contact, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*crm.Contact, error) {
	args := m.Called(ctx, orgID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindPrincipalByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*crm.Contact]), args.Error(1)
}

func (m *MockContactRepository) FindByKind(ctx context.Context, orgID uuid.UUID, kind crm.ContactKind, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	args := m.Called(ctx, orgID, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*crm.Contact]), args.Error(1)
}

func (m *MockContactRepository) ExistsByEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, orgID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactRepository) CountByKind(ctx context.Context, orgID uuid.UUID, kind crm.ContactKind) (int64, error) {
	args := m.Called(ctx, orgID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContactRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func newTestCRMService(orgRepo crm.OrganizationRepository, contactRepo crm.ContactRepository) *CRMService {
	return NewCRMService(orgRepo, contactRepo, zap.NewNop())
}

func TestCRMService_RegisterOrganization(t *testing.T) {
	input := RegisterOrganizationInput{
		Name:          "Acme Digital",
		Slug:          "acme-digital",
		OwnerEmail:    "owner@acme.test",
		OwnerFirst:    "Ada",
		OwnerLast:     "Acme",
		OwnerPassword: "correct-horse-battery",
	}

	t.Run("creates organization and owner", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		orgRepo.On("ExistsBySlug", mock.Anything, "acme-digital").Return(false, nil)
		orgRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Organization")).Return(nil)
		contactRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Contact")).Return(nil)

		result, err := service.RegisterOrganization(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "acme-digital", result.Organization.Slug)
		assert.Equal(t, result.Organization.ID, result.Owner.OrgID)
		assert.Equal(t, crm.ContactRoleOwner, result.Owner.Role)
		assert.NotEmpty(t, result.Owner.PasswordHash)
		orgRepo.AssertExpectations(t)
		contactRepo.AssertExpectations(t)
	})

	t.Run("rejects taken slug", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		orgRepo.On("ExistsBySlug", mock.Anything, "acme-digital").Return(true, nil)

		_, err := service.RegisterOrganization(context.Background(), input)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SLUG_TAKEN", domainErr.Code)
		orgRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rolls back organization when owner save fails", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		orgRepo.On("ExistsBySlug", mock.Anything, "acme-digital").Return(false, nil)
		orgRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Organization")).Return(nil)
		contactRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Contact")).Return(errors.New("insert failed"))
		orgRepo.On("Delete", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

		_, err := service.RegisterOrganization(context.Background(), input)

		assert.Error(t, err)
		orgRepo.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("uuid.UUID"))
	})
}

func TestCRMService_CreateContact(t *testing.T) {
	orgID := uuid.New()
	creatorID := uuid.New()

	t.Run("creates a prospect", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		contactRepo.On("ExistsByEmail", mock.Anything, orgID, "lead@client.test").Return(false, nil)
		contactRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Contact")).Return(nil)

		contact, err := service.CreateContact(context.Background(), CreateContactInput{
			OrgID:     orgID,
			CreatedBy: creatorID,
			Email:     "lead@client.test",
			FirstName: "Lena",
			Kind:      crm.ContactKindProspect,
			Company:   "Client Co",
		})

		require.NoError(t, err)
		assert.Equal(t, crm.ContactKindProspect, contact.Kind)
		assert.Equal(t, "Client Co", contact.Company)
		require.NotNil(t, contact.CreatedBy)
		assert.Equal(t, creatorID, *contact.CreatedBy)
		assert.Empty(t, contact.PasswordHash)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		contactRepo.On("ExistsByEmail", mock.Anything, orgID, "lead@client.test").Return(true, nil)

		_, err := service.CreateContact(context.Background(), CreateContactInput{
			OrgID:     orgID,
			Email:     "lead@client.test",
			FirstName: "Lena",
			Kind:      crm.ContactKindProspect,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_TAKEN", domainErr.Code)
		contactRepo.AssertNotCalled(t, "Save")
	})
}

func TestCRMService_ConvertToClient(t *testing.T) {
	orgID := uuid.New()

	t.Run("promotes a prospect", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		prospect, err := crm.NewContact(orgID, "lead@client.test", "Lena", "", crm.ContactKindProspect)
		require.NoError(t, err)

		contactRepo.On("FindByID", mock.Anything, orgID, prospect.ID).Return(prospect, nil)
		contactRepo.On("SaveWithLock", mock.Anything, prospect).Return(nil)

		converted, err := service.ConvertToClient(context.Background(), orgID, prospect.ID)

		require.NoError(t, err)
		assert.Equal(t, crm.ContactKindClient, converted.Kind)
	})

	t.Run("refuses a contact that is already a client", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		client, err := crm.NewContact(orgID, "client@client.test", "Cleo", "", crm.ContactKindClient)
		require.NoError(t, err)

		contactRepo.On("FindByID", mock.Anything, orgID, client.ID).Return(client, nil)

		_, err = service.ConvertToClient(context.Background(), orgID, client.ID)

		assert.Error(t, err)
		contactRepo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestCRMService_ChangeRole(t *testing.T) {
	orgID := uuid.New()

	t.Run("owner cannot be demoted", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		owner, err := crm.NewTeamMember(orgID, "owner@acme.test", "Ada", "Acme", "correct-horse-battery", crm.ContactRoleOwner)
		require.NoError(t, err)

		contactRepo.On("FindByID", mock.Anything, orgID, owner.ID).Return(owner, nil)

		_, err = service.ChangeRole(context.Background(), orgID, owner.ID, crm.ContactRoleMember)

		assert.Error(t, err)
		contactRepo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestCRMService_SetPlan(t *testing.T) {
	t.Run("upgrades the plan", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		org, err := crm.NewOrganization("Acme Digital", "acme-digital")
		require.NoError(t, err)

		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orgRepo.On("SaveWithLock", mock.Anything, org).Return(nil)

		updated, err := service.SetPlan(context.Background(), org.ID, crm.OrgPlanAgency)

		require.NoError(t, err)
		assert.Equal(t, crm.OrgPlanAgency, updated.Plan)
	})
}

func TestCRMService_SuspendOrganization(t *testing.T) {
	t.Run("suspends an active organization", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		org, err := crm.NewOrganization("Acme Digital", "acme-digital")
		require.NoError(t, err)

		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orgRepo.On("SaveWithLock", mock.Anything, org).Return(nil)

		suspended, err := service.SuspendOrganization(context.Background(), org.ID)

		require.NoError(t, err)
		assert.Equal(t, crm.OrgStatusSuspended, suspended.Status)
	})

	t.Run("suspending twice fails", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		org, err := crm.NewOrganization("Acme Digital", "acme-digital")
		require.NoError(t, err)
		require.NoError(t, org.Suspend())

		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)

		_, err = service.SuspendOrganization(context.Background(), org.ID)

		assert.Error(t, err)
		orgRepo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestCRMService_ActivateOrganization(t *testing.T) {
	t.Run("reactivates a suspended organization", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		org, err := crm.NewOrganization("Acme Digital", "acme-digital")
		require.NoError(t, err)
		require.NoError(t, org.Suspend())

		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orgRepo.On("SaveWithLock", mock.Anything, org).Return(nil)

		activated, err := service.ActivateOrganization(context.Background(), org.ID)

		require.NoError(t, err)
		assert.Equal(t, crm.OrgStatusActive, activated.Status)
	})

	t.Run("already active organization is rejected", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		org, err := crm.NewOrganization("Acme Digital", "acme-digital")
		require.NoError(t, err)

		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)

		_, err = service.ActivateOrganization(context.Background(), org.ID)

		assert.Error(t, err)
		orgRepo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestCRMService_RestoreContact(t *testing.T) {
	orgID := uuid.New()

	t.Run("restores an archived contact as inactive", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		contact, err := crm.NewContact(orgID, "ada@clients.test", "Ada", "Lovelace", crm.ContactKindClient)
		require.NoError(t, err)
		require.NoError(t, contact.Archive())

		contactRepo.On("FindByID", mock.Anything, orgID, contact.ID).Return(contact, nil)
		contactRepo.On("SaveWithLock", mock.Anything, contact).Return(nil)

		restored, err := service.RestoreContact(context.Background(), orgID, contact.ID)

		require.NoError(t, err)
		assert.Equal(t, crm.ContactStatusInactive, restored.Status)
	})

	t.Run("non-archived contact cannot be restored", func(t *testing.T) {
		orgRepo := new(MockOrganizationRepository)
		contactRepo := new(MockContactRepository)
		service := newTestCRMService(orgRepo, contactRepo)

		contact, err := crm.NewContact(orgID, "ada@clients.test", "Ada", "Lovelace", crm.ContactKindClient)
		require.NoError(t, err)

		contactRepo.On("FindByID", mock.Anything, orgID, contact.ID).Return(contact, nil)

		_, err = service.RestoreContact(context.Background(), orgID, contact.ID)

		assert.Error(t, err)
		contactRepo.AssertNotCalled(t, "SaveWithLock")
	})
}
