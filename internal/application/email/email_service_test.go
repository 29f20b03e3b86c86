package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	domain "github.com/agencyhub/backend/internal/domain/email"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
)

// MockTemplateRepository is a mock implementation of email.TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *domain.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) SaveWithLock(ctx context.Context, template *domain.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Template, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Template], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Template]), args.Error(1)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockListRepository is a mock implementation of email.ListRepository
type MockListRepository struct {
	mock.Mock
}

func (m *MockListRepository) Save(ctx context.Context, list *domain.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockListRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*domain.List, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.List), args.Error(1)
}

func (m *MockListRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.List], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.List]), args.Error(1)
}

func (m *MockListRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockListRepository) AddMember(ctx context.Context, member *domain.ListMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockListRepository) SaveMember(ctx context.Context, member *domain.ListMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockListRepository) FindMember(ctx context.Context, listID, contactID uuid.UUID) (*domain.ListMember, error) {
	args := m.Called(ctx, listID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListMember), args.Error(1)
}

func (m *MockListRepository) FindMembers(ctx context.Context, listID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.ListMember], error) {
	args := m.Called(ctx, listID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.ListMember]), args.Error(1)
}

func (m *MockListRepository) FindSubscribedContactIDs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockListRepository) CountMembers(ctx context.Context, listID uuid.UUID) (int64, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListRepository) RemoveMember(ctx context.Context, listID, contactID uuid.UUID) error {
	args := m.Called(ctx, listID, contactID)
	return args.Error(0)
}

// MockCampaignRepository is a mock implementation of email.CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Save(ctx context.Context, campaign *domain.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) SaveWithLock(ctx context.Context, campaign *domain.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Campaign, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Campaign], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Campaign]), args.Error(1)
}

func (m *MockCampaignRepository) FindScheduledBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Campaign, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockContactFinder mocks only the contact lookup campaign delivery needs
type MockContactFinder struct {
	crm.ContactRepository
	mock.Mock
}

func (m *MockContactFinder) FindByID(ctx context.Context, orgID, id uuid.UUID) (*crm.Contact, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email *mailer.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

// MockJobEnqueuer is a mock implementation of JobEnqueuer
type MockJobEnqueuer struct {
	mock.Mock
}

func (m *MockJobEnqueuer) EnqueueJob(ctx context.Context, orgID uuid.UUID, kind jobs.JobKind, payload interface{}) (*jobs.Job, error) {
	args := m.Called(ctx, orgID, kind, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

type emailServiceMocks struct {
	templateRepo *MockTemplateRepository
	listRepo     *MockListRepository
	campaignRepo *MockCampaignRepository
	contactRepo  *MockContactFinder
	mailer       *MockMailer
	enqueuer     *MockJobEnqueuer
}

func newTestEmailService() (*EmailService, *emailServiceMocks) {
	m := &emailServiceMocks{
		templateRepo: new(MockTemplateRepository),
		listRepo:     new(MockListRepository),
		campaignRepo: new(MockCampaignRepository),
		contactRepo:  new(MockContactFinder),
		mailer:       new(MockMailer),
		enqueuer:     new(MockJobEnqueuer),
	}
	svc := NewEmailService(
		m.templateRepo,
		m.listRepo,
		m.campaignRepo,
		m.contactRepo,
		m.mailer,
		m.enqueuer,
		zap.NewNop(),
	)
	return svc, m
}

func newTestTemplate(t *testing.T, orgID uuid.UUID) *domain.Template {
	t.Helper()
	template, err := domain.NewTemplate(orgID, "Welcome", "Hello {{first_name}}", "<p>Hi {{first_name}}</p>", "Hi {{first_name}}")
	require.NoError(t, err)
	return template
}

func newTestList(t *testing.T, orgID uuid.UUID) *domain.List {
	t.Helper()
	list, err := domain.NewList(orgID, "Newsletter", "Monthly updates")
	require.NoError(t, err)
	return list
}

func queuedCampaign(t *testing.T, orgID, templateID, listID uuid.UUID) *domain.Campaign {
	t.Helper()
	campaign, err := domain.NewCampaign(orgID, templateID, listID, "March Issue")
	require.NoError(t, err)
	require.NoError(t, campaign.SetSender("Agency", "news@agency.test"))
	require.NoError(t, campaign.Enqueue())
	return campaign
}

func TestEmailService_CreateCampaign(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("drafts a campaign with a sender", func(t *testing.T) {
		svc, m := newTestEmailService()
		template := newTestTemplate(t, orgID)
		list := newTestList(t, orgID)

		m.templateRepo.On("FindByID", ctx, orgID, template.ID).Return(template, nil)
		m.listRepo.On("FindByID", ctx, orgID, list.ID).Return(list, nil)
		m.campaignRepo.On("Save", ctx, mock.AnythingOfType("*email.Campaign")).Return(nil)

		campaign, err := svc.CreateCampaign(ctx, CreateCampaignInput{
			OrgID:      orgID,
			CreatedBy:  uuid.New(),
			Name:       "March Issue",
			TemplateID: template.ID,
			ListID:     list.ID,
			FromName:   "Agency",
			FromEmail:  "news@agency.test",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.CampaignStatusDraft, campaign.Status)
		assert.Equal(t, "news@agency.test", campaign.FromEmail)
		m.campaignRepo.AssertExpectations(t)
	})

	t.Run("fails when the template is missing", func(t *testing.T) {
		svc, m := newTestEmailService()
		templateID := uuid.New()
		m.templateRepo.On("FindByID", ctx, orgID, templateID).Return(nil, shared.ErrNotFound)

		_, err := svc.CreateCampaign(ctx, CreateCampaignInput{
			OrgID:      orgID,
			Name:       "March Issue",
			TemplateID: templateID,
			ListID:     uuid.New(),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TEMPLATE_NOT_FOUND", domainErr.Code)
	})

	t.Run("fails when the list is missing", func(t *testing.T) {
		svc, m := newTestEmailService()
		template := newTestTemplate(t, orgID)
		listID := uuid.New()
		m.templateRepo.On("FindByID", ctx, orgID, template.ID).Return(template, nil)
		m.listRepo.On("FindByID", ctx, orgID, listID).Return(nil, shared.ErrNotFound)

		_, err := svc.CreateCampaign(ctx, CreateCampaignInput{
			OrgID:      orgID,
			Name:       "March Issue",
			TemplateID: template.ID,
			ListID:     listID,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "LIST_NOT_FOUND", domainErr.Code)
	})
}

func TestEmailService_Members(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("adds a new subscriber", func(t *testing.T) {
		svc, m := newTestEmailService()
		list := newTestList(t, orgID)
		contact, err := crm.NewContact(orgID, "sub@example.com", "Sam", "Reader", crm.ContactKindProspect)
		require.NoError(t, err)

		m.listRepo.On("FindByID", ctx, orgID, list.ID).Return(list, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contact.ID).Return(contact, nil)
		m.listRepo.On("FindMember", ctx, list.ID, contact.ID).Return(nil, shared.ErrNotFound)
		m.listRepo.On("AddMember", ctx, mock.AnythingOfType("*email.ListMember")).Return(nil)

		member, err := svc.AddMember(ctx, orgID, list.ID, contact.ID)
		require.NoError(t, err)
		assert.True(t, member.Subscribed)
		m.listRepo.AssertExpectations(t)
	})

	t.Run("re-adding an unsubscribed contact resubscribes them", func(t *testing.T) {
		svc, m := newTestEmailService()
		list := newTestList(t, orgID)
		contactID := uuid.New()
		member, err := domain.NewListMember(list.ID, contactID)
		require.NoError(t, err)
		require.NoError(t, member.Unsubscribe())

		m.listRepo.On("FindByID", ctx, orgID, list.ID).Return(list, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(&crm.Contact{}, nil)
		m.listRepo.On("FindMember", ctx, list.ID, contactID).Return(member, nil)
		m.listRepo.On("SaveMember", ctx, member).Return(nil)

		got, err := svc.AddMember(ctx, orgID, list.ID, contactID)
		require.NoError(t, err)
		assert.True(t, got.Subscribed)
		assert.Nil(t, got.UnsubscribedAt)
		m.listRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
	})

	t.Run("fails when the contact does not exist", func(t *testing.T) {
		svc, m := newTestEmailService()
		list := newTestList(t, orgID)
		contactID := uuid.New()

		m.listRepo.On("FindByID", ctx, orgID, list.ID).Return(list, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(nil, shared.ErrNotFound)

		_, err := svc.AddMember(ctx, orgID, list.ID, contactID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONTACT_NOT_FOUND", domainErr.Code)
	})

	t.Run("unsubscribe keeps the membership row", func(t *testing.T) {
		svc, m := newTestEmailService()
		list := newTestList(t, orgID)
		contactID := uuid.New()
		member, err := domain.NewListMember(list.ID, contactID)
		require.NoError(t, err)

		m.listRepo.On("FindByID", ctx, orgID, list.ID).Return(list, nil)
		m.listRepo.On("FindMember", ctx, list.ID, contactID).Return(member, nil)
		m.listRepo.On("SaveMember", ctx, member).Return(nil)

		require.NoError(t, svc.Unsubscribe(ctx, orgID, list.ID, contactID))
		assert.False(t, member.Subscribed)
		require.NotNil(t, member.UnsubscribedAt)
		m.listRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEmailService_SendCampaign(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("queues a draft campaign", func(t *testing.T) {
		svc, m := newTestEmailService()
		campaign, err := domain.NewCampaign(orgID, uuid.New(), uuid.New(), "March Issue")
		require.NoError(t, err)

		m.campaignRepo.On("FindByID", ctx, orgID, campaign.ID).Return(campaign, nil)
		m.campaignRepo.On("SaveWithLock", ctx, campaign).Return(nil)
		m.enqueuer.On("EnqueueJob", ctx, orgID, jobs.JobKindCampaignSend, campaignPayload{
			CampaignID: campaign.ID.String(),
		}).Return(&jobs.Job{}, nil)

		queued, err := svc.SendCampaign(ctx, orgID, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CampaignStatusQueued, queued.Status)
		m.enqueuer.AssertExpectations(t)
	})

	t.Run("refuses a cancelled campaign", func(t *testing.T) {
		svc, m := newTestEmailService()
		campaign, err := domain.NewCampaign(orgID, uuid.New(), uuid.New(), "March Issue")
		require.NoError(t, err)
		require.NoError(t, campaign.Cancel())

		m.campaignRepo.On("FindByID", ctx, orgID, campaign.ID).Return(campaign, nil)

		_, err = svc.SendCampaign(ctx, orgID, campaign.ID)
		require.Error(t, err)
		m.enqueuer.AssertNotCalled(t, "EnqueueJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("schedule requires a future time", func(t *testing.T) {
		svc, m := newTestEmailService()
		campaign, err := domain.NewCampaign(orgID, uuid.New(), uuid.New(), "March Issue")
		require.NoError(t, err)

		m.campaignRepo.On("FindByID", ctx, orgID, campaign.ID).Return(campaign, nil)

		_, err = svc.ScheduleCampaign(ctx, ScheduleCampaignInput{
			OrgID:      orgID,
			CampaignID: campaign.ID,
			SendAt:     time.Now().Add(-time.Hour),
		})
		require.Error(t, err)
		m.campaignRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestEmailService_SweepScheduled(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("queues due campaigns", func(t *testing.T) {
		svc, m := newTestEmailService()
		campaign, err := domain.NewCampaign(orgID, uuid.New(), uuid.New(), "March Issue")
		require.NoError(t, err)
		require.NoError(t, campaign.Schedule(time.Now().Add(20*time.Millisecond)))

		m.campaignRepo.On("FindScheduledBefore", ctx, mock.AnythingOfType("time.Time"), scheduledSweepBatch).
			Return([]*domain.Campaign{campaign}, nil)
		m.campaignRepo.On("SaveWithLock", ctx, campaign).Return(nil)
		m.enqueuer.On("EnqueueJob", ctx, orgID, jobs.JobKindCampaignSend, campaignPayload{
			CampaignID: campaign.ID.String(),
		}).Return(&jobs.Job{}, nil)

		require.NoError(t, svc.SweepScheduled(ctx))
		assert.Equal(t, domain.CampaignStatusQueued, campaign.Status)
		m.enqueuer.AssertExpectations(t)
	})

	t.Run("a lost claim skips the campaign", func(t *testing.T) {
		svc, m := newTestEmailService()
		campaign, err := domain.NewCampaign(orgID, uuid.New(), uuid.New(), "March Issue")
		require.NoError(t, err)
		require.NoError(t, campaign.Schedule(time.Now().Add(20*time.Millisecond)))

		m.campaignRepo.On("FindScheduledBefore", ctx, mock.AnythingOfType("time.Time"), scheduledSweepBatch).
			Return([]*domain.Campaign{campaign}, nil)
		m.campaignRepo.On("SaveWithLock", ctx, campaign).Return(shared.ErrConcurrencyConflict)

		require.NoError(t, svc.SweepScheduled(ctx))
		m.enqueuer.AssertNotCalled(t, "EnqueueJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEmailService_HandleCampaignSend(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	newSendJob := func(t *testing.T, campaignID uuid.UUID) *jobs.Job {
		t.Helper()
		job, err := jobs.NewJob(orgID, jobs.JobKindCampaignSend, campaignPayload{CampaignID: campaignID.String()})
		require.NoError(t, err)
		return job
	}

	t.Run("renders per subscriber and counts outcomes", func(t *testing.T) {
		svc, m := newTestEmailService()
		template := newTestTemplate(t, orgID)
		campaign := queuedCampaign(t, orgID, template.ID, uuid.New())
		job := newSendJob(t, campaign.ID)

		good, err := crm.NewContact(orgID, "good@example.com", "Ada", "Lovelace", crm.ContactKindClient)
		require.NoError(t, err)
		bad, err := crm.NewContact(orgID, "bad@example.com", "Bob", "Bounce", crm.ContactKindClient)
		require.NoError(t, err)

		m.campaignRepo.On("FindByID", ctx, orgID, campaign.ID).Return(campaign, nil)
		m.campaignRepo.On("SaveWithLock", ctx, campaign).Return(nil)
		m.templateRepo.On("FindByID", ctx, orgID, campaign.TemplateID).Return(template, nil)
		m.listRepo.On("FindSubscribedContactIDs", ctx, campaign.ListID).Return([]uuid.UUID{good.ID, bad.ID}, nil)
		m.contactRepo.On("FindByID", ctx, orgID, good.ID).Return(good, nil)
		m.contactRepo.On("FindByID", ctx, orgID, bad.ID).Return(bad, nil)
		m.mailer.On("Send", ctx, mock.MatchedBy(func(e *mailer.Email) bool {
			return e.To[0] == "good@example.com" && e.Subject == "Hello Ada" && e.From == "Agency <news@agency.test>"
		})).Return("msg-1", nil)
		m.mailer.On("Send", ctx, mock.MatchedBy(func(e *mailer.Email) bool {
			return e.To[0] == "bad@example.com"
		})).Return("", errors.New("mailbox full"))

		result, err := svc.HandleCampaignSend(ctx, job)
		require.NoError(t, err)
		assert.JSONEq(t, `{"sent":1,"failed":1}`, result)
		assert.Equal(t, domain.CampaignStatusSent, campaign.Status)
		assert.Equal(t, 1, campaign.SentCount)
		assert.Equal(t, 1, campaign.FailedCount)
		assert.Equal(t, "mailbox full", campaign.LastError)
	})

	t.Run("a campaign that delivers nothing is marked failed", func(t *testing.T) {
		svc, m := newTestEmailService()
		template := newTestTemplate(t, orgID)
		campaign := queuedCampaign(t, orgID, template.ID, uuid.New())
		job := newSendJob(t, campaign.ID)
		contactID := uuid.New()

		m.campaignRepo.On("FindByID", ctx, orgID, campaign.ID).Return(campaign, nil)
		m.campaignRepo.On("SaveWithLock", ctx, campaign).Return(nil)
		m.templateRepo.On("FindByID", ctx, orgID, campaign.TemplateID).Return(template, nil)
		m.listRepo.On("FindSubscribedContactIDs", ctx, campaign.ListID).Return([]uuid.UUID{contactID}, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(nil, shared.ErrNotFound)

		result, err := svc.HandleCampaignSend(ctx, job)
		require.NoError(t, err)
		assert.JSONEq(t, `{"sent":0,"failed":1}`, result)
		assert.Equal(t, domain.CampaignStatusFailed, campaign.Status)
	})

	t.Run("a missing template fails the whole campaign", func(t *testing.T) {
		svc, m := newTestEmailService()
		campaign := queuedCampaign(t, orgID, uuid.New(), uuid.New())
		job := newSendJob(t, campaign.ID)

		m.campaignRepo.On("FindByID", ctx, orgID, campaign.ID).Return(campaign, nil)
		m.campaignRepo.On("SaveWithLock", ctx, campaign).Return(nil)
		m.templateRepo.On("FindByID", ctx, orgID, campaign.TemplateID).Return(nil, shared.ErrNotFound)

		_, err := svc.HandleCampaignSend(ctx, job)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, domain.CampaignStatusFailed, campaign.Status)
		m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		svc, m := newTestEmailService()
		job, err := jobs.NewJob(orgID, jobs.JobKindCampaignSend, campaignPayload{CampaignID: "not-a-uuid"})
		require.NoError(t, err)

		_, err = svc.HandleCampaignSend(ctx, job)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PAYLOAD", domainErr.Code)
		m.campaignRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})
}
