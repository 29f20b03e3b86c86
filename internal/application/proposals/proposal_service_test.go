package proposals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/jobs"
	domain "github.com/agencyhub/backend/internal/domain/proposals"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
)

// MockProposalRepository is a mock implementation of proposals.ProposalRepository
type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) Save(ctx context.Context, proposal *domain.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockProposalRepository) SaveWithLock(ctx context.Context, proposal *domain.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockProposalRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Proposal, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalRepository) FindByAcceptToken(ctx context.Context, token string) (*domain.Proposal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Proposal], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Proposal]), args.Error(1)
}

func (m *MockProposalRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Proposal], error) {
	args := m.Called(ctx, orgID, contactID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Proposal]), args.Error(1)
}

func (m *MockProposalRepository) FindByStatus(ctx context.Context, orgID uuid.UUID, status domain.ProposalStatus, filter shared.Filter) (*shared.Paginated[*domain.Proposal], error) {
	args := m.Called(ctx, orgID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Proposal]), args.Error(1)
}

func (m *MockProposalRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status domain.ProposalStatus) (int64, error) {
	args := m.Called(ctx, orgID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProposalRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockAttachmentRepository is a mock implementation of proposals.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Save(ctx context.Context, attachment *domain.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Attachment, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindByProposal(ctx context.Context, orgID, proposalID uuid.UUID) ([]*domain.Attachment, error) {
	args := m.Called(ctx, orgID, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockContactFinder mocks only the contact lookup the proposal flow needs
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

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) DownloadURL(ctx context.Context, storageKey string) (string, time.Time, error) {
	args := m.Called(ctx, storageKey)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) Delete(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
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

type proposalServiceMocks struct {
	proposalRepo   *MockProposalRepository
	attachmentRepo *MockAttachmentRepository
	contactRepo    *MockContactFinder
	mailer         *MockMailer
	storage        *MockObjectStorage
	enqueuer       *MockJobEnqueuer
}

func newTestProposalService() (*ProposalService, *proposalServiceMocks) {
	m := &proposalServiceMocks{
		proposalRepo:   new(MockProposalRepository),
		attachmentRepo: new(MockAttachmentRepository),
		contactRepo:    new(MockContactFinder),
		mailer:         new(MockMailer),
		storage:        new(MockObjectStorage),
		enqueuer:       new(MockJobEnqueuer),
	}
	svc := NewProposalService(
		m.proposalRepo,
		m.attachmentRepo,
		m.contactRepo,
		m.mailer,
		m.storage,
		m.enqueuer,
		"https://app.agency.test",
		zap.NewNop(),
	)
	return svc, m
}

func newTestContact(t *testing.T, orgID uuid.UUID) *crm.Contact {
	t.Helper()
	contact, err := crm.NewContact(orgID, "client@example.com", "Ada", "Lovelace", crm.ContactKindProspect)
	require.NoError(t, err)
	return contact
}

func draftProposal(t *testing.T, orgID, contactID uuid.UUID) *domain.Proposal {
	t.Helper()
	proposal, err := domain.NewProposal(orgID, contactID, "Website Redesign", "Scope of work")
	require.NoError(t, err)
	require.NoError(t, proposal.AddItem("Design sprint", decimal.NewFromInt(1), decimal.NewFromInt(4500)))
	return proposal
}

func sentProposal(t *testing.T, orgID, contactID uuid.UUID, expiresAt *time.Time) *domain.Proposal {
	t.Helper()
	proposal := draftProposal(t, orgID, contactID)
	require.NoError(t, proposal.Send(expiresAt))
	return proposal
}

func TestProposalService_Create(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	contactID := uuid.New()
	creatorID := uuid.New()

	t.Run("creates a draft with currency and project link", func(t *testing.T) {
		svc, m := newTestProposalService()
		projectID := uuid.New()

		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(newTestContact(t, orgID), nil)
		m.proposalRepo.On("Save", ctx, mock.AnythingOfType("*proposals.Proposal")).Return(nil)

		proposal, err := svc.Create(ctx, CreateProposalInput{
			OrgID:     orgID,
			CreatedBy: creatorID,
			ContactID: contactID,
			ProjectID: &projectID,
			Title:     "Website Redesign",
			Body:      "Scope of work",
			Currency:  "EUR",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusDraft, proposal.Status)
		assert.Equal(t, "EUR", proposal.Currency)
		require.NotNil(t, proposal.CreatedBy)
		assert.Equal(t, creatorID, *proposal.CreatedBy)
		require.NotNil(t, proposal.ProjectID)
		assert.Equal(t, projectID, *proposal.ProjectID)
		assert.Empty(t, proposal.AcceptToken)
		m.proposalRepo.AssertExpectations(t)
	})

	t.Run("fails when recipient contact does not exist", func(t *testing.T) {
		svc, m := newTestProposalService()
		m.contactRepo.On("FindByID", ctx, orgID, contactID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateProposalInput{
			OrgID:     orgID,
			CreatedBy: creatorID,
			ContactID: contactID,
			Title:     "Website Redesign",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONTACT_NOT_FOUND", domainErr.Code)
		m.proposalRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProposalService_Send(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("mints token, emails the client and queues PDF rendering", func(t *testing.T) {
		svc, m := newTestProposalService()
		contact := newTestContact(t, orgID)
		proposal := draftProposal(t, orgID, contact.ID)

		m.proposalRepo.On("FindByID", ctx, orgID, proposal.ID).Return(proposal, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contact.ID).Return(contact, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil)
		m.mailer.On("Send", ctx, mock.MatchedBy(func(e *mailer.Email) bool {
			return len(e.To) == 1 && e.To[0] == contact.Email && e.Subject == "Proposal: Website Redesign"
		})).Return("msg-1", nil)
		m.enqueuer.On("EnqueueJob", ctx, orgID, jobs.JobKindProposalPDF, map[string]string{
			"proposal_id": proposal.ID.String(),
		}).Return(&jobs.Job{}, nil)

		sent, err := svc.Send(ctx, SendProposalInput{OrgID: orgID, ProposalID: proposal.ID})

		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusSent, sent.Status)
		assert.Len(t, sent.AcceptToken, domain.AcceptTokenBytes*2)
		require.NotNil(t, sent.SentAt)
		m.mailer.AssertExpectations(t)
		m.enqueuer.AssertExpectations(t)
	})

	t.Run("email failure does not undo the send", func(t *testing.T) {
		svc, m := newTestProposalService()
		contact := newTestContact(t, orgID)
		proposal := draftProposal(t, orgID, contact.ID)

		m.proposalRepo.On("FindByID", ctx, orgID, proposal.ID).Return(proposal, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contact.ID).Return(contact, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil)
		m.mailer.On("Send", ctx, mock.Anything).Return("", errors.New("smtp down"))
		m.enqueuer.On("EnqueueJob", ctx, orgID, jobs.JobKindProposalPDF, mock.Anything).Return(&jobs.Job{}, nil)

		sent, err := svc.Send(ctx, SendProposalInput{OrgID: orgID, ProposalID: proposal.ID})

		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusSent, sent.Status)
	})

	t.Run("refuses a proposal without items", func(t *testing.T) {
		svc, m := newTestProposalService()
		contact := newTestContact(t, orgID)
		proposal, err := domain.NewProposal(orgID, contact.ID, "Empty", "")
		require.NoError(t, err)

		m.proposalRepo.On("FindByID", ctx, orgID, proposal.ID).Return(proposal, nil)
		m.contactRepo.On("FindByID", ctx, orgID, contact.ID).Return(contact, nil)

		_, err = svc.Send(ctx, SendProposalInput{OrgID: orgID, ProposalID: proposal.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_PROPOSAL", domainErr.Code)
		m.proposalRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestProposalService_GetByToken(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("records the first view only", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := sentProposal(t, orgID, uuid.New(), nil)

		m.proposalRepo.On("FindByAcceptToken", ctx, proposal.AcceptToken).Return(proposal, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil).Once()

		viewed, err := svc.GetByToken(ctx, proposal.AcceptToken)
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusViewed, viewed.Status)
		require.NotNil(t, viewed.ViewedAt)
		firstView := *viewed.ViewedAt

		again, err := svc.GetByToken(ctx, proposal.AcceptToken)
		require.NoError(t, err)
		assert.Equal(t, firstView, *again.ViewedAt)
		m.proposalRepo.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("flips a sent proposal past its expiry to expired", func(t *testing.T) {
		svc, m := newTestProposalService()
		expiresAt := time.Now().Add(30 * time.Millisecond)
		proposal := sentProposal(t, orgID, uuid.New(), &expiresAt)
		time.Sleep(50 * time.Millisecond)

		m.proposalRepo.On("FindByAcceptToken", ctx, proposal.AcceptToken).Return(proposal, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil)

		got, err := svc.GetByToken(ctx, proposal.AcceptToken)
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusExpired, got.Status)
		assert.Nil(t, got.ViewedAt)
	})

	t.Run("flips a viewed proposal past its expiry to expired", func(t *testing.T) {
		svc, m := newTestProposalService()
		expiresAt := time.Now().Add(30 * time.Millisecond)
		proposal := sentProposal(t, orgID, uuid.New(), &expiresAt)
		proposal.MarkViewed()
		time.Sleep(50 * time.Millisecond)

		m.proposalRepo.On("FindByAcceptToken", ctx, proposal.AcceptToken).Return(proposal, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil)

		got, err := svc.GetByToken(ctx, proposal.AcceptToken)
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusExpired, got.Status)
	})

	t.Run("unknown token passes through not found", func(t *testing.T) {
		svc, m := newTestProposalService()
		m.proposalRepo.On("FindByAcceptToken", ctx, "nope").Return(nil, shared.ErrNotFound)

		_, err := svc.GetByToken(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProposalService_Decisions(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("accept records the decision", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := sentProposal(t, orgID, uuid.New(), nil)

		m.proposalRepo.On("FindByAcceptToken", ctx, proposal.AcceptToken).Return(proposal, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil)

		accepted, err := svc.AcceptByToken(ctx, proposal.AcceptToken)
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.DecidedAt)
	})

	t.Run("decline keeps the client's reason", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := sentProposal(t, orgID, uuid.New(), nil)

		m.proposalRepo.On("FindByAcceptToken", ctx, proposal.AcceptToken).Return(proposal, nil)
		m.proposalRepo.On("SaveWithLock", ctx, proposal).Return(nil)

		declined, err := svc.DeclineByToken(ctx, DeclineInput{Token: proposal.AcceptToken, Reason: "over budget"})
		require.NoError(t, err)
		assert.Equal(t, domain.ProposalStatusDeclined, declined.Status)
		assert.Equal(t, "over budget", declined.DeclineMsg)
	})

	t.Run("a decided proposal cannot be decided again", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := sentProposal(t, orgID, uuid.New(), nil)
		require.NoError(t, proposal.Accept())

		m.proposalRepo.On("FindByAcceptToken", ctx, proposal.AcceptToken).Return(proposal, nil)

		_, err := svc.DeclineByToken(ctx, DeclineInput{Token: proposal.AcceptToken})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_DECIDED", domainErr.Code)
		m.proposalRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestProposalService_Attachments(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("upload stores the blob then the record", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := draftProposal(t, orgID, uuid.New())
		data := []byte("%PDF-1.7 fake")

		m.proposalRepo.On("FindByID", ctx, orgID, proposal.ID).Return(proposal, nil)
		m.storage.On("Upload", ctx, mock.AnythingOfType("string"), data, "application/pdf").Return(nil)
		m.attachmentRepo.On("Save", ctx, mock.AnythingOfType("*proposals.Attachment")).Return(nil)

		attachment, err := svc.UploadAttachment(ctx, UploadAttachmentInput{
			OrgID:       orgID,
			ProposalID:  proposal.ID,
			FileName:    "sow.pdf",
			ContentType: "application/pdf",
			Data:        data,
		})

		require.NoError(t, err)
		assert.Equal(t, "sow.pdf", attachment.FileName)
		assert.Equal(t, int64(len(data)), attachment.SizeBytes)
		assert.Contains(t, attachment.StorageKey, proposal.ID.String())
		m.storage.AssertExpectations(t)
	})

	t.Run("orphaned blob is removed when the record save fails", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := draftProposal(t, orgID, uuid.New())

		m.proposalRepo.On("FindByID", ctx, orgID, proposal.ID).Return(proposal, nil)
		m.storage.On("Upload", ctx, mock.AnythingOfType("string"), mock.Anything, "image/png").Return(nil)
		m.attachmentRepo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))
		m.storage.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)

		_, err := svc.UploadAttachment(ctx, UploadAttachmentInput{
			OrgID:       orgID,
			ProposalID:  proposal.ID,
			FileName:    "mock.png",
			ContentType: "image/png",
			Data:        []byte{1, 2, 3},
		})

		require.Error(t, err)
		m.storage.AssertCalled(t, "Delete", ctx, mock.AnythingOfType("string"))
	})

	t.Run("rejects an unsupported content type", func(t *testing.T) {
		svc, m := newTestProposalService()
		proposal := draftProposal(t, orgID, uuid.New())

		m.proposalRepo.On("FindByID", ctx, orgID, proposal.ID).Return(proposal, nil)

		_, err := svc.UploadAttachment(ctx, UploadAttachmentInput{
			OrgID:       orgID,
			ProposalID:  proposal.ID,
			FileName:    "payload.exe",
			ContentType: "application/x-msdownload",
			Data:        []byte{1},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNSUPPORTED_TYPE", domainErr.Code)
		m.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("download link comes from storage", func(t *testing.T) {
		svc, m := newTestProposalService()
		attachment, err := domain.NewAttachment(orgID, uuid.New(), "sow.pdf", "application/pdf", 128)
		require.NoError(t, err)
		expiry := time.Now().Add(15 * time.Minute)

		m.attachmentRepo.On("FindByID", ctx, orgID, attachment.ID).Return(attachment, nil)
		m.storage.On("DownloadURL", ctx, attachment.StorageKey).Return("https://cdn.agency.test/sow.pdf", expiry, nil)

		url, expiresAt, err := svc.AttachmentDownloadURL(ctx, orgID, attachment.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.agency.test/sow.pdf", url)
		assert.Equal(t, expiry, expiresAt)
	})
}

func TestProposalService_Delete(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	proposalID := uuid.New()

	t.Run("removes attachment blobs and records first", func(t *testing.T) {
		svc, m := newTestProposalService()
		att, err := domain.NewAttachment(orgID, proposalID, "sow.pdf", "application/pdf", 128)
		require.NoError(t, err)

		m.attachmentRepo.On("FindByProposal", ctx, orgID, proposalID).Return([]*domain.Attachment{att}, nil)
		m.storage.On("Delete", ctx, att.StorageKey).Return(nil)
		m.attachmentRepo.On("Delete", ctx, orgID, att.ID).Return(nil)
		m.proposalRepo.On("Delete", ctx, orgID, proposalID).Return(nil)

		require.NoError(t, svc.Delete(ctx, orgID, proposalID))
		m.storage.AssertExpectations(t)
		m.attachmentRepo.AssertExpectations(t)
		m.proposalRepo.AssertExpectations(t)
	})

	t.Run("blob deletion failure does not block the delete", func(t *testing.T) {
		svc, m := newTestProposalService()
		att, err := domain.NewAttachment(orgID, proposalID, "sow.pdf", "application/pdf", 128)
		require.NoError(t, err)

		m.attachmentRepo.On("FindByProposal", ctx, orgID, proposalID).Return([]*domain.Attachment{att}, nil)
		m.storage.On("Delete", ctx, att.StorageKey).Return(errors.New("bucket gone"))
		m.attachmentRepo.On("Delete", ctx, orgID, att.ID).Return(nil)
		m.proposalRepo.On("Delete", ctx, orgID, proposalID).Return(nil)

		require.NoError(t, svc.Delete(ctx, orgID, proposalID))
	})
}
