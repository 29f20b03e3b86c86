// Package proposals implements the proposal lifecycle: drafting, sending,
// the public accept flow, attachments and PDF rendering.
package proposals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/proposals"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
)

// Mailer sends proposal notification email
type Mailer interface {
	Send(ctx context.Context, email *mailer.Email) (string, error)
}

// ObjectStorage stores attachment blobs
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, storageKey string) (string, time.Time, error)
	Delete(ctx context.Context, storageKey string) error
}

// JobEnqueuer creates a background job row and pushes its ID on the queue
type JobEnqueuer interface {
	EnqueueJob(ctx context.Context, orgID uuid.UUID, kind jobs.JobKind, payload interface{}) (*jobs.Job, error)
}

// ProposalService handles proposal operations
type ProposalService struct {
	proposalRepo   proposals.ProposalRepository
	attachmentRepo proposals.AttachmentRepository
	contactRepo    crm.ContactRepository
	mailer         Mailer
	storage        ObjectStorage
	enqueuer       JobEnqueuer
	publicBaseURL  string
	logger         *zap.Logger
}

// NewProposalService creates a new proposal service
func NewProposalService(
	proposalRepo proposals.ProposalRepository,
	attachmentRepo proposals.AttachmentRepository,
	contactRepo crm.ContactRepository,
	m Mailer,
	storage ObjectStorage,
	enqueuer JobEnqueuer,
	publicBaseURL string,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		proposalRepo:   proposalRepo,
		attachmentRepo: attachmentRepo,
		contactRepo:    contactRepo,
		mailer:         m,
		storage:        storage,
		enqueuer:       enqueuer,
		publicBaseURL:  publicBaseURL,
		logger:         logger,
	}
}

// Create creates a draft proposal for a contact
func (s *ProposalService) Create(ctx context.Context, input CreateProposalInput) (*proposals.Proposal, error) {
	if _, err := s.contactRepo.FindByID(ctx, input.OrgID, input.ContactID); err != nil {
		return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Recipient contact does not exist")
	}

	proposal, err := proposals.NewProposal(input.OrgID, input.ContactID, input.Title, input.Body)
	if err != nil {
		return nil, err
	}
	proposal.CreatedBy = &input.CreatedBy
	if input.Currency != "" {
		proposal.Currency = input.Currency
	}
	if input.ProjectID != nil {
		if err := proposal.LinkProject(*input.ProjectID); err != nil {
			return nil, err
		}
	}

	if err := s.proposalRepo.Save(ctx, proposal); err != nil {
		return nil, err
	}
	s.logger.Info("proposal created",
		zap.String("org_id", input.OrgID.String()),
		zap.String("proposal_id", proposal.ID.String()))
	return proposal, nil
}

// Get loads a proposal by ID
func (s *ProposalService) Get(ctx context.Context, orgID, proposalID uuid.UUID) (*proposals.Proposal, error) {
	return s.proposalRepo.FindByID(ctx, orgID, proposalID)
}

// List lists proposals with filtering and pagination
func (s *ProposalService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*proposals.Proposal], error) {
	return s.proposalRepo.FindAll(ctx, orgID, filter)
}

// Update edits a draft proposal
func (s *ProposalService) Update(ctx context.Context, input UpdateProposalInput) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, input.OrgID, input.ProposalID)
	if err != nil {
		return nil, err
	}
	if err := proposal.Update(input.Title, input.Body); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// AddItem appends a line item to a draft
func (s *ProposalService) AddItem(ctx context.Context, input AddItemInput) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, input.OrgID, input.ProposalID)
	if err != nil {
		return nil, err
	}
	if err := proposal.AddItem(input.Description, input.Quantity, input.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// RemoveItem removes a line item from a draft
func (s *ProposalService) RemoveItem(ctx context.Context, orgID, proposalID, itemID uuid.UUID) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, orgID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := proposal.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// Send mints the accept token, emails the client a public link, and queues
// PDF rendering. The email failing does not undo the send; the proposal
// stays reachable through its link.
func (s *ProposalService) Send(ctx context.Context, input SendProposalInput) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, input.OrgID, input.ProposalID)
	if err != nil {
		return nil, err
	}
	contact, err := s.contactRepo.FindByID(ctx, input.OrgID, proposal.ContactID)
	if err != nil {
		return nil, err
	}

	if err := proposal.Send(input.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
		return nil, err
	}

	link := s.publicLink(proposal.AcceptToken)
	body := fmt.Sprintf("<p>You have received a proposal: <strong>%s</strong>.</p>", proposal.Title)
	if input.Message != "" {
		body += fmt.Sprintf("<p>%s</p>", input.Message)
	}
	body += fmt.Sprintf(`<p><a href="%s">Review the proposal</a></p>`, link)

	if _, err := s.mailer.Send(ctx, &mailer.Email{
		To:      []string{contact.Email},
		Subject: "Proposal: " + proposal.Title,
		HTML:    body,
	}); err != nil {
		s.logger.Error("proposal notification email failed",
			zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
	}

	if s.enqueuer != nil {
		if _, err := s.enqueuer.EnqueueJob(ctx, input.OrgID, jobs.JobKindProposalPDF, map[string]string{
			"proposal_id": proposal.ID.String(),
		}); err != nil {
			s.logger.Error("failed to enqueue proposal PDF job",
				zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("proposal sent",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("contact_id", contact.ID.String()))
	return proposal, nil
}

// GetByToken resolves a public accept link. The first view is recorded;
// a proposal past its expiry flips to expired on access.
func (s *ProposalService) GetByToken(ctx context.Context, token string) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByAcceptToken(ctx, token)
	if err != nil {
		return nil, err
	}

	outstanding := proposal.Status == proposals.ProposalStatusSent ||
		proposal.Status == proposals.ProposalStatusViewed
	if proposal.IsExpired() && outstanding {
		if err := proposal.Expire(); err == nil {
			if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
				s.logger.Error("failed to persist proposal expiry", zap.Error(err))
			}
		}
		return proposal, nil
	}

	before := proposal.ViewedAt
	proposal.MarkViewed()
	if before == nil && proposal.ViewedAt != nil {
		if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
			s.logger.Error("failed to record proposal view", zap.Error(err))
		}
	}
	return proposal, nil
}

// AcceptByToken records the client's acceptance
func (s *ProposalService) AcceptByToken(ctx context.Context, token string) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByAcceptToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := proposal.Accept(); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
		return nil, err
	}
	s.logger.Info("proposal accepted", zap.String("proposal_id", proposal.ID.String()))
	return proposal, nil
}

// DeclineByToken records the client's decline
func (s *ProposalService) DeclineByToken(ctx context.Context, input DeclineInput) (*proposals.Proposal, error) {
	proposal, err := s.proposalRepo.FindByAcceptToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if err := proposal.Decline(input.Reason); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.SaveWithLock(ctx, proposal); err != nil {
		return nil, err
	}
	s.logger.Info("proposal declined", zap.String("proposal_id", proposal.ID.String()))
	return proposal, nil
}

// Delete removes a proposal and its attachments
func (s *ProposalService) Delete(ctx context.Context, orgID, proposalID uuid.UUID) error {
	attachments, err := s.attachmentRepo.FindByProposal(ctx, orgID, proposalID)
	if err != nil {
		return err
	}
	for _, att := range attachments {
		if err := s.storage.Delete(ctx, att.StorageKey); err != nil {
			s.logger.Error("failed to delete attachment blob",
				zap.String("storage_key", att.StorageKey), zap.Error(err))
		}
		if err := s.attachmentRepo.Delete(ctx, orgID, att.ID); err != nil {
			return err
		}
	}
	return s.proposalRepo.Delete(ctx, orgID, proposalID)
}

// UploadAttachment validates and stores a file against a proposal
func (s *ProposalService) UploadAttachment(ctx context.Context, input UploadAttachmentInput) (*proposals.Attachment, error) {
	if _, err := s.proposalRepo.FindByID(ctx, input.OrgID, input.ProposalID); err != nil {
		return nil, err
	}

	attachment, err := proposals.NewAttachment(input.OrgID, input.ProposalID, input.FileName, input.ContentType, int64(len(input.Data)))
	if err != nil {
		return nil, err
	}
	if err := s.storage.Upload(ctx, attachment.StorageKey, input.Data, input.ContentType); err != nil {
		return nil, fmt.Errorf("attachment upload failed: %w", err)
	}
	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		// Orphaned blob is cleaned up immediately rather than left behind
		if derr := s.storage.Delete(ctx, attachment.StorageKey); derr != nil {
			s.logger.Error("failed to clean up orphaned attachment blob", zap.Error(derr))
		}
		return nil, err
	}
	return attachment, nil
}

// ListAttachments lists a proposal's attachments
func (s *ProposalService) ListAttachments(ctx context.Context, orgID, proposalID uuid.UUID) ([]*proposals.Attachment, error) {
	return s.attachmentRepo.FindByProposal(ctx, orgID, proposalID)
}

// AttachmentDownloadURL generates a short-lived download link
func (s *ProposalService) AttachmentDownloadURL(ctx context.Context, orgID, attachmentID uuid.UUID) (string, time.Time, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, orgID, attachmentID)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.storage.DownloadURL(ctx, attachment.StorageKey)
}

// DeleteAttachment removes an attachment and its blob
func (s *ProposalService) DeleteAttachment(ctx context.Context, orgID, attachmentID uuid.UUID) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, orgID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, attachment.StorageKey); err != nil {
		s.logger.Error("failed to delete attachment blob",
			zap.String("storage_key", attachment.StorageKey), zap.Error(err))
	}
	return s.attachmentRepo.Delete(ctx, orgID, attachmentID)
}

func (s *ProposalService) publicLink(token string) string {
	return fmt.Sprintf("%s/p/%s", s.publicBaseURL, token)
}
