package proposals

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/domain/proposals"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/printing"
)

// PDFRenderer converts rendered HTML into PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// pdfPayload is the job payload for a proposal PDF render
type pdfPayload struct {
	ProposalID string `json:"proposal_id"`
}

// PDFWorker renders a sent proposal to PDF and stores it as an attachment
type PDFWorker struct {
	proposalRepo   proposals.ProposalRepository
	attachmentRepo proposals.AttachmentRepository
	orgRepo        crm.OrganizationRepository
	renderer       PDFRenderer
	storage        ObjectStorage
	logger         *zap.Logger
}

// NewPDFWorker creates a new PDF worker
func NewPDFWorker(
	proposalRepo proposals.ProposalRepository,
	attachmentRepo proposals.AttachmentRepository,
	orgRepo crm.OrganizationRepository,
	renderer PDFRenderer,
	storage ObjectStorage,
	logger *zap.Logger,
) *PDFWorker {
	return &PDFWorker{
		proposalRepo:   proposalRepo,
		attachmentRepo: attachmentRepo,
		orgRepo:        orgRepo,
		renderer:       renderer,
		storage:        storage,
		logger:         logger,
	}
}

// Handle is the proposal PDF job handler
func (w *PDFWorker) Handle(ctx context.Context, job *jobs.Job) (string, error) {
	var payload pdfPayload
	if err := job.DecodePayload(&payload); err != nil {
		return "", err
	}
	proposalID, err := uuid.Parse(payload.ProposalID)
	if err != nil {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Proposal ID is not a UUID")
	}

	proposal, err := w.proposalRepo.FindByID(ctx, job.OrgID, proposalID)
	if err != nil {
		return "", err
	}
	org, err := w.orgRepo.FindByID(ctx, job.OrgID)
	if err != nil {
		return "", err
	}

	html, err := printing.RenderProposalHTML(proposal, org.Name)
	if err != nil {
		return "", err
	}
	pdf, err := w.renderer.Render(ctx, html)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("proposal-%s.pdf", proposal.ID)
	attachment, err := proposals.NewAttachment(job.OrgID, proposal.ID, fileName, "application/pdf", int64(len(pdf)))
	if err != nil {
		return "", err
	}
	if err := w.storage.Upload(ctx, attachment.StorageKey, pdf, "application/pdf"); err != nil {
		return "", err
	}
	if err := w.attachmentRepo.Save(ctx, attachment); err != nil {
		return "", err
	}

	w.logger.Info("proposal PDF stored",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("attachment_id", attachment.ID.String()),
		zap.Int("bytes", len(pdf)))
	result, _ := json.Marshal(map[string]string{"attachment_id": attachment.ID.String()})
	return string(result), nil
}
