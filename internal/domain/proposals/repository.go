package proposals

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProposalRepository defines persistence operations for proposals
type ProposalRepository interface {
	Save(ctx context.Context, proposal *Proposal) error
	SaveWithLock(ctx context.Context, proposal *Proposal) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Proposal, error)
	// FindByAcceptToken is the only lookup that crosses the tenant boundary;
	// the token itself is the credential.
	FindByAcceptToken(ctx context.Context, token string) (*Proposal, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Proposal], error)
	FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Proposal], error)
	FindByStatus(ctx context.Context, orgID uuid.UUID, status ProposalStatus, filter shared.Filter) (*shared.Paginated[*Proposal], error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status ProposalStatus) (int64, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// AttachmentRepository defines persistence operations for proposal attachments
type AttachmentRepository interface {
	Save(ctx context.Context, attachment *Attachment) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Attachment, error)
	FindByProposal(ctx context.Context, orgID, proposalID uuid.UUID) ([]*Attachment, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
