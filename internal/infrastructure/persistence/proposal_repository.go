package persistence

import (
	"context"
	"errors"

	"github.com/agencyhub/backend/internal/domain/proposals"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProposalRepository implements proposals.ProposalRepository using GORM
type GormProposalRepository struct {
	db *gorm.DB
}

// NewGormProposalRepository creates a new GormProposalRepository
func NewGormProposalRepository(db *gorm.DB) *GormProposalRepository {
	return &GormProposalRepository{db: db}
}

// Save creates or updates a proposal together with its line items.
// Items removed from the aggregate are deleted so the rows mirror the
// in-memory list exactly.
func (r *GormProposalRepository) Save(ctx context.Context, proposal *proposals.Proposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", proposal.ID).
			Delete(&proposals.ProposalItem{}).Error; err != nil {
			return err
		}
		return tx.Save(proposal).Error
	})
}

// SaveWithLock saves a proposal with optimistic locking
func (r *GormProposalRepository) SaveWithLock(ctx context.Context, proposal *proposals.Proposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithLock(tx.Omit("Items"), proposal, proposal.ID, proposal.Version); err != nil {
			return err
		}
		if err := tx.Where("proposal_id = ?", proposal.ID).
			Delete(&proposals.ProposalItem{}).Error; err != nil {
			return err
		}
		if len(proposal.Items) == 0 {
			return nil
		}
		return tx.Create(&proposal.Items).Error
	})
}

// FindByID finds a proposal by ID within an organization
func (r *GormProposalRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*proposals.Proposal, error) {
	var proposal proposals.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&proposal, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

// FindByAcceptToken finds a proposal by its public accept token
func (r *GormProposalRepository) FindByAcceptToken(ctx context.Context, token string) (*proposals.Proposal, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var proposal proposals.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&proposal, "accept_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

// FindAll finds all proposals in an organization matching the filter
func (r *GormProposalRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*proposals.Proposal], error) {
	query := r.proposalQuery(ctx, orgID, filter)
	return findPage[*proposals.Proposal](query, filter, "created_at DESC", "title", "status", "sent_at", "created_at")
}

// FindByContact finds proposals addressed to a contact
func (r *GormProposalRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*proposals.Proposal], error) {
	query := r.proposalQuery(ctx, orgID, filter).Where("contact_id = ?", contactID)
	return findPage[*proposals.Proposal](query, filter, "created_at DESC", "title", "status", "created_at")
}

// FindByStatus finds proposals with a given status
func (r *GormProposalRepository) FindByStatus(ctx context.Context, orgID uuid.UUID, status proposals.ProposalStatus, filter shared.Filter) (*shared.Paginated[*proposals.Proposal], error) {
	query := r.proposalQuery(ctx, orgID, filter).Where("status = ?", status)
	return findPage[*proposals.Proposal](query, filter, "created_at DESC", "title", "created_at")
}

func (r *GormProposalRepository) proposalQuery(ctx context.Context, orgID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&proposals.Proposal{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "title")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "contact_id":
			query = query.Where("contact_id = ?", value)
		case "project_id":
			query = query.Where("project_id = ?", value)
		}
	}
	return query
}

// CountByStatus counts proposals with a given status
func (r *GormProposalRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status proposals.ProposalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&proposals.Proposal{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error
	return count, err
}

// Delete deletes a proposal within an organization
func (r *GormProposalRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).
			Delete(&proposals.ProposalItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&proposals.Proposal{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ proposals.ProposalRepository = (*GormProposalRepository)(nil)

// GormAttachmentRepository implements proposals.AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Save creates or updates an attachment
func (r *GormAttachmentRepository) Save(ctx context.Context, attachment *proposals.Attachment) error {
	return r.db.WithContext(ctx).Save(attachment).Error
}

// FindByID finds an attachment by ID within an organization
func (r *GormAttachmentRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*proposals.Attachment, error) {
	var attachment proposals.Attachment
	if err := r.db.WithContext(ctx).
		First(&attachment, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

// FindByProposal lists attachments belonging to a proposal
func (r *GormAttachmentRepository) FindByProposal(ctx context.Context, orgID, proposalID uuid.UUID) ([]*proposals.Attachment, error) {
	var attachments []*proposals.Attachment
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND proposal_id = ?", orgID, proposalID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

// Delete deletes an attachment within an organization
func (r *GormAttachmentRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&proposals.Attachment{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ proposals.AttachmentRepository = (*GormAttachmentRepository)(nil)
