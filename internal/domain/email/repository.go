package email

import (
	"context"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TemplateRepository defines persistence operations for email templates
type TemplateRepository interface {
	Save(ctx context.Context, template *Template) error
	SaveWithLock(ctx context.Context, template *Template) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Template, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Template], error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// ListRepository defines persistence operations for email lists and members
type ListRepository interface {
	Save(ctx context.Context, list *List) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*List, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*List], error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	AddMember(ctx context.Context, member *ListMember) error
	SaveMember(ctx context.Context, member *ListMember) error
	FindMember(ctx context.Context, listID, contactID uuid.UUID) (*ListMember, error)
	FindMembers(ctx context.Context, listID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ListMember], error)
	// FindSubscribedContactIDs returns contact IDs with an active subscription,
	// in insertion order, for campaign delivery.
	FindSubscribedContactIDs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
	CountMembers(ctx context.Context, listID uuid.UUID) (int64, error)
	RemoveMember(ctx context.Context, listID, contactID uuid.UUID) error
}

// CampaignRepository defines persistence operations for campaigns
type CampaignRepository interface {
	Save(ctx context.Context, campaign *Campaign) error
	SaveWithLock(ctx context.Context, campaign *Campaign) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Campaign, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Campaign], error)
	// FindScheduledBefore returns scheduled campaigns whose send time has
	// arrived, for the scheduler sweep.
	FindScheduledBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Campaign, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
