package crm

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrganizationRepository defines persistence operations for organizations
type OrganizationRepository interface {
	Save(ctx context.Context, org *Organization) error
	SaveWithLock(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Organization], error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContactRepository defines persistence operations for contacts
type ContactRepository interface {
	Save(ctx context.Context, contact *Contact) error
	SaveWithLock(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Contact, error)
	FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*Contact, error)
	// FindPrincipalByEmail looks up a login principal across organizations.
	// Only contacts with credentials are returned.
	FindPrincipalByEmail(ctx context.Context, email string) (*Contact, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Contact], error)
	FindByKind(ctx context.Context, orgID uuid.UUID, kind ContactKind, filter shared.Filter) (*shared.Paginated[*Contact], error)
	ExistsByEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error)
	CountByKind(ctx context.Context, orgID uuid.UUID, kind ContactKind) (int64, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
