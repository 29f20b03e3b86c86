package integration

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StoreConnectionRepository defines persistence operations for store connections
type StoreConnectionRepository interface {
	Save(ctx context.Context, conn *StoreConnection) error
	SaveWithLock(ctx context.Context, conn *StoreConnection) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*StoreConnection, error)
	FindAll(ctx context.Context, orgID uuid.UUID) ([]*StoreConnection, error)
	ExistsByShopDomain(ctx context.Context, orgID uuid.UUID, shopDomain string) (bool, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// ProductLinkRepository defines persistence operations for mirrored products
type ProductLinkRepository interface {
	Save(ctx context.Context, link *ProductLink) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*ProductLink, error)
	FindByExternalID(ctx context.Context, orgID, connectionID uuid.UUID, externalID string) (*ProductLink, error)
	FindByConnection(ctx context.Context, orgID, connectionID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ProductLink], error)
	CountByConnection(ctx context.Context, orgID, connectionID uuid.UUID) (int64, error)
	DeleteByConnection(ctx context.Context, orgID, connectionID uuid.UUID) error
}
