package projects

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository defines persistence operations for projects
type ProjectRepository interface {
	Save(ctx context.Context, project *Project) error
	SaveWithLock(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Project], error)
	FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Project], error)
	FindByStatus(ctx context.Context, orgID uuid.UUID, status ProjectStatus, filter shared.Filter) (*shared.Paginated[*Project], error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, status ProjectStatus) (int64, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
