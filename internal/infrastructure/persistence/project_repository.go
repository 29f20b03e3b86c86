package persistence

import (
	"context"
	"errors"

	"github.com/agencyhub/backend/internal/domain/projects"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements projects.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *projects.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// SaveWithLock saves a project with optimistic locking
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, project *projects.Project) error {
	return saveWithLock(r.db.WithContext(ctx), project, project.ID, project.Version)
}

// FindByID finds a project by ID within an organization
func (r *GormProjectRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*projects.Project, error) {
	var project projects.Project
	if err := r.db.WithContext(ctx).
		First(&project, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindAll finds all projects in an organization matching the filter
func (r *GormProjectRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*projects.Project], error) {
	query := r.projectQuery(ctx, orgID, filter)
	return findPage[*projects.Project](query, filter, "created_at DESC", "name", "status", "due_date", "created_at")
}

// FindByContact finds projects owned by a contact
func (r *GormProjectRepository) FindByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*projects.Project], error) {
	query := r.projectQuery(ctx, orgID, filter).Where("contact_id = ?", contactID)
	return findPage[*projects.Project](query, filter, "created_at DESC", "name", "status", "due_date", "created_at")
}

// FindByStatus finds projects with a given status
func (r *GormProjectRepository) FindByStatus(ctx context.Context, orgID uuid.UUID, status projects.ProjectStatus, filter shared.Filter) (*shared.Paginated[*projects.Project], error) {
	query := r.projectQuery(ctx, orgID, filter).Where("status = ?", status)
	return findPage[*projects.Project](query, filter, "created_at DESC", "name", "due_date", "created_at")
}

func (r *GormProjectRepository) projectQuery(ctx context.Context, orgID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&projects.Project{}).Where("org_id = ?", orgID)
	query = applySearch(query, filter.Search, "name", "description")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "contact_id":
			query = query.Where("contact_id = ?", value)
		}
	}
	return query
}

// CountByStatus counts projects with a given status
func (r *GormProjectRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status projects.ProjectStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&projects.Project{}).
		Where("org_id = ? AND status = ?", orgID, status).
		Count(&count).Error
	return count, err
}

// Delete deletes a project within an organization
func (r *GormProjectRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&projects.Project{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ projects.ProjectRepository = (*GormProjectRepository)(nil)
