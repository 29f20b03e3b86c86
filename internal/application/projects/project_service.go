// Package projects implements project management use cases.
package projects

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/projects"
	"github.com/agencyhub/backend/internal/domain/shared"
)

// CreateProjectInput creates a project
type CreateProjectInput struct {
	OrgID       uuid.UUID
	CreatedBy   uuid.UUID
	Name        string
	Description string
	ContactID   *uuid.UUID
	Budget      *decimal.Decimal
	StartDate   *time.Time
	DueDate     *time.Time
}

// UpdateProjectInput updates project fields
type UpdateProjectInput struct {
	OrgID       uuid.UUID
	ProjectID   uuid.UUID
	Name        string
	Description string
	Budget      *decimal.Decimal
	StartDate   *time.Time
	DueDate     *time.Time
}

// ProjectService handles project operations
type ProjectService struct {
	projectRepo projects.ProjectRepository
	contactRepo crm.ContactRepository
	logger      *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo projects.ProjectRepository, contactRepo crm.ContactRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// Create creates a project, optionally assigned to a contact
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*projects.Project, error) {
	project, err := projects.NewProject(input.OrgID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	project.CreatedBy = &input.CreatedBy

	if input.ContactID != nil {
		// The contact must belong to the same organization
		if _, err := s.contactRepo.FindByID(ctx, input.OrgID, *input.ContactID); err != nil {
			return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Assigned contact does not exist")
		}
		if err := project.AssignContact(*input.ContactID); err != nil {
			return nil, err
		}
	}
	if input.Budget != nil {
		if err := project.SetBudget(*input.Budget); err != nil {
			return nil, err
		}
	}
	if input.StartDate != nil || input.DueDate != nil {
		if err := project.SetSchedule(input.StartDate, input.DueDate); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project created",
		zap.String("org_id", input.OrgID.String()),
		zap.String("project_id", project.ID.String()))
	return project, nil
}

// Get loads a project by ID
func (s *ProjectService) Get(ctx context.Context, orgID, projectID uuid.UUID) (*projects.Project, error) {
	return s.projectRepo.FindByID(ctx, orgID, projectID)
}

// List lists projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[*projects.Project], error) {
	return s.projectRepo.FindAll(ctx, orgID, filter)
}

// ListByContact lists projects owned by a contact
func (s *ProjectService) ListByContact(ctx context.Context, orgID, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*projects.Project], error) {
	return s.projectRepo.FindByContact(ctx, orgID, contactID, filter)
}

// Update updates project fields
func (s *ProjectService) Update(ctx context.Context, input UpdateProjectInput) (*projects.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, input.OrgID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := project.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if input.Budget != nil {
		if err := project.SetBudget(*input.Budget); err != nil {
			return nil, err
		}
	}
	if input.StartDate != nil || input.DueDate != nil {
		if err := project.SetSchedule(input.StartDate, input.DueDate); err != nil {
			return nil, err
		}
	}
	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Transition moves the project to a new lifecycle status
func (s *ProjectService) Transition(ctx context.Context, orgID, projectID uuid.UUID, status projects.ProjectStatus) (*projects.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if err := project.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project transitioned",
		zap.String("project_id", projectID.String()),
		zap.String("status", string(status)))
	return project, nil
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, orgID, projectID uuid.UUID) error {
	return s.projectRepo.Delete(ctx, orgID, projectID)
}
