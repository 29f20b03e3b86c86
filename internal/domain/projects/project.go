package projects

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusPaused    ProjectStatus = "paused"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// validTransitions defines the allowed project status transitions
var validTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusPlanning:  {ProjectStatusActive, ProjectStatusArchived},
	ProjectStatusActive:    {ProjectStatusPaused, ProjectStatusCompleted, ProjectStatusArchived},
	ProjectStatusPaused:    {ProjectStatusActive, ProjectStatusArchived},
	ProjectStatusCompleted: {ProjectStatusActive, ProjectStatusArchived},
	ProjectStatusArchived:  {},
}

// Project is a unit of client work an agency delivers and bills against
type Project struct {
	shared.OrgAggregateRoot
	ContactID   *uuid.UUID      `gorm:"type:uuid;index"` // The client this project is for
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Status      ProjectStatus   `gorm:"type:varchar(20);not null;default:'planning'"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StartDate   *time.Time      `gorm:"type:date"`
	DueDate     *time.Time      `gorm:"type:date"`
	CompletedAt *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new project in planning status
func NewProject(orgID uuid.UUID, name, description string) (*Project, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if err := validateProjectName(name); err != nil {
		return nil, err
	}

	return &Project{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Description:      description,
		Status:           ProjectStatusPlanning,
		Budget:           decimal.Zero,
	}, nil
}

// Update updates the project's basic information
func (p *Project) Update(name, description string) error {
	if err := validateProjectName(name); err != nil {
		return err
	}
	if p.Status == ProjectStatusArchived {
		return shared.NewDomainError("PROJECT_ARCHIVED", "Archived projects cannot be modified")
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AssignContact links the project to a client contact
func (p *Project) AssignContact(contactID uuid.UUID) error {
	if contactID == uuid.Nil {
		return shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}
	if p.Status == ProjectStatusArchived {
		return shared.NewDomainError("PROJECT_ARCHIVED", "Archived projects cannot be modified")
	}

	p.ContactID = &contactID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetBudget sets the project budget
func (p *Project) SetBudget(budget decimal.Decimal) error {
	if budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	if p.Status == ProjectStatusArchived {
		return shared.NewDomainError("PROJECT_ARCHIVED", "Archived projects cannot be modified")
	}

	p.Budget = budget
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetSchedule sets the start and due dates
func (p *Project) SetSchedule(startDate, dueDate *time.Time) error {
	if startDate != nil && dueDate != nil && dueDate.Before(*startDate) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Due date cannot be before start date")
	}
	if p.Status == ProjectStatusArchived {
		return shared.NewDomainError("PROJECT_ARCHIVED", "Archived projects cannot be modified")
	}

	p.StartDate = startDate
	p.DueDate = dueDate
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// TransitionTo moves the project to a new status if the transition is allowed
func (p *Project) TransitionTo(status ProjectStatus) error {
	allowed, ok := validTransitions[p.Status]
	if !ok {
		return shared.NewDomainError("INVALID_STATUS", "Unknown project status")
	}

	permitted := false
	for _, s := range allowed {
		if s == status {
			permitted = true
			break
		}
	}
	if !permitted {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition project from "+string(p.Status)+" to "+string(status))
	}

	p.Status = status
	now := time.Now()
	if status == ProjectStatusCompleted {
		p.CompletedAt = &now
	} else {
		p.CompletedAt = nil
	}
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// IsOverdue returns true if the project has a due date in the past and is not done
func (p *Project) IsOverdue() bool {
	if p.DueDate == nil {
		return false
	}
	if p.Status == ProjectStatusCompleted || p.Status == ProjectStatusArchived {
		return false
	}
	return time.Now().After(*p.DueDate)
}

func validateProjectName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	return nil
}
