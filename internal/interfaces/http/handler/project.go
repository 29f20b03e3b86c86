package handler

import (
	"time"

	projectapp "github.com/agencyhub/backend/internal/application/projects"
	"github.com/agencyhub/backend/internal/domain/projects"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	BaseHandler
	projectService *projectapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *projectapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest represents a request to create a project
// @Description Request body for creating a project
type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200" example:"Website redesign"`
	Description string  `json:"description" example:"Full redesign of the marketing site"`
	ContactID   *string `json:"contact_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Budget      *string `json:"budget" example:"12000.00"`
	StartDate   *string `json:"start_date" example:"2026-02-01"`
	DueDate     *string `json:"due_date" example:"2026-04-30"`
}

// UpdateProjectRequest represents a request to update a project
// @Description Request body for updating a project
type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200" example:"Website redesign"`
	Description string  `json:"description" example:"Updated scope"`
	Budget      *string `json:"budget" example:"15000.00"`
	StartDate   *string `json:"start_date" example:"2026-02-15"`
	DueDate     *string `json:"due_date" example:"2026-05-15"`
}

// TransitionProjectRequest represents a status transition
// @Description Request body for changing project status
type TransitionProjectRequest struct {
	Status string `json:"status" binding:"required,oneof=planning active paused completed archived" example:"active"`
}

// ProjectResponse represents a project in API responses
// @Description Project details returned by the API
type ProjectResponse struct {
	ID          string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ContactID   *string `json:"contact_id,omitempty"`
	Name        string  `json:"name" example:"Website redesign"`
	Description string  `json:"description" example:""`
	Status      string  `json:"status" example:"active" enums:"planning,active,paused,completed,archived"`
	Budget      string  `json:"budget" example:"12000.00"`
	StartDate   *string `json:"start_date,omitempty" example:"2026-02-01"`
	DueDate     *string `json:"due_date,omitempty" example:"2026-04-30"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt   string  `json:"updated_at" example:"2026-01-24T12:00:00Z"`
	Version     int     `json:"version" example:"1"`
}

const dateLayout = "2006-01-02"

func toProjectResponse(project *projects.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          project.ID.String(),
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		Budget:      project.Budget.StringFixed(2),
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   project.UpdatedAt.Format(time.RFC3339),
		Version:     project.Version,
	}
	if project.ContactID != nil {
		id := project.ContactID.String()
		resp.ContactID = &id
	}
	if project.StartDate != nil {
		d := project.StartDate.Format(dateLayout)
		resp.StartDate = &d
	}
	if project.DueDate != nil {
		d := project.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	if project.CompletedAt != nil {
		t := project.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &t
	}
	return resp
}

func toProjectResponses(items []*projects.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProjectResponse(p))
	}
	return out
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create godoc
// @ID           createProject
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project creation request"
// @Success      201 {object} APIResponse[ProjectResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contactID, err := parseOptionalUUID(req.ContactID)
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}
	budget, err := parseOptionalDecimal(req.Budget)
	if err != nil {
		h.BadRequest(c, "Invalid budget")
		return
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date, expected YYYY-MM-DD")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), projectapp.CreateProjectInput{
		OrgID:       orgID,
		CreatedBy:   userID,
		Name:        req.Name,
		Description: req.Description,
		ContactID:   contactID,
		Budget:      budget,
		StartDate:   startDate,
		DueDate:     dueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toProjectResponse(project))
}

// List godoc
// @ID           listProjects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        contact_id query string false "Filter by client contact"
// @Success      200 {object} APIResponse[[]ProjectResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if contactParam := c.Query("contact_id"); contactParam != "" {
		contactID, err := uuid.Parse(contactParam)
		if err != nil {
			h.BadRequest(c, "Invalid contact ID")
			return
		}
		page, err := h.projectService.ListByContact(c.Request.Context(), orgID, contactID, req.ToFilter())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, toProjectResponses(page.Items), page.Total, page.Page, page.PageSize)
		return
	}

	page, err := h.projectService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProjectResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getProject
// @Summary      Get a project by ID
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} APIResponse[ProjectResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), orgID, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProjectResponse(project))
}

// Update godoc
// @ID           updateProject
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body UpdateProjectRequest true "Project update request"
// @Success      200 {object} APIResponse[ProjectResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := parseOptionalDecimal(req.Budget)
	if err != nil {
		h.BadRequest(c, "Invalid budget")
		return
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date, expected YYYY-MM-DD")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), projectapp.UpdateProjectInput{
		OrgID:       orgID,
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Budget:      budget,
		StartDate:   startDate,
		DueDate:     dueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProjectResponse(project))
}

// Transition godoc
// @ID           transitionProject
// @Summary      Change project status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body TransitionProjectRequest true "Status transition request"
// @Success      200 {object} APIResponse[ProjectResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/status [put]
func (h *ProjectHandler) Transition(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req TransitionProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Transition(c.Request.Context(), orgID, projectID, projects.ProjectStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProjectResponse(project))
}

// Delete godoc
// @ID           deleteProject
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), orgID, projectID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers project routes
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.POST("", h.Create)
		projects.GET("", h.List)
		projects.GET("/:id", h.GetByID)
		projects.PUT("/:id", h.Update)
		projects.PUT("/:id/status", h.Transition)
		projects.DELETE("/:id", h.Delete)
	}
}
