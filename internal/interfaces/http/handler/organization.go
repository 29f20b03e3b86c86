package handler

import (
	"time"

	crmapp "github.com/agencyhub/backend/internal/application/crm"
	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles organization settings endpoints
type OrganizationHandler struct {
	BaseHandler
	crmService *crmapp.CRMService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(crmService *crmapp.CRMService) *OrganizationHandler {
	return &OrganizationHandler{crmService: crmService}
}

// UpdateOrganizationRequest represents an organization profile update
// @Description Request body for updating the organization profile
type UpdateOrganizationRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200" example:"Northwind Digital"`
	Website string `json:"website" binding:"max=300" example:"https://northwind.io"`
}

// SetPlanRequest represents a plan change
// @Description Request body for changing the subscription plan
type SetPlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=free starter agency enterprise" example:"agency"`
}

// OrganizationResponse represents an organization in API responses
// @Description Organization details returned by the API
type OrganizationResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Name      string `json:"name" example:"Northwind Digital"`
	Slug      string `json:"slug" example:"northwind"`
	Plan      string `json:"plan" example:"agency" enums:"free,starter,agency,enterprise"`
	Status    string `json:"status" example:"active" enums:"active,suspended,cancelled"`
	Website   string `json:"website" example:"https://northwind.io"`
	CreatedAt string `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt string `json:"updated_at" example:"2026-01-24T12:00:00Z"`
	Version   int    `json:"version" example:"1"`
}

func toOrganizationResponse(org *crm.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        org.ID.String(),
		Name:      org.Name,
		Slug:      org.Slug,
		Plan:      string(org.Plan),
		Status:    string(org.Status),
		Website:   org.Website,
		CreatedAt: org.CreatedAt.Format(time.RFC3339),
		UpdatedAt: org.UpdatedAt.Format(time.RFC3339),
		Version:   org.Version,
	}
}

// Get godoc
// @ID           getOrganization
// @Summary      Get the current organization
// @Tags         organization
// @Produce      json
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /organization [get]
func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	org, err := h.crmService.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrganizationResponse(org))
}

// Update godoc
// @ID           updateOrganization
// @Summary      Update the organization profile
// @Tags         organization
// @Accept       json
// @Produce      json
// @Param        request body UpdateOrganizationRequest true "Update request"
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /organization [put]
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	org, err := h.crmService.UpdateOrganization(c.Request.Context(), crmapp.UpdateOrganizationInput{
		OrgID:   orgID,
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrganizationResponse(org))
}

// SetPlan godoc
// @ID           setOrganizationPlan
// @Summary      Change the subscription plan
// @Tags         organization
// @Accept       json
// @Produce      json
// @Param        request body SetPlanRequest true "Plan change request"
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /organization/plan [put]
func (h *OrganizationHandler) SetPlan(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	org, err := h.crmService.SetPlan(c.Request.Context(), orgID, crm.OrgPlan(req.Plan))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrganizationResponse(org))
}

// Suspend godoc
// @ID           suspendOrganization
// @Summary      Suspend the organization
// @Tags         organization
// @Produce      json
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Failure      403 {object} dto.ErrorResponse
// @Router       /organization/suspend [post]
func (h *OrganizationHandler) Suspend(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if middleware.GetJWTRole(c) != string(crm.ContactRoleOwner) {
		h.Forbidden(c, "Only the owner can suspend the organization")
		return
	}

	org, err := h.crmService.SuspendOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrganizationResponse(org))
}

// Activate godoc
// @ID           activateOrganization
// @Summary      Reactivate a suspended organization
// @Tags         organization
// @Produce      json
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Failure      403 {object} dto.ErrorResponse
// @Router       /organization/activate [post]
func (h *OrganizationHandler) Activate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if middleware.GetJWTRole(c) != string(crm.ContactRoleOwner) {
		h.Forbidden(c, "Only the owner can reactivate the organization")
		return
	}

	org, err := h.crmService.ActivateOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrganizationResponse(org))
}

// RegisterRoutes registers organization routes
func (h *OrganizationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	org := rg.Group("/organization")
	{
		org.GET("", h.Get)
		org.PUT("", h.Update)
		org.PUT("/plan", h.SetPlan)
		org.POST("/suspend", h.Suspend)
		org.POST("/activate", h.Activate)
	}
}
