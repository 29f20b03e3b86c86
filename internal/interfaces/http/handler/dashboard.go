package handler

import (
	dashboardapp "github.com/agencyhub/backend/internal/application/dashboard"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the overview snapshot
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboardapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardSummaryResponse represents the overview snapshot in API responses
// @Description Headline numbers across CRM, projects, proposals, billing and jobs
type DashboardSummaryResponse struct {
	Prospects       int64  `json:"prospects"`
	Clients         int64  `json:"clients"`
	ActiveProjects  int64  `json:"active_projects"`
	OpenProposals   int64  `json:"open_proposals"`
	UnpaidInvoices  int64  `json:"unpaid_invoices"`
	OverdueInvoices int64  `json:"overdue_invoices"`
	Revenue         string `json:"revenue" example:"12840.00"`
	FailedJobs      int64  `json:"failed_jobs"`
}

// Summary godoc
// @ID           getDashboardSummary
// @Summary      Get the organization overview snapshot
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[DashboardSummaryResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DashboardSummaryResponse{
		Prospects:       summary.Prospects,
		Clients:         summary.Clients,
		ActiveProjects:  summary.ActiveProjects,
		OpenProposals:   summary.OpenProposals,
		UnpaidInvoices:  summary.UnpaidInvoices,
		OverdueInvoices: summary.OverdueInvoices,
		Revenue:         summary.Revenue.StringFixed(2),
		FailedJobs:      summary.FailedJobs,
	})
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/summary", h.Summary)
}
