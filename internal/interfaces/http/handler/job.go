package handler

import (
	"time"

	jobsapp "github.com/agencyhub/backend/internal/application/jobs"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// JobHandler handles background job inspection endpoints
type JobHandler struct {
	BaseHandler
	jobService *jobsapp.JobService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService *jobsapp.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// JobResponse represents a background job in API responses
// @Description Background job with its execution state
type JobResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind" example:"seo_audit"`
	Status      string  `json:"status" example:"pending" enums:"pending,running,done,failed,cancelled"`
	Attempts    int     `json:"attempts"`
	MaxAttempts int     `json:"max_attempts"`
	RunAt       string  `json:"run_at"`
	StartedAt   *string `json:"started_at,omitempty"`
	FinishedAt  *string `json:"finished_at,omitempty"`
	LastError   string  `json:"last_error,omitempty"`
	Result      string  `json:"result,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toJobResponse(job *jobs.Job) JobResponse {
	return JobResponse{
		ID:          job.ID.String(),
		Kind:        string(job.Kind),
		Status:      string(job.Status),
		Attempts:    job.Attempts,
		MaxAttempts: job.MaxAttempts,
		RunAt:       job.RunAt.Format(time.RFC3339),
		StartedAt:   formatOptionalTime(job.StartedAt),
		FinishedAt:  formatOptionalTime(job.FinishedAt),
		LastError:   job.LastError,
		Result:      job.Result,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   job.UpdatedAt.Format(time.RFC3339),
	}
}

// List godoc
// @ID           listJobs
// @Summary      List background jobs
// @Tags         jobs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]JobResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
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

	page, err := h.jobService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]JobResponse, 0, len(page.Items))
	for _, job := range page.Items {
		out = append(out, toJobResponse(job))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getJob
// @Summary      Get a background job
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID"
// @Success      200 {object} APIResponse[JobResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), orgID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toJobResponse(job))
}

// Cancel godoc
// @ID           cancelJob
// @Summary      Cancel a pending job
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID"
// @Success      200 {object} APIResponse[JobResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /jobs/{id}/cancel [post]
func (h *JobHandler) Cancel(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.Cancel(c.Request.Context(), orgID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toJobResponse(job))
}

// Retry godoc
// @ID           retryJob
// @Summary      Requeue a failed job
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID"
// @Success      200 {object} APIResponse[JobResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /jobs/{id}/retry [post]
func (h *JobHandler) Retry(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.Retry(c.Request.Context(), orgID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toJobResponse(job))
}

// RegisterRoutes registers job routes
func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/jobs")
	{
		group.GET("", h.List)
		group.GET("/:id", h.GetByID)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/retry", h.Retry)
	}
}
