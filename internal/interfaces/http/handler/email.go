package handler

import (
	"time"

	emailapp "github.com/agencyhub/backend/internal/application/email"
	"github.com/agencyhub/backend/internal/domain/email"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// EmailHandler handles template, mailing list and campaign endpoints
type EmailHandler struct {
	BaseHandler
	emailService *emailapp.EmailService
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(emailService *emailapp.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// CreateTemplateRequest represents a request to create a template
// @Description Request body for creating an email template
type CreateTemplateRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200" example:"Monthly newsletter"`
	Subject  string `json:"subject" binding:"required,min=1,max=300" example:"News from {{first_name}}'s favourite agency"`
	BodyHTML string `json:"body_html" binding:"required" example:"<p>Hello {{first_name}}</p>"`
	BodyText string `json:"body_text" example:"Hello {{first_name}}"`
}

// UpdateTemplateRequest represents a request to edit a template
// @Description Request body for updating an email template
type UpdateTemplateRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200" example:"Monthly newsletter"`
	Subject  string `json:"subject" binding:"required,min=1,max=300"`
	BodyHTML string `json:"body_html" binding:"required"`
	BodyText string `json:"body_text"`
}

// CreateListRequest represents a request to create a mailing list
// @Description Request body for creating a mailing list
type CreateListRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200" example:"Clients"`
	Description string `json:"description" example:"All active retainer clients"`
}

// UpdateListRequest represents a request to edit a mailing list
// @Description Request body for updating a mailing list
type UpdateListRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200" example:"Clients"`
	Description string `json:"description"`
}

// AddMemberRequest represents a subscription request
// @Description Request body for adding a contact to a list
type AddMemberRequest struct {
	ContactID string `json:"contact_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// CreateCampaignRequest represents a request to draft a campaign
// @Description Request body for drafting a campaign
type CreateCampaignRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200" example:"February newsletter"`
	TemplateID string `json:"template_id" binding:"required,uuid"`
	ListID     string `json:"list_id" binding:"required,uuid"`
	FromName   string `json:"from_name" binding:"max=100" example:"Northwind Digital"`
	FromEmail  string `json:"from_email" binding:"omitempty,email,max=254" example:"hello@northwind.io"`
}

// ScheduleCampaignRequest represents a future send time
// @Description Request body for scheduling a campaign
type ScheduleCampaignRequest struct {
	SendAt string `json:"send_at" binding:"required" example:"2026-02-01T09:00:00Z"`
}

// TemplateResponse represents a template in API responses
// @Description Email template details
type TemplateResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name" example:"Monthly newsletter"`
	Subject   string `json:"subject"`
	BodyHTML  string `json:"body_html"`
	BodyText  string `json:"body_text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Version   int    `json:"version" example:"1"`
}

// ListResponse represents a mailing list in API responses
// @Description Mailing list details
type ListResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name" example:"Clients"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Version     int    `json:"version" example:"1"`
}

// ListMemberResponse represents a list membership
// @Description List membership with subscription state
type ListMemberResponse struct {
	ID             string  `json:"id"`
	ListID         string  `json:"list_id"`
	ContactID      string  `json:"contact_id"`
	Subscribed     bool    `json:"subscribed" example:"true"`
	UnsubscribedAt *string `json:"unsubscribed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// CampaignResponse represents a campaign in API responses
// @Description Campaign details with delivery progress
type CampaignResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" example:"February newsletter"`
	TemplateID  string  `json:"template_id"`
	ListID      string  `json:"list_id"`
	Status      string  `json:"status" example:"draft" enums:"draft,scheduled,queued,sending,sent,failed,cancelled"`
	FromName    string  `json:"from_name"`
	FromEmail   string  `json:"from_email"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	StartedAt   *string `json:"started_at,omitempty"`
	FinishedAt  *string `json:"finished_at,omitempty"`
	SentCount   int     `json:"sent_count" example:"120"`
	FailedCount int     `json:"failed_count" example:"3"`
	LastError   string  `json:"last_error,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	Version     int     `json:"version" example:"1"`
}

func toTemplateResponse(t *email.Template) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Subject:   t.Subject,
		BodyHTML:  t.BodyHTML,
		BodyText:  t.BodyText,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		Version:   t.Version,
	}
}

func toListResponse(l *email.List) ListResponse {
	return ListResponse{
		ID:          l.ID.String(),
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
		Version:     l.Version,
	}
}

func toListMemberResponse(m *email.ListMember) ListMemberResponse {
	return ListMemberResponse{
		ID:             m.ID.String(),
		ListID:         m.ListID.String(),
		ContactID:      m.ContactID.String(),
		Subscribed:     m.Subscribed,
		UnsubscribedAt: formatOptionalTime(m.UnsubscribedAt),
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

func toCampaignResponse(cp *email.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:          cp.ID.String(),
		Name:        cp.Name,
		TemplateID:  cp.TemplateID.String(),
		ListID:      cp.ListID.String(),
		Status:      string(cp.Status),
		FromName:    cp.FromName,
		FromEmail:   cp.FromEmail,
		ScheduledAt: formatOptionalTime(cp.ScheduledAt),
		StartedAt:   formatOptionalTime(cp.StartedAt),
		FinishedAt:  formatOptionalTime(cp.FinishedAt),
		SentCount:   cp.SentCount,
		FailedCount: cp.FailedCount,
		LastError:   cp.LastError,
		CreatedAt:   cp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   cp.UpdatedAt.Format(time.RFC3339),
		Version:     cp.Version,
	}
}

// CreateTemplate godoc
// @ID           createEmailTemplate
// @Summary      Create an email template
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        request body CreateTemplateRequest true "Template creation request"
// @Success      201 {object} APIResponse[TemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/templates [post]
func (h *EmailHandler) CreateTemplate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.emailService.CreateTemplate(c.Request.Context(), emailapp.CreateTemplateInput{
		OrgID:     orgID,
		CreatedBy: userID,
		Name:      req.Name,
		Subject:   req.Subject,
		BodyHTML:  req.BodyHTML,
		BodyText:  req.BodyText,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toTemplateResponse(template))
}

// ListTemplates godoc
// @ID           listEmailTemplates
// @Summary      List email templates
// @Tags         email
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]TemplateResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/templates [get]
func (h *EmailHandler) ListTemplates(c *gin.Context) {
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

	page, err := h.emailService.ListTemplates(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]TemplateResponse, 0, len(page.Items))
	for _, t := range page.Items {
		out = append(out, toTemplateResponse(t))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetTemplate godoc
// @ID           getEmailTemplate
// @Summary      Get an email template
// @Tags         email
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {object} APIResponse[TemplateResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/templates/{id} [get]
func (h *EmailHandler) GetTemplate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	template, err := h.emailService.GetTemplate(c.Request.Context(), orgID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTemplateResponse(template))
}

// UpdateTemplate godoc
// @ID           updateEmailTemplate
// @Summary      Update an email template
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID"
// @Param        request body UpdateTemplateRequest true "Template update request"
// @Success      200 {object} APIResponse[TemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/templates/{id} [put]
func (h *EmailHandler) UpdateTemplate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.emailService.UpdateTemplate(c.Request.Context(), emailapp.UpdateTemplateInput{
		OrgID:      orgID,
		TemplateID: templateID,
		Name:       req.Name,
		Subject:    req.Subject,
		BodyHTML:   req.BodyHTML,
		BodyText:   req.BodyText,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTemplateResponse(template))
}

// DeleteTemplate godoc
// @ID           deleteEmailTemplate
// @Summary      Delete an email template
// @Tags         email
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/templates/{id} [delete]
func (h *EmailHandler) DeleteTemplate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.emailService.DeleteTemplate(c.Request.Context(), orgID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateList godoc
// @ID           createMailingList
// @Summary      Create a mailing list
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        request body CreateListRequest true "List creation request"
// @Success      201 {object} APIResponse[ListResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists [post]
func (h *EmailHandler) CreateList(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	list, err := h.emailService.CreateList(c.Request.Context(), emailapp.CreateListInput{
		OrgID:       orgID,
		CreatedBy:   userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toListResponse(list))
}

// ListLists godoc
// @ID           listMailingLists
// @Summary      List mailing lists
// @Tags         email
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ListResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists [get]
func (h *EmailHandler) ListLists(c *gin.Context) {
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

	page, err := h.emailService.ListLists(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ListResponse, 0, len(page.Items))
	for _, l := range page.Items {
		out = append(out, toListResponse(l))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetList godoc
// @ID           getMailingList
// @Summary      Get a mailing list
// @Tags         email
// @Produce      json
// @Param        id path string true "List ID"
// @Success      200 {object} APIResponse[ListResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id} [get]
func (h *EmailHandler) GetList(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}

	list, err := h.emailService.GetList(c.Request.Context(), orgID, listID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListResponse(list))
}

// UpdateList godoc
// @ID           updateMailingList
// @Summary      Update a mailing list
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        id path string true "List ID"
// @Param        request body UpdateListRequest true "List update request"
// @Success      200 {object} APIResponse[ListResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id} [put]
func (h *EmailHandler) UpdateList(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	list, err := h.emailService.UpdateList(c.Request.Context(), emailapp.UpdateListInput{
		OrgID:       orgID,
		ListID:      listID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListResponse(list))
}

// DeleteList godoc
// @ID           deleteMailingList
// @Summary      Delete a mailing list
// @Tags         email
// @Produce      json
// @Param        id path string true "List ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id} [delete]
func (h *EmailHandler) DeleteList(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}

	if err := h.emailService.DeleteList(c.Request.Context(), orgID, listID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddMember godoc
// @ID           addListMember
// @Summary      Add a contact to a list
// @Description  Resubscribes the contact if they were previously unsubscribed
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        id path string true "List ID"
// @Param        request body AddMemberRequest true "Membership request"
// @Success      201 {object} APIResponse[ListMemberResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id}/members [post]
func (h *EmailHandler) AddMember(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	contactID, err := parseOptionalUUID(&req.ContactID)
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	member, err := h.emailService.AddMember(c.Request.Context(), orgID, listID, *contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toListMemberResponse(member))
}

// ListMembers godoc
// @ID           listListMembers
// @Summary      List members of a mailing list
// @Tags         email
// @Produce      json
// @Param        id path string true "List ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ListMemberResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id}/members [get]
func (h *EmailHandler) ListMembers(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.emailService.ListMembers(c.Request.Context(), orgID, listID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ListMemberResponse, 0, len(page.Items))
	for _, m := range page.Items {
		out = append(out, toListMemberResponse(m))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// Unsubscribe godoc
// @ID           unsubscribeListMember
// @Summary      Unsubscribe a contact from a list
// @Tags         email
// @Produce      json
// @Param        id path string true "List ID"
// @Param        contactId path string true "Contact ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id}/members/{contactId}/unsubscribe [post]
func (h *EmailHandler) Unsubscribe(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}
	contactID, err := parseIDParam(c, "contactId")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.emailService.Unsubscribe(c.Request.Context(), orgID, listID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RemoveMember godoc
// @ID           removeListMember
// @Summary      Remove a contact from a list
// @Tags         email
// @Produce      json
// @Param        id path string true "List ID"
// @Param        contactId path string true "Contact ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/lists/{id}/members/{contactId} [delete]
func (h *EmailHandler) RemoveMember(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}
	contactID, err := parseIDParam(c, "contactId")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.emailService.RemoveMember(c.Request.Context(), orgID, listID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateCampaign godoc
// @ID           createCampaign
// @Summary      Draft a campaign
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        request body CreateCampaignRequest true "Campaign creation request"
// @Success      201 {object} APIResponse[CampaignResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns [post]
func (h *EmailHandler) CreateCampaign(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	templateID, err := parseOptionalUUID(&req.TemplateID)
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}
	listID, err := parseOptionalUUID(&req.ListID)
	if err != nil {
		h.BadRequest(c, "Invalid list ID")
		return
	}

	campaign, err := h.emailService.CreateCampaign(c.Request.Context(), emailapp.CreateCampaignInput{
		OrgID:      orgID,
		CreatedBy:  userID,
		Name:       req.Name,
		TemplateID: *templateID,
		ListID:     *listID,
		FromName:   req.FromName,
		FromEmail:  req.FromEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCampaignResponse(campaign))
}

// ListCampaigns godoc
// @ID           listCampaigns
// @Summary      List campaigns
// @Tags         email
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]CampaignResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns [get]
func (h *EmailHandler) ListCampaigns(c *gin.Context) {
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

	page, err := h.emailService.ListCampaigns(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]CampaignResponse, 0, len(page.Items))
	for _, cp := range page.Items {
		out = append(out, toCampaignResponse(cp))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetCampaign godoc
// @ID           getCampaign
// @Summary      Get a campaign
// @Tags         email
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200 {object} APIResponse[CampaignResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns/{id} [get]
func (h *EmailHandler) GetCampaign(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.emailService.GetCampaign(c.Request.Context(), orgID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCampaignResponse(campaign))
}

// CampaignStatsResponse summarises delivery results of a campaign
// @Description Delivery counts and rate for one campaign
type CampaignStatsResponse struct {
	CampaignID   string  `json:"campaign_id"`
	Status       string  `json:"status" example:"completed"`
	Recipients   int     `json:"recipients" example:"123"`
	SentCount    int     `json:"sent_count" example:"120"`
	FailedCount  int     `json:"failed_count" example:"3"`
	DeliveryRate float64 `json:"delivery_rate" example:"0.975"`
	StartedAt    *string `json:"started_at,omitempty"`
	FinishedAt   *string `json:"finished_at,omitempty"`
}

// CampaignStats godoc
// @ID           getCampaignStats
// @Summary      Delivery stats for a campaign
// @Tags         email
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200 {object} APIResponse[CampaignStatsResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns/{id}/stats [get]
func (h *EmailHandler) CampaignStats(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.emailService.GetCampaign(c.Request.Context(), orgID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	recipients := campaign.SentCount + campaign.FailedCount
	rate := 0.0
	if recipients > 0 {
		rate = float64(campaign.SentCount) / float64(recipients)
	}
	h.Success(c, CampaignStatsResponse{
		CampaignID:   campaign.ID.String(),
		Status:       string(campaign.Status),
		Recipients:   recipients,
		SentCount:    campaign.SentCount,
		FailedCount:  campaign.FailedCount,
		DeliveryRate: rate,
		StartedAt:    formatOptionalTime(campaign.StartedAt),
		FinishedAt:   formatOptionalTime(campaign.FinishedAt),
	})
}

// SendCampaign godoc
// @ID           sendCampaign
// @Summary      Queue a campaign for immediate delivery
// @Tags         email
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200 {object} APIResponse[CampaignResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns/{id}/send [post]
func (h *EmailHandler) SendCampaign(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.emailService.SendCampaign(c.Request.Context(), orgID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCampaignResponse(campaign))
}

// ScheduleCampaign godoc
// @ID           scheduleCampaign
// @Summary      Schedule a campaign for a future send
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Param        request body ScheduleCampaignRequest true "Schedule request"
// @Success      200 {object} APIResponse[CampaignResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns/{id}/schedule [post]
func (h *EmailHandler) ScheduleCampaign(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	var req ScheduleCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	sendAt, err := time.Parse(time.RFC3339, req.SendAt)
	if err != nil {
		h.BadRequest(c, "Invalid send time, expected RFC 3339 timestamp")
		return
	}

	campaign, err := h.emailService.ScheduleCampaign(c.Request.Context(), emailapp.ScheduleCampaignInput{
		OrgID:      orgID,
		CampaignID: campaignID,
		SendAt:     sendAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCampaignResponse(campaign))
}

// CancelCampaign godoc
// @ID           cancelCampaign
// @Summary      Cancel a scheduled or queued campaign
// @Tags         email
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200 {object} APIResponse[CampaignResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns/{id}/cancel [post]
func (h *EmailHandler) CancelCampaign(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.emailService.CancelCampaign(c.Request.Context(), orgID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCampaignResponse(campaign))
}

// DeleteCampaign godoc
// @ID           deleteCampaign
// @Summary      Delete a draft campaign
// @Tags         email
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /email/campaigns/{id} [delete]
func (h *EmailHandler) DeleteCampaign(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.emailService.DeleteCampaign(c.Request.Context(), orgID, campaignID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers email routes
func (h *EmailHandler) RegisterRoutes(rg *gin.RouterGroup) {
	email := rg.Group("/email")
	{
		templates := email.Group("/templates")
		{
			templates.POST("", h.CreateTemplate)
			templates.GET("", h.ListTemplates)
			templates.GET("/:id", h.GetTemplate)
			templates.PUT("/:id", h.UpdateTemplate)
			templates.DELETE("/:id", h.DeleteTemplate)
		}

		lists := email.Group("/lists")
		{
			lists.POST("", h.CreateList)
			lists.GET("", h.ListLists)
			lists.GET("/:id", h.GetList)
			lists.PUT("/:id", h.UpdateList)
			lists.DELETE("/:id", h.DeleteList)
			lists.POST("/:id/members", h.AddMember)
			lists.GET("/:id/members", h.ListMembers)
			lists.POST("/:id/members/:contactId/unsubscribe", h.Unsubscribe)
			lists.DELETE("/:id/members/:contactId", h.RemoveMember)
		}

		campaigns := email.Group("/campaigns")
		{
			campaigns.POST("", h.CreateCampaign)
			campaigns.GET("", h.ListCampaigns)
			campaigns.GET("/:id", h.GetCampaign)
			campaigns.GET("/:id/stats", h.CampaignStats)
			campaigns.POST("/:id/send", h.SendCampaign)
			campaigns.POST("/:id/schedule", h.ScheduleCampaign)
			campaigns.POST("/:id/cancel", h.CancelCampaign)
			campaigns.DELETE("/:id", h.DeleteCampaign)
		}
	}
}
