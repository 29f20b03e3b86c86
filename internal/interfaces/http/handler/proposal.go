package handler

import (
	"io"
	"time"

	proposalapp "github.com/agencyhub/backend/internal/application/proposals"
	"github.com/agencyhub/backend/internal/domain/proposals"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// maxAttachmentBytes limits a single proposal attachment upload
const maxAttachmentBytes = 20 << 20

// ProposalHandler handles proposal endpoints, including the public
// token-addressed view/accept/decline surface
type ProposalHandler struct {
	BaseHandler
	proposalService *proposalapp.ProposalService
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(proposalService *proposalapp.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// CreateProposalRequest represents a request to create a proposal
// @Description Request body for drafting a proposal
type CreateProposalRequest struct {
	ContactID string  `json:"contact_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID *string `json:"project_id" binding:"omitempty,uuid"`
	Title     string  `json:"title" binding:"required,min=1,max=200" example:"Q2 retainer"`
	Body      string  `json:"body" example:"<p>Scope of work…</p>"`
	Currency  string  `json:"currency" binding:"omitempty,len=3" example:"USD"`
}

// UpdateProposalRequest represents a request to edit a draft proposal
// @Description Request body for editing a draft proposal
type UpdateProposalRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200" example:"Q2 retainer"`
	Body  string `json:"body" example:"<p>Revised scope…</p>"`
}

// AddProposalItemRequest represents a line item to append
// @Description Request body for adding a proposal line item
type AddProposalItemRequest struct {
	Description string `json:"description" binding:"required,min=1,max=500" example:"Monthly SEO retainer"`
	Quantity    string `json:"quantity" binding:"required" example:"3"`
	UnitPrice   string `json:"unit_price" binding:"required" example:"1500.00"`
}

// SendProposalRequest represents a request to send a proposal
// @Description Request body for sending a proposal to its contact
type SendProposalRequest struct {
	ExpiresAt *string `json:"expires_at" example:"2026-03-01T00:00:00Z"`
	Message   string  `json:"message" example:"Looking forward to working together"`
}

// DeclineProposalRequest represents a public decline
// @Description Request body for declining a proposal via its public link
type DeclineProposalRequest struct {
	Reason string `json:"reason" binding:"max=1000" example:"Budget approved for next quarter instead"`
}

// ProposalItemResponse represents a proposal line item
// @Description Proposal line item
type ProposalItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description" example:"Monthly SEO retainer"`
	Quantity    string `json:"quantity" example:"3"`
	UnitPrice   string `json:"unit_price" example:"1500.00"`
	Position    int    `json:"position" example:"0"`
}

// ProposalResponse represents a proposal in API responses
// @Description Proposal details returned by the API
type ProposalResponse struct {
	ID         string                 `json:"id"`
	ContactID  string                 `json:"contact_id"`
	ProjectID  *string                `json:"project_id,omitempty"`
	Title      string                 `json:"title" example:"Q2 retainer"`
	Body       string                 `json:"body"`
	Status     string                 `json:"status" example:"draft" enums:"draft,sent,viewed,accepted,declined,expired"`
	Currency   string                 `json:"currency" example:"USD"`
	Total      string                 `json:"total" example:"4500.00"`
	Items      []ProposalItemResponse `json:"items"`
	SentAt     *string                `json:"sent_at,omitempty"`
	ViewedAt   *string                `json:"viewed_at,omitempty"`
	DecidedAt  *string                `json:"decided_at,omitempty"`
	ExpiresAt  *string                `json:"expires_at,omitempty"`
	DeclineMsg string                 `json:"decline_msg,omitempty"`
	CreatedAt  string                 `json:"created_at"`
	UpdatedAt  string                 `json:"updated_at"`
	Version    int                    `json:"version" example:"1"`
}

// PublicProposalResponse is the client-facing view behind the accept token
// @Description Proposal as shown to the client on the public page
type PublicProposalResponse struct {
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Status    string                 `json:"status"`
	Currency  string                 `json:"currency"`
	Total     string                 `json:"total"`
	Items     []ProposalItemResponse `json:"items"`
	ExpiresAt *string                `json:"expires_at,omitempty"`
}

// AttachmentResponse represents a proposal attachment
// @Description Attachment metadata
type AttachmentResponse struct {
	ID          string `json:"id"`
	ProposalID  string `json:"proposal_id"`
	FileName    string `json:"file_name" example:"scope.pdf"`
	ContentType string `json:"content_type" example:"application/pdf"`
	SizeBytes   int64  `json:"size_bytes" example:"104857"`
	CreatedAt   string `json:"created_at"`
}

func toProposalItemResponses(items []proposals.ProposalItem) []ProposalItemResponse {
	out := make([]ProposalItemResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		out = append(out, ProposalItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Position:    item.Position,
		})
	}
	return out
}

func toProposalResponse(p *proposals.Proposal) ProposalResponse {
	resp := ProposalResponse{
		ID:         p.ID.String(),
		ContactID:  p.ContactID.String(),
		Title:      p.Title,
		Body:       p.Body,
		Status:     string(p.Status),
		Currency:   p.Currency,
		Total:      p.Total().StringFixed(2),
		Items:      toProposalItemResponses(p.Items),
		DeclineMsg: p.DeclineMsg,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
		Version:    p.Version,
	}
	if p.ProjectID != nil {
		id := p.ProjectID.String()
		resp.ProjectID = &id
	}
	resp.SentAt = formatOptionalTime(p.SentAt)
	resp.ViewedAt = formatOptionalTime(p.ViewedAt)
	resp.DecidedAt = formatOptionalTime(p.DecidedAt)
	resp.ExpiresAt = formatOptionalTime(p.ExpiresAt)
	return resp
}

func toPublicProposalResponse(p *proposals.Proposal) PublicProposalResponse {
	return PublicProposalResponse{
		Title:     p.Title,
		Body:      p.Body,
		Status:    string(p.Status),
		Currency:  p.Currency,
		Total:     p.Total().StringFixed(2),
		Items:     toProposalItemResponses(p.Items),
		ExpiresAt: formatOptionalTime(p.ExpiresAt),
	}
}

func toProposalResponses(items []*proposals.Proposal) []ProposalResponse {
	out := make([]ProposalResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProposalResponse(p))
	}
	return out
}

func toAttachmentResponse(a *proposals.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID.String(),
		ProposalID:  a.ProposalID.String(),
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func parseOptionalRFC3339(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create godoc
// @ID           createProposal
// @Summary      Create a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        request body CreateProposalRequest true "Proposal creation request"
// @Success      201 {object} APIResponse[ProposalResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contactID, err := parseOptionalUUID(&req.ContactID)
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}
	projectID, err := parseOptionalUUID(req.ProjectID)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	proposal, err := h.proposalService.Create(c.Request.Context(), proposalapp.CreateProposalInput{
		OrgID:     orgID,
		CreatedBy: userID,
		ContactID: *contactID,
		ProjectID: projectID,
		Title:     req.Title,
		Body:      req.Body,
		Currency:  req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toProposalResponse(proposal))
}

// List godoc
// @ID           listProposals
// @Summary      List proposals
// @Tags         proposals
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ProposalResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
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

	page, err := h.proposalService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProposalResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getProposal
// @Summary      Get a proposal by ID
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} APIResponse[ProposalResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id} [get]
func (h *ProposalHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	proposal, err := h.proposalService.Get(c.Request.Context(), orgID, proposalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProposalResponse(proposal))
}

// Update godoc
// @ID           updateProposal
// @Summary      Edit a draft proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Param        request body UpdateProposalRequest true "Proposal update request"
// @Success      200 {object} APIResponse[ProposalResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id} [put]
func (h *ProposalHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	var req UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposalService.Update(c.Request.Context(), proposalapp.UpdateProposalInput{
		OrgID:      orgID,
		ProposalID: proposalID,
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProposalResponse(proposal))
}

// AddItem godoc
// @ID           addProposalItem
// @Summary      Add a line item to a draft proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Param        request body AddProposalItemRequest true "Line item"
// @Success      200 {object} APIResponse[ProposalResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id}/items [post]
func (h *ProposalHandler) AddItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	var req AddProposalItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quantity, err := parseOptionalDecimal(&req.Quantity)
	if err != nil {
		h.BadRequest(c, "Invalid quantity")
		return
	}
	unitPrice, err := parseOptionalDecimal(&req.UnitPrice)
	if err != nil {
		h.BadRequest(c, "Invalid unit price")
		return
	}

	proposal, err := h.proposalService.AddItem(c.Request.Context(), proposalapp.AddItemInput{
		OrgID:       orgID,
		ProposalID:  proposalID,
		Description: req.Description,
		Quantity:    *quantity,
		UnitPrice:   *unitPrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProposalResponse(proposal))
}

// RemoveItem godoc
// @ID           removeProposalItem
// @Summary      Remove a line item from a draft proposal
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} APIResponse[ProposalResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id}/items/{itemId} [delete]
func (h *ProposalHandler) RemoveItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	proposal, err := h.proposalService.RemoveItem(c.Request.Context(), orgID, proposalID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProposalResponse(proposal))
}

// Send godoc
// @ID           sendProposal
// @Summary      Send a proposal to its contact
// @Description  Mint the accept token, email the public link and queue PDF rendering
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Param        request body SendProposalRequest false "Send options"
// @Success      200 {object} APIResponse[ProposalResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id}/send [post]
func (h *ProposalHandler) Send(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	var req SendProposalRequest
	_ = c.ShouldBindJSON(&req)

	expiresAt, err := parseOptionalRFC3339(req.ExpiresAt)
	if err != nil {
		h.BadRequest(c, "Invalid expiry, expected RFC 3339 timestamp")
		return
	}

	proposal, err := h.proposalService.Send(c.Request.Context(), proposalapp.SendProposalInput{
		OrgID:      orgID,
		ProposalID: proposalID,
		ExpiresAt:  expiresAt,
		Message:    req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProposalResponse(proposal))
}

// Delete godoc
// @ID           deleteProposal
// @Summary      Delete a proposal
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id} [delete]
func (h *ProposalHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	if err := h.proposalService.Delete(c.Request.Context(), orgID, proposalID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UploadAttachment godoc
// @ID           uploadProposalAttachment
// @Summary      Upload an attachment
// @Tags         proposals
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Param        file formData file true "File to attach"
// @Success      201 {object} APIResponse[AttachmentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id}/attachments [post]
func (h *ProposalHandler) UploadAttachment(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file")
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		h.BadRequest(c, "File exceeds the maximum attachment size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > maxAttachmentBytes {
		h.BadRequest(c, "File exceeds the maximum attachment size")
		return
	}

	attachment, err := h.proposalService.UploadAttachment(c.Request.Context(), proposalapp.UploadAttachmentInput{
		OrgID:       orgID,
		ProposalID:  proposalID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAttachmentResponse(attachment))
}

// ListAttachments godoc
// @ID           listProposalAttachments
// @Summary      List attachments
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} APIResponse[[]AttachmentResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /proposals/{id}/attachments [get]
func (h *ProposalHandler) ListAttachments(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	attachments, err := h.proposalService.ListAttachments(c.Request.Context(), orgID, proposalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, toAttachmentResponse(a))
	}
	h.Success(c, out)
}

// AttachmentURL godoc
// @ID           getProposalAttachmentURL
// @Summary      Get a signed download URL for an attachment
// @Tags         proposals
// @Produce      json
// @Param        attachmentId path string true "Attachment ID"
// @Success      200 {object} APIResponse[URLData]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /attachments/{attachmentId}/url [get]
func (h *ProposalHandler) AttachmentURL(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	attachmentID, err := parseIDParam(c, "attachmentId")
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	url, expiresAt, err := h.proposalService.AttachmentDownloadURL(c.Request.Context(), orgID, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, URLData{URL: url, ExpiresAt: expiresAt.Format(time.RFC3339)})
}

// DeleteAttachment godoc
// @ID           deleteProposalAttachment
// @Summary      Delete an attachment
// @Tags         proposals
// @Produce      json
// @Param        attachmentId path string true "Attachment ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /attachments/{attachmentId} [delete]
func (h *ProposalHandler) DeleteAttachment(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	attachmentID, err := parseIDParam(c, "attachmentId")
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	if err := h.proposalService.DeleteAttachment(c.Request.Context(), orgID, attachmentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PublicView godoc
// @ID           viewPublicProposal
// @Summary      View a proposal via its public token
// @Description  Marks the proposal as viewed on first access
// @Tags         public
// @Produce      json
// @Param        token path string true "Accept token"
// @Success      200 {object} APIResponse[PublicProposalResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      410 {object} dto.ErrorResponse
// @Router       /public/proposals/{token} [get]
func (h *ProposalHandler) PublicView(c *gin.Context) {
	proposal, err := h.proposalService.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPublicProposalResponse(proposal))
}

// PublicAccept godoc
// @ID           acceptPublicProposal
// @Summary      Accept a proposal via its public token
// @Tags         public
// @Produce      json
// @Param        token path string true "Accept token"
// @Success      200 {object} APIResponse[PublicProposalResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      410 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /public/proposals/{token}/accept [post]
func (h *ProposalHandler) PublicAccept(c *gin.Context) {
	proposal, err := h.proposalService.AcceptByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPublicProposalResponse(proposal))
}

// PublicDecline godoc
// @ID           declinePublicProposal
// @Summary      Decline a proposal via its public token
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token path string true "Accept token"
// @Param        request body DeclineProposalRequest false "Decline reason"
// @Success      200 {object} APIResponse[PublicProposalResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      410 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /public/proposals/{token}/decline [post]
func (h *ProposalHandler) PublicDecline(c *gin.Context) {
	var req DeclineProposalRequest
	_ = c.ShouldBindJSON(&req)

	proposal, err := h.proposalService.DeclineByToken(c.Request.Context(), proposalapp.DeclineInput{
		Token:  c.Param("token"),
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPublicProposalResponse(proposal))
}

// RegisterRoutes registers proposal routes
func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	props := rg.Group("/proposals")
	{
		props.POST("", h.Create)
		props.GET("", h.List)
		props.GET("/:id", h.GetByID)
		props.PUT("/:id", h.Update)
		props.DELETE("/:id", h.Delete)
		props.POST("/:id/items", h.AddItem)
		props.DELETE("/:id/items/:itemId", h.RemoveItem)
		props.POST("/:id/send", h.Send)
		props.POST("/:id/attachments", h.UploadAttachment)
		props.GET("/:id/attachments", h.ListAttachments)
	}

	attachments := rg.Group("/attachments")
	{
		attachments.GET("/:attachmentId/url", h.AttachmentURL)
		attachments.DELETE("/:attachmentId", h.DeleteAttachment)
	}

	public := rg.Group("/public/proposals")
	{
		public.GET("/:token", h.PublicView)
		public.POST("/:token/accept", h.PublicAccept)
		public.POST("/:token/decline", h.PublicDecline)
	}
}
