package handler

import (
	"time"

	crmapp "github.com/agencyhub/backend/internal/application/crm"
	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ContactHandler handles contact and team member endpoints
type ContactHandler struct {
	BaseHandler
	crmService *crmapp.CRMService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(crmService *crmapp.CRMService) *ContactHandler {
	return &ContactHandler{crmService: crmService}
}

// CreateContactRequest represents a request to create a contact
// @Description Request body for creating a prospect or client
type CreateContactRequest struct {
	Email     string `json:"email" binding:"required,email,max=254" example:"jane@acme.com"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100" example:"Jane"`
	LastName  string `json:"last_name" binding:"max=100" example:"Doe"`
	Kind      string `json:"kind" binding:"omitempty,oneof=prospect client" example:"prospect"`
	Phone     string `json:"phone" binding:"max=50" example:"+1 555 0100"`
	Company   string `json:"company" binding:"max=200" example:"Acme Corp"`
	Tags      string `json:"tags" example:"[\"retainer\",\"referral\"]"`
	Notes     string `json:"notes" example:"Met at the spring conference"`
}

// UpdateContactRequest represents a request to update a contact
// @Description Request body for updating a contact's profile
type UpdateContactRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100" example:"Jane"`
	LastName  string `json:"last_name" binding:"max=100" example:"Doe"`
	Phone     string `json:"phone" binding:"max=50" example:"+1 555 0100"`
	Company   string `json:"company" binding:"max=200" example:"Acme Corp"`
	Tags      string `json:"tags" example:"[\"retainer\"]"`
	Notes     string `json:"notes" example:"Prefers email"`
}

// InviteTeamMemberRequest represents a request to invite a team login
// @Description Request body for inviting a team member
type InviteTeamMemberRequest struct {
	Email     string `json:"email" binding:"required,email,max=254" example:"sam@northwind.io"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100" example:"Sam"`
	LastName  string `json:"last_name" binding:"max=100" example:"Chen"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	Role      string `json:"role" binding:"required,oneof=admin member" example:"member"`
}

// ChangeRoleRequest represents a request to change a contact's role
// @Description Request body for changing a contact's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin member client" example:"admin"`
}

// ContactResponse represents a contact in API responses
// @Description Contact details returned by the API
type ContactResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email       string `json:"email" example:"jane@acme.com"`
	FirstName   string `json:"first_name" example:"Jane"`
	LastName    string `json:"last_name" example:"Doe"`
	FullName    string `json:"full_name" example:"Jane Doe"`
	Phone       string `json:"phone" example:"+1 555 0100"`
	Company     string `json:"company" example:"Acme Corp"`
	Kind        string `json:"kind" example:"prospect" enums:"prospect,client,team"`
	Role        string `json:"role" example:"client" enums:"owner,admin,member,client"`
	Status      string `json:"status" example:"active" enums:"active,inactive,archived"`
	Tags        string `json:"tags" example:"[\"retainer\"]"`
	Notes       string `json:"notes" example:""`
	LastLoginAt string `json:"last_login_at,omitempty" example:"2026-01-24T12:00:00Z"`
	CreatedAt   string `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2026-01-24T12:00:00Z"`
	Version     int    `json:"version" example:"1"`
}

func toContactResponse(contact *crm.Contact) ContactResponse {
	resp := ContactResponse{
		ID:        contact.ID.String(),
		Email:     contact.Email,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		FullName:  contact.FullName(),
		Phone:     contact.Phone,
		Company:   contact.Company,
		Kind:      string(contact.Kind),
		Role:      string(contact.Role),
		Status:    string(contact.Status),
		Tags:      contact.Tags,
		Notes:     contact.Notes,
		CreatedAt: contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt: contact.UpdatedAt.Format(time.RFC3339),
		Version:   contact.Version,
	}
	if contact.LastLoginAt != nil {
		resp.LastLoginAt = contact.LastLoginAt.Format(time.RFC3339)
	}
	return resp
}

func toContactResponses(contacts []*crm.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, toContactResponse(contact))
	}
	return out
}

// Create godoc
// @ID           createContact
// @Summary      Create a contact
// @Description  Create a prospect or client record
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body CreateContactRequest true "Contact creation request"
// @Success      201 {object} APIResponse[ContactResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	kind := crm.ContactKindProspect
	if req.Kind != "" {
		kind = crm.ContactKind(req.Kind)
	}

	contact, err := h.crmService.CreateContact(c.Request.Context(), crmapp.CreateContactInput{
		OrgID:     orgID,
		CreatedBy: userID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Kind:      kind,
		Phone:     req.Phone,
		Company:   req.Company,
		Tags:      req.Tags,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toContactResponse(contact))
}

// List godoc
// @ID           listContacts
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search term"
// @Success      200 {object} APIResponse[[]ContactResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
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

	page, err := h.crmService.ListContacts(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toContactResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getContact
// @Summary      Get a contact by ID
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      200 {object} APIResponse[ContactResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [get]
func (h *ContactHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.crmService.GetContact(c.Request.Context(), orgID, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContactResponse(contact))
}

// Update godoc
// @ID           updateContact
// @Summary      Update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID"
// @Param        request body UpdateContactRequest true "Contact update request"
// @Success      200 {object} APIResponse[ContactResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.crmService.UpdateContact(c.Request.Context(), crmapp.UpdateContactInput{
		OrgID:     orgID,
		ContactID: contactID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Company:   req.Company,
		Tags:      req.Tags,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContactResponse(contact))
}

// Invite godoc
// @ID           inviteTeamMember
// @Summary      Invite a team member
// @Description  Create a team login with credentials
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body InviteTeamMemberRequest true "Invitation request"
// @Success      201 {object} APIResponse[ContactResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/invite [post]
func (h *ContactHandler) Invite(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req InviteTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.crmService.InviteTeamMember(c.Request.Context(), crmapp.InviteTeamMemberInput{
		OrgID:     orgID,
		CreatedBy: userID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      crm.ContactRole(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toContactResponse(contact))
}

// ConvertToClient godoc
// @ID           convertContactToClient
// @Summary      Convert a prospect to a client
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      200 {object} APIResponse[ContactResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id}/convert [post]
func (h *ContactHandler) ConvertToClient(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.crmService.ConvertToClient(c.Request.Context(), orgID, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContactResponse(contact))
}

// ChangeRole godoc
// @ID           changeContactRole
// @Summary      Change a contact's role
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID"
// @Param        request body ChangeRoleRequest true "Role change request"
// @Success      200 {object} APIResponse[ContactResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id}/role [put]
func (h *ContactHandler) ChangeRole(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.crmService.ChangeRole(c.Request.Context(), orgID, contactID, crm.ContactRole(req.Role))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContactResponse(contact))
}

// Archive godoc
// @ID           archiveContact
// @Summary      Archive a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id}/archive [post]
func (h *ContactHandler) Archive(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.crmService.ArchiveContact(c.Request.Context(), orgID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Restore godoc
// @ID           restoreContact
// @Summary      Restore an archived contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      200 {object} APIResponse[ContactResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id}/restore [post]
func (h *ContactHandler) Restore(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.crmService.RestoreContact(c.Request.Context(), orgID, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContactResponse(contact))
}

// Delete godoc
// @ID           deleteContact
// @Summary      Delete a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.crmService.DeleteContact(c.Request.Context(), orgID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers contact routes
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	{
		contacts.POST("", h.Create)
		contacts.GET("", h.List)
		contacts.POST("/invite", h.Invite)
		contacts.GET("/:id", h.GetByID)
		contacts.PUT("/:id", h.Update)
		contacts.DELETE("/:id", h.Delete)
		contacts.POST("/:id/convert", h.ConvertToClient)
		contacts.PUT("/:id/role", h.ChangeRole)
		contacts.POST("/:id/archive", h.Archive)
		contacts.POST("/:id/restore", h.Restore)
	}
}
