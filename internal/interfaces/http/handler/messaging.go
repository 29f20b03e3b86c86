package handler

import (
	"time"

	messagingapp "github.com/agencyhub/backend/internal/application/messaging"
	"github.com/agencyhub/backend/internal/domain/messaging"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessagingHandler handles conversation and message endpoints
type MessagingHandler struct {
	BaseHandler
	messagingService *messagingapp.MessagingService
}

// NewMessagingHandler creates a new MessagingHandler
func NewMessagingHandler(messagingService *messagingapp.MessagingService) *MessagingHandler {
	return &MessagingHandler{messagingService: messagingService}
}

// StartConversationRequest represents a request to open a thread
// @Description Request body for starting a conversation with a contact
type StartConversationRequest struct {
	ContactID string  `json:"contact_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID *string `json:"project_id" binding:"omitempty,uuid"`
	Subject   string  `json:"subject" binding:"required,min=1,max=300" example:"Homepage copy review"`
	Body      string  `json:"body" example:"Here is the first draft for your review."`
}

// PostMessageRequest represents a message to append to a thread
// @Description Request body for posting a message
type PostMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000" example:"Looks great, one small change."`
}

// ConversationResponse represents a conversation in API responses
// @Description Conversation thread details
type ConversationResponse struct {
	ID            string  `json:"id"`
	ContactID     string  `json:"contact_id"`
	ProjectID     *string `json:"project_id,omitempty"`
	Subject       string  `json:"subject" example:"Homepage copy review"`
	Status        string  `json:"status" example:"open" enums:"open,closed"`
	LastMessageAt *string `json:"last_message_at,omitempty"`
	ClosedAt      *string `json:"closed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	Version       int     `json:"version" example:"1"`
}

// MessageResponse represents a message in API responses
// @Description Single message within a conversation
type MessageResponse struct {
	ID             string  `json:"id"`
	ConversationID string  `json:"conversation_id"`
	SenderID       string  `json:"sender_id"`
	Body           string  `json:"body"`
	ReadAt         *string `json:"read_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func toConversationResponse(conv *messaging.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:            conv.ID.String(),
		ContactID:     conv.ContactID.String(),
		Subject:       conv.Subject,
		Status:        string(conv.Status),
		LastMessageAt: formatOptionalTime(conv.LastMessageAt),
		ClosedAt:      formatOptionalTime(conv.ClosedAt),
		CreatedAt:     conv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     conv.UpdatedAt.Format(time.RFC3339),
		Version:       conv.Version,
	}
	if conv.ProjectID != nil {
		id := conv.ProjectID.String()
		resp.ProjectID = &id
	}
	return resp
}

func toMessageResponse(msg *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:             msg.ID.String(),
		ConversationID: msg.ConversationID.String(),
		SenderID:       msg.SenderID.String(),
		Body:           msg.Body,
		ReadAt:         formatOptionalTime(msg.ReadAt),
		CreatedAt:      msg.CreatedAt.Format(time.RFC3339),
	}
}

// Start godoc
// @ID           startConversation
// @Summary      Start a conversation
// @Tags         messaging
// @Accept       json
// @Produce      json
// @Param        request body StartConversationRequest true "Conversation request"
// @Success      201 {object} APIResponse[ConversationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [post]
func (h *MessagingHandler) Start(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req StartConversationRequest
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

	conv, err := h.messagingService.Start(c.Request.Context(), messagingapp.StartConversationInput{
		OrgID:     orgID,
		CreatedBy: userID,
		ContactID: *contactID,
		ProjectID: projectID,
		Subject:   req.Subject,
		Body:      req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toConversationResponse(conv))
}

// List godoc
// @ID           listConversations
// @Summary      List conversations
// @Tags         messaging
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        contact_id query string false "Filter by contact"
// @Success      200 {object} APIResponse[[]ConversationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [get]
func (h *MessagingHandler) List(c *gin.Context) {
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

	var page *shared.Paginated[*messaging.Conversation]
	if contactParam := c.Query("contact_id"); contactParam != "" {
		contactID, err := uuid.Parse(contactParam)
		if err != nil {
			h.BadRequest(c, "Invalid contact ID")
			return
		}
		page, err = h.messagingService.ListByContact(c.Request.Context(), orgID, contactID, req.ToFilter())
		if err != nil {
			h.HandleError(c, err)
			return
		}
	} else {
		page, err = h.messagingService.List(c.Request.Context(), orgID, req.ToFilter())
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}

	out := make([]ConversationResponse, 0, len(page.Items))
	for _, conv := range page.Items {
		out = append(out, toConversationResponse(conv))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getConversation
// @Summary      Get a conversation
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} APIResponse[ConversationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [get]
func (h *MessagingHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	conv, err := h.messagingService.Get(c.Request.Context(), orgID, convID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toConversationResponse(conv))
}

// Post godoc
// @ID           postMessage
// @Summary      Post a message to a conversation
// @Description  Posting to a closed thread reopens it
// @Tags         messaging
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        request body PostMessageRequest true "Message"
// @Success      201 {object} APIResponse[MessageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [post]
func (h *MessagingHandler) Post(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messagingService.Post(c.Request.Context(), messagingapp.PostMessageInput{
		OrgID:          orgID,
		ConversationID: convID,
		SenderID:       userID,
		Body:           req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMessageResponse(msg))
}

// Messages godoc
// @ID           listMessages
// @Summary      List messages in a conversation
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]MessageResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [get]
func (h *MessagingHandler) Messages(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.messagingService.Messages(c.Request.Context(), orgID, convID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]MessageResponse, 0, len(page.Items))
	for _, msg := range page.Items {
		out = append(out, toMessageResponse(msg))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// MarkRead godoc
// @ID           markConversationRead
// @Summary      Mark all messages from others as read
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} APIResponse[CountData]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/read [post]
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	count, err := h.messagingService.MarkRead(c.Request.Context(), orgID, convID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}

// UnreadCount godoc
// @ID           getUnreadCount
// @Summary      Count unread messages in a conversation
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} APIResponse[CountData]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/unread [get]
func (h *MessagingHandler) UnreadCount(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	count, err := h.messagingService.UnreadCount(c.Request.Context(), orgID, convID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}

// Close godoc
// @ID           closeConversation
// @Summary      Close a conversation
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} APIResponse[ConversationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/close [post]
func (h *MessagingHandler) Close(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	conv, err := h.messagingService.Close(c.Request.Context(), orgID, convID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toConversationResponse(conv))
}

// Reopen godoc
// @ID           reopenConversation
// @Summary      Reopen a closed conversation
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} APIResponse[ConversationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/reopen [post]
func (h *MessagingHandler) Reopen(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	conv, err := h.messagingService.Reopen(c.Request.Context(), orgID, convID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toConversationResponse(conv))
}

// Delete godoc
// @ID           deleteConversation
// @Summary      Delete a conversation and its messages
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [delete]
func (h *MessagingHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	convID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	if err := h.messagingService.Delete(c.Request.Context(), orgID, convID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers messaging routes
func (h *MessagingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conversations := rg.Group("/conversations")
	{
		conversations.POST("", h.Start)
		conversations.GET("", h.List)
		conversations.GET("/:id", h.GetByID)
		conversations.DELETE("/:id", h.Delete)
		conversations.POST("/:id/messages", h.Post)
		conversations.GET("/:id/messages", h.Messages)
		conversations.POST("/:id/read", h.MarkRead)
		conversations.GET("/:id/unread", h.UnreadCount)
		conversations.POST("/:id/close", h.Close)
		conversations.POST("/:id/reopen", h.Reopen)
	}
}
