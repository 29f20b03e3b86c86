package handler

import (
	"time"

	integrationapp "github.com/agencyhub/backend/internal/application/integration"
	"github.com/agencyhub/backend/internal/domain/integration"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IntegrationHandler handles store connection and catalog sync endpoints
type IntegrationHandler struct {
	BaseHandler
	integrationService *integrationapp.IntegrationService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(integrationService *integrationapp.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationService: integrationService}
}

// ConnectStoreRequest represents a store connection request
// @Description Request body for connecting a Shopify store
type ConnectStoreRequest struct {
	ShopDomain  string `json:"shop_domain" binding:"required,min=3,max=253" example:"acme-supply.myshopify.com"`
	AccessToken string `json:"access_token" binding:"required,min=10,max=200"`
}

// RotateTokenRequest replaces a connection's access token
// @Description Request body for rotating a store access token
type RotateTokenRequest struct {
	AccessToken string `json:"access_token" binding:"required,min=10,max=200"`
}

// StoreConnectionResponse represents a store connection in API responses.
// The access token is write-only and never echoed back.
// @Description Connected store details
type StoreConnectionResponse struct {
	ID         string  `json:"id"`
	Provider   string  `json:"provider" example:"shopify"`
	ShopDomain string  `json:"shop_domain" example:"acme-supply.myshopify.com"`
	Status     string  `json:"status" example:"connected" enums:"connected,disconnected,errored"`
	LastSyncAt *string `json:"last_sync_at,omitempty"`
	LastError  string  `json:"last_error,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	Version    int     `json:"version" example:"1"`
}

// ProductLinkResponse represents a mirrored product in API responses
// @Description Product mirrored from a connected store
type ProductLinkResponse struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connection_id"`
	ExternalID   string `json:"external_id" example:"gid://shopify/Product/42"`
	Title        string `json:"title" example:"Canvas Tote Bag"`
	Handle       string `json:"handle,omitempty" example:"canvas-tote-bag"`
	Price        string `json:"price" example:"24.00"`
	Currency     string `json:"currency" example:"USD"`
	Available    bool   `json:"available"`
	SyncedAt     string `json:"synced_at"`
}

func toStoreConnectionResponse(conn *integration.StoreConnection) StoreConnectionResponse {
	return StoreConnectionResponse{
		ID:         conn.ID.String(),
		Provider:   string(conn.Provider),
		ShopDomain: conn.ShopDomain,
		Status:     string(conn.Status),
		LastSyncAt: formatOptionalTime(conn.LastSyncAt),
		LastError:  conn.LastError,
		CreatedAt:  conn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  conn.UpdatedAt.Format(time.RFC3339),
		Version:    conn.Version,
	}
}

func toProductLinkResponse(link *integration.ProductLink) ProductLinkResponse {
	return ProductLinkResponse{
		ID:           link.ID.String(),
		ConnectionID: link.ConnectionID.String(),
		ExternalID:   link.ExternalID,
		Title:        link.Title,
		Handle:       link.Handle,
		Price:        link.Price.StringFixed(2),
		Currency:     link.Currency,
		Available:    link.Available,
		SyncedAt:     link.SyncedAt.Format(time.RFC3339),
	}
}

// Connect godoc
// @ID           connectStore
// @Summary      Connect a Shopify store
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        request body ConnectStoreRequest true "Store credentials"
// @Success      201 {object} APIResponse[StoreConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores [post]
func (h *IntegrationHandler) Connect(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req ConnectStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.integrationService.Connect(c.Request.Context(), integrationapp.ConnectStoreInput{
		OrgID:       orgID,
		CreatedBy:   userID,
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toStoreConnectionResponse(conn))
}

// List godoc
// @ID           listStores
// @Summary      List connected stores
// @Tags         integrations
// @Produce      json
// @Success      200 {object} APIResponse[[]StoreConnectionResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores [get]
func (h *IntegrationHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	conns, err := h.integrationService.List(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]StoreConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		out = append(out, toStoreConnectionResponse(conn))
	}
	h.Success(c, out)
}

// GetByID godoc
// @ID           getStore
// @Summary      Get a store connection
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      200 {object} APIResponse[StoreConnectionResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores/{id} [get]
func (h *IntegrationHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	connID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	conn, err := h.integrationService.Get(c.Request.Context(), orgID, connID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStoreConnectionResponse(conn))
}

// RotateToken godoc
// @ID           rotateStoreToken
// @Summary      Replace a store's access token
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Connection ID"
// @Param        request body RotateTokenRequest true "New token"
// @Success      200 {object} APIResponse[StoreConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores/{id}/token [put]
func (h *IntegrationHandler) RotateToken(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	connID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	var req RotateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.integrationService.RotateToken(c.Request.Context(), orgID, connID, req.AccessToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStoreConnectionResponse(conn))
}

// RequestSync godoc
// @ID           requestStoreSync
// @Summary      Queue a catalog sync for a store
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      202 {object} APIResponse[JobResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores/{id}/sync [post]
func (h *IntegrationHandler) RequestSync(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	connID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	job, err := h.integrationService.RequestSync(c.Request.Context(), orgID, connID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, toJobResponse(job))
}

// Disconnect godoc
// @ID           disconnectStore
// @Summary      Disconnect a store, keeping its mirrored products
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      200 {object} APIResponse[StoreConnectionResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores/{id}/disconnect [post]
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	connID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	conn, err := h.integrationService.Disconnect(c.Request.Context(), orgID, connID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStoreConnectionResponse(conn))
}

// Delete godoc
// @ID           deleteStore
// @Summary      Delete a store connection and its mirrored products
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores/{id} [delete]
func (h *IntegrationHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	connID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	if err := h.integrationService.Delete(c.Request.Context(), orgID, connID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListProducts godoc
// @ID           listStoreProducts
// @Summary      List products mirrored from a store
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Connection ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ProductLinkResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/stores/{id}/products [get]
func (h *IntegrationHandler) ListProducts(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	connID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.integrationService.ListProducts(c.Request.Context(), orgID, connID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProductLinkResponse, 0, len(page.Items))
	for _, link := range page.Items {
		out = append(out, toProductLinkResponse(link))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// RegisterRoutes registers integration routes
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stores := rg.Group("/integrations/stores")
	{
		stores.POST("", h.Connect)
		stores.GET("", h.List)
		stores.GET("/:id", h.GetByID)
		stores.DELETE("/:id", h.Delete)
		stores.PUT("/:id/token", h.RotateToken)
		stores.POST("/:id/sync", h.RequestSync)
		stores.POST("/:id/disconnect", h.Disconnect)
		stores.GET("/:id/products", h.ListProducts)
	}
}
