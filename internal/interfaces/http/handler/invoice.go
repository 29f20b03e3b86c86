package handler

import (
	"time"

	billingapp "github.com/agencyhub/backend/internal/application/billing"
	"github.com/agencyhub/backend/internal/domain/billing"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice endpoints, including the public
// token-addressed payment surface
type InvoiceHandler struct {
	BaseHandler
	billingService *billingapp.BillingService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(billingService *billingapp.BillingService) *InvoiceHandler {
	return &InvoiceHandler{billingService: billingService}
}

// CreateInvoiceRequest represents a request to draft an invoice
// @Description Request body for drafting an invoice
type CreateInvoiceRequest struct {
	ContactID string  `json:"contact_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID *string `json:"project_id" binding:"omitempty,uuid"`
	Currency  string  `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Memo      string  `json:"memo" example:"February retainer"`
}

// UpdateInvoiceRequest represents a request to edit a draft invoice
// @Description Request body for editing a draft invoice
type UpdateInvoiceRequest struct {
	Currency string `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Memo     string `json:"memo" example:"February retainer, revised"`
}

// AddInvoiceItemRequest represents a billed line to append
// @Description Request body for adding an invoice line item
type AddInvoiceItemRequest struct {
	Description string `json:"description" binding:"required,min=1,max=500" example:"Landing page build"`
	Quantity    string `json:"quantity" binding:"required" example:"1"`
	UnitPrice   string `json:"unit_price" binding:"required" example:"2400.00"`
}

// IssueInvoiceRequest represents a request to issue an invoice
// @Description Request body for issuing a draft invoice
type IssueInvoiceRequest struct {
	DueDate *string `json:"due_date" example:"2026-03-15"`
	Message string  `json:"message" example:"Thanks for your business"`
}

// PayInvoiceRequest represents a public payment attempt
// @Description Request body for paying an invoice via its public link.
// The source_id is the card nonce produced by Square's Web Payments SDK.
type PayInvoiceRequest struct {
	SourceID string `json:"source_id" binding:"required" example:"cnon:card-nonce-ok"`
}

// MarkPaidRequest represents an out-of-band payment record
// @Description Request body for marking an invoice paid manually
type MarkPaidRequest struct {
	PaymentRef string `json:"payment_ref" binding:"max=100" example:"bank-transfer-20260310"`
}

// VoidInvoiceRequest represents a void request
// @Description Request body for voiding an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"max=300" example:"Client cancelled the engagement"`
}

// InvoiceItemResponse represents an invoice line item
// @Description Invoice line item
type InvoiceItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description" example:"Landing page build"`
	Quantity    string `json:"quantity" example:"1"`
	UnitPrice   string `json:"unit_price" example:"2400.00"`
	Position    int    `json:"position" example:"0"`
}

// InvoiceResponse represents an invoice in API responses
// @Description Invoice details returned by the API
type InvoiceResponse struct {
	ID         string                `json:"id"`
	ContactID  string                `json:"contact_id"`
	ProjectID  *string               `json:"project_id,omitempty"`
	Number     string                `json:"number" example:"INV-2026-0042"`
	Status     string                `json:"status" example:"sent" enums:"draft,sent,paid,void,overdue"`
	Currency   string                `json:"currency" example:"USD"`
	Memo       string                `json:"memo"`
	Total      string                `json:"total" example:"2400.00"`
	Items      []InvoiceItemResponse `json:"items"`
	IssuedAt   *string               `json:"issued_at,omitempty"`
	DueDate    *string               `json:"due_date,omitempty" example:"2026-03-15"`
	PaidAt     *string               `json:"paid_at,omitempty"`
	PaymentRef string                `json:"payment_ref,omitempty"`
	VoidReason string                `json:"void_reason,omitempty"`
	CreatedAt  string                `json:"created_at"`
	UpdatedAt  string                `json:"updated_at"`
	Version    int                   `json:"version" example:"1"`
}

// PublicInvoiceResponse is the client-facing view behind the payment token
// @Description Invoice as shown to the client on the public payment page
type PublicInvoiceResponse struct {
	Number   string                `json:"number" example:"INV-2026-0042"`
	Status   string                `json:"status" example:"sent"`
	Currency string                `json:"currency" example:"USD"`
	Memo     string                `json:"memo"`
	Total    string                `json:"total" example:"2400.00"`
	Items    []InvoiceItemResponse `json:"items"`
	DueDate  *string               `json:"due_date,omitempty" example:"2026-03-15"`
}

// PaymentResultResponse represents a settled public payment
// @Description Result of a successful payment
type PaymentResultResponse struct {
	InvoiceID  string `json:"invoice_id"`
	PaymentRef string `json:"payment_ref" example:"sq-payment-123"`
	ReceiptURL string `json:"receipt_url,omitempty"`
	Amount     string `json:"amount" example:"2400.00"`
	Currency   string `json:"currency" example:"USD"`
}

func toInvoiceItemResponses(items []billing.InvoiceItem) []InvoiceItemResponse {
	out := make([]InvoiceItemResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		out = append(out, InvoiceItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Position:    item.Position,
		})
	}
	return out
}

func toInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:         inv.ID.String(),
		ContactID:  inv.ContactID.String(),
		Number:     inv.Number,
		Status:     string(inv.Status),
		Currency:   inv.Currency,
		Memo:       inv.Memo,
		Total:      inv.Total().StringFixed(2),
		Items:      toInvoiceItemResponses(inv.Items),
		PaymentRef: inv.PaymentRef,
		VoidReason: inv.VoidReason,
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  inv.UpdatedAt.Format(time.RFC3339),
		Version:    inv.Version,
	}
	if inv.ProjectID != nil {
		id := inv.ProjectID.String()
		resp.ProjectID = &id
	}
	resp.IssuedAt = formatOptionalTime(inv.IssuedAt)
	resp.PaidAt = formatOptionalTime(inv.PaidAt)
	if inv.DueDate != nil {
		d := inv.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	return resp
}

func toPublicInvoiceResponse(inv *billing.Invoice) PublicInvoiceResponse {
	resp := PublicInvoiceResponse{
		Number:   inv.Number,
		Status:   string(inv.Status),
		Currency: inv.Currency,
		Memo:     inv.Memo,
		Total:    inv.Total().StringFixed(2),
		Items:    toInvoiceItemResponses(inv.Items),
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	return resp
}

func toInvoiceResponses(items []*billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(items))
	for _, inv := range items {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

// Create godoc
// @ID           createInvoice
// @Summary      Draft an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	var req CreateInvoiceRequest
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

	invoice, err := h.billingService.Create(c.Request.Context(), billingapp.CreateInvoiceInput{
		OrgID:     orgID,
		CreatedBy: userID,
		ContactID: *contactID,
		ProjectID: projectID,
		Currency:  req.Currency,
		Memo:      req.Memo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(invoice))
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
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

	page, err := h.billingService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toInvoiceResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getInvoice
// @Summary      Get an invoice by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.billingService.Get(c.Request.Context(), orgID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Update godoc
// @ID           updateInvoice
// @Summary      Edit a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body UpdateInvoiceRequest true "Invoice update request"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.billingService.Update(c.Request.Context(), billingapp.UpdateInvoiceInput{
		OrgID:     orgID,
		InvoiceID: invoiceID,
		Currency:  req.Currency,
		Memo:      req.Memo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// AddItem godoc
// @ID           addInvoiceItem
// @Summary      Add a line item to a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body AddInvoiceItemRequest true "Line item"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req AddInvoiceItemRequest
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

	invoice, err := h.billingService.AddItem(c.Request.Context(), billingapp.AddItemInput{
		OrgID:       orgID,
		InvoiceID:   invoiceID,
		Description: req.Description,
		Quantity:    *quantity,
		UnitPrice:   *unitPrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// RemoveItem godoc
// @ID           removeInvoiceItem
// @Summary      Remove a line item from a draft invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	invoice, err := h.billingService.RemoveItem(c.Request.Context(), orgID, invoiceID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Issue godoc
// @ID           issueInvoice
// @Summary      Issue a draft invoice
// @Description  Mint the payment token and email the public payment link
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body IssueInvoiceRequest false "Issue options"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req IssueInvoiceRequest
	_ = c.ShouldBindJSON(&req)

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date, expected YYYY-MM-DD")
		return
	}

	invoice, err := h.billingService.Issue(c.Request.Context(), billingapp.IssueInvoiceInput{
		OrgID:     orgID,
		InvoiceID: invoiceID,
		DueDate:   dueDate,
		Message:   req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// MarkPaid godoc
// @ID           markInvoicePaid
// @Summary      Mark an invoice paid out of band
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body MarkPaidRequest false "Payment reference"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req MarkPaidRequest
	_ = c.ShouldBindJSON(&req)

	invoice, err := h.billingService.MarkPaid(c.Request.Context(), orgID, invoiceID, req.PaymentRef)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Void godoc
// @ID           voidInvoice
// @Summary      Void an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body VoidInvoiceRequest false "Void reason"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req VoidInvoiceRequest
	_ = c.ShouldBindJSON(&req)

	invoice, err := h.billingService.Void(c.Request.Context(), billingapp.VoidInvoiceInput{
		OrgID:     orgID,
		InvoiceID: invoiceID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.billingService.Delete(c.Request.Context(), orgID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PublicView godoc
// @ID           viewPublicInvoice
// @Summary      View an invoice via its payment token
// @Tags         public
// @Produce      json
// @Param        token path string true "Payment token"
// @Success      200 {object} APIResponse[PublicInvoiceResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /public/invoices/{token} [get]
func (h *InvoiceHandler) PublicView(c *gin.Context) {
	invoice, err := h.billingService.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPublicInvoiceResponse(invoice))
}

// PublicPay godoc
// @ID           payPublicInvoice
// @Summary      Pay an invoice via its payment token
// @Description  Charge the provided card source through the payment gateway
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token path string true "Payment token"
// @Param        request body PayInvoiceRequest true "Payment request"
// @Success      200 {object} APIResponse[PaymentResultResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /public/invoices/{token}/pay [post]
func (h *InvoiceHandler) PublicPay(c *gin.Context) {
	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.billingService.PayByToken(c.Request.Context(), billingapp.PayByTokenInput{
		Token:    c.Param("token"),
		SourceID: req.SourceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PaymentResultResponse{
		InvoiceID:  result.InvoiceID.String(),
		PaymentRef: result.PaymentRef,
		ReceiptURL: result.ReceiptURL,
		Amount:     result.AmountDue.StringFixed(2),
		Currency:   result.Currency,
	})
}

// GatewayCallbackRequest mirrors the envelope of a Square payment webhook
type GatewayCallbackRequest struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Payment struct {
				ID          string `json:"id"`
				Status      string `json:"status"`
				ReferenceID string `json:"reference_id"`
			} `json:"payment"`
		} `json:"object"`
	} `json:"data"`
}

// GatewayCallback godoc
// @ID           paymentGatewayCallback
// @Summary      Receive a payment gateway notification
// @Description  Reconciles Square payment webhooks against invoices
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body GatewayCallbackRequest true "Webhook payload"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Router       /public/payments/callback [post]
func (h *InvoiceHandler) GatewayCallback(c *gin.Context) {
	var req GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	err := h.billingService.HandleGatewayCallback(c.Request.Context(), billingapp.GatewayCallbackInput{
		PaymentID: req.Data.Object.Payment.ID,
		Reference: req.Data.Object.Payment.ReferenceID,
		Status:    req.Data.Object.Payment.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.GetByID)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)
		invoices.POST("/:id/items", h.AddItem)
		invoices.DELETE("/:id/items/:itemId", h.RemoveItem)
		invoices.POST("/:id/issue", h.Issue)
		invoices.POST("/:id/pay", h.MarkPaid)
		invoices.POST("/:id/void", h.Void)
	}

	public := rg.Group("/public/invoices")
	{
		public.GET("/:token", h.PublicView)
		public.POST("/:token/pay", h.PublicPay)
	}

	rg.POST("/public/payments/callback", h.GatewayCallback)
}
