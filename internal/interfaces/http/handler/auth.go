package handler

import (
	"time"

	authapp "github.com/agencyhub/backend/internal/application/auth"
	crmapp "github.com/agencyhub/backend/internal/application/crm"
	"github.com/agencyhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *authapp.AuthService
	crmService  *crmapp.CRMService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *authapp.AuthService, crmService *crmapp.CRMService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		crmService:  crmService,
	}
}

// RegisterRequest represents an organization signup request
// @Description Request body for registering a new agency workspace
type RegisterRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200" example:"Northwind Digital"`
	Slug          string `json:"slug" binding:"required,min=2,max=100" example:"northwind"`
	OwnerEmail    string `json:"owner_email" binding:"required,email,max=254" example:"owner@northwind.io"`
	OwnerFirst    string `json:"owner_first" binding:"required,min=1,max=100" example:"Ada"`
	OwnerLast     string `json:"owner_last" binding:"max=100" example:"Lovelace"`
	OwnerPassword string `json:"owner_password" binding:"required,min=8,max=128"`
}

// LoginRequest represents a login request
// @Description Request body for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@northwind.io"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
// @Description Request body for refreshing an access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents a logout request
// @Description Request body for logout
type LogoutRequest struct {
	Everywhere bool `json:"everywhere" example:"false"`
}

// ChangePasswordRequest represents a password change request
// @Description Request body for changing the current password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse represents an issued token pair
// @Description Access and refresh tokens with their expiry times
type TokenResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  string       `json:"access_token_expires_at" example:"2026-01-24T12:15:00Z"`
	RefreshTokenExpiresAt string       `json:"refresh_token_expires_at" example:"2026-01-31T12:00:00Z"`
	TokenType             string       `json:"token_type" example:"Bearer"`
	User                  UserResponse `json:"user"`
}

// UserResponse represents the authenticated principal
// @Description Authenticated contact profile
type UserResponse struct {
	ID       string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrgID    string `json:"org_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Email    string `json:"email" example:"owner@northwind.io"`
	FullName string `json:"full_name" example:"Ada Lovelace"`
	Role     string `json:"role" example:"owner" enums:"owner,admin,member,client"`
}

func toTokenResponse(result *authapp.LoginResult) TokenResponse {
	return TokenResponse{
		AccessToken:           result.AccessToken,
		RefreshToken:          result.RefreshToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt.Format(time.RFC3339),
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt.Format(time.RFC3339),
		TokenType:             result.TokenType,
		User:                  toUserResponse(result.User),
	}
}

func toUserResponse(info authapp.UserInfo) UserResponse {
	return UserResponse{
		ID:       info.ID.String(),
		OrgID:    info.OrgID.String(),
		Email:    info.Email,
		FullName: info.FullName,
		Role:     info.Role,
	}
}

// Register godoc
// @ID           register
// @Summary      Register a new agency workspace
// @Description  Create an organization with its owner account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} APIResponse[OrganizationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.crmService.RegisterOrganization(c.Request.Context(), crmapp.RegisterOrganizationInput{
		Name:          req.Name,
		Slug:          req.Slug,
		OwnerEmail:    req.OwnerEmail,
		OwnerFirst:    req.OwnerFirst,
		OwnerLast:     req.OwnerLast,
		OwnerPassword: req.OwnerPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, gin.H{
		"organization": toOrganizationResponse(result.Organization),
		"owner":        toContactResponse(result.Owner),
	})
}

// Login godoc
// @ID           login
// @Summary      Authenticate a contact
// @Description  Exchange email and password for a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), authapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTokenResponse(result))
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Refresh an access token
// @Description  Exchange a valid refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh request"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), authapp.RefreshInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTokenResponse(result))
}

// Logout godoc
// @ID           logout
// @Summary      Revoke the current session
// @Description  Blacklist the presented access token; with everywhere=true revoke all sessions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Logout request"
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	input := authapp.LogoutInput{
		UserID:     userID,
		Everywhere: req.Everywhere,
	}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		input.AccessJTI = claims.ID
		input.AccessTTL = claims.GetRemainingTTL()
	}

	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Me godoc
// @ID           currentUser
// @Summary      Get the authenticated contact
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
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

	info, err := h.authService.CurrentUser(c.Request.Context(), orgID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*info))
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change the current password
// @Description  Verify the old password, set the new one and revoke other sessions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
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

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), authapp.ChangePasswordInput{
		OrgID:       orgID,
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers authentication routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
		auth.PUT("/password", h.ChangePassword)
	}
}
