package auth

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput contains the input for login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for audit logging
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic principal information returned after login
type UserInfo struct {
	ID       uuid.UUID
	OrgID    uuid.UUID
	Email    string
	FullName string
	Role     string
}

// RefreshInput contains the input for a token refresh
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput contains the input for logout
type LogoutInput struct {
	UserID     uuid.UUID
	AccessJTI  string
	AccessTTL  time.Duration
	Everywhere bool // Revoke every session, not only this token
	RefreshTTL time.Duration
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	OrgID       uuid.UUID
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}
