// Package auth implements login, token refresh and session revocation for
// contacts with credentials.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/domain/crm"
	"github.com/agencyhub/backend/internal/domain/shared"
	infraauth "github.com/agencyhub/backend/internal/infrastructure/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	contactRepo crm.ContactRepository
	jwtService  *infraauth.JWTService
	blacklist   infraauth.TokenBlacklist
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	contactRepo crm.ContactRepository,
	jwtService *infraauth.JWTService,
	blacklist infraauth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		contactRepo: contactRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// Login authenticates a contact and returns a token pair. Failed attempts
// count toward the lockout threshold; the response never reveals whether
// the email exists.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	contact, err := s.contactRepo.FindPrincipalByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Warn("login attempt for unknown email",
			zap.String("email", input.Email), zap.String("ip", input.IP))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !contact.CanLogin() {
		if contact.IsLocked() {
			s.logger.Warn("login attempt for locked account",
				zap.String("contact_id", contact.ID.String()), zap.String("ip", input.IP))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Try again later")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !contact.VerifyPassword(input.Password) {
		became := contact.RecordLoginFailure()
		if err := s.contactRepo.Save(ctx, contact); err != nil {
			s.logger.Error("failed to record login failure", zap.Error(err))
		}
		if became {
			s.logger.Warn("account locked after repeated failures",
				zap.String("contact_id", contact.ID.String()), zap.String("ip", input.IP))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed attempts. Account has been locked")
		}
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	contact.RecordLoginSuccess()
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("failed to record login success", zap.Error(err))
	}

	pair, err := s.jwtService.GenerateTokenPair(infraauth.GenerateTokenInput{
		OrgID:  contact.OrgID,
		UserID: contact.ID,
		Email:  contact.Email,
		Role:   string(contact.Role),
	})
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("login succeeded",
		zap.String("contact_id", contact.ID.String()),
		zap.String("org_id", contact.OrgID.String()))

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  userInfo(contact),
	}, nil
}

// Refresh validates a refresh token and mints a fresh pair. The role is
// re-read from the database so a demotion takes effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*LoginResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	orgID, err := claims.GetOrgUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	if revoked, err := s.blacklist.IsUserTokenInvalidated(ctx, userID.String(), claims.IssuedAt.Time); err != nil {
		s.logger.Error("blacklist check failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate session")
	} else if revoked {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Session has been revoked")
	}

	contact, err := s.contactRepo.FindByID(ctx, orgID, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	if !contact.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	pair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, contact.Email, string(contact.Role))
	if err != nil {
		if errors.Is(err, infraauth.ErrMaxRefreshExceeded) {
			return nil, shared.NewDomainError("REFRESH_LIMIT", "Session has been refreshed too many times, sign in again")
		}
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  userInfo(contact),
	}, nil
}

// Logout revokes the presented access token; with Everywhere it revokes
// every session the contact holds.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessJTI != "" && input.AccessTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			s.logger.Error("failed to blacklist token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke session")
		}
	}
	if input.Everywhere {
		ttl := input.RefreshTTL
		if ttl <= 0 {
			ttl = s.jwtService.GetRefreshTokenExpiration()
		}
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, input.UserID.String(), ttl); err != nil {
			s.logger.Error("failed to revoke all sessions", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke sessions")
		}
	}
	s.logger.Info("logout", zap.String("contact_id", input.UserID.String()),
		zap.Bool("everywhere", input.Everywhere))
	return nil
}

// CurrentUser returns the authenticated contact's profile
func (s *AuthService) CurrentUser(ctx context.Context, orgID, userID uuid.UUID) (*UserInfo, error) {
	contact, err := s.contactRepo.FindByID(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	info := userInfo(contact)
	return &info, nil
}

// ChangePassword verifies the old password, sets the new one, and revokes
// every other session.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	contact, err := s.contactRepo.FindByID(ctx, input.OrgID, input.UserID)
	if err != nil {
		return err
	}
	if !contact.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := contact.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.contactRepo.SaveWithLock(ctx, contact); err != nil {
		return err
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, contact.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke sessions after password change", zap.Error(err))
	}
	s.logger.Info("password changed", zap.String("contact_id", contact.ID.String()))
	return nil
}

func userInfo(contact *crm.Contact) UserInfo {
	return UserInfo{
		ID:       contact.ID,
		OrgID:    contact.OrgID,
		Email:    contact.Email,
		FullName: contact.FullName(),
		Role:     string(contact.Role),
	}
}
