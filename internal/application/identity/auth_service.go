package identity

import (
	"context"
	"errors"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	users     identity.UserRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	policy    *AdminPolicy
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	policy *AdminPolicy,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		policy:    policy,
		logger:    logger,
	}
}

// Login verifies the credential and issues an access token. Every failure,
// whether unknown user, wrong password, inactive account or malformed tenant
// hint, is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.findForLogin(ctx, input)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) && !errors.Is(err, tenant.ErrInvalidTenantIdentifier) {
			s.logger.Error("Credential lookup failed", zap.String("username", input.Username), zap.Error(err))
			return nil, err
		}
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, identity.ErrInvalidCredentials
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, identity.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("Login attempt for inactive account", zap.String("username", input.Username))
		return nil, identity.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.IssueInput{
		Username:     user.Username,
		TenantSchema: user.TenantSchema.String(),
		Email:        user.Email,
		IsActive:     user.IsActive,
	})
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("tenant", user.TenantSchema.String()))

	return &LoginResult{
		AccessToken: token.AccessToken,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
		User:        toUserInfo(user, s.policy.IsAdmin(user)),
	}, nil
}

func (s *AuthService) findForLogin(ctx context.Context, input LoginInput) (*identity.User, error) {
	if input.Tenant == "" {
		return s.users.FindByUsername(ctx, input.Username)
	}
	t, err := tenant.Parse(input.Tenant)
	if err != nil {
		return nil, err
	}
	return s.users.FindByTenantAndUsername(ctx, t, input.Username)
}

// Authenticate validates a presented token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" && s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Failed to check token revocation", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, auth.ErrTokenBlacklisted
		}
	}
	return claims, nil
}

// CurrentUser loads the credential named by p from the shared table
func (s *AuthService) CurrentUser(ctx context.Context, p Principal) (*UserInfo, error) {
	user, err := s.lookup(ctx, p)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user, s.policy.IsAdmin(user))
	return &info, nil
}

// RequireAdmin returns ErrAdminRequired unless p is an administrator
func (s *AuthService) RequireAdmin(ctx context.Context, p Principal) error {
	if s.policy.IsAdminUsername(p.Username) {
		return nil
	}
	user, err := s.lookup(ctx, p)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return identity.ErrAdminRequired
		}
		return err
	}
	if !s.policy.IsAdmin(user) {
		return identity.ErrAdminRequired
	}
	return nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" || s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TTL); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return err
	}
	s.logger.Info("Token revoked", zap.String("jti", input.TokenJTI))
	return nil
}

func (s *AuthService) lookup(ctx context.Context, p Principal) (*identity.User, error) {
	t, err := tenant.Parse(p.Tenant)
	if err != nil {
		return nil, identity.ErrUserNotFound
	}
	return s.users.FindByTenantAndUsername(ctx, t, p.Username)
}
