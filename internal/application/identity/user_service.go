package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"go.uber.org/zap"
)

// TenantProvisioner makes a tenant schema ready for use
type TenantProvisioner interface {
	Provision(ctx context.Context, schema string) (string, error)
}

// UserService handles self-service registration and account changes
type UserService struct {
	users       identity.UserRepository
	provisioner TenantProvisioner
	logger      *zap.Logger
}

// NewUserService creates a new user service. provisioner may be nil, in
// which case signup only records the credential.
func NewUserService(users identity.UserRepository, provisioner TenantProvisioner, logger *zap.Logger) *UserService {
	return &UserService{
		users:       users,
		provisioner: provisioner,
		logger:      logger,
	}
}

// Signup provisions the tenant and registers a credential in it. Username
// and email are checked before the insert; the unique constraints still
// guard concurrent signups.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*UserInfo, error) {
	t, err := tenant.Parse(input.TenantSchema)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(t, input.Username, input.Password, input.Email)
	if err != nil {
		return nil, err
	}

	// Provisioning runs first: the credential table lives in the shared
	// schema created by the tenant's first revision.
	if s.provisioner != nil {
		if _, err := s.provisioner.Provision(ctx, t.String()); err != nil {
			return nil, err
		}
	}

	exists, err := s.users.ExistsByTenantAndUsername(ctx, t, user.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, identity.ErrUserExists
	}
	if user.Email != "" {
		inUse, err := s.users.ExistsByTenantAndEmail(ctx, t, user.Email, 0)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if inUse {
			return nil, identity.ErrEmailInUse
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User signed up",
		zap.String("username", user.Username),
		zap.String("tenant", t.String()))
	info := toUserInfo(user, false)
	return &info, nil
}

// UpdateEmail changes the account email after re-checking the password.
// An unchanged email is accepted without a uniqueness check.
func (s *UserService) UpdateEmail(ctx context.Context, input UpdateEmailInput) (*UserInfo, error) {
	user, err := s.load(ctx, input.Principal)
	if err != nil {
		return nil, err
	}
	if !user.VerifyPassword(input.CurrentPassword) {
		return nil, identity.ErrPasswordIncorrect
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && email != user.Email {
		inUse, err := s.users.ExistsByTenantAndEmail(ctx, user.TenantSchema, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if inUse {
			return nil, identity.ErrEmailInUse
		}
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Email updated", zap.String("username", user.Username))
	info := toUserInfo(user, false)
	return &info, nil
}

// ChangePassword replaces the password. Confirmation and length are checked
// before the current password so no lookup happens for a malformed form.
func (s *UserService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return identity.ErrPasswordMismatch
	}
	if len(input.NewPassword) < identity.MinPasswordLength {
		return identity.ErrPasswordTooShort
	}

	user, err := s.load(ctx, input.Principal)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(input.CurrentPassword) {
		return identity.ErrPasswordIncorrect
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.String("username", user.Username))
	return nil
}

func (s *UserService) load(ctx context.Context, p Principal) (*identity.User, error) {
	t, err := tenant.Parse(p.Tenant)
	if err != nil {
		return nil, identity.ErrUserNotFound
	}
	user, err := s.users.FindByTenantAndUsername(ctx, t, p.Username)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
