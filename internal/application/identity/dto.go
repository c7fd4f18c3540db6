package identity

import (
	"time"

	"github.com/clubhouse/backend/internal/domain/identity"
)

// TokenTypeBearer is reported to API clients with every issued token
const TokenTypeBearer = "bearer"

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	// Tenant optionally narrows the credential lookup to one tenant
	Tenant string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        UserInfo
}

// UserInfo is the public view of a credential record
type UserInfo struct {
	Username     string `json:"username"`
	TenantSchema string `json:"tenant_schema"`
	IsActive     bool   `json:"is_active"`
	Email        string `json:"email,omitempty"`
	IsAdmin      bool   `json:"-"`
}

func toUserInfo(u *identity.User, admin bool) UserInfo {
	return UserInfo{
		Username:     u.Username,
		TenantSchema: u.TenantSchema.String(),
		IsActive:     u.IsActive,
		Email:        u.Email,
		IsAdmin:      admin,
	}
}

// Principal identifies the signed-in user of a request
type Principal struct {
	Username string
	Tenant   string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	TokenJTI string
	// TTL is the token's remaining lifetime; the revocation outlives it by nothing
	TTL time.Duration
}

// SignupInput contains the input for self-service registration
type SignupInput struct {
	Username     string
	Password     string
	TenantSchema string
	Email        string
}

// UpdateEmailInput contains the input for changing the account email
type UpdateEmailInput struct {
	Principal       Principal
	Email           string
	CurrentPassword string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// CreateTenantInput contains the input for provisioning a tenant with its first admin
type CreateTenantInput struct {
	TenantSchema  string
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// TenantResult reports a provisioned tenant
type TenantResult struct {
	TenantSchema  string `json:"tenant_schema"`
	AdminUsername string `json:"admin_username"`
	Revision      string `json:"revision"`
}
