package identity

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/tenant"
)

// UserRepository persists credential records in the shared schema
type UserRepository interface {
	// Create inserts a new credential. It returns ErrUserExists or ErrEmailInUse
	// when the per-tenant uniqueness constraints are violated.
	Create(ctx context.Context, user *User) error

	// Update saves email, password hash, active and admin flags
	Update(ctx context.Context, user *User) error

	// FindByUsername returns the oldest credential with username in any tenant
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByTenantAndUsername returns the credential for username within tenant
	FindByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (*User, error)

	// ExistsByTenantAndUsername checks username uniqueness within tenant
	ExistsByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (bool, error)

	// ExistsByTenantAndEmail checks email uniqueness within tenant, ignoring excludeID
	ExistsByTenantAndEmail(ctx context.Context, t tenant.ID, email string, excludeID int64) (bool, error)
}
