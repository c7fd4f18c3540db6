package identity

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (*identity.User, error) {
	args := m.Called(ctx, t, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (bool, error) {
	args := m.Called(ctx, t, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByTenantAndEmail(ctx context.Context, t tenant.ID, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, t, email, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockMigrator is a mock implementation of SchemaMigrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Upgrade(ctx context.Context, schema, target string) (migration.Result, error) {
	args := m.Called(ctx, schema, target)
	return args.Get(0).(migration.Result), args.Error(1)
}

// MockProvisioner is a mock implementation of TenantProvisioner
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, schema string) (string, error) {
	args := m.Called(ctx, schema)
	return args.String(0), args.Error(1)
}

// createTestUser builds an active credential with a known password
func createTestUser(t tenant.ID, username, password string) *identity.User {
	user, err := identity.NewUser(t, username, password, username+"@example.com")
	if err != nil {
		panic(err)
	}
	user.ID = 1
	return user
}
