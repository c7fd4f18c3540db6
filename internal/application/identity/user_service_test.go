package identity

import (
	"context"
	"testing"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_Signup(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	provisioner := new(MockProvisioner)

	users.On("ExistsByTenantAndUsername", ctx, tenant.ID("tenant1"), "alice").Return(false, nil)
	users.On("ExistsByTenantAndEmail", ctx, tenant.ID("tenant1"), "alice@example.com", int64(0)).Return(false, nil)
	provisioner.On("Provision", ctx, "tenant1").Return("3de7e59774a2", nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "alice" && u.TenantSchema == "tenant1" && u.IsActive && u.VerifyPassword("secret-password")
	})).Return(nil)

	svc := NewUserService(users, provisioner, zap.NewNop())
	info, err := svc.Signup(ctx, SignupInput{
		Username:     "alice",
		Password:     "secret-password",
		TenantSchema: "tenant1",
		Email:        "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, "tenant1", info.TenantSchema)
	users.AssertExpectations(t)
	provisioner.AssertExpectations(t)
}

func TestUserService_SignupProvisionsBeforeLookups(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	provisioner := new(MockProvisioner)

	provisioned := false
	provisioner.On("Provision", ctx, "clubA").
		Run(func(mock.Arguments) { provisioned = true }).
		Return("3de7e59774a2", nil)
	users.On("ExistsByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").
		Run(func(mock.Arguments) {
			require.True(t, provisioned, "credential table queried before the tenant was provisioned")
		}).
		Return(false, nil)
	users.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	_, err := NewUserService(users, provisioner, zap.NewNop()).Signup(ctx, SignupInput{
		Username: "alice", Password: "secret-password", TenantSchema: "clubA",
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
	provisioner.AssertExpectations(t)
}

func TestUserService_SignupStopsWhenProvisioningFails(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	provisioner := new(MockProvisioner)
	provisioner.On("Provision", ctx, "clubA").
		Return("", &tenant.SchemaProvisioningError{Schema: "clubA", Err: assert.AnError})

	_, err := NewUserService(users, provisioner, zap.NewNop()).Signup(ctx, SignupInput{
		Username: "alice", Password: "secret-password", TenantSchema: "clubA",
	})
	var provErr *tenant.SchemaProvisioningError
	require.ErrorAs(t, err, &provErr)
	users.AssertNotCalled(t, "ExistsByTenantAndUsername", mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_SignupConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("username taken in tenant", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("ExistsByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").Return(true, nil)

		_, err := NewUserService(users, nil, zap.NewNop()).Signup(ctx, SignupInput{
			Username: "alice", Password: "pw", TenantSchema: "clubA",
		})
		assert.ErrorIs(t, err, identity.ErrUserExists)
		assert.Equal(t, "User already exists for that tenant", err.Error())
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email taken in tenant", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("ExistsByTenantAndUsername", ctx, tenant.ID("clubA"), "bob").Return(false, nil)
		users.On("ExistsByTenantAndEmail", ctx, tenant.ID("clubA"), "a@example.com", int64(0)).Return(true, nil)

		_, err := NewUserService(users, nil, zap.NewNop()).Signup(ctx, SignupInput{
			Username: "bob", Password: "pw", TenantSchema: "clubA", Email: "a@example.com",
		})
		assert.ErrorIs(t, err, identity.ErrEmailInUse)
	})

	t.Run("invalid tenant", func(t *testing.T) {
		users := new(MockUserRepository)
		_, err := NewUserService(users, nil, zap.NewNop()).Signup(ctx, SignupInput{
			Username: "bob", Password: "pw", TenantSchema: "club;drop",
		})
		assert.ErrorIs(t, err, tenant.ErrInvalidTenantIdentifier)
		users.AssertExpectations(t)
	})
}

func TestUserService_UpdateEmail(t *testing.T) {
	ctx := context.Background()
	principal := Principal{Username: "alice", Tenant: "clubA"}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		user := createTestUser("clubA", "alice", "secret-password")
		users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").Return(user, nil)
		users.On("ExistsByTenantAndEmail", ctx, tenant.ID("clubA"), "new@example.com", int64(1)).Return(false, nil)
		users.On("Update", ctx, user).Return(nil)

		info, err := NewUserService(users, nil, zap.NewNop()).UpdateEmail(ctx, UpdateEmailInput{
			Principal: principal, Email: "new@example.com", CurrentPassword: "secret-password",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", info.Email)
		users.AssertExpectations(t)
	})

	t.Run("unchanged email skips uniqueness check", func(t *testing.T) {
		users := new(MockUserRepository)
		user := createTestUser("clubA", "alice", "secret-password")
		users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		_, err := NewUserService(users, nil, zap.NewNop()).UpdateEmail(ctx, UpdateEmailInput{
			Principal: principal, Email: "alice@example.com", CurrentPassword: "secret-password",
		})
		require.NoError(t, err)
		users.AssertNotCalled(t, "ExistsByTenantAndEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").
			Return(createTestUser("clubA", "alice", "secret-password"), nil)

		_, err := NewUserService(users, nil, zap.NewNop()).UpdateEmail(ctx, UpdateEmailInput{
			Principal: principal, Email: "new@example.com", CurrentPassword: "nope",
		})
		assert.ErrorIs(t, err, identity.ErrPasswordIncorrect)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("email in use", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").
			Return(createTestUser("clubA", "alice", "secret-password"), nil)
		users.On("ExistsByTenantAndEmail", ctx, tenant.ID("clubA"), "bob@example.com", int64(1)).Return(true, nil)

		_, err := NewUserService(users, nil, zap.NewNop()).UpdateEmail(ctx, UpdateEmailInput{
			Principal: principal, Email: "bob@example.com", CurrentPassword: "secret-password",
		})
		assert.ErrorIs(t, err, identity.ErrEmailInUse)
	})

	t.Run("user missing", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").Return(nil, identity.ErrUserNotFound)

		_, err := NewUserService(users, nil, zap.NewNop()).UpdateEmail(ctx, UpdateEmailInput{Principal: principal})
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	principal := Principal{Username: "alice", Tenant: "clubA"}

	tests := []struct {
		name    string
		input   ChangePasswordInput
		lookup  bool
		wantErr error
	}{
		{
			name:    "confirmation mismatch",
			input:   ChangePasswordInput{CurrentPassword: "secret-password", NewPassword: "new-password-1", ConfirmPassword: "new-password-2"},
			wantErr: identity.ErrPasswordMismatch,
		},
		{
			name:    "too short",
			input:   ChangePasswordInput{CurrentPassword: "secret-password", NewPassword: "short", ConfirmPassword: "short"},
			wantErr: identity.ErrPasswordTooShort,
		},
		{
			name:    "wrong current password",
			input:   ChangePasswordInput{CurrentPassword: "nope", NewPassword: "new-password", ConfirmPassword: "new-password"},
			lookup:  true,
			wantErr: identity.ErrPasswordIncorrect,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			if tt.lookup {
				users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").
					Return(createTestUser("clubA", "alice", "secret-password"), nil)
			}
			tt.input.Principal = principal

			err := NewUserService(users, nil, zap.NewNop()).ChangePassword(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			users.AssertExpectations(t)
			users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		user := createTestUser("clubA", "alice", "secret-password")
		users.On("FindByTenantAndUsername", ctx, tenant.ID("clubA"), "alice").Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		err := NewUserService(users, nil, zap.NewNop()).ChangePassword(ctx, ChangePasswordInput{
			Principal:       principal,
			CurrentPassword: "secret-password",
			NewPassword:     "brand-new-password",
			ConfirmPassword: "brand-new-password",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("brand-new-password"))
		assert.False(t, user.VerifyPassword("secret-password"))
	})
}
