package handler

import (
	"net/http"
	"net/url"
	"testing"

	appidentity "github.com/clubhouse/backend/internal/application/identity"
	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type settingsEnv struct {
	*membershipEnv
	users *MockUserRepository
}

func newSettingsEnv() *settingsEnv {
	return &settingsEnv{membershipEnv: newMembershipEnv(), users: new(MockUserRepository)}
}

func (e *settingsEnv) router(t *testing.T) *gin.Engine {
	t.Helper()
	jwtService, err := auth.NewJWTService(testJWTConfig())
	require.NoError(t, err)
	authService := appidentity.NewAuthService(e.users, jwtService, nil, appidentity.NewAdminPolicy(nil), zap.NewNop())
	userService := appidentity.NewUserService(e.users, nil, zap.NewNop())
	h := NewSettingsHandler(testBase(t), e.settingsService, authService, userService)

	r := newTestRouter(withPrincipal("alice", "cluba"))
	r.GET("/settings", h.Show)
	r.POST("/settings/update-email", h.UpdateEmail)
	r.POST("/settings/change-password", h.ChangePassword)
	r.POST("/settings/levels/create", h.CreateLevel)
	r.POST("/settings/levels/:id/edit", h.UpdateLevel)
	r.POST("/settings/levels/:id/delete", h.DeleteLevel)
	r.POST("/settings/locations/create", h.CreateLocation)
	r.POST("/settings/locations/:id/edit", h.UpdateLocation)
	r.POST("/settings/locations/:id/delete", h.DeleteLocation)
	r.POST("/settings/prices/create", h.CreatePrice)
	r.POST("/settings/prices/:id/edit", h.UpdatePrice)
	r.POST("/settings/prices/:id/delete", h.DeletePrice)
	return r
}

// expectAccount stubs the signed-in user's credential
func (e *settingsEnv) expectAccount(t *testing.T, password string) *identity.User {
	t.Helper()
	user := createTestUser(t, "cluba", "alice", password)
	user.Email = "alice@example.com"
	e.users.On("FindByTenantAndUsername", mock.Anything, tenant.ID("cluba"), "alice").Return(user, nil)
	return user
}

func TestSettingsHandler_Show(t *testing.T) {
	e := newSettingsEnv()
	e.expectOverview()
	e.expectAccount(t, "secret-password")

	w := perform(e.router(t), http.MethodGet, "/settings", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "alice@example.com")
	assert.Contains(t, body, "Advanced")
	assert.Contains(t, body, "North Hall")
}

func TestSettingsHandler_UpdateEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")
		e.users.On("ExistsByTenantAndEmail", mock.Anything, tenant.ID("cluba"), "new@example.com", int64(1)).Return(false, nil)
		e.users.On("Update", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
			return u.Email == "new@example.com"
		})).Return(nil)

		w := postForm(e.router(t), "/settings/update-email", url.Values{
			"email":    {"new@example.com"},
			"password": {"secret-password"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.email_updated"))
		e.users.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")

		w := postForm(e.router(t), "/settings/update-email", url.Values{
			"email":    {"new@example.com"},
			"password": {"nope"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.password_incorrect"))
		e.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")
		e.users.On("ExistsByTenantAndEmail", mock.Anything, tenant.ID("cluba"), "bob@example.com", int64(1)).Return(true, nil)

		w := postForm(e.router(t), "/settings/update-email", url.Values{
			"email":    {"bob@example.com"},
			"password": {"secret-password"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.email_in_use"))
	})

	t.Run("credential gone", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.users.On("FindByTenantAndUsername", mock.Anything, tenant.ID("cluba"), "alice").Return(nil, identity.ErrUserNotFound)

		w := postForm(e.router(t), "/settings/update-email", url.Values{
			"email":    {"new@example.com"},
			"password": {"secret-password"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.user_not_found"))
	})
}

func TestSettingsHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "confirmation differs",
			form:    url.Values{"current_password": {"secret-password"}, "new_password": {"new-password-1"}, "confirm_password": {"new-password-2"}},
			message: english("settings.password_mismatch"),
		},
		{
			name:    "too short",
			form:    url.Values{"current_password": {"secret-password"}, "new_password": {"short"}, "confirm_password": {"short"}},
			message: english("settings.password_too_short"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSettingsEnv()
			e.expectOverview()
			e.expectAccount(t, "secret-password")

			w := postForm(e.router(t), "/settings/change-password", tt.form)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}

	t.Run("success", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		user := e.expectAccount(t, "secret-password")
		e.users.On("Update", mock.Anything, user).Return(nil)

		w := postForm(e.router(t), "/settings/change-password", url.Values{
			"current_password": {"secret-password"},
			"new_password":     {"brand-new-password"},
			"confirm_password": {"brand-new-password"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.password_updated"))
		assert.True(t, user.VerifyPassword("brand-new-password"))
	})
}

func TestSettingsHandler_Levels(t *testing.T) {
	t.Run("create redirects back", func(t *testing.T) {
		e := newSettingsEnv()
		e.levels.On("Create", mock.Anything, mock.MatchedBy(func(l *membership.Level) bool {
			return l.Name == "Expert" && l.Rank == 3
		})).Return(nil)

		w := postForm(e.router(t), "/settings/levels/create", url.Values{"name": {"Expert"}, "rank": {"3"}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/settings", w.Header().Get("Location"))
	})

	t.Run("duplicate name is reported", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")
		e.levels.On("Create", mock.Anything, mock.Anything).Return(membership.ErrLevelExists)

		w := postForm(e.router(t), "/settings/levels/create", url.Values{"name": {"Beginner"}, "rank": {"1"}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.level_exists"))
	})

	t.Run("rank must be an integer", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")

		w := postForm(e.router(t), "/settings/levels/create", url.Values{"name": {"Expert"}, "rank": {"high"}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.level_rank_invalid"))
		e.levels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("level in use cannot be deleted", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")
		e.levels.On("DeleteUnused", mock.Anything, int64(1)).Return(membership.ErrLevelInUse)

		w := postForm(e.router(t), "/settings/levels/1/delete", url.Values{})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.level_in_use"))
	})

	t.Run("malformed id returns to the page", func(t *testing.T) {
		e := newSettingsEnv()
		w := postForm(e.router(t), "/settings/levels/abc/delete", url.Values{})

		assert.Equal(t, http.StatusFound, w.Code)
		e.levels.AssertNotCalled(t, "DeleteUnused", mock.Anything, mock.Anything)
	})
}

func TestSettingsHandler_LocationsAndPrices(t *testing.T) {
	t.Run("location in use", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")
		e.locations.On("DeleteUnused", mock.Anything, int64(1)).Return(membership.ErrLocationInUse)

		w := postForm(e.router(t), "/settings/locations/1/delete", url.Values{})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.location_in_use"))
	})

	t.Run("price amount accepts a comma", func(t *testing.T) {
		e := newSettingsEnv()
		e.prices.On("Create", mock.Anything, mock.MatchedBy(func(p *membership.PaymentPrice) bool {
			return p.Amount.String() == "12.5" && p.Description == "Monthly"
		})).Return(nil)

		w := postForm(e.router(t), "/settings/prices/create", url.Values{"amount": {"12,50"}, "description": {"Monthly"}})

		assert.Equal(t, http.StatusFound, w.Code)
		e.prices.AssertExpectations(t)
	})

	t.Run("price without description", func(t *testing.T) {
		e := newSettingsEnv()
		e.expectOverview()
		e.expectAccount(t, "secret-password")

		w := postForm(e.router(t), "/settings/prices/create", url.Values{"amount": {"10"}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), english("settings.price_description_required"))
	})
}
