package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	appmembership "github.com/clubhouse/backend/internal/application/membership"
	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/auth"
	"github.com/clubhouse/backend/internal/infrastructure/config"
	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"github.com/clubhouse/backend/internal/interfaces/http/middleware"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

var testCatalog = i18n.MustEmbedded()

// english resolves a key the way an English page shows it
func english(key string, args ...any) string {
	return testCatalog.Translator("en").T(key, args...)
}

// testCookieConfig returns a default cookie config for tests
func testCookieConfig() config.CookieConfig {
	return config.CookieConfig{
		Name:     "access_token",
		Path:     "/",
		Secure:   false,
		SameSite: "lax",
	}
}

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret-key-32-characters-long",
		Algorithm:  "HS256",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	}
}

func testBase(t *testing.T) BaseHandler {
	t.Helper()
	renderer, err := view.New()
	require.NoError(t, err)
	return NewBaseHandler(renderer)
}

// withPrincipal stands in for the Auth and Tenant middleware
func withPrincipal(username, schema string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-" + username,
				Subject:   username,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TenantSchema: schema,
			IsActive:     true,
		})
		c.Set(middleware.TenantKey, tenant.MustParse(schema))
		c.Next()
	}
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Locale(testCatalog))
	r.Use(mw...)
	return r
}

func perform(r http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	return perform(r, http.MethodPost, path, strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
}

func sendJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return perform(r, method, path, &buf, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func createTestUser(t *testing.T, schema, username, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(tenant.MustParse(schema), username, password, "")
	require.NoError(t, err)
	user.ID = 1
	return user
}

// membershipEnv wires real membership services over mock repositories
type membershipEnv struct {
	members   *MockMemberRepository
	levels    *MockLevelRepository
	locations *MockLocationRepository
	prices    *MockPriceRepository
	payments  *MockPaymentRepository

	memberService   *appmembership.MemberService
	settingsService *appmembership.SettingsService
	paymentService  *appmembership.PaymentService
}

func newMembershipEnv() *membershipEnv {
	e := &membershipEnv{
		members:   new(MockMemberRepository),
		levels:    new(MockLevelRepository),
		locations: new(MockLocationRepository),
		prices:    new(MockPriceRepository),
		payments:  new(MockPaymentRepository),
	}
	scope := appmembership.NoOpTransactionScope{}
	logger := zap.NewNop()
	e.memberService = appmembership.NewMemberService(e.members, e.levels, e.locations, scope, logger)
	e.settingsService = appmembership.NewSettingsService(e.levels, e.locations, e.prices, scope, logger)
	e.paymentService = appmembership.NewPaymentService(e.members, e.prices, e.payments, scope, logger)
	return e
}

// expectOverview stubs the catalog lists shown on member and settings pages
func (e *membershipEnv) expectOverview() {
	e.levels.On("ListByRank", mock.Anything).Return([]membership.Level{
		{ID: 1, Name: "Beginner", Rank: 1},
		{ID: 2, Name: "Advanced", Rank: 2},
	}, nil)
	e.locations.On("ListByName", mock.Anything).Return([]membership.Location{
		{ID: 1, Name: "North Hall"},
	}, nil)
	e.prices.On("ListByAmount", mock.Anything).Return([]membership.PaymentPrice{}, nil)
}

func int64Ptr(v int64) *int64 {
	return &v
}
