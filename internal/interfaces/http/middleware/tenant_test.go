package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTenantRouter(defaultSchema string, claims *testClaimsSource) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(zap.NewNop()))
	if claims != nil {
		router.Use(func(c *gin.Context) {
			c.Set(ClaimsKey, testClaims("ana", claims.schema))
			c.Next()
		})
	}
	router.Use(Tenant(TenantConfig{
		Default: defaultSchema,
		Public:  NewPublicPaths("/health"),
		Logger:  zap.NewNop(),
	}))
	handler := func(c *gin.Context) {
		id, ok := GetTenant(c)
		c.JSON(http.StatusOK, gin.H{
			"tenant": string(id),
			"found":  ok,
			"ctx":    logger.GetTenant(c.Request.Context()),
		})
	}
	router.GET("/members", handler)
	router.GET("/health", handler)
	return router
}

type testClaimsSource struct {
	schema string
}

func TestTenant_Priority(t *testing.T) {
	tests := []struct {
		name       string
		claim      *testClaimsSource
		header     string
		query      string
		def        string
		wantTenant string
	}{
		{name: "claim beats header", claim: &testClaimsSource{"club_a"}, header: "club_b", query: "club_c", def: "tenant1", wantTenant: "club_a"},
		{name: "header beats query", header: "club_b", query: "club_c", def: "tenant1", wantTenant: "club_b"},
		{name: "query beats default", query: "club_c", def: "tenant1", wantTenant: "club_c"},
		{name: "default", def: "tenant1", wantTenant: "tenant1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTenantRouter(tt.def, tt.claim)
			target := "/members"
			if tt.query != "" {
				target += "?tenant=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"tenant":"`+tt.wantTenant+`","found":true,"ctx":"`+tt.wantTenant+`"}`, w.Body.String())
		})
	}
}

func TestTenant_NoHint(t *testing.T) {
	router := newTenantRouter("", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/members", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tenant":"","found":false,"ctx":""}`, w.Body.String())
}

func TestTenant_MalformedHint(t *testing.T) {
	for _, hint := range []string{"club-a", "a;DROP SCHEMA public", "ünï"} {
		t.Run(hint, func(t *testing.T) {
			router := newTenantRouter("tenant1", nil)
			req := httptest.NewRequest(http.MethodGet, "/members", nil)
			req.Header.Set(TenantHeader, hint)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"detail":"Invalid tenant identifier","code":"INVALID_TENANT"}`, w.Body.String())
		})
	}

	t.Run("does not fall back to the default", func(t *testing.T) {
		router := newTenantRouter("tenant1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/members?tenant=bad-name", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ignored on public paths", func(t *testing.T) {
		router := newTenantRouter("tenant1", nil)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(TenantHeader, "club-a")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"","found":false,"ctx":""}`, w.Body.String())
	})
}
