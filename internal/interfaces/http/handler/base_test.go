package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		detail string
	}{
		{"not found", membership.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND", membership.ErrMemberNotFound.Message},
		{"wrapped conflict", fmt.Errorf("create: %w", membership.ErrLevelExists), http.StatusConflict, "LEVEL_EXISTS", membership.ErrLevelExists.Message},
		{"forbidden", identity.ErrAdminRequired, http.StatusForbidden, "FORBIDDEN", "Admin required"},
		{"invalid tenant", tenant.ErrInvalidTenantIdentifier, http.StatusBadRequest, "INVALID_TENANT", "Invalid tenant identifier"},
		{"provisioning", &tenant.SchemaProvisioningError{Schema: "clubb", Err: errors.New("boom")}, http.StatusInternalServerError, "SCHEMA_PROVISIONING_FAILED", "Tenant schema could not be created"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testBase(t)
			r := gin.New()
			r.GET("/", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(r, http.MethodGet, "/", nil, nil)

			assert.Equal(t, tt.status, w.Code)
			body := decodeJSON(t, w)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestUserMessage(t *testing.T) {
	run := func(key string, err error) (string, bool) {
		var msg string
		var ok bool
		r := newTestRouter()
		r.GET("/", func(c *gin.Context) { msg, ok = userMessage(c, key, err) })
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		return msg, ok
	}

	t.Run("translated", func(t *testing.T) {
		msg, ok := run("settings.level_in_use", membership.ErrLevelInUse)
		assert.True(t, ok)
		assert.Equal(t, english("settings.level_in_use"), msg)
	})

	t.Run("missing key falls back to the domain message", func(t *testing.T) {
		msg, ok := run("settings.no_such_key", membership.ErrLevelInUse)
		assert.True(t, ok)
		assert.Equal(t, membership.ErrLevelInUse.Message, msg)
	})

	t.Run("unexpected error is generic", func(t *testing.T) {
		msg, ok := run("settings.level_in_use", errors.New("deadlock detected"))
		assert.False(t, ok)
		assert.Equal(t, english("error.generic"), msg)
	})
}

func TestIdParam(t *testing.T) {
	tests := map[string]bool{"7": true, "0": false, "-3": false, "abc": false}
	for raw, valid := range tests {
		t.Run(raw, func(t *testing.T) {
			var ok bool
			r := gin.New()
			r.GET("/:id", func(c *gin.Context) { _, ok = idParam(c) })
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/"+raw, nil))
			assert.Equal(t, valid, ok)
		})
	}
}
