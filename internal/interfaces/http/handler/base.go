// Package handler implements the HTTP endpoints: server-rendered pages for
// browsers and a JSON API.
package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	appidentity "github.com/clubhouse/backend/internal/application/identity"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/auth"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/clubhouse/backend/internal/interfaces/http/middleware"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	renderer *view.Renderer
}

// NewBaseHandler creates a BaseHandler rendering pages with renderer
func NewBaseHandler(renderer *view.Renderer) BaseHandler {
	return BaseHandler{renderer: renderer}
}

// HandleError writes err as a JSON error envelope. Domain errors keep their
// message; anything else is logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	var provisionErr *tenant.SchemaProvisioningError
	switch {
	case errors.As(err, &domainErr):
		c.JSON(dto.StatusFor(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message))
	case errors.Is(err, tenant.ErrInvalidTenantIdentifier):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidTenant, "Invalid tenant identifier"))
	case errors.As(err, &provisionErr):
		logger.L(c.Request.Context()).Error("Tenant schema provisioning failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeProvisioning, "Tenant schema could not be created"))
	default:
		logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
	}
}

// BadRequest sends a 400 response with detail
func (h *BaseHandler) BadRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, detail))
}

// BindError reports a failed JSON binding, naming the first invalid field
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if msg := middleware.ValidationMessage(err); msg != "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeValidation, msg))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Invalid request body"))
}

// pageData fills the layout fields from the request
func (h *BaseHandler) pageData(c *gin.Context, content any) view.Data {
	data := view.Data{Path: c.Request.URL.Path, Content: content}
	if claims := middleware.GetClaims(c); claims != nil {
		data.Username = claims.Username()
	}
	if id, ok := middleware.GetTenant(c); ok {
		data.Tenant = id.String()
	}
	return data
}

// Page renders a full HTML page
func (h *BaseHandler) Page(c *gin.Context, status int, page string, data view.Data) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, middleware.GetTranslator(c), data); err != nil {
		h.renderFailed(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Fragment renders one block of a page, for HTMX swaps
func (h *BaseHandler) Fragment(c *gin.Context, status int, page, block string, data view.Data) {
	var buf bytes.Buffer
	if err := h.renderer.RenderBlock(&buf, page, block, middleware.GetTranslator(c), data); err != nil {
		h.renderFailed(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// PageError answers a browser request that failed unexpectedly
func (h *BaseHandler) PageError(c *gin.Context, err error) {
	logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
	c.String(http.StatusInternalServerError, translate(c, "error.generic"))
}

func (h *BaseHandler) renderFailed(c *gin.Context, err error) {
	logger.L(c.Request.Context()).Error("Template rendering failed", zap.Error(err))
	c.String(http.StatusInternalServerError, "Internal server error")
}

// translate resolves key in the request locale
func translate(c *gin.Context, key string, args ...any) string {
	return middleware.GetTranslator(c).T(key, args...)
}

// userMessage returns the text shown on a page for err: the translation of
// key when the catalog has one, else the domain message. Unexpected errors
// are logged and reported generically. ok is false for unexpected errors.
func userMessage(c *gin.Context, key string, err error) (msg string, ok bool) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || dto.StatusFor(domainErr.Code) >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
		return translate(c, "error.generic"), false
	}
	if key != "" {
		if text := translate(c, key); text != key {
			return text, true
		}
	}
	return domainErr.Message, true
}

// principal names the signed-in user of the request
func principal(c *gin.Context) appidentity.Principal {
	p := appidentity.Principal{}
	if claims := middleware.GetClaims(c); claims != nil {
		p.Username = claims.Username()
		p.Tenant = claims.TenantSchema
	}
	if p.Tenant == "" {
		if id, ok := middleware.GetTenant(c); ok {
			p.Tenant = id.String()
		}
	}
	return p
}

// claims returns the verified token of the request, or nil
func claims(c *gin.Context) *auth.Claims {
	return middleware.GetClaims(c)
}

// idParam parses the :id path parameter
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isHTMX reports whether the request was issued by HTMX
func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
