package handler

import (
	"net/http"

	appidentity "github.com/clubhouse/backend/internal/application/identity"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TenantHandler handles tenant administration
type TenantHandler struct {
	BaseHandler
	authService   *appidentity.AuthService
	tenantService *appidentity.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(base BaseHandler, authService *appidentity.AuthService, tenantService *appidentity.TenantService) *TenantHandler {
	return &TenantHandler{
		BaseHandler:   base,
		authService:   authService,
		tenantService: tenantService,
	}
}

// Create provisions a tenant schema, migrates it to head and registers its
// first administrator. Only administrators may call it.
func (h *TenantHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.authService.RequireAdmin(ctx, principal(c)); err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.tenantService.CreateTenant(ctx, appidentity.CreateTenantInput{
		TenantSchema:  req.TenantSchema,
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
		AdminEmail:    req.AdminEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
