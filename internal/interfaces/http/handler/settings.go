package handler

import (
	"errors"
	"net/http"

	appidentity "github.com/clubhouse/backend/internal/application/identity"
	appmembership "github.com/clubhouse/backend/internal/application/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const settingsPath = "/settings"

// accountErrorKeys covers account codes whose translation key is not derived
// from the code itself
var accountErrorKeys = map[string]string{
	"NOT_FOUND":     "settings.user_not_found",
	"INVALID_EMAIL": "settings.email_invalid",
}

// settingsContent feeds the settings page
type settingsContent struct {
	Email    string
	Overview *appmembership.SettingsOverview
}

// SettingsHandler serves the account and club catalog settings
type SettingsHandler struct {
	BaseHandler
	settings    *appmembership.SettingsService
	authService *appidentity.AuthService
	userService *appidentity.UserService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(
	base BaseHandler,
	settings *appmembership.SettingsService,
	authService *appidentity.AuthService,
	userService *appidentity.UserService,
) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler: base,
		settings:    settings,
		authService: authService,
		userService: userService,
	}
}

// render shows the settings page with an optional error or notice
func (h *SettingsHandler) render(c *gin.Context, errMsg, notice string) {
	ctx := c.Request.Context()
	overview, err := h.settings.Overview(ctx)
	if err != nil {
		h.PageError(c, err)
		return
	}
	content := settingsContent{Overview: overview}
	if info, err := h.authService.CurrentUser(ctx, principal(c)); err == nil {
		content.Email = info.Email
	} else {
		logger.L(ctx).Warn("Settings without account record", zap.Error(err))
	}

	data := h.pageData(c, content)
	data.Error = errMsg
	data.Message = notice
	h.Page(c, http.StatusOK, view.PageSettings, data)
}

// catalogFailed re-renders the page with the translated reason for err
func (h *SettingsHandler) catalogFailed(c *gin.Context, err error) {
	var key string
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		key = dto.TranslationKey(domainErr.Code)
	}
	msg, ok := userMessage(c, key, err)
	if !ok {
		c.String(http.StatusInternalServerError, msg)
		return
	}
	h.render(c, msg, "")
}

func (h *SettingsHandler) accountFailed(c *gin.Context, err error) {
	var key string
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if k, ok := accountErrorKeys[domainErr.Code]; ok {
			key = k
		} else {
			key = dto.TranslationKey(domainErr.Code)
		}
	}
	msg, ok := userMessage(c, key, err)
	if !ok {
		c.String(http.StatusInternalServerError, msg)
		return
	}
	h.render(c, msg, "")
}

// Show renders the settings page
func (h *SettingsHandler) Show(c *gin.Context) {
	h.render(c, "", "")
}

// UpdateEmail changes the account email after checking the password
func (h *SettingsHandler) UpdateEmail(c *gin.Context) {
	var form dto.UpdateEmailForm
	_ = c.ShouldBind(&form)

	_, err := h.userService.UpdateEmail(c.Request.Context(), appidentity.UpdateEmailInput{
		Principal:       principal(c),
		Email:           form.Email,
		CurrentPassword: form.Password,
	})
	if err != nil {
		h.accountFailed(c, err)
		return
	}
	h.render(c, "", translate(c, "settings.email_updated"))
}

// ChangePassword replaces the account password
func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	var form dto.ChangePasswordForm
	_ = c.ShouldBind(&form)

	err := h.userService.ChangePassword(c.Request.Context(), appidentity.ChangePasswordInput{
		Principal:       principal(c),
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		h.accountFailed(c, err)
		return
	}
	h.render(c, "", translate(c, "settings.password_updated"))
}

// done finishes a catalog change: back to the page on success, the page with
// the reason otherwise
func (h *SettingsHandler) done(c *gin.Context, err error) {
	if err != nil {
		h.catalogFailed(c, err)
		return
	}
	c.Redirect(http.StatusFound, settingsPath)
}

// withID runs fn with the :id parameter; malformed ids return to the page
func (h *SettingsHandler) withID(c *gin.Context, fn func(id int64) error) {
	id, ok := idParam(c)
	if !ok {
		c.Redirect(http.StatusFound, settingsPath)
		return
	}
	h.done(c, fn(id))
}

func levelInput(c *gin.Context) appmembership.LevelInput {
	var form dto.LevelForm
	_ = c.ShouldBind(&form)
	return appmembership.LevelInput{Name: form.Name, Rank: form.Rank}
}

func locationInput(c *gin.Context) appmembership.LocationInput {
	var form dto.LocationForm
	_ = c.ShouldBind(&form)
	return appmembership.LocationInput{Name: form.Name}
}

func priceInput(c *gin.Context) appmembership.PriceInput {
	var form dto.PriceForm
	_ = c.ShouldBind(&form)
	return appmembership.PriceInput{Amount: form.Amount, Description: form.Description}
}

// CreateLevel adds a membership level
func (h *SettingsHandler) CreateLevel(c *gin.Context) {
	_, err := h.settings.CreateLevel(c.Request.Context(), levelInput(c))
	h.done(c, err)
}

// UpdateLevel renames or re-ranks a level
func (h *SettingsHandler) UpdateLevel(c *gin.Context) {
	h.withID(c, func(id int64) error {
		_, err := h.settings.UpdateLevel(c.Request.Context(), id, levelInput(c))
		return err
	})
}

// DeleteLevel removes a level no member holds
func (h *SettingsHandler) DeleteLevel(c *gin.Context) {
	h.withID(c, func(id int64) error {
		return h.settings.DeleteLevel(c.Request.Context(), id)
	})
}

// CreateLocation adds a training location
func (h *SettingsHandler) CreateLocation(c *gin.Context) {
	_, err := h.settings.CreateLocation(c.Request.Context(), locationInput(c))
	h.done(c, err)
}

// UpdateLocation renames a location
func (h *SettingsHandler) UpdateLocation(c *gin.Context) {
	h.withID(c, func(id int64) error {
		_, err := h.settings.UpdateLocation(c.Request.Context(), id, locationInput(c))
		return err
	})
}

// DeleteLocation removes a location no member is assigned to
func (h *SettingsHandler) DeleteLocation(c *gin.Context) {
	h.withID(c, func(id int64) error {
		return h.settings.DeleteLocation(c.Request.Context(), id)
	})
}

// CreatePrice adds a price list entry
func (h *SettingsHandler) CreatePrice(c *gin.Context) {
	_, err := h.settings.CreatePrice(c.Request.Context(), priceInput(c))
	h.done(c, err)
}

// UpdatePrice changes a price list entry
func (h *SettingsHandler) UpdatePrice(c *gin.Context) {
	h.withID(c, func(id int64) error {
		_, err := h.settings.UpdatePrice(c.Request.Context(), id, priceInput(c))
		return err
	})
}

// DeletePrice removes a price no payment references
func (h *SettingsHandler) DeletePrice(c *gin.Context) {
	h.withID(c, func(id int64) error {
		return h.settings.DeletePrice(c.Request.Context(), id)
	})
}
