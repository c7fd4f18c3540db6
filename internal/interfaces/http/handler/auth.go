package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	appidentity "github.com/clubhouse/backend/internal/application/identity"
	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/infrastructure/config"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/clubhouse/backend/internal/interfaces/http/middleware"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login outcomes reported to the LoginObserver
const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
	LoginThrottled = "throttled"
)

// LoginObserver counts login attempts. *telemetry.Metrics satisfies it.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// loginContent is what the login page shows
type loginContent struct {
	Username string
}

// AuthHandler handles sign-in, sign-out, signup and the current user
type AuthHandler struct {
	BaseHandler
	authService  *appidentity.AuthService
	userService  *appidentity.UserService
	cookie       config.CookieConfig
	tokenTTL     time.Duration
	signupSchema string
	observer     LoginObserver
}

// AuthHandlerConfig holds the AuthHandler settings
type AuthHandlerConfig struct {
	Cookie   config.CookieConfig
	TokenTTL time.Duration
	// SignupSchema is the tenant used when the signup form names none
	SignupSchema string
	// Observer may be nil
	Observer LoginObserver
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(base BaseHandler, authService *appidentity.AuthService, userService *appidentity.UserService, cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  base,
		authService:  authService,
		userService:  userService,
		cookie:       cfg.Cookie,
		tokenTTL:     cfg.TokenTTL,
		signupSchema: cfg.SignupSchema,
		observer:     cfg.Observer,
	}
}

func (h *AuthHandler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveLogin(outcome)
	}
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.Page(c, http.StatusOK, view.PageLogin, h.pageData(c, loginContent{}))
}

// Login handles the login form. Success sets the access token cookie and
// redirects to the member list; failure re-renders the form, or answers 401
// to clients asking for JSON.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	_ = c.ShouldBind(&form)

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Username: strings.TrimSpace(form.Username),
		Password: form.Password,
		Tenant:   form.Tenant,
	})
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			h.observe(LoginFailed)
			h.HandleError(c, err)
			return
		}
		h.observe(LoginFailed)
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("", identity.ErrInvalidCredentials.Message))
			return
		}
		data := h.pageData(c, loginContent{Username: form.Username})
		data.Error = translate(c, "login.invalid_credentials")
		h.Page(c, http.StatusOK, view.PageLogin, data)
		return
	}

	h.observe(LoginSucceeded)
	h.setTokenCookie(c, result.AccessToken, h.tokenTTL)
	c.Redirect(http.StatusFound, "/members")
}

// LoginThrottled answers a rate limited login attempt
func (h *AuthHandler) LoginThrottled(c *gin.Context) {
	h.observe(LoginThrottled)
	msg := translate(c, "login.too_many_attempts")
	if middleware.WantsJSON(c) || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse(dto.ErrCodeRateLimited, msg))
		return
	}
	data := h.pageData(c, loginContent{})
	data.Error = msg
	h.Page(c, http.StatusTooManyRequests, view.PageLogin, data)
}

// Token is the programmatic login: JSON credentials in, bearer token out
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Tenant:   req.Tenant,
	})
	if err != nil {
		h.observe(LoginFailed)
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("", identity.ErrInvalidCredentials.Message))
			return
		}
		h.HandleError(c, err)
		return
	}
	h.observe(LoginSucceeded)
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: result.AccessToken, TokenType: result.TokenType})
}

// Me returns the signed-in user's credential record
func (h *AuthHandler) Me(c *gin.Context) {
	info, err := h.authService.CurrentUser(c.Request.Context(), principal(c))
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("", identity.ErrUserNotFound.Message))
			return
		}
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Logout revokes the presented token, clears the cookie and returns to the
// login page. It works for anonymous requests too.
func (h *AuthHandler) Logout(c *gin.Context) {
	if cl := claims(c); cl != nil {
		err := h.authService.Logout(c.Request.Context(), appidentity.LogoutInput{
			TokenJTI: cl.ID,
			TTL:      cl.RemainingTTL(),
		})
		if err != nil {
			// the cookie is still cleared; the token expires on its own
			logger.L(c.Request.Context()).Warn("Token revocation failed", zap.Error(err))
		}
	}
	h.setTokenCookie(c, "", -1)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// Signup registers a credential from the signup form
func (h *AuthHandler) Signup(c *gin.Context) {
	var form dto.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindError(c, err)
		return
	}
	schema := form.TenantSchema
	if schema == "" {
		schema = h.signupSchema
	}

	info, err := h.userService.Signup(c.Request.Context(), appidentity.SignupInput{
		Username:     form.Username,
		Password:     form.Password,
		TenantSchema: schema,
		Email:        form.Email,
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && dto.StatusFor(domainErr.Code) < http.StatusInternalServerError {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(domainErr.Code, domainErr.Message))
			return
		}
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignupResponse{Status: "ok", Username: info.Username, TenantSchema: info.TenantSchema})
}

// setTokenCookie writes the http-only access token cookie. A negative maxAge
// deletes it.
func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, token, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
