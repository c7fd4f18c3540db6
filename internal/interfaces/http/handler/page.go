package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
)

// languageCookieMaxAge keeps the language choice for a year
const languageCookieMaxAge = 365 * 24 * 60 * 60

// PageHandler serves the static pages and the language switch
type PageHandler struct {
	BaseHandler
}

// NewPageHandler creates a new page handler
func NewPageHandler(base BaseHandler) *PageHandler {
	return &PageHandler{BaseHandler: base}
}

// Landing is the public front page
func (h *PageHandler) Landing(c *gin.Context) {
	h.Page(c, http.StatusOK, view.PageLanding, h.pageData(c, nil))
}

// Home greets the signed-in user
func (h *PageHandler) Home(c *gin.Context) {
	h.Page(c, http.StatusOK, view.PageHome, h.pageData(c, nil))
}

// Placeholder stands in for sections not built yet
func (h *PageHandler) Placeholder(c *gin.Context) {
	h.Page(c, http.StatusOK, view.PagePlaceholder, h.pageData(c, nil))
}

// SetLanguage stores the chosen locale in a cookie and sends the browser
// back where it came from. Unsupported locales leave the cookie untouched.
func (h *PageHandler) SetLanguage(c *gin.Context) {
	var form dto.LanguageForm
	_ = c.ShouldBind(&form)

	if i18n.Supported(form.Lang) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(i18n.CookieName, form.Lang, languageCookieMaxAge, "/", "", false, false)
	}
	c.Redirect(http.StatusFound, backTo(c))
}

// backTo returns the local part of the Referer, or "/". Referers naming
// another host are not followed.
func backTo(c *gin.Context) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}
