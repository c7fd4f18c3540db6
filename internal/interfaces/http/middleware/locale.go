package middleware

import (
	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"github.com/gin-gonic/gin"
)

// TranslatorKey holds the request's *i18n.Translator
const TranslatorKey = "translator"

// Locale picks the request locale from the site_lang cookie or
// Accept-Language and stores a translator bound to it.
func Locale(catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(i18n.CookieName)
		locale := i18n.PickLocale(cookie, c.GetHeader("Accept-Language"))
		c.Set(TranslatorKey, catalog.Translator(locale))
		c.Next()
	}
}

// GetTranslator returns the request translator. Without the Locale
// middleware it returns nil, which translates every key to itself.
func GetTranslator(c *gin.Context) *i18n.Translator {
	if v, ok := c.Get(TranslatorKey); ok {
		if tr, ok := v.(*i18n.Translator); ok {
			return tr
		}
	}
	return nil
}
