// Package i18n loads the embedded translation catalog and picks a locale for
// each request.
package i18n

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// CookieName holds the locale chosen with the language switcher
const CookieName = "site_lang"

// DefaultLocale is used when neither the cookie nor Accept-Language match
const DefaultLocale = "en"

// SupportedLocales lists the locales with translations, in switcher order
var SupportedLocales = []string{"en", "bs"}

//go:embed translations.json
var embeddedCatalog []byte

// Catalog maps a message key to its text per locale
type Catalog struct {
	messages map[string]map[string]string
}

// Load parses a catalog of the form {"key": {"en": "...", "bs": "..."}}
func Load(data []byte) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	return &Catalog{messages: messages}, nil
}

// Embedded returns the catalog compiled into the binary
func Embedded() (*Catalog, error) {
	return Load(embeddedCatalog)
}

// MustEmbedded is like Embedded but panics on a malformed catalog
func MustEmbedded() *Catalog {
	c, err := Embedded()
	if err != nil {
		panic(err)
	}
	return c
}

// Supported reports whether locale has translations
func Supported(locale string) bool {
	return slices.Contains(SupportedLocales, locale)
}

// PickLocale chooses the request locale. A supported cookie value wins; then
// Accept-Language entries are tried by descending quality, compared on their
// base language only ("en-US" counts as "en").
func PickLocale(cookie, acceptLanguage string) string {
	if Supported(cookie) {
		return cookie
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return DefaultLocale
	}
	for _, tag := range tags {
		base, _ := tag.Base()
		if Supported(base.String()) {
			return base.String()
		}
	}
	return DefaultLocale
}

// Translator returns a Translator bound to locale
func (c *Catalog) Translator(locale string) *Translator {
	if !Supported(locale) {
		locale = DefaultLocale
	}
	return &Translator{catalog: c, locale: locale}
}

// Translator resolves keys for one locale
type Translator struct {
	catalog *Catalog
	locale  string
}

// Locale returns the bound locale
func (t *Translator) Locale() string {
	return t.locale
}

// T returns the text for key in the bound locale, falling back to the default
// locale and then to the key itself. args are name/value pairs substituted
// into {name} placeholders.
func (t *Translator) T(key string, args ...any) string {
	text := key
	if t != nil && t.catalog != nil {
		if entry, ok := t.catalog.messages[key]; ok {
			if s := entry[t.locale]; s != "" {
				text = s
			} else if s := entry[DefaultLocale]; s != "" {
				text = s
			}
		}
	}
	if len(args) < 2 {
		return text
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(args[i])+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
