// Package view renders the server-side HTML pages.
//
// Every page is parsed together with the shared layout and the partials
// (files whose name starts with an underscore). Templates and static assets
// are embedded; a directory on disk can replace either for development.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed static
var embeddedStatic embed.FS

const (
	layoutFile  = "layout.html"
	layoutBlock = "layout"
)

// Page names
const (
	PageLanding     = "landing.html"
	PageHome        = "index.html"
	PageLogin       = "login.html"
	PageMembers     = "members.html"
	PageMemberForm  = "member_form.html"
	PageSettings    = "settings.html"
	PagePlaceholder = "placeholder.html"
)

// BlockMembersList is the member table, rendered alone for HTMX requests
const BlockMembersList = "members_list"

// Data is what every page receives. Content carries the page specific values.
type Data struct {
	Locale   string
	Username string
	Tenant   string
	Path     string
	Error    string
	Message  string
	Content  any
}

// Renderer executes page templates
type Renderer struct {
	pages map[string]*template.Template
}

// Option configures the renderer
type Option func(*options)

type options struct {
	templates fs.FS
}

// WithTemplatesDir loads templates from dir instead of the embedded copies
func WithTemplatesDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.templates = os.DirFS(dir)
		}
	}
}

// New parses every page
func New(opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	o := &options{templates: sub}
	for _, opt := range opts {
		opt(o)
	}

	files, err := fs.Glob(o.templates, "*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var partials, pages []string
	for _, f := range files {
		switch {
		case f == layoutFile:
		case strings.HasPrefix(f, "_"):
			partials = append(partials, f)
		default:
			pages = append(pages, f)
		}
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		patterns := append([]string{layoutFile}, partials...)
		patterns = append(patterns, page)
		tmpl, err := template.New(page).Funcs(baseFuncs()).ParseFS(o.templates, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes a full page
func (r *Renderer) Render(w io.Writer, page string, tr *i18n.Translator, data Data) error {
	return r.execute(w, page, layoutBlock, tr, data)
}

// RenderBlock writes a single named block of a page
func (r *Renderer) RenderBlock(w io.Writer, page, block string, tr *i18n.Translator, data Data) error {
	return r.execute(w, page, block, tr, data)
}

func (r *Renderer) execute(w io.Writer, page, block string, tr *i18n.Translator, data Data) error {
	base, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	tmpl, err := base.Clone()
	if err != nil {
		return err
	}
	locale := i18n.DefaultLocale
	if tr != nil {
		locale = tr.Locale()
	}
	data.Locale = locale
	tmpl.Funcs(template.FuncMap{
		"t":     tr.T,
		"title": titleFunc(language.Make(locale)),
	})

	// buffer so a failing template never sends a half page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
		return fmt.Errorf("render %s/%s: %w", page, block, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Static returns the static asset file system, from dir when given
func Static(dir string) http.FileSystem {
	if dir != "" {
		return http.Dir(dir)
	}
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// StaticPath joins a path under the /static mount
func StaticPath(p string) string {
	return path.Join("/static", p)
}
