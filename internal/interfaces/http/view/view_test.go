package view

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestRenderer_ParsesEveryPage(t *testing.T) {
	r := newTestRenderer(t)
	for _, page := range []string{PageLanding, PageHome, PageLogin, PageMembers, PageMemberForm, PageSettings, PagePlaceholder} {
		assert.Contains(t, r.pages, page)
	}
	assert.NotContains(t, r.pages, layoutFile)
	assert.NotContains(t, r.pages, "_members_list.html")
}

func TestRenderer_TranslatesPerLocale(t *testing.T) {
	r := newTestRenderer(t)
	catalog := i18n.MustEmbedded()

	var en, bs bytes.Buffer
	require.NoError(t, r.Render(&en, PageHome, catalog.Translator("en"), Data{Username: "ana"}))
	require.NoError(t, r.Render(&bs, PageHome, catalog.Translator("bs"), Data{Username: "ana"}))

	assert.Contains(t, en.String(), `<html lang="en">`)
	assert.Contains(t, en.String(), "Welcome, ana")
	assert.Contains(t, bs.String(), `<html lang="bs">`)
	assert.Contains(t, bs.String(), "Dobrodošli, ana")
}

func TestRenderer_EscapesAlerts(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	err := r.Render(&buf, PageLogin, i18n.MustEmbedded().Translator("en"), Data{
		Error:   "<script>x</script>",
		Content: map[string]any{"Username": "ana"},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>x</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
	assert.Contains(t, buf.String(), `value="ana"`)
}

func TestRenderer_UnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	err := r.Render(io.Discard, "missing.html", nil, Data{})
	assert.Error(t, err)
}

func TestRenderer_FailedRenderWritesNothing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout.html"), []byte(`{{define "layout"}}<p>{{template "content" .}}</p>{{end}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.html"), []byte(`{{define "content"}}{{.Content.Missing.Field}}{{end}}`), 0o644))

	r, err := New(WithTemplatesDir(dir))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "broken.html", nil, Data{Content: 42})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRenderer_RenderBlock(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	err := r.RenderBlock(&buf, PageMembers, BlockMembersList, i18n.MustEmbedded().Translator("en"), Data{
		Content: map[string]any{
			"Result": map[string]any{
				"Items":    []any{},
				"Total":    0,
				"Page":     1,
				"LastPage": 1,
			},
			"LevelNames":    map[int64]string{},
			"LocationNames": map[int64]string{},
			"PrevURL":       "",
			"NextURL":       "",
		},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `id="members-list"`)
	assert.Contains(t, out, "Page 1 of 1")
	assert.NotContains(t, out, "<html")
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{decimal.RequireFromString("1234.5"), "1,234.50"},
		{decimal.RequireFromString("-1234567.891"), "-1,234,567.89"},
		{int64(40), "40.00"},
		{"25.5", "25.50"},
		{"n/a", "n/a"},
		{(*decimal.Decimal)(nil), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in))
	}
}

func TestTemplateHelpers(t *testing.T) {
	assert.Equal(t, "Hello...", truncate("Hello, world", 8))
	assert.Equal(t, "Hi", truncate("Hi", 8))
	assert.Equal(t, []int{1, 2, 3}, seq(3))
	assert.Empty(t, seq(0))
	assert.Equal(t, int64(0), deref(nil))
	id := int64(7)
	assert.Equal(t, int64(7), deref(&id))
	assert.Equal(t, map[string]any{"a": 1}, dict("a", 1, 2, "skipped"))
	assert.Equal(t, "Main Hall", titleFunc(language.English)("main hall"))
}

func TestStatic_ServesEmbeddedStylesheet(t *testing.T) {
	f, err := Static("").Open("css/app.css")
	require.NoError(t, err)
	defer f.Close()
	stat, err := f.Stat()
	require.NoError(t, err)
	assert.Positive(t, stat.Size())

	_, err = Static("").Open("missing.css")
	assert.ErrorIs(t, err, os.ErrNotExist)

	var _ http.FileSystem = Static(t.TempDir())
}
