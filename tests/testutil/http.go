// Package testutil drives the assembled HTTP engine in tests the way a
// browser or API client would.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client sends requests straight to a handler and keeps the cookies it is
// given, like a browser session.
type Client struct {
	handler http.Handler
	cookies map[string]*http.Cookie
	headers http.Header
}

// NewClient creates a client with an empty cookie jar
func NewClient(handler http.Handler) *Client {
	return &Client{
		handler: handler,
		cookies: make(map[string]*http.Cookie),
		headers: make(http.Header),
	}
}

// WithBearer returns a cookie-less client that authenticates with token
func (c *Client) WithBearer(token string) *Client {
	api := NewClient(c.handler)
	api.headers = c.headers.Clone()
	api.headers.Set("Authorization", "Bearer "+token)
	return api
}

// SetHeader adds a header to every following request
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Cookie returns the stored cookie value, or "" when none is held
func (c *Client) Cookie(name string) string {
	if ck, ok := c.cookies[name]; ok {
		return ck.Value
	}
	return ""
}

// Do sends a request and records the cookies set or cleared by the response
func (c *Client) Do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

// Get sends a GET request
func (c *Client) Get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil, "")
}

// PostForm submits an urlencoded form
func (c *Client) PostForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return c.Do(t, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// SendJSON sends v as a JSON body
func (c *Client) SendJSON(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	return c.Do(t, method, path, ToJSONReader(t, v), "application/json")
}

// DecodeJSON parses the response body into T
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "Failed to parse JSON response: %s", w.Body.String())
	return result
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
