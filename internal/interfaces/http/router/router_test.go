package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestRouter_Setup(t *testing.T) {
	t.Run("mounts groups at the root by default", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)
		r.Register(NewDomainGroup("members", "/members").GET("", reply("list")))
		r.Setup()

		w := serve(engine, http.MethodGet, "/members")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "list", w.Body.String())
	})

	t.Run("prefix", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine, WithPrefix("/api"))
		r.Register(NewDomainGroup("members", "/members").GET("/:id", reply("one")))
		r.Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/members/7").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/members/7").Code)
	})
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("members", "/members")
	g.GET("/:id", reply("get")).
		POST("", reply("post")).
		PUT("/:id", reply("put")).
		PATCH("/:id", reply("patch")).
		DELETE("/:id", reply("delete"))
	g.RegisterRoutes(engine.Group("/"))

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/members/1", "get"},
		{http.MethodPost, "/members", "post"},
		{http.MethodPut, "/members/1", "put"},
		{http.MethodPatch, "/members/1", "patch"},
		{http.MethodDelete, "/members/1", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestDomainGroup_SubgroupsAndMiddleware(t *testing.T) {
	engine := gin.New()
	settings := NewDomainGroup("settings", "/settings")
	settings.Use(func(c *gin.Context) {
		c.Header("X-Group", "settings")
		c.Next()
	})
	settings.Group("levels", "/levels").POST("/:id/delete", reply("deleted"))
	settings.RegisterRoutes(engine.Group("/"))

	w := serve(engine, http.MethodPost, "/settings/levels/3/delete")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "settings", w.Header().Get("X-Group"))
	assert.Equal(t, "settings", settings.Name())
	assert.Equal(t, "/settings", settings.Prefix())
}

func TestRouter_PublicPaths(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	auth := NewDomainGroup("auth", "")
	auth.GET("/login", reply("")).Public()
	auth.POST("/login", reply("")).Public()
	auth.GET("/logout", reply(""))

	api := NewDomainGroup("api", "/api")
	api.POST("/token", reply("")).Public()
	api.GET("/members/:id", reply("")).Public()
	api.Group("health", "/health").GET("/ready", reply("")).Public()

	r.Register(auth).Register(api)
	public := r.PublicPaths("/", "/static/")

	assert.True(t, public.Match("/"))
	assert.True(t, public.Match("/login"))
	assert.True(t, public.Match("/api/token"))
	assert.True(t, public.Match("/api/health/ready"))
	assert.True(t, public.Match("/static/css/app.css"))
	assert.False(t, public.Match("/logout"))
	assert.False(t, public.Match("/api/members/7"), "parameterized routes are never public")
	assert.False(t, public.Match("/members"))
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/", joinPaths("/", ""))
	assert.Equal(t, "/members", joinPaths("/", "/members"))
	assert.Equal(t, "/members", joinPaths("/members", ""))
	assert.Equal(t, "/api/token", joinPaths("/api", "token"))
	assert.Equal(t, "/static/", joinPaths("/", "/static/"))
}
