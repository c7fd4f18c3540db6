package testutil

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionEngine() *gin.Engine {
	engine := gin.New()
	engine.POST("/login", func(c *gin.Context) {
		c.SetCookie("session", c.PostForm("username"), 60, "/", "", false, true)
		c.Status(http.StatusNoContent)
	})
	engine.GET("/whoami", func(c *gin.Context) {
		session, _ := c.Cookie("session")
		c.JSON(http.StatusOK, gin.H{
			"session":       session,
			"authorization": c.GetHeader("Authorization"),
			"tenant":        c.GetHeader("X-Tenant"),
		})
	})
	engine.POST("/logout", func(c *gin.Context) {
		c.SetCookie("session", "", -1, "/", "", false, true)
		c.Status(http.StatusNoContent)
	})
	engine.PUT("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	return engine
}

func TestClient_KeepsCookies(t *testing.T) {
	client := NewClient(sessionEngine())

	w := client.PostForm(t, "/login", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "alice", client.Cookie("session"))

	got := DecodeJSON[map[string]string](t, client.Get(t, "/whoami"))
	assert.Equal(t, "alice", got["session"])

	client.Do(t, http.MethodPost, "/logout", nil, "")
	assert.Empty(t, client.Cookie("session"))
	got = DecodeJSON[map[string]string](t, client.Get(t, "/whoami"))
	assert.Empty(t, got["session"])
}

func TestClient_WithBearer(t *testing.T) {
	client := NewClient(sessionEngine())
	client.SetHeader("X-Tenant", "cluba")
	client.PostForm(t, "/login", url.Values{"username": {"alice"}})

	api := client.WithBearer("tok")
	got := DecodeJSON[map[string]string](t, api.Get(t, "/whoami"))
	assert.Equal(t, "Bearer tok", got["authorization"])
	assert.Equal(t, "cluba", got["tenant"])
	assert.Empty(t, got["session"], "bearer clients start without cookies")
}

func TestClient_SendJSON(t *testing.T) {
	client := NewClient(sessionEngine())
	w := client.SendJSON(t, http.MethodPut, "/echo", map[string]any{"name": "Ana"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", DecodeJSON[map[string]any](t, w)["name"])
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
