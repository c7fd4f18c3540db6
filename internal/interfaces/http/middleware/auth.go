package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clubhouse/backend/internal/infrastructure/auth"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys and headers
const (
	ClaimsKey     = "auth_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	LoginPath     = "/login"
)

// Authenticator validates an access token. *identity.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// PublicPaths is the immutable set of paths reachable without signing in.
// An entry ending in "/" (other than "/" itself) matches as a prefix.
type PublicPaths struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewPublicPaths builds the set from paths
func NewPublicPaths(paths ...string) PublicPaths {
	p := PublicPaths{exact: make(map[string]struct{}, len(paths))}
	for _, path := range paths {
		if path != "/" && strings.HasSuffix(path, "/") {
			p.prefixes = append(p.prefixes, path)
			continue
		}
		p.exact[path] = struct{}{}
	}
	return p
}

// Match reports whether path is public
func (p PublicPaths) Match(path string) bool {
	if _, ok := p.exact[path]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	Authenticator Authenticator
	Public        PublicPaths
	CookieName    string
	Logger        *zap.Logger
}

// Auth authenticates requests from the access token cookie or a Bearer
// header. Public paths pass through, picking up the claims when a valid token
// happens to be present. Elsewhere a missing or invalid token ends the request:
// JSON clients get 401, browsers are redirected to the login page.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		public := cfg.Public.Match(c.Request.URL.Path)
		token := extractToken(c, cfg.CookieName)

		if token == "" {
			if public {
				c.Next()
				return
			}
			denyUnauthenticated(c)
			return
		}

		claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if public {
				c.Next()
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.Debug("Authentication failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			denyUnauthenticated(c)
			return
		}

		c.Set(ClaimsKey, claims)
		ctx := c.Request.Context()
		ctx, _ = logger.WithUsername(ctx, logger.FromContext(ctx), claims.Username())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

func denyUnauthenticated(c *gin.Context) {
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}

// WantsJSON reports whether the client asked for JSON rather than a page:
// Accept names application/json and not text/html.
func WantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// GetClaims returns the verified token claims, or nil for anonymous requests
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
