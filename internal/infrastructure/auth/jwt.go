package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/clubhouse/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrMissingSubject   = errors.New("missing sub in claims")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims is the access token payload. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
	TenantSchema string `json:"tenant_schema,omitempty"`
	IsActive     bool   `json:"is_active"`
	Email        string `json:"email,omitempty"`
}

// Username returns the subject claim
func (c *Claims) Username() string {
	return c.Subject
}

// RemainingTTL returns the time until the token expires, never negative
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if remaining := time.Until(c.ExpiresAt.Time); remaining > 0 {
		return remaining
	}
	return 0
}

// IssueInput describes the principal a token is minted for
type IssueInput struct {
	Username     string
	TenantSchema string
	Email        string
	IsActive     bool
}

// Token is a signed access token and its expiry
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// JWTService signs and verifies access tokens with a shared HMAC secret
type JWTService struct {
	secret     []byte
	method     jwt.SigningMethod
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service. The algorithm must be one of
// HS256, HS384 or HS512.
func NewJWTService(cfg config.JWTConfig) (*JWTService, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.Algorithm)
	}
	return &JWTService{
		secret:     []byte(cfg.Secret),
		method:     method,
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}, nil
}

// Issue signs an access token for the given principal
func (s *JWTService) Issue(in IssueInput) (*Token, error) {
	if in.Username == "" {
		return nil, ErrMissingSubject
	}
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   in.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantSchema: in.TenantSchema,
		IsActive:     in.IsActive,
		Email:        in.Email,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// Validate verifies signature, algorithm and expiry and returns the claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// Expiration returns the configured token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}
