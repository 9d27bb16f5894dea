// Package auth verifies the bearer tokens of API callers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erp/fiscalsync/internal/infrastructure/config"
)

var (
	ErrInvalidToken    = errors.New("auth: invalid token")
	ErrExpiredToken    = errors.New("auth: token has expired")
	ErrMissingTenantID = errors.New("auth: missing tenant_id in claims")
	ErrDisabled        = errors.New("auth: token verification is disabled")
)

// Claims identifies the caller on whose behalf the provider is called.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id,omitempty"`
	AsSystem bool   `json:"as_system,omitempty"`
}

// TenantUUID parses the tenant claim
func (c *Claims) TenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// UserUUID parses the user claim, uuid.Nil when absent.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	if c.UserID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(c.UserID)
}

// TokenVerifier checks HMAC signed tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier returns a verifier for cfg. It returns nil when no
// secret is configured.
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	if cfg.Secret == "" {
		return nil
	}
	return &TokenVerifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Verify parses tokenString and checks its signature, expiry, issuer and
// tenant claim.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if v == nil {
		return nil, ErrDisabled
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if _, err := claims.TenantUUID(); err != nil {
		return nil, fmt.Errorf("%w: tenant_id is not a uuid", ErrInvalidToken)
	}
	if _, err := claims.UserUUID(); err != nil {
		return nil, fmt.Errorf("%w: user_id is not a uuid", ErrInvalidToken)
	}
	return claims, nil
}

// Issue signs a token for tenantID and userID valid for ttl. Service
// accounts get asSystem.
func (v *TokenVerifier) Issue(tenantID, userID uuid.UUID, asSystem bool, ttl time.Duration) (string, error) {
	if v == nil {
		return "", ErrDisabled
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: tenantID.String(),
		AsSystem: asSystem,
	}
	if userID != uuid.Nil {
		claims.UserID = userID.String()
		claims.Subject = claims.UserID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
