package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/fiscalsync/internal/infrastructure/config"
)

func newVerifier() *TokenVerifier {
	return NewTokenVerifier(config.JWTConfig{Secret: "test-secret-key-at-least-32-bytes!", Issuer: "fiscalsync"})
}

func TestNewTokenVerifier_NoSecret(t *testing.T) {
	v := NewTokenVerifier(config.JWTConfig{})
	assert.Nil(t, v)

	_, err := v.Verify("anything")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = v.Issue(uuid.New(), uuid.Nil, true, time.Minute)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTokenVerifier_RoundTrip(t *testing.T) {
	v := newVerifier()
	tenantID, userID := uuid.New(), uuid.New()

	token, err := v.Issue(tenantID, userID, false, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	got, err := claims.TenantUUID()
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)
	gotUser, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.False(t, claims.AsSystem)
}

func TestTokenVerifier_SystemToken(t *testing.T) {
	v := newVerifier()
	token, err := v.Issue(uuid.New(), uuid.Nil, true, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.AsSystem)
	user, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, user)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := newVerifier()
	sign := func(claims *Claims, secret string, method jwt.SigningMethod) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "fiscalsync",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TenantID: uuid.NewString(),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := valid()
	noExpiry.ExpiresAt = nil
	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"
	noTenant := valid()
	noTenant.TenantID = ""
	badTenant := valid()
	badTenant.TenantID = "tenant-1"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", sign(valid(), "another-secret", jwt.SigningMethodHS256), ErrInvalidToken},
		{"wrong algorithm", sign(valid(), "test-secret-key-at-least-32-bytes!", jwt.SigningMethodHS512), ErrInvalidToken},
		{"expired", sign(expired, "test-secret-key-at-least-32-bytes!", jwt.SigningMethodHS256), ErrExpiredToken},
		{"no expiry", sign(noExpiry, "test-secret-key-at-least-32-bytes!", jwt.SigningMethodHS256), ErrInvalidToken},
		{"other issuer", sign(otherIssuer, "test-secret-key-at-least-32-bytes!", jwt.SigningMethodHS256), ErrInvalidToken},
		{"missing tenant", sign(noTenant, "test-secret-key-at-least-32-bytes!", jwt.SigningMethodHS256), ErrMissingTenantID},
		{"tenant not a uuid", sign(badTenant, "test-secret-key-at-least-32-bytes!", jwt.SigningMethodHS256), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
