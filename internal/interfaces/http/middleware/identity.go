package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/erp/fiscalsync/internal/infrastructure/auth"
	"github.com/erp/fiscalsync/internal/infrastructure/logger"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
)

// Identity headers accepted when no token verifier is configured.
const (
	TenantIDHeader = "X-Tenant-ID"
	UserIDHeader   = "X-User-ID"
	AsSystemHeader = "X-Sync-As-System"
)

const identityKey = "fiscal_identity"

// Identity is the caller an API request acts for.
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	AsSystem bool
}

// GetIdentity returns the identity stored by Authenticate.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// SetIdentity stores id on the request.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// Authenticate resolves the calling identity. With a verifier every request
// must carry a bearer token; without one the identity headers are trusted,
// which is meant for deployments behind an authenticating gateway.
func Authenticate(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			id   Identity
			code string
			err  error
		)
		if verifier != nil {
			id, code, err = fromToken(verifier, c.GetHeader("Authorization"))
		} else {
			id, code, err = fromHeaders(c)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(code, err.Error(), GetRequestID(c)))
			return
		}

		SetIdentity(c, id)
		userID := ""
		if id.UserID != uuid.Nil {
			userID = id.UserID.String()
		}
		ctx := logger.WithIdentity(c.Request.Context(), id.TenantID.String(), userID, id.AsSystem)
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.String("tenant_id", id.TenantID.String()),
				attribute.String("user_id", userID),
				attribute.Bool("as_system", id.AsSystem),
			)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func fromToken(verifier *auth.TokenVerifier, header string) (Identity, string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return Identity{}, dto.ErrCodeUnauthorized, errors.New("missing bearer token")
	}
	claims, err := verifier.Verify(strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return Identity{}, dto.ErrCodeTokenExpired, err
		}
		return Identity{}, dto.ErrCodeTokenInvalid, err
	}
	tenantID, err := claims.TenantUUID()
	if err != nil {
		return Identity{}, dto.ErrCodeTokenInvalid, err
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return Identity{}, dto.ErrCodeTokenInvalid, err
	}
	return Identity{TenantID: tenantID, UserID: userID, AsSystem: claims.AsSystem}, "", nil
}

func fromHeaders(c *gin.Context) (Identity, string, error) {
	tenantID, err := uuid.Parse(c.GetHeader(TenantIDHeader))
	if err != nil || tenantID == uuid.Nil {
		return Identity{}, dto.ErrCodeUnauthorized, errors.New("a valid " + TenantIDHeader + " header is required")
	}
	id := Identity{TenantID: tenantID}
	if raw := c.GetHeader(UserIDHeader); raw != "" {
		if id.UserID, err = uuid.Parse(raw); err != nil {
			return Identity{}, dto.ErrCodeUnauthorized, errors.New("invalid " + UserIDHeader + " header")
		}
	}
	if raw := c.GetHeader(AsSystemHeader); raw != "" {
		if id.AsSystem, err = strconv.ParseBool(raw); err != nil {
			return Identity{}, dto.ErrCodeUnauthorized, errors.New("invalid " + AsSystemHeader + " header")
		}
	}
	return id, "", nil
}
