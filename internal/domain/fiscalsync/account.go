package fiscalsync

import (
	"context"

	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentMethod is a provider payment method.
type PaymentMethod struct {
	shared.TenantEntity
	SyncState
	Title       string
	GivesChange bool
	MethodType  string
	Active      bool
}

// Register is a provider cash register. Documents are always issued on a
// register.
type Register struct {
	shared.TenantEntity
	SyncState
	Title  string
	Active bool
}

// RemoteUser is a user account at the provider. Its API key is used when
// a local user acts under their own identity.
type RemoteUser struct {
	shared.TenantEntity
	SyncState
	Title  string
	Email  string
	APIKey string
}

// Account is the provider account the tenant key belongs to.
type Account struct {
	shared.TenantEntity
	SyncState
	Title string
	URL   string
}

// TenantSettings holds the provider configuration of a tenant.
type TenantSettings struct {
	TenantID uuid.UUID
	APIKey   string
	Active   bool
	TestMode bool
}

// UserLink associates a local user with a provider user.
type UserLink struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	RemoteUserID string
}

// CredentialRepository resolves the keys used to talk to the provider.
type CredentialRepository interface {
	// GetSettings returns shared.ErrNotFound when the tenant is not configured.
	GetSettings(ctx context.Context, tenantID uuid.UUID) (*TenantSettings, error)
	// FindUserLink returns shared.ErrNotFound when the user has no link.
	FindUserLink(ctx context.Context, tenantID, userID uuid.UUID) (*UserLink, error)
	// FindUserAPIKey returns the key stored on the provider user, "" when none.
	FindUserAPIKey(ctx context.Context, tenantID uuid.UUID, remoteUserID string) (string, error)
}

// CredentialStore is a CredentialRepository that also accepts writes.
type CredentialStore interface {
	CredentialRepository
	SaveSettings(ctx context.Context, settings *TenantSettings) error
	SaveUserLink(ctx context.Context, link *UserLink) error
}
