package fiscalsync

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfigureInput is the tenant configuration to apply. An empty APIKey keeps
// the stored key.
type ConfigureInput struct {
	APIKey   string
	Active   bool
	TestMode bool
}

// SettingsService manages the provider settings of tenants and the links
// between local and provider users.
type SettingsService struct {
	store  fiscalsync.CredentialStore
	logger *zap.Logger
}

// NewSettingsService creates a SettingsService
func NewSettingsService(store fiscalsync.CredentialStore, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{store: store, logger: logger}
}

// Settings returns the settings of a tenant.
func (s *SettingsService) Settings(ctx context.Context, tenantID uuid.UUID) (*fiscalsync.TenantSettings, error) {
	return s.store.GetSettings(ctx, tenantID)
}

// Configure creates or updates the settings of a tenant. Activating a tenant
// requires a key, either given or already stored.
func (s *SettingsService) Configure(ctx context.Context, tenantID uuid.UUID, in ConfigureInput) (*fiscalsync.TenantSettings, error) {
	if tenantID == uuid.Nil {
		return nil, fiscalsync.NewValidationError("tenant id is required", nil)
	}

	settings := &fiscalsync.TenantSettings{TenantID: tenantID}
	existing, err := s.store.GetSettings(ctx, tenantID)
	switch {
	case err == nil:
		settings.APIKey = existing.APIKey
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if key := strings.TrimSpace(in.APIKey); key != "" {
		settings.APIKey = key
	}
	settings.Active = in.Active
	settings.TestMode = in.TestMode

	if settings.Active && settings.APIKey == "" {
		return nil, fiscalsync.NewValidationError("an api key is required to activate synchronization", nil)
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info("Tenant settings saved",
		zap.String("tenant_id", tenantID.String()),
		zap.Bool("active", settings.Active),
		zap.Bool("test_mode", settings.TestMode),
	)
	return settings, nil
}

// LinkUser binds a local user to a provider user so that the user's own key
// is used for their operations.
func (s *SettingsService) LinkUser(ctx context.Context, tenantID, userID uuid.UUID, remoteUserID string) (*fiscalsync.UserLink, error) {
	remoteUserID = strings.TrimSpace(remoteUserID)
	switch {
	case tenantID == uuid.Nil:
		return nil, fiscalsync.NewValidationError("tenant id is required", nil)
	case userID == uuid.Nil:
		return nil, fiscalsync.NewValidationError("user id is required", nil)
	case remoteUserID == "":
		return nil, fiscalsync.NewValidationError("remote user id is required", nil)
	}

	link := &fiscalsync.UserLink{TenantID: tenantID, UserID: userID, RemoteUserID: remoteUserID}
	if err := s.store.SaveUserLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}
