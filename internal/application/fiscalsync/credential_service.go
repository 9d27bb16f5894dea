package fiscalsync

import (
	"context"
	"errors"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
)

// CredentialService builds the SyncContext an operation runs under.
type CredentialService struct {
	repo fiscalsync.CredentialRepository
}

// NewCredentialService creates a CredentialService
func NewCredentialService(repo fiscalsync.CredentialRepository) *CredentialService {
	return &CredentialService{repo: repo}
}

// Context resolves the keys of tenantID and userID. Only the key of the
// acting identity is required; the other one is filled when available so
// that collection reads can switch to the privileged identity.
func (s *CredentialService) Context(ctx context.Context, tenantID, userID uuid.UUID, asSystem bool) (fiscalsync.SyncContext, error) {
	sc := fiscalsync.SyncContext{TenantID: tenantID, UserID: userID, AsSystem: asSystem}

	settings, err := s.repo.GetSettings(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return sc, fiscalsync.NewConfigurationError("fiscalsync: tenant %s is not configured", tenantID)
		}
		return sc, err
	}
	if !settings.Active {
		return sc, fiscalsync.NewConfigurationError("fiscalsync: synchronization is disabled for tenant %s", tenantID)
	}
	sc.TenantKey = settings.APIKey
	sc.TestMode = settings.TestMode

	if userID != uuid.Nil {
		link, err := s.repo.FindUserLink(ctx, tenantID, userID)
		switch {
		case err == nil:
			sc.RemoteUserID = link.RemoteUserID
			key, err := s.repo.FindUserAPIKey(ctx, tenantID, link.RemoteUserID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return sc, err
			}
			sc.UserKey = key
		case !errors.Is(err, shared.ErrNotFound):
			return sc, err
		}
	}

	if sc.Credential() == "" {
		if asSystem {
			return sc, fiscalsync.NewConfigurationError("fiscalsync: api key not found for tenant %s", tenantID)
		}
		return sc, fiscalsync.NewConfigurationError("fiscalsync: api key not found for user %s", userID)
	}
	return sc, nil
}
