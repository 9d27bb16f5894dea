package fiscalsync

import "github.com/google/uuid"

// Request modes understood by the provider.
const (
	ModeNormal = "normal"
	ModeTests  = "tests"
)

// SyncContext carries the identity an operation runs under. It is passed
// explicitly to every gateway call.
type SyncContext struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	RemoteUserID string
	TenantKey    string
	UserKey      string
	AsSystem     bool
	TestMode     bool
}

// Credential returns the API key of the acting identity.
func (sc SyncContext) Credential() string {
	if sc.AsSystem {
		return sc.TenantKey
	}
	return sc.UserKey
}

// System returns a copy acting as the privileged identity.
func (sc SyncContext) System() SyncContext {
	sc.AsSystem = true
	return sc
}

// Mode returns the provider document mode for the tenant.
func (sc SyncContext) Mode() string {
	if sc.TestMode {
		return ModeTests
	}
	return ModeNormal
}
