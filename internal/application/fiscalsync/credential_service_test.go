package fiscalsync

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCredentialService_Context(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	active := &fiscalsync.TenantSettings{TenantID: tenantID, APIKey: "tenant-key", Active: true, TestMode: true}
	link := &fiscalsync.UserLink{TenantID: tenantID, UserID: userID, RemoteUserID: "12"}

	tests := []struct {
		name      string
		asSystem  bool
		setup     func(repo *MockCredentialRepository)
		wantKey   string
		wantCfg   bool
		wantOther error
	}{
		{
			name: "user key",
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).Return(active, nil)
				repo.On("FindUserLink", mock.Anything, tenantID, userID).Return(link, nil)
				repo.On("FindUserAPIKey", mock.Anything, tenantID, "12").Return("user-key", nil)
			},
			wantKey: "user-key",
		},
		{
			name:     "system key without user link",
			asSystem: true,
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).Return(active, nil)
				repo.On("FindUserLink", mock.Anything, tenantID, userID).Return(nil, shared.ErrNotFound)
			},
			wantKey: "tenant-key",
		},
		{
			name: "user without link",
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).Return(active, nil)
				repo.On("FindUserLink", mock.Anything, tenantID, userID).Return(nil, shared.ErrNotFound)
			},
			wantCfg: true,
		},
		{
			name: "linked user without key",
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).Return(active, nil)
				repo.On("FindUserLink", mock.Anything, tenantID, userID).Return(link, nil)
				repo.On("FindUserAPIKey", mock.Anything, tenantID, "12").Return("", nil)
			},
			wantCfg: true,
		},
		{
			name:     "tenant not configured",
			asSystem: true,
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).Return(nil, shared.ErrNotFound)
			},
			wantCfg: true,
		},
		{
			name:     "tenant disabled",
			asSystem: true,
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).
					Return(&fiscalsync.TenantSettings{TenantID: tenantID, APIKey: "tenant-key"}, nil)
			},
			wantCfg: true,
		},
		{
			name:     "storage failure",
			asSystem: true,
			setup: func(repo *MockCredentialRepository) {
				repo.On("GetSettings", mock.Anything, tenantID).Return(nil, errors.New("connection refused"))
			},
			wantOther: errors.New("connection refused"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCredentialRepository)
			tt.setup(repo)
			svc := NewCredentialService(repo)

			sc, err := svc.Context(context.Background(), tenantID, userID, tt.asSystem)

			switch {
			case tt.wantCfg:
				var cfgErr *fiscalsync.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.ErrorIs(t, err, fiscalsync.ErrMissingCredential)
			case tt.wantOther != nil:
				require.Error(t, err)
				assert.Equal(t, tt.wantOther.Error(), err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, sc.Credential())
				assert.True(t, sc.TestMode)
				assert.Equal(t, "tenant-key", sc.TenantKey)
			}
		})
	}
}

func TestCredentialService_UserContextCarriesTenantKey(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	repo := new(MockCredentialRepository)
	repo.On("GetSettings", mock.Anything, tenantID).Return(&fiscalsync.TenantSettings{TenantID: tenantID, APIKey: "tenant-key", Active: true}, nil)
	repo.On("FindUserLink", mock.Anything, tenantID, userID).Return(&fiscalsync.UserLink{RemoteUserID: "12"}, nil)
	repo.On("FindUserAPIKey", mock.Anything, tenantID, "12").Return("user-key", nil)

	sc, err := NewCredentialService(repo).Context(context.Background(), tenantID, userID, false)
	require.NoError(t, err)

	assert.Equal(t, "12", sc.RemoteUserID)
	assert.Equal(t, "tenant-key", sc.System().Credential())
	assert.Equal(t, fiscalsync.ModeNormal, sc.Mode())
}
