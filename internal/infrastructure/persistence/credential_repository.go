package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCredentialRepository implements fiscalsync.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

var _ fiscalsync.CredentialStore = (*GormCredentialRepository)(nil)

// GetSettings returns the provider settings of a tenant
func (r *GormCredentialRepository) GetSettings(ctx context.Context, tenantID uuid.UUID) (*fiscalsync.TenantSettings, error) {
	var model models.TenantSettingsModel
	if err := conn(ctx, r.db).Where("tenant_id = ?", tenantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUserLink returns the provider user linked to a local user
func (r *GormCredentialRepository) FindUserLink(ctx context.Context, tenantID, userID uuid.UUID) (*fiscalsync.UserLink, error) {
	var model models.UserLinkModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUserAPIKey returns the key stored on an imported provider user
func (r *GormCredentialRepository) FindUserAPIKey(ctx context.Context, tenantID uuid.UUID, remoteUserID string) (string, error) {
	var keys []string
	err := conn(ctx, r.db).Model(&models.RemoteUserModel{}).
		Where("tenant_id = ? AND remote_id = ?", tenantID, remoteUserID).
		Limit(1).
		Pluck("api_key", &keys).Error
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[0], nil
}

// SaveSettings creates or replaces the provider settings of a tenant
func (r *GormCredentialRepository) SaveSettings(ctx context.Context, settings *fiscalsync.TenantSettings) error {
	model := models.TenantSettingsModel{
		TenantID: settings.TenantID,
		APIKey:   settings.APIKey,
		Active:   settings.Active,
		TestMode: settings.TestMode,
	}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "active", "test_mode", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to save tenant settings: %w", err)
	}
	return nil
}

// SaveUserLink links a local user to a provider user
func (r *GormCredentialRepository) SaveUserLink(ctx context.Context, link *fiscalsync.UserLink) error {
	model := models.UserLinkModel{
		TenantID:     link.TenantID,
		UserID:       link.UserID,
		RemoteUserID: link.RemoteUserID,
	}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"remote_user_id", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to save user link: %w", err)
	}
	return nil
}
