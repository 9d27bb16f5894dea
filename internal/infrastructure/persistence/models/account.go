package models

import (
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
)

// PaymentMethodModel is a provider payment method.
type PaymentMethodModel struct {
	SyncModel
	Title       string `gorm:"type:varchar(200);not null"`
	GivesChange bool   `gorm:"not null;default:false"`
	MethodType  string `gorm:"type:varchar(20)"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

func (m *PaymentMethodModel) ToDomain() *fiscalsync.PaymentMethod {
	return &fiscalsync.PaymentMethod{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		GivesChange:  m.GivesChange,
		MethodType:   m.MethodType,
		Active:       m.Active,
	}
}

// RegisterModel is a provider cash register.
type RegisterModel struct {
	SyncModel
	Title  string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RegisterModel) TableName() string {
	return "registers"
}

func (m *RegisterModel) ToDomain() *fiscalsync.Register {
	return &fiscalsync.Register{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		Active:       m.Active,
	}
}

// RemoteUserModel is a provider user. The API key is entered locally and
// never imported.
type RemoteUserModel struct {
	SyncModel
	Title  string `gorm:"type:varchar(200)"`
	Email  string `gorm:"type:varchar(200);index"`
	APIKey string `gorm:"column:api_key;type:varchar(200)"`
}

// TableName returns the table name for GORM
func (RemoteUserModel) TableName() string {
	return "remote_users"
}

func (m *RemoteUserModel) ToDomain() *fiscalsync.RemoteUser {
	return &fiscalsync.RemoteUser{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		Email:        m.Email,
		APIKey:       m.APIKey,
	}
}

// AccountModel is the provider account of a tenant key.
type AccountModel struct {
	SyncModel
	Title string `gorm:"type:varchar(200)"`
	URL   string `gorm:"column:url;type:varchar(255)"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "remote_accounts"
}

func (m *AccountModel) ToDomain() *fiscalsync.Account {
	return &fiscalsync.Account{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		URL:          m.URL,
	}
}

// TenantSettingsModel holds the provider configuration of a tenant.
type TenantSettingsModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primary_key"`
	APIKey    string    `gorm:"column:api_key;type:varchar(200)"`
	Active    bool      `gorm:"not null;default:false"`
	TestMode  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantSettingsModel) TableName() string {
	return "tenant_settings"
}

func (m *TenantSettingsModel) ToDomain() *fiscalsync.TenantSettings {
	return &fiscalsync.TenantSettings{
		TenantID: m.TenantID,
		APIKey:   m.APIKey,
		Active:   m.Active,
		TestMode: m.TestMode,
	}
}

// UserLinkModel associates a local user with a provider user.
type UserLinkModel struct {
	TenantID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID `gorm:"type:uuid;primary_key"`
	RemoteUserID string    `gorm:"type:varchar(64);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserLinkModel) TableName() string {
	return "user_links"
}

func (m *UserLinkModel) ToDomain() *fiscalsync.UserLink {
	return &fiscalsync.UserLink{
		TenantID:     m.TenantID,
		UserID:       m.UserID,
		RemoteUserID: m.RemoteUserID,
	}
}
