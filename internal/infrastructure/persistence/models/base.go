package models

import (
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// SyncModel is the base of every record that can be linked to a provider
// record. A NULL remote id means never synchronized.
type SyncModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	RemoteID *string   `gorm:"type:varchar(64);index"`
}

// ToTenantEntity converts the identity columns to the domain form
func (m *SyncModel) ToTenantEntity() shared.TenantEntity {
	return shared.TenantEntity{BaseEntity: m.BaseModel.ToDomain(), TenantID: m.TenantID}
}

// ToSyncState converts the remote link to the domain form
func (m *SyncModel) ToSyncState() fiscalsync.SyncState {
	var s fiscalsync.SyncState
	if m.RemoteID != nil {
		s.SetRemoteID(*m.RemoteID)
	}
	return s
}

// FromDomainSync populates the identity and link columns
func (m *SyncModel) FromDomainSync(e shared.TenantEntity, s fiscalsync.SyncState) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.RemoteID = RemoteIDValue(s.RemoteID())
}

// RemoteIDValue maps "" to NULL.
func RemoteIDValue(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
