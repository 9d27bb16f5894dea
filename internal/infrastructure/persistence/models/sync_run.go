package models

import (
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
)

// SyncRunModel records one bulk import.
type SyncRunModel struct {
	BaseModel
	TenantID     uuid.UUID                `gorm:"type:uuid;not null;index:idx_sync_run_tenant_entity,priority:1"`
	Entity       string                   `gorm:"type:varchar(50);not null;index:idx_sync_run_tenant_entity,priority:2"`
	Override     bool                     `gorm:"not null;default:false"`
	Status       fiscalsync.SyncRunStatus `gorm:"type:varchar(20);not null"`
	Created      int                      `gorm:"not null;default:0"`
	Updated      int                      `gorm:"not null;default:0"`
	ErrorMessage string                   `gorm:"type:text"`
	TriggeredBy  *uuid.UUID               `gorm:"type:uuid"`
	StartedAt    time.Time                `gorm:"not null"`
	FinishedAt   *time.Time               `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

func (m *SyncRunModel) ToDomain() *fiscalsync.SyncRun {
	return &fiscalsync.SyncRun{
		TenantEntity: shared.TenantEntity{BaseEntity: m.BaseModel.ToDomain(), TenantID: m.TenantID},
		Entity:       m.Entity,
		Override:     m.Override,
		Status:       m.Status,
		Created:      m.Created,
		Updated:      m.Updated,
		ErrorMessage: m.ErrorMessage,
		TriggeredBy:  m.TriggeredBy,
		StartedAt:    m.StartedAt,
		FinishedAt:   m.FinishedAt,
	}
}

func (m *SyncRunModel) FromDomain(r *fiscalsync.SyncRun) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.Entity = r.Entity
	m.Override = r.Override
	m.Status = r.Status
	m.Created = r.Created
	m.Updated = r.Updated
	m.ErrorMessage = r.ErrorMessage
	m.TriggeredBy = r.TriggeredBy
	m.StartedAt = r.StartedAt
	m.FinishedAt = r.FinishedAt
}
