package fiscalsync

import (
	"context"
	"time"

	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
)

// SyncRunStatus represents the status of an import run
type SyncRunStatus string

const (
	SyncRunStatusInProgress SyncRunStatus = "IN_PROGRESS"
	SyncRunStatusSuccess    SyncRunStatus = "SUCCESS"
	SyncRunStatusFailed     SyncRunStatus = "FAILED"
)

// IsTerminal returns true if this is a terminal state
func (s SyncRunStatus) IsTerminal() bool {
	return s == SyncRunStatusSuccess || s == SyncRunStatusFailed
}

// SyncRun records one bulk import of a provider collection. Counts are
// the work actually done, also when the run failed part way.
type SyncRun struct {
	shared.TenantEntity
	Entity       string
	Override     bool
	Status       SyncRunStatus
	Created      int
	Updated      int
	ErrorMessage string
	TriggeredBy  *uuid.UUID
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// NewSyncRun starts a run.
func NewSyncRun(tenantID uuid.UUID, entity string, override bool, triggeredBy uuid.UUID) (*SyncRun, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if entity == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity cannot be empty")
	}
	run := &SyncRun{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Entity:       entity,
		Override:     override,
		Status:       SyncRunStatusInProgress,
		StartedAt:    time.Now(),
	}
	if triggeredBy != uuid.Nil {
		run.TriggeredBy = &triggeredBy
	}
	return run, nil
}

// Complete marks the run as successful.
func (r *SyncRun) Complete(created, updated int) error {
	return r.finish(SyncRunStatusSuccess, created, updated, "")
}

// Fail marks the run as failed, keeping the partial counts.
func (r *SyncRun) Fail(created, updated int, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.finish(SyncRunStatusFailed, created, updated, msg)
}

func (r *SyncRun) finish(status SyncRunStatus, created, updated int, msg string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Sync run already finished")
	}
	now := time.Now()
	r.Status = status
	r.Created = created
	r.Updated = updated
	r.ErrorMessage = msg
	r.FinishedAt = &now
	r.Touch()
	return nil
}

// Duration returns how long the run took, zero while in progress.
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SyncRunRepository persists sync runs.
type SyncRunRepository interface {
	Save(ctx context.Context, run *SyncRun) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SyncRun, error)
	List(ctx context.Context, tenantID uuid.UUID, entity string, filter shared.Filter) ([]SyncRun, int64, error)
}
