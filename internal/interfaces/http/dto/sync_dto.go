package dto

import (
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
)

// EntityResponse describes a synchronized entity type.
type EntityResponse struct {
	Name            string `json:"name"`
	DefaultOverride bool   `json:"default_override"`
}

// ImportQuery holds the query parameters of a collection import.
// A missing override falls back to the entity default.
type ImportQuery struct {
	Override *bool `form:"override"`
}

// ImportOneResponse is returned after importing a single remote record.
type ImportOneResponse struct {
	Entity   string    `json:"entity"`
	RemoteID string    `json:"remote_id"`
	ID       uuid.UUID `json:"id"`
}

// ReferenceResponse carries the reference payload of a local record.
type ReferenceResponse struct {
	Entity  string             `json:"entity"`
	ID      uuid.UUID          `json:"id"`
	Payload fiscalsync.Payload `json:"payload"`
}

// RunListQuery filters the import run history.
type RunListQuery struct {
	ListRequest
	Entity string `form:"entity"`
}

// RunResponse is an import run.
type RunResponse struct {
	ID           uuid.UUID  `json:"id"`
	Entity       string     `json:"entity"`
	Override     bool       `json:"override"`
	Status       string     `json:"status"`
	Created      int        `json:"created"`
	Updated      int        `json:"updated"`
	ErrorMessage string     `json:"error_message,omitempty"`
	TriggeredBy  *uuid.UUID `json:"triggered_by,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewRunResponse converts a run.
func NewRunResponse(run *fiscalsync.SyncRun) RunResponse {
	return RunResponse{
		ID:           run.ID,
		Entity:       run.Entity,
		Override:     run.Override,
		Status:       string(run.Status),
		Created:      run.Created,
		Updated:      run.Updated,
		ErrorMessage: run.ErrorMessage,
		TriggeredBy:  run.TriggeredBy,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

// NewRunResponses converts a page of runs.
func NewRunResponses(runs []fiscalsync.SyncRun) []RunResponse {
	out := make([]RunResponse, len(runs))
	for i := range runs {
		out[i] = NewRunResponse(&runs[i])
	}
	return out
}

// SettingsRequest configures the provider settings of the calling tenant.
// An empty api_key keeps the stored one.
type SettingsRequest struct {
	APIKey   string `json:"api_key" binding:"omitempty,max=255"`
	Active   bool   `json:"active"`
	TestMode bool   `json:"test_mode"`
}

// SettingsResponse never echoes the key itself.
type SettingsResponse struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Active    bool      `json:"active"`
	TestMode  bool      `json:"test_mode"`
	HasAPIKey bool      `json:"has_api_key"`
}

// NewSettingsResponse converts tenant settings.
func NewSettingsResponse(s *fiscalsync.TenantSettings) SettingsResponse {
	return SettingsResponse{
		TenantID:  s.TenantID,
		Active:    s.Active,
		TestMode:  s.TestMode,
		HasAPIKey: s.APIKey != "",
	}
}

// UserLinkRequest links a local user to a provider user.
type UserLinkRequest struct {
	RemoteUserID string `json:"remote_user_id" binding:"required,max=64"`
}

// UserLinkResponse is a stored user link.
type UserLinkResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	RemoteUserID string    `json:"remote_user_id"`
}
