package fiscalsync

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncRun(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	run, err := NewSyncRun(tenantID, "customers", true, userID)
	require.NoError(t, err)
	assert.Equal(t, SyncRunStatusInProgress, run.Status)
	assert.Equal(t, tenantID, run.TenantID)
	require.NotNil(t, run.TriggeredBy)
	assert.Equal(t, userID, *run.TriggeredBy)
	assert.Zero(t, run.Duration())

	_, err = NewSyncRun(uuid.Nil, "customers", false, userID)
	assert.Error(t, err)
	_, err = NewSyncRun(tenantID, "", false, userID)
	assert.Error(t, err)

	system, err := NewSyncRun(tenantID, "units", false, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, system.TriggeredBy)
}

func TestSyncRun_Complete(t *testing.T) {
	run, _ := NewSyncRun(uuid.New(), "products", false, uuid.Nil)

	require.NoError(t, run.Complete(3, 2))

	assert.Equal(t, SyncRunStatusSuccess, run.Status)
	assert.Equal(t, 3, run.Created)
	assert.Equal(t, 2, run.Updated)
	assert.NotNil(t, run.FinishedAt)
	assert.Error(t, run.Complete(1, 1), "finished run cannot complete twice")
}

func TestSyncRun_FailKeepsPartialCounts(t *testing.T) {
	run, _ := NewSyncRun(uuid.New(), "products", true, uuid.Nil)

	require.NoError(t, run.Fail(0, 4, errors.New("provider down")))

	assert.Equal(t, SyncRunStatusFailed, run.Status)
	assert.Equal(t, 4, run.Updated)
	assert.Equal(t, "provider down", run.ErrorMessage)
}
