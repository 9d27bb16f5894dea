package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	syncapp "github.com/erp/fiscalsync/internal/application/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

type syncFixture struct {
	router    *gin.Engine
	customers *MockSyncer
	resolver  *MockResolver
	caller    middleware.Identity
	sc        fiscalsync.SyncContext
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		customers: &MockSyncer{name: "customers"},
		resolver:  new(MockResolver),
		caller:    middleware.Identity{TenantID: uuid.New(), UserID: uuid.New()},
	}
	f.sc = fiscalsync.SyncContext{TenantID: f.caller.TenantID, UserID: f.caller.UserID, UserKey: "user-key"}

	h := NewSyncHandler(syncapp.NewRegistry(f.customers), f.resolver)
	f.router = testRouter(&f.caller)
	g := f.router.Group("/entities")
	g.GET("", h.ListEntities)
	g.GET("/:entity/remote", h.ListRemote)
	g.POST("/:entity/import", h.Import)
	g.POST("/:entity/import/:remote_id", h.ImportOne)
	g.POST("/:entity/:id/push", h.Push)
	g.GET("/:entity/:id/remote", h.ReadRemote)
	g.DELETE("/:entity/:id/remote", h.DeleteRemote)
	g.POST("/:entity/:id/reference", h.ResolveReference)
	t.Cleanup(func() {
		f.customers.AssertExpectations(t)
		f.resolver.AssertExpectations(t)
	})
	return f
}

func (f *syncFixture) expectContext() {
	f.resolver.On("Context", mock.Anything, f.caller.TenantID, f.caller.UserID, false).Return(f.sc, nil)
}

func TestSyncHandler_ListEntities(t *testing.T) {
	f := newSyncFixture(t)
	f.customers.On("DefaultOverride").Return(true)

	w := doRequest(f.router, http.MethodGet, "/entities", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.([]any)
	require.Len(t, data, 1)
	assert.Equal(t, map[string]any{"name": "customers", "default_override": true}, data[0])
}

func TestSyncHandler_UnknownEntity(t *testing.T) {
	f := newSyncFixture(t)
	w := doRequest(f.router, http.MethodGet, "/entities/widgets/remote", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	f.resolver.AssertNotCalled(t, "Context", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncHandler_ListRemote(t *testing.T) {
	f := newSyncFixture(t)
	f.expectContext()
	f.customers.On("ListRemote", mock.Anything, f.sc).Return([]fiscalsync.RemoteRecord{{"id": "1"}, {"id": "2"}}, nil)

	w := doRequest(f.router, http.MethodGet, "/entities/customers/remote", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Data, 2)
}

func TestSyncHandler_ListRemoteEmpty(t *testing.T) {
	f := newSyncFixture(t)
	f.expectContext()
	f.customers.On("ListRemote", mock.Anything, f.sc).Return(nil, nil)

	w := doRequest(f.router, http.MethodGet, "/entities/customers/remote", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w).Data)
}

func TestSyncHandler_CredentialFailure(t *testing.T) {
	f := newSyncFixture(t)
	f.resolver.On("Context", mock.Anything, f.caller.TenantID, f.caller.UserID, false).
		Return(fiscalsync.SyncContext{}, fiscalsync.NewConfigurationError("api key not found for user %s", f.caller.UserID))

	w := doRequest(f.router, http.MethodGet, "/entities/customers/remote", "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, dto.ErrCodeConfiguration, decode(t, w).Error.Code)
}

func TestSyncHandler_ImportOverride(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		entityDefault bool
		want          bool
	}{
		{"default used when omitted", "", true, true},
		{"explicit false beats default", "?override=false", true, false},
		{"explicit true", "?override=true", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t)
			f.expectContext()
			f.customers.On("DefaultOverride").Return(tt.entityDefault)
			run, err := fiscalsync.NewSyncRun(f.caller.TenantID, "customers", tt.want, f.caller.UserID)
			require.NoError(t, err)
			require.NoError(t, run.Complete(2, 1))
			f.customers.On("Import", mock.Anything, f.sc, tt.want).Return(run, nil)

			w := doRequest(f.router, http.MethodPost, "/entities/customers/import"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			data := decode(t, w).Data.(map[string]any)
			assert.Equal(t, "SUCCESS", data["status"])
			assert.Equal(t, float64(2), data["created"])
		})
	}
}

func TestSyncHandler_ImportBadOverride(t *testing.T) {
	f := newSyncFixture(t)
	w := doRequest(f.router, http.MethodPost, "/entities/customers/import?override=perhaps", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_ImportInProgress(t *testing.T) {
	f := newSyncFixture(t)
	f.expectContext()
	f.customers.On("DefaultOverride").Return(false)
	f.customers.On("Import", mock.Anything, f.sc, false).Return(nil, fiscalsync.ErrImportInProgress)

	w := doRequest(f.router, http.MethodPost, "/entities/customers/import", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeImportInProgress, decode(t, w).Error.Code)
}

func TestSyncHandler_ImportOne(t *testing.T) {
	f := newSyncFixture(t)
	f.expectContext()
	localID := uuid.New()
	f.customers.On("ImportOne", mock.Anything, f.sc, "42").Return(localID, nil)

	w := doRequest(f.router, http.MethodPost, "/entities/customers/import/42", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, localID.String(), data["id"])
	assert.Equal(t, "42", data["remote_id"])
}

func TestSyncHandler_RecordOperations(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		method string
		path   string
		mockOn string
	}{
		{"push", http.MethodPost, "/entities/customers/" + id.String() + "/push", "Push"},
		{"read", http.MethodGet, "/entities/customers/" + id.String() + "/remote", "ReadRemote"},
		{"delete", http.MethodDelete, "/entities/customers/" + id.String() + "/remote", "DeleteRemote"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t)
			f.expectContext()
			f.customers.On(tt.mockOn, mock.Anything, f.sc, id).Return(fiscalsync.RemoteRecord{"id": "77"}, nil)

			w := doRequest(f.router, tt.method, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, map[string]any{"id": "77"}, decode(t, w).Data)
		})
	}
}

func TestSyncHandler_PushRejected(t *testing.T) {
	f := newSyncFixture(t)
	f.expectContext()
	id := uuid.New()
	f.customers.On("Push", mock.Anything, f.sc, id).
		Return(nil, fiscalsync.NewValidationError("remote create rejected", &fiscalsync.RemoteServiceError{StatusCode: 400}))

	w := doRequest(f.router, http.MethodPost, "/entities/customers/"+id.String()+"/push", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSyncHandler_ResolveReference(t *testing.T) {
	f := newSyncFixture(t)
	f.expectContext()
	id := uuid.New()
	f.customers.On("ResolveReference", mock.Anything, f.sc, id).Return(fiscalsync.Payload{"id": "9"}, nil)

	w := doRequest(f.router, http.MethodPost, "/entities/customers/"+id.String()+"/reference", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, map[string]any{"id": "9"}, data["payload"])
	assert.Equal(t, "customers", data["entity"])
}

func TestSyncHandler_SystemCaller(t *testing.T) {
	f := newSyncFixture(t)
	f.caller.AsSystem = true
	system := fiscalsync.SyncContext{TenantID: f.caller.TenantID, UserID: f.caller.UserID, TenantKey: "k", AsSystem: true}
	f.resolver.On("Context", mock.Anything, f.caller.TenantID, f.caller.UserID, true).Return(system, nil)
	f.customers.On("ListRemote", mock.Anything, system).Return([]fiscalsync.RemoteRecord{}, nil)

	w := doRequest(f.router, http.MethodGet, "/entities/customers/remote", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
