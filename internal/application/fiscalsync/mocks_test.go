package fiscalsync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Collaborators
// =============================================================================

// MockStore is a mock implementation of fiscalsync.Store
type MockStore[E fiscalsync.Syncable] struct {
	mock.Mock
}

func (m *MockStore[E]) Find(ctx context.Context, tenantID uuid.UUID, predicates []fiscalsync.Predicate, limit int) ([]E, error) {
	args := m.Called(ctx, tenantID, predicates, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]E), args.Error(1)
}

func (m *MockStore[E]) Get(ctx context.Context, tenantID, id uuid.UUID) (E, error) {
	args := m.Called(ctx, tenantID, id)
	var zero E
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

func (m *MockStore[E]) Create(ctx context.Context, tenantID uuid.UUID, rows ...fiscalsync.Fields) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockStore[E]) Update(ctx context.Context, tenantID, id uuid.UUID, fields fiscalsync.Fields) (bool, error) {
	args := m.Called(ctx, tenantID, id, fields)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore[E]) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

// MockGateway is a mock implementation of fiscalsync.RemoteGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Do(ctx context.Context, sc fiscalsync.SyncContext, req fiscalsync.Request) (*fiscalsync.Response, error) {
	args := m.Called(ctx, sc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalsync.Response), args.Error(1)
}

// MockTransactor runs fn directly and records checkpoints
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

func (m *MockTransactor) Checkpoint(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDocumentRepository is a mock implementation of fiscalsync.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscalsync.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalsync.Document), args.Error(1)
}

func (m *MockDocumentRepository) Insert(ctx context.Context, doc *fiscalsync.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *fiscalsync.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockArchive is a mock implementation of fiscalsync.DocumentArchive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Save(ctx context.Context, tenantID uuid.UUID, name string, content []byte) (string, error) {
	args := m.Called(ctx, tenantID, name, content)
	return args.String(0), args.Error(1)
}

// MockCredentialRepository is a mock implementation of fiscalsync.CredentialStore
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) GetSettings(ctx context.Context, tenantID uuid.UUID) (*fiscalsync.TenantSettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalsync.TenantSettings), args.Error(1)
}

func (m *MockCredentialRepository) FindUserLink(ctx context.Context, tenantID, userID uuid.UUID) (*fiscalsync.UserLink, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalsync.UserLink), args.Error(1)
}

func (m *MockCredentialRepository) FindUserAPIKey(ctx context.Context, tenantID uuid.UUID, remoteUserID string) (string, error) {
	args := m.Called(ctx, tenantID, remoteUserID)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialRepository) SaveSettings(ctx context.Context, settings *fiscalsync.TenantSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockCredentialRepository) SaveUserLink(ctx context.Context, link *fiscalsync.UserLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

// MockSyncRunRepository is a mock implementation of fiscalsync.SyncRunRepository
type MockSyncRunRepository struct {
	mock.Mock
}

func (m *MockSyncRunRepository) Save(ctx context.Context, run *fiscalsync.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSyncRunRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscalsync.SyncRun, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalsync.SyncRun), args.Error(1)
}

func (m *MockSyncRunRepository) List(ctx context.Context, tenantID uuid.UUID, entity string, filter shared.Filter) ([]fiscalsync.SyncRun, int64, error) {
	args := m.Called(ctx, tenantID, entity, filter)
	return args.Get(0).([]fiscalsync.SyncRun), args.Get(1).(int64), args.Error(2)
}

// MockImportLocker is a mock implementation of fiscalsync.ImportLocker
type MockImportLocker struct {
	mock.Mock
}

func (m *MockImportLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (fiscalsync.ImportLock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fiscalsync.ImportLock), args.Error(1)
}

type releasedLock struct {
	released bool
}

func (l *releasedLock) Release(context.Context) error {
	l.released = true
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func jsonResponse(body string) *fiscalsync.Response {
	return &fiscalsync.Response{StatusCode: 200, Body: json.RawMessage(body)}
}

func testContext() fiscalsync.SyncContext {
	return fiscalsync.SyncContext{
		TenantID:  uuid.New(),
		UserID:    uuid.New(),
		TenantKey: "tenant-key",
		UserKey:   "user-key",
	}
}

func newTestCustomer(t interface{ Fatalf(string, ...any) }, tenantID uuid.UUID, name string) *fiscalsync.Customer {
	c, err := fiscalsync.NewCustomer(tenantID, name)
	if err != nil {
		t.Fatalf("new customer: %v", err)
	}
	return c
}

// withPredicate matches a Find call for a single predicate on field.
func withPredicate(field string, value any) any {
	return mock.MatchedBy(func(preds []fiscalsync.Predicate) bool {
		return len(preds) == 1 && preds[0].Field == field && preds[0].Value == value
	})
}

// methodIs matches a gateway request by method and endpoint.
func methodIs(method, endpoint string) any {
	return mock.MatchedBy(func(req fiscalsync.Request) bool {
		return req.Method == method && req.Endpoint == endpoint
	})
}
