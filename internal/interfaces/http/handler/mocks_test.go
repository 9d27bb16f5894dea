package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	syncapp "github.com/erp/fiscalsync/internal/application/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
)

// MockSyncer is a mock implementation of syncapp.Syncer
type MockSyncer struct {
	mock.Mock
	name string
}

var _ syncapp.Syncer = (*MockSyncer)(nil)

func (m *MockSyncer) Name() string { return m.name }

func (m *MockSyncer) DefaultOverride() bool {
	return m.Called().Bool(0)
}

func (m *MockSyncer) Push(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error) {
	args := m.Called(ctx, sc, id)
	rec, _ := args.Get(0).(fiscalsync.RemoteRecord)
	return rec, args.Error(1)
}

func (m *MockSyncer) DeleteRemote(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error) {
	args := m.Called(ctx, sc, id)
	rec, _ := args.Get(0).(fiscalsync.RemoteRecord)
	return rec, args.Error(1)
}

func (m *MockSyncer) ReadRemote(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error) {
	args := m.Called(ctx, sc, id)
	rec, _ := args.Get(0).(fiscalsync.RemoteRecord)
	return rec, args.Error(1)
}

func (m *MockSyncer) ListRemote(ctx context.Context, sc fiscalsync.SyncContext) ([]fiscalsync.RemoteRecord, error) {
	args := m.Called(ctx, sc)
	recs, _ := args.Get(0).([]fiscalsync.RemoteRecord)
	return recs, args.Error(1)
}

func (m *MockSyncer) Import(ctx context.Context, sc fiscalsync.SyncContext, override bool) (*fiscalsync.SyncRun, error) {
	args := m.Called(ctx, sc, override)
	run, _ := args.Get(0).(*fiscalsync.SyncRun)
	return run, args.Error(1)
}

func (m *MockSyncer) ImportOne(ctx context.Context, sc fiscalsync.SyncContext, remoteID string) (uuid.UUID, error) {
	args := m.Called(ctx, sc, remoteID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockSyncer) ResolveReference(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.Payload, error) {
	args := m.Called(ctx, sc, id)
	p, _ := args.Get(0).(fiscalsync.Payload)
	return p, args.Error(1)
}

// MockResolver is a mock implementation of ContextResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Context(ctx context.Context, tenantID, userID uuid.UUID, asSystem bool) (fiscalsync.SyncContext, error) {
	args := m.Called(ctx, tenantID, userID, asSystem)
	return args.Get(0).(fiscalsync.SyncContext), args.Error(1)
}

// MockDocumentIssuer is a mock implementation of DocumentIssuer
type MockDocumentIssuer struct {
	mock.Mock
}

func (m *MockDocumentIssuer) CreateDraft(ctx context.Context, sc fiscalsync.SyncContext, d *fiscalsync.Document) error {
	return m.Called(ctx, sc, d).Error(0)
}

func (m *MockDocumentIssuer) document(args mock.Arguments) (*fiscalsync.Document, error) {
	d, _ := args.Get(0).(*fiscalsync.Document)
	return d, args.Error(1)
}

func (m *MockDocumentIssuer) Get(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	return m.document(m.Called(ctx, sc, id))
}

func (m *MockDocumentIssuer) Submit(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	return m.document(m.Called(ctx, sc, id))
}

func (m *MockDocumentIssuer) Backfill(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	return m.document(m.Called(ctx, sc, id))
}

func (m *MockDocumentIssuer) Cancel(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	return m.document(m.Called(ctx, sc, id))
}

func (m *MockDocumentIssuer) FetchPDF(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, sc, id)
	content, _ := args.Get(0).([]byte)
	return content, args.String(1), args.Error(2)
}

// MockSettingsManager is a mock implementation of SettingsManager
type MockSettingsManager struct {
	mock.Mock
}

func (m *MockSettingsManager) Settings(ctx context.Context, tenantID uuid.UUID) (*fiscalsync.TenantSettings, error) {
	args := m.Called(ctx, tenantID)
	s, _ := args.Get(0).(*fiscalsync.TenantSettings)
	return s, args.Error(1)
}

func (m *MockSettingsManager) Configure(ctx context.Context, tenantID uuid.UUID, in syncapp.ConfigureInput) (*fiscalsync.TenantSettings, error) {
	args := m.Called(ctx, tenantID, in)
	s, _ := args.Get(0).(*fiscalsync.TenantSettings)
	return s, args.Error(1)
}

func (m *MockSettingsManager) LinkUser(ctx context.Context, tenantID, userID uuid.UUID, remoteUserID string) (*fiscalsync.UserLink, error) {
	args := m.Called(ctx, tenantID, userID, remoteUserID)
	l, _ := args.Get(0).(*fiscalsync.UserLink)
	return l, args.Error(1)
}

// MockSyncRunRepository is a mock implementation of fiscalsync.SyncRunRepository
type MockSyncRunRepository struct {
	mock.Mock
}

func (m *MockSyncRunRepository) Save(ctx context.Context, run *fiscalsync.SyncRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockSyncRunRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscalsync.SyncRun, error) {
	args := m.Called(ctx, tenantID, id)
	run, _ := args.Get(0).(*fiscalsync.SyncRun)
	return run, args.Error(1)
}

func (m *MockSyncRunRepository) List(ctx context.Context, tenantID uuid.UUID, entity string, filter shared.Filter) ([]fiscalsync.SyncRun, int64, error) {
	args := m.Called(ctx, tenantID, entity, filter)
	runs, _ := args.Get(0).([]fiscalsync.SyncRun)
	return runs, args.Get(1).(int64), args.Error(2)
}
