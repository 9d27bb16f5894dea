//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/infrastructure/migration"
)

// setupPostgres starts a disposable PostgreSQL and applies the SQL
// migrations to it.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fiscalsync_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, "postgres", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())
	return db
}

func TestPostgres_SyncStore(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	db := setupPostgres(t)
	store := newCustomerStore(t, db)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := store.Create(ctx, tenantID,
		fiscalsync.Fields{"name": "Casa Verde", "vat": "500100200", "remote_id": "7"},
		fiscalsync.Fields{"name": "Sem Ligacao", "remote_id": ""},
	)
	require.NoError(t, err)

	t.Run("ilike compares case insensitively", func(t *testing.T) {
		found, err := store.Find(ctx, tenantID, []fiscalsync.Predicate{fiscalsync.ILike("name", "CASA verde")}, 0)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "7", found[0].RemoteID())
	})

	t.Run("remote id is unique per tenant", func(t *testing.T) {
		_, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "Duplicate", "remote_id": "7"})
		assert.Error(t, err)

		_, err = store.Create(ctx, uuid.New(), fiscalsync.Fields{"name": "Other tenant", "remote_id": "7"})
		assert.NoError(t, err)
	})

	t.Run("checkpoint survives a later rollback", func(t *testing.T) {
		err := scope.Run(ctx, func(ctx context.Context) error {
			if _, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "kept", "remote_id": "100"}); err != nil {
				return err
			}
			if err := scope.Checkpoint(ctx); err != nil {
				return err
			}
			if _, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "dropped", "remote_id": "101"}); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		kept, err := store.Find(ctx, tenantID, []fiscalsync.Predicate{fiscalsync.Eq("remote_id", "100")}, 0)
		require.NoError(t, err)
		assert.Len(t, kept, 1)
		dropped, err := store.Find(ctx, tenantID, []fiscalsync.Predicate{fiscalsync.Eq("remote_id", "101")}, 0)
		require.NoError(t, err)
		assert.Empty(t, dropped)
	})
}

func TestPostgres_DocumentRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	db := setupPostgres(t)
	repo, err := NewGormDocumentRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := fiscalsync.NewDraft(uuid.New(), fiscalsync.DocumentKindInvoice, []fiscalsync.DocumentLine{
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("4.50")},
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("1.00")},
	})
	require.NoError(t, err)
	doc.DocumentType = "FT"
	doc.Date = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	doc.SettledInvoices = []string{"FT A/1"}
	require.NoError(t, repo.Insert(ctx, doc))

	loaded, err := repo.FindByID(ctx, doc.TenantID, doc.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, 1, loaded.Lines[0].Sequence)
	assert.Equal(t, []string{"FT A/1"}, loaded.SettledInvoices)

	loaded.SetRemoteID("9001")
	loaded.Number = "FT 01P2026/1"
	loaded.Status = fiscalsync.DocumentStatusRemoteIDAssigned
	require.NoError(t, repo.Save(ctx, loaded))

	again, err := repo.FindByID(ctx, doc.TenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "9001", again.RemoteID())
	assert.Equal(t, "FT 01P2026/1", again.Number)
	assert.Len(t, again.Lines, 2)
}
