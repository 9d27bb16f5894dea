package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newCustomerStore(t *testing.T, db *gorm.DB) *GormStore[*fiscalsync.Customer, models.CustomerModel, *models.CustomerModel] {
	store, err := NewGormStore[*fiscalsync.Customer, models.CustomerModel](db)
	require.NoError(t, err)
	return store
}

func TestGormStore_CreateAndGet(t *testing.T) {
	db := setupSyncTestDB(t)
	store := newCustomerStore(t, db)
	ctx := context.Background()
	tenantID := uuid.New()

	ids, err := store.Create(ctx, tenantID,
		fiscalsync.Fields{"name": "Alpha Lda", "vat": "500100200", "remote_id": "11"},
		fiscalsync.Fields{"name": "Beta SA", "email": "beta@example.pt"},
	)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	alpha, err := store.Get(ctx, tenantID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Alpha Lda", alpha.Name)
	assert.Equal(t, "500100200", alpha.VAT)
	assert.Equal(t, "11", alpha.RemoteID())
	assert.Equal(t, tenantID, alpha.TenantID)
	assert.True(t, alpha.Active)

	beta, err := store.Get(ctx, tenantID, ids[1])
	require.NoError(t, err)
	assert.False(t, beta.IsLinked())
	assert.Equal(t, "beta@example.pt", beta.Email)

	t.Run("other tenant cannot see the record", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.New(), ids[0])
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("no rows is a no-op", func(t *testing.T) {
		ids, err := store.Create(ctx, tenantID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestGormStore_Find(t *testing.T) {
	db := setupSyncTestDB(t)
	store := newCustomerStore(t, db)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := store.Create(ctx, tenantID,
		fiscalsync.Fields{"name": "Casa Verde", "vat": "PT500100200", "remote_id": "7"},
		fiscalsync.Fields{"name": "casa verde", "vat": "999"},
		fiscalsync.Fields{"name": "Outra", "vat": "500100200"},
	)
	require.NoError(t, err)
	_, err = store.Create(ctx, uuid.New(), fiscalsync.Fields{"name": "Casa Verde", "remote_id": "7"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		predicates []fiscalsync.Predicate
		limit      int
		want       []string
	}{
		{"by remote id", []fiscalsync.Predicate{fiscalsync.Eq("remote_id", "7")}, 0, []string{"Casa Verde"}},
		{"by vat", []fiscalsync.Predicate{fiscalsync.Eq("vat", "500100200")}, 0, []string{"Outra"}},
		{"case insensitive name", []fiscalsync.Predicate{fiscalsync.ILike("name", "CASA VERDE")}, 0, []string{"Casa Verde", "casa verde"}},
		{"limit", []fiscalsync.Predicate{fiscalsync.ILike("name", "casa verde")}, 1, []string{"Casa Verde"}},
		{"all predicates must hold", []fiscalsync.Predicate{fiscalsync.ILike("name", "casa verde"), fiscalsync.Eq("vat", "999")}, 0, []string{"casa verde"}},
		{"no match", []fiscalsync.Predicate{fiscalsync.Eq("email", "none@example.pt")}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := store.Find(ctx, tenantID, tt.predicates, tt.limit)
			require.NoError(t, err)
			var names []string
			for _, c := range found {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	t.Run("unknown column is rejected", func(t *testing.T) {
		_, err := store.Find(ctx, tenantID, []fiscalsync.Predicate{fiscalsync.Eq("password", "x")}, 0)
		assert.True(t, errors.Is(err, ErrUnknownColumn))
	})
}

func TestGormStore_UpdateAndDelete(t *testing.T) {
	db := setupSyncTestDB(t)
	store := newCustomerStore(t, db)
	ctx := context.Background()
	tenantID := uuid.New()

	ids, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "Alpha", "remote_id": "3"})
	require.NoError(t, err)
	id := ids[0]

	ok, err := store.Update(ctx, tenantID, id, fiscalsync.Fields{"city": "Porto", "remote_id": nil})
	require.NoError(t, err)
	assert.True(t, ok)

	c, err := store.Get(ctx, tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, "Porto", c.City)
	assert.False(t, c.IsLinked())

	ok, err = store.Update(ctx, tenantID, uuid.New(), fiscalsync.Fields{"city": "Faro"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Update(ctx, tenantID, id, fiscalsync.Fields{"tenant_id": uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	ok, err = store.Delete(ctx, uuid.New(), id)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Delete(ctx, tenantID, id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Get(ctx, tenantID, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormStore_EmptyRemoteIDIsNull(t *testing.T) {
	db := setupSyncTestDB(t)
	store := newCustomerStore(t, db)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := store.Create(ctx, tenantID,
		fiscalsync.Fields{"name": "A", "remote_id": ""},
		fiscalsync.Fields{"name": "B", "remote_id": ""},
	)
	require.NoError(t, err)

	var nulls int64
	require.NoError(t, db.Model(&models.CustomerModel{}).Where("remote_id IS NULL").Count(&nulls).Error)
	assert.Equal(t, int64(2), nulls)
}

func TestGormStore_DecimalFields(t *testing.T) {
	db := setupSyncTestDB(t)
	store, err := NewGormStore[*fiscalsync.Product, models.ProductModel](db)
	require.NoError(t, err)
	ctx := context.Background()
	tenantID := uuid.New()

	ids, err := store.Create(ctx, tenantID, fiscalsync.Fields{
		"code":        "P-1",
		"name":        "Cafe",
		"gross_price": decimal.RequireFromString("1.2300"),
		"remote_id":   "55",
	})
	require.NoError(t, err)

	p, err := store.Get(ctx, tenantID, ids[0])
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.23").Equal(p.GrossPrice))
	assert.Equal(t, "products", store.Table())
}

func TestGormTransactionScope(t *testing.T) {
	db := setupSyncTestDB(t)
	store := newCustomerStore(t, db)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	tenantID := uuid.New()

	count := func() int {
		found, err := store.Find(ctx, tenantID, nil, 0)
		require.NoError(t, err)
		return len(found)
	}

	t.Run("rollback discards writes", func(t *testing.T) {
		err := scope.Run(ctx, func(ctx context.Context) error {
			_, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "gone"})
			require.NoError(t, err)
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 0, count())
	})

	t.Run("checkpoint survives a later rollback", func(t *testing.T) {
		err := scope.Run(ctx, func(ctx context.Context) error {
			if _, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "kept"}); err != nil {
				return err
			}
			if err := scope.Checkpoint(ctx); err != nil {
				return err
			}
			if _, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "dropped"}); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		found, err := store.Find(ctx, tenantID, nil, 0)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "kept", found[0].Name)
	})

	t.Run("nested run joins the outer unit of work", func(t *testing.T) {
		before := count()
		err := scope.Run(ctx, func(ctx context.Context) error {
			if err := scope.Run(ctx, func(ctx context.Context) error {
				_, err := store.Create(ctx, tenantID, fiscalsync.Fields{"name": "inner"})
				return err
			}); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, before, count())
	})

	t.Run("checkpoint outside run does nothing", func(t *testing.T) {
		assert.NoError(t, scope.Checkpoint(ctx))
	})
}

func TestNewSyncStores(t *testing.T) {
	db := setupSyncTestDB(t)
	stores, err := NewSyncStores(db)
	require.NoError(t, err)
	assert.NotNil(t, stores.Customers)
	assert.NotNil(t, stores.Accounts)
	assert.NotNil(t, stores.Documents)
}
