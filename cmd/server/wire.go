package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	syncapp "github.com/erp/fiscalsync/internal/application/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/infrastructure/cache"
	"github.com/erp/fiscalsync/internal/infrastructure/config"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence"
	"github.com/erp/fiscalsync/internal/infrastructure/storage"
	"github.com/erp/fiscalsync/internal/infrastructure/telemetry"
	"github.com/erp/fiscalsync/internal/infrastructure/vendus"
)

// application holds the services served over HTTP.
type application struct {
	registry    *syncapp.Registry
	credentials *syncapp.CredentialService
	documents   *syncapp.DocumentService
	settings    *syncapp.SettingsService
	runs        fiscalsync.SyncRunRepository
}

// syncDeps are shared by every engine and syncer.
type syncDeps struct {
	gateway  fiscalsync.RemoteGateway
	tx       fiscalsync.Transactor
	locker   fiscalsync.ImportLocker
	runs     fiscalsync.SyncRunRepository
	metrics  *telemetry.SyncMetrics
	lockTTL  time.Duration
	engineOp []syncapp.EngineOption
	log      *zap.Logger
}

func newEngine[E fiscalsync.Syncable](d *syncDeps, adapter fiscalsync.Adapter[E], store fiscalsync.Store[E]) *syncapp.Engine[E] {
	return syncapp.NewEngine(adapter, store, d.gateway, d.tx, d.log, d.engineOp...)
}

func newSyncer[E fiscalsync.Syncable](d *syncDeps, engine *syncapp.Engine[E]) *syncapp.EntitySyncer[E] {
	return syncapp.NewEntitySyncer(engine, d.locker, d.runs, d.lockTTL, d.log, syncapp.WithRunObserver(d.metrics))
}

func wire(ctx context.Context, cfg *config.Config, db *persistence.Database, tracer trace.Tracer, metrics *telemetry.SyncMetrics, log *zap.Logger) (*application, error) {
	client, err := vendus.NewClient(&vendus.Config{
		BaseURL:        cfg.Vendus.BaseURL,
		Version:        cfg.Vendus.Version,
		TimeoutSeconds: cfg.Vendus.TimeoutSeconds,
		UserAgent:      cfg.Vendus.UserAgent,
	}, log, vendus.WithTracer(tracer), vendus.WithObserver(metrics))
	if err != nil {
		return nil, err
	}

	locker, err := cache.NewImportLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateLocker(cfg.Sync.LockBackend)
	if err != nil {
		return nil, err
	}

	archive, err := storage.NewDocumentArchive(ctx, &cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	stores, err := persistence.NewSyncStores(db.DB)
	if err != nil {
		return nil, err
	}
	credentials := persistence.NewGormCredentialRepository(db.DB)

	d := &syncDeps{
		gateway: client,
		tx:      persistence.NewGormTransactionScope(db.DB),
		locker:  locker,
		runs:    persistence.NewGormSyncRunRepository(db.DB),
		metrics: metrics,
		lockTTL: cfg.Sync.ImportLockTTL,
		engineOp: []syncapp.EngineOption{
			syncapp.WithPageSize(cfg.Sync.PageSize),
			syncapp.WithMaxPages(cfg.Sync.MaxPages),
		},
		log: log,
	}

	customers := newEngine[*fiscalsync.Customer](d, syncapp.NewCustomerAdapter(), stores.Customers)
	suppliers := newEngine[*fiscalsync.Supplier](d, syncapp.NewSupplierAdapter(), stores.Suppliers)
	products := newEngine[*fiscalsync.Product](d, syncapp.NewProductAdapter(), stores.Products)
	documents := newEngine[*fiscalsync.Document](d, syncapp.NewDocumentAdapter(), stores.Documents)

	registry := syncapp.NewRegistry(
		newSyncer(d, customers),
		newSyncer(d, suppliers),
		newSyncer(d, products),
		newSyncer(d, newEngine[*fiscalsync.Category](d, syncapp.NewCategoryAdapter(), stores.Categories)),
		newSyncer(d, newEngine[*fiscalsync.Unit](d, syncapp.NewUnitAdapter(), stores.Units)),
		newSyncer(d, newEngine[*fiscalsync.Brand](d, syncapp.NewBrandAdapter(), stores.Brands)),
		newSyncer(d, newEngine[*fiscalsync.PriceGroup](d, syncapp.NewPriceGroupAdapter(), stores.PriceGroups)),
		newSyncer(d, newEngine[*fiscalsync.PaymentMethod](d, syncapp.NewPaymentMethodAdapter(), stores.PaymentMethods)),
		newSyncer(d, newEngine[*fiscalsync.Register](d, syncapp.NewRegisterAdapter(), stores.Registers)),
		newSyncer(d, newEngine[*fiscalsync.RemoteUser](d, syncapp.NewRemoteUserAdapter(), stores.RemoteUsers)),
		newSyncer(d, newEngine[*fiscalsync.Account](d, syncapp.NewAccountAdapter(), stores.Accounts)),
		newSyncer(d, documents),
	)

	documentService, err := syncapp.NewDocumentService(stores.Documents, documents, customers, suppliers, products, d.tx, archive, log)
	if err != nil {
		return nil, err
	}

	log.Info("Fiscal sync wired", zap.Strings("entities", registry.Names()))
	return &application{
		registry:    registry,
		credentials: syncapp.NewCredentialService(credentials),
		documents:   documentService,
		settings:    syncapp.NewSettingsService(credentials, log),
		runs:        d.runs,
	}, nil
}
