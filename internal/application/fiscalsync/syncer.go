package fiscalsync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultImportLockTTL bounds how long an import may hold its lock
const DefaultImportLockTTL = 10 * time.Minute

// Syncer exposes the operations of one entity type without its Go type.
type Syncer interface {
	Name() string
	DefaultOverride() bool
	Push(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error)
	DeleteRemote(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error)
	ReadRemote(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error)
	ListRemote(ctx context.Context, sc fiscalsync.SyncContext) ([]fiscalsync.RemoteRecord, error)
	Import(ctx context.Context, sc fiscalsync.SyncContext, override bool) (*fiscalsync.SyncRun, error)
	ImportOne(ctx context.Context, sc fiscalsync.SyncContext, remoteID string) (uuid.UUID, error)
	ResolveReference(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.Payload, error)
}

// RunObserver is told about every finished import run.
type RunObserver interface {
	ObserveRun(ctx context.Context, run *fiscalsync.SyncRun)
}

// SyncerOption configures an EntitySyncer
type SyncerOption func(*syncerOptions)

type syncerOptions struct {
	observers []RunObserver
}

// WithRunObserver reports finished import runs to o
func WithRunObserver(o RunObserver) SyncerOption {
	return func(so *syncerOptions) {
		if o != nil {
			so.observers = append(so.observers, o)
		}
	}
}

// EntitySyncer implements Syncer on top of an Engine.
type EntitySyncer[E fiscalsync.Syncable] struct {
	engine    *Engine[E]
	resolver  *Resolver[E]
	locker    fiscalsync.ImportLocker
	runs      fiscalsync.SyncRunRepository
	lockTTL   time.Duration
	observers []RunObserver
	logger    *zap.Logger
}

// NewEntitySyncer creates a syncer. Imports are serialized per tenant and
// entity through locker and recorded in runs.
func NewEntitySyncer[E fiscalsync.Syncable](
	engine *Engine[E],
	locker fiscalsync.ImportLocker,
	runs fiscalsync.SyncRunRepository,
	lockTTL time.Duration,
	logger *zap.Logger,
	opts ...SyncerOption,
) *EntitySyncer[E] {
	if lockTTL <= 0 {
		lockTTL = DefaultImportLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o syncerOptions
	for _, opt := range opts {
		opt(&o)
	}
	s := &EntitySyncer[E]{
		engine:    engine,
		locker:    locker,
		runs:      runs,
		lockTTL:   lockTTL,
		observers: o.observers,
		logger:    logger.With(zap.String("entity", engine.Adapter().Name())),
	}
	if r, err := NewResolver(engine); err == nil {
		s.resolver = r
	}
	return s
}

var _ Syncer = (*EntitySyncer[*fiscalsync.Customer])(nil)

func (s *EntitySyncer[E]) Name() string { return s.engine.Adapter().Name() }

// DefaultOverride is the override used when the caller does not choose.
func (s *EntitySyncer[E]) DefaultOverride() bool {
	if d, ok := s.engine.Adapter().(fiscalsync.OverrideDefaulter); ok {
		return d.DefaultOverride()
	}
	return false
}

// Push creates the record remotely, or updates it when already linked.
func (s *EntitySyncer[E]) Push(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error) {
	entity, err := s.engine.Store().Get(ctx, sc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if entity.RemoteID() != "" {
		return s.engine.Update(ctx, sc, entity)
	}
	return s.engine.Create(ctx, sc, entity)
}

func (s *EntitySyncer[E]) DeleteRemote(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error) {
	entity, err := s.engine.Store().Get(ctx, sc.TenantID, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Delete(ctx, sc, entity)
}

func (s *EntitySyncer[E]) ReadRemote(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.RemoteRecord, error) {
	entity, err := s.engine.Store().Get(ctx, sc.TenantID, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Read(ctx, sc, entity)
}

func (s *EntitySyncer[E]) ListRemote(ctx context.Context, sc fiscalsync.SyncContext) ([]fiscalsync.RemoteRecord, error) {
	return s.engine.List(ctx, sc)
}

// Import runs ImportAll under the collection lock and records the run. A
// failed run keeps the counts of the work that was done.
func (s *EntitySyncer[E]) Import(ctx context.Context, sc fiscalsync.SyncContext, override bool) (*fiscalsync.SyncRun, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fiscal_import", s.Name(),
		telemetry.WithAttribute(telemetry.SpanAttrEntity, s.Name()),
		telemetry.WithAttribute(telemetry.SpanAttrOverride, override),
	)
	defer span.End()

	key := fmt.Sprintf("fiscalsync:import:%s:%s", sc.TenantID, s.Name())
	lock, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release import lock", zap.String("key", key), zap.Error(err))
		}
	}()

	run, err := fiscalsync.NewSyncRun(sc.TenantID, s.Name(), override, sc.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, err
	}

	result, importErr := s.engine.ImportAll(ctx, sc, override)
	var finishErr error
	if importErr != nil {
		telemetry.RecordError(span, importErr)
		finishErr = run.Fail(result.Created, result.Updated, importErr)
	} else {
		finishErr = run.Complete(result.Created, result.Updated)
	}
	if finishErr != nil {
		s.logger.Error("Failed to finish import run",
			zap.String("run_id", run.ID.String()),
			zap.String("status", string(run.Status)),
			zap.Error(finishErr),
		)
	}
	if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error("Failed to record import run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	for _, o := range s.observers {
		o.ObserveRun(ctx, run)
	}
	return run, importErr
}

func (s *EntitySyncer[E]) ImportOne(ctx context.Context, sc fiscalsync.SyncContext, remoteID string) (uuid.UUID, error) {
	entity, err := s.engine.ImportOne(ctx, sc, remoteID)
	if err != nil {
		return uuid.Nil, err
	}
	return entity.GetID(), nil
}

// ResolveReference returns the payload a document would embed for the
// record.
func (s *EntitySyncer[E]) ResolveReference(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (fiscalsync.Payload, error) {
	if s.resolver == nil {
		return nil, fiscalsync.NotImplemented(s.Name(), "ResolveReference")
	}
	entity, err := s.engine.Store().Get(ctx, sc.TenantID, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, sc, entity)
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Registry looks syncers up by entity name.
type Registry struct {
	syncers map[string]Syncer
}

// NewRegistry creates a registry holding syncers
func NewRegistry(syncers ...Syncer) *Registry {
	r := &Registry{syncers: make(map[string]Syncer, len(syncers))}
	for _, s := range syncers {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a syncer
func (r *Registry) Register(s Syncer) {
	r.syncers[s.Name()] = s
}

// Get returns the syncer of an entity, ErrUnknownEntity when none.
func (r *Registry) Get(name string) (Syncer, error) {
	s, ok := r.syncers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fiscalsync.ErrUnknownEntity, name)
	}
	return s, nil
}

// Names returns the registered entity names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.syncers))
	for name := range r.syncers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
