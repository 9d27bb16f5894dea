package fiscalsync

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the number of records requested per list page
	DefaultPageSize = 1000
	// DefaultMaxPages bounds a single list call
	DefaultMaxPages = 100
)

// EngineOption configures an Engine
type EngineOption func(*engineOptions)

type engineOptions struct {
	pageSize int
	maxPages int
}

// WithPageSize sets the page size used by List
func WithPageSize(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxPages sets the maximum number of pages fetched by List
func WithMaxPages(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// ImportResult holds the counts of an import. On failure it reports the
// work already done, which is not rolled back.
type ImportResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Engine reconciles one local entity type with its provider collection.
type Engine[E fiscalsync.Syncable] struct {
	adapter fiscalsync.Adapter[E]
	store   fiscalsync.Store[E]
	gateway fiscalsync.RemoteGateway
	tx      fiscalsync.Transactor
	logger  *zap.Logger
	opts    engineOptions
}

// NewEngine creates a reconciliation engine for the adapter's entity type
func NewEngine[E fiscalsync.Syncable](
	adapter fiscalsync.Adapter[E],
	store fiscalsync.Store[E],
	gateway fiscalsync.RemoteGateway,
	tx fiscalsync.Transactor,
	logger *zap.Logger,
	opts ...EngineOption,
) *Engine[E] {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := engineOptions{pageSize: DefaultPageSize, maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[E]{
		adapter: adapter,
		store:   store,
		gateway: gateway,
		tx:      tx,
		logger:  logger.With(zap.String("entity", adapter.Name())),
		opts:    o,
	}
}

// Adapter returns the adapter the engine was built with
func (e *Engine[E]) Adapter() fiscalsync.Adapter[E] {
	return e.adapter
}

// Store returns the local store of the engine
func (e *Engine[E]) Store() fiscalsync.Store[E] {
	return e.store
}

// ---------------------------------------------------------------------------
// Single record operations
// ---------------------------------------------------------------------------

// Create sends the entity to the provider and links it to the returned id.
// A rejected call is reported as a ValidationError wrapping the provider
// error. A call that timed out after the provider committed cannot be told
// apart from one that never arrived.
func (e *Engine[E]) Create(ctx context.Context, sc fiscalsync.SyncContext, entity E) (fiscalsync.RemoteRecord, error) {
	payload, err := e.adapter.ToCreatePayload(sc, entity)
	if err != nil {
		return nil, err
	}
	return e.CreateWithPayload(ctx, sc, entity, payload)
}

// CreateWithPayload is Create with an already composed payload.
func (e *Engine[E]) CreateWithPayload(ctx context.Context, sc fiscalsync.SyncContext, entity E, payload fiscalsync.Payload) (fiscalsync.RemoteRecord, error) {
	resp, err := e.gateway.Do(ctx, sc, fiscalsync.Request{
		Method:   http.MethodPost,
		Endpoint: e.adapter.Endpoint(),
		Body:     payload,
	})
	if err != nil {
		var cfgErr *fiscalsync.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		e.logger.Warn("Remote create rejected",
			zap.String("local_id", entity.GetID().String()),
			zap.Error(err),
		)
		return nil, fiscalsync.NewValidationError("create "+e.adapter.Name()+" failed", err)
	}

	rec, err := resp.Record()
	if err != nil {
		return nil, fiscalsync.NewValidationError("create "+e.adapter.Name()+" failed", err)
	}
	remoteID := rec.ID()
	if remoteID == "" {
		return nil, fiscalsync.NewValidationError("create "+e.adapter.Name()+" failed", fiscalsync.ErrUnexpectedResponse)
	}

	entity.SetRemoteID(remoteID)
	if _, err := e.store.Update(ctx, sc.TenantID, entity.GetID(), fiscalsync.Fields{fiscalsync.FieldRemoteID: remoteID}); err != nil {
		return rec, err
	}

	e.logger.Info("Remote record created",
		zap.String("local_id", entity.GetID().String()),
		zap.String("remote_id", remoteID),
	)
	return rec, nil
}

// CreateAndCheckpoint creates the entity remotely and commits the current
// unit of work before returning, so the new remote id survives a failure of
// whatever the caller does next.
func (e *Engine[E]) CreateAndCheckpoint(ctx context.Context, sc fiscalsync.SyncContext, entity E) (string, error) {
	if _, err := e.Create(ctx, sc, entity); err != nil {
		return "", err
	}
	if err := e.tx.Checkpoint(ctx); err != nil {
		return "", err
	}
	e.logger.Debug("Checkpoint after create", zap.String("remote_id", entity.RemoteID()))
	return entity.RemoteID(), nil
}

// Update pushes the entity's current state. The remote id is never changed.
func (e *Engine[E]) Update(ctx context.Context, sc fiscalsync.SyncContext, entity E) (fiscalsync.RemoteRecord, error) {
	if entity.RemoteID() == "" {
		return nil, fiscalsync.NewIllegalStateError("Update",
			e.adapter.Name()+" "+entity.GetID().String()+" has not been created remotely", fiscalsync.ErrNotLinked)
	}
	payload, err := e.adapter.ToUpdatePayload(sc, entity)
	if err != nil {
		return nil, err
	}
	resp, err := e.gateway.Do(ctx, sc, fiscalsync.Request{
		Method:   http.MethodPatch,
		Endpoint: e.recordEndpoint(entity.RemoteID()),
		Body:     payload,
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Remote record updated", zap.String("remote_id", entity.RemoteID()))
	return optionalRecord(resp)
}

// Delete removes the remote record. The local link is cleared only when the
// provider confirms deletion of that exact id.
func (e *Engine[E]) Delete(ctx context.Context, sc fiscalsync.SyncContext, entity E) (fiscalsync.RemoteRecord, error) {
	remoteID := entity.RemoteID()
	if remoteID == "" {
		return nil, nil
	}
	resp, err := e.gateway.Do(ctx, sc, fiscalsync.Request{
		Method:   http.MethodDelete,
		Endpoint: e.recordEndpoint(remoteID),
	})
	if err != nil {
		return nil, err
	}
	rec, err := optionalRecord(resp)
	if err != nil {
		return nil, err
	}
	if rec.ID() != remoteID || rec.String("status") != "deleted" {
		e.logger.Warn("Remote delete not confirmed", zap.String("remote_id", remoteID))
		return rec, nil
	}

	entity.SetRemoteID("")
	if _, err := e.store.Update(ctx, sc.TenantID, entity.GetID(), fiscalsync.Fields{fiscalsync.FieldRemoteID: nil}); err != nil {
		return rec, err
	}
	e.logger.Info("Remote record deleted", zap.String("remote_id", remoteID))
	return rec, nil
}

// Read fetches the remote counterpart of a linked entity.
func (e *Engine[E]) Read(ctx context.Context, sc fiscalsync.SyncContext, entity E) (fiscalsync.RemoteRecord, error) {
	if entity.RemoteID() == "" {
		return nil, fiscalsync.NewIllegalStateError("Read",
			e.adapter.Name()+" "+entity.GetID().String()+" has not been created remotely", fiscalsync.ErrNotLinked)
	}
	return e.ReadByID(ctx, sc, entity.RemoteID())
}

// ReadByID fetches one remote record.
func (e *Engine[E]) ReadByID(ctx context.Context, sc fiscalsync.SyncContext, remoteID string) (fiscalsync.RemoteRecord, error) {
	return e.read(ctx, sc, remoteID, nil)
}

func (e *Engine[E]) read(ctx context.Context, sc fiscalsync.SyncContext, remoteID string, extra url.Values) (fiscalsync.RemoteRecord, error) {
	query := url.Values{}
	if p, ok := e.adapter.(fiscalsync.ReadParamsProvider); ok {
		for k, v := range p.ReadParams(sc) {
			query[k] = v
		}
	}
	for k, v := range extra {
		query[k] = v
	}
	resp, err := e.gateway.Do(ctx, sc, fiscalsync.Request{
		Method:   http.MethodGet,
		Endpoint: e.recordEndpoint(remoteID),
		Query:    query,
	})
	if err != nil {
		return nil, err
	}
	return resp.Record()
}

// ---------------------------------------------------------------------------
// Collection operations
// ---------------------------------------------------------------------------

// List fetches the whole remote collection as the privileged identity.
func (e *Engine[E]) List(ctx context.Context, sc fiscalsync.SyncContext) ([]fiscalsync.RemoteRecord, error) {
	sys := sc.System()
	var all []fiscalsync.RemoteRecord
	firstIDs := make(map[string]struct{})

	more := true
	for page := 1; more && page <= e.opts.maxPages; page++ {
		resp, err := e.gateway.Do(ctx, sys, fiscalsync.Request{
			Method:   http.MethodGet,
			Endpoint: e.adapter.Endpoint(),
			Query: url.Values{
				"page":     {strconv.Itoa(page)},
				"per_page": {strconv.Itoa(e.opts.pageSize)},
			},
		})
		if err != nil {
			return nil, err
		}
		recs, err := resp.Records()
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			more = false
			break
		}
		// Providers that ignore paging return the same page again.
		first := recs[0].ID()
		if _, seen := firstIDs[first]; seen {
			more = false
			break
		}
		firstIDs[first] = struct{}{}

		all = append(all, recs...)
		more = len(recs) >= e.opts.pageSize
	}
	if more {
		e.logger.Warn("Remote listing stopped at page limit",
			zap.Int("pages", e.opts.maxPages),
			zap.Int("fetched", len(all)),
		)
	}
	return all, nil
}

// ImportAll pulls the remote collection into local storage. Matched records
// are overwritten only when override is set; unmatched records are created
// in one batch. Nothing is rolled back on failure.
func (e *Engine[E]) ImportAll(ctx context.Context, sc fiscalsync.SyncContext, override bool) (ImportResult, error) {
	var result ImportResult

	recs, err := e.List(ctx, sc)
	if err != nil {
		return result, err
	}
	result.Fetched = len(recs)

	var pending []fiscalsync.Fields
	for _, rec := range recs {
		matches, err := e.FindLocalMatch(ctx, sc, rec)
		if err != nil {
			return result, err
		}
		if len(matches) > 0 {
			if !override {
				continue
			}
			fields, err := e.adapter.UpdateFromRemote(sc, matches[0], rec)
			if err != nil {
				return result, err
			}
			if _, err := e.store.Update(ctx, sc.TenantID, matches[0].GetID(), fields); err != nil {
				return result, err
			}
			result.Updated++
			continue
		}

		fields, err := e.adapter.FromRemote(sc, rec)
		if err != nil {
			return result, err
		}
		pending = append(pending, withRemoteID(fields, rec))
	}

	if len(pending) > 0 {
		ids, err := e.store.Create(ctx, sc.TenantID, pending...)
		if err != nil {
			return result, err
		}
		result.Created = len(ids)
	}

	e.logger.Info("Import finished",
		zap.String("tenant_id", sc.TenantID.String()),
		zap.Bool("override", override),
		zap.Int("fetched", result.Fetched),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}

// ImportOne reads a single remote record and stores it locally. An
// existing match is updated instead of duplicated.
func (e *Engine[E]) ImportOne(ctx context.Context, sc fiscalsync.SyncContext, remoteID string) (E, error) {
	var zero E
	rec, err := e.ReadByID(ctx, sc, remoteID)
	if err != nil {
		return zero, err
	}

	matches, err := e.FindLocalMatch(ctx, sc, rec)
	if err != nil {
		return zero, err
	}
	if len(matches) > 0 {
		fields, err := e.adapter.UpdateFromRemote(sc, matches[0], rec)
		if err != nil {
			return zero, err
		}
		if _, err := e.store.Update(ctx, sc.TenantID, matches[0].GetID(), fields); err != nil {
			return zero, err
		}
		return e.store.Get(ctx, sc.TenantID, matches[0].GetID())
	}

	fields, err := e.adapter.FromRemote(sc, rec)
	if err != nil {
		return zero, err
	}
	ids, err := e.store.Create(ctx, sc.TenantID, withRemoteID(fields, rec))
	if err != nil {
		return zero, err
	}
	if len(ids) == 0 {
		return zero, fiscalsync.ErrUnexpectedResponse
	}
	return e.store.Get(ctx, sc.TenantID, ids[0])
}

// FindLocalMatch returns the local records matching rec. Predicates are
// tried in order, empty ones skipped, and the first one with a hit wins.
func (e *Engine[E]) FindLocalMatch(ctx context.Context, sc fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) ([]E, error) {
	for _, pred := range e.adapter.MatchPredicates(rec) {
		if pred.IsEmpty() {
			continue
		}
		found, err := e.store.Find(ctx, sc.TenantID, []fiscalsync.Predicate{pred}, 1)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			e.logger.Debug("Local match", zap.String("remote_id", rec.ID()), zap.Stringer("predicate", pred))
			return found, nil
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (e *Engine[E]) recordEndpoint(remoteID string) string {
	return e.adapter.Endpoint() + url.PathEscape(remoteID) + "/"
}

func withRemoteID(fields fiscalsync.Fields, rec fiscalsync.RemoteRecord) fiscalsync.Fields {
	if fields == nil {
		fields = fiscalsync.Fields{}
	}
	if _, ok := fields[fiscalsync.FieldRemoteID]; !ok && rec.ID() != "" {
		fields[fiscalsync.FieldRemoteID] = rec.ID()
	}
	return fields
}

func optionalRecord(resp *fiscalsync.Response) (fiscalsync.RemoteRecord, error) {
	if len(resp.Body) == 0 {
		return fiscalsync.RemoteRecord{}, nil
	}
	return resp.Record()
}
