package fiscalsync

import (
	"context"
	"fmt"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// Resolver turns a local record into the reference embedded in a parent
// document payload.
type Resolver[E fiscalsync.Syncable] struct {
	engine *Engine[E]
	keyed  fiscalsync.NaturalKeyed[E]
}

// NewResolver creates a resolver. The engine's adapter must be able to
// describe its natural key.
func NewResolver[E fiscalsync.Syncable](engine *Engine[E]) (*Resolver[E], error) {
	keyed, ok := engine.Adapter().(fiscalsync.NaturalKeyed[E])
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be embedded in documents", fiscalsync.ErrNotImplemented, engine.Adapter().Name())
	}
	return &Resolver[E]{engine: engine, keyed: keyed}, nil
}

// Engine returns the engine the resolver creates records with
func (r *Resolver[E]) Engine() *Engine[E] {
	return r.engine
}

// Resolve returns {"id": remote_id} for linked records. Records without a
// natural key are created and committed first, since the provider would
// give no way to find them again. Anything else is returned as an inline
// creation payload without an id.
func (r *Resolver[E]) Resolve(ctx context.Context, sc fiscalsync.SyncContext, entity E) (fiscalsync.Payload, error) {
	if id := entity.RemoteID(); id != "" {
		return fiscalsync.Payload{"id": id}, nil
	}
	if !r.keyed.HasNaturalKey(entity) {
		id, err := r.engine.CreateAndCheckpoint(ctx, sc, entity)
		if err != nil {
			return nil, err
		}
		return fiscalsync.Payload{"id": id}, nil
	}
	payload, err := r.keyed.InlinePayload(sc, entity)
	if err != nil {
		return nil, err
	}
	payload = fiscalsync.Sanitize(payload)
	delete(payload, "id")
	return payload, nil
}
