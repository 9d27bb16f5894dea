package fiscalsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Syncable
// ---------------------------------------------------------------------------

// Syncable is a local record that may be linked to a provider record.
type Syncable interface {
	GetID() uuid.UUID
	RemoteID() string
	SetRemoteID(id string)
}

// SyncState holds the provider link of a local record. An empty remote id
// means the record has never been synchronized.
type SyncState struct {
	remoteID string
}

// RemoteID returns the provider id, "" when unlinked.
func (s *SyncState) RemoteID() string { return s.remoteID }

// SetRemoteID links or unlinks the record.
func (s *SyncState) SetRemoteID(id string) { s.remoteID = id }

// IsLinked reports whether the record carries a provider id.
func (s *SyncState) IsLinked() bool { return s.remoteID != "" }

// ---------------------------------------------------------------------------
// Adapter
// ---------------------------------------------------------------------------

// Adapter maps one local entity type to its provider collection. Every
// method is pure: no I/O, no mutation of the entity.
type Adapter[E Syncable] interface {
	// Name is the collection name used in logs, locks and routes.
	Name() string
	// Endpoint is the provider path relative to the API root, e.g. "clients/".
	Endpoint() string
	ToCreatePayload(sc SyncContext, e E) (Payload, error)
	ToUpdatePayload(sc SyncContext, e E) (Payload, error)
	// FromRemote returns the fields of a new local record, including the
	// remote id.
	FromRemote(sc SyncContext, rec RemoteRecord) (Fields, error)
	// UpdateFromRemote returns the fields to overwrite on an existing match.
	UpdateFromRemote(sc SyncContext, e E, rec RemoteRecord) (Fields, error)
	// MatchPredicates returns the ordered predicates tried when looking for
	// the local counterpart of rec.
	MatchPredicates(rec RemoteRecord) []Predicate
}

// ReadParamsProvider is implemented by adapters that send query
// parameters on single-record reads.
type ReadParamsProvider interface {
	ReadParams(sc SyncContext) url.Values
}

// NaturalKeyed is implemented by adapters whose records the provider can
// create inline inside a parent document.
type NaturalKeyed[E Syncable] interface {
	// HasNaturalKey reports whether inline creation is safe for e. When it
	// is not, the record must be created and committed before use.
	HasNaturalKey(e E) bool
	InlinePayload(sc SyncContext, e E) (Payload, error)
}

// OverrideDefaulter is implemented by adapters whose imports overwrite
// matched records unless told otherwise.
type OverrideDefaulter interface {
	DefaultOverride() bool
}

// BaseAdapter provides the identity of an adapter and loud failures for
// the operations an entity type does not support.
type BaseAdapter[E Syncable] struct {
	Entity string
	Path   string
}

func (a BaseAdapter[E]) Name() string     { return a.Entity }
func (a BaseAdapter[E]) Endpoint() string { return a.Path }

func (a BaseAdapter[E]) ToCreatePayload(SyncContext, E) (Payload, error) {
	return nil, NotImplemented(a.Entity, "ToCreatePayload")
}

func (a BaseAdapter[E]) ToUpdatePayload(SyncContext, E) (Payload, error) {
	return nil, NotImplemented(a.Entity, "ToUpdatePayload")
}

func (a BaseAdapter[E]) FromRemote(SyncContext, RemoteRecord) (Fields, error) {
	return nil, NotImplemented(a.Entity, "FromRemote")
}

func (a BaseAdapter[E]) UpdateFromRemote(SyncContext, E, RemoteRecord) (Fields, error) {
	return nil, NotImplemented(a.Entity, "UpdateFromRemote")
}

func (a BaseAdapter[E]) MatchPredicates(rec RemoteRecord) []Predicate {
	return DefaultMatchPredicates(rec)
}

// ---------------------------------------------------------------------------
// Persistence ports
// ---------------------------------------------------------------------------

// Store is the tenant-scoped persistence used by reconciliation.
type Store[E Syncable] interface {
	Find(ctx context.Context, tenantID uuid.UUID, predicates []Predicate, limit int) ([]E, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (E, error)
	// Create inserts every row in one batch and returns the new ids.
	Create(ctx context.Context, tenantID uuid.UUID, rows ...Fields) ([]uuid.UUID, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, fields Fields) (bool, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// Transactor controls units of work.
type Transactor interface {
	// Run executes fn in a unit of work committed when fn succeeds.
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	// Checkpoint durably commits everything written so far in the current
	// unit of work and continues in a new one. Outside Run it does nothing.
	Checkpoint(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Remote gateway
// ---------------------------------------------------------------------------

// Request is a single provider call.
type Request struct {
	Method   string
	Endpoint string
	Body     Payload
	Query    url.Values
}

// Response is the decoded outcome of a successful provider call.
type Response struct {
	StatusCode int
	// Body holds the raw JSON document.
	Body json.RawMessage
	// Binary holds base64 content when the provider answered with non-JSON.
	Binary string
}

// IsBinary reports whether the provider returned non-JSON content.
func (r *Response) IsBinary() bool {
	return r.Binary != "" && len(r.Body) == 0
}

// Record decodes the body as a single object.
func (r *Response) Record() (RemoteRecord, error) {
	if r.IsBinary() {
		return nil, fmt.Errorf("%w: non-json body", ErrUnexpectedResponse)
	}
	if len(r.Body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedResponse)
	}
	var rec RemoteRecord
	if err := decodeJSON(r.Body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return rec, nil
}

// Records decodes the body as a list of objects. A single object is
// returned as a one-element list.
func (r *Response) Records() ([]RemoteRecord, error) {
	if r.IsBinary() {
		return nil, fmt.Errorf("%w: non-json body", ErrUnexpectedResponse)
	}
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '{' {
		rec, err := r.Record()
		if err != nil {
			return nil, err
		}
		return []RemoteRecord{rec}, nil
	}
	var recs []RemoteRecord
	if err := decodeJSON(body, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return recs, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// RemoteGateway issues authenticated requests to the provider.
type RemoteGateway interface {
	Do(ctx context.Context, sc SyncContext, req Request) (*Response, error)
}

// ---------------------------------------------------------------------------
// Supporting ports
// ---------------------------------------------------------------------------

// DocumentArchive stores certified PDFs returned by the provider.
type DocumentArchive interface {
	Save(ctx context.Context, tenantID uuid.UUID, name string, content []byte) (string, error)
}

// ImportLock is a held import lock.
type ImportLock interface {
	Release(ctx context.Context) error
}

// ImportLocker serializes imports of the same collection. Acquire fails
// with ErrImportInProgress when the key is already held.
type ImportLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ImportLock, error)
}
