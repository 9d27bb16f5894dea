package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownColumn is returned when a predicate or field names a column the
// model does not have.
var ErrUnknownColumn = errors.New("persistence: unknown column")

// readOnlyColumns are never written from adapter fields.
var readOnlyColumns = map[string]bool{
	"id":         true,
	"tenant_id":  true,
	"created_at": true,
}

// domainModel is the pointer type of a persistence model that converts to E.
type domainModel[E any, M any] interface {
	*M
	ToDomain() E
}

// GormStore implements fiscalsync.Store for one synchronized model. Column
// names are taken from the model schema and anything else is rejected.
type GormStore[E fiscalsync.Syncable, M any, PM domainModel[E, M]] struct {
	db       *gorm.DB
	table    string
	columns  map[string]bool
	preloads []preload
}

type preload struct {
	name  string
	order string
}

// StoreOption configures a GormStore
type StoreOption func(*storeOptions)

type storeOptions struct {
	preloads []preload
}

// WithPreload loads an association with every read, ordered by order.
func WithPreload(name, order string) StoreOption {
	return func(o *storeOptions) {
		o.preloads = append(o.preloads, preload{name: name, order: order})
	}
}

// NewGormStore creates a store for model M.
func NewGormStore[E fiscalsync.Syncable, M any, PM domainModel[E, M]](db *gorm.DB, opts ...StoreOption) (*GormStore[E, M, PM], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(M)); err != nil {
		return nil, fmt.Errorf("failed to parse model schema: %w", err)
	}
	columns := make(map[string]bool, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		columns[name] = true
	}
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &GormStore[E, M, PM]{
		db:       db,
		table:    stmt.Schema.Table,
		columns:  columns,
		preloads: o.preloads,
	}, nil
}

// Table returns the table the store reads and writes
func (s *GormStore[E, M, PM]) Table() string {
	return s.table
}

// Find returns records of the tenant matching every predicate.
func (s *GormStore[E, M, PM]) Find(ctx context.Context, tenantID uuid.UUID, predicates []fiscalsync.Predicate, limit int) ([]E, error) {
	query := s.read(ctx).Scopes(tenantScope(tenantID))
	for _, p := range predicates {
		cond, err := s.condition(p)
		if err != nil {
			return nil, err
		}
		query = query.Where(cond)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []M
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	result := make([]E, len(rows))
	for i := range rows {
		result[i] = PM(&rows[i]).ToDomain()
	}
	return result, nil
}

// Get returns one record, shared.ErrNotFound when it does not exist.
func (s *GormStore[E, M, PM]) Get(ctx context.Context, tenantID, id uuid.UUID) (E, error) {
	var zero E
	var row M
	err := s.read(ctx).Scopes(tenantScope(tenantID)).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.ErrNotFound
		}
		return zero, fmt.Errorf("failed to get %s: %w", s.table, err)
	}
	return PM(&row).ToDomain(), nil
}

// Create inserts every row with one statement and returns the new ids in
// row order.
func (s *GormStore[E, M, PM]) Create(ctx context.Context, tenantID uuid.UUID, rows ...fiscalsync.Fields) ([]uuid.UUID, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	now := time.Now()
	ids := make([]uuid.UUID, len(rows))
	records := make([]map[string]any, len(rows))
	for i, fields := range rows {
		values, err := s.values(fields)
		if err != nil {
			return nil, err
		}
		ids[i] = uuid.New()
		values["id"] = ids[i]
		values["tenant_id"] = tenantID
		values["created_at"] = now
		values["updated_at"] = now
		records[i] = values
	}
	if err := conn(ctx, s.db).Model(new(M)).Create(records).Error; err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.table, err)
	}
	return ids, nil
}

// Update writes fields to one record and reports whether it existed.
func (s *GormStore[E, M, PM]) Update(ctx context.Context, tenantID, id uuid.UUID, fields fiscalsync.Fields) (bool, error) {
	values, err := s.values(fields)
	if err != nil {
		return false, err
	}
	values["updated_at"] = time.Now()
	result := conn(ctx, s.db).Model(new(M)).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update %s: %w", s.table, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete removes one record and reports whether it existed.
func (s *GormStore[E, M, PM]) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	result := conn(ctx, s.db).Scopes(tenantScope(tenantID)).Where("id = ?", id).Delete(new(M))
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete %s: %w", s.table, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore[E, M, PM]) read(ctx context.Context) *gorm.DB {
	query := conn(ctx, s.db).Model(new(M))
	for _, p := range s.preloads {
		order := p.order
		query = query.Preload(p.name, func(db *gorm.DB) *gorm.DB {
			if order == "" {
				return db
			}
			return db.Order(order)
		})
	}
	return query
}

func (s *GormStore[E, M, PM]) condition(p fiscalsync.Predicate) (clause.Expression, error) {
	if !s.columns[p.Field] {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.table, p.Field)
	}
	col := clause.Column{Name: p.Field}
	switch p.Operator {
	case fiscalsync.OpEquals:
		return clause.Eq{Column: col, Value: p.Value}, nil
	case fiscalsync.OpILike:
		return clause.Expr{SQL: "LOWER(?) = LOWER(?)", Vars: []any{col, p.Value}}, nil
	}
	return nil, fmt.Errorf("persistence: unsupported operator %q", p.Operator)
}

// values validates field names and maps an empty remote id to NULL.
func (s *GormStore[E, M, PM]) values(fields fiscalsync.Fields) (map[string]any, error) {
	values := make(map[string]any, len(fields)+4)
	for name, value := range fields {
		if !s.columns[name] || readOnlyColumns[name] {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.table, name)
		}
		if name == fiscalsync.FieldRemoteID {
			value = remoteIDColumn(value)
		}
		values[name] = value
	}
	return values, nil
}

func remoteIDColumn(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if ptr := models.RemoteIDValue(v); ptr != nil {
			return *ptr
		}
		return nil
	case *string:
		if v == nil {
			return nil
		}
		return remoteIDColumn(*v)
	}
	return fmt.Sprint(value)
}

// tenantScope restricts a query to one tenant.
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
