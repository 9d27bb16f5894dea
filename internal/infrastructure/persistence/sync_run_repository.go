package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSyncRunRepository implements fiscalsync.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

var _ fiscalsync.SyncRunRepository = (*GormSyncRunRepository)(nil)

// Save creates or updates a sync run. Runs are written outside any unit of
// work so they survive a rolled back import.
func (r *GormSyncRunRepository) Save(ctx context.Context, run *fiscalsync.SyncRun) error {
	model := &models.SyncRunModel{}
	model.FromDomain(run)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}
	return nil
}

// FindByID finds a sync run by ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscalsync.SyncRun, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns the runs of a tenant, optionally limited to one entity, with
// the total count before pagination.
func (r *GormSyncRunRepository) List(ctx context.Context, tenantID uuid.UUID, entity string, filter shared.Filter) ([]fiscalsync.SyncRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncRunModel{}).
		Where("tenant_id = ?", tenantID)
	if entity != "" {
		query = query.Where("entity = ?", entity)
	}
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, SyncRunSortFields, "started_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var runModels []models.SyncRunModel
	if err := query.Find(&runModels).Error; err != nil {
		return nil, 0, err
	}
	runs := make([]fiscalsync.SyncRun, len(runModels))
	for i := range runModels {
		runs[i] = *runModels[i].ToDomain()
	}
	return runs, total, nil
}
