package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentStore is the store of fiscal documents, lines included.
type DocumentStore = GormStore[*fiscalsync.Document, models.DocumentModel, *models.DocumentModel]

// GormDocumentRepository implements fiscalsync.DocumentRepository and the
// document store used by the sync engine.
type GormDocumentRepository struct {
	*DocumentStore
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) (*GormDocumentRepository, error) {
	store, err := NewGormStore[*fiscalsync.Document, models.DocumentModel](db, WithPreload("Lines", "sequence ASC"))
	if err != nil {
		return nil, err
	}
	return &GormDocumentRepository{DocumentStore: store, db: db}, nil
}

var (
	_ fiscalsync.DocumentRepository          = (*GormDocumentRepository)(nil)
	_ fiscalsync.Store[*fiscalsync.Document] = (*GormDocumentRepository)(nil)
)

// FindByID returns a document with its lines ordered by sequence.
func (r *GormDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscalsync.Document, error) {
	return r.Get(ctx, tenantID, id)
}

// Insert stores a new document and its lines.
func (r *GormDocumentRepository) Insert(ctx context.Context, doc *fiscalsync.Document) error {
	model := &models.DocumentModel{}
	model.FromDomain(doc)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	for i := range model.Lines {
		doc.Lines[i].ID = model.Lines[i].ID
	}
	return nil
}

// Save writes the header columns that change while a document is issued.
// Lines are left untouched.
func (r *GormDocumentRepository) Save(ctx context.Context, doc *fiscalsync.Document) error {
	result := conn(ctx, r.db).Model(&models.DocumentModel{}).
		Scopes(tenantScope(doc.TenantID)).
		Where("id = ?", doc.ID).
		Updates(map[string]any{
			"status":      doc.Status,
			"remote_id":   models.RemoteIDValue(doc.RemoteID()),
			"number":      doc.Number,
			"archive_key": doc.ArchiveKey,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
