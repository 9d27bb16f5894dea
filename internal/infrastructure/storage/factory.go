package storage

import (
	"context"
	"fmt"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	infraconfig "github.com/erp/fiscalsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewDocumentArchive returns the archive selected by cfg.Backend. An S3
// bucket is created on first use when missing.
func NewDocumentArchive(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (fiscalsync.DocumentArchive, error) {
	switch cfg.Backend {
	case "", "memory":
		logger.Info("Using in-memory document archive")
		return NewMemoryDocumentArchive(cfg.Prefix), nil
	case "s3":
		archive, err := NewS3DocumentArchive(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 document archive", zap.String("bucket", cfg.Bucket))
		return archive, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
