package persistence

import (
	"context"
	"fmt"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"gorm.io/gorm"
)

type txKey struct{}

// txState is shared by every repository call inside one Run. Checkpoint
// swaps the transaction, so callers must look it up on every statement.
type txState struct {
	tx *gorm.DB
}

// GormTransactionScope implements fiscalsync.Transactor using GORM
// transactions carried in the context.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

var _ fiscalsync.Transactor = (*GormTransactionScope)(nil)

// Run executes fn within a database transaction. If fn returns an error the
// work done since the last checkpoint is rolled back. A Run inside another
// Run joins the outer transaction.
func (s *GormTransactionScope) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	state := &txState{tx: tx}

	defer func() {
		if p := recover(); p != nil {
			state.tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, state)); err != nil {
		state.tx.Rollback()
		return err
	}
	if err := state.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Checkpoint commits the current transaction and begins a new one in its
// place. Outside Run it does nothing.
func (s *GormTransactionScope) Checkpoint(ctx context.Context) error {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return nil
	}
	if err := state.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	state.tx = s.db.WithContext(ctx).Begin()
	if state.tx.Error != nil {
		return fmt.Errorf("failed to begin transaction after checkpoint: %w", state.tx.Error)
	}
	return nil
}

// conn returns the transaction bound to ctx, or db outside a unit of work.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.tx
	}
	return db.WithContext(ctx)
}
