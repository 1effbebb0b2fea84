package repository

import (
	"context"

	"gorm.io/gorm"
)

// txContextKey carries an open transaction through the context so that every
// repository call inside RunInTx joins it without new plumbing.
type txContextKey struct{}

// TransactionManager groups multi-repository writes into a single database
// transaction. Quote creation depends on it: the quote number allocation and
// the insert must commit or roll back together, or numbers get burned.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

func (m *gormTransactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// GetDB returns the transaction bound to ctx when called inside RunInTx and
// the root handle otherwise, so repositories never care which one they run on.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
