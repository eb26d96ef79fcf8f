package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vestfolio/backend/internal/domain/shared"
)

type txKey struct{}

// GormTxManager implements shared.TxManager on a GORM connection. The
// transaction handle travels in the context so repositories called inside
// the closure join the same database transaction.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a transaction manager for the given connection
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinTx runs fn inside a single database transaction. Nested calls join
// the enclosing transaction instead of opening a new one.
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

var _ shared.TxManager = (*GormTxManager)(nil)

// dbFrom returns the transaction handle carried by ctx, or the fallback
// connection scoped to ctx when no transaction is open.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}

// forUpdate adds a row lock on dialects that support it. SQLite, used in
// tests, serializes writers on its own and rejects FOR UPDATE syntax.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
