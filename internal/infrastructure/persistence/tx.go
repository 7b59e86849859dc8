package persistence

import (
	"context"

	"github.com/boardpay/backend/internal/domain/billing"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager runs a unit of work inside one database
// transaction. The transactional handle is carried through the context
// so repositories participate without knowing whether a transaction is
// open.
type GormTransactionManager struct {
	db *gorm.DB
}

var _ billing.TransactionManager = (*GormTransactionManager)(nil)

// NewGormTransactionManager creates a transaction manager over the given connection
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction executes fn inside a transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transactional handle carried by the context, or
// the repository's own connection when no transaction is open.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
