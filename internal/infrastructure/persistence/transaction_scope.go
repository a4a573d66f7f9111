package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/henrytires/backend/internal/application/inventory"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/sales"
)

// GormTransactionScope implements the atomic scope over a GORM transaction.
// Everything done through the repositories handed to the closure commits or
// rolls back as one unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// TransactionRepo returns the transaction repository scoped to the current transaction
func (r *gormTransactionalRepositories) TransactionRepo() inventory.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// SummaryRepo returns the summary repository scoped to the current transaction
func (r *gormTransactionalRepositories) SummaryRepo() inventory.SummaryRepository {
	return NewGormSummaryRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the current transaction
func (r *gormTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Sequences returns the sequence generator scoped to the current transaction
func (r *gormTransactionalRepositories) Sequences() appinv.SequenceGenerator {
	return NewGormSequenceGenerator(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
