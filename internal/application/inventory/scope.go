package inventory

import (
	"context"

	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/sales"
)

// SequenceGenerator hands out atomically incrementing counters keyed by
// name. When obtained from a TransactionScope the increment participates in
// the surrounding database transaction.
type SequenceGenerator interface {
	// NextValue returns the next value of the named sequence, creating the
	// sequence at 1 on first use.
	NextValue(ctx context.Context, name string) (int64, error)
}

// TransactionScope provides transactional access to the repositories touched
// by a commit or a sale posting. All repository operations performed inside
// Execute belong to one database transaction and commit or roll back
// together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped to
// the current transaction.
//
// Aggregate boundary notes:
//   - TransactionRepo: the InventoryTransaction aggregate; lines are child
//     entities persisted via association handling when the root is saved.
//   - SummaryRepo: the InventorySummary aggregate; its SaveWithVersion is
//     the only write path used inside a commit, so every stock mutation is
//     guarded by the version compare-and-set.
//   - SaleRepo: the Sale aggregate, only touched by sale posting.
//   - Sequences: sale-number counters, incremented inside the same
//     transaction as the sale write.
type TransactionalRepositories interface {
	TransactionRepo() inventory.TransactionRepository
	SummaryRepo() inventory.SummaryRepository
	SaleRepo() sales.SaleRepository
	Sequences() SequenceGenerator
}

// NoOpTransactionScope runs the function without a real transaction. Useful
// in tests where the repositories are in-memory fakes.
type NoOpTransactionScope struct {
	transactionRepo inventory.TransactionRepository
	summaryRepo     inventory.SummaryRepository
	saleRepo        sales.SaleRepository
	sequences       SequenceGenerator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo inventory.TransactionRepository,
	summaryRepo inventory.SummaryRepository,
	saleRepo sales.SaleRepository,
	sequences SequenceGenerator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		summaryRepo:     summaryRepo,
		saleRepo:        saleRepo,
		sequences:       sequences,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransactionRepo returns the inventory transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() inventory.TransactionRepository {
	return s.transactionRepo
}

// SummaryRepo returns the inventory summary repository.
func (s *NoOpTransactionScope) SummaryRepo() inventory.SummaryRepository {
	return s.summaryRepo
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository {
	return s.saleRepo
}

// Sequences returns the sequence generator.
func (s *NoOpTransactionScope) Sequences() SequenceGenerator {
	return s.sequences
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
