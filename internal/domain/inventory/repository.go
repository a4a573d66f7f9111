package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionFilter narrows transaction queries
type TransactionFilter struct {
	BranchCode *string
	Type       *TransactionType
	Status     *TransactionStatus
	FromUtc    *time.Time
	ToUtc      *time.Time
}

// TransactionRepository persists inventory transactions
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryTransaction, error)
	FindByNumber(ctx context.Context, number string) (*InventoryTransaction, error)
	Find(ctx context.Context, filter TransactionFilter) ([]*InventoryTransaction, error)
	Save(ctx context.Context, tx *InventoryTransaction) error
}

// SummaryRepository persists inventory summaries. SaveWithVersion performs a
// compare-and-set on the version the caller loaded and returns a concurrency
// error when another writer got there first.
type SummaryRepository interface {
	FindByBranchAndItem(ctx context.Context, branchCode, itemCode string) (*InventorySummary, error)
	FindByBranch(ctx context.Context, branchCode string) ([]*InventorySummary, error)
	FindAll(ctx context.Context) ([]*InventorySummary, error)
	Save(ctx context.Context, summary *InventorySummary) error
	SaveWithVersion(ctx context.Context, summary *InventorySummary, loadedVersion int64) error
}

// ItemPriceRepository persists reference prices
type ItemPriceRepository interface {
	FindByItemCode(ctx context.Context, itemCode string) (*ItemPrice, error)
	FindAll(ctx context.Context) ([]*ItemPrice, error)
	Save(ctx context.Context, price *ItemPrice) error
}
