package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleFilter narrows sale queries
type SaleFilter struct {
	BranchCode *string
	Status     *SaleStatus
	FromUtc    *time.Time
	ToUtc      *time.Time
}

// SaleRepository persists sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByNumber(ctx context.Context, saleNumber string) (*Sale, error)
	Find(ctx context.Context, filter SaleFilter) ([]*Sale, error)
	Save(ctx context.Context, sale *Sale) error
}
