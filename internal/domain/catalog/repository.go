package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository provides access to catalog items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByCode(ctx context.Context, itemCode string) (*Item, error)
	FindAll(ctx context.Context, includeDeleted bool) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
}

// BranchRepository provides access to branches
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	FindByCode(ctx context.Context, code string) (*Branch, error)
	FindAll(ctx context.Context) ([]*Branch, error)
	Save(ctx context.Context, branch *Branch) error
}
