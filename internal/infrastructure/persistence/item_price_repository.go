package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
)

// GormItemPriceRepository implements inventory.ItemPriceRepository
type GormItemPriceRepository struct {
	db *gorm.DB
}

// NewGormItemPriceRepository creates a new GormItemPriceRepository
func NewGormItemPriceRepository(db *gorm.DB) *GormItemPriceRepository {
	return &GormItemPriceRepository{db: db}
}

// FindByItemCode finds the reference price for an item, history included
func (r *GormItemPriceRepository) FindByItemCode(ctx context.Context, itemCode string) (*inventory.ItemPrice, error) {
	var price inventory.ItemPrice
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("price_date") }).
		First(&price, "item_code = ?", itemCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// FindAll returns all reference prices
func (r *GormItemPriceRepository) FindAll(ctx context.Context) ([]*inventory.ItemPrice, error) {
	var prices []*inventory.ItemPrice
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("price_date") }).
		Order("item_code").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// Save upserts a reference price together with its history
func (r *GormItemPriceRepository) Save(ctx context.Context, price *inventory.ItemPrice) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(price).Error
}

var _ inventory.ItemPriceRepository = (*GormItemPriceRepository)(nil)
