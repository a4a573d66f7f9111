package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// PriceHistoryEntry is one superseded reference price
type PriceHistoryEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemPriceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceDate   time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedBy   string          `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (PriceHistoryEntry) TableName() string {
	return "item_price_history"
}

// ItemPrice holds the reference selling price for an item with an
// append-only history of superseded values
type ItemPrice struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey"`
	ItemCode     string               `gorm:"type:varchar(50);uniqueIndex;not null"`
	Currency     valueobject.Currency `gorm:"type:varchar(3);not null"`
	LatestPrice  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PriceDateUtc time.Time            `gorm:"type:timestamptz;not null"`
	UpdatedBy    string               `gorm:"type:varchar(100);not null"`
	History      []PriceHistoryEntry  `gorm:"foreignKey:ItemPriceID;references:ID"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (ItemPrice) TableName() string {
	return "item_prices"
}

// NewItemPrice creates a reference price record with an empty history
func NewItemPrice(itemCode string, price decimal.Decimal, updatedBy string, at time.Time) (*ItemPrice, error) {
	if itemCode == "" {
		return nil, shared.NewValidationError("Item code cannot be empty")
	}
	if !price.IsPositive() {
		return nil, shared.NewValidationError("Price must be greater than zero")
	}

	return &ItemPrice{
		ID:           uuid.New(),
		ItemCode:     itemCode,
		Currency:     valueobject.DefaultCurrency,
		LatestPrice:  price,
		PriceDateUtc: at,
		UpdatedBy:    updatedBy,
		History:      []PriceHistoryEntry{},
		AuditInfo:    shared.NewAuditInfo(updatedBy, at),
	}, nil
}

// UpdatePrice replaces the latest price, snapshotting the previous value
// into history first
func (p *ItemPrice) UpdatePrice(newPrice decimal.Decimal, updatedBy string, at time.Time) error {
	if !newPrice.IsPositive() {
		return shared.NewValidationError("Price must be greater than zero")
	}

	p.History = append(p.History, PriceHistoryEntry{
		ID:          uuid.New(),
		ItemPriceID: p.ID,
		Price:       p.LatestPrice,
		PriceDate:   p.PriceDateUtc,
		UpdatedBy:   p.UpdatedBy,
	})

	p.LatestPrice = newPrice
	p.PriceDateUtc = at
	p.UpdatedBy = updatedBy
	p.Touch(updatedBy, at)
	return nil
}
