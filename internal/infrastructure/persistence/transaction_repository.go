package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
)

// GormTransactionRepository implements inventory.TransactionRepository
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by ID, lines included
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryTransaction, error) {
	var tx inventory.InventoryTransaction
	err := r.db.WithContext(ctx).Preload("Lines").First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByNumber finds a transaction by its human-readable number
func (r *GormTransactionRepository) FindByNumber(ctx context.Context, number string) (*inventory.InventoryTransaction, error) {
	var tx inventory.InventoryTransaction
	err := r.db.WithContext(ctx).Preload("Lines").First(&tx, "transaction_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// Find returns transactions matching the filter, newest first
func (r *GormTransactionRepository) Find(ctx context.Context, filter inventory.TransactionFilter) ([]*inventory.InventoryTransaction, error) {
	query := r.db.WithContext(ctx).Preload("Lines")

	if filter.BranchCode != nil {
		query = query.Where("branch_code = ?", *filter.BranchCode)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromUtc != nil {
		query = query.Where("transaction_date_utc >= ?", *filter.FromUtc)
	}
	if filter.ToUtc != nil {
		query = query.Where("transaction_date_utc <= ?", *filter.ToUtc)
	}

	var txs []*inventory.InventoryTransaction
	if err := query.Order("transaction_date_utc DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Save upserts a transaction together with its lines
func (r *GormTransactionRepository) Save(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(tx).Error
}

var _ inventory.TransactionRepository = (*GormTransactionRepository)(nil)
