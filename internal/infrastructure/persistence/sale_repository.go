package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henrytires/backend/internal/domain/sales"
	"github.com/henrytires/backend/internal/domain/shared"
)

// GormSaleRepository implements sales.SaleRepository
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by ID, lines included
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).Preload("Lines").First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByNumber finds a sale by its human-readable number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, saleNumber string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).Preload("Lines").First(&sale, "sale_number = ?", saleNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// Find returns sales matching the filter, newest first
func (r *GormSaleRepository) Find(ctx context.Context, filter sales.SaleFilter) ([]*sales.Sale, error) {
	query := r.db.WithContext(ctx).Preload("Lines")

	if filter.BranchCode != nil {
		query = query.Where("branch_code = ?", *filter.BranchCode)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromUtc != nil {
		query = query.Where("sale_date_utc >= ?", *filter.FromUtc)
	}
	if filter.ToUtc != nil {
		query = query.Where("sale_date_utc <= ?", *filter.ToUtc)
	}

	var found []*sales.Sale
	if err := query.Order("sale_date_utc DESC").Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// Save upserts a sale together with its lines
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(sale).Error
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
