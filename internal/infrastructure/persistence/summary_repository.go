package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
)

// GormSummaryRepository implements inventory.SummaryRepository
type GormSummaryRepository struct {
	db *gorm.DB
}

// NewGormSummaryRepository creates a new GormSummaryRepository
func NewGormSummaryRepository(db *gorm.DB) *GormSummaryRepository {
	return &GormSummaryRepository{db: db}
}

// FindByBranchAndItem finds the summary for one (branch, item) pair
func (r *GormSummaryRepository) FindByBranchAndItem(ctx context.Context, branchCode, itemCode string) (*inventory.InventorySummary, error) {
	var summary inventory.InventorySummary
	err := r.db.WithContext(ctx).Preload("Entries").
		First(&summary, "branch_code = ? AND item_code = ?", branchCode, itemCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// FindByBranch returns all summaries for a branch
func (r *GormSummaryRepository) FindByBranch(ctx context.Context, branchCode string) ([]*inventory.InventorySummary, error) {
	var summaries []*inventory.InventorySummary
	err := r.db.WithContext(ctx).Preload("Entries").
		Where("branch_code = ?", branchCode).
		Order("item_code").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// FindAll returns summaries across all branches
func (r *GormSummaryRepository) FindAll(ctx context.Context) ([]*inventory.InventorySummary, error) {
	var summaries []*inventory.InventorySummary
	err := r.db.WithContext(ctx).Preload("Entries").
		Order("branch_code, item_code").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Save upserts a summary without a version condition. Used only for
// provisioning empty summaries; committed stock always goes through
// SaveWithVersion.
func (r *GormSummaryRepository) Save(ctx context.Context, summary *inventory.InventorySummary) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(summary).Error
}

// SaveWithVersion persists the summary conditioned on the stored version
// still matching the version the caller loaded. A brand-new summary with
// loadedVersion 0 is inserted; any mismatch raises a concurrency error.
func (r *GormSummaryRepository) SaveWithVersion(ctx context.Context, summary *inventory.InventorySummary, loadedVersion int64) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventorySummary{}).
		Where("id = ? AND version = ?", summary.ID, loadedVersion).
		Updates(map[string]interface{}{
			"total_on_hand":   summary.TotalOnHand,
			"total_reserved":  summary.TotalReserved,
			"version":         summary.Version,
			"modified_at_utc": summary.ModifiedAtUtc,
			"modified_by":     summary.ModifiedBy,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&inventory.InventorySummary{}).
			Where("id = ?", summary.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.NewConcurrencyError(fmt.Sprintf(
				"Summary for %s/%s was modified concurrently: expected version %d",
				summary.BranchCode, summary.ItemCode, loadedVersion))
		}
		// First write for a freshly created summary. Two commits can race
		// to insert the same (branch, item) row; the loser trips the unique
		// index and is reported as a version conflict so the caller retries.
		if err := r.db.WithContext(ctx).Omit("Entries").Create(summary).Error; err != nil {
			if isDuplicateKey(err) {
				return shared.NewConcurrencyError(fmt.Sprintf(
					"Summary for %s/%s was created concurrently",
					summary.BranchCode, summary.ItemCode))
			}
			return err
		}
	}

	// Entries are few per summary; replace them wholesale.
	if err := r.db.WithContext(ctx).
		Where("summary_id = ?", summary.ID).
		Delete(&inventory.InventoryEntry{}).Error; err != nil {
		return err
	}
	if len(summary.Entries) > 0 {
		if err := r.db.WithContext(ctx).Create(&summary.Entries).Error; err != nil {
			return err
		}
	}
	return nil
}

// isDuplicateKey reports whether err is a unique-constraint violation. gorm
// translates these for some drivers; the raw postgres (23505) and sqlite
// messages are matched as a fallback.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

var _ inventory.SummaryRepository = (*GormSummaryRepository)(nil)
