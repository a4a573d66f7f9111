package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/henrytires/backend/internal/domain/shared"
)

// InventoryEntry tracks on-hand and reserved stock for one condition of an
// item at a branch. Entries only exist once stock of that condition has been
// touched by a committed transaction.
type InventoryEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SummaryID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Condition  Condition `gorm:"type:varchar(10);not null"`
	OnHand     int       `gorm:"not null;default:0"`
	Reserved   int       `gorm:"not null;default:0"`
	UpdatedUtc time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (InventoryEntry) TableName() string {
	return "inventory_entries"
}

// Available returns the sellable quantity for this entry
func (e *InventoryEntry) Available() int {
	return e.OnHand - e.Reserved
}

// InventorySummary is the per-branch, per-item stock position. It is only
// ever mutated by applying committed transactions, and carries a version
// counter for optimistic concurrency control.
type InventorySummary struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	BranchCode    string           `gorm:"type:varchar(30);not null;uniqueIndex:idx_summary_branch_item"`
	ItemCode      string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_summary_branch_item"`
	TotalOnHand   int              `gorm:"not null;default:0"`
	TotalReserved int              `gorm:"not null;default:0"`
	Version       int64            `gorm:"not null;default:0"`
	Entries       []InventoryEntry `gorm:"foreignKey:SummaryID;references:ID"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (InventorySummary) TableName() string {
	return "inventory_summaries"
}

// NewInventorySummary creates an empty summary at version 0. The first
// applied transaction moves it to version 1.
func NewInventorySummary(branchCode, itemCode, createdBy string, createdAt time.Time) (*InventorySummary, error) {
	if branchCode == "" {
		return nil, shared.NewValidationError("Branch code cannot be empty")
	}
	if itemCode == "" {
		return nil, shared.NewValidationError("Item code cannot be empty")
	}

	return &InventorySummary{
		ID:         uuid.New(),
		BranchCode: branchCode,
		ItemCode:   itemCode,
		Version:    0,
		Entries:    []InventoryEntry{},
		AuditInfo:  shared.NewAuditInfo(createdBy, createdAt),
	}, nil
}

// entryFor returns the entry for the given condition, creating a zeroed one
// on first touch
func (s *InventorySummary) entryFor(condition Condition, at time.Time) *InventoryEntry {
	for i := range s.Entries {
		if s.Entries[i].Condition == condition {
			return &s.Entries[i]
		}
	}
	s.Entries = append(s.Entries, InventoryEntry{
		ID:         uuid.New(),
		SummaryID:  s.ID,
		Condition:  condition,
		UpdatedUtc: at,
	})
	return &s.Entries[len(s.Entries)-1]
}

// EntryFor returns the entry for the given condition, or nil if stock of
// that condition has never been touched
func (s *InventorySummary) EntryFor(condition Condition) *InventoryEntry {
	for i := range s.Entries {
		if s.Entries[i].Condition == condition {
			return &s.Entries[i]
		}
	}
	return nil
}

// OnHand returns the on-hand quantity for the given condition
func (s *InventorySummary) OnHand(condition Condition) int {
	if e := s.EntryFor(condition); e != nil {
		return e.OnHand
	}
	return 0
}

// Available returns the sellable quantity for the given condition
func (s *InventorySummary) Available(condition Condition) int {
	if e := s.EntryFor(condition); e != nil {
		return e.Available()
	}
	return 0
}

// ApplyTransaction folds a committed transaction into this summary. Only the
// transaction's lines for this summary's item code participate. In adds to
// on-hand, Out subtracts and rejects any line that would drive on-hand
// negative, Adjust sets the absolute on-hand quantity. On success the totals
// are recomputed and the version is incremented exactly once.
func (s *InventorySummary) ApplyTransaction(tx *InventoryTransaction, appliedBy string, appliedAt time.Time) error {
	if tx == nil {
		return shared.NewValidationError("Transaction cannot be nil")
	}
	if tx.Status != StatusCommitted {
		return shared.NewInvalidStateError(fmt.Sprintf(
			"Cannot apply transaction with status %s. Only Committed transactions mutate stock.", tx.Status))
	}
	if tx.BranchCode != s.BranchCode {
		return shared.NewValidationError(fmt.Sprintf(
			"Transaction branch %s does not match summary branch %s", tx.BranchCode, s.BranchCode))
	}

	applied := false
	for _, line := range tx.Lines {
		if line.ItemCode != s.ItemCode {
			continue
		}

		entry := s.entryFor(line.Condition, appliedAt)
		switch tx.Type {
		case TransactionTypeIn:
			entry.OnHand += line.Quantity
		case TransactionTypeOut:
			if entry.OnHand-line.Quantity < 0 {
				return shared.NewInvalidStateError(fmt.Sprintf(
					"Insufficient stock for item %s (%s) at branch %s: on hand %d, requested %d",
					s.ItemCode, line.Condition, s.BranchCode, entry.OnHand, line.Quantity))
			}
			entry.OnHand -= line.Quantity
		case TransactionTypeAdjust:
			entry.OnHand = line.Quantity
		default:
			return shared.NewValidationError("Invalid transaction type: " + string(tx.Type))
		}
		entry.UpdatedUtc = tx.TransactionDateUtc
		applied = true
	}

	if !applied {
		return nil
	}

	s.recalculateTotals()
	s.Version++
	s.Touch(appliedBy, appliedAt)
	return nil
}

func (s *InventorySummary) recalculateTotals() {
	onHand, reserved := 0, 0
	for i := range s.Entries {
		onHand += s.Entries[i].OnHand
		reserved += s.Entries[i].Reserved
	}
	s.TotalOnHand = onHand
	s.TotalReserved = reserved
}
