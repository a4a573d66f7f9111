package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/henrytires/backend/internal/domain/shared"
)

// Classification separates stock-tracked goods from revenue-only services
type Classification string

const (
	// ClassificationGood is a physical item tracked in inventory (tires)
	ClassificationGood Classification = "Good"
	// ClassificationService is labor or a fee with no stock effect
	ClassificationService Classification = "Service"
)

// String returns the string representation of the classification
func (c Classification) String() string {
	return string(c)
}

// IsValid returns true if the classification is valid
func (c Classification) IsValid() bool {
	return c == ClassificationGood || c == ClassificationService
}

// Item is a sellable catalog entry identified by its item code
type Item struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ItemCode       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description    string         `gorm:"type:varchar(255);not null"`
	Classification Classification `gorm:"type:varchar(10);not null"`
	Notes          string         `gorm:"type:varchar(500)"`
	IsActive       bool           `gorm:"not null;default:true"`
	IsDeleted      bool           `gorm:"not null;default:false"`
	DeletedAtUtc   *time.Time     `gorm:"type:timestamptz"`
	DeletedBy      *string        `gorm:"type:varchar(100)"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates an active catalog item
func NewItem(itemCode, description string, classification Classification, by string, at time.Time) (*Item, error) {
	if itemCode == "" {
		return nil, shared.NewValidationError("Item code cannot be empty")
	}
	if description == "" {
		return nil, shared.NewValidationError("Description cannot be empty")
	}
	if !classification.IsValid() {
		return nil, shared.NewValidationError("Invalid classification: " + string(classification))
	}
	return &Item{
		ID:             uuid.New(),
		ItemCode:       itemCode,
		Description:    description,
		Classification: classification,
		IsActive:       true,
		AuditInfo:      shared.NewAuditInfo(by, at),
	}, nil
}

// IsGood reports whether the item is stock-tracked
func (i *Item) IsGood() bool {
	return i.Classification == ClassificationGood
}

// SoftDelete marks the item deleted without removing its history
func (i *Item) SoftDelete(by string, at time.Time) error {
	if i.IsDeleted {
		return shared.NewInvalidStateError("Item " + i.ItemCode + " is already deleted")
	}
	i.IsDeleted = true
	i.IsActive = false
	i.DeletedAtUtc = &at
	i.DeletedBy = &by
	i.Touch(by, at)
	return nil
}
