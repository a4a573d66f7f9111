package persistence

import (
	"context"

	"gorm.io/gorm"
)

// SequenceRecord is one named counter row
type SequenceRecord struct {
	Name  string `gorm:"primaryKey;type:varchar(100)"`
	Value int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceRecord) TableName() string {
	return "sequences"
}

// GormSequenceGenerator hands out atomically incrementing counters backed by
// a single-row upsert. When constructed over a transaction-scoped *gorm.DB
// the increment participates in that transaction.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// NextValue returns the next value of the named sequence, creating the
// sequence at 1 on first use. The upsert-increment is a single atomic
// statement, safe under concurrent callers.
func (g *GormSequenceGenerator) NextValue(ctx context.Context, name string) (int64, error) {
	var value int64
	err := g.db.WithContext(ctx).Raw(`
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
