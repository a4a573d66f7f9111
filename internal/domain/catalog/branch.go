package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/henrytires/backend/internal/domain/shared"
)

// Branch is a physical store location; its code partitions all stock state
type Branch struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code     string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Name     string    `gorm:"type:varchar(100);not null"`
	IsActive bool      `gorm:"not null;default:true"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates an active branch
func NewBranch(code, name, by string, at time.Time) (*Branch, error) {
	if code == "" {
		return nil, shared.NewValidationError("Branch code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Branch name cannot be empty")
	}
	return &Branch{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		IsActive:  true,
		AuditInfo: shared.NewAuditInfo(by, at),
	}, nil
}
