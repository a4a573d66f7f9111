package identity

import (
	"github.com/google/uuid"

	"github.com/henrytires/backend/internal/domain/shared"
)

// Role represents a user's role
type Role string

const (
	// RoleAdmin manages all branches and may override selling prices
	RoleAdmin Role = "Admin"
	// RoleSupervisor runs a branch and may override selling prices
	RoleSupervisor Role = "Supervisor"
	// RoleSeller sells at an assigned branch; cannot override selling prices
	RoleSeller Role = "Seller"
	// RoleStoreSeller sells over the counter at an assigned branch
	RoleStoreSeller Role = "StoreSeller"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleSeller, RoleStoreSeller:
		return true
	}
	return false
}

// CanOverrideSellingPrice reports whether the role may set a manual price
// on OUT transactions
func (r Role) CanOverrideSellingPrice() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// User is an operator account. Password hashing and token issuance live in
// infrastructure; the domain only carries the hash.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         Role      `gorm:"type:varchar(20);not null"`
	BranchID     *uuid.UUID
	BranchCode   *string `gorm:"type:varchar(30)"`
	IsActive     bool    `gorm:"not null;default:true"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user
func NewUser(username, passwordHash string, role Role, by string, at shared.Clock) (*User, error) {
	if username == "" {
		return nil, shared.NewValidationError("Username cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid role: " + string(role))
	}
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		AuditInfo:    shared.NewAuditInfo(by, at.Now()),
	}, nil
}

// AssignBranch sets the user's home branch. Sellers must have one.
func (u *User) AssignBranch(branchID uuid.UUID, branchCode string) {
	u.BranchID = &branchID
	u.BranchCode = &branchCode
}
