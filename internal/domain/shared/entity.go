package shared

import "time"

// AuditInfo carries the audit trail fields shared by all audited aggregates.
// Committed/posted stamps live on the owning aggregate, not here.
type AuditInfo struct {
	CreatedAtUtc  time.Time  `gorm:"type:timestamptz;not null"`
	CreatedBy     string     `gorm:"type:varchar(100);not null"`
	ModifiedAtUtc *time.Time `gorm:"type:timestamptz"`
	ModifiedBy    *string    `gorm:"type:varchar(100)"`
}

// NewAuditInfo creates audit info stamped with the given actor and time
func NewAuditInfo(by string, at time.Time) AuditInfo {
	return AuditInfo{
		CreatedAtUtc: at,
		CreatedBy:    by,
	}
}

// Touch updates the modified stamp
func (a *AuditInfo) Touch(by string, at time.Time) {
	a.ModifiedAtUtc = &at
	a.ModifiedBy = &by
}
