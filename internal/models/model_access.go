package models

import (
	"time"

	"gorm.io/datatypes"
)

// AccessPass is a user's 30-day, quota-boxed full-report entitlement.
// Renewal overwrites the window but preserves AnalysisIDs.
type AccessPass struct {
	UserID    string    `gorm:"column:user_id;primary_key;type:varchar(64)" json:"user_id"`
	PaidAt    time.Time `gorm:"column:paid_at;not null" json:"paid_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	// AnalysisIDs is the ordered list of consumed analyses. Insertion order is
	// consumption order; duplicates are forbidden; ids are never removed.
	AnalysisIDs datatypes.JSONSlice[string] `gorm:"column:analysis_ids;type:jsonb;default:'[]'" json:"analysis_ids"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (AccessPass) TableName() string {
	return "access_pass"
}

// Expired reports whether the window has lapsed at now.
func (p *AccessPass) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Consumed returns how many analyses this pass has used.
func (p *AccessPass) Consumed() int {
	return len(p.AnalysisIDs)
}
