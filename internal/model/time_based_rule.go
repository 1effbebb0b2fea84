package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimeBasedRule adjusts a line's price by a signed percentage when the pickup
// moment falls inside the rule's weekday set and time window.
//
// StartTime/EndTime are local "HH:MM" strings. A window with StartTime later
// than EndTime crosses midnight (e.g. 22:00–06:00). A rule missing either
// bound matches any time of day and filters on weekdays only.
// ApplicableDays holds weekday numbers (0 = Sunday); an empty set means all
// days.
type TimeBasedRule struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	StartTime            string          `gorm:"type:varchar(5)" json:"start_time"`
	EndTime              string          `gorm:"type:varchar(5)" json:"end_time"`
	ApplicableDays       []int           `gorm:"type:jsonb;serializer:json" json:"applicable_days"`
	AdjustmentPercentage decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"adjustment_percentage"`
	Priority             int             `gorm:"not null;default:0" json:"priority"`
	IsActive             bool            `gorm:"not null;default:true;index" json:"is_active"`
	Description          string          `gorm:"type:text" json:"description"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
