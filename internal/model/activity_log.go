package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateQuotation  = "CREATE_QUOTATION"
	ActionUpdateQuotation  = "UPDATE_QUOTATION"
	ActionSendQuotation    = "SEND_QUOTATION"
	ActionApproveQuotation = "APPROVE_QUOTATION"
	ActionRejectQuotation  = "REJECT_QUOTATION"

	ActionCreatePricingItem = "CREATE_PRICING_ITEM"
	ActionUpdatePricingItem = "UPDATE_PRICING_ITEM"
	ActionDeletePricingItem = "DELETE_PRICING_ITEM"
	ActionCreateTimeRule    = "CREATE_TIME_RULE"
	ActionUpdateTimeRule    = "UPDATE_TIME_RULE"
	ActionDeleteTimeRule    = "DELETE_TIME_RULE"
)

// ActivityLog tracks who did what to quotations and pricing reference data.
// Feeds the quotation activity timeline.
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system-generated entries
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
