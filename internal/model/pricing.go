package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enum constants for promotions
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// PricingItem is one row of the pricing catalog: the price for a given
// service type + vehicle type + duration combination. Uniqueness is not
// enforced by the store; the resolver always takes the first match in a
// stable order.
type PricingItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ServiceTypeID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_type_id"`
	ServiceTypeName string          `gorm:"type:varchar(255);not null" json:"service_type_name"`
	VehicleType     string          `gorm:"type:varchar(255);not null;index" json:"vehicle_type"`
	DurationHours   int             `gorm:"not null;index" json:"duration_hours"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'JPY'" json:"currency"`
	IsActive        bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PricingPackage is a bundled offering with a flat base price. The included
// items are informational only; the base price is additive on top of the
// service subtotal, never derived from the items.
type PricingPackage struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string               `gorm:"type:varchar(255);not null" json:"name"`
	Description string               `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"base_price"`
	Currency    string               `gorm:"type:varchar(3);not null;default:'JPY'" json:"currency"`
	IsActive    bool                 `gorm:"not null;default:true;index" json:"is_active"`
	Items       []PricingPackageItem `gorm:"foreignKey:PackageID" json:"items,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// PricingPackageItem is a sub-item included in a package.
type PricingPackageItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PackageID uuid.UUID `gorm:"type:uuid;not null;index" json:"package_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	ItemType  string    `gorm:"type:varchar(50)" json:"item_type"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// PricingPromotion is a discount matched by code. Percentage promotions may
// carry an optional cap; fixed-amount promotions are clamped to the base
// total at calculation time.
type PricingPromotion struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string           `gorm:"type:varchar(255);not null" json:"name"`
	Code            string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description     string           `gorm:"type:text" json:"description"`
	DiscountType    string           `gorm:"type:varchar(20);not null" json:"discount_type"` // percentage, fixed_amount
	DiscountValue   decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"discount_value"`
	MaximumDiscount *decimal.Decimal `gorm:"type:decimal(18,4)" json:"maximum_discount"`
	IsActive        bool             `gorm:"not null;default:true;index" json:"is_active"`
	StartsAt        *time.Time       `json:"starts_at"`
	EndsAt          *time.Time       `json:"ends_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
