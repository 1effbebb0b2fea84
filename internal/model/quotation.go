package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationStatus enum constants
const (
	QuotationDraft    = "draft"
	QuotationSent     = "sent"
	QuotationApproved = "approved"
	QuotationRejected = "rejected"
	QuotationExpired  = "expired"
)

// BaseCurrency is the fixed currency all totals are computed in before any
// display conversion.
const BaseCurrency = "JPY"

// Quotation is a priced offer for one or more chauffeured services. Amount is
// the base total before discounts and tax; TotalAmount is the final payable
// figure. Both are stored in the base currency; DisplayCurrency only affects
// rendering.
type Quotation struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteNumber int       `gorm:"uniqueIndex;not null" json:"quote_number"`
	Title       string    `gorm:"type:varchar(255)" json:"title"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(50)" json:"customer_phone"`

	BillingCompanyName string `gorm:"type:varchar(255)" json:"billing_company_name"`
	BillingTaxNumber   string `gorm:"type:varchar(100)" json:"billing_tax_number"`
	BillingAddress     string `gorm:"type:text" json:"billing_address"`
	BillingCountry     string `gorm:"type:varchar(100)" json:"billing_country"`

	// Primary service summary, mirrored from the first line item.
	ServiceTypeID   *uuid.UUID `gorm:"type:uuid;index" json:"service_type_id"`
	ServiceTypeName string     `gorm:"type:varchar(255)" json:"service_type_name"`
	VehicleType     string     `gorm:"type:varchar(255)" json:"vehicle_type"`
	VehicleCategory string     `gorm:"type:varchar(255)" json:"vehicle_category"`
	PickupDate      string     `gorm:"type:varchar(10)" json:"pickup_date"` // YYYY-MM-DD
	PickupTime      string     `gorm:"type:varchar(5)" json:"pickup_time"`  // HH:MM
	DurationHours   int        `gorm:"not null;default:1" json:"duration_hours"`
	ServiceDays     int        `gorm:"not null;default:1" json:"service_days"`
	HoursPerDay     *int       `json:"hours_per_day"`
	PassengerCount  *int       `json:"passenger_count"`

	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`       // base total
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"` // final total
	Currency        string          `gorm:"type:varchar(3);not null;default:'JPY'" json:"currency"`
	DisplayCurrency string          `gorm:"type:varchar(3);not null;default:'JPY'" json:"display_currency"`

	DiscountPercentage decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"discount_percentage"`
	TaxPercentage      decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"tax_percentage"`

	SelectedPackageID   *uuid.UUID      `gorm:"type:uuid" json:"selected_package_id"`
	SelectedPackageName string          `gorm:"type:varchar(255)" json:"selected_package_name"`
	PackageAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"package_amount"`

	SelectedPromotionID   *uuid.UUID      `gorm:"type:uuid" json:"selected_promotion_id"`
	SelectedPromotionName string          `gorm:"type:varchar(255)" json:"selected_promotion_name"`
	SelectedPromotionCode string          `gorm:"type:varchar(50)" json:"selected_promotion_code"`
	PromotionDiscount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"promotion_discount"`

	Status       string     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	TeamLocation string     `gorm:"type:varchar(20)" json:"team_location"` // japan, thailand
	ExpiryDate   time.Time  `gorm:"not null" json:"expiry_date"`
	ApprovedBy   *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt   *time.Time `json:"approved_at"`
	RejectedAt   *time.Time `json:"rejected_at"`

	MerchantNotes string `gorm:"type:text" json:"merchant_notes"`
	CustomerNotes string `gorm:"type:text" json:"customer_notes"`

	Items     []QuotationItem `gorm:"foreignKey:QuotationID" json:"items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// QuotationItem is one priced service line. TotalPrice is the line total
// after the time-based adjustment; TimeAdjustmentPercentage records the sum
// of matched rule percentages so the figure can be audited later.
type QuotationItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index" json:"quotation_id"`

	Description     string    `gorm:"type:varchar(255)" json:"description"`
	ServiceTypeID   uuid.UUID `gorm:"type:uuid;not null" json:"service_type_id"`
	ServiceTypeName string    `gorm:"type:varchar(255);not null" json:"service_type_name"`
	VehicleType     string    `gorm:"type:varchar(255)" json:"vehicle_type"`
	VehicleCategory string    `gorm:"type:varchar(255)" json:"vehicle_category"`

	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	DurationHours int             `gorm:"not null;default:1" json:"duration_hours"`
	ServiceDays   int             `gorm:"not null;default:1" json:"service_days"`
	HoursPerDay   *int            `json:"hours_per_day"`
	PickupDate    string          `gorm:"type:varchar(10)" json:"pickup_date"`
	PickupTime    string          `gorm:"type:varchar(5)" json:"pickup_time"`

	TotalPrice               decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"total_price"`
	TimeAdjustmentPercentage *decimal.Decimal `gorm:"type:decimal(8,4)" json:"time_adjustment_percentage"`
	AppliedRuleNames         string           `gorm:"type:text" json:"applied_rule_names"`
	PriceSource              string           `gorm:"type:varchar(30)" json:"price_source"`

	CreatedAt time.Time `json:"created_at"`
}
