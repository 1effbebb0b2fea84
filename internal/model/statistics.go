package model

import "time"

// StatusBreakdown is the count and total value of quotations in one status.
type StatusBreakdown struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Value  string `json:"value"`
}

// ServiceRanking ranks a service type by how often and how high it is quoted.
type ServiceRanking struct {
	ServiceTypeName string `json:"service_type_name"`
	QuoteCount      int    `json:"quote_count"`
	TotalValue      string `json:"total_value"`
}

// StatisticsResponse is the dashboard summary for a date range. Values are
// decimal strings in the base currency.
type StatisticsResponse struct {
	TimeRangeStartDate time.Time         `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time         `json:"time_range_end_date"`
	TotalQuotedValue   string            `json:"total_quoted_value"`
	ApprovedValue      string            `json:"approved_value"`
	QuotationCount     int               `json:"quotation_count"`
	ApprovalRate       float64           `json:"approval_rate"` // approved / (approved + rejected)
	ByStatus           []StatusBreakdown `json:"by_status"`
	TopServices        []ServiceRanking  `json:"top_services"`
}
