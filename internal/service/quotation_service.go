package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"chauffeur-backend/internal/cache"
	"chauffeur-backend/internal/model"
	"chauffeur-backend/internal/repository"
	ws "chauffeur-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// quoteValidityDays is how long a quotation stays open before it expires.
const quoteValidityDays = 14

// quoteNumberPrefix renders the sequential quote number for customers.
const quoteNumberPrefix = "QUO-JPDR-%06d"

var oneHundred = decimal.NewFromInt(100)

// --- DTOs ---

type QuotationItemRequest struct {
	Description     string `json:"description"`
	ServiceTypeID   string `json:"service_type_id" binding:"required"`
	ServiceTypeName string `json:"service_type_name" binding:"required"`
	VehicleType     string `json:"vehicle_type"`
	VehicleCategory string `json:"vehicle_category"`
	UnitPrice       string `json:"unit_price"` // empty = resolve from the catalog
	Quantity        int    `json:"quantity"`
	DurationHours   int    `json:"duration_hours"`
	ServiceDays     int    `json:"service_days"`
	HoursPerDay     *int   `json:"hours_per_day"`
	PickupDate      string `json:"pickup_date"` // YYYY-MM-DD
	PickupTime      string `json:"pickup_time"` // HH:MM
}

type CreateQuotationRequest struct {
	Title string `json:"title"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone"`

	BillingCompanyName string `json:"billing_company_name"`
	BillingTaxNumber   string `json:"billing_tax_number"`
	BillingAddress     string `json:"billing_address"`
	BillingCountry     string `json:"billing_country"`

	// Single-service shortcut: used when Items is empty.
	ServiceTypeID   string `json:"service_type_id"`
	ServiceTypeName string `json:"service_type_name"`
	VehicleType     string `json:"vehicle_type"`
	VehicleCategory string `json:"vehicle_category"`
	PickupDate      string `json:"pickup_date"`
	PickupTime      string `json:"pickup_time"`
	DurationHours   int    `json:"duration_hours"`
	ServiceDays     int    `json:"service_days"`
	HoursPerDay     *int   `json:"hours_per_day"`
	PassengerCount  *int   `json:"passenger_count"`

	Items []QuotationItemRequest `json:"items"`

	PackageID          string `json:"package_id"`
	PromotionCode      string `json:"promotion_code"`
	DiscountPercentage string `json:"discount_percentage"`
	TaxPercentage      string `json:"tax_percentage"`

	DisplayCurrency string `json:"display_currency"`
	TeamLocation    string `json:"team_location"`
	MerchantNotes   string `json:"merchant_notes"`
	CustomerNotes   string `json:"customer_notes"`
}

type QuotationItemResponse struct {
	ID                       string `json:"id"`
	Description              string `json:"description"`
	ServiceTypeID            string `json:"service_type_id"`
	ServiceTypeName          string `json:"service_type_name"`
	VehicleType              string `json:"vehicle_type"`
	VehicleCategory          string `json:"vehicle_category"`
	UnitPrice                string `json:"unit_price"`
	Quantity                 int    `json:"quantity"`
	DurationHours            int    `json:"duration_hours"`
	ServiceDays              int    `json:"service_days"`
	HoursPerDay              *int   `json:"hours_per_day"`
	PickupDate               string `json:"pickup_date"`
	PickupTime               string `json:"pickup_time"`
	TotalPrice               string `json:"total_price"`
	TimeAdjustmentPercentage string `json:"time_adjustment_percentage,omitempty"`
	AppliedRuleNames         string `json:"applied_rule_names,omitempty"`
	PriceSource              string `json:"price_source"`
}

type QuotationResponse struct {
	ID              string `json:"id"`
	QuoteNumber     int    `json:"quote_number"`
	QuoteReference  string `json:"quote_reference"`
	Title           string `json:"title"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	ServiceTypeName string `json:"service_type_name"`
	VehicleType     string `json:"vehicle_type"`
	PickupDate      string `json:"pickup_date"`
	PickupTime      string `json:"pickup_time"`

	ServiceSubtotal   string `json:"service_subtotal"`
	PackageName       string `json:"package_name,omitempty"`
	PackageAmount     string `json:"package_amount"`
	BaseTotal         string `json:"base_total"`
	PromotionCode     string `json:"promotion_code,omitempty"`
	PromotionDiscount string `json:"promotion_discount"`
	RegularDiscount   string `json:"regular_discount"`
	TotalDiscount     string `json:"total_discount"`
	NetSubtotal       string `json:"net_subtotal"`
	TaxPercentage     string `json:"tax_percentage"`
	TaxAmount         string `json:"tax_amount"`
	FinalTotal        string `json:"final_total"`

	Currency        string `json:"currency"`
	DisplayCurrency string `json:"display_currency"`
	DisplayTotal    string `json:"display_total"`

	Status       string                  `json:"status"`
	TeamLocation string                  `json:"team_location"`
	ExpiryDate   string                  `json:"expiry_date"`
	Items        []QuotationItemResponse `json:"items"`
	CreatedAt    string                  `json:"created_at"`
}

// QuotationTotals is the result of the aggregation pipeline, kept separate
// from storage so it can be computed for previews without persisting.
type QuotationTotals struct {
	ServiceSubtotal   decimal.Decimal
	PackageAmount     decimal.Decimal
	BaseTotal         decimal.Decimal
	PromotionDiscount decimal.Decimal
	RegularDiscount   decimal.Decimal
	TotalDiscount     decimal.Decimal
	NetSubtotal       decimal.Decimal
	TaxAmount         decimal.Decimal
	FinalTotal        decimal.Decimal
}

// --- Pure calculators ---

// LineBasePrice computes a line's pre-adjustment amount. Charter lines bill
// the unit price per service day and ignore quantity; the unit price already
// covers the daily hours. Other lines multiply through quantity and days.
func LineBasePrice(unitPrice decimal.Decimal, serviceTypeName string, quantity, serviceDays int) decimal.Decimal {
	if quantity <= 0 {
		quantity = 1
	}
	if serviceDays <= 0 {
		serviceDays = 1
	}
	days := decimal.NewFromInt(int64(serviceDays))

	if IsCharterService(serviceTypeName) {
		return unitPrice.Mul(days)
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(days)
}

// ApplyTimeAdjustment adds the summed rule percentage to a base amount.
// The percentage may be negative (off-peak discounts).
func ApplyTimeAdjustment(base, adjustmentPct decimal.Decimal) decimal.Decimal {
	if adjustmentPct.IsZero() {
		return base
	}
	return base.Add(base.Mul(adjustmentPct).Div(oneHundred))
}

// PromotionDiscountAmount computes a promotion's discount against the base
// total. Percentage promotions honor the optional cap; fixed-amount
// promotions never exceed the base total itself.
func PromotionDiscountAmount(promo *model.PricingPromotion, baseTotal decimal.Decimal) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}

	switch promo.DiscountType {
	case model.DiscountTypePercentage:
		discount := baseTotal.Mul(promo.DiscountValue).Div(oneHundred)
		if promo.MaximumDiscount != nil && discount.GreaterThan(*promo.MaximumDiscount) {
			discount = *promo.MaximumDiscount
		}
		return discount
	case model.DiscountTypeFixedAmount:
		if promo.DiscountValue.GreaterThan(baseTotal) {
			return baseTotal
		}
		return promo.DiscountValue
	}
	return decimal.Zero
}

// CalculateTotals runs the aggregation pipeline: package on top of the
// service subtotal, then the promotion and regular discounts stacked, then
// tax on the clamped net. The net never goes below zero.
func CalculateTotals(serviceSubtotal, packageAmount decimal.Decimal, promo *model.PricingPromotion, discountPct, taxPct decimal.Decimal) QuotationTotals {
	baseTotal := serviceSubtotal.Add(packageAmount)

	promoDiscount := PromotionDiscountAmount(promo, baseTotal)
	regularDiscount := baseTotal.Mul(discountPct).Div(oneHundred)
	totalDiscount := promoDiscount.Add(regularDiscount)

	netSubtotal := baseTotal.Sub(totalDiscount)
	if netSubtotal.IsNegative() {
		netSubtotal = decimal.Zero
	}

	taxAmount := netSubtotal.Mul(taxPct).Div(oneHundred)

	return QuotationTotals{
		ServiceSubtotal:   serviceSubtotal,
		PackageAmount:     packageAmount,
		BaseTotal:         baseTotal,
		PromotionDiscount: promoDiscount,
		RegularDiscount:   regularDiscount,
		TotalDiscount:     totalDiscount,
		NetSubtotal:       netSubtotal,
		TaxAmount:         taxAmount,
		FinalTotal:        netSubtotal.Add(taxAmount),
	}
}

// --- Interface ---

type QuotationService interface {
	Create(ctx context.Context, userID *uuid.UUID, req CreateQuotationRequest) (QuotationResponse, error)
	Preview(ctx context.Context, req CreateQuotationRequest) (QuotationResponse, error)
	Update(ctx context.Context, userID *uuid.UUID, id string, req CreateQuotationRequest) (QuotationResponse, error)
	Get(ctx context.Context, id string) (QuotationResponse, error)
	List(ctx context.Context, filter repository.QuotationListFilter) ([]QuotationResponse, int64, error)
	Send(ctx context.Context, userID *uuid.UUID, id string) (QuotationResponse, error)
	Approve(ctx context.Context, userID *uuid.UUID, id string) (QuotationResponse, error)
	Reject(ctx context.Context, userID *uuid.UUID, id string) (QuotationResponse, error)
}

type quotationService struct {
	quotations repository.QuotationRepository
	packages   repository.PackageRepository
	promotions repository.PromotionRepository
	activity   repository.ActivityLogRepository
	resolver   *PriceResolver
	timeRules  TimeRuleService
	currency   CurrencyService
	txManager  repository.TransactionManager
	cache      cache.Cache
	hub        *ws.Hub
}

func NewQuotationService(
	quotations repository.QuotationRepository,
	packages repository.PackageRepository,
	promotions repository.PromotionRepository,
	activity repository.ActivityLogRepository,
	resolver *PriceResolver,
	timeRules TimeRuleService,
	currency CurrencyService,
	txManager repository.TransactionManager,
	c cache.Cache,
	hub *ws.Hub,
) QuotationService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &quotationService{
		quotations: quotations,
		packages:   packages,
		promotions: promotions,
		activity:   activity,
		resolver:   resolver,
		timeRules:  timeRules,
		currency:   currency,
		txManager:  txManager,
		cache:      c,
		hub:        hub,
	}
}

// --- Implementation ---

func (s *quotationService) Create(ctx context.Context, userID *uuid.UUID, req CreateQuotationRequest) (QuotationResponse, error) {
	quotation, err := s.build(ctx, req)
	if err != nil {
		return QuotationResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := s.quotations.NextQuoteNumber(txCtx)
		if err != nil {
			return fmt.Errorf("failed to allocate quote number: %w", err)
		}
		quotation.QuoteNumber = number
		return s.quotations.Create(txCtx, quotation)
	})
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.afterWrite(ctx, userID, model.ActionCreateQuotation, quotation)
	return s.toResponse(ctx, quotation), nil
}

// Preview runs the full pricing pipeline without persisting, so the form can
// show live totals while the quote is being drafted.
func (s *quotationService) Preview(ctx context.Context, req CreateQuotationRequest) (QuotationResponse, error) {
	quotation, err := s.build(ctx, req)
	if err != nil {
		return QuotationResponse{}, err
	}
	return s.toResponse(ctx, quotation), nil
}

func (s *quotationService) Update(ctx context.Context, userID *uuid.UUID, id string, req CreateQuotationRequest) (QuotationResponse, error) {
	quotationID, err := uuid.Parse(id)
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("invalid quotation id: %w", err)
	}

	existing, err := s.quotations.FindByID(ctx, quotationID)
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("quotation not found: %w", err)
	}
	if existing.Status != model.QuotationDraft {
		return QuotationResponse{}, fmt.Errorf("only draft quotations can be edited, current status is %s", existing.Status)
	}

	rebuilt, err := s.build(ctx, req)
	if err != nil {
		return QuotationResponse{}, err
	}
	rebuilt.ID = existing.ID
	rebuilt.QuoteNumber = existing.QuoteNumber
	rebuilt.Status = existing.Status
	rebuilt.CreatedAt = existing.CreatedAt

	items := rebuilt.Items
	rebuilt.Items = nil

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.quotations.Update(txCtx, rebuilt); err != nil {
			return err
		}
		return s.quotations.ReplaceItems(txCtx, rebuilt.ID, items)
	})
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("failed to update quotation: %w", err)
	}
	rebuilt.Items = items

	s.afterWrite(ctx, userID, model.ActionUpdateQuotation, rebuilt)
	return s.toResponse(ctx, rebuilt), nil
}

func (s *quotationService) Get(ctx context.Context, id string) (QuotationResponse, error) {
	quotationID, err := uuid.Parse(id)
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("invalid quotation id: %w", err)
	}
	quotation, err := s.quotations.FindByID(ctx, quotationID)
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("quotation not found: %w", err)
	}
	return s.toResponse(ctx, quotation), nil
}

func (s *quotationService) List(ctx context.Context, filter repository.QuotationListFilter) ([]QuotationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	quotations, total, err := s.quotations.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch quotations: %w", err)
	}

	res := make([]QuotationResponse, 0, len(quotations))
	for i := range quotations {
		res = append(res, s.toResponse(ctx, &quotations[i]))
	}
	return res, total, nil
}

func (s *quotationService) Send(ctx context.Context, userID *uuid.UUID, id string) (QuotationResponse, error) {
	return s.transition(ctx, userID, id, model.ActionSendQuotation, func(q *model.Quotation) error {
		if q.Status != model.QuotationDraft {
			return fmt.Errorf("only draft quotations can be sent, current status is %s", q.Status)
		}
		q.Status = model.QuotationSent
		return nil
	})
}

func (s *quotationService) Approve(ctx context.Context, userID *uuid.UUID, id string) (QuotationResponse, error) {
	return s.transition(ctx, userID, id, model.ActionApproveQuotation, func(q *model.Quotation) error {
		if q.Status != model.QuotationSent {
			return fmt.Errorf("only sent quotations can be approved, current status is %s", q.Status)
		}
		now := time.Now()
		q.Status = model.QuotationApproved
		q.ApprovedBy = userID
		q.ApprovedAt = &now
		return nil
	})
}

func (s *quotationService) Reject(ctx context.Context, userID *uuid.UUID, id string) (QuotationResponse, error) {
	return s.transition(ctx, userID, id, model.ActionRejectQuotation, func(q *model.Quotation) error {
		if q.Status != model.QuotationSent {
			return fmt.Errorf("only sent quotations can be rejected, current status is %s", q.Status)
		}
		now := time.Now()
		q.Status = model.QuotationRejected
		q.RejectedAt = &now
		return nil
	})
}

func (s *quotationService) transition(ctx context.Context, userID *uuid.UUID, id, action string, apply func(*model.Quotation) error) (QuotationResponse, error) {
	quotationID, err := uuid.Parse(id)
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("invalid quotation id: %w", err)
	}

	quotation, err := s.quotations.FindByID(ctx, quotationID)
	if err != nil {
		return QuotationResponse{}, fmt.Errorf("quotation not found: %w", err)
	}

	if time.Now().After(quotation.ExpiryDate) && quotation.Status != model.QuotationApproved {
		return QuotationResponse{}, fmt.Errorf("quotation %s has expired", formatQuoteReference(quotation.QuoteNumber))
	}

	if err := apply(quotation); err != nil {
		return QuotationResponse{}, err
	}

	if err := s.quotations.Update(ctx, quotation); err != nil {
		return QuotationResponse{}, fmt.Errorf("failed to update quotation status: %w", err)
	}

	s.afterWrite(ctx, userID, action, quotation)
	return s.toResponse(ctx, quotation), nil
}

// --- Pipeline ---

// pricedLine is the concurrent per-line work product.
type pricedLine struct {
	item model.QuotationItem
	err  error
}

// build runs the whole pipeline: per-line resolution and rule matching in
// parallel, then aggregation, package, promotion, discounts, and tax.
func (s *quotationService) build(ctx context.Context, req CreateQuotationRequest) (*model.Quotation, error) {
	lineReqs := req.Items
	if len(lineReqs) == 0 {
		single, err := singleServiceLine(req)
		if err != nil {
			return nil, err
		}
		lineReqs = []QuotationItemRequest{single}
	}

	discountPct, err := parseOptionalPercent(req.DiscountPercentage, "discount_percentage")
	if err != nil {
		return nil, err
	}
	taxPct, err := parseOptionalPercent(req.TaxPercentage, "tax_percentage")
	if err != nil {
		return nil, err
	}

	// Price resolution and rule matching hit independent tables, so all
	// lines are processed in parallel.
	results := make([]pricedLine, len(lineReqs))
	var wg sync.WaitGroup
	for i := range lineReqs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = s.priceLine(ctx, lineReqs[idx])
		}(i)
	}
	wg.Wait()

	serviceSubtotal := decimal.Zero
	items := make([]model.QuotationItem, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		items = append(items, res.item)
		serviceSubtotal = serviceSubtotal.Add(res.item.TotalPrice)
	}

	var (
		packageAmount = decimal.Zero
		packageID     *uuid.UUID
		packageName   string
	)
	if req.PackageID != "" {
		id, err := uuid.Parse(req.PackageID)
		if err != nil {
			return nil, fmt.Errorf("invalid package_id: %w", err)
		}
		pkg, err := cachedRecord(ctx, s.cache, cache.NamespacePackages, id.String(), func() (*model.PricingPackage, error) {
			return s.packages.FindActiveByID(ctx, id)
		})
		if err != nil {
			return nil, fmt.Errorf("package not found or inactive: %w", err)
		}
		packageAmount = pkg.BasePrice
		packageID = &pkg.ID
		packageName = pkg.Name
	}

	var promo *model.PricingPromotion
	if req.PromotionCode != "" {
		promo, err = cachedRecord(ctx, s.cache, cache.NamespacePromotions, "code:"+req.PromotionCode, func() (*model.PricingPromotion, error) {
			return s.promotions.FindActiveByCode(ctx, req.PromotionCode)
		})
		if err != nil {
			return nil, fmt.Errorf("promotion code is invalid or expired: %w", err)
		}
	}

	totals := CalculateTotals(serviceSubtotal, packageAmount, promo, discountPct, taxPct)

	displayCurrency := req.DisplayCurrency
	if displayCurrency == "" {
		displayCurrency = model.BaseCurrency
	}

	first := items[0]
	quotation := &model.Quotation{
		Title:              req.Title,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		BillingCompanyName: req.BillingCompanyName,
		BillingTaxNumber:   req.BillingTaxNumber,
		BillingAddress:     req.BillingAddress,
		BillingCountry:     req.BillingCountry,

		ServiceTypeID:   &first.ServiceTypeID,
		ServiceTypeName: first.ServiceTypeName,
		VehicleType:     first.VehicleType,
		VehicleCategory: first.VehicleCategory,
		PickupDate:      first.PickupDate,
		PickupTime:      first.PickupTime,
		DurationHours:   first.DurationHours,
		ServiceDays:     first.ServiceDays,
		HoursPerDay:     first.HoursPerDay,
		PassengerCount:  req.PassengerCount,

		Amount:          totals.BaseTotal,
		TotalAmount:     totals.FinalTotal,
		Currency:        model.BaseCurrency,
		DisplayCurrency: displayCurrency,

		DiscountPercentage: discountPct,
		TaxPercentage:      taxPct,

		SelectedPackageID:   packageID,
		SelectedPackageName: packageName,
		PackageAmount:       packageAmount,

		Status:        model.QuotationDraft,
		TeamLocation:  req.TeamLocation,
		ExpiryDate:    time.Now().AddDate(0, 0, quoteValidityDays),
		MerchantNotes: req.MerchantNotes,
		CustomerNotes: req.CustomerNotes,

		Items: items,
	}

	if promo != nil {
		quotation.SelectedPromotionID = &promo.ID
		quotation.SelectedPromotionName = promo.Name
		quotation.SelectedPromotionCode = promo.Code
		quotation.PromotionDiscount = totals.PromotionDiscount
	}

	return quotation, nil
}

// priceLine resolves one line's unit price and its time-based adjustment.
// The two lookups are independent and run concurrently.
func (s *quotationService) priceLine(ctx context.Context, req QuotationItemRequest) pricedLine {
	serviceTypeID, err := uuid.Parse(req.ServiceTypeID)
	if err != nil {
		return pricedLine{err: fmt.Errorf("invalid service_type_id: %w", err)}
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.DurationHours <= 0 {
		req.DurationHours = 1
	}
	if req.ServiceDays <= 0 {
		req.ServiceDays = 1
	}

	pickupAt := parsePickupAt(req.PickupDate, req.PickupTime)

	var (
		wg         sync.WaitGroup
		resolution PriceResolution
		matched    []model.TimeBasedRule
		rulesErr   error
	)

	unitPrice := decimal.Zero
	source := ""
	if req.UnitPrice != "" {
		unitPrice, err = decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return pricedLine{err: fmt.Errorf("invalid unit_price: %w", err)}
		}
		if unitPrice.IsNegative() {
			return pricedLine{err: fmt.Errorf("unit_price must not be negative")}
		}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolution = s.resolver.Resolve(ctx, ServiceRequest{
				ServiceTypeID:   serviceTypeID,
				ServiceTypeName: req.ServiceTypeName,
				VehicleType:     req.VehicleType,
				DurationHours:   req.DurationHours,
				ServiceDays:     req.ServiceDays,
				HoursPerDay:     req.HoursPerDay,
				PickupAt:        pickupAt,
			})
		}()
	}

	if pickupAt != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			matched, rulesErr = s.timeRules.MatchForPickup(ctx, *pickupAt)
		}()
	}
	wg.Wait()

	if rulesErr != nil {
		// A broken rule lookup must not block quoting; the base price stands.
		log.Printf("quotation: time rule lookup failed: %v", rulesErr)
		matched = nil
	}

	// A resolved amount already covers the full duration and days (the hourly
	// stages run the rate formula), so it is the line base as-is. Only
	// caller-supplied unit prices get multiplied out.
	var base decimal.Decimal
	if source = string(resolution.Source); source != "" {
		unitPrice = resolution.BaseAmount
		base = resolution.BaseAmount
	} else {
		base = LineBasePrice(unitPrice, req.ServiceTypeName, req.Quantity, req.ServiceDays)
	}

	item := model.QuotationItem{
		Description:     req.Description,
		ServiceTypeID:   serviceTypeID,
		ServiceTypeName: req.ServiceTypeName,
		VehicleType:     req.VehicleType,
		VehicleCategory: req.VehicleCategory,
		UnitPrice:       unitPrice,
		Quantity:        req.Quantity,
		DurationHours:   req.DurationHours,
		ServiceDays:     req.ServiceDays,
		HoursPerDay:     req.HoursPerDay,
		PickupDate:      req.PickupDate,
		PickupTime:      req.PickupTime,
		TotalPrice:      base,
		PriceSource:     source,
	}

	if len(matched) > 0 {
		adjustment := SumAdjustments(matched)
		item.TotalPrice = ApplyTimeAdjustment(base, adjustment)
		item.TimeAdjustmentPercentage = &adjustment
		item.AppliedRuleNames = RuleNames(matched)
	}

	return pricedLine{item: item}
}

// afterWrite pushes the change to connected clients and records an audit
// entry; neither failure affects the quotation itself.
func (s *quotationService) afterWrite(ctx context.Context, userID *uuid.UUID, action string, q *model.Quotation) {
	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventQuotationUpdated, q.ID.String())
	}

	details, _ := json.Marshal(map[string]interface{}{
		"quote_number": q.QuoteNumber,
		"status":       q.Status,
		"total_amount": q.TotalAmount.String(),
	})
	entry := &model.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityID:   q.ID.String(),
		EntityName: formatQuoteReference(q.QuoteNumber),
		Details:    string(details),
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		log.Printf("quotation: failed to write activity log: %v", err)
	}
}

// --- Helpers ---

func singleServiceLine(req CreateQuotationRequest) (QuotationItemRequest, error) {
	if req.ServiceTypeID == "" || req.ServiceTypeName == "" {
		return QuotationItemRequest{}, fmt.Errorf("quotation needs at least one service line")
	}
	return QuotationItemRequest{
		ServiceTypeID:   req.ServiceTypeID,
		ServiceTypeName: req.ServiceTypeName,
		VehicleType:     req.VehicleType,
		VehicleCategory: req.VehicleCategory,
		Quantity:        1,
		DurationHours:   req.DurationHours,
		ServiceDays:     req.ServiceDays,
		HoursPerDay:     req.HoursPerDay,
		PickupDate:      req.PickupDate,
		PickupTime:      req.PickupTime,
	}, nil
}

func parseOptionalPercent(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if pct.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return pct, nil
}

// parsePickupAt combines the date and time fields. A missing or malformed
// pickup moment disables time-based adjustment rather than failing the quote.
func parsePickupAt(date, clock string) *time.Time {
	if date == "" {
		return nil
	}
	layout := "2006-01-02"
	value := date
	if clock != "" {
		layout = "2006-01-02 15:04"
		value = date + " " + clock
	}
	t, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func formatQuoteReference(number int) string {
	return fmt.Sprintf(quoteNumberPrefix, number)
}

func (s *quotationService) toResponse(ctx context.Context, q *model.Quotation) QuotationResponse {
	totals := CalculateTotals(q.Amount.Sub(q.PackageAmount), q.PackageAmount, nil, q.DiscountPercentage, q.TaxPercentage)
	// Stored promotion discount is authoritative; recompute the stack on top
	// of it so responses stay consistent with what was persisted.
	netSubtotal := q.Amount.Sub(totals.RegularDiscount).Sub(q.PromotionDiscount)
	if netSubtotal.IsNegative() {
		netSubtotal = decimal.Zero
	}
	taxAmount := netSubtotal.Mul(q.TaxPercentage).Div(oneHundred)

	status := q.Status
	if (status == model.QuotationDraft || status == model.QuotationSent) && time.Now().After(q.ExpiryDate) {
		status = model.QuotationExpired
	}

	displayTotal := s.currency.Format(q.TotalAmount, model.BaseCurrency)
	if q.DisplayCurrency != "" && q.DisplayCurrency != model.BaseCurrency {
		if converted, err := s.currency.Convert(ctx, q.TotalAmount, model.BaseCurrency, q.DisplayCurrency); err == nil {
			displayTotal = s.currency.Format(converted, q.DisplayCurrency)
		}
	}

	items := make([]QuotationItemResponse, 0, len(q.Items))
	for _, item := range q.Items {
		res := QuotationItemResponse{
			ID:               item.ID.String(),
			Description:      item.Description,
			ServiceTypeID:    item.ServiceTypeID.String(),
			ServiceTypeName:  item.ServiceTypeName,
			VehicleType:      item.VehicleType,
			VehicleCategory:  item.VehicleCategory,
			UnitPrice:        item.UnitPrice.String(),
			Quantity:         item.Quantity,
			DurationHours:    item.DurationHours,
			ServiceDays:      item.ServiceDays,
			HoursPerDay:      item.HoursPerDay,
			PickupDate:       item.PickupDate,
			PickupTime:       item.PickupTime,
			TotalPrice:       item.TotalPrice.String(),
			AppliedRuleNames: item.AppliedRuleNames,
			PriceSource:      item.PriceSource,
		}
		if item.TimeAdjustmentPercentage != nil {
			res.TimeAdjustmentPercentage = item.TimeAdjustmentPercentage.String()
		}
		items = append(items, res)
	}

	return QuotationResponse{
		ID:              q.ID.String(),
		QuoteNumber:     q.QuoteNumber,
		QuoteReference:  formatQuoteReference(q.QuoteNumber),
		Title:           q.Title,
		CustomerName:    q.CustomerName,
		CustomerEmail:   q.CustomerEmail,
		CustomerPhone:   q.CustomerPhone,
		ServiceTypeName: q.ServiceTypeName,
		VehicleType:     q.VehicleType,
		PickupDate:      q.PickupDate,
		PickupTime:      q.PickupTime,

		ServiceSubtotal:   q.Amount.Sub(q.PackageAmount).String(),
		PackageName:       q.SelectedPackageName,
		PackageAmount:     q.PackageAmount.String(),
		BaseTotal:         q.Amount.String(),
		PromotionCode:     q.SelectedPromotionCode,
		PromotionDiscount: q.PromotionDiscount.String(),
		RegularDiscount:   totals.RegularDiscount.String(),
		TotalDiscount:     q.PromotionDiscount.Add(totals.RegularDiscount).String(),
		NetSubtotal:       netSubtotal.String(),
		TaxPercentage:     q.TaxPercentage.String(),
		TaxAmount:         taxAmount.String(),
		FinalTotal:        q.TotalAmount.String(),

		Currency:        q.Currency,
		DisplayCurrency: q.DisplayCurrency,
		DisplayTotal:    displayTotal,

		Status:       status,
		TeamLocation: q.TeamLocation,
		ExpiryDate:   q.ExpiryDate.Format("2006-01-02"),
		Items:        items,
		CreatedAt:    q.CreatedAt.Format(time.RFC3339),
	}
}
