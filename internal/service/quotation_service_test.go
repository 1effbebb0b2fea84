package service

import (
	"context"
	"testing"

	"chauffeur-backend/internal/cache"
	"chauffeur-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateTotalsPromotionThenTax(t *testing.T) {
	promo := &model.PricingPromotion{
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: d("15"),
	}

	// 100000 base, 15% promotion -> 85000 net, 10% tax -> 93500 final
	totals := CalculateTotals(d("100000"), decimal.Zero, promo, decimal.Zero, d("10"))

	if !totals.PromotionDiscount.Equal(d("15000")) {
		t.Errorf("promotion discount = %s, want 15000", totals.PromotionDiscount)
	}
	if !totals.NetSubtotal.Equal(d("85000")) {
		t.Errorf("net subtotal = %s, want 85000", totals.NetSubtotal)
	}
	if !totals.TaxAmount.Equal(d("8500")) {
		t.Errorf("tax amount = %s, want 8500", totals.TaxAmount)
	}
	if !totals.FinalTotal.Equal(d("93500")) {
		t.Errorf("final total = %s, want 93500", totals.FinalTotal)
	}
}

func TestCalculateTotalsPercentageCapApplies(t *testing.T) {
	cap := d("5000")
	promo := &model.PricingPromotion{
		DiscountType:    model.DiscountTypePercentage,
		DiscountValue:   d("20"),
		MaximumDiscount: &cap,
	}

	totals := CalculateTotals(d("100000"), decimal.Zero, promo, decimal.Zero, decimal.Zero)

	if !totals.PromotionDiscount.Equal(d("5000")) {
		t.Errorf("promotion discount = %s, want the 5000 cap", totals.PromotionDiscount)
	}
	if !totals.FinalTotal.Equal(d("95000")) {
		t.Errorf("final total = %s, want 95000", totals.FinalTotal)
	}
}

func TestCalculateTotalsFixedAmountClampedToBase(t *testing.T) {
	promo := &model.PricingPromotion{
		DiscountType:  model.DiscountTypeFixedAmount,
		DiscountValue: d("50000"),
	}

	totals := CalculateTotals(d("30000"), decimal.Zero, promo, decimal.Zero, decimal.Zero)

	if !totals.PromotionDiscount.Equal(d("30000")) {
		t.Errorf("promotion discount = %s, want clamp to the 30000 base", totals.PromotionDiscount)
	}
	if !totals.NetSubtotal.IsZero() {
		t.Errorf("net subtotal = %s, want 0", totals.NetSubtotal)
	}
	if !totals.FinalTotal.IsZero() {
		t.Errorf("final total = %s, want 0", totals.FinalTotal)
	}
}

func TestCalculateTotalsDiscountsStack(t *testing.T) {
	promo := &model.PricingPromotion{
		DiscountType:  model.DiscountTypeFixedAmount,
		DiscountValue: d("10000"),
	}

	// 10000 fixed promo + 10% regular discount on the 100000 base
	totals := CalculateTotals(d("100000"), decimal.Zero, promo, d("10"), decimal.Zero)

	if !totals.TotalDiscount.Equal(d("20000")) {
		t.Errorf("total discount = %s, want 20000", totals.TotalDiscount)
	}
	if !totals.NetSubtotal.Equal(d("80000")) {
		t.Errorf("net subtotal = %s, want 80000", totals.NetSubtotal)
	}
}

func TestCalculateTotalsNetNeverNegative(t *testing.T) {
	promo := &model.PricingPromotion{
		DiscountType:  model.DiscountTypeFixedAmount,
		DiscountValue: d("90000"),
	}

	// 90000 promo + 50% regular discount far exceeds the base
	totals := CalculateTotals(d("100000"), decimal.Zero, promo, d("50"), d("10"))

	if totals.NetSubtotal.IsNegative() || totals.FinalTotal.IsNegative() {
		t.Errorf("net %s / final %s must not be negative", totals.NetSubtotal, totals.FinalTotal)
	}
	if !totals.NetSubtotal.IsZero() {
		t.Errorf("net subtotal = %s, want clamp to 0", totals.NetSubtotal)
	}
}

func TestCalculateTotalsPackageIsAdditive(t *testing.T) {
	totals := CalculateTotals(d("35000"), d("15000"), nil, decimal.Zero, decimal.Zero)

	if !totals.BaseTotal.Equal(d("50000")) {
		t.Errorf("base total = %s, want 50000", totals.BaseTotal)
	}
	if !totals.FinalTotal.Equal(d("50000")) {
		t.Errorf("final total = %s, want 50000", totals.FinalTotal)
	}
}

func TestLineBasePrice(t *testing.T) {
	tests := []struct {
		name        string
		serviceType string
		unitPrice   string
		quantity    int
		serviceDays int
		want        string
	}{
		{"standard multiplies quantity and days", "Airport Transfer", "20000", 2, 1, "40000"},
		{"standard multi-day", "City Tour", "15000", 1, 3, "45000"},
		{"charter ignores quantity", "Private Charter", "184000", 2, 3, "552000"},
		{"zero quantity clamps to one", "Airport Transfer", "20000", 0, 1, "20000"},
		{"zero days clamp to one", "Airport Transfer", "20000", 1, 0, "20000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineBasePrice(d(tt.unitPrice), tt.serviceType, tt.quantity, tt.serviceDays)
			if !got.Equal(d(tt.want)) {
				t.Errorf("LineBasePrice = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApplyTimeAdjustment(t *testing.T) {
	// 25% night surcharge on 40000
	got := ApplyTimeAdjustment(d("40000"), d("25"))
	if !got.Equal(d("50000")) {
		t.Errorf("adjusted = %s, want 50000", got)
	}

	// Negative adjustment discounts
	got = ApplyTimeAdjustment(d("40000"), d("-10"))
	if !got.Equal(d("36000")) {
		t.Errorf("adjusted = %s, want 36000", got)
	}

	// Zero leaves the base untouched
	got = ApplyTimeAdjustment(d("40000"), decimal.Zero)
	if !got.Equal(d("40000")) {
		t.Errorf("adjusted = %s, want 40000", got)
	}
}

func TestMultiLineSubtotal(t *testing.T) {
	// Two independent lines: 20000 + 15000
	lineA := LineBasePrice(d("20000"), "Airport Transfer", 1, 1)
	lineB := LineBasePrice(d("15000"), "City Tour", 1, 1)

	totals := CalculateTotals(lineA.Add(lineB), decimal.Zero, nil, decimal.Zero, decimal.Zero)
	if !totals.FinalTotal.Equal(d("35000")) {
		t.Errorf("final total = %s, want 35000", totals.FinalTotal)
	}
}

func TestPriceLineResolvedAmountIsLineTotal(t *testing.T) {
	// An empty catalog drops resolution to the static charter table:
	// 23000/h x 8h/day x 3 days = 552000. That amount already covers the
	// whole booking, so the line total must not multiply days or quantity in
	// again.
	svc := &quotationService{
		resolver: NewPriceResolver(&stubPricingRepo{}, nil, DefaultFallbackTable()),
	}

	line := svc.priceLine(context.Background(), QuotationItemRequest{
		ServiceTypeID:   uuid.NewString(),
		ServiceTypeName: "Private Charter",
		VehicleType:     "Toyota Alphard",
		DurationHours:   8,
		ServiceDays:     3,
		Quantity:        2,
	})
	if line.err != nil {
		t.Fatalf("unexpected error: %v", line.err)
	}
	if !line.item.TotalPrice.Equal(d("552000")) {
		t.Errorf("line total = %s, want 552000", line.item.TotalPrice)
	}
	if line.item.PriceSource != string(PriceSourceStaticFallback) {
		t.Errorf("price source = %s, want %s", line.item.PriceSource, PriceSourceStaticFallback)
	}
}

func TestPriceLineManualUnitPriceMultipliesOut(t *testing.T) {
	// Caller-supplied prices are per unit, so the charter day multiplier
	// still applies: 184000/day x 3 days, quantity ignored.
	svc := &quotationService{
		resolver: NewPriceResolver(&stubPricingRepo{}, nil, DefaultFallbackTable()),
	}

	line := svc.priceLine(context.Background(), QuotationItemRequest{
		ServiceTypeID:   uuid.NewString(),
		ServiceTypeName: "Private Charter",
		VehicleType:     "Toyota Alphard",
		UnitPrice:       "184000",
		DurationHours:   8,
		ServiceDays:     3,
		Quantity:        2,
	})
	if line.err != nil {
		t.Fatalf("unexpected error: %v", line.err)
	}
	if !line.item.TotalPrice.Equal(d("552000")) {
		t.Errorf("line total = %s, want 552000", line.item.TotalPrice)
	}
	if line.item.PriceSource != "" {
		t.Errorf("price source = %q, want empty for a manual price", line.item.PriceSource)
	}
}

type countingPackageRepo struct {
	pkg   *model.PricingPackage
	calls int
}

func (r *countingPackageRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.PricingPackage, error) {
	r.calls++
	return r.pkg, nil
}

func (r *countingPackageRepo) ListActive(ctx context.Context) ([]model.PricingPackage, error) {
	return nil, nil
}

type countingPromotionRepo struct {
	promo *model.PricingPromotion
	calls int
}

func (r *countingPromotionRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.PricingPromotion, error) {
	return r.promo, nil
}

func (r *countingPromotionRepo) FindActiveByCode(ctx context.Context, code string) (*model.PricingPromotion, error) {
	r.calls++
	return r.promo, nil
}

func (r *countingPromotionRepo) ListActive(ctx context.Context) ([]model.PricingPromotion, error) {
	return nil, nil
}

func TestBuildCachesPackageAndPromotionLookups(t *testing.T) {
	pkgID := uuid.New()
	packages := &countingPackageRepo{pkg: &model.PricingPackage{
		ID:        pkgID,
		Name:      "Meet & Greet",
		BasePrice: d("15000"),
		IsActive:  true,
	}}
	promotions := &countingPromotionRepo{promo: &model.PricingPromotion{
		ID:            uuid.New(),
		Name:          "Spring Campaign",
		Code:          "SPRING10",
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: d("10"),
		IsActive:      true,
	}}

	svc := &quotationService{
		packages:   packages,
		promotions: promotions,
		currency:   newStaticCurrencyService(),
		cache:      cache.NewMemory(),
	}

	req := CreateQuotationRequest{
		CustomerEmail: "guest@example.com",
		Items: []QuotationItemRequest{{
			ServiceTypeID:   uuid.NewString(),
			ServiceTypeName: "Airport Transfer",
			UnitPrice:       "20000",
		}},
		PackageID:     pkgID.String(),
		PromotionCode: "SPRING10",
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Preview(context.Background(), req); err != nil {
			t.Fatalf("preview %d failed: %v", i, err)
		}
	}

	if packages.calls != 1 {
		t.Errorf("package lookups = %d, want 1 (second preview should hit the cache)", packages.calls)
	}
	if promotions.calls != 1 {
		t.Errorf("promotion lookups = %d, want 1 (second preview should hit the cache)", promotions.calls)
	}
}

func TestFormatQuoteReference(t *testing.T) {
	if got := formatQuoteReference(42); got != "QUO-JPDR-000042" {
		t.Errorf("reference = %q, want QUO-JPDR-000042", got)
	}
}

func TestParsePickupAt(t *testing.T) {
	if got := parsePickupAt("", "10:00"); got != nil {
		t.Error("missing date should disable the pickup moment")
	}
	if got := parsePickupAt("2026-03-01", ""); got == nil {
		t.Error("date without time should still parse")
	}
	if got := parsePickupAt("garbage", "10:00"); got != nil {
		t.Error("malformed date should disable the pickup moment, not fail")
	}

	got := parsePickupAt("2026-03-01", "23:30")
	if got == nil {
		t.Fatal("expected parsed pickup time")
	}
	if got.Hour() != 23 || got.Minute() != 30 {
		t.Errorf("parsed %v, want 23:30", got)
	}
}
