package service

import (
	"context"
	"errors"
	"testing"

	"chauffeur-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubPricingRepo struct {
	exact      []model.PricingItem
	hourly     []model.PricingItem
	vehicle    []model.PricingItem
	exactErr   error
	hourlyErr  error
	vehicleErr error
}

func (s *stubPricingRepo) FindExact(ctx context.Context, serviceTypeID uuid.UUID, vehicleType string, durationHours int) ([]model.PricingItem, error) {
	return s.exact, s.exactErr
}

func (s *stubPricingRepo) FindHourly(ctx context.Context, serviceTypeID uuid.UUID, vehicleType string) ([]model.PricingItem, error) {
	return s.hourly, s.hourlyErr
}

func (s *stubPricingRepo) FindByVehicle(ctx context.Context, vehicleType string) ([]model.PricingItem, error) {
	return s.vehicle, s.vehicleErr
}

func (s *stubPricingRepo) Create(ctx context.Context, item *model.PricingItem) error { return nil }
func (s *stubPricingRepo) Update(ctx context.Context, item *model.PricingItem) error { return nil }
func (s *stubPricingRepo) Delete(ctx context.Context, id uuid.UUID) error            { return nil }
func (s *stubPricingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingItem, error) {
	return nil, errors.New("not found")
}
func (s *stubPricingRepo) List(ctx context.Context, page, limit int) ([]model.PricingItem, int64, error) {
	return nil, 0, nil
}

func priceItem(price int64) model.PricingItem {
	return model.PricingItem{
		ID:    uuid.New(),
		Price: decimal.NewFromInt(price),
	}
}

func TestResolveExactMatchWins(t *testing.T) {
	repo := &stubPricingRepo{
		exact:  []model.PricingItem{priceItem(46000)},
		hourly: []model.PricingItem{priceItem(23000)},
	}
	r := NewPriceResolver(repo, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Airport Transfer Haneda",
		VehicleType:     "Toyota Alphard",
		DurationHours:   2,
		ServiceDays:     1,
	})

	if res.Source != PriceSourceExactMatch {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceExactMatch)
	}
	if !res.BaseAmount.Equal(decimal.NewFromInt(46000)) {
		t.Errorf("base amount = %s, want 46000", res.BaseAmount)
	}
}

func TestResolveHourlyCharterFormula(t *testing.T) {
	repo := &stubPricingRepo{
		hourly: []model.PricingItem{priceItem(23000)},
	}
	r := NewPriceResolver(repo, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Private Charter",
		VehicleType:     "Toyota Alphard",
		DurationHours:   8,
		ServiceDays:     3,
	})

	if res.Source != PriceSourceHourlyRate {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceHourlyRate)
	}
	// 23000/hour x 8 hours/day x 3 days
	if !res.BaseAmount.Equal(decimal.NewFromInt(552000)) {
		t.Errorf("base amount = %s, want 552000", res.BaseAmount)
	}
}

func TestResolveHourlyUsesHoursPerDayWhenSet(t *testing.T) {
	repo := &stubPricingRepo{
		hourly: []model.PricingItem{priceItem(10000)},
	}
	r := NewPriceResolver(repo, nil, DefaultFallbackTable())

	hoursPerDay := 6
	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Charter Service",
		VehicleType:     "Hiace",
		DurationHours:   10,
		ServiceDays:     2,
		HoursPerDay:     &hoursPerDay,
	})

	// 10000 x 6 hours/day x 2 days, DurationHours is ignored
	if !res.BaseAmount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("base amount = %s, want 120000", res.BaseAmount)
	}
}

func TestResolveVehicleMatchFallback(t *testing.T) {
	repo := &stubPricingRepo{
		vehicle: []model.PricingItem{priceItem(30000)},
	}
	r := NewPriceResolver(repo, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "City Tour",
		VehicleType:     "Toyota Hiace",
		DurationHours:   4,
		ServiceDays:     1,
	})

	if res.Source != PriceSourceVehicleMatch {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceVehicleMatch)
	}
	if !res.BaseAmount.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("base amount = %s, want 30000", res.BaseAmount)
	}
}

func TestResolveStaticAirportRate(t *testing.T) {
	r := NewPriceResolver(&stubPricingRepo{}, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Narita Airport Transfer",
		VehicleType:     "Toyota Alphard Executive",
		DurationHours:   2,
		ServiceDays:     1,
	})

	if res.Source != PriceSourceStaticFallback {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceStaticFallback)
	}
	// narita/alphard 52000 per hour x 2 hours
	if !res.BaseAmount.Equal(decimal.NewFromInt(104000)) {
		t.Errorf("base amount = %s, want 104000", res.BaseAmount)
	}
}

func TestResolveDefaultWhenEverythingMisses(t *testing.T) {
	r := NewPriceResolver(&stubPricingRepo{}, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Unknown Service",
		VehicleType:     "Unknown Vehicle",
		DurationHours:   1,
		ServiceDays:     1,
	})

	if res.Source != PriceSourceDefault {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceDefault)
	}
	if !res.BaseAmount.Equal(decimal.NewFromInt(46000)) {
		t.Errorf("base amount = %s, want 46000", res.BaseAmount)
	}
}

func TestResolveLookupErrorAdvancesToNextStage(t *testing.T) {
	repo := &stubPricingRepo{
		exactErr:  errors.New("connection reset"),
		hourlyErr: errors.New("connection reset"),
		vehicle:   []model.PricingItem{priceItem(18000)},
	}
	r := NewPriceResolver(repo, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "City Tour",
		VehicleType:     "Sedan",
		DurationHours:   1,
		ServiceDays:     1,
	})

	if res.Source != PriceSourceVehicleMatch {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceVehicleMatch)
	}
}

func TestResolveNegativePriceTreatedAsMiss(t *testing.T) {
	repo := &stubPricingRepo{
		exact: []model.PricingItem{{ID: uuid.New(), Price: decimal.NewFromInt(-100)}},
	}
	r := NewPriceResolver(repo, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Unknown",
		VehicleType:     "Unknown",
		DurationHours:   1,
		ServiceDays:     1,
	})

	if res.Source != PriceSourceDefault {
		t.Fatalf("source = %s, want %s", res.Source, PriceSourceDefault)
	}
	if res.BaseAmount.IsNegative() {
		t.Errorf("resolved amount must never be negative, got %s", res.BaseAmount)
	}
}

func TestResolveSanitizesNonPositiveDurations(t *testing.T) {
	r := NewPriceResolver(&stubPricingRepo{}, nil, DefaultFallbackTable())

	res := r.Resolve(context.Background(), ServiceRequest{
		ServiceTypeID:   uuid.New(),
		ServiceTypeName: "Haneda Airport Transfer",
		VehicleType:     "Alphard",
		DurationHours:   0,
		ServiceDays:     -2,
	})

	// Duration clamps to 1 hour: haneda/alphard 46000 x 1
	if !res.BaseAmount.Equal(decimal.NewFromInt(46000)) {
		t.Errorf("base amount = %s, want 46000", res.BaseAmount)
	}
}

func TestLoadFallbackTableDefaults(t *testing.T) {
	table, err := LoadFallbackTable("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.DefaultPrice.Equal(decimal.NewFromInt(46000)) {
		t.Errorf("default price = %s, want 46000", table.DefaultPrice)
	}
}

func TestLoadFallbackTableMissingFile(t *testing.T) {
	if _, err := LoadFallbackTable("/nonexistent/pricing.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIsCharterService(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Private Charter", true},
		{"charter tour", true},
		{"Full-Day CHARTER", true},
		{"Airport Transfer", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCharterService(tt.name); got != tt.want {
			t.Errorf("IsCharterService(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
