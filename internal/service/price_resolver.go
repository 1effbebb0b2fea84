package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"chauffeur-backend/internal/cache"
	"chauffeur-backend/internal/model"
	"chauffeur-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceRequest is the immutable input to one price resolution. HoursPerDay
// is optional; when nil the charter formula falls back to DurationHours.
type ServiceRequest struct {
	ServiceTypeID   uuid.UUID
	ServiceTypeName string
	VehicleType     string
	DurationHours   int
	ServiceDays     int
	HoursPerDay     *int
	PickupAt        *time.Time
}

// PriceSource identifies which resolution stage produced a base amount.
type PriceSource string

const (
	PriceSourceExactMatch     PriceSource = "exact_match"
	PriceSourceHourlyRate     PriceSource = "hourly_rate"
	PriceSourceVehicleMatch   PriceSource = "vehicle_match"
	PriceSourceStaticFallback PriceSource = "static_fallback"
	PriceSourceDefault        PriceSource = "default"
)

// PriceResolution pairs the resolved base amount with its provenance.
// Callers wanting to detect degraded pricing inspect Source.
type PriceResolution struct {
	BaseAmount decimal.Decimal `json:"base_amount"`
	Source     PriceSource     `json:"source"`
}

// FallbackTable is the static last-resort pricing, loaded from configuration
// so it can be audited and tested like any other pricing tier. Airport rates
// are per hour, keyed by airport then vehicle class substring; charter rates
// are hourly by vehicle class and go through the charter day formula.
type FallbackTable struct {
	AirportRates       map[string]map[string]decimal.Decimal `json:"airport_rates"`
	CharterHourlyRates map[string]decimal.Decimal            `json:"charter_hourly_rates"`
	DefaultPrice       decimal.Decimal                       `json:"default_price"`
}

// DefaultFallbackTable returns the compiled-in table used when no external
// configuration file is provided. Amounts are JPY.
func DefaultFallbackTable() FallbackTable {
	return FallbackTable{
		AirportRates: map[string]map[string]decimal.Decimal{
			"haneda": {
				"alphard": decimal.NewFromInt(46000),
				"hiace":   decimal.NewFromInt(58000),
			},
			"narita": {
				"alphard": decimal.NewFromInt(52000),
				"hiace":   decimal.NewFromInt(65000),
			},
		},
		CharterHourlyRates: map[string]decimal.Decimal{
			"alphard": decimal.NewFromInt(23000),
			"hiace":   decimal.NewFromInt(30000),
		},
		DefaultPrice: decimal.NewFromInt(46000),
	}
}

// LoadFallbackTable reads the table from a JSON file. An empty path returns
// the compiled-in defaults; a broken file is an error so misconfiguration is
// caught at startup rather than silently quoting defaults.
func LoadFallbackTable(path string) (FallbackTable, error) {
	if path == "" {
		return DefaultFallbackTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FallbackTable{}, fmt.Errorf("failed to read fallback pricing table: %w", err)
	}

	var table FallbackTable
	if err := json.Unmarshal(data, &table); err != nil {
		return FallbackTable{}, fmt.Errorf("failed to parse fallback pricing table: %w", err)
	}
	if table.DefaultPrice.IsZero() {
		table.DefaultPrice = DefaultFallbackTable().DefaultPrice
	}
	return table, nil
}

// PriceResolver resolves a base amount for a service request through an
// ordered waterfall of strategies. It never fails: lookup errors and empty
// results both advance to the next stage, and the terminal default always
// produces a value.
type PriceResolver struct {
	repo  repository.PricingItemRepository
	cache cache.Cache
	table FallbackTable
}

func NewPriceResolver(repo repository.PricingItemRepository, c cache.Cache, table FallbackTable) *PriceResolver {
	if c == nil {
		c = cache.NewMemory()
	}
	return &PriceResolver{repo: repo, cache: c, table: table}
}

// resolveStage is one waterfall strategy: ok=false means the stage had
// nothing to offer and resolution moves on.
type resolveStage struct {
	source PriceSource
	fn     func(ctx context.Context, req ServiceRequest) (decimal.Decimal, bool, error)
}

// Resolve walks the waterfall and returns the first stage that yields a
// price. The returned amount is never negative.
func (r *PriceResolver) Resolve(ctx context.Context, req ServiceRequest) PriceResolution {
	req = sanitizeRequest(req)

	stages := []resolveStage{
		{PriceSourceExactMatch, r.resolveExact},
		{PriceSourceHourlyRate, r.resolveHourly},
		{PriceSourceVehicleMatch, r.resolveVehicle},
		{PriceSourceStaticFallback, r.resolveStatic},
	}

	for _, stage := range stages {
		amount, ok, err := stage.fn(ctx, req)
		if err != nil {
			log.Printf("price resolver: stage %s failed for %s/%s: %v", stage.source, req.ServiceTypeName, req.VehicleType, err)
			continue
		}
		if !ok || amount.IsNegative() {
			continue
		}
		return PriceResolution{BaseAmount: amount, Source: stage.source}
	}

	return PriceResolution{BaseAmount: r.table.DefaultPrice, Source: PriceSourceDefault}
}

func sanitizeRequest(req ServiceRequest) ServiceRequest {
	if req.DurationHours <= 0 {
		req.DurationHours = 1
	}
	if req.ServiceDays <= 0 {
		req.ServiceDays = 1
	}
	return req
}

func (r *PriceResolver) resolveExact(ctx context.Context, req ServiceRequest) (decimal.Decimal, bool, error) {
	key := fmt.Sprintf("exact:%s:%s:%d", req.ServiceTypeID, req.VehicleType, req.DurationHours)
	items, err := r.cachedLookup(ctx, key, func() ([]model.PricingItem, error) {
		return r.repo.FindExact(ctx, req.ServiceTypeID, req.VehicleType, req.DurationHours)
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(items) == 0 {
		return decimal.Zero, false, nil
	}
	return items[0].Price, true, nil
}

func (r *PriceResolver) resolveHourly(ctx context.Context, req ServiceRequest) (decimal.Decimal, bool, error) {
	key := fmt.Sprintf("hourly:%s:%s", req.ServiceTypeID, req.VehicleType)
	items, err := r.cachedLookup(ctx, key, func() ([]model.PricingItem, error) {
		return r.repo.FindHourly(ctx, req.ServiceTypeID, req.VehicleType)
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(items) == 0 {
		return decimal.Zero, false, nil
	}
	return applyRateFormula(items[0].Price, req), true, nil
}

func (r *PriceResolver) resolveVehicle(ctx context.Context, req ServiceRequest) (decimal.Decimal, bool, error) {
	key := "vehicle:" + req.VehicleType
	items, err := r.cachedLookup(ctx, key, func() ([]model.PricingItem, error) {
		return r.repo.FindByVehicle(ctx, req.VehicleType)
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(items) == 0 {
		return decimal.Zero, false, nil
	}
	// Treated as an already-complete base price: no formula applied.
	return items[0].Price, true, nil
}

func (r *PriceResolver) resolveStatic(_ context.Context, req ServiceRequest) (decimal.Decimal, bool, error) {
	name := strings.ToLower(req.ServiceTypeName)

	switch {
	case strings.Contains(name, "airport"):
		rates, ok := r.airportRatesFor(name)
		if !ok {
			return decimal.Zero, false, nil
		}
		rate, ok := matchVehicleClass(rates, req.VehicleType)
		if !ok {
			return decimal.Zero, false, nil
		}
		return rate.Mul(decimal.NewFromInt(int64(req.DurationHours))), true, nil

	case strings.Contains(name, "charter"):
		rate, ok := matchVehicleClass(r.table.CharterHourlyRates, req.VehicleType)
		if !ok {
			return decimal.Zero, false, nil
		}
		return applyRateFormula(rate, req), true, nil
	}

	return decimal.Zero, false, nil
}

// airportRatesFor picks the airport block whose key appears in the service
// type name; the first block in sorted key order is the default when none
// matches, so airport transfers always find a rate table.
func (r *PriceResolver) airportRatesFor(serviceName string) (map[string]decimal.Decimal, bool) {
	if len(r.table.AirportRates) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(r.table.AirportRates))
	for k := range r.table.AirportRates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.Contains(serviceName, k) {
			return r.table.AirportRates[k], true
		}
	}
	return r.table.AirportRates[keys[0]], true
}

// matchVehicleClass finds the rate whose class key is a substring of the
// vehicle type, comparing case-insensitively in sorted key order.
func matchVehicleClass(rates map[string]decimal.Decimal, vehicleType string) (decimal.Decimal, bool) {
	vt := strings.ToLower(vehicleType)

	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.Contains(vt, k) {
			return rates[k], true
		}
	}
	return decimal.Zero, false
}

// applyRateFormula turns an hourly rate into a base amount. Charter services
// bill per day: rate × hours-per-day (defaulting to the duration) × days.
// Everything else is rate × duration.
func applyRateFormula(hourlyRate decimal.Decimal, req ServiceRequest) decimal.Decimal {
	if IsCharterService(req.ServiceTypeName) {
		effectiveHours := req.DurationHours
		if req.HoursPerDay != nil && *req.HoursPerDay > 0 {
			effectiveHours = *req.HoursPerDay
		}
		dailyRate := hourlyRate.Mul(decimal.NewFromInt(int64(effectiveHours)))
		return dailyRate.Mul(decimal.NewFromInt(int64(req.ServiceDays)))
	}
	return hourlyRate.Mul(decimal.NewFromInt(int64(req.DurationHours)))
}

// IsCharterService reports whether a service type follows charter (per-day)
// pricing rather than per-duration pricing.
func IsCharterService(serviceTypeName string) bool {
	return strings.Contains(strings.ToLower(serviceTypeName), "charter")
}

// cachedLookup is the read-through path for catalog queries: a burst of
// quote computations within the TTL hits the database once per distinct key.
func (r *PriceResolver) cachedLookup(ctx context.Context, key string, fetch func() ([]model.PricingItem, error)) ([]model.PricingItem, error) {
	if raw, ok := r.cache.Get(ctx, cache.NamespacePricingItems, key); ok {
		var items []model.PricingItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, nil
		}
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(items); err == nil {
		r.cache.Set(ctx, cache.NamespacePricingItems, key, string(raw), cache.DefaultTTL)
	}
	return items, nil
}
