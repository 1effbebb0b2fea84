package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"chauffeur-backend/internal/cache"
	"chauffeur-backend/internal/model"
	"chauffeur-backend/internal/repository"
	ws "chauffeur-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type PricingItemRequest struct {
	ServiceTypeID   string `json:"service_type_id" binding:"required"`
	ServiceTypeName string `json:"service_type_name" binding:"required"`
	VehicleType     string `json:"vehicle_type" binding:"required"`
	DurationHours   int    `json:"duration_hours" binding:"required"`
	Price           string `json:"price" binding:"required"`
	Currency        string `json:"currency"`
	IsActive        *bool  `json:"is_active"`
}

// --- Interface ---

// PricingService owns the pricing catalog: items the resolver looks up,
// packages, and promotions. Writes invalidate the resolver's cache so the
// next quote sees the change.
type PricingService interface {
	ListItems(ctx context.Context, page, limit int) ([]model.PricingItem, int64, error)
	GetItem(ctx context.Context, id string) (*model.PricingItem, error)
	CreateItem(ctx context.Context, userID *uuid.UUID, req PricingItemRequest) (*model.PricingItem, error)
	UpdateItem(ctx context.Context, userID *uuid.UUID, id string, req PricingItemRequest) (*model.PricingItem, error)
	DeleteItem(ctx context.Context, userID *uuid.UUID, id string) error

	ListPackages(ctx context.Context) ([]model.PricingPackage, error)
	ListPromotions(ctx context.Context) ([]model.PricingPromotion, error)
	ValidatePromotionCode(ctx context.Context, code string) (*model.PricingPromotion, error)
}

type pricingService struct {
	items      repository.PricingItemRepository
	packages   repository.PackageRepository
	promotions repository.PromotionRepository
	activity   repository.ActivityLogRepository
	cache      cache.Cache
	hub        *ws.Hub
}

func NewPricingService(
	items repository.PricingItemRepository,
	packages repository.PackageRepository,
	promotions repository.PromotionRepository,
	activity repository.ActivityLogRepository,
	c cache.Cache,
	hub *ws.Hub,
) PricingService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &pricingService{
		items:      items,
		packages:   packages,
		promotions: promotions,
		activity:   activity,
		cache:      c,
		hub:        hub,
	}
}

// --- Items ---

func (s *pricingService) ListItems(ctx context.Context, page, limit int) ([]model.PricingItem, int64, error) {
	items, total, err := s.items.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch pricing items: %w", err)
	}
	return items, total, nil
}

func (s *pricingService) GetItem(ctx context.Context, id string) (*model.PricingItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing item id: %w", err)
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("pricing item not found: %w", err)
	}
	return item, nil
}

func (s *pricingService) CreateItem(ctx context.Context, userID *uuid.UUID, req PricingItemRequest) (*model.PricingItem, error) {
	item, err := itemFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create pricing item: %w", err)
	}

	s.afterItemWrite(ctx, userID, model.ActionCreatePricingItem, item)
	return item, nil
}

func (s *pricingService) UpdateItem(ctx context.Context, userID *uuid.UUID, id string, req PricingItemRequest) (*model.PricingItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing item id: %w", err)
	}

	existing, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("pricing item not found: %w", err)
	}

	updated, err := itemFromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.items.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update pricing item: %w", err)
	}

	s.afterItemWrite(ctx, userID, model.ActionUpdatePricingItem, updated)
	return updated, nil
}

func (s *pricingService) DeleteItem(ctx context.Context, userID *uuid.UUID, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid pricing item id: %w", err)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("pricing item not found: %w", err)
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete pricing item: %w", err)
	}

	s.afterItemWrite(ctx, userID, model.ActionDeletePricingItem, item)
	return nil
}

// afterItemWrite handles the cross-cutting tail of every catalog write:
// cache invalidation, a dashboard push, and a best-effort audit entry.
func (s *pricingService) afterItemWrite(ctx context.Context, userID *uuid.UUID, action string, item *model.PricingItem) {
	s.cache.Invalidate(ctx, cache.NamespacePricingItems)
	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventPricingChanged, item.ID.String())
	}

	details, _ := json.Marshal(map[string]interface{}{
		"service_type_name": item.ServiceTypeName,
		"vehicle_type":      item.VehicleType,
		"duration_hours":    item.DurationHours,
		"price":             item.Price.String(),
	})
	entry := &model.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityID:   item.ID.String(),
		EntityName: item.ServiceTypeName + " / " + item.VehicleType,
		Details:    string(details),
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		log.Printf("pricing: failed to write activity log: %v", err)
	}
}

// --- Packages and promotions ---

func (s *pricingService) ListPackages(ctx context.Context) ([]model.PricingPackage, error) {
	pkgs, err := s.packages.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch packages: %w", err)
	}
	return pkgs, nil
}

func (s *pricingService) ListPromotions(ctx context.Context) ([]model.PricingPromotion, error) {
	promos, err := s.promotions.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch promotions: %w", err)
	}
	return promos, nil
}

// ValidatePromotionCode resolves a code to its promotion if it is active and
// inside its validity window.
func (s *pricingService) ValidatePromotionCode(ctx context.Context, code string) (*model.PricingPromotion, error) {
	promo, err := cachedRecord(ctx, s.cache, cache.NamespacePromotions, "code:"+code, func() (*model.PricingPromotion, error) {
		return s.promotions.FindActiveByCode(ctx, code)
	})
	if err != nil {
		return nil, fmt.Errorf("promotion code is invalid or expired: %w", err)
	}
	return promo, nil
}

// cachedRecord is the read-through path for single reference records such as
// packages and promotions: bursts of quote computations within the TTL hit
// the database once per distinct key. Cache errors fall through to the source
// of truth.
func cachedRecord[T any](ctx context.Context, c cache.Cache, namespace, key string, fetch func() (*T, error)) (*T, error) {
	if raw, ok := c.Get(ctx, namespace, key); ok {
		var record T
		if err := json.Unmarshal([]byte(raw), &record); err == nil {
			return &record, nil
		}
	}

	record, err := fetch()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(record); err == nil {
		c.Set(ctx, namespace, key, string(raw), cache.DefaultTTL)
	}
	return record, nil
}

// --- Helpers ---

func itemFromRequest(req PricingItemRequest) (*model.PricingItem, error) {
	serviceTypeID, err := uuid.Parse(req.ServiceTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid service_type_id: %w", err)
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	if req.DurationHours <= 0 {
		return nil, fmt.Errorf("duration_hours must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = model.BaseCurrency
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &model.PricingItem{
		ServiceTypeID:   serviceTypeID,
		ServiceTypeName: req.ServiceTypeName,
		VehicleType:     req.VehicleType,
		DurationHours:   req.DurationHours,
		Price:           price,
		Currency:        currency,
		IsActive:        active,
	}, nil
}
