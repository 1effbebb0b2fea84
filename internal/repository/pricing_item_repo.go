package repository

import (
	"context"

	"chauffeur-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PricingItemRepository exposes the lookups the resolution waterfall needs
// plus admin CRUD. Lookup results are ordered by creation time so the
// resolver's "first match wins" rule is deterministic even when the catalog
// holds duplicates.
type PricingItemRepository interface {
	FindExact(ctx context.Context, serviceTypeID uuid.UUID, vehicleType string, durationHours int) ([]model.PricingItem, error)
	FindHourly(ctx context.Context, serviceTypeID uuid.UUID, vehicleType string) ([]model.PricingItem, error)
	FindByVehicle(ctx context.Context, vehicleType string) ([]model.PricingItem, error)
	Create(ctx context.Context, item *model.PricingItem) error
	Update(ctx context.Context, item *model.PricingItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PricingItem, error)
	List(ctx context.Context, page, limit int) ([]model.PricingItem, int64, error)
}

type pricingItemRepository struct {
	db *gorm.DB
}

func NewPricingItemRepository(db *gorm.DB) PricingItemRepository {
	return &pricingItemRepository{db: db}
}

func (r *pricingItemRepository) FindExact(ctx context.Context, serviceTypeID uuid.UUID, vehicleType string, durationHours int) ([]model.PricingItem, error) {
	var items []model.PricingItem
	err := GetDB(ctx, r.db).
		Where("service_type_id = ? AND vehicle_type = ? AND duration_hours = ? AND is_active = ?",
			serviceTypeID, vehicleType, durationHours, true).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

func (r *pricingItemRepository) FindHourly(ctx context.Context, serviceTypeID uuid.UUID, vehicleType string) ([]model.PricingItem, error) {
	var items []model.PricingItem
	err := GetDB(ctx, r.db).
		Where("service_type_id = ? AND vehicle_type = ? AND duration_hours = 1 AND is_active = ?",
			serviceTypeID, vehicleType, true).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// FindByVehicle is the last-resort database stage: any active price for the
// vehicle regardless of service type or duration, limited to one row.
func (r *pricingItemRepository) FindByVehicle(ctx context.Context, vehicleType string) ([]model.PricingItem, error) {
	var items []model.PricingItem
	err := GetDB(ctx, r.db).
		Where("vehicle_type = ? AND is_active = ?", vehicleType, true).
		Order("created_at asc").
		Limit(1).
		Find(&items).Error
	return items, err
}

func (r *pricingItemRepository) Create(ctx context.Context, item *model.PricingItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *pricingItemRepository) Update(ctx context.Context, item *model.PricingItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *pricingItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PricingItem{}).Error
}

func (r *pricingItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingItem, error) {
	var item model.PricingItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *pricingItemRepository) List(ctx context.Context, page, limit int) ([]model.PricingItem, int64, error) {
	var items []model.PricingItem
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.PricingItem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("service_type_name asc, vehicle_type asc, duration_hours asc").
		Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
