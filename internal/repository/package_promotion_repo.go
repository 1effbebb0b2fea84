package repository

import (
	"context"
	"time"

	"chauffeur-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PackageRepository interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.PricingPackage, error)
	ListActive(ctx context.Context) ([]model.PricingPackage, error)
}

type packageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.PricingPackage, error) {
	var pkg model.PricingPackage
	if err := GetDB(ctx, r.db).Preload("Items").
		First(&pkg, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) ListActive(ctx context.Context) ([]model.PricingPackage, error) {
	var pkgs []model.PricingPackage
	err := GetDB(ctx, r.db).Preload("Items").
		Where("is_active = ?", true).
		Order("name asc").
		Find(&pkgs).Error
	return pkgs, err
}

type PromotionRepository interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.PricingPromotion, error)
	FindActiveByCode(ctx context.Context, code string) (*model.PricingPromotion, error)
	ListActive(ctx context.Context) ([]model.PricingPromotion, error)
}

type promotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.PricingPromotion, error) {
	var promo model.PricingPromotion
	if err := activePromotions(GetDB(ctx, r.db)).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promotionRepository) FindActiveByCode(ctx context.Context, code string) (*model.PricingPromotion, error) {
	var promo model.PricingPromotion
	if err := activePromotions(GetDB(ctx, r.db)).First(&promo, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promotionRepository) ListActive(ctx context.Context) ([]model.PricingPromotion, error) {
	var promos []model.PricingPromotion
	err := activePromotions(GetDB(ctx, r.db)).Order("name asc").Find(&promos).Error
	return promos, err
}

// activePromotions scopes to promotions that are flagged active and inside
// their validity window (open-ended bounds count as valid).
func activePromotions(db *gorm.DB) *gorm.DB {
	now := time.Now()
	return db.Where("is_active = ?", true).
		Where("(starts_at IS NULL OR starts_at <= ?)", now).
		Where("(ends_at IS NULL OR ends_at >= ?)", now)
}
