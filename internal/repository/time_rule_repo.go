package repository

import (
	"context"

	"chauffeur-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeRuleRepository interface {
	ListActive(ctx context.Context) ([]model.TimeBasedRule, error)
	List(ctx context.Context, page, limit int) ([]model.TimeBasedRule, int64, error)
	Create(ctx context.Context, rule *model.TimeBasedRule) error
	Update(ctx context.Context, rule *model.TimeBasedRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TimeBasedRule, error)
}

type timeRuleRepository struct {
	db *gorm.DB
}

func NewTimeRuleRepository(db *gorm.DB) TimeRuleRepository {
	return &timeRuleRepository{db: db}
}

func (r *timeRuleRepository) ListActive(ctx context.Context) ([]model.TimeBasedRule, error) {
	var rules []model.TimeBasedRule
	err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("priority desc, name asc").
		Find(&rules).Error
	return rules, err
}

func (r *timeRuleRepository) List(ctx context.Context, page, limit int) ([]model.TimeBasedRule, int64, error) {
	var rules []model.TimeBasedRule
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TimeBasedRule{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("priority desc, name asc").Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

func (r *timeRuleRepository) Create(ctx context.Context, rule *model.TimeBasedRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *timeRuleRepository) Update(ctx context.Context, rule *model.TimeBasedRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *timeRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TimeBasedRule{}).Error
}

func (r *timeRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TimeBasedRule, error) {
	var rule model.TimeBasedRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}
