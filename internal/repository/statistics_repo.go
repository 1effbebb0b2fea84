package repository

import (
	"context"
	"fmt"
	"time"

	"chauffeur-backend/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	GetStatusBreakdown(ctx context.Context, start, end time.Time) ([]model.StatusBreakdown, error)
	GetTopServices(ctx context.Context, start, end time.Time, limit int) ([]model.ServiceRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetStatusBreakdown(ctx context.Context, start, end time.Time) ([]model.StatusBreakdown, error) {
	var breakdown []model.StatusBreakdown
	if err := r.db.WithContext(ctx).Table("quotations").
		Select("status, COUNT(*) as count, COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as value").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("status").
		Order("status").
		Scan(&breakdown).Error; err != nil {
		return nil, fmt.Errorf("failed to query status breakdown: %w", err)
	}
	return breakdown, nil
}

func (r *statisticsRepository) GetTopServices(ctx context.Context, start, end time.Time, limit int) ([]model.ServiceRanking, error) {
	var rankings []model.ServiceRanking
	if err := r.db.WithContext(ctx).Table("quotation_items").
		Select("quotation_items.service_type_name, COUNT(*) as quote_count, COALESCE(CAST(SUM(quotation_items.total_price) AS TEXT), '0') as total_value").
		Joins("JOIN quotations ON quotations.id = quotation_items.quotation_id").
		Where("quotations.created_at >= ? AND quotations.created_at <= ?", start, end).
		Group("quotation_items.service_type_name").
		Order("quote_count DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top services: %w", err)
	}
	return rankings, nil
}
