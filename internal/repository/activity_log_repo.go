package repository

import (
	"context"

	"chauffeur-backend/internal/model"

	"gorm.io/gorm"
)

type ActivityLogRepository interface {
	Log(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, page, limit int) ([]model.ActivityLog, int64, error)
	ListByEntity(ctx context.Context, entityID string, page, limit int) ([]model.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Log(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, page, limit int) ([]model.ActivityLog, int64, error) {
	return r.list(ctx, "", page, limit)
}

// ListByEntity returns the activity timeline for one quotation or pricing record.
func (r *activityLogRepository) ListByEntity(ctx context.Context, entityID string, page, limit int) ([]model.ActivityLog, int64, error) {
	return r.list(ctx, entityID, page, limit)
}

func (r *activityLogRepository) list(ctx context.Context, entityID string, page, limit int) ([]model.ActivityLog, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.ActivityLog{})
	if entityID != "" {
		db = db.Where("entity_id = ?", entityID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.ActivityLog
	offset := (page - 1) * limit
	if err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
