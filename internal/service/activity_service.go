package service

import (
	"context"
	"fmt"

	"chauffeur-backend/internal/model"
	"chauffeur-backend/internal/repository"
)

// ActivityService exposes the audit trail feed for the dashboard.
type ActivityService interface {
	ListActivity(ctx context.Context, page, limit int) ([]model.ActivityLog, int64, error)
	ListEntityActivity(ctx context.Context, entityID string, page, limit int) ([]model.ActivityLog, int64, error)
}

type activityService struct {
	repo repository.ActivityLogRepository
}

func NewActivityService(repo repository.ActivityLogRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) ListActivity(ctx context.Context, page, limit int) ([]model.ActivityLog, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch activity feed: %w", err)
	}
	return logs, total, nil
}

func (s *activityService) ListEntityActivity(ctx context.Context, entityID string, page, limit int) ([]model.ActivityLog, int64, error) {
	logs, total, err := s.repo.ListByEntity(ctx, entityID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch entity activity: %w", err)
	}
	return logs, total, nil
}
