package service

import (
	"context"
	"time"

	"chauffeur-backend/internal/model"
	"chauffeur-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics aggregates quotation volume and value for the dashboard.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error) {
	response := model.StatisticsResponse{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}

	breakdown, err := s.repo.GetStatusBreakdown(ctx, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.ByStatus = breakdown

	total := decimal.Zero
	approved := decimal.Zero
	approvedCount := 0
	rejectedCount := 0
	for _, b := range breakdown {
		response.QuotationCount += b.Count
		if v, err := decimal.NewFromString(b.Value); err == nil {
			total = total.Add(v)
			if b.Status == model.QuotationApproved {
				approved = approved.Add(v)
			}
		}
		switch b.Status {
		case model.QuotationApproved:
			approvedCount += b.Count
		case model.QuotationRejected:
			rejectedCount += b.Count
		}
	}
	response.TotalQuotedValue = total.String()
	response.ApprovedValue = approved.String()

	if decided := approvedCount + rejectedCount; decided > 0 {
		response.ApprovalRate = float64(approvedCount) / float64(decided)
	}

	top, err := s.repo.GetTopServices(ctx, startDate, endDate, 5)
	if err != nil {
		return response, err
	}
	response.TopServices = top

	return response, nil
}
