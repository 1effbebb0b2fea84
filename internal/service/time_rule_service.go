package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"chauffeur-backend/internal/cache"
	"chauffeur-backend/internal/model"
	"chauffeur-backend/internal/repository"
	ws "chauffeur-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type TimeRuleRequest struct {
	Name                 string `json:"name" binding:"required"`
	StartTime            string `json:"start_time"` // HH:MM, empty = no lower bound
	EndTime              string `json:"end_time"`   // HH:MM, empty = no upper bound
	ApplicableDays       []int  `json:"applicable_days"`
	AdjustmentPercentage string `json:"adjustment_percentage" binding:"required"` // signed decimal string
	Priority             int    `json:"priority"`
	IsActive             *bool  `json:"is_active"`
	Description          string `json:"description"`
}

type TimeRuleResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	ApplicableDays       []int  `json:"applicable_days"`
	AdjustmentPercentage string `json:"adjustment_percentage"`
	Priority             int    `json:"priority"`
	IsActive             bool   `json:"is_active"`
	Description          string `json:"description"`
	CreatedAt            string `json:"created_at"`
}

// --- Interface ---

type TimeRuleService interface {
	MatchForPickup(ctx context.Context, pickup time.Time) ([]model.TimeBasedRule, error)
	ListRules(ctx context.Context, page, limit int) ([]TimeRuleResponse, int64, error)
	CreateRule(ctx context.Context, userID *uuid.UUID, req TimeRuleRequest) (TimeRuleResponse, error)
	UpdateRule(ctx context.Context, userID *uuid.UUID, id string, req TimeRuleRequest) (TimeRuleResponse, error)
	DeleteRule(ctx context.Context, userID *uuid.UUID, id string) error
}

type timeRuleService struct {
	repo     repository.TimeRuleRepository
	activity repository.ActivityLogRepository
	cache    cache.Cache
	hub      *ws.Hub
}

func NewTimeRuleService(repo repository.TimeRuleRepository, activity repository.ActivityLogRepository, c cache.Cache, hub *ws.Hub) TimeRuleService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &timeRuleService{repo: repo, activity: activity, cache: c, hub: hub}
}

// --- Matching ---

// MatchTimeRules returns every rule whose weekday set and time window contain
// the pickup moment. All matches apply; their percentages are summed by the
// aggregation step, and the priority ordering here only makes the output
// deterministic for auditing.
func MatchTimeRules(pickup time.Time, rules []model.TimeBasedRule) []model.TimeBasedRule {
	var matched []model.TimeBasedRule
	for _, rule := range rules {
		if ruleMatchesDay(rule, pickup) && ruleMatchesTime(rule, pickup) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// SumAdjustments totals the signed percentages of the matched rules.
func SumAdjustments(rules []model.TimeBasedRule) decimal.Decimal {
	total := decimal.Zero
	for _, rule := range rules {
		total = total.Add(rule.AdjustmentPercentage)
	}
	return total
}

// RuleNames joins the matched rule names for storage on the line item.
func RuleNames(rules []model.TimeBasedRule) string {
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	return strings.Join(names, ", ")
}

// ruleMatchesDay: an empty weekday set means every day. Weekday numbering
// follows time.Weekday (0 = Sunday).
func ruleMatchesDay(rule model.TimeBasedRule, pickup time.Time) bool {
	if len(rule.ApplicableDays) == 0 {
		return true
	}
	day := int(pickup.Weekday())
	for _, d := range rule.ApplicableDays {
		if d == day {
			return true
		}
	}
	return false
}

// ruleMatchesTime checks the [start,end] window in minutes since midnight.
// A window with start after end crosses midnight: the pickup matches when it
// falls after the start or before the end. Rules missing either bound match
// any time of day.
func ruleMatchesTime(rule model.TimeBasedRule, pickup time.Time) bool {
	start, okStart := parseClockMinutes(rule.StartTime)
	end, okEnd := parseClockMinutes(rule.EndTime)
	if !okStart || !okEnd {
		return true
	}

	minute := pickup.Hour()*60 + pickup.Minute()
	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// parseClockMinutes converts "HH:MM" to minutes since midnight.
func parseClockMinutes(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// --- Implementation ---

func (s *timeRuleService) MatchForPickup(ctx context.Context, pickup time.Time) ([]model.TimeBasedRule, error) {
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}
	return MatchTimeRules(pickup, rules), nil
}

// activeRules is the read-through path for the rules source.
func (s *timeRuleService) activeRules(ctx context.Context) ([]model.TimeBasedRule, error) {
	if raw, ok := s.cache.Get(ctx, cache.NamespaceTimeRules, "active"); ok {
		var rules []model.TimeBasedRule
		if err := json.Unmarshal([]byte(raw), &rules); err == nil {
			return rules, nil
		}
	}

	rules, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time-based rules: %w", err)
	}

	if raw, err := json.Marshal(rules); err == nil {
		s.cache.Set(ctx, cache.NamespaceTimeRules, "active", string(raw), cache.DefaultTTL)
	}
	return rules, nil
}

func (s *timeRuleService) ListRules(ctx context.Context, page, limit int) ([]TimeRuleResponse, int64, error) {
	rules, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch time rules: %w", err)
	}

	res := make([]TimeRuleResponse, 0, len(rules))
	for _, r := range rules {
		res = append(res, toTimeRuleResponse(r))
	}
	return res, total, nil
}

func (s *timeRuleService) CreateRule(ctx context.Context, userID *uuid.UUID, req TimeRuleRequest) (TimeRuleResponse, error) {
	rule, err := ruleFromRequest(req)
	if err != nil {
		return TimeRuleResponse{}, err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return TimeRuleResponse{}, fmt.Errorf("failed to create time rule: %w", err)
	}

	s.afterWrite(ctx, userID, model.ActionCreateTimeRule, rule)
	return toTimeRuleResponse(*rule), nil
}

func (s *timeRuleService) UpdateRule(ctx context.Context, userID *uuid.UUID, id string, req TimeRuleRequest) (TimeRuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return TimeRuleResponse{}, fmt.Errorf("invalid time rule id: %w", err)
	}

	existing, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		return TimeRuleResponse{}, fmt.Errorf("time rule not found: %w", err)
	}

	updated, err := ruleFromRequest(req)
	if err != nil {
		return TimeRuleResponse{}, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return TimeRuleResponse{}, fmt.Errorf("failed to update time rule: %w", err)
	}

	s.afterWrite(ctx, userID, model.ActionUpdateTimeRule, updated)
	return toTimeRuleResponse(*updated), nil
}

func (s *timeRuleService) DeleteRule(ctx context.Context, userID *uuid.UUID, id string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid time rule id: %w", err)
	}

	rule, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("time rule not found: %w", err)
	}

	if err := s.repo.Delete(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete time rule: %w", err)
	}

	s.afterWrite(ctx, userID, model.ActionDeleteTimeRule, rule)
	return nil
}

// afterWrite drops the cached rule set, notifies connected clients, and
// records a best-effort audit entry.
func (s *timeRuleService) afterWrite(ctx context.Context, userID *uuid.UUID, action string, rule *model.TimeBasedRule) {
	s.cache.Invalidate(ctx, cache.NamespaceTimeRules)
	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventTimeRulesChanged, rule.ID.String())
	}

	details, _ := json.Marshal(map[string]interface{}{
		"name":                  rule.Name,
		"start_time":            rule.StartTime,
		"end_time":              rule.EndTime,
		"adjustment_percentage": rule.AdjustmentPercentage.String(),
	})
	entry := &model.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityID:   rule.ID.String(),
		EntityName: rule.Name,
		Details:    string(details),
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		log.Printf("time rules: failed to write activity log: %v", err)
	}
}

// --- Helpers ---

func ruleFromRequest(req TimeRuleRequest) (*model.TimeBasedRule, error) {
	pct, err := decimal.NewFromString(req.AdjustmentPercentage)
	if err != nil {
		return nil, fmt.Errorf("invalid adjustment_percentage: %w", err)
	}

	for _, bound := range []string{req.StartTime, req.EndTime} {
		if bound == "" {
			continue
		}
		if _, ok := parseClockMinutes(bound); !ok {
			return nil, fmt.Errorf("invalid time bound %q: expected HH:MM", bound)
		}
	}

	for _, d := range req.ApplicableDays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %d: expected 0 (Sunday) through 6 (Saturday)", d)
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &model.TimeBasedRule{
		Name:                 req.Name,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		ApplicableDays:       req.ApplicableDays,
		AdjustmentPercentage: pct,
		Priority:             req.Priority,
		IsActive:             active,
		Description:          req.Description,
	}, nil
}

func toTimeRuleResponse(r model.TimeBasedRule) TimeRuleResponse {
	return TimeRuleResponse{
		ID:                   r.ID.String(),
		Name:                 r.Name,
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		ApplicableDays:       r.ApplicableDays,
		AdjustmentPercentage: r.AdjustmentPercentage.StringFixed(2),
		Priority:             r.Priority,
		IsActive:             r.IsActive,
		Description:          r.Description,
		CreatedAt:            r.CreatedAt.Format(time.RFC3339),
	}
}
