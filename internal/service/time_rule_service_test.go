package service

import (
	"testing"
	"time"

	"chauffeur-backend/internal/model"

	"github.com/shopspring/decimal"
)

func rule(name, start, end string, days []int, pct string) model.TimeBasedRule {
	return model.TimeBasedRule{
		Name:                 name,
		StartTime:            start,
		EndTime:              end,
		ApplicableDays:       days,
		AdjustmentPercentage: decimal.RequireFromString(pct),
		IsActive:             true,
	}
}

// pickupOn builds a local time on a fixed week so weekday assertions are
// stable: 2026-03-01 is a Sunday.
func pickupOn(weekday int, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2026-03-01 "+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return t.AddDate(0, 0, weekday)
}

func TestMatchTimeRulesOvernightWindow(t *testing.T) {
	rules := []model.TimeBasedRule{rule("Night Surcharge", "22:00", "06:00", nil, "25")}

	tests := []struct {
		clock string
		want  bool
	}{
		{"23:30", true},
		{"02:00", true},
		{"22:00", true}, // inclusive start
		{"06:00", true}, // inclusive end
		{"12:00", false},
		{"06:01", false},
		{"21:59", false},
	}
	for _, tt := range tests {
		matched := MatchTimeRules(pickupOn(1, tt.clock), rules)
		if got := len(matched) == 1; got != tt.want {
			t.Errorf("pickup at %s: matched = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

func TestMatchTimeRulesNormalWindow(t *testing.T) {
	rules := []model.TimeBasedRule{rule("Morning Peak", "07:00", "09:30", nil, "15")}

	tests := []struct {
		clock string
		want  bool
	}{
		{"07:00", true},
		{"08:15", true},
		{"09:30", true},
		{"06:59", false},
		{"09:31", false},
	}
	for _, tt := range tests {
		matched := MatchTimeRules(pickupOn(2, tt.clock), rules)
		if got := len(matched) == 1; got != tt.want {
			t.Errorf("pickup at %s: matched = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

func TestMatchTimeRulesWeekdayFilter(t *testing.T) {
	// Weekdays only, Monday through Friday
	rules := []model.TimeBasedRule{rule("Weekday Peak", "08:00", "10:00", []int{1, 2, 3, 4, 5}, "10")}

	if matched := MatchTimeRules(pickupOn(0, "09:00"), rules); len(matched) != 0 {
		t.Error("Sunday pickup should not match weekday-only rule")
	}
	if matched := MatchTimeRules(pickupOn(1, "09:00"), rules); len(matched) != 1 {
		t.Error("Monday pickup should match weekday-only rule")
	}
	if matched := MatchTimeRules(pickupOn(6, "09:00"), rules); len(matched) != 0 {
		t.Error("Saturday pickup should not match weekday-only rule")
	}
}

func TestMatchTimeRulesEmptyDaysMatchesEveryDay(t *testing.T) {
	rules := []model.TimeBasedRule{rule("Always", "00:00", "23:59", nil, "5")}

	for day := 0; day < 7; day++ {
		if matched := MatchTimeRules(pickupOn(day, "12:00"), rules); len(matched) != 1 {
			t.Errorf("day %d: expected match with empty day set", day)
		}
	}
}

func TestMatchTimeRulesMissingBoundsMatchAnyTime(t *testing.T) {
	rules := []model.TimeBasedRule{
		rule("No Start", "", "10:00", nil, "5"),
		rule("No End", "08:00", "", nil, "5"),
		rule("Garbage", "2500", "10:00", nil, "5"),
	}

	matched := MatchTimeRules(pickupOn(3, "15:00"), rules)
	if len(matched) != 3 {
		t.Errorf("matched %d rules, want 3 (missing or unparseable bounds disable the time filter)", len(matched))
	}
}

func TestMatchTimeRulesAllMatchesReturned(t *testing.T) {
	rules := []model.TimeBasedRule{
		rule("Night", "22:00", "06:00", nil, "25"),
		rule("Weekend", "00:00", "23:59", []int{0, 6}, "10"),
		rule("Morning", "07:00", "09:00", nil, "15"),
	}

	// Sunday 23:00: night and weekend both apply
	matched := MatchTimeRules(pickupOn(0, "23:00"), rules)
	if len(matched) != 2 {
		t.Fatalf("matched %d rules, want 2", len(matched))
	}

	sum := SumAdjustments(matched)
	if !sum.Equal(decimal.NewFromInt(35)) {
		t.Errorf("summed adjustment = %s, want 35 (percentages add, not compound)", sum)
	}
}

func TestSumAdjustmentsWithNegativeRules(t *testing.T) {
	rules := []model.TimeBasedRule{
		rule("Peak", "08:00", "10:00", nil, "20"),
		rule("Promo Window", "08:00", "10:00", nil, "-5.5"),
	}

	sum := SumAdjustments(rules)
	if !sum.Equal(decimal.RequireFromString("14.5")) {
		t.Errorf("summed adjustment = %s, want 14.5", sum)
	}
}

func TestRuleNames(t *testing.T) {
	rules := []model.TimeBasedRule{
		rule("Night Surcharge", "22:00", "06:00", nil, "25"),
		rule("Weekend", "", "", nil, "10"),
	}
	if got := RuleNames(rules); got != "Night Surcharge, Weekend" {
		t.Errorf("RuleNames = %q", got)
	}
	if got := RuleNames(nil); got != "" {
		t.Errorf("RuleNames(nil) = %q, want empty", got)
	}
}

func TestRuleFromRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     TimeRuleRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     TimeRuleRequest{Name: "Night", StartTime: "22:00", EndTime: "06:00", AdjustmentPercentage: "25"},
			wantErr: false,
		},
		{
			name:    "bad percentage",
			req:     TimeRuleRequest{Name: "Night", AdjustmentPercentage: "abc"},
			wantErr: true,
		},
		{
			name:    "bad clock",
			req:     TimeRuleRequest{Name: "Night", StartTime: "25:00", AdjustmentPercentage: "25"},
			wantErr: true,
		},
		{
			name:    "bad weekday",
			req:     TimeRuleRequest{Name: "Night", ApplicableDays: []int{7}, AdjustmentPercentage: "25"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ruleFromRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ruleFromRequest error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
