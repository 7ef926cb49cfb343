package advisor_test

import (
	"testing"

	"github.com/praxis-labs/praxis/internal/app/advisor"
	"github.com/praxis-labs/praxis/internal/domain"
)

func hasInsight(list []advisor.Insight, title string) bool {
	for _, i := range list {
		if i.Title == title {
			return true
		}
	}
	return false
}

func TestInsights_CompletionThresholds(t *testing.T) {
	low := advisor.Insights(advisor.Stats{TotalActions: 10, CompletionRate: 10, RecentLogs: 10, SuccessRate: 60})
	if !hasInsight(low, "Low action completion") {
		t.Error("10%% completion produced no warning")
	}

	high := advisor.Insights(advisor.Stats{TotalActions: 10, CompletionRate: 90, RecentLogs: 10, SuccessRate: 60})
	if !hasInsight(high, "High action completion") {
		t.Error("90%% completion produced no praise")
	}

	none := advisor.Insights(advisor.Stats{TotalActions: 0, RecentLogs: 10, SuccessRate: 60})
	if hasInsight(none, "Low action completion") || hasInsight(none, "High action completion") {
		t.Error("zero actions should not trigger completion insights")
	}
}

func TestInsights_StreakRules(t *testing.T) {
	s := advisor.Insights(advisor.Stats{RecentLogs: 10, SuccessRate: 60, CurrentStreak: 9, LongestStreak: 25})
	if !hasInsight(s, "Strong current streak") {
		t.Error("9-day current streak unnoticed")
	}
	if !hasInsight(s, "Habit formed") {
		t.Error("25-day longest streak unnoticed")
	}

	weak := advisor.Insights(advisor.Stats{RecentLogs: 10, SuccessRate: 60, LongestStreak: 3})
	if !hasInsight(weak, "Streaks are short") {
		t.Error("3-day longest streak produced no nudge")
	}
}

func TestInsights_SuccessRateNeedsLogs(t *testing.T) {
	s := advisor.Insights(advisor.Stats{RecentLogs: 0, SuccessRate: 0})
	if hasInsight(s, "Low practice success rate") {
		t.Error("success-rate warning with zero recent logs")
	}
}

func TestRecommendations(t *testing.T) {
	if recs := advisor.Recommendations(nil); len(recs) == 0 || recs[0].Priority != "high" {
		t.Errorf("empty action list: %+v, want a high-priority add-more nudge", recs)
	}

	var many []domain.Action
	for i := 0; i < 12; i++ {
		many = append(many, domain.Action{Status: domain.StatusTodo, Tags: []string{"health"}})
	}
	recs := advisor.Recommendations(many)
	foundFocus, foundBalance := false, false
	for _, r := range recs {
		if r.Type == "focus" {
			foundFocus = true
		}
		if r.Type == "balance" {
			foundBalance = true
		}
	}
	if !foundFocus {
		t.Error("12 todo actions produced no focus recommendation")
	}
	if !foundBalance {
		t.Error("12 same-tag actions produced no balance recommendation")
	}
}

func TestTopTag(t *testing.T) {
	actions := []domain.Action{
		{Tags: []string{"health", "learning"}},
		{Tags: []string{"health"}},
		{Tags: []string{"work"}},
	}
	tag, n := advisor.TopTag(actions)
	if tag != "health" || n != 2 {
		t.Errorf("got (%s, %d), want (health, 2)", tag, n)
	}
}
