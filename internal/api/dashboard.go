package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/praxis-labs/praxis/internal/app/advisor"
	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
	"github.com/praxis-labs/praxis/internal/infra/metrics"
)

// milestoneDisplayCap bounds the milestones view; detection itself is
// unbounded.
const milestoneDisplayCap = 20

// handleDashboardStats returns the headline numbers: action counts, streaks,
// and a gap-free weekly completion trend.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	days := queryInt(r, "days", 84) // 12 weeks of trend by default
	if days < 7 || days > 365 {
		writeError(w, http.StatusBadRequest, "days must be 7-365")
		return
	}
	now := time.Now().UTC()

	counts, err := s.db.CountActionsByStatus(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalActions := counts[domain.StatusTodo] + counts[domain.StatusInProgress] + counts[domain.StatusDone]

	successDates, err := s.db.ListSuccessDates(userID, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	streak := insight.ComputeStreak(successDates, now)

	start := insight.DayOf(now).AddDate(0, 0, -(days - 1))
	events, err := s.db.ListEvents(userID, 0, start, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	trend, err := insight.Aggregate(events, start, now, insight.Weekly, insight.Options{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	completionRate := 0.0
	if totalActions > 0 {
		completionRate = float64(counts[domain.StatusDone]) / float64(totalActions) * 100
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_actions":     totalActions,
		"completed_actions": counts[domain.StatusDone],
		"completion_rate":   completionRate,
		"current_streak":    streak.CurrentRun,
		"longest_streak":    streak.LongestRun,
		"recent_events":     len(events),
		"success_rate":      insight.SuccessRate(trend) * 100,
		"weekly_trend":      trend,
	})
}

// handleDashboardInsights runs the advisor over a freshly computed snapshot.
func (s *Server) handleDashboardInsights(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	now := time.Now().UTC()

	stats, actions, err := s.advisorStats(userID, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	insights := advisor.Insights(stats)
	if insights == nil {
		insights = []advisor.Insight{}
	}
	recs := advisor.Recommendations(actions)
	if recs == nil {
		recs = []advisor.Recommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights":        insights,
		"recommendations": recs,
	})
}

// handleDashboardGoals returns each action's target progress.
func (s *Server) handleDashboardGoals(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	now := time.Now().UTC()

	actions, err := s.db.AllActions(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type goal struct {
		Action       domain.Action  `json:"action"`
		Target       *domain.Target `json:"target,omitempty"`
		DaysElapsed  int            `json:"days_elapsed,omitempty"`
		DaysTotal    int            `json:"days_total,omitempty"`
		SuccessCount int            `json:"success_count"`
	}

	goals := make([]goal, 0, len(actions))
	for _, a := range actions {
		g := goal{Action: a}
		target, err := s.db.GetTarget(userID, a.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		dates, err := s.db.ListSuccessDates(userID, a.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		g.SuccessCount = len(dates)
		if target != nil {
			g.Target = target
			g.DaysTotal = target.DurationDays
			elapsed := insight.DaysBetween(target.StartDate, now)
			if elapsed < 0 {
				elapsed = 0
			}
			if elapsed > target.DurationDays {
				elapsed = target.DurationDays
			}
			g.DaysElapsed = elapsed
		}
		goals = append(goals, g)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// handleSetGoal creates or replaces the completion target for one action.
func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	actionID, ok := pathID(r, "actionID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	if _, err := s.db.GetAction(userID, actionID); err != nil {
		writeActionError(w, err)
		return
	}

	var req struct {
		StartDate    string `json:"start_date"` // "2006-01-02", defaults to today
		DurationDays int    `json:"duration_days"`
		RequireCount bool   `json:"require_count"`
		CountGoal    int    `json:"count_goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DurationDays < 1 || req.DurationDays > 365 {
		writeError(w, http.StatusBadRequest, "duration_days must be 1-365")
		return
	}
	if req.RequireCount && req.CountGoal < 1 {
		writeError(w, http.StatusBadRequest, "count_goal must be positive when require_count is set")
		return
	}

	start := insight.DayOf(time.Now().UTC())
	if req.StartDate != "" {
		var err error
		start, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
	}

	target := domain.Target{
		SubjectID:    actionID,
		StartDate:    start,
		DurationDays: req.DurationDays,
		RequireCount: req.RequireCount,
		CountGoal:    req.CountGoal,
	}
	if err := s.db.SetTarget(userID, target); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// handleMilestones recomputes milestones from history, persists any new
// ones, and returns the most recent up to the display cap.
func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	now := time.Now().UTC()

	history, err := s.db.AllEvents(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Detection runs per subject so each action's target applies only to
	// its own events.
	bySubject := make(map[int64][]domain.EventRecord)
	for _, e := range history {
		bySubject[e.SubjectID] = append(bySubject[e.SubjectID], e)
	}
	for subjectID, events := range bySubject {
		target, err := s.db.GetTarget(userID, subjectID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, m := range insight.DetectMilestones(events, target, now) {
			inserted, err := s.db.UpsertMilestone(userID, m)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if inserted {
				metrics.MilestonesRecorded.WithLabelValues(string(m.Kind)).Inc()
			}
		}
	}

	milestones, err := s.db.ListMilestones(userID, milestoneDisplayCap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if milestones == nil {
		milestones = []domain.Milestone{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"milestones": milestones})
}

// advisorStats assembles the advisor snapshot from storage and the engine.
func (s *Server) advisorStats(userID int64, now time.Time) (advisor.Stats, []domain.Action, error) {
	counts, err := s.db.CountActionsByStatus(userID)
	if err != nil {
		return advisor.Stats{}, nil, err
	}
	total := counts[domain.StatusTodo] + counts[domain.StatusInProgress] + counts[domain.StatusDone]

	start := insight.DayOf(now).AddDate(0, 0, -29)
	events, err := s.db.ListEvents(userID, 0, start, now)
	if err != nil {
		return advisor.Stats{}, nil, err
	}
	success := 0
	for _, e := range events {
		if e.Outcome == domain.OutcomeSuccess {
			success++
		}
	}

	successDates, err := s.db.ListSuccessDates(userID, 0)
	if err != nil {
		return advisor.Stats{}, nil, err
	}
	streak := insight.ComputeStreak(successDates, now)

	actions, err := s.db.AllActions(userID)
	if err != nil {
		return advisor.Stats{}, nil, err
	}
	topTag, topCount := advisor.TopTag(actions)

	stats := advisor.Stats{
		TotalActions:     total,
		CompletedActions: counts[domain.StatusDone],
		RecentLogs:       len(events),
		CurrentStreak:    streak.CurrentRun,
		LongestStreak:    streak.LongestRun,
		TopTag:           topTag,
		TopTagCount:      topCount,
	}
	if total > 0 {
		stats.CompletionRate = float64(counts[domain.StatusDone]) / float64(total) * 100
	}
	if len(events) > 0 {
		stats.SuccessRate = float64(success) / float64(len(events)) * 100
	}
	return stats, actions, nil
}
