// Package advisor turns aggregated activity numbers into the dashboard's
// insight and recommendation text. Like the insight engine it is pure: the
// caller computes Stats from storage plus the engine and passes them in.
package advisor

import (
	"fmt"
	"sort"

	"github.com/praxis-labs/praxis/internal/domain"
)

// Stats is the snapshot the advisor reasons over.
type Stats struct {
	TotalActions     int
	CompletedActions int
	CompletionRate   float64 // percent, 0–100
	RecentLogs       int     // practice logs in the last 30 days
	SuccessRate      float64 // percent, 0–100, over the last 30 days
	CurrentStreak    int
	LongestStreak    int
	TopTag           string
	TopTagCount      int
}

// Insight is one observation about the user's habits.
type Insight struct {
	Type       string `json:"type"` // success | warning | info
	Title      string `json:"title"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Recommendation is one suggested next step for the goals view.
type Recommendation struct {
	Type     string `json:"type"` // action | focus | balance
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"` // high | medium | low
}

// Insights derives observations from the snapshot. Thresholds follow the
// dashboard's long-standing rules of thumb (30%/80% completion, 5/20 logs
// per month, 50%/80% success, 7/21-day streaks).
func Insights(s Stats) []Insight {
	var out []Insight

	if s.TotalActions > 0 {
		switch {
		case s.CompletionRate < 30:
			out = append(out, Insight{
				Type:       "warning",
				Title:      "Low action completion",
				Message:    fmt.Sprintf("Your action completion rate is %.1f%%. Focus on finishing existing actions before adding new ones.", s.CompletionRate),
				Suggestion: "Break big goals into small steps and complete one small task a day.",
			})
		case s.CompletionRate > 80:
			out = append(out, Insight{
				Type:       "success",
				Title:      "High action completion",
				Message:    fmt.Sprintf("Your action completion rate is %.1f%% — excellent.", s.CompletionRate),
				Suggestion: "Keep it up, and consider taking on more challenging actions.",
			})
		}
	}

	switch {
	case s.RecentLogs < 5:
		out = append(out, Insight{
			Type:       "info",
			Title:      "Low practice frequency",
			Message:    fmt.Sprintf("Only %d practice logs in the last 30 days.", s.RecentLogs),
			Suggestion: "Try to log at least one practice a day, however small the step.",
		})
	case s.RecentLogs > 20:
		out = append(out, Insight{
			Type:       "success",
			Title:      "High practice frequency",
			Message:    fmt.Sprintf("%d practice logs in the last 30 days — great rhythm.", s.RecentLogs),
			Suggestion: "Keep this pace; the habit is forming.",
		})
	}

	if s.RecentLogs > 0 {
		switch {
		case s.SuccessRate < 50:
			out = append(out, Insight{
				Type:       "warning",
				Title:      "Low practice success rate",
				Message:    fmt.Sprintf("Your practice success rate is %.1f%%. The actions may be set too hard.", s.SuccessRate),
				Suggestion: "Split actions into smaller steps, or lower their frequency.",
			})
		case s.SuccessRate > 80:
			out = append(out, Insight{
				Type:       "success",
				Title:      "High practice success rate",
				Message:    fmt.Sprintf("Your practice success rate is %.1f%% — excellent.", s.SuccessRate),
				Suggestion: "Consider attempting more ambitious actions.",
			})
		}
	}

	if s.CurrentStreak > 7 {
		out = append(out, Insight{
			Type:       "success",
			Title:      "Strong current streak",
			Message:    fmt.Sprintf("%d consecutive days of practice — impressive persistence.", s.CurrentStreak),
			Suggestion: "This state is worth protecting; schedule tomorrow's practice now.",
		})
	}
	switch {
	case s.LongestStreak > 21:
		out = append(out, Insight{
			Type:       "success",
			Title:      "Habit formed",
			Message:    fmt.Sprintf("Longest streak of %d days — past the 21 days it takes to form a habit.", s.LongestStreak),
			Suggestion: "Lock it in with a fixed daily time slot.",
		})
	case s.LongestStreak > 0 && s.LongestStreak < 7:
		out = append(out, Insight{
			Type:       "info",
			Title:      "Streaks are short",
			Message:    fmt.Sprintf("Your longest streak is only %d days.", s.LongestStreak),
			Suggestion: "Set a daily reminder and a fixed time to practice.",
		})
	}

	if s.TopTag != "" {
		out = append(out, Insight{
			Type:       "info",
			Title:      "Most active area",
			Message:    fmt.Sprintf("Your busiest area is %q with %d related actions.", s.TopTag, s.TopTagCount),
			Suggestion: fmt.Sprintf("Keep going deep on %q, and try a second area when ready.", s.TopTag),
		})
	}

	return out
}

// Recommendations derives next steps from the raw action list for the goals
// view.
func Recommendations(actions []domain.Action) []Recommendation {
	var out []Recommendation

	if len(actions) < 3 {
		out = append(out, Recommendation{
			Type:     "action",
			Title:    "Add more actions",
			Message:  "You have few action items. Upload more reading notes to extract new ones.",
			Priority: "high",
		})
	}

	todo := 0
	for _, a := range actions {
		if a.Status == domain.StatusTodo {
			todo++
		}
	}
	if todo > 10 {
		out = append(out, Recommendation{
			Type:     "focus",
			Title:    "Focus on execution",
			Message:  fmt.Sprintf("You have %d pending actions. Pick the 3–5 most important and start there.", todo),
			Priority: "medium",
		})
	}

	for _, tag := range sortedTags(actions) {
		if n := tagCounts(actions)[tag]; n > 5 {
			out = append(out, Recommendation{
				Type:     "balance",
				Title:    "Balance your areas",
				Message:  fmt.Sprintf("You have %d actions tagged %q. Consider branching into other areas.", n, tag),
				Priority: "low",
			})
		}
	}

	return out
}

// TopTag returns the most frequent tag across actions and its count.
func TopTag(actions []domain.Action) (string, int) {
	counts := tagCounts(actions)
	best, bestN := "", 0
	for _, tag := range sortedTags(actions) {
		if counts[tag] > bestN {
			best, bestN = tag, counts[tag]
		}
	}
	return best, bestN
}

func tagCounts(actions []domain.Action) map[string]int {
	counts := make(map[string]int)
	for _, a := range actions {
		for _, tag := range a.Tags {
			counts[tag]++
		}
	}
	return counts
}

// sortedTags keeps iteration deterministic so output text is stable.
func sortedTags(actions []domain.Action) []string {
	counts := tagCounts(actions)
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
