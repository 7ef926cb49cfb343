package insight

import (
	"sort"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// ComputeStreak derives the longest and current consecutive-day success runs
// from a set of success dates. Input need not be sorted or deduplicated —
// dates are treated as a set, so duplicates collapse and order is irrelevant.
//
// CurrentRun carries one day of tolerance: a run ending on asOf or the day
// before still counts, so an unlogged today does not reset progress. A gap of
// two or more days before asOf lapses the streak to zero while LongestRun
// keeps its historical peak.
func ComputeStreak(successDates []time.Time, asOf time.Time) domain.StreakResult {
	if len(successDates) == 0 {
		return domain.StreakResult{}
	}

	seen := make(map[time.Time]struct{}, len(successDates))
	days := make([]time.Time, 0, len(successDates))
	for _, d := range successDates {
		day := DayOf(d)
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	// run now holds the length of the trailing run ending at the last date.
	current := 0
	last := days[len(days)-1]
	if gap := DaysBetween(last, DayOf(asOf)); gap == 0 || gap == 1 {
		current = run
	}

	return domain.StreakResult{LongestRun: longest, CurrentRun: current}
}

// SuccessDates filters an event history down to the success dates
// ComputeStreak consumes. Partial outcomes do not extend streaks.
func SuccessDates(events []domain.EventRecord) []time.Time {
	var dates []time.Time
	for _, e := range events {
		if e.Outcome == domain.OutcomeSuccess {
			dates = append(dates, e.OccurredOn)
		}
	}
	return dates
}
