package insight

import (
	"fmt"
	"sort"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// WeekStreakLength is the run length that earns a week_streak milestone.
const WeekStreakLength = 7

// DetectMilestones scans a subject-grouped event history and emits every
// milestone earned by asOf. The scan is re-entrant: identical inputs always
// yield the identical milestone set, so callers may recompute freely and
// dedup persisted rows themselves.
//
// Emitted kinds:
//   - first_success: the earliest success event, once per subject.
//   - week_streak: dated the 7th consecutive success day, once per subject.
//   - target_reached: once the target window has elapsed. Unless the target
//     opts into RequireCount, the success count inside the window is NOT
//     checked — that is the historical contract, preserved on purpose.
func DetectMilestones(history []domain.EventRecord, target *domain.Target, asOf time.Time) []domain.Milestone {
	bySubject := make(map[int64][]domain.EventRecord)
	var order []int64
	for _, e := range history {
		if _, seen := bySubject[e.SubjectID]; !seen {
			order = append(order, e.SubjectID)
		}
		bySubject[e.SubjectID] = append(bySubject[e.SubjectID], e)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var milestones []domain.Milestone
	for _, subject := range order {
		events := bySubject[subject]

		if first, ok := firstSuccess(events); ok {
			milestones = append(milestones, domain.Milestone{
				SubjectID:   subject,
				Kind:        domain.MilestoneFirstSuccess,
				AchievedOn:  first,
				Description: fmt.Sprintf("First successful practice on %s", DayKey(first)),
			})
		}

		if seventh, ok := weekStreakDay(events); ok {
			milestones = append(milestones, domain.Milestone{
				SubjectID:   subject,
				Kind:        domain.MilestoneWeekStreak,
				AchievedOn:  seventh,
				Description: fmt.Sprintf("%d consecutive successful days, completed %s", WeekStreakLength, DayKey(seventh)),
			})
		}
	}

	if target != nil {
		if reached, on := targetReached(*target, bySubject[target.SubjectID], asOf); reached {
			milestones = append(milestones, domain.Milestone{
				SubjectID:   target.SubjectID,
				Kind:        domain.MilestoneTargetReached,
				AchievedOn:  on,
				Description: fmt.Sprintf("%d-day practice window completed", target.DurationDays),
			})
		}
	}

	return milestones
}

// firstSuccess returns the earliest success date in events.
func firstSuccess(events []domain.EventRecord) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range events {
		if e.Outcome != domain.OutcomeSuccess {
			continue
		}
		day := DayOf(e.OccurredOn)
		if !found || day.Before(earliest) {
			earliest = day
			found = true
		}
	}
	return earliest, found
}

// weekStreakDay returns the date of the 7th day of the first run of
// WeekStreakLength consecutive success days.
func weekStreakDay(events []domain.EventRecord) (time.Time, bool) {
	dates := SuccessDates(events)
	if len(dates) < WeekStreakLength {
		return time.Time{}, false
	}

	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := DayOf(d)
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run == WeekStreakLength {
			return days[i], true
		}
	}
	return time.Time{}, false
}

// targetReached reports whether the target window has elapsed by asOf, and
// the date it completed. With RequireCount set, the window's success count
// must also meet the goal.
func targetReached(target domain.Target, events []domain.EventRecord, asOf time.Time) (bool, time.Time) {
	if target.DurationDays <= 0 {
		return false, time.Time{}
	}
	deadline := utcDay(target.StartDate).AddDate(0, 0, target.DurationDays)
	if utcDay(asOf).Before(deadline) {
		return false, time.Time{}
	}
	if target.RequireCount {
		count := 0
		for _, e := range events {
			day := utcDay(e.OccurredOn)
			if e.Outcome == domain.OutcomeSuccess && !day.Before(utcDay(target.StartDate)) && day.Before(deadline) {
				count++
			}
		}
		if count < target.CountGoal {
			return false, time.Time{}
		}
	}
	return true, deadline
}
