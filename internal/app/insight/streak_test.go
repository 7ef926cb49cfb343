package insight_test

import (
	"testing"
	"time"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStreak_Empty(t *testing.T) {
	got := insight.ComputeStreak(nil, day(2024, 3, 10))
	if got.LongestRun != 0 || got.CurrentRun != 0 {
		t.Errorf("empty input: got %+v, want (0, 0)", got)
	}
}

func TestStreak_SingleDayToday(t *testing.T) {
	asOf := day(2024, 3, 10)
	got := insight.ComputeStreak([]time.Time{asOf}, asOf)
	if got.LongestRun != 1 || got.CurrentRun != 1 {
		t.Errorf("single date equal to asOf: got %+v, want (1, 1)", got)
	}
}

func TestStreak_GapReset(t *testing.T) {
	// Dates {D, D+1, D+2, D+5}, asOf = D+5.
	d := day(2024, 1, 1)
	dates := []time.Time{d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 2), d.AddDate(0, 0, 5)}
	got := insight.ComputeStreak(dates, d.AddDate(0, 0, 5))
	if got.LongestRun != 3 {
		t.Errorf("longest: got %d, want 3", got.LongestRun)
	}
	if got.CurrentRun != 1 {
		t.Errorf("current: got %d, want 1", got.CurrentRun)
	}
}

func TestStreak_OneDayTolerance(t *testing.T) {
	// Dates {D, D+1}, asOf = D+2: last success is exactly one day back,
	// so the streak holds.
	d := day(2024, 1, 1)
	got := insight.ComputeStreak([]time.Time{d, d.AddDate(0, 0, 1)}, d.AddDate(0, 0, 2))
	if got.CurrentRun != 2 {
		t.Errorf("current with one-day tolerance: got %d, want 2", got.CurrentRun)
	}
}

func TestStreak_LapsedAfterTwoDays(t *testing.T) {
	d := day(2024, 1, 1)
	got := insight.ComputeStreak([]time.Time{d, d.AddDate(0, 0, 1)}, d.AddDate(0, 0, 3))
	if got.CurrentRun != 0 {
		t.Errorf("current after 2-day gap: got %d, want 0", got.CurrentRun)
	}
	if got.LongestRun != 2 {
		t.Errorf("longest preserved: got %d, want 2", got.LongestRun)
	}
}

func TestStreak_UnsortedDuplicatesCollapse(t *testing.T) {
	d := day(2024, 5, 1)
	dates := []time.Time{
		d.AddDate(0, 0, 2),
		d,
		d.AddDate(0, 0, 1),
		d.AddDate(0, 0, 1).Add(15 * time.Hour), // same calendar day, later clock time
		d,
	}
	got := insight.ComputeStreak(dates, d.AddDate(0, 0, 2))
	if got.LongestRun != 3 || got.CurrentRun != 3 {
		t.Errorf("unsorted/duplicated input: got %+v, want (3, 3)", got)
	}
}

func TestStreak_LongestNeverBelowCurrent(t *testing.T) {
	// Monotonicity over a spread of gap patterns.
	base := day(2024, 1, 1)
	patterns := [][]int{
		{0}, {0, 1}, {0, 2}, {0, 1, 2, 3}, {0, 1, 3, 4, 5}, {0, 5, 6, 7, 10}, {0, 1, 2, 10, 11},
	}
	for _, offsets := range patterns {
		var dates []time.Time
		for _, o := range offsets {
			dates = append(dates, base.AddDate(0, 0, o))
		}
		for asOfOffset := 0; asOfOffset <= 12; asOfOffset++ {
			got := insight.ComputeStreak(dates, base.AddDate(0, 0, asOfOffset))
			if got.LongestRun < got.CurrentRun {
				t.Fatalf("offsets %v asOf +%d: longest %d < current %d", offsets, asOfOffset, got.LongestRun, got.CurrentRun)
			}
		}
	}
}

func TestStreak_Idempotent(t *testing.T) {
	d := day(2024, 2, 1)
	dates := []time.Time{d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 4)}
	asOf := d.AddDate(0, 0, 5)
	first := insight.ComputeStreak(dates, asOf)
	second := insight.ComputeStreak(dates, asOf)
	if first != second {
		t.Errorf("same inputs gave %+v then %+v", first, second)
	}
}

func TestSuccessDates_FiltersOutcomes(t *testing.T) {
	d := day(2024, 4, 1)
	events := []domain.EventRecord{
		{SubjectID: 1, OccurredOn: d, Outcome: domain.OutcomeSuccess},
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 1), Outcome: domain.OutcomeFail},
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 2), Outcome: domain.OutcomePartial},
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 3), Outcome: domain.OutcomeSuccess},
	}
	got := insight.SuccessDates(events)
	if len(got) != 2 {
		t.Fatalf("got %d success dates, want 2", len(got))
	}
}
