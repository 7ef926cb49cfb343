package insight_test

import (
	"testing"
	"time"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
)

func successRun(subject int64, start time.Time, days int) []domain.EventRecord {
	var events []domain.EventRecord
	for i := 0; i < days; i++ {
		events = append(events, domain.EventRecord{
			SubjectID:  subject,
			OccurredOn: start.AddDate(0, 0, i),
			Outcome:    domain.OutcomeSuccess,
		})
	}
	return events
}

func findMilestone(ms []domain.Milestone, kind domain.MilestoneKind) (domain.Milestone, int) {
	var found domain.Milestone
	count := 0
	for _, m := range ms {
		if m.Kind == kind {
			found = m
			count++
		}
	}
	return found, count
}

func TestMilestones_FirstSuccess(t *testing.T) {
	d := day(2024, 3, 1)
	history := []domain.EventRecord{
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 2), Outcome: domain.OutcomeSuccess},
		{SubjectID: 1, OccurredOn: d, Outcome: domain.OutcomeFail},
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 1), Outcome: domain.OutcomeSuccess},
	}
	ms := insight.DetectMilestones(history, nil, d.AddDate(0, 0, 10))
	m, n := findMilestone(ms, domain.MilestoneFirstSuccess)
	if n != 1 {
		t.Fatalf("got %d first_success milestones, want 1", n)
	}
	if !m.AchievedOn.Equal(d.AddDate(0, 0, 1)) {
		t.Errorf("achieved_on: got %s, want %s", m.AchievedOn, d.AddDate(0, 0, 1))
	}
}

func TestMilestones_WeekStreakOnSeventhDay(t *testing.T) {
	d := day(2024, 3, 1)
	ms := insight.DetectMilestones(successRun(1, d, 7), nil, d.AddDate(0, 0, 10))
	m, n := findMilestone(ms, domain.MilestoneWeekStreak)
	if n != 1 {
		t.Fatalf("got %d week_streak milestones, want exactly 1", n)
	}
	if !m.AchievedOn.Equal(d.AddDate(0, 0, 6)) {
		t.Errorf("achieved_on: got %s, want the 7th day %s", m.AchievedOn, d.AddDate(0, 0, 6))
	}
}

func TestMilestones_NoWeekStreakAtSix(t *testing.T) {
	d := day(2024, 3, 1)
	ms := insight.DetectMilestones(successRun(1, d, 6), nil, d.AddDate(0, 0, 10))
	if _, n := findMilestone(ms, domain.MilestoneWeekStreak); n != 0 {
		t.Errorf("6 consecutive days emitted %d week_streak milestones", n)
	}
}

func TestMilestones_WeekStreakBrokenByGap(t *testing.T) {
	d := day(2024, 3, 1)
	history := append(successRun(1, d, 4), successRun(1, d.AddDate(0, 0, 5), 4)...)
	ms := insight.DetectMilestones(history, nil, d.AddDate(0, 0, 20))
	if _, n := findMilestone(ms, domain.MilestoneWeekStreak); n != 0 {
		t.Errorf("4+4 with a gap emitted %d week_streak milestones", n)
	}
}

func TestMilestones_TargetReachedOnElapsedWindow(t *testing.T) {
	// The milestone fires on elapsed time regardless of success count —
	// the window itself is the achievement.
	target := &domain.Target{SubjectID: 9, StartDate: day(2024, 1, 1), DurationDays: 30}
	ms := insight.DetectMilestones(nil, target, day(2024, 1, 31))
	m, n := findMilestone(ms, domain.MilestoneTargetReached)
	if n != 1 {
		t.Fatalf("got %d target_reached milestones, want 1", n)
	}
	if !m.AchievedOn.Equal(day(2024, 1, 31)) {
		t.Errorf("achieved_on: got %s, want 2024-01-31", m.AchievedOn)
	}
	if m.SubjectID != 9 {
		t.Errorf("subject: got %d, want 9", m.SubjectID)
	}
}

func TestMilestones_TargetNotYetElapsed(t *testing.T) {
	target := &domain.Target{SubjectID: 9, StartDate: day(2024, 1, 1), DurationDays: 30}
	ms := insight.DetectMilestones(nil, target, day(2024, 1, 30))
	if _, n := findMilestone(ms, domain.MilestoneTargetReached); n != 0 {
		t.Errorf("window not elapsed but milestone emitted")
	}
}

func TestMilestones_TargetRequireCount(t *testing.T) {
	target := &domain.Target{
		SubjectID: 1, StartDate: day(2024, 1, 1), DurationDays: 30,
		RequireCount: true, CountGoal: 5,
	}
	asOf := day(2024, 2, 15)

	ms := insight.DetectMilestones(successRun(1, day(2024, 1, 2), 3), target, asOf)
	if _, n := findMilestone(ms, domain.MilestoneTargetReached); n != 0 {
		t.Errorf("3 successes < goal 5 but milestone emitted")
	}

	ms = insight.DetectMilestones(successRun(1, day(2024, 1, 2), 6), target, asOf)
	if _, n := findMilestone(ms, domain.MilestoneTargetReached); n != 1 {
		t.Errorf("6 successes >= goal 5 but milestone missing")
	}
}

func TestMilestones_Idempotent(t *testing.T) {
	d := day(2024, 3, 1)
	history := successRun(1, d, 8)
	target := &domain.Target{SubjectID: 1, StartDate: d, DurationDays: 7}
	asOf := d.AddDate(0, 0, 9)

	first := insight.DetectMilestones(history, target, asOf)
	second := insight.DetectMilestones(history, target, asOf)
	if len(first) != len(second) {
		t.Fatalf("detector not idempotent: %d then %d milestones", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("milestone %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMilestones_PerSubject(t *testing.T) {
	d := day(2024, 3, 1)
	history := append(successRun(1, d, 7), successRun(2, d, 2)...)
	ms := insight.DetectMilestones(history, nil, d.AddDate(0, 0, 10))

	if _, n := findMilestone(ms, domain.MilestoneFirstSuccess); n != 2 {
		t.Errorf("got %d first_success milestones, want one per subject (2)", n)
	}
	if _, n := findMilestone(ms, domain.MilestoneWeekStreak); n != 1 {
		t.Errorf("got %d week_streak milestones, want 1 (only subject 1 has 7 days)", n)
	}
}
