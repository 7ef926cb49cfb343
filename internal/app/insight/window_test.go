package insight_test

import (
	"errors"
	"testing"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
)

func TestAggregate_InvalidRange(t *testing.T) {
	_, err := insight.Aggregate(nil, day(2024, 3, 10), day(2024, 3, 9), insight.Daily, insight.Options{})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
}

func TestAggregate_EmptyEventsFillsEveryDay(t *testing.T) {
	start, end := day(2024, 3, 1), day(2024, 3, 10)
	buckets, err := insight.Aggregate(nil, start, end, insight.Daily, insight.Options{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 10 {
		t.Fatalf("got %d buckets, want 10", len(buckets))
	}
	for _, b := range buckets {
		if b.TotalEvents != 0 || b.CompletionRate != 0 {
			t.Errorf("bucket %s not empty: %+v", b.PeriodKey, b)
		}
	}
}

func TestAggregate_DailyCounts(t *testing.T) {
	d := day(2024, 3, 1)
	events := []domain.EventRecord{
		{SubjectID: 1, OccurredOn: d, Outcome: domain.OutcomeSuccess},
		{SubjectID: 2, OccurredOn: d, Outcome: domain.OutcomeFail},
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 1), Outcome: domain.OutcomeSuccess},
		// Outside the range — must be ignored.
		{SubjectID: 1, OccurredOn: d.AddDate(0, 0, 30), Outcome: domain.OutcomeSuccess},
	}
	buckets, err := insight.Aggregate(events, d, d.AddDate(0, 0, 2), insight.Daily, insight.Options{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(buckets))
	}
	if buckets[0].TotalEvents != 2 || buckets[0].CompletionRate != 0.5 {
		t.Errorf("day 0: %+v, want total 2 rate 0.5", buckets[0])
	}
	if buckets[1].TotalEvents != 1 || buckets[1].CompletionRate != 1 {
		t.Errorf("day 1: %+v, want total 1 rate 1", buckets[1])
	}
	if buckets[2].TotalEvents != 0 {
		t.Errorf("day 2 should be empty: %+v", buckets[2])
	}
}

func TestAggregate_WeeklyISOKeys(t *testing.T) {
	// 2024-01-01 is a Monday, ISO week 2024-W01.
	start := day(2024, 1, 1)
	end := day(2024, 1, 21)
	events := []domain.EventRecord{
		{SubjectID: 1, OccurredOn: day(2024, 1, 3), Outcome: domain.OutcomeSuccess},
		{SubjectID: 1, OccurredOn: day(2024, 1, 7), Outcome: domain.OutcomeFail}, // Sunday, still W01
		{SubjectID: 1, OccurredOn: day(2024, 1, 8), Outcome: domain.OutcomeSuccess},
	}
	buckets, err := insight.Aggregate(events, start, end, insight.Weekly, insight.Options{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("got %d weekly buckets, want 3", len(buckets))
	}
	if buckets[0].PeriodKey != "2024-W01" {
		t.Errorf("first key: got %s, want 2024-W01", buckets[0].PeriodKey)
	}
	if buckets[0].TotalEvents != 2 || buckets[0].SuccessEvents != 1 {
		t.Errorf("W01: %+v, want total 2 success 1", buckets[0])
	}
	if buckets[1].TotalEvents != 1 || buckets[1].CompletionRate != 1 {
		t.Errorf("W02: %+v, want total 1 rate 1", buckets[1])
	}
	if buckets[2].TotalEvents != 0 {
		t.Errorf("W03 should be empty: %+v", buckets[2])
	}
}

func TestAggregate_PartialWeight(t *testing.T) {
	d := day(2024, 6, 1)
	events := []domain.EventRecord{
		{SubjectID: 1, OccurredOn: d, Outcome: domain.OutcomePartial},
		{SubjectID: 2, OccurredOn: d, Outcome: domain.OutcomePartial},
	}

	buckets, err := insight.Aggregate(events, d, d, insight.Daily, insight.Options{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if buckets[0].SuccessEvents != 1 || buckets[0].CompletionRate != 0.5 {
		t.Errorf("default 0.5 weight: %+v", buckets[0])
	}

	buckets, err = insight.Aggregate(events, d, d, insight.Daily, insight.Options{PartialWeight: 1})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if buckets[0].CompletionRate != 1 {
		t.Errorf("weight 1: rate %v, want 1", buckets[0].CompletionRate)
	}
}

func TestAggregate_RateBounds(t *testing.T) {
	d := day(2024, 7, 1)
	outcomes := []domain.Outcome{
		domain.OutcomeSuccess, domain.OutcomeFail, domain.OutcomeSkipped,
		domain.OutcomePartial, domain.OutcomeSuccess, domain.OutcomePartial,
	}
	var events []domain.EventRecord
	for i, o := range outcomes {
		events = append(events, domain.EventRecord{SubjectID: int64(i), OccurredOn: d.AddDate(0, 0, i%3), Outcome: o})
	}
	buckets, err := insight.Aggregate(events, d, d.AddDate(0, 0, 6), insight.Daily, insight.Options{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	for _, b := range buckets {
		if b.CompletionRate < 0 || b.CompletionRate > 1 {
			t.Errorf("bucket %s rate %v out of [0,1]", b.PeriodKey, b.CompletionRate)
		}
	}
}

func TestSuccessRate_EmptyIsZero(t *testing.T) {
	buckets, _ := insight.Aggregate(nil, day(2024, 1, 1), day(2024, 1, 7), insight.Daily, insight.Options{})
	if rate := insight.SuccessRate(buckets); rate != 0 {
		t.Errorf("empty rate: got %v, want 0", rate)
	}
}
