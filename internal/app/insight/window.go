package insight

import (
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// Granularity selects the bucketing period for Aggregate.
type Granularity string

const (
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly" // ISO-8601 Monday-start weeks
)

// DefaultPartialWeight is how much a partial outcome counts toward success.
const DefaultPartialWeight = 0.5

// Options tunes aggregation policy.
type Options struct {
	// PartialWeight is the success contribution of a partial outcome,
	// in [0,1]. The zero value means DefaultPartialWeight; to count
	// partials as zero, pass any negative value.
	PartialWeight float64
}

func (o Options) partialWeight() float64 {
	switch {
	case o.PartialWeight < 0:
		return 0
	case o.PartialWeight == 0:
		return DefaultPartialWeight
	case o.PartialWeight > 1:
		return 1
	}
	return o.PartialWeight
}

// Aggregate buckets events into completion rates over the inclusive
// [start, end] date range. Every period in range gets a bucket, events or
// not, so trend lines need no gap-filling. Events outside the range are
// ignored. Returns domain.ErrInvalidRange when start is after end.
func Aggregate(events []domain.EventRecord, start, end time.Time, g Granularity, opts Options) ([]domain.WindowBucket, error) {
	startDay, endDay := utcDay(start), utcDay(end)
	if startDay.After(endDay) {
		return nil, domain.ErrInvalidRange
	}

	keyOf := DayKey
	if g == Weekly {
		keyOf = ISOWeekKey
	}

	// Enumerate every period in range first so empty buckets exist.
	var buckets []domain.WindowBucket
	index := make(map[string]int)
	cursor := startDay
	if g == Weekly {
		cursor = WeekStart(startDay)
	}
	step := 1
	if g == Weekly {
		step = 7
	}
	for !cursor.After(endDay) {
		key := keyOf(cursor)
		index[key] = len(buckets)
		buckets = append(buckets, domain.WindowBucket{PeriodKey: key, PeriodStart: cursor})
		cursor = cursor.AddDate(0, 0, step)
	}

	weight := opts.partialWeight()
	for _, e := range events {
		day := utcDay(e.OccurredOn)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		i, ok := index[keyOf(day)]
		if !ok {
			continue
		}
		buckets[i].TotalEvents++
		switch e.Outcome {
		case domain.OutcomeSuccess:
			buckets[i].SuccessEvents++
		case domain.OutcomePartial:
			buckets[i].SuccessEvents += weight
		}
	}

	for i := range buckets {
		if buckets[i].TotalEvents > 0 {
			buckets[i].CompletionRate = buckets[i].SuccessEvents / float64(buckets[i].TotalEvents)
		}
	}
	return buckets, nil
}

// SuccessRate collapses a bucket list into one rate over the whole range.
// Zero when no events were counted — never a division by zero.
func SuccessRate(buckets []domain.WindowBucket) float64 {
	var total int
	var success float64
	for _, b := range buckets {
		total += b.TotalEvents
		success += b.SuccessEvents
	}
	if total == 0 {
		return 0
	}
	return success / float64(total)
}
