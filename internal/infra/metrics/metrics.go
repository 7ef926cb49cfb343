// Package metrics provides Prometheus metrics for Praxis.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPLatency tracks request duration in seconds per route and method.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "praxis",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

// HTTPRequests tracks requests by route and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "http_requests_total",
	Help:      "Total HTTP requests.",
}, []string{"route", "status"})

// ─── Practice ───────────────────────────────────────────────────────────────

// PracticeLogged tracks practice entries by outcome.
var PracticeLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "practice_logged_total",
	Help:      "Total practice log entries by outcome.",
}, []string{"result"})

// ActionsExtracted tracks action items produced from uploaded notes.
var ActionsExtracted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "actions_extracted_total",
	Help:      "Total action items extracted from notes.",
})

// MilestonesRecorded tracks newly persisted milestones by kind.
var MilestonesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "milestones_recorded_total",
	Help:      "Total milestones persisted, by kind.",
}, []string{"kind"})

// ─── Extraction ─────────────────────────────────────────────────────────────

// ExtractCalls tracks completed extraction requests by result.
var ExtractCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "extract_calls_total",
	Help:      "Total extraction requests, by result (ok|error).",
}, []string{"result"})

// ExtractLatency tracks extraction round-trip duration.
var ExtractLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "praxis",
	Name:      "extract_duration_seconds",
	Help:      "Extraction round-trip duration, retries included.",
	Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
})

// ─── Reminders ──────────────────────────────────────────────────────────────

// RemindersFired tracks delivered reminders by kind.
var RemindersFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "reminders_fired_total",
	Help:      "Total reminders delivered, by kind.",
}, []string{"kind"})

// RemindersSuppressed tracks reminders the dedup slot blocked.
var RemindersSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "praxis",
	Name:      "reminders_suppressed_total",
	Help:      "Reminders suppressed because one already fired today.",
}, []string{"kind"})

// SweepDuration tracks how long a reminder sweep over all users takes.
var SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "praxis",
	Name:      "reminder_sweep_duration_seconds",
	Help:      "Duration of one reminder sweep.",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
}, []string{"kind"})
