package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestHTTPMetrics(t *testing.T) {
	HTTPLatency.WithLabelValues("/api/actions", "GET").Observe(0.05)
	HTTPRequests.WithLabelValues("/api/actions", "200").Inc()

	names := gatheredNames(t)
	if !names["praxis_http_request_duration_seconds"] {
		t.Error("praxis_http_request_duration_seconds not found")
	}
	if !names["praxis_http_requests_total"] {
		t.Error("praxis_http_requests_total not found")
	}
}

func TestPracticeMetrics(t *testing.T) {
	PracticeLogged.WithLabelValues("success").Inc()
	PracticeLogged.WithLabelValues("failed").Inc()

	names := gatheredNames(t)
	if !names["praxis_practice_logged_total"] {
		t.Error("praxis_practice_logged_total not found")
	}
}

func TestExtractMetrics(t *testing.T) {
	ActionsExtracted.Add(3)
	ExtractCalls.WithLabelValues("ok").Inc()
	ExtractCalls.WithLabelValues("error").Inc()
	ExtractLatency.Observe(1.2)

	names := gatheredNames(t)
	expected := []string{
		"praxis_actions_extracted_total",
		"praxis_extract_calls_total",
		"praxis_extract_duration_seconds",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestReminderMetrics(t *testing.T) {
	RemindersFired.WithLabelValues("daily").Inc()
	RemindersSuppressed.WithLabelValues("after_action").Inc()
	SweepDuration.WithLabelValues("inactive").Observe(0.01)

	names := gatheredNames(t)
	expected := []string{
		"praxis_reminders_fired_total",
		"praxis_reminders_suppressed_total",
		"praxis_reminder_sweep_duration_seconds",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestMilestoneMetrics(t *testing.T) {
	MilestonesRecorded.WithLabelValues("first_success").Inc()

	names := gatheredNames(t)
	if !names["praxis_milestones_recorded_total"] {
		t.Error("praxis_milestones_recorded_total not found")
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	praxisMetrics := 0
	for _, f := range families {
		if len(f.GetName()) > 7 && f.GetName()[:7] == "praxis_" {
			praxisMetrics++
		}
	}

	if praxisMetrics < 8 {
		t.Errorf("expected at least 8 praxis_ metric families, got %d", praxisMetrics)
	}
}
