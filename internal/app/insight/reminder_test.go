package insight_test

import (
	"strings"
	"testing"
	"time"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
)

func dailyConfig() domain.ReminderConfig {
	return domain.ReminderConfig{
		Enabled:               true,
		DailyEnabled:          true,
		DailyTime:             "09:00",
		ActiveWeekdays:        domain.AllWeekdays(),
		InactiveThresholdDays: 3,
		AfterAction:           true,
		AfterNewAction:        true,
	}
}

// 2024-03-06 is a Wednesday.
func wednesdayAt(h, m int) time.Time {
	return time.Date(2024, 3, 6, h, m, 0, 0, time.UTC)
}

func TestDaily_FiresInsideTolerance(t *testing.T) {
	for _, now := range []time.Time{wednesdayAt(8, 57), wednesdayAt(9, 0), wednesdayAt(9, 5)} {
		dec := insight.DecideDaily(dailyConfig(), 7, nil, now, 0)
		if !dec.ShouldFire {
			t.Errorf("at %s: no fire (%s)", now.Format("15:04"), dec.Reason)
		}
		if dec.Key != (domain.DedupKey{UserID: 7, Kind: domain.ReminderDaily, Day: "2024-03-06"}) {
			t.Errorf("dedup key: %+v", dec.Key)
		}
	}
}

func TestDaily_OutsideToleranceStaysIdle(t *testing.T) {
	dec := insight.DecideDaily(dailyConfig(), 7, nil, wednesdayAt(9, 6), 0)
	if dec.ShouldFire {
		t.Error("fired 6 minutes after scheduled time with 5-minute tolerance")
	}
}

func TestDaily_InactiveWeekday(t *testing.T) {
	cfg := dailyConfig()
	cfg.ActiveWeekdays = domain.NewWeekdaySet(0, 1) // Monday, Tuesday only
	dec := insight.DecideDaily(cfg, 7, nil, wednesdayAt(9, 0), 0)
	if dec.ShouldFire {
		t.Error("fired on an inactive weekday")
	}
}

func TestDaily_DisabledFlags(t *testing.T) {
	cfg := dailyConfig()
	cfg.DailyEnabled = false
	if dec := insight.DecideDaily(cfg, 7, nil, wednesdayAt(9, 0), 0); dec.ShouldFire {
		t.Error("fired with daily reminders disabled")
	}
	cfg = dailyConfig()
	cfg.Enabled = false
	if dec := insight.DecideDaily(cfg, 7, nil, wednesdayAt(9, 0), 0); dec.ShouldFire {
		t.Error("fired with reminders disabled entirely")
	}
}

func TestDaily_MalformedTimeDegrades(t *testing.T) {
	// A broken schedule must produce a no-fire verdict with a reason, not
	// a panic or error — one bad config cannot block the sweep.
	for _, bad := range []string{"25:00", "nine", "09", "09:61", ""} {
		cfg := dailyConfig()
		cfg.DailyTime = bad
		dec := insight.DecideDaily(cfg, 7, nil, wednesdayAt(9, 0), 0)
		if dec.ShouldFire {
			t.Errorf("daily_time %q: fired", bad)
		}
		if dec.Reason == "" {
			t.Errorf("daily_time %q: no reason surfaced", bad)
		}
		if bad != "" && !dec.Degraded {
			t.Errorf("daily_time %q: not marked degraded", bad)
		}
	}
}

func TestDaily_SecondsFormatAccepted(t *testing.T) {
	cfg := dailyConfig()
	cfg.DailyTime = "09:00:00"
	if dec := insight.DecideDaily(cfg, 7, nil, wednesdayAt(9, 2), 0); !dec.ShouldFire {
		t.Errorf("HH:MM:SS format rejected: %s", dec.Reason)
	}
}

func TestDaily_DedupWithinSameDay(t *testing.T) {
	now := wednesdayAt(9, 0)
	first := insight.DecideDaily(dailyConfig(), 7, nil, now, 0)
	if !first.ShouldFire {
		t.Fatalf("first poll: no fire (%s)", first.Reason)
	}

	// Caller logs the firing; a later poll the same day must stay quiet.
	fired := now
	second := insight.DecideDaily(dailyConfig(), 7, &fired, wednesdayAt(9, 3), 0)
	if second.ShouldFire {
		t.Error("second poll same day: fired again")
	}

	// Next day the cycle resets.
	next := now.AddDate(0, 0, 1)
	third := insight.DecideDaily(dailyConfig(), 7, &fired, next, 0)
	if !third.ShouldFire {
		t.Errorf("next day: no fire (%s)", third.Reason)
	}
}

func TestInactive_NoActivityEver(t *testing.T) {
	dec := insight.DecideInactive(dailyConfig(), 7, nil, nil, wednesdayAt(10, 0))
	if !dec.ShouldFire {
		t.Errorf("user with no activity: no fire (%s)", dec.Reason)
	}
}

func TestInactive_ThresholdBoundary(t *testing.T) {
	now := wednesdayAt(10, 0)

	recent := now.AddDate(0, 0, -2)
	if dec := insight.DecideInactive(dailyConfig(), 7, &recent, nil, now); dec.ShouldFire {
		t.Error("2 days since activity with threshold 3: fired")
	}

	stale := now.AddDate(0, 0, -3)
	if dec := insight.DecideInactive(dailyConfig(), 7, &stale, nil, now); !dec.ShouldFire {
		t.Errorf("3 days since activity with threshold 3: no fire (%s)", dec.Reason)
	}
}

func TestInactive_DedupAndDisabled(t *testing.T) {
	now := wednesdayAt(10, 0)
	fired := wednesdayAt(6, 0)
	if dec := insight.DecideInactive(dailyConfig(), 7, nil, &fired, now); dec.ShouldFire {
		t.Error("already fired today but fired again")
	}

	cfg := dailyConfig()
	cfg.Enabled = false
	if dec := insight.DecideInactive(cfg, 7, nil, nil, now); dec.ShouldFire {
		t.Error("disabled config fired")
	}
}

func TestAfterAction_TogglesAndDedup(t *testing.T) {
	now := wednesdayAt(14, 30)

	if dec := insight.DecideAfterAction(dailyConfig(), 7, nil, now); !dec.ShouldFire {
		t.Errorf("after-action: no fire (%s)", dec.Reason)
	}

	cfg := dailyConfig()
	cfg.AfterAction = false
	if dec := insight.DecideAfterAction(cfg, 7, nil, now); dec.ShouldFire {
		t.Error("after-action fired with toggle off")
	}

	fired := wednesdayAt(9, 0)
	if dec := insight.DecideAfterAction(dailyConfig(), 7, &fired, now); dec.ShouldFire {
		t.Error("after-action fired twice in one day")
	}
}

func TestAfterNewAction_NoTimeOfDayGate(t *testing.T) {
	// Behavior-triggered kinds fire at any hour.
	dec := insight.DecideAfterNewAction(dailyConfig(), 7, nil, wednesdayAt(23, 45))
	if !dec.ShouldFire {
		t.Errorf("after-new-action at 23:45: no fire (%s)", dec.Reason)
	}
	if dec.Kind != domain.ReminderAfterNewAction {
		t.Errorf("kind: %s", dec.Kind)
	}
}

func TestMessage_KnownKinds(t *testing.T) {
	for _, kind := range []domain.ReminderKind{
		domain.ReminderDaily, domain.ReminderInactive,
		domain.ReminderAfterAction, domain.ReminderAfterNewAction,
	} {
		title, body := insight.Message(kind, "Ada")
		if title == "" || body == "" {
			t.Errorf("%s: empty message", kind)
		}
		if !strings.Contains(body, "Ada") {
			t.Errorf("%s: body does not address the user: %q", kind, body)
		}
	}
}

func TestISOWeekday_MondayZero(t *testing.T) {
	// 2024-03-04 is a Monday; 2024-03-10 is a Sunday.
	if got := insight.ISOWeekday(day(2024, 3, 4)); got != 0 {
		t.Errorf("Monday: got %d, want 0", got)
	}
	if got := insight.ISOWeekday(day(2024, 3, 10)); got != 6 {
		t.Errorf("Sunday: got %d, want 6", got)
	}
}
