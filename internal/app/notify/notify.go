// Package notify runs the reminder sweeps: it asks the eligibility engine
// for fire/no-fire verdicts, claims the per-day dedup slot in storage, and
// delivers through the email service. Delivery is effectively at-most-once
// per (user, kind, day) because only the sweep that wins the slot sends.
package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
	"github.com/praxis-labs/praxis/internal/infra/email"
	"github.com/praxis-labs/praxis/internal/infra/metrics"
	"github.com/praxis-labs/praxis/internal/infra/sqlite"
)

// Service drives reminder delivery.
type Service struct {
	DB    *sqlite.DB
	Email email.Service
	// Tolerance is the window around the configured daily time in which the
	// sweep may fire. Zero means the default five minutes.
	Tolerance time.Duration
}

// New builds a notify service with the default tolerance.
func New(db *sqlite.DB, mail email.Service) *Service {
	return &Service{DB: db, Email: mail, Tolerance: insight.DefaultDailyTolerance}
}

func (s *Service) tolerance() time.Duration {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return insight.DefaultDailyTolerance
}

// SweepDaily checks every enabled user's daily schedule against now and
// delivers to those whose configured time is inside the tolerance window.
// Returns how many reminders were delivered.
func (s *Service) SweepDaily(now time.Time) (int, error) {
	defer observeSweep(domain.ReminderDaily, time.Now())

	settings, err := s.DB.ListEnabledSettings()
	if err != nil {
		return 0, fmt.Errorf("daily sweep: %w", err)
	}

	fired := 0
	for _, setting := range settings {
		lastFired, err := s.DB.LastFired(setting.UserID, domain.ReminderDaily)
		if err != nil {
			log.Printf("[notify] user %d: %v", setting.UserID, err)
			continue
		}
		d := insight.DecideDaily(setting.Config(), setting.UserID, lastFired, now, s.tolerance())
		if s.deliver(setting, d, now) {
			fired++
		}
	}
	return fired, nil
}

// SweepInactive checks every enabled user's last practice date against
// their inactivity threshold. Returns how many reminders were delivered.
func (s *Service) SweepInactive(now time.Time) (int, error) {
	defer observeSweep(domain.ReminderInactive, time.Now())

	settings, err := s.DB.ListEnabledSettings()
	if err != nil {
		return 0, fmt.Errorf("inactive sweep: %w", err)
	}

	fired := 0
	for _, setting := range settings {
		lastActivity, err := s.DB.LastActivity(setting.UserID)
		if err != nil {
			log.Printf("[notify] user %d: %v", setting.UserID, err)
			continue
		}
		lastFired, err := s.DB.LastFired(setting.UserID, domain.ReminderInactive)
		if err != nil {
			log.Printf("[notify] user %d: %v", setting.UserID, err)
			continue
		}
		d := insight.DecideInactive(setting.Config(), setting.UserID, lastActivity, lastFired, now)
		if s.deliver(setting, d, now) {
			fired++
		}
	}
	return fired, nil
}

// AfterAction fires the post-practice follow-up for one user, at most once
// per day. Called from the practice-log handler.
func (s *Service) AfterAction(userID int64, now time.Time) error {
	return s.triggerKind(userID, domain.ReminderAfterAction, now)
}

// AfterNewAction fires the new-actions follow-up for one user. Called after
// a successful notes extraction.
func (s *Service) AfterNewAction(userID int64, now time.Time) error {
	return s.triggerKind(userID, domain.ReminderAfterNewAction, now)
}

// Trigger runs one reminder kind for one user immediately, for the manual
// trigger endpoint and CLI. Daily and inactive kinds still apply their own
// schedule gates.
func (s *Service) Trigger(userID int64, kind domain.ReminderKind, now time.Time) error {
	return s.triggerKind(userID, kind, now)
}

func (s *Service) triggerKind(userID int64, kind domain.ReminderKind, now time.Time) error {
	setting, err := s.DB.GetReminderSetting(userID)
	if err != nil {
		return fmt.Errorf("trigger %s: %w", kind, err)
	}
	lastFired, err := s.DB.LastFired(userID, kind)
	if err != nil {
		return fmt.Errorf("trigger %s: %w", kind, err)
	}

	cfg := setting.Config()
	var d domain.ReminderDecision
	switch kind {
	case domain.ReminderDaily:
		d = insight.DecideDaily(cfg, userID, lastFired, now, s.tolerance())
	case domain.ReminderInactive:
		lastActivity, err := s.DB.LastActivity(userID)
		if err != nil {
			return fmt.Errorf("trigger %s: %w", kind, err)
		}
		d = insight.DecideInactive(cfg, userID, lastActivity, lastFired, now)
	case domain.ReminderAfterAction:
		d = insight.DecideAfterAction(cfg, userID, lastFired, now)
	case domain.ReminderAfterNewAction:
		d = insight.DecideAfterNewAction(cfg, userID, lastFired, now)
	default:
		return domain.ErrUnknownReminderKind
	}

	s.deliver(*setting, d, now)
	return nil
}

// deliver claims the dedup slot and sends. Reports whether a reminder
// actually went out.
func (s *Service) deliver(setting domain.ReminderSetting, d domain.ReminderDecision, now time.Time) bool {
	if !d.ShouldFire {
		if d.Degraded {
			log.Printf("[notify] user %d %s: %s", setting.UserID, d.Kind, d.Reason)
		}
		return false
	}

	won, err := s.DB.InsertReminderLog(d.Key, now, method(setting))
	if err != nil {
		log.Printf("[notify] user %d %s: claim slot: %v", setting.UserID, d.Kind, err)
		return false
	}
	if !won {
		metrics.RemindersSuppressed.WithLabelValues(string(d.Kind)).Inc()
		return false
	}

	if setting.EmailNotification && s.Email != nil {
		user, err := s.DB.GetUser(setting.UserID)
		if err != nil {
			log.Printf("[notify] user %d %s: %v", setting.UserID, d.Kind, err)
			return false
		}
		title, body := insight.Message(d.Kind, user.Name)
		if err := s.Email.SendReminder(user.Email, user.Name, title, body); err != nil {
			// The slot is already claimed; the reminder surfaces in the
			// in-app log even when the email bounces.
			log.Printf("[notify] user %d %s: send: %v", setting.UserID, d.Kind, err)
		}
	}

	metrics.RemindersFired.WithLabelValues(string(d.Kind)).Inc()
	log.Printf("[notify] fired %s for user %d (%s)", d.Kind, setting.UserID, d.Key.Day)
	return true
}

func method(setting domain.ReminderSetting) string {
	switch {
	case setting.BrowserNotification && setting.EmailNotification:
		return "both"
	case setting.EmailNotification:
		return "email"
	default:
		return "browser"
	}
}

func observeSweep(kind domain.ReminderKind, start time.Time) {
	metrics.SweepDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}
