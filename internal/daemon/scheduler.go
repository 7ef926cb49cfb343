package daemon

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/praxis-labs/praxis/internal/app/notify"
)

// Scheduler runs the periodic reminder sweeps: the daily sweep every minute
// so configured times are hit inside their tolerance window, and the
// inactivity sweep hourly.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notify    *notify.Service
	cfg       SchedulerConfig
}

// NewScheduler builds the sweep scheduler.
func NewScheduler(n *notify.Service, cfg SchedulerConfig) *Scheduler {
	if cfg.DailySweepSeconds < 1 {
		cfg.DailySweepSeconds = 60
	}
	if cfg.InactiveSweepMinutes < 1 {
		cfg.InactiveSweepMinutes = 60
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notify:    n,
		cfg:       cfg,
	}
}

// Start begins running the sweeps in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(s.cfg.DailySweepSeconds).Seconds().Do(s.sweepDaily)
	s.scheduler.Every(s.cfg.InactiveSweepMinutes).Minutes().Do(s.sweepInactive)
	s.scheduler.StartAsync()
	log.Printf("[scheduler] sweeps running (daily every %ds, inactive every %dm)",
		s.cfg.DailySweepSeconds, s.cfg.InactiveSweepMinutes)
}

// Stop terminates the sweeps.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepDaily() {
	// now is captured once per tick so every user in the sweep sees the
	// same clock.
	now := time.Now()
	fired, err := s.notify.SweepDaily(now)
	if err != nil {
		log.Printf("[scheduler] daily sweep: %v", err)
		return
	}
	if fired > 0 {
		log.Printf("[scheduler] daily sweep fired %d reminders", fired)
	}
}

func (s *Scheduler) sweepInactive() {
	now := time.Now()
	fired, err := s.notify.SweepInactive(now)
	if err != nil {
		log.Printf("[scheduler] inactive sweep: %v", err)
		return
	}
	if fired > 0 {
		log.Printf("[scheduler] inactive sweep fired %d reminders", fired)
	}
}
