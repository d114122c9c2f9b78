package scheduler

import (
	"time"

	"github.com/example/drillbot/pkg/logger"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Sweeper drops sessions idle for longer than ttl
type Sweeper interface {
	SweepIdle(now time.Time, ttl time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  Sweeper
	idleTTL   time.Duration
	interval  time.Duration
	now       func() time.Time
}

// New creates a new scheduler instance
func New(sessions Sweeper, idleTTL, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		idleTTL:   idleTTL,
		interval:  interval,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweepIdleSessions); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepIdleSessions evicts abandoned sessions. It never grades their exams.
func (s *Scheduler) sweepIdleSessions() {
	if n := s.sessions.SweepIdle(s.now(), s.idleTTL); n > 0 {
		logger.Log.Info("idle sessions dropped", zap.Int("count", n), zap.Duration("ttl", s.idleTTL))
	}
}

// RunManualSweep runs the idle sweep immediately
func (s *Scheduler) RunManualSweep() {
	s.sweepIdleSessions()
}
