package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
)

// Expirer ends study sessions that have been idle for longer than idle.
type Expirer interface {
	ExpireIdle(ctx context.Context, idle time.Duration) (int, error)
}

// Scheduler runs the idle-session sweep in the background.
type Scheduler struct {
	scheduler *gocron.Scheduler
	expirer   Expirer
	idle      time.Duration
	interval  time.Duration
	logger    logrus.FieldLogger
}

// New creates a scheduler from the study settings. A zero idle TTL disables
// the sweep.
func New(cfg *config.Config, expirer Expirer, logger *logrus.Logger) *Scheduler {
	interval := cfg.Study.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		expirer:   expirer,
		idle:      cfg.Study.SessionIdleTTL,
		interval:  interval,
		logger:    logger.WithField("component", "scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.idle <= 0 {
		s.logger.Info("idle session sweep disabled")
		return nil
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return fmt.Errorf("schedule idle sweep: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n, err := s.expirer.ExpireIdle(ctx, s.idle)
	if err != nil {
		s.logger.WithError(err).Warn("idle session sweep failed")
		return
	}
	if n > 0 {
		s.logger.WithField("expired", n).Debug("idle session sweep finished")
	}
}
