package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/config"
	"github.com/spec-kit/pod-tracker/internal/service"
)

// SlaSweeper owns the daily reminder schedule. It is created once at
// process start; there is no re-registration guard because there is no
// second registration path.
type SlaSweeper struct {
	sla    *service.SlaService
	cfg    config.SweepConfig
	logger *zap.Logger
	stop   chan struct{}
}

// NewSlaSweeper builds the sweeper.
func NewSlaSweeper(sla *service.SlaService, cfg config.SweepConfig, logger *zap.Logger) *SlaSweeper {
	return &SlaSweeper{
		sla:    sla,
		cfg:    cfg,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Start launches the schedule goroutine. The sweep fires once per day at
// the configured UTC hour. Running twice in one day only produces duplicate
// reminders, so a missed-tick catch-up is safe.
func (s *SlaSweeper) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("sla sweep disabled")
		return
	}
	go s.run(ctx)
}

// Stop terminates the schedule goroutine.
func (s *SlaSweeper) Stop() {
	close(s.stop)
}

func (s *SlaSweeper) run(ctx context.Context) {
	for {
		wait := time.Until(s.nextRun(time.Now().UTC()))
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			s.sweep(ctx)
		case <-s.stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *SlaSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if err := s.sla.RunReminderSweep(sweepCtx, time.Now().UTC()); err != nil {
		s.logger.Error("sla reminder sweep failed", zap.Error(err))
	}
}

func (s *SlaSweeper) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.HourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
