// Package schedule drives recurring organize runs from a cron expression.
package schedule

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"drivesort/internal/logging"
	"drivesort/internal/services"
)

// Job is one scheduled organize pass.
type Job func(ctx context.Context)

// Scheduler fires a job on a cron cadence until its context is cancelled.
// Overlapping runs are suppressed; a tick that lands while the previous run
// is still in flight is skipped.
type Scheduler struct {
	spec   string
	job    Job
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "parse",
			"invalid cron expression", err)
	}
	return &Scheduler{
		spec:   spec,
		job:    job,
		logger: logging.WithComponent(logger, "schedule"),
	}, nil
}

// Run blocks until ctx is cancelled, firing the job per the cron spec.
func (s *Scheduler) Run(ctx context.Context) error {
	runner := cron.New()
	if _, err := runner.AddFunc(s.spec, func() { s.fire(ctx) }); err != nil {
		return services.Wrap(services.ErrConfiguration, "schedule", "register",
			"register cron job", err)
	}

	s.logger.Info("scheduler started", logging.String("cron", s.spec))
	runner.Start()
	<-ctx.Done()

	stopCtx := runner.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) fire(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous run still in flight, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info("scheduled run firing")
	s.job(ctx)
}
