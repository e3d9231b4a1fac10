package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentMachine/internal/ports"
)

// Scheduler drives independent orchestrator runs from a recurring trigger.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	request      RunRequest
	logger       *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, orchestrator *Orchestrator, req RunRequest, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, orchestrator: orchestrator, request: req, logger: logger}
}

// Start registers the run job with the driver. A failed run is logged and the
// next trigger starts a fresh one.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.orchestrator == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.orchestrator.Execute(ctx, s.request)
		if s.logger == nil {
			return
		}
		if err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run finished", "trigger", trigger, "run", result.RunID, "published", len(result.Published))
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
