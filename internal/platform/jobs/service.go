// Package jobs runs background work off the request path: a small in-process
// queue plus the daily ticker that triggers scheduled evaluation creation.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"appraisal/internal/domain/scheduler"
	"appraisal/internal/platform/metrics"
)

const JobEvaluationCreation = "evaluation_creation"

type Service struct {
	Scheduler *scheduler.Service
	Metrics   *metrics.Collector
	Interval  time.Duration
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) error
}

func New(sched *scheduler.Service, collector *metrics.Collector, interval time.Duration) *Service {
	return &Service{
		Scheduler: sched,
		Metrics:   collector,
		Interval:  interval,
		queue:     make(chan job, 64),
	}
}

// Start launches the worker and the creation ticker. Both stop when ctx is
// cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 {
		go s.scheduleCreation(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) error) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if err := j.Run(ctx); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

// scheduleCreation fires once immediately, then on every tick. The scheduler
// is idempotent, so an extra firing after a restart is harmless.
func (s *Service) scheduleCreation(ctx context.Context, interval time.Duration) {
	s.enqueueCreation()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueCreation()
		}
	}
}

func (s *Service) enqueueCreation() {
	s.Enqueue(JobEvaluationCreation, func(ctx context.Context) error {
		summary, err := s.Scheduler.Run(ctx, "")
		if err != nil {
			return err
		}
		if s.Metrics != nil {
			s.Metrics.RecordSchedulerRun(summary.TotalCreated)
		}
		if len(summary.Periods) > 0 {
			slog.Info("scheduled evaluation creation finished",
				"periods", len(summary.Periods),
				"created", summary.TotalCreated,
				"skipped", summary.TotalSkipped,
				"durationMs", summary.DurationMS)
		}
		return nil
	})
}
