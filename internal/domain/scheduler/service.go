// Package scheduler turns period configuration into concrete evaluation rows,
// exactly once per period. Correctness does not depend on the one-shot period
// flag alone: the storage-level uniqueness of (employee, manager, period) and
// the existence check keep re-runs and concurrent triggers from duplicating
// rows even when a previous run died before flipping the flag.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"appraisal/internal/domain/eligibility"
	"appraisal/internal/domain/evaluation"
	"appraisal/internal/domain/period"
)

// Skip reasons recorded per employee pair. Skips are bookkeeping, not errors:
// one unresolvable employee never aborts a period batch.
const (
	SkipNoManager        = "no_manager_mapping"
	SkipAmbiguousManager = "ambiguous_manager_mapping"
	SkipAlreadyExists    = "evaluation_already_exists"
	SkipCreateFailed     = "creation_failed"
)

type SkipDetail struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

type PeriodResult struct {
	PeriodID   string       `json:"periodId"`
	PeriodName string       `json:"periodName"`
	Eligible   int          `json:"eligible"`
	Created    int          `json:"created"`
	Skipped    int          `json:"skipped"`
	Skips      []SkipDetail `json:"skips,omitempty"`
	Err        string       `json:"error,omitempty"`
}

// Outcome classifies one period run for its cron log row.
func (r PeriodResult) Outcome() string {
	switch {
	case r.Err != "":
		return period.RunOutcomeError
	case r.Skipped > 0:
		return period.RunOutcomePartial
	default:
		return period.RunOutcomeOK
	}
}

type RunSummary struct {
	RunAt        time.Time      `json:"runAt"`
	Periods      []PeriodResult `json:"periods"`
	TotalCreated int            `json:"totalCreated"`
	TotalSkipped int            `json:"totalSkipped"`
	DurationMS   int64          `json:"durationMs"`
}

type Service struct {
	Periods     *period.Store
	Eligibility *eligibility.Store
	Evaluations *evaluation.Store
	Directory   evaluation.Directory
	Notifier    evaluation.Notifier

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func New(periods *period.Store, elig *eligibility.Store, evals *evaluation.Store, dir evaluation.Directory, notifier evaluation.Notifier) *Service {
	return &Service{
		Periods:     periods,
		Eligibility: elig,
		Evaluations: evals,
		Directory:   dir,
		Notifier:    notifier,
		Now:         time.Now,
	}
}

// Run executes scheduled creation for every candidate period, or for one
// period when periodID is given. It is safe to invoke repeatedly: periods
// already flagged are not rescanned, and the existence check plus the unique
// index keep any overlap from creating duplicates.
func (s *Service) Run(ctx context.Context, periodID string) (RunSummary, error) {
	started := s.Now()
	summary := RunSummary{RunAt: started.UTC()}

	candidates, err := s.Periods.CreationCandidates(ctx, started, periodID)
	if err != nil {
		return summary, fmt.Errorf("list candidate periods: %w", err)
	}

	if len(candidates) == 0 {
		summary.DurationMS = time.Since(started).Milliseconds()
		entry := period.CronLog{
			RunAt:      summary.RunAt,
			Outcome:    period.RunOutcomeOK,
			DurationMS: summary.DurationMS,
		}
		if err := s.Periods.AppendCronLog(ctx, entry); err != nil {
			slog.Warn("cron log append failed", "err", err)
		}
		return summary, nil
	}

	for _, p := range candidates {
		result := s.runPeriod(ctx, p)
		summary.Periods = append(summary.Periods, result)
		summary.TotalCreated += result.Created
		summary.TotalSkipped += result.Skipped

		pid := p.ID
		entry := period.CronLog{
			PeriodID:     &pid,
			RunAt:        summary.RunAt,
			Outcome:      result.Outcome(),
			CreatedCount: result.Created,
			SkippedCount: result.Skipped,
			ErrorDetail:  result.Err,
			DurationMS:   time.Since(started).Milliseconds(),
		}
		if err := s.Periods.AppendCronLog(ctx, entry); err != nil {
			slog.Warn("cron log append failed", "periodId", p.ID, "err", err)
		}
	}

	summary.DurationMS = time.Since(started).Milliseconds()
	return summary, nil
}

// runPeriod processes one period batch. The auto-creation flag is set only
// after every pair has been attempted; a failure before that point leaves the
// period retryable, and the existence check makes the retry idempotent.
func (s *Service) runPeriod(ctx context.Context, p period.Period) PeriodResult {
	result := PeriodResult{PeriodID: p.ID, PeriodName: p.Name}

	eligible, err := s.Eligibility.EffectiveEligibleUsers(ctx, p.ID)
	if err != nil {
		result.Err = fmt.Sprintf("resolve eligible users: %v", err)
		return result
	}
	result.Eligible = len(eligible)

	for _, employeeID := range eligible {
		skip := s.createForEmployee(ctx, p, employeeID, &result)
		if skip != nil {
			result.Skips = append(result.Skips, *skip)
			result.Skipped++
		}
	}

	if err := s.Periods.MarkAutoCreationExecuted(ctx, p.ID, result.Created); err != nil {
		if errors.Is(err, period.ErrAlreadyRun) {
			// A concurrent run already flagged the period; creation stayed
			// duplicate-free through the existence checks.
			slog.Info("auto-creation flag already set", "periodId", p.ID)
		} else {
			result.Err = fmt.Sprintf("mark period executed: %v", err)
		}
	}
	return result
}

func (s *Service) createForEmployee(ctx context.Context, p period.Period, employeeID string, result *PeriodResult) *SkipDetail {
	managerID, err := s.Eligibility.ResolveManager(ctx, employeeID, p.ID)
	switch {
	case errors.Is(err, eligibility.ErrNoManager):
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipNoManager}
	case errors.Is(err, eligibility.ErrAmbiguousMapping):
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipAmbiguousManager}
	case err != nil:
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipCreateFailed, Detail: err.Error()}
	}

	exists, err := s.Evaluations.Exists(ctx, employeeID, managerID, p.ID)
	if err != nil {
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipCreateFailed, Detail: err.Error()}
	}
	if exists {
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipAlreadyExists}
	}

	employee, err := s.snapshotFor(ctx, employeeID)
	if err != nil {
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipCreateFailed, Detail: err.Error()}
	}
	manager, err := s.snapshotFor(ctx, managerID)
	if err != nil {
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipCreateFailed, Detail: err.Error()}
	}

	evaluationID, err := s.Evaluations.Create(ctx, p.ID, employeeID, managerID, employee, manager)
	if err != nil {
		if errors.Is(err, evaluation.ErrDuplicate) {
			// Lost a race with a concurrent run; the row exists, nothing to do.
			return &SkipDetail{EmployeeID: employeeID, Reason: SkipAlreadyExists}
		}
		return &SkipDetail{EmployeeID: employeeID, Reason: SkipCreateFailed, Detail: err.Error()}
	}
	result.Created++

	if s.Notifier != nil {
		deadline := p.SelfAssessmentDeadline.Format("2006-01-02")
		if err := s.Notifier.Notify(ctx, evaluation.NotifyEvaluationCreated, evaluationID,
			[]string{employeeID, managerID},
			"Evaluation Period Started",
			fmt.Sprintf("The evaluation period %q has started. Self-assessments are due by %s.", p.Name, deadline),
		); err != nil {
			slog.Warn("creation notification failed", "evaluationId", evaluationID, "err", err)
		}
	}
	return nil
}

func (s *Service) snapshotFor(ctx context.Context, userID string) (evaluation.PersonSnapshot, error) {
	user, err := s.Directory.GetUser(ctx, userID)
	if err != nil {
		return evaluation.PersonSnapshot{}, err
	}
	return evaluation.PersonSnapshot{Name: user.FullName(), Position: user.Position, Department: user.Department}, nil
}
