package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPeriodNotFound = errors.New("period not found")
	ErrAlreadyRun     = errors.New("auto-creation already executed for period")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const periodColumns = `
  id, name, year, start_date, end_date, self_assessment_deadline,
  approval_deadline, status, active, auto_creation_executed,
  auto_creation_at, created_evaluations
`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(
		&p.ID, &p.Name, &p.Year, &p.StartDate, &p.EndDate,
		&p.SelfAssessmentDeadline, &p.ApprovalDeadline, &p.Status, &p.Active,
		&p.AutoCreationExecuted, &p.AutoCreationAt, &p.CreatedEvaluations,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (s *Store) Get(ctx context.Context, id string) (Period, error) {
	return scanPeriod(s.DB.QueryRow(ctx, "SELECT"+periodColumns+"FROM periods WHERE id = $1", id))
}

func (s *Store) List(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+periodColumns+"FROM periods ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreationCandidates returns active periods whose start date has arrived and
// whose auto-creation flag is still unset. An optional periodID narrows the
// scan to one period (the manual re-run path).
func (s *Store) CreationCandidates(ctx context.Context, today time.Time, periodID string) ([]Period, error) {
	query := "SELECT" + periodColumns + `
    FROM periods
    WHERE start_date <= $1 AND NOT auto_creation_executed AND active
  `
	args := []any{today}
	if periodID != "" {
		query += " AND id = $2"
		args = append(args, periodID)
	}
	query += " ORDER BY start_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, p Period) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO periods (name, year, start_date, end_date, self_assessment_deadline, approval_deadline, status, active)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id
  `, p.Name, p.Year, p.StartDate, p.EndDate, p.SelfAssessmentDeadline, p.ApprovalDeadline, p.Status, p.Active).Scan(&id)
	return id, err
}

// Update applies administrative edits. The auto-creation flag is not
// updatable here; only MarkAutoCreationExecuted touches it.
func (s *Store) Update(ctx context.Context, p Period) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE periods
    SET name = $1, year = $2, start_date = $3, end_date = $4,
        self_assessment_deadline = $5, approval_deadline = $6, status = $7, active = $8
    WHERE id = $9
  `, p.Name, p.Year, p.StartDate, p.EndDate, p.SelfAssessmentDeadline, p.ApprovalDeadline, p.Status, p.Active, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE periods SET active = false WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// MarkAutoCreationExecuted flips the one-shot flag. The WHERE clause keeps the
// transition monotonic: a concurrent run that already set the flag makes this
// a no-op reported as ErrAlreadyRun.
func (s *Store) MarkAutoCreationExecuted(ctx context.Context, id string, createdCount int) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE periods
    SET auto_creation_executed = true, auto_creation_at = now(), created_evaluations = $1
    WHERE id = $2 AND NOT auto_creation_executed
  `, createdCount, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyRun
	}
	return nil
}

func (s *Store) AppendCronLog(ctx context.Context, entry CronLog) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO cron_logs (period_id, run_at, outcome, created_count, skipped_count, error_detail, duration_ms)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, entry.PeriodID, entry.RunAt, entry.Outcome, entry.CreatedCount, entry.SkippedCount, entry.ErrorDetail, entry.DurationMS)
	return err
}

func (s *Store) ListCronLogs(ctx context.Context, periodID string, limit, offset int) ([]CronLog, error) {
	query := `
    SELECT id, period_id, run_at, outcome, created_count, skipped_count, error_detail, duration_ms
    FROM cron_logs
  `
	args := []any{}
	if periodID != "" {
		query += " WHERE period_id = $1"
		args = append(args, periodID)
	}
	query += " ORDER BY run_at DESC"
	query += limitOffsetClause(len(args), &args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CronLog
	for rows.Next() {
		var entry CronLog
		if err := rows.Scan(&entry.ID, &entry.PeriodID, &entry.RunAt, &entry.Outcome, &entry.CreatedCount, &entry.SkippedCount, &entry.ErrorDetail, &entry.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func limitOffsetClause(argCount int, args *[]any, limit, offset int) string {
	clause := ""
	if limit > 0 {
		argCount++
		clause += fmt.Sprintf(" LIMIT $%d", argCount)
		*args = append(*args, limit)
	}
	if offset > 0 {
		argCount++
		clause += fmt.Sprintf(" OFFSET $%d", argCount)
		*args = append(*args, offset)
	}
	return clause
}
