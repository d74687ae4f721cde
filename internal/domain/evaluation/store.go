package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const evaluationColumns = `
  id, period_id, employee_id, manager_id, status,
  self_assessment_submitted_at, manager_decision_at, manager_comment,
  return_reason, total_score::text,
  employee_name, employee_position, employee_department,
  manager_name, manager_position, manager_department,
  created_at, updated_at, deleted_at
`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var e Evaluation
	var totalScore *string
	err := row.Scan(
		&e.ID, &e.PeriodID, &e.EmployeeID, &e.ManagerID, &e.Status,
		&e.SelfAssessmentSubmittedAt, &e.ManagerDecisionAt, &e.ManagerComment,
		&e.ReturnReason, &totalScore,
		&e.Employee.Name, &e.Employee.Position, &e.Employee.Department,
		&e.Manager.Name, &e.Manager.Position, &e.Manager.Department,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	if totalScore != nil {
		parsed, err := decimal.NewFromString(*totalScore)
		if err != nil {
			return Evaluation{}, err
		}
		e.TotalScore = &parsed
	}
	return e, nil
}

// Get returns the evaluation regardless of the deletion marker. Surfaces that
// must not see trashed rows check Deleted() through the policy.
func (s *Store) Get(ctx context.Context, id string) (Evaluation, error) {
	return scanEvaluation(s.DB.QueryRow(ctx, "SELECT"+evaluationColumns+"FROM evaluations WHERE id = $1", id))
}

// Create inserts a new evaluation in the initial status with identity
// snapshots. The partial unique index on the (employee, manager, period)
// triple makes this race-safe: a concurrent duplicate insert surfaces as
// ErrDuplicate, never as a second row.
func (s *Store) Create(ctx context.Context, periodID, employeeID, managerID string, employee, manager PersonSnapshot) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (
      period_id, employee_id, manager_id, status,
      employee_name, employee_position, employee_department,
      manager_name, manager_position, manager_department
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    RETURNING id
  `, periodID, employeeID, managerID, StatusPendingSelfAssessment,
		employee.Name, employee.Position, employee.Department,
		manager.Name, manager.Position, manager.Department,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

// Exists reports whether a non-deleted evaluation already covers the triple.
// The scheduler uses it to keep re-runs idempotent even when a prior run died
// before setting the period flag.
func (s *Store) Exists(ctx context.Context, employeeID, managerID, periodID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM evaluations
    WHERE employee_id = $1 AND manager_id = $2 AND period_id = $3 AND deleted_at IS NULL
  `, employeeID, managerID, periodID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) list(ctx context.Context, deleted bool, filter ListFilter) ([]Evaluation, error) {
	var conditions []string
	var args []any
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if deleted {
		conditions = append(conditions, "deleted_at IS NOT NULL")
	} else {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, "status = ANY("+arg(filter.Statuses)+")")
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = "+arg(filter.EmployeeID))
	}
	if filter.ManagerID != "" {
		conditions = append(conditions, "manager_id = "+arg(filter.ManagerID))
	}
	if filter.PeriodID != "" {
		conditions = append(conditions, "period_id = "+arg(filter.PeriodID))
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "created_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "created_at <= "+arg(filter.To))
	}

	query := "SELECT" + evaluationColumns + "FROM evaluations WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListActive returns non-deleted evaluations matching the filter.
func (s *Store) ListActive(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	return s.list(ctx, false, filter)
}

// ListDeleted is the trash surface: only soft-deleted rows, admin-only at the
// transport layer.
func (s *Store) ListDeleted(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	return s.list(ctx, true, filter)
}

// TransitionSelfAssessment moves the row to awaiting_manager_review with a
// compare-and-swap on the status read by the caller. Zero rows affected means
// another actor won the race; the caller maps that to conflict or invalid
// transition after a refetch.
func (s *Store) TransitionSelfAssessment(ctx context.Context, id, fromStatus string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET status = $1, self_assessment_submitted_at = now(), updated_at = now()
    WHERE id = $2 AND status = $3 AND deleted_at IS NULL
  `, StatusAwaitingManagerReview, id, fromStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// TransitionDecision applies a manager decision with the same
// compare-and-swap discipline. totalScore is nil except on approval.
func (s *Store) TransitionDecision(ctx context.Context, id, fromStatus, toStatus, comment, returnReason string, totalScore *decimal.Decimal) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET status = $1, manager_decision_at = now(), manager_comment = $2,
        return_reason = $3, total_score = $4, updated_at = now()
    WHERE id = $5 AND status = $6 AND deleted_at IS NULL
  `, toStatus, comment, returnReason, totalScore, id, fromStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// SoftDelete sets the trash marker without touching the status, so a restore
// brings the row back exactly where it was.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET deleted_at = now(), updated_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Restore(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET deleted_at = NULL, updated_at = now()
    WHERE id = $1 AND deleted_at IS NOT NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertAnswer writes one questionnaire answer; a resubmission for the same
// (evaluation, question, respondent) overwrites the previous row, keeping the
// log append-free of duplicates.
func (s *Store) UpsertAnswer(ctx context.Context, a Answer) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO questionnaire_answers (
      evaluation_id, criterion_id, question_id, respondent_type,
      score, response_text, comment, criterion_name_snapshot, criterion_weight_snapshot
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    ON CONFLICT (evaluation_id, respondent_type, answer_key)
    DO UPDATE SET
      score = EXCLUDED.score,
      response_text = EXCLUDED.response_text,
      comment = EXCLUDED.comment,
      criterion_name_snapshot = EXCLUDED.criterion_name_snapshot,
      criterion_weight_snapshot = EXCLUDED.criterion_weight_snapshot
  `, a.EvaluationID, a.CriterionID, a.QuestionID, a.RespondentType,
		a.Score, a.ResponseText, a.Comment, a.CriterionNameSnapshot, a.CriterionWeightSnapshot)
	return err
}

func (s *Store) ListAnswers(ctx context.Context, evaluationID string) ([]Answer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, evaluation_id, criterion_id, question_id, respondent_type,
           score, response_text, comment, criterion_name_snapshot,
           criterion_weight_snapshot::text, created_at
    FROM questionnaire_answers
    WHERE evaluation_id = $1
    ORDER BY respondent_type, question_id NULLS LAST, criterion_name_snapshot
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		var weight *string
		if err := rows.Scan(&a.ID, &a.EvaluationID, &a.CriterionID, &a.QuestionID, &a.RespondentType,
			&a.Score, &a.ResponseText, &a.Comment, &a.CriterionNameSnapshot, &weight, &a.CreatedAt); err != nil {
			return nil, err
		}
		if weight != nil {
			parsed, err := decimal.NewFromString(*weight)
			if err != nil {
				return nil, err
			}
			a.CriterionWeightSnapshot = &parsed
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
