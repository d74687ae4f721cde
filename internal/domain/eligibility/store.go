package eligibility

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRowNotFound = errors.New("eligibility row not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) listEligible(ctx context.Context, query string, args ...any) ([]EligibleUser, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EligibleUser
	for rows.Next() {
		var row EligibleUser
		if err := rows.Scan(&row.ID, &row.UserID, &row.PeriodID, &row.Active); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// EffectiveEligibleUsers resolves the eligible-employee set for a period:
// period-scoped rows override global rows user by user.
func (s *Store) EffectiveEligibleUsers(ctx context.Context, periodID string) ([]string, error) {
	scoped, err := s.listEligible(ctx, `
    SELECT id, user_id, period_id, active
    FROM eligible_users
    WHERE period_id = $1
  `, periodID)
	if err != nil {
		return nil, err
	}
	global, err := s.listEligible(ctx, `
    SELECT id, user_id, period_id, active
    FROM eligible_users
    WHERE period_id IS NULL
  `)
	if err != nil {
		return nil, err
	}
	return EffectiveEligible(scoped, global), nil
}

func (s *Store) ListEligible(ctx context.Context, periodID string) ([]EligibleUser, error) {
	if periodID == "" {
		return s.listEligible(ctx, `
      SELECT id, user_id, period_id, active
      FROM eligible_users
      WHERE period_id IS NULL
      ORDER BY user_id
    `)
	}
	return s.listEligible(ctx, `
    SELECT id, user_id, period_id, active
    FROM eligible_users
    WHERE period_id = $1
    ORDER BY user_id
  `, periodID)
}

// UpsertEligible writes one eligibility decision. The unique key
// (user_id, period scope) makes repeated administration idempotent.
func (s *Store) UpsertEligible(ctx context.Context, row EligibleUser) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO eligible_users (user_id, period_id, active)
    VALUES ($1, $2, $3)
    ON CONFLICT (user_id, COALESCE(period_id, '00000000-0000-0000-0000-000000000000'::uuid))
    DO UPDATE SET active = EXCLUDED.active
    RETURNING id
  `, row.UserID, row.PeriodID, row.Active).Scan(&id)
	return id, err
}

func (s *Store) RemoveEligible(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM eligible_users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (s *Store) listMappings(ctx context.Context, query string, args ...any) ([]ManagerMapping, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ManagerMapping
	for rows.Next() {
		var row ManagerMapping
		if err := rows.Scan(&row.ID, &row.EmployeeID, &row.ManagerID, &row.PeriodID, &row.Active); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ResolveManager returns the single active manager for (employee, period),
// or ErrNoManager / ErrAmbiguousMapping.
func (s *Store) ResolveManager(ctx context.Context, employeeID, periodID string) (string, error) {
	scoped, err := s.listMappings(ctx, `
    SELECT id, employee_id, manager_id, period_id, active
    FROM manager_mappings
    WHERE employee_id = $1 AND period_id = $2
  `, employeeID, periodID)
	if err != nil {
		return "", err
	}
	global, err := s.listMappings(ctx, `
    SELECT id, employee_id, manager_id, period_id, active
    FROM manager_mappings
    WHERE employee_id = $1 AND period_id IS NULL
  `, employeeID)
	if err != nil {
		return "", err
	}
	return ResolveManagerFrom(scoped, global)
}

func (s *Store) ListMappings(ctx context.Context, periodID string) ([]ManagerMapping, error) {
	if periodID == "" {
		return s.listMappings(ctx, `
      SELECT id, employee_id, manager_id, period_id, active
      FROM manager_mappings
      WHERE period_id IS NULL
      ORDER BY employee_id
    `)
	}
	return s.listMappings(ctx, `
    SELECT id, employee_id, manager_id, period_id, active
    FROM manager_mappings
    WHERE period_id = $1
    ORDER BY employee_id
  `, periodID)
}

// UpsertMapping deactivates any other active mapping at the same scope before
// writing, so administration cannot create the ambiguity ResolveManagerFrom
// reports as a configuration error.
func (s *Store) UpsertMapping(ctx context.Context, row ManagerMapping) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if row.Active {
		if _, err := tx.Exec(ctx, `
      UPDATE manager_mappings
      SET active = false
      WHERE employee_id = $1
        AND period_id IS NOT DISTINCT FROM $2
        AND active
    `, row.EmployeeID, row.PeriodID); err != nil {
			return "", err
		}
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO manager_mappings (employee_id, manager_id, period_id, active)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, row.EmployeeID, row.ManagerID, row.PeriodID, row.Active).Scan(&id); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RemoveMapping(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE manager_mappings SET active = false WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRowNotFound
	}
	return nil
}
