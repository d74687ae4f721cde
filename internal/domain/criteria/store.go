package criteria

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrCriterionNotFound = errors.New("criterion not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, id string) (Criterion, error) {
	var c Criterion
	var weight string
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, category, audience, leaders_only, weight::text, active
    FROM criteria
    WHERE id = $1
  `, id).Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Audience, &c.LeadersOnly, &weight, &c.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Criterion{}, ErrCriterionNotFound
	}
	if err != nil {
		return Criterion{}, err
	}
	c.Weight, err = decimal.NewFromString(weight)
	if err != nil {
		return Criterion{}, err
	}
	return c, nil
}

// ListActive returns active criteria, optionally narrowed to one audience.
func (s *Store) ListActive(ctx context.Context, audience string) ([]Criterion, error) {
	query := `
    SELECT id, name, description, category, audience, leaders_only, weight::text, active
    FROM criteria
    WHERE active
  `
	args := []any{}
	if audience != "" {
		query += " AND audience = $1"
		args = append(args, audience)
	}
	query += " ORDER BY category, name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		var weight string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Audience, &c.LeadersOnly, &weight, &c.Active); err != nil {
			return nil, err
		}
		if c.Weight, err = decimal.NewFromString(weight); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, c Criterion) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO criteria (name, description, category, audience, leaders_only, weight, active)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, c.Name, c.Description, c.Category, c.Audience, c.LeadersOnly, c.Weight, c.Active).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, c Criterion) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE criteria
    SET name = $1, description = $2, category = $3, audience = $4, leaders_only = $5, weight = $6, active = $7
    WHERE id = $8
  `, c.Name, c.Description, c.Category, c.Audience, c.LeadersOnly, c.Weight, c.Active, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCriterionNotFound
	}
	return nil
}

// Deactivate retires a criterion from future questionnaires. Submitted
// answers keep their snapshots.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE criteria SET active = false WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCriterionNotFound
	}
	return nil
}
