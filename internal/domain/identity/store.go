package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, email, role, position, department, active
    FROM users
    WHERE id = $1
  `, userID).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.Position, &u.Department, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) RoleOf(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.DB.QueryRow(ctx, "SELECT role FROM users WHERE id = $1 AND active", userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// IsLeader reports whether the user holds a leadership designation: an open
// row in the leaders registry, or the MANAGER/ADMIN role. Mirrors the
// portal-wide leadership lookup used when deciding which criteria apply.
func (s *Store) IsLeader(ctx context.Context, userID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leaders
    WHERE user_id = $1 AND active AND ended_on IS NULL
  `, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	role, err := s.RoleOf(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role == "MANAGER" || role == "ADMIN", nil
}

func (s *Store) ListLeaders(ctx context.Context) ([]Leader, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, leadership_title, department, started_on, ended_on, active
    FROM leaders
    WHERE active AND ended_on IS NULL
    ORDER BY leadership_title
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Leader
	for rows.Next() {
		var l Leader
		if err := rows.Scan(&l.ID, &l.UserID, &l.LeadershipTitle, &l.Department, &l.StartedOn, &l.EndedOn, &l.Active); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AddLeader closes any open designation for the user before opening a new one,
// keeping at most one active leadership row per user.
func (s *Store) AddLeader(ctx context.Context, userID, title, department string) (string, error) {
	if _, err := s.DB.Exec(ctx, `
    UPDATE leaders
    SET active = false, ended_on = now()
    WHERE user_id = $1 AND active
  `, userID); err != nil {
		return "", err
	}

	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leaders (user_id, leadership_title, department, started_on, active)
    VALUES ($1, $2, $3, now(), true)
    RETURNING id
  `, userID, title, department).Scan(&id)
	return id, err
}

func (s *Store) RemoveLeader(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leaders
    SET active = false, ended_on = now()
    WHERE user_id = $1 AND active
  `, userID)
	return err
}
