package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, n Notification) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (user_id, event_type, evaluation_id, title, body)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, n.UserID, n.EventType, n.EvaluationID, n.Title, n.Body).Scan(&id)
	return id, err
}

// ListForUser returns the newest notifications first. unreadOnly narrows to
// rows not yet marked read.
func (s *Store) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	query := `
    SELECT id, user_id, event_type, evaluation_id, title, body, read_at, created_at
    FROM notifications
    WHERE user_id = $1
  `
	if unreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	rows, err := s.DB.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventType, &n.EvaluationID, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND read_at IS NULL",
		userID).Scan(&count)
	return count, err
}

// MarkRead is scoped to the owner so one user cannot clear another's badge.
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = $1
    WHERE id = $2 AND user_id = $3 AND read_at IS NULL
  `, at, notificationID, userID)
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	_, err := s.DB.Exec(ctx,
		"UPDATE notifications SET read_at = $1 WHERE user_id = $2 AND read_at IS NULL",
		at, userID)
	return err
}
