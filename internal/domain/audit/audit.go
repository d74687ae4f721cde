// Package audit keeps an append-only trail of who changed what. Rows are
// written best-effort from the workflows; the trail explains history, it does
// not gate it.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/requestctx"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record stores one event. before and after are marshalled as JSON snapshots;
// nil means the side does not exist (creation has no before, deletion keeps
// no after).
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshalSnapshot(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalSnapshot(after)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, request_id, before_state, after_state)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, actorID, action, entityType, entityID, requestctx.GetRequestID(ctx), beforeJSON, afterJSON)
	return err
}

func (s *Service) ListForEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, actor_id, action, entity_type, entity_id, request_id, before_state, after_state, created_at
    FROM audit_events
    WHERE entity_type = $1 AND entity_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.RequestID, &e.Before, &e.After, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
