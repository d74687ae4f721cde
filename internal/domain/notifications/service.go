package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"appraisal/internal/domain/identity"
)

// Mailer delivers one plain-text message. Implementations must be safe for
// concurrent use; delivery failures are logged by the caller, never surfaced
// to the workflow that triggered them.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	Store     *Store
	Directory *identity.Store
	Mailer    Mailer
	From      string
}

func NewService(store *Store, directory *identity.Store, mailer Mailer, from string) *Service {
	return &Service{Store: store, Directory: directory, Mailer: mailer, From: from}
}

// Notify persists one in-app notification per recipient and mirrors it to
// email when a mailer is configured. A failed recipient does not block the
// others; the first error is returned after the full fan-out.
func (s *Service) Notify(ctx context.Context, eventType, evaluationID string, recipientIDs []string, title, body string) error {
	var firstErr error
	for _, userID := range recipientIDs {
		if userID == "" {
			continue
		}
		var evalRef *string
		if evaluationID != "" {
			id := evaluationID
			evalRef = &id
		}
		_, err := s.Store.Insert(ctx, Notification{
			UserID:       userID,
			EventType:    eventType,
			EvaluationID: evalRef,
			Title:        title,
			Body:         body,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("notify %s: %w", userID, err)
			}
			continue
		}
		s.sendEmail(ctx, userID, title, body)
	}
	return firstErr
}

func (s *Service) sendEmail(ctx context.Context, userID, subject, body string) {
	if s.Mailer == nil {
		return
	}
	user, err := s.Directory.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "userId", userID, "err", err)
		return
	}
	if user.Email == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.From, user.Email, subject, body); err != nil {
		slog.Warn("notification email send failed", "userId", userID, "err", err)
	}
}

func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.Store.ListForUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.Store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.Store.MarkRead(ctx, userID, notificationID, time.Now().UTC())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.Store.MarkAllRead(ctx, userID, time.Now().UTC())
}
