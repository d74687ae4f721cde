package notifications

import "time"

type Notification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	EventType    string     `json:"eventType"`
	EvaluationID *string    `json:"evaluationId,omitempty"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
