package models

import "time"

// DecisionEvent публикуется в брокер после применения решения сессии.
type DecisionEvent struct {
	EventID       string    `json:"event_id"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Decision      string    `json:"decision"`
	DaysRemaining int       `json:"days_remaining,omitempty"`
	DaysOverdue   int       `json:"days_overdue,omitempty"`
	Periodic      bool      `json:"periodic"`
	At            time.Time `json:"at"`
}
