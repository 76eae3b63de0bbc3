package models

import "time"

// Ticket — тикет чата поддержки пользователя. Сессия трогает только LastSeen.
type Ticket struct {
	UserID    string
	Subject   string
	LastSeen  *time.Time
	CreatedAt time.Time
}
