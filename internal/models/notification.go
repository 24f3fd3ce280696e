package models

import "time"

type NotificationType string

const (
	NotifyAlert       NotificationType = "alert"
	NotifyTransaction NotificationType = "transaction"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
