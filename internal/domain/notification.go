package domain

import "time"

// NotificationType classifies stored notifications.
type NotificationType string

const (
	NotificationStatusChange NotificationType = "status_change"
)

// Notification is a fire-and-forget record written when a complaint
// changes state; delivery is whatever reads the table.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      NotificationType
	CreatedAt time.Time
}
