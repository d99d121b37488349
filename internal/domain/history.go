package domain

import "time"

// HistoryAction captures what a history entry records.
type HistoryAction string

const (
	ActionCreated      HistoryAction = "Created"
	ActionStatusChange HistoryAction = "Status Change"
	ActionAssigned     HistoryAction = "Assigned"
	ActionResolved     HistoryAction = "Resolved"
)

// HistoryEvent is an immutable audit trail entry on a complaint.
// Entries are only ever appended, never updated or deleted.
type HistoryEvent struct {
	ID          string
	ComplaintID string
	Action      HistoryAction
	Details     string
	Performer   string
	Timestamp   time.Time
}
