package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints. The values
// match what the dashboard renders, so they are stored verbatim.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "Open"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusClosed     ComplaintStatus = "Closed"
	StatusEscalated  ComplaintStatus = "Escalated"
)

// Valid reports whether the status is a known lifecycle state.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusEscalated:
		return true
	}
	return false
}

// Terminal reports whether the complaint counts as handled for
// resolution-time and SLA purposes.
func (s ComplaintStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// ComplaintPriority enumerates SLA urgency.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "Low"
	PriorityMedium   ComplaintPriority = "Medium"
	PriorityHigh     ComplaintPriority = "High"
	PriorityCritical ComplaintPriority = "Critical"
)

// Valid reports whether the priority is one of the known levels.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Complaint is the aggregate for customer-submitted issues. Attachments and
// History are populated by the service layer when a view needs them.
type Complaint struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    ComplaintPriority
	Status      ComplaintStatus
	UserID      string
	AssignedTo  *string
	SLADeadline time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Attachments []Attachment
	History     []HistoryEvent
}
