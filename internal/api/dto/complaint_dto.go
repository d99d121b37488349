package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Attachments []AttachmentRequest      `json:"attachments"`
}

// AttachmentRequest references an already-uploaded file.
type AttachmentRequest struct {
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileName string `json:"fileName"`
}

// UpdateComplaintRequest carries the partial update. Absent fields are
// left untouched; any other fields on the wire are ignored.
type UpdateComplaintRequest struct {
	Status     *domain.ComplaintStatus   `json:"status"`
	AssignedTo *string                   `json:"assignedTo"`
	Priority   *domain.ComplaintPriority `json:"priority"`
}

// ComplaintResponse is the wire shape of a complaint. History is present
// only on detail views.
type ComplaintResponse struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Status      domain.ComplaintStatus   `json:"status"`
	UserID      string                   `json:"userId"`
	AssignedTo  *string                  `json:"assignedTo"`
	SLADeadline time.Time                `json:"slaDeadline"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
	Attachments []AttachmentResponse     `json:"attachments"`
	History     []HistoryResponse        `json:"history,omitempty"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID       string `json:"id"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileName string `json:"fileName"`
}

// HistoryResponse represents an audit trail entry.
type HistoryResponse struct {
	ID        string               `json:"id"`
	Action    domain.HistoryAction `json:"action"`
	Details   string               `json:"details,omitempty"`
	Performer string               `json:"performer"`
	Timestamp time.Time            `json:"timestamp"`
}

// NotificationResponse is the wire shape of a stored notification.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	CreatedAt time.Time               `json:"createdAt"`
}

// UploadedFileResponse reports one stored upload.
type UploadedFileResponse struct {
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileName string `json:"fileName"`
}

// NewComplaintResponse maps a domain complaint, including whatever
// attachments and history the service populated.
func NewComplaintResponse(complaint *domain.Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:          complaint.ID,
		Title:       complaint.Title,
		Description: complaint.Description,
		Category:    complaint.Category,
		Priority:    complaint.Priority,
		Status:      complaint.Status,
		UserID:      complaint.UserID,
		AssignedTo:  complaint.AssignedTo,
		SLADeadline: complaint.SLADeadline,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
		Attachments: make([]AttachmentResponse, 0, len(complaint.Attachments)),
	}
	for _, att := range complaint.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:       att.ID,
			FileURL:  att.FileURL,
			FileType: att.FileType,
			FileName: att.FileName,
		})
	}
	for _, event := range complaint.History {
		resp.History = append(resp.History, HistoryResponse{
			ID:        event.ID,
			Action:    event.Action,
			Details:   event.Details,
			Performer: event.Performer,
			Timestamp: event.Timestamp,
		})
	}
	return resp
}
