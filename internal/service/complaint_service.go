package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintService coordinates the complaint lifecycle: creation with SLA
// and auto-assignment, partial updates with audit trail, and composed reads.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	history     repository.HistoryRepository
	attachments repository.AttachmentRepository
	assigner    *AssignmentService
	dispatcher  events.Dispatcher
	sla         config.SLAConfig
	transitions TransitionTable
	now         func() time.Time
}

// ComplaintDependencies bundles requirements for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	HistoryRepo    repository.HistoryRepository
	AttachmentRepo repository.AttachmentRepository
	Assigner       *AssignmentService
	Dispatcher     events.Dispatcher
	SLA            config.SLAConfig
	Transitions    TransitionTable
}

// ComplaintCreateInput describes complaint creation payload.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.ComplaintPriority
	Attachments []AttachmentInput
}

// AttachmentInput defines uploaded file metadata recorded with a complaint.
type AttachmentInput struct {
	FileURL  string
	FileType string
	FileName string
}

// ComplaintUpdate carries the partial update fields. Only status,
// assignee, and priority can change after creation; title, description,
// and category are immutable.
type ComplaintUpdate struct {
	Status     *domain.ComplaintStatus
	AssignedTo *string
	Priority   *domain.ComplaintPriority
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		history:     deps.HistoryRepo,
		attachments: deps.AttachmentRepo,
		assigner:    deps.Assigner,
		dispatcher:  deps.Dispatcher,
		sla:         deps.SLA,
		transitions: deps.Transitions,
		now:         time.Now,
	}
}

// CreateComplaint files a new complaint for a customer. Status is forced to
// Open, the SLA deadline is derived from priority once and never
// recalculated, covered categories are auto-assigned, and exactly one
// "Created" history event is written.
func (s *ComplaintService) CreateComplaint(ctx context.Context, userID string, input ComplaintCreateInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.Category == "" {
		return nil, apperrors.NewValidationError("title, description, category required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	createdAt := s.now()
	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.StatusOpen,
		UserID:      userID,
		SLADeadline: createdAt.Add(s.sla.Window(string(priority))),
	}

	if s.assigner != nil && s.assigner.Covers(input.Category) {
		agent, err := s.assigner.SelectAgent(ctx, input.Category)
		if err != nil {
			return nil, err
		}
		if agent != nil {
			complaint.AssignedTo = &agent.ID
		}
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, att := range input.Attachments {
		record := &domain.Attachment{
			ComplaintID: complaint.ID,
			FileURL:     att.FileURL,
			FileType:    att.FileType,
			FileName:    att.FileName,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		complaint.Attachments = append(complaint.Attachments, *record)
	}

	created := &domain.HistoryEvent{
		ComplaintID: complaint.ID,
		Action:      domain.ActionCreated,
		Performer:   userID,
	}
	if err := s.history.Create(ctx, created); err != nil {
		return nil, apperrors.MapError(err)
	}
	complaint.History = []domain.HistoryEvent{*created}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		ActorID:     userID,
		Payload: events.ComplaintCreatedPayload{
			OwnerID:    complaint.UserID,
			Category:   complaint.Category,
			Priority:   complaint.Priority,
			Title:      complaint.Title,
			AssignedTo: complaint.AssignedTo,
		},
	})
	return complaint, nil
}

// ListComplaints returns complaints matching the filter, each with its
// attachments; the listing never paginates.
func (s *ComplaintService) ListComplaints(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range complaints {
		attachments, err := s.attachments.ListByComplaint(ctx, complaints[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		complaints[i].Attachments = attachments
	}
	return complaints, nil
}

// GetComplaint fetches one complaint with attachments and its full history
// ordered oldest first.
func (s *ComplaintService) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	complaint.Attachments = attachments
	history, err := s.history.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	complaint.History = history
	return complaint, nil
}

// UpdateComplaint applies a partial update on behalf of performedBy. The
// updated timestamp is always stamped; a status change appends one
// "Status Change" history event and notifies the owner, an assignment
// change appends one "Assigned" event.
func (s *ComplaintService) UpdateComplaint(ctx context.Context, performedBy string, id string, updates ComplaintUpdate) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := complaint.Status
	if updates.Status != nil {
		if !updates.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *updates.Status})
		}
		if !s.transitions.Allows(complaint.Status, *updates.Status) {
			return nil, apperrors.NewConflict("status transition not allowed", map[string]any{
				"from": complaint.Status,
				"to":   *updates.Status,
			})
		}
		complaint.Status = *updates.Status
	}
	if updates.AssignedTo != nil {
		complaint.AssignedTo = updates.AssignedTo
	}
	if updates.Priority != nil {
		if !updates.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *updates.Priority})
		}
		complaint.Priority = *updates.Priority
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if updates.Status != nil {
		entry := &domain.HistoryEvent{
			ComplaintID: complaint.ID,
			Action:      domain.ActionStatusChange,
			Details:     fmt.Sprintf("Changed to %s", complaint.Status),
			Performer:   performedBy,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintStatusChanged,
			ComplaintID: complaint.ID,
			ActorID:     performedBy,
			Payload: events.ComplaintStatusChangedPayload{
				OwnerID:   complaint.UserID,
				Title:     complaint.Title,
				OldStatus: oldStatus,
				NewStatus: complaint.Status,
			},
		})
	}
	if updates.AssignedTo != nil {
		entry := &domain.HistoryEvent{
			ComplaintID: complaint.ID,
			Action:      domain.ActionAssigned,
			Details:     fmt.Sprintf("Assigned to user %s", *updates.AssignedTo),
			Performer:   performedBy,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintAssigned,
			ComplaintID: complaint.ID,
			ActorID:     performedBy,
			Payload: events.ComplaintAssignedPayload{
				AssignedTo: complaint.AssignedTo,
			},
		})
	}

	return complaint, nil
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
