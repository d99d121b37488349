package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// fakeComplaintRepo keeps complaints in memory in insertion order.
type fakeComplaintRepo struct {
	mu         sync.Mutex
	complaints []*domain.Complaint
	seq        int
	clock      func() time.Time

	listErr error
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{clock: time.Now}
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	complaint.ID = fmt.Sprintf("complaint-%d", f.seq)
	complaint.CreatedAt = f.clock()
	complaint.UpdatedAt = complaint.CreatedAt
	stored := *complaint
	f.complaints = append(f.complaints, &stored)
	return nil
}

func (f *fakeComplaintRepo) forceTimestamps(id string, createdAt, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.complaints {
		if existing.ID == id {
			if !createdAt.IsZero() {
				existing.CreatedAt = createdAt
			}
			if !updatedAt.IsZero() {
				existing.UpdatedAt = updatedAt
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.complaints {
		if existing.ID == complaint.ID {
			complaint.UpdatedAt = f.clock()
			stored := *complaint
			f.complaints[i] = &stored
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.complaints {
		if existing.ID == id {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeComplaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.Complaint{}
	for _, c := range f.complaints {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type fakeHistoryRepo struct {
	mu     sync.Mutex
	events []domain.HistoryEvent
	seq    int
}

func (f *fakeHistoryRepo) Create(_ context.Context, event *domain.HistoryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	event.ID = fmt.Sprintf("history-%d", f.seq)
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeHistoryRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.HistoryEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.HistoryEvent{}
	for _, e := range f.events {
		if e.ComplaintID == complaintID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) byAction(action domain.HistoryAction) []domain.HistoryEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.HistoryEvent{}
	for _, e := range f.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.Attachment
	seq         int
}

func (f *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	attachment.ID = fmt.Sprintf("attachment-%d", f.seq)
	attachment.CreatedAt = time.Now()
	f.attachments = append(f.attachments, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Attachment{}
	for _, a := range f.attachments {
		if a.ComplaintID == complaintID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	seq           int
	createErr     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	notification.ID = fmt.Sprintf("notification-%d", f.seq)
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Notification{}
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []domain.User
	seq   int
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	user.UpdatedAt = user.CreatedAt
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			copied := f.users[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Email == email {
			copied := f.users[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.User{}, f.users...), nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.User{}
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []events.Event{}
	for _, e := range r.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
