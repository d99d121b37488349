package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func testSLA() config.SLAConfig {
	return config.SLAConfig{LowHours: 48, MediumHours: 24, HighHours: 8, CriticalHours: 4}
}

type complaintFixture struct {
	svc           *ComplaintService
	complaintRepo *fakeComplaintRepo
	historyRepo   *fakeHistoryRepo
	attachRepo    *fakeAttachmentRepo
	userRepo      *fakeUserRepo
	dispatcher    *recordingDispatcher
	now           time.Time
}

func newComplaintFixture(t *testing.T, transitions TransitionTable) *complaintFixture {
	t.Helper()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	complaintRepo := newFakeComplaintRepo()
	complaintRepo.clock = func() time.Time { return now }
	userRepo := &fakeUserRepo{}
	historyRepo := &fakeHistoryRepo{}
	attachRepo := &fakeAttachmentRepo{}
	dispatcher := &recordingDispatcher{}

	svc := NewComplaintService(ComplaintDependencies{
		ComplaintRepo:  complaintRepo,
		HistoryRepo:    historyRepo,
		AttachmentRepo: attachRepo,
		Assigner:       NewAssignmentService(config.AssignmentConfig{Categories: []string{"Internet", "Hardware"}}, userRepo),
		Dispatcher:     dispatcher,
		SLA:            testSLA(),
		Transitions:    transitions,
	})
	svc.now = func() time.Time { return now }

	return &complaintFixture{
		svc:           svc,
		complaintRepo: complaintRepo,
		historyRepo:   historyRepo,
		attachRepo:    attachRepo,
		userRepo:      userRepo,
		dispatcher:    dispatcher,
		now:           now,
	}
}

func TestCreateComplaintSLADeadlinePerPriority(t *testing.T) {
	cases := []struct {
		priority domain.ComplaintPriority
		hours    int
	}{
		{domain.PriorityLow, 48},
		{domain.PriorityMedium, 24},
		{domain.PriorityHigh, 8},
		{domain.PriorityCritical, 4},
	}
	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			fx := newComplaintFixture(t, nil)
			created, err := fx.svc.CreateComplaint(context.Background(), "user-9", ComplaintCreateInput{
				Title:       "No connection",
				Description: "Router offline since morning",
				Category:    "Billing",
				Priority:    tc.priority,
			})
			require.NoError(t, err)
			require.Equal(t, fx.now.Add(time.Duration(tc.hours)*time.Hour), created.SLADeadline)
		})
	}
}

func TestCreateComplaintDefaults(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "user-9", ComplaintCreateInput{
		Title:       "Overcharged",
		Description: "Double billed this month",
		Category:    "Billing",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, created.Status)
	require.Equal(t, domain.PriorityMedium, created.Priority)
	require.Nil(t, created.AssignedTo)
	require.Equal(t, "user-9", created.UserID)
}

func TestCreateComplaintWritesExactlyOneCreatedEvent(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "user-9", ComplaintCreateInput{
		Title:       "Broken keyboard",
		Description: "Keys stuck",
		Category:    "Billing",
		Priority:    domain.PriorityLow,
	})
	require.NoError(t, err)

	entries := fx.historyRepo.byAction(domain.ActionCreated)
	require.Len(t, entries, 1)
	require.Equal(t, created.ID, entries[0].ComplaintID)
	require.Equal(t, "user-9", entries[0].Performer)
	require.Empty(t, entries[0].Details)

	published := fx.dispatcher.ofType(events.EventComplaintCreated)
	require.Len(t, published, 1)
}

func TestCreateComplaintAutoAssignsCoveredCategory(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	require.NoError(t, fx.userRepo.Create(context.Background(), &domain.User{Name: "Agent A", Email: "a@x.test", Role: domain.RoleAgent}))
	require.NoError(t, fx.userRepo.Create(context.Background(), &domain.User{Name: "Agent B", Email: "b@x.test", Role: domain.RoleAgent}))
	require.NoError(t, fx.userRepo.Create(context.Background(), &domain.User{Name: "Customer", Email: "c@x.test", Role: domain.RoleCustomer}))

	created, err := fx.svc.CreateComplaint(context.Background(), "user-3", ComplaintCreateInput{
		Title:       "No internet",
		Description: "Outage in my area",
		Category:    "Internet",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)
	require.NotNil(t, created.AssignedTo)

	// Same category always routes to the same agent while the set is stable.
	again, err := fx.svc.CreateComplaint(context.Background(), "user-3", ComplaintCreateInput{
		Title:       "Still no internet",
		Description: "Second report",
		Category:    "Internet",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)
	require.NotNil(t, again.AssignedTo)
	require.Equal(t, *created.AssignedTo, *again.AssignedTo)
}

func TestCreateComplaintUncoveredCategoryStaysUnassigned(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	require.NoError(t, fx.userRepo.Create(context.Background(), &domain.User{Name: "Agent A", Email: "a@x.test", Role: domain.RoleAgent}))

	created, err := fx.svc.CreateComplaint(context.Background(), "user-2", ComplaintCreateInput{
		Title:       "Wrong invoice",
		Description: "Charged for cancelled plan",
		Category:    "Billing",
		Priority:    domain.PriorityMedium,
	})
	require.NoError(t, err)
	require.Nil(t, created.AssignedTo)
}

func TestCreateComplaintCoveredCategoryWithoutAgents(t *testing.T) {
	fx := newComplaintFixture(t, nil)

	created, err := fx.svc.CreateComplaint(context.Background(), "user-2", ComplaintCreateInput{
		Title:       "No internet",
		Description: "Outage",
		Category:    "Internet",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)
	require.Nil(t, created.AssignedTo)
}

func TestCreateComplaintValidation(t *testing.T) {
	fx := newComplaintFixture(t, nil)

	_, err := fx.svc.CreateComplaint(context.Background(), "user-1", ComplaintCreateInput{
		Title:       "   ",
		Description: "something",
		Category:    "Billing",
	})
	requireDomainError(t, err, "VALIDATION_FAILED")

	_, err = fx.svc.CreateComplaint(context.Background(), "user-1", ComplaintCreateInput{
		Title:       "ok",
		Description: "something",
		Category:    "Billing",
		Priority:    domain.ComplaintPriority("Extreme"),
	})
	requireDomainError(t, err, "VALIDATION_FAILED")
}

func TestCreateComplaintStoresAttachments(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "user-1", ComplaintCreateInput{
		Title:       "Screen flicker",
		Description: "See attached video",
		Category:    "Billing",
		Attachments: []AttachmentInput{
			{FileURL: "https://cdn.test/a.mp4", FileType: "video/mp4", FileName: "a.mp4"},
			{FileURL: "https://cdn.test/b.png", FileType: "image/png", FileName: "b.png"},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Attachments, 2)

	stored, err := fx.attachRepo.ListByComplaint(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "https://cdn.test/a.mp4", stored[0].FileURL)
}

func TestUpdateComplaintStatusWritesHistoryAndEvent(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "owner-1", ComplaintCreateInput{
		Title:       "Slow service",
		Description: "Takes minutes to load",
		Category:    "Billing",
	})
	require.NoError(t, err)

	status := domain.StatusInProgress
	updated, err := fx.svc.UpdateComplaint(context.Background(), "agent-7", created.ID, ComplaintUpdate{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, updated.Status)

	entries := fx.historyRepo.byAction(domain.ActionStatusChange)
	require.Len(t, entries, 1)
	require.Equal(t, "Changed to In Progress", entries[0].Details)
	require.Equal(t, "agent-7", entries[0].Performer)

	published := fx.dispatcher.ofType(events.EventComplaintStatusChanged)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.ComplaintStatusChangedPayload)
	require.True(t, ok)
	require.Equal(t, "owner-1", payload.OwnerID)
	require.Equal(t, domain.StatusOpen, payload.OldStatus)
	require.Equal(t, domain.StatusInProgress, payload.NewStatus)
}

func TestUpdateComplaintSameStatusStillRecorded(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "owner-1", ComplaintCreateInput{
		Title:       "Slow service",
		Description: "Takes minutes to load",
		Category:    "Billing",
	})
	require.NoError(t, err)

	status := domain.StatusOpen
	_, err = fx.svc.UpdateComplaint(context.Background(), "agent-7", created.ID, ComplaintUpdate{Status: &status})
	require.NoError(t, err)

	entries := fx.historyRepo.byAction(domain.ActionStatusChange)
	require.Len(t, entries, 1)
	require.Equal(t, "Changed to Open", entries[0].Details)
}

func TestUpdateComplaintAssignmentWritesHistoryAndEvent(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "owner-1", ComplaintCreateInput{
		Title:       "Slow service",
		Description: "Takes minutes to load",
		Category:    "Billing",
	})
	require.NoError(t, err)

	agent := "agent-42"
	updated, err := fx.svc.UpdateComplaint(context.Background(), "admin-1", created.ID, ComplaintUpdate{AssignedTo: &agent})
	require.NoError(t, err)
	require.Equal(t, &agent, updated.AssignedTo)

	entries := fx.historyRepo.byAction(domain.ActionAssigned)
	require.Len(t, entries, 1)
	require.Equal(t, "Assigned to user agent-42", entries[0].Details)

	published := fx.dispatcher.ofType(events.EventComplaintAssigned)
	require.Len(t, published, 1)
}

func TestUpdateComplaintRestrictedTransition(t *testing.T) {
	table, err := ParseTransitionTable("Open>In Progress|Escalated;Resolved>Closed;Closed>")
	require.NoError(t, err)
	fx := newComplaintFixture(t, table)

	created, err := fx.svc.CreateComplaint(context.Background(), "owner-1", ComplaintCreateInput{
		Title:       "Slow service",
		Description: "Takes minutes to load",
		Category:    "Billing",
	})
	require.NoError(t, err)

	closed := domain.StatusClosed
	_, err = fx.svc.UpdateComplaint(context.Background(), "agent-1", created.ID, ComplaintUpdate{Status: &closed})
	requireDomainError(t, err, "CONFLICT")

	inProgress := domain.StatusInProgress
	_, err = fx.svc.UpdateComplaint(context.Background(), "agent-1", created.ID, ComplaintUpdate{Status: &inProgress})
	require.NoError(t, err)
}

func TestUpdateComplaintNotFound(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	status := domain.StatusResolved
	_, err := fx.svc.UpdateComplaint(context.Background(), "agent-1", "missing", ComplaintUpdate{Status: &status})
	requireDomainError(t, err, "NOT_FOUND")
}

func TestUpdateComplaintInvalidStatus(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "owner-1", ComplaintCreateInput{
		Title:       "Slow service",
		Description: "Takes minutes to load",
		Category:    "Billing",
	})
	require.NoError(t, err)

	bogus := domain.ComplaintStatus("Archived")
	_, err = fx.svc.UpdateComplaint(context.Background(), "agent-1", created.ID, ComplaintUpdate{Status: &bogus})
	requireDomainError(t, err, "VALIDATION_FAILED")
}

func TestGetComplaintComposesAttachmentsAndHistory(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	created, err := fx.svc.CreateComplaint(context.Background(), "owner-1", ComplaintCreateInput{
		Title:       "Slow service",
		Description: "Takes minutes to load",
		Category:    "Billing",
		Attachments: []AttachmentInput{{FileURL: "https://cdn.test/x.png", FileType: "image/png", FileName: "x.png"}},
	})
	require.NoError(t, err)

	status := domain.StatusResolved
	_, err = fx.svc.UpdateComplaint(context.Background(), "agent-1", created.ID, ComplaintUpdate{Status: &status})
	require.NoError(t, err)

	got, err := fx.svc.GetComplaint(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	require.Len(t, got.History, 2)
	require.Equal(t, domain.ActionCreated, got.History[0].Action)
	require.Equal(t, domain.ActionStatusChange, got.History[1].Action)
}

func TestGetComplaintNotFound(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	_, err := fx.svc.GetComplaint(context.Background(), "missing")
	requireDomainError(t, err, "NOT_FOUND")
}

func TestListComplaintsFiltersByOwner(t *testing.T) {
	fx := newComplaintFixture(t, nil)
	for _, owner := range []string{"user-1", "user-2", "user-1"} {
		_, err := fx.svc.CreateComplaint(context.Background(), owner, ComplaintCreateInput{
			Title:       "Issue for " + owner,
			Description: "details",
			Category:    "Billing",
		})
		require.NoError(t, err)
	}

	owner := "user-1"
	got, err := fx.svc.ListComplaints(context.Background(), repository.ComplaintFilter{UserID: &owner})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		require.Equal(t, "user-1", c.UserID)
	}
}

func requireDomainError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, code, domainErr.Code)
}
