package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

func seedComplaint(t *testing.T, repo *fakeComplaintRepo, c domain.Complaint) domain.Complaint {
	t.Helper()
	stored := c
	require.NoError(t, repo.Create(context.Background(), &stored))
	if !c.CreatedAt.IsZero() || !c.UpdatedAt.IsZero() {
		stored.CreatedAt = c.CreatedAt
		stored.UpdatedAt = c.UpdatedAt
		require.NoError(t, repo.forceTimestamps(stored.ID, c.CreatedAt, c.UpdatedAt))
	}
	return stored
}

func TestComputeStatsAggregates(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeComplaintRepo()
	repo.clock = func() time.Time { return now }
	svc := NewReportService(repo, nil, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return now }

	agent := "agent-1"
	seedComplaint(t, repo, domain.Complaint{
		Title: "a", Category: "Internet", Priority: domain.PriorityHigh,
		Status: domain.StatusOpen, UserID: "u1",
		SLADeadline: now.Add(-time.Hour),
	})
	seedComplaint(t, repo, domain.Complaint{
		Title: "b", Category: "Billing", Priority: domain.PriorityLow,
		Status: domain.StatusResolved, UserID: "u2", AssignedTo: &agent,
		CreatedAt: now.Add(-10 * time.Hour), UpdatedAt: now.Add(-4 * time.Hour),
	})
	seedComplaint(t, repo, domain.Complaint{
		Title: "c", Category: "Internet", Priority: domain.PriorityHigh,
		Status: domain.StatusInProgress, UserID: "u1", AssignedTo: &agent,
		SLADeadline: now.Add(time.Hour),
	})

	stats, err := svc.ComputeStats(context.Background(), repository.ComplaintFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.ByStatus[domain.StatusOpen])
	require.Equal(t, 1, stats.ByStatus[domain.StatusResolved])
	require.Equal(t, 2, stats.ByCategory["Internet"])
	require.Equal(t, 2, stats.ByPriority[domain.PriorityHigh])
	require.Equal(t, 1, stats.SLABreaches)
	require.NotNil(t, stats.AvgResolutionHours)
	require.InDelta(t, 6.0, *stats.AvgResolutionHours, 0.001)
}

func TestComputeStatsNoResolved(t *testing.T) {
	repo := newFakeComplaintRepo()
	svc := NewReportService(repo, nil, time.Minute, zap.NewNop())

	seedComplaint(t, repo, domain.Complaint{
		Title: "a", Category: "Internet", Priority: domain.PriorityHigh,
		Status: domain.StatusOpen, UserID: "u1",
		SLADeadline: time.Now().Add(time.Hour),
	})

	stats, err := svc.ComputeStats(context.Background(), repository.ComplaintFilter{})
	require.NoError(t, err)
	require.Nil(t, stats.AvgResolutionHours)
	require.Zero(t, stats.SLABreaches)
}

func TestAgentStatsScopedToAssignee(t *testing.T) {
	repo := newFakeComplaintRepo()
	svc := NewReportService(repo, nil, time.Minute, zap.NewNop())

	agent := "agent-1"
	other := "agent-2"
	seedComplaint(t, repo, domain.Complaint{
		Title: "mine", Category: "Internet", Priority: domain.PriorityHigh,
		Status: domain.StatusOpen, UserID: "u1", AssignedTo: &agent,
		SLADeadline: time.Now().Add(time.Hour),
	})
	seedComplaint(t, repo, domain.Complaint{
		Title: "theirs", Category: "Internet", Priority: domain.PriorityHigh,
		Status: domain.StatusOpen, UserID: "u2", AssignedTo: &other,
		SLADeadline: time.Now().Add(time.Hour),
	})

	stats, err := svc.AgentStats(context.Background(), agent)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
}

func TestExportCSVFormatting(t *testing.T) {
	repo := newFakeComplaintRepo()
	repo.clock = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	svc := NewReportService(repo, nil, time.Minute, zap.NewNop())

	agent := "agent-1"
	seedComplaint(t, repo, domain.Complaint{
		Title: `He said "broken", twice`, Category: "Hardware",
		Priority: domain.PriorityCritical, Status: domain.StatusOpen, UserID: "u1",
	})
	seedComplaint(t, repo, domain.Complaint{
		Title: "Plain title", Category: "Billing",
		Priority: domain.PriorityLow, Status: domain.StatusResolved, UserID: "u2", AssignedTo: &agent,
	})

	csv, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)

	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "ID,Title,Category,Priority,Status,Created At,Assigned To", lines[0])
	require.Equal(t, `complaint-1,"He said ""broken"", twice",Hardware,Critical,Open,2024-05-01,Unassigned`, lines[1])
	require.Equal(t, `complaint-2,"Plain title",Billing,Low,Resolved,2024-05-01,agent-1`, lines[2])
}

func TestExportCSVEmptySet(t *testing.T) {
	repo := newFakeComplaintRepo()
	svc := NewReportService(repo, nil, time.Minute, zap.NewNop())

	_, err := svc.ExportCSV(context.Background())
	requireDomainError(t, err, "CONFLICT")
}

func TestGlobalStatsWithoutCacheRecomputes(t *testing.T) {
	repo := newFakeComplaintRepo()
	svc := NewReportService(repo, nil, time.Minute, zap.NewNop())

	seedComplaint(t, repo, domain.Complaint{
		Title: "a", Category: "Internet", Priority: domain.PriorityHigh,
		Status: domain.StatusOpen, UserID: "u1",
		SLADeadline: time.Now().Add(time.Hour),
	})

	stats, err := svc.GlobalStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
}
