package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const statsCacheKey = "complaint:stats:snapshot"

// DashboardStats is the aggregate snapshot behind the stat cards and
// charts. AvgResolutionHours is nil when nothing has been resolved yet
// (the UI renders that as "N/A").
type DashboardStats struct {
	Total              int                              `json:"total"`
	ByStatus           map[domain.ComplaintStatus]int   `json:"by_status"`
	ByPriority         map[domain.ComplaintPriority]int `json:"by_priority"`
	ByCategory         map[string]int                   `json:"by_category"`
	AvgResolutionHours *float64                         `json:"avg_resolution_hours"`
	SLABreaches        int                              `json:"sla_breaches"`
	GeneratedAt        time.Time                        `json:"generated_at"`
}

// ReportService computes derived views over the complaint set: dashboard
// aggregates and the CSV export.
type ReportService struct {
	complaints repository.ComplaintRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs the service. cache may be nil, in which case
// every dashboard read recomputes.
func NewReportService(complaints repository.ComplaintRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		complaints: complaints,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// ComputeStats aggregates the matching complaints in a single pass.
func (s *ReportService) ComputeStats(ctx context.Context, filter repository.ComplaintFilter) (*DashboardStats, error) {
	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	stats := &DashboardStats{
		Total:       len(complaints),
		ByStatus:    map[domain.ComplaintStatus]int{},
		ByPriority:  map[domain.ComplaintPriority]int{},
		ByCategory:  map[string]int{},
		GeneratedAt: now,
	}

	var resolvedCount int
	var resolvedHours float64
	for i := range complaints {
		c := &complaints[i]
		stats.ByStatus[c.Status]++
		stats.ByPriority[c.Priority]++
		stats.ByCategory[c.Category]++
		if c.Status.Terminal() {
			resolvedCount++
			resolvedHours += c.UpdatedAt.Sub(c.CreatedAt).Hours()
		} else if c.SLADeadline.Before(now) {
			stats.SLABreaches++
		}
	}
	if resolvedCount > 0 {
		avg := resolvedHours / float64(resolvedCount)
		stats.AvgResolutionHours = &avg
	}
	return stats, nil
}

// GlobalStats returns the cached snapshot over all complaints, computing
// and caching it on a miss.
func (s *ReportService) GlobalStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache == nil {
		return s.ComputeStats(ctx, repository.ComplaintFilter{})
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Result()
	if err == nil {
		var stats DashboardStats
		if unmarshalErr := json.Unmarshal([]byte(raw), &stats); unmarshalErr == nil {
			return &stats, nil
		}
	}
	return s.RefreshGlobalStats(ctx)
}

// RefreshGlobalStats recomputes the global snapshot and stores it. Cache
// write failures only log; a stale or missing cache never fails a read.
func (s *ReportService) RefreshGlobalStats(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.ComputeStats(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, marshalErr := json.Marshal(stats); marshalErr == nil {
			if setErr := s.cache.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); setErr != nil && s.logger != nil {
				s.logger.Warn("stats cache write failed", zap.Error(setErr))
			}
		}
	}
	return stats, nil
}

// AgentStats computes the snapshot scoped to one agent's assigned
// complaints. Never cached; the queue is small and personal.
func (s *ReportService) AgentStats(ctx context.Context, agentID string) (*DashboardStats, error) {
	return s.ComputeStats(ctx, repository.ComplaintFilter{AssignedTo: &agentID})
}

// ExportCSV serializes the full complaint set. The title column is always
// double-quoted with embedded quotes doubled; a missing assignee renders
// as Unassigned. An empty set is a conflict, not an empty file.
func (s *ReportService) ExportCSV(ctx context.Context) (string, error) {
	complaints, err := s.complaints.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if len(complaints) == 0 {
		return "", apperrors.NewConflict("no complaints to export", nil)
	}

	var b strings.Builder
	b.WriteString("ID,Title,Category,Priority,Status,Created At,Assigned To")
	for i := range complaints {
		c := &complaints[i]
		assigned := "Unassigned"
		if c.AssignedTo != nil {
			assigned = *c.AssignedTo
		}
		b.WriteString("\n")
		b.WriteString(strings.Join([]string{
			c.ID,
			quoteCSV(c.Title),
			c.Category,
			string(c.Priority),
			string(c.Status),
			c.CreatedAt.Format("2006-01-02"),
			assigned,
		}, ","))
	}
	return b.String(), nil
}

func quoteCSV(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
