package service

import (
	"context"
	"sort"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// AssignmentService implements the category based auto-assignment policy.
// The covered categories come from config; eligible agents are looked up
// by role at assignment time, never hardcoded.
type AssignmentService struct {
	users      repository.UserRepository
	categories map[string]struct{}
}

// NewAssignmentService creates the service from the configured policy.
func NewAssignmentService(cfg config.AssignmentConfig, users repository.UserRepository) *AssignmentService {
	categories := make(map[string]struct{}, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories[c] = struct{}{}
	}
	return &AssignmentService{users: users, categories: categories}
}

// Covers reports whether complaints in the category are auto-assigned.
func (s *AssignmentService) Covers(category string) bool {
	_, ok := s.categories[category]
	return ok
}

// SelectAgent picks the handling agent for a covered category. The pick is
// deterministic per category so a category always routes to the same agent
// while the agent set is stable. Returns nil when no agents exist; the
// complaint then simply stays unassigned.
func (s *AssignmentService) SelectAgent(ctx context.Context, category string) (*domain.User, error) {
	if !s.Covers(category) {
		return nil, nil
	}
	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(agents) == 0 {
		return nil, nil
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	agent := agents[selectIndex(category, len(agents))]
	return &agent, nil
}

func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}
