package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// TransitionTable restricts which status changes are legal. An empty table
// allows every transition, matching the permissive behavior the dashboard
// shipped with; operators can tighten it without a code change.
type TransitionTable map[domain.ComplaintStatus][]domain.ComplaintStatus

// ParseTransitionTable parses the "From>To1|To2;From2>To3" form. A From
// with no targets ("Closed>") makes that status terminal.
func ParseTransitionTable(raw string) (TransitionTable, error) {
	table := TransitionTable{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return table, nil
	}
	for _, rule := range strings.Split(raw, ";") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		parts := strings.SplitN(rule, ">", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid transition rule %q", rule)
		}
		from := domain.ComplaintStatus(strings.TrimSpace(parts[0]))
		if !from.Valid() {
			return nil, fmt.Errorf("unknown status %q in transition rule", parts[0])
		}
		targets := []domain.ComplaintStatus{}
		for _, t := range strings.Split(parts[1], "|") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			to := domain.ComplaintStatus(t)
			if !to.Valid() {
				return nil, fmt.Errorf("unknown status %q in transition rule", t)
			}
			targets = append(targets, to)
		}
		table[from] = targets
	}
	return table, nil
}

// Allows reports whether moving from current to next is legal. Statuses
// without a rule are unrestricted.
func (t TransitionTable) Allows(current, next domain.ComplaintStatus) bool {
	if len(t) == 0 {
		return true
	}
	targets, ok := t[current]
	if !ok {
		return true
	}
	for _, candidate := range targets {
		if candidate == next {
			return true
		}
	}
	return false
}
