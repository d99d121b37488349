package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// HistoryRepository stores the append-only audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, event *domain.HistoryEvent) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.HistoryEvent, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, event *domain.HistoryEvent) error {
	const query = `
        INSERT INTO complaint_history (complaint_id, action, details, performer)
        VALUES ($1,$2,$3,$4)
        RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		event.ComplaintID,
		event.Action,
		event.Details,
		event.Performer,
	).Scan(&event.ID, &event.Timestamp)
}

func (r *historyRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.HistoryEvent, error) {
	const query = `
        SELECT id, complaint_id, action, details, performer, timestamp
        FROM complaint_history WHERE complaint_id=$1 ORDER BY timestamp ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEvent
	for rows.Next() {
		var event domain.HistoryEvent
		if err := rows.Scan(
			&event.ID,
			&event.ComplaintID,
			&event.Action,
			&event.Details,
			&event.Performer,
			&event.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
