package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// SessionHistoryRepository stores per-turn audit entries.
type SessionHistoryRepository interface {
	Create(ctx context.Context, history *domain.SessionHistory) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.SessionHistory, error)
}

type sessionHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewSessionHistoryRepository builds repository.
func NewSessionHistoryRepository(pool *pgxpool.Pool) SessionHistoryRepository {
	return &sessionHistoryRepository{pool: pool}
}

func (r *sessionHistoryRepository) Create(ctx context.Context, history *domain.SessionHistory) error {
	const query = `
        INSERT INTO enrollment_session_history (session_id, from_step, to_step, merge_patch)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		history.SessionID,
		history.FromStep,
		history.ToStep,
		history.MergePatch,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *sessionHistoryRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.SessionHistory, error) {
	const query = `
        SELECT id, session_id, from_step, to_step, merge_patch, created_at
        FROM enrollment_session_history WHERE session_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SessionHistory
	for rows.Next() {
		var history domain.SessionHistory
		if err := rows.Scan(
			&history.ID,
			&history.SessionID,
			&history.FromStep,
			&history.ToStep,
			&history.MergePatch,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
