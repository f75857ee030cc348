package postgres

import (
	"context"
	"errors"
	"fmt"

	"land-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ReplayRepo implements ports.ReplayRepository.
type ReplayRepo struct {
	pool Pool
}

// NewReplayRepo creates a new ReplayRepo.
func NewReplayRepo(pool Pool) *ReplayRepo {
	return &ReplayRepo{pool: pool}
}

// Create inserts a replay record within the mutation transaction, so the
// record commits if and only if the transition it answers for commits.
func (r *ReplayRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.ReplayRecord) error {
	query := `INSERT INTO replay_records (key, parcel_id, response_json, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, rec.Key, rec.ParcelID, rec.ResponseJSON, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert replay record: %w", err)
	}
	return nil
}

// Get fetches a replay record by key.
func (r *ReplayRepo) Get(ctx context.Context, key string) (*domain.ReplayRecord, error) {
	query := `SELECT key, parcel_id, response_json, created_at FROM replay_records WHERE key = $1`

	rec := &domain.ReplayRecord{}
	err := r.pool.QueryRow(ctx, query, key).Scan(&rec.Key, &rec.ParcelID, &rec.ResponseJSON, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get replay record: %w", err)
	}
	return rec, nil
}
