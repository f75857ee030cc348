package postgres

import (
	"context"
	"errors"
	"fmt"

	"land-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// SettlementRepo implements ports.SettlementRepository. The settlement_log
// table is append-only: no UPDATE or DELETE statement exists anywhere in
// this file, and seq comes from a BIGSERIAL sequence in append order.
type SettlementRepo struct {
	pool Pool
}

// NewSettlementRepo creates a new SettlementRepo.
func NewSettlementRepo(pool Pool) *SettlementRepo {
	return &SettlementRepo{pool: pool}
}

const settlementInsert = `INSERT INTO settlement_log (kind, parcel_id, actor, counterpart, amount, outcome, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`

// Append writes an entry within the mutation transaction and returns its
// sequence number. A failure here aborts the whole transition.
func (r *SettlementRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.SettlementEntry) (int64, error) {
	var seq int64
	err := tx.QueryRow(ctx, settlementInsert,
		e.Kind, e.ParcelID, e.Actor, e.Counterpart, e.Amount,
		e.Outcome, e.Reason, e.CreatedAt,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("append settlement entry: %w", err)
	}
	e.Seq = seq
	return seq, nil
}

// AppendRejection records a rejected attempt on the pool directly, outside
// any transaction, so the rollback of the attempt cannot erase its trace.
func (r *SettlementRepo) AppendRejection(ctx context.Context, e *domain.SettlementEntry) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, settlementInsert,
		e.Kind, e.ParcelID, e.Actor, e.Counterpart, e.Amount,
		e.Outcome, e.Reason, e.CreatedAt,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("append rejection entry: %w", err)
	}
	e.Seq = seq
	return seq, nil
}

// ListByParcel returns all entries for one parcel in append order.
func (r *SettlementRepo) ListByParcel(ctx context.Context, parcelID int64) ([]domain.SettlementEntry, error) {
	query := `SELECT seq, kind, parcel_id, actor, counterpart, amount, outcome, reason, created_at
		FROM settlement_log WHERE parcel_id = $1 ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, parcelID)
	if err != nil {
		return nil, fmt.Errorf("list settlement entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.SettlementEntry
	for rows.Next() {
		var e domain.SettlementEntry
		if err := rows.Scan(
			&e.Seq, &e.Kind, &e.ParcelID, &e.Actor, &e.Counterpart,
			&e.Amount, &e.Outcome, &e.Reason, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan settlement entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlement entries: %w", err)
	}
	return entries, nil
}

// LastFor returns the most recent entry by one actor against one parcel, or
// nil when none exists.
func (r *SettlementRepo) LastFor(ctx context.Context, actor domain.Address, parcelID int64) (*domain.SettlementEntry, error) {
	query := `SELECT seq, kind, parcel_id, actor, counterpart, amount, outcome, reason, created_at
		FROM settlement_log WHERE actor = $1 AND parcel_id = $2 ORDER BY seq DESC LIMIT 1`

	e := &domain.SettlementEntry{}
	err := r.pool.QueryRow(ctx, query, actor, parcelID).Scan(
		&e.Seq, &e.Kind, &e.ParcelID, &e.Actor, &e.Counterpart,
		&e.Amount, &e.Outcome, &e.Reason, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last settlement entry: %w", err)
	}
	return e, nil
}
