package postgres

import (
	"context"
	"errors"
	"fmt"

	"land-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ParcelRepo implements ports.ParcelRepository.
type ParcelRepo struct {
	pool Pool
}

// NewParcelRepo creates a new ParcelRepo.
func NewParcelRepo(pool Pool) *ParcelRepo {
	return &ParcelRepo{pool: pool}
}

// Create inserts a new parcel within a transaction and returns the id the
// database allocated. Ids come from a BIGSERIAL sequence: monotonic, never
// reused, even across rolled-back registrations.
func (r *ParcelRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Parcel) (int64, error) {
	query := `INSERT INTO parcels (owner_address, location, area, price, for_sale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := tx.QueryRow(ctx, query,
		p.Owner, p.Location, p.Area, p.Price, p.ForSale, p.CreatedAt, p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert parcel: %w", err)
	}
	return id, nil
}

// GetByID fetches a parcel by id (without locking).
func (r *ParcelRepo) GetByID(ctx context.Context, id int64) (*domain.Parcel, error) {
	query := `SELECT id, owner_address, location, area, price, for_sale, created_at, updated_at
		FROM parcels WHERE id = $1`

	p := &domain.Parcel{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Owner, &p.Location, &p.Area, &p.Price,
		&p.ForSale, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parcel by id: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a parcel by id with pessimistic locking.
// This MUST be called within a transaction. Concurrent transitions on the
// same parcel queue behind the row lock until commit or rollback.
func (r *ParcelRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Parcel, error) {
	query := `SELECT id, owner_address, location, area, price, for_sale, created_at, updated_at
		FROM parcels WHERE id = $1 FOR UPDATE`

	p := &domain.Parcel{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Owner, &p.Location, &p.Area, &p.Price,
		&p.ForSale, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parcel for update: %w", err)
	}
	return p, nil
}

// Update writes a parcel's mutable fields within a transaction. Location is
// immutable after registration and is never touched here.
func (r *ParcelRepo) Update(ctx context.Context, tx pgx.Tx, p *domain.Parcel) error {
	query := `UPDATE parcels SET owner_address = $1, price = $2, for_sale = $3, updated_at = $4 WHERE id = $5`

	tag, err := tx.Exec(ctx, query, p.Owner, p.Price, p.ForSale, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update parcel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("parcel not found: %d", p.ID)
	}
	return nil
}

// List returns all parcels ordered by ascending id. A single statement runs
// under one MVCC snapshot, so the result never shows a half-applied
// transition.
func (r *ParcelRepo) List(ctx context.Context) ([]domain.Parcel, error) {
	query := `SELECT id, owner_address, location, area, price, for_sale, created_at, updated_at
		FROM parcels ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	defer rows.Close()

	var parcels []domain.Parcel
	for rows.Next() {
		var p domain.Parcel
		if err := rows.Scan(
			&p.ID, &p.Owner, &p.Location, &p.Area, &p.Price,
			&p.ForSale, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan parcel: %w", err)
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parcels: %w", err)
	}
	return parcels, nil
}
