package ports

import (
	"context"

	"land-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ParcelRepository defines persistence operations for parcels.
// Methods accepting pgx.Tx are used inside transaction blocks: every
// mutation locks the parcel row first so no two transitions on the same id
// can interleave their read-validate-write sequence.
type ParcelRepository interface {
	// Create inserts the parcel and returns its allocated id. Ids are
	// assigned monotonically and never reused.
	Create(ctx context.Context, tx pgx.Tx, p *domain.Parcel) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Parcel, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Parcel, error)
	Update(ctx context.Context, tx pgx.Tx, p *domain.Parcel) error
	// List returns a consistent snapshot of all parcels ordered by
	// ascending id.
	List(ctx context.Context) ([]domain.Parcel, error)
}

// SettlementRepository defines persistence for the append-only settlement
// log. Entries are never updated or deleted; sequence numbers are assigned
// in append order.
type SettlementRepository interface {
	// Append writes an entry within the mutation transaction and returns
	// its sequence number. A failure here aborts the whole transition.
	Append(ctx context.Context, tx pgx.Tx, e *domain.SettlementEntry) (int64, error)
	// AppendRejection records a rejected attempt outside any transaction
	// so a rollback cannot erase the audit trace.
	AppendRejection(ctx context.Context, e *domain.SettlementEntry) (int64, error)
	ListByParcel(ctx context.Context, parcelID int64) ([]domain.SettlementEntry, error)
	LastFor(ctx context.Context, actor domain.Address, parcelID int64) (*domain.SettlementEntry, error)
}

// ReplayRepository defines persistence for replay records (DB backup layer
// of idempotent resubmission detection).
type ReplayRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.ReplayRecord) error
	Get(ctx context.Context, key string) (*domain.ReplayRecord, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
