package ports

import (
	"context"
	"time"

	"land-ledger/internal/core/domain"
)

// ReplayCache is the Redis-layer resubmission check (fast path).
type ReplayCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the ledger engine: the only component permitted to
// mutate parcel state.
type LedgerService interface {
	RegisterLand(ctx context.Context, req RegisterLandRequest) (*domain.Parcel, error)
	ListForSale(ctx context.Context, req ListForSaleRequest) (*domain.Parcel, error)
	PurchaseLand(ctx context.Context, req PurchaseLandRequest) (*domain.Parcel, error)
	TransferOwnership(ctx context.Context, req TransferOwnershipRequest) (*domain.Parcel, error)
	GetAllLands(ctx context.Context) ([]domain.Parcel, error)
	GetLand(ctx context.Context, id int64) (*domain.Parcel, error)
	GetHistory(ctx context.Context, id int64) ([]domain.SettlementEntry, error)
}

// RegisterLandRequest holds validated input for parcel registration.
type RegisterLandRequest struct {
	Caller   domain.Address
	Location string
	Area     int64
	Price    int64
}

// ListForSaleRequest holds validated input for listing a parcel.
type ListForSaleRequest struct {
	Caller   domain.Address
	ParcelID int64
	Price    int64
}

// PurchaseLandRequest holds validated input for purchasing a parcel.
type PurchaseLandRequest struct {
	Caller     domain.Address
	ParcelID   int64
	AmountPaid int64
}

// TransferOwnershipRequest holds validated input for transferring ownership.
type TransferOwnershipRequest struct {
	Caller   domain.Address
	ParcelID int64
	NewOwner domain.Address
}

// TokenService handles caller-identity tokens. The upstream gateway
// authenticates the wallet; the ledger only binds and verifies the address.
type TokenService interface {
	Generate(address domain.Address) (string, time.Time, error)
	Validate(tokenString string) (domain.Address, error)
}
