package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"land-ledger/internal/core/domain"
	"land-ledger/internal/core/ports"
	"land-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// replayTTL bounds the window in which an identical resubmission is
// detected and answered from cache instead of re-executed.
const replayTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService. It is the only
// component that mutates parcel state: every transition runs inside a
// database transaction that locks the parcel row, so read-validate-write
// sequences on the same parcel never interleave.
type LedgerServiceImpl struct {
	parcelRepo     ports.ParcelRepository
	settlementRepo ports.SettlementRepository
	replayRepo     ports.ReplayRepository
	replayCache    ports.ReplayCache
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	parcelRepo ports.ParcelRepository,
	settlementRepo ports.SettlementRepository,
	replayRepo ports.ReplayRepository,
	replayCache ports.ReplayCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		parcelRepo:     parcelRepo,
		settlementRepo: settlementRepo,
		replayRepo:     replayRepo,
		replayCache:    replayCache,
		transactor:     transactor,
		log:            log,
	}
}

// RegisterLand creates a new parcel owned by the caller, not for sale.
func (s *LedgerServiceImpl) RegisterLand(ctx context.Context, req ports.RegisterLandRequest) (*domain.Parcel, error) {
	if req.Caller.IsZero() {
		return nil, apperror.ErrInvalidArgument("caller is required")
	}
	if err := domain.CanRegister(req.Location, req.Area, req.Price); err != nil {
		s.recordRejection(ctx, domain.SettlementKindRegister, 0, req.Caller, nil, nil, err)
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	parcel := &domain.Parcel{
		Owner:     req.Caller,
		Location:  req.Location,
		Area:      req.Area,
		Price:     req.Price,
		ForSale:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.parcelRepo.Create(ctx, dbTx, parcel)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.InternalError(fmt.Errorf("create parcel: %w", err))
	}
	parcel.ID = id

	entry := &domain.SettlementEntry{
		Kind:      domain.SettlementKindRegister,
		ParcelID:  id,
		Actor:     req.Caller,
		Outcome:   domain.SettlementOutcomeApplied,
		CreatedAt: now,
	}
	if _, err := s.settlementRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("append registration entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("parcel_id", id).
		Str("owner", string(req.Caller)).
		Int64("area", req.Area).
		Int64("price", req.Price).
		Msg("parcel registered")

	return parcel, nil
}

// ListForSale marks a parcel as listed at the given price.
func (s *LedgerServiceImpl) ListForSale(ctx context.Context, req ports.ListForSaleRequest) (*domain.Parcel, error) {
	replayKey := domain.BuildListReplayKey(req.Caller, req.ParcelID, req.Price)
	if cached, ok := s.checkReplay(ctx, replayKey); ok {
		return s.unmarshalCachedParcel(cached)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	parcel, err := s.parcelRepo.GetByIDForUpdate(ctx, dbTx, req.ParcelID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock parcel: %w", err))
	}
	if err := domain.CanList(parcel, req.Caller, req.ParcelID, req.Price); err != nil {
		s.recordRejection(ctx, domain.SettlementKindList, req.ParcelID, req.Caller, nil, &req.Price, err)
		return nil, err
	}

	now := time.Now().UTC()
	parcel.Price = req.Price
	parcel.ForSale = true
	parcel.UpdatedAt = now

	if err := s.parcelRepo.Update(ctx, dbTx, parcel); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update parcel: %w", err))
	}

	entry := &domain.SettlementEntry{
		Kind:      domain.SettlementKindList,
		ParcelID:  parcel.ID,
		Actor:     req.Caller,
		Amount:    &req.Price,
		Outcome:   domain.SettlementOutcomeApplied,
		CreatedAt: now,
	}
	if _, err := s.settlementRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("append listing entry: %w", err))
	}

	respJSON, err := s.saveReplay(ctx, dbTx, replayKey, parcel, now)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheReplay(ctx, replayKey, respJSON)

	s.log.Info().
		Int64("parcel_id", parcel.ID).
		Str("owner", string(parcel.Owner)).
		Int64("price", req.Price).
		Msg("parcel listed for sale")

	return parcel, nil
}

// PurchaseLand transfers a listed parcel to the caller and credits the
// prior owner in the same transaction. Either the ownership flip and the
// settlement entry both commit, or neither does.
func (s *LedgerServiceImpl) PurchaseLand(ctx context.Context, req ports.PurchaseLandRequest) (*domain.Parcel, error) {
	replayKey := domain.BuildPurchaseReplayKey(req.Caller, req.ParcelID, req.AmountPaid)
	if cached, ok := s.checkReplay(ctx, replayKey); ok {
		return s.unmarshalCachedParcel(cached)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	parcel, err := s.parcelRepo.GetByIDForUpdate(ctx, dbTx, req.ParcelID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock parcel: %w", err))
	}
	if err := domain.CanPurchase(parcel, req.Caller, req.ParcelID, req.AmountPaid); err != nil {
		s.recordRejection(ctx, domain.SettlementKindPurchase, req.ParcelID, req.Caller, nil, &req.AmountPaid, err)
		return nil, err
	}

	now := time.Now().UTC()
	priorOwner := parcel.Owner
	parcel.Owner = req.Caller
	parcel.ForSale = false
	parcel.UpdatedAt = now

	if err := s.parcelRepo.Update(ctx, dbTx, parcel); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update parcel: %w", err))
	}

	// Settlement: credit the prior owner with exactly the amount paid.
	entry := &domain.SettlementEntry{
		Kind:        domain.SettlementKindPurchase,
		ParcelID:    parcel.ID,
		Actor:       req.Caller,
		Counterpart: &priorOwner,
		Amount:      &req.AmountPaid,
		Outcome:     domain.SettlementOutcomeApplied,
		CreatedAt:   now,
	}
	if _, err := s.settlementRepo.Append(ctx, dbTx, entry); err != nil {
		// Rollback via defer undoes the ownership flip: no committed
		// state without completed settlement.
		s.log.Error().Err(err).Int64("parcel_id", parcel.ID).Msg("settlement append failed, purchase rolled back")
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("append purchase entry: %w", err))
	}

	respJSON, err := s.saveReplay(ctx, dbTx, replayKey, parcel, now)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheReplay(ctx, replayKey, respJSON)

	s.log.Info().
		Int64("parcel_id", parcel.ID).
		Str("buyer", string(req.Caller)).
		Str("prior_owner", string(priorOwner)).
		Int64("amount", req.AmountPaid).
		Msg("parcel purchased")

	return parcel, nil
}

// TransferOwnership hands a parcel to a new owner. The sale flag is left
// unchanged.
func (s *LedgerServiceImpl) TransferOwnership(ctx context.Context, req ports.TransferOwnershipRequest) (*domain.Parcel, error) {
	replayKey := domain.BuildTransferReplayKey(req.Caller, req.ParcelID, req.NewOwner)
	if cached, ok := s.checkReplay(ctx, replayKey); ok {
		return s.unmarshalCachedParcel(cached)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	parcel, err := s.parcelRepo.GetByIDForUpdate(ctx, dbTx, req.ParcelID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock parcel: %w", err))
	}
	if err := domain.CanTransfer(parcel, req.Caller, req.ParcelID, req.NewOwner); err != nil {
		counterpart := req.NewOwner
		s.recordRejection(ctx, domain.SettlementKindTransfer, req.ParcelID, req.Caller, &counterpart, nil, err)
		return nil, err
	}

	now := time.Now().UTC()
	parcel.Owner = req.NewOwner
	parcel.UpdatedAt = now

	if err := s.parcelRepo.Update(ctx, dbTx, parcel); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update parcel: %w", err))
	}

	newOwner := req.NewOwner
	entry := &domain.SettlementEntry{
		Kind:        domain.SettlementKindTransfer,
		ParcelID:    parcel.ID,
		Actor:       req.Caller,
		Counterpart: &newOwner,
		Outcome:     domain.SettlementOutcomeApplied,
		CreatedAt:   now,
	}
	if _, err := s.settlementRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("append transfer entry: %w", err))
	}

	respJSON, err := s.saveReplay(ctx, dbTx, replayKey, parcel, now)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheReplay(ctx, replayKey, respJSON)

	s.log.Info().
		Int64("parcel_id", parcel.ID).
		Str("from", string(req.Caller)).
		Str("to", string(req.NewOwner)).
		Msg("ownership transferred")

	return parcel, nil
}

// GetAllLands returns a consistent snapshot of all parcels ordered by id.
func (s *LedgerServiceImpl) GetAllLands(ctx context.Context) ([]domain.Parcel, error) {
	parcels, err := s.parcelRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list parcels: %w", err))
	}
	return parcels, nil
}

// GetLand returns a single parcel by id.
func (s *LedgerServiceImpl) GetLand(ctx context.Context, id int64) (*domain.Parcel, error) {
	parcel, err := s.parcelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get parcel: %w", err))
	}
	if parcel == nil {
		return nil, apperror.ErrParcelNotFound(id)
	}
	return parcel, nil
}

// GetHistory returns the settlement log entries for one parcel in append
// order, including rejected attempts.
func (s *LedgerServiceImpl) GetHistory(ctx context.Context, id int64) ([]domain.SettlementEntry, error) {
	parcel, err := s.parcelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get parcel: %w", err))
	}
	if parcel == nil {
		return nil, apperror.ErrParcelNotFound(id)
	}
	entries, err := s.settlementRepo.ListByParcel(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list settlement entries: %w", err))
	}
	return entries, nil
}

// checkReplay runs the two-layer resubmission check: Redis first, durable
// replay rows second. Returns the cached response and true on a hit.
func (s *LedgerServiceImpl) checkReplay(ctx context.Context, key string) ([]byte, bool) {
	cached, err := s.replayCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis replay check failed, falling through to DB")
	}
	if cached != nil {
		return cached, true
	}

	rec, err := s.replayRepo.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("db replay check failed, treating as first submission")
		return nil, false
	}
	if rec != nil {
		return rec.ResponseJSON, true
	}
	return nil, false
}

// saveReplay persists the replay record inside the mutation transaction.
func (s *LedgerServiceImpl) saveReplay(ctx context.Context, tx pgx.Tx, key string, parcel *domain.Parcel, now time.Time) ([]byte, error) {
	respJSON, err := json.Marshal(parcel)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}
	rec := &domain.ReplayRecord{
		Key:          key,
		ParcelID:     parcel.ID,
		ResponseJSON: respJSON,
		CreatedAt:    now,
	}
	if err := s.replayRepo.Create(ctx, tx, rec); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save replay record: %w", err))
	}
	return respJSON, nil
}

// cacheReplay stores the response in Redis (best-effort, post-commit).
func (s *LedgerServiceImpl) cacheReplay(ctx context.Context, key string, respJSON []byte) {
	if err := s.replayCache.Set(ctx, key, respJSON, replayTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache replay record in redis")
	}
}

// recordRejection appends a REJECTED settlement entry outside the aborted
// transaction so the audit trail keeps failed attempts. Best-effort.
func (s *LedgerServiceImpl) recordRejection(
	ctx context.Context,
	kind domain.SettlementKind,
	parcelID int64,
	actor domain.Address,
	counterpart *domain.Address,
	amount *int64,
	cause error,
) {
	reason := "SYS_000"
	var appErr *apperror.AppError
	if errors.As(cause, &appErr) {
		reason = appErr.Code
	}
	entry := &domain.SettlementEntry{
		Kind:        kind,
		ParcelID:    parcelID,
		Actor:       actor,
		Counterpart: counterpart,
		Amount:      amount,
		Outcome:     domain.SettlementOutcomeRejected,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.settlementRepo.AppendRejection(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("kind", string(kind)).
			Int64("parcel_id", parcelID).
			Msg("failed to record rejected attempt")
	}
}

// unmarshalCachedParcel deserializes a cached parcel response.
func (s *LedgerServiceImpl) unmarshalCachedParcel(data []byte) (*domain.Parcel, error) {
	parcel := &domain.Parcel{}
	if err := json.Unmarshal(data, parcel); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached parcel: %w", err))
	}
	return parcel, nil
}
