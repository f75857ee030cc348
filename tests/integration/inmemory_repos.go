package integration

import (
	"context"
	"fmt"
	"math"
	"sync"

	"land-ledger/internal/core/domain"
	"land-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Parcel Repo ---

type inMemoryParcelRepo struct {
	mu      sync.RWMutex
	parcels map[int64]*domain.Parcel
	nextID  int64
}

func newInMemoryParcelRepo() *inMemoryParcelRepo {
	return &inMemoryParcelRepo{parcels: make(map[int64]*domain.Parcel), nextID: 1}
}

func (r *inMemoryParcelRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Parcel) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextID == math.MaxInt64 {
		return 0, apperror.ErrCapacityExceeded()
	}
	id := r.nextID
	r.nextID++
	cp := *p
	cp.ID = id
	r.parcels[id] = &cp
	return id, nil
}

func (r *inMemoryParcelRepo) GetByID(ctx context.Context, id int64) (*domain.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parcels[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryParcelRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Parcel, error) {
	// Row locking is provided by the serializing transactor in these tests.
	return r.GetByID(ctx, id)
}

func (r *inMemoryParcelRepo) Update(ctx context.Context, tx pgx.Tx, p *domain.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parcels[p.ID]; !ok {
		return fmt.Errorf("parcel not found: %d", p.ID)
	}
	cp := *p
	r.parcels[p.ID] = &cp
	return nil
}

func (r *inMemoryParcelRepo) List(ctx context.Context) ([]domain.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Parcel
	for id := int64(1); id < r.nextID; id++ {
		if p, ok := r.parcels[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

// --- In-Memory Settlement Repo ---

type inMemorySettlementRepo struct {
	mu      sync.RWMutex
	entries []domain.SettlementEntry
	nextSeq int64
}

func newInMemorySettlementRepo() *inMemorySettlementRepo {
	return &inMemorySettlementRepo{nextSeq: 1}
}

func (r *inMemorySettlementRepo) append(e *domain.SettlementEntry) int64 {
	seq := r.nextSeq
	r.nextSeq++
	e.Seq = seq
	r.entries = append(r.entries, *e)
	return seq
}

func (r *inMemorySettlementRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.SettlementEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.append(e), nil
}

func (r *inMemorySettlementRepo) AppendRejection(ctx context.Context, e *domain.SettlementEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.append(e), nil
}

func (r *inMemorySettlementRepo) ListByParcel(ctx context.Context, parcelID int64) ([]domain.SettlementEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.SettlementEntry
	for _, e := range r.entries {
		if e.ParcelID == parcelID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *inMemorySettlementRepo) LastFor(ctx context.Context, actor domain.Address, parcelID int64) (*domain.SettlementEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Actor == actor && r.entries[i].ParcelID == parcelID {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

// --- In-Memory Replay Repo ---

type inMemoryReplayRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.ReplayRecord
}

func newInMemoryReplayRepo() *inMemoryReplayRepo {
	return &inMemoryReplayRepo{records: make(map[string]*domain.ReplayRecord)}
}

func (r *inMemoryReplayRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.ReplayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.Key] = &cp
	return nil
}

func (r *inMemoryReplayRepo) Get(ctx context.Context, key string) (*domain.ReplayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// --- Serializing Transactor ---

// serializingTransactor holds a single lock for the lifetime of every
// transaction, standing in for the per-row locks a real database takes.
// Begin blocks until the previous transaction commits or rolls back, which
// makes concurrent-transition tests deterministic.
type serializingTransactor struct {
	mu sync.Mutex
}

func newSerializingTransactor() *serializingTransactor {
	return &serializingTransactor{}
}

func (t *serializingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx releases the transactor lock exactly once, on whichever of
// Commit or Rollback runs first.
type serialTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *serialTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
