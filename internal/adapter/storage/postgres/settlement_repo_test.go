package postgres

import (
	"context"
	"testing"
	"time"

	"land-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settlementColumns() []string {
	return []string{"seq", "kind", "parcel_id", "actor", "counterpart", "amount", "outcome", "reason", "created_at"}
}

func newPurchaseEntry() *domain.SettlementEntry {
	owner := domain.Address("0xowner")
	amount := int64(600)
	return &domain.SettlementEntry{
		Kind:        domain.SettlementKindPurchase,
		ParcelID:    1,
		Actor:       "0xbuyer",
		Counterpart: &owner,
		Amount:      &amount,
		Outcome:     domain.SettlementOutcomeApplied,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestSettlementRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	e := newPurchaseEntry()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO settlement_log").
		WithArgs(e.Kind, e.ParcelID, e.Actor, e.Counterpart, e.Amount, e.Outcome, e.Reason, e.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(7)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	seq, err := repo.Append(context.Background(), tx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
	assert.Equal(t, int64(7), e.Seq, "assigned seq is written back onto the entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_AppendRejection(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	amount := int64(500)
	e := &domain.SettlementEntry{
		Kind:      domain.SettlementKindPurchase,
		ParcelID:  1,
		Actor:     "0xbuyer",
		Amount:    &amount,
		Outcome:   domain.SettlementOutcomeRejected,
		Reason:    "LAND_006",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	// No ExpectBegin: rejections go straight to the pool so a rolled-back
	// attempt still leaves its trace.
	mock.ExpectQuery("INSERT INTO settlement_log").
		WithArgs(e.Kind, e.ParcelID, e.Actor, e.Counterpart, e.Amount, e.Outcome, e.Reason, e.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(8)))

	seq, err := repo.AppendRejection(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_ListByParcel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	owner := domain.Address("0xowner")
	amount := int64(600)
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(settlementColumns()).
		AddRow(int64(1), domain.SettlementKindRegister, int64(1), domain.Address("0xowner"), (*domain.Address)(nil), (*int64)(nil), domain.SettlementOutcomeApplied, "", now).
		AddRow(int64(2), domain.SettlementKindPurchase, int64(1), domain.Address("0xbuyer"), &owner, &amount, domain.SettlementOutcomeApplied, "", now)

	mock.ExpectQuery("SELECT .+ FROM settlement_log WHERE parcel_id .+ ORDER BY seq ASC").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	entries, err := repo.ListByParcel(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.SettlementKindRegister, entries[0].Kind)
	assert.Nil(t, entries[0].Amount)
	assert.Equal(t, domain.SettlementKindPurchase, entries[1].Kind)
	require.NotNil(t, entries[1].Amount)
	assert.Equal(t, int64(600), *entries[1].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_LastFor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	owner := domain.Address("0xowner")
	amount := int64(600)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM settlement_log WHERE actor .+ ORDER BY seq DESC LIMIT 1").
		WithArgs(domain.Address("0xbuyer"), int64(1)).
		WillReturnRows(pgxmock.NewRows(settlementColumns()).
			AddRow(int64(5), domain.SettlementKindPurchase, int64(1), domain.Address("0xbuyer"), &owner, &amount, domain.SettlementOutcomeApplied, "", now))

	entry, err := repo.LastFor(context.Background(), "0xbuyer", 1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(5), entry.Seq)
	assert.True(t, entry.Applied())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_LastFor_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM settlement_log WHERE actor .+ ORDER BY seq DESC LIMIT 1").
		WithArgs(domain.Address("0xnobody"), int64(1)).
		WillReturnRows(pgxmock.NewRows(settlementColumns()))

	entry, err := repo.LastFor(context.Background(), "0xnobody", 1)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}
