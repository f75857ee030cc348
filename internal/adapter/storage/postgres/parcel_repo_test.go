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

func newTestParcel() *domain.Parcel {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Parcel{
		ID:        1,
		Owner:     "0xowner",
		Location:  "12 Riverside Plot",
		Area:      250,
		Price:     900,
		ForSale:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func parcelColumns() []string {
	return []string{"id", "owner_address", "location", "area", "price", "for_sale", "created_at", "updated_at"}
}

func parcelRow(p *domain.Parcel) *pgxmock.Rows {
	return pgxmock.NewRows(parcelColumns()).AddRow(
		p.ID, p.Owner, p.Location, p.Area, p.Price,
		p.ForSale, p.CreatedAt, p.UpdatedAt,
	)
}

func TestParcelRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)
	p := newTestParcel()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO parcels").
		WithArgs(p.Owner, p.Location, p.Area, p.Price, p.ForSale, p.CreatedAt, p.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.Create(context.Background(), tx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)
	p := newTestParcel()

	mock.ExpectQuery("SELECT .+ FROM parcels WHERE id").
		WithArgs(p.ID).
		WillReturnRows(parcelRow(p))

	result, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.Equal(t, p.Owner, result.Owner)
	assert.Equal(t, p.Location, result.Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM parcels WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(parcelColumns()))

	result, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, result, "missing parcel maps to nil, not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)
	p := newTestParcel()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM parcels WHERE id .+ FOR UPDATE").
		WithArgs(p.ID).
		WillReturnRows(parcelRow(p))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)
	p := newTestParcel()
	p.ForSale = true
	p.Price = 1200

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE parcels SET owner_address").
		WithArgs(p.Owner, p.Price, p.ForSale, p.UpdatedAt, p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_Update_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)
	p := newTestParcel()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE parcels SET owner_address").
		WithArgs(p.Owner, p.Price, p.ForSale, p.UpdatedAt, p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parcel not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)
	a := newTestParcel()
	b := newTestParcel()
	b.ID = 2
	b.Owner = "0xother"
	b.Location = "3 Hillside Plot"

	rows := pgxmock.NewRows(parcelColumns()).
		AddRow(a.ID, a.Owner, a.Location, a.Area, a.Price, a.ForSale, a.CreatedAt, a.UpdatedAt).
		AddRow(b.ID, b.Owner, b.Location, b.Area, b.Price, b.ForSale, b.CreatedAt, b.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM parcels ORDER BY id ASC").
		WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(1), result[0].ID)
	assert.Equal(t, int64(2), result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepo_List_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewParcelRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM parcels ORDER BY id ASC").
		WillReturnRows(pgxmock.NewRows(parcelColumns()))

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
