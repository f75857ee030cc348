package domain

import (
	"errors"
	"testing"

	"land-ledger/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, code, appErr.Code)
}

func listedParcel() *Parcel {
	return &Parcel{
		ID:       1,
		Owner:    "0xowner",
		Location: "Plot A",
		Area:     100,
		Price:    600,
		ForSale:  true,
	}
}

func heldParcel() *Parcel {
	p := listedParcel()
	p.ForSale = false
	p.Price = 500
	return p
}

func TestCanRegister(t *testing.T) {
	tests := []struct {
		name     string
		location string
		area     int64
		price    int64
		wantCode string // empty = ok
	}{
		{"valid", "Plot A", 100, 500, ""},
		{"zero price", "Plot A", 100, 0, "LAND_001"},
		{"empty location", "", 100, 500, "LAND_001"},
		{"zero area", "Plot A", 0, 500, "LAND_001"},
		{"negative area", "Plot A", -10, 500, "LAND_001"},
		{"negative price", "Plot A", 100, -1, "LAND_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanRegister(tt.location, tt.area, tt.price)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				assertCode(t, err, tt.wantCode)
			}
		})
	}
}

func TestCanList(t *testing.T) {
	t.Run("owner lists at positive price", func(t *testing.T) {
		assert.NoError(t, CanList(heldParcel(), "0xowner", 1, 600))
	})

	t.Run("relisting an already listed parcel is allowed", func(t *testing.T) {
		assert.NoError(t, CanList(listedParcel(), "0xowner", 1, 700))
	})

	t.Run("absent parcel", func(t *testing.T) {
		assertCode(t, CanList(nil, "0xowner", 9, 600), "LAND_002")
	})

	t.Run("non-owner", func(t *testing.T) {
		assertCode(t, CanList(heldParcel(), "0xintruder", 1, 600), "LAND_003")
	})

	t.Run("zero price", func(t *testing.T) {
		assertCode(t, CanList(heldParcel(), "0xowner", 1, 0), "LAND_001")
	})

	t.Run("negative price", func(t *testing.T) {
		assertCode(t, CanList(heldParcel(), "0xowner", 1, -5), "LAND_001")
	})
}

func TestCanPurchase(t *testing.T) {
	t.Run("exact payment by non-owner", func(t *testing.T) {
		assert.NoError(t, CanPurchase(listedParcel(), "0xbuyer", 1, 600))
	})

	t.Run("absent parcel", func(t *testing.T) {
		assertCode(t, CanPurchase(nil, "0xbuyer", 9, 600), "LAND_002")
	})

	t.Run("not for sale", func(t *testing.T) {
		assertCode(t, CanPurchase(heldParcel(), "0xbuyer", 1, 500), "LAND_004")
	})

	t.Run("self purchase", func(t *testing.T) {
		assertCode(t, CanPurchase(listedParcel(), "0xowner", 1, 600), "LAND_005")
	})

	t.Run("underpayment", func(t *testing.T) {
		assertCode(t, CanPurchase(listedParcel(), "0xbuyer", 1, 500), "LAND_006")
	})

	t.Run("overpayment", func(t *testing.T) {
		assertCode(t, CanPurchase(listedParcel(), "0xbuyer", 1, 700), "LAND_006")
	})
}

func TestCanTransfer(t *testing.T) {
	t.Run("owner transfers to new owner", func(t *testing.T) {
		assert.NoError(t, CanTransfer(heldParcel(), "0xowner", 1, "0xheir"))
	})

	t.Run("listed parcel can be transferred", func(t *testing.T) {
		assert.NoError(t, CanTransfer(listedParcel(), "0xowner", 1, "0xheir"))
	})

	t.Run("absent parcel", func(t *testing.T) {
		assertCode(t, CanTransfer(nil, "0xowner", 9, "0xheir"), "LAND_002")
	})

	t.Run("non-owner", func(t *testing.T) {
		assertCode(t, CanTransfer(heldParcel(), "0xintruder", 1, "0xheir"), "LAND_003")
	})

	t.Run("empty new owner", func(t *testing.T) {
		assertCode(t, CanTransfer(heldParcel(), "0xowner", 1, ""), "LAND_001")
	})

	t.Run("transfer to self", func(t *testing.T) {
		assertCode(t, CanTransfer(heldParcel(), "0xowner", 1, "0xowner"), "LAND_001")
	})
}

func TestGuards_ArePure(t *testing.T) {
	// Guard rejections must leave the parcel untouched.
	p := listedParcel()
	before := *p

	_ = CanList(p, "0xintruder", p.ID, 999)
	_ = CanPurchase(p, "0xbuyer", p.ID, 1)
	_ = CanTransfer(p, "0xintruder", p.ID, "0xheir")

	assert.Equal(t, before, *p)
}
