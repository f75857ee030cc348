package domain

import (
	"strings"
	"time"
)

// Address is an opaque caller/owner handle. The ledger only ever compares
// addresses for equality; it never interprets them.
type Address string

// NormalizeAddress lowercases and trims an address so that equality checks
// are not defeated by mixed-case hex from upstream wallets.
func NormalizeAddress(raw string) Address {
	return Address(strings.ToLower(strings.TrimSpace(raw)))
}

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool {
	return a == ""
}

// Parcel is a registered unit of land. A parcel is created by registration
// and never deleted; id values are unique and never reused.
type Parcel struct {
	ID        int64     `json:"id"`
	Owner     Address   `json:"owner"`
	Location  string    `json:"location"` // Immutable after registration
	Area      int64     `json:"area"`     // Square meters, always > 0
	Price     int64     `json:"price"`    // Smallest currency unit, never floating point
	ForSale   bool      `json:"for_sale"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckInvariants reports the first violated parcel invariant, or nil.
// Every committed transition must leave these holding.
func (p *Parcel) CheckInvariants() error {
	switch {
	case p.Owner.IsZero():
		return errInvariant("parcel has no owner")
	case p.Location == "":
		return errInvariant("parcel has no location")
	case p.Area <= 0:
		return errInvariant("parcel area is not positive")
	case p.Price < 0:
		return errInvariant("parcel price is negative")
	case p.ForSale && p.Price <= 0:
		return errInvariant("parcel listed with non-positive price")
	}
	return nil
}

type invariantError string

func errInvariant(msg string) error { return invariantError(msg) }

func (e invariantError) Error() string { return string(e) }
