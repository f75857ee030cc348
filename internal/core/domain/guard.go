package domain

import "land-ledger/pkg/apperror"

// Invariant guard: pure precondition checks run before every mutation.
// Each function is side-effect free and returns nil or the specific
// rejection. A nil parcel means the referenced id does not exist.

// CanRegister validates registration input.
func CanRegister(location string, area, price int64) error {
	if location == "" {
		return apperror.ErrInvalidArgument("location is required")
	}
	if area <= 0 {
		return apperror.ErrInvalidArgument("area must be positive")
	}
	if price <= 0 {
		return apperror.ErrInvalidArgument("price must be positive")
	}
	return nil
}

// CanList validates that caller may list the parcel at the given price.
func CanList(p *Parcel, caller Address, parcelID, price int64) error {
	if p == nil {
		return apperror.ErrParcelNotFound(parcelID)
	}
	if caller != p.Owner {
		return apperror.ErrUnauthorized()
	}
	if price <= 0 {
		return apperror.ErrInvalidArgument("listing price must be positive")
	}
	return nil
}

// CanPurchase validates that caller may purchase the parcel for amountPaid.
// Payment must match the listed price exactly: excess value has no defined
// disposition, so over- and underpayment are both rejected.
func CanPurchase(p *Parcel, caller Address, parcelID, amountPaid int64) error {
	if p == nil {
		return apperror.ErrParcelNotFound(parcelID)
	}
	if !p.ForSale {
		return apperror.ErrNotForSale()
	}
	if caller == p.Owner {
		return apperror.ErrSelfPurchase()
	}
	if amountPaid != p.Price {
		return apperror.ErrPaymentMismatch()
	}
	return nil
}

// CanTransfer validates that caller may hand the parcel to newOwner.
// Only the current owner may transfer.
func CanTransfer(p *Parcel, caller Address, parcelID int64, newOwner Address) error {
	if p == nil {
		return apperror.ErrParcelNotFound(parcelID)
	}
	if caller != p.Owner {
		return apperror.ErrUnauthorized()
	}
	if newOwner.IsZero() {
		return apperror.ErrInvalidArgument("new owner is required")
	}
	if newOwner == p.Owner {
		return apperror.ErrInvalidArgument("new owner must differ from current owner")
	}
	return nil
}
