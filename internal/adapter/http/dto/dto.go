package dto

// RegisterLandRequest is the request body for parcel registration.
type RegisterLandRequest struct {
	Location string `json:"location" binding:"required,min=1,max=200"`
	Area     int64  `json:"area" binding:"required,gt=0"`
	Price    int64  `json:"price" binding:"required,gt=0"`
}

// ListForSaleRequest is the request body for listing a parcel for sale.
type ListForSaleRequest struct {
	Price int64 `json:"price" binding:"required,gt=0"`
}

// PurchaseLandRequest is the request body for purchasing a parcel.
type PurchaseLandRequest struct {
	AmountPaid int64 `json:"amount_paid" binding:"required,gt=0"`
}

// TransferOwnershipRequest is the request body for transferring ownership.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner" binding:"required,safe_address"`
}

// TokenRequest is the request body for the gateway token exchange. The
// upstream gateway authenticates the wallet and trades the address for a
// ledger token using the shared secret.
type TokenRequest struct {
	Address       string `json:"address" binding:"required,safe_address"`
	GatewaySecret string `json:"gateway_secret" binding:"required"`
}

// TokenResponse is the response body for a successful token exchange.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// ParcelResponse is the response body for a single parcel.
type ParcelResponse struct {
	ID        int64  `json:"id"`
	Owner     string `json:"owner"`
	Location  string `json:"location"`
	Area      int64  `json:"area"`
	Price     int64  `json:"price"`
	ForSale   bool   `json:"for_sale"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ParcelListResponse wraps the full parcel snapshot.
type ParcelListResponse struct {
	Items []ParcelResponse `json:"items"`
	Total int              `json:"total"`
}

// SettlementEntryResponse is one settlement log entry in API form.
type SettlementEntryResponse struct {
	Seq         int64   `json:"seq"`
	Kind        string  `json:"kind"`
	ParcelID    int64   `json:"parcel_id"`
	Actor       string  `json:"actor"`
	Counterpart *string `json:"counterpart,omitempty"`
	Amount      *int64  `json:"amount,omitempty"`
	Outcome     string  `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// HistoryResponse wraps a parcel's settlement log entries.
type HistoryResponse struct {
	ParcelID int64                     `json:"parcel_id"`
	Entries  []SettlementEntryResponse `json:"entries"`
}
