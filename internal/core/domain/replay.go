package domain

import (
	"fmt"
	"time"
)

// ReplayRecord caches the result of an applied request so a network retry
// returns the prior result instead of re-executing. Keys are derived from the
// request content: an identical resubmission maps to the same key.
type ReplayRecord struct {
	Key          string    `json:"key"`
	ParcelID     int64     `json:"parcel_id"`
	ResponseJSON []byte    `json:"response_json"` // Cached response to return
	CreatedAt    time.Time `json:"created_at"`
}

// BuildListReplayKey derives the replay key for a listing request.
func BuildListReplayKey(actor Address, parcelID, price int64) string {
	return fmt.Sprintf("%s:%s:%d:%d", actor, SettlementKindList, parcelID, price)
}

// BuildPurchaseReplayKey derives the replay key for a purchase request.
func BuildPurchaseReplayKey(actor Address, parcelID, amountPaid int64) string {
	return fmt.Sprintf("%s:%s:%d:%d", actor, SettlementKindPurchase, parcelID, amountPaid)
}

// BuildTransferReplayKey derives the replay key for a transfer request.
func BuildTransferReplayKey(actor Address, parcelID int64, newOwner Address) string {
	return fmt.Sprintf("%s:%s:%d:%s", actor, SettlementKindTransfer, parcelID, newOwner)
}
