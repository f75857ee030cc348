package domain

import "time"

// SettlementKind identifies the operation a settlement entry records.
type SettlementKind string

const (
	SettlementKindRegister SettlementKind = "REGISTER"
	SettlementKindList     SettlementKind = "LIST"
	SettlementKindPurchase SettlementKind = "PURCHASE"
	SettlementKindTransfer SettlementKind = "TRANSFER"
)

// SettlementOutcome is the result recorded for an attempted transition.
type SettlementOutcome string

const (
	SettlementOutcomeApplied  SettlementOutcome = "APPLIED"
	SettlementOutcomeRejected SettlementOutcome = "REJECTED"
)

// SettlementEntry is one immutable record in the append-only settlement log.
// Seq is assigned by the log in append order and never reordered. On a
// purchase, Counterpart is the prior owner credited with Amount; on a
// transfer, Counterpart is the new owner. Rejected attempts carry the
// rejection code in Reason.
type SettlementEntry struct {
	Seq         int64             `json:"seq"`
	Kind        SettlementKind    `json:"kind"`
	ParcelID    int64             `json:"parcel_id"`
	Actor       Address           `json:"actor"`
	Counterpart *Address          `json:"counterpart,omitempty"`
	Amount      *int64            `json:"amount,omitempty"`
	Outcome     SettlementOutcome `json:"outcome"`
	Reason      string            `json:"reason,omitempty"` // Error code when rejected
	CreatedAt   time.Time         `json:"created_at"`
}

// Applied reports whether the entry records a committed transition.
func (e *SettlementEntry) Applied() bool {
	return e.Outcome == SettlementOutcomeApplied
}
