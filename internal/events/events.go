// Package events pushes ledger and voucher changes to connected tills so they
// can re-fetch instead of reloading.
package events

import "time"

// Event types
const (
	LedgerEarned    = "ledger.earned"
	LedgerRedeemed  = "ledger.redeemed"
	VoucherIssued   = "voucher.issued"
	VoucherRedeemed = "voucher.redeemed"
	VoucherExpired  = "voucher.expired"
)

// Event is a change notification. StoreID routes the event to that store's
// clients and MemberID to the member's own session; administrators receive
// every event.
type Event struct {
	Type     string    `json:"type"`
	StoreID  string    `json:"store_id,omitempty"`
	MemberID string    `json:"member_id,omitempty"`
	Data     any       `json:"data,omitempty"`
	At       time.Time `json:"at"`
}

// BalanceChange is the payload of ledger events.
type BalanceChange struct {
	Points  int64 `json:"points"`
	Balance int64 `json:"balance"`
}

// VoucherChange is the payload of voucher events.
type VoucherChange struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}

// Publisher accepts events. Publish must not block the caller.
type Publisher interface {
	Publish(Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}
