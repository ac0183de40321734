package models

import "time"

// TransactionKind distinguishes point-increasing from point-decreasing entries.
type TransactionKind string

const (
	TransactionEarning TransactionKind = "earning"
	TransactionRedeem  TransactionKind = "redeem"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == TransactionEarning || k == TransactionRedeem
}

// Transaction is an immutable ledger journal entry. It is never updated or
// deleted after it has been written.
type Transaction struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	MemberID string
	Kind     TransactionKind

	// Points is the magnitude of the entry. The sign is implied by Kind:
	// earnings add Points to the balance, redeems subtract them.
	Points int64

	Description string

	// StoreID is the store where the entry occurred. Empty only for
	// system-generated entries such as member self-service claims.
	StoreID string

	CreatedAt time.Time
}

// Signed returns the entry's effect on the member balance.
func (t *Transaction) Signed() int64 {
	if t.Kind == TransactionRedeem {
		return -t.Points
	}
	return t.Points
}

// TransactionFilter narrows a journal query. Zero values mean "any".
type TransactionFilter struct {
	MemberID string
	StoreID  string
	Kind     TransactionKind
	Limit    int
}
