package models

import "time"

// Member is a loyalty program customer. Members are global: they can earn and
// redeem at any store regardless of where they registered.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Name is the display name of the member.
	Name string

	// Phone is the member's phone number, unique across all stores.
	// Used as the login identifier at the till.
	Phone string

	// PINHash is the bcrypt hash of the member's PIN. Rows migrated from the
	// legacy system may still hold plaintext until the member's next login.
	PINHash string

	// Balance is the cached point balance. The transaction journal is
	// authoritative; Balance must always equal the sum of the member's entries.
	Balance int64

	// StoreID is the store where the member registered. Empty for members
	// created outside a store context.
	StoreID string

	// CreatedAt is when the member registered.
	CreatedAt time.Time
}
