package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is a branch of the retail chain. Store identity is attached to ledger
// entries and redemptions for audit; it never restricts which member can be served.
type Store struct {
	ID string

	Name string

	// Code is a short upper-case identifier such as "BP01".
	Code string

	Address string

	CreatedAt time.Time
}

// Reward is a catalog item members can claim with points. Edits never affect
// vouchers that were already issued.
type Reward struct {
	ID string

	Name string

	// PointCost is the number of points a claim debits.
	PointCost int64

	// Value is the monetary value of the reward in the store currency.
	Value decimal.Decimal

	CreatedAt time.Time
}

// Role is a staff permission level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Staff is a cashier or administrator account.
type Staff struct {
	ID string

	Username string

	// PasswordHash is the bcrypt hash of the password, or legacy plaintext
	// awaiting upgrade on next login.
	PasswordHash string

	Role Role

	// StoreID is the store the account works at. Admins may have none.
	StoreID string

	Active bool

	CreatedAt time.Time
}
