package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the lifecycle state of a voucher. Transitions are one-way:
// active → used, or active → expired.
type VoucherStatus string

const (
	VoucherActive  VoucherStatus = "active"
	VoucherUsed    VoucherStatus = "used"
	VoucherExpired VoucherStatus = "expired"
)

// Terminal reports whether no further transition is possible from s.
func (s VoucherStatus) Terminal() bool {
	return s == VoucherUsed || s == VoucherExpired
}

// Voucher is a single-use claim ticket produced by spending points on a reward.
type Voucher struct {
	ID string

	// Code is the human-presentable code, e.g. "VOU-7KQ2MX". Globally unique
	// and immutable once assigned.
	Code string

	MemberID string
	RewardID string
	Status   VoucherStatus

	// PointCost is the number of points debited when the voucher was issued.
	PointCost int64

	// ClaimRequestID is the optional client-supplied key that makes issuance
	// idempotent for one member.
	ClaimRequestID string

	CreatedAt time.Time

	// UsedAt and RedeemStoreID are set together by the used transition.
	UsedAt        *time.Time
	RedeemStoreID string

	ExpiredAt *time.Time
}

// VoucherDetails is the projection a cashier sees when inspecting a code.
type VoucherDetails struct {
	Voucher Voucher

	RewardName  string
	RewardValue decimal.Decimal

	MemberName  string
	MemberPhone string

	RedeemStoreName string
}
