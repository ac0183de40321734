// Package api defines the wire messages of the poinku RPC services.
//
// Messages are plain JSON structs. Requests carry validate tags checked by
// the service layer; responses that carry nothing use emptypb.Empty.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is the public view of a member. Credentials never leave the server.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Balance   int64     `json:"balance"`
	StoreID   string    `json:"store_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is a ledger journal entry.
type Transaction struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	Kind        string    `json:"kind"`
	Points      int64     `json:"points"`
	Description string    `json:"description"`
	StoreID     string    `json:"store_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Voucher is a voucher together with its reward and member snapshot.
type Voucher struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Status          string          `json:"status"`
	PointCost       int64           `json:"point_cost"`
	MemberID        string          `json:"member_id"`
	MemberName      string          `json:"member_name,omitempty"`
	MemberPhone     string          `json:"member_phone,omitempty"`
	RewardID        string          `json:"reward_id"`
	RewardName      string          `json:"reward_name,omitempty"`
	RewardValue     decimal.Decimal `json:"reward_value"`
	CreatedAt       time.Time       `json:"created_at"`
	UsedAt          *time.Time      `json:"used_at,omitempty"`
	RedeemStoreID   string          `json:"redeem_store_id,omitempty"`
	RedeemStoreName string          `json:"redeem_store_name,omitempty"`
	ExpiredAt       *time.Time      `json:"expired_at,omitempty"`
}

// Store is a branch.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Reward is a catalog item.
type Reward struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	PointCost int64           `json:"point_cost"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

// Staff is the public view of a staff account.
type Staff struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	StoreID   string    `json:"store_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthService

type RegisterMemberRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required"`
	PIN   string `json:"pin" validate:"required"`
	// StoreID is honored for admins; staff sessions stamp their own store.
	StoreID string `json:"store_id,omitempty"`
}

type RegisterMemberResponse struct {
	Member *Member `json:"member"`
}

type MemberLoginRequest struct {
	Phone string `json:"phone" validate:"required"`
	PIN   string `json:"pin" validate:"required"`
}

type StaffLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token. Clients send it back as
// "Authorization: Bearer <token>" until ExpiresAt.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Session   *Session  `json:"session"`
}

// Session describes the authenticated caller.
type Session struct {
	Subject string `json:"subject"`
	Kind    string `json:"kind"`
	Role    string `json:"role,omitempty"`
	StoreID string `json:"store_id,omitempty"`
	Name    string `json:"name,omitempty"`
}

// LedgerService

type RecordEarningRequest struct {
	MemberID    string          `json:"member_id" validate:"required"`
	Spent       decimal.Decimal `json:"spent"`
	StoreID     string          `json:"store_id,omitempty"`
	Description string          `json:"description,omitempty" validate:"max=200"`
}

type RecordEarningResponse struct {
	PointsEarned int64 `json:"points_earned"`
	Balance      int64 `json:"balance"`
	Divisor      int64 `json:"divisor"`
}

type RecordRedeemRequest struct {
	MemberID    string `json:"member_id" validate:"required"`
	Points      int64  `json:"points" validate:"gt=0"`
	StoreID     string `json:"store_id,omitempty"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

type RecordRedeemResponse struct {
	Balance int64 `json:"balance"`
}

type GetBalanceRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

type GetBalanceResponse struct {
	MemberID string `json:"member_id"`
	Balance  int64  `json:"balance"`
}

type ReconcileBalanceRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

type ReconcileBalanceResponse struct {
	MemberID      string `json:"member_id"`
	Cached        int64  `json:"cached"`
	Journal       int64  `json:"journal"`
	TotalEarned   int64  `json:"total_earned"`
	TotalRedeemed int64  `json:"total_redeemed"`
	Entries       int    `json:"entries"`
	Consistent    bool   `json:"consistent"`
}

type ListTransactionsRequest struct {
	MemberID string `json:"member_id,omitempty"`
	StoreID  string `json:"store_id,omitempty"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=earning redeem"`
	Limit    int    `json:"limit,omitempty" validate:"gte=0,lte=500"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

// VoucherService

type IssueVoucherRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	RewardID string `json:"reward_id" validate:"required"`
	// RequestID makes the claim idempotent: repeating it returns the
	// voucher already issued instead of debiting again.
	RequestID string `json:"request_id,omitempty" validate:"max=100"`
	StoreID   string `json:"store_id,omitempty"`
}

type IssueVoucherResponse struct {
	Voucher  *Voucher `json:"voucher"`
	Balance  int64    `json:"balance"`
	Replayed bool     `json:"replayed"`
}

type LookupVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}

type LookupVoucherResponse struct {
	Voucher *Voucher `json:"voucher"`
}

type RedeemVoucherRequest struct {
	Code    string `json:"code" validate:"required"`
	StoreID string `json:"store_id,omitempty"`
}

type RedeemVoucherResponse struct {
	Code       string    `json:"code"`
	StoreID    string    `json:"store_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

type ExpireVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}

type ExpireVoucherResponse struct {
	Code      string    `json:"code"`
	ExpiredAt time.Time `json:"expired_at"`
}

type ListMemberVouchersRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

type ListStoreRedemptionsRequest struct {
	StoreID string `json:"store_id,omitempty"`
	Limit   int    `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

type ListVouchersResponse struct {
	Vouchers []*Voucher `json:"vouchers"`
}

// AdminService

type ConversionDivisor struct {
	Divisor int64 `json:"divisor" validate:"gt=0"`
}

type CreateStoreRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Code    string `json:"code" validate:"required"`
	Address string `json:"address,omitempty" validate:"max=200"`
}

type StoreResponse struct {
	Store *Store `json:"store"`
}

type ListStoresResponse struct {
	Stores []*Store `json:"stores"`
}

type RewardRequest struct {
	// ID is required by UpdateReward and ignored by CreateReward.
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name" validate:"required,max=100"`
	PointCost int64           `json:"point_cost" validate:"gt=0"`
	Value     decimal.Decimal `json:"value"`
}

type DeleteRewardRequest struct {
	ID string `json:"id" validate:"required"`
}

type RewardResponse struct {
	Reward *Reward `json:"reward"`
}

type ListRewardsResponse struct {
	Rewards []*Reward `json:"rewards"`
}

type CreateStaffRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
	StoreID  string `json:"store_id,omitempty"`
}

type CreateStaffResponse struct {
	Staff *Staff `json:"staff"`
}

type ListStaffResponse struct {
	Staff []*Staff `json:"staff"`
}

type SetStaffActiveRequest struct {
	ID     string `json:"id" validate:"required"`
	Active bool   `json:"active"`
}

type SetStaffActiveResponse struct {
	Staff *Staff `json:"staff"`
}

// LookupMemberRequest finds a member at the till by phone number.
type LookupMemberRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type MemberResponse struct {
	Member *Member `json:"member"`
}

type ListMembersRequest struct {
	// StoreID is honored for admins; staff sessions list their own store.
	StoreID string `json:"store_id,omitempty"`
	Limit   int    `json:"limit,omitempty" validate:"gte=0,lte=500"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}
