// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/poinku/internal/models"
)

// ErrTransient marks a storage failure that is expected to succeed on retry,
// such as a busy database or a serialization failure.
var ErrTransient = errors.New("storage: transient failure")

// LedgerStore holds member balances and the transaction journal.
// Every method that changes a balance also appends the journal entry in the
// same database transaction, so the cached balance never diverges from the journal.
type LedgerStore interface {
	// Credit adds entry.Points to the member's balance and appends entry.
	// Returns the new balance, or models.ErrMemberNotFound.
	Credit(ctx context.Context, entry *models.Transaction) (int64, error)

	// Debit subtracts entry.Points from the member's balance only if the
	// balance covers it, appends entry, and inserts voucher when non-nil.
	// The check and the decrement are a single conditional update.
	// Returns the new balance, models.ErrInsufficientBalance or models.ErrMemberNotFound.
	Debit(ctx context.Context, entry *models.Transaction, voucher *models.Voucher) (int64, error)

	// GetBalance returns the cached balance.
	GetBalance(ctx context.Context, memberID string) (int64, error)

	// ListTransactions returns journal entries newest first.
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
}

// VoucherStore persists vouchers. Status changes are conditional updates
// guarded on status = 'active'.
type VoucherStore interface {
	VoucherCodeExists(ctx context.Context, code string) (bool, error)
	GetVoucherByClaimRequest(ctx context.Context, memberID, requestID string) (*models.Voucher, error)
	GetVoucherDetails(ctx context.Context, code string) (*models.VoucherDetails, error)

	// MarkVoucherUsed performs the active → used transition, recording the
	// redeeming store and time. Returns models.ErrVoucherNotFound or
	// models.ErrVoucherNotActive when the transition did not happen.
	MarkVoucherUsed(ctx context.Context, code, storeID string, at time.Time) error

	// MarkVoucherExpired performs the active → expired transition.
	MarkVoucherExpired(ctx context.Context, code string, at time.Time) error

	ListVouchersByMember(ctx context.Context, memberID string) ([]*models.VoucherDetails, error)
	ListVouchersRedeemedAt(ctx context.Context, storeID string, limit int) ([]*models.VoucherDetails, error)
}

// SettingsStore is a key/value store for singleton settings.
type SettingsStore interface {
	// GetSetting returns the value and whether the key exists.
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// MemberStore holds member accounts.
type MemberStore interface {
	CreateMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	GetMemberByPhone(ctx context.Context, phone string) (*models.Member, error)
	UpdateMemberPIN(ctx context.Context, id, pinHash string) error

	// ListMembers returns members newest first, limited to one store when
	// storeID is set. A non-positive limit returns all.
	ListMembers(ctx context.Context, storeID string, limit int) ([]*models.Member, error)
}

// StaffStore holds staff accounts.
type StaffStore interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
	GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error)
	ListStaff(ctx context.Context) ([]*models.Staff, error)
	UpdateStaffPassword(ctx context.Context, id, passwordHash string) error
	SetStaffActive(ctx context.Context, id string, active bool) error
}

// CatalogStore holds stores and rewards.
type CatalogStore interface {
	CreateStore(ctx context.Context, store *models.Store) error
	GetStore(ctx context.Context, id string) (*models.Store, error)
	ListStores(ctx context.Context) ([]*models.Store, error)

	CreateReward(ctx context.Context, reward *models.Reward) error
	GetReward(ctx context.Context, id string) (*models.Reward, error)
	UpdateReward(ctx context.Context, reward *models.Reward) error
	DeleteReward(ctx context.Context, id string) error
	ListRewards(ctx context.Context) ([]*models.Reward, error)
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	LedgerStore
	VoucherStore
	SettingsStore
	MemberStore
	StaffStore
	CatalogStore

	// Close releases any resources held by the store.
	Close() error
}
