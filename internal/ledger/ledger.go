// Package ledger maintains member point balances on top of an append-only
// transaction journal.
//
// Every balance change is a single conditional update performed by the
// storage layer together with the journal insert. The ledger adds the
// earn-rate computation, input validation, bounded retry of transient storage
// conflicts, and change notifications.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/poinku/internal/calculator"
	"github.com/mmynk/poinku/internal/events"
	"github.com/mmynk/poinku/internal/metrics"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/retry"
	"github.com/mmynk/poinku/internal/storage"
)

// DivisorSource supplies the current earn-rate divisor.
type DivisorSource interface {
	Divisor(ctx context.Context) (int64, error)
}

// Options configures a Ledger. Zero values select defaults.
type Options struct {
	Retry  retry.Policy
	Events events.Publisher
	Logger *slog.Logger
}

// Ledger records earnings and redemptions.
type Ledger struct {
	store   storage.LedgerStore
	divisor DivisorSource
	retry   retry.Policy
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a Ledger.
func New(store storage.LedgerStore, divisor DivisorSource, opts Options) *Ledger {
	l := &Ledger{
		store:   store,
		divisor: divisor,
		retry:   opts.Retry,
		events:  opts.Events,
		logger:  opts.Logger,
	}
	if l.retry.Attempts == 0 {
		l.retry = retry.DefaultPolicy
	}
	if l.events == nil {
		l.events = events.Nop{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// EarnRequest describes a purchase.
type EarnRequest struct {
	MemberID    string
	Spent       decimal.Decimal
	StoreID     string
	Description string
}

// EarnResult is the outcome of RecordEarning.
type EarnResult struct {
	PointsEarned int64
	Balance      int64

	// Divisor is the snapshot the points were computed with.
	Divisor int64

	Entry *models.Transaction
}

// RecordEarning credits floor(spent / divisor) points to the member. The
// divisor is read once, before any write, so a concurrent policy change
// never alters the points of a call already in flight.
func (l *Ledger) RecordEarning(ctx context.Context, req EarnRequest) (*EarnResult, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return nil, models.Invalid("member_id", "is required")
	}
	if strings.TrimSpace(req.StoreID) == "" {
		return nil, models.Invalid("store_id", "is required")
	}
	if !req.Spent.IsPositive() {
		return nil, models.Invalid("spent_amount", "must be greater than zero")
	}

	divisor, err := l.divisor.Divisor(ctx)
	if err != nil {
		return nil, err
	}
	points, err := calculator.PointsEarned(req.Spent, divisor)
	if err != nil {
		return nil, models.Invalid("spent_amount", err.Error())
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Purchase " + req.Spent.String()
	}

	entry := &models.Transaction{
		MemberID:    req.MemberID,
		Kind:        models.TransactionEarning,
		Points:      points,
		Description: description,
		StoreID:     req.StoreID,
	}

	balance, err := retry.Do(ctx, l.retry, func() (int64, error) {
		return l.store.Credit(ctx, entry)
	})
	metrics.LedgerOperationsTotal.WithLabelValues(string(models.TransactionEarning), metrics.Result(models.Reason(err))).Inc()
	if err != nil {
		l.logFailure("Earning failed", entry, err)
		return nil, err
	}

	metrics.PointsEarnedTotal.Add(float64(points))
	l.logger.Info("Points earned",
		"member_id", req.MemberID,
		"store_id", req.StoreID,
		"spent", req.Spent.String(),
		"divisor", divisor,
		"points", points,
		"balance", balance,
	)
	l.events.Publish(events.Event{
		Type:     events.LedgerEarned,
		StoreID:  req.StoreID,
		MemberID: req.MemberID,
		Data:     events.BalanceChange{Points: points, Balance: balance},
	})

	return &EarnResult{PointsEarned: points, Balance: balance, Divisor: divisor, Entry: entry}, nil
}

// RedeemRequest describes a point debit.
type RedeemRequest struct {
	MemberID    string
	Points      int64
	Description string

	// StoreID is optional; member self-service claims have no store.
	StoreID string

	// Voucher, when set, is inserted in the same storage transaction as the
	// debit, so points are never consumed without the voucher existing.
	Voucher *models.Voucher
}

// RecordRedeem debits points if and only if the balance covers them and
// returns the new balance. On models.ErrInsufficientBalance nothing is written.
func (l *Ledger) RecordRedeem(ctx context.Context, req RedeemRequest) (int64, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return 0, models.Invalid("member_id", "is required")
	}
	if req.Points <= 0 {
		return 0, models.Invalid("point_cost", "must be greater than zero")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("Redeem %d points", req.Points)
	}

	entry := &models.Transaction{
		MemberID:    req.MemberID,
		Kind:        models.TransactionRedeem,
		Points:      req.Points,
		Description: description,
		StoreID:     req.StoreID,
	}

	balance, err := retry.Do(ctx, l.retry, func() (int64, error) {
		return l.store.Debit(ctx, entry, req.Voucher)
	})
	metrics.LedgerOperationsTotal.WithLabelValues(string(models.TransactionRedeem), metrics.Result(models.Reason(err))).Inc()
	if err != nil {
		l.logFailure("Redeem failed", entry, err)
		return 0, err
	}

	metrics.PointsRedeemedTotal.Add(float64(req.Points))
	l.logger.Info("Points redeemed",
		"member_id", req.MemberID,
		"store_id", req.StoreID,
		"points", req.Points,
		"balance", balance,
	)
	l.events.Publish(events.Event{
		Type:     events.LedgerRedeemed,
		StoreID:  req.StoreID,
		MemberID: req.MemberID,
		Data:     events.BalanceChange{Points: -req.Points, Balance: balance},
	})

	return balance, nil
}

func (l *Ledger) logFailure(msg string, entry *models.Transaction, err error) {
	attrs := []any{
		"member_id", entry.MemberID,
		"store_id", entry.StoreID,
		"points", entry.Points,
		"reason", models.Reason(err),
	}
	switch {
	case errors.Is(err, models.ErrConflict), models.Reason(err) == "system_error":
		l.logger.Error(msg, append(attrs, "error", err)...)
	default:
		l.logger.Debug(msg, append(attrs, "error", err)...)
	}
}

// Balance returns the member's cached balance.
func (l *Ledger) Balance(ctx context.Context, memberID string) (int64, error) {
	return l.store.GetBalance(ctx, memberID)
}

// History returns journal entries matching filter, newest first. Store-scoped
// views are just a StoreID filter.
func (l *Ledger) History(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, models.Invalid("kind", fmt.Sprintf("unknown transaction kind %q", filter.Kind))
	}
	if filter.Limit < 0 {
		return nil, models.Invalid("limit", "must not be negative")
	}
	return l.store.ListTransactions(ctx, filter)
}
