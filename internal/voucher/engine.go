// Package voucher issues and redeems single-use reward vouchers.
//
// A voucher moves active → used or active → expired and never back. Both
// transitions are conditional updates in storage guarded on the active status,
// so two tills redeeming the same code at the same moment cannot both succeed.
package voucher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/poinku/internal/events"
	"github.com/mmynk/poinku/internal/ledger"
	"github.com/mmynk/poinku/internal/metrics"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/retry"
	"github.com/mmynk/poinku/internal/storage"
)

// DefaultLocalHistory is how many recent redemptions a store's till shows.
const DefaultLocalHistory = 10

// Debiter is the part of the ledger the engine needs.
type Debiter interface {
	RecordRedeem(ctx context.Context, req ledger.RedeemRequest) (int64, error)
	Balance(ctx context.Context, memberID string) (int64, error)
}

// RewardSource loads catalog entries.
type RewardSource interface {
	GetReward(ctx context.Context, id string) (*models.Reward, error)
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Codes *CodeGenerator

	// CodeAttempts bounds how many codes are tried before giving up.
	CodeAttempts int

	Retry  retry.Policy
	Events events.Publisher
	Logger *slog.Logger
	Now    func() time.Time
}

// Engine implements the voucher lifecycle.
type Engine struct {
	store    storage.VoucherStore
	rewards  RewardSource
	ledger   Debiter
	codes    *CodeGenerator
	attempts int
	retry    retry.Policy
	events   events.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(store storage.VoucherStore, rewards RewardSource, debiter Debiter, opts Options) *Engine {
	e := &Engine{
		store:    store,
		rewards:  rewards,
		ledger:   debiter,
		codes:    opts.Codes,
		attempts: opts.CodeAttempts,
		retry:    opts.Retry,
		events:   opts.Events,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if e.codes == nil {
		e.codes = NewCodeGenerator("VOU", 6)
	}
	if e.attempts <= 0 {
		e.attempts = 5
	}
	if e.retry.Attempts == 0 {
		e.retry = retry.DefaultPolicy
	}
	if e.events == nil {
		e.events = events.Nop{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

// IssueRequest describes a reward claim.
type IssueRequest struct {
	MemberID string
	RewardID string

	// RequestID makes the claim idempotent: repeating it for the same member
	// returns the voucher from the first call without debiting again.
	RequestID string

	// StoreID is the acting store, empty for member self-service.
	StoreID string
}

// IssueResult is the outcome of Issue.
type IssueResult struct {
	Voucher *models.Voucher
	Balance int64

	// Replayed is true when RequestID matched an earlier claim.
	Replayed bool
}

// Issue debits the reward's point cost and creates an active voucher in one
// storage transaction. On models.ErrInsufficientBalance no voucher and no
// journal entry exist afterwards.
func (e *Engine) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return nil, models.Invalid("member_id", "is required")
	}
	if strings.TrimSpace(req.RewardID) == "" {
		return nil, models.Invalid("reward_id", "is required")
	}

	if req.RequestID != "" {
		if res, err := e.replay(ctx, req); !errors.Is(err, models.ErrVoucherNotFound) {
			return res, err
		}
	}

	reward, err := e.rewards.GetReward(ctx, req.RewardID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= e.attempts; attempt++ {
		code, err := e.freshCode(ctx)
		if err != nil {
			return nil, err
		}

		v := &models.Voucher{
			Code:           code,
			MemberID:       req.MemberID,
			RewardID:       reward.ID,
			Status:         models.VoucherActive,
			PointCost:      reward.PointCost,
			ClaimRequestID: req.RequestID,
			CreatedAt:      e.now(),
		}

		balance, err := e.ledger.RecordRedeem(ctx, ledger.RedeemRequest{
			MemberID:    req.MemberID,
			Points:      reward.PointCost,
			Description: "Claim: " + reward.Name,
			StoreID:     req.StoreID,
			Voucher:     v,
		})
		switch {
		case err == nil:
			metrics.VouchersIssuedTotal.Inc()
			e.logger.Info("Voucher issued",
				"voucher_code", v.Code,
				"member_id", v.MemberID,
				"reward_id", v.RewardID,
				"store_id", req.StoreID,
				"points", v.PointCost,
			)
			e.events.Publish(events.Event{
				Type:     events.VoucherIssued,
				StoreID:  req.StoreID,
				MemberID: v.MemberID,
				Data:     events.VoucherChange{Code: v.Code, Status: string(v.Status)},
			})
			return &IssueResult{Voucher: v, Balance: balance}, nil

		case errors.Is(err, models.ErrDuplicate):
			// Either a concurrent call with the same request id won, or the
			// code was taken between the existence check and the insert.
			if req.RequestID != "" {
				if res, rerr := e.replay(ctx, req); !errors.Is(rerr, models.ErrVoucherNotFound) {
					return res, rerr
				}
			}
			metrics.VoucherCodeCollisionsTotal.Inc()
			e.logger.Warn("Voucher code collision on insert", "voucher_code", code, "attempt", attempt)

		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("no unique voucher code after %d attempts: %w", e.attempts, models.ErrConflict)
}

// freshCode draws codes until one is not already assigned.
func (e *Engine) freshCode(ctx context.Context) (string, error) {
	for i := 0; i < e.attempts; i++ {
		code, err := e.codes.Generate()
		if err != nil {
			return "", err
		}
		exists, err := e.store.VoucherCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		metrics.VoucherCodeCollisionsTotal.Inc()
	}
	return "", fmt.Errorf("no unique voucher code after %d attempts: %w", e.attempts, models.ErrConflict)
}

func (e *Engine) replay(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	v, err := e.store.GetVoucherByClaimRequest(ctx, req.MemberID, req.RequestID)
	if err != nil {
		return nil, err
	}
	if v.RewardID != req.RewardID {
		return nil, models.Invalid("request_id", "already used for a different reward")
	}
	balance, err := e.ledger.Balance(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Voucher claim replayed", "voucher_code", v.Code, "member_id", v.MemberID)
	return &IssueResult{Voucher: v, Balance: balance, Replayed: true}, nil
}

// Lookup returns the voucher with reward and member details. It reports the
// voucher in any status; deciding whether to honor it is the caller's job.
func (e *Engine) Lookup(ctx context.Context, code string) (*models.VoucherDetails, error) {
	code = Normalize(code)
	if code == "" {
		return nil, models.Invalid("code", "is required")
	}
	return e.store.GetVoucherDetails(ctx, code)
}

// RedeemResult is the outcome of Redeem.
type RedeemResult struct {
	Code       string
	StoreID    string
	RedeemedAt time.Time
}

// Redeem performs the active → used transition, recording the redeeming store
// and time. Exactly one of several concurrent calls for a code succeeds; the
// rest fail with models.ErrVoucherNotActive.
func (e *Engine) Redeem(ctx context.Context, code, storeID string) (*RedeemResult, error) {
	code = Normalize(code)
	if code == "" {
		return nil, models.Invalid("code", "is required")
	}
	if strings.TrimSpace(storeID) == "" {
		return nil, models.Invalid("store_id", "redeeming store is required")
	}

	at := e.now()
	err := retry.Run(ctx, e.retry, func() error {
		return e.store.MarkVoucherUsed(ctx, code, storeID, at)
	})
	metrics.VoucherTransitionsTotal.WithLabelValues("redeem", metrics.Result(models.Reason(err))).Inc()
	if err != nil {
		e.logger.Info("Voucher redeem rejected", "voucher_code", code, "store_id", storeID, "reason", models.Reason(err))
		return nil, err
	}

	e.logger.Info("Voucher redeemed", "voucher_code", code, "store_id", storeID)
	e.events.Publish(events.Event{
		Type:    events.VoucherRedeemed,
		StoreID: storeID,
		Data:    events.VoucherChange{Code: code, Status: string(models.VoucherUsed)},
	})
	return &RedeemResult{Code: code, StoreID: storeID, RedeemedAt: at}, nil
}

// Expire performs the active → expired transition. Expiry is manual; there is
// no background sweep.
func (e *Engine) Expire(ctx context.Context, code string) (time.Time, error) {
	code = Normalize(code)
	if code == "" {
		return time.Time{}, models.Invalid("code", "is required")
	}

	at := e.now()
	err := retry.Run(ctx, e.retry, func() error {
		return e.store.MarkVoucherExpired(ctx, code, at)
	})
	metrics.VoucherTransitionsTotal.WithLabelValues("expire", metrics.Result(models.Reason(err))).Inc()
	if err != nil {
		return time.Time{}, err
	}

	e.logger.Info("Voucher expired", "voucher_code", code)
	e.events.Publish(events.Event{
		Type: events.VoucherExpired,
		Data: events.VoucherChange{Code: code, Status: string(models.VoucherExpired)},
	})
	return at, nil
}

// ListByMember returns a member's wallet, newest first.
func (e *Engine) ListByMember(ctx context.Context, memberID string) ([]*models.VoucherDetails, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, models.Invalid("member_id", "is required")
	}
	return e.store.ListVouchersByMember(ctx, memberID)
}

// ListRedeemedAtStore returns the vouchers most recently used at storeID.
// A non-positive limit selects DefaultLocalHistory.
func (e *Engine) ListRedeemedAtStore(ctx context.Context, storeID string, limit int) ([]*models.VoucherDetails, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, models.Invalid("store_id", "is required")
	}
	if limit <= 0 {
		limit = DefaultLocalHistory
	}
	return e.store.ListVouchersRedeemedAt(ctx, storeID, limit)
}
