package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/poinku/internal/ledger"
	"github.com/mmynk/poinku/internal/middleware"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
	"github.com/mmynk/poinku/pkg/api"
)

// LedgerService implements the LedgerService RPC interface.
type LedgerService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(l *ledger.Ledger, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{ledger: l, logger: logger}
}

// RecordEarning credits points for a purchase at the acting store.
func (s *LedgerService) RecordEarning(ctx context.Context, req *connect.Request[api.RecordEarningRequest]) (*connect.Response[api.RecordEarningResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid earning request", err)
	}

	res, err := s.ledger.RecordEarning(ctx, ledger.EarnRequest{
		MemberID:    req.Msg.MemberID,
		Spent:       req.Msg.Spent,
		StoreID:     tenant.StoreID(ctx, req.Msg.StoreID),
		Description: req.Msg.Description,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to record earning", err, "member_id", req.Msg.MemberID)
	}

	return connect.NewResponse(&api.RecordEarningResponse{
		PointsEarned: res.PointsEarned,
		Balance:      res.Balance,
		Divisor:      res.Divisor,
	}), nil
}

// RecordRedeem debits points directly, outside the voucher flow.
func (s *LedgerService) RecordRedeem(ctx context.Context, req *connect.Request[api.RecordRedeemRequest]) (*connect.Response[api.RecordRedeemResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid redeem request", err)
	}

	storeID := tenant.StoreID(ctx, req.Msg.StoreID)
	if storeID == "" {
		return nil, toConnectError(s.logger, "Invalid redeem request", models.Invalid("store_id", "is required"))
	}

	balance, err := s.ledger.RecordRedeem(ctx, ledger.RedeemRequest{
		MemberID:    req.Msg.MemberID,
		Points:      req.Msg.Points,
		Description: req.Msg.Description,
		StoreID:     storeID,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to record redeem", err, "member_id", req.Msg.MemberID)
	}

	return connect.NewResponse(&api.RecordRedeemResponse{Balance: balance}), nil
}

// GetBalance returns a member's balance to staff or to the member.
func (s *LedgerService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid balance request", err)
	}
	if _, err := middleware.RequireSelfOrStaff(ctx, req.Msg.MemberID); err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to get balance", err, "member_id", req.Msg.MemberID)
	}

	return connect.NewResponse(&api.GetBalanceResponse{MemberID: req.Msg.MemberID, Balance: balance}), nil
}

// ReconcileBalance compares the cached balance with the journal.
func (s *LedgerService) ReconcileBalance(ctx context.Context, req *connect.Request[api.ReconcileBalanceRequest]) (*connect.Response[api.ReconcileBalanceResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid reconcile request", err)
	}

	rec, err := s.ledger.Reconcile(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to reconcile", err, "member_id", req.Msg.MemberID)
	}

	return connect.NewResponse(&api.ReconcileBalanceResponse{
		MemberID:      rec.MemberID,
		Cached:        rec.Cached,
		Journal:       rec.Journal,
		TotalEarned:   rec.TotalEarned,
		TotalRedeemed: rec.TotalRedeemed,
		Entries:       rec.Entries,
		Consistent:    rec.Consistent,
	}), nil
}

// ListTransactions returns journal entries, newest first. Members only see
// their own history.
func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	actor, err := middleware.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid history request", err)
	}

	filter := models.TransactionFilter{
		MemberID: req.Msg.MemberID,
		StoreID:  req.Msg.StoreID,
		Kind:     models.TransactionKind(req.Msg.Kind),
		Limit:    req.Msg.Limit,
	}
	if !actor.IsStaff() {
		if filter.MemberID == "" {
			filter.MemberID = actor.Subject
		}
		if _, err := middleware.RequireSelfOrStaff(ctx, filter.MemberID); err != nil {
			return nil, err
		}
	}

	entries, err := s.ledger.History(ctx, filter)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list transactions", err)
	}

	out := make([]*api.Transaction, 0, len(entries))
	for _, e := range entries {
		out = append(out, transactionToAPI(e))
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}
