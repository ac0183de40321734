package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/poinku/internal/middleware"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
	"github.com/mmynk/poinku/internal/voucher"
	"github.com/mmynk/poinku/pkg/api"
)

// VoucherService implements the VoucherService RPC interface.
type VoucherService struct {
	engine *voucher.Engine
	logger *slog.Logger
}

// NewVoucherService creates a new voucher service.
func NewVoucherService(engine *voucher.Engine, logger *slog.Logger) *VoucherService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoucherService{engine: engine, logger: logger}
}

// IssueVoucher claims a reward. Members claim for themselves with no store
// attached; staff claim on a member's behalf at the acting store.
func (s *VoucherService) IssueVoucher(ctx context.Context, req *connect.Request[api.IssueVoucherRequest]) (*connect.Response[api.IssueVoucherResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid issue request", err)
	}
	actor, err := middleware.RequireSelfOrStaff(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, err
	}

	var storeID string
	if actor.IsStaff() {
		storeID = tenant.StoreID(ctx, req.Msg.StoreID)
	}

	res, err := s.engine.Issue(ctx, voucher.IssueRequest{
		MemberID:  req.Msg.MemberID,
		RewardID:  req.Msg.RewardID,
		RequestID: req.Msg.RequestID,
		StoreID:   storeID,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to issue voucher", err,
			"member_id", req.Msg.MemberID, "reward_id", req.Msg.RewardID)
	}

	return connect.NewResponse(&api.IssueVoucherResponse{
		Voucher:  voucherToAPI(res.Voucher),
		Balance:  res.Balance,
		Replayed: res.Replayed,
	}), nil
}

// LookupVoucher shows a cashier the voucher behind a code, whatever its status.
func (s *VoucherService) LookupVoucher(ctx context.Context, req *connect.Request[api.LookupVoucherRequest]) (*connect.Response[api.LookupVoucherResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid lookup request", err)
	}

	details, err := s.engine.Lookup(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to look up voucher", err, "voucher_code", req.Msg.Code)
	}

	return connect.NewResponse(&api.LookupVoucherResponse{Voucher: voucherDetailsToAPI(details)}), nil
}

// RedeemVoucher marks an active voucher used at the acting store.
func (s *VoucherService) RedeemVoucher(ctx context.Context, req *connect.Request[api.RedeemVoucherRequest]) (*connect.Response[api.RedeemVoucherResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid redeem request", err)
	}

	res, err := s.engine.Redeem(ctx, req.Msg.Code, tenant.StoreID(ctx, req.Msg.StoreID))
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to redeem voucher", err, "voucher_code", req.Msg.Code)
	}

	return connect.NewResponse(&api.RedeemVoucherResponse{
		Code:       res.Code,
		StoreID:    res.StoreID,
		RedeemedAt: res.RedeemedAt,
	}), nil
}

// ExpireVoucher voids an active voucher.
func (s *VoucherService) ExpireVoucher(ctx context.Context, req *connect.Request[api.ExpireVoucherRequest]) (*connect.Response[api.ExpireVoucherResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid expire request", err)
	}

	at, err := s.engine.Expire(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to expire voucher", err, "voucher_code", req.Msg.Code)
	}

	return connect.NewResponse(&api.ExpireVoucherResponse{
		Code:      voucher.Normalize(req.Msg.Code),
		ExpiredAt: at,
	}), nil
}

// ListMemberVouchers returns a member's wallet.
func (s *VoucherService) ListMemberVouchers(ctx context.Context, req *connect.Request[api.ListMemberVouchersRequest]) (*connect.Response[api.ListVouchersResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid wallet request", err)
	}
	if _, err := middleware.RequireSelfOrStaff(ctx, req.Msg.MemberID); err != nil {
		return nil, err
	}

	list, err := s.engine.ListByMember(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list vouchers", err, "member_id", req.Msg.MemberID)
	}

	return connect.NewResponse(&api.ListVouchersResponse{Vouchers: vouchersToAPI(list)}), nil
}

// ListStoreRedemptions returns the vouchers most recently used at the acting store.
func (s *VoucherService) ListStoreRedemptions(ctx context.Context, req *connect.Request[api.ListStoreRedemptionsRequest]) (*connect.Response[api.ListVouchersResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid history request", err)
	}

	storeID := tenant.StoreID(ctx, req.Msg.StoreID)
	if storeID == "" {
		return nil, toConnectError(s.logger, "Invalid history request", models.Invalid("store_id", "is required"))
	}

	list, err := s.engine.ListRedeemedAtStore(ctx, storeID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list redemptions", err, "store_id", storeID)
	}

	return connect.NewResponse(&api.ListVouchersResponse{Vouchers: vouchersToAPI(list)}), nil
}
