package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/poinku/internal/auth"
	"github.com/mmynk/poinku/internal/conversion"
	"github.com/mmynk/poinku/internal/directory"
	"github.com/mmynk/poinku/internal/middleware"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
	"github.com/mmynk/poinku/pkg/api"
)

// AdminService implements the AdminService RPC interface: the conversion
// policy, the catalog, staff accounts and the member directory.
type AdminService struct {
	policy    *conversion.Policy
	directory *directory.Directory
	members   *auth.MemberAuthenticator
	staff     *auth.StaffAuthenticator
	logger    *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(policy *conversion.Policy, dir *directory.Directory, members *auth.MemberAuthenticator, staff *auth.StaffAuthenticator, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{policy: policy, directory: dir, members: members, staff: staff, logger: logger}
}

// GetConversionDivisor returns the currency amount per point.
func (s *AdminService) GetConversionDivisor(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ConversionDivisor], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}

	divisor, err := s.policy.Divisor(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to read divisor", err)
	}
	return connect.NewResponse(&api.ConversionDivisor{Divisor: divisor}), nil
}

// SetConversionDivisor changes the earn rate for subsequent purchases.
func (s *AdminService) SetConversionDivisor(ctx context.Context, req *connect.Request[api.ConversionDivisor]) (*connect.Response[emptypb.Empty], error) {
	actor, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid divisor", err)
	}

	if err := s.policy.SetDivisor(ctx, req.Msg.Divisor); err != nil {
		return nil, toConnectError(s.logger, "Failed to set divisor", err)
	}

	s.logger.Info("Conversion divisor changed", "divisor", req.Msg.Divisor, "subject", actor.Subject)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *AdminService) CreateStore(ctx context.Context, req *connect.Request[api.CreateStoreRequest]) (*connect.Response[api.StoreResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid store", err)
	}

	store, err := s.directory.CreateStore(ctx, directory.StoreInput{
		Name:    req.Msg.Name,
		Code:    req.Msg.Code,
		Address: req.Msg.Address,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to create store", err)
	}
	return connect.NewResponse(&api.StoreResponse{Store: storeToAPI(store)}), nil
}

func (s *AdminService) ListStores(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStoresResponse], error) {
	if _, err := middleware.Actor(ctx); err != nil {
		return nil, err
	}

	stores, err := s.directory.ListStores(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list stores", err)
	}

	out := make([]*api.Store, 0, len(stores))
	for _, st := range stores {
		out = append(out, storeToAPI(st))
	}
	return connect.NewResponse(&api.ListStoresResponse{Stores: out}), nil
}

func (s *AdminService) CreateReward(ctx context.Context, req *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid reward", err)
	}

	reward, err := s.directory.CreateReward(ctx, rewardInput(req.Msg))
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to create reward", err)
	}
	return connect.NewResponse(&api.RewardResponse{Reward: rewardToAPI(reward)}), nil
}

func (s *AdminService) UpdateReward(ctx context.Context, req *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid reward", err)
	}
	if req.Msg.ID == "" {
		return nil, toConnectError(s.logger, "Invalid reward", models.Invalid("id", "is required"))
	}

	reward, err := s.directory.UpdateReward(ctx, req.Msg.ID, rewardInput(req.Msg))
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to update reward", err, "reward_id", req.Msg.ID)
	}
	return connect.NewResponse(&api.RewardResponse{Reward: rewardToAPI(reward)}), nil
}

func (s *AdminService) DeleteReward(ctx context.Context, req *connect.Request[api.DeleteRewardRequest]) (*connect.Response[emptypb.Empty], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid reward", err)
	}

	if err := s.directory.DeleteReward(ctx, req.Msg.ID); err != nil {
		return nil, toConnectError(s.logger, "Failed to delete reward", err, "reward_id", req.Msg.ID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *AdminService) ListRewards(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListRewardsResponse], error) {
	if _, err := middleware.Actor(ctx); err != nil {
		return nil, err
	}

	rewards, err := s.directory.ListRewards(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list rewards", err)
	}

	out := make([]*api.Reward, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, rewardToAPI(r))
	}
	return connect.NewResponse(&api.ListRewardsResponse{Rewards: out}), nil
}

func (s *AdminService) CreateStaff(ctx context.Context, req *connect.Request[api.CreateStaffRequest]) (*connect.Response[api.CreateStaffResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid staff account", err)
	}

	staff, err := s.staff.Create(ctx, auth.StaffInput{
		Username: req.Msg.Username,
		Password: req.Msg.Password,
		Role:     models.Role(req.Msg.Role),
		StoreID:  req.Msg.StoreID,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to create staff", err)
	}
	return connect.NewResponse(&api.CreateStaffResponse{Staff: staffToAPI(staff)}), nil
}

func (s *AdminService) ListStaff(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStaffResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	list, err := s.staff.List(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list staff", err)
	}

	out := make([]*api.Staff, 0, len(list))
	for _, st := range list {
		out = append(out, staffToAPI(st))
	}
	return connect.NewResponse(&api.ListStaffResponse{Staff: out}), nil
}

// SetStaffActive enables or disables a staff account. Admins cannot disable
// their own account.
func (s *AdminService) SetStaffActive(ctx context.Context, req *connect.Request[api.SetStaffActiveRequest]) (*connect.Response[api.SetStaffActiveResponse], error) {
	actor, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid staff status", err)
	}
	if req.Msg.ID == actor.Subject && !req.Msg.Active {
		return nil, toConnectError(s.logger, "Invalid staff status", models.Invalid("id", "cannot deactivate your own account"))
	}

	staff, err := s.staff.SetActive(ctx, req.Msg.ID, req.Msg.Active)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to change staff status", err, "staff_id", req.Msg.ID)
	}
	return connect.NewResponse(&api.SetStaffActiveResponse{Staff: staffToAPI(staff)}), nil
}

// LookupMember finds a member by phone number for the till.
func (s *AdminService) LookupMember(ctx context.Context, req *connect.Request[api.LookupMemberRequest]) (*connect.Response[api.MemberResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid member lookup", err)
	}

	member, err := s.members.Lookup(ctx, req.Msg.Phone)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to look up member", err)
	}
	return connect.NewResponse(&api.MemberResponse{Member: memberToAPI(member)}), nil
}

// ListMembers lists members registered at the acting store. Admins without
// a home store list every member unless they name a store.
func (s *AdminService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	if _, err := middleware.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid member listing", err)
	}

	storeID := tenant.StoreID(ctx, req.Msg.StoreID)
	members, err := s.members.List(ctx, storeID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to list members", err, "store_id", storeID)
	}

	out := make([]*api.Member, 0, len(members))
	for _, m := range members {
		out = append(out, memberToAPI(m))
	}
	return connect.NewResponse(&api.ListMembersResponse{Members: out}), nil
}

func rewardInput(r *api.RewardRequest) directory.RewardInput {
	return directory.RewardInput{Name: r.Name, PointCost: r.PointCost, Value: r.Value}
}
