package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/poinku/pkg/api"
)

// AdminServiceName is the fully-qualified name of the AdminService service.
const AdminServiceName = "poinku.v1.AdminService"

// Procedure paths for AdminService.
const (
	AdminServiceGetConversionDivisorProcedure = "/poinku.v1.AdminService/GetConversionDivisor"
	AdminServiceSetConversionDivisorProcedure = "/poinku.v1.AdminService/SetConversionDivisor"
	AdminServiceCreateStoreProcedure          = "/poinku.v1.AdminService/CreateStore"
	AdminServiceListStoresProcedure           = "/poinku.v1.AdminService/ListStores"
	AdminServiceCreateRewardProcedure         = "/poinku.v1.AdminService/CreateReward"
	AdminServiceUpdateRewardProcedure         = "/poinku.v1.AdminService/UpdateReward"
	AdminServiceDeleteRewardProcedure         = "/poinku.v1.AdminService/DeleteReward"
	AdminServiceListRewardsProcedure          = "/poinku.v1.AdminService/ListRewards"
	AdminServiceCreateStaffProcedure          = "/poinku.v1.AdminService/CreateStaff"
	AdminServiceListStaffProcedure            = "/poinku.v1.AdminService/ListStaff"
	AdminServiceSetStaffActiveProcedure       = "/poinku.v1.AdminService/SetStaffActive"
	AdminServiceLookupMemberProcedure         = "/poinku.v1.AdminService/LookupMember"
	AdminServiceListMembersProcedure          = "/poinku.v1.AdminService/ListMembers"
)

// AdminServiceClient is a client for the poinku.v1.AdminService service.
type AdminServiceClient interface {
	GetConversionDivisor(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ConversionDivisor], error)
	SetConversionDivisor(context.Context, *connect.Request[api.ConversionDivisor]) (*connect.Response[emptypb.Empty], error)
	CreateStore(context.Context, *connect.Request[api.CreateStoreRequest]) (*connect.Response[api.StoreResponse], error)
	ListStores(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStoresResponse], error)
	CreateReward(context.Context, *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error)
	UpdateReward(context.Context, *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error)
	DeleteReward(context.Context, *connect.Request[api.DeleteRewardRequest]) (*connect.Response[emptypb.Empty], error)
	ListRewards(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListRewardsResponse], error)
	CreateStaff(context.Context, *connect.Request[api.CreateStaffRequest]) (*connect.Response[api.CreateStaffResponse], error)
	LookupMember(context.Context, *connect.Request[api.LookupMemberRequest]) (*connect.Response[api.MemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	ListStaff(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStaffResponse], error)
	SetStaffActive(context.Context, *connect.Request[api.SetStaffActiveRequest]) (*connect.Response[api.SetStaffActiveResponse], error)
}

// NewAdminServiceClient constructs a client for the poinku.v1.AdminService service.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.WithCodec()}, opts...)
	return &adminServiceClient{
		getConversionDivisor: connect.NewClient[emptypb.Empty, api.ConversionDivisor](
			httpClient, baseURL+AdminServiceGetConversionDivisorProcedure, opts...),
		setConversionDivisor: connect.NewClient[api.ConversionDivisor, emptypb.Empty](
			httpClient, baseURL+AdminServiceSetConversionDivisorProcedure, opts...),
		createStore: connect.NewClient[api.CreateStoreRequest, api.StoreResponse](
			httpClient, baseURL+AdminServiceCreateStoreProcedure, opts...),
		listStores: connect.NewClient[emptypb.Empty, api.ListStoresResponse](
			httpClient, baseURL+AdminServiceListStoresProcedure, opts...),
		createReward: connect.NewClient[api.RewardRequest, api.RewardResponse](
			httpClient, baseURL+AdminServiceCreateRewardProcedure, opts...),
		updateReward: connect.NewClient[api.RewardRequest, api.RewardResponse](
			httpClient, baseURL+AdminServiceUpdateRewardProcedure, opts...),
		deleteReward: connect.NewClient[api.DeleteRewardRequest, emptypb.Empty](
			httpClient, baseURL+AdminServiceDeleteRewardProcedure, opts...),
		listRewards: connect.NewClient[emptypb.Empty, api.ListRewardsResponse](
			httpClient, baseURL+AdminServiceListRewardsProcedure, opts...),
		createStaff: connect.NewClient[api.CreateStaffRequest, api.CreateStaffResponse](
			httpClient, baseURL+AdminServiceCreateStaffProcedure, opts...),
		lookupMember: connect.NewClient[api.LookupMemberRequest, api.MemberResponse](
			httpClient, baseURL+AdminServiceLookupMemberProcedure, opts...),
		listMembers: connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](
			httpClient, baseURL+AdminServiceListMembersProcedure, opts...),
		listStaff: connect.NewClient[emptypb.Empty, api.ListStaffResponse](
			httpClient, baseURL+AdminServiceListStaffProcedure, opts...),
		setStaffActive: connect.NewClient[api.SetStaffActiveRequest, api.SetStaffActiveResponse](
			httpClient, baseURL+AdminServiceSetStaffActiveProcedure, opts...),
	}
}

type adminServiceClient struct {
	getConversionDivisor *connect.Client[emptypb.Empty, api.ConversionDivisor]
	setConversionDivisor *connect.Client[api.ConversionDivisor, emptypb.Empty]
	createStore          *connect.Client[api.CreateStoreRequest, api.StoreResponse]
	listStores           *connect.Client[emptypb.Empty, api.ListStoresResponse]
	createReward         *connect.Client[api.RewardRequest, api.RewardResponse]
	updateReward         *connect.Client[api.RewardRequest, api.RewardResponse]
	deleteReward         *connect.Client[api.DeleteRewardRequest, emptypb.Empty]
	listRewards          *connect.Client[emptypb.Empty, api.ListRewardsResponse]
	createStaff          *connect.Client[api.CreateStaffRequest, api.CreateStaffResponse]
	lookupMember         *connect.Client[api.LookupMemberRequest, api.MemberResponse]
	listMembers          *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	listStaff            *connect.Client[emptypb.Empty, api.ListStaffResponse]
	setStaffActive       *connect.Client[api.SetStaffActiveRequest, api.SetStaffActiveResponse]
}

func (c *adminServiceClient) GetConversionDivisor(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ConversionDivisor], error) {
	return c.getConversionDivisor.CallUnary(ctx, req)
}

func (c *adminServiceClient) SetConversionDivisor(ctx context.Context, req *connect.Request[api.ConversionDivisor]) (*connect.Response[emptypb.Empty], error) {
	return c.setConversionDivisor.CallUnary(ctx, req)
}

func (c *adminServiceClient) CreateStore(ctx context.Context, req *connect.Request[api.CreateStoreRequest]) (*connect.Response[api.StoreResponse], error) {
	return c.createStore.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListStores(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStoresResponse], error) {
	return c.listStores.CallUnary(ctx, req)
}

func (c *adminServiceClient) CreateReward(ctx context.Context, req *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error) {
	return c.createReward.CallUnary(ctx, req)
}

func (c *adminServiceClient) UpdateReward(ctx context.Context, req *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error) {
	return c.updateReward.CallUnary(ctx, req)
}

func (c *adminServiceClient) DeleteReward(ctx context.Context, req *connect.Request[api.DeleteRewardRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.deleteReward.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListRewards(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListRewardsResponse], error) {
	return c.listRewards.CallUnary(ctx, req)
}

func (c *adminServiceClient) CreateStaff(ctx context.Context, req *connect.Request[api.CreateStaffRequest]) (*connect.Response[api.CreateStaffResponse], error) {
	return c.createStaff.CallUnary(ctx, req)
}

func (c *adminServiceClient) LookupMember(ctx context.Context, req *connect.Request[api.LookupMemberRequest]) (*connect.Response[api.MemberResponse], error) {
	return c.lookupMember.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListStaff(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStaffResponse], error) {
	return c.listStaff.CallUnary(ctx, req)
}

func (c *adminServiceClient) SetStaffActive(ctx context.Context, req *connect.Request[api.SetStaffActiveRequest]) (*connect.Response[api.SetStaffActiveResponse], error) {
	return c.setStaffActive.CallUnary(ctx, req)
}

// AdminServiceHandler is implemented by the poinku.v1.AdminService server.
type AdminServiceHandler interface {
	GetConversionDivisor(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ConversionDivisor], error)
	SetConversionDivisor(context.Context, *connect.Request[api.ConversionDivisor]) (*connect.Response[emptypb.Empty], error)
	CreateStore(context.Context, *connect.Request[api.CreateStoreRequest]) (*connect.Response[api.StoreResponse], error)
	ListStores(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStoresResponse], error)
	CreateReward(context.Context, *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error)
	UpdateReward(context.Context, *connect.Request[api.RewardRequest]) (*connect.Response[api.RewardResponse], error)
	DeleteReward(context.Context, *connect.Request[api.DeleteRewardRequest]) (*connect.Response[emptypb.Empty], error)
	ListRewards(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListRewardsResponse], error)
	CreateStaff(context.Context, *connect.Request[api.CreateStaffRequest]) (*connect.Response[api.CreateStaffResponse], error)
	LookupMember(context.Context, *connect.Request[api.LookupMemberRequest]) (*connect.Response[api.MemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	ListStaff(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStaffResponse], error)
	SetStaffActive(context.Context, *connect.Request[api.SetStaffActiveRequest]) (*connect.Response[api.SetStaffActiveResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler from the service implementation.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithCodec()}, opts...)
	getConversionDivisor := connect.NewUnaryHandler(AdminServiceGetConversionDivisorProcedure, svc.GetConversionDivisor, opts...)
	setConversionDivisor := connect.NewUnaryHandler(AdminServiceSetConversionDivisorProcedure, svc.SetConversionDivisor, opts...)
	createStore := connect.NewUnaryHandler(AdminServiceCreateStoreProcedure, svc.CreateStore, opts...)
	listStores := connect.NewUnaryHandler(AdminServiceListStoresProcedure, svc.ListStores, opts...)
	createReward := connect.NewUnaryHandler(AdminServiceCreateRewardProcedure, svc.CreateReward, opts...)
	updateReward := connect.NewUnaryHandler(AdminServiceUpdateRewardProcedure, svc.UpdateReward, opts...)
	deleteReward := connect.NewUnaryHandler(AdminServiceDeleteRewardProcedure, svc.DeleteReward, opts...)
	listRewards := connect.NewUnaryHandler(AdminServiceListRewardsProcedure, svc.ListRewards, opts...)
	createStaff := connect.NewUnaryHandler(AdminServiceCreateStaffProcedure, svc.CreateStaff, opts...)
	lookupMember := connect.NewUnaryHandler(AdminServiceLookupMemberProcedure, svc.LookupMember, opts...)
	listMembers := connect.NewUnaryHandler(AdminServiceListMembersProcedure, svc.ListMembers, opts...)
	listStaff := connect.NewUnaryHandler(AdminServiceListStaffProcedure, svc.ListStaff, opts...)
	setStaffActive := connect.NewUnaryHandler(AdminServiceSetStaffActiveProcedure, svc.SetStaffActive, opts...)
	return "/" + AdminServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AdminServiceGetConversionDivisorProcedure:
			getConversionDivisor.ServeHTTP(w, r)
		case AdminServiceSetConversionDivisorProcedure:
			setConversionDivisor.ServeHTTP(w, r)
		case AdminServiceCreateStoreProcedure:
			createStore.ServeHTTP(w, r)
		case AdminServiceListStoresProcedure:
			listStores.ServeHTTP(w, r)
		case AdminServiceCreateRewardProcedure:
			createReward.ServeHTTP(w, r)
		case AdminServiceUpdateRewardProcedure:
			updateReward.ServeHTTP(w, r)
		case AdminServiceDeleteRewardProcedure:
			deleteReward.ServeHTTP(w, r)
		case AdminServiceListRewardsProcedure:
			listRewards.ServeHTTP(w, r)
		case AdminServiceCreateStaffProcedure:
			createStaff.ServeHTTP(w, r)
		case AdminServiceLookupMemberProcedure:
			lookupMember.ServeHTTP(w, r)
		case AdminServiceListMembersProcedure:
			listMembers.ServeHTTP(w, r)
		case AdminServiceListStaffProcedure:
			listStaff.ServeHTTP(w, r)
		case AdminServiceSetStaffActiveProcedure:
			setStaffActive.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
