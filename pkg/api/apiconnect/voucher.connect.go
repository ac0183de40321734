package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/poinku/pkg/api"
)

// VoucherServiceName is the fully-qualified name of the VoucherService service.
const VoucherServiceName = "poinku.v1.VoucherService"

// Procedure paths for VoucherService.
const (
	VoucherServiceIssueVoucherProcedure         = "/poinku.v1.VoucherService/IssueVoucher"
	VoucherServiceLookupVoucherProcedure        = "/poinku.v1.VoucherService/LookupVoucher"
	VoucherServiceRedeemVoucherProcedure        = "/poinku.v1.VoucherService/RedeemVoucher"
	VoucherServiceExpireVoucherProcedure        = "/poinku.v1.VoucherService/ExpireVoucher"
	VoucherServiceListMemberVouchersProcedure   = "/poinku.v1.VoucherService/ListMemberVouchers"
	VoucherServiceListStoreRedemptionsProcedure = "/poinku.v1.VoucherService/ListStoreRedemptions"
)

// VoucherServiceClient is a client for the poinku.v1.VoucherService service.
type VoucherServiceClient interface {
	IssueVoucher(context.Context, *connect.Request[api.IssueVoucherRequest]) (*connect.Response[api.IssueVoucherResponse], error)
	LookupVoucher(context.Context, *connect.Request[api.LookupVoucherRequest]) (*connect.Response[api.LookupVoucherResponse], error)
	RedeemVoucher(context.Context, *connect.Request[api.RedeemVoucherRequest]) (*connect.Response[api.RedeemVoucherResponse], error)
	ExpireVoucher(context.Context, *connect.Request[api.ExpireVoucherRequest]) (*connect.Response[api.ExpireVoucherResponse], error)
	ListMemberVouchers(context.Context, *connect.Request[api.ListMemberVouchersRequest]) (*connect.Response[api.ListVouchersResponse], error)
	ListStoreRedemptions(context.Context, *connect.Request[api.ListStoreRedemptionsRequest]) (*connect.Response[api.ListVouchersResponse], error)
}

// NewVoucherServiceClient constructs a client for the poinku.v1.VoucherService service.
func NewVoucherServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) VoucherServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.WithCodec()}, opts...)
	return &voucherServiceClient{
		issueVoucher: connect.NewClient[api.IssueVoucherRequest, api.IssueVoucherResponse](
			httpClient, baseURL+VoucherServiceIssueVoucherProcedure, opts...),
		lookupVoucher: connect.NewClient[api.LookupVoucherRequest, api.LookupVoucherResponse](
			httpClient, baseURL+VoucherServiceLookupVoucherProcedure, opts...),
		redeemVoucher: connect.NewClient[api.RedeemVoucherRequest, api.RedeemVoucherResponse](
			httpClient, baseURL+VoucherServiceRedeemVoucherProcedure, opts...),
		expireVoucher: connect.NewClient[api.ExpireVoucherRequest, api.ExpireVoucherResponse](
			httpClient, baseURL+VoucherServiceExpireVoucherProcedure, opts...),
		listMemberVouchers: connect.NewClient[api.ListMemberVouchersRequest, api.ListVouchersResponse](
			httpClient, baseURL+VoucherServiceListMemberVouchersProcedure, opts...),
		listStoreRedemptions: connect.NewClient[api.ListStoreRedemptionsRequest, api.ListVouchersResponse](
			httpClient, baseURL+VoucherServiceListStoreRedemptionsProcedure, opts...),
	}
}

type voucherServiceClient struct {
	issueVoucher         *connect.Client[api.IssueVoucherRequest, api.IssueVoucherResponse]
	lookupVoucher        *connect.Client[api.LookupVoucherRequest, api.LookupVoucherResponse]
	redeemVoucher        *connect.Client[api.RedeemVoucherRequest, api.RedeemVoucherResponse]
	expireVoucher        *connect.Client[api.ExpireVoucherRequest, api.ExpireVoucherResponse]
	listMemberVouchers   *connect.Client[api.ListMemberVouchersRequest, api.ListVouchersResponse]
	listStoreRedemptions *connect.Client[api.ListStoreRedemptionsRequest, api.ListVouchersResponse]
}

func (c *voucherServiceClient) IssueVoucher(ctx context.Context, req *connect.Request[api.IssueVoucherRequest]) (*connect.Response[api.IssueVoucherResponse], error) {
	return c.issueVoucher.CallUnary(ctx, req)
}

func (c *voucherServiceClient) LookupVoucher(ctx context.Context, req *connect.Request[api.LookupVoucherRequest]) (*connect.Response[api.LookupVoucherResponse], error) {
	return c.lookupVoucher.CallUnary(ctx, req)
}

func (c *voucherServiceClient) RedeemVoucher(ctx context.Context, req *connect.Request[api.RedeemVoucherRequest]) (*connect.Response[api.RedeemVoucherResponse], error) {
	return c.redeemVoucher.CallUnary(ctx, req)
}

func (c *voucherServiceClient) ExpireVoucher(ctx context.Context, req *connect.Request[api.ExpireVoucherRequest]) (*connect.Response[api.ExpireVoucherResponse], error) {
	return c.expireVoucher.CallUnary(ctx, req)
}

func (c *voucherServiceClient) ListMemberVouchers(ctx context.Context, req *connect.Request[api.ListMemberVouchersRequest]) (*connect.Response[api.ListVouchersResponse], error) {
	return c.listMemberVouchers.CallUnary(ctx, req)
}

func (c *voucherServiceClient) ListStoreRedemptions(ctx context.Context, req *connect.Request[api.ListStoreRedemptionsRequest]) (*connect.Response[api.ListVouchersResponse], error) {
	return c.listStoreRedemptions.CallUnary(ctx, req)
}

// VoucherServiceHandler is implemented by the poinku.v1.VoucherService server.
type VoucherServiceHandler interface {
	IssueVoucher(context.Context, *connect.Request[api.IssueVoucherRequest]) (*connect.Response[api.IssueVoucherResponse], error)
	LookupVoucher(context.Context, *connect.Request[api.LookupVoucherRequest]) (*connect.Response[api.LookupVoucherResponse], error)
	RedeemVoucher(context.Context, *connect.Request[api.RedeemVoucherRequest]) (*connect.Response[api.RedeemVoucherResponse], error)
	ExpireVoucher(context.Context, *connect.Request[api.ExpireVoucherRequest]) (*connect.Response[api.ExpireVoucherResponse], error)
	ListMemberVouchers(context.Context, *connect.Request[api.ListMemberVouchersRequest]) (*connect.Response[api.ListVouchersResponse], error)
	ListStoreRedemptions(context.Context, *connect.Request[api.ListStoreRedemptionsRequest]) (*connect.Response[api.ListVouchersResponse], error)
}

// NewVoucherServiceHandler builds an HTTP handler from the service implementation.
func NewVoucherServiceHandler(svc VoucherServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithCodec()}, opts...)
	issueVoucher := connect.NewUnaryHandler(VoucherServiceIssueVoucherProcedure, svc.IssueVoucher, opts...)
	lookupVoucher := connect.NewUnaryHandler(VoucherServiceLookupVoucherProcedure, svc.LookupVoucher, opts...)
	redeemVoucher := connect.NewUnaryHandler(VoucherServiceRedeemVoucherProcedure, svc.RedeemVoucher, opts...)
	expireVoucher := connect.NewUnaryHandler(VoucherServiceExpireVoucherProcedure, svc.ExpireVoucher, opts...)
	listMemberVouchers := connect.NewUnaryHandler(VoucherServiceListMemberVouchersProcedure, svc.ListMemberVouchers, opts...)
	listStoreRedemptions := connect.NewUnaryHandler(VoucherServiceListStoreRedemptionsProcedure, svc.ListStoreRedemptions, opts...)
	return "/" + VoucherServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case VoucherServiceIssueVoucherProcedure:
			issueVoucher.ServeHTTP(w, r)
		case VoucherServiceLookupVoucherProcedure:
			lookupVoucher.ServeHTTP(w, r)
		case VoucherServiceRedeemVoucherProcedure:
			redeemVoucher.ServeHTTP(w, r)
		case VoucherServiceExpireVoucherProcedure:
			expireVoucher.ServeHTTP(w, r)
		case VoucherServiceListMemberVouchersProcedure:
			listMemberVouchers.ServeHTTP(w, r)
		case VoucherServiceListStoreRedemptionsProcedure:
			listStoreRedemptions.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
