// Package apiconnect contains the Connect handlers and clients for the
// poinku services.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/poinku/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "poinku.v1.AuthService"

// Procedure paths for AuthService.
const (
	AuthServiceRegisterMemberProcedure = "/poinku.v1.AuthService/RegisterMember"
	AuthServiceMemberLoginProcedure    = "/poinku.v1.AuthService/MemberLogin"
	AuthServiceStaffLoginProcedure     = "/poinku.v1.AuthService/StaffLogin"
	AuthServiceWhoAmIProcedure         = "/poinku.v1.AuthService/WhoAmI"
)

// AuthServiceClient is a client for the poinku.v1.AuthService service.
type AuthServiceClient interface {
	RegisterMember(context.Context, *connect.Request[api.RegisterMemberRequest]) (*connect.Response[api.RegisterMemberResponse], error)
	MemberLogin(context.Context, *connect.Request[api.MemberLoginRequest]) (*connect.Response[api.LoginResponse], error)
	StaffLogin(context.Context, *connect.Request[api.StaffLoginRequest]) (*connect.Response[api.LoginResponse], error)
	WhoAmI(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.Session], error)
}

// NewAuthServiceClient constructs a client for the poinku.v1.AuthService service.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.WithCodec()}, opts...)
	return &authServiceClient{
		registerMember: connect.NewClient[api.RegisterMemberRequest, api.RegisterMemberResponse](
			httpClient, baseURL+AuthServiceRegisterMemberProcedure, opts...),
		memberLogin: connect.NewClient[api.MemberLoginRequest, api.LoginResponse](
			httpClient, baseURL+AuthServiceMemberLoginProcedure, opts...),
		staffLogin: connect.NewClient[api.StaffLoginRequest, api.LoginResponse](
			httpClient, baseURL+AuthServiceStaffLoginProcedure, opts...),
		whoAmI: connect.NewClient[emptypb.Empty, api.Session](
			httpClient, baseURL+AuthServiceWhoAmIProcedure, opts...),
	}
}

type authServiceClient struct {
	registerMember *connect.Client[api.RegisterMemberRequest, api.RegisterMemberResponse]
	memberLogin    *connect.Client[api.MemberLoginRequest, api.LoginResponse]
	staffLogin     *connect.Client[api.StaffLoginRequest, api.LoginResponse]
	whoAmI         *connect.Client[emptypb.Empty, api.Session]
}

func (c *authServiceClient) RegisterMember(ctx context.Context, req *connect.Request[api.RegisterMemberRequest]) (*connect.Response[api.RegisterMemberResponse], error) {
	return c.registerMember.CallUnary(ctx, req)
}

func (c *authServiceClient) MemberLogin(ctx context.Context, req *connect.Request[api.MemberLoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.memberLogin.CallUnary(ctx, req)
}

func (c *authServiceClient) StaffLogin(ctx context.Context, req *connect.Request[api.StaffLoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.staffLogin.CallUnary(ctx, req)
}

func (c *authServiceClient) WhoAmI(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.Session], error) {
	return c.whoAmI.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the poinku.v1.AuthService server.
type AuthServiceHandler interface {
	RegisterMember(context.Context, *connect.Request[api.RegisterMemberRequest]) (*connect.Response[api.RegisterMemberResponse], error)
	MemberLogin(context.Context, *connect.Request[api.MemberLoginRequest]) (*connect.Response[api.LoginResponse], error)
	StaffLogin(context.Context, *connect.Request[api.StaffLoginRequest]) (*connect.Response[api.LoginResponse], error)
	WhoAmI(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.Session], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithCodec()}, opts...)
	registerMember := connect.NewUnaryHandler(AuthServiceRegisterMemberProcedure, svc.RegisterMember, opts...)
	memberLogin := connect.NewUnaryHandler(AuthServiceMemberLoginProcedure, svc.MemberLogin, opts...)
	staffLogin := connect.NewUnaryHandler(AuthServiceStaffLoginProcedure, svc.StaffLogin, opts...)
	whoAmI := connect.NewUnaryHandler(AuthServiceWhoAmIProcedure, svc.WhoAmI, opts...)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterMemberProcedure:
			registerMember.ServeHTTP(w, r)
		case AuthServiceMemberLoginProcedure:
			memberLogin.ServeHTTP(w, r)
		case AuthServiceStaffLoginProcedure:
			staffLogin.ServeHTTP(w, r)
		case AuthServiceWhoAmIProcedure:
			whoAmI.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
