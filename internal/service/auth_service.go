package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/poinku/internal/auth"
	"github.com/mmynk/poinku/internal/middleware"
	"github.com/mmynk/poinku/internal/tenant"
	"github.com/mmynk/poinku/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	members    *auth.MemberAuthenticator
	staff      *auth.StaffAuthenticator
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(members *auth.MemberAuthenticator, staff *auth.StaffAuthenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		members:    members,
		staff:      staff,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// RegisterMember creates a member account. When called from a till the
// member is stamped with the till's store.
func (s *AuthService) RegisterMember(ctx context.Context, req *connect.Request[api.RegisterMemberRequest]) (*connect.Response[api.RegisterMemberResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid register request", err)
	}

	member, err := s.members.Register(ctx, auth.RegisterInput{
		Name:    req.Msg.Name,
		Phone:   req.Msg.Phone,
		PIN:     req.Msg.PIN,
		StoreID: tenant.StoreID(ctx, req.Msg.StoreID),
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Registration failed", err)
	}

	return connect.NewResponse(&api.RegisterMemberResponse{Member: memberToAPI(member)}), nil
}

// MemberLogin authenticates a member by phone and PIN.
func (s *AuthService) MemberLogin(ctx context.Context, req *connect.Request[api.MemberLoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid login request", err)
	}
	return s.login(ctx, s.members, req.Msg.Phone, req.Msg.PIN)
}

// StaffLogin authenticates a staff account by username and password.
func (s *AuthService) StaffLogin(ctx context.Context, req *connect.Request[api.StaffLoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(s.logger, "Invalid login request", err)
	}
	return s.login(ctx, s.staff, req.Msg.Username, req.Msg.Password)
}

func (s *AuthService) login(ctx context.Context, a auth.Authenticator, identifier, secret string) (*connect.Response[api.LoginResponse], error) {
	identity, err := a.Authenticate(ctx, identifier, secret)
	if err != nil {
		return nil, toConnectError(s.logger, "Login failed", err)
	}

	token, expiresAt, err := s.jwtManager.Generate(identity)
	if err != nil {
		return nil, toConnectError(s.logger, "Failed to generate token", err, "subject", identity.Subject)
	}

	s.logger.Info("Login successful", "subject", identity.Subject, "kind", identity.Kind, "store_id", identity.StoreID)

	session := sessionToAPI(identity.Actor())
	session.Name = identity.Name
	return connect.NewResponse(&api.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   session,
	}), nil
}

// WhoAmI returns the session of the caller.
func (s *AuthService) WhoAmI(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.Session], error) {
	actor, err := middleware.Actor(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(sessionToAPI(actor)), nil
}

func sessionToAPI(a tenant.Actor) *api.Session {
	return &api.Session{
		Subject: a.Subject,
		Kind:    string(a.Kind),
		Role:    string(a.Role),
		StoreID: a.StoreID,
	}
}
