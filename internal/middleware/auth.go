package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/poinku/internal/auth"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
	"github.com/mmynk/poinku/pkg/api"
)

var (
	errPermissionDenied = errors.New("permission denied")
	errAccountDisabled  = errors.New("staff account is disabled")
	errInternal         = errors.New("internal error")
)

// StaffAccounts loads staff accounts by ID.
type StaffAccounts interface {
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns an interceptor that validates the session token and
// installs the acting identity into the context. Public procedures accept
// requests without a token, but still pick up the identity when a valid
// one is present so a till can register a member under its own store.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure

			token, err := BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				if open[procedure] {
					return next(ctx, req)
				}
				return nil, api.NewError(connect.CodeUnauthenticated, api.ReasonUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				if open[procedure] {
					return next(ctx, req)
				}
				return nil, api.NewError(connect.CodeUnauthenticated, api.ReasonUnauthenticated, err)
			}

			return next(tenant.WithActor(ctx, claims.Actor()), req)
		}
	}
}

// CurrentStaff reloads the account behind a staff actor. Disabled or removed
// accounts are refused, and role and store come from the stored account
// rather than the token. Members and a nil accounts pass through unchanged.
func CurrentStaff(ctx context.Context, accounts StaffAccounts, a tenant.Actor) (tenant.Actor, error) {
	if accounts == nil || !a.IsStaff() {
		return a, nil
	}

	staff, err := accounts.GetStaff(ctx, a.Subject)
	if errors.Is(err, models.ErrNotFound) {
		return a, errAccountDisabled
	}
	if err != nil {
		return a, err
	}
	if !staff.Active {
		return a, errAccountDisabled
	}

	a.Role = staff.Role
	a.StoreID = staff.StoreID
	return a, nil
}

// RequireActiveStaff returns an interceptor, installed after RequireAuth,
// that re-checks staff sessions against the stored account on every call.
func RequireActiveStaff(accounts StaffAccounts, logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			a, ok := tenant.FromContext(ctx)
			if !ok || !a.IsStaff() {
				return next(ctx, req)
			}

			current, err := CurrentStaff(ctx, accounts, a)
			switch {
			case errors.Is(err, errAccountDisabled):
				logger.Info("Refused session of disabled staff account", "staff_id", a.Subject, "procedure", req.Spec().Procedure)
				return nil, api.NewError(connect.CodeUnauthenticated, api.ReasonUnauthenticated, err)
			case err != nil:
				logger.Error("Failed to load staff account", "staff_id", a.Subject, "error", err)
				return nil, api.NewError(connect.CodeInternal, models.Reason(err), errInternal)
			}
			return next(tenant.WithActor(ctx, current), req)
		}
	}
}

// HTTPAuthenticator authenticates plain HTTP requests such as the websocket
// upgrade. Browsers cannot set headers on a websocket handshake, so the token
// may also come from the "token" query parameter. Staff sessions are checked
// against accounts when it is non-nil.
func HTTPAuthenticator(jwtManager *auth.JWTManager, accounts StaffAccounts) func(*http.Request) (tenant.Actor, error) {
	return func(r *http.Request) (tenant.Actor, error) {
		token := r.URL.Query().Get("token")
		if token == "" {
			var err error
			token, err = BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				return tenant.Actor{}, err
			}
		}
		claims, err := jwtManager.Validate(token)
		if err != nil {
			return tenant.Actor{}, err
		}
		return CurrentStaff(r.Context(), accounts, claims.Actor())
	}
}

// Actor returns the authenticated caller.
func Actor(ctx context.Context) (tenant.Actor, error) {
	a, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.Actor{}, api.NewError(connect.CodeUnauthenticated, api.ReasonUnauthenticated, auth.ErrMissingToken)
	}
	return a, nil
}

// RequireStaff allows any staff account, admins included.
func RequireStaff(ctx context.Context) (tenant.Actor, error) {
	a, err := Actor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsStaff() {
		return a, denied()
	}
	return a, nil
}

// RequireAdmin allows admins only.
func RequireAdmin(ctx context.Context) (tenant.Actor, error) {
	a, err := Actor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsAdmin() {
		return a, denied()
	}
	return a, nil
}

// RequireSelfOrStaff allows staff, or the member identified by memberID.
func RequireSelfOrStaff(ctx context.Context, memberID string) (tenant.Actor, error) {
	a, err := Actor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsStaff() && !a.IsMember(memberID) {
		return a, denied()
	}
	return a, nil
}

func denied() error {
	return api.NewError(connect.CodePermissionDenied, api.ReasonPermissionDenied, errPermissionDenied)
}
