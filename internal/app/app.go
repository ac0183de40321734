// Package app wires storage, the domain components and the RPC services
// into a runnable server.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/poinku/internal/auth"
	"github.com/mmynk/poinku/internal/config"
	"github.com/mmynk/poinku/internal/conversion"
	"github.com/mmynk/poinku/internal/directory"
	"github.com/mmynk/poinku/internal/events"
	"github.com/mmynk/poinku/internal/ledger"
	"github.com/mmynk/poinku/internal/metrics"
	"github.com/mmynk/poinku/internal/middleware"
	"github.com/mmynk/poinku/internal/retry"
	"github.com/mmynk/poinku/internal/service"
	"github.com/mmynk/poinku/internal/storage/sqldb"
	"github.com/mmynk/poinku/internal/voucher"
	"github.com/mmynk/poinku/pkg/api/apiconnect"
)

// PublicProcedures may be called without a session.
var PublicProcedures = []string{
	apiconnect.AuthServiceRegisterMemberProcedure,
	apiconnect.AuthServiceMemberLoginProcedure,
	apiconnect.AuthServiceStaffLoginProcedure,
}

// App holds the assembled server components.
type App struct {
	cfg    *config.Config
	store  *sqldb.DB
	logger *slog.Logger

	JWT       *auth.JWTManager
	Hub       *events.Hub
	Policy    *conversion.Policy
	Ledger    *ledger.Ledger
	Vouchers  *voucher.Engine
	Directory *directory.Directory
	Members   *auth.MemberAuthenticator
	Staff     *auth.StaffAuthenticator
}

// New assembles the components on top of an open store.
func New(cfg *config.Config, store *sqldb.DB, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	policy := retry.Policy{
		Attempts:        cfg.Ledger.RetryAttempts,
		InitialInterval: cfg.Ledger.RetryInitialInterval,
		MaxInterval:     cfg.Ledger.RetryMaxInterval,
	}
	hasher := auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.LegacyPlaintext)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	hub := events.NewHub(middleware.HTTPAuthenticator(jwtManager, store), cfg.HTTP.CORSOrigins, logger)
	conv := conversion.NewPolicy(store, cfg.Ledger.DefaultDivisor)

	l := ledger.New(store, conv, ledger.Options{
		Retry:  policy,
		Events: hub,
		Logger: logger,
	})
	engine := voucher.NewEngine(store, store, l, voucher.Options{
		Codes:        voucher.NewCodeGenerator(cfg.Voucher.Prefix, cfg.Voucher.SuffixLength),
		CodeAttempts: cfg.Voucher.CodeAttempts,
		Retry:        policy,
		Events:       hub,
		Logger:       logger,
	})

	return &App{
		cfg:       cfg,
		store:     store,
		logger:    logger,
		JWT:       jwtManager,
		Hub:       hub,
		Policy:    conv,
		Ledger:    l,
		Vouchers:  engine,
		Directory: directory.New(store, logger),
		Members:   auth.NewMemberAuthenticator(store, hasher, cfg.Auth.MinPINLength, logger),
		Staff:     auth.NewStaffAuthenticator(store, hasher, logger),
	}
}

// Handler returns the HTTP handler serving the RPC services, /healthz and
// /ws. It speaks HTTP/2 without TLS for Connect clients.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(a.cors)

	r.Get("/healthz", a.healthz)
	r.Handle("/ws", a.Hub)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(a.JWT, PublicProcedures...),
		middleware.RequireActiveStaff(a.store, a.logger),
		middleware.LoggingInterceptor(a.logger),
	)

	r.Mount(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(a.Members, a.Staff, a.JWT, a.logger), interceptors))
	r.Mount(apiconnect.NewLedgerServiceHandler(
		service.NewLedgerService(a.Ledger, a.logger), interceptors))
	r.Mount(apiconnect.NewVoucherServiceHandler(
		service.NewVoucherService(a.Vouchers, a.logger), interceptors))
	r.Mount(apiconnect.NewAdminServiceHandler(
		service.NewAdminService(a.Policy, a.Directory, a.Members, a.Staff, a.logger), interceptors))

	return h2c.NewHandler(r, &http2.Server{})
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		a.logger.Warn("Health check failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// cors adds CORS headers for browser tills. With no configured origins any
// origin is allowed.
func (a *App) cors(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(a.cfg.HTTP.CORSOrigins))
	for _, o := range a.cfg.HTTP.CORSOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Poinku-Error-Reason")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Serve runs the API server, the metrics server and the event hub until ctx
// is cancelled, then shuts them down gracefully.
func (a *App) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	servers := []*http.Server{srv}

	if a.cfg.HTTP.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              a.cfg.HTTP.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g.Go(func() error {
		return a.Hub.Run(ctx)
	})

	for _, s := range servers {
		g.Go(func() error {
			a.logger.Info("Listening", "address", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			errs = append(errs, s.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
