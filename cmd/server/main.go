package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/poinku/internal/app"
	"github.com/mmynk/poinku/internal/config"
	"github.com/mmynk/poinku/internal/storage/sqldb"
	"github.com/mmynk/poinku/pkg/logging"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Baseline logger for startup; setup replaces it once config is loaded.
	logging.Setup()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "poinku",
		Short:         "Poinku - loyalty points ledger and voucher redemption server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default $POINKU_CONFIG)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the API server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServer(cmd.Context(), configPath)
			},
		},
		newVersionCmd(),
		newMigrateCmd(&configPath),
		newSetDivisorCmd(&configPath),
		newReconcileCmd(&configPath),
		newCreateStaffCmd(&configPath),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Poinku %s\n", Version)
			if BuildTime != "unknown" {
				fmt.Fprintf(out, "Built: %s\n", BuildTime)
			}
			if GitCommit != "unknown" {
				fmt.Fprintf(out, "Commit: %s\n", GitCommit)
			}
		},
	}
}

// setup loads configuration, installs the default logger and opens storage.
func setup(ctx context.Context, configPath string) (*config.Config, *sqldb.DB, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	store, err := sqldb.Open(ctx, sqldb.Options{
		Driver:       cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		BusyTimeout:  cfg.Storage.BusyTimeout,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "driver", store.Driver())

	return cfg, store, logger, nil
}

func runServer(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, store, logger, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Dev {
		logger.Warn("Running in development mode")
	}
	logger.Info("Starting Poinku", "version", Version, "address", cfg.HTTP.Addr)

	return app.New(cfg, store, logger).Serve(ctx)
}
