// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/openlot/openlot/internal/auth"
	authpg "github.com/openlot/openlot/internal/auth/postgres"
	"github.com/openlot/openlot/internal/config"
	"github.com/openlot/openlot/internal/logging"
	"github.com/openlot/openlot/internal/observability"
	"github.com/openlot/openlot/internal/ownership"
	ownpg "github.com/openlot/openlot/internal/ownership/postgres"
	"github.com/openlot/openlot/internal/store"
	"github.com/openlot/openlot/pkg/errutil"
)

// serveConfig holds flag overrides for the serve command.
type serveConfig struct {
	autoMigrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the OpenLot server",
		Long: `Start the OpenLot server: connect to PostgreSQL, wire the auth and
ownership services, and expose metrics and health probes until a
shutdown signal arrives.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	cmd.Flags().BoolVar(&cfg.autoMigrate, "auto-migrate", false, "apply pending schema migrations on startup")

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, flags *serveConfig, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = store.Connect
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.SetDefault(logging.Options{
		Service: "openlot",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.LogLevel(),
	})

	logger.Info("starting openlot server",
		"log_format", cfg.Log.Format,
		"ownership_enforce", cfg.Ownership.Enforce,
	)

	if flags.autoMigrate {
		migrator, err := deps.MigratorFactory(cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			_ = migrator.Close() //nolint:errcheck // migration error takes precedence
			return err
		}
		if err := migrator.Close(); err != nil {
			return err
		}
		logger.Info("schema migrations applied")
	}

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start the observability server first so its counters can be wired
	// into the service layer.
	var obsServer ObservabilityServer
	var obsErrChan <-chan error
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, err = obsServer.Start()
		if err != nil {
			return err
		}
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	core, err := wireCore(cfg, pool, logger, metrics)
	if err != nil {
		if obsServer != nil {
			_ = obsServer.Stop(context.Background()) //nolint:errcheck // wiring error takes precedence
		}
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("OpenLot server started")
	logger.Info("openlot server ready",
		"accounts", core.Auth != nil,
		"ownership", core.Ownership != nil,
	)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err, ok := <-obsErrChan:
		if ok && err != nil {
			errutil.LogError(logger, "observability server failed", err)
			cancel()
		}
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			errutil.LogWarn(logger, "error stopping observability server", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// Core bundles the wired service layer.
type Core struct {
	Auth      *auth.Service
	Issuer    *auth.SessionIssuer
	Guard     *auth.Guard
	Ownership *ownership.Service
}

// wireCore builds the auth and ownership services from validated
// configuration and a live connection pool. metrics may be nil when the
// observability server is disabled.
func wireCore(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) (*Core, error) {
	keyring, err := cfg.Keyring()
	if err != nil {
		return nil, err
	}
	codec, err := auth.NewTokenCodec(keyring, cfg.Auth.Leeway)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewSessionIssuer(codec, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	accounts := authpg.NewAccountRepository(pool)
	hasher := auth.NewArgon2idHasher(cfg.HasherParams())

	authSvc, err := auth.NewServiceWithLogger(accounts, hasher, logger)
	if err != nil {
		return nil, err
	}
	guard, err := auth.NewGuardWithLogger(codec, accounts, logger)
	if err != nil {
		return nil, err
	}

	vaultKey, err := cfg.VaultKey()
	if err != nil {
		return nil, err
	}
	vault, err := ownership.NewCardVault(vaultKey)
	if err != nil {
		return nil, err
	}
	policy := ownership.NewPolicy(cfg.Ownership.Enforce, logger)

	ownershipSvc, err := ownership.NewService(
		ownpg.NewWalletRepository(pool),
		ownpg.NewCardRepository(pool),
		ownpg.NewCarRepository(pool),
		ownpg.NewParkingEventRepository(pool),
		vault,
		policy,
		logger,
	)
	if err != nil {
		return nil, err
	}

	if metrics != nil {
		authSvc.SetMetrics(metrics)
		guard.SetMetrics(metrics)
		policy.SetMetrics(metrics)
	}

	return &Core{
		Auth:      authSvc,
		Issuer:    issuer,
		Guard:     guard,
		Ownership: ownershipSvc,
	}, nil
}
