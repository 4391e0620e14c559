// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bracuout/portal/internal/access"
	"github.com/bracuout/portal/internal/auth"
	"github.com/bracuout/portal/internal/auth/postgres"
	"github.com/bracuout/portal/internal/config"
	"github.com/bracuout/portal/internal/logging"
	"github.com/bracuout/portal/internal/observability"
	"github.com/bracuout/portal/internal/web"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal HTTP server",
		Long: `Start the portal server which verifies credentials, issues web
sessions and bearer tokens, and gates role-restricted routes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	// Flag names mirror the config file keys so posflag can merge them.
	flags := cmd.Flags()
	flags.String("server.addr", config.DefaultHTTPAddr, "HTTP listen address")
	flags.String("server.metrics_addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("database.url", "", "PostgreSQL connection URL (or DATABASE_URL)")
	flags.String("log.format", config.DefaultLogFormat, "log format (json or text)")
	flags.Duration("session.expiry", config.DefaultSessionExpiry, "web session lifetime")
	flags.Duration("bearer.expiry", config.DefaultBearerExpiry, "bearer token lifetime")

	return cmd
}

// runServeWithDeps starts the portal with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.DatabaseConnector == nil {
		deps.DatabaseConnector = defaultDatabaseConnector
	}
	if deps.WebServerFactory == nil {
		deps.WebServerFactory = func(addr string, handler http.Handler) WebServer {
			return web.NewServer(addr, handler)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url or DATABASE_URL is required")
	}
	if cfg.Bearer.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("bearer.secret or JWT_SECRET is required")
	}

	logging.SetDefault("portal", version, cfg.Log.Format)

	slog.Info("starting portal",
		"addr", cfg.Server.Addr,
		"log_format", cfg.Log.Format,
	)

	db, err := deps.DatabaseConnector(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	slog.Info("connected to database")

	verifier := auth.NewBcryptVerifier()
	users := postgres.NewUserRepository(db)
	sessions := postgres.NewSessionRepository(db)

	authSvc, err := auth.NewService(users, sessions, verifier)
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").Wrap(err)
	}
	register, err := auth.NewRegistrationService(users, verifier)
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").Wrap(err)
	}
	admin, err := auth.NewAdminService(users, verifier)
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").Wrap(err)
	}
	bearer, err := auth.NewBearerIssuer(cfg.Bearer.Secret, cfg.Bearer.Expiry)
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").Wrap(err)
	}
	gate := access.NewGate()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Server.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return db.Ping(pingCtx) == nil
		})
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return oops.Code("SERVE_INIT_FAILED").With("operation", "start observability server").Wrap(obsErr)
		}
		// Monitor observability server errors - cancel context on error
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	handler, err := web.NewHandler(authSvc, register, admin, bearer, gate, web.Options{
		Metrics:       metrics,
		SessionExpiry: cfg.Session.Expiry,
	})
	if err != nil {
		stopObservability(obsServer)
		return oops.Code("SERVE_INIT_FAILED").Wrap(err)
	}

	webServer := deps.WebServerFactory(cfg.Server.Addr, handler.Routes())
	webErrChan, err := webServer.Start()
	if err != nil {
		stopObservability(obsServer)
		return oops.Code("SERVE_INIT_FAILED").With("operation", "start web server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrChan, "web")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Portal started on " + webServer.Addr())
	slog.Info("portal ready", "addr", webServer.Addr())

	// Wait for shutdown signal or server failure
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping web server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

func stopObservability(obsServer ObservabilityServer) {
	if obsServer == nil {
		return
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := obsServer.Stop(stopCtx); err != nil {
		slog.Warn("failed to stop observability server during cleanup", "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
