package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bracuout/portal/internal/auth"
	"github.com/bracuout/portal/internal/auth/postgres"
	"github.com/bracuout/portal/internal/observability"
	"github.com/bracuout/portal/internal/store"
)

// Database is the subset of pgxpool.Pool the commands use. The repositories
// see only the postgres.DB query methods; Ping backs the readiness probe.
type Database interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseConnector opens a database connection from a URL.
	// Default: store.Connect
	DatabaseConnector func(ctx context.Context, databaseURL string) (Database, error)

	// WebServerFactory creates the portal HTTP server.
	// Default: web.NewServer
	WebServerFactory func(addr string, handler http.Handler) WebServer

	// ObservabilityServerFactory creates a metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// StoreDeps contains injectable dependencies for the commands that work
// directly against the user store (seed, hash-passwords).
type StoreDeps struct {
	// DatabaseConnector opens a database connection from a URL.
	// Default: store.Connect
	DatabaseConnector func(ctx context.Context, databaseURL string) (Database, error)

	// UserRepoFactory builds the user repository over a database.
	// Default: postgres.NewUserRepository
	UserRepoFactory func(db Database) auth.Repository
}

// StatusDeps contains injectable dependencies for the status command.
type StatusDeps struct {
	// DatabaseConnector opens a database connection from a URL.
	// Default: store.Connect
	DatabaseConnector func(ctx context.Context, databaseURL string) (Database, error)

	// MigratorFactory creates a schema version reporter.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (VersionReporter, error)
}

// WebServer interface wraps the methods used from web.Server.
type WebServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// VersionReporter interface wraps the methods used from store.Migrator.
type VersionReporter interface {
	Version() (uint, bool, error)
	Close() error
}

func (d *StoreDeps) setDefaults() {
	if d.DatabaseConnector == nil {
		d.DatabaseConnector = defaultDatabaseConnector
	}
	if d.UserRepoFactory == nil {
		d.UserRepoFactory = func(db Database) auth.Repository {
			return postgres.NewUserRepository(db)
		}
	}
}

func defaultDatabaseConnector(ctx context.Context, databaseURL string) (Database, error) {
	return store.Connect(ctx, databaseURL)
}

// commandContext returns the command's context. Execute installs one, but a
// command driven directly has none, so fall back to context.Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
