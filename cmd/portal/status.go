package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bracuout/portal/internal/store"
)

// DatabaseStatus holds the portal's database health information.
type DatabaseStatus struct {
	Reachable        bool   `json:"reachable"`
	MigrationVersion uint   `json:"migration_version"`
	Dirty            bool   `json:"dirty"`
	Error            string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and schema status",
		Long:  `Check that the PostgreSQL database is reachable and report the current migration version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatusWithDeps(cmd, cfg, nil)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 10*time.Second, "timeout for database checks")

	return cmd
}

// runStatusWithDeps executes the status command with injectable dependencies.
// If deps is nil, default implementations are used.
func runStatusWithDeps(cmd *cobra.Command, cfg *statusConfig, deps *StatusDeps) error {
	if deps == nil {
		deps = &StatusDeps{}
	}
	if deps.DatabaseConnector == nil {
		deps.DatabaseConnector = defaultDatabaseConnector
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (VersionReporter, error) {
			return store.NewMigrator(databaseURL)
		}
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.timeout)
	defer cancel()

	status := queryDatabaseStatus(ctx, databaseURL, deps)

	var output string
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		output = string(data)
	} else {
		output = formatStatusTable(status)
	}

	cmd.Println(output)
	return nil
}

// queryDatabaseStatus checks reachability and schema version. Failures are
// reported in the status rather than returned, so the command always prints.
func queryDatabaseStatus(ctx context.Context, databaseURL string, deps *StatusDeps) DatabaseStatus {
	var status DatabaseStatus

	db, err := deps.DatabaseConnector(ctx, databaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		status.Error = fmt.Sprintf("ping failed: %v", err)
		return status
	}
	status.Reachable = true

	m, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("failed to open migrator: %v", err)
		return status
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		status.Error = fmt.Sprintf("failed to read migration version: %v", err)
		return status
	}
	status.MigrationVersion = version
	status.Dirty = dirty

	return status
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status DatabaseStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "DATABASE\tMIGRATION\tDIRTY\tERROR")
	_, _ = fmt.Fprintln(w, "--------\t---------\t-----\t-----")

	reachable := "unreachable"
	if status.Reachable {
		reachable = "ok"
	}
	errText := "-"
	if status.Error != "" {
		errText = status.Error
	}
	_, _ = fmt.Fprintf(w, "%s\t%d\t%t\t%s\n", reachable, status.MigrationVersion, status.Dirty, errText)

	_ = w.Flush()
	return string(buf)
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
