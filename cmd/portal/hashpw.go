// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bracuout/portal/internal/auth"
)

// Default timeout for the hash-passwords command.
const defaultHashTimeout = 5 * time.Minute

// hashConfig holds configuration for the hash-passwords command.
type hashConfig struct {
	timeout time.Duration
	dryRun  bool
}

// NewHashPasswordsCmd creates the hash-passwords subcommand.
func NewHashPasswordsCmd() *cobra.Command {
	cfg := &hashConfig{}

	cmd := &cobra.Command{
		Use:   "hash-passwords",
		Short: "Hash legacy plain-text credentials",
		Long: `Scans the user store for credentials still held in plain text and
rewrites them as bcrypt hashes. Already-hashed credentials are left
untouched, so the command is safe to re-run on a partially migrated
store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHashPasswordsWithDeps(cmd, cfg, nil)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultHashTimeout, "timeout for the whole migration (e.g., 1m, 5m)")
	cmd.Flags().BoolVar(&cfg.dryRun, "dry-run", false, "report what would change without writing")

	return cmd
}

// runHashPasswordsWithDeps migrates credentials with injectable dependencies.
// If deps is nil, default implementations are used.
func runHashPasswordsWithDeps(cmd *cobra.Command, cfg *hashConfig, deps *StoreDeps) error {
	if deps == nil {
		deps = &StoreDeps{}
	}
	deps.setDefaults()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	db, err := deps.DatabaseConnector(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	users := deps.UserRepoFactory(db)
	verifier := auth.NewBcryptVerifier()

	all, err := users.List(ctx)
	if err != nil {
		return oops.Code("HASH_MIGRATION_FAILED").With("operation", "list users").Wrap(err)
	}

	migrated := 0
	for _, user := range all {
		// Empty credentials exist in legacy data; leave them as they are.
		if user.Credential == "" || !verifier.NeedsUpgrade(user.Credential) {
			continue
		}

		if cfg.dryRun {
			cmd.Printf("Would hash credential for %s\n", user.Email)
			migrated++
			continue
		}

		hashed, hashErr := verifier.Hash(user.Credential)
		if hashErr != nil {
			return oops.Code("HASH_MIGRATION_FAILED").With("email", user.Email).Wrap(hashErr)
		}
		if updateErr := users.UpdateCredential(ctx, user.ID, hashed); updateErr != nil {
			return oops.Code("HASH_MIGRATION_FAILED").With("email", user.Email).Wrap(updateErr)
		}

		migrated++
		slog.Info("hashed legacy credential", "email", user.Email)
	}

	if cfg.dryRun {
		cmd.Printf("Dry run: %d of %d credential(s) need hashing\n", migrated, len(all))
		return nil
	}
	cmd.Printf("Hashed %d of %d credential(s)\n", migrated, len(all))
	return nil
}
