// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bracuout/portal/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back, or inspect schema migrations on the PostgreSQL database.`,
		RunE:  runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations, dropping every table and its data",
		RunE:  runMigrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE:  runMigrateVersion,
	})

	return cmd
}

// databaseURLFromEnv reads the database URL, required by every migrate action.
func databaseURLFromEnv() (string, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}
	return databaseURL, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	cmd.Println("Rolling back all migrations...")
	if err := m.Down(); err != nil {
		return err
	}

	cmd.Println("Rollback completed")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, _ []string) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, m)

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	if version == 0 {
		cmd.Println("No migrations applied")
		return nil
	}
	if dirty {
		cmd.Printf("Version: %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("Version: %d\n", version)
	return nil
}

func closeMigrator(cmd *cobra.Command, m *store.Migrator) {
	if err := m.Close(); err != nil {
		cmd.PrintErrln("warning: failed to close migrator:", err)
	}
}
