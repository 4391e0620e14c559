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
	"github.com/bracuout/portal/pkg/errutil"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// demoUser describes one seeded account. Plain-text credentials are kept
// deliberately: a seeded database exercises both verifier paths.
type demoUser struct {
	email    string
	username string
	name     string
	role     auth.Role
	password string
	hashed   bool

	studentID string
	gradYear  int
	company   string
	position  string
}

func demoUsers() []demoUser {
	return []demoUser{
		{
			email: "admin@bracu.ac.bd", username: "admin", name: "Portal Admin",
			role: auth.RoleAdmin, password: "admin123", hashed: true,
		},
		{
			email: "student@bracu.ac.bd", name: "Samira Hossain",
			role: auth.RoleStudent, password: "student123", hashed: true,
			studentID: "20101234",
		},
		{
			email: "alumni@bracu.ac.bd", username: "alumni01", name: "Rafiq Ahmed",
			role: auth.RoleAlumni, password: "alumni123", hashed: false,
			gradYear: 2019,
		},
		{
			email: "recruiter@example.com", name: "Nusrat Jahan",
			role: auth.RoleRecruiter, password: "recruiter123", hashed: true,
			company: "TechVentures Ltd", position: "Talent Lead",
		},
		{
			// Legacy record: stored role "graduate" with a plain-text password
			email: "graduate@bracu.ac.bd", username: "grad_2015", name: "Imran Kabir",
			role: auth.RoleGraduate, password: "graduate123", hashed: false,
			gradYear: 2015,
		},
	}
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo users",
		Long: `Creates demo users across every portal role, mixing hashed and
plain-text credentials. This command is idempotent - existing users are
left untouched on repeat runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedWithDeps(cmd, cfg, nil)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

// runSeedWithDeps seeds demo users with injectable dependencies.
// If deps is nil, default implementations are used.
func runSeedWithDeps(cmd *cobra.Command, cfg *seedConfig, deps *StoreDeps) error {
	if deps == nil {
		deps = &StoreDeps{}
	}
	deps.setDefaults()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	// Use the command context to respect SIGINT/SIGTERM signals
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

	created := 0
	for _, demo := range demoUsers() {
		credential := demo.password
		if demo.hashed {
			credential, err = verifier.Hash(demo.password)
			if err != nil {
				return oops.Code("SEED_FAILED").With("email", demo.email).Wrap(err)
			}
		}

		user := &auth.User{
			Email:      demo.email,
			Username:   demo.username,
			Name:       demo.name,
			Role:       demo.role,
			Credential: credential,
			IsActive:   true,
		}
		if demo.studentID != "" {
			user.StudentID = &demo.studentID
		}
		if demo.gradYear != 0 {
			user.GraduationYear = &demo.gradYear
		}
		if demo.company != "" {
			user.Company = &demo.company
			user.Position = &demo.position
		}

		if err := users.Create(ctx, user); err != nil {
			if errutil.Code(err) == "AUTH_USER_EXISTS" {
				cmd.Printf("User %s already exists, skipping\n", demo.email)
				continue
			}
			return oops.Code("SEED_FAILED").With("email", demo.email).Wrap(err)
		}

		created++
		slog.Info("created demo user", "email", demo.email, "role", demo.role)
	}

	cmd.Printf("Seeding complete: %d user(s) created\n", created)
	return nil
}
