package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the portal CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "BRACU-out - university alumni portal backend",
		Long: `BRACU-out is the backend for the BRAC University alumni portal:
credential verification, session issuance, and role-based route
authorization for students, alumni, recruiters, and admins.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewHashPasswordsCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
