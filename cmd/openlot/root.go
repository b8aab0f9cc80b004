package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the OpenLot CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openlot",
		Short: "OpenLot - parking application backend",
		Long: `OpenLot is a parking application backend: account registration and
login with signed session tokens, plus the wallets, cards, cars, and
parking history each account owns.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewKeygenCmd())

	return cmd
}
