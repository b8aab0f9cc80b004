// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/openlot/openlot/internal/config"
	"github.com/openlot/openlot/internal/store"
)

// NewMigrateCmd creates the migrate subcommand with up/down/steps/version/
// force operations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back, and inspect schema migrations against the PostgreSQL database.`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateStepsCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	cmd.AddCommand(newMigrateForceCmd())

	return cmd
}

// openMigrator loads config and creates a migrator for the configured
// database.
func openMigrator() (*store.Migrator, error) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	return store.NewMigrator(cfg.Database.URL)
}

// withMigrator runs fn against a fresh migrator and closes it afterwards.
func withMigrator(fn func(*store.Migrator) error) error {
	migrator, err := openMigrator()
	if err != nil {
		return err
	}
	runErr := fn(migrator)
	closeErr := migrator.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *store.Migrator) error {
				cmd.Println("Applying migrations...")
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations applied")
				return nil
			})
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (destructive)",
		Long:  `Roll back all migrations to version 0. This drops every table and all data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return oops.Code("CONFIRMATION_REQUIRED").
					Errorf("refusing to drop all data without --yes")
			}
			return withMigrator(func(m *store.Migrator) error {
				cmd.Println("Rolling back all migrations...")
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Rollback complete")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the destructive rollback")
	return cmd
}

func newMigrateStepsCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Apply n migrations (negative rolls back)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n == 0 {
				return oops.Code("INVALID_STEPS").Errorf("--n must be non-zero")
			}
			return withMigrator(func(m *store.Migrator) error {
				cmd.Printf("Applying %d migration step(s)...\n", n)
				if err := m.Steps(n); err != nil {
					return err
				}
				cmd.Println("Done")
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "number of migration steps (negative rolls back)")
	return cmd
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					cmd.Println("No migrations applied")
					return nil
				}
				cmd.Printf("Version: %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	}
}

func newMigrateForceCmd() *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "force",
		Short: "Set migration version without running migrations",
		Long: `Set the migration version without running migrations. Use only to
recover from a dirty state after manually fixing the database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if version < 0 {
				return oops.Code("INVALID_VERSION").Errorf("--version must be non-negative")
			}
			return withMigrator(func(m *store.Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("Forced version to %d\n", version)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&version, "version", -1, "migration version to force")
	return cmd
}
