package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies database migrations",
		Long:  "Creates or updates every table herdbook needs. Safe to run repeatedly.",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database migration complete")
	return nil
}
