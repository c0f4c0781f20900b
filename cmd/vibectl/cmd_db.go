package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibestack/vibestack-backend/internal/catalog/repository"
	"github.com/vibestack/vibestack-backend/internal/catalog/seed"
	"github.com/vibestack/vibestack-backend/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var seedToolsCmd = &cobra.Command{
	Use:   "seed-tools",
	Short: "Upsert the built-in tool catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := seed.Run(cmd.Context(), repository.NewToolRepository(db))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "upserted %d tools\n", n)
		return nil
	},
}
