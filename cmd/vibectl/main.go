// Command vibectl is the VibeStack admin CLI.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/config"
	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/storage/postgres"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "vibectl",
	Short:         "Administer a VibeStack deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logger, err = logging.New(cfg.App.Environment, cfg.App.LogLevel); err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedToolsCmd, recommendCmd, cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	recommendCmd.Flags().StringVar(&bundlesPath, "bundles", "", "bundle table YAML (defaults to RECOMMENDATION_BUNDLES_PATH or the built-in table)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	return postgres.NewConnection(ctx, &cfg.Database)
}
