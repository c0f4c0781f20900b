package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibestack/vibestack-backend/internal/bootstrap"
	"github.com/vibestack/vibestack-backend/internal/stacks/cache"
	"github.com/vibestack/vibestack-backend/internal/stacks/service"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the stack listing cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every cached stack listing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := bootstrap.OpenRedis(cmd.Context(), &cfg.Redis)
		if err != nil {
			return err
		}
		if rdb == nil {
			return errors.New("REDIS_ADDR is not set")
		}
		defer rdb.Close()

		svc := service.NewStackService(nil, cache.NewPageCache(rdb, cfg.Cache.TTL))
		n, err := svc.PurgeCache(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d cached pages\n", n)
		return nil
	},
}
