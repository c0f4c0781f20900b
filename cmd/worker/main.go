package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/config"
	"github.com/vibestack/vibestack-backend/internal/bootstrap"
	"github.com/vibestack/vibestack-backend/internal/logging"
	cronjob "github.com/vibestack/vibestack-backend/internal/stacks/cron"
	"github.com/vibestack/vibestack-backend/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL is 0, nothing to warm")
	}

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb == nil {
		return errors.New("REDIS_ADDR is required for the worker")
	}
	defer rdb.Close()

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	svc := bootstrap.NewStackService(sqlDB, rdb, cfg.Cache.TTL)

	sched, err := cronjob.NewScheduler(cfg.Cache.WarmSchedule, svc, logger)
	if err != nil {
		return err
	}

	sched.RunOnce()
	sched.Start()

	<-ctx.Done()
	logger.Info("stopping worker")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(stopCtx)
	return nil
}
