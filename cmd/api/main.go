package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vibestack/vibestack-backend/config"
	"github.com/vibestack/vibestack-backend/internal/api/http/routes"
	"github.com/vibestack/vibestack-backend/internal/auth"
	"github.com/vibestack/vibestack-backend/internal/bootstrap"
	catalogrepo "github.com/vibestack/vibestack-backend/internal/catalog/repository"
	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/ratelimit"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
	"github.com/vibestack/vibestack-backend/internal/storage/postgres"
	"github.com/vibestack/vibestack-backend/internal/users"
)

const serviceName = "vibestack-api"

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

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, serving stack reads uncached", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	eng, err := engine.Load(cfg.Recommendation.BundlesPath)
	if err != nil {
		return err
	}

	var verifier auth.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		verifier = client
	} else if cfg.App.Environment == "production" {
		return errors.New("FIREBASE_CREDENTIALS_PATH is required in production")
	} else {
		logger.Warn("firebase not configured, trusting X-User-Id header")
	}

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	defer limiter.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		DB:             pool,
		Redis:          rdb,
		V1: routes.V1Deps{
			Engine:   eng,
			Tools:    catalogrepo.NewToolRepository(sqlDB),
			Stacks:   bootstrap.NewStackService(sqlDB, rdb, cfg.Cache.TTL),
			Users:    users.NewRepo(pool),
			Verifier: verifier,
			Limiter:  limiter,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("version", cfg.App.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
