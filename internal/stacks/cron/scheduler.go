package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Warmer refreshes the cached stack listings.
type Warmer interface {
	WarmCache(ctx context.Context) error
}

// Scheduler runs cache warming on a cron schedule with seconds precision.
type Scheduler struct {
	cron    *cron.Cron
	warmer  Warmer
	logger  *zap.Logger
	timeout time.Duration
}

// NewScheduler registers the warm job on schedule, e.g. "0 */5 * * * *".
func NewScheduler(schedule string, warmer Warmer, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		warmer:  warmer,
		logger:  logger,
		timeout: time.Minute,
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.logger.Info("cache warm scheduler started")
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce warms the cache now.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.warmer.WarmCache(ctx); err != nil {
		s.logger.Error("cache warm failed", zap.Error(err))
		return
	}
	s.logger.Info("cache warmed", zap.Duration("took", time.Since(start)))
}
