package infra

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"cryptodesk/internal/adapter/binance"
	"cryptodesk/internal/logger"
	"cryptodesk/internal/service"
	"cryptodesk/internal/usecase"
)

// Scheduler drives the periodic work: the market feed poll, the strategy
// engine pass, and the volatility sweep. The core imposes no timing
// requirements of its own; the cadence lives entirely here.
type Scheduler struct {
	cron       *cron.Cron
	feed       *binance.PriceFeed
	engine     *usecase.StrategyEngine
	volatility *service.VolatilityService
}

// NewScheduler creates a scheduler with second-level cron resolution.
func NewScheduler(feed *binance.PriceFeed, engine *usecase.StrategyEngine, volatility *service.VolatilityService) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		feed:       feed,
		engine:     engine,
		volatility: volatility,
	}
}

// Start registers the jobs and starts the cron loop. The feed runs every
// feedSeconds, the strategy pass every engineSeconds right after fresh
// prices, and the volatility sweep once a minute.
func (s *Scheduler) Start(feedSeconds, engineSeconds int) error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("*/%d * * * * *", feedSeconds), func() {
		if err := s.feed.Poll(context.Background()); err != nil {
			logger.Error("scheduled feed poll failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to register feed job: %w", err)
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("*/%d * * * * *", engineSeconds), func() {
		if err := s.engine.RunPass(context.Background()); err != nil {
			logger.Error("scheduled strategy pass failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to register strategy job: %w", err)
	}

	if _, err := s.cron.AddFunc("0 * * * * *", func() {
		if err := s.volatility.RunSweep(context.Background()); err != nil {
			logger.Error("scheduled volatility sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to register volatility job: %w", err)
	}

	s.cron.Start()
	logger.Info("scheduler started", "feed_seconds", feedSeconds, "engine_seconds", engineSeconds)
	return nil
}

// RunFeedNow triggers an immediate feed poll outside the schedule.
func (s *Scheduler) RunFeedNow(ctx context.Context) error {
	return s.feed.Poll(ctx)
}

// RunEngineNow triggers an immediate strategy pass outside the schedule.
func (s *Scheduler) RunEngineNow(ctx context.Context) error {
	return s.engine.RunPass(ctx)
}

// Stop stops the scheduler; running jobs finish their current invocation.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Info("scheduler stopped")
}
