package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

const (
	JobNameScreener = "screener"
	JobNameScan     = "scan"
	JobNameTick     = "tick"
	JobNameCloseAll = "close_all"
)

// SchedulerService drives the recurring jobs: the pre-market universe
// refresh, the intraday breakout scan, and the position tick. Cadences
// come from config cron expressions evaluated in the exchange timezone;
// each job additionally checks the session phase so a stray trigger on a
// holiday or after hours stays a no-op.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	// RunJob triggers one job by name outside its schedule. Session-phase
	// gating is bypassed for manual runs.
	RunJob(ctx context.Context, name string) error
}

type schedulerService struct {
	cfg             *config.Config
	log             *logger.Logger
	cron            *cron.Cron
	screener        UniverseScreenerService
	scanner         ScannerService
	positionManager PositionManagerService
	marketStatus    MarketStatusService
	semaphore       chan struct{}
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	screener UniverseScreenerService,
	scanner ScannerService,
	positionManager PositionManagerService,
	marketStatus MarketStatusService,
) (*schedulerService, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone: %w", err)
	}

	return &schedulerService{
		cfg:             cfg,
		log:             log,
		cron:            cron.New(cron.WithLocation(loc)),
		screener:        screener,
		scanner:         scanner,
		positionManager: positionManager,
		marketStatus:    marketStatus,
		semaphore:       make(chan struct{}, cfg.Scheduler.MaxConcurrency),
	}, nil
}

func (s *schedulerService) Start(ctx context.Context) error {
	entries := []struct {
		name string
		expr string
		fn   func(ctx context.Context) error
	}{
		{JobNameScreener, s.cfg.Screener.CronExpression, s.runScreener},
		{JobNameScan, s.cfg.Detector.CronExpression, s.runScan},
		{JobNameTick, s.cfg.Trading.TickCronExpression, s.runTick},
	}

	for _, entry := range entries {
		entry := entry
		if _, err := s.cron.AddFunc(entry.expr, func() {
			s.executeJob(entry.name, entry.fn)
		}); err != nil {
			return fmt.Errorf("failed to register job %s: %w", entry.name, err)
		}
		s.log.InfoContext(ctx, "Registered scheduled job",
			logger.StringField("job", entry.name),
			logger.StringField("cron", entry.expr),
		)
	}

	s.cron.Start()
	return nil
}

func (s *schedulerService) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.log.WarnContext(ctx, "Scheduler stop timed out with jobs still running")
	}
}

func (s *schedulerService) RunJob(ctx context.Context, name string) error {
	switch name {
	case JobNameScreener:
		_, err := s.screener.Refresh(ctx)
		return err
	case JobNameScan:
		_, err := s.scanner.RunScan(ctx, true)
		return err
	case JobNameTick:
		_, err := s.positionManager.Tick(ctx)
		return err
	case JobNameCloseAll:
		_, err := s.positionManager.CloseAll(ctx)
		return err
	default:
		return fmt.Errorf("unknown job: %s", name)
	}
}

// executeJob runs one scheduled trigger on the bounded worker pool with
// the configured timeout. A slow job never delays the next trigger of
// another job, and a panic inside a job never takes down the scheduler.
func (s *schedulerService) executeJob(name string, fn func(ctx context.Context) error) {
	s.log.Debug("Scheduled trigger fired",
		logger.StringField("job", name),
		logger.IntField("active_concurrency", len(s.semaphore)),
		logger.IntField("max_concurrency", cap(s.semaphore)),
	)

	s.semaphore <- struct{}{}
	utils.GoSafe(func() {
		defer func() {
			<-s.semaphore
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.log.ErrorContext(ctx, "Scheduled job failed",
				logger.StringField("job", name),
				logger.ErrorField(err),
			)
			return
		}
		s.log.InfoContext(ctx, "Scheduled job finished",
			logger.StringField("job", name),
			logger.StringField("duration", time.Since(start).Round(time.Millisecond).String()),
		)
	})
}

func (s *schedulerService) runScreener(ctx context.Context) error {
	// The universe refresh is scheduled pre-market; on weekends the phase
	// is closed and the run is skipped.
	if s.marketStatus.CurrentPhase() == dto.SessionClosed {
		s.log.InfoContext(ctx, "Skipping universe refresh, market closed")
		return nil
	}
	_, err := s.screener.Refresh(ctx)
	return err
}

func (s *schedulerService) runScan(ctx context.Context) error {
	summary, err := s.scanner.RunScan(ctx, false)
	if err != nil {
		return err
	}
	if summary == nil {
		return nil
	}

	// Reprice right after the scan so a just-opened position is checked
	// against the same session it entered in.
	if s.cfg.Trading.TickDelay > 0 {
		select {
		case <-time.After(s.cfg.Trading.TickDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	_, err = s.positionManager.Tick(ctx)
	return err
}

func (s *schedulerService) runTick(ctx context.Context) error {
	if s.marketStatus.CurrentPhase() != dto.SessionRegular {
		return nil
	}
	_, err := s.positionManager.Tick(ctx)
	return err
}
