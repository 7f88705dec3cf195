package service

import (
	"context"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/repository"
	"breakout-trading/internal/strategy"
	"breakout-trading/pkg/cache"
	"breakout-trading/pkg/common"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

// ScannerService runs the breakout pass over the scan set and turns stored
// signals into paper positions.
type ScannerService interface {
	// RunScan scans the full watchlist. Outside regular trading hours it
	// is a no-op unless force is set.
	RunScan(ctx context.Context, force bool) (*dto.ScanSummary, error)
	Status(ctx context.Context) (*dto.ScannerStatusResponse, error)
}

type scannerService struct {
	cfg             *config.Config
	log             *logger.Logger
	inmemoryCache   cache.Cache
	detector        *strategy.Detector
	signalRepo      repository.SignalRepository
	watchlistRepo   repository.WatchlistRepository
	marketStatus    MarketStatusService
	positionManager PositionManagerService
}

func NewScannerService(
	cfg *config.Config,
	log *logger.Logger,
	inmemoryCache cache.Cache,
	detector *strategy.Detector,
	signalRepo repository.SignalRepository,
	watchlistRepo repository.WatchlistRepository,
	marketStatus MarketStatusService,
	positionManager PositionManagerService,
) ScannerService {
	return &scannerService{
		cfg:             cfg,
		log:             log,
		inmemoryCache:   inmemoryCache,
		detector:        detector,
		signalRepo:      signalRepo,
		watchlistRepo:   watchlistRepo,
		marketStatus:    marketStatus,
		positionManager: positionManager,
	}
}

func (s *scannerService) RunScan(ctx context.Context, force bool) (*dto.ScanSummary, error) {
	phase := s.marketStatus.CurrentPhase()
	if phase != dto.SessionRegular && !force {
		s.log.InfoContext(ctx, "Skipping scan outside regular session",
			logger.StringField("session_phase", string(phase)),
		)
		return nil, nil
	}

	entries, err := s.watchlistRepo.GetScanSet(ctx)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Starting breakout scan",
		logger.IntField("tickers", len(entries)),
		logger.StringField("session_phase", string(phase)),
	)

	signals, summary := s.detector.Scan(ctx, entries)

	for i := range signals {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		signal := &signals[i]

		stored, err := s.signalRepo.Append(ctx, signal)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to store signal",
				logger.StringField("ticker", signal.Ticker),
				logger.ErrorField(err),
			)
			summary.Errors++
			continue
		}
		if !stored {
			summary.Duplicates++
			summary.Signals--
			continue
		}

		if _, err := s.positionManager.OpenFromSignal(ctx, signal); err != nil {
			s.log.ErrorContext(ctx, "Failed to open position from signal",
				logger.StringField("ticker", signal.Ticker),
				logger.ErrorField(err),
			)
			return &summary, err
		}
	}

	s.inmemoryCache.Set(common.KEY_LAST_SCAN_AT, summary, s.cfg.Cache.DefaultExpiration)

	s.log.InfoContext(ctx, "Breakout scan finished",
		logger.IntField("scanned", summary.Scanned),
		logger.IntField("signals", summary.Signals),
		logger.IntField("duplicates", summary.Duplicates),
		logger.IntField("skipped", summary.Skipped),
		logger.IntField("errors", summary.Errors),
	)
	return &summary, nil
}

func (s *scannerService) Status(ctx context.Context) (*dto.ScannerStatusResponse, error) {
	lastScan, err := s.signalRepo.LastScanAt(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScannerStatusResponse{
		SessionPhase: s.marketStatus.CurrentPhase(),
		LastScan:     lastScan,
	}
	if summary, ok := cache.GetFromCache[dto.ScanSummary](s.inmemoryCache, common.KEY_LAST_SCAN_AT); ok {
		resp.LastSummary = &summary
	}
	return resp, nil
}
