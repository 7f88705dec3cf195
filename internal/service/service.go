package service

import (
	"breakout-trading/config"
	"breakout-trading/internal/repository"
	"breakout-trading/internal/strategy"
	"breakout-trading/pkg/cache"
	"breakout-trading/pkg/logger"
)

type Service struct {
	MarketStatusService    MarketStatusService
	UniverseScreener       UniverseScreenerService
	ScannerService         ScannerService
	SignalService          SignalService
	PositionManagerService PositionManagerService
	SchedulerService       SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) (*Service, error) {
	marketStatus, err := NewMarketStatusService(cfg)
	if err != nil {
		return nil, err
	}

	screener := NewUniverseScreenerService(cfg, log, repo.MarketDataRepo, repo.WatchlistRepo)
	positionManager := NewPositionManagerService(cfg, log, repo.PositionRepo, repo.LedgerRepo, repo.MarketDataRepo, repo.UnitOfWork)

	detector := strategy.NewDetector(cfg, log, repo.MarketDataRepo, repo.SignalRepo)
	scanner := NewScannerService(cfg, log, inmemoryCache, detector, repo.SignalRepo, repo.WatchlistRepo, marketStatus, positionManager)

	signalService := NewSignalService(log, repo.SignalRepo, repo.WatchlistRepo)

	scheduler, err := NewSchedulerService(cfg, log, screener, scanner, positionManager, marketStatus)
	if err != nil {
		return nil, err
	}

	return &Service{
		MarketStatusService:    marketStatus,
		UniverseScreener:       screener,
		ScannerService:         scanner,
		SignalService:          signalService,
		PositionManagerService: positionManager,
		SchedulerService:       scheduler,
	}, nil
}
