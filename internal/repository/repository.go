package repository

import (
	"gorm.io/gorm"

	"breakout-trading/config"
	"breakout-trading/pkg/cache"
	"breakout-trading/pkg/logger"
)

type Repository struct {
	SignalRepo     SignalRepository
	PositionRepo   PositionRepository
	WatchlistRepo  WatchlistRepository
	LedgerRepo     LedgerRepository
	MarketDataRepo MarketDataRepository
	UnitOfWork     UnitOfWork
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		SignalRepo:     NewSignalRepository(db),
		PositionRepo:   NewPositionRepository(db),
		WatchlistRepo:  NewWatchlistRepository(db),
		LedgerRepo:     NewLedgerRepository(db),
		MarketDataRepo: NewMarketDataRepository(cfg, log, inmemoryCache),
		UnitOfWork:     NewUnitOfWork(db),
	}, nil
}
