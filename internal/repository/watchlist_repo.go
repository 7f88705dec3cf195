package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/common"
)

type WatchlistRepository interface {
	// ReplaceDynamic wholesale-replaces the dynamic entries in one
	// transaction; no partial merge survives a failed run.
	ReplaceDynamic(ctx context.Context, entries []model.WatchlistEntry) error
	EnsureFixed(ctx context.Context) error
	GetByOrigin(ctx context.Context, origin dto.WatchlistOrigin) ([]model.WatchlistEntry, error)
	// GetScanSet returns the union of fixed and dynamic entries,
	// deduplicated by ticker. Fixed wins on overlap.
	GetScanSet(ctx context.Context) ([]model.WatchlistEntry, error)
	DynamicUpdatedAt(ctx context.Context) (*time.Time, error)
}

type watchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) ReplaceDynamic(ctx context.Context, entries []model.WatchlistEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("origin = ?", dto.OriginDynamic).
			Delete(&model.WatchlistEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *watchlistRepository) EnsureFixed(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("origin = ?", dto.OriginFixed).
			Delete(&model.WatchlistEntry{}).Error; err != nil {
			return err
		}

		entries := []model.WatchlistEntry{}
		for sector, tickers := range dto.FixedWatchlist {
			sector := sector
			for _, ticker := range tickers {
				entries = append(entries, model.WatchlistEntry{
					Ticker: ticker,
					Origin: dto.OriginFixed,
					Market: common.MARKET_US,
					Sector: &sector,
				})
			}
		}
		return tx.Create(&entries).Error
	})
}

func (r *watchlistRepository) GetByOrigin(ctx context.Context, origin dto.WatchlistOrigin) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("origin = ?", origin).
		Order("ticker ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepository) GetScanSet(ctx context.Context) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	// Fixed rows sort first so the ticker dedup below keeps them.
	err := r.db.WithContext(ctx).
		Order("origin DESC, ticker ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := make([]model.WatchlistEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Ticker]; ok {
			continue
		}
		seen[e.Ticker] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func (r *watchlistRepository) DynamicUpdatedAt(ctx context.Context) (*time.Time, error) {
	var updatedAt *time.Time
	err := r.db.WithContext(ctx).Model(&model.WatchlistEntry{}).
		Where("origin = ?", dto.OriginDynamic).
		Select("MAX(updated_at)").
		Scan(&updatedAt).Error
	if err != nil {
		return nil, err
	}
	return updatedAt, nil
}
