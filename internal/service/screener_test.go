package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/logger"
)

type fakeWatchlistRepo struct {
	dynamic []model.WatchlistEntry
}

func (f *fakeWatchlistRepo) ReplaceDynamic(ctx context.Context, entries []model.WatchlistEntry) error {
	f.dynamic = entries
	return nil
}

func (f *fakeWatchlistRepo) EnsureFixed(ctx context.Context) error { return nil }

func (f *fakeWatchlistRepo) GetByOrigin(ctx context.Context, origin dto.WatchlistOrigin) ([]model.WatchlistEntry, error) {
	if origin == dto.OriginDynamic {
		return f.dynamic, nil
	}
	return nil, nil
}

func (f *fakeWatchlistRepo) GetScanSet(ctx context.Context) ([]model.WatchlistEntry, error) {
	return f.dynamic, nil
}

func (f *fakeWatchlistRepo) DynamicUpdatedAt(ctx context.Context) (*time.Time, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	fakeMarketDataRepo
	profiles map[string]*dto.StockProfile
}

func (f *fakeProfileRepo) GetProfile(ctx context.Context, ticker string) (*dto.StockProfile, error) {
	profile, ok := f.profiles[ticker]
	if !ok {
		return nil, assert.AnError
	}
	return profile, nil
}

func screenerConfig() *config.Config {
	return &config.Config{
		Screener: config.Screener{
			MinMarketCap:   500_000_000,
			MinPrice:       5.0,
			MinAvgVolume:   50_000,
			MaxStocks:      2,
			MaxConcurrency: 2,
		},
	}
}

func TestUniverseScreener_Refresh(t *testing.T) {
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	marketDataRepo := &fakeProfileRepo{profiles: map[string]*dto.StockProfile{
		// Qualifies with the highest dollar volume.
		"AAPL": {Ticker: "AAPL", MarketCap: 3e12, Price: 200, AvgVolume: 60_000_000},
		// Qualifies, mid rank.
		"MSFT": {Ticker: "MSFT", MarketCap: 3e12, Price: 400, AvgVolume: 20_000_000},
		// Qualifies but ranks below the cap of two.
		"KO": {Ticker: "KO", MarketCap: 250e9, Price: 60, AvgVolume: 10_000_000},
		// Fails the price floor.
		"LCID": {Ticker: "LCID", MarketCap: 8e9, Price: 4.50, AvgVolume: 30_000_000},
		// Fails the market cap floor.
		"WBA": {Ticker: "WBA", MarketCap: 100e6, Price: 25, AvgVolume: 500_000},
		// Fails the volume floor.
		"PARA": {Ticker: "PARA", MarketCap: 1e9, Price: 50, AvgVolume: 10_000},
	}}
	watchlistRepo := &fakeWatchlistRepo{}

	screener := NewUniverseScreenerService(screenerConfig(), log, marketDataRepo, watchlistRepo)

	result, err := screener.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Selected)
	// Everything except the three qualifiers is skipped, whether it failed
	// a filter or had no profile at all.
	assert.Equal(t, result.Candidates-3, result.Skipped)

	require.Len(t, watchlistRepo.dynamic, 2)
	assert.Equal(t, "AAPL", watchlistRepo.dynamic[0].Ticker)
	assert.Equal(t, "MSFT", watchlistRepo.dynamic[1].Ticker)
	for _, entry := range watchlistRepo.dynamic {
		assert.Equal(t, dto.OriginDynamic, entry.Origin)
		assert.Greater(t, entry.Score, 0.0)
	}
}

func TestUniverseScreener_Refresh_AllProfilesFailing(t *testing.T) {
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	watchlistRepo := &fakeWatchlistRepo{
		dynamic: []model.WatchlistEntry{{Ticker: "AAPL", Origin: dto.OriginDynamic}},
	}
	screener := NewUniverseScreenerService(screenerConfig(), log, &fakeProfileRepo{profiles: nil}, watchlistRepo)

	result, err := screener.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Selected)
	// The refresh still replaces the previous run: an empty screen yields
	// an empty dynamic list.
	assert.Empty(t, watchlistRepo.dynamic)
}
