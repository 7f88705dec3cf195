package service

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/internal/repository"
	"breakout-trading/pkg/common"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

// UniverseScreenerService rebuilds the dynamic watchlist from the index
// universe. Each refresh fully supersedes the previous dynamic list.
type UniverseScreenerService interface {
	Refresh(ctx context.Context) (*dto.ScreenerResult, error)
}

type screenerService struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	watchlistRepo  repository.WatchlistRepository
}

func NewUniverseScreenerService(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	watchlistRepo repository.WatchlistRepository,
) UniverseScreenerService {
	return &screenerService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		watchlistRepo:  watchlistRepo,
	}
}

func (s *screenerService) Refresh(ctx context.Context) (*dto.ScreenerResult, error) {
	candidates := dto.CandidateUniverse()

	s.log.InfoContext(ctx, "Starting universe screening",
		logger.IntField("candidates", len(candidates)),
		logger.IntField("max_stocks", s.cfg.Screener.MaxStocks),
	)

	var (
		mu        sync.Mutex
		qualified []model.WatchlistEntry
		skipped   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Screener.MaxConcurrency)

	for _, ticker := range candidates {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		ticker := ticker
		g.Go(func() error {
			profile, err := s.marketDataRepo.GetProfile(gctx, ticker)
			if err != nil {
				// Fetch failures only drop the candidate for this run.
				s.log.DebugContext(gctx, "Skipping candidate, profile unavailable",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err),
				)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			if profile.MarketCap < s.cfg.Screener.MinMarketCap ||
				profile.Price < s.cfg.Screener.MinPrice ||
				profile.AvgVolume < s.cfg.Screener.MinAvgVolume {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			entry := model.WatchlistEntry{
				Ticker:    ticker,
				Origin:    dto.OriginDynamic,
				Market:    common.MARKET_US,
				Score:     profile.AvgVolume * profile.Price,
				MarketCap: profile.MarketCap,
				LastPrice: profile.Price,
				AvgVolume: profile.AvgVolume,
			}

			mu.Lock()
			qualified = append(qualified, entry)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic liquidity rank: dollar volume, then market cap, then
	// ticker as the final tiebreak.
	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Score != qualified[j].Score {
			return qualified[i].Score > qualified[j].Score
		}
		if qualified[i].MarketCap != qualified[j].MarketCap {
			return qualified[i].MarketCap > qualified[j].MarketCap
		}
		return qualified[i].Ticker < qualified[j].Ticker
	})

	if len(qualified) > s.cfg.Screener.MaxStocks {
		qualified = qualified[:s.cfg.Screener.MaxStocks]
	}

	if err := s.watchlistRepo.ReplaceDynamic(ctx, qualified); err != nil {
		return nil, err
	}

	result := &dto.ScreenerResult{
		Candidates: len(candidates),
		Selected:   len(qualified),
		Skipped:    skipped,
		UpdatedAt:  utils.TimeNowET(),
	}

	s.log.InfoContext(ctx, "Universe screening completed",
		logger.IntField("selected", result.Selected),
		logger.IntField("skipped", result.Skipped),
	)

	return result, nil
}
