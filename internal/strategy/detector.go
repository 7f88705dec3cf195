package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/internal/repository"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

// Detector evaluates the latest bar of every watchlist ticker against its
// trailing window and yields breakout signals. It never writes: the scan
// service owns persistence and the authoritative dedup.
type Detector struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	signalRepo     repository.SignalRepository
	classifiers    []PatternClassifier
}

func NewDetector(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	signalRepo repository.SignalRepository,
) *Detector {
	return &Detector{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		signalRepo:     signalRepo,
		classifiers:    DefaultClassifiers(),
	}
}

// Evaluate runs the classifiers against one ticker's bar series. A nil
// signal with a nil error means no pattern fired.
func (d *Detector) Evaluate(entry model.WatchlistEntry, bars []dto.StockOHLCV) (*model.Signal, error) {
	windowSize := d.cfg.Detector.WindowSize
	if len(bars) < windowSize+1 {
		return nil, fmt.Errorf("%w: have %d bars, need %d", dto.ErrInsufficientHistory, len(bars), windowSize+1)
	}

	current := bars[len(bars)-1]
	window := bars[len(bars)-1-windowSize : len(bars)-1]

	metrics := ComputeBreakoutMetrics(window, current)
	if !metrics.Gate(current, d.cfg.Detector.MinVolumeSurge, d.cfg.Detector.MaxBreakoutPct) {
		return nil, nil
	}

	for _, classifier := range d.classifiers {
		if !classifier.MatchShape(window, current) {
			continue
		}

		meta, _ := json.Marshal(map[string]interface{}{
			"window_size": windowSize,
			"avg_volume":  metrics.AvgVolume,
		})

		return &model.Signal{
			Ticker:          entry.Ticker,
			Market:          entry.Market,
			Pattern:         classifier.Pattern(),
			Source:          entry.Origin,
			AlertDate:       utils.DateOnly(utils.TimeNowET()),
			AlertPrice:      utils.RoundTo(current.Close, 2),
			VolumeSurgePct:  utils.RoundTo(metrics.VolumeSurgePct, 2),
			BreakoutPct:     utils.RoundTo(metrics.BreakoutPct, 2),
			ResistanceLevel: utils.RoundTo(metrics.Pivot, 2),
			Meta:            meta,
		}, nil
	}

	return nil, nil
}

// Scan walks the watchlist on a bounded worker pool. Per-ticker failures
// are counted and skipped; they never abort the pass.
func (d *Detector) Scan(ctx context.Context, entries []model.WatchlistEntry) ([]model.Signal, dto.ScanSummary) {
	var (
		mu      sync.Mutex
		signals []model.Signal
		summary dto.ScanSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Detector.MaxConcurrency)

	for _, entry := range entries {
		if !utils.ShouldContinue(ctx, d.log) {
			break
		}

		entry := entry
		g.Go(func() error {
			// Skip tickers that already alerted today before spending a
			// market-data call on them.
			exists, err := d.signalRepo.HasSignalOn(gctx, entry.Ticker, utils.TimeNowET())
			if err == nil && exists {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			bars, err := d.marketDataRepo.GetBars(gctx, dto.GetStockDataParam{
				Ticker:   entry.Ticker,
				Range:    d.cfg.MarketData.BarRange,
				Interval: d.cfg.MarketData.BarInterval,
			})
			if err != nil {
				d.log.WarnContext(gctx, "Skipping ticker, bars unavailable",
					logger.StringField("ticker", entry.Ticker),
					logger.ErrorField(err),
				)
				mu.Lock()
				summary.Errors++
				mu.Unlock()
				return nil
			}

			signal, err := d.Evaluate(entry, bars.OHLCV)
			if err != nil {
				d.log.DebugContext(gctx, "Skipping ticker",
					logger.StringField("ticker", entry.Ticker),
					logger.ErrorField(err),
				)
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			summary.Scanned++
			if signal != nil {
				signals = append(signals, *signal)
				summary.Signals++
			}
			mu.Unlock()

			if signal != nil {
				d.log.InfoContext(gctx, "Breakout signal detected",
					logger.StringField("ticker", signal.Ticker),
					logger.StringField("pattern", string(signal.Pattern)),
					logger.Float64Field("price", signal.AlertPrice),
					logger.Float64Field("breakout_pct", signal.BreakoutPct),
					logger.Float64Field("volume_surge_pct", signal.VolumeSurgePct),
				)
			}
			return nil
		})
	}

	_ = g.Wait()
	summary.ScannedAt = utils.TimeNowET()
	return signals, summary
}
