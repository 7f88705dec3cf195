package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/pkg/cache"
	"breakout-trading/pkg/common"
	"breakout-trading/pkg/httpclient"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

type MarketDataRepository interface {
	GetBars(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error)
	GetQuote(ctx context.Context, ticker string) (*dto.StockQuote, error)
	GetProfile(ctx context.Context, ticker string) (*dto.StockProfile, error)
}

type marketDataRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	log            *logger.Logger
	inmemoryCache  cache.Cache
	requestLimiter *rate.Limiter
	mu             sync.Mutex
}

func NewMarketDataRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMin)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &marketDataRepository{
		httpClient:     httpclient.New(cfg.MarketData.BaseURL, cfg.MarketData.Timeout),
		cfg:            cfg,
		log:            log,
		inmemoryCache:  inmemoryCache,
		requestLimiter: requestLimiter,
	}
}

func (r *marketDataRepository) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.requestLimiter.Allow() {
		r.log.WarnContext(ctx, "Market data API request limit exceeded",
			logger.IntField("max_request_per_minute", r.cfg.MarketData.MaxRequestPerMin),
		)
	}
	return r.requestLimiter.Wait(ctx)
}

var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://finance.yahoo.com/",
}

func (r *marketDataRepository) GetBars(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	period1, period2 := r.mapRangeToUnix(param.Range)
	if period1 == 0 || period2 == 0 {
		return nil, fmt.Errorf("invalid range: %s", param.Range)
	}

	endpoint := "/v8/finance/chart/" + param.Ticker
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1),
		"period2":        fmt.Sprintf("%d", period2),
		"interval":       param.Interval,
		"includePrePost": "false",
		"events":         "div,split",
	}

	var chartResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, requestHeaders, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", param.Ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data api returned status %d for %s", resp.StatusCode, param.Ticker)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("market data api error for %s: %v", param.Ticker, chartResp.Chart.Error)
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", param.Ticker)
	}

	result := chartResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", param.Ticker)
	}

	quote := result.Indicators.Quote[0]

	var ohlcvData []dto.StockOHLCV
	for i, timestamp := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}

		// A zero in any field marks a missing row in the feed.
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 ||
			quote.Close[i] == 0 || quote.Volume[i] == 0 {
			continue
		}

		ohlcvData = append(ohlcvData, dto.StockOHLCV{
			Timestamp: timestamp,
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
			Volume:    quote.Volume[i],
		})
	}

	if len(ohlcvData) == 0 {
		return nil, fmt.Errorf("no valid OHLCV data found for symbol: %s", param.Ticker)
	}

	if err := ValidateBarSeries(ohlcvData); err != nil {
		return nil, fmt.Errorf("rejecting bar series for %s: %w", param.Ticker, err)
	}

	marketPrice := result.Meta.RegularMarketPrice

	return &dto.StockData{
		MarketPrice: marketPrice,
		OHLCV:       ohlcvData,
		Range:       param.Range,
		Interval:    param.Interval,
	}, nil
}

func (r *marketDataRepository) GetQuote(ctx context.Context, ticker string) (*dto.StockQuote, error) {
	key := fmt.Sprintf(common.KEY_LAST_QUOTE, ticker)
	if cached, ok := cache.GetFromCache[*dto.StockQuote](r.inmemoryCache, key); ok {
		return cached, nil
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/v8/finance/chart/" + ticker
	queryParams := map[string]string{
		"range":          "1d",
		"interval":       "1d",
		"includePrePost": "false",
	}

	var chartResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, requestHeaders, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data api returned status %d for %s", resp.StatusCode, ticker)
	}

	if chartResp.Chart.Error != nil || len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no quote returned for symbol: %s", ticker)
	}

	meta := chartResp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("stale quote for symbol: %s", ticker)
	}

	dayLow := meta.RegularMarketDayLow
	if dayLow <= 0 {
		dayLow = meta.RegularMarketPrice
	}

	stockQuote := &dto.StockQuote{
		Ticker:      ticker,
		MarketPrice: meta.RegularMarketPrice,
		DayLow:      dayLow,
	}
	r.inmemoryCache.Set(key, stockQuote, 1*time.Minute)
	return stockQuote, nil
}

func (r *marketDataRepository) GetProfile(ctx context.Context, ticker string) (*dto.StockProfile, error) {
	key := fmt.Sprintf(common.KEY_STOCK_PROFILE, ticker)
	if cached, ok := cache.GetFromCache[*dto.StockProfile](r.inmemoryCache, key); ok {
		return cached, nil
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/v7/finance/quote"
	queryParams := map[string]string{
		"symbols": ticker,
	}

	var quoteResp dto.YahooQuoteResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, requestHeaders, &quoteResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data api returned status %d for %s", resp.StatusCode, ticker)
	}

	if quoteResp.QuoteResponse.Error != nil || len(quoteResp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no profile returned for symbol: %s", ticker)
	}

	result := quoteResp.QuoteResponse.Result[0]
	profile := &dto.StockProfile{
		Ticker:    ticker,
		MarketCap: result.MarketCap,
		Price:     result.RegularMarketPrice,
		AvgVolume: float64(result.AverageDailyVolume3Month),
	}

	r.inmemoryCache.Set(key, profile, r.cfg.Screener.ProfileCacheDuration)
	return profile, nil
}

func (r *marketDataRepository) mapRangeToUnix(rng string) (int64, int64) {
	now := utils.TimeNowET()
	switch rng {
	case "5d":
		return now.AddDate(0, 0, -5).Unix(), now.Unix()
	case "1m":
		return now.AddDate(0, 0, -30).Unix(), now.Unix()
	case "3m":
		return now.AddDate(0, 0, -90).Unix(), now.Unix()
	case "6m":
		return now.AddDate(0, 0, -180).Unix(), now.Unix()
	case "1y":
		return now.AddDate(0, 0, -365).Unix(), now.Unix()
	default:
		return 0, 0
	}
}

// ValidateBarSeries rejects malformed series at the boundary: non-positive
// prices, negative volume, high below low, or non-ascending timestamps.
func ValidateBarSeries(bars []dto.StockOHLCV) error {
	if !sort.SliceIsSorted(bars, func(i, j int) bool {
		return bars[i].Timestamp < bars[j].Timestamp
	}) {
		return fmt.Errorf("%w: timestamps not ascending", dto.ErrMalformedBars)
	}

	for _, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("%w: non-positive price", dto.ErrMalformedBars)
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: negative volume", dto.ErrMalformedBars)
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: high below low", dto.ErrMalformedBars)
		}
	}
	return nil
}
