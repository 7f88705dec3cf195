package dto

type StockOHLCV struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

type StockData struct {
	MarketPrice float64      `json:"market_price"`
	Range       string       `json:"range"`
	Interval    string       `json:"interval"`
	OHLCV       []StockOHLCV `json:"ohlcv"`
}

type GetStockDataParam struct {
	Ticker   string `json:"ticker"`
	Range    string `json:"range"`
	Interval string `json:"interval"`
}

// StockQuote carries the latest session snapshot used for repricing open
// positions. DayLow backs the intraday stop-loss check.
type StockQuote struct {
	Ticker      string  `json:"ticker"`
	MarketPrice float64 `json:"market_price"`
	DayLow      float64 `json:"day_low"`
}

// StockProfile carries the fundamentals used by the universe screener.
type StockProfile struct {
	Ticker    string  `json:"ticker"`
	MarketCap float64 `json:"market_cap"`
	Price     float64 `json:"price"`
	AvgVolume float64 `json:"avg_volume"`
}

// Yahoo Finance chart API response.
type YahooFinanceResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketDayLow float64 `json:"regularMarketDayLow"`
				MarketCap          float64 `json:"marketCap"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// Yahoo Finance quote API response (v7/finance/quote).
type YahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			AverageDailyVolume3Month   int64   `json:"averageDailyVolume3Month"`
			MarketCap                  float64 `json:"marketCap"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteResponse"`
}
