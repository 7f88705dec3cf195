package dto

import "time"

type GetSignalsParam struct {
	Date *time.Time `json:"date"`
	Days *int       `json:"days"`
}

type SignalItem struct {
	Ticker          string  `json:"ticker"`
	Market          string  `json:"market"`
	Pattern         Pattern `json:"pattern"`
	Source          string  `json:"source"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Price           float64 `json:"price"`
	VolumeSurgePct  float64 `json:"volume_surge_pct"`
	BreakoutPct     float64 `json:"breakout_pct"`
	ResistanceLevel float64 `json:"resistance_level"`
}

type SignalsResponse struct {
	Date     string       `json:"date,omitempty"`
	Days     int          `json:"days,omitempty"`
	Count    int          `json:"count"`
	Signals  []SignalItem `json:"signals"`
	LastScan *time.Time   `json:"last_scan"`
}

type WatchlistGroup struct {
	Total     int                 `json:"total"`
	BySector  map[string][]string `json:"by_sector,omitempty"`
	All       []string            `json:"all"`
	UpdatedAt *time.Time          `json:"updated_at,omitempty"`
}

type WatchlistResponse struct {
	Fixed   WatchlistGroup `json:"fixed"`
	Dynamic WatchlistGroup `json:"dynamic"`
	Total   int            `json:"total"`
}

type OpenPositionItem struct {
	ID               uint     `json:"id"`
	Ticker           string   `json:"ticker"`
	Market           string   `json:"market"`
	Pattern          Pattern  `json:"pattern"`
	Source           string   `json:"source"`
	EntryDate        string   `json:"entry_date"`
	EntryPrice       float64  `json:"entry_price"`
	Quantity         int64    `json:"quantity"`
	InvestmentAmount float64  `json:"investment_amount"`
	StopLossPrice    float64  `json:"stop_loss_price"`
	TakeProfitPrice  float64  `json:"take_profit_price"`
	CurrentPrice     *float64 `json:"current_price"`
	CurrentValue     float64  `json:"current_value"`
	PnLAmount        float64  `json:"pnl_amount"`
	PnLPct           *float64 `json:"pnl_pct"`
	HoldingDays      int      `json:"holding_days"`
}

type OpenPositionsResponse struct {
	Count            int                `json:"count"`
	Winning          int                `json:"winning"`
	Losing           int                `json:"losing"`
	TotalInvested    float64            `json:"total_invested"`
	TotalValue       float64            `json:"total_value"`
	TotalPnLAmount   float64            `json:"total_pnl_amount"`
	TotalPnLPct      float64            `json:"total_pnl_pct"`
	AvailableCapital float64            `json:"available_capital"`
	Positions        []OpenPositionItem `json:"positions"`
}

type ClosedTradeItem struct {
	ID          uint       `json:"id"`
	Ticker      string     `json:"ticker"`
	Market      string     `json:"market"`
	Pattern     Pattern    `json:"pattern"`
	Source      string     `json:"source"`
	EntryDate   string     `json:"entry_date"`
	EntryPrice  float64    `json:"entry_price"`
	ExitDate    string     `json:"exit_date"`
	ExitPrice   float64    `json:"exit_price"`
	ExitReason  ExitReason `json:"exit_reason"`
	PnLAmount   float64    `json:"pnl_amount"`
	PnLPct      float64    `json:"pnl_pct"`
	HoldingDays int        `json:"holding_days"`
}

type ClosedTradesResponse struct {
	Count  int               `json:"count"`
	Trades []ClosedTradeItem `json:"trades"`
}

type TradingStatsResponse struct {
	StartDate     string  `json:"start_date,omitempty"`
	TradingDays   int     `json:"trading_days"`
	OpenPositions int     `json:"open_positions"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgProfitPct  float64 `json:"avg_profit_pct"`
	AvgWinPct     float64 `json:"avg_win_pct"`
	AvgLossPct    float64 `json:"avg_loss_pct"`
	MaxProfitPct  float64 `json:"max_profit_pct"`
	MaxLossPct    float64 `json:"max_loss_pct"`
	TotalPnLPct   float64 `json:"total_pnl_pct"`
}

type MonthlyPerformance struct {
	Month          string  `json:"month"`
	Trades         int     `json:"trades"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"win_rate"`
	TotalProfitPct float64 `json:"total_profit_pct"`
	AvgProfitPct   float64 `json:"avg_profit_pct"`
}

type MonthlyPerformanceResponse struct {
	Count   int                  `json:"count"`
	Monthly []MonthlyPerformance `json:"monthly"`
}

type ScreenerResult struct {
	Candidates int       `json:"candidates"`
	Selected   int       `json:"selected"`
	Skipped    int       `json:"skipped"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ScanSummary struct {
	Scanned    int        `json:"scanned"`
	Skipped    int        `json:"skipped"`
	Errors     int        `json:"errors"`
	Signals    int        `json:"signals"`
	Duplicates int        `json:"duplicates"`
	ScannedAt  time.Time  `json:"scanned_at"`
}

type ScannerStatusResponse struct {
	SessionPhase SessionPhase `json:"session_phase"`
	LastScan     *time.Time   `json:"last_scan"`
	LastSummary  *ScanSummary `json:"last_summary,omitempty"`
}
