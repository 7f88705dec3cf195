package model

import (
	"time"

	"gorm.io/datatypes"

	"breakout-trading/internal/dto"
)

// Position is one paper-trading position. SignalID is unique so a signal
// can never spawn a second position, even across overlapping runs. Exit
// fields stay null while the position is open; once closed the row is
// immutable.
type Position struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	SignalID         uint                `gorm:"not null;uniqueIndex" json:"signal_id"`
	Ticker           string              `gorm:"not null;index" json:"ticker"`
	Market           string              `gorm:"not null" json:"market"`
	Pattern          dto.Pattern         `gorm:"not null" json:"pattern"`
	Source           dto.WatchlistOrigin `gorm:"not null" json:"source"`
	Status           dto.PositionStatus  `gorm:"not null;index" json:"status"`
	EntryDate        time.Time           `gorm:"not null" json:"entry_date"`
	EntryPrice       float64             `gorm:"not null" json:"entry_price"`
	Quantity         int64               `gorm:"not null" json:"quantity"`
	InvestmentAmount float64             `gorm:"not null" json:"investment_amount"`
	StopLossPrice    float64             `gorm:"not null" json:"stop_loss_price"`
	TakeProfitPrice  float64             `gorm:"not null" json:"take_profit_price"`
	ExitDate         *time.Time          `json:"exit_date"`
	ExitPrice        *float64            `json:"exit_price"`
	ExitReason       *dto.ExitReason     `json:"exit_reason"`
	PnLAmount        *float64            `gorm:"column:pnl_amount" json:"pnl_amount"`
	PnLPct           *float64            `gorm:"column:pnl_pct" json:"pnl_pct"`
	HoldingDays      *int                `json:"holding_days"`
	Meta             datatypes.JSON      `gorm:"type:jsonb" json:"meta"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

type GetPositionsParam struct {
	IDs       []uint              `json:"ids"`
	Tickers   []string            `json:"tickers"`
	SignalIDs []uint              `json:"signal_ids"`
	Status    *dto.PositionStatus `json:"status"`
	Limit     *int                `json:"limit"`
}

// ClosedTradeStats is the aggregate projection over closed positions.
type ClosedTradeStats struct {
	TotalTrades  int     `json:"total_trades"`
	WinCount     int     `json:"win_count"`
	LossCount    int     `json:"loss_count"`
	AvgProfitPct float64 `json:"avg_profit_pct"`
	AvgWinPct    float64 `json:"avg_win_pct"`
	AvgLossPct   float64 `json:"avg_loss_pct"`
	MaxProfitPct float64 `json:"max_profit_pct"`
	MaxLossPct   float64 `json:"max_loss_pct"`
	TotalPnLPct  float64 `gorm:"column:total_pnl_pct" json:"total_pnl_pct"`
}

// MonthlyTradeStats is one month of the closed-trade rollup.
type MonthlyTradeStats struct {
	Month          string  `json:"month"`
	Trades         int     `json:"trades"`
	Wins           int     `json:"wins"`
	TotalProfitPct float64 `json:"total_profit_pct"`
	AvgProfitPct   float64 `json:"avg_profit_pct"`
}
