package model

import (
	"time"

	"gorm.io/datatypes"

	"breakout-trading/internal/dto"
)

// Signal is a stored breakout alert. At most one row exists per
// (ticker, alert_date); rows are immutable once written.
type Signal struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Ticker          string              `gorm:"not null;uniqueIndex:idx_signals_ticker_date" json:"ticker"`
	AlertDate       time.Time           `gorm:"type:date;not null;uniqueIndex:idx_signals_ticker_date" json:"alert_date"`
	Market          string              `gorm:"not null" json:"market"`
	Pattern         dto.Pattern         `gorm:"not null" json:"pattern"`
	Source          dto.WatchlistOrigin `gorm:"not null" json:"source"`
	AlertPrice      float64             `gorm:"not null" json:"alert_price"`
	VolumeSurgePct  float64             `gorm:"not null" json:"volume_surge_pct"`
	BreakoutPct     float64             `gorm:"not null" json:"breakout_pct"`
	ResistanceLevel float64             `gorm:"not null" json:"resistance_level"`
	Meta            datatypes.JSON      `gorm:"type:jsonb" json:"meta"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (Signal) TableName() string {
	return "signals"
}
