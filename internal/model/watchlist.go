package model

import (
	"time"

	"breakout-trading/internal/dto"
)

// WatchlistEntry is one scannable ticker. Fixed entries are seeded from the
// curated sector map and never expire; dynamic entries are replaced
// wholesale on every screener run.
type WatchlistEntry struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	Ticker    string              `gorm:"not null;uniqueIndex:idx_watchlist_ticker_origin" json:"ticker"`
	Origin    dto.WatchlistOrigin `gorm:"not null;uniqueIndex:idx_watchlist_ticker_origin;index" json:"origin"`
	Market    string              `gorm:"not null" json:"market"`
	Sector    *string             `json:"sector"`
	Score     float64             `gorm:"not null;default:0" json:"score"`
	MarketCap float64             `gorm:"not null;default:0" json:"market_cap"`
	LastPrice float64             `gorm:"not null;default:0" json:"last_price"`
	AvgVolume float64             `gorm:"not null;default:0" json:"avg_volume"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}
