package strategy

import (
	"breakout-trading/internal/dto"
)

const (
	baseMaxRangePct      = 15.0
	baseRecentBars       = 5
	baseRecentMaxSpanPct = 3.0
)

// BaseBreakoutClassifier requires a tight sideways consolidation: the whole
// window trades in a narrow range and the closes right before the breakout
// bar are packed even tighter.
type BaseBreakoutClassifier struct{}

func (BaseBreakoutClassifier) Pattern() dto.Pattern {
	return dto.PatternBaseBreakout
}

func (BaseBreakoutClassifier) MatchShape(window []dto.StockOHLCV, current dto.StockOHLCV) bool {
	if len(window) < baseRecentBars {
		return false
	}

	high := maxHigh(window)
	low, _ := minLowWithIndex(window)
	if low <= 0 || (high-low)/low*100 > baseMaxRangePct {
		return false
	}

	recent := window[len(window)-baseRecentBars:]
	minClose, maxClose := recent[0].Close, recent[0].Close
	for _, b := range recent {
		if b.Close < minClose {
			minClose = b.Close
		}
		if b.Close > maxClose {
			maxClose = b.Close
		}
	}
	return (maxClose-minClose)/minClose*100 <= baseRecentMaxSpanPct
}
