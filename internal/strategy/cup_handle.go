package strategy

import (
	"breakout-trading/internal/dto"
)

const (
	cupRimTolerancePct  = 5.0
	cupMinDepthPct      = 12.0
	cupMaxDepthPct      = 33.0
	handleMaxAboveRim   = 1.02
)

// CupAndHandleClassifier requires a rounded base (two rims of similar
// height around a trough in the middle of the cup) followed by a short,
// shallow handle right before the breakout bar.
type CupAndHandleClassifier struct{}

func (CupAndHandleClassifier) Pattern() dto.Pattern {
	return dto.PatternCupAndHandle
}

func (CupAndHandleClassifier) MatchShape(window []dto.StockOHLCV, current dto.StockOHLCV) bool {
	if len(window) < 12 {
		return false
	}

	// Final quarter of the window forms the handle, the rest the cup.
	handleLen := len(window) / 4
	cup := window[:len(window)-handleLen]
	handle := window[len(window)-handleLen:]

	third := len(cup) / 3
	leftRim := maxHigh(cup[:third])
	rightRim := maxHigh(cup[len(cup)-third:])

	// Rims must sit at similar heights for a rounded base.
	higher, lower := leftRim, rightRim
	if rightRim > leftRim {
		higher, lower = rightRim, leftRim
	}
	if lower <= 0 || (higher-lower)/lower*100 > cupRimTolerancePct {
		return false
	}

	trough, troughIdx := minLowWithIndex(cup)
	rim := higher
	depthPct := (rim - trough) / rim * 100
	if depthPct < cupMinDepthPct || depthPct > cupMaxDepthPct {
		return false
	}

	// Trough belongs in the middle third of the cup.
	if troughIdx < third || troughIdx >= len(cup)-third {
		return false
	}

	// The handle drifts sideways: no new high past the right rim, and its
	// low stays in the upper half of the cup.
	if maxHigh(handle) > rightRim*handleMaxAboveRim {
		return false
	}
	handleLow, _ := minLowWithIndex(handle)
	midDepth := trough + (rim-trough)/2
	return handleLow >= midDepth
}

func maxHigh(bars []dto.StockOHLCV) float64 {
	var max float64
	for _, b := range bars {
		if b.High > max {
			max = b.High
		}
	}
	return max
}

func minLowWithIndex(bars []dto.StockOHLCV) (float64, int) {
	min := bars[0].Low
	idx := 0
	for i, b := range bars {
		if b.Low < min {
			min = b.Low
			idx = i
		}
	}
	return min, idx
}
