package strategy

import (
	"breakout-trading/internal/dto"
)

// PivotBreakoutClassifier fires on any gated move above the rolling-window
// high. The gate is the whole pattern: no additional shape constraint.
type PivotBreakoutClassifier struct{}

func (PivotBreakoutClassifier) Pattern() dto.Pattern {
	return dto.PatternPivotBreakout
}

func (PivotBreakoutClassifier) MatchShape(window []dto.StockOHLCV, current dto.StockOHLCV) bool {
	return true
}
