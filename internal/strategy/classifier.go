package strategy

import (
	"breakout-trading/internal/dto"
)

// BreakoutMetrics are the shared gating values computed over the trailing
// window. The window never includes the current bar: the pivot is the
// resistance the current bar is breaking, and the volume baseline is what
// the current volume surged against.
type BreakoutMetrics struct {
	Pivot          float64
	AvgVolume      float64
	VolumeSurgePct float64
	BreakoutPct    float64
}

func ComputeBreakoutMetrics(window []dto.StockOHLCV, current dto.StockOHLCV) BreakoutMetrics {
	var (
		pivot     float64
		volumeSum float64
	)
	for _, bar := range window {
		if bar.High > pivot {
			pivot = bar.High
		}
		volumeSum += float64(bar.Volume)
	}
	avgVolume := volumeSum / float64(len(window))

	var surge float64
	if avgVolume > 0 {
		surge = (float64(current.Volume)/avgVolume - 1) * 100
	}

	var breakoutPct float64
	if pivot > 0 {
		breakoutPct = (current.Close - pivot) / pivot * 100
	}

	return BreakoutMetrics{
		Pivot:          pivot,
		AvgVolume:      avgVolume,
		VolumeSurgePct: surge,
		BreakoutPct:    breakoutPct,
	}
}

// Gate applies the entry conditions shared by every pattern: the close must
// clear the pivot on surging volume, and the breakout must still be inside
// the allowed band. The upper bound excludes chase-buys far past the pivot,
// which the stop-loss sizing assumes.
func (m BreakoutMetrics) Gate(current dto.StockOHLCV, minVolumeSurge, maxBreakoutPct float64) bool {
	if current.Close <= m.Pivot {
		return false
	}
	if m.VolumeSurgePct < minVolumeSurge {
		return false
	}
	return m.BreakoutPct >= 0 && m.BreakoutPct <= maxBreakoutPct
}

// PatternClassifier is one breakout shape. All classifiers share the
// metrics gate above and differ only in the geometric test over the
// high/low sequence of the window.
type PatternClassifier interface {
	Pattern() dto.Pattern
	MatchShape(window []dto.StockOHLCV, current dto.StockOHLCV) bool
}

// DefaultClassifiers returns the classifiers in evaluation priority order;
// the first match wins, so a ticker yields at most one pattern per scan.
// The specific shapes run before the plain pivot fallback.
func DefaultClassifiers() []PatternClassifier {
	return []PatternClassifier{
		CupAndHandleClassifier{},
		BaseBreakoutClassifier{},
		PivotBreakoutClassifier{},
	}
}
