package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"breakout-trading/internal/dto"
)

func flatBars(n int, high, low, close float64, volume int64) []dto.StockOHLCV {
	bars := make([]dto.StockOHLCV, n)
	for i := range bars {
		bars[i] = dto.StockOHLCV{
			Open:      close,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			Timestamp: int64(1_000 + i),
		}
	}
	return bars
}

func TestComputeBreakoutMetrics(t *testing.T) {
	window := flatBars(20, 49, 47, 48, 100_000)
	window[10].High = 50

	current := dto.StockOHLCV{High: 51.2, Low: 50.5, Close: 51, Volume: 160_000}

	metrics := ComputeBreakoutMetrics(window, current)

	assert.Equal(t, 50.0, metrics.Pivot)
	assert.Equal(t, 100_000.0, metrics.AvgVolume)
	assert.InDelta(t, 60.0, metrics.VolumeSurgePct, 0.001)
	assert.InDelta(t, 2.0, metrics.BreakoutPct, 0.001)
}

func TestBreakoutMetrics_Gate(t *testing.T) {
	window := flatBars(20, 49, 47, 48, 100_000)
	window[10].High = 50

	tests := []struct {
		name    string
		current dto.StockOHLCV
		want    bool
	}{
		{
			name:    "close above pivot on surging volume fires",
			current: dto.StockOHLCV{Close: 51, Volume: 160_000},
			want:    true,
		},
		{
			name:    "close at the pivot never fires",
			current: dto.StockOHLCV{Close: 50, Volume: 160_000},
			want:    false,
		},
		{
			name:    "close below pivot never fires",
			current: dto.StockOHLCV{Close: 49.5, Volume: 160_000},
			want:    false,
		},
		{
			name:    "volume surge below threshold blocks the breakout",
			current: dto.StockOHLCV{Close: 51, Volume: 140_000},
			want:    false,
		},
		{
			name:    "breakout too far past the pivot is a chase, not an entry",
			current: dto.StockOHLCV{Close: 53, Volume: 160_000},
			want:    false,
		},
		{
			name:    "breakout at exactly the upper bound still fires",
			current: dto.StockOHLCV{Close: 52.5, Volume: 160_000},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := ComputeBreakoutMetrics(window, tt.current)
			assert.Equal(t, tt.want, metrics.Gate(tt.current, 50.0, 5.0))
		})
	}
}

func TestBaseBreakoutClassifier_MatchShape(t *testing.T) {
	classifier := BaseBreakoutClassifier{}
	current := dto.StockOHLCV{Close: 51, Volume: 160_000}

	t.Run("tight consolidation matches", func(t *testing.T) {
		window := flatBars(20, 49, 47, 48, 100_000)
		assert.True(t, classifier.MatchShape(window, current))
	})

	t.Run("wide trading range does not match", func(t *testing.T) {
		window := flatBars(20, 49, 47, 48, 100_000)
		window[3].Low = 40
		assert.False(t, classifier.MatchShape(window, current))
	})

	t.Run("scattered recent closes do not match", func(t *testing.T) {
		window := flatBars(20, 49, 44, 48, 100_000)
		window[len(window)-2].Close = 45
		assert.False(t, classifier.MatchShape(window, current))
	})
}

func TestCupAndHandleClassifier_MatchShape(t *testing.T) {
	classifier := CupAndHandleClassifier{}
	current := dto.StockOHLCV{Close: 51, Volume: 160_000}

	// 15-bar cup: rims near 50, trough near 40 (20% depth), then a 5-bar
	// handle drifting sideways just under the right rim.
	cupHighs := []float64{50, 49.5, 48, 46, 44, 42, 41, 40.5, 41, 43, 45, 47, 48.5, 49.5, 50}
	window := make([]dto.StockOHLCV, 0, 20)
	for i, h := range cupHighs {
		window = append(window, dto.StockOHLCV{
			High:      h,
			Low:       h - 1,
			Close:     h - 0.5,
			Volume:    100_000,
			Timestamp: int64(i),
		})
	}
	for i := 0; i < 5; i++ {
		window = append(window, dto.StockOHLCV{
			High:      49,
			Low:       47.5,
			Close:     48,
			Volume:    90_000,
			Timestamp: int64(15 + i),
		})
	}

	t.Run("rounded base with shallow handle matches", func(t *testing.T) {
		assert.True(t, classifier.MatchShape(window, current))
	})

	t.Run("deep handle breaks the pattern", func(t *testing.T) {
		broken := make([]dto.StockOHLCV, len(window))
		copy(broken, window)
		broken[len(broken)-2].Low = 41
		assert.False(t, classifier.MatchShape(broken, current))
	})

	t.Run("shallow dip is not a cup", func(t *testing.T) {
		assert.False(t, classifier.MatchShape(flatBars(20, 49, 47, 48, 100_000), current))
	})

	t.Run("short window never matches", func(t *testing.T) {
		assert.False(t, classifier.MatchShape(flatBars(10, 49, 47, 48, 100_000), current))
	})
}

func TestDefaultClassifiers_PivotIsTheFallback(t *testing.T) {
	classifiers := DefaultClassifiers()

	assert.Len(t, classifiers, 3)
	assert.Equal(t, dto.PatternPivotBreakout, classifiers[len(classifiers)-1].Pattern())
	assert.True(t, classifiers[len(classifiers)-1].MatchShape(nil, dto.StockOHLCV{}))
}
