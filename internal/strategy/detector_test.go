package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/logger"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()

	cfg := &config.Config{
		Detector: config.Detector{
			WindowSize:     20,
			MinVolumeSurge: 50.0,
			MaxBreakoutPct: 5.0,
			MaxConcurrency: 2,
		},
	}
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	return NewDetector(cfg, log, nil, nil)
}

func testEntry() model.WatchlistEntry {
	return model.WatchlistEntry{
		Ticker: "NVDA",
		Origin: dto.OriginFixed,
		Market: "US",
	}
}

func TestDetector_Evaluate_Fires(t *testing.T) {
	detector := newTestDetector(t)

	// 20-bar window topping out at 50, then a close at 51 on 60% more
	// volume than the window average.
	bars := flatBars(20, 49, 44, 48, 100_000)
	bars[10].High = 50
	bars[17].Close = 45
	bars = append(bars, dto.StockOHLCV{High: 51.2, Low: 50.5, Close: 51, Volume: 160_000})

	signal, err := detector.Evaluate(testEntry(), bars)

	require.NoError(t, err)
	require.NotNil(t, signal)
	assert.Equal(t, "NVDA", signal.Ticker)
	assert.Equal(t, dto.PatternPivotBreakout, signal.Pattern)
	assert.Equal(t, dto.OriginFixed, signal.Source)
	assert.Equal(t, 51.0, signal.AlertPrice)
	assert.Equal(t, 50.0, signal.ResistanceLevel)
	assert.InDelta(t, 60.0, signal.VolumeSurgePct, 0.01)
	assert.InDelta(t, 2.0, signal.BreakoutPct, 0.01)
}

func TestDetector_Evaluate_TightBaseYieldsBasePattern(t *testing.T) {
	detector := newTestDetector(t)

	bars := flatBars(20, 49, 47, 48, 100_000)
	bars[10].High = 50
	bars = append(bars, dto.StockOHLCV{High: 51.2, Low: 50.5, Close: 51, Volume: 160_000})

	signal, err := detector.Evaluate(testEntry(), bars)

	require.NoError(t, err)
	require.NotNil(t, signal)
	assert.Equal(t, dto.PatternBaseBreakout, signal.Pattern)
}

func TestDetector_Evaluate_NoSignal(t *testing.T) {
	detector := newTestDetector(t)

	tests := []struct {
		name    string
		current dto.StockOHLCV
	}{
		{
			name:    "close at pivot",
			current: dto.StockOHLCV{High: 50.2, Low: 49.5, Close: 50, Volume: 160_000},
		},
		{
			name:    "volume surge too small",
			current: dto.StockOHLCV{High: 51.2, Low: 50.5, Close: 51, Volume: 140_000},
		},
		{
			name:    "breakout past the allowed band",
			current: dto.StockOHLCV{High: 53.5, Low: 52.5, Close: 53, Volume: 160_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := flatBars(20, 49, 47, 48, 100_000)
			bars[10].High = 50
			bars = append(bars, tt.current)

			signal, err := detector.Evaluate(testEntry(), bars)

			assert.NoError(t, err)
			assert.Nil(t, signal)
		})
	}
}

func TestDetector_Evaluate_InsufficientHistory(t *testing.T) {
	detector := newTestDetector(t)

	bars := flatBars(15, 49, 47, 48, 100_000)

	signal, err := detector.Evaluate(testEntry(), bars)

	assert.Nil(t, signal)
	assert.ErrorIs(t, err, dto.ErrInsufficientHistory)
}
