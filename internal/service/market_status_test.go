package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
)

func TestMarketStatus_PhaseAt(t *testing.T) {
	cfg := &config.Config{Scheduler: config.Scheduler{Timezone: "America/New_York"}}
	status, err := NewMarketStatusService(cfg)
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want dto.SessionPhase
	}{
		{
			name: "before pre-market",
			at:   time.Date(2026, 8, 28, 3, 59, 0, 0, loc),
			want: dto.SessionClosed,
		},
		{
			name: "pre-market opens at 4am",
			at:   time.Date(2026, 8, 28, 4, 0, 0, 0, loc),
			want: dto.SessionPreMarket,
		},
		{
			name: "just before the opening bell",
			at:   time.Date(2026, 8, 28, 9, 29, 0, 0, loc),
			want: dto.SessionPreMarket,
		},
		{
			name: "opening bell",
			at:   time.Date(2026, 8, 28, 9, 30, 0, 0, loc),
			want: dto.SessionRegular,
		},
		{
			name: "mid-session",
			at:   time.Date(2026, 8, 28, 13, 0, 0, 0, loc),
			want: dto.SessionRegular,
		},
		{
			name: "closing bell starts after hours",
			at:   time.Date(2026, 8, 28, 16, 0, 0, 0, loc),
			want: dto.SessionAfterHours,
		},
		{
			name: "after-hours end",
			at:   time.Date(2026, 8, 28, 20, 0, 0, 0, loc),
			want: dto.SessionClosed,
		},
		{
			name: "saturday is closed even at noon",
			at:   time.Date(2026, 8, 29, 12, 0, 0, 0, loc),
			want: dto.SessionClosed,
		},
		{
			name: "sunday is closed",
			at:   time.Date(2026, 8, 30, 12, 0, 0, 0, loc),
			want: dto.SessionClosed,
		},
		{
			name: "utc timestamps are converted before the check",
			at:   time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC), // 10:00 in New York
			want: dto.SessionRegular,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.PhaseAt(tt.at))
		})
	}
}
