package service

import (
	"time"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
)

// MarketStatusService maps wall-clock time to the US equity session phase.
// It is the only wall-clock knowledge in the system; everything downstream
// treats the phase as an opaque input.
type MarketStatusService interface {
	PhaseAt(t time.Time) dto.SessionPhase
	CurrentPhase() dto.SessionPhase
}

type marketStatusService struct {
	loc *time.Location
}

func NewMarketStatusService(cfg *config.Config) (MarketStatusService, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, err
	}
	return &marketStatusService{loc: loc}, nil
}

func (s *marketStatusService) CurrentPhase() dto.SessionPhase {
	return s.PhaseAt(time.Now())
}

func (s *marketStatusService) PhaseAt(t time.Time) dto.SessionPhase {
	local := t.In(s.loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return dto.SessionClosed
	}

	minutes := local.Hour()*60 + local.Minute()

	const (
		preMarketOpen = 4 * 60
		regularOpen   = 9*60 + 30
		regularClose  = 16 * 60
		afterClose    = 20 * 60
	)

	switch {
	case minutes >= preMarketOpen && minutes < regularOpen:
		return dto.SessionPreMarket
	case minutes >= regularOpen && minutes < regularClose:
		return dto.SessionRegular
	case minutes >= regularClose && minutes < afterClose:
		return dto.SessionAfterHours
	default:
		return dto.SessionClosed
	}
}
