package service

import (
	"context"
	"sort"

	"breakout-trading/internal/dto"
	"breakout-trading/internal/repository"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

// SignalService serves the read-side views over stored signals and the
// watchlist.
type SignalService interface {
	Signals(ctx context.Context, param dto.GetSignalsParam) (*dto.SignalsResponse, error)
	Watchlist(ctx context.Context) (*dto.WatchlistResponse, error)
}

type signalService struct {
	log           *logger.Logger
	signalRepo    repository.SignalRepository
	watchlistRepo repository.WatchlistRepository
}

func NewSignalService(
	log *logger.Logger,
	signalRepo repository.SignalRepository,
	watchlistRepo repository.WatchlistRepository,
) SignalService {
	return &signalService{
		log:           log,
		signalRepo:    signalRepo,
		watchlistRepo: watchlistRepo,
	}
}

func (s *signalService) Signals(ctx context.Context, param dto.GetSignalsParam) (*dto.SignalsResponse, error) {
	signals, err := s.signalRepo.Get(ctx, param)
	if err != nil {
		return nil, err
	}

	lastScan, err := s.signalRepo.LastScanAt(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.SignalsResponse{
		Count:    len(signals),
		Signals:  make([]dto.SignalItem, 0, len(signals)),
		LastScan: lastScan,
	}
	if param.Date != nil {
		resp.Date = utils.FormatDate(*param.Date)
	}
	if param.Days != nil {
		resp.Days = *param.Days
	}

	for _, signal := range signals {
		resp.Signals = append(resp.Signals, dto.SignalItem{
			Ticker:          signal.Ticker,
			Market:          signal.Market,
			Pattern:         signal.Pattern,
			Source:          string(signal.Source),
			Date:            utils.FormatDate(signal.AlertDate),
			Time:            utils.FormatClock(signal.CreatedAt),
			Price:           signal.AlertPrice,
			VolumeSurgePct:  signal.VolumeSurgePct,
			BreakoutPct:     signal.BreakoutPct,
			ResistanceLevel: signal.ResistanceLevel,
		})
	}
	return resp, nil
}

func (s *signalService) Watchlist(ctx context.Context) (*dto.WatchlistResponse, error) {
	fixed, err := s.watchlistRepo.GetByOrigin(ctx, dto.OriginFixed)
	if err != nil {
		return nil, err
	}
	dynamic, err := s.watchlistRepo.GetByOrigin(ctx, dto.OriginDynamic)
	if err != nil {
		return nil, err
	}

	fixedGroup := dto.WatchlistGroup{
		Total:    len(fixed),
		BySector: make(map[string][]string),
		All:      make([]string, 0, len(fixed)),
	}
	for _, entry := range fixed {
		fixedGroup.All = append(fixedGroup.All, entry.Ticker)
		sector := "Other"
		if entry.Sector != nil {
			sector = *entry.Sector
		}
		fixedGroup.BySector[sector] = append(fixedGroup.BySector[sector], entry.Ticker)
	}
	sort.Strings(fixedGroup.All)
	for _, tickers := range fixedGroup.BySector {
		sort.Strings(tickers)
	}

	dynamicGroup := dto.WatchlistGroup{
		Total: len(dynamic),
		All:   make([]string, 0, len(dynamic)),
	}
	for _, entry := range dynamic {
		dynamicGroup.All = append(dynamicGroup.All, entry.Ticker)
	}
	if updatedAt, err := s.watchlistRepo.DynamicUpdatedAt(ctx); err == nil {
		dynamicGroup.UpdatedAt = updatedAt
	}

	return &dto.WatchlistResponse{
		Fixed:   fixedGroup,
		Dynamic: dynamicGroup,
		Total:   len(fixed) + len(dynamic),
	}, nil
}
