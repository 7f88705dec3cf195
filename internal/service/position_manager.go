package service

import (
	"context"
	"math"
	"sync"
	"time"

	"gorm.io/datatypes"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/internal/repository"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

// PositionManagerService owns the paper-trading lifecycle: it opens a
// position from a stored signal, reprices and exits open positions, and
// serves the trade projections. All capital movements go through the
// ledger inside a single transaction.
type PositionManagerService interface {
	// OpenFromSignal sizes and opens a position for a freshly stored
	// signal. It is a no-op when the signal already has a position, when
	// available capital cannot buy a single share, or when the ticker
	// already has an open position.
	OpenFromSignal(ctx context.Context, signal *model.Signal) (*model.Position, error)
	// Tick reprices every open position against the latest quote, closes
	// the ones that hit an exit condition and returns them. Positions
	// whose quote cannot be fetched are left untouched until the next
	// tick.
	Tick(ctx context.Context) ([]model.Position, error)
	// CloseAll force-closes every open position, falling back to the
	// entry price when no quote is available.
	CloseAll(ctx context.Context) (int, error)

	OpenPositions(ctx context.Context) (*dto.OpenPositionsResponse, error)
	ClosedTrades(ctx context.Context, limit int) (*dto.ClosedTradesResponse, error)
	Stats(ctx context.Context) (*dto.TradingStatsResponse, error)
	MonthlyPerformance(ctx context.Context, months int) (*dto.MonthlyPerformanceResponse, error)
}

type positionManagerService struct {
	cfg            *config.Config
	log            *logger.Logger
	positionRepo   repository.PositionRepository
	ledgerRepo     repository.LedgerRepository
	marketDataRepo repository.MarketDataRepository
	uow            repository.UnitOfWork

	// mu serializes open/close mutations in-process; the row lock on the
	// ledger serializes them across processes.
	mu sync.Mutex
}

func NewPositionManagerService(
	cfg *config.Config,
	log *logger.Logger,
	positionRepo repository.PositionRepository,
	ledgerRepo repository.LedgerRepository,
	marketDataRepo repository.MarketDataRepository,
	uow repository.UnitOfWork,
) PositionManagerService {
	return &positionManagerService{
		cfg:            cfg,
		log:            log,
		positionRepo:   positionRepo,
		ledgerRepo:     ledgerRepo,
		marketDataRepo: marketDataRepo,
		uow:            uow,
	}
}

func (s *positionManagerService) OpenFromSignal(ctx context.Context, signal *model.Signal) (*model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hasOpen, err := s.positionRepo.HasOpenPosition(ctx, signal.Ticker)
	if err != nil {
		return nil, err
	}
	if hasOpen {
		s.log.InfoContext(ctx, "Skipping signal, ticker already has an open position",
			logger.StringField("ticker", signal.Ticker),
		)
		return nil, nil
	}

	var opened *model.Position
	err = s.uow.Run(func(opts ...utils.DBOption) error {
		ledger, err := s.ledgerRepo.GetForUpdate(ctx, opts...)
		if err != nil {
			return err
		}

		investment := math.Min(s.cfg.Trading.MaxPositionFraction*ledger.TotalCapital, ledger.AvailableCapital)
		quantity := int64(math.Floor(investment / signal.AlertPrice))
		if quantity < 1 {
			s.log.WarnContext(ctx, "Skipping signal, capital too small for one share",
				logger.StringField("ticker", signal.Ticker),
				logger.Float64Field("available", ledger.AvailableCapital),
				logger.Float64Field("price", signal.AlertPrice),
			)
			return nil
		}

		cost := float64(quantity) * signal.AlertPrice
		position := &model.Position{
			SignalID:         signal.ID,
			Ticker:           signal.Ticker,
			Market:           signal.Market,
			Pattern:          signal.Pattern,
			Source:           signal.Source,
			Status:           dto.PositionStatusOpen,
			EntryDate:        utils.TimeNowET(),
			EntryPrice:       signal.AlertPrice,
			Quantity:         quantity,
			InvestmentAmount: utils.RoundTo(cost, 2),
			StopLossPrice:    utils.RoundTo(signal.AlertPrice*(1-s.cfg.Trading.StopLossPct), 2),
			TakeProfitPrice:  utils.RoundTo(signal.AlertPrice*(1+s.cfg.Trading.TakeProfitPct), 2),
			Meta:             datatypes.JSON([]byte(`{}`)),
		}

		created, err := s.positionRepo.Create(ctx, position, opts...)
		if err != nil {
			return err
		}
		if !created {
			s.log.InfoContext(ctx, "Skipping signal, position already exists",
				logger.StringField("ticker", signal.Ticker),
			)
			return nil
		}

		ledger.AvailableCapital = utils.RoundTo(ledger.AvailableCapital-position.InvestmentAmount, 2)
		if err := s.ledgerRepo.Update(ctx, ledger, opts...); err != nil {
			return err
		}

		openInvestment, err := s.positionRepo.SumOpenInvestment(ctx, opts...)
		if err != nil {
			return err
		}
		if err := repository.CheckLedgerInvariant(ledger, openInvestment); err != nil {
			return err
		}

		opened = position
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opened != nil {
		s.log.InfoContext(ctx, "Opened position",
			logger.StringField("ticker", opened.Ticker),
			logger.Float64Field("entry_price", opened.EntryPrice),
			logger.IntField("quantity", int(opened.Quantity)),
			logger.Float64Field("stop_loss", opened.StopLossPrice),
			logger.Float64Field("take_profit", opened.TakeProfitPrice),
		)
	}
	return opened, nil
}

// exitDecision is the outcome of evaluating one open position against the
// latest quote.
type exitDecision struct {
	ShouldExit bool
	Reason     dto.ExitReason
	ExitPrice  float64
}

// evaluateExit applies the exit rules in priority order: stop-loss, then
// take-profit, then holding-period expiry. The stop-loss trigger looks at
// the day low as well as the last price so an intraday pierce is not
// missed, but the position always exits at the last traded price.
func evaluateExit(position *model.Position, quote *dto.StockQuote, now time.Time, maxHoldingDays int) exitDecision {
	worst := quote.MarketPrice
	if quote.DayLow > 0 && quote.DayLow < worst {
		worst = quote.DayLow
	}

	switch {
	case worst <= position.StopLossPrice:
		return exitDecision{ShouldExit: true, Reason: dto.ExitReasonStopLoss, ExitPrice: quote.MarketPrice}
	case quote.MarketPrice >= position.TakeProfitPrice:
		return exitDecision{ShouldExit: true, Reason: dto.ExitReasonTakeProfit, ExitPrice: quote.MarketPrice}
	case utils.CalendarDaysBetween(position.EntryDate, now) >= maxHoldingDays:
		return exitDecision{ShouldExit: true, Reason: dto.ExitReasonExpired, ExitPrice: quote.MarketPrice}
	}
	return exitDecision{}
}

func (s *positionManagerService) Tick(ctx context.Context) ([]model.Position, error) {
	openStatus := dto.PositionStatusOpen
	positions, err := s.positionRepo.Get(ctx, model.GetPositionsParam{Status: &openStatus})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, nil
	}

	now := utils.TimeNowET()
	var closed []model.Position
	for i := range positions {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		position := &positions[i]

		quote, err := s.marketDataRepo.GetQuote(ctx, position.Ticker)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping position, quote unavailable",
				logger.StringField("ticker", position.Ticker),
				logger.ErrorField(err),
			)
			continue
		}

		decision := evaluateExit(position, quote, now, s.cfg.Trading.MaxHoldingDays)
		if !decision.ShouldExit {
			continue
		}

		if err := s.closePosition(ctx, position, decision.ExitPrice, decision.Reason, now); err != nil {
			s.log.ErrorContext(ctx, "Failed to close position",
				logger.StringField("ticker", position.Ticker),
				logger.ErrorField(err),
			)
			return closed, err
		}
		closed = append(closed, *position)
	}

	if len(closed) > 0 {
		s.log.InfoContext(ctx, "Tick closed positions", logger.IntField("closed", len(closed)))
	}
	return closed, nil
}

func (s *positionManagerService) CloseAll(ctx context.Context) (int, error) {
	openStatus := dto.PositionStatusOpen
	positions, err := s.positionRepo.Get(ctx, model.GetPositionsParam{Status: &openStatus})
	if err != nil {
		return 0, err
	}

	now := utils.TimeNowET()
	closed := 0
	for i := range positions {
		position := &positions[i]

		exitPrice := position.EntryPrice
		quote, err := s.marketDataRepo.GetQuote(ctx, position.Ticker)
		if err != nil {
			s.log.WarnContext(ctx, "Quote unavailable, force-closing at entry price",
				logger.StringField("ticker", position.Ticker),
				logger.ErrorField(err),
			)
		} else {
			exitPrice = quote.MarketPrice
		}

		if err := s.closePosition(ctx, position, exitPrice, dto.ExitReasonForced, now); err != nil {
			return closed, err
		}
		closed++
	}

	if closed > 0 {
		s.log.InfoContext(ctx, "Force-closed all open positions", logger.IntField("closed", closed))
	}
	return closed, nil
}

// closePosition finalizes one exit: it writes the exit fields, credits the
// proceeds back to the ledger, and re-checks the capital invariant, all in
// one transaction.
func (s *positionManagerService) closePosition(ctx context.Context, position *model.Position, exitPrice float64, reason dto.ExitReason, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.uow.Run(func(opts ...utils.DBOption) error {
		ledger, err := s.ledgerRepo.GetForUpdate(ctx, opts...)
		if err != nil {
			return err
		}

		proceeds := utils.RoundTo(float64(position.Quantity)*exitPrice, 2)
		pnlAmount := utils.RoundTo(proceeds-position.InvestmentAmount, 2)
		pnlPct := utils.RoundTo((exitPrice-position.EntryPrice)/position.EntryPrice*100, 2)
		holdingDays := utils.CalendarDaysBetween(position.EntryDate, now)

		position.Status = dto.PositionStatusClosed
		position.ExitDate = utils.ToPointer(now)
		position.ExitPrice = utils.ToPointer(utils.RoundTo(exitPrice, 2))
		position.ExitReason = utils.ToPointer(reason)
		position.PnLAmount = utils.ToPointer(pnlAmount)
		position.PnLPct = utils.ToPointer(pnlPct)
		position.HoldingDays = utils.ToPointer(holdingDays)

		if err := s.positionRepo.Update(ctx, position, opts...); err != nil {
			return err
		}

		// Total capital absorbs the realized gain or loss so that the
		// invariant against open investments keeps holding.
		ledger.AvailableCapital = utils.RoundTo(ledger.AvailableCapital+proceeds, 2)
		ledger.TotalCapital = utils.RoundTo(ledger.TotalCapital+pnlAmount, 2)
		if err := s.ledgerRepo.Update(ctx, ledger, opts...); err != nil {
			return err
		}

		openInvestment, err := s.positionRepo.SumOpenInvestment(ctx, opts...)
		if err != nil {
			return err
		}
		if err := repository.CheckLedgerInvariant(ledger, openInvestment); err != nil {
			return err
		}

		s.log.InfoContext(ctx, "Closed position",
			logger.StringField("ticker", position.Ticker),
			logger.StringField("reason", string(reason)),
			logger.Float64Field("exit_price", exitPrice),
			logger.Float64Field("pnl_pct", pnlPct),
		)
		return nil
	})
}

func (s *positionManagerService) OpenPositions(ctx context.Context) (*dto.OpenPositionsResponse, error) {
	openStatus := dto.PositionStatusOpen
	positions, err := s.positionRepo.Get(ctx, model.GetPositionsParam{Status: &openStatus})
	if err != nil {
		return nil, err
	}

	ledger, err := s.ledgerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := utils.TimeNowET()
	resp := &dto.OpenPositionsResponse{
		Count:            len(positions),
		AvailableCapital: ledger.AvailableCapital,
		Positions:        make([]dto.OpenPositionItem, 0, len(positions)),
	}

	for i := range positions {
		position := &positions[i]

		item := dto.OpenPositionItem{
			ID:               position.ID,
			Ticker:           position.Ticker,
			Market:           position.Market,
			Pattern:          position.Pattern,
			Source:           string(position.Source),
			EntryDate:        utils.FormatDate(position.EntryDate),
			EntryPrice:       position.EntryPrice,
			Quantity:         position.Quantity,
			InvestmentAmount: position.InvestmentAmount,
			StopLossPrice:    position.StopLossPrice,
			TakeProfitPrice:  position.TakeProfitPrice,
			CurrentValue:     position.InvestmentAmount,
			HoldingDays:      utils.CalendarDaysBetween(position.EntryDate, now),
		}

		quote, err := s.marketDataRepo.GetQuote(ctx, position.Ticker)
		if err == nil {
			currentValue := utils.RoundTo(float64(position.Quantity)*quote.MarketPrice, 2)
			pnlAmount := utils.RoundTo(currentValue-position.InvestmentAmount, 2)
			pnlPct := utils.RoundTo((quote.MarketPrice-position.EntryPrice)/position.EntryPrice*100, 2)

			item.CurrentPrice = utils.ToPointer(quote.MarketPrice)
			item.CurrentValue = currentValue
			item.PnLAmount = pnlAmount
			item.PnLPct = utils.ToPointer(pnlPct)

			if pnlAmount > 0 {
				resp.Winning++
			} else if pnlAmount < 0 {
				resp.Losing++
			}
		}

		resp.TotalInvested += position.InvestmentAmount
		resp.TotalValue += item.CurrentValue
		resp.TotalPnLAmount += item.PnLAmount
		resp.Positions = append(resp.Positions, item)
	}

	resp.TotalInvested = utils.RoundTo(resp.TotalInvested, 2)
	resp.TotalValue = utils.RoundTo(resp.TotalValue, 2)
	resp.TotalPnLAmount = utils.RoundTo(resp.TotalPnLAmount, 2)
	if resp.TotalInvested > 0 {
		resp.TotalPnLPct = utils.RoundTo(resp.TotalPnLAmount/resp.TotalInvested*100, 2)
	}
	return resp, nil
}

func (s *positionManagerService) ClosedTrades(ctx context.Context, limit int) (*dto.ClosedTradesResponse, error) {
	closedStatus := dto.PositionStatusClosed
	param := model.GetPositionsParam{Status: &closedStatus}
	if limit > 0 {
		param.Limit = utils.ToPointer(limit)
	}

	positions, err := s.positionRepo.Get(ctx, param)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClosedTradesResponse{
		Count:  len(positions),
		Trades: make([]dto.ClosedTradeItem, 0, len(positions)),
	}
	for i := range positions {
		position := &positions[i]
		item := dto.ClosedTradeItem{
			ID:         position.ID,
			Ticker:     position.Ticker,
			Market:     position.Market,
			Pattern:    position.Pattern,
			Source:     string(position.Source),
			EntryDate:  utils.FormatDate(position.EntryDate),
			EntryPrice: position.EntryPrice,
		}
		if position.ExitDate != nil {
			item.ExitDate = utils.FormatDate(*position.ExitDate)
		}
		if position.ExitPrice != nil {
			item.ExitPrice = *position.ExitPrice
		}
		if position.ExitReason != nil {
			item.ExitReason = *position.ExitReason
		}
		if position.PnLAmount != nil {
			item.PnLAmount = *position.PnLAmount
		}
		if position.PnLPct != nil {
			item.PnLPct = *position.PnLPct
		}
		if position.HoldingDays != nil {
			item.HoldingDays = *position.HoldingDays
		}
		resp.Trades = append(resp.Trades, item)
	}
	return resp, nil
}

func (s *positionManagerService) Stats(ctx context.Context) (*dto.TradingStatsResponse, error) {
	stats, err := s.positionRepo.ClosedStats(ctx)
	if err != nil {
		return nil, err
	}

	openStatus := dto.PositionStatusOpen
	open, err := s.positionRepo.Get(ctx, model.GetPositionsParam{Status: &openStatus})
	if err != nil {
		return nil, err
	}

	resp := &dto.TradingStatsResponse{
		OpenPositions: len(open),
		TotalTrades:   stats.TotalTrades,
		WinningTrades: stats.WinCount,
		LosingTrades:  stats.LossCount,
		AvgProfitPct:  utils.RoundTo(stats.AvgProfitPct, 2),
		AvgWinPct:     utils.RoundTo(stats.AvgWinPct, 2),
		AvgLossPct:    utils.RoundTo(stats.AvgLossPct, 2),
		MaxProfitPct:  utils.RoundTo(stats.MaxProfitPct, 2),
		MaxLossPct:    utils.RoundTo(stats.MaxLossPct, 2),
		TotalPnLPct:   utils.RoundTo(stats.TotalPnLPct, 2),
	}
	if stats.TotalTrades > 0 {
		resp.WinRate = utils.RoundTo(float64(stats.WinCount)/float64(stats.TotalTrades)*100, 2)
	}

	first, err := s.positionRepo.FirstEntryDate(ctx)
	if err != nil {
		return nil, err
	}
	if first != nil {
		resp.StartDate = utils.FormatDate(first.EntryDate)
		resp.TradingDays = utils.CalendarDaysBetween(first.EntryDate, utils.TimeNowET()) + 1
	}
	return resp, nil
}

func (s *positionManagerService) MonthlyPerformance(ctx context.Context, months int) (*dto.MonthlyPerformanceResponse, error) {
	stats, err := s.positionRepo.MonthlyStats(ctx, months)
	if err != nil {
		return nil, err
	}

	resp := &dto.MonthlyPerformanceResponse{
		Count:   len(stats),
		Monthly: make([]dto.MonthlyPerformance, 0, len(stats)),
	}
	for _, month := range stats {
		item := dto.MonthlyPerformance{
			Month:          month.Month,
			Trades:         month.Trades,
			Wins:           month.Wins,
			Losses:         month.Trades - month.Wins,
			TotalProfitPct: utils.RoundTo(month.TotalProfitPct, 2),
			AvgProfitPct:   utils.RoundTo(month.AvgProfitPct, 2),
		}
		if month.Trades > 0 {
			item.WinRate = utils.RoundTo(float64(month.Wins)/float64(month.Trades)*100, 2)
		}
		resp.Monthly = append(resp.Monthly, item)
	}
	return resp, nil
}
