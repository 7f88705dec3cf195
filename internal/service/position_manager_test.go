package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout-trading/config"
	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/logger"
	"breakout-trading/pkg/utils"
)

type fakePositionRepo struct {
	positions []model.Position
	nextID    uint
}

func (f *fakePositionRepo) Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) (bool, error) {
	for _, p := range f.positions {
		if p.SignalID == position.SignalID {
			return false, nil
		}
	}
	f.nextID++
	position.ID = f.nextID
	f.positions = append(f.positions, *position)
	return true, nil
}

func (f *fakePositionRepo) Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	for i := range f.positions {
		if f.positions[i].ID == position.ID {
			f.positions[i] = *position
			return nil
		}
	}
	return errors.New("position not found")
}

func (f *fakePositionRepo) Get(ctx context.Context, param model.GetPositionsParam) ([]model.Position, error) {
	var out []model.Position
	for _, p := range f.positions {
		if param.Status != nil && p.Status != *param.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePositionRepo) HasOpenPosition(ctx context.Context, ticker string) (bool, error) {
	for _, p := range f.positions {
		if p.Ticker == ticker && p.Status == dto.PositionStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePositionRepo) SumOpenInvestment(ctx context.Context, opts ...utils.DBOption) (float64, error) {
	var sum float64
	for _, p := range f.positions {
		if p.Status == dto.PositionStatusOpen {
			sum += p.InvestmentAmount
		}
	}
	return sum, nil
}

func (f *fakePositionRepo) ClosedStats(ctx context.Context) (*model.ClosedTradeStats, error) {
	return &model.ClosedTradeStats{}, nil
}

func (f *fakePositionRepo) MonthlyStats(ctx context.Context, limit int) ([]model.MonthlyTradeStats, error) {
	return nil, nil
}

func (f *fakePositionRepo) FirstEntryDate(ctx context.Context) (*model.Position, error) {
	return nil, nil
}

type fakeLedgerRepo struct {
	ledger model.CapitalLedger
}

func (f *fakeLedgerRepo) Ensure(ctx context.Context, initialCapital float64) error { return nil }

func (f *fakeLedgerRepo) Get(ctx context.Context, opts ...utils.DBOption) (*model.CapitalLedger, error) {
	ledger := f.ledger
	return &ledger, nil
}

func (f *fakeLedgerRepo) GetForUpdate(ctx context.Context, opts ...utils.DBOption) (*model.CapitalLedger, error) {
	ledger := f.ledger
	return &ledger, nil
}

func (f *fakeLedgerRepo) Update(ctx context.Context, ledger *model.CapitalLedger, opts ...utils.DBOption) error {
	if ledger.AvailableCapital < -0.01 {
		return dto.ErrLedgerIntegrity
	}
	f.ledger = *ledger
	return nil
}

type fakeMarketDataRepo struct {
	quotes map[string]*dto.StockQuote
}

func (f *fakeMarketDataRepo) GetBars(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMarketDataRepo) GetQuote(ctx context.Context, ticker string) (*dto.StockQuote, error) {
	quote, ok := f.quotes[ticker]
	if !ok {
		return nil, errors.New("quote unavailable")
	}
	return quote, nil
}

func (f *fakeMarketDataRepo) GetProfile(ctx context.Context, ticker string) (*dto.StockProfile, error) {
	return nil, errors.New("not implemented")
}

type fakeUnitOfWork struct{}

func (f *fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

func tradingConfig() *config.Config {
	return &config.Config{
		Trading: config.Trading{
			InitialCapital:      10_000,
			MaxPositionFraction: 0.20,
			StopLossPct:         0.08,
			TakeProfitPct:       0.20,
			MaxHoldingDays:      30,
		},
	}
}

func newTestPositionManager(t *testing.T, positionRepo *fakePositionRepo, ledgerRepo *fakeLedgerRepo, marketDataRepo *fakeMarketDataRepo) PositionManagerService {
	t.Helper()

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	return NewPositionManagerService(tradingConfig(), log, positionRepo, ledgerRepo, marketDataRepo, &fakeUnitOfWork{})
}

func signalFixture(id uint, ticker string, price float64) *model.Signal {
	return &model.Signal{
		ID:         id,
		Ticker:     ticker,
		Market:     "US",
		Pattern:    dto.PatternPivotBreakout,
		Source:     dto.OriginFixed,
		AlertPrice: price,
	}
}

func TestPositionManager_OpenFromSignal_Sizing(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, &fakeMarketDataRepo{})

	position, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))

	require.NoError(t, err)
	require.NotNil(t, position)
	assert.Equal(t, int64(20), position.Quantity)
	assert.Equal(t, 2_000.0, position.InvestmentAmount)
	assert.Equal(t, 92.0, position.StopLossPrice)
	assert.Equal(t, 120.0, position.TakeProfitPrice)
	assert.Equal(t, dto.PositionStatusOpen, position.Status)
	assert.Equal(t, 8_000.0, ledgerRepo.ledger.AvailableCapital)
}

func TestPositionManager_OpenFromSignal_FractionalQuantityFloors(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, &fakeMarketDataRepo{})

	position, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 333))

	require.NoError(t, err)
	require.NotNil(t, position)
	// 20% of 10k is 2000; 2000/333 floors to 6 shares.
	assert.Equal(t, int64(6), position.Quantity)
	assert.Equal(t, 1_998.0, position.InvestmentAmount)
	assert.Equal(t, 8_002.0, ledgerRepo.ledger.AvailableCapital)
}

func TestPositionManager_OpenFromSignal_CappedByAvailable(t *testing.T) {
	// The ledger must satisfy available + open investments == total, so the
	// 9_500 already committed lives in a pre-existing open position.
	positionRepo := &fakePositionRepo{
		positions: []model.Position{{
			ID:               99,
			SignalID:         99,
			Ticker:           "AAPL",
			Status:           dto.PositionStatusOpen,
			InvestmentAmount: 9_500,
		}},
		nextID: 99,
	}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 500}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, &fakeMarketDataRepo{})

	position, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))

	require.NoError(t, err)
	require.NotNil(t, position)
	assert.Equal(t, int64(5), position.Quantity)
	assert.Equal(t, 0.0, ledgerRepo.ledger.AvailableCapital)
}

func TestPositionManager_OpenFromSignal_TooSmallIsNoOp(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 50}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, &fakeMarketDataRepo{})

	position, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))

	require.NoError(t, err)
	assert.Nil(t, position)
	assert.Empty(t, positionRepo.positions)
	assert.Equal(t, 50.0, ledgerRepo.ledger.AvailableCapital)
}

func TestPositionManager_OpenFromSignal_Idempotent(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, &fakeMarketDataRepo{})

	first, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))
	require.NoError(t, err)
	require.NotNil(t, first)

	// The same signal again must not double-spend.
	second, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Len(t, positionRepo.positions, 1)
	assert.Equal(t, 8_000.0, ledgerRepo.ledger.AvailableCapital)
}

func TestEvaluateExit(t *testing.T) {
	entryDate := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	position := &model.Position{
		EntryDate:       entryDate,
		EntryPrice:      100,
		StopLossPrice:   92,
		TakeProfitPrice: 120,
	}

	tests := []struct {
		name       string
		quote      dto.StockQuote
		now        time.Time
		wantExit   bool
		wantReason dto.ExitReason
		wantPrice  float64
	}{
		{
			name:     "holding inside the band",
			quote:    dto.StockQuote{MarketPrice: 105, DayLow: 101},
			now:      entryDate.AddDate(0, 0, 5),
			wantExit: false,
		},
		{
			name:       "stop loss on the last price",
			quote:      dto.StockQuote{MarketPrice: 91, DayLow: 90},
			now:        entryDate.AddDate(0, 0, 5),
			wantExit:   true,
			wantReason: dto.ExitReasonStopLoss,
			wantPrice:  91,
		},
		{
			name:       "intraday pierce of the stop exits at the last price",
			quote:      dto.StockQuote{MarketPrice: 95, DayLow: 91},
			now:        entryDate.AddDate(0, 0, 5),
			wantExit:   true,
			wantReason: dto.ExitReasonStopLoss,
			wantPrice:  95,
		},
		{
			name:       "take profit",
			quote:      dto.StockQuote{MarketPrice: 121, DayLow: 110},
			now:        entryDate.AddDate(0, 0, 5),
			wantExit:   true,
			wantReason: dto.ExitReasonTakeProfit,
			wantPrice:  121,
		},
		{
			name:       "stop loss wins when the bar gaps through both",
			quote:      dto.StockQuote{MarketPrice: 121, DayLow: 91},
			now:        entryDate.AddDate(0, 0, 5),
			wantExit:   true,
			wantReason: dto.ExitReasonStopLoss,
			wantPrice:  121,
		},
		{
			name:       "expiry on day 30",
			quote:      dto.StockQuote{MarketPrice: 105, DayLow: 101},
			now:        entryDate.AddDate(0, 0, 30),
			wantExit:   true,
			wantReason: dto.ExitReasonExpired,
			wantPrice:  105,
		},
		{
			name:     "day 29 is still inside the holding period",
			quote:    dto.StockQuote{MarketPrice: 105, DayLow: 101},
			now:      entryDate.AddDate(0, 0, 29),
			wantExit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := evaluateExit(position, &tt.quote, tt.now, 30)

			assert.Equal(t, tt.wantExit, decision.ShouldExit)
			if tt.wantExit {
				assert.Equal(t, tt.wantReason, decision.Reason)
				assert.Equal(t, tt.wantPrice, decision.ExitPrice)
			}
		})
	}
}

func TestPositionManager_Tick_StopLoss(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	marketDataRepo := &fakeMarketDataRepo{quotes: map[string]*dto.StockQuote{}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, marketDataRepo)

	_, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))
	require.NoError(t, err)

	marketDataRepo.quotes["NVDA"] = &dto.StockQuote{Ticker: "NVDA", MarketPrice: 91, DayLow: 90.5}

	closedNow, err := manager.Tick(context.Background())
	require.NoError(t, err)

	// The tick reports what it closed.
	require.Len(t, closedNow, 1)
	assert.Equal(t, "NVDA", closedNow[0].Ticker)
	assert.Equal(t, dto.PositionStatusClosed, closedNow[0].Status)

	require.Len(t, positionRepo.positions, 1)
	closed := positionRepo.positions[0]
	assert.Equal(t, dto.PositionStatusClosed, closed.Status)
	require.NotNil(t, closed.ExitReason)
	assert.Equal(t, dto.ExitReasonStopLoss, *closed.ExitReason)
	require.NotNil(t, closed.ExitPrice)
	assert.Equal(t, 91.0, *closed.ExitPrice)
	require.NotNil(t, closed.PnLPct)
	assert.Equal(t, -9.0, *closed.PnLPct)
	require.NotNil(t, closed.PnLAmount)
	assert.Equal(t, -180.0, *closed.PnLAmount)

	// 8000 available + 20 shares * 91 back in.
	assert.Equal(t, 9_820.0, ledgerRepo.ledger.AvailableCapital)
	assert.Equal(t, 9_820.0, ledgerRepo.ledger.TotalCapital)
}

func TestPositionManager_Tick_QuoteUnavailableLeavesPositionOpen(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	marketDataRepo := &fakeMarketDataRepo{quotes: map[string]*dto.StockQuote{}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, marketDataRepo)

	_, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))
	require.NoError(t, err)

	closed, err := manager.Tick(context.Background())
	require.NoError(t, err)

	assert.Empty(t, closed)
	assert.Equal(t, dto.PositionStatusOpen, positionRepo.positions[0].Status)
	assert.Equal(t, 8_000.0, ledgerRepo.ledger.AvailableCapital)
}

func TestPositionManager_CloseAll(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	marketDataRepo := &fakeMarketDataRepo{quotes: map[string]*dto.StockQuote{
		"NVDA": {Ticker: "NVDA", MarketPrice: 110, DayLow: 108},
	}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, marketDataRepo)

	_, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))
	require.NoError(t, err)
	_, err = manager.OpenFromSignal(context.Background(), signalFixture(2, "AMD", 100))
	require.NoError(t, err)

	closed, err := manager.CloseAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, closed)
	for _, p := range positionRepo.positions {
		assert.Equal(t, dto.PositionStatusClosed, p.Status)
		require.NotNil(t, p.ExitReason)
		assert.Equal(t, dto.ExitReasonForced, *p.ExitReason)
	}

	// AMD had no quote and closed flat at its entry price.
	var amd model.Position
	for _, p := range positionRepo.positions {
		if p.Ticker == "AMD" {
			amd = p
		}
	}
	require.NotNil(t, amd.ExitPrice)
	assert.Equal(t, 100.0, *amd.ExitPrice)
	require.NotNil(t, amd.PnLAmount)
	assert.Equal(t, 0.0, *amd.PnLAmount)
}

func TestPositionManager_OpenFromSignal_SkipsTickerWithOpenPosition(t *testing.T) {
	positionRepo := &fakePositionRepo{}
	ledgerRepo := &fakeLedgerRepo{ledger: model.CapitalLedger{ID: 1, TotalCapital: 10_000, AvailableCapital: 10_000}}
	manager := newTestPositionManager(t, positionRepo, ledgerRepo, &fakeMarketDataRepo{})

	first, err := manager.OpenFromSignal(context.Background(), signalFixture(1, "NVDA", 100))
	require.NoError(t, err)
	require.NotNil(t, first)

	// A new signal for the same ticker while a position is open is skipped.
	second, err := manager.OpenFromSignal(context.Background(), signalFixture(2, "NVDA", 103))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Len(t, positionRepo.positions, 1)
}
