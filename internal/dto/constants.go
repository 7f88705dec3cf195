package dto

import "errors"

type Pattern string

const (
	PatternPivotBreakout Pattern = "Pivot Breakout"
	PatternCupAndHandle  Pattern = "Cup and Handle"
	PatternBaseBreakout  Pattern = "Base Breakout"
)

type WatchlistOrigin string

const (
	OriginFixed   WatchlistOrigin = "fixed"
	OriginDynamic WatchlistOrigin = "dynamic"
)

type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "open"
	PositionStatusClosed PositionStatus = "closed"
)

// ExitReason values in evaluation priority order. Stop-loss is checked
// before take-profit so that a bar gapping through both thresholds closes
// on the loss side.
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
	ExitReasonExpired    ExitReason = "expired"
	ExitReasonForced     ExitReason = "forced"
)

type SessionPhase string

const (
	SessionPreMarket  SessionPhase = "pre_market"
	SessionRegular    SessionPhase = "regular"
	SessionAfterHours SessionPhase = "after_hours"
	SessionClosed     SessionPhase = "closed"
)

var (
	// ErrLedgerIntegrity marks a broken capital accounting invariant. It is
	// fatal for the run: the enclosing transaction must roll back and the
	// failure surfaces loudly.
	ErrLedgerIntegrity = errors.New("capital ledger integrity violation")

	// ErrMalformedBars marks a price-bar series rejected at the boundary.
	ErrMalformedBars = errors.New("malformed price bar series")

	ErrInsufficientHistory = errors.New("insufficient price history")
)
