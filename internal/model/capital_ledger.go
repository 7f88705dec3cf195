package model

import "time"

// CapitalLedger is the single-row paper-trading account. Invariant:
// available_capital + sum(investment_amount of open positions) equals
// total_capital, and available_capital never goes negative.
type CapitalLedger struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TotalCapital     float64   `gorm:"not null" json:"total_capital"`
	AvailableCapital float64   `gorm:"not null" json:"available_capital"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CapitalLedger) TableName() string {
	return "capital_ledger"
}
