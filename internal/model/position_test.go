package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// The stats aggregates in the repository reference these columns by name in
// raw SQL, so the mapped names must stay in lockstep with the migration.
func TestPosition_ColumnNames(t *testing.T) {
	s, err := schema.Parse(&Position{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	tests := []struct {
		field  string
		column string
	}{
		{"PnLPct", "pnl_pct"},
		{"PnLAmount", "pnl_amount"},
		{"Status", "status"},
		{"ExitDate", "exit_date"},
		{"EntryDate", "entry_date"},
		{"InvestmentAmount", "investment_amount"},
	}

	for _, tt := range tests {
		field := s.LookUpField(tt.field)
		require.NotNil(t, field, tt.field)
		assert.Equal(t, tt.column, field.DBName)
	}
}

func TestClosedTradeStats_ColumnNames(t *testing.T) {
	s, err := schema.Parse(&ClosedTradeStats{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := s.LookUpField("TotalPnLPct")
	require.NotNil(t, field)
	assert.Equal(t, "total_pnl_pct", field.DBName)
}
