package repository

import (
	"context"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/utils"
)

const ledgerRowID = 1

// centsEpsilon absorbs float accumulation noise when comparing ledger sums.
const centsEpsilon = 0.01

type LedgerRepository interface {
	// Ensure creates the ledger row with the initial capital if it does not
	// exist yet. Re-running it never resets an existing ledger.
	Ensure(ctx context.Context, initialCapital float64) error
	Get(ctx context.Context, opts ...utils.DBOption) (*model.CapitalLedger, error)
	// GetForUpdate locks the ledger row for the enclosing transaction so
	// debits and credits serialize.
	GetForUpdate(ctx context.Context, opts ...utils.DBOption) (*model.CapitalLedger, error)
	Update(ctx context.Context, ledger *model.CapitalLedger, opts ...utils.DBOption) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Ensure(ctx context.Context, initialCapital float64) error {
	ledger := model.CapitalLedger{
		ID:               ledgerRowID,
		TotalCapital:     initialCapital,
		AvailableCapital: initialCapital,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ledger).Error
}

func (r *ledgerRepository) Get(ctx context.Context, opts ...utils.DBOption) (*model.CapitalLedger, error) {
	var ledger model.CapitalLedger
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		First(&ledger, ledgerRowID).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) GetForUpdate(ctx context.Context, opts ...utils.DBOption) (*model.CapitalLedger, error) {
	var ledger model.CapitalLedger
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ledger, ledgerRowID).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) Update(ctx context.Context, ledger *model.CapitalLedger, opts ...utils.DBOption) error {
	if ledger.AvailableCapital < -centsEpsilon {
		return dto.ErrLedgerIntegrity
	}
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).Save(ledger).Error
}

// CheckLedgerInvariant verifies available + open investments == total.
func CheckLedgerInvariant(ledger *model.CapitalLedger, openInvestment float64) error {
	if math.Abs(ledger.AvailableCapital+openInvestment-ledger.TotalCapital) > centsEpsilon {
		return dto.ErrLedgerIntegrity
	}
	if ledger.AvailableCapital < -centsEpsilon {
		return dto.ErrLedgerIntegrity
	}
	return nil
}
