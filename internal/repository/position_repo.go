package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/utils"
)

type PositionRepository interface {
	// Create inserts the position unless one already exists for the same
	// signal; it returns false for that duplicate, which callers treat as
	// a no-op.
	Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) (created bool, err error)
	Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error
	Get(ctx context.Context, param model.GetPositionsParam) ([]model.Position, error)
	HasOpenPosition(ctx context.Context, ticker string) (bool, error)
	SumOpenInvestment(ctx context.Context, opts ...utils.DBOption) (float64, error)
	ClosedStats(ctx context.Context) (*model.ClosedTradeStats, error)
	MonthlyStats(ctx context.Context, limit int) ([]model.MonthlyTradeStats, error)
	FirstEntryDate(ctx context.Context) (*model.Position, error)
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) (bool, error) {
	result := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signal_id"}},
			DoNothing: true,
		}).
		Create(position)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *positionRepository) Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).Save(position).Error
}

func (r *positionRepository) Get(ctx context.Context, param model.GetPositionsParam) ([]model.Position, error) {
	var positions []model.Position

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if len(param.IDs) > 0 {
		qFilter = append(qFilter, "id IN (?)")
		qFilterParam = append(qFilterParam, param.IDs)
	}

	if len(param.Tickers) > 0 {
		qFilter = append(qFilter, "ticker IN (?)")
		qFilterParam = append(qFilterParam, param.Tickers)
	}

	if len(param.SignalIDs) > 0 {
		qFilter = append(qFilter, "signal_id IN (?)")
		qFilterParam = append(qFilterParam, param.SignalIDs)
	}

	if param.Status != nil {
		qFilter = append(qFilter, "status = ?")
		qFilterParam = append(qFilterParam, *param.Status)
	}

	if len(qFilter) == 0 {
		return nil, fmt.Errorf("no filter provided")
	}

	q := r.db.WithContext(ctx).Where(strings.Join(qFilter, " AND "), qFilterParam...)

	if param.Status != nil && *param.Status == dto.PositionStatusClosed {
		q = q.Order("exit_date DESC")
	} else {
		q = q.Order("entry_date DESC")
	}

	if param.Limit != nil {
		q = q.Limit(*param.Limit)
	}

	if err := q.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) HasOpenPosition(ctx context.Context, ticker string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Position{}).
		Where("ticker = ? AND status = ?", ticker, dto.PositionStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *positionRepository) SumOpenInvestment(ctx context.Context, opts ...utils.DBOption) (float64, error) {
	var total float64
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).Model(&model.Position{}).
		Where("status = ?", dto.PositionStatusOpen).
		Select("COALESCE(SUM(investment_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *positionRepository) ClosedStats(ctx context.Context) (*model.ClosedTradeStats, error) {
	var stats model.ClosedTradeStats
	err := r.db.WithContext(ctx).Model(&model.Position{}).
		Where("status = ?", dto.PositionStatusClosed).
		Select(`
			COUNT(*) AS total_trades,
			COUNT(CASE WHEN pnl_pct > 0 THEN 1 END) AS win_count,
			COUNT(CASE WHEN pnl_pct <= 0 THEN 1 END) AS loss_count,
			COALESCE(AVG(pnl_pct), 0) AS avg_profit_pct,
			COALESCE(AVG(CASE WHEN pnl_pct > 0 THEN pnl_pct END), 0) AS avg_win_pct,
			COALESCE(AVG(CASE WHEN pnl_pct <= 0 THEN pnl_pct END), 0) AS avg_loss_pct,
			COALESCE(MAX(pnl_pct), 0) AS max_profit_pct,
			COALESCE(MIN(pnl_pct), 0) AS max_loss_pct,
			COALESCE(SUM(pnl_pct), 0) AS total_pnl_pct`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *positionRepository) MonthlyStats(ctx context.Context, limit int) ([]model.MonthlyTradeStats, error) {
	var monthly []model.MonthlyTradeStats
	err := r.db.WithContext(ctx).Model(&model.Position{}).
		Where("status = ? AND exit_date IS NOT NULL", dto.PositionStatusClosed).
		Select(`
			TO_CHAR(exit_date, 'YYYY-MM') AS month,
			COUNT(*) AS trades,
			COUNT(CASE WHEN pnl_pct > 0 THEN 1 END) AS wins,
			COALESCE(SUM(pnl_pct), 0) AS total_profit_pct,
			COALESCE(AVG(pnl_pct), 0) AS avg_profit_pct`).
		Group("TO_CHAR(exit_date, 'YYYY-MM')").
		Order("month DESC").
		Limit(limit).
		Scan(&monthly).Error
	if err != nil {
		return nil, err
	}
	return monthly, nil
}

func (r *positionRepository) FirstEntryDate(ctx context.Context) (*model.Position, error) {
	var position model.Position
	err := r.db.WithContext(ctx).Order("entry_date ASC").First(&position).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}
