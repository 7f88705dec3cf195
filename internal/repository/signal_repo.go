package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"breakout-trading/internal/dto"
	"breakout-trading/internal/model"
	"breakout-trading/pkg/utils"
)

type SignalRepository interface {
	// Append stores the signal unless one already exists for the same
	// (ticker, alert date). It returns false for duplicates, which is a
	// normal outcome, not an error.
	Append(ctx context.Context, signal *model.Signal, opts ...utils.DBOption) (stored bool, err error)
	HasSignalOn(ctx context.Context, ticker string, date time.Time) (bool, error)
	Get(ctx context.Context, param dto.GetSignalsParam) ([]model.Signal, error)
	LastScanAt(ctx context.Context) (*time.Time, error)
}

type signalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Append(ctx context.Context, signal *model.Signal, opts ...utils.DBOption) (bool, error) {
	signal.AlertDate = utils.DateOnly(signal.AlertDate)

	// Insert-if-absent on the unique (ticker, alert_date) index resolves
	// concurrent duplicate inserts to exactly one stored row.
	res := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}, {Name: "alert_date"}},
			DoNothing: true,
		}).
		Create(signal)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *signalRepository) HasSignalOn(ctx context.Context, ticker string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Signal{}).
		Where("ticker = ? AND alert_date = ?", ticker, utils.DateOnly(date)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *signalRepository) Get(ctx context.Context, param dto.GetSignalsParam) ([]model.Signal, error) {
	var signals []model.Signal

	q := r.db.WithContext(ctx).Model(&model.Signal{})

	if param.Date != nil {
		q = q.Where("alert_date = ?", utils.DateOnly(*param.Date))
	}
	if param.Days != nil {
		since := utils.DateOnly(utils.TimeNowET()).AddDate(0, 0, -*param.Days)
		q = q.Where("alert_date >= ? AND alert_date < ?", since, utils.DateOnly(utils.TimeNowET()))
	}

	if err := q.Order("alert_date DESC, created_at DESC").Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

func (r *signalRepository) LastScanAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := r.db.WithContext(ctx).Model(&model.Signal{}).
		Select("MAX(created_at)").Scan(&last).Error
	if err != nil {
		return nil, err
	}
	return last, nil
}
