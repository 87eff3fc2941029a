// Package adapters は marketdata の永続化アダプターを提供します。
package adapters

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
)

type candleStore struct {
	db *gorm.DB
}

var _ usecase.CandleRepository = (*candleStore)(nil)

// NewCandleRepository はgormで実装したCandleRepositoryを返します。
func NewCandleRepository(db *gorm.DB) *candleStore {
	return &candleStore{db: db}
}

// CandleModel は取り込み済みローソク足の行です。
// (exchange, symbol, timeframe, open_time) で一意です。
type CandleModel struct {
	ID        uint      `gorm:"primaryKey"`
	Exchange  string    `gorm:"size:32;not null;uniqueIndex:candle_ex_sym_tf_time,priority:1"`
	Symbol    string    `gorm:"size:32;not null;uniqueIndex:candle_ex_sym_tf_time,priority:2"`
	Timeframe string    `gorm:"size:8;not null;uniqueIndex:candle_ex_sym_tf_time,priority:3"`
	OpenTime  time.Time `gorm:"not null;uniqueIndex:candle_ex_sym_tf_time,priority:4"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume *float64
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Exchange:  e.Exchange,
		Symbol:    e.Symbol,
		Timeframe: e.Timeframe,
		OpenTime:  e.Time.UTC(),
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		Volume:    e.Volume,
	}
}

func (m CandleModel) toEntity() entity.Candle {
	return entity.Candle{
		Exchange:  m.Exchange,
		Symbol:    m.Symbol,
		Timeframe: m.Timeframe,
		Time:      m.OpenTime.UTC(),
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
	}
}

// UpsertBatch は一意キーが衝突した行の価格と出来高を更新します。
func (r *candleStore) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "exchange"}, {Name: "symbol"}, {Name: "timeframe"}, {Name: "open_time"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

// Find は最新 limit 件を古い順で返します。limit<=0 なら全件です。
func (r *candleStore) Find(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Where("exchange = ? AND symbol = ? AND timeframe = ?", exchange, symbol, timeframe).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "open_time"}, Desc: true})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	slices.Reverse(out)
	return out, nil
}
