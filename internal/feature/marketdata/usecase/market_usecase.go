package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

const (
	// DefaultExchange はexchangesパラメータ省略時の取引所です。
	DefaultExchange = "okx"
	// DefaultSymbol はsymbolパラメータ省略時の取引ペアです。
	DefaultSymbol = "BTC/USDT"
	// DefaultTimeframe はtimeframeパラメータ省略時の時間足です。
	DefaultTimeframe = "1h"
	// DefaultServeLimit はlimitパラメータ省略時の返却件数です。
	DefaultServeLimit = 200
	// MaxServeLimit は1取引所あたりの最大返却件数です。
	MaxServeLimit = 1000

	fanOutLimit = 4
)

// MarketProvider は1つの取引所からローソク足と上場ペアを取得します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketProvider interface {
	// Candles は時間順（古い順）のローソク足を返します。
	Candles(ctx context.Context, symbol string, tf selentity.Timeframe, limit int) ([]entity.Candle, error)
	// Symbols は "BASE/QUOTE" 形式の取引可能ペアを返します。
	Symbols(ctx context.Context) ([]string, error)
}

// CandleRepository は取り込み済みローソク足の永続化レイヤーを抽象化します。
type CandleRepository interface {
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
	Find(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error)
}

// Providers は小文字の取引所IDをキーとするプロバイダーのレジストリです。
type Providers map[string]MarketProvider

// Get は取引所IDに対応するプロバイダーを返します。
func (p Providers) Get(exchange string) (MarketProvider, error) {
	id := strings.ToLower(strings.TrimSpace(exchange))
	if mp, ok := p[id]; ok && mp != nil {
		return mp, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedExchange, exchange)
}

// MarketDataQuery は /api/marketdata のパラメータです。
type MarketDataQuery struct {
	Exchanges []string
	Symbol    string
	Timeframe string
	Limit     int
}

// MarketDataResult は取引所ごとの結果を連結したものです。
type MarketDataResult struct {
	Symbol    string
	Timeframe string
	Exchanges []string
	Candles   []entity.Candle
}

// MarketDataUsecase は複数取引所からのデータ取得を束ねます。
type MarketDataUsecase struct {
	providers   Providers
	store       CandleRepository
	exchanges   []string
	commonPairs []string
}

// NewMarketDataUsecase はMarketDataUsecaseを生成します。storeはnilでも構いません。
// exchangesは /api/available_pairs で列挙する取引所、commonPairsはその候補ペアです。
func NewMarketDataUsecase(providers Providers, store CandleRepository, exchanges, commonPairs []string) *MarketDataUsecase {
	return &MarketDataUsecase{
		providers:   providers,
		store:       store,
		exchanges:   exchanges,
		commonPairs: commonPairs,
	}
}

// Normalize はクエリのデフォルト値と上限を適用します。
func (q MarketDataQuery) Normalize() MarketDataQuery {
	var ids []string
	for _, e := range q.Exchanges {
		if id := strings.ToLower(strings.TrimSpace(e)); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		ids = []string{DefaultExchange}
	}
	q.Exchanges = ids

	if strings.TrimSpace(q.Symbol) == "" {
		q.Symbol = DefaultSymbol
	}
	if q.Timeframe == "" {
		q.Timeframe = DefaultTimeframe
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultServeLimit
	case q.Limit > MaxServeLimit:
		q.Limit = MaxServeLimit
	}
	return q
}

type exchangeResult struct {
	candles []entity.Candle
	ok      bool
}

// GetMarketData は各取引所から並行して取得します。取引所単位の失敗はログに記録して
// スキップし、すべて失敗した場合のみ ErrNoExchangeData を返します。
func (u *MarketDataUsecase) GetMarketData(ctx context.Context, q MarketDataQuery) (*MarketDataResult, error) {
	q = q.Normalize()
	slog.Info("market data request",
		"exchanges", q.Exchanges, "symbol", q.Symbol, "timeframe", q.Timeframe, "limit", q.Limit)

	results := make([]exchangeResult, len(q.Exchanges))
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, ex := range q.Exchanges {
		g.Go(func() error {
			results[i] = u.fetchOne(ctx, ex, q)
			return nil
		})
	}
	_ = g.Wait()

	res := &MarketDataResult{
		Symbol:    q.Symbol,
		Timeframe: q.Timeframe,
		Exchanges: q.Exchanges,
	}
	served := false
	for _, r := range results {
		if !r.ok {
			continue
		}
		served = true
		res.Candles = append(res.Candles, r.candles...)
	}
	if !served {
		return nil, domain.ErrNoExchangeData
	}
	slog.Info("market data served", "symbol", q.Symbol, "points", len(res.Candles))
	return res, nil
}

func (u *MarketDataUsecase) fetchOne(ctx context.Context, exchange string, q MarketDataQuery) exchangeResult {
	log := slog.With("exchange", exchange, "symbol", q.Symbol, "timeframe", q.Timeframe)

	mp, err := u.providers.Get(exchange)
	if err != nil {
		log.Error("failed to fetch market data", "error", err)
		return exchangeResult{}
	}

	cs, err := mp.Candles(ctx, q.Symbol, selentity.Timeframe(q.Timeframe), q.Limit)
	if err == nil {
		return exchangeResult{candles: tag(cs, exchange, q), ok: true}
	}
	log.Error("failed to fetch market data", "error", err)

	if u.store == nil {
		return exchangeResult{}
	}
	stored, serr := u.store.Find(ctx, exchange, q.Symbol, q.Timeframe, q.Limit)
	if serr != nil || len(stored) == 0 {
		if serr != nil {
			log.Error("failed to read stored candles", "error", serr)
		}
		return exchangeResult{}
	}
	// 上流が落ちていても取り込み済みのデータがあれば返す
	log.Warn("serving stored candles", "points", len(stored))
	return exchangeResult{candles: tag(stored, exchange, q), ok: true}
}

func tag(cs []entity.Candle, exchange string, q MarketDataQuery) []entity.Candle {
	for i := range cs {
		cs[i].Exchange = exchange
		cs[i].Symbol = q.Symbol
		cs[i].Timeframe = q.Timeframe
	}
	return cs
}

// AvailablePairs は取引所ごとに、上場している共通ペアを返します。
// 取得に失敗した取引所は空リストになります。
func (u *MarketDataUsecase) AvailablePairs(ctx context.Context) map[string][]string {
	lists := make([][]string, len(u.exchanges))
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, ex := range u.exchanges {
		g.Go(func() error {
			lists[i] = u.pairsFor(ctx, ex)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string][]string, len(u.exchanges))
	for i, ex := range u.exchanges {
		out[ex] = lists[i]
	}
	return out
}

func (u *MarketDataUsecase) pairsFor(ctx context.Context, exchange string) []string {
	supported := []string{}
	mp, err := u.providers.Get(exchange)
	if err != nil {
		slog.Error("failed to list pairs", "exchange", exchange, "error", err)
		return supported
	}
	listed, err := mp.Symbols(ctx)
	if err != nil {
		slog.Error("failed to list pairs", "exchange", exchange, "error", err)
		return supported
	}
	set := make(map[string]struct{}, len(listed))
	for _, s := range listed {
		set[s] = struct{}{}
	}
	for _, p := range u.commonPairs {
		if _, ok := set[p]; ok {
			supported = append(supported, p)
		}
	}
	return supported
}
