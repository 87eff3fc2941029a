package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// maxIngestLimit は1リクエストで取得する最大件数です。
const maxIngestLimit = MaxServeLimit

// RateLimiter は上流APIの呼び出し頻度を制限します。
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// IngestRequest は取り込み対象を表します。
type IngestRequest struct {
	Exchange   string
	Symbols    []string
	Timeframes []selentity.Timeframe
	Days       int
	NoStore    bool // trueなら取得のみ行い保存しない
}

// IngestSummary は取り込み結果の集計です。
type IngestSummary struct {
	Fetched int // 取得したローソク足の件数
	Stored  int // 保存したローソク足の件数
	Failed  int // 失敗した (symbol, timeframe) の組数
}

// IngestUsecase は取引所からデータを取得し、データベースに永続化するユースケースです。
type IngestUsecase struct {
	providers   Providers
	candle      CandleRepository
	rateLimiter RateLimiter
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(providers Providers, candle CandleRepository, rateLimiter RateLimiter) *IngestUsecase {
	return &IngestUsecase{providers: providers, candle: candle, rateLimiter: rateLimiter}
}

// IngestLimit は days 日分をカバーする件数を返します。1件以上、上限以下に丸めます。
func IngestLimit(tf selentity.Timeframe, days int) (int, error) {
	d, ok := tf.Duration()
	if !ok {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	if days <= 0 {
		days = 1
	}
	n := int((time.Duration(days) * 24 * time.Hour) / d)
	return min(max(n, 1), maxIngestLimit), nil
}

func (iu *IngestUsecase) ingestOne(ctx context.Context, mp MarketProvider, req IngestRequest, symbol string, tf selentity.Timeframe) (fetched, stored int, err error) {
	limit, err := IngestLimit(tf, req.Days)
	if err != nil {
		return 0, 0, err
	}
	cs, err := mp.Candles(ctx, symbol, tf, limit)
	if err != nil {
		return 0, 0, err
	}
	cs = tag(cs, req.Exchange, MarketDataQuery{Symbol: symbol, Timeframe: string(tf)})
	if req.NoStore || iu.candle == nil {
		return len(cs), 0, nil
	}
	if err := iu.candle.UpsertBatch(ctx, cs); err != nil {
		return len(cs), 0, err
	}
	return len(cs), len(cs), nil
}

// IngestAll は全銘柄・全時間足のデータを取得して保存します。
// 1組の失敗で処理を止めずにログに出力し、次の組へ進みます。
// コンテキストがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, req IngestRequest) (IngestSummary, error) {
	var sum IngestSummary
	mp, err := iu.providers.Get(req.Exchange)
	if err != nil {
		return sum, err
	}

	for _, s := range req.Symbols {
		for _, tf := range req.Timeframes {
			if iu.rateLimiter != nil {
				if err := iu.rateLimiter.Wait(ctx); err != nil {
					return sum, err
				}
			}
			fetched, stored, err := iu.ingestOne(ctx, mp, req, s, tf)
			sum.Fetched += fetched
			sum.Stored += stored
			if err != nil {
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				sum.Failed++
				slog.Error("failed to ingest data", "exchange", req.Exchange, "symbol", s, "timeframe", tf, "error", err)
				continue
			}
			slog.Info("ingested candles", "exchange", req.Exchange, "symbol", s, "timeframe", tf, "fetched", fetched, "stored", stored)
		}
	}
	return sum, nil
}
