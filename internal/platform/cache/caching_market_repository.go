package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// CachingMarketRepository は取引所プロバイダーの応答をRedisにキャッシュします。
// キャッシュ期間は時間足1本分（TTLForTimeframe）で、上場ペア一覧は SymbolsTTL です。
type CachingMarketRepository struct {
	inner     usecase.MarketProvider
	rdb       *redis.Client
	exchange  string
	namespace string
}

var _ usecase.MarketProvider = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository はプロバイダーをRedisキャッシュでデコレートします。
// namespace が空なら "market" を使います。rdb が nil ならキャッシュせず素通しします。
func NewCachingMarketRepository(rdb *redis.Client, exchange string, inner usecase.MarketProvider, namespace string) *CachingMarketRepository {
	if namespace == "" {
		namespace = "market"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		exchange:  exchange,
		namespace: namespace,
	}
}

// CacheProviders は全プロバイダーをデコレートした新しいレジストリを返します。
func CacheProviders(rdb *redis.Client, providers usecase.Providers) usecase.Providers {
	if rdb == nil {
		return providers
	}
	out := make(usecase.Providers, len(providers))
	for id, p := range providers {
		out[id] = NewCachingMarketRepository(rdb, id, p, "")
	}
	return out
}

// Candles は namespace:exchange:symbol:timeframe:limit をキーにキャッシュします。
func (c *CachingMarketRepository) Candles(ctx context.Context, symbol string, tf selentity.Timeframe, limit int) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.Candles(ctx, symbol, tf, limit)
	}

	key := fmt.Sprintf("%s:%s:%s:%s:%d", c.namespace, safe(c.exchange), safe(symbol), safe(string(tf)), limit)

	var out []entity.Candle
	if getJSON(ctx, c.rdb, key, &out) {
		slog.Debug("market cache hit", "key", key)
		return out, nil
	}

	out, err := c.inner.Candles(ctx, symbol, tf, limit)
	if err != nil {
		return nil, err
	}
	setJSON(ctx, c.rdb, key, out, TTLForTimeframe(tf))
	return out, nil
}

// Symbols は namespace:exchange:symbols をキーにキャッシュします。
func (c *CachingMarketRepository) Symbols(ctx context.Context) ([]string, error) {
	if c.rdb == nil {
		return c.inner.Symbols(ctx)
	}

	key := fmt.Sprintf("%s:%s:symbols", c.namespace, safe(c.exchange))

	var out []string
	if getJSON(ctx, c.rdb, key, &out) {
		return out, nil
	}

	out, err := c.inner.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	setJSON(ctx, c.rdb, key, out, SymbolsTTL)
	return out, nil
}
