// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	mdadapters "quant_dashboard/internal/feature/marketdata/adapters"
	"quant_dashboard/internal/feature/marketdata/adapters/binance"
	"quant_dashboard/internal/feature/marketdata/adapters/okx"
	"quant_dashboard/internal/feature/marketdata/adapters/twelvedata"
	"quant_dashboard/internal/feature/marketdata/usecase"
	"quant_dashboard/internal/platform/cache"
	infrahttp "quant_dashboard/internal/platform/http"
)

// storedCandleTTL is how long a stored-candle lookup stays in Redis.
const storedCandleTTL = 5 * time.Minute

// NewProviders creates the OKX and Binance providers, plus Twelve Data when
// TWELVE_DATA_API_KEY is set, wrapped with the Redis cache when rdb is non-nil.
// A positive timeout overrides the per-exchange default.
func NewProviders(rdb *redis.Client, timeout time.Duration) usecase.Providers {
	return newProviders(rdb, timeout, twelvedata.LoadConfig())
}

func newProviders(rdb *redis.Client, timeout time.Duration, tdCfg twelvedata.Config) usecase.Providers {
	okxCfg := okx.LoadConfig()
	binanceCfg := binance.LoadConfig()
	if timeout > 0 {
		okxCfg.Timeout = timeout
		binanceCfg.Timeout = timeout
		tdCfg.Timeout = timeout
	}

	providers := usecase.Providers{
		okx.ExchangeID:     okx.NewMarket(okxCfg, infrahttp.NewHTTPClient(okxCfg.Timeout)),
		binance.ExchangeID: binance.NewMarket(binanceCfg, infrahttp.NewHTTPClient(binanceCfg.Timeout)),
	}
	if tdCfg.Enabled() {
		providers[twelvedata.ExchangeID] = twelvedata.NewMarket(tdCfg, infrahttp.NewHTTPClient(tdCfg.Timeout))
	}
	return cache.CacheProviders(rdb, providers)
}

// NewCandleRepository returns the gorm candle store, cached when Redis is
// available, or nil when no database is configured.
func NewCandleRepository(db *gorm.DB, rdb *redis.Client) usecase.CandleRepository {
	if db == nil {
		return nil
	}
	store := mdadapters.NewCandleRepository(db)
	if rdb == nil {
		return store
	}
	return cache.NewCachingCandleRepository(rdb, storedCandleTTL, store, "candles")
}
