package binance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// ExchangeID はレジストリ上のBinanceの識別子です。
const ExchangeID = "binance"

// maxKlines は /api/v3/klines が1回で返す最大件数です。
const maxKlines = 1000

// intervals はBinanceが提供する時間足です。10m と 45m は存在しません。
var intervals = map[selentity.Timeframe]string{
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "1h",
	"2h":  "2h",
	"4h":  "4h",
	"1d":  "1d",
	"1w":  "1w",
	"1M":  "1M",
}

// Market implements usecase.MarketProvider on top of the go-binance spot client.
type Market struct {
	client *gobinance.Client
}

var _ usecase.MarketProvider = (*Market)(nil)

// NewMarket creates a Binance market adapter. httpClient may be nil.
func NewMarket(cfg Config, httpClient *http.Client) *Market {
	client := gobinance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		client.HTTPClient = httpClient
	}
	slog.Debug("binance client configured", "baseURL", client.BaseURL)
	return &Market{client: client}
}

// SymbolID は "ETH/USDT" を "ETHUSDT" に変換します。
func SymbolID(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", ""))
}

// Interval は時間足に対応するBinanceのintervalを返します。
func Interval(tf selentity.Timeframe) (string, error) {
	iv, ok := intervals[tf]
	if !ok {
		return "", fmt.Errorf("%w: binance has no %q interval", domain.ErrUnsupportedTimeframe, tf)
	}
	return iv, nil
}

// Candles retrieves klines in ascending time order.
func (m *Market) Candles(ctx context.Context, symbol string, tf selentity.Timeframe, limit int) ([]entity.Candle, error) {
	iv, err := Interval(tf)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxKlines {
		limit = maxKlines
	}

	klines, err := m.client.NewKlinesService().
		Symbol(SymbolID(symbol)).
		Interval(iv).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	candles := make([]entity.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := translateKline(k)
		if err != nil {
			return nil, fmt.Errorf("failed to translate kline: %w", err)
		}
		c.Exchange = ExchangeID
		c.Symbol = symbol
		c.Timeframe = string(tf)
		candles = append(candles, c)
	}
	return candles, nil
}

func translateKline(k *gobinance.Kline) (entity.Candle, error) {
	fields := []string{k.Open, k.High, k.Low, k.Close, k.Volume}
	var v [5]float64
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse %q: %w", s, err)
		}
		v[i] = f
	}
	vol := v[4]
	return entity.Candle{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   v[0],
		High:   v[1],
		Low:    v[2],
		Close:  v[3],
		Volume: &vol,
	}, nil
}

// Symbols returns trading spot pairs as "BASE/QUOTE".
func (m *Market) Symbols(ctx context.Context) ([]string, error) {
	info, err := m.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		out = append(out, s.BaseAsset+"/"+s.QuoteAsset)
	}
	return out, nil
}

// translateError maps API error payloads to ErrDataSource and everything else to ErrNetwork.
func translateError(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return &domain.DataSourceError{Message: fmt.Sprintf("binance %d: %s", apiErr.Code, apiErr.Message)}
	}
	return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
}
