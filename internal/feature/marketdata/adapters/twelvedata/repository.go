package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"quant_dashboard/internal/feature/marketdata/adapters/twelvedata/dto"
	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// ExchangeID はレジストリ上のTwelve Dataの識別子です。
const ExchangeID = "twelvedata"

// maxOutputSize は /time_series の outputsize 上限です。
const maxOutputSize = 5000

// intervals はダッシュボードの時間足からTwelve Dataのintervalへの対応表です。
// 10m は存在しません。
var intervals = map[selentity.Timeframe]string{
	"5m":  "5min",
	"15m": "15min",
	"30m": "30min",
	"45m": "45min",
	"1h":  "1h",
	"2h":  "2h",
	"4h":  "4h",
	"1d":  "1day",
	"1w":  "1week",
	"1M":  "1month",
}

// Market はTwelve Data外部APIから相場データを取得するMarketProvider実装です。
type Market struct {
	cfg    Config
	client *http.Client
}

// MarketがMarketProviderを実装していることをコンパイル時に検証します。
var _ usecase.MarketProvider = (*Market)(nil)

// NewMarket は指定された設定とHTTPクライアントでMarketを生成します。
func NewMarket(cfg Config, client *http.Client) *Market {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Market{cfg: cfg, client: client}
}

// Interval は時間足に対応するintervalを返します。
func Interval(tf selentity.Timeframe) (string, error) {
	iv, ok := intervals[tf]
	if !ok {
		return "", fmt.Errorf("%w: twelvedata has no %q interval", domain.ErrUnsupportedTimeframe, tf)
	}
	return iv, nil
}

// Candles はTwelve Dataから時系列データを取得し、古い順に並べて返します。
func (m *Market) Candles(ctx context.Context, symbol string, tf selentity.Timeframe, limit int) ([]entity.Candle, error) {
	iv, err := Interval(tf)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxOutputSize {
		limit = maxOutputSize
	}

	q := url.Values{}
	q.Set("symbol", strings.ToUpper(strings.TrimSpace(symbol)))
	q.Set("interval", iv)
	q.Set("outputsize", strconv.Itoa(limit))
	q.Set("timezone", "UTC")

	var body dto.TimeSeriesResponse
	if err := m.get(ctx, "/time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, &domain.DataSourceError{Message: fmt.Sprintf("twelvedata %d: %s", body.Code, body.Message)}
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース（日足以上は日付のみ）
		tm, err := time.Parse(time.DateTime, v.Datetime)
		if err != nil {
			tm, err = time.Parse(time.DateOnly, v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}

		var ohlc [4]float64
		for i, s := range []string{v.Open, v.High, v.Low, v.Close} {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse price %q: %w", s, err)
			}
			ohlc[i] = f
		}

		c := entity.Candle{
			Exchange:  ExchangeID,
			Symbol:    symbol,
			Timeframe: string(tf),
			Time:      tm.UTC(),
			Open:      ohlc[0],
			High:      ohlc[1],
			Low:       ohlc[2],
			Close:     ohlc[3],
		}
		// 出来高は報告された場合のみ
		if v.Volume != "" {
			if vol, err := strconv.ParseFloat(v.Volume, 64); err == nil {
				c.Volume = &vol
			}
		}
		candles = append(candles, c)
	}
	slices.Reverse(candles)
	return candles, nil
}

// Symbols は暗号資産ペアの一覧を "BASE/QUOTE" 形式で返します。
func (m *Market) Symbols(ctx context.Context) ([]string, error) {
	var body dto.CryptocurrenciesResponse
	if err := m.get(ctx, "/cryptocurrencies", url.Values{}, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, &domain.DataSourceError{Message: "twelvedata: cryptocurrencies unavailable"}
	}

	out := make([]string, 0, len(body.Data))
	for _, d := range body.Data {
		if strings.Contains(d.Symbol, "/") {
			out = append(out, d.Symbol)
		}
	}
	return out, nil
}

func (m *Market) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("apikey", m.cfg.APIKey)
	u := fmt.Sprintf("%s%s?%s", m.cfg.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("%w: twelvedata http %d", domain.ErrNetwork, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("twelvedata: decode %s: %w", path, err)
	}
	return nil
}
