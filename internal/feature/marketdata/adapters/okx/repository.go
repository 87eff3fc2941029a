package okx

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

	"quant_dashboard/internal/feature/marketdata/adapters/okx/dto"
	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// ExchangeID はレジストリ上のOKXの識別子です。
const ExchangeID = "okx"

// maxCandles は /market/candles が1回で返す最大件数です。
const maxCandles = 300

// bars はダッシュボードの時間足からOKXのbarパラメータへの対応表です。
// 日足以上はUTC境界のバーを使います。10m と 45m はOKXに存在しません。
var bars = map[selentity.Timeframe]string{
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "1H",
	"2h":  "2H",
	"4h":  "4H",
	"1d":  "1Dutc",
	"1w":  "1Wutc",
	"1M":  "1Mutc",
}

// Market はOKX公開APIから相場データを取得するMarketProvider実装です。
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

// InstID は "ETH/USDT" を "ETH-USDT" に変換します。
func InstID(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", "-"))
}

// Bar は時間足に対応するOKXのbarを返します。
func Bar(tf selentity.Timeframe) (string, error) {
	b, ok := bars[tf]
	if !ok {
		return "", fmt.Errorf("%w: okx has no %q bar", domain.ErrUnsupportedTimeframe, tf)
	}
	return b, nil
}

// Candles はOKXからローソク足を取得し、古い順に並べて返します。
func (m *Market) Candles(ctx context.Context, symbol string, tf selentity.Timeframe, limit int) ([]entity.Candle, error) {
	bar, err := Bar(tf)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxCandles {
		limit = maxCandles
	}

	q := url.Values{}
	q.Set("instId", InstID(symbol))
	q.Set("bar", bar)
	q.Set("limit", strconv.Itoa(limit))

	var body dto.CandlesResponse
	if err := m.get(ctx, "/api/v5/market/candles", q, &body); err != nil {
		return nil, err
	}
	if body.Code != "0" {
		return nil, &domain.DataSourceError{Message: fmt.Sprintf("okx %s: %s", body.Code, body.Msg)}
	}

	candles := make([]entity.Candle, 0, len(body.Data))
	for _, row := range body.Data {
		c, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		c.Exchange = ExchangeID
		c.Symbol = symbol
		c.Timeframe = string(tf)
		candles = append(candles, c)
	}
	// OKXは新しい順で返すので古い順に並べ替える
	slices.Reverse(candles)
	return candles, nil
}

func parseRow(row []string) (entity.Candle, error) {
	if len(row) < 6 {
		return entity.Candle{}, fmt.Errorf("okx: short candle row %v", row)
	}
	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse ts %q: %w", row[0], err)
	}
	var v [5]float64
	for i := range v {
		f, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse field %d %q: %w", i+1, row[i+1], err)
		}
		v[i] = f
	}
	vol := v[4]
	return entity.Candle{
		Time:   time.UnixMilli(ms).UTC(),
		Open:   v[0],
		High:   v[1],
		Low:    v[2],
		Close:  v[3],
		Volume: &vol,
	}, nil
}

// Symbols は現物で取引中のペアを "BASE/QUOTE" 形式で返します。
func (m *Market) Symbols(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("instType", "SPOT")

	var body dto.InstrumentsResponse
	if err := m.get(ctx, "/api/v5/public/instruments", q, &body); err != nil {
		return nil, err
	}
	if body.Code != "0" {
		return nil, &domain.DataSourceError{Message: fmt.Sprintf("okx %s: %s", body.Code, body.Msg)}
	}

	out := make([]string, 0, len(body.Data))
	for _, inst := range body.Data {
		if inst.State != "" && inst.State != "live" {
			continue
		}
		out = append(out, inst.BaseCcy+"/"+inst.QuoteCcy)
	}
	return out, nil
}

func (m *Market) get(ctx context.Context, path string, q url.Values, out any) error {
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
		return fmt.Errorf("%w: okx http %d", domain.ErrNetwork, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("okx: decode %s: %w", path, err)
	}
	return nil
}
