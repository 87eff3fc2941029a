package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"quant_dashboard/internal/feature/marketdata/adapters/apiclient/dto"
	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// Client は /api/marketdata を呼び出す CandleSource 実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがCandleSourceを実装していることをコンパイル時に検証します。
var _ usecase.CandleSource = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, client: client}
}

// MarketDataURL は選択キーに対応するリクエストURLを組み立てます。
// パラメータ順は exchanges, symbol, timeframe, limit で固定です。
func (c *Client) MarketDataURL(key selentity.Key, limit int) string {
	return fmt.Sprintf("%s/api/marketdata?exchanges=%s&symbol=%s&timeframe=%s&limit=%d",
		c.cfg.BaseURL,
		queryEscape(key.ExchangeID()),
		queryEscape(key.Pair),
		queryEscape(string(key.Timeframe)),
		limit,
	)
}

// "/" はクエリ内で合法なので、ペア名 "ETH/USDT" はそのまま送る
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2F", "/")
}

// FetchCandles は生のローソク足を取得します。
// HTTPエラーと通信失敗は ErrNetwork、error フィールドは DataSourceError、
// 空の data は ErrEmptyData に対応づけます。
func (c *Client) FetchCandles(ctx context.Context, key selentity.Key, limit int) ([]entity.RawCandlePoint, error) {
	var body dto.Envelope
	if err := c.getJSON(ctx, c.MarketDataURL(key, limit), &body); err != nil {
		return nil, err
	}
	if body.Error != nil {
		return nil, &domain.DataSourceError{Message: *body.Error}
	}
	if len(body.Data) == 0 {
		return nil, domain.ErrEmptyData
	}
	return body.Data, nil
}

// AvailablePairs は /api/available_pairs から取引所ごとのペア一覧を取得します。
func (c *Client) AvailablePairs(ctx context.Context) (map[string][]string, error) {
	var out map[string][]string
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/api/available_pairs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("%w: http %d", domain.ErrNetwork, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrNetwork, err)
	}
	return nil
}
