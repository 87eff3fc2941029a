package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

var ethKey = selentity.Key{Pair: "ETH/USDT", Exchange: "OKX", Timeframe: "4h"}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, srv.Client())
}

func TestClient_MarketDataURL(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{BaseURL: "http://example.test/"}, http.DefaultClient)

	assert.Equal(t,
		"http://example.test/api/marketdata?exchanges=okx&symbol=ETH/USDT&timeframe=4h&limit=500",
		c.MarketDataURL(ethKey, 500))
	assert.Equal(t,
		"http://example.test/api/marketdata?exchanges=binance&symbol=BTC+USDT%26x&timeframe=1M&limit=10",
		c.MarketDataURL(selentity.Key{Pair: "BTC USDT&x", Exchange: "Binance", Timeframe: "1M"}, 10))
}

func TestClient_FetchCandles_EndToEnd(t *testing.T) {
	t.Parallel()

	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/marketdata", r.URL.Path)
		assert.Equal(t, "exchanges=okx&symbol=ETH/USDT&timeframe=4h&limit=500", r.URL.RawQuery)
		assert.Equal(t, "ETH/USDT", r.URL.Query().Get("symbol"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"time": 1700000000000, "open": "10", "high": "11", "low": "9", "close": "10.5"}]}`))
	})

	rec := &renderRecorder{}
	p := usecase.NewPipeline(c, rec, nil, nil, nil, usecase.PipelineOptions{Limit: 500})

	_, err := p.LoadSync(context.Background(), ethKey)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, rec.candles, 1)
	got := rec.candles[0]
	assert.Equal(t, int64(1700000000), got.Time.Unix())
	assert.Equal(t, 10.0, got.Open)
	assert.Equal(t, 11.0, got.High)
	assert.Equal(t, 9.0, got.Low)
	assert.Equal(t, 10.5, got.Close)
}

type renderRecorder struct {
	candles []entity.Candle
}

func (r *renderRecorder) Render(c []entity.Candle) { r.candles = c }

func TestClient_FetchCandles_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "error field is a data source error",
			status:  http.StatusOK,
			body:    `{"error": "Failed to fetch data from any exchange"}`,
			wantErr: domain.ErrDataSource,
			wantMsg: "Failed to fetch data from any exchange",
		},
		{
			name:    "empty data array",
			status:  http.StatusOK,
			body:    `{"data": []}`,
			wantErr: domain.ErrEmptyData,
		},
		{
			name:    "missing data array",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: domain.ErrEmptyData,
		},
		{
			name:    "non-2xx status",
			status:  http.StatusBadGateway,
			body:    `{"data": [{"time": 1, "open": 1, "high": 1, "low": 1, "close": 1}]}`,
			wantErr: domain.ErrNetwork,
		},
		{
			name:    "undecodable body",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: domain.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			pts, err := c.FetchCandles(context.Background(), ethKey, 500)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, pts)
			if tt.wantMsg != "" {
				var ds *domain.DataSourceError
				require.ErrorAs(t, err, &ds)
				assert.Equal(t, tt.wantMsg, ds.Message)
			}
		})
	}
}

func TestClient_FetchCandles_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url}, &http.Client{Timeout: time.Second})
	_, err := c.FetchCandles(context.Background(), ethKey, 500)

	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_FetchCandles_ContextCanceled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchCandles(ctx, ethKey, 500)

	require.ErrorIs(t, err, domain.ErrNetwork)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_AvailablePairs(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/available_pairs", r.URL.Path)
		_, _ = w.Write([]byte(`{"okx": ["BTC/USDT", "ETH/USDT"], "binance": []}`))
	})

	got, err := c.AvailablePairs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"okx": {"BTC/USDT", "ETH/USDT"}, "binance": {}}, got)
}

func TestClient_AvailablePairs_HTTPError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.AvailablePairs(context.Background())

	assert.ErrorIs(t, err, domain.ErrNetwork)
}
