package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quant_dashboard/internal/feature/marketdata/domain"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

func newTestMarket(t *testing.T, h http.HandlerFunc) *Market {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewMarket(Config{BaseURL: srv.URL}, srv.Client())
}

func TestInstIDAndBar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ETH-USDT", InstID("eth/usdt"))
	assert.Equal(t, "BTC-USDT", InstID(" BTC/USDT "))

	b, err := Bar("4h")
	require.NoError(t, err)
	assert.Equal(t, "4H", b)

	b, err = Bar("1d")
	require.NoError(t, err)
	assert.Equal(t, "1Dutc", b)

	for _, tf := range []selentity.Timeframe{"10m", "45m", "3d"} {
		_, err := Bar(tf)
		assert.ErrorIs(t, err, domain.ErrUnsupportedTimeframe, string(tf))
	}
}

func TestMarket_Candles_Success(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/market/candles", r.URL.Path)
		assert.Equal(t, "ETH-USDT", r.URL.Query().Get("instId"))
		assert.Equal(t, "4H", r.URL.Query().Get("bar"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "0",
			"msg": "",
			"data": [
				["1700014400000", "10.5", "12", "10", "11.5", "300", "3000", "3000", "1"],
				["1700000000000", "10", "11", "9", "10.5", "250", "2500", "2500", "1"]
			]
		}`))
	})

	cs, err := m.Candles(context.Background(), "ETH/USDT", "4h", 2)

	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), cs[0].Time, "oldest first")
	assert.Equal(t, 10.0, cs[0].Open)
	assert.Equal(t, 11.0, cs[0].High)
	assert.Equal(t, 9.0, cs[0].Low)
	assert.Equal(t, 10.5, cs[0].Close)
	require.NotNil(t, cs[0].Volume)
	assert.Equal(t, 250.0, *cs[0].Volume)
	assert.Equal(t, "okx", cs[1].Exchange)
	assert.Equal(t, "ETH/USDT", cs[1].Symbol)
	assert.Equal(t, "4h", cs[1].Timeframe)
}

func TestMarket_Candles_LimitIsCapped(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "300", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"code": "0", "msg": "", "data": []}`))
	})

	cs, err := m.Candles(context.Background(), "BTC/USDT", "1h", 1000)
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestMarket_Candles_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error code", http.StatusOK, `{"code": "51001", "msg": "Instrument ID does not exist", "data": []}`, domain.ErrDataSource},
		{"http error", http.StatusServiceUnavailable, `oops`, domain.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := m.Candles(context.Background(), "BTC/USDT", "1h", 10)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("malformed number", func(t *testing.T) {
		t.Parallel()
		m := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code": "0", "data": [["1700000000000", "x", "1", "1", "1", "1"]]}`))
		})

		_, err := m.Candles(context.Background(), "BTC/USDT", "1h", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse field 1")
	})

	t.Run("unsupported timeframe never calls upstream", func(t *testing.T) {
		t.Parallel()
		m := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("upstream should not be called")
		})

		_, err := m.Candles(context.Background(), "BTC/USDT", "45m", 10)
		require.ErrorIs(t, err, domain.ErrUnsupportedTimeframe)
	})
}

func TestMarket_Symbols(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/public/instruments", r.URL.Path)
		assert.Equal(t, "SPOT", r.URL.Query().Get("instType"))
		_, _ = w.Write([]byte(`{"code": "0", "msg": "", "data": [
			{"instId": "BTC-USDT", "baseCcy": "BTC", "quoteCcy": "USDT", "state": "live"},
			{"instId": "ETH-USDT", "baseCcy": "ETH", "quoteCcy": "USDT", "state": "live"},
			{"instId": "OLD-USDT", "baseCcy": "OLD", "quoteCcy": "USDT", "state": "suspend"}
		]}`))
	})

	got, err := m.Symbols(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, got)
}
