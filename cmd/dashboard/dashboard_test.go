package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	i18nadapters "quant_dashboard/internal/feature/i18n/adapters"
	layoutentity "quant_dashboard/internal/feature/layout/domain/entity"
	"quant_dashboard/internal/platform/config"
)

func TestWSURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://127.0.0.1:5000", "ws://127.0.0.1:5000/ws"},
		{"https://dash.example.com/", "wss://dash.example.com/ws"},
		{"ws://already", "ws://already/ws"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wsURL(tt.in), tt.in)
	}
}

func TestSimulateLayout(t *testing.T) {
	base := layoutOptions{width: 1440, height: 900, header: 56, function: 240, right: 320}

	tests := []struct {
		name        string
		fnTarget    int
		rightTarget int
		wantFn      int
		wantChart   int
		wantRight   int
		wantEvents  int
	}{
		{name: "no drag keeps rendered geometry", wantFn: 240, wantChart: 600, wantRight: 320},
		{name: "drag within bounds", fnTarget: 300, rightTarget: 500, wantFn: 300, wantChart: 540, wantRight: 500, wantEvents: 4},
		{name: "clamped to half the viewport", fnTarget: 600, rightTarget: 1000, wantFn: 394, wantChart: 446, wantRight: 720, wantEvents: 4},
		{name: "clamped to minimums", fnTarget: 10, rightTarget: 50, wantFn: 100, wantChart: 740, wantRight: 220, wantEvents: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := base
			o.functionTarget = tt.fnTarget
			o.rightTarget = tt.rightTarget

			got := simulateLayout(o, layoutentity.DefaultConstraints)

			assert.Equal(t, 844, got.PanelHeight)
			assert.Equal(t, tt.wantFn, got.FunctionSectionHeight)
			assert.Equal(t, tt.wantChart, got.ChartFlexBasis)
			assert.Equal(t, tt.wantRight, got.RightPanelWidth)
			assert.Equal(t, 1440-tt.wantRight, got.LeftFlexBasis)
			assert.Equal(t, tt.wantEvents, got.DragEvents)
		})
	}
}

func TestLayoutCmd_PrintsYAML(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&config.ClientConfig{LogLevel: "error"})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"layout", "--drag-function-to", "300"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "function_section_height: 300")
	assert.Contains(t, out.String(), "drag_events: 2")
}

func marketServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/marketdata", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadCmd(t *testing.T) {
	srv := marketServer(t, `{"data":[
		{"exchange":"okx","time":1700000000000,"open":100,"high":106,"low":99,"close":105},
		{"exchange":"okx","time":1700003600000,"open":105,"high":111,"low":104,"close":110}
	]}`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&config.ClientConfig{LogLevel: "error"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"load", "--server", srv.URL, "--exchange", "okx", "--pair", "BTC/USDT", "--timeframe", "1h", "--lang", "en-US"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "110.00  +4.76%")
	assert.Contains(t, out.String(), "BTC/USDT  OKX  1 Hour  candles=2")
	assert.Empty(t, errOut.String())
}

func TestLoadCmd_DataSourceErrorFails(t *testing.T) {
	srv := marketServer(t, `{"error":"symbol not found"}`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&config.ClientConfig{LogLevel: "error"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"load", "--server", srv.URL, "--lang", "en-US"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol not found")
	assert.Contains(t, errOut.String(), "alert:")
	assert.NotContains(t, out.String(), "candles=")
}

func TestPrefsStore(t *testing.T) {
	store, closeFn, err := prefsStore(context.Background(), &config.ClientConfig{})
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &i18nadapters.MemoryStore{}, store)

	store, closeFn, err = prefsStore(context.Background(), &config.ClientConfig{PrefsFile: filepath.Join(t.TempDir(), "prefs.json")})
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &i18nadapters.FileStore{}, store)

	_, _, err = prefsStore(context.Background(), &config.ClientConfig{PrefsRedisAddr: "127.0.0.1:1"})
	assert.Error(t, err, "unreachable Redis is reported")
}
