package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	i18nadapters "quant_dashboard/internal/feature/i18n/adapters"
	i18nhandler "quant_dashboard/internal/feature/i18n/transport/handler"
	"quant_dashboard/internal/feature/marketdata/domain"
	mdhandler "quant_dashboard/internal/feature/marketdata/transport/handler"
	"quant_dashboard/internal/feature/marketdata/usecase"
	"quant_dashboard/internal/platform/ws"
)

type stubMarket struct{}

func (stubMarket) GetMarketData(context.Context, usecase.MarketDataQuery) (*usecase.MarketDataResult, error) {
	return nil, domain.ErrNoExchangeData
}

func (stubMarket) AvailablePairs(context.Context) map[string][]string {
	return map[string][]string{"okx": {}}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dashboard</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	return NewRouter(Deps{
		Market:    mdhandler.NewMarketHandler(stubMarket{}),
		I18n:      i18nhandler.NewI18nHandler(i18nadapters.MustLoadCatalog(), []string{"1h"}, nil),
		Hub:       ws.NewHub(),
		StaticDir: dir,
	})
}

func TestNewRouter_Routes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, `"status":"ok"`},
		{http.MethodHead, "/healthz", http.StatusOK, ""},
		{http.MethodOptions, "/healthz", http.StatusNoContent, ""},
		{http.MethodGet, "/api/marketdata", http.StatusOK, `"error"`},
		{http.MethodGet, "/api/available_pairs", http.StatusOK, `"okx"`},
		{http.MethodGet, "/api/timeframes?lang=en-US", http.StatusOK, `1 Hour`},
		{http.MethodGet, "/api/switchlang?lang=en-US", http.StatusFound, ""},
		{http.MethodGet, "/", http.StatusOK, "dashboard"},
		{http.MethodGet, "/static/app.js", http.StatusOK, "console.log"},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			if tt.body != "" {
				assert.Contains(t, w.Body.String(), tt.body)
			}
		})
	}
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
