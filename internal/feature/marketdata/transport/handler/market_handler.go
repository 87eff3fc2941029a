// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"quant_dashboard/internal/feature/marketdata/transport/http/dto"
	"quant_dashboard/internal/feature/marketdata/usecase"
)

// MarketDataUsecase はハンドラーが利用するユースケースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketDataUsecase interface {
	GetMarketData(ctx context.Context, q usecase.MarketDataQuery) (*usecase.MarketDataResult, error)
	AvailablePairs(ctx context.Context) map[string][]string
}

// MarketHandler は市場データのHTTPリクエストを処理します。
type MarketHandler struct {
	uc MarketDataUsecase
}

// NewMarketHandler はMarketHandlerを生成します。
func NewMarketHandler(uc MarketDataUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// GetMarketData は複数取引所のローソク足を返します。
//
// エンドポイント例:
// GET /api/marketdata?exchanges=okx,binance&symbol=BTC/USDT&timeframe=1h&limit=200
//
// すべての取引所で失敗した場合も、ダッシュボードの契約に合わせて
// ステータス200で {"error": "..."} を返します。
func (h *MarketHandler) GetMarketData(c *gin.Context) {
	// 文字列を整数に変換。不正値は0になり、usecaseでデフォルトに置き換わる
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultServeLimit)))

	q := usecase.MarketDataQuery{
		Exchanges: strings.Split(c.DefaultQuery("exchanges", usecase.DefaultExchange), ","),
		Symbol:    c.DefaultQuery("symbol", usecase.DefaultSymbol),
		Timeframe: c.DefaultQuery("timeframe", usecase.DefaultTimeframe),
		Limit:     limit,
	}

	res, err := h.uc.GetMarketData(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusOK, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.CandlePoint, 0, len(res.Candles))
	for _, x := range res.Candles {
		out = append(out, dto.CandlePoint{
			Exchange: x.Exchange,
			Time:     x.Time.UnixMilli(),
			Open:     x.Open,
			High:     x.High,
			Low:      x.Low,
			Close:    x.Close,
			Volume:   x.Volume,
		})
	}

	c.JSON(http.StatusOK, dto.MarketDataResponse{
		Symbol:    res.Symbol,
		Timeframe: res.Timeframe,
		Exchanges: res.Exchanges,
		Data:      out,
	})
}

// AvailablePairs は取引所ごとの取引可能ペアを返します。
//
// エンドポイント例:
// GET /api/available_pairs
func (h *MarketHandler) AvailablePairs(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.AvailablePairs(c.Request.Context()))
}
