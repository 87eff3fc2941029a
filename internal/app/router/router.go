package router

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	i18nhandler "quant_dashboard/internal/feature/i18n/transport/handler"
	mdhandler "quant_dashboard/internal/feature/marketdata/transport/handler"
	"quant_dashboard/internal/platform/http/handler"
	"quant_dashboard/internal/platform/ws"
)

// Deps are the handlers mounted by NewRouter.
type Deps struct {
	Market    *mdhandler.MarketHandler
	I18n      *i18nhandler.I18nHandler
	Hub       *ws.Hub
	Checks    map[string]handler.Check
	StaticDir string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// 導通確認用
	health := handler.Health(d.Checks)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	api := r.Group("/api")
	{
		// 市場データ（複数取引所）
		api.GET("/marketdata", d.Market.GetMarketData)
		api.GET("/available_pairs", d.Market.AvailablePairs)
		// ローカライズ
		api.GET("/timeframes", d.I18n.Timeframes)
		api.GET("/switchlang", d.I18n.SwitchLang)
	}

	// language.changed などのイベント配信
	if d.Hub != nil {
		r.GET("/ws", d.Hub.Handle)
	}

	// 静的ファイル
	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
		index := filepath.Join(d.StaticDir, "index.html")
		r.GET("/", func(c *gin.Context) { c.File(index) })
	}

	return r
}
