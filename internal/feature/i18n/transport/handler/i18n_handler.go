// Package handler はi18nフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"quant_dashboard/internal/feature/i18n/domain/entity"
	"quant_dashboard/internal/feature/i18n/usecase"
	"quant_dashboard/internal/platform/events"
)

// LangCookie は選択言語を保持するクッキー名です。
const LangCookie = "lang"

const cookieMaxAge = 365 * 24 * 60 * 60

// Broadcaster は接続中のダッシュボードへイベントを配信します。
type Broadcaster interface {
	Publish(typ string, payload any)
}

// I18nHandler は言語切替と時間足ラベルのリクエストを処理します。
type I18nHandler struct {
	catalog    entity.Catalog
	timeframes []string
	hub        Broadcaster
}

// NewI18nHandler はI18nHandlerを生成します。hubはnilでも構いません。
func NewI18nHandler(catalog entity.Catalog, timeframes []string, hub Broadcaster) *I18nHandler {
	return &I18nHandler{catalog: catalog, timeframes: timeframes, hub: hub}
}

// TimeframesResponse は /api/timeframes のレスポンスです。
type TimeframesResponse struct {
	Lang    entity.Language           `json:"lang"`
	Options []usecase.TimeframeOption `json:"options"`
}

// Timeframes はローカライズ済みの時間足一覧を返します。
// 言語は lang パラメータ、クッキー、デフォルトの順で決まります。
//
// エンドポイント例:
// GET /api/timeframes?lang=en-US
func (h *I18nHandler) Timeframes(c *gin.Context) {
	d := usecase.NewDictionary(h.catalog, RequestLanguage(c))
	c.JSON(http.StatusOK, TimeframesResponse{
		Lang:    d.Language(),
		Options: d.TimeframeOptions(h.timeframes),
	})
}

// SwitchLang は言語クッキーを設定し、language.changed を配信して元のページへ戻します。
// 未対応の言語は zh-CN として扱います。
//
// エンドポイント例:
// GET /api/switchlang?lang=en-US
func (h *I18nHandler) SwitchLang(c *gin.Context) {
	tag := c.DefaultQuery("lang", string(entity.Default))
	lang, err := entity.ParseLanguage(tag)
	if err != nil {
		slog.Warn("unsupported language requested", "lang", tag, "fallback", lang)
	}

	prev := RequestCookieLanguage(c)
	c.SetCookie(LangCookie, string(lang), cookieMaxAge, "/", "", false, false)

	if h.hub != nil {
		h.hub.Publish(string(events.TopicLanguageChanged), usecase.LanguageChanged{From: prev, To: lang})
	}

	c.Redirect(http.StatusFound, safeRedirect(c.Request.Referer(), c.Request.Host))
}

// safeRedirect は相対パスか同一ホストのURLだけを返し、それ以外は "/" にします。
func safeRedirect(referrer, host string) string {
	u, err := url.Parse(referrer)
	if referrer == "" || err != nil {
		return "/"
	}
	if u.Scheme == "" && u.Host == "" {
		// "//evil.example" や "\\evil" はブラウザが外部ホストとして解釈する
		if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(referrer, "//") || strings.HasPrefix(referrer, "/\\") {
			return "/"
		}
		return u.RequestURI()
	}
	if (u.Scheme != "http" && u.Scheme != "https") || !strings.EqualFold(u.Host, host) {
		return "/"
	}
	return u.RequestURI()
}

// RequestLanguage resolves ?lang=, then the cookie, then the default.
func RequestLanguage(c *gin.Context) string {
	if q := c.Query("lang"); q != "" {
		return q
	}
	return string(RequestCookieLanguage(c))
}

// RequestCookieLanguage returns the cookie language or the default.
func RequestCookieLanguage(c *gin.Context) entity.Language {
	v, err := c.Cookie(LangCookie)
	if err != nil {
		return entity.Default
	}
	lang, _ := entity.ParseLanguage(v)
	return lang
}
