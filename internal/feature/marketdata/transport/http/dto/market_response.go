// Package dto はmarketdataフィーチャーのHTTPレスポンス型を定義します。
package dto

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// CandlePoint は1本のローソク足です。time はミリ秒エポックです。
type CandlePoint struct {
	Exchange string   `json:"exchange"`
	Time     int64    `json:"time"`
	Open     float64  `json:"open"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Close    float64  `json:"close"`
	Volume   *float64 `json:"volume"`
}

// MarketDataResponse は /api/marketdata の成功レスポンスです。
type MarketDataResponse struct {
	Symbol    string        `json:"symbol"`
	Timeframe string        `json:"timeframe"`
	Exchanges []string      `json:"exchanges"`
	Data      []CandlePoint `json:"data"`
}
