// Package dto はOKX APIレスポンスのデータ転送オブジェクトを定義します。
package dto

// CandlesResponse は /api/v5/market/candles のJSONレスポンスを表します。
// data の各行は [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm] で、新しい順に並びます。
type CandlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// InstrumentsResponse は /api/v5/public/instruments のJSONレスポンスを表します。
type InstrumentsResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		InstID   string `json:"instId"`
		BaseCcy  string `json:"baseCcy"`
		QuoteCcy string `json:"quoteCcy"`
		State    string `json:"state"`
	} `json:"data"`
}
