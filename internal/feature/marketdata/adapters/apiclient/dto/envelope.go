// Package dto はダッシュボードが受け取る /api/marketdata レスポンスの形を定義します。
package dto

import "quant_dashboard/internal/feature/marketdata/domain/entity"

// Envelope は `{ data: [...] }` または `{ error: "..." }` のどちらかです。
// data の各点は正規化前の生の値のまま保持します。
type Envelope struct {
	Error *string                 `json:"error,omitempty"`
	Data  []entity.RawCandlePoint `json:"data"`
}
