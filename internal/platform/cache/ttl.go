package cache

import (
	"time"

	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

const (
	// MinCandleTTL は足の長さにかかわらず最低限キャッシュする期間です。
	MinCandleTTL = 30 * time.Second
	// MaxCandleTTL は長い足でも最新足の更新を見逃さないための上限です。
	MaxCandleTTL = 15 * time.Minute
	// SymbolsTTL は上場ペア一覧のキャッシュ期間です。
	SymbolsTTL = time.Hour
)

// TTLForTimeframe は1本の足の長さを [MinCandleTTL, MaxCandleTTL] に丸めて返します。
// 解釈できない時間足には MinCandleTTL を使います。
func TTLForTimeframe(tf selentity.Timeframe) time.Duration {
	d, ok := tf.Duration()
	if !ok {
		return MinCandleTTL
	}
	return min(max(d, MinCandleTTL), MaxCandleTTL)
}
