package usecase

import (
	"github.com/shopspring/decimal"

	"quant_dashboard/internal/feature/chart/domain/entity"
	mdentity "quant_dashboard/internal/feature/marketdata/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// FormatChange returns (close-open)/open*100 rounded to two decimals, signed,
// with its visual class. A zero open yields "+0.00%".
func FormatChange(openPrice, closePrice float64) (string, entity.ChangeClass) {
	change := decimal.Zero
	if o := decimal.NewFromFloat(openPrice); !o.IsZero() {
		change = decimal.NewFromFloat(closePrice).Sub(o).Div(o).Mul(hundred).Round(2)
	}
	if change.IsNegative() {
		return change.StringFixed(2) + "%", entity.Negative
	}
	return "+" + change.StringFixed(2) + "%", entity.Positive
}

// FormatPrice uses two decimals at or above 1 and six below.
func FormatPrice(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return d.StringFixed(2)
	}
	return d.StringFixed(6)
}

// HeaderFor builds the header from the last candle. ok is false for an empty sequence.
func HeaderFor(candles []mdentity.Candle) (entity.Header, bool) {
	if len(candles) == 0 {
		return entity.Header{}, false
	}
	last := candles[len(candles)-1]
	change, class := FormatChange(last.Open, last.Close)
	return entity.Header{Price: FormatPrice(last.Close), Change: change, Class: class}, true
}
