// Package entity defines the chart surface's value types.
package entity

// Size is a container's pixel dimensions.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// SeriesStyle fixes the up/down colors of the candlestick series.
type SeriesStyle struct {
	UpColor   string
	DownColor string
}

// DefaultSeriesStyle uses green for rising and red for falling candles.
var DefaultSeriesStyle = SeriesStyle{UpColor: "#26a69a", DownColor: "#ef5350"}

// ChangeClass is the visual class of the percent-change display.
type ChangeClass string

const (
	Positive ChangeClass = "positive"
	Negative ChangeClass = "negative"
)

// Header is the last-price and percent-change display.
type Header struct {
	Price  string
	Change string
	Class  ChangeClass
}
