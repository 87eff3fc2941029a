// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// Candle represents one OHLC(V) bar for a fixed time bucket.
// Candles handed to the chart are never mutated afterwards.
type Candle struct {
	Exchange  string    // Lowercase exchange id (e.g., "okx", "binance")
	Symbol    string    // Trading pair (e.g., "BTC/USDT")
	Timeframe string    // Bucket width (e.g., "1h", "4h", "1d")
	Time      time.Time // Start of the bucket, UTC
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    *float64 // nil when the source did not report volume
}

// Consistent reports whether low <= min(open, close) and high >= max(open, close).
func (c Candle) Consistent() bool {
	return c.Low <= min(c.Open, c.Close) && c.High >= max(c.Open, c.Close)
}

// VolumeOrZero returns the reported volume, or 0 when absent.
func (c Candle) VolumeOrZero() float64 {
	if c.Volume == nil {
		return 0
	}
	return *c.Volume
}
