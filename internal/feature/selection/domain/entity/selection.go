// Package entity defines the selection key that drives what the dashboard shows.
package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timeframe is the candle bucket width selector (e.g., "1h", "4h", "1d").
type Timeframe string

// DefaultTimeframes is the configured timeframe set, in display order.
var DefaultTimeframes = []Timeframe{"5m", "10m", "15m", "30m", "45m", "1h", "2h", "4h", "1d", "1w", "1M"}

// Known reports whether t belongs to DefaultTimeframes.
func (t Timeframe) Known() bool {
	for _, k := range DefaultTimeframes {
		if k == t {
			return true
		}
	}
	return false
}

// Duration returns the bucket width. "M" is a 30-day month, "w" a 7-day week.
// Units are case-sensitive: "1m" is one minute, "1M" one month.
func (t Timeframe) Duration() (time.Duration, bool) {
	s := string(t)
	if len(s) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, false
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 'm':
		unit = time.Minute
	case 'h', 'H':
		unit = time.Hour
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	default:
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// Key identifies what data to display: one active view per key.
type Key struct {
	Pair      string
	Exchange  string
	Timeframe Timeframe
}

// ExchangeID returns the lowercase exchange id used on the wire.
func (k Key) ExchangeID() string {
	return strings.ToLower(strings.TrimSpace(k.Exchange))
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s/%s", k.Pair, k.ExchangeID(), k.Timeframe)
}
