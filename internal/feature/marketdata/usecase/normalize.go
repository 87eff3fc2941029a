package usecase

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
)

// millisecondThreshold separates millisecond epochs from second epochs.
const millisecondThreshold = 10_000_000_000

// Epoch seconds of 0001-01-01 and 9999-12-31T23:59:59Z.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

// isoLayouts are tried in order for strings carrying "T" and "Z".
var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}

// NormalizeReport summarizes what normalization recovered from.
type NormalizeReport struct {
	Received      int // raw points in the batch
	Dropped       int // points removed for non-numeric OHLC
	TimeFallbacks int // points whose time could not be parsed and fell back to now
	Inconsistent  int // kept points violating low <= open,close <= high
	OutOfOrder    int // kept points earlier than their predecessor
}

// NormalizeTime converts a raw time into a UTC instant. ok is false when every
// parse failed and now() was substituted.
func NormalizeTime(v entity.RawValue, now func() time.Time) (t time.Time, ok bool) {
	switch v.Kind {
	case entity.RawNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			break
		}
		secs := v.Num
		if secs > millisecondThreshold {
			secs /= 1000
		}
		if secs < minEpochSeconds || secs > maxEpochSeconds {
			break
		}
		return fromEpochSeconds(secs), true
	case entity.RawString:
		s := strings.TrimSpace(v.Str)
		if strings.Contains(s, "T") && strings.Contains(s, "Z") {
			for _, layout := range isoLayouts {
				if parsed, err := time.Parse(layout, s); err == nil {
					return parsed.UTC(), true
				}
			}
			break
		}
		if parsed, err := parseCalendar(s); err == nil {
			return parsed, true
		}
	}

	// 1点の不正な時刻でチャート全体の描画を止めない
	slog.Warn("failed to parse candle time, falling back to now", "raw", v.String())
	return now().UTC(), false
}

func fromEpochSeconds(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// parseCalendar builds a UTC time from up to six "-", " " or ":" separated
// components: year, month (1-based), day, hour, minute, second. Missing month
// and day default to the first, missing clock fields to zero.
func parseCalendar(s string) (time.Time, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ' ' || r == ':'
	})
	if len(parts) == 0 || len(parts) > 6 {
		return time.Time{}, strconv.ErrSyntax
	}

	fields := [6]int{0, 1, 1, 0, 0, 0}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, err
		}
		fields[i] = n
	}

	year, month, day, hour, minute, sec := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, strconv.ErrRange
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC), nil
}

// NormalizeNumber coerces a raw OHLC value. It returns NaN when coercion fails.
func NormalizeNumber(v entity.RawValue) float64 {
	switch v.Kind {
	case entity.RawNumber:
		return v.Num
	case entity.RawString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func unusable(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// NormalizePoint converts one raw point. usable is false when any of
// open/high/low/close is not numeric; timeOK is false when the time fell back to now.
func NormalizePoint(p entity.RawCandlePoint, now func() time.Time) (c entity.Candle, timeOK bool, usable bool) {
	o, h, l, cl := NormalizeNumber(p.Open), NormalizeNumber(p.High), NormalizeNumber(p.Low), NormalizeNumber(p.Close)
	if unusable(o) || unusable(h) || unusable(l) || unusable(cl) {
		return entity.Candle{}, false, false
	}

	t, timeOK := NormalizeTime(p.Time, now)
	c = entity.Candle{
		Exchange: p.Exchange,
		Time:     t,
		Open:     o,
		High:     h,
		Low:      l,
		Close:    cl,
	}
	if vol := NormalizeNumber(p.Volume); !unusable(vol) {
		c.Volume = &vol
	}
	return c, timeOK, true
}

// Normalize converts a raw batch into the canonical candle sequence. Points
// with non-numeric OHLC are dropped; every other point is kept in original order.
func Normalize(points []entity.RawCandlePoint, now func() time.Time) ([]entity.Candle, NormalizeReport) {
	if now == nil {
		now = time.Now
	}
	rep := NormalizeReport{Received: len(points)}
	out := make([]entity.Candle, 0, len(points))

	for i, p := range points {
		c, timeOK, usable := NormalizePoint(p, now)
		if !usable {
			rep.Dropped++
			slog.Debug("dropping candle point", "index", i, "error", malformed(p))
			continue
		}
		if !timeOK {
			rep.TimeFallbacks++
		}
		if !c.Consistent() {
			rep.Inconsistent++
		}
		if n := len(out); n > 0 && c.Time.Before(out[n-1].Time) {
			rep.OutOfOrder++
		}
		out = append(out, c)
	}
	return out, rep
}

func malformed(p entity.RawCandlePoint) error {
	return fmt.Errorf("%w: open=%s high=%s low=%s close=%s",
		domain.ErrMalformedPoint, p.Open, p.High, p.Low, p.Close)
}
