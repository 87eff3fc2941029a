package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RawKind tells which JSON shape a RawValue arrived as.
type RawKind int

const (
	RawMissing RawKind = iota
	RawString
	RawNumber
)

// RawValue is a JSON scalar that may be a string or a number.
// Decoding never fails: unexpected shapes are kept as strings so that a
// single odd point cannot abort decoding of the whole batch.
type RawValue struct {
	Kind RawKind
	Str  string
	Num  float64
}

// StringValue builds a string RawValue.
func StringValue(s string) RawValue { return RawValue{Kind: RawString, Str: s} }

// NumberValue builds a numeric RawValue.
func NumberValue(f float64) RawValue { return RawValue{Kind: RawNumber, Num: f} }

// UnmarshalJSON implements json.Unmarshaler.
func (v *RawValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*v = RawValue{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*v = StringValue(string(b))
			return nil
		}
		*v = StringValue(s)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			*v = StringValue(string(b))
			return nil
		}
		*v = NumberValue(f)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v RawValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case RawString:
		return json.Marshal(v.Str)
	case RawNumber:
		return json.Marshal(v.Num)
	default:
		return []byte("null"), nil
	}
}

// String returns a printable form for logs.
func (v RawValue) String() string {
	switch v.Kind {
	case RawString:
		return strconv.Quote(v.Str)
	case RawNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return "<missing>"
	}
}

// RawCandlePoint is the external representation of a candle before
// normalization. Only the marketdata pipeline interprets its ambiguity.
type RawCandlePoint struct {
	Exchange string   `json:"exchange,omitempty"`
	Time     RawValue `json:"time"`
	Open     RawValue `json:"open"`
	High     RawValue `json:"high"`
	Low      RawValue `json:"low"`
	Close    RawValue `json:"close"`
	Volume   RawValue `json:"volume"`
}
