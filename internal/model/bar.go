package model

import (
	"time"

	"github.com/spf13/cast"
)

// Field names understood by the built-in indicators.
const (
	FieldOpen   = "open"
	FieldHigh   = "high"
	FieldLow    = "low"
	FieldClose  = "close"
	FieldVolume = "volume"
	FieldValue  = "value"
)

// Bar is one timestamped observation. Fields holds whichever of
// open/high/low/close/volume/value (or any custom key) the source provided;
// a key absent from the map is a missing field.
type Bar struct {
	TS     time.Time          `json:"ts"`
	Fields map[string]float64 `json:"fields"`
}

// NewBar builds a bar from alternating key/value pairs. Values of any
// numeric type (or numeric strings) are converted to float64; pairs whose
// key is not a string or whose value cannot be converted are skipped.
func NewBar(ts time.Time, kv ...any) Bar {
	b := Bar{TS: ts, Fields: make(map[string]float64, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		v, err := cast.ToFloat64E(kv[i+1])
		if err != nil {
			continue
		}
		b.Fields[k] = v
	}
	return b
}

// OHLCV builds a bar carrying the five standard market fields.
func OHLCV(ts time.Time, open, high, low, close, volume float64) Bar {
	return Bar{TS: ts, Fields: map[string]float64{
		FieldOpen:   open,
		FieldHigh:   high,
		FieldLow:    low,
		FieldClose:  close,
		FieldVolume: volume,
	}}
}

// Time returns the bar timestamp.
func (b Bar) Time() time.Time { return b.TS }

// Get returns the named field and whether it is present.
func (b Bar) Get(key string) (float64, bool) {
	v, ok := b.Fields[key]
	return v, ok
}

// Float returns the named field, or 0 when it is missing.
func (b Bar) Float(key string) float64 {
	return b.Fields[key]
}
