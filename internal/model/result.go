package model

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Point is one derived value aligned to the timestamp of the bar that produced it.
type Point struct {
	TS    time.Time `json:"date_time"`
	Value float64   `json:"value"`
}

// Time returns the point timestamp.
func (p Point) Time() time.Time { return p.TS }

// MarshalJSON encodes NaN and ±Inf values as null.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TS    time.Time `json:"date_time"`
		Value *float64  `json:"value"`
	}{p.TS, finite(p.Value)})
}

// UnmarshalJSON decodes a null value as NaN.
func (p *Point) UnmarshalJSON(b []byte) error {
	var raw struct {
		TS    time.Time `json:"date_time"`
		Value *float64  `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.TS = raw.TS
	p.Value = math.NaN()
	if raw.Value != nil {
		p.Value = *raw.Value
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Series is an indicator output, newest point first.
type Series []Point

// Latest returns the most recent point. ok is false for an empty series.
func (s Series) Latest() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[0], true
}

// IndicatorResult is one computed series tagged with what produced it.
type IndicatorResult struct {
	Symbol     string         `json:"symbol"` // e.g. "mi", "obv", "dlr"
	Name       string         `json:"name"`   // e.g. "Mass Index"
	Instrument string         `json:"instrument"`
	Options    map[string]any `json:"options,omitempty"`
	Points     Series         `json:"points"`
}

// Tag returns "symbol" or "symbol(k=v,...)" with option keys sorted.
func Tag(symbol string, opts map[string]any) string {
	if len(opts) == 0 {
		return symbol
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(opts))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, opts[k]))
	}
	return symbol + "(" + strings.Join(parts, ",") + ")"
}

// Tag identifies the indicator and its options, e.g. "mi(ema_period=9,sum_period=25)".
func (r *IndicatorResult) Tag() string {
	return Tag(r.Symbol, r.Options)
}

// Key returns "{tag}:{instrument}".
func (r *IndicatorResult) Key() string {
	return r.Tag() + ":" + r.Instrument
}

// StreamKey returns the Redis stream key: "ta:{tag}:{instrument}".
func (r *IndicatorResult) StreamKey() string {
	return "ta:" + r.Tag() + ":" + r.Instrument
}

// LatestKey returns the Redis key holding the newest point.
func (r *IndicatorResult) LatestKey() string {
	return "ta:" + r.Tag() + ":latest:" + r.Instrument
}

// PubSubChannel returns the channel a finished series is announced on.
func (r *IndicatorResult) PubSubChannel() string {
	return "pub:ta:" + r.Tag() + ":" + r.Instrument
}

// OptionsJSON returns the options as canonical JSON ("{}" when empty).
func (r *IndicatorResult) OptionsJSON() string {
	if len(r.Options) == 0 {
		return "{}"
	}
	b, err := json.Marshal(r.Options)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// PointJSON encodes a single point of this result with its symbol, options
// and instrument.
func (r *IndicatorResult) PointJSON(p Point) []byte {
	b, _ := json.Marshal(struct {
		Symbol     string         `json:"symbol"`
		Options    map[string]any `json:"options,omitempty"`
		Instrument string         `json:"instrument"`
		TS         time.Time      `json:"ts"`
		Value      *float64       `json:"value"`
	}{r.Symbol, r.Options, r.Instrument, p.TS, finite(p.Value)})
	return b
}
