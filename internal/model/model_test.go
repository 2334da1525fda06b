package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestPoint_JSONNonFiniteIsNull(t *testing.T) {
	b, err := json.Marshal(Series{{TS: ts, Value: 1.5}, {TS: ts, Value: math.Inf(-1)}, {TS: ts, Value: math.NaN()}})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"date_time":"2024-01-02T00:00:00Z","value":1.5},
		{"date_time":"2024-01-02T00:00:00Z","value":null},
		{"date_time":"2024-01-02T00:00:00Z","value":null}
	]`, string(b))

	var back Series
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 3)
	assert.Equal(t, 1.5, back[0].Value)
	assert.True(t, ts.Equal(back[0].TS))
	assert.True(t, math.IsNaN(back[1].Value))
}

func TestIndicatorResult_Keys(t *testing.T) {
	r := IndicatorResult{Symbol: "mi", Instrument: "AAPL", Options: map[string]any{"sum_period": 25, "ema_period": 9}}

	assert.Equal(t, "mi(ema_period=9,sum_period=25):AAPL", r.Key())
	assert.Equal(t, "ta:mi(ema_period=9,sum_period=25):AAPL", r.StreamKey())
	assert.Equal(t, "ta:mi(ema_period=9,sum_period=25):latest:AAPL", r.LatestKey())
	assert.Equal(t, "pub:ta:mi(ema_period=9,sum_period=25):AAPL", r.PubSubChannel())
	assert.Equal(t, `{"ema_period":9,"sum_period":25}`, r.OptionsJSON())
	assert.Equal(t, "{}", (&IndicatorResult{}).OptionsJSON())

	other := IndicatorResult{Symbol: "mi", Instrument: "AAPL", Options: map[string]any{"sum_period": 25, "ema_period": 5}}
	assert.NotEqual(t, r.StreamKey(), other.StreamKey())
	assert.NotEqual(t, r.LatestKey(), other.LatestKey())
	assert.NotEqual(t, r.PubSubChannel(), other.PubSubChannel())

	plain := IndicatorResult{Symbol: "obv", Instrument: "AAPL"}
	assert.Equal(t, "ta:obv:AAPL", plain.StreamKey())
	assert.Equal(t, "obv", Tag("obv", nil))
}

func TestIndicatorResult_JSON(t *testing.T) {
	r := IndicatorResult{Symbol: "obv", Name: "On-balance Volume", Instrument: "AAPL",
		Points: Series{{TS: ts, Value: math.NaN()}}}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"obv","name":"On-balance Volume","instrument":"AAPL",
		"points":[{"date_time":"2024-01-02T00:00:00Z","value":null}]}`, string(b))
	assert.JSONEq(t, `{"symbol":"obv","instrument":"AAPL","ts":"2024-01-02T00:00:00Z","value":null}`,
		string(r.PointJSON(r.Points[0])))

	mi := IndicatorResult{Symbol: "mi", Instrument: "AAPL", Options: map[string]any{"ema_period": 9, "sum_period": 25}}
	assert.JSONEq(t, `{"symbol":"mi","options":{"ema_period":9,"sum_period":25},"instrument":"AAPL",
		"ts":"2024-01-02T00:00:00Z","value":1.5}`, string(mi.PointJSON(Point{TS: ts, Value: 1.5})))
}

func TestBar_Fields(t *testing.T) {
	b := NewBar(ts, FieldClose, 10.5, FieldVolume, 300, "adj", int64(2), 7, 1.0, "bad", "x")

	assert.Equal(t, map[string]float64{FieldClose: 10.5, FieldVolume: 300, "adj": 2}, b.Fields)

	n := NewBar(ts, FieldHigh, float32(1.5), FieldLow, int32(-2), FieldVolume, uint(4), FieldClose, "2.25", FieldOpen, struct{}{})
	assert.Equal(t, map[string]float64{FieldHigh: 1.5, FieldLow: -2, FieldVolume: 4, FieldClose: 2.25}, n.Fields)
	_, ok := b.Get(FieldOpen)
	assert.False(t, ok)
	assert.Zero(t, b.Float(FieldOpen))

	o := OHLCV(ts, 1, 2, 0.5, 1.5, 100)
	assert.Len(t, o.Fields, 5)
	assert.Equal(t, ts, o.Time())

	latest, ok := Series{{TS: ts, Value: 3}, {TS: ts.Add(-time.Hour), Value: 2}}.Latest()
	assert.True(t, ok)
	assert.Equal(t, 3.0, latest.Value)
	_, ok = Series{}.Latest()
	assert.False(t, ok)
}
