package redis

import (
	"context"
	"math"
	"testing"
	"time"

	"technical-analysis/internal/model"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable returns a client pointing at a closed port; commands fail
// on Exec without any server.
func unreachable(t *testing.T) *goredis.Client {
	t.Helper()
	c := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func sampleResults() []model.IndicatorResult {
	return []model.IndicatorResult{
		{
			Symbol:     "obv",
			Name:       "On-balance Volume",
			Instrument: "AAPL",
			Points: model.Series{
				{TS: day(2), Value: 30},
				{TS: day(1), Value: math.NaN()},
				{TS: day(0), Value: 0},
			},
		},
		{Symbol: "mi", Name: "Mass Index", Instrument: "AAPL"}, // no points
	}
}

func TestQueue_CommandLayout(t *testing.T) {
	w := newWriter(unreachable(t), NewCircuitBreaker(1, time.Minute), WriterConfig{StreamMaxLen: 100})
	ctx := context.Background()

	pipe := w.client.Pipeline()
	defer pipe.Discard()
	cmds := w.queue(ctx, pipe, sampleResults())

	// 3 XADD + SET + PUBLISH; the empty result queues nothing
	require.Len(t, cmds, 5)

	for _, c := range cmds[:3] {
		assert.Equal(t, "xadd", c.Name())
		assert.Equal(t, "ta:obv:AAPL", c.Args()[1])
	}
	// oldest point first
	assert.Contains(t, cmds[0].Args()[len(cmds[0].Args())-1], `"ts":"2024-01-01T00:00:00Z"`)
	assert.Contains(t, cmds[1].Args()[len(cmds[1].Args())-1], `"value":null`)

	assert.Equal(t, "set", cmds[3].Name())
	assert.Equal(t, "ta:obv:latest:AAPL", cmds[3].Args()[1])
	assert.Contains(t, cmds[3].Args()[2], `"value":30`)

	assert.Equal(t, "publish", cmds[4].Name())
	assert.Equal(t, "pub:ta:obv:AAPL", cmds[4].Args()[1])
}

func TestQueue_OptionsSeparateKeys(t *testing.T) {
	w := newWriter(unreachable(t), NewCircuitBreaker(1, time.Minute), WriterConfig{})
	pipe := w.client.Pipeline()
	defer pipe.Discard()

	mi := func(ema int, v float64) model.IndicatorResult {
		return model.IndicatorResult{
			Symbol: "mi", Name: "Mass Index", Instrument: "AAPL",
			Options: map[string]any{"ema_period": ema, "sum_period": 25},
			Points:  model.Series{{TS: day(0), Value: v}},
		}
	}
	cmds := w.queue(context.Background(), pipe, []model.IndicatorResult{mi(9, 24.5), mi(5, 26.5)})

	// XADD + SET + PUBLISH per result
	require.Len(t, cmds, 6)
	assert.Equal(t, "ta:mi(ema_period=9,sum_period=25):AAPL", cmds[0].Args()[1])
	assert.Equal(t, "ta:mi(ema_period=9,sum_period=25):latest:AAPL", cmds[1].Args()[1])
	assert.Equal(t, "pub:ta:mi(ema_period=9,sum_period=25):AAPL", cmds[2].Args()[1])
	assert.Equal(t, "ta:mi(ema_period=5,sum_period=25):AAPL", cmds[3].Args()[1])
	assert.Equal(t, "ta:mi(ema_period=5,sum_period=25):latest:AAPL", cmds[4].Args()[1])
	assert.Equal(t, "pub:ta:mi(ema_period=5,sum_period=25):AAPL", cmds[5].Args()[1])

	for i := 0; i < 3; i++ {
		assert.NotEqual(t, cmds[i].Args()[1], cmds[i+3].Args()[1])
	}
	assert.Contains(t, cmds[1].Args()[2], `"options":{"ema_period":9,"sum_period":25}`)
	assert.Contains(t, cmds[4].Args()[2], `"options":{"ema_period":5,"sum_period":25}`)
}

func TestWriteResults_EmptyIsNoop(t *testing.T) {
	w := newWriter(unreachable(t), NewCircuitBreaker(1, time.Minute), WriterConfig{})
	assert.NoError(t, w.WriteResults(context.Background(), nil))
	assert.NoError(t, w.WriteResults(context.Background(), sampleResults()[1:]))
}

func TestWriteResults_BreakerOpensOnFailure(t *testing.T) {
	w := newWriter(unreachable(t), NewCircuitBreaker(1, time.Minute), WriterConfig{})
	ctx := context.Background()

	err := w.WriteResults(ctx, sampleResults())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)

	assert.ErrorIs(t, w.WriteResults(ctx, sampleResults()), ErrCircuitOpen)
}

func TestNew_PingFailure(t *testing.T) {
	_, err := New(WriterConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
