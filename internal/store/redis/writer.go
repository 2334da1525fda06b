package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"technical-analysis/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	defaultStreamMaxLen = 5000
	defaultLatestTTL    = 24 * time.Hour
	defaultMaxFailures  = 3
	defaultResetTimeout = 10 * time.Second
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int

	StreamMaxLen int64         // approximate XADD trim length per stream, default 5000
	LatestTTL    time.Duration // TTL of the latest-value key, default 24h
}

// Writer publishes indicator series to Redis: every point is appended to
// the result's stream, the newest point is SET under its latest key and
// announced on the result's PubSub channel.
type Writer struct {
	client *goredis.Client
	cb     *CircuitBreaker
	maxLen int64
	ttl    time.Duration
}

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return newWriter(client, NewCircuitBreaker(defaultMaxFailures, defaultResetTimeout), cfg), nil
}

func newWriter(client *goredis.Client, cb *CircuitBreaker, cfg WriterConfig) *Writer {
	w := &Writer{client: client, cb: cb, maxLen: cfg.StreamMaxLen, ttl: cfg.LatestTTL}
	if w.maxLen <= 0 {
		w.maxLen = defaultStreamMaxLen
	}
	if w.ttl <= 0 {
		w.ttl = defaultLatestTTL
	}
	return w
}

// WriteResults sends all results in one pipeline through the circuit breaker.
func (w *Writer) WriteResults(ctx context.Context, results []model.IndicatorResult) error {
	return w.cb.Do(ctx, func(ctx context.Context) error {
		pipe := w.client.Pipeline()
		cmds := w.queue(ctx, pipe, results)
		if len(cmds) == 0 {
			pipe.Discard()
			return nil
		}

		start := time.Now()
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[redis] result pipeline error (%d results): %v", len(results), err)
			return fmt.Errorf("redis pipeline: %w", err)
		}
		log.Printf("[redis] wrote %d commands for %d results in %v", len(cmds), len(results), time.Since(start))
		return nil
	})
}

// queue adds XADD per point (oldest first), SET latest and PUBLISH for
// each non-empty result and returns the queued commands.
func (w *Writer) queue(ctx context.Context, pipe goredis.Pipeliner, results []model.IndicatorResult) []goredis.Cmder {
	var cmds []goredis.Cmder
	for i := range results {
		res := &results[i]
		latest, ok := res.Points.Latest()
		if !ok {
			continue
		}

		streamKey := res.StreamKey()
		for j := len(res.Points) - 1; j >= 0; j-- {
			cmds = append(cmds, pipe.XAdd(ctx, &goredis.XAddArgs{
				Stream: streamKey,
				MaxLen: w.maxLen,
				Approx: true,
				Values: map[string]interface{}{"data": string(res.PointJSON(res.Points[j]))},
			}))
		}

		latestJSON := string(res.PointJSON(latest))
		cmds = append(cmds,
			pipe.Set(ctx, res.LatestKey(), latestJSON, w.ttl),
			pipe.Publish(ctx, res.PubSubChannel(), latestJSON),
		)
	}
	return cmds
}

// Close closes the Redis client.
func (w *Writer) Close() error {
	return w.client.Close()
}
