package indicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"technical-analysis/internal/logger"
	"technical-analysis/internal/model"
)

// Configured pairs an indicator with the options it runs with.
type Configured struct {
	Indicator Indicator
	Options   Options
}

// Label returns "symbol" or "symbol(k=v,...)" with keys sorted, for logs.
func (c Configured) Label() string {
	return model.Tag(c.Indicator.Symbol(), c.Options)
}

// Observer receives per-calculation measurements. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveCalculation(symbol string, d time.Duration, points int, err error)
}

// Engine runs a fixed list of configured indicators over one instrument's bars.
// It holds no per-series state: every Process call starts cold.
type Engine struct {
	configs  []Configured
	observer Observer
	log      *slog.Logger
}

// NewEngine creates an engine for the given indicators. observer and log may be nil.
func NewEngine(configs []Configured, observer Observer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		configs:  configs,
		observer: observer,
		log:      log,
	}
}

// Configs returns the configured indicators.
func (e *Engine) Configs() []Configured { return e.configs }

// MaxMinDataSize returns the largest MinDataSize across the configured
// indicators, i.e. how many bars a caller must load for every one of them
// to produce at least one point.
func (e *Engine) MaxMinDataSize() (int, error) {
	largest := 0
	for _, c := range e.configs {
		n, err := c.Indicator.MinDataSize(c.Options)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", c.Indicator.Symbol(), err)
		}
		if n > largest {
			largest = n
		}
	}
	return largest, nil
}

// Process computes every configured indicator over bars. An indicator that
// fails does not stop the others; its error is joined into the returned error
// and it contributes no result.
func (e *Engine) Process(ctx context.Context, instrument string, bars []model.Bar) ([]model.IndicatorResult, error) {
	results := make([]model.IndicatorResult, 0, len(e.configs))
	var errs []error

	for _, c := range e.configs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		opts, err := c.Indicator.ResolveOptions(c.Options)
		var points model.Series
		if err == nil {
			points, err = c.Indicator.Calculate(bars, opts)
		}
		elapsed := time.Since(start)

		if e.observer != nil {
			e.observer.ObserveCalculation(c.Indicator.Symbol(), elapsed, len(points), err)
		}
		if err != nil {
			e.log.Warn("indicator failed",
				append(logger.LogWithRun(ctx),
					slog.String("indicator", c.Label()),
					slog.String("instrument", instrument),
					slog.Int("bars", len(bars)),
					slog.String("error", err.Error()))...)
			errs = append(errs, fmt.Errorf("%s: %w", c.Indicator.Symbol(), err))
			continue
		}

		e.log.Debug("indicator computed",
			append(logger.LogWithRun(ctx),
				slog.String("indicator", c.Label()),
				slog.String("instrument", instrument),
				slog.Int("points", len(points)),
				slog.Duration("elapsed", elapsed))...)

		results = append(results, model.IndicatorResult{
			Symbol:     c.Indicator.Symbol(),
			Name:       c.Indicator.Name(),
			Instrument: instrument,
			Options:    opts,
			Points:     points,
		})
	}

	return results, errors.Join(errs...)
}
