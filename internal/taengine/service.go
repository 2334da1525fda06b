package taengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"technical-analysis/config"
	"technical-analysis/internal/indicator"
	"technical-analysis/internal/logger"
	"technical-analysis/internal/metrics"
	"technical-analysis/internal/model"
	filestore "technical-analysis/internal/store/file"
)

const pushJob = "tacalc"

// Service runs one batch: read an instrument's bars from the source,
// compute every configured indicator and hand the results to each sink.
type Service struct {
	cfg *config.Config
	log *slog.Logger

	engine *indicator.Engine
	source model.BarReader
	sinks  []Sink
	prom   *metrics.Metrics

	from, to time.Time
}

// New wires a Service from cfg: indicators, source and sinks. Results for
// the stdout sink are printed to stdout.
func New(cfg *config.Config, log *slog.Logger, stdout io.Writer) (*Service, error) {
	if cfg.Instrument == "" {
		return nil, fmt.Errorf("no instrument configured")
	}
	configs, err := BuildIndicators(cfg.Indicators)
	if err != nil {
		return nil, err
	}

	source, err := OpenSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	sinks, err := OpenSinks(cfg, stdout)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("open sinks: %w", err)
	}

	svc, err := newService(cfg, log, metrics.NewMetrics(), configs, source, sinks)
	if err != nil {
		source.Close()
		closeSinks(sinks)
		return nil, err
	}
	return svc, nil
}

func newService(cfg *config.Config, log *slog.Logger, prom *metrics.Metrics, configs []indicator.Configured, source model.BarReader, sinks []Sink) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	svc := &Service{
		cfg:    cfg,
		log:    log,
		engine: indicator.NewEngine(configs, prom, log),
		source: source,
		sinks:  sinks,
		prom:   prom,
	}

	var err error
	if svc.from, svc.to, err = sourceRange(cfg); err != nil {
		return nil, err
	}
	return svc, nil
}

// sourceRange parses the optional source.from/source.to bounds.
func sourceRange(cfg *config.Config) (from, to time.Time, err error) {
	if cfg.Source.From != "" {
		if from, err = filestore.ParseTime(cfg.Source.From); err != nil {
			return from, to, fmt.Errorf("source.from: %w", err)
		}
	}
	if cfg.Source.To != "" {
		if to, err = filestore.ParseTime(cfg.Source.To); err != nil {
			return from, to, fmt.Errorf("source.to: %w", err)
		}
	}
	return from, to, nil
}

// Metrics returns the run's metrics registry holder.
func (svc *Service) Metrics() *metrics.Metrics { return svc.prom }

func (svc *Service) labels() []string {
	configs := svc.engine.Configs()
	out := make([]string, len(configs))
	for i, c := range configs {
		out[i] = c.Label()
	}
	return out
}

// Run executes the batch once. Indicator and sink failures do not stop
// the remaining indicators or sinks; all of them are joined into the
// returned error.
func (svc *Service) Run(ctx context.Context) error {
	inst := svc.cfg.Instrument
	start := time.Now()
	ctx = logger.WithRunID(ctx, logger.GenerateRunID(inst, start))

	bars, err := svc.source.ReadBars(ctx, inst, svc.from, svc.to)
	if err != nil {
		return fmt.Errorf("read bars for %s: %w", inst, err)
	}
	svc.prom.BarsLoaded.Add(float64(len(bars)))
	svc.log.Info("bars loaded",
		append(logger.LogWithRun(ctx),
			slog.String("instrument", inst),
			slog.String("source", svc.cfg.Source.Kind),
			slog.Int("bars", len(bars)),
			slog.Any("indicators", svc.labels()))...)

	if need, err := svc.engine.MaxMinDataSize(); err == nil && len(bars) < need {
		svc.log.Warn("fewer bars than the largest warm-up window",
			append(logger.LogWithRun(ctx), slog.Int("bars", len(bars)), slog.Int("needed", need))...)
	}

	results, calcErr := svc.engine.Process(ctx, inst, bars)
	errs := []error{calcErr}

	if len(results) > 0 {
		for _, s := range svc.sinks {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			t0 := time.Now()
			err := s.Writer.WriteResults(ctx, results)
			svc.prom.ObserveSink(s.Name, time.Since(t0), err)
			if err != nil {
				svc.log.Error("sink write failed",
					append(logger.LogWithRun(ctx), slog.String("sink", s.Name), slog.String("error", err.Error()))...)
				errs = append(errs, fmt.Errorf("sink %s: %w", s.Name, err))
			}
		}
	}

	runErr := errors.Join(errs...)
	if runErr == nil {
		svc.prom.MarkSuccess()
	}
	if url := svc.cfg.PushgatewayURL; url != "" {
		if err := svc.prom.Push(url, pushJob, inst); err != nil {
			svc.log.Warn("metrics push failed", append(logger.LogWithRun(ctx), slog.String("error", err.Error()))...)
		}
	}

	points := 0
	for _, r := range results {
		points += len(r.Points)
	}
	svc.log.Info("run complete",
		append(logger.LogWithRun(ctx),
			slog.String("instrument", inst),
			slog.Int("indicators", len(results)),
			slog.Int("points", points),
			slog.Int("sinks", len(svc.sinks)),
			slog.Bool("ok", runErr == nil),
			slog.Duration("elapsed", time.Since(start)))...)

	return runErr
}

// Close releases the source and every sink.
func (svc *Service) Close() error {
	errs := []error{svc.source.Close()}
	for _, s := range svc.sinks {
		errs = append(errs, s.Writer.Close())
	}
	return errors.Join(errs...)
}
