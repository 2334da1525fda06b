package taengine

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"technical-analysis/config"
	"technical-analysis/internal/model"
	filestore "technical-analysis/internal/store/file"
	redisstore "technical-analysis/internal/store/redis"
	sqlitestore "technical-analysis/internal/store/sqlite"
)

// Sink is a named result destination.
type Sink struct {
	Name   string
	Writer model.ResultWriter
}

// OpenSource opens the bar reader named by cfg.Source.Kind.
func OpenSource(cfg *config.Config) (model.BarReader, error) {
	switch cfg.Source.Kind {
	case "sqlite":
		r, err := sqlitestore.NewReader(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "csv":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("csv source needs a file path")
		}
		return filestore.NewCSVReader(cfg.Source.Path), nil
	case "parquet":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("parquet source needs a file path")
		}
		return filestore.NewParquetReader(cfg.Source.Path), nil
	default:
		return nil, fmt.Errorf("unknown source %q (use: sqlite, csv, parquet)", cfg.Source.Kind)
	}
}

// OpenSinks opens every sink named in cfg.Sinks. File sinks write to
// cfg.OutPath with the sink's extension appended. On error, sinks opened so
// far are closed.
func OpenSinks(cfg *config.Config, stdout io.Writer) ([]Sink, error) {
	var sinks []Sink
	fail := func(err error) ([]Sink, error) {
		closeSinks(sinks)
		return nil, err
	}

	for _, name := range cfg.Sinks {
		var w model.ResultWriter
		switch name {
		case "stdout":
			w = NewTableWriter(stdout)
		case "sqlite":
			if err := ensureDir(cfg.SQLitePath); err != nil {
				return fail(err)
			}
			sw, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
			if err != nil {
				return fail(err)
			}
			w = sw
		case "redis":
			rw, err := redisstore.New(redisstore.WriterConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			if err != nil {
				return fail(err)
			}
			w = rw
		case "csv":
			path := cfg.OutPath + ".csv"
			if err := ensureDir(path); err != nil {
				return fail(err)
			}
			w = filestore.NewCSVWriter(path)
		case "parquet":
			path := cfg.OutPath + ".parquet"
			if err := ensureDir(path); err != nil {
				return fail(err)
			}
			w = filestore.NewParquetWriter(path)
		default:
			return fail(fmt.Errorf("unknown sink %q (use: stdout, sqlite, redis, csv, parquet)", name))
		}
		sinks = append(sinks, Sink{Name: name, Writer: w})
	}
	return sinks, nil
}

func closeSinks(sinks []Sink) {
	for _, s := range sinks {
		s.Writer.Close()
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// TableWriter prints results as aligned text, one block per indicator.
type TableWriter struct {
	out io.Writer
}

// NewTableWriter returns a TableWriter printing to out.
func NewTableWriter(out io.Writer) *TableWriter {
	return &TableWriter{out: out}
}

// WriteResults prints every point, newest first.
func (t *TableWriter) WriteResults(_ context.Context, results []model.IndicatorResult) error {
	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	for i := range results {
		res := &results[i]
		fmt.Fprintf(tw, "# %s (%s) %s %s\n", res.Name, res.Symbol, res.Instrument, res.OptionsJSON())
		fmt.Fprintln(tw, "DATE\tVALUE\t")
		for _, p := range res.Points {
			fmt.Fprintf(tw, "%s\t%s\t\n", formatTime(p.TS), formatValue(p.Value))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// Close is a no-op.
func (t *TableWriter) Close() error { return nil }

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatTime(ts time.Time) string {
	if ts.Equal(ts.Truncate(24 * time.Hour)) {
		return ts.Format(time.DateOnly)
	}
	return ts.Format(time.RFC3339)
}
