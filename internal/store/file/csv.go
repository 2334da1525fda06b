package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"technical-analysis/internal/model"
)

// timeColumns are the header names accepted for the timestamp column.
var timeColumns = map[string]bool{"ts": true, "t": true, "date": true, "date_time": true, "time": true}

// ParseBarsCSV reads bars from CSV with a header row. One column holds the
// timestamp (ts, t, date, date_time or time); every other column is a
// numeric field named by its lowercased header. An empty cell leaves the
// field missing.
func ParseBarsCSV(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}

	tsCol := -1
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(h))
		if tsCol < 0 && timeColumns[names[i]] {
			tsCol = i
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("csv header %v has no timestamp column", header)
	}

	var bars []model.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		ts, err := ParseTime(rec[tsCol])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		b := model.Bar{TS: ts, Fields: make(map[string]float64, len(rec)-1)}
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if i == tsCol || cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %q: %w", line, names[i], err)
			}
			b.Fields[names[i]] = v
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// ParseTime accepts RFC3339, "2006-01-02 15:04:05", "2006-01-02" or a unix
// timestamp in seconds (milliseconds when above 1e12).
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 || n < -1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// CSVReader loads bars from one CSV file per instrument.
type CSVReader struct {
	path string
}

// NewCSVReader returns a reader for path. The file is read on every ReadBars.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// ReadBars loads the file and keeps bars within [from, to]. The instrument
// is only used for logging: the file holds a single instrument.
func (r *CSVReader) ReadBars(ctx context.Context, instrument string, from, to time.Time) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	bars, err := ParseBarsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	bars = inRange(bars, from, to)
	log.Printf("[file] loaded %d bars for %s from %s", len(bars), instrument, r.path)
	return bars, nil
}

// Close is a no-op.
func (r *CSVReader) Close() error { return nil }

// CSVWriter writes results as rows of symbol,instrument,options,ts,value.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer that creates or truncates path on each write.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// WriteResults writes all points, newest first within each result.
// Non-finite values are written as NaN, +Inf or -Inf.
func (w *CSVWriter) WriteResults(ctx context.Context, results []model.IndicatorResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	n, err := writeResultsCSV(f, results)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write csv %s: %w", w.path, err)
	}
	log.Printf("[file] wrote %d rows to %s", n, w.path)
	return nil
}

func writeResultsCSV(out io.Writer, results []model.IndicatorResult) (int, error) {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"symbol", "instrument", "options", "ts", "value"}); err != nil {
		return 0, err
	}
	n := 0
	for i := range results {
		res := &results[i]
		opts := res.OptionsJSON()
		for _, p := range res.Points {
			row := []string{
				res.Symbol,
				res.Instrument,
				opts,
				p.TS.Format(time.RFC3339),
				strconv.FormatFloat(p.Value, 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return n, err
			}
			n++
		}
	}
	cw.Flush()
	return n, cw.Error()
}

// Close is a no-op.
func (w *CSVWriter) Close() error { return nil }

func inRange(bars []model.Bar, from, to time.Time) []model.Bar {
	if from.IsZero() && to.IsZero() {
		return bars
	}
	out := bars[:0:0]
	for _, b := range bars {
		if !from.IsZero() && b.TS.Before(from) {
			continue
		}
		if !to.IsZero() && b.TS.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
