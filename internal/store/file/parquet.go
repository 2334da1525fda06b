package file

import (
	"context"
	"fmt"
	"log"
	"time"

	"technical-analysis/internal/model"

	"github.com/parquet-go/parquet-go"
)

// barRow is the Parquet layout of a bar. A null column is a missing field.
type barRow struct {
	TS     int64    `parquet:"ts"` // unix milliseconds
	Open   *float64 `parquet:"open,optional"`
	High   *float64 `parquet:"high,optional"`
	Low    *float64 `parquet:"low,optional"`
	Close  *float64 `parquet:"close,optional"`
	Volume *float64 `parquet:"volume,optional"`
	Value  *float64 `parquet:"value,optional"`
}

// barFields names the barRow field columns in slots() order.
var barFields = [...]string{
	model.FieldOpen,
	model.FieldHigh,
	model.FieldLow,
	model.FieldClose,
	model.FieldVolume,
	model.FieldValue,
}

func (r *barRow) slots() [len(barFields)]**float64 {
	return [...]**float64{&r.Open, &r.High, &r.Low, &r.Close, &r.Volume, &r.Value}
}

func toBarRow(b model.Bar) barRow {
	row := barRow{TS: b.TS.UnixMilli()}
	for i, slot := range row.slots() {
		if v, ok := b.Get(barFields[i]); ok {
			*slot = &v
		}
	}
	return row
}

func (r *barRow) bar() model.Bar {
	b := model.Bar{TS: time.UnixMilli(r.TS).UTC(), Fields: make(map[string]float64, len(barFields))}
	for i, slot := range r.slots() {
		if *slot != nil {
			b.Fields[barFields[i]] = **slot
		}
	}
	return b
}

// resultRow is the Parquet layout of one indicator point.
type resultRow struct {
	Symbol     string  `parquet:"symbol,dict"`
	Instrument string  `parquet:"instrument,dict"`
	Options    string  `parquet:"options,dict"`
	TS         int64   `parquet:"ts"` // unix milliseconds
	Value      float64 `parquet:"value"`
}

// WriteBarsParquet writes bars to path. Only the six standard fields are kept.
func WriteBarsParquet(path string, bars []model.Bar) error {
	rows := make([]barRow, len(bars))
	for i, b := range bars {
		rows[i] = toBarRow(b)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// ParquetReader loads bars from one Parquet file per instrument.
type ParquetReader struct {
	path string
}

// NewParquetReader returns a reader for path.
func NewParquetReader(path string) *ParquetReader {
	return &ParquetReader{path: path}
}

// ReadBars loads the file and keeps bars within [from, to].
func (r *ParquetReader) ReadBars(ctx context.Context, instrument string, from, to time.Time) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[barRow](r.path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", r.path, err)
	}
	bars := make([]model.Bar, len(rows))
	for i := range rows {
		bars[i] = rows[i].bar()
	}
	bars = inRange(bars, from, to)
	log.Printf("[file] loaded %d bars for %s from %s", len(bars), instrument, r.path)
	return bars, nil
}

// Close is a no-op.
func (r *ParquetReader) Close() error { return nil }

// ParquetWriter writes results as one row per point.
type ParquetWriter struct {
	path string
}

// NewParquetWriter returns a writer that creates or truncates path on each write.
func NewParquetWriter(path string) *ParquetWriter {
	return &ParquetWriter{path: path}
}

// WriteResults writes all points of all results to the file.
func (w *ParquetWriter) WriteResults(ctx context.Context, results []model.IndicatorResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rows []resultRow
	for i := range results {
		res := &results[i]
		opts := res.OptionsJSON()
		for _, p := range res.Points {
			rows = append(rows, resultRow{
				Symbol:     res.Symbol,
				Instrument: res.Instrument,
				Options:    opts,
				TS:         p.TS.UnixMilli(),
				Value:      p.Value,
			})
		}
	}
	if err := parquet.WriteFile(w.path, rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", w.path, err)
	}
	log.Printf("[file] wrote %d rows to %s", len(rows), w.path)
	return nil
}

// ReadResultsParquet reads back a file written by ParquetWriter, one
// series per (symbol, options) in first-seen order.
func ReadResultsParquet(path string) ([]model.IndicatorResult, error) {
	rows, err := parquet.ReadFile[resultRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	var out []model.IndicatorResult
	index := make(map[string]int)
	for _, row := range rows {
		key := row.Symbol + "\x00" + row.Instrument + "\x00" + row.Options
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, model.IndicatorResult{Symbol: row.Symbol, Instrument: row.Instrument})
		}
		out[i].Points = append(out[i].Points, model.Point{TS: time.UnixMilli(row.TS).UTC(), Value: row.Value})
	}
	return out, nil
}

// Close is a no-op.
func (w *ParquetWriter) Close() error { return nil }
