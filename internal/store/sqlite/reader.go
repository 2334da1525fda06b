package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"technical-analysis/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// barColumns lists the nullable field columns of the bars table in scan order.
var barColumns = []string{
	model.FieldOpen,
	model.FieldHigh,
	model.FieldLow,
	model.FieldClose,
	model.FieldVolume,
	model.FieldValue,
}

// Reader provides read-only access to stored bars and indicator values.
type Reader struct {
	db *sql.DB
}

// NewReader opens a SQLite connection for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[sqlite-reader] opened %s", dbPath)
	return &Reader{db: db}, nil
}

func dsn(path string) string {
	return path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
}

// ReadBars reads the bars of one instrument ordered by timestamp ascending.
// A NULL column leaves that field missing from the bar. Zero bounds are open.
func (r *Reader) ReadBars(ctx context.Context, instrument string, from, to time.Time) ([]model.Bar, error) {
	lo, hi := int64(-1<<62), int64(1<<62)
	if !from.IsZero() {
		lo = from.UnixMilli()
	}
	if !to.IsZero() {
		hi = to.UnixMilli()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume, value
		FROM bars
		WHERE instrument = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`, instrument, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("sqlite query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var tsMilli int64
		cols := make([]sql.NullFloat64, len(barColumns))
		dest := []any{&tsMilli}
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlite scan bars: %w", err)
		}

		b := model.Bar{TS: time.UnixMilli(tsMilli).UTC(), Fields: make(map[string]float64, len(cols))}
		for i, c := range cols {
			if c.Valid {
				b.Fields[barColumns[i]] = c.Float64
			}
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ReadSeries reads the stored values of one indicator configuration, newest first.
// A NULL value (stored NaN or ±Inf) reads back as NaN.
func (r *Reader) ReadSeries(ctx context.Context, instrument, symbol, options string) (model.Series, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, value
		FROM indicator_values
		WHERE instrument = ? AND symbol = ? AND options = ?
		ORDER BY ts DESC
	`, instrument, symbol, options)
	if err != nil {
		return nil, fmt.Errorf("sqlite query indicator_values: %w", err)
	}
	defer rows.Close()

	var out model.Series
	for rows.Next() {
		var tsMilli int64
		var v sql.NullFloat64
		if err := rows.Scan(&tsMilli, &v); err != nil {
			return nil, fmt.Errorf("sqlite scan indicator_values: %w", err)
		}
		p := model.Point{TS: time.UnixMilli(tsMilli).UTC(), Value: v.Float64}
		if !v.Valid {
			p.Value = math.NaN()
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
