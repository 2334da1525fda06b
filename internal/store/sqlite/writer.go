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

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/bars.db"
}

// Writer stores bars and indicator values with transaction batching.
type Writer struct {
	db *sql.DB
}

// New creates a new SQLite Writer, initializes the database with WAL mode and schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := sql.Open("sqlite3", dsn(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

// createSchema creates both tables. ts columns hold unix milliseconds (UTC).
func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			instrument TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			value      REAL,
			PRIMARY KEY (instrument, ts)
		);

		CREATE TABLE IF NOT EXISTS indicator_values (
			instrument TEXT    NOT NULL,
			symbol     TEXT    NOT NULL,
			options    TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			value      REAL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			PRIMARY KEY (instrument, symbol, options, ts)
		);
	`)
	return err
}

// InsertBars upserts bars of one instrument in a single transaction.
// Missing fields are stored as NULL.
func (w *Writer) InsertBars(ctx context.Context, instrument string, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (instrument, ts, open, high, low, close, volume, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare bars: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		args := []any{instrument, b.TS.UnixMilli()}
		for _, col := range barColumns {
			args = append(args, nullable(b, col))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit bars: %w", err)
	}
	log.Printf("[sqlite] committed %d bars for %s in %v", len(bars), instrument, time.Since(start))
	return nil
}

// WriteResults upserts every point of every result in a single transaction.
// Non-finite values are stored as NULL.
func (w *Writer) WriteResults(ctx context.Context, results []model.IndicatorResult) error {
	if len(results) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO indicator_values (instrument, symbol, options, ts, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare indicator_values: %w", err)
	}
	defer stmt.Close()

	n := 0
	for i := range results {
		res := &results[i]
		opts := res.OptionsJSON()
		for _, p := range res.Points {
			var v any
			if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
				v = p.Value
			}
			if _, err := stmt.ExecContext(ctx, res.Instrument, res.Symbol, opts, p.TS.UnixMilli(), v); err != nil {
				tx.Rollback()
				return fmt.Errorf("sqlite insert %s: %w", res.Key(), err)
			}
			n++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit indicator_values: %w", err)
	}
	log.Printf("[sqlite] committed %d indicator values in %v", n, time.Since(start))
	return nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}

func nullable(b model.Bar, key string) any {
	if v, ok := b.Get(key); ok {
		return v
	}
	return nil
}
