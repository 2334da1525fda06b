package taengine

import (
	"context"
	"fmt"
	"log"

	"technical-analysis/config"
	sqlitestore "technical-analysis/internal/store/sqlite"
)

// ImportBars copies the instrument's bars from a csv or parquet source into
// the SQLite bars table and returns how many were written.
func ImportBars(ctx context.Context, cfg *config.Config) (int, error) {
	if cfg.Instrument == "" {
		return 0, fmt.Errorf("no instrument configured")
	}
	if cfg.Source.Kind == "sqlite" {
		return 0, fmt.Errorf("import needs a csv or parquet source")
	}

	src, err := OpenSource(cfg)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	from, to, err := sourceRange(cfg)
	if err != nil {
		return 0, err
	}
	bars, err := src.ReadBars(ctx, cfg.Instrument, from, to)
	if err != nil {
		return 0, fmt.Errorf("read bars: %w", err)
	}

	if err := ensureDir(cfg.SQLitePath); err != nil {
		return 0, err
	}
	w, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		return 0, err
	}
	defer w.Close()

	if err := w.InsertBars(ctx, cfg.Instrument, bars); err != nil {
		return 0, err
	}
	log.Printf("[taengine] imported %d bars for %s into %s", len(bars), cfg.Instrument, cfg.SQLitePath)
	return len(bars), nil
}
