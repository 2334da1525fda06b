package model

import (
	"context"
	"time"
)

// ── Storage Port Interfaces ──
// These interfaces decouple the batch service from concrete stores
// (SQLite, Redis, Parquet/CSV files).

// BarReader loads the bars of one instrument.
type BarReader interface {
	// ReadBars returns bars with from <= ts <= to. A zero bound is open.
	ReadBars(ctx context.Context, instrument string, from, to time.Time) ([]Bar, error)

	// Close releases underlying resources.
	Close() error
}

// ResultWriter persists or publishes computed indicator series.
type ResultWriter interface {
	// WriteResults writes all results of one run.
	WriteResults(ctx context.Context, results []IndicatorResult) error

	// Close releases underlying resources.
	Close() error
}
