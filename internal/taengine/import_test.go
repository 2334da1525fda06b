package taengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"technical-analysis/internal/model"
	sqlitestore "technical-analysis/internal/store/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBars_CSVIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "aapl.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"date,high,low,close,volume\n"+
			"2024-01-01,11,9,10,100\n"+
			"2024-01-02,12,10,,200\n"+
			"2024-01-03,13,11,12,300\n"), 0o600))

	cfg := baseConfig()
	cfg.Source.Kind = "csv"
	cfg.Source.Path = csvPath
	cfg.Source.From = "2024-01-02"
	cfg.SQLitePath = filepath.Join(dir, "db", "bars.db")

	n, err := ImportBars(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, err := sqlitestore.NewReader(cfg.SQLitePath)
	require.NoError(t, err)
	defer r.Close()

	bars, err := r.ReadBars(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	_, ok := bars[0].Get(model.FieldClose)
	assert.False(t, ok)
	assert.Equal(t, 12.0, bars[1].Float(model.FieldClose))
}

func TestImportBars_RejectsSQLiteSource(t *testing.T) {
	_, err := ImportBars(context.Background(), baseConfig())
	assert.Error(t, err)
}
