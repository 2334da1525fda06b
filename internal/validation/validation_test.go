package validation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"technical-analysis/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestValidateNumericData(t *testing.T) {
	bars := []model.Bar{
		model.NewBar(t0, "high", 10.0, "low", 8.0),
		model.NewBar(t0.Add(time.Hour), "high", 11.0, "low", 9.0),
	}
	require.NoError(t, ValidateNumericData(bars, "high", "low"))
	require.NoError(t, ValidateNumericData(bars))

	err := ValidateNumericData(bars, "high", "close")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), `"close"`)
	assert.Contains(t, ve.Error(), "index 0")
}

func TestValidateNumericData_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		bars := []model.Bar{model.NewBar(t0, "close", 1.0), model.NewBar(t0, "close", v)}
		err := ValidateNumericData(bars, "close")
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "value %v should be rejected", v)
		assert.Contains(t, ve.Error(), "index 1")
	}
}

func TestValidateLength(t *testing.T) {
	bars := make([]model.Bar, 3)
	assert.NoError(t, ValidateLength(bars, 3))
	assert.NoError(t, ValidateLength(bars, 0))

	var ve *ValidationError
	assert.ErrorAs(t, ValidateLength(bars, 4), &ve)
	assert.ErrorAs(t, ValidateLength(nil, 1), &ve)
}

func TestValidateOptions(t *testing.T) {
	cases := []struct {
		name    string
		opts    map[string]any
		allowed []string
		wantErr bool
	}{
		{"empty against empty", map[string]any{}, nil, false},
		{"nil against empty", nil, []string{}, false},
		{"known keys", map[string]any{"a": 1, "b": 2}, []string{"a", "b"}, false},
		{"subset", map[string]any{"b": 2}, []string{"a", "b"}, false},
		{"unknown key", map[string]any{"unknown_key": 1}, []string{"a", "b"}, true},
		{"any key when none accepted", map[string]any{"a": 1}, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOptions(tc.opts, tc.allowed)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestValidateOptions_MessageNamesUnknownKeys(t *testing.T) {
	err := ValidateOptions(map[string]any{"z": 1, "y": 2, "a": 3}, []string{"a"})
	require.Error(t, err)
	assert.Equal(t, "Invalid options given: y, z. Valid options are: a", err.Error())
}

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, ValidatePositive("ema_period", 1))
	assert.Error(t, ValidatePositive("ema_period", 0))
	assert.Error(t, ValidatePositive("sum_period", -3))
}
