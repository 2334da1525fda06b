// Package indicator provides technical indicator calculations over bar series.
//
// Every indicator implements the Indicator interface: it validates its input
// and options eagerly, computes oldest-to-newest, and returns its points
// newest first. Calculate keeps no state between calls.
package indicator

import (
	"github.com/spf13/cast"

	"technical-analysis/internal/model"
	"technical-analysis/internal/validation"
)

// Options carries indicator configuration keyed by option name
// (e.g. "ema_period", "price_key"). Values may be loosely typed: 9, 9.0 and
// "9" all configure a period of 9.
type Options map[string]any

// Indicator is the contract shared by all indicators.
type Indicator interface {
	// Symbol returns the short stable identifier (e.g. "mi").
	Symbol() string

	// Name returns the display name (e.g. "Mass Index").
	Name() string

	// ValidOptions lists the recognized option keys.
	ValidOptions() []string

	// ValidateOptions fails on any option key the indicator does not accept.
	ValidateOptions(opts Options) error

	// ResolveOptions validates opts and returns them complete: every
	// accepted option present, defaulted and coerced to its canonical type.
	// Equivalent inputs ("9", 9, absent) resolve to equal maps.
	ResolveOptions(opts Options) (Options, error)

	// MinDataSize returns how many bars are needed to produce one point.
	MinDataSize(opts Options) (int, error)

	// Calculate computes the indicator. The result is sorted newest first.
	Calculate(bars []model.Bar, opts Options) (model.Series, error)
}

var (
	_ Indicator = DailyLogReturn{}
	_ Indicator = OnBalanceVolume{}
	_ Indicator = MassIndex{}
)

// intOption reads key as an integer, falling back to def when absent.
func intOption(opts Options, key string, def int) (int, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, validation.Errorf("Invalid option %s=%v. Must be an integer", key, v)
	}
	return n, nil
}

// stringOption reads key as a string, falling back to def when absent or empty.
func stringOption(opts Options, key, def string) (string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", validation.Errorf("Invalid option %s=%v. Must be a field name", key, v)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}
