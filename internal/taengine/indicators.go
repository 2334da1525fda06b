package taengine

import (
	"fmt"
	"maps"

	"technical-analysis/config"
	"technical-analysis/internal/indicator"
)

// BuildIndicators turns configured specs into the engine's indicator list.
// Options are checked and resolved here so a bad spec fails before any bars
// are read, and equivalent specs ("9", 9 or the default) end up identical.
func BuildIndicators(specs []config.IndicatorSpec) ([]indicator.Configured, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no indicators configured")
	}

	out := make([]indicator.Configured, 0, len(specs))
	for _, spec := range specs {
		var ind indicator.Indicator
		switch spec.Symbol {
		case "dlr":
			ind = indicator.DailyLogReturn{}
		case "obv":
			ind = indicator.OnBalanceVolume{}
		case "mi":
			ind = indicator.MassIndex{}
		default:
			return nil, fmt.Errorf("unknown indicator %q (use: dlr, obv, mi)", spec.Symbol)
		}

		opts := indicator.Options(maps.Clone(spec.Options))
		if opts == nil {
			opts = indicator.Options{}
		}
		opts, err := ind.ResolveOptions(opts)
		if err != nil {
			return nil, fmt.Errorf("indicator %s: %w", spec.Symbol, err)
		}
		if _, err := ind.MinDataSize(opts); err != nil {
			return nil, fmt.Errorf("indicator %s: %w", spec.Symbol, err)
		}
		out = append(out, indicator.Configured{Indicator: ind, Options: opts})
	}
	return out, nil
}
