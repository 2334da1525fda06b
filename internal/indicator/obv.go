package indicator

import (
	"technical-analysis/internal/model"
	"technical-analysis/internal/series"
	"technical-analysis/internal/validation"
)

// OnBalanceVolume keeps a running total of volume, added on up-closes and
// subtracted on down-closes.
// https://en.wikipedia.org/wiki/On-balance_volume
type OnBalanceVolume struct{}

func (OnBalanceVolume) Symbol() string { return "obv" }
func (OnBalanceVolume) Name() string   { return "On-balance Volume" }

func (OnBalanceVolume) ValidOptions() []string { return nil }

func (OnBalanceVolume) ValidateOptions(opts Options) error {
	if len(opts) == 0 {
		return nil
	}
	return validation.Errorf("This indicator doesn't accept any options.")
}

func (o OnBalanceVolume) ResolveOptions(opts Options) (Options, error) {
	if err := o.ValidateOptions(opts); err != nil {
		return nil, err
	}
	return Options{}, nil
}

func (OnBalanceVolume) MinDataSize(Options) (int, error) { return 1, nil }

func (o OnBalanceVolume) Calculate(bars []model.Bar, opts Options) (model.Series, error) {
	if err := o.ValidateOptions(opts); err != nil {
		return nil, err
	}
	if err := validation.ValidateNumericData(bars, model.FieldClose, model.FieldVolume); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength(bars, 1); err != nil {
		return nil, err
	}

	asc := series.SortAsc(bars)

	out := make(model.Series, 0, len(asc))
	current := 0.0
	for i, b := range asc {
		cur := b.Float(model.FieldClose)
		if i > 0 {
			prior := asc[i-1].Float(model.FieldClose)
			switch {
			case cur > prior:
				current += b.Float(model.FieldVolume)
			case cur < prior:
				current -= b.Float(model.FieldVolume)
			}
		}
		out = append(out, model.Point{TS: b.TS, Value: current})
	}

	return series.SortDesc(out), nil
}
