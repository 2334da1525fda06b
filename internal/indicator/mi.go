package indicator

import (
	"technical-analysis/internal/model"
	"technical-analysis/internal/series"
	"technical-analysis/internal/validation"
)

const (
	optEMAPeriod = "ema_period"
	optSumPeriod = "sum_period"

	defaultEMAPeriod = 9
	defaultSumPeriod = 25
)

// MassIndex sums, over sum_period bars, the ratio of a single EMA of the
// high-low range to an EMA of that EMA.
// https://en.wikipedia.org/wiki/Mass_index
type MassIndex struct{}

type massIndexParams struct {
	emaPeriod int
	sumPeriod int
}

// minDataSize is the first bar at which all three windows are full:
// ema_period diffs, ema_period single EMAs, then sum_period ratios, with the
// boundary bar of each stage shared with the next.
func (p massIndexParams) minDataSize() int {
	return p.emaPeriod*2 + p.sumPeriod - 2
}

func (MassIndex) Symbol() string { return "mi" }
func (MassIndex) Name() string   { return "Mass Index" }

func (MassIndex) ValidOptions() []string { return []string{optEMAPeriod, optSumPeriod} }

func (m MassIndex) ValidateOptions(opts Options) error {
	return validation.ValidateOptions(opts, m.ValidOptions())
}

func (m MassIndex) params(opts Options) (massIndexParams, error) {
	if err := m.ValidateOptions(opts); err != nil {
		return massIndexParams{}, err
	}
	ema, err := intOption(opts, optEMAPeriod, defaultEMAPeriod)
	if err != nil {
		return massIndexParams{}, err
	}
	sum, err := intOption(opts, optSumPeriod, defaultSumPeriod)
	if err != nil {
		return massIndexParams{}, err
	}
	if err := validation.ValidatePositive(optEMAPeriod, ema); err != nil {
		return massIndexParams{}, err
	}
	if err := validation.ValidatePositive(optSumPeriod, sum); err != nil {
		return massIndexParams{}, err
	}
	return massIndexParams{emaPeriod: ema, sumPeriod: sum}, nil
}

func (m MassIndex) ResolveOptions(opts Options) (Options, error) {
	p, err := m.params(opts)
	if err != nil {
		return nil, err
	}
	return Options{optEMAPeriod: p.emaPeriod, optSumPeriod: p.sumPeriod}, nil
}

func (m MassIndex) MinDataSize(opts Options) (int, error) {
	p, err := m.params(opts)
	if err != nil {
		return 0, err
	}
	return p.minDataSize(), nil
}

func (m MassIndex) Calculate(bars []model.Bar, opts Options) (model.Series, error) {
	p, err := m.params(opts)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateNumericData(bars, model.FieldHigh, model.FieldLow); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength(bars, p.minDataSize()); err != nil {
		return nil, err
	}

	out := massIndex(series.SortAsc(bars), p)
	return series.SortDesc(out), nil
}

// massIndex runs the EMA → EMA-of-EMA → rolling ratio sum cascade over bars
// sorted oldest first. Each stage only sees input once the stage before it
// has produced a value. A zero double EMA is not special-cased: the ratio
// becomes ±Inf or NaN and carries into the sum.
//
// The double EMA history holds sum_period outputs and its oldest one is
// dropped after every emission. With sum_period=1 that leaves no previous
// output, so the double EMA is seeded again from its window on every bar.
func massIndex(asc []model.Bar, p massIndexParams) model.Series {
	single := NewEMA(p.emaPeriod)
	double := NewEMA(p.emaPeriod)
	ratios := NewRollingSum(p.sumPeriod)

	n := len(asc) - p.minDataSize() + 1
	if n < 0 {
		n = 0
	}
	out := make(model.Series, 0, n)

	for _, b := range asc {
		diff := b.Float(model.FieldHigh) - b.Float(model.FieldLow)

		singleEMA, ok := single.Update(diff)
		if !ok {
			continue
		}
		doubleEMA, ok := double.Update(singleEMA)
		if !ok {
			continue
		}
		sum, ok := ratios.Update(singleEMA / doubleEMA)
		if !ok {
			continue
		}
		out = append(out, model.Point{TS: b.TS, Value: sum})
		if p.sumPeriod == 1 {
			double.Reseed()
		}
	}
	return out
}
