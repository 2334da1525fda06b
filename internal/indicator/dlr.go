package indicator

import (
	"math"

	"technical-analysis/internal/model"
	"technical-analysis/internal/series"
	"technical-analysis/internal/validation"
)

// DailyLogReturn computes ln(close[t] / close[t-1]).
// https://en.wikipedia.org/wiki/Rate_of_return#Logarithmic_or_continuously_compounded_return
//
// The first bar is its own predecessor: the seed price is read from the
// configurable price_key field (default "value"), every later comparison
// reads "close". A bar without "close" reads as 0.
type DailyLogReturn struct{}

const optPriceKey = "price_key"

func (DailyLogReturn) Symbol() string { return "dlr" }
func (DailyLogReturn) Name() string   { return "Daily Log Return" }

func (DailyLogReturn) ValidOptions() []string { return []string{optPriceKey} }

func (d DailyLogReturn) ValidateOptions(opts Options) error {
	return validation.ValidateOptions(opts, d.ValidOptions())
}

func (d DailyLogReturn) ResolveOptions(opts Options) (Options, error) {
	if err := d.ValidateOptions(opts); err != nil {
		return nil, err
	}
	priceKey, err := stringOption(opts, optPriceKey, model.FieldValue)
	if err != nil {
		return nil, err
	}
	return Options{optPriceKey: priceKey}, nil
}

func (DailyLogReturn) MinDataSize(Options) (int, error) { return 1, nil }

func (d DailyLogReturn) Calculate(bars []model.Bar, opts Options) (model.Series, error) {
	if err := d.ValidateOptions(opts); err != nil {
		return nil, err
	}
	priceKey, err := stringOption(opts, optPriceKey, model.FieldValue)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateNumericData(bars, priceKey); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength(bars, 1); err != nil {
		return nil, err
	}

	asc := series.SortAsc(bars)

	out := make(model.Series, 0, len(asc))
	prevPrice := asc[0].Float(priceKey)
	for _, b := range asc {
		currentPrice := b.Float(model.FieldClose)
		out = append(out, model.Point{TS: b.TS, Value: math.Log(currentPrice / prevPrice)})
		prevPrice = currentPrice
	}

	return series.SortDesc(out), nil
}
