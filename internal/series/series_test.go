package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"technical-analysis/internal/model"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return t0.AddDate(0, 0, n) }

func TestSortAsc(t *testing.T) {
	in := []model.Bar{
		model.NewBar(day(2), "close", 3.0),
		model.NewBar(day(0), "close", 1.0),
		model.NewBar(day(1), "close", 2.0),
	}
	out := SortAsc(in)

	assert.Equal(t, []float64{1, 2, 3}, []float64{out[0].Float("close"), out[1].Float("close"), out[2].Float("close")})
	// input untouched
	assert.Equal(t, day(2), in[0].TS)
}

func TestSortDesc(t *testing.T) {
	in := model.Series{{TS: day(0), Value: 1}, {TS: day(2), Value: 3}, {TS: day(1), Value: 2}}
	out := SortDesc(in)
	assert.Equal(t, []float64{3, 2, 1}, values(out))
}

func TestSort_StableOnTies(t *testing.T) {
	in := model.Series{{TS: day(1), Value: 1}, {TS: day(0), Value: 2}, {TS: day(1), Value: 3}, {TS: day(0), Value: 4}}

	assert.Equal(t, []float64{2, 4, 1, 3}, values(SortAsc(in)))
	assert.Equal(t, []float64{1, 3, 2, 4}, values(SortDesc(in)))
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, SortAsc([]model.Bar{}))
	assert.Empty(t, SortDesc(model.Series(nil)))
}

func values(s model.Series) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}
