package indicator

import "technical-analysis/internal/ringbuf"

// Recurrence computes a value from the previous output plus a trailing window
// of the last period inputs. Nothing is produced until the window first fills;
// that first output is the seed computed over the window, every later output
// is step(input, previous output).
type Recurrence struct {
	window *ringbuf.Ring
	seed   func(window *ringbuf.Ring) float64
	step   func(x, prev float64) float64

	current float64
	seeded  bool
}

// NewRecurrence creates a recurrence over a window of period inputs.
func NewRecurrence(period int, seed func(*ringbuf.Ring) float64, step func(x, prev float64) float64) *Recurrence {
	return &Recurrence{
		window: ringbuf.New(period),
		seed:   seed,
		step:   step,
	}
}

// Update feeds x and returns the new output. ok is false while the window
// is still filling.
func (r *Recurrence) Update(x float64) (value float64, ok bool) {
	r.window.Push(x)
	if !r.window.Full() {
		return 0, false
	}
	if !r.seeded {
		r.current = r.seed(r.window)
		r.seeded = true
	} else {
		r.current = r.step(x, r.current)
	}
	return r.current, true
}

// Reseed drops the previous output but keeps the window: the next Update
// computes the seed again over the window instead of stepping.
func (r *Recurrence) Reseed() { r.seeded = false }

// NewEMA returns an exponential moving average seeded with the arithmetic
// mean of the first period inputs.
//
//	EMA = (x * k) + (EMA_prev * (1 - k)),  k = 2 / (period + 1)
func NewEMA(period int) *Recurrence {
	k := 2.0 / float64(period+1)
	return NewRecurrence(period,
		func(w *ringbuf.Ring) float64 { return w.Mean() },
		func(x, prev float64) float64 { return (x * k) + (prev * (1 - k)) },
	)
}

// RollingSum sums the last period inputs.
type RollingSum struct {
	window *ringbuf.Ring
}

// NewRollingSum creates a rolling sum over period inputs.
func NewRollingSum(period int) *RollingSum {
	return &RollingSum{window: ringbuf.New(period)}
}

// Update feeds x and returns the sum of the window. ok is false until the
// window holds period values.
func (s *RollingSum) Update(x float64) (sum float64, ok bool) {
	s.window.Push(x)
	if !s.window.Full() {
		return 0, false
	}
	return s.window.Sum(), true
}
