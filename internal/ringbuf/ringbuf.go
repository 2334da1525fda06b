// Package ringbuf provides a fixed-capacity FIFO window of float64 values.
// Once the window is full every Push evicts the oldest value, so the ring
// always holds the most recent Cap() values. A Ring is owned by a single
// computation and is not safe for concurrent use.
package ringbuf

// Ring is a fixed-capacity FIFO window.
// The backing slice is sized to a power of two for fast bitwise modulo;
// the logical capacity is exactly what New was given.
type Ring struct {
	buf  []float64
	mask uint64
	cap  int

	head uint64 // next write position
	tail uint64 // oldest live value
}

// New creates a ring holding at most capacity values. Capacity below 1 is
// treated as 1.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	size := nextPow2(capacity)
	return &Ring{
		buf:  make([]float64, size),
		mask: uint64(size - 1),
		cap:  capacity,
	}
}

// Push appends v. When the ring is already full the oldest value is evicted
// and returned with evicted=true.
func (r *Ring) Push(v float64) (old float64, evicted bool) {
	if r.Full() {
		old = r.buf[r.tail&r.mask]
		r.tail++
		evicted = true
	}
	r.buf[r.head&r.mask] = v
	r.head++
	return old, evicted
}

// Len returns the number of live values.
func (r *Ring) Len() int {
	return int(r.head - r.tail)
}

// Cap returns the logical capacity.
func (r *Ring) Cap() int {
	return r.cap
}

// Full reports whether the ring holds exactly Cap() values.
func (r *Ring) Full() bool {
	return r.Len() == r.cap
}

// Sum adds the live values oldest to newest.
// Summed fresh on each call so long runs do not accumulate drift.
func (r *Ring) Sum() float64 {
	s := 0.0
	for i := r.tail; i < r.head; i++ {
		s += r.buf[i&r.mask]
	}
	return s
}

// Mean returns the arithmetic mean of the live values, 0 when empty.
func (r *Ring) Mean() float64 {
	n := r.Len()
	if n == 0 {
		return 0
	}
	return r.Sum() / float64(n)
}

// Values returns a copy of the live values, oldest first.
func (r *Ring) Values() []float64 {
	out := make([]float64, 0, r.Len())
	for i := r.tail; i < r.head; i++ {
		out = append(out, r.buf[i&r.mask])
	}
	return out
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
