// Package series converts between the two orderings indicators care about:
// ascending (oldest first) for computation and descending (newest first) for output.
package series

import (
	"slices"
	"time"
)

// Timestamped is anything ordered by a timestamp (bars, result points).
type Timestamped interface {
	Time() time.Time
}

// SortAsc returns a copy of items ordered oldest first. Equal timestamps keep
// their input order.
func SortAsc[T Timestamped](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return a.Time().Compare(b.Time())
	})
	return out
}

// SortDesc returns a copy of items ordered newest first. Equal timestamps keep
// their input order.
func SortDesc[T Timestamped](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return b.Time().Compare(a.Time())
	})
	return out
}
