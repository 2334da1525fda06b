// Package validation holds the input checks every indicator runs before it
// computes anything. All failures are reported as *ValidationError.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"technical-analysis/internal/model"
)

// ValidationError is the single error kind raised for bad input: missing or
// non-numeric fields, too little data, or unrecognized options.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Errorf builds a *ValidationError with a formatted message.
func Errorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidateNumericData fails if any bar lacks one of fields or holds a value
// that is not a finite number.
func ValidateNumericData(bars []model.Bar, fields ...string) error {
	for i, b := range bars {
		for _, f := range fields {
			v, ok := b.Get(f)
			if !ok {
				return Errorf("Invalid Data. Missing field %q at index %d", f, i)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Errorf("Invalid Data. Field %q is not numeric at index %d", f, i)
			}
		}
	}
	return nil
}

// ValidateLength fails if fewer than minSize bars are given.
func ValidateLength(bars []model.Bar, minSize int) error {
	if len(bars) < minSize {
		return Errorf("Not enough data for that period. Got %d bars, need at least %d", len(bars), minSize)
	}
	return nil
}

// ValidateOptions fails if options has a key outside allowed.
func ValidateOptions(options map[string]any, allowed []string) error {
	if len(options) == 0 {
		return nil
	}
	ok := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		ok[k] = struct{}{}
	}
	var unknown []string
	for k := range options {
		if _, found := ok[k]; !found {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if len(allowed) == 0 {
		return Errorf("Invalid options given: %s. This indicator doesn't accept any options", strings.Join(unknown, ", "))
	}
	return Errorf("Invalid options given: %s. Valid options are: %s", strings.Join(unknown, ", "), strings.Join(allowed, ", "))
}

// ValidatePositive fails if a period-like parameter is below 1.
func ValidatePositive(name string, v int) error {
	if v < 1 {
		return Errorf("Invalid option %s=%d. Must be a positive integer", name, v)
	}
	return nil
}
