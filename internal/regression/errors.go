// Package regression fits linear and quadratic models and scores them.
//
// Everything in this package is a pure function of its arguments and is safe to
// call from concurrent goroutines.
package regression

import (
	"errors"
	"math"
)

var (
	// ErrDegenerateInput reports too few samples or too little variance for a stable result.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrSingularMatrix reports a pivot below the solver epsilon.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrEmptySubset reports an extreme requested over an empty residual subset.
	ErrEmptySubset = errors.New("empty subset")
	// ErrShapeMismatch reports input sequences of incompatible lengths.
	ErrShapeMismatch = errors.New("shape mismatch")
)

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
