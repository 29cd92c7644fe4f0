package regression

import (
	"fmt"
	"math"
)

// DefaultBins is the histogram bin count used when none is configured.
const DefaultBins = 10

// Bin is one histogram bucket spanning [Start, End].
type Bin struct {
	Start float64
	End   float64
	Count int
}

// ResidualStats describes the distribution of a residual sequence.
type ResidualStats struct {
	Mean        float64
	Std         float64
	MaxPositive float64
	MaxNegative float64
	HasPositive bool
	HasNegative bool
	Histogram   []Bin
}

// Positive returns the largest positive residual.
func (s ResidualStats) Positive() (float64, error) {
	if !s.HasPositive {
		return 0, fmt.Errorf("%w: no positive residuals", ErrEmptySubset)
	}
	return s.MaxPositive, nil
}

// Negative returns the most negative residual.
func (s ResidualStats) Negative() (float64, error) {
	if !s.HasNegative {
		return 0, fmt.Errorf("%w: no negative residuals", ErrEmptySubset)
	}
	return s.MaxNegative, nil
}

// AnalyzeResiduals computes residual statistics and a histogram with bins buckets.
func AnalyzeResiduals(residuals []float64, bins int) (ResidualStats, error) {
	n := len(residuals)
	if n == 0 {
		return ResidualStats{}, fmt.Errorf("%w: no residuals", ErrDegenerateInput)
	}
	if !allFinite(residuals) {
		return ResidualStats{}, fmt.Errorf("%w: non-finite residual", ErrDegenerateInput)
	}
	hist, err := Histogram(residuals, bins)
	if err != nil {
		return ResidualStats{}, err
	}

	var sum float64
	for _, r := range residuals {
		sum += r
	}
	mean := sum / float64(n)
	var sq float64
	for _, r := range residuals {
		sq += (r - mean) * (r - mean)
	}

	stats := ResidualStats{
		Mean:      mean,
		Std:       math.Sqrt(sq / float64(n)),
		Histogram: hist,
	}
	if v, err := MaxPositive(residuals); err == nil {
		stats.MaxPositive, stats.HasPositive = v, true
	}
	if v, err := MaxNegative(residuals); err == nil {
		stats.MaxNegative, stats.HasNegative = v, true
	}
	return stats, nil
}

// MaxPositive returns the largest residual greater than zero.
func MaxPositive(residuals []float64) (float64, error) {
	found := false
	best := 0.0
	for _, r := range residuals {
		if r > 0 && (!found || r > best) {
			best, found = r, true
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: no positive residuals", ErrEmptySubset)
	}
	return best, nil
}

// MaxNegative returns the smallest residual below zero.
func MaxNegative(residuals []float64) (float64, error) {
	found := false
	best := 0.0
	for _, r := range residuals {
		if r < 0 && (!found || r < best) {
			best, found = r, true
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: no negative residuals", ErrEmptySubset)
	}
	return best, nil
}

// Histogram buckets values into bins equal-width bins between their min and max.
// The maximum lands in the last bin. When all values are equal they all land in
// bin 0.
func Histogram(values []float64, bins int) ([]Bin, error) {
	if bins < 1 {
		return nil, fmt.Errorf("%w: bin count must be >= 1, got %d", ErrDegenerateInput, bins)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrDegenerateInput)
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.IsInf(maxVal-minVal, 0) {
		return nil, fmt.Errorf("%w: value range [%g, %g] overflows", ErrDegenerateInput, minVal, maxVal)
	}
	size := (maxVal - minVal) / float64(bins)

	out := make([]Bin, bins)
	for i := range out {
		out[i].Start = minVal + float64(i)*size
		out[i].End = out[i].Start + size
	}
	for _, v := range values {
		idx := 0
		if size > 0 {
			idx = int(math.Floor((v - minVal) / size))
			if idx > bins-1 {
				idx = bins - 1
			}
			if idx < 0 {
				idx = 0
			}
		}
		out[idx].Count++
	}
	return out, nil
}
