package regression

import (
	"fmt"
	"math"
)

// LinearModel is an ordinary least squares line T = Slope·RH + Intercept.
type LinearModel struct {
	Slope     float64
	Intercept float64
	Metrics   MetricsBundle
}

// Predict evaluates the line at x.
func (m LinearModel) Predict(x float64) float64 {
	return m.Slope*x + m.Intercept
}

// Degree returns 1.
func (m LinearModel) Degree() int {
	return 1
}

// FitLine returns the slope and intercept minimising squared error of y on x.
func FitLine(x, y []float64) (slope, intercept float64, err error) {
	if err := checkSamples(x, y, 2); err != nil {
		return 0, 0, err
	}
	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}
	den := n*sumX2 - sumX*sumX
	if allEqual(x) || den == 0 || math.Abs(den) <= DefaultEpsilon*n*sumX2 {
		return 0, 0, fmt.Errorf("%w: all x values are identical", ErrDegenerateInput)
	}
	slope = (n*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, nil
}

// FitLinear fits a line and scores it against the training data.
func FitLinear(x, y []float64) (LinearModel, error) {
	slope, intercept, err := FitLine(x, y)
	if err != nil {
		return LinearModel{}, err
	}
	m := LinearModel{Slope: slope, Intercept: intercept}
	metrics, err := Evaluate(y, PredictAll(m, x))
	if err != nil {
		return LinearModel{}, err
	}
	m.Metrics = metrics
	return m, nil
}

func checkSamples(x, y []float64, minCount int) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d x values, %d y values", ErrShapeMismatch, len(x), len(y))
	}
	if len(x) < minCount {
		return fmt.Errorf("%w: need at least %d samples, got %d", ErrDegenerateInput, minCount, len(x))
	}
	if !allFinite(x) || !allFinite(y) {
		return fmt.Errorf("%w: non-finite sample value", ErrDegenerateInput)
	}
	return nil
}
