package regression

import "fmt"

// QuadraticModel is the least squares parabola T = C2·RH² + C1·RH + C0.
type QuadraticModel struct {
	C0      float64
	C1      float64
	C2      float64
	Metrics MetricsBundle
}

// Predict evaluates the parabola at x.
func (m QuadraticModel) Predict(x float64) float64 {
	return m.C2*x*x + m.C1*x + m.C0
}

// Degree returns 2.
func (m QuadraticModel) Degree() int {
	return 2
}

// FitQuadratic solves the degree-2 normal equations with NewSolver.
func FitQuadratic(x, y []float64) (QuadraticModel, error) {
	return FitQuadraticWith(NewSolver(), x, y)
}

// FitQuadraticWith solves the degree-2 normal equations with s and scores the
// result against the training data.
func FitQuadraticWith(s Solver, x, y []float64) (QuadraticModel, error) {
	coef, err := QuadraticCoefficients(s, x, y)
	if err != nil {
		return QuadraticModel{}, err
	}
	m := QuadraticModel{C0: coef[0], C1: coef[1], C2: coef[2]}
	metrics, err := Evaluate(y, PredictAll(m, x))
	if err != nil {
		return QuadraticModel{}, err
	}
	m.Metrics = metrics
	return m, nil
}

// QuadraticCoefficients returns [c0, c1, c2].
func QuadraticCoefficients(s Solver, x, y []float64) ([]float64, error) {
	if err := checkSamples(x, y, 3); err != nil {
		return nil, err
	}
	var sx [5]float64
	var sy [3]float64
	for i := range x {
		p := 1.0
		for k := 0; k < len(sx); k++ {
			sx[k] += p
			if k < len(sy) {
				sy[k] += p * y[i]
			}
			p *= x[i]
		}
	}
	a := [][]float64{
		{sx[0], sx[1], sx[2]},
		{sx[1], sx[2], sx[3]},
		{sx[2], sx[3], sx[4]},
	}
	coef, err := s.Solve(a, sy[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDegenerateInput, err)
	}
	return coef, nil
}
