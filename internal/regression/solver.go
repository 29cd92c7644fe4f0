package regression

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the smallest pivot magnitude accepted by a Solver.
const DefaultEpsilon = 1e-12

// Solver solves small dense square systems by Gaussian elimination with
// partial pivoting.
type Solver struct {
	Epsilon float64
}

// NewSolver returns a Solver using DefaultEpsilon.
func NewSolver() Solver {
	return Solver{Epsilon: DefaultEpsilon}
}

// Solve returns v such that a·v = b. Neither a nor b is modified.
func (s Solver) Solve(a [][]float64, b []float64) ([]float64, error) {
	k := len(b)
	if k == 0 || len(a) != k {
		return nil, fmt.Errorf("%w: matrix has %d rows, vector has %d entries", ErrShapeMismatch, len(a), k)
	}
	eps := s.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	aug := make([][]float64, k)
	for i, row := range a {
		if len(row) != k {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), k)
		}
		aug[i] = make([]float64, k+1)
		copy(aug[i], row)
		aug[i][k] = b[i]
	}

	for col := 0; col < k; col++ {
		pivot := pivotRow(aug, col)
		if math.Abs(aug[pivot][col]) < eps {
			return nil, fmt.Errorf("%w: pivot %g in column %d", ErrSingularMatrix, aug[pivot][col], col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for r := col + 1; r < k; r++ {
			factor := aug[r][col] / aug[col][col]
			for c := col; c <= k; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	v := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		sum := aug[i][k]
		for j := i + 1; j < k; j++ {
			sum -= aug[i][j] * v[j]
		}
		v[i] = sum / aug[i][i]
	}
	return v, nil
}

// pivotRow returns the row at or below col with the largest magnitude in
// column col. Ties go to the topmost row.
func pivotRow(aug [][]float64, col int) int {
	pivot := col
	for r := col + 1; r < len(aug); r++ {
		if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
			pivot = r
		}
	}
	return pivot
}
