package regression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveMatchesGonum(t *testing.T) {
	a := [][]float64{
		{2, 1, -1},
		{-3, -1, 2},
		{-2, 1, 2},
	}
	b := []float64{8, -11, -3}

	got, err := NewSolver().Solve(a, b)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{2, 3, -1}, got, 1e-12)

	dense := mat.NewDense(3, 3, []float64{2, 1, -1, -3, -1, 2, -2, 1, 2})
	var want mat.VecDense
	require.NoError(t, want.SolveVec(dense, mat.NewVecDense(3, b)))
	for i := range got {
		require.InDelta(t, want.AtVec(i), got[i], 1e-12)
	}
}

func TestSolveNeedsPivoting(t *testing.T) {
	// Zero in the leading position fails without a row swap.
	a := [][]float64{
		{0, 1},
		{1, 1},
	}
	got, err := NewSolver().Solve(a, []float64{2, 3})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, 2}, got, 1e-12)
}

func TestSolveDoesNotMutateInputs(t *testing.T) {
	a := [][]float64{{1, 2}, {3, 4}}
	b := []float64{5, 6}
	_, err := NewSolver().Solve(a, b)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2}, {3, 4}}, a)
	require.Equal(t, []float64{5, 6}, b)
}

func TestSolveSingular(t *testing.T) {
	a := [][]float64{
		{1, 2, 3},
		{2, 4, 6},
		{1, 0, 1},
	}
	_, err := NewSolver().Solve(a, []float64{1, 2, 3})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSingularMatrix))
}

func TestSolveEpsilonIsConfigurable(t *testing.T) {
	a := [][]float64{{1e-6, 0}, {0, 1}}
	b := []float64{1, 1}

	_, err := NewSolver().Solve(a, b)
	require.NoError(t, err)

	_, err = Solver{Epsilon: 1e-3}.Solve(a, b)
	require.ErrorIs(t, err, ErrSingularMatrix)
}

func TestSolveShapeMismatch(t *testing.T) {
	s := NewSolver()

	_, err := s.Solve([][]float64{{1, 2}, {3, 4}}, []float64{1})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = s.Solve([][]float64{{1, 2}, {3}}, []float64{1, 2})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = s.Solve(nil, nil)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPivotRowPrefersTopmostOnTie(t *testing.T) {
	aug := [][]float64{
		{1, 0, 0},
		{-3, 4, 1},
		{3, -4, 2},
	}
	require.Equal(t, 1, pivotRow(aug, 0))
	require.Equal(t, 1, pivotRow(aug, 1))
	require.Equal(t, 2, pivotRow(aug, 2))
}
