package regression

import (
	"fmt"
	"math"
)

// MetricsBundle holds goodness-of-fit and error statistics for one model.
type MetricsBundle struct {
	R2        float64
	MAE       float64
	MSE       float64
	RMSE      float64
	MaxError  float64
	MeanError float64
	StdError  float64
}

// Evaluate scores predicted against actual. R2 is floored at 0.
func Evaluate(actual, predicted []float64) (MetricsBundle, error) {
	n := len(actual)
	if len(predicted) != n {
		return MetricsBundle{}, fmt.Errorf("%w: %d actual values, %d predicted", ErrShapeMismatch, n, len(predicted))
	}
	if n == 0 {
		return MetricsBundle{}, fmt.Errorf("%w: no values to evaluate", ErrDegenerateInput)
	}
	if !allFinite(actual) || !allFinite(predicted) {
		return MetricsBundle{}, fmt.Errorf("%w: non-finite value", ErrDegenerateInput)
	}

	var sumActual float64
	for _, a := range actual {
		sumActual += a
	}
	meanActual := sumActual / float64(n)

	var sst, sse, sumAbs, sumErr, maxErr float64
	for i := range actual {
		e := actual[i] - predicted[i]
		d := actual[i] - meanActual
		sst += d * d
		sse += e * e
		sumAbs += math.Abs(e)
		sumErr += e
		maxErr = math.Max(maxErr, math.Abs(e))
	}
	if sst == 0 || allEqual(actual) {
		return MetricsBundle{}, fmt.Errorf("%w: actual values have zero variance", ErrDegenerateInput)
	}

	count := float64(n)
	mse := sse / count
	meanErr := sumErr / count
	return MetricsBundle{
		R2:        math.Max(0, 1-sse/sst),
		MAE:       sumAbs / count,
		MSE:       mse,
		RMSE:      math.Sqrt(mse),
		MaxError:  maxErr,
		MeanError: meanErr,
		StdError:  math.Sqrt(math.Max(0, sse/count-meanErr*meanErr)),
	}, nil
}
