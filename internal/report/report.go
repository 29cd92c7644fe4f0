// Package report builds fitted-model reports and renders them as text.
package report

import (
	"fmt"

	"github.com/verte-zerg/humtemp/internal/dataset"
	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/regression"
)

// Report holds both fitted models and their predictions over one dataset.
type Report struct {
	Samples       []model.Sample
	Humidity      []float64
	Temperature   []float64
	Summary       dataset.Summary
	Linear        regression.LinearModel
	Quadratic     regression.QuadraticModel
	LinearPred    []float64
	QuadraticPred []float64
}

// Build fits the linear and quadratic models to samples.
func Build(samples []model.Sample) (Report, error) {
	hum, temp := dataset.Columns(samples)
	lin, err := regression.FitLinear(hum, temp)
	if err != nil {
		return Report{}, fmt.Errorf("cannot fit linear model: %w", err)
	}
	quad, err := regression.FitQuadratic(hum, temp)
	if err != nil {
		return Report{}, fmt.Errorf("cannot fit quadratic model: %w", err)
	}
	return Report{
		Samples:       samples,
		Humidity:      hum,
		Temperature:   temp,
		Summary:       dataset.Summarize(samples),
		Linear:        lin,
		Quadratic:     quad,
		LinearPred:    regression.PredictAll(lin, hum),
		QuadraticPred: regression.PredictAll(quad, hum),
	}, nil
}

// Model returns the fitted model of the given kind.
func (r Report) Model(kind regression.Kind) regression.Predictor {
	if kind == regression.KindQuadratic {
		return r.Quadratic
	}
	return r.Linear
}

// Metrics returns the metrics of the given kind.
func (r Report) Metrics(kind regression.Kind) regression.MetricsBundle {
	if kind == regression.KindQuadratic {
		return r.Quadratic.Metrics
	}
	return r.Linear.Metrics
}

// Predictions returns the training-set predictions of the given kind.
func (r Report) Predictions(kind regression.Kind) []float64 {
	if kind == regression.KindQuadratic {
		return r.QuadraticPred
	}
	return r.LinearPred
}

// Residuals returns actual minus predicted temperature for the given kind.
func (r Report) Residuals(kind regression.Kind) []float64 {
	out, err := regression.Residuals(r.Temperature, r.Predictions(kind))
	if err != nil {
		// Build keeps both prediction slices aligned with Temperature.
		return nil
	}
	return out
}

// ResidualStats analyses the residuals of the given kind.
func (r Report) ResidualStats(kind regression.Kind, bins int) (regression.ResidualStats, error) {
	return regression.AnalyzeResiduals(r.Residuals(kind), bins)
}

// Record converts the report to a history record.
func (r Report) Record(path string, fingerprint uint64) model.FitRecord {
	return model.FitRecord{
		DataPath:        path,
		Fingerprint:     fingerprint,
		Samples:         len(r.Samples),
		LinearSlope:     r.Linear.Slope,
		LinearIntercept: r.Linear.Intercept,
		LinearR2:        r.Linear.Metrics.R2,
		LinearMAE:       r.Linear.Metrics.MAE,
		LinearRMSE:      r.Linear.Metrics.RMSE,
		QuadC0:          r.Quadratic.C0,
		QuadC1:          r.Quadratic.C1,
		QuadC2:          r.Quadratic.C2,
		QuadR2:          r.Quadratic.Metrics.R2,
		QuadMAE:         r.Quadratic.Metrics.MAE,
		QuadRMSE:        r.Quadratic.Metrics.RMSE,
	}
}

// SampleIndices picks the first two, middle and last two sample indices,
// de-duplicated and in ascending order.
func SampleIndices(n int) []int {
	if n <= 0 {
		return nil
	}
	candidates := []int{0, 1, n / 2, n - 2, n - 1}
	seen := make(map[int]struct{}, len(candidates))
	out := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if idx < 0 || idx >= n {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}
