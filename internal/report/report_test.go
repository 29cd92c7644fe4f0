package report

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/regression"
)

func testSamples() []model.Sample {
	hum := []float64{70, 75, 80, 85, 90, 95}
	temp := []float64{15.8, 14.6, 13.5, 12.1, 11.0, 9.6}
	out := make([]model.Sample, len(hum))
	for i := range hum {
		out[i] = model.Sample{Label: "day", Humidity: hum[i], Temperature: temp[i]}
	}
	return out
}

func mustBuild(t *testing.T) Report {
	t.Helper()
	r, err := Build(testSamples())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	return r
}

func TestBuildFitsBothModels(t *testing.T) {
	r := mustBuild(t)
	if len(r.LinearPred) != 6 || len(r.QuadraticPred) != 6 {
		t.Fatalf("expected 6 predictions per model, got %d and %d", len(r.LinearPred), len(r.QuadraticPred))
	}
	if r.Linear.Slope >= 0 {
		t.Fatalf("expected negative slope, got %f", r.Linear.Slope)
	}
	if r.Linear.Metrics.R2 < 0.99 {
		t.Fatalf("expected near-perfect linear fit, got R2 %f", r.Linear.Metrics.R2)
	}
	if r.Quadratic.Metrics.MSE > r.Linear.Metrics.MSE+1e-9 {
		t.Fatalf("quadratic MSE %f exceeds linear MSE %f", r.Quadratic.Metrics.MSE, r.Linear.Metrics.MSE)
	}
	if r.Summary.Count != 6 || r.Summary.HumidityMin != 70 || r.Summary.HumidityMax != 95 {
		t.Fatalf("unexpected summary: %+v", r.Summary)
	}
}

func TestBuildPropagatesDegenerateInput(t *testing.T) {
	samples := []model.Sample{
		{Humidity: 80, Temperature: 10},
		{Humidity: 80, Temperature: 11},
		{Humidity: 80, Temperature: 12},
	}
	_, err := Build(samples)
	if !errors.Is(err, regression.ErrDegenerateInput) {
		t.Fatalf("expected degenerate input, got %v", err)
	}
}

func TestReportSelectsByKind(t *testing.T) {
	r := mustBuild(t)
	if r.Model(regression.KindLinear).Degree() != 1 {
		t.Fatalf("expected linear model for KindLinear")
	}
	if r.Model(regression.KindQuadratic).Degree() != 2 {
		t.Fatalf("expected quadratic model for KindQuadratic")
	}
	if r.Metrics(regression.KindQuadratic) != r.Quadratic.Metrics {
		t.Fatalf("expected quadratic metrics")
	}
	res := r.Residuals(regression.KindLinear)
	for i, v := range res {
		want := r.Temperature[i] - r.LinearPred[i]
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("residual %d: expected %f, got %f", i, want, v)
		}
	}
}

func TestResidualStatsUsesBins(t *testing.T) {
	r := mustBuild(t)
	stats, err := r.ResidualStats(regression.KindQuadratic, 4)
	if err != nil {
		t.Fatalf("residual stats: %v", err)
	}
	if len(stats.Histogram) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(stats.Histogram))
	}
	total := 0
	for _, b := range stats.Histogram {
		total += b.Count
	}
	if total != 6 {
		t.Fatalf("expected 6 residuals in histogram, got %d", total)
	}
}

func TestRecordCopiesCoefficients(t *testing.T) {
	r := mustBuild(t)
	rec := r.Record("data.csv", 42)
	if rec.DataPath != "data.csv" || rec.Fingerprint != 42 || rec.Samples != 6 {
		t.Fatalf("unexpected record header: %+v", rec)
	}
	if rec.LinearSlope != r.Linear.Slope || rec.QuadC2 != r.Quadratic.C2 {
		t.Fatalf("record coefficients do not match report")
	}
	if rec.LinearR2 != r.Linear.Metrics.R2 || rec.QuadRMSE != r.Quadratic.Metrics.RMSE {
		t.Fatalf("record metrics do not match report")
	}
}

func TestSampleIndices(t *testing.T) {
	cases := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{1, []int{0}},
		{2, []int{0, 1}},
		{3, []int{0, 1, 2}},
		{10, []int{0, 1, 5, 8, 9}},
	}
	for _, tc := range cases {
		got := SampleIndices(tc.n)
		if len(got) != len(tc.want) {
			t.Fatalf("n=%d: expected %v, got %v", tc.n, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("n=%d: expected %v, got %v", tc.n, tc.want, got)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		delta float64
		want  Status
	}{
		{0, StatusAccurate},
		{0.49, StatusAccurate},
		{-0.49, StatusAccurate},
		{0.5, StatusNeutral},
		{-0.99, StatusNeutral},
		{1.0, StatusAttention},
		{-2.5, StatusAttention},
	}
	for _, tc := range cases {
		if got := Classify(tc.delta); got != tc.want {
			t.Fatalf("Classify(%v): expected %s, got %s", tc.delta, tc.want, got)
		}
	}
}

func TestPredictComparesWithAverage(t *testing.T) {
	r := mustBuild(t)
	p := r.Predict(85)
	if p.Humidity != 85 {
		t.Fatalf("expected humidity 85, got %f", p.Humidity)
	}
	if p.Average != r.Summary.TemperatureMean {
		t.Fatalf("expected average %f, got %f", r.Summary.TemperatureMean, p.Average)
	}
	if math.Abs(p.Linear-r.Linear.Predict(85)) > 1e-12 {
		t.Fatalf("unexpected linear prediction %f", p.Linear)
	}
	if math.Abs(p.LinearDelta-(p.Linear-p.Average)) > 1e-12 {
		t.Fatalf("unexpected linear delta %f", p.LinearDelta)
	}
	if math.Abs(p.QuadraticDelta-(p.Quadratic-p.Average)) > 1e-12 {
		t.Fatalf("unexpected quadratic delta %f", p.QuadraticDelta)
	}
}
