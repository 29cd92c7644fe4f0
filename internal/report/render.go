package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/regression"
)

const distributionBarWidth = 30

// FormatLinear renders the line as T = m × RH + c.
func FormatLinear(m regression.LinearModel) string {
	return fmt.Sprintf("T = %.4f × RH %s %.4f", m.Slope, signOf(m.Intercept), math.Abs(m.Intercept))
}

// FormatQuadratic renders the parabola as T = c2·RH² + c1·RH + c0.
func FormatQuadratic(m regression.QuadraticModel) string {
	return fmt.Sprintf("T = %.6fRH² %s %.4fRH %s %.3f",
		m.C2, signOf(m.C1), math.Abs(m.C1), signOf(m.C0), math.Abs(m.C0))
}

// FormatEquation renders the equation of kind from r.
func FormatEquation(r Report, kind regression.Kind) string {
	if kind == regression.KindQuadratic {
		return FormatQuadratic(r.Quadratic)
	}
	return FormatLinear(r.Linear)
}

// FormatSigned renders v with an explicit sign and the given precision.
func FormatSigned(v float64, prec int) string {
	if v > 0 {
		return fmt.Sprintf("+%.*f", prec, v)
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func signOf(v float64) string {
	if v < 0 {
		return "-"
	}
	return "+"
}

// RenderSummary prints dataset statistics.
func RenderSummary(w io.Writer, r Report) error {
	s := r.Summary
	return writeLines(w,
		"Dataset",
		fmt.Sprintf("Samples: %d", s.Count),
		fmt.Sprintf("Avg RH: %.1f%%", s.HumidityMean),
		fmt.Sprintf("RH range: %g%% - %g%%", s.HumidityMin, s.HumidityMax),
		fmt.Sprintf("Avg temperature: %.2f°C", s.TemperatureMean),
		"",
	)
}

// RenderEquations prints both fitted equations with their R².
func RenderEquations(w io.Writer, r Report) error {
	return writeLines(w,
		"Models",
		fmt.Sprintf("LINEAR: %s  (R² = %.3f | %.1f%%)", FormatLinear(r.Linear), r.Linear.Metrics.R2, r.Linear.Metrics.R2*100),
		fmt.Sprintf("POLYNOMIAL (deg 2): %s  (R² = %.3f | %.1f%%)", FormatQuadratic(r.Quadratic), r.Quadratic.Metrics.R2, r.Quadratic.Metrics.R2*100),
		"",
	)
}

// AccuracyRows returns the accuracy comparison as table rows.
func AccuracyRows(r Report) [][]string {
	lin, quad := r.Linear.Metrics, r.Quadratic.Metrics
	return [][]string{
		{"R-squared (R²)", fmt.Sprintf("%.4f", lin.R2), fmt.Sprintf("%.4f", quad.R2)},
		{"Mean Absolute Error (MAE)", fmt.Sprintf("%.3f°C", lin.MAE), fmt.Sprintf("%.3f°C", quad.MAE)},
		{"Mean Squared Error (MSE)", fmt.Sprintf("%.3f", lin.MSE), fmt.Sprintf("%.3f", quad.MSE)},
		{"Root MSE (RMSE)", fmt.Sprintf("%.3f°C", lin.RMSE), fmt.Sprintf("%.3f°C", quad.RMSE)},
		{"Max Error", fmt.Sprintf("%.3f°C", lin.MaxError), fmt.Sprintf("%.3f°C", quad.MaxError)},
		{"Mean Error", fmt.Sprintf("%.3f°C", lin.MeanError), fmt.Sprintf("%.3f°C", quad.MeanError)},
		{"Error Std Dev", fmt.Sprintf("%.3f°C", lin.StdError), fmt.Sprintf("%.3f°C", quad.StdError)},
	}
}

// RenderAccuracy prints the side-by-side accuracy table.
func RenderAccuracy(w io.Writer, r Report) error {
	lines := FormatTable([]string{"Metric", "Linear", "Polynomial"}, AccuracyRows(r), map[int]bool{1: true, 2: true})
	return writeLines(w, append(append([]string{"Accuracy"}, lines...), "")...)
}

// SampleRows returns the sample table rows for kind.
func SampleRows(r Report, kind regression.Kind) [][]string {
	pred := r.Predictions(kind)
	indices := SampleIndices(len(r.Samples))
	rows := make([][]string, 0, len(indices))
	for _, idx := range indices {
		s := r.Samples[idx]
		rows = append(rows, []string{
			s.Label,
			fmt.Sprintf("%g%%", s.Humidity),
			fmt.Sprintf("%.1f°C", s.Temperature),
			fmt.Sprintf("%.1f°C", pred[idx]),
			FormatSigned(s.Temperature-pred[idx], 1) + "°C",
		})
	}
	return rows
}

// RenderSamples prints a handful of samples with predictions of kind.
func RenderSamples(w io.Writer, r Report, kind regression.Kind) error {
	lines := FormatTable([]string{"Date", "RH", "Actual", "Predicted", "Error"}, SampleRows(r, kind), map[int]bool{1: true, 2: true, 3: true, 4: true})
	title := fmt.Sprintf("Samples (%s)", strings.ToLower(kind.Title()))
	return writeLines(w, append(append([]string{title}, lines...), "")...)
}

// RenderResidualStats prints residual mean, spread and extremes.
func RenderResidualStats(w io.Writer, kind regression.Kind, s regression.ResidualStats) error {
	return writeLines(w,
		fmt.Sprintf("Residuals (%s)", strings.ToLower(kind.Title())),
		fmt.Sprintf("Mean error: %.2f°C", s.Mean),
		fmt.Sprintf("Std deviation: %.2f°C", s.Std),
		"Max positive error: "+formatExtreme(s.Positive()),
		"Max negative error: "+formatExtreme(s.Negative()),
		"",
	)
}

func formatExtreme(v float64, err error) string {
	if errors.Is(err, regression.ErrEmptySubset) {
		return "n/a"
	}
	return FormatSigned(v, 2) + "°C"
}

// DistributionLines formats the histogram as one line per bin.
func DistributionLines(s regression.ResidualStats) []string {
	total := 0
	peak := 0
	for _, b := range s.Histogram {
		total += b.Count
		if b.Count > peak {
			peak = b.Count
		}
	}
	rows := make([][]string, 0, len(s.Histogram))
	for _, b := range s.Histogram {
		pct := 0.0
		if total > 0 {
			pct = float64(b.Count) / float64(total) * 100
		}
		bar := 0
		if peak > 0 {
			bar = int(math.Round(float64(b.Count) / float64(peak) * distributionBarWidth))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%.2f°C", b.Start),
			"to",
			fmt.Sprintf("%.2f°C", b.End),
			fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("%.1f%%", pct),
			strings.Repeat("█", bar),
		})
	}
	return FormatTable(nil, rows, map[int]bool{0: true, 2: true, 3: true, 4: true})
}

// RenderDistribution prints the residual histogram.
func RenderDistribution(w io.Writer, s regression.ResidualStats) error {
	return writeLines(w, append(append([]string{"Error distribution"}, DistributionLines(s)...), "")...)
}

// PredictionRows returns the prediction comparison as table rows.
func PredictionRows(p Prediction) [][]string {
	return [][]string{
		{"Linear", fmt.Sprintf("%.1f°C", p.Linear), FormatSigned(p.LinearDelta, 2) + "°C", string(Classify(p.LinearDelta))},
		{"Polynomial", fmt.Sprintf("%.1f°C", p.Quadratic), FormatSigned(p.QuadraticDelta, 2) + "°C", string(Classify(p.QuadraticDelta))},
		{"Average", fmt.Sprintf("%.1f°C", p.Average), "±0.00°C", string(StatusNeutral)},
	}
}

// RenderPrediction prints both model predictions at one RH value.
func RenderPrediction(w io.Writer, p Prediction) error {
	lines := FormatTable([]string{"Model", "Prediction", "vs avg", "Status"}, PredictionRows(p), map[int]bool{1: true, 2: true})
	title := fmt.Sprintf("Prediction at RH %g%%", p.Humidity)
	return writeLines(w, append(append([]string{title}, lines...), "")...)
}

// RenderHistory prints recorded fit runs.
func RenderHistory(w io.Writer, records []model.FitRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No fits recorded.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.DataPath,
			fmt.Sprintf("%d", rec.Samples),
			fmt.Sprintf("%.4f", rec.LinearSlope),
			fmt.Sprintf("%.4f", rec.LinearR2),
			fmt.Sprintf("%.4f", rec.QuadR2),
			fmt.Sprintf("%.3f", rec.LinearMAE),
			fmt.Sprintf("%.3f", rec.QuadMAE),
		})
	}
	headers := []string{"ID", "Time", "Data", "N", "Slope", "R² lin", "R² poly", "MAE lin", "MAE poly"}
	lines := FormatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true})
	return writeLines(w, lines...)
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
