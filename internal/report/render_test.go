package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/regression"
)

func TestFormatEquations(t *testing.T) {
	lin := regression.LinearModel{Slope: -0.24, Intercept: 32.6}
	if got := FormatLinear(lin); got != "T = -0.2400 × RH + 32.6000" {
		t.Fatalf("unexpected linear equation %q", got)
	}
	quad := regression.QuadraticModel{C0: -1.5, C1: 0.25, C2: -0.003}
	if got := FormatQuadratic(quad); got != "T = -0.003000RH² + 0.2500RH - 1.500" {
		t.Fatalf("unexpected quadratic equation %q", got)
	}
}

func TestFormatSigned(t *testing.T) {
	cases := map[float64]string{0.5: "+0.50", -0.5: "-0.50", 0: "0.00"}
	for v, want := range cases {
		if got := FormatSigned(v, 2); got != want {
			t.Fatalf("FormatSigned(%v): expected %q, got %q", v, want, got)
		}
	}
}

func TestRenderSections(t *testing.T) {
	r := mustBuild(t)
	var buf bytes.Buffer
	if err := RenderSummary(&buf, r); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := RenderEquations(&buf, r); err != nil {
		t.Fatalf("equations: %v", err)
	}
	if err := RenderAccuracy(&buf, r); err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if err := RenderSamples(&buf, r, regression.KindLinear); err != nil {
		t.Fatalf("samples: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Samples: 6", "RH range: 70% - 95%", "LINEAR: T = ", "POLYNOMIAL (deg 2)", "Metric", "Max Error", "Samples (linear)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderResidualStatsWithoutNegatives(t *testing.T) {
	stats, err := regression.AnalyzeResiduals([]float64{0.5, 1.5}, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderResidualStats(&buf, regression.KindQuadratic, stats); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Max positive error: +1.50°C") {
		t.Fatalf("expected positive extreme, got:\n%s", out)
	}
	if !strings.Contains(out, "Max negative error: n/a") {
		t.Fatalf("expected n/a for negatives, got:\n%s", out)
	}
}

func TestDistributionLines(t *testing.T) {
	stats, err := regression.AnalyzeResiduals([]float64{-1, -0.5, 0, 0.5, 1}, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	lines := DistributionLines(stats)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "40.0%") || !strings.Contains(lines[1], "60.0%") {
		t.Fatalf("unexpected percentages: %q", lines)
	}
	if !strings.HasSuffix(lines[1], strings.Repeat("█", distributionBarWidth)) {
		t.Fatalf("expected full bar on the largest bin: %q", lines[1])
	}
}

func TestRenderPrediction(t *testing.T) {
	p := Prediction{Humidity: 85, Linear: 12.3, Quadratic: 13.5, Average: 12.5, LinearDelta: -0.2, QuadraticDelta: 1.0}
	var buf bytes.Buffer
	if err := RenderPrediction(&buf, p); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Prediction at RH 85%", "ACCURATE", "ATTENTION", "±0.00°C", "NEUTRAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No fits recorded." {
		t.Fatalf("unexpected empty history: %q", buf.String())
	}
	buf.Reset()
	records := []model.FitRecord{{ID: 7, CreatedAt: time.Unix(0, 0), DataPath: "data.csv", Samples: 30, LinearSlope: -0.24}}
	if err := RenderHistory(&buf, records); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "data.csv") || !strings.Contains(lines[1], "-0.2400") {
		t.Fatalf("unexpected history output: %q", lines)
	}
}
