package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/humtemp/internal/regression"
)

func TestPlotXY(t *testing.T) {
	var buf bytes.Buffer
	err := PlotXY(&buf, "Test Plot", []Layer{
		{Name: "A", Points: []Point{{X: 0, Y: 1}, {X: 1, Y: 3}, {X: 2, Y: 2}}},
		{Name: "B", Points: []Point{{X: 0, Y: 0}, {X: 2, Y: 4}}, Connect: true},
		{Name: "Empty"},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotXY failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") || !strings.Contains(out, "A (points)") || !strings.Contains(out, "B (line)") {
		t.Fatalf("expected legend entries in output: %q", out)
	}
	if strings.Contains(out, "Empty") {
		t.Fatalf("expected empty layer to be skipped")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for a buffer")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if want := 1 + 4 + 1 + 1; len(lines) != want {
		t.Fatalf("expected %d lines of output, got %d", want, len(lines))
	}
}

func TestPlotXYNoLayers(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotXY(&buf, "Nothing", nil, 10, 4, false); err != nil {
		t.Fatalf("PlotXY failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	total := 80
	expected := total - axisLabelWidth - displayWidth(axisSeparator)
	if got := PlotWidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestCurvePoints(t *testing.T) {
	m := regression.LinearModel{Slope: 2, Intercept: 1}
	pts := CurvePoints(m, 0, 1, 0.5)
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[2].X != 1 || pts[2].Y != 3 {
		t.Fatalf("unexpected last point %+v", pts[2])
	}
	if CurvePoints(m, 0, 1, 0) != nil {
		t.Fatalf("expected nil for zero step")
	}
	if CurvePoints(m, 2, 1, 0.5) != nil {
		t.Fatalf("expected nil for inverted range")
	}
}

func TestRenderFitAndResidualPlots(t *testing.T) {
	r := mustBuild(t)
	var buf bytes.Buffer
	if err := RenderFitPlot(&buf, r, regression.KindQuadratic, 60, 6, false); err != nil {
		t.Fatalf("fit plot: %v", err)
	}
	if !strings.Contains(buf.String(), "Polynomial fit") {
		t.Fatalf("expected polynomial title, got %q", buf.String())
	}
	buf.Reset()
	if err := RenderResidualPlot(&buf, r, regression.KindLinear, 60, 6, false); err != nil {
		t.Fatalf("residual plot: %v", err)
	}
	if !strings.Contains(buf.String(), "Zero (y=0) (dashed)") {
		t.Fatalf("expected dashed zero line in legend, got %q", buf.String())
	}
}

func TestBrailleDotMask(t *testing.T) {
	if brailleDotMask(0, 3) != 0x40 || brailleDotMask(1, 3) != 0x80 || brailleDotMask(2, 0) != 0 {
		t.Fatalf("unexpected braille masks")
	}
	cells := makeCells(1, 1)
	setBrailleDot(cells, 0, 0)
	setBrailleDot(cells, 1, 0)
	setBrailleDot(cells, 5, 5)
	if cells[0][0] != 0x09 {
		t.Fatalf("expected mask 0x09, got %#x", cells[0][0])
	}
}
