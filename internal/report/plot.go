package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/humtemp/internal/regression"
)

// Point is one plotted coordinate.
type Point struct {
	X float64
	Y float64
}

// Layer is a named set of points. Connected layers are drawn as a polyline,
// the rest as scattered dots.
type Layer struct {
	Name    string
	Points  []Point
	Connect bool
	Dashed  bool
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

type bounds struct {
	minX, maxX float64
	minY, maxY float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 7
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	curveStep           = 0.5
)

var (
	solidStyle  = lineStyle{name: "line", period: 1, on: 1}
	dashedStyle = lineStyle{name: "dashed", period: 6, on: 3}
	pointStyle  = lineStyle{name: "points", period: 1, on: 1}
)

var colorPalette = []ansiColor{
	{name: "red", code: "\x1b[31m"},
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
}

// PlotXY renders the layers on a shared braille grid.
func PlotXY(w io.Writer, title string, layers []Layer, width, height int, forceColor bool) error {
	layers = filterLayers(layers)
	if len(layers) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	b := layerBounds(layers)
	dotsX, dotsY := width*2, height*4

	layerCells := make([][][]uint8, len(layers))
	for li, layer := range layers {
		cells := makeCells(height, width)
		style := layer.style()
		prevX, prevY := -1, -1
		for _, p := range layer.Points {
			px := scale(p.X, b.minX, b.maxX, dotsX)
			py := dotsY - 1 - scale(p.Y, b.minY, b.maxY, dotsY)
			if layer.Connect && prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(cells, dx, dy)
					}
				})
			} else {
				setBrailleDot(cells, px, py)
			}
			prevX, prevY = px, py
		}
		layerCells[li] = cells
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(height, b.minY, b.maxY)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, axisLabels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(layerCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderXAxis(b, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(layers, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ScatterPoints pairs xs with ys.
func ScatterPoints(xs, ys []float64) []Point {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = Point{X: xs[i], Y: ys[i]}
	}
	return out
}

// CurvePoints samples m every step between minX and maxX inclusive.
func CurvePoints(m regression.Predictor, minX, maxX, step float64) []Point {
	if step <= 0 || maxX < minX {
		return nil
	}
	var out []Point
	for x := minX; x <= maxX+1e-9; x += step {
		out = append(out, Point{X: x, Y: m.Predict(x)})
	}
	return out
}

// RenderFitPlot plots the data and the fitted curve of kind.
func RenderFitPlot(w io.Writer, r Report, kind regression.Kind, totalWidth, height int, useColor bool) error {
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	curve := CurvePoints(r.Model(kind), r.Summary.HumidityMin, r.Summary.HumidityMax, curveStep)
	return PlotXY(w, fmt.Sprintf("%s fit: temperature (°C) vs RH (%%)", kind.Title()), []Layer{
		{Name: "Actual", Points: ScatterPoints(r.Humidity, r.Temperature)},
		{Name: kind.Title() + " regression", Points: curve, Connect: true},
	}, width, height, useColor)
}

// RenderResidualPlot plots the residuals of kind against RH with a zero line.
func RenderResidualPlot(w io.Writer, r Report, kind regression.Kind, totalWidth, height int, useColor bool) error {
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	zero := []Point{{X: r.Summary.HumidityMin, Y: 0}, {X: r.Summary.HumidityMax, Y: 0}}
	return PlotXY(w, fmt.Sprintf("%s residuals (°C) vs RH (%%)", kind.Title()), []Layer{
		{Name: "Residual", Points: ScatterPoints(r.Humidity, r.Residuals(kind))},
		{Name: "Zero (y=0)", Points: zero, Connect: true, Dashed: true},
	}, width, height, useColor)
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - displayWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func (l Layer) style() lineStyle {
	switch {
	case !l.Connect:
		return pointStyle
	case l.Dashed:
		return dashedStyle
	default:
		return solidStyle
	}
}

func filterLayers(layers []Layer) []Layer {
	out := make([]Layer, 0, len(layers))
	for _, l := range layers {
		if len(l.Points) == 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

func layerBounds(layers []Layer) bounds {
	b := bounds{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
	}
	for _, l := range layers {
		for _, p := range l.Points {
			b.minX = math.Min(b.minX, p.X)
			b.maxX = math.Max(b.maxX, p.X)
			b.minY = math.Min(b.minY, p.Y)
			b.maxY = math.Max(b.maxY, p.Y)
		}
	}
	if math.Abs(b.maxX-b.minX) < 1e-9 {
		b.minX--
		b.maxX++
	}
	if math.Abs(b.maxY-b.minY) < 1e-9 {
		b.minY--
		b.maxY++
	}
	return b
}

func scale(v, minVal, maxVal float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	idx := int(math.Round(pos * float64(dots-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= dots {
		idx = dots - 1
	}
	return idx
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, minY, maxY float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.1f", maxY)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.1f", (minY+maxY)/2)
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.1f", minY)
	}
	return labels
}

func renderXAxis(b bounds, width int) string {
	left := fmt.Sprintf("%.1f", b.minX)
	right := fmt.Sprintf("%.1f", b.maxX)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", axisLabelWidth+displayWidth(axisSeparator)) + left + strings.Repeat(" ", gap) + right
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(layerCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range layerCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func renderLegend(layers []Layer, useColor bool) string {
	parts := make([]string, 0, len(layers))
	marker := brailleFromMask(0x01)
	for i, l := range layers {
		label := fmt.Sprintf("%c %s (%s)", marker, l.Name, l.style().name)
		if useColor {
			color := colorPalette[i%len(colorPalette)].code
			label = color + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// Dot numbering follows the Unicode braille block: 1-3 and 7 down the left
// column, 4-6 and 8 down the right.
func brailleDotMask(x, y int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if y < 0 || y > 3 {
		return 0
	}
	switch x {
	case 0:
		return left[y]
	case 1:
		return right[y]
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
