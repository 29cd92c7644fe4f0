// Package dashboard provides the Bubble Tea regression dashboard.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/humtemp/internal/dataset"
	"github.com/verte-zerg/humtemp/internal/export"
	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/regression"
	"github.com/verte-zerg/humtemp/internal/report"
)

const (
	tabOverview = iota
	tabLinear
	tabQuadratic
	tabResiduals
	tabPredict
)

const (
	plotHeight   = 12
	maxBins      = 50
	humidityStep = 1.0
	defaultWidth = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A8FC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	sliderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A8FC8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A8FC8")).
			Padding(1, 2)
)

// Recorder stores fit runs.
type Recorder interface {
	InsertFit(ctx context.Context, rec model.FitRecord) (int64, error)
}

type recordedMsg struct {
	id  int64
	err error
}

type exportedMsg struct {
	path string
	err  error
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	report      report.Report
	cfg         model.Config
	recorder    Recorder
	fingerprint uint64
	now         func() time.Time

	kind     regression.Kind
	bins     int
	humidity float64

	tabs      []string
	activeTab int
	viewports []viewport.Model
	accuracy  table.Model

	width  int
	height int

	showDistribution bool

	settingsMode   bool
	settingsInputs []textinput.Model
	settingsIndex  int
	settingsError  string

	statusMsg string
	errMsg    string
}

// NewModel constructs a dashboard for r. rec may be nil, in which case the
// fit is not recorded.
func NewModel(r report.Report, cfg model.Config, rec Recorder, fingerprint uint64) *Model {
	m := &Model{
		report:      r,
		cfg:         cfg,
		recorder:    rec,
		fingerprint: fingerprint,
		now:         time.Now,
		kind:        regression.KindLinear,
		bins:        clampBins(cfg.Bins),
		humidity:    clampHumidity(cfg.Humidity),
		tabs:        []string{"Overview", "Linear", "Quadratic", "Residuals", "Predict"},
	}
	if cfg.Bins <= 0 {
		m.bins = regression.DefaultBins
	}
	m.initInputs()
	m.initAccuracyTable()
	m.initViewports()
	m.renderTabContents()
	return m
}

// Init implements tea.Model. It records the fit once when a recorder is set.
func (m *Model) Init() tea.Cmd {
	if m.recorder == nil {
		return nil
	}
	rec := m.report.Record(m.cfg.DataPath, m.fingerprint)
	rec.CreatedAt = m.now()
	recorder := m.recorder
	return func() tea.Msg {
		id, err := recorder.InsertFit(context.Background(), rec)
		return recordedMsg{id: id, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case recordedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to record fit: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Recorded fit #%d", msg.id)
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("export failed: %v", msg.err)
			m.statusMsg = ""
			return m, nil
		}
		m.errMsg = ""
		m.statusMsg = fmt.Sprintf("Exported %s", msg.path)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.settingsMode {
			return m.updateSettings(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.showDistribution {
			return m.updateDistribution(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "1", "2", "3", "4", "5":
		m.activeTab = int(key[0] - '1')
		return m, tea.ClearScreen
	case "t":
		m.toggleKind()
		return m, nil
	case "d":
		m.showDistribution = true
		return m, nil
	case "-":
		m.setBins(m.bins - 1)
		return m, nil
	case "=", "+":
		m.setBins(m.bins + 1)
		return m, nil
	case "[":
		m.setHumidity(m.humidity - humidityStep)
		return m, nil
	case "]":
		m.setHumidity(m.humidity + humidityStep)
		return m, nil
	case "r":
		m.reset()
		return m, nil
	case "e":
		return m, m.exportCmd()
	case "/":
		return m.startSettings()
	case "g", "home":
		m.viewports[m.activeTab].GotoTop()
		return m, nil
	case "G", "end":
		m.viewports[m.activeTab].GotoBottom()
		return m, nil
	default:
		vp := m.viewports[m.activeTab]
		var cmd tea.Cmd
		vp, cmd = vp.Update(msg)
		m.viewports[m.activeTab] = vp
		return m, cmd
	}
}

func (m *Model) updateDistribution(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "d", "enter":
		m.showDistribution = false
	case "-":
		m.setBins(m.bins - 1)
	case "=", "+":
		m.setBins(m.bins + 1)
	case "t":
		m.toggleKind()
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showDistribution {
		return fitLines(m.renderDistributionModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initAccuracyTable() {
	columns := []table.Column{
		{Title: "Metric", Width: 26},
		{Title: "Linear", Width: 12},
		{Title: "Polynomial", Width: 12},
	}
	metrics := report.AccuracyRows(m.report)
	rows := make([]table.Row, 0, len(metrics))
	for _, row := range metrics {
		rows = append(rows, table.Row(row))
	}
	m.accuracy = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)),
	)
	m.accuracy.SetStyles(accuracyTableStyles())
}

func accuracyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell
	return styles
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = lipgloss.Height(m.renderFooter())
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	for i := range m.settingsInputs {
		promptWidth := lipgloss.Width(m.settingsInputs[i].Prompt)
		m.settingsInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

func (m *Model) toggleKind() {
	m.kind = m.kind.Other()
	m.renderTabContents()
}

func (m *Model) setBins(n int) {
	m.bins = clampBins(n)
	m.renderTabContents()
}

func (m *Model) setHumidity(rh float64) {
	m.humidity = clampHumidity(rh)
	m.renderTabContents()
}

func (m *Model) reset() {
	m.humidity = model.DefaultHumidity
	m.kind = regression.KindLinear
	m.renderTabContents()
}

func (m *Model) exportCmd() tea.Cmd {
	now := m.now()
	name := export.DefaultFileName(now)
	if m.cfg.ExportGzip {
		name += ".gz"
	}
	path := filepath.Join(m.cfg.ExportDir, name)
	r := m.report
	compress := m.cfg.ExportGzip
	return func() tea.Msg {
		err := export.WriteFile(path, r, now, compress)
		return exportedMsg{path: path, err: err}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	settings := padLines(m.renderSettingsSummary(), m.width)
	return tabs + "\n" + settings
}

func (m *Model) renderSettingsSummary() string {
	data := m.cfg.DataPath
	if data == "" {
		data = "-"
	}
	summary := fmt.Sprintf("Data: %s  samples=%d  residuals=%s  bins=%d  rh=%g%%",
		data, len(m.report.Samples), m.kind, m.bins, m.humidity)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) helpSegments() []string {
	segments := []string{"Nav: left/right"}
	switch m.activeTab {
	case tabResiduals:
		segments = append(segments, "Model: t", "Bins: -/=", "Distribution: d")
	case tabPredict:
		segments = append(segments, "RH: [/]", "Reset: r")
	default:
		segments = append(segments, "Scroll: up/down/pgup/pgdn")
	}
	return append(segments, "Export: e", "Settings: /", "Quit: q")
}

func (m *Model) renderHelp() string {
	lines := wrapSegments(m.helpSegments(), "  ", m.width)
	return headerStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	if m.settingsMode {
		return m.renderSettingsHelp()
	}
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	case m.statusMsg != "":
		return m.renderHelp() + "\n" + headerStyle.Render(truncateLine(m.statusMsg, m.width))
	default:
		return m.renderHelp()
	}
}

func (m *Model) renderBody(height int) string {
	if m.settingsMode {
		return fitLines(m.renderSettingsForm(), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabLinear].SetContent(m.renderFit(regression.KindLinear, width))
	m.viewports[tabQuadratic].SetContent(m.renderFit(regression.KindQuadratic, width))
	m.viewports[tabResiduals].SetContent(m.renderResiduals(width))
	m.viewports[tabPredict].SetContent(m.renderPredict(width))
}

func (m *Model) renderOverview(width int) string {
	cards := renderSummaryCards(m.report.Summary, width)
	equations := capture(func(w io.Writer) error { return report.RenderEquations(w, m.report) })
	accuracy := "Accuracy\n" + tableMutedStyle.Render(m.accuracy.View())
	samples := capture(func(w io.Writer) error {
		if err := report.RenderSamples(w, m.report, regression.KindLinear); err != nil {
			return err
		}
		return report.RenderSamples(w, m.report, regression.KindQuadratic)
	})
	return strings.Join([]string{cards, equations, accuracy, samples}, "\n\n")
}

func renderSummaryCards(s dataset.Summary, width int) string {
	cards := []string{
		metricCard("Samples", fmt.Sprintf("%d", s.Count)),
		metricCard("Avg RH", fmt.Sprintf("%.1f%%", s.HumidityMean)),
		metricCard("RH range", fmt.Sprintf("%g-%g%%", s.HumidityMin, s.HumidityMax)),
		metricCard("Avg temp", fmt.Sprintf("%.2f°C", s.TemperatureMean)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderFit(kind regression.Kind, width int) string {
	met := m.report.Metrics(kind)
	title := cardValueStyle.Render(kind.Title() + " regression")
	equation := headerStyle.Render(report.FormatEquation(m.report, kind))
	metrics := fmt.Sprintf("R² %.4f  MAE %.3f°C  RMSE %.3f°C  Max error %.3f°C", met.R2, met.MAE, met.RMSE, met.MaxError)
	plot := capture(func(w io.Writer) error {
		return report.RenderFitPlot(w, m.report, kind, width, plotHeight, true)
	})
	return title + "\n" + equation + "\n" + metrics + "\n\n" + plot
}

func (m *Model) renderResiduals(width int) string {
	header := headerStyle.Render(fmt.Sprintf("Model: %s  Bins: %d", m.kind.Title(), m.bins))
	stats, err := m.report.ResidualStats(m.kind, m.bins)
	if err != nil {
		return header + "\n" + errorStyle.Render(fmt.Sprintf("Failed to analyse residuals: %v", err))
	}
	plot := capture(func(w io.Writer) error {
		return report.RenderResidualPlot(w, m.report, m.kind, width, plotHeight, true)
	})
	summary := capture(func(w io.Writer) error { return report.RenderResidualStats(w, m.kind, stats) })
	return header + "\n\n" + plot + "\n\n" + summary
}

func (m *Model) renderPredict(width int) string {
	p := m.report.Predict(m.humidity)
	slider := renderSlider(m.humidity, sliderWidthFor(width))
	block := capture(func(w io.Writer) error { return report.RenderPrediction(w, p) })
	return slider + "\n\n" + block
}

func (m *Model) renderDistributionModal() string {
	body := []string{cardValueStyle.Render(fmt.Sprintf("Error distribution (%s, %d bins)", strings.ToLower(m.kind.Title()), m.bins))}
	stats, err := m.report.ResidualStats(m.kind, m.bins)
	if err != nil {
		body = append(body, errorStyle.Render(err.Error()))
	} else {
		body = append(body, report.DistributionLines(stats)...)
	}
	body = append(body, "", headerStyle.Render("Bins: -/=  Model: t  Close: esc/d"))
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func renderSlider(rh float64, width int) string {
	if width < 3 {
		width = 3
	}
	span := model.MaxHumidity - model.MinHumidity
	pos := int(math.Round((rh - model.MinHumidity) / span * float64(width-1)))
	pos = maxInt(0, minInt(width-1, pos))
	track := sliderStyle.Render(strings.Repeat("━", pos)+"●") + strings.Repeat("─", width-1-pos)
	return fmt.Sprintf("RH %g%%  %g%% %s %g%%", rh, model.MinHumidity, track, model.MaxHumidity)
}

func sliderWidthFor(width int) int {
	return maxInt(10, minInt(60, width-24))
}

func capture(render func(w io.Writer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func clampBins(n int) int {
	return maxInt(1, minInt(maxBins, n))
}

func clampHumidity(rh float64) float64 {
	return math.Max(model.MinHumidity, math.Min(model.MaxHumidity, rh))
}
