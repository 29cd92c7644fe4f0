package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/humtemp/internal/model"
)

const (
	settingBins = iota
	settingHumidity
)

func (m *Model) initInputs() {
	m.settingsInputs = []textinput.Model{
		newSettingInput("Bins: "),
		newSettingInput("RH (%): "),
	}
	m.setInputsFromState()
}

func newSettingInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 8
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromState() {
	if len(m.settingsInputs) == 0 {
		return
	}
	m.settingsInputs[settingBins].SetValue(strconv.Itoa(m.bins))
	m.settingsInputs[settingHumidity].SetValue(strconv.FormatFloat(m.humidity, 'f', -1, 64))
}

func (m *Model) startSettings() (tea.Model, tea.Cmd) {
	m.settingsMode = true
	m.settingsError = ""
	m.setInputsFromState()
	return m, m.setSettingsIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.settingsMode = false
		m.settingsError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applySettings(); err != nil {
			m.settingsError = err.Error()
			return m, nil
		}
		m.settingsMode = false
		m.settingsError = ""
		m.renderTabContents()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setSettingsIndex(m.settingsIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setSettingsIndex(m.settingsIndex - 1)
	}
	var cmd tea.Cmd
	m.settingsInputs[m.settingsIndex], cmd = m.settingsInputs[m.settingsIndex].Update(msg)
	return m, cmd
}

func (m *Model) setSettingsIndex(idx int) tea.Cmd {
	count := len(m.settingsInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.settingsIndex = idx
	var cmd tea.Cmd
	for i := range m.settingsInputs {
		if i == m.settingsIndex {
			cmd = m.settingsInputs[i].Focus()
		} else {
			m.settingsInputs[i].Blur()
		}
	}
	return cmd
}

// applySettings validates the form and applies it. Empty fields keep the
// current value.
func (m *Model) applySettings() error {
	bins := m.bins
	if raw := strings.TrimSpace(m.settingsInputs[settingBins].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxBins {
			return fmt.Errorf("invalid bins (use integer 1-%d)", maxBins)
		}
		bins = parsed
	}

	rh := m.humidity
	if raw := strings.TrimSpace(m.settingsInputs[settingHumidity].Value()); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(parsed) || parsed < model.MinHumidity || parsed > model.MaxHumidity {
			return fmt.Errorf("invalid RH (use number %g-%g)", model.MinHumidity, model.MaxHumidity)
		}
		rh = parsed
	}

	m.bins = bins
	m.humidity = rh
	return nil
}

func (m *Model) renderSettingsForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.settingsInputs {
		lines = append(lines, input.View())
	}
	if m.settingsError != "" {
		lines = append(lines, errorStyle.Render(m.settingsError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSettingsHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}
