package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/form"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	button  = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
)

// DefaultMaxSteps caps interactive runs when the caller sets no limit; a run
// blocks the UI until it finishes.
const DefaultMaxSteps = 1_000_000

// Model is the bubbletea form: one text field per parameter, a Calculate
// button, an error line and the energy chart of the last successful run.
type Model struct {
	cfg    experiment.Config
	values map[string]string
	cursor int

	series *dynamo.Series
	params dynamo.Params
	errMsg string

	width  int
	height int
}

// NewApp pre-fills the form from cfg.Params. Every calculation runs under
// the policies in cfg with the parameters taken from the form.
func NewApp(cfg experiment.Config) *Model {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	return &Model{
		cfg:    cfg,
		values: form.Values(cfg.Params),
		width:  80,
		height: 24,
	}
}

func Run(cfg experiment.Config) error {
	_, err := tea.NewProgram(NewApp(cfg), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) buttonIndex() int { return len(form.Fields) }

func (m Model) onButton() bool { return m.cursor == m.buttonIndex() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "q":
		if m.onButton() {
			return m, tea.Quit
		}
	case "up", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "tab":
		if m.cursor < m.buttonIndex() {
			m.cursor++
		}
		return m, nil
	case "ctrl+r":
		m.calculate()
		return m, nil
	case "enter":
		if m.onButton() {
			m.calculate()
		} else {
			m.cursor++
		}
		return m, nil
	case "backspace":
		if !m.onButton() {
			key := form.Fields[m.cursor].Key
			if v := m.values[key]; len(v) > 0 {
				m.values[key] = v[:len(v)-1]
			}
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes && !m.onButton() {
		key := form.Fields[m.cursor].Key
		m.values[key] += string(msg.Runes)
	}
	return m, nil
}

// calculate parses the form and replaces the chart. Bad input leaves the
// previous chart in place and only sets the error line.
func (m *Model) calculate() {
	p, err := form.Parse(m.values)
	if err != nil {
		m.errMsg = form.UserMessage
		return
	}

	run := m.cfg
	run.Params = p
	exp := experiment.New(run)
	if err := exp.Setup(nil); err != nil {
		m.errMsg = "Error: " + err.Error()
		return
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		m.errMsg = "Error: " + err.Error()
		return
	}

	m.errMsg = ""
	m.params = p
	m.series = &result.Series
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("   " + cyan.Render("damped oscillator") + "  " + dim.Render("energy over time") + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 44)) + "\n\n")

	for i, f := range form.Fields {
		label := fmt.Sprintf("%-26s", f.Label)
		val := m.values[f.Key]
		if i == m.cursor {
			b.WriteString("   " + cyan.Render("▸ ") + white.Render(label) + magenta.Render(val+"▋") + "\n")
		} else {
			b.WriteString("     " + dim.Render(label) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	if m.onButton() {
		b.WriteString("   " + button.BorderForeground(lipgloss.Color("86")).Render(cyan.Render("Calculate")) + "\n")
	} else {
		b.WriteString("   " + button.BorderForeground(lipgloss.Color("238")).Render(dim.Render("Calculate")) + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("   " + red.Render(m.errMsg) + "\n")
	}

	if m.series != nil {
		b.WriteString("\n")
		b.WriteString(m.chartView())
	}

	b.WriteString("\n" + dim.Render("   ↑↓ select  type to edit  enter calculate  esc quit") + "\n")
	return b.String()
}

func (m Model) chartView() string {
	w := m.width - 16
	if w < 40 {
		w = 40
	}
	h := m.height - len(form.Fields) - 16
	if h < 8 {
		h = 8
	}

	c := analysis.Characterize(m.params)
	header := fmt.Sprintf("   %s  %s\n", dim.Render("regime"), white.Render(string(c.Regime)))

	graph, ok := EnergyGraph(*m.series, w, h)
	if !ok {
		return header + "   " + red.Render("no finite energy values to plot") + "\n"
	}

	var b strings.Builder
	b.WriteString(header)
	for _, line := range strings.Split(graph, "\n") {
		b.WriteString("   " + line + "\n")
	}
	return b.String()
}
