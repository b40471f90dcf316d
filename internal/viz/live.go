package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

const (
	chartWidth         = 60
	chartHeight        = 14
	chartWindow        = 200
	defaultFastForward = 10
	frameRate          = 10
)

const (
	statusRunning   = "RUNNING"
	statusPaused    = "PAUSED"
	statusExhausted = "EXHAUSTED"
)

// View selects which histories the model charts.
type View int

const (
	ViewPopulations View = iota
	ViewCapacity
	ViewResources
	ViewPhase
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewPopulations:
		return "populations"
	case ViewCapacity:
		return "carrying capacity"
	case ViewResources:
		return "resources"
	case ViewPhase:
		return "phase"
	}
	return "unknown"
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps one simulator under keyboard control. The simulator is owned by
// the model while the program runs.
type Model struct {
	sim         *sim.Simulator
	view        View
	selected    int
	running     bool
	exhausted   bool
	fastForward int
	showHelp    bool
	message     string
	width       int
}

func NewModel(s *sim.Simulator) Model {
	return Model{sim: s, fastForward: defaultFastForward, width: 120}
}

// WithFastForward sets the number of ticks the f key advances.
func (m Model) WithFastForward(n int) Model {
	if n > 0 {
		m.fastForward = n
	}
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "n":
			m.step(1)
		case "f":
			m.step(m.fastForward)
		case "p":
			m.running = !m.running
		case "r":
			m.sim.Reset()
			m.exhausted, m.running = false, false
			m.message = "reset to initial scenario"
		case "tab":
			m.view = (m.view + 1) % viewCount
			m.selected = 0
		case "left", "h":
			m.moveSelection(-1)
		case "right", "l":
			m.moveSelection(1)
		case "+", "=":
			m.edit(1)
		case "-", "_":
			m.edit(-1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case TickMsg:
		if m.running {
			m.step(1)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step(n int) {
	taken := m.sim.StepN(n)
	if taken < n {
		m.exhausted = true
		m.running = false
		m.message = fmt.Sprintf("environment exhausted at tick %d", m.sim.Tick())
		return
	}
	m.exhausted = false
	m.message = ""
}

func (m *Model) seriesNames() []string {
	if m.view == ViewResources {
		rs := m.sim.Resources()
		names := make([]string, len(rs))
		for i, r := range rs {
			names[i] = string(r)
		}
		return names
	}
	return m.sim.Microbes()
}

func (m *Model) moveSelection(dir int) {
	n := len(m.seriesNames())
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

// edit nudges the selected resource or population by one unit.
func (m *Model) edit(dir int) {
	names := m.seriesNames()
	if len(names) == 0 {
		return
	}
	name := names[m.selected%len(names)]
	delta := float64(dir)

	if m.view == ViewResources {
		if err := m.sim.Inject(ecology.Resource(name), delta); err != nil {
			m.message = err.Error()
			return
		}
		m.message = fmt.Sprintf("%s %+.0f", name, delta)
	} else {
		mic, err := m.sim.Microbe(name)
		if err != nil {
			return
		}
		if err := m.sim.SetPopulation(name, mic.Population()+delta); err != nil {
			m.message = err.Error()
			return
		}
		m.message = fmt.Sprintf("%s population %+.0f", name, delta)
	}
	m.exhausted = false
}

// Series returns the names and histories charted by the current view.
func (m Model) Series() ([]string, [][]float64) {
	names := m.seriesNames()
	data := make([][]float64, len(names))
	for i, name := range names {
		switch m.view {
		case ViewResources:
			data[i] = m.sim.ResourceHistory(ecology.Resource(name))
		case ViewCapacity:
			data[i], _ = m.sim.CapacityHistory(name)
		default:
			data[i], _ = m.sim.LevelHistory(name)
		}
	}
	return names, data
}

func (m Model) status() string {
	switch {
	case m.exhausted:
		return statusExhausted
	case m.running:
		return statusRunning
	}
	return statusPaused
}

func (m Model) View() string {
	names, data := m.Series()

	var chart string
	if m.view == ViewPhase {
		if len(data) >= 2 {
			chart = fmt.Sprintf("%s (x) vs %s (y)\n\n", names[0], names[1]) +
				RenderPhase(data[0], data[1], chartWidth/2, chartHeight/2)
		} else {
			chart = "phase view needs two microbes"
		}
	} else {
		chart = RenderChart(names, data, ChartOptions{
			Width: chartWidth, Height: chartHeight, Window: chartWindow, Caption: m.view.String(),
		})
	}
	if chart == "" {
		chart = "no ticks yet, press space to step"
	}

	var s strings.Builder
	s.WriteString(titleStyle().Render(strings.ToUpper(m.sim.Scenario().Name)) + "\n")
	s.WriteString(statusStyle(m.status()).Render(m.status()) + "\n\n")
	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d", m.sim.Tick())) + "\n")
	s.WriteString(labelStyle.Render("View") + valueStyle.Render(m.view.String()) + "\n")
	s.WriteString(labelStyle.Render("Fast forward") + valueStyle.Render(fmt.Sprintf("%d ticks", m.fastForward)) + "\n\n")

	for i, name := range names {
		latest := 0.0
		if len(data[i]) > 0 {
			latest = data[i][len(data[i])-1]
		}
		line := fmt.Sprintf("%-12s %10.3f ", name, latest)
		if i == m.selected%max(len(names), 1) {
			s.WriteString(selectedStyle.Render("> "+line) + SparklineChart(data[i], 16) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + SparklineChart(data[i], 16) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("\n" + Separator(36) + "\nSP:Step F:Fast P:Play R:Reset\nTAB:View ←→:Select +/-:Edit Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, chartStyle.Render(chart), panelStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + main
	}
	return main
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space/N  - Step one tick            ║
║  F        - Fast forward             ║
║  P        - Toggle autoplay          ║
║  R        - Reset scenario           ║
║  Tab      - Cycle chart view         ║
║  ←/→      - Select series            ║
║  +/-      - Edit selected series     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts an interactive program around m.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
