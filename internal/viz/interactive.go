package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/popsim/internal/sim"
)

// Builder creates a fresh simulator for a named scenario.
type Builder func(name string) (*sim.Simulator, error)

const (
	stateMenu = iota
	stateSim
)

// App lets the user pick a scenario and then hands control to a Model.
type App struct {
	state     int
	cursor    int
	scenarios []string
	describe  map[string]string
	build     Builder
	err       error
	live      Model
}

// NewApp lists scenarios in the given order. describe may be nil.
func NewApp(scenarios []string, describe map[string]string, build Builder) App {
	return App{scenarios: scenarios, describe: describe, build: build}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.scenarios)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.scenarios) == 0 {
			return a, nil
		}
		s, err := a.build(a.scenarios[a.cursor])
		if err != nil {
			a.err = err
			return a, nil
		}
		a.err = nil
		a.live = NewModel(s)
		a.state = stateSim
		return a, a.live.Init()
	}
	return a, nil
}

func (a App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}

	h := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	key := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("POPSIM") + "\n    " + sub.Render("microbial population engine") + "\n    " + sub.Render("───────────────────────────") + "\n\n")
	for i, name := range a.scenarios {
		desc := a.describe[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render("▸"),
				lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-24s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", sub.Render(fmt.Sprintf("  %-24s", name)), sub.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" select  ") +
		key.Render("esc") + sub.Render(" back  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunApp starts the scenario picker.
func RunApp(a App) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}
