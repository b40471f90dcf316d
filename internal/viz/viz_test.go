package viz

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

func newSim(t *testing.T) *sim.Simulator {
	t.Helper()
	sc := sim.Scenario{
		Name:         "symbiosis",
		Resources:    ecology.Quantities{"Oxygen": 10, "Glucose": 10},
		RefreshRates: ecology.Quantities{"Oxygen": 0, "Glucose": 0},
		Microbes: []ecology.Definition{
			{
				Name: "OxygenEater", Population: 1, GrowthRate: 1.2,
				Required: ecology.Quantities{"Oxygen": 1},
				Produced: ecology.Quantities{"Glucose": 1},
			},
			{
				Name: "GlucoseEater", Population: 1, GrowthRate: 1.2,
				Required: ecology.Quantities{"Glucose": 1},
				Produced: ecology.Quantities{"Oxygen": 1},
			},
		},
	}
	s, err := sim.New(sc, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestModel_StepAndFastForward(t *testing.T) {
	s := newSim(t)
	m := NewModel(s).WithFastForward(5)

	m = press(m, " ")
	if s.Tick() != 1 {
		t.Fatalf("expected tick 1 after space, got %d", s.Tick())
	}
	m = press(m, "n", "f")
	if s.Tick() != 7 {
		t.Errorf("expected tick 7 after n and f, got %d", s.Tick())
	}

	press(m, "r")
	if s.Tick() != 0 {
		t.Errorf("expected tick 0 after reset, got %d", s.Tick())
	}
}

func TestModel_Autoplay(t *testing.T) {
	s := newSim(t)
	m := NewModel(s)

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if s.Tick() != 0 {
		t.Errorf("paused model must not step, got tick %d", s.Tick())
	}

	m = press(m, "p")
	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if s.Tick() != 1 {
		t.Errorf("expected tick 1 while playing, got %d", s.Tick())
	}
	if cmd == nil {
		t.Error("expected the next frame to be scheduled")
	}
	if m.status() != statusRunning {
		t.Errorf("expected %s, got %s", statusRunning, m.status())
	}
}

func TestModel_Exhaustion(t *testing.T) {
	sc := sim.Scenario{
		Name:         "starve",
		Resources:    ecology.Quantities{"Oxygen": 2},
		RefreshRates: ecology.Quantities{"Oxygen": 0},
		Microbes: []ecology.Definition{{
			Name: "A", Population: 2, GrowthRate: 1.2,
			Required: ecology.Quantities{"Oxygen": 1},
		}},
	}
	s, err := sim.New(sc, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	m := press(NewModel(s), "f")
	if m.status() != statusExhausted {
		t.Errorf("expected %s, got %s", statusExhausted, m.status())
	}
	if !strings.Contains(m.View(), statusExhausted) {
		t.Error("view should show the exhausted status")
	}

	m = press(m, "tab", "tab", "+")
	if s.Resources()[0] != "Oxygen" || s.Snapshot().Resources["Oxygen"] != 1 {
		t.Errorf("expected one unit of oxygen injected, got %v", s.Snapshot().Resources)
	}
	if m.status() == statusExhausted {
		t.Error("an edit should clear the exhausted status")
	}
}

func TestModel_ViewsAndSelection(t *testing.T) {
	s := newSim(t)
	m := press(NewModel(s), " ", " ")

	names, data := m.Series()
	if len(names) != 2 || len(data[0]) != 2 {
		t.Fatalf("unexpected population series %v", names)
	}

	m = press(m, "tab")
	if m.view != ViewCapacity {
		t.Errorf("expected capacity view, got %s", m.view)
	}
	m = press(m, "tab")
	names, _ = m.Series()
	if names[0] != "Glucose" || names[1] != "Oxygen" {
		t.Errorf("expected sorted resources, got %v", names)
	}

	m = press(m, "left")
	if m.selected != 1 {
		t.Errorf("expected selection to wrap to 1, got %d", m.selected)
	}

	m = press(m, "tab")
	if !strings.Contains(m.View(), "OxygenEater (x) vs GlucoseEater (y)") {
		t.Error("phase view should name its axes")
	}
	m = press(m, "tab")
	if m.view != ViewPopulations {
		t.Errorf("expected views to cycle back, got %s", m.view)
	}
}

func TestModel_EditPopulation(t *testing.T) {
	s := newSim(t)
	m := press(NewModel(s), "right", "+", "+")

	mic, _ := s.Microbe("GlucoseEater")
	if mic.Population() != 3 {
		t.Errorf("expected population 3, got %f", mic.Population())
	}
	press(m, "-", "-", "-", "-")
	if mic.Population() != 0 {
		t.Errorf("expected population floored at 0, got %f", mic.Population())
	}
}

func TestModel_Quit(t *testing.T) {
	_, cmd := NewModel(newSim(t)).Update(key("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestApp_SelectAndBack(t *testing.T) {
	built := ""
	app := NewApp([]string{"one", "two"}, nil, func(name string) (*sim.Simulator, error) {
		built = name
		return newSim(t), nil
	})

	next, _ := app.Update(key("j"))
	next, _ = next.Update(key("enter"))
	a := next.(App)
	if built != "two" || a.state != stateSim {
		t.Fatalf("expected scenario two to start, built %q state %d", built, a.state)
	}

	next, _ = a.Update(key("esc"))
	if next.(App).state != stateMenu {
		t.Error("esc should return to the menu")
	}
}

func TestApp_BuildError(t *testing.T) {
	app := NewApp([]string{"bad"}, nil, func(string) (*sim.Simulator, error) {
		return nil, errors.New("boom")
	})
	next, _ := app.Update(key("enter"))
	a := next.(App)
	if a.state != stateMenu {
		t.Error("a failed build must stay on the menu")
	}
	if !strings.Contains(a.View(), "boom") {
		t.Error("menu should show the build error")
	}
}

func TestRenderChart(t *testing.T) {
	if RenderChart(nil, nil, ChartOptions{}) != "" {
		t.Error("expected empty chart for no data")
	}
	if RenderChart([]string{"a"}, [][]float64{{}}, ChartOptions{}) != "" {
		t.Error("expected empty chart for empty series")
	}

	out := RenderChart([]string{"a", "b"}, [][]float64{{1, 2, 3}, {3, 2, 1}}, ChartOptions{Width: 20, Height: 5, Caption: "test"})
	if !strings.Contains(out, "test") {
		t.Errorf("expected caption in chart:\n%s", out)
	}
}

func TestRenderPhase(t *testing.T) {
	out := RenderPhase([]float64{0, 1}, []float64{0, 1}, 4, 2)
	if lines := strings.Split(out, "\n"); len(lines) != 2 {
		t.Errorf("expected 2 rows, got %d", len(lines))
	}
	if RenderPhase(nil, nil, 4, 2) != "" {
		t.Error("expected empty drawing for no points")
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(3, 2)
	c.DrawLine(0, 0, 5, 7)
	if !c.Lit(0, 0) || !c.Lit(5, 7) {
		t.Error("line endpoints should be lit")
	}
	if c.Lit(5, 0) {
		t.Error("dot off the line should be dark")
	}
	c.Set(-1, 100)
	c.Clear()
	if c.Lit(0, 0) {
		t.Error("clear should darken every dot")
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 4); got != "────" {
		t.Errorf("expected flat rule, got %q", got)
	}
	out := SparklineChart([]float64{1, 2, 3, 4, 5, 6}, 3)
	if strings.Count(out, "█") != 1 {
		t.Errorf("expected one full bar for the maximum, got %q", out)
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)

	SetTheme("agar")
	if CurrentTheme.Name != "agar" {
		t.Errorf("expected agar, got %s", CurrentTheme.Name)
	}
	NextTheme()
	if CurrentTheme.Name != "minimal" {
		t.Errorf("expected minimal, got %s", CurrentTheme.Name)
	}
	if GetTheme("nope").Name != "lab" {
		t.Error("unknown theme should fall back to lab")
	}
	if got := seriesColors(3); len(got) != 3 {
		t.Errorf("expected 3 colors, got %d", len(got))
	}
}

func TestWatcher(t *testing.T) {
	var buf bytes.Buffer
	w := NewWatcher(&buf, 1000)
	s := newSim(t)
	s.AddObserver(w)

	w.Start()
	s.StepN(5)
	w.Flush(s.Snapshot())
	w.Stop()

	out := buf.String()
	if !strings.Contains(out, "tick 5") {
		t.Errorf("expected final tick in output, got %q", out)
	}
	if !strings.HasSuffix(out, showCursor) {
		t.Error("expected cursor to be restored")
	}
}
