package sim

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/popsim/internal/ecology"
)

// Scenario is everything needed to build, and later rebuild, a run.
type Scenario struct {
	Name         string
	Resources    ecology.Quantities
	RefreshRates ecology.Quantities
	Microbes     []ecology.Definition
}

// Clone deep-copies the scenario so later edits never leak into a simulator.
func (s Scenario) Clone() Scenario {
	c := Scenario{
		Name:         s.Name,
		Resources:    s.Resources.Clone(),
		RefreshRates: s.RefreshRates.Clone(),
		Microbes:     make([]ecology.Definition, len(s.Microbes)),
	}
	for i, d := range s.Microbes {
		cd := d
		cd.Required = d.Required.Clone()
		cd.Produced = d.Produced.Clone()
		cd.Toxins = make(map[ecology.Resource]ecology.Toxin, len(d.Toxins))
		for r, t := range d.Toxins {
			cd.Toxins[r] = t
		}
		c.Microbes[i] = cd
	}
	return c
}

// Snapshot is the committed state after a tick.
type Snapshot struct {
	Tick        int                `json:"tick"`
	Resources   ecology.Quantities `json:"resources"`
	Populations map[string]float64 `json:"populations"`
	Capacities  map[string]float64 `json:"capacities"`
}

// TotalPopulation sums all populations.
func (s Snapshot) TotalPopulation() float64 {
	total := 0.0
	for _, p := range s.Populations {
		total += p
	}
	return total
}

// Observer is notified after every committed tick.
type Observer interface {
	OnTick(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnTick(s Snapshot) { f(s) }

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// Options tune a simulator without changing its results.
type Options struct {
	// Workers > 1 evaluates microbes concurrently within a tick.
	Workers int
	Logger  *slog.Logger
}

func DefaultOptions() Options {
	return Options{Workers: 1}
}

// Result collects the histories of a finished run.
type Result struct {
	Scenario    string               `json:"scenario"`
	Ticks       int                  `json:"ticks"`
	Exhausted   bool                 `json:"exhausted"`
	Resources   map[string][]float64 `json:"resources"`
	Populations map[string][]float64 `json:"populations"`
	Capacities  map[string][]float64 `json:"capacities"`
	Metrics     map[string]float64   `json:"metrics"`
	Final       Snapshot             `json:"final"`
}

// StepError wraps an error with the tick at which a run stopped.
type StepError struct {
	Tick    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
