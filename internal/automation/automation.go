// Package automation drives a simulator from a script of timed interventions
// and runs perturbed ensembles of a scenario.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/sim"
)

var ErrInvalidScript = errors.New("automation: invalid script")

// Script is a list of interventions applied between ticks.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is applied once the simulator has committed At ticks.
type Step struct {
	At         int                `yaml:"at"`
	Inject     map[string]float64 `yaml:"inject,omitempty"`
	Refresh    map[string]float64 `yaml:"refresh,omitempty"`
	Population map[string]float64 `yaml:"population,omitempty"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks that steps are in tick order and do something.
func (s *Script) Validate() error {
	last := -1
	for i, st := range s.Steps {
		if st.At < 0 {
			return fmt.Errorf("%w: step %d at negative tick %d", ErrInvalidScript, i+1, st.At)
		}
		if st.At < last {
			return fmt.Errorf("%w: step %d at tick %d comes after tick %d", ErrInvalidScript, i+1, st.At, last)
		}
		if len(st.Inject)+len(st.Refresh)+len(st.Population) == 0 {
			return fmt.Errorf("%w: step %d is empty", ErrInvalidScript, i+1)
		}
		for field, m := range map[string]map[string]float64{
			"inject": st.Inject, "refresh": st.Refresh, "population": st.Population,
		} {
			for _, k := range keys(m) {
				if v := m[k]; math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: step %d %s.%s is %v", ErrInvalidScript, i+1, field, k, v)
				}
			}
		}
		last = st.At
	}
	return nil
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Apply performs one step's edits in a fixed order: refresh rates,
// injections, then populations.
func (st Step) Apply(s *sim.Simulator) error {
	for _, r := range keys(st.Refresh) {
		if err := s.SetRefreshRate(ecology.Resource(r), st.Refresh[r]); err != nil {
			return err
		}
	}
	for _, r := range keys(st.Inject) {
		if err := s.Inject(ecology.Resource(r), st.Inject[r]); err != nil {
			return err
		}
	}
	for _, name := range keys(st.Population) {
		if err := s.SetPopulation(name, st.Population[name]); err != nil {
			return err
		}
	}
	return nil
}

// Run advances s for ticks ticks, applying each step when its tick is reached.
// Steps scheduled at or past ticks still apply if the run gets there. An
// exhausted environment no longer ends the run while steps remain, since a
// later injection may revive it.
func (s *Script) Run(ctx context.Context, simulator *sim.Simulator, ticks int) (*sim.Result, error) {
	if ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
	}

	next := 0
	apply := func() error {
		for next < len(s.Steps) && s.Steps[next].At <= simulator.Tick() {
			if err := s.Steps[next].Apply(simulator); err != nil {
				return fmt.Errorf("step %d: %w", next+1, err)
			}
			next++
		}
		return nil
	}

	start := simulator.Tick()
	for simulator.Tick()-start < ticks {
		select {
		case <-ctx.Done():
			return simulator.Result(false), &sim.StepError{Tick: simulator.Tick(), Wrapped: ctx.Err()}
		default:
		}

		if err := apply(); err != nil {
			return nil, err
		}
		if simulator.Step() {
			continue
		}

		// Exhausted: jump to the next scheduled step, or stop.
		if next >= len(s.Steps) {
			return simulator.Result(true), nil
		}
		if err := s.Steps[next].Apply(simulator); err != nil {
			return nil, fmt.Errorf("step %d: %w", next+1, err)
		}
		next++
	}

	return simulator.Result(simulator.Exhausted()), nil
}

// MonteCarloConfig perturbs the initial populations of a scenario.
type MonteCarloConfig struct {
	Trials int
	// Perturbation is the relative half-width of the uniform noise applied
	// to every initial population.
	Perturbation float64
	Ticks        int
	Seed         int64
	Options      sim.Options
}

// Trial is the outcome of one perturbed run.
type Trial struct {
	ID          int                `json:"id"`
	Initial     map[string]float64 `json:"initial"`
	Final       map[string]float64 `json:"final"`
	Extinctions int                `json:"extinctions"`
	Biomass     float64            `json:"biomass"`
	Exhausted   bool               `json:"exhausted"`
}

// MonteCarlo runs cfg.Trials perturbed copies of base concurrently. A zero
// seed draws one from the clock.
func MonteCarlo(ctx context.Context, base sim.Scenario, cfg MonteCarloConfig) ([]Trial, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation > 1 {
		return nil, fmt.Errorf("perturbation must be in [0,1], got %v", cfg.Perturbation)
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = slog.New(slog.DiscardHandler)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	scenarios := make([]sim.Scenario, cfg.Trials)
	initial := make([]map[string]float64, cfg.Trials)
	for i := range scenarios {
		sc := base.Clone()
		initial[i] = make(map[string]float64, len(sc.Microbes))
		for j := range sc.Microbes {
			p := sc.Microbes[j].Population * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
			sc.Microbes[j].Population = p
			initial[i][sc.Microbes[j].Name] = p
		}
		scenarios[i] = sc
	}

	newMetrics := func() []sim.Metric {
		return []sim.Metric{metrics.NewBiomass(), metrics.NewExtinctions()}
	}
	results, err := sim.NewEnsemble(scenarios, cfg.Options, newMetrics).Run(ctx, cfg.Ticks)
	if err != nil {
		return nil, err
	}

	trials := make([]Trial, len(results))
	for i, res := range results {
		trials[i] = Trial{
			ID:          i,
			Initial:     initial[i],
			Final:       res.Final.Populations,
			Extinctions: int(res.Metrics["extinctions"]),
			Biomass:     res.Metrics["biomass"],
			Exhausted:   res.Exhausted,
		}
	}

	cfg.Options.Logger.Info("monte carlo finished", "trials", len(trials), "seed", seed)
	return trials, nil
}

// Survival counts trials that ended with every microbe alive.
func Survival(trials []Trial) (survived, collapsed int) {
	for _, t := range trials {
		if t.Extinctions == 0 {
			survived++
		} else {
			collapsed++
		}
	}
	return
}
