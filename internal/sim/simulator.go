package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/popsim/internal/ecology"
)

// Simulator advances one scenario tick by tick. It owns the environment and
// the fixed set of microbes; nothing else writes to them.
type Simulator struct {
	scenario  Scenario
	opts      Options
	logger    *slog.Logger
	env       *ecology.Environment
	microbes  []*ecology.Microbe
	index     map[string]int
	tick      int
	observers []Observer
	metrics   []Metric
}

// New validates the scenario and builds the simulator. Configuration errors
// are the only failures; every later call is total.
func New(sc Scenario, opts Options) (*Simulator, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Simulator{
		scenario: sc.Clone(),
		opts:     opts,
		logger:   opts.Logger.With("scenario", sc.Name),
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) build() error {
	env, err := ecology.NewEnvironment(s.scenario.Resources, s.scenario.RefreshRates)
	if err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	microbes := make([]*ecology.Microbe, 0, len(s.scenario.Microbes))
	index := make(map[string]int, len(s.scenario.Microbes))
	for _, def := range s.scenario.Microbes {
		if _, dup := index[def.Name]; dup {
			return &ecology.ConfigError{Field: "microbes." + def.Name, Wrapped: ecology.ErrDuplicateMicrobe}
		}
		for r := range def.Required {
			if _, ok := s.scenario.Resources[r]; !ok {
				return &ecology.ConfigError{
					Field:   fmt.Sprintf("microbes.%s.requires.%s", def.Name, r),
					Wrapped: ecology.ErrUnknownResource,
				}
			}
		}
		m, err := ecology.NewMicrobe(def)
		if err != nil {
			return err
		}
		index[def.Name] = len(microbes)
		microbes = append(microbes, m)
	}

	s.env = env
	s.microbes = microbes
	s.index = index
	s.tick = 0
	return nil
}

// AddObserver registers o to receive a snapshot after every committed tick.
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddMetric registers m; it observes every tick and is reset by Run and Reset.
func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Step advances exactly one tick. It returns false without changing anything
// when the environment is exhausted.
func (s *Simulator) Step() bool {
	if s.env.Exhausted() {
		s.logger.Debug("environment exhausted", "tick", s.tick)
		return false
	}

	// Every read for this tick comes from tick-start state.
	snapshot := s.env.Snapshot()
	peers := make([]ecology.Peer, len(s.microbes))
	for i, m := range s.microbes {
		peers[i] = m.Peer()
	}

	evals := s.evaluate(snapshot, peers)

	total := ecology.Flux{}
	for i, m := range s.microbes {
		total.Add(evals[i].Flux)
		m.Commit(evals[i])
	}

	s.env.ApplyFlux(total)
	s.env.Advance()
	s.tick++

	snap := s.Snapshot()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnTick(snap)
	}

	s.logger.Debug("tick", "tick", s.tick, "population", snap.TotalPopulation())
	return true
}

func (s *Simulator) evaluate(snapshot ecology.Quantities, peers []ecology.Peer) []ecology.Evaluation {
	evals := make([]ecology.Evaluation, len(s.microbes))
	if s.opts.Workers <= 1 || len(s.microbes) < 2 {
		for i, m := range s.microbes {
			evals[i] = m.Evaluate(snapshot, peers)
		}
		return evals
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				evals[i] = s.microbes[i].Evaluate(snapshot, peers)
			}
		}()
	}
	for i := range s.microbes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return evals
}

// StepN calls Step up to n times and stops at the first no-op. It returns the
// number of ticks actually taken.
func (s *Simulator) StepN(n int) int {
	taken := 0
	for i := 0; i < n; i++ {
		if !s.Step() {
			break
		}
		taken++
	}
	return taken
}

// Run advances up to ticks ticks and collects the histories. Metrics are
// reset first. Exhaustion ends the run early without error.
func (s *Simulator) Run(ctx context.Context, ticks int) (*Result, error) {
	if ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	exhausted := false
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return s.Result(false), &StepError{Tick: s.tick, Wrapped: ctx.Err()}
		default:
		}

		if !s.Step() {
			exhausted = true
			break
		}
	}

	s.logger.Info("run finished", "ticks", s.tick, "exhausted", exhausted)
	return s.Result(exhausted), nil
}

// Reset restores the environment and every microbe to their construction
// values. Observers and metrics stay attached; metrics are reset.
func (s *Simulator) Reset() {
	if err := s.build(); err != nil {
		panic(fmt.Sprintf("sim: rebuilding a validated scenario failed: %v", err))
	}
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Exhausted reports whether the next Step would be a no-op.
func (s *Simulator) Exhausted() bool { return s.env.Exhausted() }

// Tick is the number of ticks committed since construction or the last reset.
func (s *Simulator) Tick() int { return s.tick }

// Scenario returns a copy of the scenario the simulator was built from.
func (s *Simulator) Scenario() Scenario { return s.scenario.Clone() }

// Microbes returns the microbe names in iteration order.
func (s *Simulator) Microbes() []string {
	names := make([]string, len(s.microbes))
	for i, m := range s.microbes {
		names[i] = m.Name()
	}
	return names
}

// Resources returns the tracked resource ids in sorted order.
func (s *Simulator) Resources() []ecology.Resource { return s.env.Resources() }

// ResourceHistory returns the pre-refresh quantity of r for every tick.
func (s *Simulator) ResourceHistory(r ecology.Resource) []float64 {
	return s.env.History(r)
}

// PopulationHistory returns the growth deltas applied to a microbe.
func (s *Simulator) PopulationHistory(name string) ([]float64, error) {
	m, err := s.microbe(name)
	if err != nil {
		return nil, err
	}
	return m.PopulationHistory(), nil
}

// LevelHistory returns the population of a microbe after every tick.
func (s *Simulator) LevelHistory(name string) ([]float64, error) {
	m, err := s.microbe(name)
	if err != nil {
		return nil, err
	}
	return m.LevelHistory(), nil
}

// CapacityHistory returns the binding carrying capacity of a microbe for
// every tick.
func (s *Simulator) CapacityHistory(name string) ([]float64, error) {
	m, err := s.microbe(name)
	if err != nil {
		return nil, err
	}
	return m.CapacityHistory(), nil
}

// Microbe returns a microbe for read access.
func (s *Simulator) Microbe(name string) (*ecology.Microbe, error) {
	return s.microbe(name)
}

func (s *Simulator) microbe(name string) (*ecology.Microbe, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ecology.ErrUnknownMicrobe, name)
	}
	return s.microbes[i], nil
}

// Snapshot returns the current committed state.
func (s *Simulator) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:        s.tick,
		Resources:   s.env.Snapshot(),
		Populations: make(map[string]float64, len(s.microbes)),
		Capacities:  make(map[string]float64, len(s.microbes)),
	}
	for _, m := range s.microbes {
		snap.Populations[m.Name()] = m.Population()
		if h := m.CapacityHistory(); len(h) > 0 {
			snap.Capacities[m.Name()] = h[len(h)-1]
		}
	}
	return snap
}

// Result collects the histories accumulated so far.
func (s *Simulator) Result(exhausted bool) *Result {
	res := &Result{
		Scenario:    s.scenario.Name,
		Ticks:       s.tick,
		Exhausted:   exhausted,
		Resources:   make(map[string][]float64),
		Populations: make(map[string][]float64, len(s.microbes)),
		Capacities:  make(map[string][]float64, len(s.microbes)),
		Metrics:     make(map[string]float64, len(s.metrics)),
		Final:       s.Snapshot(),
	}
	for r, h := range s.env.Histories() {
		res.Resources[string(r)] = h
	}
	for _, m := range s.microbes {
		res.Populations[m.Name()] = m.LevelHistory()
		res.Capacities[m.Name()] = m.CapacityHistory()
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

// Inject adds an external amount of a resource between ticks. NaN and
// infinite amounts fail with ecology.ErrNonFinite and change nothing.
func (s *Simulator) Inject(r ecology.Resource, amount float64) error {
	if err := s.env.Inject(r, amount); err != nil {
		return fmt.Errorf("inject %s: %w", r, err)
	}
	s.logger.Info("resource injected", "resource", r, "amount", amount, "tick", s.tick)
	return nil
}

// SetRefreshRate changes or adds a resource refresh rate between ticks.
func (s *Simulator) SetRefreshRate(r ecology.Resource, rate float64) error {
	if err := s.env.SetRefreshRate(r, rate); err != nil {
		return fmt.Errorf("refresh %s: %w", r, err)
	}
	s.logger.Debug("refresh rate set", "resource", r, "rate", rate, "tick", s.tick)
	return nil
}

// SetPopulation overwrites a microbe's population between ticks.
func (s *Simulator) SetPopulation(name string, population float64) error {
	m, err := s.microbe(name)
	if err != nil {
		return err
	}
	if err := m.SetPopulation(population); err != nil {
		return fmt.Errorf("population %s: %w", name, err)
	}
	s.logger.Info("population set", "microbe", name, "population", m.Population(), "tick", s.tick)
	return nil
}
