package ecology

import (
	"fmt"
	"math"
	"sort"
)

// Definition holds the construction values of a microbe.
type Definition struct {
	Name       string
	Population float64
	GrowthRate float64
	Required   Quantities
	Produced   Quantities
	Toxins     map[Resource]Toxin
}

// Microbe is one species population. Its coefficient maps are fixed at
// construction; population and the per-tick derived state change every tick.
type Microbe struct {
	name       string
	population float64
	growthRate float64
	required   Quantities
	produced   Quantities
	toxins     map[Resource]Toxin

	competitors Competitors
	capacity    Capacity

	populationHistory []float64
	levelHistory      []float64
	capacityHistory   []float64
}

// NewMicrobe validates def and builds a microbe from a deep copy of it.
func NewMicrobe(def Definition) (*Microbe, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	toxins := make(map[Resource]Toxin, len(def.Toxins))
	for r, t := range def.Toxins {
		toxins[r] = t
	}
	produced := Quantities{}
	if def.Produced != nil {
		produced = def.Produced.Clone()
	}

	return &Microbe{
		name:        def.Name,
		population:  def.Population,
		growthRate:  def.GrowthRate,
		required:    def.Required.Clone(),
		produced:    produced,
		toxins:      toxins,
		competitors: Competitors{},
		capacity:    Capacity{},
	}, nil
}

// Validate checks the definition against the model's bounds.
func (d Definition) Validate() error {
	field := func(f string) string { return fmt.Sprintf("microbes.%s.%s", d.Name, f) }

	if d.Name == "" {
		return configErr("microbes.name", fmt.Errorf("%w: empty name", ErrInvalidMicrobe))
	}
	if d.Population < 0 || math.IsNaN(d.Population) || math.IsInf(d.Population, 0) {
		return configErr(field("population"), fmt.Errorf("%w: population %v", ErrInvalidMicrobe, d.Population))
	}
	if d.GrowthRate <= 0 || math.IsNaN(d.GrowthRate) || math.IsInf(d.GrowthRate, 0) {
		return configErr(field("growth_rate"), fmt.Errorf("%w: growth rate %v", ErrInvalidMicrobe, d.GrowthRate))
	}
	if len(d.Required) == 0 {
		return configErr(field("requires"), fmt.Errorf("%w: no required resources", ErrInvalidMicrobe))
	}
	for _, r := range d.Required.Keys() {
		if v := d.Required[r]; v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return configErr(field("requires."+string(r)), fmt.Errorf("%w: coefficient %v", ErrInvalidMicrobe, v))
		}
	}
	for _, r := range d.Produced.Keys() {
		if v := d.Produced[r]; v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return configErr(field("produces."+string(r)), fmt.Errorf("%w: coefficient %v", ErrInvalidMicrobe, v))
		}
	}
	for r, t := range d.Toxins {
		if err := t.Validate(); err != nil {
			return configErr(field("toxins."+string(r)), err)
		}
	}
	return nil
}

// Name is the unique species name.
func (m *Microbe) Name() string { return m.name }

// Population is the current population, never negative.
func (m *Microbe) Population() float64 { return m.population }

// GrowthRate is the intrinsic per-tick growth rate.
func (m *Microbe) GrowthRate() float64 { return m.growthRate }

// Required returns a copy of the units consumed per unit of population.
func (m *Microbe) Required() Quantities { return m.required.Clone() }

// Produced returns a copy of the units produced per unit of population.
func (m *Microbe) Produced() Quantities { return m.produced.Clone() }

// Competitors returns the pressures computed on the last tick.
func (m *Microbe) Competitors() Competitors {
	c := make(Competitors, len(m.competitors))
	for k, v := range m.competitors {
		c[k] = v
	}
	return c
}

// Capacity returns the carrying capacities computed on the last tick.
func (m *Microbe) Capacity() Capacity {
	c := make(Capacity, len(m.capacity))
	for k, v := range m.capacity {
		c[k] = v
	}
	return c
}

// Toxins returns the toxin profiles keyed by resource.
func (m *Microbe) Toxins() map[Resource]Toxin {
	t := make(map[Resource]Toxin, len(m.toxins))
	for k, v := range m.toxins {
		t[k] = v
	}
	return t
}

// Peer is the read-only view other microbes get of this one when computing
// competition.
func (m *Microbe) Peer() Peer {
	return Peer{Name: m.name, Population: m.population, Required: m.required}
}

// ToxicityMultiplier returns the worst penalty over all toxins held by m for
// the given pool snapshot. An empty pool suppresses capacity entirely.
func (m *Microbe) ToxicityMultiplier(snapshot Quantities) float64 {
	total := snapshot.Total()
	if total == 0 {
		return 0
	}

	keys := make([]Resource, 0, len(m.toxins))
	for r := range m.toxins {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	minMultiplier := 1.0
	for _, r := range keys {
		t := m.toxins[r]
		p := t.Penalty(t.Density(snapshot[r], total))
		if p == 0 {
			return 0
		}
		minMultiplier = math.Min(minMultiplier, p)
	}
	return minMultiplier
}

// CarryingCapacity computes the capacity allowed by every resource in the
// snapshot and every resource m requires.
func (m *Microbe) CarryingCapacity(snapshot Quantities) Capacity {
	mult := m.ToxicityMultiplier(snapshot)

	capacity := make(Capacity, len(snapshot)+len(m.required))
	set := func(r Resource) {
		need, ok := m.required[r]
		switch {
		case !ok || need == 0:
			capacity[r] = math.Inf(1)
		case m.population == 0:
			capacity[r] = 0
		default:
			capacity[r] = snapshot[r] / need * mult
		}
	}
	for r := range snapshot {
		set(r)
	}
	for r := range m.required {
		set(r)
	}
	return capacity
}

// GrowthFor returns the population delta for one tick given a capacity and
// the competitive pressure of the other species. The delta never takes the
// population below zero.
func (m *Microbe) GrowthFor(capacity Capacity, competitors Competitors) float64 {
	minK := capacity.Min(m.required)

	if minK == 0 {
		if m.population <= 2 {
			return -m.population
		}
		return m.growthRate * -0.33 * m.population
	}

	growth := m.growthRate * m.population * (1 - competitors.Sum()/minK)
	return math.Max(growth, -m.population)
}

// FluxFor returns the resource change caused by m given a capacity.
func (m *Microbe) FluxFor(capacity Capacity) Flux {
	limiting := math.Min(m.population, capacity.Min(m.required))

	flux := make(Flux, len(m.required)+len(m.produced))
	for r, need := range m.required {
		flux[r] -= need * limiting
	}
	for r, made := range m.produced {
		flux[r] += made * limiting
	}
	return flux
}

// UpdateCompetitors recomputes and stores the competitive pressure of peers.
func (m *Microbe) UpdateCompetitors(peers []Peer) {
	m.competitors = Competition(m.Peer(), peers)
}

// ComputeCarryingCapacity stores the capacity for snapshot and logs the
// binding capacity.
func (m *Microbe) ComputeCarryingCapacity(snapshot Quantities) {
	m.capacity = m.CarryingCapacity(snapshot)
	m.capacityHistory = append(m.capacityHistory, m.capacity.Min(m.required))
}

// Growth returns the delta for the stored capacity and competitors.
func (m *Microbe) Growth() float64 {
	return m.GrowthFor(m.capacity, m.competitors)
}

// Flux returns the resource change for the stored capacity.
func (m *Microbe) Flux() Flux {
	return m.FluxFor(m.capacity)
}

// ApplyGrowth logs delta and applies it, flooring the population at zero.
func (m *Microbe) ApplyGrowth(delta float64) {
	m.populationHistory = append(m.populationHistory, delta)
	m.population = math.Max(m.population+delta, 0)
	m.levelHistory = append(m.levelHistory, m.population)
}

// SetPopulation overwrites the population between ticks. Negative values are
// clamped to zero; NaN and infinities are rejected.
func (m *Microbe) SetPopulation(p float64) error {
	if err := finite(p); err != nil {
		return err
	}
	m.population = math.Max(p, 0)
	return nil
}

// PopulationHistory returns the growth delta applied on every tick.
func (m *Microbe) PopulationHistory() []float64 {
	return append([]float64(nil), m.populationHistory...)
}

// LevelHistory returns the population after every tick.
func (m *Microbe) LevelHistory() []float64 {
	return append([]float64(nil), m.levelHistory...)
}

// CapacityHistory returns the binding carrying capacity of every tick.
func (m *Microbe) CapacityHistory() []float64 {
	return append([]float64(nil), m.capacityHistory...)
}
