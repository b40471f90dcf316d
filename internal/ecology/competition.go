package ecology

import (
	"math"
	"sort"
)

// Peer is the tick-start view of a microbe used for competition.
type Peer struct {
	Name       string
	Population float64
	Required   Quantities
}

// Competitors maps other microbe names to the pressure they exert.
type Competitors map[string]float64

// Sum adds the pressures in name order.
func (c Competitors) Sum() float64 {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)

	sum := 0.0
	for _, n := range names {
		sum += c[n]
	}
	return sum
}

// Competition computes the pressure every peer exerts on self. For each peer
// sharing at least one required resource the pressure is the largest ratio of
// the peer's need to self's need, times the peer's population. Peers sharing
// nothing exert 0. A peer with self's name is skipped.
func Competition(self Peer, peers []Peer) Competitors {
	out := make(Competitors, len(peers))
	for _, o := range peers {
		if o.Name == self.Name {
			continue
		}

		ratio := math.Inf(-1)
		shared := false
		for r, mine := range self.Required {
			theirs, ok := o.Required[r]
			if !ok {
				continue
			}
			shared = true
			ratio = math.Max(ratio, theirs/mine)
		}

		if !shared {
			out[o.Name] = 0
			continue
		}
		out[o.Name] = ratio * o.Population
	}
	return out
}

// Evaluation is everything a microbe derives from one tick-start state.
type Evaluation struct {
	Competitors Competitors
	Capacity    Capacity
	MinCapacity float64
	Flux        Flux
	Growth      float64
}

// Evaluate computes the tick for m without touching its state. peers must be
// taken before any microbe is updated for the tick.
func (m *Microbe) Evaluate(snapshot Quantities, peers []Peer) Evaluation {
	competitors := Competition(m.Peer(), peers)
	capacity := m.CarryingCapacity(snapshot)
	return Evaluation{
		Competitors: competitors,
		Capacity:    capacity,
		MinCapacity: capacity.Min(m.required),
		Flux:        m.FluxFor(capacity),
		Growth:      m.GrowthFor(capacity, competitors),
	}
}

// Commit stores the derived state of eval, logs the binding capacity and
// applies the growth.
func (m *Microbe) Commit(eval Evaluation) {
	m.competitors = eval.Competitors
	m.capacity = eval.Capacity
	m.capacityHistory = append(m.capacityHistory, eval.MinCapacity)
	m.ApplyGrowth(eval.Growth)
}
