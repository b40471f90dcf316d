package ecology

import (
	"fmt"
	"math"
)

// Environment is the shared resource ledger. It tracks current quantities,
// a refresh rate per resource and one history entry per tick.
type Environment struct {
	quantities Quantities
	refresh    Quantities
	history    map[Resource][]float64
	ticks      int
}

// NewEnvironment builds a pool from initial quantities and refresh rates.
// Every tracked resource must have a refresh rate; rates for resources not yet
// present are kept and apply once the resource appears.
func NewEnvironment(quantities, refresh Quantities) (*Environment, error) {
	for _, r := range quantities.Keys() {
		v := quantities[r]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, configErr(fmt.Sprintf("resources.%s", r), ErrNegativeQuantity)
		}
		rate, ok := refresh[r]
		if !ok {
			return nil, configErr(fmt.Sprintf("resources.%s", r), ErrMissingRefreshRate)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return nil, configErr(fmt.Sprintf("resources.%s.refresh", r), ErrMissingRefreshRate)
		}
	}

	return &Environment{
		quantities: quantities.Clone(),
		refresh:    refresh.Clone(),
		history:    make(map[Resource][]float64),
	}, nil
}

// ApplyFlux adds delta to the pool. Unknown resources are adopted at 0 first.
func (e *Environment) ApplyFlux(delta Flux) {
	for _, r := range Quantities(delta).Keys() {
		e.quantities[r] += delta[r]
	}
}

// Advance logs the pre-refresh quantity of every resource, applies refresh
// rates and clamps at zero. It must run exactly once per tick, after ApplyFlux.
func (e *Environment) Advance() {
	for _, r := range e.quantities.Keys() {
		h := e.history[r]
		for len(h) < e.ticks {
			h = append(h, 0)
		}
		e.history[r] = append(h, e.quantities[r])

		next := e.quantities[r] + e.refresh[r]
		if next < 0 {
			next = 0
		}
		e.quantities[r] = next
	}
	e.ticks++
}

// Inject adds an external amount of a resource outside the tick cycle.
// The result is clamped at zero. Non-finite amounts are rejected.
func (e *Environment) Inject(r Resource, amount float64) error {
	if err := finite(amount); err != nil {
		return err
	}
	e.quantities[r] = math.Max(e.quantities[r]+amount, 0)
	return nil
}

// SetRefreshRate sets the per-tick refresh of r. A resource not yet tracked
// starts at quantity 0. Non-finite rates are rejected.
func (e *Environment) SetRefreshRate(r Resource, rate float64) error {
	if err := finite(rate); err != nil {
		return err
	}
	if _, ok := e.quantities[r]; !ok {
		e.quantities[r] = 0
	}
	e.refresh[r] = rate
	return nil
}

// Exhausted reports whether the pool tracks nothing or every quantity is <= 0.
func (e *Environment) Exhausted() bool {
	for _, v := range e.quantities {
		if v > 0 {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the current quantities.
func (e *Environment) Snapshot() Quantities {
	return e.quantities.Clone()
}

func (e *Environment) Quantity(r Resource) float64 { return e.quantities[r] }

func (e *Environment) RefreshRate(r Resource) float64 { return e.refresh[r] }

// Resources returns the tracked resource ids in sorted order.
func (e *Environment) Resources() []Resource { return e.quantities.Keys() }

// Ticks is the number of Advance calls so far, which is also the length of
// every resource history.
func (e *Environment) Ticks() int { return e.ticks }

// History returns a copy of the quantity log of r. Resources first seen after
// tick 0 are backfilled with zeros.
func (e *Environment) History(r Resource) []float64 {
	h := e.history[r]
	out := make([]float64, e.ticks)
	copy(out, h)
	return out
}

// Histories returns the logs of all resources seen so far.
func (e *Environment) Histories() map[Resource][]float64 {
	out := make(map[Resource][]float64, len(e.history))
	for r := range e.history {
		out[r] = e.History(r)
	}
	return out
}
