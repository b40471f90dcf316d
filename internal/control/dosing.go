package control

import (
	"fmt"
	"math"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

// Dosing sets the refresh rate of a resource from a microbe's population
// after every committed tick. Rates are clamped to [0, MaxRate].
type Dosing struct {
	sim      *sim.Simulator
	microbe  string
	resource ecology.Resource
	ctrl     Controller
	MaxRate  float64
	rates    []float64
}

func NewDosing(s *sim.Simulator, microbe string, resource ecology.Resource, ctrl Controller, maxRate float64) (*Dosing, error) {
	if _, err := s.Microbe(microbe); err != nil {
		return nil, err
	}
	if resource == "" {
		return nil, fmt.Errorf("dosing: empty resource")
	}
	if maxRate <= 0 || math.IsInf(maxRate, 0) || math.IsNaN(maxRate) {
		return nil, fmt.Errorf("dosing: max rate must be positive and finite, got %v", maxRate)
	}
	return &Dosing{sim: s, microbe: microbe, resource: resource, ctrl: ctrl, MaxRate: maxRate}, nil
}

func (d *Dosing) OnTick(s sim.Snapshot) {
	rate := d.ctrl.Compute(s.Populations[d.microbe], s.Tick)
	if math.IsNaN(rate) {
		rate = 0
	}
	rate = math.Max(0, math.Min(rate, d.MaxRate))

	// rate is finite after clamping
	if err := d.sim.SetRefreshRate(d.resource, rate); err != nil {
		return
	}
	d.rates = append(d.rates, rate)
}

// Rates returns the rate chosen after every tick so far.
func (d *Dosing) Rates() []float64 {
	return append([]float64(nil), d.rates...)
}
