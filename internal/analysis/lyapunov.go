package analysis

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/popsim/internal/sim"
)

// LyapunovExponent estimates how fast two runs of sc diverge when the initial
// population of one microbe differs by perturbation. A positive value means
// small differences in the starting population grow from tick to tick.
//
// After every tick the perturbed populations are pulled back toward the
// reference run so that the separation stays small. Resource quantities are
// left to drift.
func LyapunovExponent(sc sim.Scenario, microbe string, perturbation float64, ticks int) (float64, error) {
	if perturbation <= 0 {
		return 0, fmt.Errorf("lyapunov: perturbation must be positive")
	}

	// the perturbed run is edited every tick; keep those edits out of the log
	opts := sim.Options{Workers: 1, Logger: slog.New(slog.DiscardHandler)}
	ref, err := sim.New(sc, opts)
	if err != nil {
		return 0, err
	}
	pert, err := sim.New(sc, opts)
	if err != nil {
		return 0, err
	}
	m, err := pert.Microbe(microbe)
	if err != nil {
		return 0, err
	}
	if err := pert.SetPopulation(microbe, m.Population()+perturbation); err != nil {
		return 0, err
	}

	names := ref.Microbes()
	x := make([]float64, len(names))
	xp := make([]float64, len(names))

	sumLog := 0.0
	count := 0
	for i := 0; i < ticks; i++ {
		if !ref.Step() || !pert.Step() {
			break
		}
		populations(ref, names, x)
		populations(pert, names, xp)

		sep := floats.Distance(x, xp, 2)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		count++

		scale := perturbation / sep
		for j, name := range names {
			if err := pert.SetPopulation(name, x[j]+(xp[j]-x[j])*scale); err != nil {
				return 0, fmt.Errorf("lyapunov: renormalize at tick %d: %w", ref.Tick(), err)
			}
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / float64(count), nil
}

func populations(s *sim.Simulator, names []string, out []float64) {
	for i, name := range names {
		m, _ := s.Microbe(name)
		out[i] = m.Population()
	}
}
