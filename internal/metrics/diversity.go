package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/popsim/internal/sim"
)

// Diversity is the Shannon index of the population shares on the last
// observed tick. A single surviving species, or none, gives 0.
type Diversity struct {
	last float64
}

func NewDiversity() *Diversity { return &Diversity{} }

func (d *Diversity) Name() string { return "diversity" }

func (d *Diversity) Observe(s sim.Snapshot) {
	d.last = Shannon(s.Populations)
}

func (d *Diversity) Value() float64 { return d.last }

func (d *Diversity) Reset() { d.last = 0 }

// Shannon returns -sum(p ln p) over the population shares.
func Shannon(populations map[string]float64) float64 {
	names := make([]string, 0, len(populations))
	for n := range populations {
		names = append(names, n)
	}
	sort.Strings(names)

	total := 0.0
	for _, n := range names {
		total += populations[n]
	}
	if total <= 0 {
		return 0
	}

	shares := make([]float64, 0, len(names))
	for _, n := range names {
		shares = append(shares, populations[n]/total)
	}
	return stat.Entropy(shares)
}

// Extinctions counts microbes whose population is zero on the last observed
// tick.
type Extinctions struct {
	count int
}

func NewExtinctions() *Extinctions { return &Extinctions{} }

func (e *Extinctions) Name() string { return "extinctions" }

func (e *Extinctions) Observe(s sim.Snapshot) {
	e.count = 0
	for _, p := range s.Populations {
		if p <= 0 {
			e.count++
		}
	}
}

func (e *Extinctions) Value() float64 { return float64(e.count) }

func (e *Extinctions) Reset() { e.count = 0 }
