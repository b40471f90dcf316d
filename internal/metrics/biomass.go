package metrics

import (
	"math"

	"github.com/san-kum/popsim/internal/sim"
)

// Biomass is the mean total population over all observed ticks.
type Biomass struct {
	total   float64
	samples int
}

func NewBiomass() *Biomass { return &Biomass{} }

func (b *Biomass) Name() string { return "biomass" }

func (b *Biomass) Observe(s sim.Snapshot) {
	b.total += s.TotalPopulation()
	b.samples++
}

func (b *Biomass) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.total / float64(b.samples)
}

func (b *Biomass) Reset() {
	b.total = 0
	b.samples = 0
}

// PeakBiomass is the largest total population seen.
type PeakBiomass struct {
	peak float64
}

func NewPeakBiomass() *PeakBiomass { return &PeakBiomass{} }

func (p *PeakBiomass) Name() string { return "peak_biomass" }

func (p *PeakBiomass) Observe(s sim.Snapshot) {
	p.peak = math.Max(p.peak, s.TotalPopulation())
}

func (p *PeakBiomass) Value() float64 { return p.peak }

func (p *PeakBiomass) Reset() { p.peak = 0 }
