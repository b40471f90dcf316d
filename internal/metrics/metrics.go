package metrics

import (
	"fmt"

	"github.com/san-kum/popsim/internal/sim"
)

// DefaultMetrics returns a fresh instance of every metric.
func DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		NewBiomass(),
		NewPeakBiomass(),
		NewDiversity(),
		NewExtinctions(),
	}
}

// Names lists the metric names DefaultMetrics reports.
func Names() []string {
	ms := DefaultMetrics()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}

// ByName returns a fresh metric with the given name.
func ByName(name string) (sim.Metric, error) {
	for _, m := range DefaultMetrics() {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown metric: %s", name)
}
