package analysis

import (
	"fmt"

	"github.com/san-kum/popsim/internal/sim"
)

// BifurcationPoint holds the distinct long-run population levels reached for
// one growth rate.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationDiagram sweeps the growth rate of one microbe. For every rate
// the scenario runs for transient ticks, then the distinct population levels
// over the next record ticks are kept. One level means a steady state, a few
// mean a cycle, many mean irregular dynamics.
func BifurcationDiagram(sc sim.Scenario, microbe string, rates []float64, transient, record int) ([]BifurcationPoint, error) {
	idx := -1
	for i, d := range sc.Microbes {
		if d.Name == microbe {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("bifurcation: unknown microbe %q", microbe)
	}

	results := make([]BifurcationPoint, 0, len(rates))
	for _, rate := range rates {
		variant := sc.Clone()
		variant.Microbes[idx].GrowthRate = rate

		s, err := sim.New(variant, sim.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("bifurcation at rate %v: %w", rate, err)
		}
		s.StepN(transient)

		values := make([]float64, 0, record)
		seen := make(map[int64]bool)
		for i := 0; i < record; i++ {
			if !s.Step() {
				break
			}
			m, _ := s.Microbe(microbe)
			v := m.Population()
			// quantize to merge levels that differ by rounding noise
			key := int64(v * 1000)
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}

		results = append(results, BifurcationPoint{Param: rate, Values: values})
	}
	return results, nil
}

// BifurcationToASCII draws the diagram with one column per swept value.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			canvas[row][col] = '•'
		}
	}
	return canvasString(canvas)
}
