package ecology

import (
	"math"
	"sort"
)

// Resource identifies an environmental resource. The set is open: new
// resources can appear at runtime through production.
type Resource string

// Quantities maps resources to amounts.
type Quantities map[Resource]float64

// Keys returns the resource ids in sorted order.
func (q Quantities) Keys() []Resource {
	keys := make([]Resource, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Total sums all quantities in key order so the result is reproducible.
func (q Quantities) Total() float64 {
	total := 0.0
	for _, k := range q.Keys() {
		total += q[k]
	}
	return total
}

func (q Quantities) Clone() Quantities {
	c := make(Quantities, len(q))
	for k, v := range q {
		c[k] = v
	}
	return c
}

// Flux is a net per-tick change in resource quantities. Negative values are
// consumption, positive values production.
type Flux map[Resource]float64

// Add accumulates other into f.
func (f Flux) Add(other Flux) {
	for _, k := range Quantities(other).Keys() {
		f[k] += other[k]
	}
}

// Capacity maps resources to the carrying capacity they allow. Resources a
// microbe does not consume are +Inf.
type Capacity map[Resource]float64

// Min returns the binding capacity over the given resources. Resources absent
// from c count as 0.
func (c Capacity) Min(over Quantities) float64 {
	minK := math.Inf(1)
	for r := range over {
		minK = math.Min(minK, c[r])
	}
	return minK
}
