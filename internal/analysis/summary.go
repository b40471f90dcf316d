package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/popsim/internal/sim"
)

// Series kinds used in summaries and stored samples.
const (
	KindResource   = "resource"
	KindPopulation = "population"
	KindCapacity   = "capacity"
)

// Summary describes one history.
type Summary struct {
	Kind   string  `json:"kind"`
	Series string  `json:"series"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Final  float64 `json:"final"`
	Period float64 `json:"period"`
}

// Summarize computes the statistics of data. An empty series gives a zero
// summary.
func Summarize(kind, series string, data []float64) Summary {
	s := Summary{Kind: kind, Series: series}
	if len(data) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		s.StdDev = 0
	}
	s.Min = floats.Min(data)
	s.Max = floats.Max(data)
	s.Final = data[len(data)-1]
	s.Period = DominantPeriod(data)
	return s
}

// SummarizeResult summarizes every history of a run, grouped by kind and
// sorted by series name.
func SummarizeResult(res *sim.Result) []Summary {
	var out []Summary
	add := func(kind string, m map[string][]float64) {
		names := make([]string, 0, len(m))
		for n := range m {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, Summarize(kind, n, m[n]))
		}
	}
	add(KindPopulation, res.Populations)
	add(KindCapacity, res.Capacities)
	add(KindResource, res.Resources)
	return out
}
