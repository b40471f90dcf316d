package storage

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/popsim/internal/sim"
)

// Sample kinds.
const (
	KindResource   = "resource"
	KindPopulation = "population"
	KindCapacity   = "capacity"
)

var ErrRunNotFound = errors.New("storage: run not found")

// RunStore persists finished runs.
type RunStore interface {
	Save(res *sim.Result) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadSamples(runID string) ([]Sample, error)
	Close() error
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Ticks     int                `json:"ticks"`
	Exhausted bool               `json:"exhausted"`
	Metrics   map[string]float64 `json:"metrics"`
	Final     sim.Snapshot       `json:"final"`
}

// Sample is one history value in long format. Tick is 1-based: the value was
// recorded during that tick.
type Sample struct {
	Tick   int     `csv:"tick"`
	Kind   string  `csv:"kind"`
	Series string  `csv:"series"`
	Value  float64 `csv:"value"`
}

func newMetadata(res *sim.Result) RunMetadata {
	name := res.Scenario
	if name == "" {
		name = "run"
	}
	now := time.Now()
	return RunMetadata{
		ID:        fmt.Sprintf("%s_%d", name, now.UnixNano()),
		Scenario:  res.Scenario,
		Timestamp: now,
		Ticks:     res.Ticks,
		Exhausted: res.Exhausted,
		Metrics:   res.Metrics,
		Final:     res.Final,
	}
}

// Samples flattens the histories of res, ordered by kind, series and tick.
func Samples(res *sim.Result) []Sample {
	var out []Sample
	add := func(kind string, m map[string][]float64) {
		names := make([]string, 0, len(m))
		for n := range m {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			for i, v := range m[n] {
				out = append(out, Sample{Tick: i + 1, Kind: kind, Series: n, Value: v})
			}
		}
	}
	add(KindCapacity, res.Capacities)
	add(KindPopulation, res.Populations)
	add(KindResource, res.Resources)
	return out
}

// Rebuild reassembles a result from stored metadata and samples. Samples
// outside [1, meta.Ticks] are ignored.
func Rebuild(meta *RunMetadata, samples []Sample) *sim.Result {
	res := &sim.Result{
		Scenario:    meta.Scenario,
		Ticks:       meta.Ticks,
		Exhausted:   meta.Exhausted,
		Resources:   map[string][]float64{},
		Populations: map[string][]float64{},
		Capacities:  map[string][]float64{},
		Metrics:     meta.Metrics,
		Final:       meta.Final,
	}
	for _, s := range samples {
		var m map[string][]float64
		switch s.Kind {
		case KindResource:
			m = res.Resources
		case KindPopulation:
			m = res.Populations
		case KindCapacity:
			m = res.Capacities
		default:
			continue
		}
		if s.Tick < 1 || s.Tick > meta.Ticks {
			continue
		}
		h, ok := m[s.Series]
		if !ok {
			h = make([]float64, meta.Ticks)
			m[s.Series] = h
		}
		h[s.Tick-1] = s.Value
	}
	return res
}

// LoadResult loads a run and rebuilds its histories.
func LoadResult(st RunStore, runID string) (*sim.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	return Rebuild(meta, samples), nil
}

func sortRuns(runs []RunMetadata) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
}
