// Package optim searches microbe parameters for the value of a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/sim"
)

const (
	FieldGrowthRate = "growth_rate"
	FieldPopulation = "population"
)

var ErrInvalidParam = errors.New("optim: invalid parameter")

// Param names one tunable value: a field of one microbe definition.
type Param struct {
	Microbe string
	Field   string
}

// ParseParam reads "<microbe>.<field>".
func ParseParam(s string) (Param, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Param{}, fmt.Errorf("%w: %q, want <microbe>.<field>", ErrInvalidParam, s)
	}
	p := Param{Microbe: s[:i], Field: s[i+1:]}
	if p.Field != FieldGrowthRate && p.Field != FieldPopulation {
		return Param{}, fmt.Errorf("%w: unknown field %q", ErrInvalidParam, p.Field)
	}
	return p, nil
}

func (p Param) String() string { return p.Microbe + "." + p.Field }

// Apply writes v into a copy of sc.
func (p Param) Apply(sc sim.Scenario, v float64) (sim.Scenario, error) {
	out := sc.Clone()
	for i := range out.Microbes {
		if out.Microbes[i].Name != p.Microbe {
			continue
		}
		switch p.Field {
		case FieldGrowthRate:
			out.Microbes[i].GrowthRate = v
		case FieldPopulation:
			out.Microbes[i].Population = v
		default:
			return sim.Scenario{}, fmt.Errorf("%w: unknown field %q", ErrInvalidParam, p.Field)
		}
		return out, nil
	}
	return sim.Scenario{}, fmt.Errorf("%w: no microbe %q", ErrInvalidParam, p.Microbe)
}

type GridSearch struct {
	params []Param
	ranges [][]float64
	opts   sim.Options
}

func NewGridSearch(params []Param, ranges [][]float64, opts sim.Options) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d params, %d ranges", ErrInvalidParam, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", ErrInvalidParam, params[i])
		}
	}
	return &GridSearch{params: params, ranges: ranges, opts: opts}, nil
}

// Point is one grid cell and the metric value its run produced.
type Point struct {
	Params    map[string]float64 `json:"params"`
	Value     float64            `json:"value"`
	Ticks     int                `json:"ticks"`
	Exhausted bool               `json:"exhausted"`
}

type SearchResult struct {
	Metric string  `json:"metric"`
	Points []Point `json:"points"`
	Best   Point   `json:"best"`
}

// Points enumerates the grid in row-major order, last parameter fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, current)
		return
	}

	name := g.params[depth].String()
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		g.enumerate(depth+1, next, out)
	}
}

// Search runs every grid point concurrently and reports the metric of each.
// Best is the largest value when maximize is set, the smallest otherwise.
func (g *GridSearch) Search(ctx context.Context, base sim.Scenario, metricName string, ticks int, maximize bool) (*SearchResult, error) {
	if _, err := metrics.ByName(metricName); err != nil {
		return nil, err
	}

	grid := g.Points()
	scenarios := make([]sim.Scenario, len(grid))
	for i, point := range grid {
		sc := base.Clone()
		for _, p := range g.params {
			var err error
			if sc, err = p.Apply(sc, point[p.String()]); err != nil {
				return nil, err
			}
		}
		scenarios[i] = sc
	}

	newMetrics := func() []sim.Metric {
		m, _ := metrics.ByName(metricName)
		return []sim.Metric{m}
	}
	results, err := sim.NewEnsemble(scenarios, g.opts, newMetrics).Run(ctx, ticks)
	if err != nil {
		return nil, err
	}

	out := &SearchResult{Metric: metricName, Points: make([]Point, len(grid))}
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	for i, res := range results {
		pt := Point{
			Params:    grid[i],
			Value:     res.Metrics[metricName],
			Ticks:     res.Ticks,
			Exhausted: res.Exhausted,
		}
		out.Points[i] = pt

		if (maximize && pt.Value > best) || (!maximize && pt.Value < best) {
			best = pt.Value
			out.Best = pt
		}
	}
	return out, nil
}

// Sweep varies a single parameter.
func Sweep(ctx context.Context, base sim.Scenario, param Param, values []float64, metricName string, ticks int, maximize bool) (*SearchResult, error) {
	g, err := NewGridSearch([]Param{param}, [][]float64{values}, sim.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return g.Search(ctx, base, metricName, ticks, maximize)
}
