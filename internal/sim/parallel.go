package sim

import (
	"context"
	"sync"
)

// Ensemble runs several independent scenarios concurrently, one simulator per
// scenario. Metrics are stateful, so each run gets its own set from newMetrics.
type Ensemble struct {
	scenarios  []Scenario
	opts       Options
	newMetrics func() []Metric
}

func NewEnsemble(scenarios []Scenario, opts Options, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{scenarios: scenarios, opts: opts, newMetrics: newMetrics}
}

// Run returns one result per scenario in input order. The first error wins.
func (e *Ensemble) Run(ctx context.Context, ticks int) ([]*Result, error) {
	results := make([]*Result, len(e.scenarios))
	errs := make([]error, len(e.scenarios))

	var wg sync.WaitGroup
	for i := range e.scenarios {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := New(e.scenarios[idx], e.opts)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, ticks)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
