package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/popsim/internal/sim"
)

// Metrics exports the committed state of the served simulator. It is a
// sim.Observer.
type Metrics struct {
	tick       prometheus.Gauge
	population *prometheus.GaugeVec
	capacity   *prometheus.GaugeVec
	resource   *prometheus.GaugeVec
	ticks      prometheus.Counter
	stalled    prometheus.Counter
	resets     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "popsim", Name: "tick",
			Help: "Ticks committed since the simulator was built or reset.",
		}),
		population: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "popsim", Name: "population",
			Help: "Population of each microbe after the last tick.",
		}, []string{"microbe"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "popsim", Name: "carrying_capacity",
			Help: "Binding carrying capacity of each microbe on the last tick.",
		}, []string{"microbe"}),
		resource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "popsim", Name: "resource_quantity",
			Help: "Quantity of each resource after the last tick.",
		}, []string{"resource"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "popsim", Name: "ticks_total",
			Help: "Ticks committed over the life of the server.",
		}),
		stalled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "popsim", Name: "exhausted_steps_total",
			Help: "Step requests refused because every resource was exhausted.",
		}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popsim", Name: "resets_total",
			Help: "Simulator rebuilds, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.tick, m.population, m.capacity, m.resource, m.ticks, m.stalled, m.resets)
	return m
}

func (m *Metrics) OnTick(s sim.Snapshot) {
	m.ticks.Inc()
	m.Set(s)
}

// Set overwrites every gauge with s.
func (m *Metrics) Set(s sim.Snapshot) {
	m.tick.Set(float64(s.Tick))
	for name, p := range s.Populations {
		m.population.WithLabelValues(name).Set(p)
	}
	for name, k := range s.Capacities {
		m.capacity.WithLabelValues(name).Set(k)
	}
	for r, q := range s.Resources {
		m.resource.WithLabelValues(string(r)).Set(q)
	}
}

// Rebuilt clears per-series gauges after the simulator was reset or
// replaced, then records s.
func (m *Metrics) Rebuilt(reason string, s sim.Snapshot) {
	m.resets.WithLabelValues(reason).Inc()
	m.population.Reset()
	m.capacity.Reset()
	m.resource.Reset()
	m.Set(s)
}

func (m *Metrics) Stalled() { m.stalled.Inc() }
