package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

const (
	DefaultTicks      = 100
	DefaultWorkers    = 1
	DefaultGrowthRate = 1.2
)

var (
	ErrInvalidTicks   = errors.New("config: ticks must be positive")
	ErrInvalidWorkers = errors.New("config: workers must not be negative")
	ErrUnknownPreset  = errors.New("config: unknown preset")
)

// Config is the on-disk form of a scenario plus run settings.
type Config struct {
	Name      string                    `yaml:"name"`
	Ticks     int                       `yaml:"ticks"`
	Workers   int                       `yaml:"workers"`
	Resources map[string]ResourceConfig `yaml:"resources"`
	Microbes  []MicrobeConfig           `yaml:"microbes"`
}

type ResourceConfig struct {
	Initial float64 `yaml:"initial"`
	Refresh float64 `yaml:"refresh"`
}

type MicrobeConfig struct {
	Name       string                   `yaml:"name"`
	Population float64                  `yaml:"population"`
	GrowthRate float64                  `yaml:"growth_rate"`
	Requires   map[string]float64       `yaml:"requires"`
	Produces   map[string]float64       `yaml:"produces,omitempty"`
	Toxins     map[string]ecology.Toxin `yaml:"toxins,omitempty"`
}

// DefaultConfig returns the classic three-species bench.
func DefaultConfig() *Config {
	return Presets["classic"].Clone()
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Ticks: DefaultTicks, Workers: DefaultWorkers}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings. Scenario contents are checked when the
// simulator is built.
func (c *Config) Validate() error {
	if c.Ticks <= 0 {
		return &ecology.ConfigError{Field: "ticks", Wrapped: ErrInvalidTicks}
	}
	if c.Workers < 0 {
		return &ecology.ConfigError{Field: "workers", Wrapped: ErrInvalidWorkers}
	}
	return nil
}

// Scenario converts the file form into the engine's form. Microbe order is
// kept; it is the commit order of every tick.
func (c *Config) Scenario() sim.Scenario {
	sc := sim.Scenario{
		Name:         c.Name,
		Resources:    make(ecology.Quantities, len(c.Resources)),
		RefreshRates: make(ecology.Quantities, len(c.Resources)),
		Microbes:     make([]ecology.Definition, 0, len(c.Microbes)),
	}
	for name, r := range c.Resources {
		sc.Resources[ecology.Resource(name)] = r.Initial
		sc.RefreshRates[ecology.Resource(name)] = r.Refresh
	}
	for _, m := range c.Microbes {
		def := ecology.Definition{
			Name:       m.Name,
			Population: m.Population,
			GrowthRate: m.GrowthRate,
			Required:   quantities(m.Requires),
			Produced:   quantities(m.Produces),
			Toxins:     make(map[ecology.Resource]ecology.Toxin, len(m.Toxins)),
		}
		for r, t := range m.Toxins {
			def.Toxins[ecology.Resource(r)] = t
		}
		sc.Microbes = append(sc.Microbes, def)
	}
	return sc
}

// Options returns the simulator options the config asks for.
func (c *Config) Options() sim.Options {
	opts := sim.DefaultOptions()
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	return opts
}

// Microbe returns the microbe entry with the given name.
func (c *Config) Microbe(name string) (*MicrobeConfig, bool) {
	for i := range c.Microbes {
		if c.Microbes[i].Name == name {
			return &c.Microbes[i], true
		}
	}
	return nil, false
}

// ResourceNames returns the configured resources in sorted order.
func (c *Config) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for n := range c.Resources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Clone() *Config {
	out := &Config{
		Name:      c.Name,
		Ticks:     c.Ticks,
		Workers:   c.Workers,
		Resources: make(map[string]ResourceConfig, len(c.Resources)),
		Microbes:  make([]MicrobeConfig, len(c.Microbes)),
	}
	for k, v := range c.Resources {
		out.Resources[k] = v
	}
	for i, m := range c.Microbes {
		cm := m
		cm.Requires = cloneMap(m.Requires)
		cm.Produces = cloneMap(m.Produces)
		if m.Toxins != nil {
			cm.Toxins = make(map[string]ecology.Toxin, len(m.Toxins))
			for k, v := range m.Toxins {
				cm.Toxins[k] = v
			}
		}
		out.Microbes[i] = cm
	}
	return out
}

func quantities(m map[string]float64) ecology.Quantities {
	q := make(ecology.Quantities, len(m))
	for k, v := range m {
		q[ecology.Resource(k)] = v
	}
	return q
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
