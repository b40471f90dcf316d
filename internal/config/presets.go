package config

import (
	"sort"

	"github.com/san-kum/popsim/internal/ecology"
)

var leadToxin = ecology.Toxin{Toxicity: 1.0, MinSafeDensity: 0.0, MaxSafeDensity: 0.4, LethalDensity: 0.6}

func oxygenEater(name string, pop float64) MicrobeConfig {
	return MicrobeConfig{
		Name: name, Population: pop, GrowthRate: DefaultGrowthRate,
		Requires: map[string]float64{"Oxygen": 1},
		Produces: map[string]float64{"Glucose": 1},
		Toxins:   map[string]ecology.Toxin{"Lead": leadToxin},
	}
}

func glucoseEater(pop float64) MicrobeConfig {
	return MicrobeConfig{
		Name: "GlucoseEater", Population: pop, GrowthRate: DefaultGrowthRate,
		Requires: map[string]float64{"Glucose": 1},
		Produces: map[string]float64{"Oxygen": 1},
	}
}

func leadEater(pop float64) MicrobeConfig {
	return MicrobeConfig{
		Name: "LeadEater", Population: pop, GrowthRate: DefaultGrowthRate,
		Requires: map[string]float64{"Lead": 1},
	}
}

var Presets = map[string]*Config{
	"basic_symbiosis": {
		Name: "basic_symbiosis", Ticks: DefaultTicks, Workers: DefaultWorkers,
		Resources: map[string]ResourceConfig{
			"Oxygen":  {Initial: 10},
			"Glucose": {Initial: 10},
			"Lead":    {Initial: 0},
		},
		Microbes: []MicrobeConfig{oxygenEater("OxygenEater", 1), glucoseEater(1)},
	},
	"basic_with_lead": {
		Name: "basic_with_lead", Ticks: DefaultTicks, Workers: DefaultWorkers,
		Resources: map[string]ResourceConfig{
			"Oxygen":  {Initial: 10},
			"Glucose": {Initial: 10},
			"Lead":    {Initial: 0, Refresh: 1},
		},
		Microbes: []MicrobeConfig{oxygenEater("OxygenEater", 1), glucoseEater(1)},
	},
	"three_microbe_symbiosis": {
		Name: "three_microbe_symbiosis", Ticks: DefaultTicks, Workers: DefaultWorkers,
		Resources: map[string]ResourceConfig{
			"Oxygen":  {Initial: 10},
			"Glucose": {Initial: 10},
			"Lead":    {Initial: 1, Refresh: 1},
		},
		Microbes: []MicrobeConfig{oxygenEater("O2Eater", 1), glucoseEater(1), leadEater(1)},
	},
	"classic": {
		Name: "classic", Ticks: DefaultTicks, Workers: DefaultWorkers,
		Resources: map[string]ResourceConfig{
			"Oxygen":  {Initial: 10},
			"Glucose": {Initial: 10},
			"Lead":    {Initial: 1, Refresh: 1},
		},
		Microbes: []MicrobeConfig{oxygenEater("OxygenEater", 2), glucoseEater(2), leadEater(1)},
	},
	"oxygen_only": {
		Name: "oxygen_only", Ticks: 20, Workers: DefaultWorkers,
		Resources: map[string]ResourceConfig{
			"Oxygen": {Initial: 10},
		},
		Microbes: []MicrobeConfig{{
			Name: "A", Population: 2, GrowthRate: DefaultGrowthRate,
			Requires: map[string]float64{"Oxygen": 1},
		}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
