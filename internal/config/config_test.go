package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "classic" {
		t.Errorf("expected classic, got %s", cfg.Name)
	}
	if cfg.Ticks <= 0 {
		t.Error("ticks should be positive")
	}
	if len(cfg.Microbes) != 3 {
		t.Errorf("expected 3 microbes, got %d", len(cfg.Microbes))
	}

	cfg.Microbes[0].Population = 99
	if Presets["classic"].Microbes[0].Population == 99 {
		t.Error("DefaultConfig must not share state with the preset")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("basic_with_lead")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Resources["Lead"].Refresh != 1 {
		t.Errorf("expected lead refresh 1, got %v", cfg.Resources["Lead"].Refresh)
	}

	cfg.Resources["Lead"] = ResourceConfig{Initial: 5}
	cfg.Microbes[0].Requires["Oxygen"] = 7
	again := GetPreset("basic_with_lead")
	if again.Resources["Lead"].Initial != 0 || again.Microbes[0].Requires["Oxygen"] != 1 {
		t.Error("edits to a preset copy leaked back into Presets")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestPresets_BuildSimulators(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		s, err := sim.New(cfg.Scenario(), cfg.Options())
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if got := len(s.Microbes()); got != len(cfg.Microbes) {
			t.Errorf("preset %s: expected %d microbes, got %d", name, len(cfg.Microbes), got)
		}
		s.StepN(10)
	}
}

func TestScenario_Conversion(t *testing.T) {
	sc := GetPreset("classic").Scenario()

	if sc.Resources["Lead"] != 1 || sc.RefreshRates["Lead"] != 1 {
		t.Errorf("lead not converted: %v / %v", sc.Resources, sc.RefreshRates)
	}
	if sc.Microbes[0].Name != "OxygenEater" || sc.Microbes[2].Name != "LeadEater" {
		t.Errorf("microbe order not kept: %v", sc.Microbes)
	}
	tox, ok := sc.Microbes[0].Toxins["Lead"]
	if !ok || tox.LethalDensity != 0.6 {
		t.Errorf("toxin not converted: %+v", sc.Microbes[0].Toxins)
	}
	if sc.Microbes[1].Produced[ecology.Resource("Oxygen")] != 1 {
		t.Errorf("produced not converted: %v", sc.Microbes[1].Produced)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := GetPreset("three_microbe_symbiosis")
	cfg.Ticks = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Ticks != 42 || loaded.Name != cfg.Name {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
	m, ok := loaded.Microbe("O2Eater")
	if !ok {
		t.Fatal("O2Eater missing after load")
	}
	if m.Toxins["Lead"].MaxSafeDensity != 0.4 {
		t.Errorf("toxin lost after load: %+v", m.Toxins)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yaml")
	data := `
name: tiny
resources:
  Oxygen: {initial: 5, refresh: 1}
microbes:
  - name: A
    population: 1
    growth_rate: 1.1
    requires: {Oxygen: 1}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ticks != DefaultTicks || cfg.Workers != DefaultWorkers {
		t.Errorf("defaults not applied: ticks=%d workers=%d", cfg.Ticks, cfg.Workers)
	}
	if got := cfg.ResourceNames(); len(got) != 1 || got[0] != "Oxygen" {
		t.Errorf("unexpected resources %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"zero ticks", "name: x\nticks: 0\n", ErrInvalidTicks},
		{"negative workers", "name: x\nworkers: -2\n", ErrInvalidWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			var cfgErr *ecology.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	if got := cfg.Options().Workers; got != 1 {
		t.Errorf("expected 1 worker, got %d", got)
	}
	cfg.Workers = 4
	if got := cfg.Options().Workers; got != 4 {
		t.Errorf("expected 4 workers, got %d", got)
	}
}
