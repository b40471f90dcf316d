package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/storage"
)

// loadConfig resolves the scenario for a command. A config file wins over a
// preset, and explicitly set flags win over both.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", config.ErrUnknownPreset, preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("ticks") {
		cfg.Ticks = ticks
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore() (storage.RunStore, error) {
	switch storeKind {
	case "file":
		st := storage.NewFileStore(dataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		return st, nil
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		return storage.OpenSQLite(filepath.Join(dataDir, "runs.db"))
	default:
		return nil, fmt.Errorf("unknown store %q (want file or sqlite)", storeKind)
	}
}

// parseValues reads "from:to:step" or "a,b,c".
func parseValues(s string) ([]float64, error) {
	if s == "" {
		return nil, fmt.Errorf("no values given")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("range %q: want from:to:step", s)
		}
		var r [3]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("range %q: %w", s, err)
			}
			r[i] = v
		}
		from, to, step := r[0], r[1], r[2]
		if step <= 0 || to < from {
			return nil, fmt.Errorf("range %q: need step > 0 and to >= from", s)
		}
		n := int((to-from)/step+1e-9) + 1
		out := make([]float64, n)
		for i := range out {
			out[i] = from + float64(i)*step
		}
		return out, nil
	}

	var out []float64
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// firstMicrobe falls back to the first microbe when name is empty.
func firstMicrobe(cfg *config.Config, name string) (string, error) {
	if name == "" {
		if len(cfg.Microbes) == 0 {
			return "", fmt.Errorf("scenario %s has no microbes", cfg.Name)
		}
		return cfg.Microbes[0].Name, nil
	}
	if _, ok := cfg.Microbe(name); !ok {
		return "", fmt.Errorf("scenario %s has no microbe %q", cfg.Name, name)
	}
	return name, nil
}
