package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/viz"
)

// tuiOptions keeps simulator logs off the terminal the TUI draws on.
func tuiOptions(cfg *config.Config) sim.Options {
	opts := cfg.Options()
	opts.Logger = slog.New(slog.DiscardHandler)
	return opts
}

func describePreset(cfg *config.Config) string {
	return fmt.Sprintf("%d microbes, %d resources", len(cfg.Microbes), len(cfg.Resources))
}

func runMenu() error {
	names := config.ListPresets()
	describe := make(map[string]string, len(names))
	for _, name := range names {
		describe[name] = describePreset(config.GetPreset(name))
	}

	build := func(name string) (*sim.Simulator, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownPreset, name)
		}
		return sim.New(cfg.Scenario(), tuiOptions(cfg))
	}

	return viz.RunApp(viz.NewApp(names, describe, build))
}

func runLive(cmd *cobra.Command, args []string) error {
	if configFile == "" && preset == "" {
		return runMenu()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.New(cfg.Scenario(), tuiOptions(cfg))
	if err != nil {
		return err
	}

	return viz.Run(viz.NewModel(s).WithFastForward(cfg.Ticks))
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("%w: %s (available: %v)", config.ErrUnknownPreset, args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		fmt.Printf("  %-26s %s\n", name, describePreset(config.GetPreset(name)))
	}
	return nil
}
