package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/server"
	"github.com/san-kum/popsim/internal/sim"
)

func presetScenario(name string) (sim.Scenario, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return sim.Scenario{}, fmt.Errorf("%w: %s", config.ErrUnknownPreset, name)
	}
	return cfg.Scenario(), nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Scenario: cfg.Scenario(),
		Presets:  presetScenario,
		Options:  cfg.Options(),
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, addr)
}
