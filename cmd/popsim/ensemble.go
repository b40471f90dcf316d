package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/automation"
	"github.com/san-kum/popsim/internal/optim"
)

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if param == "" {
		return fmt.Errorf("--param is required")
	}
	p, err := optim.ParseParam(param)
	if err != nil {
		return err
	}
	vs, err := parseValues(values)
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch([]optim.Param{p}, [][]float64{vs}, cfg.Options())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := g.Search(ctx, cfg.Scenario(), metricName, cfg.Ticks, maximize)
	if err != nil {
		return err
	}

	fmt.Printf("sweep: %s, %s over %d values, %d ticks\n\n", cfg.Name, p, len(vs), cfg.Ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tTICKS\tEXHAUSTED\n", p, res.Metric)
	for _, pt := range res.Points {
		fmt.Fprintf(w, "%.4f\t%.6f\t%d\t%v\n", pt.Params[p.String()], pt.Value, pt.Ticks, pt.Exhausted)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %s = %.4f (%s %.6f)\n", p, res.Best.Params[p.String()], res.Metric, res.Best.Value)
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.MonteCarlo(ctx, cfg.Scenario(), automation.MonteCarloConfig{
		Trials:       trials,
		Perturbation: spread,
		Ticks:        cfg.Ticks,
		Seed:         seed,
		Options:      cfg.Options(),
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Microbes))
	for _, m := range cfg.Microbes {
		names = append(names, m.Name)
	}
	sort.Strings(names)

	fmt.Printf("monte carlo: %s, %d trials, spread %.2f, %d ticks\n\n", cfg.Name, len(results), spread, cfg.Ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "TRIAL")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s0\t%s", n, n)
	}
	fmt.Fprintln(w, "\tBIOMASS\tEXTINCT")
	for _, t := range results {
		fmt.Fprintf(w, "%d", t.ID)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.3f\t%.3f", t.Initial[n], t.Final[n])
		}
		fmt.Fprintf(w, "\t%.3f\t%d\n", t.Biomass, t.Extinctions)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	survived, collapsed := automation.Survival(results)
	fmt.Printf("\nsurvived: %d  collapsed: %d\n", survived, collapsed)
	return nil
}
