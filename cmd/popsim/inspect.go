package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/viz"
)

func seriesOf(res *sim.Result, kind string) (map[string][]float64, error) {
	switch kind {
	case analysis.KindPopulation:
		return res.Populations, nil
	case analysis.KindCapacity:
		return res.Capacities, nil
	case analysis.KindResource:
		return res.Resources, nil
	default:
		return nil, fmt.Errorf("unknown kind %q (want population, capacity or resource)", kind)
	}
}

func sortedKeys(m map[string][]float64) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func plotRun(cmd *cobra.Command, args []string) error {
	res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	series, err := seriesOf(res, kind)
	if err != nil {
		return err
	}
	if res.Ticks == 0 {
		return fmt.Errorf("no data to plot")
	}

	names := sortedKeys(series)
	data := make([][]float64, len(names))
	for i, n := range names {
		data[i] = series[n]
		if smooth > 1 {
			data[i] = analysis.MovingAverage(data[i], smooth)
		}
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("scenario: %s\n", res.Scenario)
	fmt.Printf("ticks: %d\n\n", res.Ticks)

	caption := kind + " vs tick"
	if smooth > 1 {
		caption = fmt.Sprintf("%s (moving average %d)", caption, smooth)
	}
	chart := viz.RenderChart(names, data, viz.ChartOptions{Width: 80, Height: 15, Caption: caption})
	if chart == "" {
		return fmt.Errorf("no %s series long enough to plot", kind)
	}
	fmt.Println(chart)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if res.Ticks == 0 {
		return fmt.Errorf("no data")
	}

	if smooth > 1 {
		for _, m := range []map[string][]float64{res.Populations, res.Capacities, res.Resources} {
			for n, h := range m {
				m[n] = analysis.MovingAverage(h, smooth)
			}
		}
	}

	fmt.Printf("analysis: %s\n", args[0])
	fmt.Printf("scenario: %s\n\n", res.Scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSERIES\tMEAN\tSTD\tMIN\tMAX\tFINAL\tPERIOD")
	for _, s := range analysis.SummarizeResult(res) {
		period := "-"
		if s.Period > 0 {
			period = fmt.Sprintf("%.1f", s.Period)
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			s.Kind, s.Series, s.Mean, s.StdDev, s.Min, s.Max, s.Final, period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	names := sortedKeys(res.Populations)
	if len(names) > 0 {
		if ps := analysis.PowerSpectrum(res.Populations[names[0]]); len(ps) > 2 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(ps[1:],
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+names[0]+")"),
			))
		}
	}

	if phaseAxes == "" {
		return nil
	}
	axes := strings.Split(phaseAxes, ",")
	if len(axes) != 2 {
		return fmt.Errorf("--phase wants two microbes, got %q", phaseAxes)
	}
	xs, okX := res.Populations[strings.TrimSpace(axes[0])]
	ys, okY := res.Populations[strings.TrimSpace(axes[1])]
	if !okX || !okY {
		return fmt.Errorf("--phase: unknown microbe in %q (have %v)", phaseAxes, names)
	}

	fmt.Printf("\nphase portrait: %s vs %s\n", axes[1], axes[0])
	fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(xs, ys), 60, 20))
	return nil
}

func bifurcate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, err := firstMicrobe(cfg, microbe)
	if err != nil {
		return err
	}
	rs, err := parseValues(rates)
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation: %s, growth rate of %s over %d values\n\n", cfg.Name, name, len(rs))
	points, err := analysis.BifurcationDiagram(cfg.Scenario(), name, rs, transient, record)
	if err != nil {
		return err
	}
	fmt.Println(analysis.BifurcationToASCII(points, 70, 20))
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, err := firstMicrobe(cfg, microbe)
	if err != nil {
		return err
	}

	lambda, err := analysis.LyapunovExponent(cfg.Scenario(), name, epsilon, cfg.Ticks)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", cfg.Name)
	fmt.Printf("perturbed: %s by %g over %d ticks\n", name, epsilon, cfg.Ticks)
	fmt.Printf("lyapunov exponent: %.6f per tick\n", lambda)
	switch {
	case lambda > 0.01:
		fmt.Println("nearby trajectories diverge")
	case lambda < -0.01:
		fmt.Println("nearby trajectories converge")
	default:
		fmt.Println("neutral")
	}
	return nil
}
