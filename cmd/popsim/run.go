package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/automation"
	"github.com/san-kum/popsim/internal/control"
	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/export"
	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/storage"
	"github.com/san-kum/popsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := sim.New(cfg.Scenario(), cfg.Options())
	if err != nil {
		return err
	}
	for _, m := range metrics.DefaultMetrics() {
		s.AddMetric(m)
	}

	var dosing *control.Dosing
	if doseOn != "" || doseWith != "" {
		if doseOn == "" || doseWith == "" {
			return fmt.Errorf("--dose-microbe and --dose-resource go together")
		}
		dosing, err = control.NewDosing(s, doseOn, ecology.Resource(doseWith), control.NewPID(kp, ki, kd, target), maxRate)
		if err != nil {
			return err
		}
		s.AddObserver(dosing)
	}

	var script *automation.Script
	if scriptFile != "" {
		script, err = automation.LoadScript(scriptFile)
		if err != nil {
			return err
		}
	}

	var w *viz.Watcher
	if watch {
		w = viz.NewWatcher(os.Stdout, frameRate)
		s.AddObserver(w)
		w.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %d ticks...\n", cfg.Name, cfg.Ticks)
	start := time.Now()

	var result *sim.Result
	if script != nil {
		result, err = script.Run(ctx, s, cfg.Ticks)
	} else {
		result, err = s.Run(ctx, cfg.Ticks)
	}
	if w != nil {
		w.Flush(s.Snapshot())
		w.Stop()
		fmt.Println()
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	if result.Exhausted {
		fmt.Println("stopped early: every resource exhausted")
	}
	if dosing != nil {
		if rates := dosing.Rates(); len(rates) > 0 {
			fmt.Printf("dosing: %s refresh ended at %.4f\n", doseWith, rates[len(rates)-1])
		}
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tTICKS\tEXHAUSTED\tBIOMASS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\t%.3f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Exhausted,
			run.Final.TotalPopulation(),
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*sim.Result, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return storage.LoadResult(st, runID)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportFile(outPath, res, storage.ExportCSV)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportFile(outPath, res, storage.ExportJSON)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if phaseAxes != "" {
		axes := strings.Split(phaseAxes, ",")
		if len(axes) != 2 {
			return fmt.Errorf("--phase wants two microbes, got %q", phaseAxes)
		}
		x, y := strings.TrimSpace(axes[0]), strings.TrimSpace(axes[1])
		xs, okX := res.Populations[x]
		ys, okY := res.Populations[y]
		if !okX || !okY {
			return fmt.Errorf("--phase: unknown microbe in %q", phaseAxes)
		}
		svg = export.PhaseToSVG(xs, ys, svgWidth, svgHeight, x, y)
	} else {
		series, err := seriesOf(res, kind)
		if err != nil {
			return err
		}
		names := sortedKeys(series)
		data := make([][]float64, len(names))
		for i, n := range names {
			data[i] = series[n]
		}
		svg = export.HistoryToSVG(names, data, svgWidth, svgHeight, kind)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw for run %s", args[0])
	}

	if outPath == "" || outPath == "-" {
		_, err = fmt.Fprint(os.Stdout, svg)
		return err
	}
	return os.WriteFile(outPath, []byte(svg), 0644)
}
