package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	storeKind  string
	logLevel   string
	logFormat  string
	configFile string
	preset     string
	ticks      int
	workers    int
	frameRate  int
	watch      bool
	outPath    string
	kind       string
	smooth     int
	phaseAxes  string
	addr       string
	param      string
	values     string
	metricName string
	maximize   bool
	microbe    string
	rates      string
	transient  int
	record     int
	epsilon    float64
	scriptFile string
	doseOn     string
	doseWith   string
	target     float64
	kp         float64
	ki         float64
	kd         float64
	maxRate    float64
	trials     int
	spread     float64
	seed       int64
	svgWidth   int
	svgHeight  int
)

// main registers the popsim commands and runs the interactive scenario menu
// when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:               "popsim",
		Short:             "microbial population and resource simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".popsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "file", "run store: file or sqlite")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw populations while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate for --watch")
	runCmd.Flags().StringVar(&scriptFile, "script", "", "intervention script (yaml)")
	runCmd.Flags().StringVar(&doseOn, "dose-microbe", "", "hold this microbe's population at --target")
	runCmd.Flags().StringVar(&doseWith, "dose-resource", "", "resource whose refresh rate is controlled")
	runCmd.Flags().Float64Var(&target, "target", 50, "population setpoint for dosing")
	runCmd.Flags().Float64Var(&kp, "kp", 0.5, "dosing pid kp")
	runCmd.Flags().Float64Var(&ki, "ki", 0.01, "dosing pid ki")
	runCmd.Flags().Float64Var(&kd, "kd", 0.1, "dosing pid kd")
	runCmd.Flags().Float64Var(&maxRate, "max-rate", 100, "largest refresh rate dosing may set")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run histories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&kind, "kind", "population", "series kind: population, capacity or resource")
	plotCmd.Flags().IntVar(&smooth, "smooth", 0, "moving-average window, 0 to disable")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run histories to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run histories to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run chart or phase portrait to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	exportSVGCmd.Flags().StringVar(&kind, "kind", "population", "series kind: population, capacity or resource")
	exportSVGCmd.Flags().StringVar(&phaseAxes, "phase", "", "draw a phase portrait of two microbes instead, e.g. A,B")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarize the series of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&phaseAxes, "phase", "", "draw a phase portrait of two microbes, e.g. A,B")
	analyzeCmd.Flags().IntVar(&smooth, "smooth", 0, "moving-average window applied before summarizing")

	bifurcateCmd := &cobra.Command{
		Use:   "bifurcate",
		Short: "sweep a growth rate and plot long-run population levels",
		Args:  cobra.NoArgs,
		RunE:  bifurcate,
	}
	scenarioFlags(bifurcateCmd)
	bifurcateCmd.Flags().StringVar(&microbe, "microbe", "", "microbe whose growth rate is swept")
	bifurcateCmd.Flags().StringVar(&rates, "rates", "0.2:3:0.1", "growth rates as from:to:step or a comma list")
	bifurcateCmd.Flags().IntVar(&transient, "transient", 200, "ticks discarded before recording")
	bifurcateCmd.Flags().IntVar(&record, "record", 50, "ticks recorded per rate")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent of a scenario",
		Args:  cobra.NoArgs,
		RunE:  lyapunov,
	}
	scenarioFlags(lyapunovCmd)
	lyapunovCmd.Flags().StringVar(&microbe, "microbe", "", "microbe to perturb")
	lyapunovCmd.Flags().Float64Var(&epsilon, "epsilon", 1e-6, "initial perturbation")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run a scenario many times from perturbed populations",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	scenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of runs")
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 0.2, "relative perturbation of initial populations, in [0,1]")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for the clock")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step a scenario interactively",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve a scenario over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	scenarioFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a scenario over a range of one microbe parameter",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	scenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&param, "param", "", "parameter as <microbe>.growth_rate or <microbe>.population")
	sweepCmd.Flags().StringVar(&values, "values", "", "values as from:to:step or a comma list")
	sweepCmd.Flags().StringVar(&metricName, "metric", "biomass", "metric to report")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", true, "pick the largest metric value as best")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd,
		bifurcateCmd, lyapunovCmd, monteCarloCmd, presetsCmd, liveCmd, serveCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset scenario")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks (overrides the scenario)")
	cmd.Flags().IntVar(&workers, "workers", 0, "microbes evaluated concurrently per tick (overrides the scenario)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q", logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
