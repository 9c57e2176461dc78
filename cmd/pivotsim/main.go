package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pivotsim/internal/analysis"
	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/export"
	"github.com/san-kum/pivotsim/internal/integrators"
	"github.com/san-kum/pivotsim/internal/logging"
	"github.com/san-kum/pivotsim/internal/loop"
	"github.com/san-kum/pivotsim/internal/metrics"
	"github.com/san-kum/pivotsim/internal/optim"
	"github.com/san-kum/pivotsim/internal/rig"
	"github.com/san-kum/pivotsim/internal/storage"
	"github.com/san-kum/pivotsim/internal/tui"
	"github.com/san-kum/pivotsim/internal/units"
)

var (
	dataDir     string
	logLevel    string
	logFile     string
	devLog      bool
	preset      string
	configFile  string
	ticks       int
	period      float64
	setpoint    float64
	applyAt     int
	height      float64
	integrator  string
	profiled    bool
	noSave      bool
	watch       bool
	watchEvery  int
	logTelem    bool
	stopOnFail  bool
	settleBand  float64
	svgFile     string
	tuneKP      []float64
	tuneKD      []float64
	tuneMetric  string
	skipSeconds float64
)

var logger = zap.NewNop()

func main() {
	rootCmd := &cobra.Command{
		Use:   "pivotsim",
		Short: "pivot actuator control and simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, devLog, logFile)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pivotsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "development log encoding")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store the trace",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	runCmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint (deg)")
	runCmd.Flags().IntVar(&applyAt, "at", 0, "tick at which the setpoint is applied")
	runCmd.Flags().Float64Var(&height, "height", 0, "elevator height setpoint (m)")
	runCmd.Flags().BoolVar(&profiled, "profiled", false, "use the driver's onboard profile instead of the local loop")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the mechanism while running")
	runCmd.Flags().IntVar(&watchEvery, "every", 5, "ticks between frames with --watch")
	runCmd.Flags().BoolVar(&logTelem, "log-telemetry", false, "mirror telemetry into the debug log")
	runCmd.Flags().BoolVar(&stopOnFail, "stop-on-fault", false, "stop at the first tick fault")
	runCmd.Flags().Float64Var(&settleBand, "band", 1, "settling band (deg)")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final mechanism pose to this svg file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive dashboard",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the angle trace as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "look for oscillation in a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&skipSeconds, "skip", 2, "seconds of transient to ignore")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the local loop's KP and KD",
		RunE:  tuneGains,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	tuneCmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint (deg)")
	tuneCmd.Flags().Float64SliceVar(&tuneKP, "kp", []float64{0.1, 0.2, 0.3, 0.5, 0.8}, "KP values to try")
	tuneCmd.Flags().Float64SliceVar(&tuneKD, "kd", []float64{0, 0.001, 0.005, 0.01}, "KD values to try")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "settling_time", "metric to minimize")
	tuneCmd.Flags().Float64Var(&settleBand, "band", 1, "settling band (deg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		RunE:  dumpConfig,
	}
	addConfigFlags(configCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run the same move with several integrators in parallel",
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)
	compareCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	compareCmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint (deg)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, presetsCmd, configCmd, compareCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&period, "period", config.DefaultPeriod, "tick period (s)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
}

// loadConfig layers preset, then config file, then any flag the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Period = period
	}
	if flags.Changed("integrator") {
		cfg.Plant.Integrator = integrator
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("setpoint") {
		cfg.Run.Setpoint = setpoint
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r, err := rig.Build(cfg, rig.Options{Logger: logger, LogTelemetry: logTelem})
	if err != nil {
		return err
	}

	target := units.DegreesToRadians(cfg.Run.Setpoint)
	runner := r.Runner(logger)
	runner.At(applyAt, func() {
		if profiled {
			r.Pivot.RequestProfiledMove(target)
		} else {
			r.Pivot.SetAngle(cfg.Run.Setpoint)
		}
		if r.Elevator != nil && cmd.Flags().Changed("height") {
			r.Elevator.SetHeight(height)
		}
	})
	runner.AddMetric(metrics.NewControlEffort())
	runner.AddMetric(metrics.NewSaturation(cfg.MaxVoltage))
	runner.AddMetric(metrics.NewSteadyStateError(target))
	runner.AddMetric(metrics.NewOvershoot(cfg.Plant.StartingAngle, target))
	runner.AddMetric(metrics.NewSettlingTime(target, units.DegreesToRadians(settleBand)))

	if watch {
		cr := tui.NewConsoleRenderer(os.Stdout, r, watchEvery)
		cr.Start()
		defer cr.Stop()
		runner.AddObserver(cr)
	}

	fmt.Printf("running %s for %d ticks...\n", cfg.Name, cfg.Run.Ticks)
	start := time.Now()

	result, err := runner.Run(context.Background(), loop.Config{
		Period:      cfg.Period,
		Ticks:       cfg.Run.Ticks,
		StopOnFault: stopOnFail,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d (faults: %d)\n", result.TicksRun, result.Faults)
	fmt.Printf("final angle: %.3f°\n", units.RadiansToDegrees(r.Pivot.Angle()))
	fmt.Println("\nmetrics:")
	for _, name := range result.MetricNames() {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if svgFile != "" {
		if err := writeSceneSVG(r, svgFile); err != nil {
			return err
		}
		fmt.Printf("pose written to %s\n", svgFile)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Config:     cfg.Name,
		Period:     cfg.Period,
		Ticks:      result.TicksRun,
		Integrator: cfg.Plant.Integrator,
		Setpoint:   cfg.Run.Setpoint,
		Profiled:   profiled,
	}, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func buildRig(name string) (*rig.Rig, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, errors.Errorf("unknown preset: %s", name)
	}
	return rig.Build(cfg, rig.Options{Logger: logger})
}

func runMenu() error {
	m := tui.NewMenuModel(config.ListPresets(), buildRig)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		return runMenu()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := rig.Build(cfg, rig.Options{Logger: logger})
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(tui.NewLiveModel(r), tea.WithAltScreen()).Run()
	return err
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCONFIG\tTIME\tTICKS\tPERIOD\tINTEG\tSETPOINT\tMODE\tFAULTS")

	for _, run := range runs {
		mode := "local"
		if run.Profiled {
			mode = "profiled"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3fs\t%s\t%.1f°\t%s\t%d\n",
			run.ID,
			run.Config,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Period,
			run.Integrator,
			run.Setpoint,
			mode,
			run.Faults,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("config: %s\n", meta.Config)
	fmt.Printf("samples: %d\n\n", len(states))

	captions := []string{"angle (deg)", "velocity (deg/s)", "command (V)"}
	for idx, caption := range captions {
		data := make([]float64, 0, len(states))
		for _, row := range states {
			if idx >= len(row) {
				continue
			}
			v := row[idx]
			if idx < 2 {
				v = units.RadiansToDegrees(v)
			}
			data = append(data, v)
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func loadResult(st *storage.Store, runID string) (*storage.RunMetadata, *loop.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &loop.Result{Times: times, Metrics: meta.Metrics, TicksRun: meta.Ticks, Faults: meta.Faults}
	for _, row := range states {
		n := len(row)
		if n > 2 {
			n = 2
		}
		result.States = append(result.States, row[:n])
		result.Controls = append(result.Controls, row[n:])
	}
	return meta, result, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadResult(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	if len(result.States) == 0 {
		return errors.New("no data to export")
	}
	return storage.WriteCSV(os.Stdout, result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadResult(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	target := units.DegreesToRadians(base.Run.Setpoint)
	rigs := make([]*rig.Rig, len(names))
	start := time.Now()

	results, err := loop.Sweep(context.Background(), len(names), func(i int) (*loop.Runner, loop.Config, error) {
		cfg := base.Clone()
		cfg.Name = names[i]
		cfg.Plant.Integrator = names[i]
		r, err := rig.Build(cfg, rig.Options{Logger: logger})
		if err != nil {
			return nil, loop.Config{}, err
		}
		rigs[i] = r
		r.Pivot.SetAngle(cfg.Run.Setpoint)

		runner := r.Runner(logger)
		runner.AddMetric(metrics.NewSteadyStateError(target))
		runner.AddMetric(metrics.NewOvershoot(cfg.Plant.StartingAngle, target))
		runner.AddMetric(metrics.NewControlEffort())
		return runner, loop.Config{Period: cfg.Period, Ticks: cfg.Run.Ticks}, nil
	})
	elapsed := time.Since(start)

	fmt.Printf("comparing integrators (period=%.3fs, ticks=%d, setpoint=%.1f°) in %v\n\n",
		base.Period, base.Run.Ticks, base.Run.Setpoint, elapsed)
	fmt.Printf("%-12s  %12s  %12s  %12s  %12s\n", "integrator", "final_deg", "ss_err_deg", "overshoot", "effort")
	fmt.Println(strings.Repeat("-", 68))

	for i, name := range names {
		res := results[i]
		if res == nil || rigs[i] == nil {
			fmt.Printf("%-12s  failed\n", name)
			continue
		}
		fmt.Printf("%-12s  %12.4f  %12.2e  %12.4f  %12.4f\n",
			name,
			units.RadiansToDegrees(rigs[i].Pivot.Angle()),
			units.RadiansToDegrees(res.Metrics["steady_state_error"]),
			res.Metrics["overshoot"],
			res.Metrics["control_effort"],
		)
	}

	return err
}

func writeSceneSVG(r *rig.Rig, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating svg file")
	}
	defer f.Close()
	w, h := r.WorldSize()
	return export.SceneSVG(f, r.Scene, w, h, 400)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, result, err := loadResult(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	angles := make([]float64, len(result.States))
	for i, x := range result.States {
		if len(x) > 0 {
			angles[i] = units.RadiansToDegrees(x[0])
		}
	}
	return export.TraceSVG(os.Stdout, result.Times, angles, 800, 300, "#00ccff")
}

func tuneGains(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	target := units.DegreesToRadians(base.Run.Setpoint)

	search := optim.NewGridSearch([]string{"kp", "kd"}, [][]float64{tuneKP, tuneKD})
	best, all, err := search.Search(context.Background(), func(p map[string]float64) (*loop.Runner, loop.Config, error) {
		cfg := base.Clone()
		cfg.Feedback.KP = p["kp"]
		cfg.Feedback.KD = p["kd"]
		r, err := rig.Build(cfg, rig.Options{Logger: logger})
		if err != nil {
			return nil, loop.Config{}, err
		}
		r.Pivot.SetAngle(cfg.Run.Setpoint)

		runner := r.Runner(logger)
		runner.AddMetric(metrics.NewSteadyStateError(target))
		runner.AddMetric(metrics.NewOvershoot(cfg.Plant.StartingAngle, target))
		runner.AddMetric(metrics.NewSettlingTime(target, units.DegreesToRadians(settleBand)))
		runner.AddMetric(metrics.NewControlEffort())
		return runner, loop.Config{Period: cfg.Period, Ticks: cfg.Run.Ticks}, nil
	}, tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KP\tKD\t%s\n", strings.ToUpper(tuneMetric))
	for _, c := range all {
		value := fmt.Sprintf("%.4f", c.Value)
		if c.Err != nil {
			value = c.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%g\t%s\n", c.Params["kp"], c.Params["kd"], value)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: KP=%g KD=%g %s=%.4f\n", best.Params["kp"], best.Params["kd"], tuneMetric, best.Value)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadResult(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	if meta.Profiled {
		fmt.Println("note: profiled run, the driver's trajectory is not compared against the target")
	}

	angles := make([]float64, len(result.States))
	for i, x := range result.States {
		angles[i] = units.RadiansToDegrees(x[0])
	}
	skip := int(skipSeconds / meta.Period)
	e := analysis.TrackingError(angles, meta.Setpoint, skip)
	if len(e) < 2 {
		return errors.Errorf("run has %d samples after skipping %d", len(angles), skip)
	}

	peak := analysis.DominantFrequency(e, meta.Period)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples analyzed: %d (skipped %d)\n", len(e), skip)
	fmt.Printf("rms error: %.4f°\n", analysis.RMS(e))
	if peak.Magnitude == 0 {
		fmt.Println("no oscillation")
		return nil
	}
	fmt.Printf("dominant oscillation: %.3f Hz, amplitude %.4f°\n", peak.Frequency, 2*peak.Magnitude)
	return nil
}
