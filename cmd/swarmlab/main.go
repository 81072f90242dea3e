package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swarmlab/internal/analysis"
	"github.com/san-kum/swarmlab/internal/config"
	"github.com/san-kum/swarmlab/internal/export"
	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/seed"
	"github.com/san-kum/swarmlab/internal/sim"
	"github.com/san-kum/swarmlab/internal/storage"
	"github.com/san-kum/swarmlab/internal/swarm"
	"github.com/san-kum/swarmlab/internal/sweep"
	"github.com/san-kum/swarmlab/internal/viz"
)

var (
	dataDir string

	agents      int
	dt          float64
	duration    float64
	seedVal     int64
	kGain       float64
	jGain       float64
	layout      string
	extent      float64
	phaseLayout string
	chiralMode  string
	chiralSpin  float64
	omegaMode   string
	omegaMean   float64
	omegaSpread float64
	target      []float64
	sampleEvery int

	preset     string
	configFile string
	noStore    bool
	label      string
	outPath    string

	kRange   []float64
	jRange   []float64
	gridSize int
	workers  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swarmlab",
		Short: "swarmalator simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swarmlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		RunE:  runSimulation,
	}
	addEnsembleFlags(runCmd)
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().IntVar(&sampleEvery, "sample", 10, "steps between stored samples")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "skip storing the run")
	runCmd.Flags().StringVar(&label, "label", "", "label for the stored run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addEnsembleFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's order parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarize a run and classify its regime",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's time series as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportHTMLCmd := &cobra.Command{
		Use:   "export-html [run_id]",
		Short: "render a run to an HTML report",
		Args:  cobra.ExactArgs(1),
		RunE:  exportHTML,
	}
	exportHTMLCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.html)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-24s agents=%d K=%+.2f J=%+.2f\n", name, cfg.Agents, cfg.K, cfg.J)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the update step across ensemble sizes",
		RunE:  benchStep,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "scan a (J, K) grid and classify each regime",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&agents, "agents", 100, "number of agents per cell")
	sweepCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	sweepCmd.Flags().Float64Var(&duration, "time", 30.0, "duration per cell")
	sweepCmd.Flags().Int64Var(&seedVal, "seed", 42, "random seed")
	sweepCmd.Flags().Float64SliceVar(&kRange, "k-range", []float64{-1, 1}, "K range as lo,hi")
	sweepCmd.Flags().Float64SliceVar(&jRange, "j-range", []float64{0.1, 1}, "J range as lo,hi")
	sweepCmd.Flags().IntVar(&gridSize, "grid", 5, "grid points per axis")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "concurrent cells")

	rmCmd := &cobra.Command{
		Use:   "rm [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := storage.Open(dataDir)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(args[0])
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportCSVCmd, exportHTMLCmd, presetsCmd, benchCmd, sweepCmd, rmCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEnsembleFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&agents, "agents", config.DefaultAgents, "number of agents")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Int64Var(&seedVal, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&kGain, "k", config.DefaultK, "phase coupling gain")
	cmd.Flags().Float64Var(&jGain, "j", config.DefaultJ, "spatial-phase gain")
	cmd.Flags().StringVar(&layout, "layout", "disk", "position layout (disk, ring, uniform, clusters)")
	cmd.Flags().Float64Var(&extent, "extent", config.DefaultExtent, "layout extent")
	cmd.Flags().StringVar(&phaseLayout, "phases", "random", "phase layout (random, gradient, banded)")
	cmd.Flags().StringVar(&chiralMode, "chiral", "none", "chirality mode (none, uniform, split)")
	cmd.Flags().Float64Var(&chiralSpin, "spin", 1.0, "chirality magnitude")
	cmd.Flags().StringVar(&omegaMode, "omega", "constant", "natural frequency mode (constant, split, normal)")
	cmd.Flags().Float64Var(&omegaMean, "omega-mean", 0, "natural frequency mean")
	cmd.Flags().Float64Var(&omegaSpread, "omega-spread", 0, "natural frequency spread (normal mode)")
	cmd.Flags().Float64SliceVar(&target, "target", nil, "attraction point as x,y")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in preset")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// resolveConfig merges preset, config file, and flags, flags winning when
// explicitly set. Mirrors the precedence used for run and live alike.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("agents") {
		cfg.Agents = agents
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("k") {
		cfg.K = kGain
	}
	if flags.Changed("j") {
		cfg.J = jGain
	}
	if flags.Changed("layout") {
		cfg.Layout = layout
	}
	if flags.Changed("extent") {
		cfg.Extent = extent
	}
	if flags.Changed("phases") {
		cfg.PhaseLayout = phaseLayout
	}
	if flags.Changed("chiral") {
		cfg.ChiralityMode = chiralMode
	}
	if flags.Changed("spin") {
		cfg.ChiralitySpin = chiralSpin
	}
	if flags.Changed("omega") {
		cfg.OmegaMode = omegaMode
	}
	if flags.Changed("omega-mean") {
		cfg.OmegaMean = omegaMean
	}
	if flags.Changed("omega-spread") {
		cfg.OmegaSpread = omegaSpread
	}
	if flags.Changed("target") {
		if len(target) != 2 {
			return nil, fmt.Errorf("target needs exactly two values, got %d", len(target))
		}
		cfg.Target = append([]float64(nil), target...)
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if cfg.Seed == 0 || flags.Changed("seed") {
		cfg.Seed = seedVal
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	params, err := seed.Build(cfg.SeedSpec())
	if err != nil {
		return err
	}
	engine, err := swarm.New(params)
	if err != nil {
		return err
	}

	runner := sim.New(engine)
	for _, tr := range metrics.Defaults() {
		runner.AddTracker(tr)
	}

	fmt.Printf("running %d agents for %.1fs (dt=%.3f, K=%.2f, J=%.2f)...\n",
		cfg.Agents, cfg.Duration, cfg.Dt, cfg.K, cfg.J)
	start := time.Now()

	result, err := runner.Run(context.Background(), cfg.RunConfig())
	if err != nil {
		return err
	}

	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, time.Since(start))
	for _, stepErr := range result.Errors {
		fmt.Printf("warning: %v\n", stepErr)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if noStore {
		return nil
	}

	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runLabel := label
	if runLabel == "" {
		runLabel = preset
	}
	runID, err := st.Save(storage.RunMeta{
		Label:    runLabel,
		Agents:   cfg.Agents,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Seed:     cfg.Seed,
		K:        cfg.K,
		J:        cfg.J,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(cfg.SeedSpec(), cfg.Dt)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
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
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tAGENTS\tK\tJ\tSTEPS\tCOHERENCE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%+.2f\t%+.2f\t%d\t%.3f\n",
			run.ID,
			run.Label,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Agents,
			run.K,
			run.J,
			run.Steps,
			run.Metrics["coherence"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("agents: %d  K=%+.2f  J=%+.2f\n\n", meta.Agents, meta.K, meta.J)

	for _, plot := range []struct {
		caption string
		data    []float64
	}{
		{"coherence", series.Coherence},
		{"s_plus", series.SPlus},
		{"s_minus", series.SMinus},
	} {
		graph := asciigraph.Plot(plot.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(plot.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	coherence := analysis.Tail(series.Coherence, 0.5)
	sPlus := analysis.Tail(series.SPlus, 0.5)
	sMinus := analysis.Tail(series.SMinus, 0.5)

	fmt.Printf("run: %s (agents=%d K=%+.2f J=%+.2f)\n\n", meta.ID, meta.Agents, meta.K, meta.J)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTD\tMIN\tMAX\tFINAL")
	for _, row := range []struct {
		name string
		s    analysis.Summary
	}{
		{"coherence", coherence},
		{"s_plus", sPlus},
		{"s_minus", sMinus},
	} {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			row.name, row.s.Mean, row.s.Std, row.s.Min, row.s.Max, row.s.Final)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nregime: %s\n", analysis.Classify(coherence, sPlus, sMinus))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	file, err := os.Open(filepath.Join(dataDir, args[0], "states.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(os.Stdout, file)
	return err
}

func exportHTML(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = args[0] + ".html"
	}
	if err := export.WriteHTML(path, meta, series); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}

var regimeAbbrev = map[string]string{
	"static sync":           "SS",
	"static async":          "SA",
	"static phase wave":     "PW",
	"splintered phase wave": "SPW",
	"active phase wave":     "APW",
	"mixed":                 "~",
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(kRange) != 2 || len(jRange) != 2 {
		return fmt.Errorf("k-range and j-range need exactly two values")
	}

	grid := sweep.Scan(context.Background(), sweep.Options{
		Base:    seed.Spec{Agents: agents, Seed: seedVal, Layout: "disk"},
		Run:     sim.Config{Dt: dt, Duration: duration, SampleEvery: 10, ValidateState: true},
		Ks:      sweep.Range(kRange[0], kRange[1], gridSize),
		Js:      sweep.Range(jRange[0], jRange[1], gridSize),
		Workers: workers,
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "K \\ J")
	for _, j := range grid.Js {
		fmt.Fprintf(w, "\t%+.2f", j)
	}
	fmt.Fprintln(w)

	for i, k := range grid.Ks {
		fmt.Fprintf(w, "%+.2f", k)
		for j := range grid.Js {
			cell := grid.Cells[i][j]
			if cell.Err != nil {
				fmt.Fprint(w, "\tERR")
				continue
			}
			fmt.Fprintf(w, "\t%s %.2f", regimeAbbrev[cell.Regime], cell.Coherence)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nSS=sync SA=async PW=phase-wave SPW=splintered APW=active ~=mixed")
	return nil
}

func benchStep(cmd *cobra.Command, args []string) error {
	sizes := []int{50, 100, 200, 400}
	const steps = 200

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AGENTS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		params, err := seed.Build(seed.Spec{Agents: n, Seed: 42, Layout: "disk", K: 1, J: 0.5})
		if err != nil {
			return err
		}
		engine, err := swarm.New(params)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < steps; i++ {
			engine.Update(0.01)
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, steps, elapsed, steps/elapsed.Seconds())
	}
	return w.Flush()
}
