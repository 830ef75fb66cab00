package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/config"
	"github.com/san-kum/demsim/internal/experiment"
	"github.com/san-kum/demsim/internal/export"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/sim"
	"github.com/san-kum/demsim/internal/storage"
	"github.com/san-kum/demsim/internal/store"
	"github.com/san-kum/demsim/internal/tui"
	"github.com/san-kum/demsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile    string
	dt            float64
	endTime       float64
	saveStep      float64
	workers       int
	integrator    string
	mode          string
	consolidation string
	backend       string
	live          bool
	noSave        bool
	snapshotOut   string
	resumeFrom    string
	viewPlane     string

	metricName string
	format     string
	outFile    string

	benchSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "demsim",
		Short:        "discrete element contact simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".demsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a preset or a scene file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultTimeStep, "time step [s]")
	runCmd.Flags().Float64Var(&endTime, "time", config.DefaultEndTime, "simulated time [s]")
	runCmd.Flags().Float64Var(&saveStep, "save-step", config.DefaultSaveStep, "sampling interval [s]")
	runCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "worker goroutines")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	runCmd.Flags().StringVar(&mode, "mode", config.DefaultMode, "contact evaluation path (scalar, batched)")
	runCmd.Flags().StringVar(&consolidation, "consolidation", string(accum.ModeAtomic), "force accumulation (atomic, reduction)")
	runCmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "batched backend (auto, cpu, serial, cuda)")
	runCmd.Flags().BoolVar(&live, "live", false, "show progress in the terminal")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&snapshotOut, "snapshot", "", "write the final particles and contacts to this file")
	runCmd.Flags().StringVar(&resumeFrom, "resume", "", "start from a snapshot of the same scene")
	runCmd.Flags().StringVar(&viewPlane, "plane", "xz", "projection plane of the live view")

	initCmd := &cobra.Command{
		Use:   "init [preset] [file]",
		Short: "write a preset as an editable scene file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			return config.Save(args[1], cfg)
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list contact models and their parameters",
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(config.Presets))
			for _, name := range config.ListPresets() {
				rows = append(rows, []string{name, config.Presets[name].Description})
			}
			fmt.Println(viz.Table([]string{"PRESET", "DESCRIPTION"}, rows))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metricName, "metric", "", "plot only this metric")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata (json) or a metric series (svg)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json or svg")
	exportCmd.Flags().StringVar(&metricName, "metric", "kinetic_energy", "series for svg output")
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	renderCmd := &cobra.Command{
		Use:   "render [snapshot]",
		Short: "render a snapshot as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSnapshot,
	}
	renderCmd.Flags().StringVar(&viewPlane, "plane", "xz", "projection plane")
	renderCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	contactCmd := &cobra.Command{
		Use:   "contact [model]",
		Short: "evaluate one particle against a floor",
		Args:  cobra.ExactArgs(1),
		RunE:  evaluateContact,
	}
	contactCmd.Flags().Float64("overlap", 1e-5, "normal overlap [m]")
	contactCmd.Flags().Float64("radius", 5e-3, "particle radius [m]")
	contactCmd.Flags().Float64("density", 2500, "particle density [kg/m3]")
	contactCmd.Flags().Float64("young", 1e8, "young modulus of both bodies [Pa]")
	contactCmd.Flags().Float64("poisson", 0.25, "poisson ratio of both bodies")
	contactCmd.Flags().Float64("surface-tension", 0, "surface tension of both bodies [J/m2]")
	contactCmd.Flags().Float64("restitution", 0.5, "restitution coefficient")
	contactCmd.Flags().Float64("friction", 0.3, "sliding friction")
	contactCmd.Flags().Float64("vn", -0.1, "normal velocity of the particle [m/s]")
	contactCmd.Flags().Float64("vt", 0, "tangential velocity of the particle [m/s]")
	contactCmd.Flags().Float64Var(&dt, "dt", config.DefaultTimeStep, "time step [s]")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "compare evaluation paths on a preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchPaths,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 500, "steps per configuration")

	rootCmd.AddCommand(runCmd, initCmd, modelsCmd, presetsCmd, listCmd, plotCmd, exportCmd, renderCmd, contactCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadScene resolves the scene from --config or a preset name and applies
// the flags the user set explicitly on top of it.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		name string
	)
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, name = c, configFile
	default:
		name = "settle"
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	s := &cfg.Simulation
	flags := cmd.Flags()
	if flags.Changed("dt") {
		s.TimeStep = dt
	}
	if flags.Changed("time") {
		s.EndTime = endTime
	}
	if flags.Changed("save-step") {
		s.SaveStep = saveStep
	}
	if flags.Changed("workers") {
		s.Workers = workers
	}
	if flags.Changed("integrator") {
		s.Integrator = integrator
	}
	if flags.Changed("mode") {
		s.Mode = mode
	}
	if flags.Changed("consolidation") {
		s.Consolidation = accum.Mode(consolidation)
	}
	if flags.Changed("backend") {
		s.Backend = backend
	}
	return cfg, name, nil
}

func parsePlane(p string) (int, int, error) {
	axis := func(r byte) (int, error) {
		switch r {
		case 'x':
			return 0, nil
		case 'y':
			return 1, nil
		case 'z':
			return 2, nil
		}
		return 0, fmt.Errorf("bad axis %q", r)
	}
	if len(p) != 2 || p[0] == p[1] {
		return 0, 0, fmt.Errorf("plane must name two different axes, got %q", p)
	}
	u, err := axis(p[0])
	if err != nil {
		return 0, 0, err
	}
	v, err := axis(p[1])
	return u, v, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, name, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	metrics := registry.DefaultMetrics()
	exp := experiment.New(cfg, registry, logger)
	if err := exp.Setup(metrics); err != nil {
		return err
	}
	if resumeFrom != "" {
		snap, err := store.Load(resumeFrom)
		if err != nil {
			return err
		}
		if err := exp.Resume(snap); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "scene", name,
		"particles", exp.World().Particles.Len(), "walls", exp.World().Walls.Len(),
		"dt", cfg.Simulation.TimeStep, "end_time", cfg.Simulation.EndTime, "mode", cfg.Simulation.Mode)
	start := time.Now()

	var result *sim.Result
	if live {
		u, v, err := parsePlane(viewPlane)
		if err != nil {
			return err
		}
		result, err = runLive(ctx, name, exp, cfg.Simulation.EndTime, metrics, u, v)
		if err != nil {
			return err
		}
	} else {
		result, err = exp.Run(ctx)
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	if snapshotOut != "" {
		snap := store.Capture(cfg.Simulation.EndTime, result.StepsTaken, exp.World().Particles, exp.GetSimulator().Arena())
		if err := store.Save(snapshotOut, snap); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", snapshotOut, "contacts", len(snap.Collisions))
	}

	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, elapsed.Truncate(time.Millisecond))
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{
			Scene:       name,
			TimeStep:    cfg.Simulation.TimeStep,
			EndTime:     cfg.Simulation.EndTime,
			Integrator:  cfg.Simulation.Integrator,
			Mode:        cfg.Simulation.Mode,
			Particles:   exp.World().Particles.Len(),
			Walls:       exp.World().Walls.Len(),
			ElapsedSecs: elapsed.Seconds(),
		}
		for _, m := range exp.Models() {
			if m.Kind() == collision.ParticleParticle {
				meta.PPModel = m.Info().Name
			} else {
				meta.PWModel = m.Info().Name
			}
		}
		runID, err := st.Save(meta, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)
	return nil
}

func runLive(ctx context.Context, name string, exp *experiment.Experiment, end float64, metrics []sim.Metric, u, v int) (*sim.Result, error) {
	return tui.Run(ctx, name, func(p *tea.Program) (func(context.Context) (*sim.Result, error), error) {
		exp.GetSimulator().AddObserver(tui.NewObserver(p, end, 50*time.Millisecond, metrics, u, v))
		return exp.Run, nil
	})
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.FormatFloat(values[name], 'g', 6, 64)})
	}
	fmt.Println(viz.Table([]string{"METRIC", "FINAL"}, rows))
}

func listModels(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	rows := make([][]string, 0)
	for _, m := range registry.ListModels() {
		params := "-"
		if len(m.Parameters) > 0 {
			params = ""
			for i, p := range m.Parameters {
				if i > 0 {
					params += ", "
				}
				params += fmt.Sprintf("%s=%g", p.Name, p.Default)
			}
		}
		rows = append(rows, []string{m.Kind.String(), m.Name, m.Key, params})
	}
	fmt.Println(viz.Table([]string{"KIND", "NAME", "KEY", "PARAMETERS"}, rows))
	fmt.Printf("integrators: %v\n", registry.ListIntegrators())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.Itoa(run.Particles),
			fmt.Sprintf("%gs", run.EndTime),
			fmt.Sprintf("%g", run.TimeStep),
			run.Mode,
			fmt.Sprintf("%.2fs", run.ElapsedSecs),
		})
	}
	fmt.Println(viz.Table([]string{"ID", "TIME", "PARTICLES", "END", "DT", "MODE", "WALL CLOCK"}, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(times))

	names := make([]string, 0, len(series))
	for name := range series {
		if metricName == "" || name == metricName {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("run %s has no metric %q", runID, metricName)
	}
	sort.Strings(names)

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s over %.3gs", name, times[len(times)-1])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func writeOutput(data []byte) error {
	if outFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outFile, data, 0644)
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	switch format {
	case "json":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(data)
	case "svg":
		times, series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		values, ok := series[metricName]
		if !ok {
			return fmt.Errorf("run %s has no metric %q", runID, metricName)
		}
		return writeOutput([]byte(export.SeriesToSVG(times, values, 800, 300, "#00ccff")))
	}
	return fmt.Errorf("unknown format %q", format)
}

func renderSnapshot(cmd *cobra.Command, args []string) error {
	snap, err := store.Load(args[0])
	if err != nil {
		return err
	}
	u, v, err := parsePlane(viewPlane)
	if err != nil {
		return err
	}
	svg := export.SnapshotToSVG(snap, u, v, 800, true)
	if svg == "" {
		return errors.New("snapshot has no particles")
	}
	return writeOutput([]byte(svg))
}

// evaluateContact places one particle on a floor facet at the requested
// overlap and prints what the chosen law returns for it.
func evaluateContact(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	get := func(name string) float64 {
		v, _ := f.GetFloat64(name)
		return v
	}

	registry := experiment.NewRegistry()
	model, err := registry.GetModel(args[0], collision.ParticleWall)
	if err != nil {
		return err
	}

	table := scene.NewInteractionTable()
	mat := scene.Material{
		Key:            "sample",
		Density:        get("density"),
		YoungModulus:   get("young"),
		PoissonRatio:   get("poisson"),
		SurfaceTension: get("surface-tension"),
	}
	if err := table.AddMaterial(mat); err != nil {
		return err
	}
	if err := table.Combine("sample", "sample", scene.PairFriction{Restitution: get("restitution"), SlidingFriction: get("friction")}); err != nil {
		return err
	}
	props, err := table.Interaction("sample", "sample")
	if err != nil {
		return err
	}

	r := get("radius")
	walls := scene.NewWallStore()
	walls.Add(scene.NewFacet(scene.Vec3{-1, -1, 0}, scene.Vec3{1, -1, 0}, scene.Vec3{0, 1, 0}, "sample"))
	particles := scene.NewParticleStore(1)
	mass := mat.Density * 4.0 / 3.0 * math.Pi * r * r * r
	particles.Add(scene.Vec3{0, 0, r - get("overlap")}, scene.Vec3{get("vt"), 0, get("vn")}, scene.Vec3{}, r, mass, "sample")

	model.SetSystem(particles, walls, nil)
	arena := collision.NewArena()
	_, rec := arena.Create(collision.ParticleWall, 0, 0)
	res := model.Calculate(0, dt, 0, 0, props, rec)

	vec := func(v scene.Vec3) string { return fmt.Sprintf("(%.4g, %.4g, %.4g)", v[0], v[1], v[2]) }
	rows := [][]string{
		{"model", model.Info().Name},
		{"in contact", strconv.FormatBool(res.InContact)},
		{"normal overlap", strconv.FormatFloat(rec.NormalOverlap, 'g', 6, 64)},
		{"force on particle", vec(res.Force)},
		{"tangential force", vec(rec.TangForce)},
		{"moment on particle", vec(res.Moment1)},
		{"moment on wall", vec(res.Moment2)},
		{"slipping", strconv.FormatBool(rec.Slipping)},
	}
	fmt.Println(viz.Table([]string{"QUANTITY", "VALUE"}, rows))
	return nil
}

func benchPaths(cmd *cobra.Command, args []string) error {
	name := "settle"
	if len(args) > 0 {
		name = args[0]
	}
	if config.GetPreset(name) == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	fmt.Printf("benchmarking %s, %d steps per configuration\n\n", name, benchSteps)
	rows := make([][]string, 0, 4)
	for _, m := range []string{string(sim.ModeScalar), string(sim.ModeBatched)} {
		for _, c := range []accum.Mode{accum.ModeAtomic, accum.ModeReduction} {
			cfg := config.GetPreset(name)
			cfg.Simulation.Mode = m
			cfg.Simulation.Consolidation = c
			cfg.Simulation.EndTime = float64(benchSteps) * cfg.Simulation.TimeStep
			cfg.Simulation.SaveStep = cfg.Simulation.EndTime

			exp := experiment.New(cfg, experiment.NewRegistry(), nil)
			if err := exp.Setup(nil); err != nil {
				return err
			}
			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			rows = append(rows, []string{
				m, string(c),
				strconv.Itoa(result.StepsTaken),
				elapsed.Truncate(time.Microsecond).String(),
				fmt.Sprintf("%.0f", float64(result.StepsTaken)/elapsed.Seconds()),
			})
		}
	}
	fmt.Println(viz.Table([]string{"MODE", "CONSOLIDATION", "STEPS", "TIME", "STEPS/SEC"}, rows))
	return nil
}
