// Package experiment turns a scene configuration into a ready simulator.
// Every configuration error surfaces from Setup, before the first step.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/compute"
	"github.com/san-kum/demsim/internal/config"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/geometry"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/sim"
	"github.com/san-kum/demsim/internal/store"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	world     *sim.World
	simulator *sim.Simulator
	models    []contact.Model
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

func setupErr(component string, err error) error {
	return &dynamo.SetupError{Component: component, Wrapped: err}
}

// Setup builds the world and simulator. metrics are attached in order.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return setupErr("config", err)
	}

	table, err := buildInteractions(cfg)
	if err != nil {
		return setupErr("interactions", err)
	}
	e.logger.Debug("interactions", "pairs", table.Pairs())

	particles, err := buildParticles(cfg, table)
	if err != nil {
		return setupErr("particles", err)
	}

	geoms, walls, err := buildGeometries(cfg, table)
	if err != nil {
		return setupErr("geometry", err)
	}

	if err := checkPairs(particles, walls, table); err != nil {
		return setupErr("interactions", err)
	}

	e.world = &sim.World{
		Particles:    particles,
		Walls:        walls,
		Geometries:   geoms,
		PBC:          cfg.PeriodicBox(),
		Gravity:      cfg.Gravity,
		Interactions: table,
	}

	e.models = e.models[:0]
	for _, sel := range []struct {
		kind collision.Kind
		mc   config.ModelConfig
	}{
		{collision.ParticleParticle, cfg.Models.PP},
		{collision.ParticleWall, cfg.Models.PW},
	} {
		if sel.mc.Key == "" {
			continue
		}
		m, err := e.registry.GetModel(sel.mc.Key, sel.kind)
		if err != nil {
			return setupErr("models", err)
		}
		if err := m.SetParameters(sel.mc.Params); err != nil {
			return setupErr("models", err)
		}
		e.logger.Info("contact model", "kind", sel.kind, "name", m.Info().Name, "key", m.Info().Key)
		e.models = append(e.models, m)
	}

	integ, err := e.registry.GetIntegrator(cfg.Simulation.Integrator)
	if err != nil {
		return setupErr("integrator", err)
	}

	simCfg := sim.Config{
		Config:        cfg.DynamoConfig(),
		Mode:          sim.Mode(cfg.Simulation.Mode),
		Consolidation: cfg.Simulation.Consolidation,
	}
	s, err := sim.New(e.world, integ, simCfg, e.models...)
	if err != nil {
		return setupErr("simulation", err)
	}
	s.SetLogger(e.logger)
	s.SetContactMargin(cfg.Simulation.ContactMargin)

	if simCfg.Mode == sim.ModeBatched {
		backend := compute.ByName(cfg.Simulation.Backend, simCfg.Workers)
		if backend == nil {
			return setupErr("simulation", fmt.Errorf("backend %q: %w", cfg.Simulation.Backend, dynamo.ErrInvalidParameter))
		}
		if !backend.Available() {
			e.logger.Warn("backend unavailable, using cpu", "backend", backend.Name())
		}
		s.SetBackend(backend)
	}

	for _, m := range metrics {
		s.AddMetric(m)
	}
	e.simulator = s
	return nil
}

// Resume replaces the particle state with a snapshot of the same scene and
// restores its contacts, so tangential history carries over.
func (e *Experiment) Resume(snap *store.Snapshot) error {
	if e.simulator == nil {
		return fmt.Errorf("experiment not setup")
	}
	if len(snap.Particles) != e.world.Particles.Len() {
		return setupErr("resume", fmt.Errorf("snapshot has %d particles, scene has %d: %w",
			len(snap.Particles), e.world.Particles.Len(), dynamo.ErrInvalidParameter))
	}
	*e.world.Particles = *snap.ParticleStore()
	if err := snap.Restore(e.simulator.Arena(), e.world.Particles.Len(), e.world.Walls.Len()); err != nil {
		return setupErr("resume", err)
	}
	e.logger.Info("resumed", "time", snap.Time, "step", snap.Step, "contacts", len(snap.Collisions))
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx)
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) World() *sim.World { return e.world }

func (e *Experiment) Models() []contact.Model { return e.models }

func buildInteractions(cfg *config.Config) (*scene.InteractionTable, error) {
	table := scene.NewInteractionTable()
	for _, m := range cfg.Materials {
		if err := table.AddMaterial(m); err != nil {
			return nil, err
		}
	}
	for _, ic := range cfg.Interactions {
		if err := table.Combine(ic.A, ic.B, ic.PairFriction); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func particleMass(m scene.Material, radius float64) float64 {
	return m.Density * 4.0 / 3.0 * math.Pi * radius * radius * radius
}

func buildParticles(cfg *config.Config, table *scene.InteractionTable) (*scene.ParticleStore, error) {
	ps := scene.NewParticleStore(cfg.ParticleCount())

	add := func(coord, vel, anglVel vecmath.Vec3, radius float64, material string) error {
		m, ok := table.Material(material)
		if !ok {
			return fmt.Errorf("%s: %w", material, dynamo.ErrUnknownMaterial)
		}
		ps.Add(coord, vel, anglVel, radius, particleMass(m, radius), material)
		return nil
	}

	for _, p := range cfg.Particles {
		if err := add(p.Coord, p.Vel, p.AnglVel, p.Radius, p.Material); err != nil {
			return nil, err
		}
	}

	for _, pk := range cfg.Packings {
		spacing := pk.Spacing
		if spacing == 0 {
			spacing = 2.2 * pk.Radius
		}
		rng := rand.New(rand.NewSource(pk.Seed))
		// jitter never closes the gap between neighbours
		amp := min(pk.Jitter*pk.Radius, 0.45*(spacing-2*pk.Radius))
		for i := 0; i < pk.Count[0]; i++ {
			for j := 0; j < pk.Count[1]; j++ {
				for k := 0; k < pk.Count[2]; k++ {
					c := pk.Origin.Add(vecmath.Vec3{float64(i), float64(j), float64(k)}.Mul(spacing))
					if amp > 0 {
						c = c.Add(vecmath.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}.Mul(2 * amp))
					}
					if err := add(c, pk.Vel, vecmath.Vec3{}, pk.Radius, pk.Material); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return ps, nil
}

func buildGeometries(cfg *config.Config, table *scene.InteractionTable) ([]*geometry.Geometry, *scene.WallStore, error) {
	walls := scene.NewWallStore()
	geoms := make([]*geometry.Geometry, 0, len(cfg.Geometries))
	for gi, gc := range cfg.Geometries {
		if _, ok := table.Material(gc.Material); !ok {
			return nil, nil, fmt.Errorf("geometry %s: %s: %w", gc.Name, gc.Material, dynamo.ErrUnknownMaterial)
		}
		g, err := geometry.New(gc.Name, gc.Shape, gc.Sizes, gc.Center, gc.Accuracy)
		if err != nil {
			return nil, nil, err
		}
		g.Material = gc.Material
		g.Color = gc.Color
		if gc.Scale != 0 {
			if err := g.Scale(gc.Scale); err != nil {
				return nil, nil, fmt.Errorf("geometry %s: %w", gc.Name, err)
			}
		}
		if vecmath.IsSignificant(gc.Rotation) {
			g.Rotate(vecmath.RotationFromVector(gc.Rotation))
		}
		g.Motion = gc.Motion
		if err := g.Motion.Validate(); err != nil {
			return nil, nil, fmt.Errorf("geometry %s: %w", gc.Name, err)
		}
		for _, f := range g.Walls(0, gi) {
			walls.Add(f)
		}
		geoms = append(geoms, g)
	}
	return geoms, walls, nil
}

// checkPairs requires interaction properties for every material pair that can meet.
func checkPairs(ps *scene.ParticleStore, ws *scene.WallStore, table *scene.InteractionTable) error {
	partMats := make(map[string]bool)
	for _, m := range ps.Materials {
		partMats[m] = true
	}
	wallMats := make(map[string]bool)
	for _, f := range ws.Facets {
		wallMats[f.Material] = true
	}

	for a := range partMats {
		for b := range partMats {
			if _, err := table.Interaction(a, b); err != nil {
				return err
			}
		}
		for b := range wallMats {
			if _, err := table.Interaction(a, b); err != nil {
				return err
			}
		}
	}
	return nil
}
