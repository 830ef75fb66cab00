// Package sim drives a DEM scene: per step it updates moving walls, refreshes
// contacts, evaluates every contact law, consolidates the forces and
// integrates the particles.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/compute"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/detect"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

// minPairChunk is the smallest number of pairs evaluated per goroutine.
const minPairChunk = 32

type Simulator struct {
	world      *World
	integrator Integrator
	models     []contact.Model
	detector   *detect.Detector
	backend    compute.Backend
	arena      *collision.Arena
	cfg        Config

	particleAcc accum.Accumulator
	wallAcc     accum.Accumulator

	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New binds the models to the world. At most one model per collision kind is used.
func New(world *World, integrator Integrator, cfg Config, models ...contact.Model) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if world.PBC == nil {
		world.PBC = dynamo.NoPBC{}
	}
	if world.Walls == nil {
		world.Walls = scene.NewWallStore()
	}

	seen := make(map[collision.Kind]string)
	for _, m := range models {
		if prev, ok := seen[m.Kind()]; ok {
			return nil, fmt.Errorf("models %s and %s both handle %s contacts: %w", prev, m.Info().Name, m.Kind(), dynamo.ErrInvalidParameter)
		}
		seen[m.Kind()] = m.Info().Name
		m.SetSystem(world.Particles, world.Walls, world.PBC)
	}

	s := &Simulator{
		world:       world,
		integrator:  integrator,
		models:      models,
		arena:       collision.NewArena(),
		cfg:         cfg,
		backend:     compute.NewCPUBackendWorkers(cfg.Workers),
		particleAcc: accum.New(cfg.Consolidation, world.Particles.Len(), cfg.Workers),
		wallAcc:     accum.New(cfg.Consolidation, wallCount(world), cfg.Workers),
		logger:      slog.New(slog.DiscardHandler),
	}
	s.detector = detect.New(cfg.Workers, s.logger)
	return s, nil
}

func wallCount(w *World) int {
	if w.Walls == nil {
		return 0
	}
	return w.Walls.Len()
}

func validateConfig(cfg Config) error {
	if cfg.TimeStep <= 0 {
		return fmt.Errorf("time step must be positive, got %g: %w", cfg.TimeStep, dynamo.ErrInvalidParameter)
	}
	if cfg.EndTime <= 0 {
		return fmt.Errorf("end time must be positive, got %g: %w", cfg.EndTime, dynamo.ErrInvalidParameter)
	}
	if cfg.Mode != ModeScalar && cfg.Mode != ModeBatched {
		return fmt.Errorf("unknown mode %q: %w", cfg.Mode, dynamo.ErrInvalidParameter)
	}
	if cfg.Consolidation != accum.ModeAtomic && cfg.Consolidation != accum.ModeReduction {
		return fmt.Errorf("unknown consolidation %q: %w", cfg.Consolidation, dynamo.ErrInvalidParameter)
	}
	return nil
}

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	s.logger = l
	margin := s.detector.Margin
	s.detector = detect.New(s.cfg.Workers, l)
	s.detector.Margin = margin
}

// SetBackend replaces the executor of the batched path.
func (s *Simulator) SetBackend(b compute.Backend) { s.backend = b }

func (s *Simulator) Backend() compute.Backend { return s.backend }

func (s *Simulator) SetContactMargin(m float64) { s.detector.Margin = m }

func (s *Simulator) AddMetric(m Metric)                { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)            { s.observers = append(s.observers, o) }
func (s *Simulator) Arena() *collision.Arena           { return s.arena }
func (s *Simulator) ParticleForces() accum.Accumulator { return s.particleAcc }

// Run advances the world until EndTime. The context is checked between steps only.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	dt := s.cfg.TimeStep
	steps := int(math.Round(s.cfg.EndTime / dt))
	saveEvery := max(1, int(math.Round(s.cfg.SaveStep/dt)))

	result := &Result{
		Times:   make([]float64, 0, steps/saveEvery+1),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("run started",
		"particles", s.world.Particles.Len(),
		"walls", wallCount(s.world),
		"steps", steps,
		"mode", s.cfg.Mode,
		"backend", s.backend.Name(),
		"consolidation", s.cfg.Consolidation)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		t := float64(i) * dt
		snap, err := s.Step(t, dt)
		if err != nil {
			var se dynamo.SimError
			if errors.As(err, &se) {
				se.Step = i
				err = se
			}
			result.Errors = append(result.Errors, err)
			return result, err
		}
		snap.Step = i
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(snap)
		}
		for _, o := range s.observers {
			o.OnStep(snap)
		}

		if (i+1)%saveEvery == 0 || i == steps-1 {
			result.Times = append(result.Times, snap.Time)
			for _, m := range s.metrics {
				result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
			}
			s.logger.Debug("saved", "t", snap.Time, "pp", snap.Contacts.ParticleParticle, "pw", snap.Contacts.ParticleWall)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Info("run finished", "steps", result.StepsTaken, "contacts", s.arena.Len())
	return result, nil
}

// Step performs one full time step starting at t.
func (s *Simulator) Step(t, dt float64) (*Snapshot, error) {
	w := s.world
	for gi, g := range w.Geometries {
		if !g.Motion.IsEmpty() {
			w.Walls.ReplaceGeometry(gi, g.Walls(t, gi))
		}
	}

	stats := s.detector.Update(w.Particles, w.Walls, w.PBC, s.arena)

	s.particleAcc.Reset(w.Particles.Len())
	s.wallAcc.Reset(wallCount(w))

	for _, m := range s.models {
		if err := s.evaluate(m, t, dt); err != nil {
			return nil, err
		}
	}
	s.particleAcc.Finish()
	s.wallAcc.Finish()

	s.integrator.Step(w.Particles, s.particleAcc, w.Gravity, dt)

	if s.cfg.ValidateState {
		if i, ok := firstInvalid(w); ok {
			return nil, dynamo.SimError{Time: t + dt, Message: fmt.Sprintf("particle %d", i), Err: dynamo.ErrInvalidState}
		}
	}

	var wallForce Vec3
	for i := 0; i < s.wallAcc.Len(); i++ {
		wallForce = wallForce.Add(s.wallAcc.Force(i))
	}
	return &Snapshot{
		Time:      t + dt,
		Particles: w.Particles,
		Walls:     w.Walls,
		Arena:     s.arena,
		Contacts:  stats,
		WallForce: wallForce,
	}, nil
}

// evaluate runs one pass of m over the live records of its kind and
// consolidates the pairs that were in contact.
func (s *Simulator) evaluate(m contact.Model, t, dt float64) error {
	w := s.world
	kind := m.Kind()
	if kind == collision.ParticleWall && wallCount(w) == 0 {
		return nil
	}

	var ids []collision.ID
	var inContact []bool

	switch s.cfg.Mode {
	case ModeBatched:
		b, err := contact.Flatten(w.Particles, w.Walls, w.PBC, s.arena, kind, w.Interactions)
		if err != nil {
			return err
		}
		m.CalculateBatch(t, dt, b, s.backend)
		b.Scatter(s.arena)
		ids, inContact = b.Collisions.IDs, b.Collisions.InContact

	default:
		ids = s.arena.Active(kind)
		props, err := s.lookupProps(kind, ids)
		if err != nil {
			return err
		}
		inContact = make([]bool, len(ids))
		dynamo.ParallelFor(len(ids), s.cfg.Workers, minPairChunk, func(_, start, end int) {
			for i := start; i < end; i++ {
				rec := s.arena.Get(ids[i])
				inContact[i] = m.Calculate(t, dt, rec.SrcID, rec.DstID, props[i], rec).InContact
			}
		})
	}

	src := s.particleAcc
	if kind == collision.ParticleWall {
		src = s.wallAcc
	}
	contact.Consolidate(m, t, dt, s.arena, ids, inContact, src, s.particleAcc, s.cfg.Workers)

	// pairs kept alive by the contact margin lose their history once apart
	for i, id := range ids {
		if !inContact[i] {
			if rec := s.arena.Get(id); rec != nil {
				rec.Release()
			}
		}
	}
	return nil
}

func (s *Simulator) lookupProps(kind collision.Kind, ids []collision.ID) ([]dynamo.InteractProps, error) {
	w := s.world
	props := make([]dynamo.InteractProps, len(ids))
	for i, id := range ids {
		rec := s.arena.Get(id)
		matA := w.Particles.Material(rec.SrcID)
		if kind == collision.ParticleWall {
			matA = w.Walls.Material(rec.SrcID)
		}
		p, err := w.Interactions.Interaction(matA, w.Particles.Material(rec.DstID))
		if err != nil {
			return nil, err
		}
		props[i] = p
	}
	return props, nil
}

func firstInvalid(w *World) (int, bool) {
	ps := w.Particles
	for i := range ps.Coords {
		if !vecmath.IsFinite(ps.Coords[i]) || !vecmath.IsFinite(ps.Vels[i]) || !vecmath.IsFinite(ps.AnglVels[i]) {
			return i, true
		}
	}
	return 0, false
}
