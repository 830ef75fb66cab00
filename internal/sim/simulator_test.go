package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/geometry"
	"github.com/san-kum/demsim/internal/integrators"
	"github.com/san-kum/demsim/internal/scene"
)

func testTable() *scene.InteractionTable {
	t := scene.NewInteractionTable()
	p := dynamo.InteractProps{
		EquivYoungModulus: 1e7,
		EquivShearModulus: 4e6,
		Alpha:             0.1,
		SlidingFriction:   0.3,
		RollingFriction:   0.01,
	}
	t.Set("p", "p", p)
	t.Set("p", "w", p)
	return t
}

func headOn() *World {
	ps := scene.NewParticleStore(2)
	ps.Add(Vec3{0, 0, 0}, Vec3{0.5, 0.1, 0}, Vec3{0, 0, 3}, 0.01, 0.01, "p")
	ps.Add(Vec3{0.0205, 0.001, 0}, Vec3{-0.5, 0, 0}, Vec3{}, 0.01, 0.02, "p")
	return &World{Particles: ps, Interactions: testTable()}
}

func floorWorld(n int) *World {
	ps := scene.NewParticleStore(n)
	for i := 0; i < n; i++ {
		ps.Add(Vec3{float64(i) * 0.0199, 0, 0.0105}, Vec3{0.01 * float64(i%3), 0, 0}, Vec3{}, 0.01, 0.01, "p")
	}
	ws := scene.NewWallStore()
	ws.Add(scene.NewFacet(Vec3{-1, -1, 0}, Vec3{2, -1, 0}, Vec3{-1, 2, 0}, "w"))
	ws.Add(scene.NewFacet(Vec3{2, -1, 0}, Vec3{2, 2, 0}, Vec3{-1, 2, 0}, "w"))
	return &World{Particles: ps, Walls: ws, Gravity: Vec3{0, 0, -9.81}, Interactions: testTable()}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TimeStep = 1e-6
	cfg.EndTime = 2e-3
	cfg.SaveStep = 1e-4
	cfg.Workers = 2
	return cfg
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string        { return "count" }
func (c *countingMetric) Observe(_ *Snapshot) { c.n++ }
func (c *countingMetric) Value() float64      { return float64(c.n) }
func (c *countingMetric) Reset()              { c.n = 0 }

func TestMomentumConserved(t *testing.T) {
	w := headOn()
	momentum := func() Vec3 {
		var p Vec3
		for i := range w.Particles.Vels {
			p = p.Add(w.Particles.Vels[i].Mul(w.Particles.Masses[i]))
		}
		return p
	}
	before := momentum()

	s, err := New(w, integrators.NewLeapfrog(), testConfig(), contact.NewPPHertzMindlin())
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 2000 {
		t.Errorf("steps = %d", res.StepsTaken)
	}
	if d := momentum().Sub(before).Len(); d > 1e-12 {
		t.Errorf("momentum drift %g", d)
	}
	// the pair collided and bounced
	if w.Particles.Vels[0][0] >= 0.5 {
		t.Errorf("no collision happened: v0 = %v", w.Particles.Vels[0])
	}
}

func TestScalarAndBatchedRunsAgree(t *testing.T) {
	run := func(mode Mode) *World {
		w := floorWorld(12)
		cfg := testConfig()
		cfg.Mode = mode
		cfg.Consolidation = accum.ModeReduction
		s, err := New(w, integrators.NewLeapfrog(), cfg, contact.NewPPHertzMindlin(), contact.NewPWPopovJKR())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return w
	}

	a, b := run(ModeScalar), run(ModeBatched)
	for i := range a.Particles.Coords {
		if a.Particles.Coords[i] != b.Particles.Coords[i] || a.Particles.Vels[i] != b.Particles.Vels[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, a.Particles.Coords[i], b.Particles.Coords[i])
		}
	}
}

func TestWallsCarryLoad(t *testing.T) {
	w := floorWorld(3)
	for i := range w.Particles.Coords {
		w.Particles.Coords[i][2] = 0.0095
	}
	s, err := New(w, integrators.NewLeapfrog(), testConfig(), contact.NewPWHertzMindlin())
	if err != nil {
		t.Fatal(err)
	}
	snap, err := s.Step(0, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Contacts.ParticleWall != 3 {
		t.Errorf("wall contacts = %d", snap.Contacts.ParticleWall)
	}
	if snap.WallForce[2] >= 0 {
		t.Errorf("particles should press the floor down, got %v", snap.WallForce)
	}
	var up float64
	for i := 0; i < w.Particles.Len(); i++ {
		up += s.ParticleForces().Force(i)[2]
	}
	if math.Abs(up+snap.WallForce[2]) > 1e-9 {
		t.Errorf("action %g and reaction %g differ", up, snap.WallForce[2])
	}
}

func TestMarginKeepsNoHistoryAcrossSeparation(t *testing.T) {
	for _, mode := range []Mode{ModeScalar, ModeBatched} {
		t.Run(string(mode), func(t *testing.T) {
			w := floorWorld(1)
			w.Gravity = Vec3{}
			ps := w.Particles
			ps.Coords[0] = Vec3{0, 0, 0.0095}
			ps.Vels[0] = Vec3{0.1, 0, 0}

			cfg := testConfig()
			cfg.Mode = mode
			s, err := New(w, integrators.NewEuler(), cfg, contact.NewPWHertzMindlin())
			if err != nil {
				t.Fatal(err)
			}
			s.SetContactMargin(1e-3)

			step := func() *collision.Record {
				t.Helper()
				if _, err := s.Step(0, 1e-6); err != nil {
					t.Fatal(err)
				}
				id, ok := s.Arena().Find(collision.ParticleWall, 0, 0)
				if !ok {
					t.Fatal("wall record dropped inside the margin")
				}
				return s.Arena().Get(id)
			}

			for i := 0; i < 5; i++ {
				step()
			}
			if rec := step(); rec.TangForce == (Vec3{}) {
				t.Fatal("sliding contact built no tangential force")
			}

			// lift clear of the floor but stay within the margin
			ps.Coords[0][2] = 0.0105
			if rec := step(); rec.TangOverlap != (Vec3{}) || rec.TangForce != (Vec3{}) {
				t.Errorf("separated pair kept history: overlap %v force %v", rec.TangOverlap, rec.TangForce)
			}

			// touch down with no tangential motion
			ps.Coords[0][2] = 0.0095
			ps.Vels[0] = Vec3{}
			ps.AnglVels[0] = Vec3{}
			if rec := step(); rec.TangForce != (Vec3{}) {
				t.Errorf("re-contact tangential force = %v, want zero", rec.TangForce)
			}
		})
	}
}

func TestMovingGeometryUpdatesWalls(t *testing.T) {
	g, err := geometry.New("lid", geometry.Box, geometry.Sizes{Width: 1, Depth: 1, Height: 0.1}, Vec3{0, 0, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	g.Material = "w"
	g.Motion = geometry.Motion{Intervals: []geometry.Interval{{TimeBeg: 0, TimeEnd: 1, Velocity: Vec3{0, 0, -1}}}}

	ws := scene.NewWallStore()
	for _, f := range g.Walls(0, 0) {
		ws.Add(f)
	}
	w := &World{Particles: scene.NewParticleStore(0), Walls: ws, Geometries: []*geometry.Geometry{g}, Interactions: testTable()}
	s, err := New(w, integrators.NewEuler(), testConfig(), contact.NewPWHertzMindlin())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Step(0.5, 1e-6); err != nil {
		t.Fatal(err)
	}
	if want := g.BoundingBox(0.5).Max[2]; math.Abs(want-0.55) > 1e-12 {
		t.Fatalf("lid top = %g", want)
	}
	for _, f := range ws.Facets {
		if f.Vel != (Vec3{0, 0, -1}) {
			t.Fatalf("facet velocity %v", f.Vel)
		}
	}
}

func TestRunSamplesMetrics(t *testing.T) {
	s, err := New(headOn(), integrators.NewEuler(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	m := &countingMetric{}
	s.AddMetric(m)
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Times) != 20 || len(res.Series["count"]) != 20 {
		t.Errorf("samples: %d times, %d values", len(res.Times), len(res.Series["count"]))
	}
	if res.Metrics["count"] != 2000 {
		t.Errorf("final count = %g", res.Metrics["count"])
	}
}

func TestRunCanceled(t *testing.T) {
	s, err := New(headOn(), integrators.NewEuler(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx)
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if res.StepsTaken != 0 {
		t.Errorf("steps = %d", res.StepsTaken)
	}
}

func TestInvalidStateStopsRun(t *testing.T) {
	w := headOn()
	w.Particles.Vels[1] = Vec3{math.NaN(), 0, 0}
	s, err := New(w, integrators.NewEuler(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Run(context.Background())
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	var se dynamo.SimError
	if !errors.As(err, &se) || se.Step != 0 {
		t.Errorf("error location: %+v", se)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]func(*Config){
		"zero step":         func(c *Config) { c.TimeStep = 0 },
		"negative end":      func(c *Config) { c.EndTime = -1 },
		"bad mode":          func(c *Config) { c.Mode = "gpu" },
		"bad consolidation": func(c *Config) { c.Consolidation = "locks" },
	}
	for name, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		if _, err := New(headOn(), integrators.NewEuler(), cfg); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}

	_, err := New(headOn(), integrators.NewEuler(), testConfig(), contact.NewPPHertzMindlin(), contact.NewPPPopovJKR())
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("duplicate kind accepted: %v", err)
	}
}
