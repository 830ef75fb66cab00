package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/sim"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

func snapshot() *sim.Snapshot {
	ps := scene.NewParticleStore(2)
	ps.Add(Vec3{}, Vec3{2, 0, 0}, Vec3{}, 0.1, 1, "p")
	ps.Add(Vec3{0.19, 0, 0}, Vec3{}, Vec3{0, 0, 10}, 0.1, 1, "p")

	arena := collision.NewArena()
	_, rec := arena.Create(collision.ParticleParticle, 0, 1)
	rec.NormalOverlap = 0.01
	rec.Slipping = true
	_, rec = arena.Create(collision.ParticleWall, 0, 1)
	rec.NormalOverlap = 0.002

	return &sim.Snapshot{Particles: ps, Arena: arena, WallForce: Vec3{0, 3, -4}}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(snapshot())

	// 0.5*1*4 + 0.5*(0.4*1*0.01)*100
	if want := 2.0 + 0.2; math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %g, got %g", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDissipation(t *testing.T) {
	m := NewEnergyDissipation()
	s := snapshot()
	m.Observe(s)
	s.Particles.Vels[0] = Vec3{}
	m.Observe(s)
	if want := 1 - 0.2/2.2; math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %g, got %g", want, m.Value())
	}
}

func TestContactMetrics(t *testing.T) {
	s := snapshot()
	tests := []struct {
		metric sim.Metric
		want   float64
	}{
		{NewContactCount(), 2},
		{NewMaxOverlap(), 0.1},
		{NewSlipFraction(), 0.5},
		{NewWallForce(), 5},
	}
	for _, tc := range tests {
		tc.metric.Observe(s)
		if math.Abs(tc.metric.Value()-tc.want) > 1e-12 {
			t.Errorf("%s: expected %g, got %g", tc.metric.Name(), tc.want, tc.metric.Value())
		}
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1)
	s := snapshot()
	m.Observe(s)
	s.Particles.Vels[0] = Vec3{0.5, 0, 0}
	m.Observe(s)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %g", m.Value())
	}
}

func TestPrincipalStress(t *testing.T) {
	s := snapshot()
	id, _ := s.Arena.Find(collision.ParticleParticle, 0, 1)
	// repulsion: the source is pushed back along -x
	s.Arena.Get(id).TotalForce = Vec3{-5, 0, 0}

	m := NewPrincipalStress()
	m.Observe(s)

	volume := 2 * 4.0 / 3.0 * math.Pi * 0.001
	want := 0.19 * 5 / volume
	if math.Abs(m.Value()-want) > 1e-9*want {
		t.Errorf("expected %g, got %g", want, m.Value())
	}
	if m.Tensor().At(1, 1) != 0 || m.Tensor().At(0, 1) != 0 {
		t.Errorf("only the xx component should be loaded: %v", m.Tensor())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}
