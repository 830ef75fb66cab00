package metrics

import (
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/sim"
)

// ContactCount is the number of live collision records.
type ContactCount struct {
	value float64
}

func NewContactCount() *ContactCount { return &ContactCount{} }

func (c *ContactCount) Name() string            { return "contacts" }
func (c *ContactCount) Observe(s *sim.Snapshot) { c.value = float64(s.Arena.Len()) }
func (c *ContactCount) Value() float64          { return c.value }
func (c *ContactCount) Reset()                  { c.value = 0 }

// MaxOverlap is the largest normal overlap relative to the smallest radius
// seen over the run.
type MaxOverlap struct {
	value float64
}

func NewMaxOverlap() *MaxOverlap { return &MaxOverlap{} }

func (m *MaxOverlap) Name() string { return "max_overlap" }

func (m *MaxOverlap) Observe(s *sim.Snapshot) {
	ps := s.Particles
	s.Arena.Each(func(_ collision.ID, r *collision.Record) {
		radius := ps.Radii[r.DstID]
		if r.Kind == collision.ParticleParticle {
			radius = min(radius, ps.Radii[r.SrcID])
		}
		if radius > 0 {
			m.value = max(m.value, r.NormalOverlap/radius)
		}
	})
}

func (m *MaxOverlap) Value() float64 { return m.value }
func (m *MaxOverlap) Reset()         { m.value = 0 }

// SlipFraction is the share of live contacts whose tangential force sat on
// the Coulomb bound in the last step.
type SlipFraction struct {
	value float64
}

func NewSlipFraction() *SlipFraction { return &SlipFraction{} }

func (f *SlipFraction) Name() string { return "slip_fraction" }

func (f *SlipFraction) Observe(s *sim.Snapshot) {
	var total, slipping int
	s.Arena.Each(func(_ collision.ID, r *collision.Record) {
		total++
		if r.Slipping {
			slipping++
		}
	})
	f.value = 0
	if total > 0 {
		f.value = float64(slipping) / float64(total)
	}
}

func (f *SlipFraction) Value() float64 { return f.value }
func (f *SlipFraction) Reset()         { f.value = 0 }

// WallForce is the magnitude of the total load on all walls.
type WallForce struct {
	value float64
}

func NewWallForce() *WallForce { return &WallForce{} }

func (w *WallForce) Name() string            { return "wall_force" }
func (w *WallForce) Observe(s *sim.Snapshot) { w.value = s.WallForce.Len() }
func (w *WallForce) Value() float64          { return w.value }
func (w *WallForce) Reset()                  { w.value = 0 }

// Defaults returns the metrics recorded by every run.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDissipation(),
		NewContactCount(),
		NewMaxOverlap(),
		NewSlipFraction(),
		NewWallForce(),
		NewPrincipalStress(),
		NewStability(100),
	}
}
