package metrics

import (
	"github.com/san-kum/demsim/internal/sim"
)

// Stability is the fraction of steps in which no particle exceeded the speed
// threshold. Runaway speeds usually mean the time step is too large for the
// contact stiffness.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap *sim.Snapshot) {
	s.samples++
	limit := s.threshold * s.threshold
	for _, v := range snap.Particles.Vels {
		if v.Dot(v) > limit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
