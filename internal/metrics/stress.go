package metrics

import (
	"math"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/sim"
	"github.com/san-kum/demsim/internal/vecmath"
)

// PrincipalStress is the largest principal value of the contact stress
// tensor averaged over the solid volume of all particles:
//
//	sigma = 1/V * sum over particle pairs of l (x) f
//
// where l joins the two centers and f is the force on the second particle.
// Compression is positive.
type PrincipalStress struct {
	value  float64
	tensor vecmath.Mat3
}

func NewPrincipalStress() *PrincipalStress { return &PrincipalStress{} }

func (p *PrincipalStress) Name() string { return "principal_stress" }

func (p *PrincipalStress) Observe(s *sim.Snapshot) {
	ps := s.Particles
	var volume float64
	for _, r := range ps.Radii {
		volume += 4.0 / 3.0 * math.Pi * r * r * r
	}

	var sigma vecmath.Mat3
	s.Arena.Each(func(_ collision.ID, r *collision.Record) {
		if r.Kind != collision.ParticleParticle {
			return
		}
		branch := ps.Coords[r.DstID].Sub(ps.Coords[r.SrcID])
		sigma = sigma.Add(vecmath.OuterProduct(branch, r.TotalForce.Mul(-1)))
	})

	p.tensor, p.value = vecmath.Mat3{}, 0
	if volume == 0 {
		return
	}
	p.tensor = sigma.Mul(1 / volume)
	p.value = vecmath.PrincipalStresses(p.tensor)[0]
}

// Tensor returns the stress tensor of the last observation.
func (p *PrincipalStress) Tensor() vecmath.Mat3 { return p.tensor }

func (p *PrincipalStress) Value() float64 { return p.value }
func (p *PrincipalStress) Reset()         { p.value, p.tensor = 0, vecmath.Mat3{} }
