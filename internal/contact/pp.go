package contact

import (
	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/compute"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/vecmath"
)

// ppInput gathers everything a particle-particle law reads for one pair.
type ppInput struct {
	// ContactVector points from the source center to the destination center.
	ContactVector Vec3
	Vel1, Vel2    Vec3
	AnglVel1      Vec3
	AnglVel2      Vec3
	Radius1       float64
	Radius2       float64
	Mass1, Mass2  float64
	TangOverlap   Vec3
}

// evalPP is the particle-particle kernel shared by the scalar and batched paths.
// Force and Moment1 act on the source; the destination receives -Force and Moment2.
func evalPP(law normalLaw, params []float64, dt float64, p *dynamo.InteractProps, in *ppInput) pairOutput {
	dist := in.ContactVector.Len()
	overlap := in.Radius1 + in.Radius2 - dist
	if overlap <= 0 || dist <= vecmath.SignificanceThreshold {
		return pairOutput{}
	}

	n := in.ContactVector.Mul(1 / dist)
	push := n.Mul(-1)

	radius := in.Radius1 * in.Radius2 / (in.Radius1 + in.Radius2)
	mass := in.Mass1 * in.Mass2 / (in.Mass1 + in.Mass2)

	v1 := in.Vel1.Add(in.AnglVel1.Cross(n.Mul(in.Radius1)))
	v2 := in.Vel2.Add(in.AnglVel2.Cross(n.Mul(-in.Radius2)))

	c := evaluateContact(law, params, dt, p, &contactInput{
		Normal:      push,
		RelVel:      v1.Sub(v2),
		Overlap:     overlap,
		Cosine:      1,
		Radius:      radius,
		Mass:        mass,
		TangOverlap: in.TangOverlap,
	})

	arm := push.Cross(c.TangForce)
	out := pairOutput{
		ContactVector: in.ContactVector,
		TangOverlap:   c.TangOverlap,
		TangForce:     c.TangForce,
		TotalForce:    c.TangForce.Add(push.Mul(c.NormalForce + c.DampingForce)),
		Moment1:       arm.Mul(-in.Radius1).Add(rollingTorque(in.AnglVel1, p.RollingFriction, c.NormalForce, in.Radius1)),
		Moment2:       arm.Mul(-in.Radius2).Add(rollingTorque(in.AnglVel2, p.RollingFriction, c.NormalForce, in.Radius2)),
		NormalOverlap: overlap,
		Slipping:      c.Slipping,
	}
	if !out.valid() {
		return pairOutput{}
	}
	out.InContact = true
	return out
}

type ppModel struct {
	base
}

func newPPModel(info Info, law normalLaw, params ...Parameter) *ppModel {
	return &ppModel{base: newBase(info, collision.ParticleParticle, law, params...)}
}

func (m *ppModel) Calculate(_, dt float64, src, dst int, props dynamo.InteractProps, rec *collision.Record) Result {
	ps := m.particles
	in := ppInput{
		ContactVector: m.pbc.Distance(m.pbc.Correct(ps.Coord(src)), m.pbc.Correct(ps.Coord(dst))),
		Vel1:          ps.Vel(src),
		Vel2:          ps.Vel(dst),
		AnglVel1:      ps.AnglVel(src),
		AnglVel2:      ps.AnglVel(dst),
		Radius1:       ps.Radius(src),
		Radius2:       ps.Radius(dst),
		Mass1:         ps.Mass(src),
		Mass2:         ps.Mass(dst),
		TangOverlap:   rec.TangOverlap,
	}

	out := evalPP(m.law, m.values, dt, &props, &in)
	if !out.InContact {
		return Result{}
	}
	return apply(rec, &out)
}

func (m *ppModel) ConsolidateSrc(_, _ float64, sink accum.Sink, rec *collision.Record) {
	sink.AddForce(rec.SrcID, rec.TotalForce)
	sink.AddMoment(rec.SrcID, rec.ResultMoment1)
}

func (m *ppModel) ConsolidateDst(_, _ float64, sink accum.Sink, rec *collision.Record) {
	sink.AddForce(rec.DstID, rec.TotalForce.Mul(-1))
	sink.AddMoment(rec.DstID, rec.ResultMoment2)
}

func (m *ppModel) CalculateBatch(_, dt float64, b *Buffers, backend compute.Backend) {
	ps := &b.Particles
	cs := &b.Collisions
	pbc := b.pbc()

	backend.Dispatch(cs.Len(), func(i int) {
		src, dst := cs.Src[i], cs.Dst[i]
		in := ppInput{
			ContactVector: pbc.Distance(pbc.Correct(ps.Coords[src]), pbc.Correct(ps.Coords[dst])),
			Vel1:          ps.Vels[src],
			Vel2:          ps.Vels[dst],
			AnglVel1:      ps.AnglVels[src],
			AnglVel2:      ps.AnglVels[dst],
			Radius1:       ps.Radii[src],
			Radius2:       ps.Radii[dst],
			Mass1:         ps.Masses[src],
			Mass2:         ps.Masses[dst],
			TangOverlap:   cs.TangOverlaps[i],
		}
		out := evalPP(m.law, m.values, dt, &b.Props[cs.Props[i]], &in)
		cs.store(i, &out)
	})
}
