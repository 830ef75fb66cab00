package contact

import (
	"math"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/compute"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/vecmath"
)

// pwInput gathers everything a particle-wall law reads for one pair.
type pwInput struct {
	// RcVector points from the contact point to the particle center.
	RcVector     Vec3
	ContactPoint Vec3
	Vel, AnglVel Vec3
	Radius, Mass float64
	WallNormal   Vec3
	WallVel      Vec3
	RotCenter    Vec3
	RotVel       Vec3
	TangOverlap  Vec3
}

// evalPW is the particle-wall kernel shared by the scalar and batched paths.
// Force and Moment1 act on the particle; the wall receives -Force and Moment2,
// the latter taken about its rotation center.
func evalPW(law normalLaw, params []float64, dt float64, p *dynamo.InteractProps, in *pwInput) pairOutput {
	dRc := in.RcVector.Len()
	overlap := in.Radius - dRc
	if overlap <= 0 {
		return pairOutput{}
	}

	// the true normal faces the particle
	n := in.WallNormal
	nRc := n
	if dRc > vecmath.SignificanceThreshold {
		nRc = in.RcVector.Mul(1 / dRc)
		if n.Dot(nRc) < 0 {
			n = n.Mul(-1)
		}
	}

	wallPointVel := in.WallVel
	if !vecmath.IsZero(in.RotVel) {
		wallPointVel = wallPointVel.Add(in.RotVel.Cross(in.ContactPoint.Sub(in.RotCenter)))
	}
	relVel := in.Vel.Add(nRc.Cross(in.AnglVel).Mul(in.Radius)).Sub(wallPointVel)

	c := evaluateContact(law, params, dt, p, &contactInput{
		Normal:      n,
		RelVel:      relVel,
		Overlap:     overlap,
		Cosine:      math.Abs(nRc.Dot(n)),
		Radius:      in.Radius,
		Mass:        in.Mass,
		TangOverlap: in.TangOverlap,
	})

	total := c.TangForce.Add(n.Mul(c.NormalForce + c.DampingForce))
	out := pairOutput{
		ContactVector: in.ContactPoint,
		TangOverlap:   c.TangOverlap,
		TangForce:     c.TangForce,
		TotalForce:    total,
		Moment1:       n.Cross(c.TangForce).Mul(-in.Radius).Add(rollingTorque(in.AnglVel, p.RollingFriction, c.NormalForce, in.Radius)),
		Moment2:       in.ContactPoint.Sub(in.RotCenter).Cross(total.Mul(-1)),
		NormalOverlap: overlap,
		Slipping:      c.Slipping,
	}
	if !out.valid() {
		return pairOutput{}
	}
	out.InContact = true
	return out
}

type pwModel struct {
	base
}

func newPWModel(info Info, law normalLaw, params ...Parameter) *pwModel {
	return &pwModel{base: newBase(info, collision.ParticleWall, law, params...)}
}

// Calculate evaluates wall src against particle dst. rec.ContactVector must
// hold the contact point found by contact detection.
func (m *pwModel) Calculate(_, dt float64, src, dst int, props dynamo.InteractProps, rec *collision.Record) Result {
	ps, ws := m.particles, m.walls
	coord := m.pbc.Correct(ps.Coord(dst))
	in := pwInput{
		RcVector:     m.pbc.Distance(rec.ContactVector, coord),
		ContactPoint: rec.ContactVector,
		Vel:          ps.Vel(dst),
		AnglVel:      ps.AnglVel(dst),
		Radius:       ps.Radius(dst),
		Mass:         ps.Mass(dst),
		WallNormal:   ws.NormalVector(src),
		WallVel:      ws.Vel(src),
		RotCenter:    ws.RotCenter(src),
		RotVel:       ws.RotVel(src),
		TangOverlap:  rec.TangOverlap,
	}

	out := evalPW(m.law, m.values, dt, &props, &in)
	if !out.InContact {
		return Result{}
	}
	return apply(rec, &out)
}

// ConsolidateSrc applies the reaction on the wall.
func (m *pwModel) ConsolidateSrc(_, _ float64, sink accum.Sink, rec *collision.Record) {
	sink.AddForce(rec.SrcID, rec.TotalForce.Mul(-1))
	sink.AddMoment(rec.SrcID, rec.ResultMoment2)
}

// ConsolidateDst applies the force on the particle.
func (m *pwModel) ConsolidateDst(_, _ float64, sink accum.Sink, rec *collision.Record) {
	sink.AddForce(rec.DstID, rec.TotalForce)
	sink.AddMoment(rec.DstID, rec.ResultMoment1)
}

func (m *pwModel) CalculateBatch(_, dt float64, b *Buffers, backend compute.Backend) {
	ps := &b.Particles
	ws := &b.Walls
	cs := &b.Collisions
	pbc := b.pbc()

	backend.Dispatch(cs.Len(), func(i int) {
		src, dst := cs.Src[i], cs.Dst[i]
		in := pwInput{
			RcVector:     pbc.Distance(cs.ContactVectors[i], pbc.Correct(ps.Coords[dst])),
			ContactPoint: cs.ContactVectors[i],
			Vel:          ps.Vels[dst],
			AnglVel:      ps.AnglVels[dst],
			Radius:       ps.Radii[dst],
			Mass:         ps.Masses[dst],
			WallNormal:   ws.Normals[src],
			WallVel:      ws.Vels[src],
			RotCenter:    ws.RotCenters[src],
			RotVel:       ws.RotVels[src],
			TangOverlap:  cs.TangOverlaps[i],
		}
		out := evalPW(m.law, m.values, dt, &b.Props[cs.Props[i]], &in)
		cs.store(i, &out)
	})
}
