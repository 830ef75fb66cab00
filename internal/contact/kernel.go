package contact

import (
	"math"

	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/vecmath"
)

// dampingFactor is 2*sqrt(5/6), the Tsuji coefficient relating the damping
// ratio to the restitution-derived alpha.
const dampingFactor = 1.8257

// normalLaw returns the elastic (or adhesive) normal force together with the
// normal and tangential stiffness for an overlap. cosine is |n_contact · n_true|
// and is 1 for particle-particle contacts.
type normalLaw func(p *dynamo.InteractProps, params []float64, radius, overlap, cosine float64) (force, kn, kt float64)

// contactInput is the law-independent view of one contact from the side of
// the body being evaluated.
type contactInput struct {
	// Normal is the unit direction in which the normal force pushes the body.
	Normal Vec3
	// RelVel is the body's velocity relative to the other side at the contact point.
	RelVel      Vec3
	Overlap     float64
	Cosine      float64
	Radius      float64
	Mass        float64
	TangOverlap Vec3
}

type contactOutput struct {
	NormalForce  float64
	DampingForce float64
	TangForce    Vec3
	TangOverlap  Vec3
	Slipping     bool
}

// rotateTangOverlap projects the stored overlap onto the plane orthogonal to n
// and restores its original length.
func rotateTangOverlap(old, n Vec3) Vec3 {
	v := old.Sub(n.Mul(n.Dot(old)))
	if vecmath.IsSignificant(v) {
		v = v.Mul(old.Len() / v.Len())
	}
	return v
}

// evaluateContact runs the steps shared by every law: damping, overlap
// rotation and increment, and the Coulomb slip bound.
func evaluateContact(law normalLaw, params []float64, dt float64, p *dynamo.InteractProps, in *contactInput) contactOutput {
	fn, kn, kt := law(p, params, in.Radius, in.Overlap, in.Cosine)

	relVelNormal := in.Normal.Dot(in.RelVel)
	relVelTang := in.RelVel.Sub(in.Normal.Mul(relVelNormal))

	out := contactOutput{
		NormalForce:  fn,
		DampingForce: -dampingFactor * p.Alpha * relVelNormal * math.Sqrt(math.Max(kn, 0)*in.Mass),
	}

	dampingTang := relVelTang.Mul(-dampingFactor * p.Alpha * math.Sqrt(math.Max(kt, 0)*in.Mass))

	overlap := rotateTangOverlap(in.TangOverlap, in.Normal).Add(relVelTang.Mul(dt))
	if kt <= 0 {
		out.TangOverlap = overlap
		return out
	}

	limit := p.SlidingFriction * math.Abs(fn)
	elastic := overlap.Mul(-kt)
	mag := elastic.Len()

	if mag > limit {
		out.TangForce = elastic.Mul(limit / mag)
		out.TangOverlap = out.TangForce.Mul(-1 / kt)
		out.Slipping = true
		return out
	}

	out.TangOverlap = overlap
	out.TangForce = elastic.Add(dampingTang)
	// damping is not stored in the overlap, but the reported force still
	// respects the bound
	if total := out.TangForce.Len(); total > limit {
		out.TangForce = out.TangForce.Mul(limit / total)
		out.Slipping = true
	}
	return out
}

// rollingTorque opposes the spin of a body with magnitude mu*|F|*r.
func rollingTorque(anglVel Vec3, mu, normalForce, radius float64) Vec3 {
	l := anglVel.Len()
	if l <= vecmath.SignificanceThreshold || mu == 0 {
		return Vec3{}
	}
	return anglVel.Mul(-mu * math.Abs(normalForce) * radius / l)
}

func finite(vs ...Vec3) bool {
	for _, v := range vs {
		if !vecmath.IsFinite(v) {
			return false
		}
	}
	return true
}
