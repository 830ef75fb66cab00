package collision

import "github.com/san-kum/demsim/internal/vecmath"

type Vec3 = vecmath.Vec3

// Kind tells which entities a record connects.
type Kind int

const (
	// ParticleParticle records have SrcID and DstID as particle indices.
	ParticleParticle Kind = iota
	// ParticleWall records have SrcID as wall index and DstID as particle index.
	ParticleWall
)

func (k Kind) String() string {
	switch k {
	case ParticleParticle:
		return "pp"
	case ParticleWall:
		return "pw"
	default:
		return "unknown"
	}
}

// Record is the persistent state of one contact pair.
type Record struct {
	Kind  Kind
	SrcID int
	DstID int

	// ContactVector is the vector between particle centers for PP contacts
	// and the world-space contact point for PW contacts.
	ContactVector Vec3
	TangOverlap   Vec3
	TangForce     Vec3
	TotalForce    Vec3
	// ResultMoment1 acts on the source, ResultMoment2 on the destination.
	ResultMoment1 Vec3
	ResultMoment2 Vec3

	NormalOverlap float64
	// Slipping is set when the last evaluation clamped the tangential force.
	Slipping bool
	Active   bool
}

// ClearOutputs zeroes the force and moment produced by the last evaluation.
func (r *Record) ClearOutputs() {
	r.TotalForce = Vec3{}
	r.ResultMoment1 = Vec3{}
	r.ResultMoment2 = Vec3{}
	r.Slipping = false
}

// Release clears the path-dependent state of a pair that is still tracked
// but no longer overlapping, so a later touch starts without history.
func (r *Record) Release() {
	r.TangOverlap = Vec3{}
	r.TangForce = Vec3{}
	r.NormalOverlap = 0
	r.ClearOutputs()
}

// Reset clears all path-dependent state. It is called when contact is lost.
func (r *Record) Reset() {
	r.Release()
	r.Active = false
}
