package contact

import (
	"fmt"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/compute"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// Info identifies a contact law for configuration files and listings.
type Info struct {
	Name string `json:"name" yaml:"name"`
	// Key is globally unique and is what configurations persist.
	Key      string `json:"key" yaml:"key"`
	HelpFile string `json:"help_file" yaml:"help_file"`
}

// Parameter is a tunable constant of a law.
type Parameter struct {
	Name        string
	Description string
	Default     float64
	Value       float64
}

// Result is the outcome of one pair evaluation.
type Result struct {
	Force   Vec3
	Moment1 Vec3
	Moment2 Vec3
	// InContact is false when the pair had no positive overlap or degraded to
	// zero; such pairs must not be consolidated.
	InContact bool
}

// Model is a contact law for one interaction kind.
//
// For particle-particle models src and dst are particle indices. For
// particle-wall models src is the wall index and dst the particle index.
type Model interface {
	Info() Info
	Kind() collision.Kind
	Parameters() []Parameter
	// SetParameters updates named parameters. Unknown names and invalid values
	// are configuration errors.
	SetParameters(values map[string]float64) error
	// SetSystem binds the read-only entity views used by the scalar path.
	SetSystem(particles dynamo.Particles, walls dynamo.Walls, pbc dynamo.PBC)

	// Calculate evaluates one pair and writes its outputs into rec.
	Calculate(t, dt float64, src, dst int, props dynamo.InteractProps, rec *collision.Record) Result
	// ConsolidateSrc adds the pair's contribution to the source entity.
	ConsolidateSrc(t, dt float64, sink accum.Sink, rec *collision.Record)
	// ConsolidateDst adds the pair's contribution to the destination entity.
	ConsolidateDst(t, dt float64, sink accum.Sink, rec *collision.Record)

	// CalculateBatch evaluates every collision element of b through backend.
	CalculateBatch(t, dt float64, b *Buffers, backend compute.Backend)
}

type base struct {
	info   Info
	kind   collision.Kind
	law    normalLaw
	params []Parameter
	// values mirrors params[i].Value for the kernels
	values []float64

	particles dynamo.Particles
	walls     dynamo.Walls
	pbc       dynamo.PBC
}

func newBase(info Info, kind collision.Kind, law normalLaw, params ...Parameter) base {
	b := base{info: info, kind: kind, law: law, pbc: dynamo.NoPBC{}}
	for _, p := range params {
		p.Value = p.Default
		b.params = append(b.params, p)
		b.values = append(b.values, p.Default)
	}
	return b
}

func (b *base) Info() Info           { return b.info }
func (b *base) Kind() collision.Kind { return b.kind }

func (b *base) Parameters() []Parameter {
	out := make([]Parameter, len(b.params))
	copy(out, b.params)
	return out
}

func (b *base) SetParameters(values map[string]float64) error {
	for name, v := range values {
		idx := -1
		for i := range b.params {
			if b.params[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%s: unknown parameter %q: %w", b.info.Name, name, dynamo.ErrInvalidParameter)
		}
		if v < 0 {
			return fmt.Errorf("%s: parameter %q must not be negative: %w", b.info.Name, name, dynamo.ErrInvalidParameter)
		}
		b.params[idx].Value = v
		b.values[idx] = v
	}
	return nil
}

func (b *base) SetSystem(particles dynamo.Particles, walls dynamo.Walls, pbc dynamo.PBC) {
	b.particles = particles
	b.walls = walls
	if pbc == nil {
		pbc = dynamo.NoPBC{}
	}
	b.pbc = pbc
}

// apply stores a finished evaluation into the record.
func apply(rec *collision.Record, out *pairOutput) Result {
	rec.ContactVector = out.ContactVector
	rec.TangOverlap = out.TangOverlap
	rec.TangForce = out.TangForce
	rec.TotalForce = out.TotalForce
	rec.ResultMoment1 = out.Moment1
	rec.ResultMoment2 = out.Moment2
	rec.NormalOverlap = out.NormalOverlap
	rec.Slipping = out.Slipping
	return Result{Force: out.TotalForce, Moment1: out.Moment1, Moment2: out.Moment2, InContact: true}
}

// pairOutput is what a kernel produces for one collision element.
type pairOutput struct {
	ContactVector Vec3
	TangOverlap   Vec3
	TangForce     Vec3
	TotalForce    Vec3
	Moment1       Vec3
	Moment2       Vec3
	NormalOverlap float64
	Slipping      bool
	InContact     bool
}

func (o *pairOutput) valid() bool {
	return finite(o.TangOverlap, o.TangForce, o.TotalForce, o.Moment1, o.Moment2)
}
