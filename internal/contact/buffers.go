package contact

import (
	"fmt"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/dynamo"
)

// ParticleBuffers is the flat snapshot of particle state read by batched kernels.
type ParticleBuffers struct {
	Coords   []Vec3
	Vels     []Vec3
	AnglVels []Vec3
	Radii    []float64
	Masses   []float64
}

// WallBuffers is the flat snapshot of wall state read by batched kernels.
type WallBuffers struct {
	Normals    []Vec3
	Vels       []Vec3
	RotCenters []Vec3
	RotVels    []Vec3
}

// CollisionBuffers holds one element per collision of a single kind. Inputs
// are the index columns and TangOverlaps; the rest is written by the kernel.
type CollisionBuffers struct {
	IDs   []collision.ID
	Src   []int
	Dst   []int
	Props []int

	ContactVectors []Vec3
	TangOverlaps   []Vec3
	TangForces     []Vec3
	TotalForces    []Vec3
	Moments1       []Vec3
	Moments2       []Vec3
	NormalOverlaps []float64
	Slipping       []bool
	InContact      []bool
}

func (c *CollisionBuffers) Len() int { return len(c.Src) }

// store writes element i. Elements out of contact keep their inputs.
func (c *CollisionBuffers) store(i int, out *pairOutput) {
	c.InContact[i] = out.InContact
	if !out.InContact {
		return
	}
	c.ContactVectors[i] = out.ContactVector
	c.TangOverlaps[i] = out.TangOverlap
	c.TangForces[i] = out.TangForce
	c.TotalForces[i] = out.TotalForce
	c.Moments1[i] = out.Moment1
	c.Moments2[i] = out.Moment2
	c.NormalOverlaps[i] = out.NormalOverlap
	c.Slipping[i] = out.Slipping
}

func (c *CollisionBuffers) resize(n int) {
	c.IDs = make([]collision.ID, n)
	c.Src = make([]int, n)
	c.Dst = make([]int, n)
	c.Props = make([]int, n)
	c.ContactVectors = make([]Vec3, n)
	c.TangOverlaps = make([]Vec3, n)
	c.TangForces = make([]Vec3, n)
	c.TotalForces = make([]Vec3, n)
	c.Moments1 = make([]Vec3, n)
	c.Moments2 = make([]Vec3, n)
	c.NormalOverlaps = make([]float64, n)
	c.Slipping = make([]bool, n)
	c.InContact = make([]bool, n)
}

// Buffers is everything one batched evaluation needs. Props is indexed by
// CollisionBuffers.Props.
type Buffers struct {
	Particles  ParticleBuffers
	Walls      WallBuffers
	Props      []dynamo.InteractProps
	Collisions CollisionBuffers
	PBC        dynamo.PBC
}

func (b *Buffers) pbc() dynamo.PBC {
	if b.PBC == nil {
		return dynamo.NoPBC{}
	}
	return b.PBC
}

// Flatten snapshots entity state and the live records of one kind.
// Interaction properties are deduplicated per material pair.
func Flatten(particles dynamo.Particles, walls dynamo.Walls, pbc dynamo.PBC, arena *collision.Arena, kind collision.Kind, lookup dynamo.InteractionLookup) (*Buffers, error) {
	b := &Buffers{PBC: pbc}

	np := particles.Len()
	b.Particles = ParticleBuffers{
		Coords:   make([]Vec3, np),
		Vels:     make([]Vec3, np),
		AnglVels: make([]Vec3, np),
		Radii:    make([]float64, np),
		Masses:   make([]float64, np),
	}
	for i := 0; i < np; i++ {
		b.Particles.Coords[i] = particles.Coord(i)
		b.Particles.Vels[i] = particles.Vel(i)
		b.Particles.AnglVels[i] = particles.AnglVel(i)
		b.Particles.Radii[i] = particles.Radius(i)
		b.Particles.Masses[i] = particles.Mass(i)
	}

	if walls != nil {
		nw := walls.Len()
		b.Walls = WallBuffers{
			Normals:    make([]Vec3, nw),
			Vels:       make([]Vec3, nw),
			RotCenters: make([]Vec3, nw),
			RotVels:    make([]Vec3, nw),
		}
		for i := 0; i < nw; i++ {
			b.Walls.Normals[i] = walls.NormalVector(i)
			b.Walls.Vels[i] = walls.Vel(i)
			b.Walls.RotCenters[i] = walls.RotCenter(i)
			b.Walls.RotVels[i] = walls.RotVel(i)
		}
	}

	ids := arena.Active(kind)
	cs := &b.Collisions
	cs.resize(len(ids))

	propIndex := make(map[[2]string]int)
	for i, id := range ids {
		rec := arena.Get(id)
		matA, matB := srcMaterial(particles, walls, kind, rec.SrcID), particles.Material(rec.DstID)
		if matA > matB {
			matA, matB = matB, matA
		}

		key := [2]string{matA, matB}
		pi, ok := propIndex[key]
		if !ok {
			props, err := lookup.Interaction(matA, matB)
			if err != nil {
				return nil, fmt.Errorf("collision %d (%s %d-%d): %w", id, kind, rec.SrcID, rec.DstID, err)
			}
			pi = len(b.Props)
			b.Props = append(b.Props, props)
			propIndex[key] = pi
		}

		cs.IDs[i] = id
		cs.Src[i] = rec.SrcID
		cs.Dst[i] = rec.DstID
		cs.Props[i] = pi
		cs.ContactVectors[i] = rec.ContactVector
		cs.TangOverlaps[i] = rec.TangOverlap
	}
	return b, nil
}

// Scatter writes batched results back into the arena. Records whose element
// was out of contact are left untouched.
func (b *Buffers) Scatter(arena *collision.Arena) {
	cs := &b.Collisions
	for i, id := range cs.IDs {
		if !cs.InContact[i] {
			continue
		}
		rec := arena.Get(id)
		if rec == nil {
			continue
		}
		rec.ContactVector = cs.ContactVectors[i]
		rec.TangOverlap = cs.TangOverlaps[i]
		rec.TangForce = cs.TangForces[i]
		rec.TotalForce = cs.TotalForces[i]
		rec.ResultMoment1 = cs.Moments1[i]
		rec.ResultMoment2 = cs.Moments2[i]
		rec.NormalOverlap = cs.NormalOverlaps[i]
		rec.Slipping = cs.Slipping[i]
	}
}

func srcMaterial(particles dynamo.Particles, walls dynamo.Walls, kind collision.Kind, src int) string {
	if kind == collision.ParticleWall {
		return walls.Material(src)
	}
	return particles.Material(src)
}
