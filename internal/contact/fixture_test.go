package contact_test

import (
	"math/rand"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

const (
	refRadius = 0.01
	refMass   = 0.01
)

func refProps() dynamo.InteractProps {
	return dynamo.InteractProps{
		EquivYoungModulus:   1e8,
		EquivShearModulus:   4e7,
		Alpha:               0.2,
		EquivSurfaceTension: 0.02,
		SlidingFriction:     0.3,
		RollingFriction:     0.01,
	}
}

func refTable() *scene.InteractionTable {
	t := scene.NewInteractionTable()
	t.Set("p", "p", refProps())
	t.Set("p", "w", refProps())
	return t
}

func allModels() []contact.Model {
	return []contact.Model{
		contact.NewPWPopovJKR(),
		contact.NewPWHertzMindlin(),
		contact.NewPPHertzMindlin(),
		contact.NewPPPopovJKR(),
		contact.NewPPLinearElastic(),
	}
}

// floor is a single facet in the z=0 plane with its normal along +z.
func floor() *scene.WallStore {
	ws := scene.NewWallStore()
	ws.Add(scene.NewFacet(Vec3{-1, -1, 0}, Vec3{1, -1, 0}, Vec3{0, 1, 0}, "w"))
	return ws
}

// pwPair places one particle above the floor and returns its record.
func pwPair(coord, vel, anglVel Vec3) (*scene.ParticleStore, *scene.WallStore, *collision.Arena, collision.ID) {
	ps := scene.NewParticleStore(1)
	ps.Add(coord, vel, anglVel, refRadius, refMass, "p")
	arena := collision.NewArena()
	id, rec := arena.Create(collision.ParticleWall, 0, 0)
	rec.ContactVector = Vec3{coord[0], coord[1], 0}
	return ps, floor(), arena, id
}

// ppPair places two touching particles along x.
func ppPair(dist float64, v1, v2 Vec3) (*scene.ParticleStore, *collision.Arena, collision.ID) {
	ps := scene.NewParticleStore(2)
	ps.Add(Vec3{0, 0, 0}, v1, Vec3{}, refRadius, refMass, "p")
	ps.Add(Vec3{dist, 0, 0}, v2, Vec3{}, refRadius, refMass, "p")
	arena := collision.NewArena()
	id, _ := arena.Create(collision.ParticleParticle, 0, 1)
	return ps, arena, id
}

// randomScene builds n particles resting in a row on the floor, each
// overlapping its neighbour and the floor, with reproducible velocities.
// Records are created identically in every arena passed in.
func randomScene(n int, seed int64, arenas ...*collision.Arena) (*scene.ParticleStore, *scene.WallStore) {
	rng := rand.New(rand.NewSource(seed))
	jitter := func(s float64) Vec3 {
		return Vec3{s * (rng.Float64() - 0.5), s * (rng.Float64() - 0.5), s * (rng.Float64() - 0.5)}
	}

	ps := scene.NewParticleStore(n)
	for i := 0; i < n; i++ {
		coord := Vec3{float64(i) * 1.98 * refRadius, 0, 0.0099}
		ps.Add(coord, jitter(0.2), jitter(20), refRadius*(1+0.05*rng.Float64()), refMass, "p")
	}
	overlaps := make([]Vec3, 2*n)
	for i := range overlaps {
		overlaps[i] = jitter(1e-5)
	}

	for _, arena := range arenas {
		for i := 0; i < n; i++ {
			_, rec := arena.Create(collision.ParticleWall, 0, i)
			c := ps.Coord(i)
			rec.ContactVector = Vec3{c[0], c[1], 0}
			rec.TangOverlap = overlaps[2*i]
			if i+1 < n {
				_, rec = arena.Create(collision.ParticleParticle, i, i+1)
				rec.TangOverlap = overlaps[2*i+1]
			}
		}
	}
	return ps, floor()
}
