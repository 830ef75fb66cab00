// Package detect is a brute-force contact detector. It creates collision
// records at contact onset, sets the contact point of particle-wall pairs,
// and removes records whose pair has separated.
package detect

import (
	"log/slog"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/dynamo"
)

// minRowChunk is the smallest number of particles scanned per goroutine.
const minRowChunk = 8

// Stats summarizes one update.
type Stats struct {
	ParticleParticle int
	ParticleWall     int
	Created          int
	Removed          int
}

type pwHit struct {
	wall, particle int
	point          Vec3
}

type Detector struct {
	// Margin widens the contact test so records exist one step before touching.
	Margin  float64
	Workers int
	logger  *slog.Logger
}

func New(workers int, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{Workers: workers, logger: logger}
}

// Update synchronizes the arena with the current positions. It must not run
// while a pass is evaluating.
func (d *Detector) Update(particles dynamo.Particles, walls dynamo.Walls, pbc dynamo.PBC, arena *collision.Arena) Stats {
	if pbc == nil {
		pbc = dynamo.NoPBC{}
	}
	pp := d.findPP(particles, pbc)
	var pw []pwHit
	if walls != nil {
		pw = d.findPW(particles, walls, pbc)
	}

	var st Stats
	seen := make(map[collision.ID]bool, len(pp)+len(pw))
	for _, pair := range pp {
		id, ok := arena.Find(collision.ParticleParticle, pair[0], pair[1])
		if !ok {
			id, _ = arena.Create(collision.ParticleParticle, pair[0], pair[1])
			st.Created++
		}
		seen[id] = true
	}
	for _, h := range pw {
		id, ok := arena.Find(collision.ParticleWall, h.wall, h.particle)
		if !ok {
			id, _ = arena.Create(collision.ParticleWall, h.wall, h.particle)
			st.Created++
		}
		arena.Get(id).ContactVector = h.point
		seen[id] = true
	}

	var stale []collision.ID
	arena.Each(func(id collision.ID, _ *collision.Record) {
		if !seen[id] {
			stale = append(stale, id)
		}
	})
	for _, id := range stale {
		arena.Remove(id)
	}
	st.Removed = len(stale)
	st.ParticleParticle = len(pp)
	st.ParticleWall = len(pw)

	if st.Created > 0 || st.Removed > 0 {
		d.logger.Debug("contacts updated", "pp", st.ParticleParticle, "pw", st.ParticleWall, "created", st.Created, "removed", st.Removed)
	}
	return st
}

func (d *Detector) findPP(ps dynamo.Particles, pbc dynamo.PBC) [][2]int {
	n := ps.Len()
	rows := make([][][2]int, n)
	dynamo.ParallelFor(n, d.Workers, minRowChunk, func(_, start, end int) {
		for i := start; i < end; i++ {
			ci, ri := pbc.Correct(ps.Coord(i)), ps.Radius(i)
			for j := i + 1; j < n; j++ {
				reach := ri + ps.Radius(j) + d.Margin
				dist := pbc.Distance(ci, pbc.Correct(ps.Coord(j)))
				if dist.Dot(dist) < reach*reach {
					rows[i] = append(rows[i], [2]int{i, j})
				}
			}
		}
	})

	var out [][2]int
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func (d *Detector) findPW(ps dynamo.Particles, ws dynamo.Walls, pbc dynamo.PBC) []pwHit {
	n := ps.Len()
	rows := make([][]pwHit, n)
	dynamo.ParallelFor(n, d.Workers, minRowChunk, func(_, start, end int) {
		for i := start; i < end; i++ {
			c := pbc.Correct(ps.Coord(i))
			reach := ps.Radius(i) + d.Margin
			for w := 0; w < ws.Len(); w++ {
				a, b, v := ws.Vertices(w)
				cp := closestPointOnTriangle(c, a, b, v)
				dist := pbc.Distance(cp, c)
				if dist.Dot(dist) < reach*reach {
					rows[i] = append(rows[i], pwHit{wall: w, particle: i, point: cp})
				}
			}
		}
	})

	var out []pwHit
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
