// Package store writes and reads JSON snapshots of particles and their
// contacts, so a run can be inspected or resumed with its contact history.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

type ParticleState struct {
	Coord    Vec3    `json:"coord"`
	Vel      Vec3    `json:"vel"`
	AnglVel  Vec3    `json:"angl_vel"`
	Radius   float64 `json:"radius"`
	Mass     float64 `json:"mass"`
	Material string  `json:"material"`
}

// CollisionState is one live record. TangOverlap and ContactVector are the
// history a resumed run needs; the rest is for inspection.
type CollisionState struct {
	Kind          string  `json:"kind"`
	Src           int     `json:"src"`
	Dst           int     `json:"dst"`
	ContactVector Vec3    `json:"contact_vector"`
	TangOverlap   Vec3    `json:"tang_overlap"`
	TotalForce    Vec3    `json:"total_force"`
	NormalOverlap float64 `json:"normal_overlap"`
	Slipping      bool    `json:"slipping,omitempty"`
}

type Snapshot struct {
	Time       float64          `json:"time"`
	Step       int              `json:"step"`
	Particles  []ParticleState  `json:"particles"`
	Collisions []CollisionState `json:"collisions"`
}

// Capture copies the particle state and every live record in id order.
func Capture(t float64, step int, ps *scene.ParticleStore, arena *collision.Arena) *Snapshot {
	s := &Snapshot{
		Time:       t,
		Step:       step,
		Particles:  make([]ParticleState, ps.Len()),
		Collisions: make([]CollisionState, 0, arena.Len()),
	}
	for i := range s.Particles {
		s.Particles[i] = ParticleState{
			Coord:    ps.Coord(i),
			Vel:      ps.Vel(i),
			AnglVel:  ps.AnglVel(i),
			Radius:   ps.Radius(i),
			Mass:     ps.Mass(i),
			Material: ps.Material(i),
		}
	}
	arena.Each(func(_ collision.ID, r *collision.Record) {
		s.Collisions = append(s.Collisions, CollisionState{
			Kind:          r.Kind.String(),
			Src:           r.SrcID,
			Dst:           r.DstID,
			ContactVector: r.ContactVector,
			TangOverlap:   r.TangOverlap,
			TotalForce:    r.TotalForce,
			NormalOverlap: r.NormalOverlap,
			Slipping:      r.Slipping,
		})
	})
	return s
}

func parseKind(s string) (collision.Kind, error) {
	switch s {
	case collision.ParticleParticle.String():
		return collision.ParticleParticle, nil
	case collision.ParticleWall.String():
		return collision.ParticleWall, nil
	}
	return 0, fmt.Errorf("unknown collision kind %q", s)
}

// ParticleStore rebuilds a particle store from the snapshot.
func (s *Snapshot) ParticleStore() *scene.ParticleStore {
	ps := scene.NewParticleStore(len(s.Particles))
	for _, p := range s.Particles {
		ps.Add(p.Coord, p.Vel, p.AnglVel, p.Radius, p.Mass, p.Material)
	}
	return ps
}

// Restore recreates the recorded contacts in arena, carrying their tangential
// history. Indices must fit within the given particle and wall counts.
func (s *Snapshot) Restore(arena *collision.Arena, particles, walls int) error {
	for i, c := range s.Collisions {
		kind, err := parseKind(c.Kind)
		if err != nil {
			return fmt.Errorf("collision %d: %w", i, err)
		}
		srcLimit := particles
		if kind == collision.ParticleWall {
			srcLimit = walls
		}
		if c.Src < 0 || c.Src >= srcLimit || c.Dst < 0 || c.Dst >= particles {
			return fmt.Errorf("collision %d: %s pair %d-%d out of range", i, c.Kind, c.Src, c.Dst)
		}
		_, rec := arena.Create(kind, c.Src, c.Dst)
		rec.ContactVector = c.ContactVector
		rec.TangOverlap = c.TangOverlap
	}
	return nil
}

func Write(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func Save(path string, s *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
