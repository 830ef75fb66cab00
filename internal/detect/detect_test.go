package detect

import (
	"testing"

	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

func TestClosestPointOnTriangle(t *testing.T) {
	a, b, c := Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0}
	tests := []struct {
		name string
		p    Vec3
		want Vec3
	}{
		{"face", Vec3{0.2, 0.2, 1}, Vec3{0.2, 0.2, 0}},
		{"vertex a", Vec3{-1, -1, 0.5}, a},
		{"vertex b", Vec3{2, -0.5, 0}, b},
		{"vertex c", Vec3{-0.1, 3, 0}, c},
		{"edge ab", Vec3{0.5, -1, 0}, Vec3{0.5, 0, 0}},
		{"edge bc", Vec3{1, 1, 0}, Vec3{0.5, 0.5, 0}},
		{"edge ca", Vec3{-1, 0.5, 2}, Vec3{0, 0.5, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := closestPointOnTriangle(tc.p, a, b, c); !vecmath.ApproxEqual(got, tc.want, 1e-12) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdateLifecycle(t *testing.T) {
	ps := scene.NewParticleStore(3)
	ps.Add(Vec3{0, 0, 0.009}, Vec3{}, Vec3{}, 0.01, 0.01, "p")
	ps.Add(Vec3{0.019, 0, 0.009}, Vec3{}, Vec3{}, 0.01, 0.01, "p")
	ps.Add(Vec3{0.5, 0, 0.5}, Vec3{}, Vec3{}, 0.01, 0.01, "p")

	ws := scene.NewWallStore()
	ws.Add(scene.NewFacet(Vec3{-1, -1, 0}, Vec3{1, -1, 0}, Vec3{0, 1, 0}, "w"))

	arena := collision.NewArena()
	d := New(2, nil)

	st := d.Update(ps, ws, nil, arena)
	if st.ParticleParticle != 1 || st.ParticleWall != 2 || st.Created != 3 {
		t.Fatalf("first update: %+v", st)
	}
	id, ok := arena.Find(collision.ParticleWall, 0, 1)
	if !ok {
		t.Fatal("missing wall contact of particle 1")
	}
	if got := arena.Get(id).ContactVector; !vecmath.ApproxEqual(got, Vec3{0.019, 0, 0}, 1e-12) {
		t.Errorf("contact point = %v", got)
	}

	// state survives a second update
	arena.Get(id).TangOverlap = Vec3{1e-6, 0, 0}
	st = d.Update(ps, ws, nil, arena)
	if st.Created != 0 || st.Removed != 0 {
		t.Errorf("second update: %+v", st)
	}
	if arena.Get(id).TangOverlap != (Vec3{1e-6, 0, 0}) {
		t.Error("tangential overlap lost between updates")
	}

	ps.Coords[1] = Vec3{0.1, 0, 0.5}
	st = d.Update(ps, ws, nil, arena)
	if st.Removed != 2 || arena.Len() != 1 {
		t.Errorf("separation: %+v, live %d", st, arena.Len())
	}
}

func TestPeriodicContact(t *testing.T) {
	ps := scene.NewParticleStore(2)
	ps.Add(Vec3{0.005, 0, 0}, Vec3{}, Vec3{}, 0.01, 0.01, "p")
	ps.Add(Vec3{0.99, 0, 0}, Vec3{}, Vec3{}, 0.01, 0.01, "p")
	box := scene.PeriodicBox{Max: Vec3{1, 1, 1}, X: true}

	arena := collision.NewArena()
	if st := New(1, nil).Update(ps, nil, box, arena); st.ParticleParticle != 1 {
		t.Errorf("contact across the periodic boundary not found: %+v", st)
	}
}
