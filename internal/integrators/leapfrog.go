package integrators

import "github.com/san-kum/demsim/internal/scene"

// Leapfrog kicks velocities first and drifts positions with the new
// velocity. It is symplectic and the usual choice for DEM.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(ps *scene.ParticleStore, f Forces, gravity Vec3, dt float64) {
	for i := range ps.Coords {
		acc, anglAcc := accelerations(ps, f, gravity, i)
		ps.Vels[i] = ps.Vels[i].Add(acc.Mul(dt))
		ps.AnglVels[i] = ps.AnglVels[i].Add(anglAcc.Mul(dt))
		ps.Coords[i] = ps.Coords[i].Add(ps.Vels[i].Mul(dt))
	}
}
