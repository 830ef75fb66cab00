// Package integrators advances particle state from consolidated forces.
package integrators

import (
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// Forces is the consolidated load per particle.
type Forces interface {
	Force(i int) Vec3
	Moment(i int) Vec3
}

// Euler is the explicit scheme: positions advance with the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(ps *scene.ParticleStore, f Forces, gravity Vec3, dt float64) {
	for i := range ps.Coords {
		acc, anglAcc := accelerations(ps, f, gravity, i)
		ps.Coords[i] = ps.Coords[i].Add(ps.Vels[i].Mul(dt))
		ps.Vels[i] = ps.Vels[i].Add(acc.Mul(dt))
		ps.AnglVels[i] = ps.AnglVels[i].Add(anglAcc.Mul(dt))
	}
}

func accelerations(ps *scene.ParticleStore, f Forces, gravity Vec3, i int) (Vec3, Vec3) {
	var acc, anglAcc Vec3
	if m := ps.Masses[i]; m > 0 {
		acc = f.Force(i).Mul(1 / m).Add(gravity)
	}
	if in := ps.Inertias[i]; in > 0 {
		anglAcc = f.Moment(i).Mul(1 / in)
	}
	return acc, anglAcc
}
