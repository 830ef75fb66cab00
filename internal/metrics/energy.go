package metrics

import (
	"github.com/san-kum/demsim/internal/sim"
)

// KineticEnergy is the translational plus rotational energy of all particles.
type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s *sim.Snapshot) {
	ps := s.Particles
	var total float64
	for i := range ps.Vels {
		v, w := ps.Vels[i], ps.AnglVels[i]
		total += 0.5*ps.Masses[i]*v.Dot(v) + 0.5*ps.Inertias[i]*w.Dot(w)
	}
	e.value = total
}

func (e *KineticEnergy) Value() float64 { return e.value }
func (e *KineticEnergy) Reset()         { e.value = 0 }

// EnergyDissipation is the fraction of the first observed kinetic energy
// that has been lost since.
type EnergyDissipation struct {
	name    string
	ke      KineticEnergy
	initial float64
	current float64
	samples int
}

func NewEnergyDissipation() *EnergyDissipation {
	return &EnergyDissipation{name: "energy_dissipation"}
}

func (e *EnergyDissipation) Name() string { return e.name }

func (e *EnergyDissipation) Observe(s *sim.Snapshot) {
	e.ke.Observe(s)
	if e.samples == 0 {
		e.initial = e.ke.Value()
	}
	e.current = e.ke.Value()
	e.samples++
}

func (e *EnergyDissipation) Value() float64 {
	if e.initial == 0 {
		return 0
	}
	return 1 - e.current/e.initial
}

func (e *EnergyDissipation) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}
