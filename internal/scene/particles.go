package scene

import "github.com/san-kum/demsim/internal/vecmath"

type Vec3 = vecmath.Vec3

// ParticleStore keeps particle state as parallel slices indexed by particle id.
type ParticleStore struct {
	Coords    []Vec3
	Vels      []Vec3
	AnglVels  []Vec3
	Radii     []float64
	Masses    []float64
	Inertias  []float64
	Materials []string
}

func NewParticleStore(capacity int) *ParticleStore {
	return &ParticleStore{
		Coords:    make([]Vec3, 0, capacity),
		Vels:      make([]Vec3, 0, capacity),
		AnglVels:  make([]Vec3, 0, capacity),
		Radii:     make([]float64, 0, capacity),
		Masses:    make([]float64, 0, capacity),
		Inertias:  make([]float64, 0, capacity),
		Materials: make([]string, 0, capacity),
	}
}

// Add appends a solid sphere and returns its index. The moment of inertia is
// that of a homogeneous sphere.
func (p *ParticleStore) Add(coord, vel, anglVel Vec3, radius, mass float64, material string) int {
	p.Coords = append(p.Coords, coord)
	p.Vels = append(p.Vels, vel)
	p.AnglVels = append(p.AnglVels, anglVel)
	p.Radii = append(p.Radii, radius)
	p.Masses = append(p.Masses, mass)
	p.Inertias = append(p.Inertias, 0.4*mass*radius*radius)
	p.Materials = append(p.Materials, material)
	return len(p.Coords) - 1
}

func (p *ParticleStore) Len() int              { return len(p.Coords) }
func (p *ParticleStore) Coord(i int) Vec3      { return p.Coords[i] }
func (p *ParticleStore) Vel(i int) Vec3        { return p.Vels[i] }
func (p *ParticleStore) AnglVel(i int) Vec3    { return p.AnglVels[i] }
func (p *ParticleStore) Radius(i int) float64  { return p.Radii[i] }
func (p *ParticleStore) Mass(i int) float64    { return p.Masses[i] }
func (p *ParticleStore) Inertia(i int) float64 { return p.Inertias[i] }
func (p *ParticleStore) Material(i int) string { return p.Materials[i] }
