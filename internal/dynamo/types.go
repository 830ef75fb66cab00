package dynamo

import (
	"fmt"

	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// Particles is the read-only view of particle state used by contact laws.
type Particles interface {
	Len() int
	Coord(i int) Vec3
	Vel(i int) Vec3
	AnglVel(i int) Vec3
	Radius(i int) float64
	Mass(i int) float64
	Material(i int) string
}

// Walls is the read-only view of wall facets.
type Walls interface {
	Len() int
	Vertices(i int) (Vec3, Vec3, Vec3)
	NormalVector(i int) Vec3
	Vel(i int) Vec3
	RotCenter(i int) Vec3
	RotVel(i int) Vec3
	Material(i int) string
}

// InteractProps holds the effective constants of one material pair.
type InteractProps struct {
	EquivYoungModulus   float64 `yaml:"young_modulus" json:"young_modulus"`
	EquivShearModulus   float64 `yaml:"shear_modulus" json:"shear_modulus"`
	Alpha               float64 `yaml:"alpha" json:"alpha"`
	EquivSurfaceTension float64 `yaml:"surface_tension" json:"surface_tension"`
	EquivSurfaceEnergy  float64 `yaml:"surface_energy" json:"surface_energy"`
	SlidingFriction     float64 `yaml:"sliding_friction" json:"sliding_friction"`
	RollingFriction     float64 `yaml:"rolling_friction" json:"rolling_friction"`
	Restitution         float64 `yaml:"restitution" json:"restitution"`
}

// InteractionLookup resolves the properties of a material pair.
// Lookups are symmetric in the two keys.
type InteractionLookup interface {
	Interaction(matA, matB string) (InteractProps, error)
}

// PBC maps raw coordinates onto their canonical periodic image.
type PBC interface {
	Enabled() bool
	Correct(p Vec3) Vec3
	// Distance returns b - a, taking the closest periodic image.
	Distance(a, b Vec3) Vec3
}

// NoPBC is the identity correction.
type NoPBC struct{}

func (NoPBC) Enabled() bool           { return false }
func (NoPBC) Correct(p Vec3) Vec3     { return p }
func (NoPBC) Distance(a, b Vec3) Vec3 { return b.Sub(a) }

type Config struct {
	TimeStep      float64
	EndTime       float64
	SaveStep      float64
	Workers       int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		TimeStep:      1e-6,
		EndTime:       1e-3,
		SaveStep:      1e-4,
		Workers:       4,
		ValidateState: true,
	}
}

// SimError records where a run became invalid.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (t=%.6g): %s: %v", e.Step, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("step %d (t=%.6g): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
