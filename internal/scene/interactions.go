package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/demsim/internal/dynamo"
)

// Material holds per-material constants.
type Material struct {
	Key            string  `yaml:"key"`
	Density        float64 `yaml:"density"`
	YoungModulus   float64 `yaml:"young_modulus"`
	PoissonRatio   float64 `yaml:"poisson_ratio"`
	SurfaceTension float64 `yaml:"surface_tension"`
	SurfaceEnergy  float64 `yaml:"surface_energy"`
}

func (m Material) Validate() error {
	if m.Key == "" {
		return fmt.Errorf("material without key: %w", dynamo.ErrInvalidParameter)
	}
	if m.Density <= 0 {
		return fmt.Errorf("material %s: density must be positive, got %g: %w", m.Key, m.Density, dynamo.ErrInvalidParameter)
	}
	if m.YoungModulus <= 0 {
		return fmt.Errorf("material %s: young modulus must be positive: %w", m.Key, dynamo.ErrInvalidParameter)
	}
	if m.PoissonRatio < 0 || m.PoissonRatio >= 0.5 {
		return fmt.Errorf("material %s: poisson ratio %g outside [0, 0.5): %w", m.Key, m.PoissonRatio, dynamo.ErrInvalidParameter)
	}
	return nil
}

// PairFriction holds the per-pair coefficients that do not derive from materials.
type PairFriction struct {
	Restitution     float64 `yaml:"restitution"`
	SlidingFriction float64 `yaml:"sliding_friction"`
	RollingFriction float64 `yaml:"rolling_friction"`
}

type pairKey struct{ a, b string }

func makePairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// InteractionTable is a symmetric material-pair lookup.
type InteractionTable struct {
	materials map[string]Material
	props     map[pairKey]dynamo.InteractProps
}

func NewInteractionTable() *InteractionTable {
	return &InteractionTable{
		materials: make(map[string]Material),
		props:     make(map[pairKey]dynamo.InteractProps),
	}
}

func (t *InteractionTable) AddMaterial(m Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	t.materials[m.Key] = m
	return nil
}

func (t *InteractionTable) Material(key string) (Material, bool) {
	m, ok := t.materials[key]
	return m, ok
}

// Set stores precomputed effective properties for a pair.
func (t *InteractionTable) Set(a, b string, p dynamo.InteractProps) {
	t.props[makePairKey(a, b)] = p
}

// Combine derives effective properties of a pair from both materials.
func (t *InteractionTable) Combine(a, b string, f PairFriction) error {
	ma, ok := t.materials[a]
	if !ok {
		return fmt.Errorf("%s: %w", a, dynamo.ErrUnknownMaterial)
	}
	mb, ok := t.materials[b]
	if !ok {
		return fmt.Errorf("%s: %w", b, dynamo.ErrUnknownMaterial)
	}
	if f.Restitution <= 0 || f.Restitution > 1 {
		return fmt.Errorf("pair %s-%s: restitution %g outside (0, 1]: %w", a, b, f.Restitution, dynamo.ErrInvalidParameter)
	}
	if f.SlidingFriction < 0 || f.RollingFriction < 0 {
		return fmt.Errorf("pair %s-%s: negative friction: %w", a, b, dynamo.ErrInvalidParameter)
	}

	t.Set(a, b, dynamo.InteractProps{
		EquivYoungModulus:   EquivYoungModulus(ma, mb),
		EquivShearModulus:   EquivShearModulus(ma, mb),
		Alpha:               DampingAlpha(f.Restitution),
		EquivSurfaceTension: math.Sqrt(ma.SurfaceTension * mb.SurfaceTension),
		EquivSurfaceEnergy:  math.Sqrt(ma.SurfaceEnergy * mb.SurfaceEnergy),
		SlidingFriction:     f.SlidingFriction,
		RollingFriction:     f.RollingFriction,
		Restitution:         f.Restitution,
	})
	return nil
}

func (t *InteractionTable) Interaction(a, b string) (dynamo.InteractProps, error) {
	p, ok := t.props[makePairKey(a, b)]
	if !ok {
		return dynamo.InteractProps{}, fmt.Errorf("%s-%s: %w", a, b, dynamo.ErrMissingInteraction)
	}
	return p, nil
}

// Pairs lists the stored pairs in a stable order.
func (t *InteractionTable) Pairs() [][2]string {
	out := make([][2]string, 0, len(t.props))
	for k := range t.props {
		out = append(out, [2]string{k.a, k.b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// EquivYoungModulus combines two materials: 1/E* = (1-v1^2)/E1 + (1-v2^2)/E2.
func EquivYoungModulus(a, b Material) float64 {
	return 1 / ((1-a.PoissonRatio*a.PoissonRatio)/a.YoungModulus + (1-b.PoissonRatio*b.PoissonRatio)/b.YoungModulus)
}

// EquivShearModulus combines two materials: 1/G* = 2(2-v1)(1+v1)/E1 + 2(2-v2)(1+v2)/E2.
func EquivShearModulus(a, b Material) float64 {
	return 1 / (2*(2-a.PoissonRatio)*(1+a.PoissonRatio)/a.YoungModulus + 2*(2-b.PoissonRatio)*(1+b.PoissonRatio)/b.YoungModulus)
}

// DampingAlpha converts a restitution coefficient into the damping coefficient.
func DampingAlpha(restitution float64) float64 {
	if restitution >= 1 {
		return 0
	}
	l := math.Log(restitution)
	return -l / math.Sqrt(l*l+math.Pi*math.Pi)
}
