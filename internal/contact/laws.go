package contact

import (
	"math"

	"github.com/san-kum/demsim/internal/dynamo"
)

// hertzMindlin: elastic Hertz normal force with Mindlin tangential stiffness.
func hertzMindlin(p *dynamo.InteractProps, _ []float64, radius, overlap, _ float64) (float64, float64, float64) {
	root := math.Sqrt(radius * overlap)
	kn := 2 * p.EquivYoungModulus * root
	kt := 8 * p.EquivShearModulus * root
	return 2.0 / 3.0 * kn * overlap, kn, kt
}

// popovJKR: JKR adhesion in the closed form of Popov, projected on the true normal.
func popovJKR(p *dynamo.InteractProps, _ []float64, radius, overlap, cosine float64) (float64, float64, float64) {
	root := math.Sqrt(radius * overlap)
	kn := 2 * p.EquivYoungModulus * root
	kt := 8 * p.EquivShearModulus * root

	adh := 1.5 * p.EquivSurfaceTension * math.Pi * radius
	ratio := p.EquivSurfaceTension / p.EquivYoungModulus
	sAdh := math.Cbrt(0.4626 * ratio * ratio * radius)
	if sAdh <= 0 {
		// no adhesion: the closed form degenerates, fall back to Hertz
		return 2.0 / 3.0 * kn * overlap * cosine, kn, kt
	}

	fn := adh * (-1 + 0.12*math.Pow(overlap/sAdh+1, 5.0/3.0)) * cosine
	return fn, kn, kt
}

// Parameter indices of the linear elastic law.
const (
	paramNormalStiffness = iota
	paramTangentialStiffness
)

// linearElastic: constant normal and tangential stiffness given as model parameters.
func linearElastic(_ *dynamo.InteractProps, params []float64, _, overlap, _ float64) (float64, float64, float64) {
	kn := params[paramNormalStiffness]
	kt := params[paramTangentialStiffness]
	return kn * overlap, kn, kt
}
