package geometry

import (
	"math"

	"github.com/san-kum/demsim/internal/vecmath"
)

// Triangle is one mesh element. Its normal follows the vertex winding.
type Triangle struct {
	V1, V2, V3 Vec3
}

func (t Triangle) Normal() Vec3 {
	return vecmath.SafeNormalize(t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)))
}

func (t Triangle) Centroid() Vec3 {
	return t.V1.Add(t.V2).Add(t.V3).Mul(1.0 / 3.0)
}

// orient flips t so that its normal points away from the origin, or toward
// it when outward is false.
func orient(t Triangle, outward bool) Triangle {
	d := t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Dot(t.Centroid())
	if (d < 0) == outward {
		t.V2, t.V3 = t.V3, t.V2
	}
	return t
}

const (
	defaultAccuracy = 16
	minAccuracy     = 3
)

// buildMesh derives the body-frame mesh of a primitive centered at the origin.
func buildMesh(shape Shape, s Sizes, accuracy int) []Triangle {
	n := max(accuracy, minAccuracy)
	switch shape {
	case Box:
		return boxMesh(s.Width, s.Depth, s.Height)
	case Sphere:
		return sphereMesh(s.Radius, n, true)
	case HollowSphere:
		return append(sphereMesh(s.Radius, n, true), sphereMesh(s.InnerRadius, n, false)...)
	case Cylinder:
		return cylinderMesh(s.Radius, s.Height, n)
	}
	return nil
}

func boxMesh(w, d, h float64) []Triangle {
	half := Vec3{w / 2, d / 2, h / 2}
	tris := make([]Triangle, 0, 12)
	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		for _, sign := range []float64{-1, 1} {
			var quad [4]Vec3
			for k, uv := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
				quad[k][axis] = sign * half[axis]
				quad[k][u] = uv[0] * half[u]
				quad[k][v] = uv[1] * half[v]
			}
			tris = append(tris,
				orient(Triangle{quad[0], quad[1], quad[2]}, true),
				orient(Triangle{quad[0], quad[2], quad[3]}, true))
		}
	}
	return tris
}

func sphereMesh(r float64, n int, outward bool) []Triangle {
	slices, stacks := n, max(n/2, 2)
	point := func(i, j int) Vec3 {
		theta := math.Pi * float64(i) / float64(stacks)
		phi := 2 * math.Pi * float64(j%slices) / float64(slices)
		return Vec3{r * math.Sin(theta) * math.Cos(phi), r * math.Sin(theta) * math.Sin(phi), r * math.Cos(theta)}
	}

	tris := make([]Triangle, 0, 2*slices*(stacks-1))
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			p00, p01 := point(i, j), point(i, j+1)
			p10, p11 := point(i+1, j), point(i+1, j+1)
			switch i {
			case 0:
				tris = append(tris, orient(Triangle{p00, p10, p11}, outward))
			case stacks - 1:
				tris = append(tris, orient(Triangle{p00, p10, p01}, outward))
			default:
				tris = append(tris,
					orient(Triangle{p00, p10, p11}, outward),
					orient(Triangle{p00, p11, p01}, outward))
			}
		}
	}
	return tris
}

func cylinderMesh(r, h float64, n int) []Triangle {
	ring := func(j int, z float64) Vec3 {
		phi := 2 * math.Pi * float64(j%n) / float64(n)
		return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
	}
	top, bottom := Vec3{0, 0, h / 2}, Vec3{0, 0, -h / 2}

	tris := make([]Triangle, 0, 4*n)
	for j := 0; j < n; j++ {
		b0, b1 := ring(j, -h/2), ring(j+1, -h/2)
		t0, t1 := ring(j, h/2), ring(j+1, h/2)
		tris = append(tris,
			orient(Triangle{b0, b1, t1}, true),
			orient(Triangle{b0, t1, t0}, true),
			orient(Triangle{top, t0, t1}, true),
			orient(Triangle{bottom, b0, b1}, true))
	}
	return tris
}
