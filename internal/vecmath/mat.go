package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat3 is a 3x3 matrix stored column-major, as mgl64 does.
type Mat3 = mgl64.Mat3

func Identity() Mat3 {
	return mgl64.Ident3()
}

// FromRows builds a matrix from row-major values.
func FromRows(m00, m01, m02, m10, m11, m12, m20, m21, m22 float64) Mat3 {
	return Mat3{m00, m10, m20, m01, m11, m21, m02, m12, m22}
}

// OuterProduct returns a ⊗ b.
func OuterProduct(a, b Vec3) Mat3 {
	return FromRows(
		a[0]*b[0], a[0]*b[1], a[0]*b[2],
		a[1]*b[0], a[1]*b[1], a[1]*b[2],
		a[2]*b[0], a[2]*b[1], a[2]*b[2],
	)
}

// RotationAxisAngle returns the rotation by angle (radians) about axis.
// A zero axis or angle yields the identity.
func RotationAxisAngle(axis Vec3, angle float64) Mat3 {
	if angle == 0 || !IsSignificant(axis) {
		return Identity()
	}
	k := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := k[0], k[1], k[2]
	return FromRows(
		t*x*x+c, t*x*y-s*z, t*x*z+s*y,
		t*x*y+s*z, t*y*y+c, t*y*z-s*x,
		t*x*z-s*y, t*y*z+s*x, t*z*z+c,
	)
}

// RotationFromVector rotates by |w| radians about w.
func RotationFromVector(w Vec3) Mat3 {
	return RotationAxisAngle(w, w.Len())
}

// PrincipalStresses returns the eigenvalues of the symmetric stress tensor m,
// largest first, using the trigonometric solution of the characteristic cubic.
func PrincipalStresses(m Mat3) Vec3 {
	s00, s11, s22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	s01, s02, s12 := m.At(0, 1), m.At(0, 2), m.At(1, 2)

	i1 := s00 + s11 + s22
	i2 := s00*s11 + s11*s22 + s22*s00 - s01*s01 - s02*s02 - s12*s12
	i3 := s00*s11*s22 - s00*s12*s12 - s11*s02*s02 - s22*s01*s01 + 2*s01*s02*s12

	q := math.Min((3*i2-i1*i1)/9, 0)
	r := (2*i1*i1*i1 - 9*i1*i2 + 27*i3) / 54

	// hydrostatic state: all three roots coincide
	if q == 0 {
		return Vec3{i1 / 3, i1 / 3, i1 / 3}
	}

	g := math.Min(math.Max(r/math.Sqrt(math.Pow(-q, 3)), -1), 1)
	theta := math.Acos(g)
	amp := 2 * math.Sqrt(-q)
	s1 := amp*math.Cos(theta/3) + i1/3
	s3 := amp*math.Cos((theta+2*math.Pi)/3) + i1/3
	s2 := amp*math.Cos((theta+4*math.Pi)/3) + i1/3
	return Vec3{s1, s2, s3}
}
