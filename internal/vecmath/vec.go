package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the 3-D vector used throughout the engine.
type Vec3 = mgl64.Vec3

// SignificanceThreshold is the length below which a vector is treated as zero
// before normalization.
const SignificanceThreshold = 1e-16

var Zero = Vec3{}

func IsZero(v Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// IsSignificant reports whether v is long enough to be normalized safely.
func IsSignificant(v Vec3) bool {
	return v.Dot(v) > SignificanceThreshold*SignificanceThreshold
}

// SafeNormalize returns v/|v|, or the zero vector when v is not significant.
func SafeNormalize(v Vec3) Vec3 {
	l := v.Len()
	if l <= SignificanceThreshold {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Scaled returns v rescaled to the given length. Insignificant vectors stay zero.
func Scaled(v Vec3, length float64) Vec3 {
	l := v.Len()
	if l <= SignificanceThreshold {
		return Vec3{}
	}
	return v.Mul(length / l)
}

func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Min returns the component-wise minimum.
func Min(a, b Vec3) Vec3 {
	return Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

// Max returns the component-wise maximum.
func Max(a, b Vec3) Vec3 {
	return Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// MulElem returns the component-wise product.
func MulElem(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// ApproxEqual compares two vectors with an absolute tolerance.
func ApproxEqual(a, b Vec3, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol && math.Abs(a[2]-b[2]) <= tol
}
