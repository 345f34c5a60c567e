package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EqualWithin returns true if every component of a and b differ by at most tol.
func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// Rotate rotates v counter clockwise about the origin by theta radians.
func Rotate(v r2.Vec, theta float64) r2.Vec {
	s, c := math.Sincos(theta)
	return r2.Vec{
		X: v.X*c - v.Y*s,
		Y: v.X*s + v.Y*c,
	}
}

// MirrorX reflects v across the X axis.
func MirrorX(v r2.Vec) r2.Vec {
	return r2.Vec{X: v.X, Y: -v.Y}
}

// Angle returns the polar angle of v in (-pi, pi].
func Angle(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

type Set []r2.Vec

// Rotate returns a copy of the set rotated about the origin by theta radians.
func (a Set) Rotate(theta float64) Set {
	s, c := math.Sincos(theta)
	dst := make(Set, len(a))
	for i, v := range a {
		dst[i] = r2.Vec{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
	}
	return dst
}

// MirrorX returns a copy of the set reflected across the X axis.
func (a Set) MirrorX() Set {
	dst := make(Set, len(a))
	for i, v := range a {
		dst[i] = MirrorX(v)
	}
	return dst
}

// Reverse returns a copy of the set in reverse order.
func (a Set) Reverse() Set {
	n := len(a)
	dst := make(Set, n)
	for i, v := range a {
		dst[n-1-i] = v
	}
	return dst
}

type Pol struct {
	R, Theta float64
}

// PolarToCartesian converts a polar to a cartesian coordinate.
func (a Pol) PolarToCartesian() r2.Vec {
	return r2.Vec{X: a.R * math.Cos(a.Theta), Y: a.R * math.Sin(a.Theta)}
}
