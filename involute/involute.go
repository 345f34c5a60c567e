// Package involute generates involute-of-circle spur gear tooth profiles.
//
// A gear is built unrotated at the origin of the XY plane with a single
// tooth centered on the +X axis; the profile is later patterned around
// the Z axis by a CAD modeler.
package involute

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidSpec is returned when gear inputs are out of range.
	ErrInvalidSpec = errors.New("invalid gear spec")
	// ErrDegenerateInvolute is returned when an involute point is requested
	// inside the base circle.
	ErrDegenerateInvolute = errors.New("degenerate involute")
)

// Point returns the point of the involute of a circle of radius baseRadius
// that lies at distance atRadius from the circle center. The involute starts
// at (baseRadius, 0) and unwinds counter clockwise.
func Point(baseRadius, atRadius float64) (r2.Vec, error) {
	if !(baseRadius > 0) {
		return r2.Vec{}, fmt.Errorf("%w: base radius must be positive, got %g", ErrDegenerateInvolute, baseRadius)
	}
	if !(atRadius >= baseRadius) {
		return r2.Vec{}, fmt.Errorf("%w: radius %g inside base circle %g", ErrDegenerateInvolute, atRadius, baseRadius)
	}
	// Length of the taut line unwound from the base circle.
	triangleSide := math.Sqrt(atRadius*atRadius - baseRadius*baseRadius)
	alpha := triangleSide / baseRadius
	theta := alpha - math.Acos(baseRadius/atRadius)
	s, c := math.Sincos(theta)
	return r2.Vec{X: atRadius * c, Y: atRadius * s}, nil
}

// Flank samples n involute points at radii evenly spaced from
// baseRadius to outsideRadius, both included.
func Flank(baseRadius, outsideRadius float64, n int) ([]r2.Vec, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 flank samples, got %d", ErrDegenerateInvolute, n)
	}
	step := (outsideRadius - baseRadius) / float64(n-1)
	pts := make([]r2.Vec, n)
	for i := range pts {
		p, err := Point(baseRadius, baseRadius+step*float64(i))
		if err != nil {
			return nil, fmt.Errorf("flank sample %d: %w", i, err)
		}
		pts[i] = p
	}
	return pts, nil
}
