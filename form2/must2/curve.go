package must2

import (
	"fmt"
	"math"

	"github.com/soypat/gear/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Spline returns a Catmull-Rom spline through the fit points sampled with
// facets segments between consecutive fit points. The fit points are part
// of the result. Non-zero start and end directions replace the end tangents
// of the spline.
func Spline(fit []r2.Vec, start, end r2.Vec, facets int) []r2.Vec {
	n := len(fit)
	if n < 2 {
		panic("spline needs at least 2 fit points")
	}
	if facets < 1 {
		panic("spline needs at least one facet per segment")
	}
	tangents := make([]r2.Vec, n)
	for i := 1; i < n-1; i++ {
		tangents[i] = r2.Scale(0.5, r2.Sub(fit[i+1], fit[i-1]))
	}
	tangents[0] = endTangent(fit[0], fit[1], start)
	tangents[n-1] = endTangent(fit[n-2], fit[n-1], end)

	out := make([]r2.Vec, 0, (n-1)*facets+1)
	for i := 0; i < n-1; i++ {
		p0, p1 := fit[i], fit[i+1]
		m0, m1 := tangents[i], tangents[i+1]
		out = append(out, p0)
		for j := 1; j < facets; j++ {
			t := float64(j) / float64(facets)
			t2 := t * t
			t3 := t2 * t
			// Cubic Hermite basis.
			h00 := 2*t3 - 3*t2 + 1
			h10 := t3 - 2*t2 + t
			h01 := -2*t3 + 3*t2
			h11 := t3 - t2
			out = append(out, r2.Vec{
				X: h00*p0.X + h10*m0.X + h01*p1.X + h11*m1.X,
				Y: h00*p0.Y + h10*m0.Y + h01*p1.Y + h11*m1.Y,
			})
		}
	}
	return append(out, fit[n-1])
}

// endTangent returns the tangent at an end of the segment a-b. A non-zero
// dir is scaled to the segment length, otherwise the chord is used.
func endTangent(a, b, dir r2.Vec) r2.Vec {
	chord := r2.Sub(b, a)
	if dir == (r2.Vec{}) {
		return chord
	}
	return r2.Scale(r2.Norm(chord), r2.Unit(dir))
}

// Arc3 returns the circular arc starting at p1, passing through p2 and
// ending at p3, sampled with facets segments.
func Arc3(p1, p2, p3 r2.Vec, facets int) []r2.Vec {
	if facets < 1 {
		panic("arc needs at least one facet")
	}
	c, ok := circumcenter(p1, p2, p3)
	if !ok {
		panic(fmt.Sprintf("arc points %v %v %v are colinear", p1, p2, p3))
	}
	a1 := d2.Angle(r2.Sub(p1, c))
	sweep2 := positiveAngle(d2.Angle(r2.Sub(p2, c)) - a1)
	sweep3 := positiveAngle(d2.Angle(r2.Sub(p3, c)) - a1)
	sweep := sweep3
	if sweep2 > sweep3 {
		// p2 is only reached going clockwise.
		sweep = sweep3 - 2*math.Pi
	}
	radius := r2.Norm(r2.Sub(p1, c))
	out := make([]r2.Vec, facets+1)
	out[0] = p1
	for i := 1; i < facets; i++ {
		theta := a1 + sweep*float64(i)/float64(facets)
		out[i] = r2.Add(c, d2.Pol{R: radius, Theta: theta}.PolarToCartesian())
	}
	out[facets] = p3
	return out
}

func positiveAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// circumcenter returns the center of the circle through a, b and c.
func circumcenter(a, b, c r2.Vec) (r2.Vec, bool) {
	ab := r2.Sub(b, a)
	ac := r2.Sub(c, a)
	d := 2 * r2.Cross(ab, ac)
	scale := math.Max(r2.Norm2(ab), r2.Norm2(ac))
	if math.Abs(d) <= tolerance*scale {
		return r2.Vec{}, false
	}
	nab := r2.Norm2(ab)
	nac := r2.Norm2(ac)
	return r2.Vec{
		X: a.X + (ac.Y*nab-ab.Y*nac)/d,
		Y: a.Y + (ab.X*nac-ac.X*nab)/d,
	}, true
}
