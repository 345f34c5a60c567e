package form2

import (
	"math"
	"testing"

	"github.com/soypat/gear/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func TestSplineThroughFitPoints(t *testing.T) {
	fit := []r2.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2, Y: 0.5}, {X: 3, Y: 2}}
	const facets = 4
	pts, err := Spline(fit, r2.Vec{}, r2.Vec{}, facets)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != (len(fit)-1)*facets+1 {
		t.Fatalf("got %d points", len(pts))
	}
	for i, f := range fit {
		if pts[i*facets] != f {
			t.Errorf("fit point %d: got %v, want %v", i, pts[i*facets], f)
		}
	}
}

func TestSplineEndTangent(t *testing.T) {
	fit := []r2.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2}}
	dir := r2.Vec{Y: 1}
	pts, err := Spline(fit, dir, r2.Vec{}, 50)
	if err != nil {
		t.Fatal(err)
	}
	// The first facet leaves the start point along dir.
	first := r2.Unit(r2.Sub(pts[1], pts[0]))
	if r2.Dot(first, dir) < 0.99 {
		t.Errorf("spline leaves start along %v, want %v", first, dir)
	}
	if _, err := Spline(fit[:1], dir, dir, 5); err == nil {
		t.Error("expected error for a single fit point")
	}
}

func TestArc3(t *testing.T) {
	const r = 3.
	for _, test := range []struct {
		name       string
		p1, p2, p3 r2.Vec
		ccw        bool
	}{
		{"ccw", d2.Pol{R: r, Theta: -0.3}.PolarToCartesian(), r2.Vec{X: r}, d2.Pol{R: r, Theta: 0.3}.PolarToCartesian(), true},
		{"cw", d2.Pol{R: r, Theta: 0.3}.PolarToCartesian(), r2.Vec{X: r}, d2.Pol{R: r, Theta: -0.3}.PolarToCartesian(), false},
		{"major", r2.Vec{X: r}, r2.Vec{X: -r}, d2.Pol{R: r, Theta: -0.1}.PolarToCartesian(), true},
	} {
		pts, err := Arc3(test.p1, test.p2, test.p3, 16)
		if err != nil {
			t.Fatalf("%s: %s", test.name, err)
		}
		if pts[0] != test.p1 || pts[len(pts)-1] != test.p3 {
			t.Errorf("%s: arc does not start and end on its end points", test.name)
		}
		for _, p := range pts {
			if math.Abs(r2.Norm(p)-r) > tol {
				t.Errorf("%s: point %v off circle", test.name, p)
			}
		}
		for i := 1; i < len(pts); i++ {
			turn := r2.Cross(pts[i-1], pts[i]) > 0
			if turn != test.ccw {
				t.Errorf("%s: segment %d turns the wrong way", test.name, i)
				break
			}
		}
	}
	if _, err := Arc3(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{X: 2}, 4); err == nil {
		t.Error("expected error for colinear arc points")
	}
}
