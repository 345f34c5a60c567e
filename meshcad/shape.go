package meshcad

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/soypat/gear/internal/d2"
	"github.com/soypat/gear/internal/d3"
	"github.com/soypat/gear/render"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// profile returns the top face of the body: the root disc joined with every
// tooth, minus the hole. Filleted teeth meet the disc through a round union.
func (b *body) profile() (sdf.SDF2, error) {
	root, err := sdf.Circle2D(b.outer)
	if err != nil {
		return nil, err
	}
	hole, err := sdf.Circle2D(b.hole)
	if err != nil {
		return nil, err
	}
	polys := make([]sdf.SDF2, len(b.loops))
	for i, loop := range b.loops {
		p := sdf.NewPolygon()
		for _, v := range loop {
			p.Add(v.X, v.Y)
		}
		if polys[i], err = sdf.Polygon2D(p.Vertices()); err != nil {
			return nil, fmt.Errorf("tooth profile %d: %w", i, err)
		}
	}
	sharp := []sdf.SDF2{root}
	var radii []float64
	filleted := make(map[float64][]sdf.SDF2)
	for _, t := range b.teeth {
		s := polys[t.loop]
		if t.angle != 0 {
			s = sdf.Transform2D(s, sdf.Rotate2d(t.angle))
		}
		if t.fillet <= 0 {
			sharp = append(sharp, s)
			continue
		}
		if _, ok := filleted[t.fillet]; !ok {
			radii = append(radii, t.fillet)
		}
		filleted[t.fillet] = append(filleted[t.fillet], s)
	}
	for _, r := range radii {
		u := sdf.Union2D(append([]sdf.SDF2{root}, filleted[r]...)...)
		if us, ok := u.(*sdf.UnionSDF2); ok {
			us.SetMin(sdf.RoundMin(r))
		}
		sharp = append(sharp, u)
	}
	return sdf.Difference2D(sdf.Union2D(sharp...), hole), nil
}

// triangles renders the body with marching cubes and places the result with
// the body transform. cells is the number of cells along the longest axis.
func (b *body) triangles(cells int) ([]render.Triangle3, error) {
	profile, err := b.profile()
	if err != nil {
		return nil, err
	}
	solid := sdf.Extrude3D(profile, b.height)

	dir, err := os.MkdirTemp("", "meshcad")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "body.stl")
	quiet(func() {
		sdfxrender.ToSTL(solid, cells, path, &sdfxrender.MarchingCubesOctree{})
	})
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rendering body: %w", err)
	}
	defer fp.Close()
	model, err := render.ReadSTL(fp)
	if err != nil {
		return nil, err
	}
	// Extrude3D is centered on z=0, the body sits on it.
	t := b.transform.Mul(d3.Transform{}.Translate(r3.Vec{Z: b.height / 2}))
	placed := model[:0]
	for _, tri := range model {
		for i := range tri.V {
			tri.V[i] = t.Transform(tri.V[i])
		}
		if tri.Area() > 0 {
			placed = append(placed, tri)
		}
	}
	return placed, nil
}

// quiet runs f with standard output discarded. sdfx reports rendering
// progress on stdout.
func quiet(f func()) {
	stdout := os.Stdout
	defer func() { os.Stdout = stdout }()
	null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err == nil {
		defer null.Close()
		os.Stdout = null
	}
	f()
}

// clearance is the angular extent of one tooth above the root circle.
type clearance struct {
	center, lo, hi float64 // lo and hi are relative to center
	height         float64 // tooth height above the root circle
	fillet         float64
}

// check verifies the teeth stick out of the root circle, do not overlap
// each other and leave room on the root circle for their fillets.
func (b *body) check() error {
	if len(b.teeth) == 0 {
		return nil
	}
	cl := make([]clearance, len(b.teeth))
	for i, t := range b.teeth {
		c, err := toothClearance(d2.Set(b.loops[t.loop]).Rotate(t.angle), b.outer)
		if err != nil {
			return fmt.Errorf("tooth %d: %w", i, err)
		}
		if t.fillet >= c.height {
			return fmt.Errorf("root fillet radius %g exceeds tooth height %g", t.fillet, c.height)
		}
		c.fillet = t.fillet
		cl[i] = c
	}
	sort.Slice(cl, func(i, j int) bool { return cl[i].center < cl[j].center })
	for i, c := range cl {
		next := cl[(i+1)%len(cl)]
		gap := 2*math.Pi - (c.hi - c.lo)
		if len(cl) > 1 {
			gap = positive(next.center-c.center) + next.lo - c.hi
		}
		if gap <= 0 {
			return errors.New("teeth overlap at the root circle")
		}
		if need := c.fillet + next.fillet; gap*b.outer < need {
			return fmt.Errorf("root fillets need %g mm between teeth, root circle leaves %g mm", need, gap*b.outer)
		}
	}
	return nil
}

// toothClearance measures the part of a counter clockwise tooth loop
// that lies outside the circle of radius r.
func toothClearance(loop []r2.Vec, r float64) (clearance, error) {
	var sum r2.Vec
	var outside []r2.Vec
	n := len(loop)
	for i, a := range loop {
		bv := loop[(i+1)%n]
		ra, rb := r2.Norm(a), r2.Norm(bv)
		if ra >= r {
			outside = append(outside, a)
			sum = r2.Add(sum, a)
		}
		if (ra < r) != (rb < r) {
			outside = append(outside, circleCrossing(a, bv, r))
		}
	}
	if len(outside) == 0 {
		return clearance{}, errors.New("tooth profile does not reach outside the root circle")
	}
	if sum == (r2.Vec{}) {
		sum = outside[0]
	}
	c := clearance{center: d2.Angle(sum)}
	for _, v := range outside {
		a := unwrap(d2.Angle(v) - c.center)
		c.lo = math.Min(c.lo, a)
		c.hi = math.Max(c.hi, a)
		c.height = math.Max(c.height, r2.Norm(v)-r)
	}
	return c, nil
}

// circleCrossing returns the point where segment ab crosses the circle of
// radius r centered at the origin. a and b lie on opposite sides.
func circleCrossing(a, b r2.Vec, r float64) r2.Vec {
	d := r2.Sub(b, a)
	// |a + t*d|^2 = r^2
	qa := r2.Dot(d, d)
	qb := 2 * r2.Dot(a, d)
	qc := r2.Dot(a, a) - r*r
	disc := math.Sqrt(math.Max(0, qb*qb-4*qa*qc))
	t := (-qb + disc) / (2 * qa)
	if t < 0 || t > 1 {
		t = (-qb - disc) / (2 * qa)
	}
	t = math.Max(0, math.Min(1, t))
	return r2.Add(a, r2.Scale(t, d))
}

// unwrap maps an angle difference to (-pi, pi].
func unwrap(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// positive maps an angle to [0, 2pi).
func positive(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
