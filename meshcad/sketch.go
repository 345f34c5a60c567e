package meshcad

import (
	"errors"
	"fmt"

	"github.com/soypat/gear"
	"github.com/soypat/gear/form2"
	"github.com/soypat/gear/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// chainTol is the distance under which curve end points are joined.
	chainTol = 1e-6
	// splineFacets is the number of segments sampled between spline fit points.
	splineFacets = 4
	arcFacets    = 8
)

type curveKind uint8

const (
	curveCircle curveKind = iota
	curveSpline
	curveLine
	curveArc
)

type curve struct {
	kind curveKind
	// points holds the circle center, spline fit points,
	// line end points or arc start, mid and end points.
	points       []r2.Vec
	radius       float64
	construction bool
	// startDir and endDir fix spline end tangents. Zero means free.
	startDir, endDir r2.Vec
}

func (c curve) start() r2.Vec { return c.points[0] }
func (c curve) end() r2.Vec   { return c.points[len(c.points)-1] }

// Sketch is a planar sketch of a Component. It implements gear.Sketch.
type Sketch struct {
	owner  *Component
	curves []curve
	hidden bool
}

var _ gear.Sketch = (*Sketch)(nil)

// Hidden reports whether the sketch was hidden.
func (s *Sketch) Hidden() bool { return s.hidden }

// Circles returns the center and radius of every circle in the sketch.
func (s *Sketch) Circles() (centers []r2.Vec, radii []float64) {
	for _, c := range s.curves {
		if c.kind == curveCircle {
			centers = append(centers, c.points[0])
			radii = append(radii, c.radius)
		}
	}
	return centers, radii
}

func (s *Sketch) add(c curve) gear.Curve {
	s.curves = append(s.curves, c)
	return gear.Curve(len(s.curves) - 1)
}

func (s *Sketch) AddCircle(center r2.Vec, radius float64) (gear.Curve, error) {
	if !(radius > 0) {
		return 0, fmt.Errorf("circle radius must be positive, got %g", radius)
	}
	return s.add(curve{kind: curveCircle, points: []r2.Vec{center}, radius: radius}), nil
}

func (s *Sketch) AddSpline(points []r2.Vec) (gear.Curve, error) {
	if len(points) < 2 {
		return 0, fmt.Errorf("spline needs at least 2 fit points, got %d", len(points))
	}
	fit := make([]r2.Vec, len(points))
	copy(fit, points)
	return s.add(curve{kind: curveSpline, points: fit}), nil
}

func (s *Sketch) AddLine(p1, p2 r2.Vec) (gear.Curve, error) {
	if d2.EqualWithin(p1, p2, chainTol) {
		return 0, fmt.Errorf("zero length line at %v", p1)
	}
	return s.add(curve{kind: curveLine, points: []r2.Vec{p1, p2}}), nil
}

func (s *Sketch) AddArc(p1, p2, p3 r2.Vec) (gear.Curve, error) {
	// Sample once to reject colinear points early.
	if _, err := form2.Arc3(p1, p2, p3, 1); err != nil {
		return 0, err
	}
	return s.add(curve{kind: curveArc, points: []r2.Vec{p1, p2, p3}}), nil
}

// Tangent constrains a spline and a line that share an end point. The spline
// end tangent is set to continue along the line.
func (s *Sketch) Tangent(a, b gear.Curve) error {
	ca, err := s.curve(a)
	if err != nil {
		return err
	}
	cb, err := s.curve(b)
	if err != nil {
		return err
	}
	if ca.kind == curveLine && cb.kind == curveSpline {
		ca, cb = cb, ca
	}
	if ca.kind != curveSpline || cb.kind != curveLine {
		return errors.New("tangent constraint needs a spline and a line")
	}
	spline, line := ca, *cb
	switch {
	case touches(spline.start(), line):
		// Travel along the line into the spline start.
		spline.startDir = r2.Sub(spline.start(), other(spline.start(), line))
	case touches(spline.end(), line):
		spline.endDir = r2.Sub(other(spline.end(), line), spline.end())
	default:
		return errors.New("tangent curves do not share an end point")
	}
	return nil
}

func (s *Sketch) SetConstruction(c gear.Curve) error {
	cv, err := s.curve(c)
	if err != nil {
		return err
	}
	cv.construction = true
	return nil
}

func (s *Sketch) Hide() error {
	s.hidden = true
	return nil
}

func (s *Sketch) curve(c gear.Curve) (*curve, error) {
	if c < 0 || int(c) >= len(s.curves) {
		return nil, fmt.Errorf("curve %d not in sketch", c)
	}
	return &s.curves[c], nil
}

func touches(p r2.Vec, line curve) bool {
	return d2.EqualWithin(p, line.start(), chainTol) || d2.EqualWithin(p, line.end(), chainTol)
}

// other returns the end of line that is not p.
func other(p r2.Vec, line curve) r2.Vec {
	if d2.EqualWithin(p, line.start(), chainTol) {
		return line.end()
	}
	return line.start()
}

// sample returns the polyline of an open curve from its start to its end.
func (c curve) sample() ([]r2.Vec, error) {
	switch c.kind {
	case curveLine:
		return []r2.Vec{c.start(), c.end()}, nil
	case curveSpline:
		return form2.Spline(c.points, c.startDir, c.endDir, splineFacets)
	case curveArc:
		return form2.Arc3(c.points[0], c.points[1], c.points[2], arcFacets)
	}
	return nil, errors.New("closed curve has no open polyline")
}

// loop chains the open profile curves of the sketch into a single closed
// counter clockwise polyline without repeated end point.
func (s *Sketch) loop() ([]r2.Vec, error) {
	var parts [][]r2.Vec
	for i, c := range s.curves {
		if c.construction || c.kind == curveCircle {
			continue
		}
		pts, err := c.sample()
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i, err)
		}
		parts = append(parts, pts)
	}
	if len(parts) == 0 {
		return nil, errors.New("sketch has no open curves to form a profile")
	}
	used := make([]bool, len(parts))
	used[0] = true
	loop := append([]r2.Vec{}, parts[0]...)
	for n := 1; n < len(parts); n++ {
		end := loop[len(loop)-1]
		found := false
		for i, part := range parts {
			if used[i] {
				continue
			}
			switch {
			case d2.EqualWithin(part[0], end, chainTol):
			case d2.EqualWithin(part[len(part)-1], end, chainTol):
				part = d2.Set(part).Reverse()
			default:
				continue
			}
			used[i] = true
			loop = append(loop, part[1:]...)
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("profile open at %v", end)
		}
	}
	if !d2.EqualWithin(loop[0], loop[len(loop)-1], chainTol) {
		return nil, fmt.Errorf("profile open between %v and %v", loop[len(loop)-1], loop[0])
	}
	loop = loop[:len(loop)-1]
	if signedArea(loop) < 0 {
		loop = d2.Set(loop).Reverse()
	}
	return loop, nil
}

// signedArea is positive for counter clockwise polygons.
func signedArea(poly []r2.Vec) float64 {
	var a float64
	for i := range poly {
		a += r2.Cross(poly[i], poly[(i+1)%len(poly)])
	}
	return a / 2
}
