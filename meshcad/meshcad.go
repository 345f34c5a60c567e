// Package meshcad implements gear.Modeler with an in-memory modeler that
// builds spur gear components as triangle meshes.
//
// It understands the feature sequence a gear is built with: an annular base
// extrusion, tooth profiles joined onto it, root fillets and a circular
// pattern of the tooth. Bodies are kept as sdfx signed distance shapes and
// only rendered with marching cubes when Triangles is called.
package meshcad

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/soypat/gear"
	"github.com/soypat/gear/internal/d3"
	"github.com/soypat/gear/render"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultCells is the number of marching cubes cells along the longest
// axis of a body when New is called with a non-positive value.
const DefaultCells = 200

// Modeler creates mesh backed components.
type Modeler struct {
	cells      int
	components []*Component
}

var _ gear.Modeler = (*Modeler)(nil)

// New returns a Modeler that renders bodies with cells marching cubes
// cells along their longest axis.
func New(cells int) *Modeler {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &Modeler{cells: cells}
}

// CreateComponent adds an empty component to the modeler.
func (m *Modeler) CreateComponent(name string) (gear.Component, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	c := &Component{
		id:     id,
		name:   name,
		cells:  m.cells,
		tags:   make(map[string]string),
	}
	m.components = append(m.components, c)
	return c, nil
}

// Components returns the components in creation order.
func (m *Modeler) Components() []*Component { return m.components }

// Triangles returns the triangles of every component body.
func (m *Modeler) Triangles() ([]render.Triangle3, error) {
	var model []render.Triangle3
	for _, c := range m.components {
		t, err := c.Triangles()
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", c.name, err)
		}
		model = append(model, t...)
	}
	return model, nil
}

type featureKind uint8

const (
	featureBase featureKind = iota
	featureTooth
	featureFillet
	featurePattern
)

type feature struct {
	kind featureKind
	body int
	// tooth indexes body.teeth for tooth and fillet features.
	tooth  int
	radius float64
}

// edge is a straight edge where a tooth meets the root cylinder.
type edge struct {
	feature int
	side    int
}

type tooth struct {
	// loop indexes body.loops.
	loop   int
	angle  float64
	fillet float64
}

type body struct {
	height      float64
	outer, hole float64
	// loops are the counter clockwise tooth profiles joined to the body.
	loops     [][]r2.Vec
	teeth     []tooth
	transform d3.Transform
}

// Component is a gear component. It implements gear.Component.
type Component struct {
	id       uuid.UUID
	name     string
	cells    int
	sketches []*Sketch
	features []feature
	edges    []edge
	bodies   []*body
	tags     map[string]string
}

var _ gear.Component = (*Component)(nil)

func (c *Component) ID() uuid.UUID { return c.id }

func (c *Component) Name() string { return c.name }

// Sketches returns the sketches in creation order.
func (c *Component) Sketches() []*Sketch { return c.sketches }

// Attribute returns the value stored by Tag.
func (c *Component) Attribute(group, name string) (string, bool) {
	v, ok := c.tags[group+"/"+name]
	return v, ok
}

// Bodies returns the number of bodies of the component.
func (c *Component) Bodies() int { return len(c.bodies) }

// Teeth returns the number of teeth joined to body b.
func (c *Component) Teeth(b gear.Body) int {
	bd, err := c.body(b)
	if err != nil {
		return 0
	}
	return len(bd.teeth)
}

// BodyTransform returns the accumulated placement of body b.
func (c *Component) BodyTransform(b gear.Body) d3.Transform {
	bd, err := c.body(b)
	if err != nil {
		return d3.Transform{}
	}
	return bd.transform
}

func (c *Component) Sketch() (gear.Sketch, error) {
	s := &Sketch{owner: c}
	c.sketches = append(c.sketches, s)
	return s, nil
}

func (c *Component) Extrude(gs gear.Sketch, distance float64, mode gear.ExtrudeMode) (gear.Feature, gear.Body, error) {
	s, ok := gs.(*Sketch)
	if !ok || s.owner != c {
		return 0, 0, errors.New("sketch does not belong to component")
	}
	if !(distance > 0) {
		return 0, 0, fmt.Errorf("extrude distance must be positive, got %g", distance)
	}
	switch mode {
	case gear.NewBody:
		return c.extrudeBase(s, distance)
	case gear.Join:
		return c.extrudeTooth(s, distance)
	}
	return 0, 0, fmt.Errorf("unsupported extrude mode %v", mode)
}

// extrudeBase creates an annular body from two concentric circles.
func (c *Component) extrudeBase(s *Sketch, distance float64) (gear.Feature, gear.Body, error) {
	var radii []float64
	for _, cv := range s.curves {
		if cv.construction || cv.kind != curveCircle {
			continue
		}
		if cv.points[0] != (r2.Vec{}) {
			return 0, 0, fmt.Errorf("circle center %v not at sketch origin", cv.points[0])
		}
		radii = append(radii, cv.radius)
	}
	if len(radii) != 2 {
		return 0, 0, fmt.Errorf("base profile needs 2 concentric circles, got %d", len(radii))
	}
	outer, hole := math.Max(radii[0], radii[1]), math.Min(radii[0], radii[1])
	if outer-hole < chainTol {
		return 0, 0, fmt.Errorf("hole radius %g leaves no material inside radius %g", hole, outer)
	}
	c.bodies = append(c.bodies, &body{height: distance, outer: outer, hole: hole})
	b := len(c.bodies) - 1
	c.features = append(c.features, feature{kind: featureBase, body: b})
	return gear.Feature(len(c.features) - 1), gear.Body(b), nil
}

// extrudeTooth joins the closed profile of s to the last body.
func (c *Component) extrudeTooth(s *Sketch, distance float64) (gear.Feature, gear.Body, error) {
	if len(c.bodies) == 0 {
		return 0, 0, errors.New("join extrude without a body")
	}
	b := len(c.bodies) - 1
	bd := c.bodies[b]
	if math.Abs(distance-bd.height) > chainTol {
		return 0, 0, fmt.Errorf("join height %g differs from body height %g", distance, bd.height)
	}
	loop, err := s.loop()
	if err != nil {
		return 0, 0, err
	}
	for _, v := range loop {
		if r2.Norm(v) <= bd.hole {
			return 0, 0, fmt.Errorf("tooth profile point %v reaches into hole of radius %g", v, bd.hole)
		}
	}
	bd.loops = append(bd.loops, loop)
	bd.teeth = append(bd.teeth, tooth{loop: len(bd.loops) - 1})
	if err := bd.check(); err != nil {
		bd.loops = bd.loops[:len(bd.loops)-1]
		bd.teeth = bd.teeth[:len(bd.teeth)-1]
		return 0, 0, err
	}
	c.features = append(c.features, feature{kind: featureTooth, body: b, tooth: len(bd.teeth) - 1})
	return gear.Feature(len(c.features) - 1), gear.Body(b), nil
}

func (c *Component) RootEdges(base, f gear.Feature) ([]gear.Edge, error) {
	bf, err := c.feature(base, featureBase)
	if err != nil {
		return nil, err
	}
	tf, err := c.feature(f, featureTooth)
	if err != nil {
		return nil, err
	}
	if bf.body != tf.body {
		return nil, errors.New("features belong to different bodies")
	}
	// Every tooth crosses the root circle exactly twice.
	edges := make([]gear.Edge, 2)
	for side := range edges {
		c.edges = append(c.edges, edge{feature: int(f), side: side})
		edges[side] = gear.Edge(len(c.edges) - 1)
	}
	return edges, nil
}

func (c *Component) Fillet(edges []gear.Edge, radius float64) (gear.Feature, error) {
	if !(radius > 0) {
		return 0, fmt.Errorf("fillet radius must be positive, got %g", radius)
	}
	if len(edges) == 0 {
		return 0, errors.New("no edges to fillet")
	}
	f := -1
	for _, e := range edges {
		if e < 0 || int(e) >= len(c.edges) {
			return 0, fmt.Errorf("edge %d not in component", e)
		}
		if f >= 0 && c.edges[e].feature != f {
			return 0, errors.New("fillet edges belong to different features")
		}
		f = c.edges[e].feature
	}
	tf := c.features[f]
	bd := c.bodies[tf.body]
	prev := bd.teeth[tf.tooth].fillet
	bd.teeth[tf.tooth].fillet = radius
	if err := bd.check(); err != nil {
		bd.teeth[tf.tooth].fillet = prev
		return 0, err
	}
	c.features = append(c.features, feature{kind: featureFillet, body: tf.body, tooth: tf.tooth, radius: radius})
	return gear.Feature(len(c.features) - 1), nil
}

func (c *Component) CircularPattern(base gear.Feature, features []gear.Feature, count int) (gear.Feature, error) {
	bf, err := c.feature(base, featureBase)
	if err != nil {
		return 0, err
	}
	if count < 1 {
		return 0, fmt.Errorf("pattern count must be at least 1, got %d", count)
	}
	bd := c.bodies[bf.body]
	toothIdx, fillet := -1, 0.
	for _, gf := range features {
		if gf < 0 || int(gf) >= len(c.features) {
			return 0, fmt.Errorf("feature %d not in component", gf)
		}
		f := c.features[gf]
		if f.body != bf.body {
			return 0, errors.New("patterned feature belongs to another body")
		}
		switch f.kind {
		case featureTooth:
			if toothIdx >= 0 && toothIdx != f.tooth {
				return 0, errors.New("pattern supports a single tooth")
			}
			toothIdx = f.tooth
		case featureFillet:
			fillet = f.radius
		default:
			return 0, fmt.Errorf("feature %d cannot be patterned", gf)
		}
	}
	if toothIdx < 0 {
		return 0, errors.New("pattern has no tooth feature")
	}
	// Copies are only filleted when the fillet feature is patterned too.
	src := bd.teeth[toothIdx]
	n := len(bd.teeth)
	for i := 1; i < count; i++ {
		bd.teeth = append(bd.teeth, tooth{
			loop:   src.loop,
			angle:  src.angle + 2*math.Pi*float64(i)/float64(count),
			fillet: fillet,
		})
	}
	if err := bd.check(); err != nil {
		bd.teeth = bd.teeth[:n]
		return 0, err
	}
	c.features = append(c.features, feature{kind: featurePattern, body: bf.body})
	return gear.Feature(len(c.features) - 1), nil
}

// Transform applies t after the body's current placement.
func (c *Component) Transform(b gear.Body, t d3.Transform) error {
	bd, err := c.body(b)
	if err != nil {
		return err
	}
	bd.transform = t.Mul(bd.transform)
	return nil
}

func (c *Component) Tag(group, name, value string) error {
	if group == "" || name == "" {
		return errors.New("attribute group and name must be set")
	}
	c.tags[group+"/"+name] = value
	return nil
}

// Triangles renders every body and returns its triangles in world
// coordinates.
func (c *Component) Triangles() ([]render.Triangle3, error) {
	var model []render.Triangle3
	for i, bd := range c.bodies {
		t, err := bd.triangles(c.cells)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		model = append(model, t...)
	}
	return model, nil
}

func (c *Component) body(b gear.Body) (*body, error) {
	if b < 0 || int(b) >= len(c.bodies) {
		return nil, fmt.Errorf("body %d not in component", b)
	}
	return c.bodies[b], nil
}

func (c *Component) feature(f gear.Feature, kind featureKind) (feature, error) {
	if f < 0 || int(f) >= len(c.features) {
		return feature{}, fmt.Errorf("feature %d not in component", f)
	}
	if c.features[f].kind != kind {
		return feature{}, fmt.Errorf("feature %d has wrong kind", f)
	}
	return c.features[f], nil
}
