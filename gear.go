// Package gear generates batches of meshing involute spur gears on
// selected pitch circles.
//
// ComputeBatch turns the selected circles and a shared gear definition into
// pure values: the tooth profile of every gear together with the rigid
// transforms that carry it from the XY plane onto its circle. Builder then
// replays those values onto a Modeler, the CAD collaborator that owns solid
// geometry.
package gear

import (
	"errors"

	"github.com/google/uuid"
	"github.com/soypat/gear/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrProfileConstruction is returned when the modeler rejects a curve,
// extrusion, fillet or pattern of a gear.
var ErrProfileConstruction = errors.New("profile construction failed")

// Handles returned by a Modeler. Their values are only meaningful to the
// Modeler that created them.
type (
	Curve   int
	Feature int
	Edge    int
	Body    int
)

// ExtrudeMode selects how an extrusion combines with existing bodies.
type ExtrudeMode uint8

const (
	_ ExtrudeMode = iota
	// NewBody creates a new body from the profile.
	NewBody
	// Join merges the extruded profile into the component body.
	Join
)

func (m ExtrudeMode) String() (str string) {
	switch m {
	case NewBody:
		str = "newBody"
	case Join:
		str = "join"
	default:
		str = "unknown"
	}
	return str
}

// Modeler creates CAD components.
type Modeler interface {
	// CreateComponent creates a new empty component with an origin
	// coincident with the world origin.
	CreateComponent(name string) (Component, error)
}

// Component is a CAD component holding a single gear.
type Component interface {
	// ID uniquely identifies the component.
	ID() uuid.UUID
	// Sketch creates a new sketch on the component's XY plane.
	Sketch() (Sketch, error)
	// Extrude extrudes the closed profiles of the sketch along +Z.
	Extrude(s Sketch, distance float64, mode ExtrudeMode) (Feature, Body, error)
	// RootEdges returns the straight edges where the extrusion f joins
	// the cylindrical face of the base body.
	RootEdges(base, f Feature) ([]Edge, error)
	// Fillet rounds the edges with a constant radius.
	Fillet(edges []Edge, radius float64) (Feature, error)
	// CircularPattern repeats features count times evenly about the
	// axis of the base feature's cylindrical face.
	CircularPattern(base Feature, features []Feature, count int) (Feature, error)
	// Transform moves body by the rigid transform t.
	Transform(body Body, t d3.Transform) error
	// Tag attaches an attribute to the component.
	Tag(group, name, value string) error
}

// Sketch is a 2D sketch in the XY plane of its component.
type Sketch interface {
	AddCircle(center r2.Vec, radius float64) (Curve, error)
	// AddSpline adds a fitted spline passing through the points in order.
	AddSpline(points []r2.Vec) (Curve, error)
	AddLine(p1, p2 r2.Vec) (Curve, error)
	// AddArc adds the arc that starts at p1, passes through p2 and ends at p3.
	AddArc(p1, p2, p3 r2.Vec) (Curve, error)
	// Tangent constrains curves a and b to be tangent where they meet.
	Tangent(a, b Curve) error
	// SetConstruction marks c as reference geometry that defines no profile.
	SetConstruction(c Curve) error
	// Hide hides the sketch.
	Hide() error
}
