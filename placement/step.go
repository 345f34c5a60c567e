package placement

import (
	"fmt"

	"github.com/soypat/gear/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// StepKind enumerates the rigid transforms applied to a gear body.
type StepKind uint8

const (
	_ StepKind = iota
	// RotateZ turns the gear about its own axis by the mesh angle.
	RotateZ
	// AlignNormal rotates the default +Z axis onto the sketch plane normal.
	AlignNormal
	// Translate moves the gear center to the circle center.
	Translate
)

func (k StepKind) String() (str string) {
	switch k {
	case RotateZ:
		str = "rotateZ"
	case AlignNormal:
		str = "alignNormal"
	case Translate:
		str = "translate"
	default:
		str = "unknown"
	}
	return str
}

// Step is a single rigid transform of the placement sequence.
type Step struct {
	Kind StepKind
	// Angle is used by RotateZ [rad].
	Angle float64
	// Normal is the target unit normal of AlignNormal.
	Normal r3.Vec
	// Offset is the translation of Translate.
	Offset r3.Vec
}

// Transform returns the step as a homogeneous transform.
func (s Step) Transform() d3.Transform {
	switch s.Kind {
	case RotateZ:
		return d3.RotateZ(s.Angle)
	case AlignNormal:
		return alignment(s.Normal)
	case Translate:
		return d3.Transform{}.Translate(s.Offset)
	}
	panic("unknown placement step " + s.Kind.String())
}

func (s Step) String() string {
	switch s.Kind {
	case RotateZ:
		return fmt.Sprintf("%v(%.6g rad)", s.Kind, s.Angle)
	case AlignNormal:
		return fmt.Sprintf("%v%v", s.Kind, s.Normal)
	}
	return fmt.Sprintf("%v%v", s.Kind, s.Offset)
}

// Steps is an ordered placement sequence. Earlier steps apply first.
type Steps []Step

// Transform composes the sequence into a single transform.
func (s Steps) Transform() d3.Transform {
	var t d3.Transform
	for _, step := range s {
		t = step.Transform().Mul(t)
	}
	return t
}

// Steps returns the placement sequence of t: rotation by the mesh angle,
// alignment onto the sketch plane then translation to the circle center.
// Alignment is omitted for the default +Z normal and translation for
// a circle centered at the world origin. Targets with an error have
// no placement.
func (t Target) Steps() Steps {
	if t.Err != nil {
		return nil
	}
	steps := Steps{{Kind: RotateZ, Angle: t.Angle}}
	if !d3.EqualWithin(t.Normal, zAxis, NormalTolerance) {
		steps = append(steps, Step{Kind: AlignNormal, Normal: t.Normal})
	}
	if t.Center != (r3.Vec{}) {
		steps = append(steps, Step{Kind: Translate, Offset: t.Center})
	}
	return steps
}
