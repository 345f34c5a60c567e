// Package placement finds meshing pairs among selected pitch circles and
// computes the rigid transforms that carry a gear built at the origin of
// the XY plane onto each circle.
package placement

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gear/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// NormalTolerance is the per component tolerance under which two unit plane
// normals are considered the same direction.
const NormalTolerance = 1e-9

// NoPair is the Target.Pair value of a gear that meshes with no earlier gear.
const NoPair = -1

var (
	// ErrDegeneratePlane is returned for circles whose sketch plane basis
	// does not span a plane.
	ErrDegeneratePlane = errors.New("degenerate sketch plane")
	// ErrNoTeeth is returned for circles too small to hold a single tooth.
	ErrNoTeeth = errors.New("circle too small for a tooth")
)

var zAxis = r3.Vec{Z: 1}

// Circle is a selected pitch circle in world coordinates.
type Circle struct {
	Center r3.Vec
	// XDir and YDir are the basis directions of the sketch hosting the circle.
	XDir, YDir r3.Vec
	Radius     float64
}

// Normal returns the unit normal of the sketch plane hosting c,
// or the zero vector if the plane basis is degenerate.
func (c Circle) Normal() r3.Vec {
	n := r3.Cross(c.XDir, c.YDir)
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Target is the placement solution for one selected circle.
type Target struct {
	Circle
	Normal r3.Vec
	Teeth  int
	// Pair is the index of the lower-index gear this gear meshes with or NoPair.
	Pair int
	// Angle is the rotation of the gear about its own axis [rad].
	Angle float64
	// Err is set when the circle cannot hold a gear.
	// Such targets never pair and carry no placement.
	Err error
}

// Plan computes pairing and mesh angles for circles, to be cut with
// gears of the given module [mm]. The returned targets share the input order.
//
// Gear i meshes with some gear j < i when both sketch planes share a normal
// and the center distance measured in that plane satisfies
//
//	round(2*d/module) == teeth_i + teeth_j
//
// The lowest such j is chosen. A gear may be chosen by several later gears.
func Plan(circles []Circle, module float64) ([]Target, error) {
	if !(module > 0) {
		return nil, fmt.Errorf("module must be positive, got %g", module)
	}
	targets := make([]Target, len(circles))
	for i, c := range circles {
		t := Target{Circle: c, Normal: c.Normal(), Pair: NoPair}
		t.Teeth = int(math.Round(2 * c.Radius / module))
		switch {
		case t.Normal == (r3.Vec{}):
			t.Err = fmt.Errorf("%w: circle %d sketch axes %v %v", ErrDegeneratePlane, i, c.XDir, c.YDir)
		case t.Teeth < 1:
			t.Err = fmt.Errorf("%w: circle %d radius %g at module %g", ErrNoTeeth, i, c.Radius, module)
		}
		targets[i] = t
	}

	for i := 1; i < len(targets); i++ {
		ti := &targets[i]
		if ti.Err != nil {
			continue
		}
		for j := 0; j < i; j++ {
			tj := targets[j]
			if tj.Err != nil || !d3.EqualWithin(ti.Normal, tj.Normal, NormalTolerance) {
				continue
			}
			delta := planeDelta(*ti, tj)
			d := math.Hypot(delta.X, delta.Y)
			if int(math.Round(2*d/module)) == ti.Teeth+tj.Teeth {
				ti.Pair = j
				break
			}
		}
	}

	// Pairs only point to lower indices so one forward pass sees every
	// partner angle already fixed.
	for i := range targets {
		ti := &targets[i]
		if ti.Err != nil {
			continue
		}
		if ti.Pair == NoPair {
			ti.Angle = math.Pi / (2 * float64(ti.Teeth))
			continue
		}
		tj := targets[ti.Pair]
		delta := planeDelta(*ti, tj)
		ti.Angle = MeshAngle(ti.Teeth, tj.Teeth, tj.Angle, math.Atan2(delta.Y, delta.X))
	}
	return targets, nil
}

// MeshAngle returns the rotation of a gear with teethI teeth so that it
// interleaves with a gear of teethJ teeth already rotated by angleJ.
// deltaAngle is the direction from the center of gear j to the center of
// gear i [rad].
func MeshAngle(teethI, teethJ int, angleJ, deltaAngle float64) float64 {
	ni, nj := float64(teethI), float64(teethJ)
	baseAngle := -(angleJ-math.Pi/(2*nj))*(nj/ni) + math.Pi/(2*ni)
	rotAngle := deltaAngle * (1 + nj/ni)
	return math.Pi + baseAngle + rotAngle
}

// planeDelta returns the center offset of a from b in the frame a gear
// on a's plane is built in. The first two components lie in the plane.
func planeDelta(a, b Target) r3.Vec {
	align := alignment(a.Normal)
	return align.RotateT(r3.Sub(a.Center, b.Center))
}

func alignment(normal r3.Vec) d3.Transform {
	if d3.EqualWithin(normal, zAxis, NormalTolerance) {
		return d3.Transform{}
	}
	return d3.RotateToVec(zAxis, normal, NormalTolerance)
}
