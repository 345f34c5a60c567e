// Package matter compensates printed parts for material shrinkage.
package matter

import (
	"github.com/soypat/gear/render"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
)

type ViscousMaterial struct {
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// ScaleFactor is the uniform scale that makes a printed part cool down to
// its modeled size.
func (m ViscousMaterial) ScaleFactor() float64 {
	return 1 / (1 - m.shrink)
}

// ScaleAbout returns a copy of model scaled by ScaleFactor about center,
// so an assembly keeps each part at its position.
func (m ViscousMaterial) ScaleAbout(model []render.Triangle3, center r3.Vec) []render.Triangle3 {
	k := m.ScaleFactor()
	scaled := make([]render.Triangle3, len(model))
	for i, t := range model {
		for j, v := range t.V {
			scaled[i].V[j] = r3.Add(center, r3.Scale(k, r3.Sub(v, center)))
		}
	}
	return scaled
}

// InternalDimScale returns the modeled size of an internal dimension such as
// a bore so that it prints at real size.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.shrink+1) + m.pullShrink
}

// Center returns the center of the bounding box of model.
func Center(model []render.Triangle3) r3.Vec {
	b := render.Bounds(model)
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}
