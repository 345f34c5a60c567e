// Package render streams triangle meshes to STL files.
package render

import (
	"math"

	"github.com/soypat/gear/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices are ordered counter clockwise
// when seen from outside the solid.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle. Degenerate triangles
// have a zero normal.
func (t Triangle3) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Area returns the area of the triangle.
func (t Triangle3) Area() float64 {
	return r3.Norm(r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))) / 2
}

// Renderer produces the triangles of a mesh. ReadTriangles fills t and
// returns io.EOF once every triangle has been read.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Bounds returns the axis aligned bounding box of the model.
func Bounds(model []Triangle3) r3.Box {
	if len(model) == 0 {
		return r3.Box{}
	}
	b := r3.Box{Min: d3.Elem(math.Inf(1)), Max: d3.Elem(math.Inf(-1))}
	for _, t := range model {
		for _, v := range t.V {
			b.Min = d3.MinElem(b.Min, v)
			b.Max = d3.MaxElem(b.Max, v)
		}
	}
	return b
}
