// Package form2 samples 2D sketch curves into polylines. Functions return
// an error where their must2 counterparts panic.
package form2

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/gear/form2/must2"
	"gonum.org/v1/gonum/spatial/r2"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Spline samples a Catmull-Rom spline through the fit points.
// Non-zero start and end set the end tangent directions.
func Spline(fit []r2.Vec, start, end r2.Vec, facets int) (v []r2.Vec, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must2.Spline(fit, start, end, facets), err
}

// Arc3 samples the arc from p1 through p2 to p3.
func Arc3(p1, p2, p3 r2.Vec, facets int) (v []r2.Vec, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must2.Arc3(p1, p2, p3, facets), err
}
