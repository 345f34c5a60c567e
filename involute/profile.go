package involute

import (
	"fmt"
	"math"

	"github.com/soypat/gear/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// FlankSamples is the number of involute points fitted by each flank spline.
	FlankSamples = 15
	// rootOverlap is how far below the root circle the extension lines reach
	// so the tooth overlaps the root cylinder [mm].
	rootOverlap = 0.01
)

// SegmentKind is the type of curve of a profile segment.
type SegmentKind uint8

const (
	_ SegmentKind = iota
	Spline
	Line
	Arc
)

func (k SegmentKind) String() (str string) {
	switch k {
	case Spline:
		str = "spline"
	case Line:
		str = "line"
	case Arc:
		str = "arc"
	default:
		str = "unknown"
	}
	return str
}

// RootKind describes how the two flanks are joined at the tooth root.
type RootKind uint8

const (
	_ RootKind = iota
	// RootDirect joins the flank start points with one line. Used when the
	// base circle lies inside the root circle.
	RootDirect
	// RootExtended extends each flank radially below the root circle and
	// joins the extensions with a base line.
	RootExtended
)

// Segment is one curve of a tooth outline.
type Segment struct {
	Kind SegmentKind
	// Points holds the fit points of a spline, the two ends of a line
	// or start, mid and end points of an arc, in loop order.
	Points []r2.Vec
	// TangentTo is the index of the segment this segment must stay tangent
	// to, or -1 when it is unconstrained.
	TangentTo int
}

// Start returns the first point of the segment.
func (s Segment) Start() r2.Vec { return s.Points[0] }

// End returns the last point of the segment.
func (s Segment) End() r2.Vec { return s.Points[len(s.Points)-1] }

// Profile is the closed outline of a single tooth centered on the +X axis.
// Segments are ordered so that each one starts where the previous one ends
// and the last one ends where the first one starts.
type Profile struct {
	Segments []Segment
	Root     RootKind
}

// segment indices shared by both root kinds.
const (
	flankLow = iota
	tip
	flankHigh
)

// LowerFlank returns the flank fit points below the X axis, root to tip.
func (p Profile) LowerFlank() []r2.Vec { return p.Segments[flankLow].Points }

// UpperFlank returns the flank fit points above the X axis, root to tip.
func (p Profile) UpperFlank() []r2.Vec {
	return d2.Set(p.Segments[flankHigh].Points).Reverse()
}

// Polyline returns the segment points of the outline as one loop
// without repeating shared end points.
func (p Profile) Polyline() []r2.Vec {
	var loop []r2.Vec
	for _, s := range p.Segments {
		loop = append(loop, s.Points[:len(s.Points)-1]...)
	}
	return loop
}

// BuildProfile builds the outline of a single tooth of the gear described
// by s and its derived radii. The tooth is symmetric about the +X axis and
// reaches from below the root circle to the outside circle.
func BuildProfile(s Spec, r Radii) (Profile, error) {
	if s.Teeth < 1 {
		return Profile{}, fmt.Errorf("%w: need at least one tooth, got %d", ErrInvalidSpec, s.Teeth)
	}
	flank, err := Flank(r.BaseRadius(), r.OutsideRadius(), FlankSamples)
	if err != nil {
		return Profile{}, fmt.Errorf("tooth flank: %w", err)
	}
	pitchPoint, err := Point(r.BaseRadius(), r.PitchRadius())
	if err != nil {
		return Profile{}, fmt.Errorf("pitch point: %w", err)
	}
	pitchPointAngle := d2.Angle(pitchPoint)
	toothThicknessAngle := math.Pi / float64(s.Teeth)
	backlashAngle := 0.25 * s.Backlash / r.PitchRadius()
	// Center the tooth on the X axis.
	rotateAngle := -(toothThicknessAngle/2 + pitchPointAngle - backlashAngle)

	low := d2.Set(flank).Rotate(rotateAngle)
	high := low.MirrorX()
	tipMid := r2.Vec{X: r.OutsideRadius()}

	p := Profile{Segments: []Segment{
		flankLow:  {Kind: Spline, Points: low, TangentTo: -1},
		tip:       {Kind: Arc, Points: []r2.Vec{low[len(low)-1], tipMid, high[len(high)-1]}, TangentTo: -1},
		flankHigh: {Kind: Spline, Points: high.Reverse(), TangentTo: -1},
	}}
	if r.DirectRoot() {
		p.Root = RootDirect
		p.Segments = append(p.Segments, Segment{Kind: Line, Points: []r2.Vec{high[0], low[0]}, TangentTo: -1})
	} else {
		p.Root = RootExtended
		depth := r.RootRadius() - rootOverlap
		rootLow := d2.Pol{R: depth, Theta: d2.Angle(low[0])}.PolarToCartesian()
		rootHigh := d2.Pol{R: depth, Theta: d2.Angle(high[0])}.PolarToCartesian()
		p.Segments = append(p.Segments,
			Segment{Kind: Line, Points: []r2.Vec{high[0], rootHigh}, TangentTo: flankHigh},
			Segment{Kind: Line, Points: []r2.Vec{rootHigh, rootLow}, TangentTo: -1},
			Segment{Kind: Line, Points: []r2.Vec{rootLow, low[0]}, TangentTo: flankLow},
		)
	}
	return p, nil
}
