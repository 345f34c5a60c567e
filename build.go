package gear

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/gear/involute"
	"gonum.org/v1/gonum/spatial/r2"
)

// AttributeGroup and AttributeName locate the serialized gear
// definition among component attributes.
const (
	AttributeGroup = "SpurGear"
	AttributeName  = "Values"
)

// Builder replays computed gears onto a Modeler.
type Builder struct {
	Modeler Modeler
	// Logger receives build progress at debug level. slog.Default is used if nil.
	Logger *slog.Logger
}

// Result is the outcome of building one gear. Component is set as soon as
// the component exists, even if a later stage failed.
type Result struct {
	Index     int
	Component Component
	Err       error
}

// Build creates one component per gear of the batch. Modeler failures
// abort the current gear only. Components left partially built are
// reported in the results and not removed.
// The returned error joins the errors of every failed gear.
func (b Builder) Build(batch Batch) ([]Result, error) {
	log := b.Logger
	if log == nil {
		log = slog.Default()
	}
	results := make([]Result, 0, len(batch.Gears))
	var errs []error
	for _, g := range batch.Gears {
		comp, stage, err := b.buildGear(g)
		res := Result{Index: g.Index, Component: comp}
		if err != nil {
			res.Err = &GearError{Index: g.Index, Err: fmt.Errorf("%w: %s: %w", ErrProfileConstruction, stage, err)}
			errs = append(errs, res.Err)
			log.Error("gear build failed", "index", g.Index, "teeth", g.Spec.Teeth, "stage", stage, "error", err)
		} else {
			log.Debug("gear built", "index", g.Index, "teeth", g.Spec.Teeth, "component", comp.ID(), "steps", len(g.Steps))
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// buildGear returns the stage name at which building failed.
func (b Builder) buildGear(g Gear) (comp Component, stage string, err error) {
	comp, err = b.Modeler.CreateComponent(g.Name())
	if err != nil {
		return nil, "create component", err
	}
	origin := r2.Vec{}

	base, err := comp.Sketch()
	if err != nil {
		return comp, "base sketch", err
	}
	if _, err = base.AddCircle(origin, g.Radii.RootRadius()); err != nil {
		return comp, "root circle", err
	}
	if _, err = base.AddCircle(origin, g.Spec.HoleDiameter/2); err != nil {
		return comp, "hole circle", err
	}
	baseFeature, body, err := comp.Extrude(base, g.Spec.Thickness, NewBody)
	if err != nil {
		return comp, "base extrude", err
	}

	tooth, err := comp.Sketch()
	if err != nil {
		return comp, "tooth sketch", err
	}
	if err = addProfile(tooth, g.Profile); err != nil {
		return comp, "tooth profile", err
	}
	toothFeature, _, err := comp.Extrude(tooth, g.Spec.Thickness, Join)
	if err != nil {
		return comp, "tooth extrude", err
	}

	patterned := []Feature{toothFeature}
	if g.Spec.RootFilletRadius > 0 {
		edges, err := comp.RootEdges(baseFeature, toothFeature)
		if err != nil {
			return comp, "root edges", err
		}
		fillet, err := comp.Fillet(edges, g.Spec.RootFilletRadius)
		if err != nil {
			return comp, "root fillet", err
		}
		patterned = append(patterned, fillet)
	}
	if _, err = comp.CircularPattern(baseFeature, patterned, g.Spec.Teeth); err != nil {
		return comp, "tooth pattern", err
	}

	pitch, err := comp.Sketch()
	if err != nil {
		return comp, "pitch sketch", err
	}
	pitchCircle, err := pitch.AddCircle(origin, g.Radii.PitchRadius())
	if err != nil {
		return comp, "pitch circle", err
	}
	if err = pitch.SetConstruction(pitchCircle); err != nil {
		return comp, "pitch circle", err
	}
	if err = pitch.Hide(); err != nil {
		return comp, "pitch sketch", err
	}
	if err = comp.Tag(AttributeGroup, AttributeName, string(g.Attributes)); err != nil {
		return comp, "tag", err
	}

	for _, step := range g.Steps {
		if err = comp.Transform(body, step.Transform()); err != nil {
			return comp, "placement " + step.Kind.String(), err
		}
	}
	return comp, "", nil
}

// addProfile draws the tooth outline segments in order and applies
// their tangency constraints once every curve exists.
func addProfile(s Sketch, p involute.Profile) error {
	curves := make([]Curve, len(p.Segments))
	for i, seg := range p.Segments {
		var err error
		switch seg.Kind {
		case involute.Spline:
			curves[i], err = s.AddSpline(seg.Points)
		case involute.Line:
			curves[i], err = s.AddLine(seg.Start(), seg.End())
		case involute.Arc:
			if len(seg.Points) != 3 {
				return fmt.Errorf("segment %d: arc needs 3 points, got %d", i, len(seg.Points))
			}
			curves[i], err = s.AddArc(seg.Points[0], seg.Points[1], seg.Points[2])
		default:
			return fmt.Errorf("segment %d: unknown kind %v", i, seg.Kind)
		}
		if err != nil {
			return fmt.Errorf("%v segment %d: %w", seg.Kind, i, err)
		}
	}
	for i, seg := range p.Segments {
		if seg.TangentTo < 0 {
			continue
		}
		if err := s.Tangent(curves[seg.TangentTo], curves[i]); err != nil {
			return fmt.Errorf("tangent %d to %d: %w", i, seg.TangentTo, err)
		}
	}
	return nil
}
