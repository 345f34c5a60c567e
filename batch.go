package gear

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soypat/gear/involute"
	"github.com/soypat/gear/placement"
)

// Gear is the computed geometry of one gear of a batch.
type Gear struct {
	// Index of the selected circle the gear was computed for.
	Index   int
	Spec    involute.Spec
	Radii   involute.Radii
	Profile involute.Profile
	Target  placement.Target
	// Steps carries the gear from the component XY plane onto its circle.
	Steps placement.Steps
	// Attributes is the serialized gear definition stored on the component.
	Attributes json.RawMessage
}

// Name returns the component name of the gear.
func (g Gear) Name() string {
	return fmt.Sprintf("Spur Gear (%d teeth)", g.Spec.Teeth)
}

// Attributes is the gear definition stored on every built component
// so that the gear can be regenerated later.
type Attributes struct {
	Module           float64 `json:"module"`
	DiametralPitch   float64 `json:"diametralPitch"`
	NumTeeth         int     `json:"numTeeth"`
	Thickness        float64 `json:"thickness"`
	RootFilletRadius float64 `json:"rootFilletRad"`
	PressureAngle    float64 `json:"pressureAngle"`
	HoleDiameter     float64 `json:"holeDiam"`
	Backlash         float64 `json:"backlash"`
}

// GearError is the failure of a single gear of a batch.
type GearError struct {
	Index int
	Err   error
}

func (e *GearError) Error() string { return fmt.Sprintf("gear %d: %s", e.Index, e.Err) }

func (e *GearError) Unwrap() error { return e.Err }

// Batch is the result of ComputeBatch. Every selected circle ends up either
// in Gears or in Failures, both ordered by circle index.
type Batch struct {
	Module   float64
	Gears    []Gear
	Failures []*GearError
}

// Err returns the joined errors of all failed gears or nil.
func (b Batch) Err() error {
	if len(b.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(b.Failures))
	for i := range b.Failures {
		errs[i] = b.Failures[i]
	}
	return errors.Join(errs...)
}

// ComputeBatch computes a gear for every circle using the definition of
// shared. The tooth count of every gear follows from its circle radius so
// shared.Teeth is ignored.
//
// An invalid shared definition or an empty selection fails the whole batch.
// Failures of single gears are collected in the returned Batch and do not
// stop the rest.
func ComputeBatch(circles []placement.Circle, shared involute.Spec) (Batch, error) {
	if len(circles) == 0 {
		return Batch{}, fmt.Errorf("%w: no circles selected", involute.ErrInvalidSpec)
	}
	check := shared
	check.Teeth = 1
	if err := check.Validate(); err != nil {
		return Batch{}, err
	}
	targets, err := placement.Plan(circles, shared.Module)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: %s", involute.ErrInvalidSpec, err)
	}
	batch := Batch{Module: shared.Module}
	for i, target := range targets {
		g, err := computeGear(i, target, shared)
		if err != nil {
			batch.Failures = append(batch.Failures, &GearError{Index: i, Err: err})
			continue
		}
		batch.Gears = append(batch.Gears, g)
	}
	return batch, nil
}

func computeGear(index int, target placement.Target, shared involute.Spec) (Gear, error) {
	if target.Err != nil {
		return Gear{}, target.Err
	}
	spec := shared
	spec.Teeth = target.Teeth
	radii, err := involute.DeriveRadii(spec)
	if err != nil {
		return Gear{}, err
	}
	profile, err := involute.BuildProfile(spec, radii)
	if err != nil {
		return Gear{}, err
	}
	attrs, err := json.Marshal(Attributes{
		Module:           spec.Module,
		DiametralPitch:   radii.DiametralPitch,
		NumTeeth:         spec.Teeth,
		Thickness:        spec.Thickness,
		RootFilletRadius: spec.RootFilletRadius,
		PressureAngle:    spec.PressureAngle,
		HoleDiameter:     spec.HoleDiameter,
		Backlash:         spec.Backlash,
	})
	if err != nil {
		return Gear{}, err
	}
	return Gear{
		Index:      index,
		Spec:       spec,
		Radii:      radii,
		Profile:    profile,
		Target:     target,
		Steps:      target.Steps(),
		Attributes: attrs,
	}, nil
}
