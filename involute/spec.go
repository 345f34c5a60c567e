package involute

import (
	"fmt"
	"math"
)

const (
	// MillimetresPerInch is millimetres per inch (25.4)
	MillimetresPerInch = 25.4
	// centimetresPerInch is used by the dedendum table which works in centimetres.
	centimetresPerInch = 2.54
	mmPerCm            = 10.
)

// Spec holds the inputs that define a single spur gear.
// Lengths are in millimetres and angles in radians.
type Spec struct {
	Module           float64 // pitch diameter divided by tooth count [mm]
	PressureAngle    float64 // tooth flank steepness [rad]
	Teeth            int     // number of teeth
	Thickness        float64 // gear face width [mm]
	Backlash         float64 // gap left between meshing teeth at the pitch circle [mm]
	RootFilletRadius float64 // fillet applied where each tooth meets the root circle [mm]
	HoleDiameter     float64 // center bore [mm]
}

// Validate checks the Spec inputs. Returned errors wrap ErrInvalidSpec.
func (s Spec) Validate() error {
	switch {
	case !(s.Module > 0):
		return fmt.Errorf("%w: module must be positive, got %g", ErrInvalidSpec, s.Module)
	case !(s.PressureAngle > 0) || s.PressureAngle >= math.Pi/2:
		return fmt.Errorf("%w: pressure angle must be in (0, pi/2), got %g", ErrInvalidSpec, s.PressureAngle)
	case s.Teeth < 1:
		return fmt.Errorf("%w: need at least one tooth, got %d", ErrInvalidSpec, s.Teeth)
	case !(s.Thickness > 0):
		return fmt.Errorf("%w: thickness must be positive, got %g", ErrInvalidSpec, s.Thickness)
	case !(s.HoleDiameter > 0):
		return fmt.Errorf("%w: hole diameter must be positive, got %g", ErrInvalidSpec, s.HoleDiameter)
	case !(s.Backlash >= 0):
		return fmt.Errorf("%w: backlash must not be negative, got %g", ErrInvalidSpec, s.Backlash)
	case !(s.RootFilletRadius >= 0):
		return fmt.Errorf("%w: root fillet radius must not be negative, got %g", ErrInvalidSpec, s.RootFilletRadius)
	}
	return nil
}

// Radii are the characteristic circles of a gear. Diameters are in millimetres.
type Radii struct {
	// DiametralPitch is the number of teeth per inch of pitch diameter.
	DiametralPitch  float64
	PitchDiameter   float64
	Dedendum        float64
	RootDiameter    float64
	BaseDiameter    float64
	OutsideDiameter float64
}

func (r Radii) PitchRadius() float64   { return r.PitchDiameter / 2 }
func (r Radii) RootRadius() float64    { return r.RootDiameter / 2 }
func (r Radii) BaseRadius() float64    { return r.BaseDiameter / 2 }
func (r Radii) OutsideRadius() float64 { return r.OutsideDiameter / 2 }

// DirectRoot reports whether the involute starts above the root circle,
// in which case both flanks are joined by a single line at the root.
func (r Radii) DirectRoot() bool { return r.BaseDiameter < r.RootDiameter }

// DeriveRadii computes the characteristic circles of a gear from its Spec.
//
// The dedendum follows a gear standard table that mixes an angle threshold
// with a circular pitch threshold, evaluated in centimetres:
//
//	dp < 20° (in radians)  dedendum = 1.157/dp
//	pi/dp >= 20            dedendum = 1.25/dp
//	otherwise              dedendum = 1.2/dp + 0.002*2.54
func DeriveRadii(s Spec) (Radii, error) {
	if err := s.Validate(); err != nil {
		return Radii{}, err
	}
	dpInch := MillimetresPerInch / s.Module
	dp := dpInch / centimetresPerInch // teeth per centimetre.
	n := float64(s.Teeth)

	var dedendum float64
	if dp < 20*(math.Pi/180)-1e-6 {
		dedendum = 1.157 / dp
	} else if circularPitch := math.Pi / dp; circularPitch >= 20 {
		dedendum = 1.25 / dp
	} else {
		dedendum = 1.2/dp + 0.002*centimetresPerInch
	}
	pitch := n / dp
	r := Radii{
		DiametralPitch:  dpInch,
		PitchDiameter:   pitch * mmPerCm,
		Dedendum:        dedendum * mmPerCm,
		RootDiameter:    (pitch - 2*dedendum) * mmPerCm,
		BaseDiameter:    pitch * math.Cos(s.PressureAngle) * mmPerCm,
		OutsideDiameter: (n + 2) / dp * mmPerCm,
	}
	if !(r.RootDiameter > 0) {
		return Radii{}, fmt.Errorf("%w: %d teeth of module %g leave no root circle (root diameter %g)",
			ErrInvalidSpec, s.Teeth, s.Module, r.RootDiameter)
	}
	return r, nil
}
