package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/soypat/gear/involute"
	"github.com/soypat/gear/placement"
	"gonum.org/v1/gonum/spatial/r3"
)

// defaultPressureAngle is used when a job omits the pressure angle [deg].
// An explicit zero is passed on and rejected by the gear validation.
const defaultPressureAngle = 20

// Job is the JSON input of spurgear: one gear definition shared by every
// selected pitch circle.
type Job struct {
	Spec    SpecFile     `json:"spec"`
	Circles []CircleFile `json:"circles"`
}

// SpecFile holds the shared gear definition. Lengths are millimetres and
// the pressure angle is in degrees.
type SpecFile struct {
	Module           float64  `json:"module"`
	PressureAngle    *float64 `json:"pressureAngle,omitempty"`
	Thickness        float64  `json:"thickness"`
	Backlash         float64  `json:"backlash,omitempty"`
	RootFilletRadius float64  `json:"rootFilletRadius,omitempty"`
	HoleDiameter     float64  `json:"holeDiameter"`
}

// CircleFile is a pitch circle on its sketch plane. Omitted axes default
// to the world XY plane.
type CircleFile struct {
	Center [3]float64  `json:"center"`
	XDir   *[3]float64 `json:"xDir,omitempty"`
	YDir   *[3]float64 `json:"yDir,omitempty"`
	Radius float64     `json:"radius"`
}

func loadJob(path string) (Job, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Job{}, err
	}
	defer fp.Close()
	return decodeJob(fp)
}

func decodeJob(r io.Reader) (job Job, err error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("decoding job: %w", err)
	}
	if len(job.Circles) == 0 {
		return Job{}, errors.New("job has no circles")
	}
	return job, nil
}

// Inputs converts the job into the shared spec and the pitch circles.
func (j Job) Inputs() (involute.Spec, []placement.Circle) {
	pa := float64(defaultPressureAngle)
	if j.Spec.PressureAngle != nil {
		pa = *j.Spec.PressureAngle
	}
	spec := involute.Spec{
		Module:           j.Spec.Module,
		PressureAngle:    pa * math.Pi / 180,
		Thickness:        j.Spec.Thickness,
		Backlash:         j.Spec.Backlash,
		RootFilletRadius: j.Spec.RootFilletRadius,
		HoleDiameter:     j.Spec.HoleDiameter,
	}
	circles := make([]placement.Circle, len(j.Circles))
	for i, c := range j.Circles {
		circles[i] = placement.Circle{
			Center: vec(c.Center),
			XDir:   r3.Vec{X: 1},
			YDir:   r3.Vec{Y: 1},
			Radius: c.Radius,
		}
		if c.XDir != nil {
			circles[i].XDir = vec(*c.XDir)
		}
		if c.YDir != nil {
			circles[i].YDir = vec(*c.YDir)
		}
	}
	return spec, circles
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
