package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/gear"
	"github.com/soypat/gear/involute"
	"github.com/soypat/gear/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

// imgDelta is the normalized tolerance of preview comparisons
// (0: perfect match, 1: loose match).
const imgDelta = 0.05

const trainJob = `{
	"spec": {"module": 1, "thickness": 5, "backlash": 0.05, "rootFilletRadius": 0.2, "holeDiameter": 4},
	"circles": [
		{"center": [0, 0, 0], "radius": 10},
		{"center": [15, 0, 0], "radius": 5},
		{"center": [0, 20, 0], "radius": 0.1}
	]
}`

func TestDecodeJob(t *testing.T) {
	job, err := decodeJob(strings.NewReader(trainJob))
	if err != nil {
		t.Fatal(err)
	}
	spec, circles := job.Inputs()
	if math.Abs(spec.PressureAngle-20*math.Pi/180) > 1e-15 {
		t.Errorf("default pressure angle %g", spec.PressureAngle)
	}
	if spec.Module != 1 || spec.Thickness != 5 || spec.HoleDiameter != 4 || spec.RootFilletRadius != 0.2 {
		t.Errorf("spec %+v", spec)
	}
	if len(circles) != 3 || circles[1].Center != (r3.Vec{X: 15}) || circles[1].Radius != 5 {
		t.Fatalf("circles %+v", circles)
	}
	if circles[0].Normal() != (r3.Vec{Z: 1}) {
		t.Errorf("default plane normal %v", circles[0].Normal())
	}
}

func TestDecodeJobPlane(t *testing.T) {
	job, err := decodeJob(strings.NewReader(`{
		"spec": {"module": 2, "pressureAngle": 14.5, "thickness": 3, "holeDiameter": 5},
		"circles": [{"center": [1, 2, 3], "xDir": [0, 1, 0], "yDir": [0, 0, 1], "radius": 12}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	spec, circles := job.Inputs()
	if math.Abs(spec.PressureAngle-14.5*math.Pi/180) > 1e-15 {
		t.Errorf("pressure angle %g", spec.PressureAngle)
	}
	if circles[0].Normal() != (r3.Vec{X: 1}) {
		t.Errorf("plane normal %v", circles[0].Normal())
	}
}

func TestZeroPressureAngle(t *testing.T) {
	job, err := decodeJob(strings.NewReader(`{
		"spec": {"module": 1, "pressureAngle": 0, "thickness": 3, "holeDiameter": 2},
		"circles": [{"center": [0, 0, 0], "radius": 10}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	spec, circles := job.Inputs()
	if spec.PressureAngle != 0 {
		t.Fatalf("explicit zero pressure angle became %g", spec.PressureAngle)
	}
	if _, err := gear.ComputeBatch(circles, spec); !errors.Is(err, involute.ErrInvalidSpec) {
		t.Errorf("got error %v, want ErrInvalidSpec", err)
	}
}

func TestDecodeJobErrors(t *testing.T) {
	for _, input := range []string{
		`{"spec": {"module": 1}, "circles": []}`,
		`{"spec": {"module": 1, "teeth": 20}, "circles": [{"center": [0, 0, 0], "radius": 1}]}`,
		`{"spec": `,
	} {
		if _, err := decodeJob(strings.NewReader(input)); err == nil {
			t.Errorf("expected error decoding %q", input)
		}
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.json")
	if err := os.WriteFile(jobPath, []byte(trainJob), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config{
		job:    jobPath,
		output: filepath.Join(dir, "train.stl"),
		png:    filepath.Join(dir, "train.png"),
		plot:   filepath.Join(dir, "profile.svg"),
		cells:  60,
	}
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	failed, err := run(cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	if failed != 1 {
		t.Errorf("got %d failed gears, want 1", failed)
	}
	if !strings.Contains(logs.String(), "gear skipped") {
		t.Errorf("skipped gear not logged:\n%s", logs.String())
	}
	fp, err := os.Open(cfg.output)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	model, err := render.ReadSTL(fp)
	if err != nil {
		t.Fatal(err)
	}
	b := render.Bounds(model)
	if b.Max.Z > 5.5 || b.Min.X > -10 || b.Max.X < 19 {
		t.Errorf("assembly bounds %+v", b)
	}
	for _, path := range []string{cfg.png, cfg.plot} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("missing output %s: %v", path, err)
		}
	}
}

func TestRunPLA(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.json")
	const job = `{
		"spec": {"module": 1, "thickness": 4, "holeDiameter": 3},
		"circles": [{"center": [30, -5, 0], "radius": 10}]
	}`
	if err := os.WriteFile(jobPath, []byte(job), 0o644); err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bounds := func(pla bool) r3.Box {
		cfg := config{job: jobPath, output: filepath.Join(dir, "g.stl"), cells: 50, pla: pla}
		if _, err := run(cfg, log); err != nil {
			t.Fatal(err)
		}
		fp, err := os.Open(cfg.output)
		if err != nil {
			t.Fatal(err)
		}
		defer fp.Close()
		model, err := render.ReadSTL(fp)
		if err != nil {
			t.Fatal(err)
		}
		return render.Bounds(model)
	}
	plain, scaled := bounds(false), bounds(true)
	// The gear grows about its axis at (30, -5).
	for _, b := range []r3.Box{plain, scaled} {
		if math.Abs(b.Min.X+b.Max.X-60) > 1 || math.Abs(b.Min.Y+b.Max.Y+10) > 1 {
			t.Errorf("gear left its axis: %+v", b)
		}
	}
	if !(scaled.Max.X-scaled.Min.X > plain.Max.X-plain.Min.X) {
		t.Errorf("PLA scaled gear not larger: %+v vs %+v", scaled, plain)
	}
}

func TestPreviewDeterministic(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.json")
	if err := os.WriteFile(jobPath, []byte(trainJob), 0o644); err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config{job: jobPath, output: filepath.Join(dir, "a.stl"), png: filepath.Join(dir, "a.png"), cells: 40}
	if _, err := run(cfg, log); err != nil {
		t.Fatal(err)
	}
	second := filepath.Join(dir, "b.png")
	if err := stlToPNG(cfg.output, second, defaultView); err != nil {
		t.Fatal(err)
	}
	a, err := os.ReadFile(cfg.png)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := cmpimg.EqualApprox("png", a, b, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("preview of the same STL differs")
	}
}
