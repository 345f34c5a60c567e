package gear

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/soypat/gear/internal/d3"
	"github.com/soypat/gear/involute"
	"github.com/soypat/gear/placement"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var testSpec = involute.Spec{
	Module:           1,
	PressureAngle:    20 * math.Pi / 180,
	Thickness:        5,
	Backlash:         0.05,
	RootFilletRadius: 0.2,
	HoleDiameter:     4,
}

func xyCircle(x, y, radius float64) placement.Circle {
	return placement.Circle{
		Center: r3.Vec{X: x, Y: y},
		XDir:   r3.Vec{X: 1},
		YDir:   r3.Vec{Y: 1},
		Radius: radius,
	}
}

func TestComputeBatch(t *testing.T) {
	circles := []placement.Circle{
		xyCircle(0, 0, 10),
		xyCircle(0.5, 0, 0.1), // too small for a tooth
		xyCircle(15, 0, 5),
	}
	batch, err := ComputeBatch(circles, testSpec)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Gears) != 2 || len(batch.Failures) != 1 {
		t.Fatalf("got %d gears and %d failures", len(batch.Gears), len(batch.Failures))
	}
	if batch.Failures[0].Index != 1 || !errors.Is(batch.Err(), placement.ErrNoTeeth) {
		t.Errorf("unexpected failure %v", batch.Failures[0])
	}
	g0, g2 := batch.Gears[0], batch.Gears[1]
	if g0.Index != 0 || g2.Index != 2 {
		t.Errorf("gear indices %d %d", g0.Index, g2.Index)
	}
	if g0.Spec.Teeth != 20 || g2.Spec.Teeth != 10 {
		t.Errorf("teeth %d %d, want 20 10", g0.Spec.Teeth, g2.Spec.Teeth)
	}
	if g2.Target.Pair != 0 {
		t.Errorf("gear 2 paired with %d, want 0", g2.Target.Pair)
	}
	if len(g0.Steps) != 1 || len(g2.Steps) != 2 {
		t.Errorf("step counts %d %d, want 1 2", len(g0.Steps), len(g2.Steps))
	}
	if g0.Name() != "Spur Gear (20 teeth)" {
		t.Errorf("name %q", g0.Name())
	}
	var attrs Attributes
	if err := json.Unmarshal(g2.Attributes, &attrs); err != nil {
		t.Fatal(err)
	}
	if attrs.NumTeeth != 10 || attrs.Module != 1 || attrs.DiametralPitch != 25.4 || attrs.HoleDiameter != 4 {
		t.Errorf("attributes %+v", attrs)
	}
}

func TestComputeBatchInvalidSpec(t *testing.T) {
	circles := []placement.Circle{xyCircle(0, 0, 10)}
	for name, modify := range map[string]func(*involute.Spec){
		"module":   func(s *involute.Spec) { s.Module = 0 },
		"pressure": func(s *involute.Spec) { s.PressureAngle = -1 },
		"hole":     func(s *involute.Spec) { s.HoleDiameter = 0 },
		"backlash": func(s *involute.Spec) { s.Backlash = -1 },
	} {
		spec := testSpec
		modify(&spec)
		_, err := ComputeBatch(circles, spec)
		if !errors.Is(err, involute.ErrInvalidSpec) {
			t.Errorf("%s: got %v, want ErrInvalidSpec", name, err)
		}
	}
}

func TestComputeBatchEmpty(t *testing.T) {
	for _, circles := range [][]placement.Circle{nil, {}} {
		if _, err := ComputeBatch(circles, testSpec); !errors.Is(err, involute.ErrInvalidSpec) {
			t.Errorf("empty selection: got %v, want ErrInvalidSpec", err)
		}
	}
}

func TestBuilderCallOrder(t *testing.T) {
	batch, err := ComputeBatch([]placement.Circle{xyCircle(3, 0, 10)}, testSpec)
	if err != nil {
		t.Fatal(err)
	}
	m := &recorder{}
	results, err := Builder{Modeler: m}.Build(batch)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Component == nil || results[0].Err != nil {
		t.Fatalf("results %+v", results)
	}
	want := []string{
		"component Spur Gear (20 teeth)",
		"sketch 1", "circle", "circle", "extrude 1 newBody",
		"sketch 2",
		"spline", "arc", "spline", "line", "line", "line",
		"tangent 2 3", "tangent 0 5",
		"extrude 2 join",
		"rootEdges", "fillet 0.2",
		"pattern 2 x20",
		"sketch 3", "circle", "construction", "hide",
		"tag SpurGear/Values",
		"transform", "transform",
	}
	if got := m.calls; strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestBuilderNoFillet(t *testing.T) {
	spec := testSpec
	spec.RootFilletRadius = 0
	batch, err := ComputeBatch([]placement.Circle{xyCircle(0, 0, 25)}, spec)
	if err != nil {
		t.Fatal(err)
	}
	m := &recorder{}
	if _, err := (Builder{Modeler: m}).Build(batch); err != nil {
		t.Fatal(err)
	}
	for _, call := range m.calls {
		if call == "rootEdges" || strings.HasPrefix(call, "fillet") {
			t.Errorf("unexpected call %q", call)
		}
	}
	// 50 teeth: base circle inside root circle so the root is a single line.
	if n := count(m.calls, "line"); n != 1 {
		t.Errorf("got %d root lines, want 1", n)
	}
	if n := count(m.calls, "pattern 1 x50"); n != 1 {
		t.Errorf("pattern not called with the tooth only: %v", m.calls)
	}
}

func TestBuilderFailureContinues(t *testing.T) {
	batch, err := ComputeBatch([]placement.Circle{xyCircle(0, 0, 10), xyCircle(40, 0, 8)}, testSpec)
	if err != nil {
		t.Fatal(err)
	}
	m := &recorder{failFillet: 1}
	results, err := Builder{Modeler: m}.Build(batch)
	if !errors.Is(err, ErrProfileConstruction) {
		t.Fatalf("got %v, want ErrProfileConstruction", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("first gear failed: %v", results[0].Err)
	}
	var gerr *GearError
	if !errors.As(results[1].Err, &gerr) || gerr.Index != 1 {
		t.Errorf("second gear error %v", results[1].Err)
	}
	if results[1].Component == nil {
		t.Error("partially built component not reported")
	}
	if !strings.Contains(results[1].Err.Error(), "root fillet") {
		t.Errorf("error does not name failed stage: %v", results[1].Err)
	}
}

func count(calls []string, call string) (n int) {
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}

// recorder is a Modeler that logs every call.
type recorder struct {
	calls      []string
	components int
	// failFillet makes the fillet of the component with this index fail.
	failFillet int
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) CreateComponent(name string) (Component, error) {
	r.log("component %s", name)
	c := &recComponent{r: r, id: uuid.New(), index: r.components}
	r.components++
	return c, nil
}

type recComponent struct {
	r        *recorder
	id       uuid.UUID
	index    int
	sketches int
	features int
}

type recSketch struct {
	r      *recorder
	index  int
	curves int
}

func (c *recComponent) ID() uuid.UUID { return c.id }

func (c *recComponent) Sketch() (Sketch, error) {
	c.sketches++
	c.r.log("sketch %d", c.sketches)
	return &recSketch{r: c.r, index: c.sketches}, nil
}

func (c *recComponent) Extrude(s Sketch, distance float64, mode ExtrudeMode) (Feature, Body, error) {
	c.features++
	c.r.log("extrude %d %v", s.(*recSketch).index, mode)
	return Feature(c.features), 0, nil
}

func (c *recComponent) RootEdges(base, f Feature) ([]Edge, error) {
	c.r.log("rootEdges")
	return []Edge{0, 1}, nil
}

func (c *recComponent) Fillet(edges []Edge, radius float64) (Feature, error) {
	c.r.log("fillet %g", radius)
	if c.r.failFillet == c.index && c.index > 0 {
		return 0, errors.New("radius too large")
	}
	c.features++
	return Feature(c.features), nil
}

func (c *recComponent) CircularPattern(base Feature, features []Feature, count int) (Feature, error) {
	c.r.log("pattern %d x%d", len(features), count)
	c.features++
	return Feature(c.features), nil
}

func (c *recComponent) Transform(body Body, t d3.Transform) error {
	c.r.log("transform")
	return nil
}

func (c *recComponent) Tag(group, name, value string) error {
	if !json.Valid([]byte(value)) {
		return errors.New("tag value is not JSON")
	}
	c.r.log("tag %s/%s", group, name)
	return nil
}

func (s *recSketch) AddCircle(center r2.Vec, radius float64) (Curve, error) {
	return s.add("circle"), nil
}

func (s *recSketch) AddSpline(points []r2.Vec) (Curve, error) {
	if len(points) != involute.FlankSamples {
		return 0, errors.New("bad spline")
	}
	return s.add("spline"), nil
}

func (s *recSketch) AddLine(p1, p2 r2.Vec) (Curve, error) { return s.add("line"), nil }

func (s *recSketch) AddArc(p1, p2, p3 r2.Vec) (Curve, error) { return s.add("arc"), nil }

func (s *recSketch) Tangent(a, b Curve) error {
	s.r.log("tangent %d %d", a, b)
	return nil
}

func (s *recSketch) SetConstruction(c Curve) error {
	s.r.log("construction")
	return nil
}

func (s *recSketch) Hide() error {
	s.r.log("hide")
	return nil
}

func (s *recSketch) add(kind string) Curve {
	s.r.log(kind)
	s.curves++
	return Curve(s.curves - 1)
}
