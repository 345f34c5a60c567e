package render_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/gear/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// cube returns the 12 outward facing triangles of an axis aligned cube.
func cube(size float64) []render.Triangle3 {
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x * size, Y: y * size, Z: z * size} }
	quad := func(a, b, c, d r3.Vec) []render.Triangle3 {
		return []render.Triangle3{{V: [3]r3.Vec{a, b, c}}, {V: [3]r3.Vec{a, c, d}}}
	}
	var model []render.Triangle3
	model = append(model, quad(v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0))...) // bottom
	model = append(model, quad(v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1))...) // top
	model = append(model, quad(v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1))...) // front
	model = append(model, quad(v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0))...) // back
	model = append(model, quad(v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0))...) // left
	model = append(model, quad(v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1))...) // right
	return model
}

func TestSTLCreateWriteRead(t *testing.T) {
	model := cube(2)
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := render.CreateSTL(path, render.NewMeshRenderer(model)); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	bfile, err := io.ReadAll(fp)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84+50*len(model) {
		t.Fatalf("STL size %d, want %d", b.Len(), 84+50*len(model))
	}
	if b.String() != string(bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("read %d triangles, want %d", len(got), len(model))
	}
	for i := range got {
		if got[i] != model[i] {
			t.Errorf("triangle %d: got %v, want %v", i, got[i], model[i])
		}
	}
}

func TestWriteEmptySTL(t *testing.T) {
	if err := render.WriteSTL(io.Discard, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}

func TestCubeNormalsOutward(t *testing.T) {
	center := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	for i, tri := range cube(1) {
		c := r3.Scale(1./3, r3.Add(r3.Add(tri.V[0], tri.V[1]), tri.V[2]))
		if r3.Dot(tri.Normal(), r3.Sub(c, center)) <= 0 {
			t.Errorf("triangle %d normal %v points inward", i, tri.Normal())
		}
	}
}

func TestRenderAllBounds(t *testing.T) {
	model, err := render.RenderAll(render.NewMeshRenderer(cube(3)))
	if err != nil {
		t.Fatal(err)
	}
	if len(model) != 12 {
		t.Fatalf("got %d triangles", len(model))
	}
	b := render.Bounds(model)
	if b.Min != (r3.Vec{}) || b.Max != (r3.Vec{X: 3, Y: 3, Z: 3}) {
		t.Errorf("bounds %+v", b)
	}
}

func TestReadSTLErrors(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, cube(1)); err != nil {
		t.Fatal(err)
	}
	good := b.Bytes()

	nan := append([]byte(nil), good...)
	// Y coordinate of the second vertex of the first triangle.
	binary.LittleEndian.PutUint32(nan[84+12+12+4:], math.Float32bits(float32(math.NaN())))
	empty := append([]byte(nil), good[:84]...)
	binary.LittleEndian.PutUint32(empty[80:], 0)

	for _, test := range []struct {
		name string
		data []byte
	}{
		{"short header", good[:40]},
		{"truncated triangles", good[:len(good)-10]},
		{"NaN vertex", nan},
		{"no triangles", empty},
	} {
		if _, err := render.ReadSTL(bytes.NewReader(test.data)); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}

func TestSTLNormals(t *testing.T) {
	var b bytes.Buffer
	model := cube(1)
	if err := render.WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	data := b.Bytes()
	for i, tri := range model {
		rec := data[84+50*i:]
		n := tri.Normal()
		for j, want := range []float64{n.X, n.Y, n.Z} {
			got := math.Float32frombits(binary.LittleEndian.Uint32(rec[4*j:]))
			if got != float32(want) {
				t.Errorf("triangle %d normal component %d: got %g, want %g", i, j, got, want)
			}
		}
	}
}
