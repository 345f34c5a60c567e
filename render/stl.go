package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// CreateSTL writes the triangles of r to a binary STL file at path.
func CreateSTL(path string, r Renderer) error {
	model, err := RenderAll(r)
	if err != nil {
		return err
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSTL(fp, model); err != nil {
		fp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return fp.Close()
}

// WriteSTL writes model to w in binary STL format. Normals are computed
// from the vertex winding.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("no triangles to write")
	}
	if uint64(len(model)) > math.MaxUint32 {
		return fmt.Errorf("%d triangles do not fit in an STL file", len(model))
	}
	bw := bufio.NewWriterSize(w, stlTriangleSize<<10)
	var b [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(b[80:], uint32(len(model)))
	if _, err := bw.Write(b[:]); err != nil {
		return err
	}
	for _, t := range model {
		putTriangle(b[:stlTriangleSize], t)
		if _, err := bw.Write(b[:stlTriangleSize]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSTL reads the triangles of a binary STL file. Stored normals are
// ignored. Vertices must be finite.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	br := bufio.NewReader(r)
	var b [stlHeaderSize]byte
	if _, err := io.ReadFull(br, b[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(b[80:])
	if count == 0 {
		return nil, errors.New("STL file has no triangles")
	}
	model := make([]Triangle3, 0, count)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, b[:stlTriangleSize]); err != nil {
			return nil, fmt.Errorf("reading STL triangle %d of %d: %w", i+1, count, err)
		}
		t, err := getTriangle(b[:stlTriangleSize])
		if err != nil {
			return nil, fmt.Errorf("STL triangle %d: %w", i+1, err)
		}
		model = append(model, t)
	}
	return model, nil
}

// putTriangle encodes t as a 50 byte STL record.
func putTriangle(b []byte, t Triangle3) {
	_ = b[stlTriangleSize-1]
	putVec(b, t.Normal())
	for i, v := range t.V {
		putVec(b[12*(i+1):], v)
	}
	binary.LittleEndian.PutUint16(b[48:], 0) // attribute byte count
}

func getTriangle(b []byte) (t Triangle3, err error) {
	_ = b[stlTriangleSize-1]
	for i := range t.V {
		if t.V[i], err = getVec(b[12*(i+1):]); err != nil {
			return Triangle3{}, err
		}
	}
	return t, nil
}

func putVec(b []byte, v r3.Vec) {
	_ = b[11]
	binary.LittleEndian.PutUint32(b, math32.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math32.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math32.Float32bits(float32(v.Z)))
}

func getVec(b []byte) (r3.Vec, error) {
	_ = b[11]
	var f [3]float32
	for i := range f {
		f[i] = math32.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		if math32.IsNaN(f[i]) || math32.IsInf(f[i], 0) {
			return r3.Vec{}, errors.New("vertex is not finite")
		}
	}
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}, nil
}
