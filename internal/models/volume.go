package models

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrDatasetSize is returned when a dataset's sample buffer does not match its grid resolution.
var ErrDatasetSize = errors.New("dataset sample count does not match grid resolution")

// Dataset represents a scalar 3D grid loaded from a volume file
type Dataset struct {
	// ResolutionX, ResolutionY, ResolutionZ are the grid dimensions in samples
	ResolutionX uint32
	ResolutionY uint32
	ResolutionZ uint32

	// BorderSize is carried by the file header but unused (always 0)
	BorderSize uint32

	// ExtentX, ExtentY, ExtentZ are the physical extents of the grid
	ExtentX float32
	ExtentY float32
	ExtentZ float32

	// Data holds X*Y*Z unsigned byte samples, Z outermost, then Y, then X
	Data []byte

	// Checksum is the xxhash64 digest of Data, filled in by the loader
	Checksum uint64
}

// SampleCount returns X*Y*Z.
func (d *Dataset) SampleCount() int {
	return int(d.ResolutionX) * int(d.ResolutionY) * int(d.ResolutionZ)
}

// Validate checks the size invariant len(Data) == X*Y*Z.
func (d *Dataset) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", ErrDatasetSize)
	}
	if want := d.SampleCount(); len(d.Data) != want {
		return fmt.Errorf("%w: have %d bytes, grid %dx%dx%d needs %d",
			ErrDatasetSize, len(d.Data), d.ResolutionX, d.ResolutionY, d.ResolutionZ, want)
	}
	return nil
}

// Axis names one of the three principal axes of the volume
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the principal axes in stack construction order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis accepts "x", "y" or "z" in either case.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", s)
}

// Direction is the traversal direction of a slice stack relative to the viewer
type Direction int

const (
	// Positive means the view direction points along +axis; slices are drawn high to low.
	Positive Direction = iota
	// Negative means the view direction points along -axis (or is zero); slices are drawn low to high.
	Negative
)

func (d Direction) String() string {
	if d == Positive {
		return "positive"
	}
	return "negative"
}

// ViewCase is one of the six (axis, direction) render paths
type ViewCase struct {
	Axis      Axis
	Direction Direction
}

func (v ViewCase) String() string {
	sign := "+"
	if v.Direction == Negative {
		sign = "-"
	}
	return sign + v.Axis.String()
}

// Vertex is the interleaved layout uploaded for slice quads
type Vertex struct {
	// Position is in object space, the unit cube spanning [-1, 1]
	Position mgl32.Vec3

	// TexCoord addresses the slice texture
	TexCoord mgl32.Vec2
}

// VertexStride is the byte size of one interleaved Vertex.
const VertexStride = 5 * 4

// TexCoordOffset is the byte offset of TexCoord inside a Vertex.
const TexCoordOffset = 3 * 4

// VerticesPerSlice is the vertex count of one slice quad (two triangles).
const VerticesPerSlice = 6
