package dataset

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"volumeslices/internal/models"
)

// Shape selects a synthetic scalar field
type Shape string

const (
	// ShapeSphere is a solid ball whose intensity falls off towards its surface.
	ShapeSphere Shape = "sphere"
	// ShapeShell is a hollow spherical shell with a denser core.
	ShapeShell Shape = "shell"
	// ShapeGradient ramps linearly along Z, which makes slice ordering easy to inspect.
	ShapeGradient Shape = "gradient"
)

// Synthesize generates an X*Y*Z dataset with unit extents filled with shape.
func Synthesize(shape Shape, x, y, z int) (*models.Dataset, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %dx%dx%d", x, y, z)
	}

	var field func(u, v, w float64) float64
	switch shape {
	case ShapeSphere:
		field = func(u, v, w float64) float64 {
			r := math.Sqrt(u*u + v*v + w*w)
			return math.Max(0, 1-r/0.8)
		}
	case ShapeShell:
		field = func(u, v, w float64) float64 {
			r := math.Sqrt(u*u + v*v + w*w)
			shell := math.Exp(-math.Pow((r-0.7)/0.06, 2))
			core := math.Max(0, 0.5-r) * 0.8
			return math.Min(1, shell+core)
		}
	case ShapeGradient:
		field = func(_, _, w float64) float64 {
			return (w + 1) / 2
		}
	default:
		return nil, fmt.Errorf("unknown shape: %s", shape)
	}

	data := make([]byte, x*y*z)
	for k := 0; k < z; k++ {
		w := normalized(k, z)
		for j := 0; j < y; j++ {
			v := normalized(j, y)
			for i := 0; i < x; i++ {
				u := normalized(i, x)
				data[(k*y+j)*x+i] = uint8(math.Round(255 * field(u, v, w)))
			}
		}
	}

	return &models.Dataset{
		ResolutionX: uint32(x),
		ResolutionY: uint32(y),
		ResolutionZ: uint32(z),
		ExtentX:     1,
		ExtentY:     1,
		ExtentZ:     1,
		Data:        data,
		Checksum:    xxhash.Sum64(data),
	}, nil
}

// normalized maps sample i of n to the cell center in [-1, 1].
func normalized(i, n int) float64 {
	return (float64(i)+0.5)/float64(n)*2 - 1
}
