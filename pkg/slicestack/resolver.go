package slicestack

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mat"

	"volumeslices/internal/models"
)

// ErrSingularModelView is returned when the model-view matrix cannot be
// inverted, so no viewing axis can be determined.
var ErrSingularModelView = errors.New("model-view matrix is singular")

// singularThreshold is the smallest |det| accepted for the model-view matrix.
const singularThreshold = 1e-12

// viewForward is the camera's viewing direction in view space.
var viewForward = mat.NewVecDense(4, []float64{0, 0, -1, 0})

// ViewDirection expresses the camera's viewing direction in volume (object)
// space by transforming view-space -Z with the inverse model-view matrix.
func ViewDirection(model, view mgl32.Mat4) ([3]float64, error) {
	modelView := view.Mul4(model)

	// mgl32 stores column-major; gonum wants row-major.
	m := mat.NewDense(4, 4, nil)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m.Set(row, col, float64(modelView.At(row, col)))
		}
	}

	det := mat.Det(m)
	if math.Abs(det) < singularThreshold || math.IsNaN(det) {
		return [3]float64{}, fmt.Errorf("%w: determinant %g", ErrSingularModelView, det)
	}

	var inverse mat.Dense
	if err := inverse.Inverse(m); err != nil {
		return [3]float64{}, fmt.Errorf("%w: %v", ErrSingularModelView, err)
	}

	var dir mat.VecDense
	dir.MulVec(&inverse, viewForward)
	return [3]float64{dir.AtVec(0), dir.AtVec(1), dir.AtVec(2)}, nil
}

// DominantAxis picks the axis with the largest absolute component of dir.
// Ties resolve by first match in the order Y, X, Z. The direction is Positive
// only for a strictly positive component.
func DominantAxis(dir [3]float64) models.ViewCase {
	absX, absY, absZ := math.Abs(dir[0]), math.Abs(dir[1]), math.Abs(dir[2])
	largest := math.Max(absX, math.Max(absY, absZ))

	var axis models.Axis
	switch largest {
	case absY:
		axis = models.AxisY
	case absX:
		axis = models.AxisX
	default:
		axis = models.AxisZ
	}

	direction := models.Negative
	if dir[axis] > 0 {
		direction = models.Positive
	}
	return models.ViewCase{Axis: axis, Direction: direction}
}

// ResolveView returns the stack and traversal direction to render for the
// given model and view transforms.
func ResolveView(model, view mgl32.Mat4) (models.ViewCase, error) {
	dir, err := ViewDirection(model, view)
	if err != nil {
		return models.ViewCase{}, err
	}
	return DominantAxis(dir), nil
}
