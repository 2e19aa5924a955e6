package slicestack

import (
	"github.com/go-gl/mathgl/mgl32"

	"volumeslices/internal/models"
	"volumeslices/pkg/graphics"
)

// quadLayout places a slice's texture on its plane: texture u runs along
// uAxis scaled by uSign, v along vAxis scaled by vSign. The signs mirror the
// image between the two traversal directions so it never appears flipped.
type quadLayout struct {
	uAxis, vAxis models.Axis
	uSign, vSign float32
}

var quadLayouts = map[models.ViewCase]quadLayout{
	{Axis: models.AxisX, Direction: models.Positive}: {uAxis: models.AxisZ, uSign: 1, vAxis: models.AxisY, vSign: 1},
	{Axis: models.AxisX, Direction: models.Negative}: {uAxis: models.AxisZ, uSign: -1, vAxis: models.AxisY, vSign: 1},
	{Axis: models.AxisY, Direction: models.Positive}: {uAxis: models.AxisX, uSign: -1, vAxis: models.AxisZ, vSign: -1},
	{Axis: models.AxisY, Direction: models.Negative}: {uAxis: models.AxisX, uSign: 1, vAxis: models.AxisZ, vSign: 1},
	{Axis: models.AxisZ, Direction: models.Positive}: {uAxis: models.AxisX, uSign: -1, vAxis: models.AxisY, vSign: 1},
	{Axis: models.AxisZ, Direction: models.Negative}: {uAxis: models.AxisX, uSign: 1, vAxis: models.AxisY, vSign: 1},
}

// quadTexCoords is the corner order of the two triangles, shared by every case.
var quadTexCoords = [models.VerticesPerSlice]mgl32.Vec2{
	{0, 0}, {1, 0}, {0, 1},
	{0, 1}, {1, 0}, {1, 1},
}

// SliceQuad returns the six vertices of the slice plane at depth along the
// view case's axis, spanning [-1, 1] on the other two axes.
func SliceQuad(vc models.ViewCase, depth float32) [models.VerticesPerSlice]models.Vertex {
	layout := quadLayouts[vc]

	var quad [models.VerticesPerSlice]models.Vertex
	for i, uv := range quadTexCoords {
		var p mgl32.Vec3
		p[vc.Axis] = depth
		p[layout.uAxis] = layout.uSign * (2*uv[0] - 1)
		p[layout.vAxis] = layout.vSign * (2*uv[1] - 1)
		quad[i] = models.Vertex{Position: p, TexCoord: uv}
	}
	return quad
}

// SlicePlacement is one entry of a stack's draw order.
type SlicePlacement struct {
	// Index is the slice's position in its stack.
	Index int
	// Depth is the object-space coordinate of the slice plane.
	Depth float32
}

// SlicePositions returns the back-to-front draw order of a stack of count
// slices spread over [-1, 1]. Positive draws indices count-1..0 starting at
// +1; Negative draws 0..count-1 starting at -1. An empty stack yields nil.
func SlicePositions(count int, direction models.Direction) []SlicePlacement {
	if count <= 0 {
		return nil
	}

	step := 2.0 / float64(count)
	placements := make([]SlicePlacement, count)
	for k := 0; k < count; k++ {
		if direction == models.Positive {
			placements[k] = SlicePlacement{Index: count - 1 - k, Depth: float32(1 - float64(k)*step)}
		} else {
			placements[k] = SlicePlacement{Index: k, Depth: float32(-1 + float64(k)*step)}
		}
	}
	return placements
}

var sliceAttributes = []graphics.VertexAttribute{graphics.AttributePosition, graphics.AttributeTexCoord}

// drawStack renders every slice of stack for vc in back-to-front order using
// the shared dynamic vertex buffer. Returns the number of slices drawn.
func drawStack(gfx graphics.Backend, vao graphics.VertexArrayHandle, vbo graphics.BufferHandle, stack *SliceStack, vc models.ViewCase) int {
	placements := SlicePositions(stack.Len(), vc.Direction)
	if len(placements) == 0 {
		return 0
	}

	gfx.EnableVertexAttributes(vao, sliceAttributes...)
	for _, p := range placements {
		quad := SliceQuad(vc, p.Depth)
		gfx.UpdateVertexBuffer(vbo, 0, quad[:])
		gfx.BindTexture2D(stack.Slices[p.Index].Texture, 0)
		gfx.DrawTriangles(0, models.VerticesPerSlice)
	}
	gfx.DisableVertexAttributes(vao, sliceAttributes...)
	return len(placements)
}
