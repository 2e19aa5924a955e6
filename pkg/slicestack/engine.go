package slicestack

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"volumeslices/internal/logging"
	"volumeslices/internal/models"
	"volumeslices/pkg/camera"
	"volumeslices/pkg/dataset"
	"volumeslices/pkg/graphics"
)

// ErrNoDataset is returned by operations that need built slice stacks.
var ErrNoDataset = errors.New("no dataset loaded")

// DefaultModelScale maps the [-1, 1] slice cube to [-4, 4] in world space.
const DefaultModelScale = 4

// VolumeRenderer is anything that can draw itself with a camera and free its
// GPU resources afterwards.
type VolumeRenderer interface {
	Render(gfx graphics.Backend, cam *camera.Camera) error
	DeleteResources(gfx graphics.Backend)
}

// Engine draws a dataset with object-aligned 2D texture slicing. It is not
// safe for concurrent use and must run on the thread owning the GPU context.
type Engine struct {
	shader graphics.Shader
	vao    graphics.VertexArrayHandle
	vbo    graphics.BufferHandle

	stacks Stacks
	loaded bool

	model mgl32.Mat4

	// lastCase is the case drawn by the previous frame, used to log switches.
	lastCase  models.ViewCase
	lastValid bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithModelScale sets the uniform scale applied to the slice cube.
func WithModelScale(scale float32) Option {
	return func(e *Engine) {
		e.model = mgl32.Scale3D(scale, scale, scale)
	}
}

// NewEngine allocates the vertex array and the dynamic vertex buffer shared by
// every slice quad, and points the shader's sampler at texture unit 0.
func NewEngine(gfx graphics.Backend, shader graphics.Shader, opts ...Option) (*Engine, error) {
	e := &Engine{
		shader: shader,
		model:  mgl32.Scale3D(DefaultModelScale, DefaultModelScale, DefaultModelScale),
	}
	for _, opt := range opts {
		opt(e)
	}

	vao, err := gfx.CreateVertexArray()
	if err == nil {
		vao, err = graphics.CheckHandle(vao, "vertex array")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex array: %w", err)
	}
	e.vao = vao

	vbo, err := gfx.CreateBuffer(models.VerticesPerSlice*models.VertexStride, graphics.Dynamic)
	if err == nil {
		vbo, err = graphics.CheckHandle(vbo, "vertex buffer")
	}
	if err != nil {
		gfx.DeleteVertexArray(e.vao)
		return nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	e.vbo = vbo

	gfx.ConfigureVertexAttribute(e.vao, e.vbo, graphics.AttributeLayout{
		Attribute:  graphics.AttributePosition,
		Components: 3,
		Stride:     models.VertexStride,
		Offset:     0,
	})
	gfx.ConfigureVertexAttribute(e.vao, e.vbo, graphics.AttributeLayout{
		Attribute:  graphics.AttributeTexCoord,
		Components: 2,
		Stride:     models.VertexStride,
		Offset:     models.TexCoordOffset,
	})

	shader.Bind()
	err = shader.SetUniformInt(graphics.UniformSliceTexture, 0)
	shader.Unbind()
	if err != nil {
		e.DeleteResources(gfx)
		return nil, fmt.Errorf("failed to bind slice sampler: %w", err)
	}

	return e, nil
}

// LoadDataset reads a volume file and builds its slice stacks.
func (e *Engine) LoadDataset(gfx graphics.Backend, path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}

	s := dataset.Summarize(ds)
	logging.Logger().Info("dataset intensities",
		"min", s.Min,
		"max", s.Max,
		"mean", s.Mean,
		"stddev", s.StdDev,
		"median", s.Median,
		"occupancy", s.Occupancy)

	return e.Build(gfx, ds)
}

// Build uploads the slice stacks of ds, replacing any previously built ones.
// The engine keeps no reference to ds afterwards.
func (e *Engine) Build(gfx graphics.Backend, ds *models.Dataset) error {
	stacks, err := BuildStacks(gfx, ds)
	if err != nil {
		return err
	}

	e.stacks.Release(gfx)
	e.stacks = stacks
	e.loaded = true
	e.lastValid = false

	logging.Logger().Info("slice stacks built",
		"x", stacks[models.AxisX].Len(),
		"y", stacks[models.AxisY].Len(),
		"z", stacks[models.AxisZ].Len(),
		"textures", stacks.SliceCount())
	return nil
}

// Loaded reports whether slice stacks are available to draw.
func (e *Engine) Loaded() bool { return e.loaded }

// Stacks exposes the built slice stacks.
func (e *Engine) Stacks() *Stacks { return &e.stacks }

// ModelMatrix returns the constant object-to-world transform.
func (e *Engine) ModelMatrix() mgl32.Mat4 { return e.model }

// Render draws one frame. It does nothing until a dataset has been built.
func (e *Engine) Render(gfx graphics.Backend, cam *camera.Camera) error {
	if !e.loaded {
		return nil
	}

	cam.UpdateViewMatrix()
	view := cam.ViewMatrix()

	vc, err := ResolveView(e.model, view)
	if err != nil {
		return err
	}
	if !e.lastValid || vc != e.lastCase {
		logging.Logger().Debug("view case changed", "case", vc.String())
		e.lastCase, e.lastValid = vc, true
	}

	gfx.SetBlendFunction(graphics.BlendOne, graphics.BlendOneMinusSourceAlpha)

	e.shader.Bind()
	defer e.shader.Unbind()

	uniforms := []struct {
		name string
		m    mgl32.Mat4
	}{
		{graphics.UniformModelMatrix, e.model},
		{graphics.UniformViewMatrix, view},
		{graphics.UniformProjectionMatrix, cam.ProjectionMatrix()},
	}
	for _, u := range uniforms {
		if err := e.shader.SetUniformMatrix4(u.name, u.m); err != nil {
			return fmt.Errorf("failed to set %s: %w", u.name, err)
		}
	}

	drawStack(gfx, e.vao, e.vbo, e.stacks.Stack(vc.Axis), vc)
	return nil
}

// DeleteResources frees every texture, buffer and vertex array the engine
// created. Calling it again is a no-op. The shader belongs to the caller.
func (e *Engine) DeleteResources(gfx graphics.Backend) {
	e.stacks.Release(gfx)
	e.loaded = false

	if e.vbo != 0 {
		gfx.DeleteBuffer(e.vbo)
		e.vbo = 0
	}
	if e.vao != 0 {
		gfx.DeleteVertexArray(e.vao)
		e.vao = 0
	}
}
