// Package opengl implements graphics.Backend on an OpenGL 4.1 core context.
// All calls must happen on the thread that owns the current context.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"volumeslices/internal/models"
	"volumeslices/pkg/graphics"
)

// Backend issues graphics.Backend calls against the current GL context.
type Backend struct{}

// New loads the GL function pointers for the current context.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return &Backend{}, nil
}

// Version reports the driver's GL version string.
func (b *Backend) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Clear fills the back buffer with the given color.
func (b *Backend) Clear(color [4]float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport sets the drawable area in pixels.
func (b *Backend) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *Backend) CreateTexture2D(spec graphics.TextureSpec, data []byte) (graphics.TextureHandle, error) {
	if len(data) < spec.Width*spec.Height {
		return 0, fmt.Errorf("texture %dx%d needs %d bytes, got %d", spec.Width, spec.Height, spec.Width*spec.Height, len(data))
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	if _, err := graphics.CheckHandle(tex, "texture 2D"); err != nil {
		return 0, err
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)

	filter := int32(gl.NEAREST)
	if spec.Filter == graphics.Linear {
		filter = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)

	wrap := int32(gl.CLAMP_TO_BORDER)
	if spec.Wrap == graphics.ClampToEdge {
		wrap = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &spec.BorderColor[0])

	internalFormat, format := int32(gl.RGBA8), uint32(gl.RGBA)
	if spec.Format == graphics.Grayscale {
		internalFormat, format = gl.R8, gl.RED
		// Core profile has no luminance format; replicate red like GL_LUMINANCE did.
		swizzle := [4]int32{gl.RED, gl.RED, gl.RED, gl.ONE}
		gl.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, &swizzle[0])
	}

	alignment := spec.RowAlignment
	if alignment == 0 {
		alignment = 1
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, int32(alignment))

	var pixels unsafe.Pointer
	if len(data) > 0 {
		pixels = gl.Ptr(data)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(spec.Width), int32(spec.Height), 0, format, gl.UNSIGNED_BYTE, pixels)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return graphics.TextureHandle(tex), nil
}

func (b *Backend) DeleteTexture2D(tex graphics.TextureHandle) {
	if tex == 0 {
		return
	}
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

func (b *Backend) BindTexture2D(tex graphics.TextureHandle, unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (b *Backend) CreateVertexArray() (graphics.VertexArrayHandle, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return graphics.CheckHandle(graphics.VertexArrayHandle(vao), "vertex array")
}

func (b *Backend) DeleteVertexArray(vao graphics.VertexArrayHandle) {
	if vao == 0 {
		return
	}
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

func (b *Backend) CreateBuffer(sizeBytes int, usage graphics.BufferUsage) (graphics.BufferHandle, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if _, err := graphics.CheckHandle(buf, "vertex buffer"); err != nil {
		return 0, err
	}

	hint := uint32(gl.STATIC_DRAW)
	if usage == graphics.Dynamic {
		hint = gl.DYNAMIC_DRAW
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, sizeBytes, nil, hint)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return graphics.BufferHandle(buf), nil
}

func (b *Backend) UpdateVertexBuffer(buf graphics.BufferHandle, offsetBytes int, vertices []models.Vertex) {
	if len(vertices) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.BufferSubData(gl.ARRAY_BUFFER, offsetBytes, len(vertices)*models.VertexStride, unsafe.Pointer(&vertices[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *Backend) DeleteBuffer(buf graphics.BufferHandle) {
	if buf == 0 {
		return
	}
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

func (b *Backend) ConfigureVertexAttribute(vao graphics.VertexArrayHandle, buf graphics.BufferHandle, layout graphics.AttributeLayout) {
	gl.BindVertexArray(uint32(vao))
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.VertexAttribPointer(uint32(layout.Attribute), int32(layout.Components), gl.FLOAT, false, int32(layout.Stride), gl.PtrOffset(layout.Offset))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// EnableVertexAttributes binds vao and leaves it bound for the draws that follow.
func (b *Backend) EnableVertexAttributes(vao graphics.VertexArrayHandle, attrs ...graphics.VertexAttribute) {
	gl.BindVertexArray(uint32(vao))
	for _, a := range attrs {
		gl.EnableVertexAttribArray(uint32(a))
	}
}

func (b *Backend) DisableVertexAttributes(vao graphics.VertexArrayHandle, attrs ...graphics.VertexAttribute) {
	gl.BindVertexArray(uint32(vao))
	for _, a := range attrs {
		gl.DisableVertexAttribArray(uint32(a))
	}
	gl.BindVertexArray(0)
}

func (b *Backend) SetBlendFunction(src, dst graphics.BlendFactor) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (b *Backend) DrawTriangles(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}

func blendFactor(f graphics.BlendFactor) uint32 {
	switch f {
	case graphics.BlendZero:
		return gl.ZERO
	case graphics.BlendSourceAlpha:
		return gl.SRC_ALPHA
	case graphics.BlendOneMinusSourceAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ONE
	}
}
