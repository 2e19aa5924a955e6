// Package graphics defines the GPU contract consumed by the slice-stack engine.
// Implementations own the underlying API objects; callers only hold opaque handles
// and must release them explicitly.
package graphics

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"volumeslices/internal/models"
)

var (
	// ErrResourceAllocation is returned when the backend hands out a zero handle.
	ErrResourceAllocation = errors.New("graphics resource allocation failed")
	// ErrShaderCompile wraps a shader stage compile failure and its info log.
	ErrShaderCompile = errors.New("shader compilation failed")
	// ErrShaderLink wraps a program link failure and its info log.
	ErrShaderLink = errors.New("shader program link failed")
)

// Opaque GPU object handles. Zero is never a valid handle.
type (
	TextureHandle     uint32
	BufferHandle      uint32
	VertexArrayHandle uint32
)

// TexelFormat is the channel layout of a texture
type TexelFormat int

const (
	// Grayscale is a single unsigned byte channel per texel.
	Grayscale TexelFormat = iota
	RGBA
)

// Filter selects texture sampling between texels
type Filter int

const (
	Nearest Filter = iota
	Linear
)

// Wrap selects how coordinates outside [0,1] are resolved
type Wrap int

const (
	// ClampToBorder samples a constant border color outside the texture.
	ClampToBorder Wrap = iota
	ClampToEdge
)

// TextureSpec describes a 2D texture upload.
type TextureSpec struct {
	Width, Height int
	Format        TexelFormat
	// RowAlignment is the unpack alignment in bytes; 1 means rows are tightly packed.
	RowAlignment int
	Filter       Filter
	Wrap         Wrap
	// BorderColor is used with ClampToBorder.
	BorderColor [4]float32
}

// BufferUsage hints how often a buffer is rewritten
type BufferUsage int

const (
	Static BufferUsage = iota
	Dynamic
)

// VertexAttribute is a shader input location
type VertexAttribute uint32

const (
	AttributePosition VertexAttribute = 0
	AttributeTexCoord VertexAttribute = 1
)

// BlendFactor is a source or destination factor of the blend equation
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSourceAlpha
	BlendOneMinusSourceAlpha
)

// AttributeLayout locates one attribute inside an interleaved vertex buffer.
type AttributeLayout struct {
	Attribute  VertexAttribute
	Components int
	Stride     int
	Offset     int
}

// Backend is the set of GPU primitives the engine needs.
type Backend interface {
	CreateTexture2D(spec TextureSpec, data []byte) (TextureHandle, error)
	DeleteTexture2D(tex TextureHandle)
	BindTexture2D(tex TextureHandle, unit uint32)

	CreateVertexArray() (VertexArrayHandle, error)
	DeleteVertexArray(vao VertexArrayHandle)

	// CreateBuffer allocates sizeBytes of vertex storage with no initial contents.
	CreateBuffer(sizeBytes int, usage BufferUsage) (BufferHandle, error)
	// UpdateVertexBuffer overwrites part of a buffer starting at offsetBytes.
	UpdateVertexBuffer(buf BufferHandle, offsetBytes int, vertices []models.Vertex)
	DeleteBuffer(buf BufferHandle)

	ConfigureVertexAttribute(vao VertexArrayHandle, buf BufferHandle, layout AttributeLayout)
	EnableVertexAttributes(vao VertexArrayHandle, attrs ...VertexAttribute)
	DisableVertexAttributes(vao VertexArrayHandle, attrs ...VertexAttribute)

	SetBlendFunction(src, dst BlendFactor)
	// DrawTriangles issues a non-indexed triangle draw from the bound vertex array.
	DrawTriangles(first, count int)

	CreateShader(vertexSource, pixelSource string) (Shader, error)
}

// Shader is a linked vertex + pixel program.
type Shader interface {
	Bind()
	Unbind()
	SetUniformMatrix4(name string, m mgl32.Mat4) error
	SetUniformInt(name string, v int32) error
	Delete()
}

// Uniform names shared by the embedded slice shaders.
const (
	UniformModelMatrix      = "ModelMatrix"
	UniformViewMatrix       = "ViewMatrix"
	UniformProjectionMatrix = "ProjectionMatrix"
	UniformSliceTexture     = "SliceTexture"
)

//go:embed shaders/slice.vert
var SliceVertexShader string

//go:embed shaders/slice.frag
var SlicePixelShader string

// CheckHandle converts a zero handle into ErrResourceAllocation.
func CheckHandle[H ~uint32](h H, what string) (H, error) {
	if h == 0 {
		return 0, fmt.Errorf("%w: %s", ErrResourceAllocation, what)
	}
	return h, nil
}
