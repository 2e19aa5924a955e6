package slicestack

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"volumeslices/internal/models"
	"volumeslices/pkg/graphics"
)

var errFakeUpload = errors.New("fake upload failure")

type fakeTexture struct {
	spec graphics.TextureSpec
	data []byte
}

type fakeDraw struct {
	texture  graphics.TextureHandle
	vertices []models.Vertex
}

// fakeBackend records GPU calls in memory.
type fakeBackend struct {
	next      uint32
	textures  map[graphics.TextureHandle]fakeTexture
	buffers   map[graphics.BufferHandle]bool
	arrays    map[graphics.VertexArrayHandle]bool
	layouts   []graphics.AttributeLayout
	enabled   map[graphics.VertexAttribute]bool
	blend     [2]graphics.BlendFactor
	blendSets int

	bound   graphics.TextureHandle
	current []models.Vertex
	draws   []fakeDraw

	// failAfter makes CreateTexture2D fail once this many textures exist; <0 disables.
	failAfter int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		textures:  make(map[graphics.TextureHandle]fakeTexture),
		buffers:   make(map[graphics.BufferHandle]bool),
		arrays:    make(map[graphics.VertexArrayHandle]bool),
		enabled:   make(map[graphics.VertexAttribute]bool),
		failAfter: -1,
	}
}

func (f *fakeBackend) handle() uint32 {
	f.next++
	return f.next
}

func (f *fakeBackend) CreateTexture2D(spec graphics.TextureSpec, data []byte) (graphics.TextureHandle, error) {
	if f.failAfter >= 0 && len(f.textures) >= f.failAfter {
		return 0, errFakeUpload
	}
	h := graphics.TextureHandle(f.handle())
	f.textures[h] = fakeTexture{spec: spec, data: append([]byte(nil), data...)}
	return h, nil
}

func (f *fakeBackend) DeleteTexture2D(tex graphics.TextureHandle) { delete(f.textures, tex) }

func (f *fakeBackend) BindTexture2D(tex graphics.TextureHandle, unit uint32) { f.bound = tex }

func (f *fakeBackend) CreateVertexArray() (graphics.VertexArrayHandle, error) {
	h := graphics.VertexArrayHandle(f.handle())
	f.arrays[h] = true
	return h, nil
}

func (f *fakeBackend) DeleteVertexArray(vao graphics.VertexArrayHandle) { delete(f.arrays, vao) }

func (f *fakeBackend) CreateBuffer(sizeBytes int, usage graphics.BufferUsage) (graphics.BufferHandle, error) {
	h := graphics.BufferHandle(f.handle())
	f.buffers[h] = true
	return h, nil
}

func (f *fakeBackend) UpdateVertexBuffer(buf graphics.BufferHandle, offsetBytes int, vertices []models.Vertex) {
	f.current = append([]models.Vertex(nil), vertices...)
}

func (f *fakeBackend) DeleteBuffer(buf graphics.BufferHandle) { delete(f.buffers, buf) }

func (f *fakeBackend) ConfigureVertexAttribute(vao graphics.VertexArrayHandle, buf graphics.BufferHandle, layout graphics.AttributeLayout) {
	f.layouts = append(f.layouts, layout)
}

func (f *fakeBackend) EnableVertexAttributes(vao graphics.VertexArrayHandle, attrs ...graphics.VertexAttribute) {
	for _, a := range attrs {
		f.enabled[a] = true
	}
}

func (f *fakeBackend) DisableVertexAttributes(vao graphics.VertexArrayHandle, attrs ...graphics.VertexAttribute) {
	for _, a := range attrs {
		delete(f.enabled, a)
	}
}

func (f *fakeBackend) SetBlendFunction(src, dst graphics.BlendFactor) {
	f.blend = [2]graphics.BlendFactor{src, dst}
	f.blendSets++
}

func (f *fakeBackend) DrawTriangles(first, count int) {
	f.draws = append(f.draws, fakeDraw{texture: f.bound, vertices: f.current[first : first+count]})
}

func (f *fakeBackend) CreateShader(vertexSource, pixelSource string) (graphics.Shader, error) {
	return newFakeShader(), nil
}

type fakeShader struct {
	bound    bool
	matrices map[string]mgl32.Mat4
	ints     map[string]int32
	deleted  bool
}

func newFakeShader() *fakeShader {
	return &fakeShader{
		matrices: make(map[string]mgl32.Mat4),
		ints:     make(map[string]int32),
	}
}

func (s *fakeShader) Bind()   { s.bound = true }
func (s *fakeShader) Unbind() { s.bound = false }

func (s *fakeShader) SetUniformMatrix4(name string, m mgl32.Mat4) error {
	s.matrices[name] = m
	return nil
}

func (s *fakeShader) SetUniformInt(name string, v int32) error {
	s.ints[name] = v
	return nil
}

func (s *fakeShader) Delete() { s.deleted = true }
