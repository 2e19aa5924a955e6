package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"volumeslices/pkg/graphics"
)

// Shader is a linked GL program with a cache of uniform locations.
type Shader struct {
	program   uint32
	locations map[string]int32
}

// CreateShader compiles and links a vertex + pixel program. Compile and link
// failures carry the driver's info log.
func (b *Backend) CreateShader(vertexSource, pixelSource string) (graphics.Shader, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	pixelShader, err := compileShader(pixelSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("pixel shader: %w", err)
	}
	defer gl.DeleteShader(pixelShader)

	program, err := linkProgram(vertexShader, pixelShader)
	if err != nil {
		return nil, err
	}
	return &Shader{program: program, locations: make(map[string]int32)}, nil
}

func (s *Shader) Bind() {
	gl.UseProgram(s.program)
}

func (s *Shader) Unbind() {
	gl.UseProgram(0)
}

func (s *Shader) SetUniformMatrix4(name string, m mgl32.Mat4) error {
	loc, err := s.location(name)
	if err != nil {
		return err
	}
	gl.ProgramUniformMatrix4fv(s.program, loc, 1, false, &m[0])
	return nil
}

func (s *Shader) SetUniformInt(name string, v int32) error {
	loc, err := s.location(name)
	if err != nil {
		return err
	}
	gl.ProgramUniform1i(s.program, loc, v)
	return nil
}

func (s *Shader) Delete() {
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}

func (s *Shader) location(name string) (int32, error) {
	if loc, ok := s.locations[name]; ok {
		return loc, nil
	}
	loc := gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("uniform %q not found in program %d", name, s.program)
	}
	s.locations[name] = loc
	return loc, nil
}

// compileShader compiles a single shader stage
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	if shader == 0 {
		return 0, fmt.Errorf("%w: shader object", graphics.ErrResourceAllocation)
	}

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", graphics.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

// linkProgram links vertex and pixel shaders into a program
func linkProgram(vertexShader, pixelShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	if program == 0 {
		return 0, fmt.Errorf("%w: shader program", graphics.ErrResourceAllocation)
	}
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, pixelShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", graphics.ErrShaderLink, strings.TrimRight(log, "\x00"))
	}

	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, pixelShader)
	return program, nil
}
