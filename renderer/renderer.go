// Package renderer draws the clouds scene with OpenGL 4.1: the fragment
// shader renders into an offscreen surface of viewport*scale pixels, which is
// then presented to the window through the container transform.
package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goclouds/graphics"
	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/shader"
)

// A package-level variable to ensure gl.Init() is called only once.
var glInitOnce sync.Once

type Renderer struct {
	context          graphics.Context
	quadVAO          uint32
	quadVBO          uint32
	pass             *RenderPass
	target           *surfaceTarget
	blitProgram      uint32
	blitTransformLoc int32
	blitTextureLoc   int32
}

// Full-screen quad: position xyz, uv.
var quadVertices = []float32{
	-1, 1, 0, 0, 1,
	-1, -1, 0, 0, 0,
	1, -1, 0, 1, 0,
	-1, 1, 0, 0, 1,
	1, -1, 0, 1, 0,
	1, 1, 0, 1, 1,
}

func NewRenderer(ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{context: ctx}

	// Make the context current on this thread.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Debug("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	r.blitProgram, err = newProgram(shader.BlitVertexShader(), shader.BlitFragmentShader(), nil)
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	r.blitTransformLoc = gl.GetUniformLocation(r.blitProgram, gl.Str("u_transform\x00"))
	r.blitTextureLoc = gl.GetUniformLocation(r.blitProgram, gl.Str("u_texture\x00"))
	return r, nil
}

// LoadScene builds the shader program for a fragment body and the uniforms of s.
func (r *Renderer) LoadScene(fragment string, s *scene.Scene) error {
	pass, err := r.createRenderPass(fragment, s.Store)
	if err != nil {
		return err
	}
	if r.pass != nil {
		r.pass.Destroy()
	}
	r.pass = pass
	log.Info("Successfully loaded scene", "variant", s.Variant.Name, "uniforms", s.Store.Len())
	return nil
}

// ensureTarget (re)allocates the offscreen surface when the scene's surface
// generation moved on.
func (r *Renderer) ensureTarget(surface *scene.Surface) error {
	w, h := surface.BufferSize()
	if r.target == nil {
		t, err := newSurfaceTarget(w, h)
		if err != nil {
			return err
		}
		t.generation = surface.Generation()
		r.target = t
		return nil
	}
	if r.target.generation == surface.Generation() {
		return nil
	}
	if w != r.target.width || h != r.target.height {
		log.Debug("Reallocating surface", "width", w, "height", h)
		r.target.resize(w, h)
	}
	r.target.generation = surface.Generation()
	return nil
}

// RenderFrame draws the scene into the offscreen surface.
func (r *Renderer) RenderFrame(s *scene.Scene) error {
	if r.pass == nil {
		return fmt.Errorf("no scene loaded")
	}
	if err := r.ensureTarget(s.Surface); err != nil {
		return err
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, r.target.fbo)
	gl.Viewport(0, 0, int32(r.target.width), int32(r.target.height))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.pass.ShaderProgram)
	r.pass.updateUniforms(s.Store)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Present stretches the surface over the window, applying the container
// transform.
func (r *Renderer) Present(s *scene.Scene) {
	fbWidth, fbHeight := r.context.GetFramebufferSize()
	vw, vh := s.Surface.Viewport()
	m := s.Transform.Matrix(vw, vh)

	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.blitProgram)
	gl.UniformMatrix4fv(r.blitTransformLoc, 1, false, &m[0])
	gl.Uniform1i(r.blitTextureLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.target.textureID)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Draw renders, presents and swaps one frame.
func (r *Renderer) Draw(s *scene.Scene) error {
	if err := r.RenderFrame(s); err != nil {
		return err
	}
	r.Present(s)
	r.context.EndFrame()
	return glError()
}

func (r *Renderer) Shutdown() {
	if r.pass != nil {
		r.pass.Destroy()
	}
	if r.target != nil {
		r.target.destroy()
	}
	gl.DeleteProgram(r.blitProgram)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
}

func glError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

// newProgram links a program. attribs binds attribute names to locations
// before linking.
func newProgram(vertexShaderSource, fragmentShaderSource string, attribs map[uint32]string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	for loc, name := range attribs {
		gl.BindAttribLocation(program, loc, gl.Str(name+"\x00"))
	}
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", logText)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
