package renderer

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goclouds/shader"
	xlate "github.com/richinsley/goclouds/translator"
	"github.com/richinsley/goclouds/uniforms"
)

// RenderPass is the linked clouds program and the locations of the store's
// uniforms in it. A location of -1 means the shader does not use the uniform.
type RenderPass struct {
	ShaderProgram uint32
	projectionLoc int32
	uniformLocs   map[string]int32
	projection    mgl32.Mat4
}

func (r *Renderer) createRenderPass(fragment string, store *uniforms.Store) (*RenderPass, error) {
	vs, err := xlate.Translate(shader.VertexShader(), xlate.Vertex)
	if err != nil {
		return nil, err
	}
	fs, err := xlate.Translate(shader.FragmentShader(fragment), xlate.Fragment)
	if err != nil {
		return nil, err
	}

	attribs := map[uint32]string{
		0: mappedName(vs, shader.AttribPosition),
		1: mappedName(vs, shader.AttribUV),
	}
	program, err := newProgram(vs.Code, fs.Code, attribs)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	pass := &RenderPass{
		ShaderProgram: program,
		uniformLocs:   make(map[string]int32, store.Len()),
		// Orthographic camera over the unit quad.
		projection: mgl32.Ortho(-1, 1, -1, 1, 0, 1),
	}
	gl.UseProgram(program)
	pass.projectionLoc = getUniformLocation(vs, program, shader.UniformProjection)
	store.Each(func(u uniforms.Uniform) {
		loc := getUniformLocation(fs, program, u.Name)
		if loc < 0 {
			log.Debug("Uniform not used by shader", "name", u.Name)
		}
		pass.uniformLocs[u.Name] = loc
	})
	return pass, nil
}

func mappedName(s *xlate.Shader, name string) string {
	if mapped, ok := s.Lookup(name); ok {
		return mapped
	}
	return name
}

func getUniformLocation(s *xlate.Shader, program uint32, name string) int32 {
	mapped, ok := s.Lookup(name)
	if !ok {
		return -1
	}
	return gl.GetUniformLocation(program, gl.Str(mapped+"\x00"))
}

// updateUniforms uploads the whole store. The program must be in use.
func (p *RenderPass) updateUniforms(store *uniforms.Store) {
	if p.projectionLoc >= 0 {
		gl.UniformMatrix4fv(p.projectionLoc, 1, false, &p.projection[0])
	}
	store.Each(func(u uniforms.Uniform) {
		loc, ok := p.uniformLocs[u.Name]
		if !ok || loc < 0 {
			return
		}
		uploadUniform(loc, u.Value)
	})
}

func uploadUniform(loc int32, v uniforms.Value) {
	switch v.Kind() {
	case uniforms.Float:
		gl.Uniform1f(loc, v.Float())
	case uniforms.Int:
		gl.Uniform1i(loc, v.Int())
	case uniforms.Bool:
		var b int32
		if v.Bool() {
			b = 1
		}
		gl.Uniform1i(loc, b)
	case uniforms.Color:
		c := v.RGB()
		gl.Uniform3f(loc, c[0], c[1], c[2])
	case uniforms.Vec2:
		c := v.Vec2()
		gl.Uniform2f(loc, c[0], c[1])
	case uniforms.Vec4:
		c := v.Vec4()
		gl.Uniform4f(loc, c[0], c[1], c[2], c[3])
	}
}

func (p *RenderPass) Destroy() {
	gl.DeleteProgram(p.ShaderProgram)
}
