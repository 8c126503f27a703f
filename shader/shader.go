// Package shader holds the GLSL sources wrapped around the clouds fragment
// shader and the stages used to present it.
package shader

import "strings"

// Scene stages are written in ESSL 3.00 and go through the translator.

const sceneVertexShader = `#version 300 es
precision highp float;

layout(location = 0) in vec3 position;
layout(location = 1) in vec2 uv;

uniform mat4 projectionMatrix;

out vec2 vUv;

void main() {
    vUv = uv;
    gl_Position = projectionMatrix * vec4(position, 1.0);
}
`

const preamble = `#version 300 es
precision highp float;
precision highp int;

#define varying in
out highp vec4 pc_fragColor;
#define gl_FragColor pc_fragColor
#define texture2D texture
`

// Presentation stages are plain GLSL 4.10.

const blitVertexShader = `#version 410 core
layout (location = 0) in vec3 in_vert;
layout (location = 1) in vec2 in_uv;
uniform mat4 u_transform;
out vec2 frag_uv;
void main() {
    frag_uv = in_uv;
    gl_Position = u_transform * vec4(in_vert.xy, 0.0, 1.0);
}
`

const blitFragmentShader = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// Attribute names of the scene vertex stage.
const (
	AttribPosition = "position"
	AttribUV       = "uv"
	// UniformProjection is the camera matrix of the scene vertex stage.
	UniformProjection = "projectionMatrix"
)

func VertexShader() string { return sceneVertexShader }

// FragmentShader prepends the preamble to a fragment body written against the
// WebGL1 builtins (gl_FragColor, varying, texture2D). A #version line in the
// body is dropped.
func FragmentShader(body string) string {
	var b strings.Builder
	b.WriteString(preamble)
	for _, line := range strings.SplitAfter(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#version") {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}

func BlitVertexShader() string { return blitVertexShader }

func BlitFragmentShader() string { return blitFragmentShader }
