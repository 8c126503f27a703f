package shader

import (
	"strings"
	"testing"
)

func TestFragmentShader(t *testing.T) {
	body := "#version 100\nuniform float u_time;\nvoid main() { gl_FragColor = vec4(u_time); }\n"
	src := FragmentShader(body)

	if !strings.HasPrefix(src, "#version 300 es\n") {
		t.Errorf("Expected ESSL 3.00 header, got %q", src[:20])
	}
	if strings.Count(src, "#version") != 1 {
		t.Errorf("Expected the body version line to be dropped:\n%s", src)
	}
	for _, want := range []string{"#define gl_FragColor pc_fragColor", "#define varying in", "uniform float u_time;"} {
		if !strings.Contains(src, want) {
			t.Errorf("Expected %q in:\n%s", want, src)
		}
	}
	if !strings.HasSuffix(src, "void main() { gl_FragColor = vec4(u_time); }\n") {
		t.Errorf("Body was altered:\n%s", src)
	}
}

func TestStages(t *testing.T) {
	if !strings.Contains(VertexShader(), "out vec2 vUv;") {
		t.Error("Scene vertex stage must provide vUv")
	}
	if !strings.Contains(BlitVertexShader(), "u_transform") {
		t.Error("Blit vertex stage must apply the container transform")
	}
	if !strings.Contains(BlitFragmentShader(), "uniform sampler2D u_texture;") {
		t.Error("Blit fragment stage must sample the surface texture")
	}
}
