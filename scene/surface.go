package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Surface is the drawing buffer: the viewport in window pixels and the display
// scale applied to it. The generation counter changes only when the buffer
// really needs to be reallocated.
type Surface struct {
	viewportW  int
	viewportH  int
	scale      float64
	generation uint64
}

func NewSurface(width, height int, scale float64) *Surface {
	return &Surface{viewportW: width, viewportH: height, scale: scale, generation: 1}
}

func (s *Surface) Viewport() (int, int) { return s.viewportW, s.viewportH }

func (s *Surface) Scale() float64 { return s.scale }

// Generation identifies the current buffer allocation.
func (s *Surface) Generation() uint64 { return s.generation }

// BufferSize is the pixel size of the render target, never smaller than 1x1.
func (s *Surface) BufferSize() (int, int) {
	w := int(math.Round(float64(s.viewportW) * s.scale))
	h := int(math.Round(float64(s.viewportH) * s.scale))
	return max(w, 1), max(h, 1)
}

// Resolution is the value of the resolution uniform: viewport * scale.
func (s *Surface) Resolution() mgl32.Vec2 {
	return mgl32.Vec2{
		float32(float64(s.viewportW) * s.scale),
		float32(float64(s.viewportH) * s.scale),
	}
}

// Resize reports whether the viewport changed.
func (s *Surface) Resize(width, height int) bool {
	if width == s.viewportW && height == s.viewportH {
		return false
	}
	s.viewportW, s.viewportH = width, height
	s.generation++
	return true
}

// SetScale reports whether the scale changed. Setting the current scale again is
// a no-op.
func (s *Surface) SetScale(scale float64) bool {
	if scale == s.scale {
		return false
	}
	s.scale = scale
	s.generation++
	return true
}
