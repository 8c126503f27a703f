package scene

import "github.com/go-gl/mathgl/mgl32"

// ParallaxScale is the zoom applied to the container while parallax is active, so
// the shifted layer never uncovers the window edges.
const ParallaxScale = 1.09

// Transform is the visual transform of the container the surface is presented in:
// a translation in viewport pixels (y grows downwards) and a uniform scale.
type Transform struct {
	X     float64
	Y     float64
	Scale float64
}

func Identity() Transform { return Transform{Scale: 1} }

func (t Transform) IsIdentity() bool {
	return t.X == 0 && t.Y == 0 && t.Scale == 1
}

// Matrix converts the transform into clip space for a viewport of the given size.
// Scaling is about the center, like a CSS transform with the default origin.
func (t Transform) Matrix(viewportW, viewportH int) mgl32.Mat4 {
	if viewportW <= 0 || viewportH <= 0 {
		return mgl32.Ident4()
	}
	dx := float32(2 * t.X / float64(viewportW))
	dy := float32(-2 * t.Y / float64(viewportH))
	s := float32(t.Scale)
	return mgl32.Translate3D(dx, dy, 0).Mul4(mgl32.Scale3D(s, s, 1))
}
