// Package graphics declares what the renderer needs from a window system.
package graphics

// Context is an OpenGL context bound to a presentable window.
type Context interface {
	MakeCurrent()
	// EndFrame presents the back buffer.
	EndFrame()
	// GetFramebufferSize is the window size in pixels, the blit viewport.
	GetFramebufferSize() (int, int)
}
