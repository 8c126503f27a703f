//go:build linux && !wayland

package glfwcontext

// X11Window returns the X11 window id backing the GLFW window.
func (c *Context) X11Window() (uint32, bool) {
	return uint32(c.window.GetX11Window()), true
}
