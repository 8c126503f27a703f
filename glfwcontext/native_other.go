//go:build !linux || wayland

package glfwcontext

func (c *Context) X11Window() (uint32, bool) {
	return 0, false
}
