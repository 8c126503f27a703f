package glfwcontext

import (
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

// lifecycle guards cross-goroutine calls into GLFW against Terminate.
var lifecycle struct {
	sync.RWMutex
	running bool
}

// Options describe the window to create.
type Options struct {
	Width   int
	Height  int
	Title   string
	Visible bool
	// Undecorated removes the title bar and borders, as used for wallpapers.
	Undecorated bool
}

// Context owns the GLFW window and forwards its input to registered handlers.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()

	onCursor func(x, y float64)
	onButton func(pressed bool, x, y float64)
	onResize func(width, height int)
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(opts Options) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if opts.Visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	if opts.Undecorated {
		glfw.WindowHint(glfw.Decorated, glfw.False)
	}

	title := opts.Title
	if title == "" {
		title = "goclouds"
	}
	win, err := glfw.CreateWindow(opts.Width, opts.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if c.onCursor != nil {
			c.onCursor(x, y)
		}
	})
	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || c.onButton == nil || action == glfw.Repeat {
			return
		}
		x, y := w.GetCursorPos()
		c.onButton(action == glfw.Press, x, y)
	})
	win.SetSizeCallback(func(w *glfw.Window, width, height int) {
		if c.onResize != nil && width > 0 && height > 0 {
			c.onResize(width, height)
		}
	})

	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

// OnCursor registers the pointer move handler. Coordinates are window
// coordinates with the origin at the top left.
func (c *Context) OnCursor(f func(x, y float64)) { c.onCursor = f }

// OnButton registers the left button handler.
func (c *Context) OnButton(f func(pressed bool, x, y float64)) { c.onButton = f }

// OnResize registers the window size handler.
func (c *Context) OnResize(f func(width, height int)) { c.onResize = f }

// glfwKeyCallback dispatches to the registered key callbacks.
func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	// Handle the default Escape key behavior
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}

	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown only destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
}

// WaitEvents blocks until an event arrives or d elapses. Callbacks run on the
// calling thread.
func (c *Context) WaitEvents(d time.Duration) {
	if d <= 0 {
		glfw.PollEvents()
		return
	}
	glfw.WaitEventsTimeout(d.Seconds())
}

// Wake interrupts WaitEvents. Safe to call from any goroutine; it does nothing
// before InitGraphics and after TerminateGraphics.
func Wake() {
	lifecycle.RLock()
	defer lifecycle.RUnlock()
	if lifecycle.running {
		glfw.PostEmptyEvent()
	}
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// GetSize returns the window size in screen coordinates.
func (c *Context) GetSize() (int, int) {
	return c.window.GetSize()
}

func (c *Context) SetPos(x, y int) {
	c.window.SetPos(x, y)
}

func (c *Context) SetSize(width, height int) {
	c.window.SetSize(width, height)
}

func (c *Context) Show() {
	c.window.Show()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	lifecycle.Lock()
	defer lifecycle.Unlock()
	if err := glfw.Init(); err != nil {
		return err
	}
	lifecycle.running = true
	log.Info("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	lifecycle.Lock()
	defer lifecycle.Unlock()
	lifecycle.running = false
	glfw.Terminate()
	log.Info("GLFW Terminated")
}
