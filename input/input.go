// Package input turns pointer events into scene actions.
package input

import (
	"math"

	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/uniforms"
)

const (
	// DeadZone is how far, in device pixels on either axis, the pointer has to
	// travel from the press position before a drag counts.
	DeadZone = 10.0
	// ParallaxDivisor damps the parallax offset.
	ParallaxDivisor = 90.0
)

type EventKind int

const (
	PointerMove EventKind = iota
	PointerDown
	PointerUp
)

// Event is a pointer event in viewport pixels, origin top-left.
type Event struct {
	Kind EventKind
	X, Y float64
}

// Handler tracks the pointer between events. It never mutates the scene; the
// actions it returns are dispatched by the caller.
type Handler struct {
	mode     scene.MouseMode
	dragging bool
	startX   float64
	startY   float64
}

func NewHandler(mode scene.MouseMode) *Handler {
	return &Handler{mode: mode}
}

func (h *Handler) Dragging() bool { return h.dragging }

// Handle returns the actions for one event given the current scene state.
func (h *Handler) Handle(s *scene.Scene, ev Event) []scene.Action {
	var actions []scene.Action

	switch ev.Kind {
	case PointerDown:
		h.dragging = true
		h.startX, h.startY = ev.X, ev.Y
		if h.mode == scene.MouseDirect && s.Settings.Mouse {
			actions = append(actions, h.mouse(s, ev, 1))
		}
	case PointerUp:
		h.dragging = false
	case PointerMove:
		if s.Settings.Mouse {
			if a, ok := h.move(s, ev); ok {
				actions = append(actions, a)
			}
		}
		if s.Settings.Parallax != 0 {
			actions = append(actions, scene.SetTransform{Transform: Parallax(s, ev.X, ev.Y)})
		}
	}
	return actions
}

func (h *Handler) move(s *scene.Scene, ev Event) (scene.Action, bool) {
	switch h.mode {
	case scene.MouseDrag:
		if !h.dragging || h.insideDeadZone(ev) {
			return nil, false
		}
		return h.mouse(s, ev, 1), true
	case scene.MouseDirect:
		return h.mouse(s, ev, -1), true
	}
	return nil, false
}

func (h *Handler) insideDeadZone(ev Event) bool {
	return math.Abs(ev.X-h.startX) < DeadZone && math.Abs(ev.Y-h.startY) < DeadZone
}

// mouse writes the scaled pointer into components 0-1. A negative flag keeps
// the current click flags in components 2-3.
func (h *Handler) mouse(s *scene.Scene, ev Event, flag float32) scene.Action {
	scale := s.Settings.Scale
	m := s.Mouse()
	m[0] = float32(ev.X * scale)
	m[1] = float32(ev.Y * scale)
	if flag >= 0 {
		m[2], m[3] = flag, flag
	}
	return scene.SetUniform{Name: scene.UniformMouse, Value: uniforms.Vec4Value(m)}
}

// Parallax computes the container transform for a pointer position.
func Parallax(s *scene.Scene, px, py float64) scene.Transform {
	w, h := s.Surface.Viewport()
	strength := s.Settings.Parallax
	return scene.Transform{
		X:     (float64(w) - px*strength) / ParallaxDivisor,
		Y:     (float64(h) - py*strength) / ParallaxDivisor,
		Scale: scene.ParallaxScale,
	}
}
