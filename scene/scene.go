// Package scene is the render context of the clouds effect. It owns the uniform
// store, the plain settings, the drawing surface and the container transform,
// and applies every change to them through Dispatch.
//
// A Scene belongs to the render thread. Other goroutines send Actions to the
// render thread instead of calling Dispatch themselves.
package scene

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goclouds/clock"
	"github.com/richinsley/goclouds/uniforms"
)

// Settings are the plain, non-shader settings of the effect.
type Settings struct {
	FPS      int
	Scale    float64
	Mouse    bool
	Parallax float64
}

type Scene struct {
	Variant   *Variant
	Store     *uniforms.Store
	Settings  Settings
	Surface   *Surface
	Transform Transform
	Clock     *clock.Clock

	panelVisible bool
	quit         bool

	// OnOpenLink is called for link controls. Links never touch scene state.
	OnOpenLink func(url string)
	// OnPanelVisibility is called when the panel is shown or hidden.
	OnPanelVisibility func(visible bool)
}

// New builds the scene for a viewport of width x height window pixels.
func New(variant *Variant, width, height int, settings Settings, tp clock.TimeProvider) (*Scene, error) {
	if settings.FPS <= 0 {
		return nil, fmt.Errorf("invalid fps %d", settings.FPS)
	}
	if !validScale(settings.Scale) {
		return nil, fmt.Errorf("invalid display scale %g", settings.Scale)
	}
	surface := NewSurface(width, height, settings.Scale)
	store, err := uniforms.NewStore(variant.Uniforms(surface)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build uniform store: %w", err)
	}
	return &Scene{
		Variant:      variant,
		Store:        store,
		Settings:     settings,
		Surface:      surface,
		Transform:    Identity(),
		Clock:        clock.New(tp),
		panelVisible: true,
	}, nil
}

// Action is a change request produced by input handlers, the panel or the host
// bridge.
type Action interface {
	action()
}

type (
	SetUniform struct {
		Name  string
		Value uniforms.Value
	}
	SetMouseEnabled struct{ Enabled bool }
	SetParallax     struct{ Strength float64 }
	SetFPS          struct{ FPS int }
	SetScale        struct{ Scale float64 }
	SetPanelVisible struct{ Visible bool }
	SetTransform    struct{ Transform Transform }
	Resize          struct{ Width, Height int }
	OpenLink        struct{ URL string }
	Quit            struct{}
)

func (SetUniform) action()      {}
func (SetMouseEnabled) action() {}
func (SetParallax) action()     {}
func (SetFPS) action()          {}
func (SetScale) action()        {}
func (SetPanelVisible) action() {}
func (SetTransform) action()    {}
func (Resize) action()          {}
func (OpenLink) action()        {}
func (Quit) action()            {}

// Dispatch applies an action. It is the only place scene state changes.
func (s *Scene) Dispatch(a Action) error {
	switch a := a.(type) {
	case SetUniform:
		if err := s.Store.Set(a.Name, a.Value); err != nil {
			return err
		}
	case SetMouseEnabled:
		s.Settings.Mouse = a.Enabled
	case SetParallax:
		s.Settings.Parallax = a.Strength
	case SetFPS:
		if a.FPS <= 0 {
			return fmt.Errorf("invalid fps %d", a.FPS)
		}
		s.Settings.FPS = a.FPS
	case SetScale:
		s.setScale(a.Scale)
	case SetPanelVisible:
		if s.panelVisible != a.Visible {
			s.panelVisible = a.Visible
			if s.OnPanelVisibility != nil {
				s.OnPanelVisibility(a.Visible)
			}
		}
	case SetTransform:
		s.Transform = a.Transform
	case Resize:
		s.Surface.Resize(a.Width, a.Height)
		s.updateResolution()
	case OpenLink:
		if s.OnOpenLink != nil {
			s.OnOpenLink(a.URL)
		}
	case Quit:
		s.quit = true
	default:
		return fmt.Errorf("unhandled action %T", a)
	}
	return nil
}

// DispatchAll applies actions in order, logging the ones that fail.
func (s *Scene) DispatchAll(actions ...Action) {
	for _, a := range actions {
		if err := s.Dispatch(a); err != nil {
			log.Debug("Ignored action", "action", fmt.Sprintf("%T", a), "err", err)
		}
	}
}

func (s *Scene) setScale(scale float64) {
	if !validScale(scale) || !s.Surface.SetScale(scale) {
		return
	}
	s.Settings.Scale = scale
	s.updateResolution()
}

// validScale reports whether scale is a usable display scale: positive and finite.
func validScale(scale float64) bool {
	return scale > 0 && !math.IsInf(scale, 0)
}

func (s *Scene) updateResolution() {
	res := s.Surface.Resolution()
	if err := s.Store.Set(UniformResolution, uniforms.Vec2Value(res)); err != nil {
		log.Error("Failed to update resolution", "err", err)
	}
}

// Advance samples the clock into the time uniform and returns the new time.
func (s *Scene) Advance() float32 {
	t := s.Clock.Seconds()
	if err := s.Store.Set(UniformTime, uniforms.FloatValue(t)); err != nil {
		log.Error("Failed to update time", "err", err)
	}
	return t
}

func (s *Scene) Mouse() mgl32.Vec4 {
	v, _ := s.Store.Get(UniformMouse)
	return v.Vec4()
}

func (s *Scene) PanelVisible() bool { return s.panelVisible }

func (s *Scene) QuitRequested() bool { return s.quit }
