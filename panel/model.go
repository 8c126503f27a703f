// Package panel is the live settings panel. The Model holds the controls and
// their widget state and turns edits into scene actions; Panel draws the model
// in a terminal and feeds key presses to it.
package panel

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/uniforms"
)

type Kind int

const (
	Slider Kind = iota
	Toggle
	ColorPicker
	Link
)

func (k Kind) String() string {
	switch k {
	case Slider:
		return "slider"
	case Toggle:
		return "toggle"
	case ColorPicker:
		return "color"
	case Link:
		return "link"
	}
	return "unknown"
}

const (
	hueStep   = 10.0
	valueStep = 0.05
)

// Control is one row of the panel.
type Control struct {
	scene.Binding
	Kind  Kind
	Range uniforms.Range
}

// State is the part of the scene the panel displays. It is copied on the render
// thread and handed to the panel goroutine.
type State struct {
	Values   map[string]uniforms.Value
	Settings scene.Settings
	Visible  bool
}

func StateOf(s *scene.Scene) State {
	return State{
		Values:   s.Store.Snapshot(),
		Settings: s.Settings,
		Visible:  s.PanelVisible(),
	}
}

type Model struct {
	controls []Control
	state    State
	// displayScale is a copy of the scale setting, edited by the Display slider.
	displayScale float64
	selected     int
	collapsed    bool
}

// NewModel builds the controls of the scene's variant. The model starts
// collapsed.
func NewModel(s *scene.Scene) (*Model, error) {
	m := &Model{
		state:        StateOf(s),
		displayScale: s.Settings.Scale,
		collapsed:    true,
	}
	for _, b := range s.Variant.Panel {
		c, err := newControl(s.Store, b)
		if err != nil {
			return nil, err
		}
		m.controls = append(m.controls, c)
	}
	return m, nil
}

func newControl(store *uniforms.Store, b scene.Binding) (Control, error) {
	c := Control{Binding: b, Range: b.Range}
	switch {
	case b.URL != "":
		c.Kind = Link
	case b.Uniform != "":
		u, ok := store.Lookup(b.Uniform)
		if !ok {
			return c, fmt.Errorf("control %q: %w: %s", b.Label, uniforms.ErrUnknownUniform, b.Uniform)
		}
		switch u.Value.Kind() {
		case uniforms.Bool:
			c.Kind = Toggle
		case uniforms.Color:
			c.Kind = ColorPicker
		case uniforms.Float, uniforms.Int:
			if u.Range == nil {
				return c, fmt.Errorf("control %q: uniform %s has no range", b.Label, b.Uniform)
			}
			c.Kind = Slider
			c.Range = *u.Range
		default:
			return c, fmt.Errorf("control %q: no widget for %s", b.Label, u.Value.Kind())
		}
	case b.Setting == scene.SettingMouse:
		c.Kind = Toggle
	case b.Setting != scene.SettingNone:
		c.Kind = Slider
	default:
		return c, fmt.Errorf("control %q is not bound", b.Label)
	}
	return c, nil
}

func (m *Model) Controls() []Control { return m.controls }

func (m *Model) Selected() int { return m.selected }

func (m *Model) Collapsed() bool { return m.collapsed }

func (m *Model) Visible() bool { return m.state.Visible }

func (m *Model) ToggleCollapsed() { m.collapsed = !m.collapsed }

// Sync replaces the displayed state. The display scale copy is kept.
func (m *Model) Sync(st State) { m.state = st }

func (m *Model) interactive() bool {
	return m.state.Visible && !m.collapsed && len(m.controls) > 0
}

// Move changes the selection by delta rows, wrapping around.
func (m *Model) Move(delta int) {
	if !m.interactive() {
		return
	}
	n := len(m.controls)
	m.selected = ((m.selected+delta)%n + n) % n
}

// Adjust nudges the selected control. Sliders step within their range, colors
// rotate their hue and toggles flip.
func (m *Model) Adjust(dir int) []scene.Action {
	if !m.interactive() {
		return nil
	}
	c := m.controls[m.selected]
	switch c.Kind {
	case Slider:
		return m.setNumber(c, step(m.number(c), float64(dir), c.Range))
	case Toggle:
		return m.setBool(c, !m.bool(c))
	case ColorPicker:
		h, s, v := m.color(c).Hsv()
		h = math.Mod(h+float64(dir)*hueStep+360, 360)
		return m.setColor(c, colorful.Hsv(h, s, v))
	}
	return nil
}

// AdjustValue brightens or darkens the selected color.
func (m *Model) AdjustValue(dir int) []scene.Action {
	if !m.interactive() {
		return nil
	}
	c := m.controls[m.selected]
	if c.Kind != ColorPicker {
		return nil
	}
	h, s, v := m.color(c).Hsv()
	v = math.Max(0, math.Min(1, v+float64(dir)*valueStep))
	return m.setColor(c, colorful.Hsv(h, s, v))
}

// Activate flips toggles and follows links.
func (m *Model) Activate() []scene.Action {
	if !m.interactive() {
		return nil
	}
	c := m.controls[m.selected]
	switch c.Kind {
	case Toggle:
		return m.setBool(c, !m.bool(c))
	case Link:
		return []scene.Action{scene.OpenLink{URL: c.URL}}
	}
	return nil
}

func step(cur, dir float64, r uniforms.Range) float64 {
	if r.Step <= 0 {
		return math.Max(r.Min, math.Min(r.Max, cur))
	}
	n := math.Round((cur - r.Min) / r.Step)
	v := r.Min + (n+dir)*r.Step
	// Trim float noise from repeated stepping.
	v = math.Round(v*1e6) / 1e6
	return math.Max(r.Min, math.Min(r.Max, v))
}

func (m *Model) number(c Control) float64 {
	if c.Uniform != "" {
		return m.state.Values[c.Uniform].Scalar()
	}
	switch c.Setting {
	case scene.SettingFPS:
		return float64(m.state.Settings.FPS)
	case scene.SettingScale:
		return m.displayScale
	case scene.SettingParallax:
		return m.state.Settings.Parallax
	}
	return 0
}

func (m *Model) bool(c Control) bool {
	if c.Uniform != "" {
		return m.state.Values[c.Uniform].Bool()
	}
	return m.state.Settings.Mouse
}

func (m *Model) color(c Control) colorful.Color {
	return m.state.Values[c.Uniform].Color()
}

func (m *Model) setNumber(c Control, v float64) []scene.Action {
	if c.Uniform != "" {
		var val uniforms.Value
		if m.state.Values[c.Uniform].Kind() == uniforms.Int {
			val = uniforms.IntValue(int32(math.Round(v)))
		} else {
			val = uniforms.FloatValue(float32(v))
		}
		m.setValue(c.Uniform, val)
		return []scene.Action{scene.SetUniform{Name: c.Uniform, Value: val}}
	}
	switch c.Setting {
	case scene.SettingFPS:
		m.state.Settings.FPS = int(math.Round(v))
		return []scene.Action{scene.SetFPS{FPS: m.state.Settings.FPS}}
	case scene.SettingScale:
		m.displayScale = v
		return []scene.Action{scene.SetScale{Scale: v}}
	case scene.SettingParallax:
		m.state.Settings.Parallax = v
		return []scene.Action{scene.SetParallax{Strength: v}}
	}
	return nil
}

func (m *Model) setBool(c Control, b bool) []scene.Action {
	if c.Uniform != "" {
		val := uniforms.BoolValue(b)
		m.setValue(c.Uniform, val)
		return []scene.Action{scene.SetUniform{Name: c.Uniform, Value: val}}
	}
	m.state.Settings.Mouse = b
	return []scene.Action{scene.SetMouseEnabled{Enabled: b}}
}

func (m *Model) setColor(c Control, col colorful.Color) []scene.Action {
	val := uniforms.ColorValue(col.Clamped())
	m.setValue(c.Uniform, val)
	return []scene.Action{scene.SetUniform{Name: c.Uniform, Value: val}}
}

func (m *Model) setValue(name string, v uniforms.Value) {
	if m.state.Values == nil {
		m.state.Values = make(map[string]uniforms.Value)
	}
	m.state.Values[name] = v
}

// Display renders the current value of a control for the panel.
func (m *Model) Display(c Control) string {
	switch c.Kind {
	case Slider:
		v := m.number(c)
		if c.Range.Step >= 1 {
			return fmt.Sprintf("%d", int(math.Round(v)))
		}
		return fmt.Sprintf("%.2f", v)
	case Toggle:
		if m.bool(c) {
			return "[x]"
		}
		return "[ ]"
	case ColorPicker:
		return m.color(c).Hex()
	case Link:
		return "open"
	}
	return ""
}

// Fraction is how far a slider sits in its range, 0 to 1.
func (m *Model) Fraction(c Control) float64 {
	if c.Kind != Slider || c.Range.Max <= c.Range.Min {
		return 0
	}
	f := (m.number(c) - c.Range.Min) / (c.Range.Max - c.Range.Min)
	return math.Max(0, math.Min(1, f))
}
