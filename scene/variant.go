package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goclouds/uniforms"
)

// Uniform names shared by every variant.
const (
	UniformTime       = "u_time"
	UniformFog        = "u_fog"
	UniformSpeed      = "u_speed"
	UniformScale      = "u_scale"
	UniformScale2     = "u_scale2"
	UniformIters      = "u_iters"
	UniformColor      = "u_color1"
	UniformFogColor   = "u_fog_color"
	UniformBrightness = "u_brightness"
	UniformMouse      = "u_mouse"
	UniformResolution = "u_resolution"
)

// MouseMode selects how pointer input reaches the mouse uniform.
type MouseMode int

const (
	// MouseDrag writes the pointer only while a button is held and the pointer
	// left the dead zone around the press position.
	MouseDrag MouseMode = iota
	// MouseDirect writes the pointer on every move; a press raises the click flags.
	MouseDirect
)

// Setting names a plain settings field a panel control can bind to.
type Setting int

const (
	SettingNone Setting = iota
	SettingFPS
	SettingScale
	SettingMouse
	SettingParallax
)

// Binding declares one panel control. Exactly one of Uniform, Setting or URL is set.
// Uniform controls take their range from the store; settings carry their own.
type Binding struct {
	Folder  string
	Label   string
	Uniform string
	Setting Setting
	Range   uniforms.Range
	URL     string
}

// Variant is one configuration of the clouds core: its defaults, the controls it
// exposes and the host properties it recognizes.
type Variant struct {
	Name       string
	MouseMode  MouseMode
	Settings   Settings
	Panel      []Binding
	Folders    []string
	Properties []string
}

const (
	livelyURL = "https://www.rocksdanister.com/lively"
	sourceURL = "https://github.com/rocksdanister/clouds"
)

// DefaultSettings are the startup settings of both variants.
func DefaultSettings() Settings {
	return Settings{FPS: 24, Scale: 0.25, Mouse: true, Parallax: 0}
}

// Uniforms returns the uniform definitions with their defaults for a surface.
func (v *Variant) Uniforms(surface *Surface) []uniforms.Uniform {
	return []uniforms.Uniform{
		{Name: UniformTime, Value: uniforms.FloatValue(0)},
		{Name: UniformFog, Value: uniforms.BoolValue(true)},
		{Name: UniformSpeed, Value: uniforms.FloatValue(0.25), Range: &uniforms.Range{Min: 0, Max: 5, Step: 0.01}},
		{Name: UniformScale, Value: uniforms.FloatValue(0.61), Range: &uniforms.Range{Min: 0, Max: 2, Step: 0.01}},
		{Name: UniformScale2, Value: uniforms.FloatValue(0.57), Range: &uniforms.Range{Min: 0, Max: 2, Step: 0.01}},
		{Name: UniformIters, Value: uniforms.IntValue(5), Range: &uniforms.Range{Min: 0, Max: 10, Step: 1}},
		{Name: UniformColor, Value: uniforms.MustHex("#87b0b7")},
		{Name: UniformFogColor, Value: uniforms.MustHex("#0f1c1c")},
		{Name: UniformBrightness, Value: uniforms.FloatValue(1), Range: &uniforms.Range{Min: 0, Max: 1, Step: 0.01}},
		{Name: UniformMouse, Value: uniforms.Vec4Value(mgl32.Vec4{})},
		{Name: UniformResolution, Value: uniforms.Vec2Value(surface.Resolution())},
	}
}

var performanceControls = []Binding{
	{Folder: "Performance", Label: "FPS", Setting: SettingFPS, Range: uniforms.Range{Min: 18, Max: 60, Step: 6}},
	{Folder: "Performance", Label: "Display", Setting: SettingScale, Range: uniforms.Range{Min: 0.1, Max: 2, Step: 0.01}},
}

var linkControls = []Binding{
	{Folder: "More", Label: "Try It On Your Desktop!", URL: livelyURL},
	{Folder: "More", Label: "Source Code", URL: sourceURL},
}

var variants = map[string]*Variant{
	"clouds": {
		Name:      "clouds",
		MouseMode: MouseDrag,
		Settings:  DefaultSettings(),
		Folders:   []string{"Clouds", "Performance", "More"},
		Panel: concat([]Binding{
			{Folder: "Clouds", Label: "Size1", Uniform: UniformScale},
			{Folder: "Clouds", Label: "Size2", Uniform: UniformScale2},
			{Folder: "Clouds", Label: "Iter", Uniform: UniformIters},
			{Folder: "Clouds", Label: "Speed", Uniform: UniformSpeed},
			{Folder: "Clouds", Label: "Brightness", Uniform: UniformBrightness},
			{Folder: "Clouds", Label: "Density", Uniform: UniformColor},
			{Folder: "Clouds", Label: "Fog", Uniform: UniformFogColor},
			{Folder: "Clouds", Label: "Show Fog", Uniform: UniformFog},
			{Folder: "Clouds", Label: "Mouse", Setting: SettingMouse},
		}, performanceControls, linkControls),
		Properties: []string{
			"scale1", "scale2", "iter", "speed", "brightness", "densityColor", "fogColor",
			"mouseClick", "fog", "fpsLock", "displayScaling", "debug",
		},
	},
	"clouds-click": {
		Name:      "clouds-click",
		MouseMode: MouseDirect,
		Settings:  DefaultSettings(),
		Folders:   []string{"Clouds", "Performance", "More"},
		Panel: concat([]Binding{
			{Folder: "Clouds", Label: "Speed", Uniform: UniformSpeed},
			{Folder: "Clouds", Label: "Brightness", Uniform: UniformBrightness},
			{Folder: "Clouds", Label: "Color", Uniform: UniformColor},
			{Folder: "Clouds", Label: "Mouse", Setting: SettingMouse},
			{Folder: "Clouds", Label: "Parallax", Setting: SettingParallax, Range: uniforms.Range{Min: 0, Max: 5, Step: 1}},
		}, performanceControls, linkControls),
		Properties: []string{
			"speed", "brightness", "densityColor", "mouseClick", "parallax", "fpsLock", "displayScaling",
		},
	},
}

func concat(groups ...[]Binding) []Binding {
	var out []Binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// LookupVariant returns the named variant.
func LookupVariant(name string) (*Variant, error) {
	v, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("unknown variant %q (available: %v)", name, VariantNames())
	}
	return v, nil
}

func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recognizes reports whether the variant handles the host property.
func (v *Variant) Recognizes(property string) bool {
	for _, p := range v.Properties {
		if p == property {
			return true
		}
	}
	return false
}
