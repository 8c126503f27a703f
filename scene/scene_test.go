package scene

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goclouds/clock"
	"github.com/richinsley/goclouds/uniforms"
)

func newTestScene(t *testing.T, variant string) (*Scene, *clock.MockTime) {
	t.Helper()
	v, err := LookupVariant(variant)
	if err != nil {
		t.Fatalf("LookupVariant failed: %v", err)
	}
	mt := clock.NewMockTime(time.Unix(0, 0))
	s, err := New(v, 1920, 1080, DefaultSettings(), mt)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, mt
}

func resolution(t *testing.T, s *Scene) mgl32.Vec2 {
	t.Helper()
	v, ok := s.Store.Get(UniformResolution)
	if !ok {
		t.Fatal("Missing resolution uniform")
	}
	return v.Vec2()
}

func TestNewSceneDefaults(t *testing.T) {
	s, _ := newTestScene(t, "clouds")

	if got := resolution(t, s); got != (mgl32.Vec2{480, 270}) {
		t.Errorf("Expected resolution 480x270 at scale 0.25, got %v", got)
	}
	if s.Settings.FPS != 24 || !s.Settings.Mouse || s.Settings.Parallax != 0 {
		t.Errorf("Unexpected default settings: %+v", s.Settings)
	}
	if !s.Transform.IsIdentity() {
		t.Errorf("Expected identity transform, got %+v", s.Transform)
	}
	if v, _ := s.Store.Get(UniformFogColor); v.String() != "#0f1c1c" {
		t.Errorf("Unexpected fog color %s", v)
	}
}

func TestNewSceneRejectsBadSettings(t *testing.T) {
	v, _ := LookupVariant("clouds")
	if _, err := New(v, 10, 10, Settings{FPS: 0, Scale: 1}, nil); err == nil {
		t.Error("Expected zero fps to fail")
	}
	if _, err := New(v, 10, 10, Settings{FPS: 24, Scale: 0}, nil); err == nil {
		t.Error("Expected zero scale to fail")
	}
	if _, err := New(v, 10, 10, Settings{FPS: 24, Scale: math.NaN()}, nil); err == nil {
		t.Error("Expected NaN scale to fail")
	}
}

func TestSetScaleIsIdempotent(t *testing.T) {
	s, _ := newTestScene(t, "clouds")
	gen := s.Surface.Generation()

	s.DispatchAll(SetScale{Scale: 0.5})
	if s.Surface.Generation() != gen+1 {
		t.Fatalf("Expected one reallocation, generation %d -> %d", gen, s.Surface.Generation())
	}
	s.DispatchAll(SetScale{Scale: 0.5})
	if s.Surface.Generation() != gen+1 {
		t.Errorf("Second SetScale with the same value reallocated the surface")
	}
	if s.Settings.Scale != 0.5 {
		t.Errorf("Expected settings scale 0.5, got %g", s.Settings.Scale)
	}
	if got := resolution(t, s); got != (mgl32.Vec2{960, 540}) {
		t.Errorf("Expected resolution 960x540, got %v", got)
	}
}

func TestResolutionFollowsResizeAndScale(t *testing.T) {
	s, _ := newTestScene(t, "clouds")

	steps := []Action{
		Resize{Width: 1280, Height: 720},
		SetScale{Scale: 1.5},
		Resize{Width: 800, Height: 600},
		SetScale{Scale: 0.1},
	}
	for _, a := range steps {
		s.DispatchAll(a)
		w, h := s.Surface.Viewport()
		scale := s.Surface.Scale()
		want := mgl32.Vec2{float32(float64(w) * scale), float32(float64(h) * scale)}
		if got := resolution(t, s); got != want {
			t.Errorf("After %T: expected resolution %v, got %v", a, want, got)
		}
	}
}

func TestSetScaleIgnoresInvalid(t *testing.T) {
	s, _ := newTestScene(t, "clouds")
	gen := s.Surface.Generation()
	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		s.DispatchAll(SetScale{Scale: scale}, SetScale{Scale: scale})
	}
	if s.Surface.Generation() != gen || s.Settings.Scale != 0.25 {
		t.Errorf("Invalid scale changed the surface: generation %d -> %d, scale %g",
			gen, s.Surface.Generation(), s.Settings.Scale)
	}
	if got := resolution(t, s); got != (mgl32.Vec2{480, 270}) {
		t.Errorf("Expected resolution 480x270, got %v", got)
	}
}

func TestDispatchUnknownUniformLeavesStore(t *testing.T) {
	s, _ := newTestScene(t, "clouds")
	before := s.Store.Snapshot()

	err := s.Dispatch(SetUniform{Name: "u_missing", Value: uniforms.FloatValue(3)})
	if !errors.Is(err, uniforms.ErrUnknownUniform) {
		t.Fatalf("Expected ErrUnknownUniform, got %v", err)
	}
	for name, v := range s.Store.Snapshot() {
		if !v.Equal(before[name]) {
			t.Errorf("Uniform %s changed", name)
		}
	}
}

func TestDispatchSettingsAndHooks(t *testing.T) {
	s, _ := newTestScene(t, "clouds")

	var links []string
	var visibility []bool
	s.OnOpenLink = func(url string) { links = append(links, url) }
	s.OnPanelVisibility = func(v bool) { visibility = append(visibility, v) }

	s.DispatchAll(
		SetMouseEnabled{Enabled: false},
		SetParallax{Strength: 3},
		SetFPS{FPS: 60},
		SetPanelVisible{Visible: false},
		SetPanelVisible{Visible: false},
		OpenLink{URL: "https://example.com"},
	)

	if s.Settings.Mouse || s.Settings.Parallax != 3 || s.Settings.FPS != 60 {
		t.Errorf("Unexpected settings %+v", s.Settings)
	}
	if len(visibility) != 1 || visibility[0] || s.PanelVisible() {
		t.Errorf("Expected one hide notification, got %v", visibility)
	}
	if len(links) != 1 || links[0] != "https://example.com" {
		t.Errorf("Unexpected links %v", links)
	}

	if err := s.Dispatch(SetFPS{FPS: 0}); err == nil {
		t.Error("Expected zero fps to be rejected")
	}
	if s.Settings.FPS != 60 {
		t.Errorf("Rejected fps changed settings: %d", s.Settings.FPS)
	}

	s.DispatchAll(Quit{})
	if !s.QuitRequested() {
		t.Error("Expected quit to be requested")
	}
}

func TestAdvanceWritesTime(t *testing.T) {
	s, mt := newTestScene(t, "clouds")

	mt.Advance(2500 * time.Millisecond)
	if got := s.Advance(); got != 2.5 {
		t.Fatalf("Expected 2.5, got %f", got)
	}
	if v, _ := s.Store.Get(UniformTime); v.Float() != 2.5 {
		t.Errorf("Expected u_time 2.5, got %v", v)
	}

	mt.Advance(clock.ResetAfter - 3*time.Second)
	prev := s.Advance()
	mt.Advance(time.Second)
	next := s.Advance()
	if next >= prev || next < 0 {
		t.Errorf("Expected wrapped time, prev=%f next=%f", prev, next)
	}
}

func TestTransformMatrix(t *testing.T) {
	if m := Identity().Matrix(800, 600); m != mgl32.Ident4() {
		t.Errorf("Identity transform should give the identity matrix, got %v", m)
	}

	tr := Transform{X: 40, Y: 30, Scale: ParallaxScale}
	m := tr.Matrix(800, 600)
	center := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(center[0]-0.1)) > 1e-6 || math.Abs(float64(center[1]+0.1)) > 1e-6 {
		t.Errorf("Expected center at (0.1, -0.1), got %v", center)
	}
	corner := m.Mul4x1(mgl32.Vec4{1, 1, 0, 1})
	if math.Abs(float64(corner[0]-(1.09+0.1))) > 1e-5 {
		t.Errorf("Expected scaled corner x 1.19, got %f", corner[0])
	}
}

func TestVariants(t *testing.T) {
	names := VariantNames()
	if len(names) != 2 || names[0] != "clouds" || names[1] != "clouds-click" {
		t.Fatalf("Unexpected variants %v", names)
	}
	if _, err := LookupVariant("storm"); err == nil {
		t.Error("Expected unknown variant to fail")
	}

	clouds, _ := LookupVariant("clouds")
	click, _ := LookupVariant("clouds-click")
	if clouds.MouseMode != MouseDrag || click.MouseMode != MouseDirect {
		t.Error("Unexpected mouse modes")
	}
	if !clouds.Recognizes("debug") || click.Recognizes("debug") {
		t.Error("Only the clouds variant handles debug")
	}
	if !click.Recognizes("parallax") || clouds.Recognizes("parallax") {
		t.Error("Only the clouds-click variant handles parallax")
	}

	for _, v := range []*Variant{clouds, click} {
		s, err := New(v, 100, 100, v.Settings, nil)
		if err != nil {
			t.Fatalf("%s: New failed: %v", v.Name, err)
		}
		for _, b := range v.Panel {
			if b.Uniform == "" {
				continue
			}
			if _, ok := s.Store.Lookup(b.Uniform); !ok {
				t.Errorf("%s: control %q bound to missing uniform %s", v.Name, b.Label, b.Uniform)
			}
		}
	}
}
