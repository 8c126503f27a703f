package bridge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/uniforms"
)

func newScene(t *testing.T, variant string) *scene.Scene {
	t.Helper()
	v, err := scene.LookupVariant(variant)
	if err != nil {
		t.Fatalf("LookupVariant failed: %v", err)
	}
	s, err := scene.New(v, 1920, 1080, v.Settings, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func apply(t *testing.T, s *scene.Scene, name string, value any) {
	t.Helper()
	actions, err := Actions(s.Variant, name, value)
	if err != nil {
		t.Fatalf("Actions(%s) failed: %v", name, err)
	}
	s.DispatchAll(actions...)
}

func TestParseProperty(t *testing.T) {
	for p := Scale1; p <= Debug; p++ {
		got, ok := ParseProperty(p.String())
		if !ok || got != p {
			t.Errorf("ParseProperty(%q) = %v, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParseProperty("unknown"); ok {
		t.Error("unknown must not parse")
	}
	if _, ok := ParseProperty("Scale1"); ok {
		t.Error("names are case sensitive")
	}
}

func TestRecognizedPropertiesReachUniforms(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		uniform string
		want    uniforms.Value
	}{
		{"scale1", 1.25, scene.UniformScale, uniforms.FloatValue(1.25)},
		{"scale2", 0.5, scene.UniformScale2, uniforms.FloatValue(0.5)},
		{"iter", 7.0, scene.UniformIters, uniforms.IntValue(7)},
		{"speed", 3, scene.UniformSpeed, uniforms.FloatValue(3)},
		{"brightness", 0.75, scene.UniformBrightness, uniforms.FloatValue(0.75)},
		{"densityColor", "#ff0000", scene.UniformColor, uniforms.MustHex("#ff0000")},
		{"fogColor", "#00ff00", scene.UniformFogColor, uniforms.MustHex("#00ff00")},
		{"fog", false, scene.UniformFog, uniforms.BoolValue(false)},
		// Host writes are not clamped to the panel range.
		{"scale1", 9.0, scene.UniformScale, uniforms.FloatValue(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, "clouds")
			apply(t, s, tt.name, tt.value)
			got, _ := s.Store.Get(tt.uniform)
			if !got.Equal(tt.want) {
				t.Errorf("Expected %s = %v, got %v", tt.uniform, tt.want, got)
			}
		})
	}
}

func TestUnrecognizedPropertiesChangeNothing(t *testing.T) {
	tests := []struct {
		variant string
		name    string
		value   any
	}{
		{"clouds", "nope", 1.0},
		{"clouds", "", true},
		{"clouds", "parallax", 3.0},
		{"clouds-click", "debug", false},
		{"clouds-click", "scale1", 2.0},
		{"clouds-click", "fogColor", "#ffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.variant+"/"+tt.name, func(t *testing.T) {
			s := newScene(t, tt.variant)
			before := s.Store.Snapshot()
			settings := s.Settings
			visible := s.PanelVisible()

			actions, err := Actions(s.Variant, tt.name, tt.value)
			if err != nil || len(actions) != 0 {
				t.Fatalf("Expected no actions, got %v, %v", actions, err)
			}
			s.DispatchAll(actions...)

			for name, v := range s.Store.Snapshot() {
				if !v.Equal(before[name]) {
					t.Errorf("Uniform %s changed", name)
				}
			}
			if s.Settings != settings || s.PanelVisible() != visible {
				t.Error("Settings changed")
			}
		})
	}
}

func TestBadValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"scale1", "big"},
		{"iter", true},
		{"fog", 1.0},
		{"densityColor", 12.0},
		{"fogColor", "#zzzzzz"},
		{"fpsLock", "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Actions(mustVariant(t, "clouds"), tt.name, tt.value)
			if !errors.Is(err, ErrBadValue) {
				t.Errorf("Expected ErrBadValue, got %v", err)
			}
		})
	}
}

func mustVariant(t *testing.T, name string) *scene.Variant {
	t.Helper()
	v, err := scene.LookupVariant(name)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSettingsProperties(t *testing.T) {
	s := newScene(t, "clouds")

	apply(t, s, "fpsLock", false)
	if s.Settings.FPS != 60 {
		t.Errorf("Expected fps 60 when unlocked, got %d", s.Settings.FPS)
	}
	apply(t, s, "fpsLock", true)
	if s.Settings.FPS != 24 {
		t.Errorf("Expected fps 24 when locked, got %d", s.Settings.FPS)
	}

	apply(t, s, "mouseClick", false)
	if s.Settings.Mouse {
		t.Error("Expected mouse disabled")
	}

	gen := s.Surface.Generation()
	apply(t, s, "displayScaling", 0.5)
	apply(t, s, "displayScaling", 0.5)
	if s.Surface.Generation() != gen+1 {
		t.Errorf("Expected a single reallocation, generation %d -> %d", gen, s.Surface.Generation())
	}
	if got, _ := s.Store.Get(scene.UniformResolution); got.Vec2()[0] != 960 {
		t.Errorf("Expected resolution width 960, got %v", got)
	}

	apply(t, s, "debug", false)
	if s.PanelVisible() {
		t.Error("Expected panel hidden")
	}
	apply(t, s, "debug", true)
	if !s.PanelVisible() {
		t.Error("Expected panel shown")
	}

	click := newScene(t, "clouds-click")
	apply(t, click, "parallax", 4.0)
	if click.Settings.Parallax != 4 {
		t.Errorf("Expected parallax 4, got %g", click.Settings.Parallax)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		value any
		err   bool
	}{
		{in: "fog=false", name: "fog", value: false},
		{in: "scale1 = 1.5", name: "scale1", value: 1.5},
		{in: "densityColor=#ffffff", name: "densityColor", value: "#ffffff"},
		{in: "iter=3", name: "iter", value: 3.0},
		{in: "fog", err: true},
		{in: "=1", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := ParseAssignment(tt.in)
			if tt.err {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if name != tt.name || value != tt.value {
				t.Errorf("Expected %s=%v, got %s=%v", tt.name, tt.value, name, value)
			}
		})
	}
}

func TestServe(t *testing.T) {
	s := newScene(t, "clouds")
	ch := make(chan scene.Action, 16)
	wakes := 0
	b := New(s.Variant, ch, func() { wakes++ }, nil)

	input := strings.Join([]string{
		`{"name":"scale1","value":1.5}`,
		`not json`,
		``,
		`{"name":"densityColor","value":"#102030"}`,
		`{"name":"unknown","value":1}`,
		`{"name":"fog","value":"off"}`,
		`{"name":"iter","value":2}`,
	}, "\n")

	if err := b.Serve(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	close(ch)

	var actions []scene.Action
	for a := range ch {
		actions = append(actions, a)
	}
	if len(actions) != 3 || wakes != 3 {
		t.Fatalf("Expected 3 actions and wakes, got %d and %d", len(actions), wakes)
	}
	s.DispatchAll(actions...)

	if v, _ := s.Store.Get(scene.UniformScale); v.Float() != 1.5 {
		t.Errorf("Expected u_scale 1.5, got %v", v)
	}
	if v, _ := s.Store.Get(scene.UniformColor); v.String() != "#102030" {
		t.Errorf("Expected u_color1 #102030, got %v", v)
	}
	if v, _ := s.Store.Get(scene.UniformIters); v.Int() != 2 {
		t.Errorf("Expected u_iters 2, got %v", v)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	v := mustVariant(t, "clouds")
	ch := make(chan scene.Action)
	b := New(v, ch, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Serve(ctx, strings.NewReader(`{"name":"scale1","value":1}`+"\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestEmit(t *testing.T) {
	var buf bytes.Buffer
	b := New(mustVariant(t, "clouds"), nil, nil, &buf)
	if err := b.Emit(EventSceneLoaded); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if got := buf.String(); got != "{\"event\":\"sceneLoaded\"}\n" {
		t.Errorf("Unexpected event line %q", got)
	}
}

func TestEveryPropertyHasAnAction(t *testing.T) {
	samples := map[Property]any{
		Scale1:         0.5,
		Scale2:         0.5,
		Iter:           3.0,
		Speed:          1.0,
		Brightness:     0.5,
		DensityColor:   "#112233",
		FogColor:       "#112233",
		Fog:            false,
		MouseClick:     false,
		Parallax:       2.0,
		FPSLock:        true,
		DisplayScaling: 0.5,
		Debug:          false,
	}
	variants := []*scene.Variant{mustVariant(t, "clouds"), mustVariant(t, "clouds-click")}

	for p := Unknown + 1; int(p) < len(propertyNames); p++ {
		t.Run(p.String(), func(t *testing.T) {
			value, ok := samples[p]
			if !ok {
				t.Fatalf("No sample value for %s", p)
			}
			handled := false
			for _, v := range variants {
				if !v.Recognizes(p.String()) {
					continue
				}
				actions, err := Actions(v, p.String(), value)
				if err != nil || len(actions) != 1 {
					t.Errorf("%s: expected one action, got %v (err %v)", v.Name, actions, err)
				}
				handled = true
			}
			if !handled {
				t.Errorf("No variant recognizes %s", p)
			}
		})
	}
}

func TestNonFiniteValuesRejected(t *testing.T) {
	s := newScene(t, "clouds")
	gen := s.Surface.Generation()
	before := s.Store.Snapshot()

	for _, name := range []string{"displayScaling", "scale1", "iter", "brightness"} {
		for _, raw := range []string{"NaN", "Inf", "-Inf"} {
			_, value, err := ParseAssignment(name + "=" + raw)
			if err != nil {
				t.Fatalf("ParseAssignment failed: %v", err)
			}
			actions, err := Actions(s.Variant, name, value)
			if !errors.Is(err, ErrBadValue) {
				t.Errorf("%s=%s: expected ErrBadValue, got %v", name, raw, err)
			}
			s.DispatchAll(actions...)
		}
	}

	if s.Surface.Generation() != gen {
		t.Errorf("Non-finite scale reallocated the surface")
	}
	for name, v := range s.Store.Snapshot() {
		if !v.Equal(before[name]) {
			t.Errorf("Uniform %s changed to %v", name, v)
		}
	}
}

func TestServeSkipsOversizedLines(t *testing.T) {
	v := mustVariant(t, "clouds")
	ch := make(chan scene.Action, 4)
	b := New(v, ch, nil, nil)

	input := `{"name":"scale1","value":"` + strings.Repeat("x", maxMessageSize+100) + `"}` + "\n" +
		`{"name":"scale2","value":1.25}` + "\n"
	if err := b.Serve(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	close(ch)

	var actions []scene.Action
	for a := range ch {
		actions = append(actions, a)
	}
	if len(actions) != 1 {
		t.Fatalf("Expected the line after the oversized one to be applied, got %d actions", len(actions))
	}
	if a, ok := actions[0].(scene.SetUniform); !ok || a.Name != scene.UniformScale2 {
		t.Errorf("Unexpected action %+v", actions[0])
	}
}
