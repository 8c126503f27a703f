package input

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goclouds/scene"
)

func newScene(t *testing.T, variant string) *scene.Scene {
	t.Helper()
	v, err := scene.LookupVariant(variant)
	if err != nil {
		t.Fatalf("LookupVariant failed: %v", err)
	}
	s, err := scene.New(v, 1000, 800, scene.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func feed(s *scene.Scene, h *Handler, events ...Event) {
	for _, ev := range events {
		s.DispatchAll(h.Handle(s, ev)...)
	}
}

func TestDragDeadZone(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   mgl32.Vec4
	}{
		{
			name:   "move without press",
			events: []Event{{Kind: PointerMove, X: 300, Y: 300}},
			want:   mgl32.Vec4{},
		},
		{
			name: "jitter inside dead zone",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerMove, X: 109, Y: 91},
				{Kind: PointerMove, X: 100.5, Y: 109.9},
			},
			want: mgl32.Vec4{},
		},
		{
			name: "drag past dead zone on x",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerMove, X: 110, Y: 100},
			},
			want: mgl32.Vec4{27.5, 25, 1, 1},
		},
		{
			name: "drag past dead zone on y",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerMove, X: 104, Y: 140},
			},
			want: mgl32.Vec4{26, 35, 1, 1},
		},
		{
			name: "move after release",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerUp, X: 100, Y: 100},
				{Kind: PointerMove, X: 400, Y: 400},
			},
			want: mgl32.Vec4{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, "clouds")
			h := NewHandler(scene.MouseDrag)
			feed(s, h, tt.events...)
			if got := s.Mouse(); got != tt.want {
				t.Errorf("Expected mouse %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDragHonorsMouseSetting(t *testing.T) {
	s := newScene(t, "clouds")
	s.DispatchAll(scene.SetMouseEnabled{Enabled: false})
	h := NewHandler(scene.MouseDrag)
	feed(s, h, Event{Kind: PointerDown, X: 0, Y: 0}, Event{Kind: PointerMove, X: 500, Y: 500})
	if got := s.Mouse(); got != (mgl32.Vec4{}) {
		t.Errorf("Expected mouse untouched while disabled, got %v", got)
	}
	if !h.Dragging() {
		t.Error("Drag state should still be tracked while the mouse setting is off")
	}
}

func TestDirectMode(t *testing.T) {
	s := newScene(t, "clouds-click")
	h := NewHandler(scene.MouseDirect)

	feed(s, h, Event{Kind: PointerMove, X: 40, Y: 80})
	if got := s.Mouse(); got != (mgl32.Vec4{10, 20, 0, 0}) {
		t.Fatalf("Expected live position without click flags, got %v", got)
	}

	feed(s, h, Event{Kind: PointerDown, X: 44, Y: 80})
	if got := s.Mouse(); got != (mgl32.Vec4{11, 20, 1, 1}) {
		t.Fatalf("Expected click flags after press, got %v", got)
	}

	feed(s, h, Event{Kind: PointerUp, X: 44, Y: 80}, Event{Kind: PointerMove, X: 4, Y: 8})
	if got := s.Mouse(); got != (mgl32.Vec4{1, 2, 1, 1}) {
		t.Errorf("Expected click flags to persist, got %v", got)
	}
}

func TestParallax(t *testing.T) {
	s := newScene(t, "clouds-click")
	h := NewHandler(scene.MouseDirect)

	feed(s, h, Event{Kind: PointerMove, X: 100, Y: 200})
	if !s.Transform.IsIdentity() {
		t.Fatalf("Parallax 0 must leave the transform untouched, got %+v", s.Transform)
	}

	s.DispatchAll(scene.SetParallax{Strength: 2})
	feed(s, h, Event{Kind: PointerMove, X: 100, Y: 200})
	want := scene.Transform{X: (1000 - 200) / 90.0, Y: (800 - 400) / 90.0, Scale: 1.09}
	if s.Transform != want {
		t.Errorf("Expected %+v, got %+v", want, s.Transform)
	}

	// Turning parallax off keeps the last transform in place.
	s.DispatchAll(scene.SetParallax{Strength: 0})
	feed(s, h, Event{Kind: PointerMove, X: 900, Y: 10})
	if s.Transform != want {
		t.Errorf("Expected transform to stay %+v, got %+v", want, s.Transform)
	}
}

func TestParallaxIndependentOfMouse(t *testing.T) {
	s := newScene(t, "clouds")
	s.DispatchAll(scene.SetMouseEnabled{Enabled: false}, scene.SetParallax{Strength: 1})
	h := NewHandler(scene.MouseDrag)
	feed(s, h, Event{Kind: PointerMove, X: 10, Y: 10})
	if s.Transform.IsIdentity() {
		t.Error("Expected parallax to apply with the mouse uniform disabled")
	}
	if s.Mouse() != (mgl32.Vec4{}) {
		t.Error("Expected mouse uniform untouched")
	}
}
