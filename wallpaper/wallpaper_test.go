package wallpaper

import (
	"testing"

	"github.com/richinsley/goclouds/input"
)

func TestTracker(t *testing.T) {
	tr := &Tracker{OriginX: 100, OriginY: 50}

	tests := []struct {
		name string
		p    Pointer
		want []input.Event
	}{
		{"first sample", Pointer{X: 110, Y: 60}, []input.Event{{Kind: input.PointerMove, X: 10, Y: 10}}},
		{"no change", Pointer{X: 110, Y: 60}, nil},
		{"press", Pointer{X: 110, Y: 60, Pressed: true}, []input.Event{{Kind: input.PointerDown, X: 10, Y: 10}}},
		{"drag", Pointer{X: 130, Y: 60, Pressed: true}, []input.Event{{Kind: input.PointerMove, X: 30, Y: 10}}},
		{"move and release", Pointer{X: 140, Y: 70}, []input.Event{
			{Kind: input.PointerMove, X: 40, Y: 20},
			{Kind: input.PointerUp, X: 40, Y: 20},
		}},
	}
	for _, tt := range tests {
		got := tr.Update(tt.p)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: event %d expected %+v, got %+v", tt.name, i, tt.want[i], got[i])
			}
		}
	}
}
