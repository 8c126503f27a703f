// Package wallpaper places the window on the desktop layer and samples the
// global pointer, which a desktop-layer window does not receive events for.
package wallpaper

import (
	"errors"

	"github.com/richinsley/goclouds/input"
)

var ErrUnsupported = errors.New("wallpaper mode is not supported on this platform")

// Pointer is a pointer sample in root window coordinates.
type Pointer struct {
	X, Y    int
	Pressed bool
}

// Tracker turns successive pointer samples into the events the input handlers
// consume, relative to a window origin.
type Tracker struct {
	OriginX, OriginY int

	last   Pointer
	primed bool
}

// Update returns the events between the previous sample and p. A press or
// release is reported at the new position, after any move.
func (t *Tracker) Update(p Pointer) []input.Event {
	x := float64(p.X - t.OriginX)
	y := float64(p.Y - t.OriginY)

	var events []input.Event
	if !t.primed || p.X != t.last.X || p.Y != t.last.Y {
		events = append(events, input.Event{Kind: input.PointerMove, X: x, Y: y})
	}
	if t.primed && p.Pressed != t.last.Pressed {
		kind := input.PointerUp
		if p.Pressed {
			kind = input.PointerDown
		}
		events = append(events, input.Event{Kind: kind, X: x, Y: y})
	}
	t.last = p
	t.primed = true
	return events
}
