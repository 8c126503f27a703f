// Package loop paces the draw calls of the render thread.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/richinsley/goclouds/clock"
)

type State int

const (
	// Scheduled means the next draw is queued for a deadline.
	Scheduled State = iota
	// Drawing means a frame is being rendered.
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "scheduled"
}

// Interval is the delay between two draws at the given rate (1000/fps ms).
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// Loop alternates between waiting for the next deadline and drawing one frame.
// The deadline is taken from FPS when the frame is scheduled, just before it is
// drawn, so a rate change applies from the next reschedule on.
type Loop struct {
	Time clock.TimeProvider
	// FPS returns the current target rate.
	FPS func() int
	// Frame renders one frame. An error stops the loop.
	Frame func() error
	// Wait blocks for at most d while handling pending events. It may return early.
	Wait func(d time.Duration)
	// Done reports whether the loop should stop.
	Done func() bool

	state  State
	frames uint64
}

func (l *Loop) State() State { return l.state }

// Frames is the number of frames drawn so far.
func (l *Loop) Frames() uint64 { return l.frames }

// Run draws frames until ctx is cancelled, Done reports true or a frame fails.
func (l *Loop) Run(ctx context.Context) error {
	if l.Time == nil {
		l.Time = clock.SystemTime{}
	}
	if l.Wait == nil {
		l.Wait = time.Sleep
	}
	for {
		if l.stopped(ctx) {
			return nil
		}

		deadline := l.Time.Now().Add(Interval(l.FPS()))

		l.state = Drawing
		if err := l.Frame(); err != nil {
			l.state = Scheduled
			return fmt.Errorf("frame %d failed: %w", l.frames, err)
		}
		l.frames++
		l.state = Scheduled

		for {
			if l.stopped(ctx) {
				return nil
			}
			remaining := deadline.Sub(l.Time.Now())
			if remaining <= 0 {
				break
			}
			l.Wait(remaining)
		}
	}
}

func (l *Loop) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return l.Done != nil && l.Done()
}
