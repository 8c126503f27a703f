package panel

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/richinsley/goclouds/scene"
)

const barWidth = 12

var (
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleFolder   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleValue    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBar      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleLink     = tcell.StyleDefault.Foreground(tcell.ColorBlue).Underline(true)
	styleHint     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelected = tcell.StyleDefault.Reverse(true)
)

// canvas is the part of tcell.Screen the panel draws on.
type canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
	Clear()
	Show()
}

// Panel runs the model in a terminal. Key presses are turned into actions and
// sent to the render thread; the render thread pushes state back with Sync.
type Panel struct {
	screen  tcell.Screen
	actions chan<- scene.Action
	wake    func()
	title   string

	mu     sync.Mutex
	model  *Model
	redraw chan struct{}
}

// New wraps an initialized screen.
func New(screen tcell.Screen, model *Model, title string, ch chan<- scene.Action, wake func()) *Panel {
	if wake == nil {
		wake = func() {}
	}
	return &Panel{
		screen:  screen,
		actions: ch,
		wake:    wake,
		title:   title,
		model:   model,
		redraw:  make(chan struct{}, 1),
	}
}

// Sync hands fresh scene state to the panel. Safe to call from any goroutine.
func (p *Panel) Sync(st State) {
	p.mu.Lock()
	p.model.Sync(st)
	p.mu.Unlock()
	select {
	case p.redraw <- struct{}{}:
	default:
	}
}

// Run draws the panel and handles keys until ctx is done or the user quits.
func (p *Panel) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(events)
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	p.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.redraw:
			p.Draw()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				actions, finished := p.handleKey(ev.Key(), ev.Rune())
				if err := p.send(ctx, actions); err != nil {
					return err
				}
				if finished {
					return nil
				}
				p.Draw()
			case *tcell.EventResize:
				p.screen.Sync()
				p.Draw()
			}
		}
	}
}

func (p *Panel) send(ctx context.Context, actions []scene.Action) error {
	if len(actions) == 0 {
		return nil
	}
	for _, a := range actions {
		select {
		case p.actions <- a:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.wake()
	return nil
}

// handleKey returns the actions for a key press and whether the panel is done.
func (p *Panel) handleKey(key tcell.Key, r rune) ([]scene.Action, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.model

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return []scene.Action{scene.Quit{}}, true
	case tcell.KeyUp:
		m.Move(-1)
	case tcell.KeyDown:
		m.Move(1)
	case tcell.KeyLeft:
		return m.Adjust(-1), false
	case tcell.KeyRight:
		return m.Adjust(1), false
	case tcell.KeyEnter:
		return m.Activate(), false
	case tcell.KeyTab:
		if m.Visible() {
			m.ToggleCollapsed()
		}
	case tcell.KeyRune:
		switch r {
		case 'q':
			return []scene.Action{scene.Quit{}}, true
		case ' ':
			return m.Activate(), false
		case '+', '=':
			return m.AdjustValue(1), false
		case '-':
			return m.AdjustValue(-1), false
		}
	}
	return nil, false
}

func (p *Panel) Draw() {
	p.mu.Lock()
	defer p.mu.Unlock()
	render(p.screen, p.model, p.title)
}

func render(c canvas, m *Model, title string) {
	c.Clear()
	defer c.Show()

	if !m.Visible() {
		drawText(c, 0, 0, styleHint, "controls hidden  (q quits)")
		return
	}

	y := 0
	if m.Collapsed() {
		drawText(c, 0, y, styleTitle, "▸ "+title)
		drawText(c, 0, y+1, styleHint, "tab: open controls  q: quit")
		return
	}
	drawText(c, 0, y, styleTitle, "▾ "+title)
	y++

	folder := ""
	for i, ctl := range m.Controls() {
		if ctl.Folder != folder {
			folder = ctl.Folder
			y++
			drawText(c, 0, y, styleFolder, folder)
			y++
		}
		drawControl(c, y, m, ctl, i == m.Selected())
		y++
	}
	y++
	drawText(c, 0, y, styleHint, "↑↓ select  ←→ adjust  +/- shade  space/enter toggle")
	drawText(c, 0, y+1, styleHint, "tab: close controls  q: quit")
}

func drawControl(c canvas, y int, m *Model, ctl Control, selected bool) {
	label := styleLabel
	if ctl.Kind == Link {
		label = styleLink
	}
	if selected {
		label = styleSelected
	}
	if ctl.Kind == Link {
		drawText(c, 2, y, label, ctl.Label)
		return
	}
	drawText(c, 2, y, label, fmt.Sprintf("%-12s", ctl.Label))

	x := 16
	switch ctl.Kind {
	case Slider:
		filled := int(m.Fraction(ctl)*barWidth + 0.5)
		for i := 0; i < barWidth; i++ {
			r := '─'
			if i < filled {
				r = '█'
			}
			c.SetContent(x+i, y, r, nil, styleBar)
		}
		drawText(c, x+barWidth+1, y, styleValue, m.Display(ctl))
	case ColorPicker:
		col := m.color(ctl)
		r, g, b := col.RGB255()
		swatch := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
		drawText(c, x, y, swatch, "    ")
		drawText(c, x+5, y, styleValue, m.Display(ctl))
	default:
		drawText(c, x, y, styleValue, m.Display(ctl))
	}
}

func drawText(c canvas, x, y int, style tcell.Style, text string) {
	w, h := c.Size()
	if y < 0 || y >= h {
		return
	}
	for _, r := range text {
		if x >= w {
			return
		}
		c.SetContent(x, y, r, nil, style)
		x++
	}
}
