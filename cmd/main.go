package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goclouds/api"
	"github.com/richinsley/goclouds/bridge"
	"github.com/richinsley/goclouds/glfwcontext"
	"github.com/richinsley/goclouds/input"
	"github.com/richinsley/goclouds/loop"
	"github.com/richinsley/goclouds/openurl"
	"github.com/richinsley/goclouds/options"
	"github.com/richinsley/goclouds/panel"
	"github.com/richinsley/goclouds/renderer"
	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/wallpaper"
)

// actionBuffer bounds the actions the panel and the host can queue between
// two frames.
const actionBuffer = 64

func init() {
	runtime.LockOSThread()
}

func main() {
	opts, err := options.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Help {
		return
	}

	closeLog, err := setupLogging(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(opts); err != nil {
		log.Error("goclouds failed", "err", err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogging points the logger at the log file or stderr. The panel
// silences stderr only while it owns the terminal, see quietLogs.
func setupLogging(opts *options.Options) (func(), error) {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	switch {
	case opts.LogFile != "":
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		return func() { f.Close() }, nil
	default:
		log.SetOutput(os.Stderr)
	}
	return func() {}, nil
}

// quietLogs stops logging to stderr while the panel draws on the terminal.
// Logs to a file are left alone. The returned function restores stderr.
func quietLogs(logFile string) func() {
	if logFile != "" {
		return func() {}
	}
	log.SetOutput(io.Discard)
	return func() { log.SetOutput(os.Stderr) }
}

func run(opts *options.Options) error {
	variant, err := scene.LookupVariant(opts.Variant)
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	// Cancelled before GLFW terminates.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	record := opts.Record != ""
	desktopMode := opts.Wallpaper && !record

	// The shader loads while the window comes up.
	log.Info("Loading shader", "location", opts.Shader)
	fetch := api.FetchShaderSourceAsync(ctx, opts.Shader, !opts.NoCache)

	win, err := glfwcontext.New(glfwcontext.Options{
		Width:       opts.Width,
		Height:      opts.Height,
		Title:       "goclouds - " + variant.Name,
		Visible:     !record && !desktopMode,
		Undecorated: desktopMode,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Shutdown()

	var desktop *wallpaper.Desktop
	if desktopMode {
		desktop = attachDesktop(win)
		if desktop != nil {
			defer desktop.Close()
		}
		win.Show()
	}

	r, err := renderer.NewRenderer(win)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()

	width, height := win.GetSize()
	if record {
		width, height = opts.Width, opts.Height
	}
	s, err := scene.New(variant, width, height, opts.Settings(variant), nil)
	if err != nil {
		return err
	}

	res := <-fetch
	if res.Err != nil {
		return fmt.Errorf("failed to load shader: %w", res.Err)
	}
	if err := r.LoadScene(res.Source.Code, s); err != nil {
		return fmt.Errorf("failed to initialize scene: %w", err)
	}

	for _, p := range opts.Properties {
		name, value, err := bridge.ParseAssignment(p)
		if err == nil {
			var actions []scene.Action
			if actions, err = bridge.Actions(variant, name, value); err == nil {
				s.DispatchAll(actions...)
				continue
			}
		}
		log.Warn("Ignoring startup property", "property", p, "err", err)
	}

	if record {
		err := r.RunOffscreen(s, renderer.RecordOptions{
			OutputFile: opts.Record,
			Duration:   opts.Duration,
			FPS:        s.Settings.FPS,
			FFMPEGPath: opts.FFMPEGPath,
		})
		if err != nil {
			return fmt.Errorf("offscreen rendering failed: %w", err)
		}
		log.Info("Successfully rendered", "output", opts.Record)
		return nil
	}

	return runInteractive(ctx, opts, s, r, win, desktop)
}

// attachDesktop moves the hidden window onto the desktop layer. Failure leaves
// a plain window.
func attachDesktop(win *glfwcontext.Context) *wallpaper.Desktop {
	id, ok := win.X11Window()
	if !ok {
		log.Warn("Wallpaper mode needs an X11 window, running in a normal window", "err", wallpaper.ErrUnsupported)
		return nil
	}
	desktop, err := wallpaper.Attach(id)
	if err != nil {
		log.Warn("Failed to attach to the desktop, running in a normal window", "err", err)
		return nil
	}
	w, h := desktop.Size()
	win.SetPos(0, 0)
	win.SetSize(w, h)
	return desktop
}

func runInteractive(ctx context.Context, opts *options.Options, s *scene.Scene, r *renderer.Renderer, win *glfwcontext.Context, desktop *wallpaper.Desktop) error {
	actions := make(chan scene.Action, actionBuffer)

	s.OnOpenLink = func(url string) {
		go func() {
			if err := openurl.Open(url); err != nil {
				log.Error("Failed to open link", "url", url, "err", err)
			}
		}()
	}

	handler := input.NewHandler(s.Variant.MouseMode)
	handle := func(ev input.Event) {
		s.DispatchAll(handler.Handle(s, ev)...)
	}
	var tracker *wallpaper.Tracker
	if desktop != nil {
		tracker = &wallpaper.Tracker{}
	} else {
		win.OnCursor(func(x, y float64) {
			handle(input.Event{Kind: input.PointerMove, X: x, Y: y})
		})
		win.OnButton(func(pressed bool, x, y float64) {
			kind := input.PointerUp
			if pressed {
				kind = input.PointerDown
			}
			handle(input.Event{Kind: kind, X: x, Y: y})
		})
	}
	win.OnResize(func(w, h int) {
		s.DispatchAll(scene.Resize{Width: w, Height: h})
	})

	var pnl *panel.Panel
	if opts.Panel {
		p, stop, err := startPanel(ctx, s, actions, opts.LogFile)
		if err != nil {
			log.Warn("Settings panel unavailable", "err", err)
		} else {
			pnl = p
			defer stop()
		}
	}

	// H shows and hides the panel from the render window.
	win.RegisterKeyCallback(glfw.KeyH, func() {
		s.DispatchAll(scene.SetPanelVisible{Visible: !s.PanelVisible()})
	})

	b := bridge.New(s.Variant, actions, glfwcontext.Wake, os.Stdout)
	if opts.Host {
		go func() {
			if err := b.Serve(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Host bridge stopped", "err", err)
			}
		}()
	}

	drain := func() {
		applied := false
		for {
			select {
			case a := <-actions:
				s.DispatchAll(a)
				applied = true
			default:
				if applied && pnl != nil {
					pnl.Sync(panel.StateOf(s))
				}
				return
			}
		}
	}

	log.Info("Scene loaded", "variant", s.Variant.Name, "fps", s.Settings.FPS, "scale", s.Settings.Scale)
	if opts.Host {
		if err := b.Emit(bridge.EventSceneLoaded); err != nil {
			log.Warn("Failed to notify host", "err", err)
		}
	}

	l := &loop.Loop{
		FPS: func() int { return s.Settings.FPS },
		Frame: func() error {
			drain()
			if tracker != nil {
				if p, err := desktop.Pointer(); err == nil {
					for _, ev := range tracker.Update(p) {
						handle(ev)
					}
				}
			}
			s.Advance()
			return r.Draw(s)
		},
		Wait: func(d time.Duration) {
			win.WaitEvents(d)
			drain()
		},
		Done: func() bool { return win.ShouldClose() || s.QuitRequested() },
	}
	return l.Run(ctx)
}

// startPanel runs the settings panel on the controlling terminal. The returned
// stop function restores the terminal and stderr logging.
func startPanel(ctx context.Context, s *scene.Scene, actions chan<- scene.Action, logFile string) (*panel.Panel, func(), error) {
	model, err := panel.NewModel(s)
	if err != nil {
		return nil, nil, err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, nil, err
	}
	restoreLogs := quietLogs(logFile)

	p := panel.New(screen, model, s.Variant.Name, actions, glfwcontext.Wake)
	s.OnPanelVisibility = func(bool) { p.Sync(panel.StateOf(s)) }

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Settings panel stopped", "err", err)
		}
	}()

	stop := func() {
		cancel()
		<-done
		screen.Fini()
		restoreLogs()
	}
	return p, stop, nil
}
