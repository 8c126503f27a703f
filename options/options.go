// Package options holds the command line and config file settings.
package options

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/richinsley/goclouds/bridge"
	"github.com/richinsley/goclouds/scene"
)

type Options struct {
	Config    string
	Variant   string
	Shader    string
	Width     int
	Height    int
	FPS       int
	Scale     float64
	Mouse     bool
	Parallax  float64
	Panel     bool
	Host      bool
	Wallpaper bool
	// Properties are name=value pairs applied through the host bridge at startup.
	Properties []string
	Record     string
	Duration   float64
	FFMPEGPath string
	LogLevel   string
	LogFile    string
	NoCache    bool
	Help       bool
}

// fileOptions mirrors Options in a TOML config file. Pointers tell unset
// keys apart from zero values.
type fileOptions struct {
	Variant    *string        `toml:"variant"`
	Shader     *string        `toml:"shader"`
	Width      *int           `toml:"width"`
	Height     *int           `toml:"height"`
	FPS        *int           `toml:"fps"`
	Scale      *float64       `toml:"scale"`
	Mouse      *bool          `toml:"mouse"`
	Parallax   *float64       `toml:"parallax"`
	Panel      *bool          `toml:"panel"`
	Host       *bool          `toml:"host"`
	Wallpaper  *bool          `toml:"wallpaper"`
	FFMPEGPath *string        `toml:"ffmpeg"`
	LogLevel   *string        `toml:"log-level"`
	LogFile    *string        `toml:"log-file"`
	NoCache    *bool          `toml:"no-cache"`
	Properties map[string]any `toml:"properties"`
}

type propertyList struct {
	values *[]string
}

func (p propertyList) String() string {
	if p.values == nil {
		return ""
	}
	return strings.Join(*p.values, ",")
}

func (p propertyList) Set(s string) error {
	if _, _, err := bridge.ParseAssignment(s); err != nil {
		return err
	}
	*p.values = append(*p.values, s)
	return nil
}

func newFlagSet(o *Options, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("goclouds", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&o.Config, "config", "", "Path to a TOML config file")
	fs.StringVar(&o.Variant, "variant", "clouds", fmt.Sprintf("Scene variant %v", scene.VariantNames()))
	fs.StringVar(&o.Shader, "shader", "", "Fragment shader path or http(s) URL (default shaders/clouds.frag)")
	fs.IntVar(&o.Width, "width", 1280, "Window width")
	fs.IntVar(&o.Height, "height", 720, "Window height")
	fs.IntVar(&o.FPS, "fps", 0, "Frame rate target (0 uses the variant default)")
	fs.Float64Var(&o.Scale, "scale", 0, "Display scale of the render surface (0 uses the variant default)")
	fs.BoolVar(&o.Mouse, "mouse", true, "React to the mouse")
	fs.Float64Var(&o.Parallax, "parallax", 0, "Parallax strength, 0 disables")
	fs.BoolVar(&o.Panel, "panel", true, "Show the settings panel in the terminal")
	fs.BoolVar(&o.Host, "host", false, "Read property updates as JSON lines on stdin")
	fs.BoolVar(&o.Wallpaper, "wallpaper", false, "Place the window on the desktop layer (X11)")
	fs.Var(propertyList{&o.Properties}, "property", "Set a property as name=value (repeatable)")
	fs.StringVar(&o.Record, "record", "", "Record a preview video to this file and exit")
	fs.Float64Var(&o.Duration, "duration", 10.0, "Duration to record in seconds")
	fs.StringVar(&o.FFMPEGPath, "ffmpeg", "", "Path to ffmpeg executable")
	fs.StringVar(&o.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&o.NoCache, "no-cache", false, "Do not cache shaders fetched over http(s)")
	fs.BoolVar(&o.Help, "help", false, "Show help message")
	return fs
}

// Parse reads the flags in args, then fills every flag that was not given
// explicitly from the -config file, if any.
func Parse(args []string, output io.Writer) (*Options, error) {
	o := &Options{}
	fs := newFlagSet(o, output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.Help {
		fmt.Fprintln(output, "Animated clouds wallpaper")
		fs.PrintDefaults()
		return o, nil
	}

	if o.Config != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if err := o.loadFile(o.Config, set); err != nil {
			return nil, err
		}
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) loadFile(path string, set map[string]bool) error {
	var f fileOptions
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Warn("Unknown config key", "file", path, "key", key.String())
	}

	apply(set, "variant", f.Variant, &o.Variant)
	apply(set, "shader", f.Shader, &o.Shader)
	apply(set, "width", f.Width, &o.Width)
	apply(set, "height", f.Height, &o.Height)
	apply(set, "fps", f.FPS, &o.FPS)
	apply(set, "scale", f.Scale, &o.Scale)
	apply(set, "mouse", f.Mouse, &o.Mouse)
	apply(set, "parallax", f.Parallax, &o.Parallax)
	apply(set, "panel", f.Panel, &o.Panel)
	apply(set, "host", f.Host, &o.Host)
	apply(set, "wallpaper", f.Wallpaper, &o.Wallpaper)
	apply(set, "ffmpeg", f.FFMPEGPath, &o.FFMPEGPath)
	apply(set, "log-level", f.LogLevel, &o.LogLevel)
	apply(set, "log-file", f.LogFile, &o.LogFile)
	apply(set, "no-cache", f.NoCache, &o.NoCache)

	// File properties go first so -property flags win.
	var props []string
	for _, name := range slices.Sorted(maps.Keys(f.Properties)) {
		props = append(props, fmt.Sprintf("%s=%v", name, f.Properties[name]))
	}
	o.Properties = append(props, o.Properties...)
	return nil
}

func apply[T any](set map[string]bool, name string, from *T, to *T) {
	if from != nil && !set[name] {
		*to = *from
	}
}

func (o *Options) Validate() error {
	var errs []error
	if _, err := scene.LookupVariant(o.Variant); err != nil {
		errs = append(errs, err)
	}
	if o.Width <= 0 || o.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", o.Width, o.Height))
	}
	if o.FPS < 0 {
		errs = append(errs, fmt.Errorf("invalid fps %d", o.FPS))
	}
	if o.Scale < 0 {
		errs = append(errs, fmt.Errorf("invalid scale %g", o.Scale))
	}
	if o.Record != "" && o.Duration <= 0 {
		errs = append(errs, fmt.Errorf("invalid duration %g", o.Duration))
	}
	if _, err := log.ParseLevel(o.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", o.LogLevel))
	}
	return errors.Join(errs...)
}

// Settings returns the variant's settings overridden by the options.
func (o *Options) Settings(v *scene.Variant) scene.Settings {
	s := v.Settings
	if o.FPS > 0 {
		s.FPS = o.FPS
	}
	if o.Scale > 0 {
		s.Scale = o.Scale
	}
	s.Mouse = o.Mouse
	s.Parallax = o.Parallax
	return s
}
