// Package bridge applies property updates pushed by a host wallpaper
// application. Updates arrive as newline-delimited JSON on a reader and are
// turned into scene actions for the render thread.
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/uniforms"
)

var ErrBadValue = errors.New("bad property value")

// EventSceneLoaded is written once the scene is ready to draw.
const EventSceneLoaded = "sceneLoaded"

const (
	lockedFPS   = 24
	unlockedFPS = 60
)

// Actions maps one property update to the actions that apply it. Names the
// variant does not recognize yield no actions and no error. Values that cannot
// be coerced to the property's type return an error wrapping ErrBadValue.
func Actions(variant *scene.Variant, name string, value any) ([]scene.Action, error) {
	p, ok := ParseProperty(name)
	if !ok || !variant.Recognizes(name) {
		return nil, nil
	}

	var a scene.Action
	var err error
	switch p {
	case Scale1:
		a, err = floatUniform(scene.UniformScale, value)
	case Scale2:
		a, err = floatUniform(scene.UniformScale2, value)
	case Speed:
		a, err = floatUniform(scene.UniformSpeed, value)
	case Brightness:
		a, err = floatUniform(scene.UniformBrightness, value)
	case Iter:
		var f float64
		if f, err = toFloat(value); err == nil {
			a = scene.SetUniform{Name: scene.UniformIters, Value: uniforms.IntValue(int32(math.Round(f)))}
		}
	case DensityColor:
		a, err = colorUniform(scene.UniformColor, value)
	case FogColor:
		a, err = colorUniform(scene.UniformFogColor, value)
	case Fog:
		var b bool
		if b, err = toBool(value); err == nil {
			a = scene.SetUniform{Name: scene.UniformFog, Value: uniforms.BoolValue(b)}
		}
	case MouseClick:
		var b bool
		if b, err = toBool(value); err == nil {
			a = scene.SetMouseEnabled{Enabled: b}
		}
	case Parallax:
		var f float64
		if f, err = toFloat(value); err == nil {
			a = scene.SetParallax{Strength: f}
		}
	case FPSLock:
		var b bool
		if b, err = toBool(value); err == nil {
			fps := unlockedFPS
			if b {
				fps = lockedFPS
			}
			a = scene.SetFPS{FPS: fps}
		}
	case DisplayScaling:
		var f float64
		if f, err = toFloat(value); err == nil {
			a = scene.SetScale{Scale: f}
		}
	case Debug:
		var b bool
		if b, err = toBool(value); err == nil {
			a = scene.SetPanelVisible{Visible: b}
		}
	default:
		return nil, fmt.Errorf("unhandled property %s", p)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return []scene.Action{a}, nil
}

func floatUniform(uniform string, value any) (scene.Action, error) {
	f, err := toFloat(value)
	if err != nil {
		return nil, err
	}
	return scene.SetUniform{Name: uniform, Value: uniforms.FloatValue(float32(f))}, nil
}

func colorUniform(uniform string, value any) (scene.Action, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: want color string, got %T", ErrBadValue, value)
	}
	v, err := uniforms.HexValue(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	return scene.SetUniform{Name: uniform, Value: v}, nil
}

// toFloat accepts any finite number.
func toFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		f = n
	default:
		return 0, fmt.Errorf("%w: want number, got %T", ErrBadValue, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %g is not finite", ErrBadValue, f)
	}
	return f, nil
}

func toBool(value any) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: want bool, got %T", ErrBadValue, value)
}

// ParseAssignment splits a name=value pair from the command line. The value is
// read as true/false, then as a number, and is otherwise kept as a string.
func ParseAssignment(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid property %q, expected name=value", s)
	}
	raw = strings.TrimSpace(raw)
	switch raw {
	case "true":
		return name, true, nil
	case "false":
		return name, false, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return name, f, nil
	}
	return name, raw, nil
}

// Bridge forwards host updates to the render thread.
type Bridge struct {
	variant *scene.Variant
	actions chan<- scene.Action
	wake    func()

	mu  sync.Mutex
	out io.Writer
}

// New creates a bridge that sends actions on ch and calls wake after each send
// so a blocked event wait returns. Events are written to out.
func New(variant *scene.Variant, ch chan<- scene.Action, wake func(), out io.Writer) *Bridge {
	if wake == nil {
		wake = func() {}
	}
	if out == nil {
		out = io.Discard
	}
	return &Bridge{variant: variant, actions: ch, wake: wake, out: out}
}

// UpdateProperty applies one host property. Unknown names and bad values are
// logged and dropped.
func (b *Bridge) UpdateProperty(ctx context.Context, name string, value any) error {
	actions, err := Actions(b.variant, name, value)
	if err != nil {
		log.Warn("Ignoring property", "name", name, "value", value, "err", err)
		return nil
	}
	if len(actions) == 0 {
		log.Debug("Unrecognized property", "name", name, "variant", b.variant.Name)
		return nil
	}
	for _, a := range actions {
		select {
		case b.actions <- a:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.wake()
	return nil
}

type message struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// maxMessageSize bounds one host message line. Longer lines are skipped.
const maxMessageSize = 1 << 20

var errLineTooLong = errors.New("host message too long")

// Serve reads JSON lines of the form {"name": ..., "value": ...} from r until
// EOF or until ctx is done. Malformed and oversized lines are skipped.
func (b *Bridge) Serve(ctx context.Context, r io.Reader) error {
	br := bufio.NewReaderSize(r, maxMessageSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := readLine(br)
		if errors.Is(err, errLineTooLong) {
			log.Warn("Skipping host message", "err", err, "limit", maxMessageSize)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read host messages: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		name, value, err := decodeMessage(line)
		if err != nil {
			log.Warn("Failed to decode host message", "line", string(line), "err", err)
			continue
		}
		if err := b.UpdateProperty(ctx, name, value); err != nil {
			return err
		}
	}
}

// readLine returns the next line without its terminator. A line that does not
// fit the reader's buffer is consumed and reported as errLineTooLong.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, isPrefix, err := br.ReadLine()
	if err != nil || !isPrefix {
		return line, err
	}
	for isPrefix {
		if _, isPrefix, err = br.ReadLine(); err != nil {
			return nil, err
		}
	}
	return nil, errLineTooLong
}

func decodeMessage(line []byte) (string, any, error) {
	var m message
	if err := json.Unmarshal(line, &m); err != nil {
		return "", nil, err
	}
	if m.Name == "" {
		return "", nil, errors.New("missing property name")
	}
	var value any
	if len(m.Value) > 0 {
		dec := json.NewDecoder(bytes.NewReader(m.Value))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil {
			return "", nil, err
		}
	}
	return m.Name, value, nil
}

// Emit writes an event line for the host.
func (b *Bridge) Emit(event string) error {
	data, err := json.Marshal(struct {
		Event string `json:"event"`
	}{event})
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to emit %s: %w", event, err)
	}
	return nil
}
