//go:build linux && !wayland

package wallpaper

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Desktop is an X11 window turned into a desktop background.
type Desktop struct {
	conn   *xgb.Conn
	root   xproto.Window
	window xproto.Window
	width  int
	height int
}

// Attach marks the X11 window as a desktop window kept below everything else.
// The window should not be mapped yet.
func Attach(window uint32) (*Desktop, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	d := &Desktop{
		conn:   conn,
		root:   screen.Root,
		window: xproto.Window(window),
		width:  int(screen.WidthInPixels),
		height: int(screen.HeightInPixels),
	}

	if err := d.setAtoms("_NET_WM_WINDOW_TYPE", "_NET_WM_WINDOW_TYPE_DESKTOP"); err != nil {
		conn.Close()
		return nil, err
	}
	if err := d.setAtoms("_NET_WM_STATE",
		"_NET_WM_STATE_BELOW", "_NET_WM_STATE_STICKY",
		"_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("Attached to desktop", "window", window, "width", d.width, "height", d.height)
	return d, nil
}

func (d *Desktop) atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(d.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern atom %s: %w", name, err)
	}
	return reply.Atom, nil
}

func (d *Desktop) setAtoms(property string, values ...string) error {
	prop, err := d.atom(property)
	if err != nil {
		return err
	}
	data := make([]byte, 4*len(values))
	for i, v := range values {
		a, err := d.atom(v)
		if err != nil {
			return err
		}
		xgb.Put32(data[i*4:], uint32(a))
	}
	err = xproto.ChangePropertyChecked(d.conn, xproto.PropModeReplace, d.window, prop,
		xproto.AtomAtom, 32, uint32(len(values)), data).Check()
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", property, err)
	}
	return nil
}

// Size is the root window size.
func (d *Desktop) Size() (int, int) { return d.width, d.height }

// Pointer samples the global pointer.
func (d *Desktop) Pointer() (Pointer, error) {
	reply, err := xproto.QueryPointer(d.conn, d.root).Reply()
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{
		X:       int(reply.RootX),
		Y:       int(reply.RootY),
		Pressed: reply.Mask&xproto.KeyButMaskButton1 != 0,
	}, nil
}

func (d *Desktop) Close() {
	d.conn.Close()
}
