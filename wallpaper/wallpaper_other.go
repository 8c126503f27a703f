//go:build !linux || wayland

package wallpaper

type Desktop struct{}

func Attach(window uint32) (*Desktop, error) {
	return nil, ErrUnsupported
}

func (d *Desktop) Size() (int, int) { return 0, 0 }

func (d *Desktop) Pointer() (Pointer, error) { return Pointer{}, ErrUnsupported }

func (d *Desktop) Close() {}
