package uniforms

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind tags the shader type carried by a Value.
type Kind int

const (
	Float Kind = iota
	Int
	Bool
	Color
	Vec2
	Vec4
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Color:
		return "color"
	case Vec2:
		return "vec2"
	case Vec4:
		return "vec4"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a tagged union over the uniform types the clouds shader consumes.
// Only the field matching kind is meaningful.
type Value struct {
	kind Kind
	f    float32
	i    int32
	b    bool
	c    colorful.Color
	v2   mgl32.Vec2
	v4   mgl32.Vec4
}

func FloatValue(f float32) Value { return Value{kind: Float, f: f} }
func IntValue(i int32) Value { return Value{kind: Int, i: i} }
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }
func ColorValue(c colorful.Color) Value { return Value{kind: Color, c: c} }
func Vec2Value(v mgl32.Vec2) Value { return Value{kind: Vec2, v2: v} }
func Vec4Value(v mgl32.Vec4) Value { return Value{kind: Vec4, v4: v} }

// HexValue parses a "#rrggbb" string into a color value.
func HexValue(hex string) (Value, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Value{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return ColorValue(c), nil
}

// MustHex is HexValue for compile-time defaults.
func MustHex(hex string) Value {
	v, err := HexValue(hex)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) Float() float32 { return v.f }
func (v Value) Int() int32 { return v.i }
func (v Value) Bool() bool { return v.b }
func (v Value) Color() colorful.Color { return v.c }
func (v Value) Vec2() mgl32.Vec2 { return v.v2 }
func (v Value) Vec4() mgl32.Vec4 { return v.v4 }

// RGB returns the color components as shader floats.
func (v Value) RGB() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.c.R), float32(v.c.G), float32(v.c.B)}
}

// Scalar returns a numeric view of float, int and bool values, used by panel sliders.
func (v Value) Scalar() float64 {
	switch v.kind {
	case Float:
		return float64(v.f)
	case Int:
		return float64(v.i)
	case Bool:
		if v.b {
			return 1
		}
	}
	return 0
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Float:
		return v.f == o.f
	case Int:
		return v.i == o.i
	case Bool:
		return v.b == o.b
	case Color:
		return v.c == o.c
	case Vec2:
		return v.v2 == o.v2
	case Vec4:
		return v.v4 == o.v4
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case Float:
		return fmt.Sprintf("%g", v.f)
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Bool:
		return fmt.Sprintf("%t", v.b)
	case Color:
		return v.c.Hex()
	case Vec2:
		return fmt.Sprintf("(%g, %g)", v.v2[0], v.v2[1])
	case Vec4:
		return fmt.Sprintf("(%g, %g, %g, %g)", v.v4[0], v.v4[1], v.v4[2], v.v4[3])
	}
	return "<invalid>"
}
