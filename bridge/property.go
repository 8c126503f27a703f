package bridge

// Property is a host property the bridge knows how to apply.
type Property int

const (
	Unknown Property = iota
	Scale1
	Scale2
	Iter
	Speed
	Brightness
	DensityColor
	FogColor
	Fog
	MouseClick
	Parallax
	FPSLock
	DisplayScaling
	Debug
)

var propertyNames = [...]string{
	Unknown:        "unknown",
	Scale1:         "scale1",
	Scale2:         "scale2",
	Iter:           "iter",
	Speed:          "speed",
	Brightness:     "brightness",
	DensityColor:   "densityColor",
	FogColor:       "fogColor",
	Fog:            "fog",
	MouseClick:     "mouseClick",
	Parallax:       "parallax",
	FPSLock:        "fpsLock",
	DisplayScaling: "displayScaling",
	Debug:          "debug",
}

func (p Property) String() string {
	if p < 0 || int(p) >= len(propertyNames) {
		return propertyNames[Unknown]
	}
	return propertyNames[p]
}

// ParseProperty maps a host property name to its Property. Names are case
// sensitive, as the host sends them.
func ParseProperty(name string) (Property, bool) {
	for p, n := range propertyNames {
		if Property(p) != Unknown && n == name {
			return Property(p), true
		}
	}
	return Unknown, false
}
