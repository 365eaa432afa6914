package tool

import (
	"fmt"
	"strings"
)

// Mode is the active tool. Exactly one is active at a time.
type Mode int

const (
	Brush Mode = iota
	Eraser
	Fill
	Zoom
	Text
	Rotate
	Shape
	Lens
)

// Modes lists every mode in toolbar order.
var Modes = []Mode{Brush, Eraser, Fill, Zoom, Text, Rotate, Shape, Lens}

func (m Mode) String() string {
	switch m {
	case Brush:
		return "brush"
	case Eraser:
		return "eraser"
	case Fill:
		return "fill"
	case Zoom:
		return "zoom"
	case Text:
		return "text"
	case Rotate:
		return "rotate"
	case Shape:
		return "shape"
	case Lens:
		return "lens"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return Brush, fmt.Errorf("unknown tool %q", s)
}

// ShapeKind selects what a Shape press stamps.
type ShapeKind int

const (
	Rectangle ShapeKind = iota
	Circle
	Triangle
)

func (k ShapeKind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	case Triangle:
		return "triangle"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

func ParseShapeKind(s string) (ShapeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangle", "rect", "r":
		return Rectangle, nil
	case "circle", "c":
		return Circle, nil
	case "triangle", "tri", "t":
		return Triangle, nil
	}
	return Rectangle, fmt.Errorf("unknown shape %q", s)
}

// Button identifies which pointer button produced a press.
type Button int

const (
	Primary Button = iota
	Secondary
	Tertiary
)

// LensKind is the direction of a lens warp.
type LensKind int

const (
	Convex LensKind = iota
	Concave
)

func (k LensKind) String() string {
	if k == Concave {
		return "concave"
	}
	return "convex"
}
