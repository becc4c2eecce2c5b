package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a lookup by UUID or container id that missed.
	ErrNotFound = errors.New("not found")
	// ErrInvalid reports a rejected argument. Nothing is mutated when it is returned.
	ErrInvalid = errors.New("invalid argument")
)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %w: %s", kind, ErrNotFound, id)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Defaults for new layers and parsed data without explicit values.
const (
	DefaultPattern = "pattern_solid.dds"
	DefaultEmblem  = "ce_fleur.dds"
	DefaultColors  = 3

	MinScale = 0.01
	MaxScale = 1.0
)

// Color is a named palette entry or a custom RGB triple. Components are
// kept in 0-255 space. Name is empty for custom colors.
type Color struct {
	Name string `json:"name,omitempty"`
	R    uint8  `json:"r"`
	G    uint8  `json:"g"`
	B    uint8  `json:"b"`
}

// RGB returns a custom color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Float3 returns the components normalized to [0, 1].
func (c Color) Float3() [3]float64 {
	return [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// SymmetryType selects the procedural mirroring applied at serialization.
type SymmetryType string

const (
	SymmetryNone       SymmetryType = "none"
	SymmetryBisector   SymmetryType = "bisector"
	SymmetryRotational SymmetryType = "rotational"
	SymmetryGrid       SymmetryType = "grid"
)

// ParseSymmetryType maps the wire name to a SymmetryType. Empty means none.
func ParseSymmetryType(s string) (SymmetryType, error) {
	switch SymmetryType(s) {
	case "", SymmetryNone:
		return SymmetryNone, nil
	case SymmetryBisector, SymmetryRotational, SymmetryGrid:
		return SymmetryType(s), nil
	default:
		return SymmetryNone, invalid("unknown symmetry type %q", s)
	}
}

// Symmetry describes how seed instances expand into mirrors.
//
// Properties by type:
//
//	bisector:   offset_x offset_y rotation_offset mode
//	rotational: offset_x offset_y count kaleidoscope rotation_offset
//	grid:       offset_x offset_y count_x count_y fill
type Symmetry struct {
	Type       SymmetryType `json:"type"`
	Properties []float64    `json:"properties,omitempty"`
}

// Active reports whether serialization should expand mirrors.
func (s Symmetry) Active() bool {
	return s.Type != "" && s.Type != SymmetryNone
}

// Equal compares type and properties.
func (s Symmetry) Equal(o Symmetry) bool {
	if !s.Active() && !o.Active() {
		return true
	}
	if s.Type != o.Type || len(s.Properties) != len(o.Properties) {
		return false
	}
	for i := range s.Properties {
		if s.Properties[i] != o.Properties[i] {
			return false
		}
	}
	return true
}

func (s Symmetry) clone() Symmetry {
	if s.Properties != nil {
		s.Properties = append([]float64(nil), s.Properties...)
	}
	return s
}

// Placement is one generator-produced instance in 0-1 space.
type Placement struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}
