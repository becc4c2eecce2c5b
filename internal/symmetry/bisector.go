package symmetry

import (
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// Bisector mirrors across a line through Offset at Angle degrees. Double
// adds the perpendicular line and the reflection across both.
type Bisector struct {
	Offset geom.Vec2
	Angle  float64
	Double bool
}

// NewBisector reads [offset_x, offset_y, rotation_offset, mode].
func NewBisector(p []float64) *Bisector {
	return &Bisector{
		Offset: geom.V(prop(p, 0, 0.5), prop(p, 1, 0.5)),
		Angle:  prop(p, 2, 0),
		Double: int(prop(p, 3, 0)) == 1,
	}
}

func (b *Bisector) Name() document.SymmetryType { return document.SymmetryBisector }

func (b *Bisector) Properties() []float64 {
	mode := 0.0
	if b.Double {
		mode = 1
	}
	return []float64{b.Offset.X, b.Offset.Y, b.Angle, mode}
}

func (b *Bisector) Mirrors(seed document.Instance) []document.Instance {
	first := reflect(seed, b.Offset, b.Angle)
	if !b.Double {
		return []document.Instance{first}
	}
	return []document.Instance{
		first,
		reflect(seed, b.Offset, b.Angle+90),
		reflect(first, b.Offset, b.Angle+90),
	}
}

// reflect mirrors inst across the line through pivot at angle degrees.
// The rotation becomes 2*angle - rotation; flips and scale are kept.
func reflect(inst document.Instance, pivot geom.Vec2, angle float64) document.Instance {
	out := mirror(inst)
	out.Pos = geom.ReflectAbout(pivot.X, pivot.Y, angle).Apply(inst.Pos)
	out.Rotation = 2*angle - inst.Rotation
	return out
}
