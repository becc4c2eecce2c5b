package symmetry

import (
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// Rotational repeats the seed Count times around Offset. In kaleidoscope
// mode the seed is also reflected across the first sector's bisector and
// that reflection is repeated as well.
type Rotational struct {
	Offset       geom.Vec2
	Count        int
	Kaleidoscope bool
	Angle        float64
}

// MaxRotationalCount bounds the number of rotated copies.
const MaxRotationalCount = 12

// NewRotational reads [offset_x, offset_y, count, kaleidoscope,
// rotation_offset]. Count is kept in [1, MaxRotationalCount].
func NewRotational(p []float64) *Rotational {
	return &Rotational{
		Offset:       geom.V(prop(p, 0, 0.5), prop(p, 1, 0.5)),
		Count:        between(prop(p, 2, 4), 1, MaxRotationalCount),
		Kaleidoscope: int(prop(p, 3, 0)) != 0,
		Angle:        prop(p, 4, 0),
	}
}

func (r *Rotational) Name() document.SymmetryType { return document.SymmetryRotational }

func (r *Rotational) Properties() []float64 {
	k := 0.0
	if r.Kaleidoscope {
		k = 1
	}
	return []float64{r.Offset.X, r.Offset.Y, float64(r.Count), k, r.Angle}
}

func (r *Rotational) step() float64 { return 360 / float64(r.Count) }

func (r *Rotational) Mirrors(seed document.Instance) []document.Instance {
	step := r.step()
	var out []document.Instance
	for i := 1; i < r.Count; i++ {
		out = append(out, r.rotate(seed, float64(i)*step))
	}
	if !r.Kaleidoscope {
		return out
	}

	bisector := step/2 + r.Angle
	ms := mirror(seed)
	ms.Pos = geom.ReflectAbout(r.Offset.X, r.Offset.Y, bisector).Apply(seed.Pos).Clamp(0, 1)
	ms.Rotation = 2*bisector - seed.Rotation - 180
	ms.FlipX = !seed.FlipX
	for i := 0; i < r.Count; i++ {
		out = append(out, r.rotate(ms, float64(i)*step))
	}
	return out
}

// rotate orbits inst about the offset by angle, clamped to the canvas,
// and turns it by the same angle.
func (r *Rotational) rotate(inst document.Instance, angle float64) document.Instance {
	out := mirror(inst)
	out.Pos = geom.Orbit(inst.Pos, r.Offset, angle).Clamp(0, 1)
	out.Rotation = inst.Rotation + angle
	return out
}
