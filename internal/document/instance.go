package document

import (
	"math"

	"github.com/inamate/heraldry/internal/geom"
)

// Instance is one placed copy of a layer's emblem.
type Instance struct {
	Pos      geom.Vec2 `json:"pos"`
	Scale    geom.Vec2 `json:"scale"`
	Rotation float64   `json:"rotation"`
	Depth    float64   `json:"depth"`
	FlipX    bool      `json:"flipX,omitempty"`
	FlipY    bool      `json:"flipY,omitempty"`

	// Mirror marks a copy produced by symmetry expansion. It is only set on
	// transient instances and is never stored in a layer.
	Mirror bool `json:"-" cbor:"-"`
}

// NewInstance returns an instance at the canvas center with unit scale.
func NewInstance() Instance {
	return Instance{
		Pos:   geom.V(0.5, 0.5),
		Scale: geom.V(1, 1),
	}
}

// InstanceFromWire builds an instance from serialized values. The sign of
// each scale component carries the flip flag for that axis.
func InstanceFromWire(pos, scale geom.Vec2, rotation, depth float64) Instance {
	inst := Instance{
		Rotation: rotation,
		Depth:    depth,
		FlipX:    scale.X < 0,
		FlipY:    scale.Y < 0,
		Scale:    geom.V(math.Abs(scale.X), math.Abs(scale.Y)),
	}
	inst.SetPos(pos)
	return inst
}

// SetPos sets the position, clamping each axis to [0, 1].
func (i *Instance) SetPos(p geom.Vec2) {
	i.Pos = p.Clamp(0, 1)
}

// SetScale stores the scale as given.
func (i *Instance) SetScale(s geom.Vec2) {
	i.Scale = s
}

func (i *Instance) SetRotation(deg float64) { i.Rotation = deg }
func (i *Instance) SetDepth(d float64)      { i.Depth = d }

// WireScale returns the scale with flips folded into the sign.
func (i Instance) WireScale() geom.Vec2 {
	sx, sy := math.Abs(i.Scale.X), math.Abs(i.Scale.Y)
	if i.FlipX {
		sx = -sx
	}
	if i.FlipY {
		sy = -sy
	}
	return geom.V(sx, sy)
}

// Bounds returns the box covered by the instance at its current scale.
func (i Instance) Bounds() geom.Rect {
	return geom.RectAround(i.Pos, math.Abs(i.Scale.X)/2, math.Abs(i.Scale.Y)/2)
}
