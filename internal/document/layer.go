package document

import (
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/inamate/heraldry/internal/geom"
	"github.com/inamate/heraldry/internal/palette"
)

// Layer is an identity-stable stack entry: one emblem texture drawn at one
// or more instances, sharing colors, mask and metadata.
type Layer struct {
	UUID      string     `json:"uuid"`
	Instances []Instance `json:"instances"`
	Selected  int        `json:"selected"`

	Filename string `json:"filename"`
	Colors   int    `json:"colors"`
	Color1   Color  `json:"color1"`
	Color2   Color  `json:"color2"`
	Color3   Color  `json:"color3"`
	Mask     []int  `json:"mask,omitempty"`
	Visible  bool   `json:"visible"`
	Name     string `json:"name,omitempty"`

	ContainerUUID     string   `json:"containerUuid,omitempty"`
	ContainerSymmetry string   `json:"containerSymmetry,omitempty"`
	Symmetry          Symmetry `json:"symmetry"`
}

// NewLayer creates a visible layer with a fresh UUID, one default instance
// and the default emblem colors.
func NewLayer(filename string, colors int) *Layer {
	return &Layer{
		UUID:      uuid.NewString(),
		Instances: []Instance{NewInstance()},
		Filename:  filename,
		Colors:    clampColors(colors),
		Color1:    Named("yellow"),
		Color2:    Named("red"),
		Color3:    Named("red"),
		Visible:   true,
		Symmetry:  Symmetry{Type: SymmetryNone},
	}
}

// Named returns the palette color for name. Unknown names keep the name
// with zero components so they survive a round trip.
func Named(name string) Color {
	if rgb, ok := palette.Default().Lookup(name); ok {
		return Color{Name: name, R: rgb[0], G: rgb[1], B: rgb[2]}
	}
	return Color{Name: name}
}

func clampColors(n int) int {
	if n < 1 || n > 3 {
		return DefaultColors
	}
	return n
}

// DisplayName returns Name, or the texture filename without extension,
// or "empty" when no texture is set.
func (l *Layer) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return NameFromFilename(l.Filename)
}

// NameFromFilename strips directories and the extension from a texture path.
func NameFromFilename(filename string) string {
	if filename == "" {
		return "empty"
	}
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}

// --- Current instance routing ---

// Current returns the selected instance.
func (l *Layer) Current() *Instance {
	return &l.Instances[l.Selected]
}

func (l *Layer) Pos() geom.Vec2        { return l.Current().Pos }
func (l *Layer) SetPos(p geom.Vec2)    { l.Current().SetPos(p) }
func (l *Layer) Scale() geom.Vec2      { return l.Current().Scale }
func (l *Layer) SetScale(s geom.Vec2)  { l.Current().SetScale(s) }
func (l *Layer) Rotation() float64     { return l.Current().Rotation }
func (l *Layer) SetRotation(r float64) { l.Current().SetRotation(r) }
func (l *Layer) Depth() float64        { return l.Current().Depth }
func (l *Layer) SetDepth(d float64)    { l.Current().SetDepth(d) }

// --- Instances ---

// InstanceCount returns the number of stored (seed) instances.
func (l *Layer) InstanceCount() int {
	return len(l.Instances)
}

// Instance returns a copy of the instance at index.
func (l *Layer) Instance(index int) (Instance, error) {
	if index < 0 || index >= len(l.Instances) {
		return Instance{}, invalid("instance index %d out of range [0,%d)", index, len(l.Instances))
	}
	return l.Instances[index], nil
}

// AddInstance appends a default instance placed at the selected instance's
// position, selects it and returns its index.
func (l *Layer) AddInstance() int {
	inst := NewInstance()
	inst.Pos = l.Pos()
	l.Instances = append(l.Instances, inst)
	l.Selected = len(l.Instances) - 1
	return l.Selected
}

// AppendInstance appends a copy of inst without changing the selection.
func (l *Layer) AppendInstance(inst Instance) int {
	inst.Mirror = false
	l.Instances = append(l.Instances, inst)
	return len(l.Instances) - 1
}

// RemoveInstance deletes the instance at index. The last instance of a
// layer cannot be removed.
func (l *Layer) RemoveInstance(index int) error {
	if len(l.Instances) <= 1 {
		return invalid("cannot remove the last instance of layer %s", l.UUID)
	}
	if index < 0 || index >= len(l.Instances) {
		return invalid("instance index %d out of range [0,%d)", index, len(l.Instances))
	}
	l.Instances = append(l.Instances[:index], l.Instances[index+1:]...)
	if l.Selected >= len(l.Instances) {
		l.Selected = len(l.Instances) - 1
	} else if l.Selected > index {
		l.Selected--
	}
	return nil
}

// SelectInstance makes index the current instance.
func (l *Layer) SelectInstance(index int) error {
	if index < 0 || index >= len(l.Instances) {
		return invalid("instance index %d out of range [0,%d)", index, len(l.Instances))
	}
	l.Selected = index
	return nil
}

// Positions returns every instance position in order.
func (l *Layer) Positions() []geom.Vec2 {
	out := make([]geom.Vec2, len(l.Instances))
	for i, inst := range l.Instances {
		out[i] = inst.Pos
	}
	return out
}

// Centroid returns the mean instance position.
func (l *Layer) Centroid() geom.Vec2 {
	return geom.Centroid(l.Positions())
}

// PositionCenter returns the center of the box spanned by instance
// positions, ignoring their extents.
func (l *Layer) PositionCenter() geom.Vec2 {
	return geom.PointBounds(l.Positions()).Center()
}

// Bounds returns the AABB covering every instance at its scale.
func (l *Layer) Bounds() geom.Rect {
	r := l.Instances[0].Bounds()
	for _, inst := range l.Instances[1:] {
		r = r.Union(inst.Bounds())
	}
	return r
}

// --- Appearance ---

// Color returns color slot 1, 2 or 3.
func (l *Layer) Color(slot int) (Color, error) {
	switch slot {
	case 1:
		return l.Color1, nil
	case 2:
		return l.Color2, nil
	case 3:
		return l.Color3, nil
	}
	return Color{}, invalid("color index %d not in 1..3", slot)
}

// SetColor sets color slot 1, 2 or 3.
func (l *Layer) SetColor(slot int, c Color) error {
	switch slot {
	case 1:
		l.Color1 = c
	case 2:
		l.Color2 = c
	case 3:
		l.Color3 = c
	default:
		return invalid("color index %d not in 1..3", slot)
	}
	return nil
}

// ActiveColors returns the colors in use, up to Colors.
func (l *Layer) ActiveColors() []Color {
	all := []Color{l.Color1, l.Color2, l.Color3}
	return all[:clampColors(l.Colors)]
}

// Validate checks the structural invariants of a layer.
func (l *Layer) Validate() error {
	if l.UUID == "" {
		return invalid("layer has no uuid")
	}
	if len(l.Instances) == 0 {
		return invalid("layer %s has no instances", l.UUID)
	}
	if l.Selected < 0 || l.Selected >= len(l.Instances) {
		return invalid("layer %s selected instance %d out of range", l.UUID, l.Selected)
	}
	if l.Colors < 1 || l.Colors > 3 {
		return invalid("layer %s colors %d not in 1..3", l.UUID, l.Colors)
	}
	if l.Mask != nil && len(l.Mask) != 3 {
		return invalid("layer %s mask needs 3 channels, got %d", l.UUID, len(l.Mask))
	}
	return nil
}

// Clone returns a deep copy that keeps the UUID.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Instances = append([]Instance(nil), l.Instances...)
	if l.Mask != nil {
		c.Mask = append([]int(nil), l.Mask...)
	}
	c.Symmetry = l.Symmetry.clone()
	return &c
}

// Duplicate returns a deep copy with a fresh UUID, shifted by (dx, dy).
func (l *Layer) Duplicate(dx, dy float64) *Layer {
	c := l.Clone()
	c.UUID = uuid.NewString()
	if dx != 0 || dy != 0 {
		for i := range c.Instances {
			c.Instances[i].SetPos(c.Instances[i].Pos.Add(geom.V(dx, dy)))
		}
	}
	return c
}
