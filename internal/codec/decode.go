package codec

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// Decoded is text read into model values, not yet applied to a
// composition.
type Decoded struct {
	// Full is set when the text carries a pattern, making it a complete
	// composition rather than a loose fragment.
	Full    bool
	Pattern string
	Colors  [3]document.Color
	// Layers are ordered back to front.
	Layers []*document.Layer
}

// Base colors assumed for a composition that omits them.
var defaultBaseColors = [3]string{"black", "yellow", "black"}

// Decode parses text without touching any composition. Empty text, or
// text with neither a pattern nor a colored_emblem, yields
// ErrNotComposition. Malformed text yields an error wrapping a
// *SyntaxError.
func (c *Codec) Decode(text string) (*Decoded, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNotComposition
	}
	tree, err := parseTree(stripMeta(text))
	if err != nil {
		return nil, fmt.Errorf("parse coat of arms: %w", err)
	}
	root := findRoot(tree)
	if root == nil {
		return nil, ErrNotComposition
	}

	d := &Decoded{}
	if v, ok := root.Get("pattern"); ok {
		d.Full = true
		d.Pattern = v.Text
		for i := range d.Colors {
			key := fmt.Sprintf("color%d", i+1)
			d.Colors[i] = c.named(defaultBaseColors[i])
			if v, ok := root.Get(key); ok {
				if d.Colors[i], err = c.color(v); err != nil {
					return nil, fmt.Errorf("parse coat of arms: %s: %w", key, err)
				}
			}
		}
	}

	var layers []depthLayer
	for _, v := range root.All("colored_emblem") {
		ls, err := c.emblem(v)
		if err != nil {
			return nil, fmt.Errorf("parse coat of arms: colored_emblem: %w", err)
		}
		layers = append(layers, ls...)
	}
	// Higher depth is farther back.
	slices.SortStableFunc(layers, func(a, b depthLayer) int {
		return cmp.Compare(b.depth, a.depth)
	})
	for _, dl := range layers {
		d.Layers = append(d.Layers, dl.layer)
	}
	return d, nil
}

// findRoot returns the block holding pattern or colored_emblem entries,
// unwrapping single-key wrappers such as coa_export = { ... }.
func findRoot(b *Block) *Block {
	for b != nil {
		if b.Has("pattern") || b.Has("colored_emblem") {
			return b
		}
		if len(b.Entries) != 1 || len(b.Items) != 0 || b.Entries[0].Value.Kind != KindBlock {
			return nil
		}
		b = b.Entries[0].Value.Block
	}
	return nil
}

type depthLayer struct {
	layer *document.Layer
	depth float64
}

// emblem reads one colored_emblem block. Seeds with different depths are
// split into one layer per depth, in order of first appearance.
func (c *Codec) emblem(v Value) ([]depthLayer, error) {
	if v.Kind != KindBlock {
		return nil, &SyntaxError{Pos: v.Pos, Msg: "expected a block"}
	}
	b := v.Block

	filename := document.DefaultEmblem
	if t, ok := b.Get("texture"); ok {
		filename = t.Text
	}
	base := document.NewLayer(filename, c.textures.ColorCount(filename))
	if err := c.appearance(b, base); err != nil {
		return nil, err
	}
	if err := c.metadata(b, base); err != nil {
		return nil, err
	}

	var seeds []document.Instance
	for _, iv := range b.All("instance") {
		inst, mirror, err := instance(iv)
		if err != nil {
			return nil, fmt.Errorf("instance: %w", err)
		}
		if !mirror {
			seeds = append(seeds, inst)
		}
	}
	if len(seeds) == 0 {
		seeds = []document.Instance{document.NewInstance()}
	}

	var depths []float64
	groups := make(map[float64][]document.Instance)
	for _, s := range seeds {
		if _, ok := groups[s.Depth]; !ok {
			depths = append(depths, s.Depth)
		}
		groups[s.Depth] = append(groups[s.Depth], s)
	}

	out := make([]depthLayer, len(depths))
	for i, depth := range depths {
		l := base
		if i > 0 {
			l = base.Duplicate(0, 0)
		}
		l.Instances = groups[depth]
		l.Selected = 0
		out[i] = depthLayer{layer: l, depth: depth}
	}
	return out, nil
}

func (c *Codec) appearance(b *Block, l *document.Layer) error {
	for slot := 1; slot <= 3; slot++ {
		key := fmt.Sprintf("color%d", slot)
		v, ok := b.Get(key)
		if !ok {
			continue
		}
		col, err := c.color(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		_ = l.SetColor(slot, col)
	}
	if v, ok := b.Get("mask"); ok {
		if v.Kind != KindBlock {
			return &SyntaxError{Pos: v.Pos, Msg: "mask must be a block"}
		}
		nums, err := v.Block.Numbers()
		if err != nil {
			return fmt.Errorf("mask: %w", err)
		}
		l.Mask = make([]int, len(nums))
		for i, n := range nums {
			l.Mask[i] = int(n)
		}
		if len(l.Mask) != 3 {
			c.logger.Warn("ignoring mask without 3 channels", "texture", l.Filename, "mask", l.Mask)
			l.Mask = nil
		}
	}
	return nil
}

func (c *Codec) metadata(b *Block, l *document.Layer) error {
	if v, ok := b.Get(metaContainerUUID); ok {
		l.ContainerUUID = v.Text
	}
	if v, ok := b.Get(metaContainerSymmetry); ok {
		l.ContainerSymmetry = v.Text
	}
	if v, ok := b.Get(metaName); ok {
		l.Name = v.Text
	}
	if v, ok := b.Get(metaVisible); ok {
		visible, err := v.Bool()
		if err != nil {
			return err
		}
		l.Visible = visible
	}
	if v, ok := b.Get(metaSymmetryType); ok {
		t, err := document.ParseSymmetryType(v.Text)
		if err != nil {
			c.logger.Warn("ignoring unknown symmetry", "type", v.Text, "texture", l.Filename)
			return nil
		}
		l.Symmetry.Type = t
		if pv, ok := b.Get(metaSymmetryProperties); ok && pv.Kind == KindBlock {
			props, err := pv.Block.Numbers()
			if err != nil {
				return fmt.Errorf("%s: %w", metaSymmetryProperties, err)
			}
			l.Symmetry.Properties = props
		}
	}
	return nil
}

// instance reads one instance block and reports whether it is a
// transient mirror.
func instance(v Value) (document.Instance, bool, error) {
	if v.Kind != KindBlock {
		return document.Instance{}, false, &SyntaxError{Pos: v.Pos, Msg: "expected a block"}
	}
	b := v.Block
	if m, ok := b.Get(metaIsMirror); ok {
		if mirror, err := m.Bool(); err == nil && mirror {
			return document.Instance{}, true, nil
		}
	}

	pos, err := pair(b, "position", geom.V(0.5, 0.5))
	if err != nil {
		return document.Instance{}, false, err
	}
	scale, err := pair(b, "scale", geom.V(1, 1))
	if err != nil {
		return document.Instance{}, false, err
	}
	rotation, err := number(b, "rotation")
	if err != nil {
		return document.Instance{}, false, err
	}
	depth, err := number(b, "depth")
	if err != nil {
		return document.Instance{}, false, err
	}
	return document.InstanceFromWire(pos, scale, rotation, depth), false, nil
}

func pair(b *Block, key string, def geom.Vec2) (geom.Vec2, error) {
	v, ok := b.Get(key)
	if !ok {
		return def, nil
	}
	if v.Kind != KindBlock {
		return def, &SyntaxError{Pos: v.Pos, Msg: key + " must be a block"}
	}
	nums, err := v.Block.Numbers()
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if len(nums) > 0 {
		def.X = nums[0]
	}
	if len(nums) > 1 {
		def.Y = nums[1]
	}
	return def, nil
}

func number(b *Block, key string) (float64, error) {
	v, ok := b.Get(key)
	if !ok {
		return 0, nil
	}
	f, err := v.Float()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// color reads a palette name, rgb { r g b } in 0-255, or hsv { h s v }
// in 0-1.
func (c *Codec) color(v Value) (document.Color, error) {
	switch v.Kind {
	case KindWord, KindString:
		return c.named(v.Text), nil
	case KindTyped:
		nums, err := v.Block.Numbers()
		if err != nil {
			return document.Color{}, err
		}
		if len(nums) != 3 {
			return document.Color{}, &SyntaxError{Pos: v.Pos, Msg: fmt.Sprintf("%s needs 3 components, got %d", v.Text, len(nums))}
		}
		switch v.Text {
		case "rgb":
			return document.RGB(channel(nums[0]), channel(nums[1]), channel(nums[2])), nil
		case "hsv":
			r, g, b := colorful.Hsv(nums[0]*360, nums[1], nums[2]).Clamped().RGB255()
			return document.RGB(r, g, b), nil
		}
		return document.Color{}, &SyntaxError{Pos: v.Pos, Msg: fmt.Sprintf("unknown color type %q", v.Text)}
	}
	return document.Color{}, &SyntaxError{Pos: v.Pos, Msg: "expected a color"}
}

// named looks name up in the palette. Unknown names are kept with zero
// components so they are written back unchanged.
func (c *Codec) named(name string) document.Color {
	if rgb, ok := c.palette.Lookup(name); ok {
		return document.Color{Name: name, R: rgb[0], G: rgb[1], B: rgb[2]}
	}
	c.logger.Warn("unknown palette color", "name", name)
	return document.Color{Name: name}
}

func channel(f float64) uint8 {
	return uint8(math.Round(geom.Clamp(f, 0, 255)))
}
