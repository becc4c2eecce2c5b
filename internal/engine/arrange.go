package engine

import (
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// FlipLayers toggles the flip flags of every selected instance. A lone
// single-instance layer flips in place; otherwise each instance is also
// mirrored across the selection's AABB center on the flipped axes.
func (c *Composition) FlipLayers(uuids []string, flipX, flipY bool) error {
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return invalid("no layers selected")
	}
	if !flipX && !flipY {
		return invalid("no flip axis given")
	}

	mirror := len(layers) > 1 || layers[0].InstanceCount() > 1
	center := selectionBounds(layers).Center()
	for _, l := range layers {
		for i := range l.Instances {
			inst := &l.Instances[i]
			p := inst.Pos
			if flipX {
				inst.FlipX = !inst.FlipX
				p.X = 2*center.X - p.X
			}
			if flipY {
				inst.FlipY = !inst.FlipY
				p.Y = 2*center.Y - p.Y
			}
			if mirror {
				inst.SetPos(p)
			}
		}
	}
	c.notify(OpFlip, uuids...)
	return nil
}

// Alignment edges accepted by AlignLayers.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// AlignLayers lines up at least two layers on one axis. Each layer's
// representative point is its position (AABB center); the target is the
// minimum, maximum or mean of those points depending on edge.
func (c *Composition) AlignLayers(uuids []string, edge string) error {
	horizontal, pick, err := alignmentFor(edge)
	if err != nil {
		return err
	}
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	if len(layers) < 2 {
		return invalid("align needs at least 2 layers, got %d", len(layers))
	}

	values := make([]float64, len(layers))
	for i, l := range layers {
		p := layerCenter(l)
		values[i] = p.Y
		if horizontal {
			values[i] = p.X
		}
	}
	target := pick(values)
	for _, l := range layers {
		p := layerCenter(l)
		if horizontal {
			p.X = target
		} else {
			p.Y = target
		}
		setLayerPosition(l, p)
	}
	c.notify(OpAlign, uuids...)
	return nil
}

func alignmentFor(edge string) (horizontal bool, pick func([]float64) float64, err error) {
	switch edge {
	case AlignLeft:
		return true, minOf, nil
	case AlignRight:
		return true, maxOf, nil
	case AlignCenter:
		return true, meanOf, nil
	case AlignTop:
		return false, minOf, nil
	case AlignBottom:
		return false, maxOf, nil
	case AlignMiddle:
		return false, meanOf, nil
	}
	return false, nil, invalid("unknown alignment %q", edge)
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		m = min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		m = max(m, x)
	}
	return m
}

func meanOf(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

// fixedPositions maps placement names to an axis and a canvas fraction.
var fixedPositions = map[string]struct {
	horizontal bool
	value      float64
}{
	AlignLeft:   {true, 0.25},
	AlignCenter: {true, 0.5},
	AlignRight:  {true, 0.75},
	AlignTop:    {false, 0.25},
	AlignMiddle: {false, 0.5},
	AlignBottom: {false, 0.75},
}

// MoveLayersTo places each layer's position on one canonical coordinate:
// left/center/right set x to 0.25/0.5/0.75, top/middle/bottom set y.
func (c *Composition) MoveLayersTo(uuids []string, position string) error {
	fp, ok := fixedPositions[position]
	if !ok {
		return invalid("unknown position %q", position)
	}
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	for _, l := range layers {
		p := layerCenter(l)
		if fp.horizontal {
			p.X = fp.value
		} else {
			p.Y = fp.value
		}
		setLayerPosition(l, p)
	}
	c.notify(OpAlign, uuids...)
	return nil
}

// TranslateLayers moves every instance of every listed layer by delta.
func (c *Composition) TranslateLayers(uuids []string, delta geom.Vec2) error {
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	for _, l := range layers {
		translateLayer(l, delta)
	}
	c.notify(OpTransform, uuids...)
	return nil
}

// ScaleLayers multiplies every instance scale by factor. With
// aroundCenter, positions also spread from the selection's AABB center.
func (c *Composition) ScaleLayers(uuids []string, factor float64, aroundCenter bool) error {
	if factor <= 0 {
		return invalid("scale factor %g must be positive", factor)
	}
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return nil
	}
	center := selectionBounds(layers).Center()
	for _, l := range layers {
		scaleInstances(l, factor, factor)
		if aroundCenter {
			spread(l, center, factor)
		}
	}
	c.notify(OpTransform, uuids...)
	return nil
}

func spread(l *document.Layer, center geom.Vec2, factor float64) {
	for i := range l.Instances {
		inst := &l.Instances[i]
		inst.SetPos(center.Add(inst.Pos.Sub(center).Mul(factor, factor)))
	}
}
