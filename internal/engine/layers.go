package engine

import (
	"slices"

	"github.com/google/uuid"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// --- Commands: stack ---

// AddLayer creates a layer with one default instance directly in front of
// target, or on top of the stack when target is empty.
func (c *Composition) AddLayer(filename string, colors int, target string) (string, error) {
	at, err := c.insertionIndex(target)
	if err != nil {
		return "", err
	}
	l := document.NewLayer(filename, colors)
	if err := c.layers.Insert(at, l); err != nil {
		return "", err
	}
	c.lastAdded = []string{l.UUID}
	c.notify(OpLayerAdd, l.UUID)
	return l.UUID, nil
}

// AddGeneratedLayer creates a layer whose instances come from a pattern
// generator. Negative scales flip the instance on that axis.
func (c *Composition) AddGeneratedLayer(filename string, colors int, placements []document.Placement, target string) (string, error) {
	if len(placements) == 0 {
		return "", invalid("generator produced no placements")
	}
	at, err := c.insertionIndex(target)
	if err != nil {
		return "", err
	}
	l := document.NewLayer(filename, colors)
	l.Instances = l.Instances[:0]
	for _, p := range placements {
		l.Instances = append(l.Instances, document.InstanceFromWire(
			geom.V(p.X, p.Y), geom.V(p.ScaleX, p.ScaleY), p.Rotation, 0))
	}
	if err := c.layers.Insert(at, l); err != nil {
		return "", err
	}
	c.lastAdded = []string{l.UUID}
	c.notify(OpLayerAdd, l.UUID)
	return l.UUID, nil
}

// insertionIndex returns the index directly in front of target, or the
// top of the stack for an empty target.
func (c *Composition) insertionIndex(target string) (int, error) {
	if target == "" {
		return c.layers.Len(), nil
	}
	i, err := c.IndexOf(target)
	if err != nil {
		return 0, err
	}
	return i + 1, nil
}

// RemoveLayers deletes every listed layer.
func (c *Composition) RemoveLayers(uuids ...string) error {
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	for _, l := range layers {
		if err := c.layers.Remove(l); err != nil {
			return err
		}
	}
	c.notify(OpLayerRemove, uuids...)
	return nil
}

// DuplicateLayer copies a layer with a fresh UUID directly in front of it.
func (c *Composition) DuplicateLayer(uuid string) (string, error) {
	return c.duplicateAt(uuid, 1)
}

// DuplicateLayerBelow copies a layer with a fresh UUID directly behind it.
func (c *Composition) DuplicateLayerBelow(uuid string) (string, error) {
	return c.duplicateAt(uuid, 0)
}

func (c *Composition) duplicateAt(uuid string, offset int) (string, error) {
	i, err := c.IndexOf(uuid)
	if err != nil {
		return "", err
	}
	dup := c.layers.At(i).Duplicate(0, 0)
	if err := c.layers.Insert(i+offset, dup); err != nil {
		return "", err
	}
	c.lastAdded = []string{dup.UUID}
	c.notify(OpLayerDuplicate, dup.UUID)
	return dup.UUID, nil
}

// InsertLayers pastes copies of layers directly in front of target (or on
// top when target is empty), keeping their relative order. Every copy gets
// a fresh UUID.
func (c *Composition) InsertLayers(layers []*document.Layer, target string) ([]string, error) {
	at, err := c.insertionIndex(target)
	if err != nil {
		return nil, err
	}
	copies := make([]*document.Layer, len(layers))
	for i, l := range layers {
		cp := l.Clone()
		cp.UUID = uuid.NewString()
		if err := cp.Validate(); err != nil {
			return nil, err
		}
		copies[i] = cp
	}
	ids := make([]string, len(copies))
	for i, cp := range copies {
		if err := c.layers.Insert(at+i, cp); err != nil {
			return ids[:i], err
		}
		ids[i] = cp.UUID
	}
	c.lastAdded = slices.Clone(ids)
	c.notify(OpLayerInsert, ids...)
	return ids, nil
}

// MoveLayersAfter moves layers so they sit directly in front of target,
// in the order given.
func (c *Composition) MoveLayersAfter(uuids []string, target string) error {
	return c.moveRelative(uuids, target, 1)
}

// MoveLayersBefore moves layers so they sit directly behind target, in the
// order given.
func (c *Composition) MoveLayersBefore(uuids []string, target string) error {
	return c.moveRelative(uuids, target, 0)
}

func (c *Composition) moveRelative(uuids []string, target string, offset int) error {
	if slices.Contains(uuids, target) {
		return invalid("cannot move layer %s relative to itself", target)
	}
	if _, err := c.IndexOf(target); err != nil {
		return err
	}
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	c.detach(layers)
	t, _ := c.layers.IndexOf(target)
	c.attach(layers, t+offset)
	c.notify(OpLayerMove, uuids...)
	return nil
}

// MoveLayersToTop moves layers to the front, keeping their stack order.
func (c *Composition) MoveLayersToTop(uuids []string) error {
	layers, err := c.layersFor(c.sortByIndex(uuids))
	if err != nil {
		return err
	}
	c.detach(layers)
	c.attach(layers, c.layers.Len())
	c.notify(OpLayerMove, uuids...)
	return nil
}

// MoveLayersToBottom moves layers to the back, keeping their stack order.
func (c *Composition) MoveLayersToBottom(uuids []string) error {
	layers, err := c.layersFor(c.sortByIndex(uuids))
	if err != nil {
		return err
	}
	c.detach(layers)
	c.attach(layers, 0)
	c.notify(OpLayerMove, uuids...)
	return nil
}

func (c *Composition) detach(layers []*document.Layer) {
	for _, l := range layers {
		_ = c.layers.Remove(l)
	}
}

func (c *Composition) attach(layers []*document.Layer, at int) {
	for i, l := range layers {
		_ = c.layers.Insert(at+i, l)
	}
}

// ShiftLayerUp swaps a layer with its neighbor toward the front. It
// reports false, changing nothing, when the layer is already on top.
func (c *Composition) ShiftLayerUp(uuid string) (bool, error) {
	i, err := c.IndexOf(uuid)
	if err != nil {
		return false, err
	}
	if i >= c.layers.Len()-1 {
		return false, nil
	}
	if err := c.layers.Move(i, i+1); err != nil {
		return false, err
	}
	c.notify(OpLayerMove, uuid)
	return true, nil
}

// ShiftLayerDown swaps a layer with its neighbor toward the back. It
// reports false when the layer is already at the bottom.
func (c *Composition) ShiftLayerDown(uuid string) (bool, error) {
	i, err := c.IndexOf(uuid)
	if err != nil {
		return false, err
	}
	if i == 0 {
		return false, nil
	}
	if err := c.layers.Move(i, i-1); err != nil {
		return false, err
	}
	c.notify(OpLayerMove, uuid)
	return true, nil
}

// --- Commands: appearance ---

func (c *Composition) SetLayerVisible(uuid string, visible bool) error {
	return c.updateLayer(uuid, func(l *document.Layer) error {
		l.Visible = visible
		return nil
	})
}

func (c *Composition) SetLayerName(uuid, name string) error {
	return c.updateLayer(uuid, func(l *document.Layer) error {
		l.Name = name
		return nil
	})
}

// SetLayerTexture changes the emblem texture and its active color count.
func (c *Composition) SetLayerTexture(uuid, filename string, colors int) error {
	if colors < 1 || colors > 3 {
		return invalid("colors %d not in 1..3", colors)
	}
	return c.updateLayer(uuid, func(l *document.Layer) error {
		l.Filename = filename
		l.Colors = colors
		return nil
	})
}

func (c *Composition) SetLayerColor(uuid string, slot int, col document.Color) error {
	return c.updateLayer(uuid, func(l *document.Layer) error {
		return l.SetColor(slot, col)
	})
}

// SetLayerMask sets the three mask channels, or clears the mask when nil.
func (c *Composition) SetLayerMask(uuid string, mask []int) error {
	if mask != nil && len(mask) != 3 {
		return invalid("mask needs 3 channels, got %d", len(mask))
	}
	return c.updateLayer(uuid, func(l *document.Layer) error {
		l.Mask = slices.Clone(mask)
		return nil
	})
}

func (c *Composition) SetLayerSymmetry(uuid string, sym document.Symmetry) error {
	t, err := document.ParseSymmetryType(string(sym.Type))
	if err != nil {
		return err
	}
	sym.Type = t
	sym.Properties = slices.Clone(sym.Properties)
	return c.updateLayer(uuid, func(l *document.Layer) error {
		l.Symmetry = sym
		return nil
	})
}

func (c *Composition) updateLayer(uuid string, fn func(*document.Layer) error) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	c.notify(OpLayerUpdate, uuid)
	return nil
}

// --- Commands: instances ---

// AddInstance appends an instance at the layer's current position and
// selects it.
func (c *Composition) AddInstance(uuid string) (int, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return 0, err
	}
	idx := l.AddInstance()
	c.notify(OpInstanceAdd, uuid)
	return idx, nil
}

func (c *Composition) RemoveInstance(uuid string, index int) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	if err := l.RemoveInstance(index); err != nil {
		return err
	}
	c.notify(OpInstanceRemove, uuid)
	return nil
}

func (c *Composition) SelectInstance(uuid string, index int) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	if err := l.SelectInstance(index); err != nil {
		return err
	}
	c.notify(OpInstanceSelect, uuid)
	return nil
}
