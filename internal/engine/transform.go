package engine

import (
	"math"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// --- Queries ---

// LayerPosition returns the single instance's position, or the center of
// the box spanned by instance positions for multi-instance layers.
// Instance extents are ignored.
func (c *Composition) LayerPosition(uuid string) (geom.Vec2, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return geom.Vec2{}, err
	}
	return layerCenter(l), nil
}

func layerCenter(l *document.Layer) geom.Vec2 {
	if l.InstanceCount() == 1 {
		return l.Instances[0].Pos
	}
	return l.PositionCenter()
}

// LayerCentroid returns the mean instance position.
func (c *Composition) LayerCentroid(uuid string) (geom.Vec2, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return geom.Vec2{}, err
	}
	return l.Centroid(), nil
}

// LayerScale returns the selected instance's scale.
func (c *Composition) LayerScale(uuid string) (geom.Vec2, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return geom.Vec2{}, err
	}
	return l.Scale(), nil
}

// LayerRotation returns the selected instance's rotation.
func (c *Composition) LayerRotation(uuid string) (float64, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return 0, err
	}
	return l.Rotation(), nil
}

// LayerBounds returns the AABB over every instance of a layer.
func (c *Composition) LayerBounds(uuid string) (geom.Rect, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return geom.Rect{}, err
	}
	return l.Bounds(), nil
}

// LayersBounds returns the AABB over every instance of every listed layer.
func (c *Composition) LayersBounds(uuids []string) (geom.Rect, error) {
	layers, err := c.layersFor(uuids)
	if err != nil {
		return geom.Rect{}, err
	}
	if len(layers) == 0 {
		return geom.Rect{}, invalid("no layers selected")
	}
	return selectionBounds(layers), nil
}

func selectionBounds(layers []*document.Layer) geom.Rect {
	r := layers[0].Bounds()
	for _, l := range layers[1:] {
		r = r.Union(l.Bounds())
	}
	return r
}

// --- Commands: single layer (rigid) ---

// SetLayerPosition moves a layer so its position equals p. Multi-instance
// layers are translated by the offset from their position center, keeping
// the relative layout.
func (c *Composition) SetLayerPosition(uuid string, p geom.Vec2) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	setLayerPosition(l, p)
	c.notify(OpTransform, uuid)
	return nil
}

func setLayerPosition(l *document.Layer, p geom.Vec2) {
	if l.InstanceCount() == 1 {
		l.Instances[0].SetPos(p)
		return
	}
	translateLayer(l, p.Sub(l.PositionCenter()))
}

// TranslateLayer adds delta to every instance position.
func (c *Composition) TranslateLayer(uuid string, delta geom.Vec2) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	translateLayer(l, delta)
	c.notify(OpTransform, uuid)
	return nil
}

func translateLayer(l *document.Layer, delta geom.Vec2) {
	for i := range l.Instances {
		inst := &l.Instances[i]
		inst.SetPos(inst.Pos.Add(delta))
	}
}

// SetLayerScale sets the layer's scale. With several instances the change
// is applied as a factor of the previous scale to each instance.
func (c *Composition) SetLayerScale(uuid string, s geom.Vec2) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	if l.InstanceCount() == 1 {
		l.SetScale(s)
	} else {
		old := l.Scale()
		scaleInstances(l, ratio(s.X, old.X), ratio(s.Y, old.Y))
	}
	c.notify(OpTransform, uuid)
	return nil
}

func ratio(n, d float64) float64 {
	if d == 0 {
		return 1
	}
	return n / d
}

// ScaleLayer multiplies every instance scale by factor.
func (c *Composition) ScaleLayer(uuid string, factor float64) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	scaleInstances(l, factor, factor)
	c.notify(OpTransform, uuid)
	return nil
}

func scaleInstances(l *document.Layer, fx, fy float64) {
	for i := range l.Instances {
		inst := &l.Instances[i]
		inst.SetScale(inst.Scale.Mul(fx, fy))
	}
}

// SetLayerRotation sets the layer's rotation. Every instance orbits the
// selected instance's position by the change and turns by the same amount.
func (c *Composition) SetLayerRotation(uuid string, degrees float64) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	delta := degrees - l.Rotation()
	pivot := l.Pos()
	for i := range l.Instances {
		inst := &l.Instances[i]
		inst.SetPos(geom.Orbit(inst.Pos, pivot, delta))
		inst.Rotation += delta
	}
	c.notify(OpTransform, uuid)
	return nil
}

// RotateLayer turns the layer by delta like a ferris wheel: instances
// orbit their centroid and spin by delta.
func (c *Composition) RotateLayer(uuid string, delta float64) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	ferris(l, delta)
	c.notify(OpTransform, uuid)
	return nil
}

func ferris(l *document.Layer, delta float64) {
	if l.InstanceCount() == 1 {
		l.Instances[0].Rotation += delta
		return
	}
	pivot := l.Centroid()
	for i := range l.Instances {
		inst := &l.Instances[i]
		inst.SetPos(geom.Orbit(inst.Pos, pivot, delta))
		inst.Rotation += delta
	}
}

// --- Commands: instance level (deep) ---

// TranslateAllInstances moves each instance independently by delta.
func (c *Composition) TranslateAllInstances(uuid string, delta geom.Vec2) error {
	return c.TranslateLayer(uuid, delta)
}

// ScaleAllInstances scales each instance about its own center.
func (c *Composition) ScaleAllInstances(uuid string, factor float64) error {
	return c.ScaleLayer(uuid, factor)
}

// RotateAllInstances spins each instance in place, wrapping to [0, 360).
func (c *Composition) RotateAllInstances(uuid string, delta float64) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	for i := range l.Instances {
		l.Instances[i].Rotation = wrapDegrees(l.Instances[i].Rotation + delta)
	}
	c.notify(OpTransform, uuid)
	return nil
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// --- Drag-safe instance group transform ---

type groupCache struct {
	uuid   string
	center geom.Vec2
	pos    []geom.Vec2
	scale  []geom.Vec2
}

// BeginInstanceGroupTransform records the baseline of a layer's instances
// for a continuous gesture. A previous baseline is discarded.
func (c *Composition) BeginInstanceGroupTransform(uuid string) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	gc := &groupCache{
		uuid:   uuid,
		center: l.Bounds().Center(),
		pos:    make([]geom.Vec2, l.InstanceCount()),
		scale:  make([]geom.Vec2, l.InstanceCount()),
	}
	for i, inst := range l.Instances {
		gc.pos[i] = inst.Pos
		gc.scale[i] = inst.Scale
	}
	c.group = gc
	return nil
}

// TransformInstancesAsGroup places the layer's instances as if the cached
// group were rotated by rotDelta, scaled by (sx, sy) and moved so its
// center lands on center. Values are totals relative to the baseline, not
// increments from the previous frame. Scales are clamped to [0.01, 1].
// rotDelta turns instance positions only; instance rotations are untouched.
func (c *Composition) TransformInstancesAsGroup(uuid string, center geom.Vec2, sx, sy, rotDelta float64) error {
	gc := c.group
	if gc == nil {
		return ErrNoTransform
	}
	if gc.uuid != uuid {
		return invalid("group transform in progress for %s, not %s", gc.uuid, uuid)
	}
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	if l.InstanceCount() != len(gc.pos) {
		return invalid("layer %s instance count changed during transform", uuid)
	}
	for i := range l.Instances {
		off := geom.Orbit(gc.pos[i], gc.center, rotDelta).Sub(gc.center).Mul(sx, sy)
		inst := &l.Instances[i]
		inst.SetPos(center.Add(off))
		inst.SetScale(geom.V(
			geom.Clamp(gc.scale[i].X*sx, document.MinScale, document.MaxScale),
			geom.Clamp(gc.scale[i].Y*sy, document.MinScale, document.MaxScale),
		))
	}
	c.notify(OpGroupTransform, uuid)
	return nil
}

// EndInstanceGroupTransform drops the baseline.
func (c *Composition) EndInstanceGroupTransform() {
	c.group = nil
}

// GroupTransformActive reports whether a baseline is cached.
func (c *Composition) GroupTransformActive() bool {
	return c.group != nil
}
