package engine

import (
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// RotationMode selects how a multi-layer rotation moves and spins its
// members.
type RotationMode string

const (
	// ModeAuto picks rotate_only for a single layer and both otherwise.
	ModeAuto RotationMode = "auto"
	// ModeRotateOnly turns each layer about its own instance centroid.
	ModeRotateOnly RotationMode = "rotate_only"
	// ModeOrbitOnly moves layer centers around the selection's AABB
	// center without spinning anything.
	ModeOrbitOnly RotationMode = "orbit_only"
	// ModeBoth turns instances about their layer center, then orbits the
	// layer centers around the selection's AABB center.
	ModeBoth RotationMode = "both"
	// ModeRotateOnlyDeep spins every instance in place.
	ModeRotateOnlyDeep RotationMode = "rotate_only_deep"
	// ModeOrbitOnlyDeep orbits every instance around the centroid of all
	// selected instances.
	ModeOrbitOnlyDeep RotationMode = "orbit_only_deep"
	// ModeBothDeep orbits and spins every instance.
	ModeBothDeep RotationMode = "both_deep"
)

// RotationModes lists every accepted mode name.
var RotationModes = []RotationMode{
	ModeAuto, ModeRotateOnly, ModeOrbitOnly, ModeBoth,
	ModeRotateOnlyDeep, ModeOrbitOnlyDeep, ModeBothDeep,
}

// ParseRotationMode validates a mode name.
func ParseRotationMode(s string) (RotationMode, error) {
	for _, m := range RotationModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", invalid("unknown rotation mode %q", s)
}

// Deep reports whether the mode ignores layer boundaries.
func (m RotationMode) Deep() bool {
	return m == ModeRotateOnlyDeep || m == ModeOrbitOnlyDeep || m == ModeBothDeep
}

func (m RotationMode) spins() bool {
	return m != ModeOrbitOnly && m != ModeOrbitOnlyDeep
}

type cachedLayer struct {
	uuid   string
	center geom.Vec2
	pos    []geom.Vec2
	rot    []float64
}

type rotationCache struct {
	mode   RotationMode
	pivot  geom.Vec2
	layers []cachedLayer
}

// BeginRotationTransform caches the baseline of every instance of the
// listed layers for a rotation gesture. ModeAuto is resolved here. A
// previous rotation baseline is discarded.
func (c *Composition) BeginRotationTransform(uuids []string, mode RotationMode) error {
	if _, err := ParseRotationMode(string(mode)); err != nil {
		return err
	}
	layers, err := c.layersFor(uuids)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return invalid("no layers selected")
	}
	if mode == ModeAuto {
		mode = resolveAuto(layers)
	}

	rc := &rotationCache{mode: mode, layers: make([]cachedLayer, len(layers))}
	var all []geom.Vec2
	for i, l := range layers {
		cl := cachedLayer{
			uuid:   l.UUID,
			center: l.Centroid(),
			pos:    l.Positions(),
			rot:    make([]float64, l.InstanceCount()),
		}
		for j, inst := range l.Instances {
			cl.rot[j] = inst.Rotation
		}
		all = append(all, cl.pos...)
		rc.layers[i] = cl
	}
	if mode.Deep() {
		rc.pivot = geom.Centroid(all)
	} else {
		rc.pivot = selectionBounds(layers).Center()
	}
	c.rotation = rc
	return nil
}

func resolveAuto(layers []*document.Layer) RotationMode {
	if len(layers) == 1 {
		return ModeRotateOnly
	}
	return ModeBoth
}

// ApplyRotationTransform sets every cached instance to its baseline
// rotated by the total delta. Calling it with 0 restores the baseline.
func (c *Composition) ApplyRotationTransform(delta float64) error {
	rc := c.rotation
	if rc == nil {
		return ErrNoTransform
	}
	layers := make([]*document.Layer, len(rc.layers))
	for i, cl := range rc.layers {
		l, err := c.Layer(cl.uuid)
		if err != nil {
			return err
		}
		if l.InstanceCount() != len(cl.pos) {
			return invalid("layer %s instance count changed during rotation", cl.uuid)
		}
		layers[i] = l
	}

	ids := make([]string, len(layers))
	for i, l := range layers {
		rc.apply(l, rc.layers[i], delta)
		ids[i] = l.UUID
	}
	c.notify(OpRotate, ids...)
	return nil
}

func (rc *rotationCache) apply(l *document.Layer, cl cachedLayer, delta float64) {
	var shift geom.Vec2
	if rc.mode == ModeOrbitOnly || rc.mode == ModeBoth {
		shift = geom.Orbit(cl.center, rc.pivot, delta).Sub(cl.center)
	}
	for j := range l.Instances {
		inst := &l.Instances[j]
		p := cl.pos[j]
		switch rc.mode {
		case ModeRotateOnly:
			p = geom.Orbit(p, cl.center, delta)
		case ModeOrbitOnly:
			p = p.Add(shift)
		case ModeBoth:
			p = geom.Orbit(p, cl.center, delta).Add(shift)
		case ModeOrbitOnlyDeep, ModeBothDeep:
			p = geom.Orbit(p, rc.pivot, delta)
		}
		inst.SetPos(p)
		if rc.mode.spins() {
			inst.Rotation = cl.rot[j] + delta
		} else {
			inst.Rotation = cl.rot[j]
		}
	}
}

// EndRotationTransform drops the rotation baseline.
func (c *Composition) EndRotationTransform() {
	c.rotation = nil
}

// RotationActive reports whether a rotation baseline is cached.
func (c *Composition) RotationActive() bool {
	return c.rotation != nil
}

// RotateSelection performs a complete begin/apply/end rotation.
func (c *Composition) RotateSelection(uuids []string, delta float64, mode RotationMode) error {
	if err := c.BeginRotationTransform(uuids, mode); err != nil {
		return err
	}
	defer c.EndRotationTransform()
	return c.ApplyRotationTransform(delta)
}
