package engine

import (
	"slices"

	"github.com/inamate/heraldry/internal/document"
)

// Snapshot is a self-contained copy of everything an undo stack needs to
// restore a composition.
type Snapshot struct {
	Pattern string            `json:"pattern"`
	Colors  [3]document.Color `json:"colors"`
	Layers  []document.Layer  `json:"layers"`
}

// Snapshot returns a deep copy of pattern, base colors and layers.
func (c *Composition) Snapshot() Snapshot {
	s := Snapshot{
		Pattern: c.pattern,
		Colors:  c.colors,
		Layers:  make([]document.Layer, 0, c.layers.Len()),
	}
	for _, l := range c.layers.All() {
		s.Layers = append(s.Layers, *l.Clone())
	}
	return s
}

// SetSnapshot replaces pattern, colors and layers at once. The snapshot is
// validated first; on error nothing changes. Pending transform baselines
// are dropped.
func (c *Composition) SetSnapshot(s Snapshot) error {
	layers := make([]*document.Layer, len(s.Layers))
	for i := range s.Layers {
		l := s.Layers[i].Clone()
		if err := l.Validate(); err != nil {
			return err
		}
		layers[i] = l
	}
	next, err := document.NewLayers(layers...)
	if err != nil {
		return err
	}

	c.pattern = s.Pattern
	c.colors = s.Colors
	c.layers = *next
	c.group = nil
	c.rotation = nil
	c.lastAdded = nil
	c.notify(OpSnapshotRestore, c.layers.UUIDs()...)
	return nil
}

// Equal reports whether two snapshots describe the same state.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Pattern != o.Pattern || s.Colors != o.Colors || len(s.Layers) != len(o.Layers) {
		return false
	}
	for i := range s.Layers {
		if !layerEqual(&s.Layers[i], &o.Layers[i]) {
			return false
		}
	}
	return true
}

func layerEqual(a, b *document.Layer) bool {
	return a.UUID == b.UUID &&
		slices.Equal(a.Instances, b.Instances) &&
		a.Selected == b.Selected &&
		a.Filename == b.Filename &&
		a.Colors == b.Colors &&
		a.Color1 == b.Color1 && a.Color2 == b.Color2 && a.Color3 == b.Color3 &&
		slices.Equal(a.Mask, b.Mask) &&
		a.Visible == b.Visible &&
		a.Name == b.Name &&
		a.ContainerUUID == b.ContainerUUID &&
		a.ContainerSymmetry == b.ContainerSymmetry &&
		a.Symmetry.Type == b.Symmetry.Type &&
		slices.Equal(a.Symmetry.Properties, b.Symmetry.Properties)
}
