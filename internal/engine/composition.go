package engine

import (
	"slices"

	"github.com/inamate/heraldry/internal/document"
)

// Composition is the in-memory coat of arms: a background pattern with
// three base colors and an ordered stack of emblem layers. It is not safe
// for concurrent use; see session.Session for serialized access.
type Composition struct {
	pattern string
	colors  [3]document.Color
	layers  document.Layers

	// Transient gesture state, valid only between Begin* and End*.
	group    *groupCache
	rotation *rotationCache

	lastAdded []string
	observer  Observer
}

// Option configures a Composition.
type Option func(*Composition)

// WithObserver installs an observer notified after each mutation.
func WithObserver(o Observer) Option {
	return func(c *Composition) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates an empty composition with the default pattern and colors.
func New(opts ...Option) *Composition {
	c := &Composition{
		pattern: document.DefaultPattern,
		colors: [3]document.Color{
			document.Named("purple"),
			document.Named("yellow"),
			document.Named("black"),
		},
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composition) notify(op string, uuids ...string) {
	c.observer.OnMutation(Mutation{Op: op, Layers: uuids})
}

// --- Pattern ---

func (c *Composition) Pattern() string { return c.pattern }

// SetPattern sets the background pattern texture.
func (c *Composition) SetPattern(filename string) {
	c.pattern = filename
	c.notify(OpPatternSet)
}

// BaseColor returns pattern color slot 1, 2 or 3.
func (c *Composition) BaseColor(slot int) (document.Color, error) {
	if slot < 1 || slot > 3 {
		return document.Color{}, invalid("color index %d not in 1..3", slot)
	}
	return c.colors[slot-1], nil
}

// SetBaseColor sets pattern color slot 1, 2 or 3.
func (c *Composition) SetBaseColor(slot int, col document.Color) error {
	if slot < 1 || slot > 3 {
		return invalid("color index %d not in 1..3", slot)
	}
	c.colors[slot-1] = col
	c.notify(OpBaseColorSet)
	return nil
}

// --- Queries ---

// Layer returns the layer with uuid. The pointer aliases model state.
func (c *Composition) Layer(uuid string) (*document.Layer, error) {
	if l := c.layers.Find(uuid); l != nil {
		return l, nil
	}
	return nil, layerNotFound(uuid)
}

// LayerAt returns the layer at stack index, or nil.
func (c *Composition) LayerAt(index int) *document.Layer {
	return c.layers.At(index)
}

func (c *Composition) LayerCount() int { return c.layers.Len() }

// UUIDs returns every layer UUID from back to front.
func (c *Composition) UUIDs() []string { return c.layers.UUIDs() }

// IndexOf returns the stack index of uuid.
func (c *Composition) IndexOf(uuid string) (int, error) {
	i, err := c.layers.IndexOf(uuid)
	if err != nil {
		return -1, layerNotFound(uuid)
	}
	return i, nil
}

// TopLayer returns the front-most layer UUID, or "" when empty.
func (c *Composition) TopLayer() string {
	if n := c.layers.Len(); n > 0 {
		return c.layers.At(n - 1).UUID
	}
	return ""
}

// BottomLayer returns the back-most layer UUID, or "" when empty.
func (c *Composition) BottomLayer() string {
	if c.layers.Len() > 0 {
		return c.layers.At(0).UUID
	}
	return ""
}

// LayerAbove returns the UUID directly in front of uuid, or "" at the top.
func (c *Composition) LayerAbove(uuid string) (string, error) {
	i, err := c.IndexOf(uuid)
	if err != nil {
		return "", err
	}
	if l := c.layers.At(i + 1); l != nil {
		return l.UUID, nil
	}
	return "", nil
}

// LayerBelow returns the UUID directly behind uuid, or "" at the bottom.
func (c *Composition) LayerBelow(uuid string) (string, error) {
	i, err := c.IndexOf(uuid)
	if err != nil {
		return "", err
	}
	if l := c.layers.At(i - 1); l != nil {
		return l.UUID, nil
	}
	return "", nil
}

// LastAdded returns the UUIDs created by the most recent add, paste,
// duplicate or split.
func (c *Composition) LastAdded() []string {
	return slices.Clone(c.lastAdded)
}

// layersFor resolves uuids, rejecting unknown and repeated ids.
func (c *Composition) layersFor(uuids []string) ([]*document.Layer, error) {
	out := make([]*document.Layer, 0, len(uuids))
	seen := make(map[string]bool, len(uuids))
	for _, u := range uuids {
		if seen[u] {
			return nil, invalid("layer %s listed twice", u)
		}
		seen[u] = true
		l, err := c.Layer(u)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// sortByIndex orders uuids by their stack index.
func (c *Composition) sortByIndex(uuids []string) []string {
	out := slices.Clone(uuids)
	slices.SortStableFunc(out, func(a, b string) int {
		ia, _ := c.layers.IndexOf(a)
		ib, _ := c.layers.IndexOf(b)
		return ia - ib
	})
	return out
}
