package document

// Layers is the ordered layer stack. Index 0 is drawn first (back), the
// last index is drawn on top. UUIDs are unique within one collection.
type Layers struct {
	items []*Layer
}

// NewLayers builds a collection from layers, rejecting duplicate UUIDs.
func NewLayers(layers ...*Layer) (*Layers, error) {
	ls := &Layers{}
	for _, l := range layers {
		if err := ls.Append(l); err != nil {
			return nil, err
		}
	}
	return ls, nil
}

func (ls *Layers) Len() int { return len(ls.items) }

// At returns the layer at index, or nil when out of range.
func (ls *Layers) At(index int) *Layer {
	if index < 0 || index >= len(ls.items) {
		return nil
	}
	return ls.items[index]
}

// Set replaces the layer at index.
func (ls *Layers) Set(index int, l *Layer) error {
	if index < 0 || index >= len(ls.items) {
		return invalid("layer index %d out of range [0,%d)", index, len(ls.items))
	}
	if j := ls.indexOf(l.UUID); j >= 0 && j != index {
		return invalid("duplicate layer uuid %s", l.UUID)
	}
	ls.items[index] = l
	return nil
}

// Append adds l on top of the stack.
func (ls *Layers) Append(l *Layer) error {
	return ls.Insert(len(ls.items), l)
}

// Insert places l at index, shifting later layers up. Index is clamped to
// [0, Len].
func (ls *Layers) Insert(index int, l *Layer) error {
	if l == nil {
		return invalid("nil layer")
	}
	if ls.indexOf(l.UUID) >= 0 {
		return invalid("duplicate layer uuid %s", l.UUID)
	}
	index = max(0, min(index, len(ls.items)))
	ls.items = append(ls.items, nil)
	copy(ls.items[index+1:], ls.items[index:])
	ls.items[index] = l
	return nil
}

// Pop removes and returns the layer at index.
func (ls *Layers) Pop(index int) (*Layer, error) {
	if index < 0 || index >= len(ls.items) {
		return nil, invalid("layer index %d out of range [0,%d)", index, len(ls.items))
	}
	l := ls.items[index]
	ls.items = append(ls.items[:index], ls.items[index+1:]...)
	return l, nil
}

// Remove deletes l by identity.
func (ls *Layers) Remove(l *Layer) error {
	for i, it := range ls.items {
		if it == l {
			_, err := ls.Pop(i)
			return err
		}
	}
	return notFound("layer", l.UUID)
}

// Move relocates the layer at from so that it ends up at index to.
func (ls *Layers) Move(from, to int) error {
	l, err := ls.Pop(from)
	if err != nil {
		return err
	}
	return ls.Insert(to, l)
}

// Find returns the layer with uuid, or nil.
func (ls *Layers) Find(uuid string) *Layer {
	if i := ls.indexOf(uuid); i >= 0 {
		return ls.items[i]
	}
	return nil
}

// IndexOf returns the index of uuid.
func (ls *Layers) IndexOf(uuid string) (int, error) {
	if i := ls.indexOf(uuid); i >= 0 {
		return i, nil
	}
	return -1, notFound("layer", uuid)
}

func (ls *Layers) indexOf(uuid string) int {
	for i, l := range ls.items {
		if l.UUID == uuid {
			return i
		}
	}
	return -1
}

// UUIDs returns every UUID in stack order.
func (ls *Layers) UUIDs() []string {
	out := make([]string, len(ls.items))
	for i, l := range ls.items {
		out[i] = l.UUID
	}
	return out
}

// All returns the layers in stack order. The slice is a copy; the layers
// are not.
func (ls *Layers) All() []*Layer {
	return append([]*Layer(nil), ls.items...)
}

// Clear removes every layer.
func (ls *Layers) Clear() {
	ls.items = nil
}
