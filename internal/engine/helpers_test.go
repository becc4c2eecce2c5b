package engine

import (
	"math"
	"testing"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearVec(a, b geom.Vec2) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

// stack builds a composition with one single-instance layer per position,
// from back to front.
func stack(t *testing.T, positions ...geom.Vec2) (*Composition, []string) {
	t.Helper()
	c := New()
	ids := make([]string, len(positions))
	for i, p := range positions {
		id, err := c.AddLayer("ce_fleur.dds", 3, "")
		if err != nil {
			t.Fatalf("AddLayer: %v", err)
		}
		if err := c.SetLayerPosition(id, p); err != nil {
			t.Fatalf("SetLayerPosition: %v", err)
		}
		ids[i] = id
	}
	return c, ids
}

// withInstances replaces a layer's instances.
func withInstances(t *testing.T, c *Composition, id string, insts ...document.Instance) {
	t.Helper()
	l, err := c.Layer(id)
	if err != nil {
		t.Fatal(err)
	}
	l.Instances = insts
	l.Selected = 0
}

func inst(x, y, scale, rot float64) document.Instance {
	return document.Instance{Pos: geom.V(x, y), Scale: geom.V(scale, scale), Rotation: rot}
}

func assertOrder(t *testing.T, c *Composition, want ...string) {
	t.Helper()
	got := c.UUIDs()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func assertUniqueUUIDs(t *testing.T, c *Composition) {
	t.Helper()
	seen := map[string]bool{}
	for _, u := range c.UUIDs() {
		if seen[u] {
			t.Fatalf("duplicate uuid %s in %v", u, c.UUIDs())
		}
		seen[u] = true
	}
}
