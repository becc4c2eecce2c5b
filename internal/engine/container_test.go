package engine

import (
	"errors"
	"slices"
	"testing"

	"github.com/inamate/heraldry/internal/geom"
	"github.com/inamate/heraldry/internal/typeid"
)

func five(t *testing.T) (*Composition, []string) {
	t.Helper()
	p := geom.V(0.5, 0.5)
	return stack(t, p, p, p, p, p)
}

func TestCreateContainerGathersMembers(t *testing.T) {
	c, ids := five(t)
	id, err := c.CreateContainer([]string{ids[3], ids[1]}, "Lions")
	if err != nil {
		t.Fatal(err)
	}
	assertOrder(t, c, ids[0], ids[1], ids[3], ids[2], ids[4])

	if got := c.LayersInContainer(id); !slices.Equal(got, []string{ids[1], ids[3]}) {
		t.Errorf("members = %v", got)
	}
	if name, err := typeid.ContainerName(id); err != nil || name != "Lions" {
		t.Errorf("ContainerName = %q, %v", name, err)
	}
	if got := c.Containers(); !slices.Equal(got, []string{id}) {
		t.Errorf("Containers = %v", got)
	}
	if splits := c.ValidateContiguity(); len(splits) != 0 {
		t.Errorf("fresh container reported splits %v", splits)
	}
}

func TestCreateContainerRejects(t *testing.T) {
	c, ids := five(t)
	if _, err := c.CreateContainer(nil, "x"); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty err = %v", err)
	}
	if _, err := c.CreateContainer([]string{ids[0], "ghost"}, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown err = %v", err)
	}
	assertOrder(t, c, ids...)
}

func TestUngroupKeepsOrder(t *testing.T) {
	c, ids := five(t)
	id, err := c.CreateContainer([]string{ids[1], ids[2]}, "")
	if err != nil {
		t.Fatal(err)
	}
	before := c.UUIDs()
	for _, u := range c.LayersInContainer(id) {
		if err := c.SetLayerContainer(u, ""); err != nil {
			t.Fatal(err)
		}
	}
	assertOrder(t, c, before...)
	if len(c.Containers()) != 0 {
		t.Errorf("containers left: %v", c.Containers())
	}
	if name, _ := typeid.ContainerName(id); name != typeid.DefaultContainerName {
		t.Errorf("default name = %q", name)
	}
}

func TestValidateContiguitySplitsFragments(t *testing.T) {
	c, ids := five(t)
	id, err := c.CreateContainer([]string{ids[0], ids[1]}, "Crest")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.MoveLayersToTop([]string{ids[1]}); err != nil {
		t.Fatal(err)
	}

	splits := c.ValidateContiguity()
	if len(splits) != 1 {
		t.Fatalf("splits = %v", splits)
	}
	s := splits[0]
	if s.OldContainer != id || s.NewContainer == id || s.LayerCount != 1 {
		t.Errorf("split = %+v", s)
	}
	if got, _ := c.LayerContainer(ids[0]); got != id {
		t.Errorf("first run container = %q", got)
	}
	if got, _ := c.LayerContainer(ids[1]); got != s.NewContainer {
		t.Errorf("moved layer container = %q", got)
	}
	if name, _ := typeid.ContainerName(s.NewContainer); name != "Crest" {
		t.Errorf("new container name = %q", name)
	}
	if again := c.ValidateContiguity(); len(again) != 0 {
		t.Errorf("second pass splits = %v", again)
	}
}

func TestDuplicateContainer(t *testing.T) {
	c, ids := five(t)
	id, err := c.CreateContainer([]string{ids[1], ids[2]}, "Pair")
	if err != nil {
		t.Fatal(err)
	}
	dupID, err := c.DuplicateContainer(id)
	if err != nil {
		t.Fatal(err)
	}
	if dupID == id {
		t.Fatal("duplicate reused container id")
	}
	dups := c.LayersInContainer(dupID)
	if len(dups) != 2 {
		t.Fatalf("duplicate members = %v", dups)
	}
	assertOrder(t, c, ids[0], ids[1], ids[2], dups[0], dups[1], ids[3], ids[4])
	assertUniqueUUIDs(t, c)
	if !slices.Equal(c.LastAdded(), dups) {
		t.Errorf("LastAdded = %v", c.LastAdded())
	}
	if len(c.ValidateContiguity()) != 0 {
		t.Error("duplicate broke contiguity")
	}
	if _, err := c.DuplicateContainer("container_missing_x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing container err = %v", err)
	}
}
