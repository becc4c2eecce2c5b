package engine

import (
	"slices"

	"github.com/inamate/heraldry/internal/typeid"
)

// ContainerSplit records one fragment of a container moved to a new id.
type ContainerSplit struct {
	OldContainer string
	NewContainer string
	LayerCount   int
}

// CreateContainer groups layers under a new container id. Members are
// gathered behind the lowest-index member in their current relative order
// so they form one contiguous run.
func (c *Composition) CreateContainer(uuids []string, name string) (string, error) {
	if len(uuids) == 0 {
		return "", invalid("container needs at least one layer")
	}
	layers, err := c.layersFor(uuids)
	if err != nil {
		return "", err
	}

	ordered := c.sortByIndex(uuids)
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		l := c.layers.Find(cur)
		_ = c.layers.Remove(l)
		at, _ := c.layers.IndexOf(prev)
		_ = c.layers.Insert(at+1, l)
	}

	id := typeid.NewContainerID(name)
	for _, l := range layers {
		l.ContainerUUID = id
	}
	c.notify(OpContainerCreate, ordered...)
	return id, nil
}

// LayerContainer returns the container id of a layer, "" when ungrouped.
func (c *Composition) LayerContainer(uuid string) (string, error) {
	l, err := c.Layer(uuid)
	if err != nil {
		return "", err
	}
	return l.ContainerUUID, nil
}

// SetLayerContainer assigns a layer to a container; "" ungroups it. Layer
// order is never changed.
func (c *Composition) SetLayerContainer(uuid, container string) error {
	l, err := c.Layer(uuid)
	if err != nil {
		return err
	}
	l.ContainerUUID = container
	c.notify(OpContainerSet, uuid)
	return nil
}

// LayersInContainer returns member UUIDs in stack order.
func (c *Composition) LayersInContainer(container string) []string {
	var out []string
	for _, l := range c.layers.All() {
		if container != "" && l.ContainerUUID == container {
			out = append(out, l.UUID)
		}
	}
	return out
}

// Containers returns every container id in use, sorted.
func (c *Composition) Containers() []string {
	var out []string
	for _, l := range c.layers.All() {
		if l.ContainerUUID != "" && !slices.Contains(out, l.ContainerUUID) {
			out = append(out, l.ContainerUUID)
		}
	}
	slices.Sort(out)
	return out
}

// ValidateContiguity restores the container invariant. For every container
// whose members are not one contiguous run, the first run keeps the id and
// each later run gets a fresh id with the same name.
func (c *Composition) ValidateContiguity() []ContainerSplit {
	all := c.layers.All()
	var order []string
	indices := make(map[string][]int)
	for i, l := range all {
		if l.ContainerUUID == "" {
			continue
		}
		if _, ok := indices[l.ContainerUUID]; !ok {
			order = append(order, l.ContainerUUID)
		}
		indices[l.ContainerUUID] = append(indices[l.ContainerUUID], i)
	}

	var splits []ContainerSplit
	var touched []string
	for _, id := range order {
		runs := contiguousRuns(indices[id])
		for _, run := range runs[1:] {
			fresh := typeid.RegenerateContainerID(id)
			for _, i := range run {
				all[i].ContainerUUID = fresh
				touched = append(touched, all[i].UUID)
			}
			splits = append(splits, ContainerSplit{OldContainer: id, NewContainer: fresh, LayerCount: len(run)})
		}
	}
	if len(splits) > 0 {
		c.notify(OpContainerRepair, touched...)
	}
	return splits
}

// contiguousRuns splits ascending indices into runs of consecutive values.
func contiguousRuns(idx []int) [][]int {
	var runs [][]int
	start := 0
	for i := 1; i <= len(idx); i++ {
		if i == len(idx) || idx[i] != idx[i-1]+1 {
			runs = append(runs, idx[start:i])
			start = i
		}
	}
	return runs
}

// DuplicateContainer copies every member with fresh UUIDs into a new
// container placed directly in front of the original run. The originals
// are untouched.
func (c *Composition) DuplicateContainer(container string) (string, error) {
	members := c.LayersInContainer(container)
	if len(members) == 0 {
		return "", containerNotFound(container)
	}
	id := typeid.RegenerateContainerID(container)
	last, _ := c.layers.IndexOf(members[len(members)-1])

	ids := make([]string, len(members))
	for i, u := range members {
		dup := c.layers.Find(u).Duplicate(0, 0)
		dup.ContainerUUID = id
		if err := c.layers.Insert(last+1+i, dup); err != nil {
			return "", err
		}
		ids[i] = dup.UUID
	}
	c.lastAdded = ids
	c.notify(OpContainerDuplicate, ids...)
	return id, nil
}
