package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/inamate/heraldry/internal/document"
)

// MergeReview is the outcome of ReviewMerge. Only Valid gates a merge;
// warnings describe appearance that will be lost.
type MergeReview struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
	Info     []string `json:"info,omitempty"`
}

// ReviewMerge checks whether layers can be merged without mutating
// anything. Texture and color differences are warnings; colors are
// compared only over the first layer's active slots.
func (c *Composition) ReviewMerge(uuids []string) MergeReview {
	layers, err := c.mergeTargets(uuids)
	if err != nil {
		return MergeReview{Warnings: []string{err.Error()}}
	}

	r := MergeReview{Valid: true}
	first := layers[0]
	instances := 0
	for _, l := range layers {
		instances += l.InstanceCount()
	}
	r.Info = append(r.Info,
		fmt.Sprintf("%d layers will merge into %s", len(layers), first.DisplayName()),
		fmt.Sprintf("result has %d instances", instances),
	)

	var textures []string
	symmetryDiffers := false
	for _, l := range layers[1:] {
		if l.Filename != first.Filename && !slices.Contains(textures, l.Filename) {
			textures = append(textures, l.Filename)
		}
		for slot := 1; slot <= first.Colors; slot++ {
			a, _ := first.Color(slot)
			b, _ := l.Color(slot)
			if !sameColor(a, b) {
				r.Warnings = append(r.Warnings,
					fmt.Sprintf("color%d of %s differs from %s", slot, l.DisplayName(), first.DisplayName()))
			}
		}
		if !l.Symmetry.Equal(first.Symmetry) {
			symmetryDiffers = true
		}
	}
	if len(textures) > 0 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("textures %s will be replaced by %s", strings.Join(textures, ", "), first.Filename))
	}
	if symmetryDiffers {
		r.Warnings = append(r.Warnings, "layers use different symmetry; the result will have none")
	}
	return r
}

func sameColor(a, b document.Color) bool {
	if a.Name != "" || b.Name != "" {
		return a.Name == b.Name
	}
	return a == b
}

func (c *Composition) mergeTargets(uuids []string) ([]*document.Layer, error) {
	if len(uuids) < 2 {
		return nil, invalid("merge needs at least 2 layers, got %d", len(uuids))
	}
	return c.layersFor(uuids)
}

// Merge validates with ReviewMerge and folds every other layer's instances
// into the first listed layer, which keeps its UUID and appearance.
func (c *Composition) Merge(uuids []string) (string, error) {
	r := c.ReviewMerge(uuids)
	if !r.Valid {
		if _, err := c.mergeTargets(uuids); err != nil {
			return "", err
		}
		return "", invalid("merge rejected: %s", strings.Join(r.Warnings, "; "))
	}
	return c.MergeIntoFirst(uuids)
}

// MergeIntoFirst merges without the appearance review. It fails only on
// structural problems. Once started it is not rolled back.
func (c *Composition) MergeIntoFirst(uuids []string) (string, error) {
	layers, err := c.mergeTargets(uuids)
	if err != nil {
		return "", err
	}
	first := layers[0]
	for _, l := range layers[1:] {
		if !l.Symmetry.Equal(first.Symmetry) {
			first.Symmetry = document.Symmetry{Type: document.SymmetryNone}
			break
		}
	}
	for _, l := range layers[1:] {
		for _, inst := range l.Instances {
			first.AppendInstance(inst)
		}
		if err := c.layers.Remove(l); err != nil {
			return first.UUID, err
		}
	}
	c.notify(OpMerge, uuids...)
	return first.UUID, nil
}

// Split explodes a multi-instance layer into one layer per instance, in
// instance order, at the original layer's stack position.
func (c *Composition) Split(id string) ([]string, error) {
	at, err := c.IndexOf(id)
	if err != nil {
		return nil, err
	}
	src := c.layers.At(at)
	if src.InstanceCount() < 2 {
		return nil, invalid("layer %s has a single instance", id)
	}

	ids := make([]string, src.InstanceCount())
	for i, inst := range src.Instances {
		part := src.Clone()
		part.UUID = uuid.NewString()
		part.Instances = []document.Instance{inst}
		part.Selected = 0
		if err := c.layers.Insert(at+1+i, part); err != nil {
			return nil, err
		}
		ids[i] = part.UUID
	}
	if _, err := c.layers.Pop(at); err != nil {
		return nil, err
	}
	c.lastAdded = ids
	c.notify(OpSplit, ids...)
	return ids, nil
}
