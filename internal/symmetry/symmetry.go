// Package symmetry expands seed instances into transient mirror copies.
//
// Mirrors are computed at serialization time and never stored in a layer.
// Every returned copy has Mirror set and inherits the seed's depth.
package symmetry

import (
	"slices"

	"github.com/inamate/heraldry/internal/document"
)

// Transform computes the mirrors of one seed. The seed itself is not part
// of the result.
type Transform interface {
	Name() document.SymmetryType
	Properties() []float64
	Mirrors(seed document.Instance) []document.Instance
}

var registry = map[document.SymmetryType]func([]float64) Transform{
	document.SymmetryBisector:   func(p []float64) Transform { return NewBisector(p) },
	document.SymmetryRotational: func(p []float64) Transform { return NewRotational(p) },
	document.SymmetryGrid:       func(p []float64) Transform { return NewGrid(p) },
}

// For returns the transform for sym, or nil when sym has no mirrors.
func For(sym document.Symmetry) Transform {
	build, ok := registry[sym.Type]
	if !ok {
		return nil
	}
	return build(sym.Properties)
}

// Types lists the symmetry types that produce mirrors.
func Types() []document.SymmetryType {
	out := make([]document.SymmetryType, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Expand returns each seed followed by its mirrors. Seeds are returned
// unchanged when sym is inactive.
func Expand(sym document.Symmetry, seeds []document.Instance) []document.Instance {
	t := For(sym)
	if t == nil {
		return slices.Clone(seeds)
	}
	out := make([]document.Instance, 0, len(seeds))
	for _, seed := range seeds {
		seed.Mirror = false
		out = append(out, seed)
		out = append(out, t.Mirrors(seed)...)
	}
	return out
}

// Seeds drops mirror copies, keeping stored instances in order.
func Seeds(insts []document.Instance) []document.Instance {
	out := make([]document.Instance, 0, len(insts))
	for _, inst := range insts {
		if !inst.Mirror {
			out = append(out, inst)
		}
	}
	return out
}

// prop reads property i, falling back to def when the list is short.
func prop(p []float64, i int, def float64) float64 {
	if i < len(p) {
		return p[i]
	}
	return def
}

// between truncates v to an int in [lo, hi]. NaN yields lo.
func between(v float64, lo, hi int) int {
	if !(v >= float64(lo)) {
		return lo
	}
	return int(min(v, float64(hi)))
}

// mirror copies seed as a transient mirror.
func mirror(seed document.Instance) document.Instance {
	seed.Mirror = true
	return seed
}
