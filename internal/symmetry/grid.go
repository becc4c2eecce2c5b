package symmetry

import (
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/geom"
)

// EdgeWrap is how close to a canvas edge an instance must be to get a
// wrapped copy on the opposite edge.
const EdgeWrap = 0.01

// Grid tiles the seed over a CountX by CountY grid spanning the canvas.
// The seed's cell is found from its position; Offset is carried for
// round-tripping only. Checker keeps only cells with the seed's parity.
type Grid struct {
	Offset  geom.Vec2
	CountX  int
	CountY  int
	Checker bool
}

// MaxGridCount bounds the cells per grid axis.
const MaxGridCount = 8

// NewGrid reads [offset_x, offset_y, count_x, count_y, fill]. Counts are
// kept in [1, MaxGridCount].
func NewGrid(p []float64) *Grid {
	return &Grid{
		Offset:  geom.V(prop(p, 0, 0.5), prop(p, 1, 0.5)),
		CountX:  between(prop(p, 2, 3), 1, MaxGridCount),
		CountY:  between(prop(p, 3, 3), 1, MaxGridCount),
		Checker: int(prop(p, 4, 0)) == 1,
	}
}

func (g *Grid) Name() document.SymmetryType { return document.SymmetryGrid }

func (g *Grid) Properties() []float64 {
	fill := 0.0
	if g.Checker {
		fill = 1
	}
	return []float64{g.Offset.X, g.Offset.Y, float64(g.CountX), float64(g.CountY), fill}
}

// Cell returns the column and row containing p.
func (g *Grid) Cell(p geom.Vec2) (col, row int) {
	col = min(max(int(p.X*float64(g.CountX)), 0), g.CountX-1)
	row = min(max(int(p.Y*float64(g.CountY)), 0), g.CountY-1)
	return col, row
}

func (g *Grid) center(col, row int) geom.Vec2 {
	return geom.V(
		(float64(col)+0.5)/float64(g.CountX),
		(float64(row)+0.5)/float64(g.CountY),
	)
}

func (g *Grid) Mirrors(seed document.Instance) []document.Instance {
	sc, sr := g.Cell(seed.Pos)
	parity := (sc + sr) % 2
	rel := seed.Pos.Sub(g.center(sc, sr))

	var tiles []document.Instance
	for row := 0; row < g.CountY; row++ {
		for col := 0; col < g.CountX; col++ {
			if col == sc && row == sr {
				continue
			}
			if g.Checker && (row+col)%2 != parity {
				continue
			}
			t := mirror(seed)
			t.Pos = g.center(col, row).Add(rel).Clamp(0, 1)
			tiles = append(tiles, t)
		}
	}

	out := wrap(seed)
	for _, t := range tiles {
		out = append(out, t)
		out = append(out, wrap(t)...)
	}
	return out
}

// wrap returns copies of inst shifted by one canvas on every axis whose
// edge it touches, corners included. Wrapped positions lie outside [0, 1].
func wrap(inst document.Instance) []document.Instance {
	dx, dy := edgeShift(inst.Pos.X), edgeShift(inst.Pos.Y)
	var out []document.Instance
	if dx != 0 {
		out = append(out, shifted(inst, dx, 0))
	}
	if dy != 0 {
		out = append(out, shifted(inst, 0, dy))
	}
	if dx != 0 && dy != 0 {
		out = append(out, shifted(inst, dx, dy))
	}
	return out
}

func edgeShift(v float64) float64 {
	switch {
	case v <= EdgeWrap:
		return 1
	case v >= 1-EdgeWrap:
		return -1
	}
	return 0
}

func shifted(inst document.Instance, dx, dy float64) document.Instance {
	c := mirror(inst)
	c.Pos = inst.Pos.Add(geom.V(dx, dy))
	return c
}
