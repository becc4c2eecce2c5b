// Package geom holds the small amount of plane geometry shared by the
// composition model: points, axis-aligned boxes and affine matrices.
package geom

// Vec2 is a point or offset in normalized composition space.
// X grows to the right, Y grows downward.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul scales each axis independently.
func (v Vec2) Mul(sx, sy float64) Vec2 { return Vec2{v.X * sx, v.Y * sy} }

// Clamp limits each axis to [lo, hi].
func (v Vec2) Clamp(lo, hi float64) Vec2 {
	return Vec2{Clamp(v.X, lo, hi), Clamp(v.Y, lo, hi)}
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}

// Centroid returns the mean of points, or the zero vector for none.
func Centroid(points []Vec2) Vec2 {
	if len(points) == 0 {
		return Vec2{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Vec2{sx / n, sy / n}
}
