package geom

import "math"

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// RotateDegrees returns a rotation matrix (angle in degrees).
func RotateDegrees(degrees float64) Matrix2D {
	return Rotate(degrees * math.Pi / 180.0)
}

// RotateAbout returns a rotation of degrees around the pivot (cx, cy):
//
//	x' = cx + dx·cosθ − dy·sinθ
//	y' = cy + dx·sinθ + dy·cosθ
func RotateAbout(cx, cy, degrees float64) Matrix2D {
	return Translate(cx, cy).Multiply(RotateDegrees(degrees)).Multiply(Translate(-cx, -cy))
}

// ReflectAbout returns a reflection across the line through (cx, cy)
// at angle degrees from the x axis.
func ReflectAbout(cx, cy, degrees float64) Matrix2D {
	theta := 2 * degrees * math.Pi / 180.0
	cos := math.Cos(theta)
	sin := math.Sin(theta)
	reflect := Matrix2D{cos, sin, sin, -cos, 0, 0}
	return Translate(cx, cy).Multiply(reflect).Multiply(Translate(-cx, -cy))
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Apply applies the matrix to a vector.
func (m Matrix2D) Apply(v Vec2) Vec2 {
	x, y := m.TransformPoint(v.X, v.Y)
	return Vec2{X: x, Y: y}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

// Orbit rotates p around pivot by degrees. A zero angle returns p exactly.
func Orbit(p, pivot Vec2, degrees float64) Vec2 {
	if degrees == 0 {
		return p
	}
	return RotateAbout(pivot.X, pivot.Y, degrees).Apply(p)
}
