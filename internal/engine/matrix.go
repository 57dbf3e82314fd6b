package engine

import "github.com/polystage/polystage/internal/document"

// Matrix2D is a 2-D affine transform in Canvas2D setTransform order
// [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
//
// The workspace only composes translations with a uniform scale, so b and
// c stay zero.
type Matrix2D [6]float64

func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply returns m * n: n is applied first, then m.
func (m Matrix2D) Multiply(n Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Apply maps p through m.
func (m Matrix2D) Apply(p document.Point) document.Point {
	return document.Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Invert returns the inverse of m. A singular matrix inverts to itself,
// which cannot happen for a clamped viewport scale.
func (m Matrix2D) Invert() Matrix2D {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return m
	}
	k := 1 / det
	return Matrix2D{
		m[3] * k,
		-m[1] * k,
		-m[2] * k,
		m[0] * k,
		(m[2]*m[5] - m[3]*m[4]) * k,
		(m[1]*m[4] - m[0]*m[5]) * k,
	}
}

// TransformRect maps the corners of r and returns their bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	corners := [4]document.Point{
		m.Apply(document.Point{X: r.X, Y: r.Y}),
		m.Apply(document.Point{X: r.X + r.Width, Y: r.Y}),
		m.Apply(document.Point{X: r.X + r.Width, Y: r.Y + r.Height}),
		m.Apply(document.Point{X: r.X, Y: r.Y + r.Height}),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
		hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
	}
	return Rect{X: lo.X, Y: lo.Y, Width: hi.X - lo.X, Height: hi.Y - lo.Y}
}

// ToSlice returns the six coefficients for JSON and CSS matrix() output.
func (m Matrix2D) ToSlice() []float64 {
	return m[:]
}
