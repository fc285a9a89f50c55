// Package drag turns raw pointer motion into new object anchors.
//
// An anchor is the point at which an object is placed on the map. A drag
// session records the offset between the anchor and the pointer when the
// gesture starts; when it ends, the new anchor is that offset plus the
// final pointer position. Callers never track the arithmetic themselves.
package drag

// Point is a position on the map surface.
type Point struct {
	X, Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Negate returns -p.
func (p Point) Negate() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return p.Add(q.Negate())
}
