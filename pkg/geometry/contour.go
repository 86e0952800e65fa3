package geometry

import (
	"math"
)

// Contour is an ordered closed sequence of points tracing the boundary of a
// connected region. The closing segment from the last point back to the
// first is implicit.
type Contour []Point2D

// Perimeter returns the arc length of the closed contour.
func (c Contour) Perimeter() float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += c[i].Distance(c[(i+1)%n])
	}
	return total
}

// Area returns the enclosed area of the closed contour using the shoelace
// formula. The result is always non-negative regardless of winding order.
func (c Contour) Area() float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Circularity returns 4π·area/perimeter², the compactness of the enclosed
// region. A perfect circle yields 1.0; elongated or ragged boundaries yield
// lower values. Returns 0 for degenerate contours.
func (c Contour) Circularity() float64 {
	p := c.Perimeter()
	if p <= 0 {
		return 0
	}
	return 4 * math.Pi * c.Area() / (p * p)
}

// Centroid returns the centroid of the contour's vertices.
func (c Contour) Centroid() Point2D {
	return Centroid(c)
}

// Bounds returns the axis-aligned bounding box of the contour.
func (c Contour) Bounds() Rect {
	return BoundingBox(c)
}

// Contains reports whether the point lies inside the closed contour,
// using ray casting.
func (c Contour) Contains(p Point2D) bool {
	n := len(c)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := c[i].X, c[i].Y
		xj, yj := c[j].X, c[j].Y
		if ((yi > p.Y) != (yj > p.Y)) && (p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}
