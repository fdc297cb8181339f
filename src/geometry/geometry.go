// Package geometry provides integer point, size and rectangle value types used
// to map a reference-resolution layout onto the captured window.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Point is a pixel position.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Size is a width/height pair. Negative values are treated as zero.
type Size struct {
	Width  int
	Height int
}

func Sz(w, h int) Size { return Size{Width: nonNeg(w), Height: nonNeg(h)} }

func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// All operations return new values.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// R builds a Rect, normalizing negative sizes to zero.
func R(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: nonNeg(w), Height: nonNeg(h)}
}

// FromImage converts an image.Rectangle.
func FromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return R(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// ImageRect converts to an image.Rectangle.
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Rect) Min() Point { return Point{X: r.X, Y: r.Y} }

// Max returns the exclusive bottom-right corner.
func (r Rect) Max() Point { return Point{X: r.X + r.Width, Y: r.Y + r.Height} }

func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Scale multiplies every edge by f, rounding each edge to the nearest pixel.
// Rounding edges rather than sizes keeps adjacent regions adjacent.
func (r Rect) Scale(f float64) Rect {
	return r.ScaleXY(f, f)
}

func (r Rect) ScaleXY(fx, fy float64) Rect {
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	x0 := round(float64(r.X) * fx)
	y0 := round(float64(r.Y) * fy)
	x1 := round(float64(r.X+r.Width) * fx)
	y1 := round(float64(r.Y+r.Height) * fy)
	return R(x0, y0, x1-x0, y1-y0)
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return false
	}
	return o.X >= r.X && o.Y >= r.Y && o.X+o.Width <= r.X+r.Width && o.Y+o.Height <= r.Y+r.Height
}

// Intersect returns the overlap of r and o. ok is false when they do not overlap.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.Width, o.X+o.Width)
	y1 := min(r.Y+r.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Clamp restricts r to bounds. A rect entirely outside bounds collapses to a
// zero-size rect on the nearest bounds edge.
func (r Rect) Clamp(bounds Rect) Rect {
	if in, ok := r.Intersect(bounds); ok {
		return in
	}
	x := clampInt(r.X, bounds.X, bounds.X+bounds.Width)
	y := clampInt(r.Y, bounds.Y, bounds.Y+bounds.Height)
	return Rect{X: x, Y: y}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func nonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64) int { return int(math.Round(v)) }
