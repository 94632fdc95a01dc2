// Package geom provides rectangle arithmetic for the frame compositor.
// It contains no external dependencies (especially no image types) to keep
// the math pure and testable.
package geom

import "math"

// Rect is an axis-aligned rectangle in x/y/width/height form.
// Coordinates are float64 because tile and sprite positions come from the
// engine in world units and are scaled by a fractional zoom factor.
type Rect struct {
	X, Y, W, H float64
}

// NewRect creates a rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the overlap of two rectangles.
// The second return value is false when the overlap is empty or degenerate,
// in which case the returned rectangle must not be used.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	x1 := math.Max(r.X, other.X)
	y1 := math.Max(r.Y, other.Y)
	x2 := math.Min(r.Right(), other.Right())
	y2 := math.Min(r.Bottom(), other.Bottom())

	res := Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
	if res.Empty() {
		return Rect{}, false
	}
	return res, true
}

// OutOfBounds reports whether the rectangle lies entirely outside a canvas
// of the given size anchored at the origin.
func (r Rect) OutOfBounds(width, height float64) bool {
	if r.Right() < 0 || r.X > width {
		return true
	}
	if r.Bottom() < 0 || r.Y > height {
		return true
	}
	return false
}

// IntRect is a rectangle snapped to integer pixel coordinates.
type IntRect struct {
	X, Y, W, H int
}

// Right returns the x-coordinate of the right edge.
func (r IntRect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r IntRect) Bottom() int {
	return r.Y + r.H
}

// Snap converts to pixel coordinates: position is floored, size is ceiled.
// The snapped rectangle always covers the original one.
func (r Rect) Snap() IntRect {
	return IntRect{
		X: int(math.Floor(r.X)),
		Y: int(math.Floor(r.Y)),
		W: int(math.Ceil(r.W)),
		H: int(math.Ceil(r.H)),
	}
}

// SnapOuter converts to pixel coordinates by flooring the top-left corner
// and ceiling the bottom-right corner. Used when cropping source bitmaps,
// where both edges must land on pixel boundaries independently.
func (r Rect) SnapOuter() IntRect {
	x1 := int(math.Floor(r.X))
	y1 := int(math.Floor(r.Y))
	x2 := int(math.Ceil(r.Right()))
	y2 := int(math.Ceil(r.Bottom()))
	return IntRect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}
